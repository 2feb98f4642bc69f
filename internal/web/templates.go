package web

import (
	"html/template"
)

var dashboardHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>cloudscope</title>
    <style>
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            background: #0d1117;
            color: #c9d1d9;
            font-family: 'SF Mono', 'Fira Code', monospace;
            padding: 24px;
        }
        h1 { color: #58a6ff; margin-bottom: 4px; }
        .subtitle { color: #8b949e; margin-bottom: 24px; }
        .cards { display: flex; gap: 16px; flex-wrap: wrap; margin-bottom: 24px; }
        .card {
            background: #161b22;
            border: 1px solid #30363d;
            border-radius: 8px;
            padding: 16px 24px;
            min-width: 140px;
        }
        .card .num { font-size: 28px; color: #58a6ff; }
        .card .label { color: #8b949e; font-size: 12px; text-transform: uppercase; }
        table { width: 100%; border-collapse: collapse; }
        th, td { text-align: left; padding: 8px 12px; border-bottom: 1px solid #21262d; }
        th { color: #8b949e; font-size: 12px; text-transform: uppercase; }
        tr:hover { background: #161b22; }
        .badge {
            display: inline-block;
            padding: 2px 8px;
            border-radius: 10px;
            font-size: 12px;
            background: #21262d;
        }
        .status-ok { color: #3fb950; }
        .status-dead { color: #f85149; }
        a { color: #58a6ff; text-decoration: none; }
        .toolbar { margin-bottom: 16px; }
    </style>
</head>
<body>
    <h1>☁️ cloudscope</h1>
    <div class="subtitle">cloud host discovery collector</div>

    <div class="cards">
        <div class="card">
            <div class="num">{{.Stats.Total}}</div>
            <div class="label">Hosts</div>
        </div>
        <div class="card">
            <div class="num">{{.Stats.Selected}}</div>
            <div class="label">Selected</div>
        </div>
        {{range .Stats.ByProvider}}
        <div class="card">
            <div class="num">{{.Count}}</div>
            <div class="label">{{.Key}}</div>
        </div>
        {{end}}
    </div>

    <div class="toolbar">
        <a href="/api/export">⬇ Export CSV</a> ·
        <a href="/api/export?format=xlsx">⬇ Export XLSX</a> ·
        <a href="/api/stats">stats</a>
    </div>

    <table>
        <thead>
            <tr>
                <th>Host</th>
                <th>IP</th>
                <th>Provider</th>
                <th>Country</th>
                <th>Status</th>
                <th>Title</th>
                <th>Discovered</th>
            </tr>
        </thead>
        <tbody>
            {{range .Hosts}}
            <tr>
                <td>{{if .Domain}}{{.Domain}}{{else}}{{.IP}}{{end}}</td>
                <td>{{.IP}}</td>
                <td><span class="badge">{{.Provider}}</span></td>
                <td>{{.Country}}</td>
                <td class="{{if .StatusCode}}status-ok{{else}}status-dead{{end}}">
                    {{if .StatusCode}}{{.StatusCode}}{{else}}–{{end}}
                </td>
                <td>{{.Title}}</td>
                <td>{{.DiscoveredAt.Format "2006-01-02 15:04"}}</td>
            </tr>
            {{end}}
        </tbody>
    </table>
</body>
</html>`

var dashboardTemplate = template.Must(template.New("dashboard").Parse(dashboardHTML))
