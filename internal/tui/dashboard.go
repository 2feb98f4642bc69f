package tui

import (
	"fmt"
	"strings"

	"github.com/user/cloudscope/internal/model"
)

// DashboardData holds data for the dashboard view.
type DashboardData struct {
	Total      int
	Selected   int
	ByProvider []model.ProviderCount
	ByCountry  []model.ProviderCount
	Recent     []HostInfo
}

// HostInfo represents one host row for display.
type HostInfo struct {
	Host     string
	IP       string
	Provider string
	Country  string
	Status   int
}

// Dashboard is the main dashboard view.
type Dashboard struct {
	data   *DashboardData
	width  int
	height int
}

// NewDashboard creates a new dashboard.
func NewDashboard(msg dataMsg, width, height int) *Dashboard {
	return &Dashboard{
		data:   msg.Data,
		width:  width,
		height: height,
	}
}

// SetSize updates the dashboard size.
func (d *Dashboard) SetSize(width, height int) {
	d.width = width
	d.height = height
}

// View renders the dashboard.
func (d *Dashboard) View() string {
	var sb strings.Builder

	header := HeaderStyle.Width(d.width).Render("☁️ cloudscope")
	sb.WriteString(header)
	sb.WriteString("\n\n")

	sb.WriteString(d.renderStatsSection())
	sb.WriteString("\n")

	sb.WriteString(d.renderProviderSection())
	sb.WriteString("\n")

	sb.WriteString(d.renderRecentSection())
	sb.WriteString("\n")

	help := HelpStyle.Render("Press 'r' to refresh • 'q' to quit")
	sb.WriteString(help)

	return sb.String()
}

func (d *Dashboard) sectionWidth() int {
	w := d.width - 4
	if w < 40 {
		w = 40
	}
	return w
}

func (d *Dashboard) renderStatsSection() string {
	content := fmt.Sprintf(
		"%s %s\n%s %s",
		LabelStyle.Render("Hosts:"),
		ValueStyle.Render(fmt.Sprintf("%d", d.data.Total)),
		LabelStyle.Render("Selected:"),
		ValueStyle.Render(fmt.Sprintf("%d", d.data.Selected)),
	)

	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("📊 Collector") + "\n" + content)
}

func (d *Dashboard) renderProviderSection() string {
	if len(d.data.ByProvider) == 0 {
		content := DimStyle.Render("No hosts collected yet")
		return SectionStyle.Width(d.sectionWidth()).Render(
			SectionTitleStyle.Render("☁️ Providers") + "\n" + content)
	}

	max := d.data.ByProvider[0].Count
	var rows []string
	for _, p := range d.data.ByProvider {
		rows = append(rows, fmt.Sprintf("%-14s %s %d",
			p.Key, RenderBar(p.Count, max, 24), p.Count))
	}

	content := strings.Join(rows, "\n")
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("☁️ Providers") + "\n" + content)
}

func (d *Dashboard) renderRecentSection() string {
	if len(d.data.Recent) == 0 {
		content := DimStyle.Render("Nothing discovered yet")
		return SectionStyle.Width(d.sectionWidth()).Render(
			SectionTitleStyle.Render("🌍 Recent Hosts") + "\n" + content)
	}

	var rows []string
	rows = append(rows, fmt.Sprintf("%-32s %-16s %-12s %-3s %s",
		"Host", "IP", "Provider", "CC", "Status"))
	rows = append(rows, strings.Repeat("─", 70))

	for _, h := range d.data.Recent {
		host := h.Host
		if len(host) > 30 {
			host = host[:27] + "..."
		}
		status := "–"
		if h.Status != 0 {
			status = fmt.Sprintf("%d", h.Status)
		}
		rows = append(rows, fmt.Sprintf("%-32s %-16s %-12s %-3s %s",
			host, h.IP, h.Provider, h.Country, status))
	}

	content := strings.Join(rows, "\n")
	return SectionStyle.Width(d.sectionWidth()).Render(
		SectionTitleStyle.Render("🌍 Recent Hosts") + "\n" + content)
}
