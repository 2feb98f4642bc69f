// Package probe issues best-effort HTTP(S) requests against scan
// candidates and collects response metadata.
package probe

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/user/cloudscope/internal/model"
)

const (
	userAgent   = "Mozilla/5.0 (cloudscope/1.0)"
	maxBodyRead = 256 * 1024
)

// Prober checks candidates over HTTP. Certificate validation is
// relaxed on purpose: misconfigured and self-signed hosts are exactly
// the kind of host a survey should still record.
type Prober struct {
	client *http.Client
}

// New creates a prober with the given per-request timeout.
func New(timeout time.Duration) *Prober {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Prober{
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
				MaxIdleConnsPerHost: 4,
			},
		},
	}
}

// Domain probes a domain candidate over https, following redirects.
// On transport failure the outcome carries status 0 and no headers.
func (p *Prober) Domain(ctx context.Context, domain string) model.ProbeOutcome {
	return p.fetch(ctx, "https://"+domain)
}

// IP probes an address candidate, trying plain http before https;
// the first scheme that answers wins.
func (p *Prober) IP(ctx context.Context, ip string) model.ProbeOutcome {
	for _, scheme := range []string{"http", "https"} {
		outcome := p.fetch(ctx, fmt.Sprintf("%s://%s", scheme, ip))
		if outcome.Reachable {
			return outcome
		}
	}
	return model.ProbeOutcome{Headers: map[string]string{}}
}

// Candidate dispatches on the candidate kind.
func (p *Prober) Candidate(ctx context.Context, c model.Candidate) model.ProbeOutcome {
	if c.IsIP() {
		return p.IP(ctx, c.Value)
	}
	return p.Domain(ctx, c.Value)
}

func (p *Prober) fetch(ctx context.Context, url string) model.ProbeOutcome {
	outcome := model.ProbeOutcome{Headers: map[string]string{}}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return outcome
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return outcome
	}
	defer resp.Body.Close()

	outcome.Reachable = true
	outcome.StatusCode = resp.StatusCode
	for key := range resp.Header {
		outcome.Headers[key] = resp.Header.Get(key)
	}
	if resp.Request != nil && resp.Request.URL != nil {
		outcome.FinalHost = resp.Request.URL.Hostname()
	}
	outcome.Title = extractTitle(resp.Header.Get("Content-Type"), resp.Body)

	return outcome
}

// extractTitle pulls the page <title> out of an HTML body. Non-HTML
// responses and parse failures yield an empty title.
func extractTitle(contentType string, body io.Reader) string {
	if contentType != "" && !strings.Contains(contentType, "html") {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(body, maxBodyRead))
	if err != nil {
		return ""
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	if len(title) > 200 {
		title = title[:200]
	}
	return title
}
