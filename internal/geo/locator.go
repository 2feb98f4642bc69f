package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const ipinfoBase = "https://ipinfo.io"

// Locator maps an IP address to a two-letter country code using
// ipinfo.io. Lookups are fallible and uncached: each address is
// geolocated at most once per probe.
type Locator struct {
	client  *http.Client
	baseURL string
	token   string
}

// NewLocator creates a locator. The token may be empty (ipinfo allows
// a small unauthenticated quota).
func NewLocator(token string, timeout time.Duration) *Locator {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Locator{
		client:  &http.Client{Timeout: timeout},
		baseURL: ipinfoBase,
		token:   token,
	}
}

// NewLocatorURL creates a locator against a custom endpoint, for tests.
func NewLocatorURL(baseURL, token string, timeout time.Duration) *Locator {
	l := NewLocator(token, timeout)
	l.baseURL = strings.TrimRight(baseURL, "/")
	return l
}

// Country returns the uppercase ISO 3166-1 alpha-2 country code for an
// address, or false when the lookup fails or yields no country.
func (l *Locator) Country(ctx context.Context, ip string) (string, bool) {
	url := fmt.Sprintf("%s/%s/json", l.baseURL, ip)
	if l.token != "" {
		url += "?token=" + l.token
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", false
	}

	resp, err := l.client.Do(req)
	if err != nil {
		return "", false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", false
	}

	var body struct {
		Country string `json:"country"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", false
	}

	country := strings.ToUpper(strings.TrimSpace(body.Country))
	if len(country) != 2 {
		return "", false
	}
	return country, true
}
