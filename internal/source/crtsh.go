package source

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
	"github.com/user/cloudscope/internal/util"
)

const crtshBase = "https://crt.sh/"

// CertSource harvests hostnames from certificate-transparency logs via
// the crt.sh JSON search endpoint, one query per provider domain suffix.
type CertSource struct {
	client  *http.Client
	baseURL string
	cap     int
}

// NewCertSource creates a certificate-transparency source.
func NewCertSource(cap int, timeout time.Duration) *CertSource {
	if cap <= 0 {
		cap = DefaultCap
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &CertSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: crtshBase,
		cap:     cap,
	}
}

// NewCertSourceURL creates a source against a custom endpoint, for tests.
func NewCertSourceURL(baseURL string, cap int, timeout time.Duration) *CertSource {
	s := NewCertSource(cap, timeout)
	s.baseURL = baseURL
	return s
}

// Name implements Source.
func (s *CertSource) Name() string { return "cert" }

// Produce queries crt.sh once per provider domain suffix and merges the
// results. The country argument is unused here: geography is decided
// later by the resolver, certificates carry no location.
func (s *CertSource) Produce(ctx context.Context, country string, prov provider.Provider) ([]model.Candidate, error) {
	var all []model.Candidate
	for _, suffix := range prov.DomainSuffixes {
		domains := s.search(ctx, "%"+suffix)
		for _, d := range domains {
			if c, ok := model.NewDomainCandidate(d); ok {
				all = append(all, c)
			}
		}
		if len(all) >= s.cap {
			break
		}
	}
	return dedupe(all, s.cap), nil
}

type crtshEntry struct {
	NameValue string `json:"name_value"`
}

// search runs one crt.sh query. Any upstream failure degrades to an
// empty result; discovery never aborts a run.
func (s *CertSource) search(ctx context.Context, pattern string) []string {
	query := url.Values{}
	query.Set("q", pattern)
	query.Set("output", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		util.Warn("crt.sh query %s failed: %v", pattern, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		util.Warn("crt.sh query %s returned status %d", pattern, resp.StatusCode)
		return nil
	}

	var entries []crtshEntry
	if err := json.NewDecoder(resp.Body).Decode(&entries); err != nil {
		util.Warn("crt.sh query %s returned bad JSON: %v", pattern, err)
		return nil
	}

	var domains []string
	for _, entry := range entries {
		// name_value may join several subjects with newlines, and
		// wildcard entries carry a *. prefix worth stripping.
		for _, name := range strings.Split(entry.NameValue, "\n") {
			name = strings.TrimSpace(name)
			name = strings.TrimPrefix(name, "*.")
			if name != "" {
				domains = append(domains, name)
			}
		}
	}
	return domains
}
