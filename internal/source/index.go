package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
	"github.com/user/cloudscope/internal/util"
)

const (
	shodanBase = "https://api.shodan.io"

	// indexPageSize is Shodan's fixed page size.
	indexPageSize = 100
	indexMaxPages = 5
)

// ErrMissingAPIKey is returned when the index source is constructed
// without a key. This is the one startup error in the pipeline: without
// credentials the strategy can do no work at all.
var ErrMissingAPIKey = errors.New("index source requires an API key")

// IndexSource queries a host-search index (Shodan) with each provider's
// query expression scoped to the target country.
type IndexSource struct {
	client   *http.Client
	baseURL  string
	apiKey   string
	cap      int
	maxPages int
}

// NewIndexSource creates an index-query source. A missing key is a
// hard error, unlike the soft failures during discovery.
func NewIndexSource(apiKey string, cap int, timeout time.Duration) (*IndexSource, error) {
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	if cap <= 0 {
		cap = DefaultCap
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &IndexSource{
		client:   &http.Client{Timeout: timeout},
		baseURL:  shodanBase,
		apiKey:   apiKey,
		cap:      cap,
		maxPages: indexMaxPages,
	}, nil
}

// NewIndexSourceURL creates a source against a custom endpoint, for tests.
func NewIndexSourceURL(baseURL, apiKey string, cap int, timeout time.Duration) (*IndexSource, error) {
	s, err := NewIndexSource(apiKey, cap, timeout)
	if err != nil {
		return nil, err
	}
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s, nil
}

// Name implements Source.
func (s *IndexSource) Name() string { return "index" }

type indexMatch struct {
	IPStr     string   `json:"ip_str"`
	Hostnames []string `json:"hostnames"`
}

type indexPage struct {
	Matches []indexMatch `json:"matches"`
	Total   int          `json:"total"`
}

// Produce pages through the index until the cap, the page limit, or an
// empty page. Upstream auth and rate-limit responses end the loop with
// whatever was collected so far.
func (s *IndexSource) Produce(ctx context.Context, country string, prov provider.Provider) ([]model.Candidate, error) {
	if prov.IndexQuery == "" {
		return nil, nil
	}

	query := fmt.Sprintf("%s country:%s", prov.IndexQuery, strings.ToUpper(country))

	var all []model.Candidate
	for page := 1; page <= s.maxPages && len(all) < s.cap; page++ {
		matches, ok := s.searchPage(ctx, query, page)
		if !ok || len(matches) == 0 {
			break
		}

		for _, m := range matches {
			// Prefer the hostname when the index knows one; the IP is
			// the fallback identity.
			if len(m.Hostnames) > 0 {
				if c, isDomain := model.NewDomainCandidate(m.Hostnames[0]); isDomain {
					all = append(all, c)
					continue
				}
			}
			if c, isIP := model.NewIPCandidate(m.IPStr); isIP {
				all = append(all, c)
			}
		}

		if len(matches) < indexPageSize {
			break
		}
	}
	return dedupe(all, s.cap), nil
}

func (s *IndexSource) searchPage(ctx context.Context, query string, page int) ([]indexMatch, bool) {
	params := url.Values{}
	params.Set("key", s.apiKey)
	params.Set("query", query)
	params.Set("page", fmt.Sprintf("%d", page))

	endpoint := fmt.Sprintf("%s/shodan/host/search?%s", s.baseURL, params.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		util.Warn("index query page %d failed: %v", page, err)
		return nil, false
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusUnauthorized, http.StatusForbidden, http.StatusTooManyRequests:
		util.Warn("index refused page %d with status %d, keeping partial results", page, resp.StatusCode)
		return nil, false
	default:
		util.Warn("index query page %d returned status %d", page, resp.StatusCode)
		return nil, false
	}

	var body indexPage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		util.Warn("index query page %d returned bad JSON: %v", page, err)
		return nil, false
	}
	return body.Matches, true
}
