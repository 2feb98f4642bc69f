// Package model defines core data structures for cloudscope.
package model

import (
	"net"
	"strings"
	"time"
)

// CandidateKind distinguishes domain candidates from raw IP candidates.
type CandidateKind int

const (
	KindDomain CandidateKind = iota
	KindIP
)

// Candidate is a single scan target produced by a discovery source:
// either a domain name or a raw IP address.
type Candidate struct {
	Value string        `json:"value"`
	Kind  CandidateKind `json:"kind"`
}

// NewDomainCandidate returns a domain candidate, or false if the value
// is not a plausible hostname.
func NewDomainCandidate(value string) (Candidate, bool) {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" || !strings.Contains(value, ".") {
		return Candidate{}, false
	}
	return Candidate{Value: value, Kind: KindDomain}, true
}

// NewIPCandidate returns an IP candidate, or false if the value does not
// parse as an IP address.
func NewIPCandidate(value string) (Candidate, bool) {
	if net.ParseIP(value) == nil {
		return Candidate{}, false
	}
	return Candidate{Value: value, Kind: KindIP}, true
}

// IsIP reports whether the candidate is a raw IP address.
func (c Candidate) IsIP() bool {
	return c.Kind == KindIP
}

// ProbeOutcome is the result of attempting to reach one candidate.
// StatusCode 0 means the host never answered over HTTP.
type ProbeOutcome struct {
	StatusCode int               `json:"status_code"`
	Headers    map[string]string `json:"headers"`
	FinalHost  string            `json:"final_host"`
	Title      string            `json:"title"`
	Reachable  bool              `json:"reachable"`
}

// HostRecord is a classified scan result as reported to the collector.
// Domain is empty for results discovered by IP sampling.
type HostRecord struct {
	ID           int64             `json:"id,omitempty"`
	IP           string            `json:"ip"`
	Domain       string            `json:"domain,omitempty"`
	Provider     string            `json:"provider"`
	Country      string            `json:"country,omitempty"`
	Headers      map[string]string `json:"headers"`
	StatusCode   int               `json:"status_code"`
	Title        string            `json:"title,omitempty"`
	Selected     bool              `json:"selected,omitempty"`
	DiscoveredAt time.Time         `json:"discovered_at,omitempty"`
}

// HostFilter narrows host listings.
type HostFilter struct {
	Provider     string
	Country      string
	SelectedOnly bool
	Page         int
	PerPage      int
}

// HostPage is one page of a filtered host listing.
type HostPage struct {
	Hosts []HostRecord `json:"hosts"`
	Total int          `json:"total"`
	Page  int          `json:"page"`
	Pages int          `json:"pages"`
}

// ProviderCount is an aggregate row for the stats endpoint.
type ProviderCount struct {
	Key   string `json:"key"`
	Count int    `json:"count"`
}

// Stats summarises the collector database.
type Stats struct {
	Total      int             `json:"total"`
	Selected   int             `json:"selected"`
	ByProvider []ProviderCount `json:"by_provider"`
	ByCountry  []ProviderCount `json:"by_country"`
}

// ScanSummary is the per-provider outcome of one scan run.
type ScanSummary struct {
	Provider   string        `json:"provider"`
	Candidates int           `json:"candidates"`
	Found      int           `json:"found"`
	Reported   int           `json:"reported"`
	Elapsed    time.Duration `json:"elapsed"`
}
