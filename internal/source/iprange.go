package source

import (
	"bufio"
	"context"
	"fmt"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
	"github.com/user/cloudscope/internal/util"
)

const (
	ipdenyBase = "https://www.ipdeny.com/ipblocks/data/countries"

	// samplesPerRange caps how many hosts are probed out of any single
	// CIDR block; large allocations are sampled, never enumerated.
	samplesPerRange = 10
)

// RangeSource samples addresses from the CIDR blocks allocated to the
// target country, as published by ipdeny.com zone files.
type RangeSource struct {
	client  *http.Client
	baseURL string
	cap     int
}

// NewRangeSource creates an IP-range sampling source.
func NewRangeSource(cap int, timeout time.Duration) *RangeSource {
	if cap <= 0 {
		cap = DefaultCap
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &RangeSource{
		client:  &http.Client{Timeout: timeout},
		baseURL: ipdenyBase,
		cap:     cap,
	}
}

// NewRangeSourceURL creates a source against a custom endpoint, for tests.
func NewRangeSourceURL(baseURL string, cap int, timeout time.Duration) *RangeSource {
	s := NewRangeSource(cap, timeout)
	s.baseURL = strings.TrimRight(baseURL, "/")
	return s
}

// Name implements Source.
func (s *RangeSource) Name() string { return "ranges" }

// Produce fetches the country's CIDR list and samples evenly spaced
// usable addresses from each range until the cap is reached. The
// provider argument only matters downstream (classification); sampled
// addresses are provider-agnostic.
func (s *RangeSource) Produce(ctx context.Context, country string, prov provider.Provider) ([]model.Candidate, error) {
	ranges := s.countryRanges(ctx, country)

	var all []model.Candidate
	for _, cidr := range ranges {
		for _, ip := range SampleRange(cidr, samplesPerRange) {
			if c, ok := model.NewIPCandidate(ip); ok {
				all = append(all, c)
			}
		}
		if len(all) >= s.cap {
			break
		}
	}
	return dedupe(all, s.cap), nil
}

// countryRanges downloads the zone file for a country. Failures degrade
// to an empty list.
func (s *RangeSource) countryRanges(ctx context.Context, country string) []string {
	url := fmt.Sprintf("%s/%s.zone", s.baseURL, strings.ToLower(country))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil
	}

	resp, err := s.client.Do(req)
	if err != nil {
		util.Warn("range list for %s failed: %v", country, err)
		return nil
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		util.Warn("range list for %s returned status %d", country, resp.StatusCode)
		return nil
	}

	var ranges []string
	scanner := bufio.NewScanner(resp.Body)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ranges = append(ranges, line)
	}
	return ranges
}

// SampleRange returns up to max evenly spaced usable host addresses
// from a CIDR block. Blocks with at most max hosts are returned whole;
// larger blocks are strided at hostCount/max.
func SampleRange(cidr string, max int) []string {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return nil
	}

	ones, bits := ipnet.Mask.Size()
	if bits != 32 {
		// v6 blocks are too sparse to sample blindly.
		return nil
	}

	hostCount := 1 << uint(bits-ones)
	// Skip network and broadcast addresses on blocks that have them.
	usable := hostCount - 2
	if usable < 1 {
		usable = hostCount
	}

	stride := 1
	if usable > max {
		stride = usable / max
	}

	base := ipToUint(ip.Mask(ipnet.Mask))
	first := base
	if hostCount > 2 {
		first = base + 1
	}

	var out []string
	for i := 0; i < usable && len(out) < max; i += stride {
		out = append(out, uintToIP(first+uint32(i)).String())
	}
	return out
}

func ipToUint(ip net.IP) uint32 {
	v4 := ip.To4()
	return uint32(v4[0])<<24 | uint32(v4[1])<<16 | uint32(v4[2])<<8 | uint32(v4[3])
}

func uintToIP(v uint32) net.IP {
	return net.IPv4(byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
