// Package classify assigns a provider label to probe results using the
// signature registry. Matching is deliberately plain substring work:
// provider fingerprints are unstable heuristics, not protocol fields,
// and a transparent rule beats a clever one here.
package classify

import (
	"sort"
	"strings"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
)

// Classifier matches probe outcomes against a provider registry.
type Classifier struct {
	registry *provider.Registry
}

// New creates a classifier over the given registry.
func New(reg *provider.Registry) *Classifier {
	return &Classifier{registry: reg}
}

// Classify returns the key of the first provider whose header or domain
// signature matches, in registry order. The second return is false when
// no provider matches.
func (c *Classifier) Classify(outcome model.ProbeOutcome, candidate model.Candidate) (string, bool) {
	flat := flattenHeaders(outcome.Headers)
	host := effectiveHost(outcome, candidate)

	for _, p := range c.registry.All() {
		if matchAny(flat, p.HeaderSignatures) {
			return p.Key, true
		}
		if matchAny(host, p.DomainSuffixes) {
			return p.Key, true
		}
	}
	return "", false
}

// effectiveHost is the hostname the classifier inspects: the final host
// after redirects when the probe connected, otherwise the candidate's
// own domain (an unreachable host can still carry a telling suffix).
func effectiveHost(outcome model.ProbeOutcome, candidate model.Candidate) string {
	if outcome.FinalHost != "" {
		return strings.ToLower(outcome.FinalHost)
	}
	if !candidate.IsIP() {
		return strings.ToLower(candidate.Value)
	}
	return ""
}

// flattenHeaders renders headers as one lowercase "key=value" blob with
// keys in sorted order, so matching is independent of map iteration.
func flattenHeaders(headers map[string]string) string {
	if len(headers) == 0 {
		return ""
	}

	keys := make([]string, 0, len(headers))
	for k := range headers {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var sb strings.Builder
	for _, k := range keys {
		sb.WriteString(strings.ToLower(k))
		sb.WriteByte('=')
		sb.WriteString(strings.ToLower(headers[k]))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func matchAny(haystack string, signatures []string) bool {
	if haystack == "" {
		return false
	}
	for _, sig := range signatures {
		if sig == "" {
			continue
		}
		if strings.Contains(haystack, strings.ToLower(sig)) {
			return true
		}
	}
	return false
}
