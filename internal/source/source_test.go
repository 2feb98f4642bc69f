package source

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/user/cloudscope/internal/model"
)

var (
	_ Source = (*CertSource)(nil)
	_ Source = (*RangeSource)(nil)
	_ Source = (*IndexSource)(nil)
)

func mustDomains(t *testing.T, values []string) []model.Candidate {
	t.Helper()
	out := make([]model.Candidate, 0, len(values))
	for _, v := range values {
		c, ok := model.NewDomainCandidate(v)
		require.True(t, ok, "bad test domain %q", v)
		out = append(out, c)
	}
	return out
}
