package classify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/user/cloudscope/internal/model"
	"github.com/user/cloudscope/internal/provider"
)

func domainCandidate(t *testing.T, value string) model.Candidate {
	t.Helper()
	c, ok := model.NewDomainCandidate(value)
	require.True(t, ok)
	return c
}

func TestClassifyHerokuByServerHeader(t *testing.T) {
	c := New(provider.Default())

	outcome := model.ProbeOutcome{
		StatusCode: 200,
		Reachable:  true,
		FinalHost:  "myapp.example.com",
		Headers: map[string]string{
			"Server": "Cowboy",
			"Via":    "1.1 vegur",
		},
	}

	key, ok := c.Classify(outcome, domainCandidate(t, "myapp.example.com"))
	require.True(t, ok)
	assert.Equal(t, "heroku", key)
}

func TestClassifyRailwayBySuffix(t *testing.T) {
	c := New(provider.Default())

	outcome := model.ProbeOutcome{
		StatusCode: 404,
		Reachable:  true,
		FinalHost:  "app.up.railway.app",
		Headers:    map[string]string{"Content-Type": "text/plain"},
	}

	key, ok := c.Classify(outcome, domainCandidate(t, "app.up.railway.app"))
	require.True(t, ok)
	assert.Equal(t, "railway", key)
}

func TestClassifyHeaderBeatsSuffix(t *testing.T) {
	c := New(provider.Default())

	// Heroku headers on a vercel hostname: the header match wins because
	// headers are checked first within each provider and heroku precedes
	// vercel in the registry.
	outcome := model.ProbeOutcome{
		Reachable: true,
		FinalHost: "site.vercel.app",
		Headers:   map[string]string{"Server": "cowboy"},
	}

	key, ok := c.Classify(outcome, domainCandidate(t, "site.vercel.app"))
	require.True(t, ok)
	assert.Equal(t, "heroku", key)
}

func TestClassifyRegistryOrderBreaksTies(t *testing.T) {
	reg, err := provider.Load([]provider.Provider{
		{Key: "alpha", Name: "Alpha", HeaderSignatures: []string{"shared-token"}},
		{Key: "beta", Name: "Beta", HeaderSignatures: []string{"shared-token"}},
	})
	require.NoError(t, err)

	c := New(reg)
	outcome := model.ProbeOutcome{
		Reachable: true,
		Headers:   map[string]string{"X-Powered-By": "shared-token"},
	}

	key, ok := c.Classify(outcome, model.Candidate{Value: "1.2.3.4", Kind: model.KindIP})
	require.True(t, ok)
	assert.Equal(t, "alpha", key)
}

func TestClassifyIsDeterministic(t *testing.T) {
	c := New(provider.Default())

	outcome := model.ProbeOutcome{
		Reachable: true,
		FinalHost: "thing.herokuapp.com",
		Headers: map[string]string{
			"Server":        "Cowboy",
			"X-Amz-Cf-Id":   "abc",
			"X-Request-Id":  "123",
			"Cache-Control": "no-store",
		},
	}
	cand := domainCandidate(t, "thing.herokuapp.com")

	first, ok := c.Classify(outcome, cand)
	require.True(t, ok)
	for i := 0; i < 50; i++ {
		key, ok := c.Classify(outcome, cand)
		require.True(t, ok)
		assert.Equal(t, first, key)
	}
}

func TestClassifyUnreachableDomainFallsBackToSuffix(t *testing.T) {
	c := New(provider.Default())

	// No response at all, but the candidate's own name still carries the
	// provider suffix.
	outcome := model.ProbeOutcome{Headers: map[string]string{}}

	key, ok := c.Classify(outcome, domainCandidate(t, "dead.netlify.app"))
	require.True(t, ok)
	assert.Equal(t, "netlify", key)
}

func TestClassifyUnreachableIPHasNoEvidence(t *testing.T) {
	c := New(provider.Default())

	outcome := model.ProbeOutcome{Headers: map[string]string{}}
	cand, ok := model.NewIPCandidate("192.0.2.10")
	require.True(t, ok)

	_, matched := c.Classify(outcome, cand)
	assert.False(t, matched)
}

func TestClassifyNoMatch(t *testing.T) {
	c := New(provider.Default())

	outcome := model.ProbeOutcome{
		Reachable: true,
		FinalHost: "plain.example.org",
		Headers:   map[string]string{"Server": "nginx/1.24"},
	}

	_, matched := c.Classify(outcome, domainCandidate(t, "plain.example.org"))
	assert.False(t, matched)
}

func TestClassifyMatchesCaseInsensitively(t *testing.T) {
	c := New(provider.Default())

	outcome := model.ProbeOutcome{
		Reachable: true,
		FinalHost: "App.Fly.DEV",
		Headers:   map[string]string{"FLY-REQUEST-ID": "01H"},
	}

	key, ok := c.Classify(outcome, domainCandidate(t, "app.fly.dev"))
	require.True(t, ok)
	assert.Equal(t, "fly", key)
}
