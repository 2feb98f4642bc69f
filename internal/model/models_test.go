package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDomainCandidate(t *testing.T) {
	c, ok := NewDomainCandidate("  App.HEROKUAPP.com ")
	require.True(t, ok)
	assert.Equal(t, "app.herokuapp.com", c.Value)
	assert.False(t, c.IsIP())
}

func TestNewDomainCandidateRejectsJunk(t *testing.T) {
	for _, v := range []string{"", "   ", "localhost"} {
		_, ok := NewDomainCandidate(v)
		assert.False(t, ok, "value %q", v)
	}
}

func TestNewIPCandidate(t *testing.T) {
	c, ok := NewIPCandidate("203.0.113.7")
	require.True(t, ok)
	assert.True(t, c.IsIP())
	assert.Equal(t, "203.0.113.7", c.Value)
}

func TestNewIPCandidateRejectsNonAddresses(t *testing.T) {
	for _, v := range []string{"", "app.fly.dev", "999.1.1.1"} {
		_, ok := NewIPCandidate(v)
		assert.False(t, ok, "value %q", v)
	}
}
