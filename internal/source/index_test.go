package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIndexSourceRequiresKey(t *testing.T) {
	_, err := NewIndexSource("", 0, time.Second)
	require.ErrorIs(t, err, ErrMissingAPIKey)
}

func fullPage(prefix string) string {
	var sb strings.Builder
	sb.WriteString(`{"total":1000,"matches":[`)
	for i := 0; i < indexPageSize; i++ {
		if i > 0 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"ip_str":"203.0.113.%d","hostnames":["%s%d.herokuapp.com"]}`,
			i%250, prefix, i)
	}
	sb.WriteString(`]}`)
	return sb.String()
}

func TestIndexSourceScopesQueryToCountry(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/shodan/host/search", r.URL.Path)
		assert.Equal(t, "test-key", r.URL.Query().Get("key"))
		assert.Equal(t, `ssl:"herokuapp.com" country:SA`, r.URL.Query().Get("query"))
		fmt.Fprint(w, `{"total":1,"matches":[{"ip_str":"203.0.113.9","hostnames":[]}]}`)
	}))
	defer srv.Close()

	src, err := NewIndexSourceURL(srv.URL, "test-key", 0, time.Second)
	require.NoError(t, err)

	candidates, err := src.Produce(context.Background(), "sa", testProvider())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.True(t, candidates[0].IsIP())
	assert.Equal(t, "203.0.113.9", candidates[0].Value)
}

func TestIndexSourcePrefersHostnames(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total":1,"matches":[{"ip_str":"203.0.113.9","hostnames":["app.herokuapp.com"]}]}`)
	}))
	defer srv.Close()

	src, err := NewIndexSourceURL(srv.URL, "test-key", 0, time.Second)
	require.NoError(t, err)

	candidates, err := src.Produce(context.Background(), "SA", testProvider())
	require.NoError(t, err)
	require.Len(t, candidates, 1)
	assert.False(t, candidates[0].IsIP())
	assert.Equal(t, "app.herokuapp.com", candidates[0].Value)
}

func TestIndexSourcePagesUntilShortPage(t *testing.T) {
	pages := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pages++
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprint(w, fullPage("a"))
		case "2":
			fmt.Fprint(w, `{"total":101,"matches":[{"ip_str":"198.51.100.1","hostnames":["last.herokuapp.com"]}]}`)
		default:
			t.Errorf("unexpected page request %s", r.URL.Query().Get("page"))
		}
	}))
	defer srv.Close()

	src, err := NewIndexSourceURL(srv.URL, "test-key", 0, time.Second)
	require.NoError(t, err)

	candidates, err := src.Produce(context.Background(), "SA", testProvider())
	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Len(t, candidates, indexPageSize+1)
}

func TestIndexSourceKeepsPartialResultsOnAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "1" {
			fmt.Fprint(w, fullPage("b"))
			return
		}
		http.Error(w, `{"error":"rate limit reached"}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	src, err := NewIndexSourceURL(srv.URL, "test-key", 0, time.Second)
	require.NoError(t, err)

	candidates, err := src.Produce(context.Background(), "SA", testProvider())
	require.NoError(t, err, "mid-run auth failure keeps what was collected")
	assert.Len(t, candidates, indexPageSize)
}

func TestIndexSourceSkipsProvidersWithoutQuery(t *testing.T) {
	src, err := NewIndexSource("test-key", 0, time.Second)
	require.NoError(t, err)

	prov := testProvider()
	prov.IndexQuery = ""

	candidates, err := src.Produce(context.Background(), "SA", prov)
	require.NoError(t, err)
	assert.Empty(t, candidates)
}
