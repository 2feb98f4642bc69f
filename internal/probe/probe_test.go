package probe

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

	"github.com/user/cloudscope/internal/model"
)

func TestFetchCollectsMetadata(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Server", "Cowboy")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><head><title>My App</title></head><body>hi</body></html>`)
	}))
	defer srv.Close()

	p := New(time.Second)
	outcome := p.fetch(context.Background(), srv.URL)

	assert.True(t, outcome.Reachable)
	assert.Equal(t, 200, outcome.StatusCode)
	assert.Equal(t, "Cowboy", outcome.Headers["Server"])
	assert.Equal(t, "My App", outcome.Title)
	assert.Equal(t, "127.0.0.1", outcome.FinalHost)
}

func TestFetchFollowsRedirects(t *testing.T) {
	final := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Final", "yes")
		w.WriteHeader(http.StatusOK)
	}))
	defer final.Close()

	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, final.URL, http.StatusFound)
	}))
	defer first.Close()

	p := New(time.Second)
	outcome := p.fetch(context.Background(), first.URL)

	assert.Equal(t, 200, outcome.StatusCode)
	assert.Equal(t, "yes", outcome.Headers["X-Final"])
}

func TestFetchUnreachable(t *testing.T) {
	p := New(200 * time.Millisecond)
	outcome := p.fetch(context.Background(), "http://127.0.0.1:1")

	assert.False(t, outcome.Reachable)
	assert.Equal(t, 0, outcome.StatusCode)
	assert.Empty(t, outcome.Headers)
	assert.Empty(t, outcome.FinalHost)
}

func TestProbeAcceptsSelfSignedCertificates(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Railway-Request-Id", "abc")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	p := New(time.Second)
	outcome := p.fetch(context.Background(), srv.URL)

	assert.True(t, outcome.Reachable)
	assert.Equal(t, "abc", outcome.Headers["X-Railway-Request-Id"])
}

func TestCandidateDispatch(t *testing.T) {
	p := New(100 * time.Millisecond)

	ipCand, ok := model.NewIPCandidate("203.0.113.99")
	require.True(t, ok)
	assert.True(t, ipCand.IsIP())

	// Nothing listens there; the point is that dispatch does not panic
	// and yields the unreachable sentinel.
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	outcome := p.Candidate(ctx, ipCand)
	assert.False(t, outcome.Reachable)
	assert.Equal(t, 0, outcome.StatusCode)
}

func TestExtractTitle(t *testing.T) {
	title := extractTitle("text/html", strings.NewReader(
		`<html><head><title>  Spaced Out  </title></head></html>`))
	assert.Equal(t, "Spaced Out", title)
}

func TestExtractTitleSkipsNonHTML(t *testing.T) {
	title := extractTitle("application/json", strings.NewReader(`{"title":"nope"}`))
	assert.Empty(t, title)
}

func TestExtractTitleCapsLength(t *testing.T) {
	long := strings.Repeat("x", 400)
	title := extractTitle("text/html", strings.NewReader(
		"<html><head><title>"+long+"</title></head></html>"))
	assert.Len(t, title, 200)
}
