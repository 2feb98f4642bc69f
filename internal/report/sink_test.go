package report

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPSinkSendsBatch(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/results", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req sinkRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "scanner-secret", req.APIKey)
		assert.Len(t, req.Results, 2)

		fmt.Fprint(w, `{"status":"ok","added":1}`)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, "scanner-secret", time.Second)

	added, err := sink.Send(context.Background(), makeRecords(2))
	require.NoError(t, err)
	assert.Equal(t, 1, added)
}

func TestHTTPSinkAuthRejection(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":"invalid API key"}`)
	}))
	defer srv.Close()

	sink := NewHTTPSink(srv.URL, "wrong", time.Second)

	_, err := sink.Send(context.Background(), makeRecords(1))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid API key")
}

func TestHTTPSinkUnreachableCollector(t *testing.T) {
	sink := NewHTTPSink("http://127.0.0.1:1", "key", 200*time.Millisecond)

	_, err := sink.Send(context.Background(), makeRecords(1))
	assert.Error(t, err)
}
