package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/user/cloudscope/internal/model"
)

// HTTPSink posts batches to the collector's /api/results endpoint,
// authenticated by a shared secret carried in the request body.
type HTTPSink struct {
	client   *http.Client
	endpoint string
	apiKey   string
}

// NewHTTPSink creates a sink for the given collector base URL.
func NewHTTPSink(endpoint, apiKey string, timeout time.Duration) *HTTPSink {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPSink{
		client:   &http.Client{Timeout: timeout},
		endpoint: strings.TrimRight(endpoint, "/"),
		apiKey:   apiKey,
	}
}

type sinkRequest struct {
	Results []model.HostRecord `json:"results"`
	APIKey  string             `json:"api_key"`
}

type sinkResponse struct {
	Status string `json:"status"`
	Added  int    `json:"added"`
	Error  string `json:"error"`
}

// Send implements Sink.
func (s *HTTPSink) Send(ctx context.Context, records []model.HostRecord) (int, error) {
	payload, err := json.Marshal(sinkRequest{Results: records, APIKey: s.apiKey})
	if err != nil {
		return 0, fmt.Errorf("failed to encode batch: %w", err)
	}

	url := s.endpoint + "/api/results"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("collector unreachable: %w", err)
	}
	defer resp.Body.Close()

	var body sinkResponse
	if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr != nil && resp.StatusCode == http.StatusOK {
		return 0, fmt.Errorf("collector returned bad JSON: %w", decodeErr)
	}

	if resp.StatusCode != http.StatusOK {
		if body.Error != "" {
			return 0, fmt.Errorf("collector rejected batch: %s (status %d)", body.Error, resp.StatusCode)
		}
		return 0, fmt.Errorf("collector rejected batch with status %d", resp.StatusCode)
	}

	return body.Added, nil
}
