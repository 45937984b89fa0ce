package sender

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"logbull/internal/models"
)

const maxResponseBytes = 1 << 20

func newHTTPClient(timeout time.Duration, maxConns int) *http.Client {
	dialer := &net.Dialer{
		Timeout:   timeout,
		KeepAlive: 30 * time.Second,
	}
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           dialer.DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
			MaxIdleConnsPerHost:   maxConns,
			IdleConnTimeout:       90 * time.Second,
		},
	}
}

// endpointURL builds {host}/api/v1/logs/receiving/{projectID}.
func endpointURL(host, projectID string) string {
	return strings.TrimRight(strings.TrimSpace(host), "/") +
		"/api/v1/logs/receiving/" + strings.TrimSpace(projectID)
}

func encodeBatch(batch models.LogBatch) ([]byte, error) {
	body, err := json.Marshal(batch)
	if err != nil {
		return nil, fmt.Errorf("failed to encode batch: %w", err)
	}
	return body, nil
}

type httpResult struct {
	status int
	body   []byte
}

// post sends one encoded batch. A non-nil error means no response was
// received at all.
func (s *Sender) post(ctx context.Context, body []byte) (*httpResult, error) {
	// connect and read are each bounded by HTTPTimeout
	ctx, cancel := context.WithTimeout(ctx, 2*s.opts.HTTPTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	if key := strings.TrimSpace(s.cfg.APIKey); key != "" {
		req.Header.Set("X-API-Key", key)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	return &httpResult{status: resp.StatusCode, body: respBody}, nil
}

func isSuccess(status int) bool {
	return status == http.StatusOK || status == http.StatusAccepted
}
