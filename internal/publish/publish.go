// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package publish pushes completed benchmark runs to a shared results
// endpoint so baselines can be compared across machines.
package publish

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/extraction-bench/internal/httputil"
	"github.com/pdiddy/extraction-bench/pkg/types"
)

const defaultTimeout = 30 * time.Second

// Publisher POSTs runs as JSON to a results endpoint.
type Publisher struct {
	client   *http.Client
	endpoint string
	token    string
	agent    string
	retries  int
}

// New builds a Publisher from configuration. The endpoint is required.
func New(cfg types.PublishConfig) (*Publisher, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("publish endpoint is not configured")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	return &Publisher{
		client:   &http.Client{Timeout: timeout},
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		agent:    cfg.UserAgent,
		retries:  cfg.MaxRetries,
	}, nil
}

// Publish sends one run. Rate-limited requests are retried with backoff;
// any remaining non-2xx status is an error carrying the status and body.
func (p *Publisher) Publish(ctx context.Context, run *types.Run) error {
	body, err := json.Marshal(run)
	if err != nil {
		return fmt.Errorf("marshaling run %s: %w", run.ID, err)
	}

	req, err := http.NewRequest(http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating publish request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}
	if p.agent != "" {
		req.Header.Set("User-Agent", p.agent)
	}

	resp, err := httputil.DoWithRetry(ctx, p.client, req, p.retries)
	if err != nil {
		return fmt.Errorf("publishing run %s: %w", run.ID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("results endpoint returned HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	return nil
}
