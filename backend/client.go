// Package backend fetches pods, nodes and cluster statistics from the
// aggregator HTTP API.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/syrm/podboard/config"
	"github.com/syrm/podboard/dto"
)

const (
	PodsPath  = "/api/k8s/pods"
	StatsPath = "/api/k8s/stats"
	NodesPath = "/api/k8s/nodes"
)

const maxBodyBytes = 32 << 20

const userAgent = "podboard"

// Client talks to the aggregator. It never retries; one call is one request.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	base, err := url.Parse(cfg.Backend.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url: %w", err)
	}

	// never http.DefaultTransport
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		MaxIdleConns:          10,
		MaxIdleConnsPerHost:   4,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}

	var rt http.RoundTripper = transport
	rt = WithAuth(cfg.Backend.Token, rt)
	rt = WithUserAgent(userAgent, rt)
	rt = WithLogging(logger, rt)

	return &Client{
		baseURL: base,
		httpClient: &http.Client{
			Timeout:   cfg.RequestTimeout(),
			Transport: rt,
		},
		logger: logger,
	}, nil
}

// FetchPods returns the pods in backend order.
func (c *Client) FetchPods(ctx context.Context) ([]dto.Pod, error) {
	pods, err := getEnvelope[[]dto.Pod](ctx, c, PodsPath)
	if err != nil {
		return nil, err
	}

	if pods == nil {
		return []dto.Pod{}, nil
	}
	return pods, nil
}

func (c *Client) FetchNodes(ctx context.Context) ([]dto.Node, error) {
	nodes, err := getEnvelope[[]dto.Node](ctx, c, NodesPath)
	if err != nil {
		return nil, err
	}

	if nodes == nil {
		return []dto.Node{}, nil
	}
	return nodes, nil
}

// FetchStats accepts both a raw statistics object and one wrapped in the
// {success, data} envelope.
func (c *Client) FetchStats(ctx context.Context) (dto.Stats, error) {
	body, err := c.get(ctx, StatsPath)
	if err != nil {
		return nil, err
	}

	var probe struct {
		Success *bool           `json:"success"`
		Data    json.RawMessage `json:"data"`
		Error   string          `json:"error"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, reportedFailure(StatsPath, fmt.Errorf("decode body: %w", err))
	}

	if probe.Success != nil {
		if !*probe.Success {
			return nil, reportedFailure(StatsPath, backendMessage(probe.Error))
		}
		body = probe.Data
	}

	var stats dto.Stats
	if err := json.Unmarshal(body, &stats); err != nil {
		return nil, reportedFailure(StatsPath, fmt.Errorf("decode stats: %w", err))
	}

	return stats, nil
}

// getEnvelope fetches path and unwraps its {success, data} envelope. A body
// that does not decode has no success flag and counts as a reported failure.
func getEnvelope[T any](ctx context.Context, c *Client, path string) (T, error) {
	var (
		env  dto.Envelope[T]
		zero T
	)

	body, err := c.get(ctx, path)
	if err != nil {
		return zero, err
	}

	if err := json.Unmarshal(body, &env); err != nil {
		return zero, reportedFailure(path, fmt.Errorf("decode body: %w", err))
	}

	if !env.Success {
		return zero, reportedFailure(path, backendMessage(env.Error))
	}

	return env.Data, nil
}

func (c *Client) get(ctx context.Context, path string) ([]byte, error) {
	endpoint := c.baseURL.JoinPath(path).String()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, networkError(path, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, networkError(path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, networkError(path, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, networkError(path, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, snippet(body)))
	}

	return body, nil
}

func backendMessage(msg string) error {
	if msg == "" {
		return errors.New("success flag not set")
	}
	return errors.New(msg)
}

func snippet(body []byte) string {
	body = bytes.TrimSpace(body)
	if len(body) > 200 {
		return string(body[:200]) + "..."
	}
	return string(body)
}
