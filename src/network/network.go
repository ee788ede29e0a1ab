package network

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"market-dashboard/src/helpers"
	"market-dashboard/src/logger"
	"market-dashboard/src/models"
)

const defaultRequestTimeout = 10 * time.Second

// -----------------------------------------------------------------------------

// HTTPResponse is a completed exchange. Non-2xx statuses are not errors at
// this layer.
type HTTPResponse struct {
	StatusCode int
	Body       []byte
}

// -----------------------------------------------------------------------------

type HTTPClient struct {
	Config     models.MAPIConfig
	Client     *http.Client
	Logger     *logger.Logger
	retryDelay time.Duration
}

// -----------------------------------------------------------------------------

func NewHTTPClient(cfg models.MAPIConfig, log *logger.Logger) *HTTPClient {
	if log == nil {
		log = logger.NewNopLogger()
	}
	nm := &HTTPClient{
		Config:     cfg,
		Logger:     log,
		retryDelay: time.Second,
	}
	nm.Client = nm.createClient()
	return nm
}

// -----------------------------------------------------------------------------

func (nm *HTTPClient) createClient() *http.Client {
	transport := http.DefaultTransport.(*http.Transport).Clone()

	if nm.Config.Proxy != "" {
		proxyURL, err := helpers.ParseProxy(nm.Config.Proxy)
		if err == nil {
			transport.Proxy = http.ProxyURL(proxyURL)
		} else {
			nm.Logger.Warning("Ignoring invalid proxy %q: %v", nm.Config.Proxy, err)
		}
	}

	timeout := time.Duration(nm.Config.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = defaultRequestTimeout
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}
}

// -----------------------------------------------------------------------------

// Do performs one request. GET requests are retried with a growing pause on
// network errors and 5xx statuses; other methods are sent exactly once so an
// order is never placed twice.
func (nm *HTTPClient) Do(ctx context.Context, method, urlStr string, body []byte, headers map[string]string) (*HTTPResponse, error) {
	maxRetries := 0
	if method == http.MethodGet {
		maxRetries = nm.Config.MaxRetries
	}

	var lastErr error
	for i := 0; i <= maxRetries; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i*i) * nm.retryDelay):
			}
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		}
		req, err := http.NewRequestWithContext(ctx, method, urlStr, reader)
		if err != nil {
			return nil, err
		}
		req.Header.Set("Accept", "application/json")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		for k, v := range headers {
			req.Header.Set(k, v)
		}

		resp, err := nm.Client.Do(req)
		if err != nil {
			lastErr = err
			nm.Logger.Info("Request failed (attempt %d/%d): %v", i+1, maxRetries+1, err)
			continue
		}

		data, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}

		if resp.StatusCode >= 500 && i < maxRetries {
			lastErr = fmt.Errorf("bad status: %d", resp.StatusCode)
			nm.Logger.Info("Bad status %d (attempt %d/%d)", resp.StatusCode, i+1, maxRetries+1)
			continue
		}

		return &HTTPResponse{StatusCode: resp.StatusCode, Body: data}, nil
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}
