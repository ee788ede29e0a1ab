package network

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"market-dashboard/src/models"
)

func newTestHTTPClient(retries int) *HTTPClient {
	c := NewHTTPClient(models.MAPIConfig{RequestTimeout: 5, MaxRetries: retries}, nil)
	c.retryDelay = time.Millisecond
	return c
}

func TestHTTPClient_RetriesGetOn5xx(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	resp, err := newTestHTTPClient(2).Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestHTTPClient_LastStatusReturnedWhenRetriesExhausted(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	resp, err := newTestHTTPClient(1).Do(context.Background(), http.MethodGet, srv.URL, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func TestHTTPClient_PostIsSentOnce(t *testing.T) {
	var calls int32
	var gotBody, gotHeader, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		b, _ := io.ReadAll(r.Body)
		gotBody = string(b)
		gotHeader = r.Header.Get("X-Request-ID")
		gotType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	resp, err := newTestHTTPClient(3).Do(context.Background(), http.MethodPost, srv.URL,
		[]byte(`{"symbol":"AAPL"}`), map[string]string{"X-Request-ID": "abc"})
	require.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
	assert.Equal(t, `{"symbol":"AAPL"}`, gotBody)
	assert.Equal(t, "abc", gotHeader)
	assert.Equal(t, "application/json", gotType)
}

func TestHTTPClient_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := newTestHTTPClient(1).Do(context.Background(), http.MethodGet, url, nil, nil)
	assert.ErrorContains(t, err, "max retries exceeded")
}
