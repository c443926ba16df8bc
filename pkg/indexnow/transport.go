package indexnow

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/FranksOps/indexnow/pkg/httpclient"
)

// Transport delivers a serialized payload to an IndexNow endpoint.
type Transport interface {
	Post(ctx context.Context, endpoint string, payload any) error
}

// HTTPTransportConfig configures an HTTPTransport.
type HTTPTransportConfig struct {
	// Timeout bounds the whole exchange (0 = httpclient default).
	Timeout   time.Duration
	UserAgent string
	// HostHeader, when set, is sent as the Host header on every request
	// regardless of the endpoint. When empty the Host is taken from the endpoint.
	HostHeader string
	// RoundTripper replaces the default network transport, e.g. in tests.
	RoundTripper http.RoundTripper
}

// HTTPTransport POSTs JSON payloads and classifies the outcome.
// It is safe for concurrent use.
type HTTPTransport struct {
	client     *httpclient.Client
	hostHeader string
}

// NewHTTPTransport builds an HTTPTransport on top of httpclient.
func NewHTTPTransport(cfg HTTPTransportConfig) *HTTPTransport {
	return &HTTPTransport{
		client: httpclient.New(httpclient.Config{
			Timeout:   cfg.Timeout,
			UserAgent: cfg.UserAgent,
			Transport: cfg.RoundTripper,
		}),
		hostHeader: cfg.HostHeader,
	}
}

// Post sends one HTTP POST to endpoint with payload encoded as JSON.
// A 200 response yields nil; any other status yields a KindStatus *Error
// carrying the response body; anything that prevents a response yields a
// KindConnection *Error. Nothing is retried.
func (t *HTTPTransport) Post(ctx context.Context, endpoint string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return connectionError(fmt.Errorf("encode payload: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return connectionError(err)
	}
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	if t.hostHeader != "" {
		req.Host = t.hostHeader
	}

	resp, err := t.client.Do(ctx, req)
	if err != nil {
		return connectionError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	text, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindStatus, StatusCode: resp.StatusCode, Err: err}
	}
	return statusError(resp.StatusCode, string(text))
}
