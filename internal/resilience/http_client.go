package resilience

import (
	"context"
	"log/slog"
	"net/http"
	"time"
)

// HTTPClient is a shared HTTP client with connection reuse and circuit
// breaker protection for calls to one external service.
type HTTPClient struct {
	client  *http.Client
	breaker *CircuitBreaker
}

// NewHTTPClient creates a pooled HTTP client guarded by the given breaker.
func NewHTTPClient(maxIdle int, idleTimeout, requestTimeout time.Duration, breaker *CircuitBreaker) *HTTPClient {
	transport := &http.Transport{
		MaxIdleConns:          maxIdle,
		MaxIdleConnsPerHost:   maxIdle,
		IdleConnTimeout:       idleTimeout,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: requestTimeout,
		ExpectContinueTimeout: 1 * time.Second,
	}

	return &HTTPClient{
		client: &http.Client{
			Transport: transport,
			Timeout:   requestTimeout,
		},
		breaker: breaker,
	}
}

// Do executes an HTTP request with circuit breaker protection.
func (hc *HTTPClient) Do(ctx context.Context, method, url string, headers map[string]string) (*http.Response, error) {
	var resp *http.Response

	err := hc.breaker.Call(func() error {
		req, err := http.NewRequestWithContext(ctx, method, url, nil)
		if err != nil {
			return err
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}

		start := time.Now()
		resp, err = hc.client.Do(req)
		duration := time.Since(start)

		if err != nil {
			slog.Warn("Request failed", "url", url, "error", err, "duration_ms", duration.Milliseconds())
			return err
		}

		slog.Debug("Request completed", "url", url, "status", resp.StatusCode, "duration_ms", duration.Milliseconds())
		return nil
	})
	if err != nil {
		return nil, err
	}

	return resp, nil
}

// BreakerState exposes the guarding breaker's state for health reporting.
func (hc *HTTPClient) BreakerState() CircuitState {
	return hc.breaker.State()
}

// Stats returns client statistics for the monitoring endpoints.
func (hc *HTTPClient) Stats() map[string]interface{} {
	return map[string]interface{}{
		"circuit_breaker_state":    hc.breaker.State().String(),
		"circuit_breaker_failures": hc.breaker.Failures(),
	}
}

// Close releases idle connections held by the transport.
func (hc *HTTPClient) Close() {
	if transport, ok := hc.client.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
