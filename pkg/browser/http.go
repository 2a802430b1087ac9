package browser

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// HTTPSession fetches pages with a plain HTTP client. It is meant for
// environments where no browser can be started.
type HTTPSession struct {
	client *http.Client
}

// NewHTTPSession returns a session backed by its own http.Client.
func NewHTTPSession() *HTTPSession {
	return &HTTPSession{client: &http.Client{Transport: http.DefaultTransport.(*http.Transport).Clone()}}
}

// FetchStatus issues a GET and returns the response status. Redirects are
// followed like a browser navigation would.
func (s *HTTPSession) FetchStatus(ctx context.Context, url string, timeout time.Duration) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("build request for %s: %w", url, err)
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	return resp.StatusCode, nil
}

// Close drops idle connections.
func (s *HTTPSession) Close() error {
	s.client.CloseIdleConnections()
	return nil
}
