package realtime

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

// Client fetches GTFS-RT protobuf data from URLs or local files
type Client struct {
	httpClient *http.Client
}

// NewClient returns a client with a request timeout
func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Fetch returns the raw bytes behind src, which is an http(s) URL or a file
// path. An empty src yields nil so optional feeds can be left unset.
func (c *Client) Fetch(ctx context.Context, src string) ([]byte, error) {
	if src == "" {
		return nil, nil
	}
	if !strings.HasPrefix(src, "http://") && !strings.HasPrefix(src, "https://") {
		b, err := os.ReadFile(src)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", src, err)
		}
		return b, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", src, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP %d from %s", resp.StatusCode, src)
	}
	return io.ReadAll(resp.Body)
}

// Load fetches both feeds and parses them into an overlay
func (c *Client) Load(ctx context.Context, tripUpdates, alerts string) (*Overlay, error) {
	tu, err := c.Fetch(ctx, tripUpdates)
	if err != nil {
		return nil, fmt.Errorf("trip updates: %w", err)
	}
	sa, err := c.Fetch(ctx, alerts)
	if err != nil {
		return nil, fmt.Errorf("service alerts: %w", err)
	}
	return Parse(tu, sa)
}
