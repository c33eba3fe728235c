package server

import (
	"context"
	"net/http"
	"strings"
	"time"
)

// WaitForHealthy polls the /health endpoint until it returns 200 OK or the context is cancelled.
// baseURL is the server's base URL (e.g., "http://localhost:8080"); a ws:// URL
// or one ending in /ws is mapped back to its HTTP form.
func WaitForHealthy(ctx context.Context, baseURL string) error {
	healthURL := HTTPBaseURL(baseURL) + "/health"
	client := &http.Client{Timeout: 1 * time.Second}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, healthURL, nil)
		if err != nil {
			return err
		}
		resp, err := client.Do(req)
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// HTTPBaseURL converts a websocket endpoint URL to the server's HTTP base
func HTTPBaseURL(u string) string {
	u = strings.TrimSuffix(strings.TrimSuffix(u, "/"), "/ws")
	switch {
	case strings.HasPrefix(u, "ws://"):
		return "http://" + strings.TrimPrefix(u, "ws://")
	case strings.HasPrefix(u, "wss://"):
		return "https://" + strings.TrimPrefix(u, "wss://")
	}
	return u
}
