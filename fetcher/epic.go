package fetcher

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/scipunch/freegames/fetcher/types"
)

const DefaultURL = "https://store-site-backend-static.ak.epicgames.com/freeGamesPromotions"

// EpicFetcher fetches the promotions feed with a single HTTP GET
type EpicFetcher struct {
	client    *http.Client
	url       string
	userAgent string
}

// NewEpicFetcher creates a fetcher for url. Certificate verification is skipped
// when insecure is set; a zero timeout leaves the request unbounded.
func NewEpicFetcher(url string, insecure bool, timeout time.Duration, userAgent string) *EpicFetcher {
	tr := http.DefaultTransport.(*http.Transport).Clone()
	tr.TLSClientConfig = &tls.Config{InsecureSkipVerify: insecure} //nolint:gosec
	return &EpicFetcher{
		client:    &http.Client{Timeout: timeout, Transport: tr},
		url:       url,
		userAgent: userAgent,
	}
}

// Fetch retrieves and decodes the feed. It never retries.
func (f *EpicFetcher) Fetch(ctx context.Context) (types.Feed, error) {
	var feed types.Feed

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, f.url, nil)
	if err != nil {
		return feed, fmt.Errorf("%w: failed to build request: %w", ErrFetch, err)
	}
	req.Header.Set("Accept", "application/json")
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return feed, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return feed, fmt.Errorf("%w: unexpected status %s", ErrFetch, resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(&feed); err != nil {
		return feed, fmt.Errorf("%w: failed to decode response: %w", ErrFetch, err)
	}

	slog.Debug("fetched promotions feed", "url", f.url, "entries", len(feed.Elements()))
	return feed, nil
}
