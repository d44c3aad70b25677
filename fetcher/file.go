package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/scipunch/freegames/fetcher/types"
)

// FileFetcher reads a previously saved feed from disk
type FileFetcher struct {
	path string
}

func NewFileFetcher(path string) *FileFetcher {
	return &FileFetcher{path: path}
}

func (f *FileFetcher) Fetch(_ context.Context) (types.Feed, error) {
	var feed types.Feed
	dat, err := os.ReadFile(f.path)
	if err != nil {
		return feed, fmt.Errorf("%w: %w", ErrFetch, err)
	}
	if err := json.Unmarshal(dat, &feed); err != nil {
		return feed, fmt.Errorf("%w: failed to decode '%s': %w", ErrFetch, f.path, err)
	}
	return feed, nil
}
