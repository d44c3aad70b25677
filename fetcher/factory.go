package fetcher

import (
	"fmt"

	"github.com/scipunch/freegames/config"
)

// GetFetcher creates the fetcher matching the configured source type
func GetFetcher(src config.Source) (FeedFetcher, error) {
	switch src.T {
	case config.HTTPSource:
		url := src.URL
		if url == "" {
			url = DefaultURL
		}
		return NewEpicFetcher(url, src.InsecureSkipVerify, src.Timeout, src.UserAgent), nil
	case config.FileSource:
		if src.Path == "" {
			return nil, fmt.Errorf("source type '%s' requires a path", src.T)
		}
		return NewFileFetcher(src.Path), nil
	default:
		return nil, fmt.Errorf("unknown source type: %s", src.T)
	}
}
