package fetcher

import (
	"errors"

	"github.com/scipunch/freegames/fetcher/types"
)

// ErrFetch marks any failure to obtain the promotions feed
var ErrFetch = errors.New("failed to fetch promotions feed")

type (
	Feed         = types.Feed
	CatalogEntry = types.CatalogEntry
	FeedFetcher  = types.FeedFetcher
)
