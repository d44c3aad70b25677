package filter

import (
	"log/slog"
	"regexp"

	"github.com/scipunch/freegames/config"
	"github.com/scipunch/freegames/fetcher/types"
	"github.com/scipunch/freegames/promo"
)

// FilterPipeline applies a series of named filters to catalog entries
type FilterPipeline struct {
	filters map[string]*CompiledFilter
}

// CompiledFilter contains compiled regex patterns for efficient matching
type CompiledFilter struct {
	config          config.Filter
	excludePatterns []*regexp.Regexp
}

// NewFilterPipeline creates a new filter pipeline from config
func NewFilterPipeline(filtersConfig map[string]config.Filter) (*FilterPipeline, error) {
	compiled := make(map[string]*CompiledFilter)

	for name, filterCfg := range filtersConfig {
		cf := &CompiledFilter{
			config:          filterCfg,
			excludePatterns: make([]*regexp.Regexp, 0, len(filterCfg.ExcludePatterns)),
		}

		for _, pattern := range filterCfg.ExcludePatterns {
			re, err := regexp.Compile(pattern)
			if err != nil {
				slog.Warn("invalid regex pattern in filter", "filter", name, "pattern", pattern, "error", err)
				continue
			}
			cf.excludePatterns = append(cf.excludePatterns, re)
		}

		compiled[name] = cf
	}

	return &FilterPipeline{filters: compiled}, nil
}

// ShouldInclude returns true if the entry passes all filters in the pipeline.
// offers are the groups the entry was classified by.
func (fp *FilterPipeline) ShouldInclude(entry types.CatalogEntry, offers []types.OfferGroup, filterNames []string) (bool, string) {
	if len(filterNames) == 0 {
		return true, ""
	}

	for _, filterName := range filterNames {
		filter, exists := fp.filters[filterName]
		if !exists {
			slog.Warn("filter not found, skipping", "filter_name", filterName)
			continue
		}

		if shouldInclude, reason := fp.applyFilter(entry, offers, filter, filterName); !shouldInclude {
			return false, reason
		}
	}

	return true, ""
}

func (fp *FilterPipeline) applyFilter(entry types.CatalogEntry, offers []types.OfferGroup, filter *CompiledFilter, filterName string) (bool, string) {
	text := entry.Title + " " + entry.Description

	for i, pattern := range filter.excludePatterns {
		if pattern.MatchString(text) {
			return false, filterName + ":exclude_pattern[" + filter.config.ExcludePatterns[i] + "]"
		}
	}

	// Discounted-but-not-free promotions share the feed with giveaways
	if filter.config.FreeOnly {
		offer, ok := promo.PrimaryOffer(offers)
		if !ok || offer.DiscountSetting.DiscountPercentage != 0 {
			return false, filterName + ":free_only"
		}
	}

	return true, ""
}
