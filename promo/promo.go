// Package promo decides whether a catalog entry is free now or soon and
// shapes it into a flat record for the report.
package promo

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/scipunch/freegames/fetcher/types"
)

const (
	// WindowLayout is how promotion start and end instants are rendered
	WindowLayout = "2006-01-02 15:04 UTC"

	MaxDescriptionLength = 200
	UnknownTitle         = "Unknown"
)

var ErrNoOffer = errors.New("no primary offer")

// Promotion is a formatted entry ready for the report
type Promotion struct {
	Title         string `json:"title"`
	OriginalPrice string `json:"original_price"`
	URL           string `json:"url"`
	Start         string `json:"start"`
	End           string `json:"end"`
	Description   string `json:"description"`
}

type Classification int

const (
	NotFree Classification = iota
	CurrentlyFree
	UpcomingFree
)

func (c Classification) String() string {
	switch c {
	case CurrentlyFree:
		return "current"
	case UpcomingFree:
		return "upcoming"
	default:
		return "none"
	}
}

// Classify checks the current window first and looks at upcoming offers only
// when the entry is not free right now.
func Classify(e types.CatalogEntry, now time.Time) Classification {
	if IsCurrentlyFree(e, now) {
		return CurrentlyFree
	}
	if IsUpcomingFree(e, now) {
		return UpcomingFree
	}
	return NotFree
}

// IsCurrentlyFree reports whether any offer of the first active group contains now.
// Both window ends are inclusive.
func IsCurrentlyFree(e types.CatalogEntry, now time.Time) bool {
	groups := e.CurrentOffers()
	if len(groups) == 0 {
		return false
	}
	for _, offer := range groups[0].PromotionalOffers {
		start, end, err := window(offer)
		if err != nil {
			continue
		}
		if !now.Before(start) && !now.After(end) {
			return true
		}
	}
	return false
}

// IsUpcomingFree reports whether any offer across all upcoming groups starts after now
func IsUpcomingFree(e types.CatalogEntry, now time.Time) bool {
	for _, group := range e.UpcomingOffers() {
		for _, offer := range group.PromotionalOffers {
			start, err := parseInstant(offer.StartDate)
			if err != nil {
				continue
			}
			if start.After(now) {
				return true
			}
		}
	}
	return false
}

// PrimaryOffer returns the first offer of the first group. Other windows,
// such as concurrent regional offers, are ignored.
func PrimaryOffer(groups []types.OfferGroup) (types.Offer, bool) {
	if len(groups) == 0 || len(groups[0].PromotionalOffers) == 0 {
		return types.Offer{}, false
	}
	return groups[0].PromotionalOffers[0], true
}

// FormatCurrent formats an entry classified as currently free
func FormatCurrent(e types.CatalogEntry) (Promotion, error) {
	return format(e, e.CurrentOffers())
}

// FormatUpcoming formats an entry classified as upcoming free
func FormatUpcoming(e types.CatalogEntry) (Promotion, error) {
	return format(e, e.UpcomingOffers())
}

func format(e types.CatalogEntry, groups []types.OfferGroup) (Promotion, error) {
	offer, ok := PrimaryOffer(groups)
	if !ok {
		return Promotion{}, ErrNoOffer
	}
	start, end, err := window(offer)
	if err != nil {
		return Promotion{}, err
	}
	if end.Before(start) {
		return Promotion{}, fmt.Errorf("promotion ends before it starts: %s < %s", offer.EndDate, offer.StartDate)
	}

	title := e.Title
	if title == "" {
		title = UnknownTitle
	}

	return Promotion{
		Title:         title,
		OriginalPrice: e.Price.TotalPrice.FmtPrice.OriginalPrice,
		URL:           e.URLSlug,
		Start:         start.UTC().Format(WindowLayout),
		End:           end.UTC().Format(WindowLayout),
		Description:   TruncateDescription(e.Description),
	}, nil
}

// TruncateDescription trims surrounding whitespace and keeps at most
// MaxDescriptionLength characters. No ellipsis is added.
func TruncateDescription(s string) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= MaxDescriptionLength {
		return s
	}
	return strings.TrimSpace(string(runes[:MaxDescriptionLength]))
}

func window(offer types.Offer) (time.Time, time.Time, error) {
	start, err := parseInstant(offer.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := parseInstant(offer.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

func parseInstant(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid promotion date '%s': %w", s, err)
	}
	return t, nil
}
