package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/scipunch/freegames/fetcher/types"
	"github.com/scipunch/freegames/filter"
	"github.com/scipunch/freegames/promo"
)

// TimestampLayout matches an ISO-8601 UTC instant with microseconds
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Report is the document passed from the fetch stage to the renderer
type Report struct {
	Timestamp         string            `json:"timestamp"`
	CurrentFreeGames  []promo.Promotion `json:"current_free_games"`
	UpcomingFreeGames []promo.Promotion `json:"upcoming_free_games"`
}

// FailureDocument is written instead of a report when the feed could not be fetched
type FailureDocument struct {
	Error string `json:"error"`
}

// Empty reports whether there is nothing to notify about
func (r Report) Empty() bool {
	return len(r.CurrentFreeGames) == 0 && len(r.UpcomingFreeGames) == 0
}

// Assembler turns catalog entries into a Report
type Assembler struct {
	Filters     *filter.FilterPipeline // optional
	FilterNames []string
}

// Assemble classifies entries in feed order. now is used for every
// classification and as the report timestamp.
func (a Assembler) Assemble(entries []types.CatalogEntry, now time.Time) Report {
	rep := Report{
		Timestamp:         now.UTC().Format(TimestampLayout),
		CurrentFreeGames:  []promo.Promotion{},
		UpcomingFreeGames: []promo.Promotion{},
	}

	for _, entry := range entries {
		class := promo.Classify(entry, now)
		if class == promo.NotFree {
			continue
		}

		offers := entry.CurrentOffers()
		format := promo.FormatCurrent
		if class == promo.UpcomingFree {
			offers = entry.UpcomingOffers()
			format = promo.FormatUpcoming
		}

		if a.Filters != nil {
			if ok, reason := a.Filters.ShouldInclude(entry, offers, a.FilterNames); !ok {
				slog.Debug("entry filtered out", "title", entry.Title, "reason", reason)
				continue
			}
		}

		p, err := format(entry)
		if err != nil {
			slog.Warn("skipping malformed promotion", "title", entry.Title, "id", entry.ID, "class", class, "error", err)
			continue
		}

		if class == promo.CurrentlyFree {
			rep.CurrentFreeGames = append(rep.CurrentFreeGames, p)
		} else {
			rep.UpcomingFreeGames = append(rep.UpcomingFreeGames, p)
		}
	}

	slog.Info("report assembled",
		"entries", len(entries),
		"current", len(rep.CurrentFreeGames),
		"upcoming", len(rep.UpcomingFreeGames))
	return rep
}

// Encode writes v as indented JSON without escaping non-ASCII or HTML characters
func Encode(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// Marshal is Encode into a byte slice
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
