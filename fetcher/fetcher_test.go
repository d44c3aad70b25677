package fetcher

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/scipunch/freegames/config"
)

const feedJSON = `{
  "data": {
    "Catalog": {
      "searchStore": {
        "elements": [
          {
            "title": "Alan Wake 2",
            "id": "abc",
            "namespace": "ns",
            "description": "Survival horror",
            "urlSlug": "alan-wake-2",
            "price": {"totalPrice": {"discountPrice": 0, "originalPrice": 5999, "currencyCode": "USD", "fmtPrice": {"originalPrice": "$59.99", "discountPrice": "0"}}},
            "promotions": {
              "promotionalOffers": [{"promotionalOffers": [{"startDate": "2024-01-01T16:00:00.000Z", "endDate": "2024-01-08T16:00:00.000Z", "discountSetting": {"discountType": "PERCENTAGE", "discountPercentage": 0}}]}],
              "upcomingPromotionalOffers": []
            }
          },
          {"title": "No Promo", "promotions": null}
        ]
      }
    }
  }
}`

func TestEpicFetcher_Fetch(t *testing.T) {
	var gotUA string
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(feedJSON))
	}))
	defer srv.Close()

	f := NewEpicFetcher(srv.URL, true, 0, "freegames-test")
	feed, err := f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}

	elements := feed.Elements()
	if len(elements) != 2 {
		t.Fatalf("expected 2 elements, got %d", len(elements))
	}
	first := elements[0]
	if first.Title != "Alan Wake 2" || first.Price.TotalPrice.FmtPrice.OriginalPrice != "$59.99" {
		t.Errorf("unexpected entry: %+v", first)
	}
	if len(first.CurrentOffers()) != 1 || first.CurrentOffers()[0].PromotionalOffers[0].StartDate != "2024-01-01T16:00:00.000Z" {
		t.Errorf("offers not decoded: %+v", first.Promotions)
	}
	if elements[1].Promotions != nil || elements[1].CurrentOffers() != nil {
		t.Error("null promotions should decode to nil")
	}
	if gotUA != "freegames-test" {
		t.Errorf("expected user agent to be sent, got %q", gotUA)
	}
}

func TestEpicFetcher_VerifiesCertificatesWhenAsked(t *testing.T) {
	srv := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(feedJSON))
	}))
	defer srv.Close()

	f := NewEpicFetcher(srv.URL, false, 0, "")
	_, err := f.Fetch(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Fatalf("expected ErrFetch for untrusted certificate, got %v", err)
	}
}

func TestEpicFetcher_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "boom", http.StatusInternalServerError)
			},
		},
		{
			name: "not json",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte("<html>maintenance</html>"))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(tt.handler)
			defer srv.Close()

			_, err := NewEpicFetcher(srv.URL, true, 0, "").Fetch(context.Background())
			if !errors.Is(err, ErrFetch) {
				t.Errorf("expected ErrFetch, got %v", err)
			}
		})
	}
}

func TestEpicFetcher_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewEpicFetcher(url, true, 0, "").Fetch(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Errorf("expected ErrFetch, got %v", err)
	}
}

func TestFileFetcher(t *testing.T) {
	path := filepath.Join(t.TempDir(), "feed.json")
	if err := os.WriteFile(path, []byte(feedJSON), 0644); err != nil {
		t.Fatalf("failed to write feed: %v", err)
	}

	feed, err := NewFileFetcher(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if len(feed.Elements()) != 2 {
		t.Errorf("expected 2 elements, got %d", len(feed.Elements()))
	}

	_, err = NewFileFetcher(filepath.Join(t.TempDir(), "missing.json")).Fetch(context.Background())
	if !errors.Is(err, ErrFetch) {
		t.Errorf("expected ErrFetch for missing file, got %v", err)
	}
}

func TestGetFetcher(t *testing.T) {
	f, err := GetFetcher(config.Source{T: config.HTTPSource})
	if err != nil {
		t.Fatalf("GetFetcher failed: %v", err)
	}
	epic, ok := f.(*EpicFetcher)
	if !ok {
		t.Fatalf("expected *EpicFetcher, got %T", f)
	}
	if epic.url != DefaultURL {
		t.Errorf("expected default url, got %s", epic.url)
	}

	if _, err := GetFetcher(config.Source{T: config.FileSource}); err == nil {
		t.Error("expected error for file source without path")
	}
	if _, err := GetFetcher(config.Source{T: "ftp"}); err == nil {
		t.Error("expected error for unknown source type")
	}
}
