package types

import "context"

// Feed is the promotions payload returned by the storefront
type Feed struct {
	Data FeedData `json:"data"`
}

type FeedData struct {
	Catalog Catalog `json:"Catalog"`
}

type Catalog struct {
	SearchStore SearchStore `json:"searchStore"`
}

type SearchStore struct {
	Elements []CatalogEntry `json:"elements"`
}

// Elements returns catalog entries in feed order
func (f Feed) Elements() []CatalogEntry {
	return f.Data.Catalog.SearchStore.Elements
}

// CatalogEntry represents a single game or product in the feed
type CatalogEntry struct {
	ID          string      `json:"id"`
	Namespace   string      `json:"namespace"`
	Title       string      `json:"title"`
	Description string      `json:"description"`
	URLSlug     string      `json:"urlSlug"`
	ProductSlug string      `json:"productSlug"`
	Price       Price       `json:"price"`
	Promotions  *Promotions `json:"promotions"` // null for entries without any promotion
}

type Price struct {
	TotalPrice TotalPrice `json:"totalPrice"`
}

type TotalPrice struct {
	DiscountPrice int      `json:"discountPrice"`
	OriginalPrice int      `json:"originalPrice"`
	CurrencyCode  string   `json:"currencyCode"`
	FmtPrice      FmtPrice `json:"fmtPrice"`
}

type FmtPrice struct {
	OriginalPrice string `json:"originalPrice"`
	DiscountPrice string `json:"discountPrice"`
}

// Promotions holds active and upcoming offer groups
type Promotions struct {
	PromotionalOffers         []OfferGroup `json:"promotionalOffers"`
	UpcomingPromotionalOffers []OfferGroup `json:"upcomingPromotionalOffers"`
}

// OfferGroup bundles one or more promotion windows (regional or variant specific)
type OfferGroup struct {
	PromotionalOffers []Offer `json:"promotionalOffers"`
}

// Offer is a single promotion window. Dates are ISO-8601 instants with a Z suffix.
type Offer struct {
	StartDate       string          `json:"startDate"`
	EndDate         string          `json:"endDate"`
	DiscountSetting DiscountSetting `json:"discountSetting"`
}

// DiscountSetting describes the price reduction. A percentage of 0 means free.
type DiscountSetting struct {
	DiscountType       string `json:"discountType"`
	DiscountPercentage int    `json:"discountPercentage"`
}

// CurrentOffers returns the active offer groups, nil when the entry has no promotions
func (e CatalogEntry) CurrentOffers() []OfferGroup {
	if e.Promotions == nil {
		return nil
	}
	return e.Promotions.PromotionalOffers
}

// UpcomingOffers returns the future-dated offer groups
func (e CatalogEntry) UpcomingOffers() []OfferGroup {
	if e.Promotions == nil {
		return nil
	}
	return e.Promotions.UpcomingPromotionalOffers
}

// FeedFetcher is an interface for fetching the promotions feed from different sources
type FeedFetcher interface {
	Fetch(ctx context.Context) (Feed, error)
}
