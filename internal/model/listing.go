package model

import (
	"time"
)

// DealType is the commercial category of a listing. The set is open: values
// coming from newer providers are carried verbatim.
type DealType string

const (
	DealRental      DealType = "Kiralık"
	DealSale        DealType = "Satılık"
	DealDailyRental DealType = "Günlük Kiralık"
)

// KnownDealTypes lists the deal types the extractors can emit.
var KnownDealTypes = []DealType{DealRental, DealSale, DealDailyRental}

// IsKnown reports whether d is one of KnownDealTypes.
func (d DealType) IsKnown() bool {
	for _, k := range KnownDealTypes {
		if d == k {
			return true
		}
	}
	return false
}

// SourceName tags where a listing was scraped from.
type SourceName string

const (
	SourceHepsiemlak SourceName = "Hepsiemlak"
	SourceEmlakjet   SourceName = "Emlakjet"
)

// Listing represents a property listing. Listings are built once and never mutated.
type Listing struct {
	ID           string     `json:"id" db:"id"`
	Title        string     `json:"title" db:"title"`
	Price        int64      `json:"price" db:"price"`
	Province     string     `json:"province,omitempty" db:"province"`
	District     string     `json:"location" db:"district"`
	Neighborhood string     `json:"neighborhood" db:"neighborhood"`
	RoomCount    string     `json:"roomCount" db:"room_count"`
	Area         int        `json:"area" db:"area"`
	DealType     DealType   `json:"dealType" db:"deal_type"`
	InSite       bool       `json:"inSite" db:"in_site"`
	SourceName   SourceName `json:"sourceName" db:"source_name"`
	SourceURL    string     `json:"sourceUrl" db:"source_url"`
	Description  string     `json:"description" db:"description"`
	ImageURL     string     `json:"imageUrl" db:"image_url"`
	CreatedAt    time.Time  `json:"createdAt" db:"created_at"`
}

// ListingSearchResult represents a search result with additional metadata
type ListingSearchResult struct {
	Listing
	MatchedReasons []string `json:"matched_reasons"`
}

// Coordinates is a WGS84 position reported by the client.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
