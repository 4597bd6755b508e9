package service

import (
	"time"

	"evinburada/internal/model"
)

// Match reason constants
const (
	ReasonDealTypeMatch  = "İlan tipi uyumlu"
	ReasonRoomCountMatch = "Oda sayısı uyumlu"
	ReasonInSite         = "Site içerisinde"
	ReasonLocationMatch  = "Konum uyumlu"
	ReasonPriceMatch     = "Bütçeye uygun"
	ReasonNewlyListed    = "Yeni ilan"
	ReasonGeneralMatch   = "Genel eşleşme"
)

const newlyListedWindow = 7 * 24 * time.Hour

// Explain annotates matched listings with human-readable reasons for the
// result cards. It does not filter or reorder.
func Explain(listings []model.Listing, filters *model.SearchFilters, now time.Time) []model.ListingSearchResult {
	results := make([]model.ListingSearchResult, 0, len(listings))
	for _, l := range listings {
		results = append(results, model.ListingSearchResult{
			Listing:        l,
			MatchedReasons: matchedReasons(l, filters, now),
		})
	}
	return results
}

// matchedReasons generates human-readable reasons for why this listing matched
func matchedReasons(l model.Listing, filters *model.SearchFilters, now time.Time) []string {
	reasons := []string{}

	if filters != nil {
		if filters.DealType != nil {
			reasons = append(reasons, ReasonDealTypeMatch)
		}
		if filters.RoomCount != nil {
			reasons = append(reasons, ReasonRoomCountMatch)
		}
		if filters.InSite != nil && *filters.InSite && l.InSite {
			reasons = append(reasons, ReasonInSite)
		}
		if filters.Province != nil || filters.District != nil || len(filters.Neighborhoods) > 0 || len(filters.Locations) > 0 {
			reasons = append(reasons, ReasonLocationMatch)
		}
		if filters.MinPrice != nil || filters.MaxPrice != nil {
			reasons = append(reasons, ReasonPriceMatch)
		}
	}

	if age := now.Sub(l.CreatedAt); age >= 0 && age < newlyListedWindow {
		reasons = append(reasons, ReasonNewlyListed)
	}

	if len(reasons) == 0 {
		reasons = append(reasons, ReasonGeneralMatch)
	}
	return reasons
}
