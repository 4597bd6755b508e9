package service

import (
	"testing"

	"evinburada/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExplain(t *testing.T) {
	tests := []struct {
		name    string
		listing model.Listing
		filters *model.SearchFilters
		want    []string
	}{
		{
			name:    "no filters on an old listing",
			listing: testListing("x", "Şişli", "Fulya", model.DealSale, "3+1", 1, false, 30),
			filters: nil,
			want:    []string{ReasonGeneralMatch},
		},
		{
			name:    "fresh listing",
			listing: testListing("x", "Şişli", "Fulya", model.DealSale, "3+1", 1, false, 2),
			filters: &model.SearchFilters{},
			want:    []string{ReasonNewlyListed},
		},
		{
			name:    "every criterion",
			listing: testListing("x", "Kadıköy", "Moda", model.DealRental, "2+1", 30000, true, 30),
			filters: &model.SearchFilters{
				District:  stringPtr("Kadıköy"),
				DealType:  dealPtr(model.DealRental),
				RoomCount: stringPtr("2+1"),
				InSite:    boolPtr(true),
				MaxPrice:  int64Ptr(40000),
			},
			want: []string{ReasonDealTypeMatch, ReasonRoomCountMatch, ReasonInSite, ReasonLocationMatch, ReasonPriceMatch},
		},
		{
			name:    "in site false gives no reason",
			listing: testListing("x", "Kadıköy", "Moda", model.DealRental, "2+1", 30000, true, 30),
			filters: &model.SearchFilters{InSite: boolPtr(false)},
			want:    []string{ReasonGeneralMatch},
		},
		{
			name:    "free text locations",
			listing: testListing("x", "Kadıköy", "Moda", model.DealRental, "2+1", 30000, false, 30),
			filters: &model.SearchFilters{Locations: []string{"moda"}},
			want:    []string{ReasonLocationMatch},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Explain([]model.Listing{tt.listing}, tt.filters, baseTime)
			require.Len(t, got, 1)
			assert.Equal(t, tt.listing.ID, got[0].ID)
			assert.Equal(t, tt.want, got[0].MatchedReasons)
		})
	}
}

func TestExplain_PreservesOrder(t *testing.T) {
	listings := Match(testCatalog(), nil, model.SortPriceDesc)
	results := Explain(listings, nil, baseTime)
	assert.Equal(t, ids(listings), resultIDs(results))

	assert.Empty(t, Explain(nil, nil, baseTime))
	assert.NotNil(t, Explain(nil, nil, baseTime))
}
