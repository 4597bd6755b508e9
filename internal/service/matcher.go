package service

import (
	"sort"
	"strings"

	"evinburada/internal/model"
	"evinburada/internal/utils"
)

// Match returns the listings that satisfy every set field of f, ordered by
// order. Unset fields impose no constraint and a nil filter keeps the whole
// catalog. Ties keep catalog order. The result is never nil.
func Match(catalog []model.Listing, f *model.SearchFilters, order model.SortOrder) []model.Listing {
	p := newPredicate(f)

	out := make([]model.Listing, 0, len(catalog))
	for _, l := range catalog {
		if p.matches(l) {
			out = append(out, l)
		}
	}

	sortListings(out, order)
	return out
}

type predicate struct {
	f         *model.SearchFilters
	locations []string
	hoods     map[string]struct{}
}

func newPredicate(f *model.SearchFilters) predicate {
	p := predicate{f: f}
	if f == nil {
		return p
	}
	for _, loc := range f.Locations {
		if loc = strings.TrimSpace(loc); loc != "" {
			p.locations = append(p.locations, utils.LowerTR(loc))
		}
	}
	if len(f.Neighborhoods) > 0 {
		p.hoods = make(map[string]struct{}, len(f.Neighborhoods))
		for _, n := range f.Neighborhoods {
			p.hoods[n] = struct{}{}
		}
	}
	return p
}

func (p predicate) matches(l model.Listing) bool {
	f := p.f
	if f == nil {
		return true
	}
	if f.DealType != nil && l.DealType != *f.DealType {
		return false
	}
	if f.RoomCount != nil && !strings.Contains(l.RoomCount, *f.RoomCount) {
		return false
	}
	// only a true flag constrains
	if f.InSite != nil && *f.InSite && !l.InSite {
		return false
	}
	if f.MinPrice != nil && l.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && l.Price > *f.MaxPrice {
		return false
	}
	if f.Province != nil && l.Province != *f.Province {
		return false
	}
	if f.District != nil && l.District != *f.District {
		return false
	}
	if p.hoods != nil {
		if _, ok := p.hoods[l.Neighborhood]; !ok {
			return false
		}
	}
	if len(p.locations) > 0 && !p.matchesLocation(l) {
		return false
	}
	return true
}

func (p predicate) matchesLocation(l model.Listing) bool {
	hood := utils.LowerTR(l.Neighborhood)
	district := utils.LowerTR(l.District)
	for _, loc := range p.locations {
		if strings.Contains(hood, loc) || strings.Contains(district, loc) {
			return true
		}
	}
	return false
}

func sortListings(listings []model.Listing, order model.SortOrder) {
	switch order {
	case model.SortPriceAsc:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price < listings[j].Price
		})
	case model.SortPriceDesc:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].Price > listings[j].Price
		})
	default:
		sort.SliceStable(listings, func(i, j int) bool {
			return listings[i].CreatedAt.After(listings[j].CreatedAt)
		})
	}
}
