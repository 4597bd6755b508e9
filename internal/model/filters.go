package model

// SearchFilters represents structured search filters accumulated across a
// conversation or edited manually. A nil field imposes no constraint.
type SearchFilters struct {
	Locations     []string  `json:"locations,omitempty"`
	Province      *string   `json:"province,omitempty"`
	District      *string   `json:"district,omitempty"`
	Neighborhoods []string  `json:"neighborhoods,omitempty"`
	DealType      *DealType `json:"dealType,omitempty"`
	RoomCount     *string   `json:"roomCount,omitempty"`
	InSite        *bool     `json:"inSite,omitempty"`
	MinPrice      *int64    `json:"minPrice,omitempty"`
	MaxPrice      *int64    `json:"maxPrice,omitempty"`
}

// IsEmpty reports whether no field is set.
func (f *SearchFilters) IsEmpty() bool {
	if f == nil {
		return true
	}
	return len(f.Locations) == 0 &&
		f.Province == nil &&
		f.District == nil &&
		len(f.Neighborhoods) == 0 &&
		f.DealType == nil &&
		f.RoomCount == nil &&
		f.InSite == nil &&
		f.MinPrice == nil &&
		f.MaxPrice == nil
}

// Clone returns a deep copy.
func (f *SearchFilters) Clone() *SearchFilters {
	if f == nil {
		return &SearchFilters{}
	}
	c := &SearchFilters{
		Province:  cloneString(f.Province),
		District:  cloneString(f.District),
		RoomCount: cloneString(f.RoomCount),
		InSite:    cloneBool(f.InSite),
		MinPrice:  cloneInt64(f.MinPrice),
		MaxPrice:  cloneInt64(f.MaxPrice),
	}
	if f.DealType != nil {
		d := *f.DealType
		c.DealType = &d
	}
	if f.Locations != nil {
		c.Locations = append([]string(nil), f.Locations...)
	}
	if f.Neighborhoods != nil {
		c.Neighborhoods = append([]string(nil), f.Neighborhoods...)
	}
	return c
}

// Merge folds update into f. Scalars set in update overwrite f; Locations and
// Neighborhoods are unioned. Fields update leaves unset are kept, except that
// moving to another province or district drops the finer levels of the old one.
func (f *SearchFilters) Merge(update *SearchFilters) {
	if update == nil {
		return
	}
	if update.Province != nil && f.Province != nil && *update.Province != *f.Province && update.District == nil {
		f.District = nil
		f.Neighborhoods = nil
	}
	if update.District != nil && f.District != nil && *update.District != *f.District {
		f.Neighborhoods = nil
	}
	if update.Province != nil {
		f.Province = cloneString(update.Province)
	}
	if update.District != nil {
		f.District = cloneString(update.District)
	}
	if update.DealType != nil {
		d := *update.DealType
		f.DealType = &d
	}
	if update.RoomCount != nil {
		f.RoomCount = cloneString(update.RoomCount)
	}
	if update.InSite != nil {
		f.InSite = cloneBool(update.InSite)
	}
	if update.MinPrice != nil {
		f.MinPrice = cloneInt64(update.MinPrice)
	}
	if update.MaxPrice != nil {
		f.MaxPrice = cloneInt64(update.MaxPrice)
	}
	f.Locations = unionStrings(f.Locations, update.Locations)
	f.Neighborhoods = unionStrings(f.Neighborhoods, update.Neighborhoods)
}

func unionStrings(base, extra []string) []string {
	if len(extra) == 0 {
		return base
	}
	seen := make(map[string]struct{}, len(base)+len(extra))
	for _, s := range base {
		seen[s] = struct{}{}
	}
	for _, s := range extra {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		base = append(base, s)
	}
	return base
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneBool(p *bool) *bool {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt64(p *int64) *int64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// SortOrder selects the result ordering.
type SortOrder string

const (
	SortNewest    SortOrder = "newest"
	SortPriceAsc  SortOrder = "price_asc"
	SortPriceDesc SortOrder = "price_desc"
)

// ParseSortOrder maps a request value to a SortOrder, falling back to def.
func ParseSortOrder(s string, def SortOrder) SortOrder {
	switch SortOrder(s) {
	case SortNewest, SortPriceAsc, SortPriceDesc:
		return SortOrder(s)
	}
	return def
}
