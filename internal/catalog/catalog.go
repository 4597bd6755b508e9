// Package catalog holds the read-only listing set the matcher runs over.
package catalog

import (
	"fmt"
	"math/rand"
	"time"

	"evinburada/internal/gazetteer"
	"evinburada/internal/model"
)

// Catalog is an ordered, immutable listing set with an id index.
type Catalog struct {
	listings []model.Listing
	byID     map[string]int
}

// New builds a catalog. Duplicate ids are rejected.
func New(listings []model.Listing) (*Catalog, error) {
	c := &Catalog{
		listings: append([]model.Listing(nil), listings...),
		byID:     make(map[string]int, len(listings)),
	}
	for i, l := range c.listings {
		if _, dup := c.byID[l.ID]; dup {
			return nil, fmt.Errorf("duplicate listing id %q", l.ID)
		}
		c.byID[l.ID] = i
	}
	return c, nil
}

// All returns the listings in catalog order. Callers must not modify the slice.
func (c *Catalog) All() []model.Listing {
	return c.listings
}

// Get looks a listing up by id.
func (c *Catalog) Get(id string) (model.Listing, bool) {
	i, ok := c.byID[id]
	if !ok {
		return model.Listing{}, false
	}
	return c.listings[i], true
}

// Len returns the number of listings.
func (c *Catalog) Len() int {
	return len(c.listings)
}

var (
	roomOptions = []string{"1+1", "2+1", "3+1", "4+1", "1+0"}
	sources     = []model.SourceName{model.SourceHepsiemlak, model.SourceEmlakjet}
	sourceURLs  = map[model.SourceName]string{
		model.SourceHepsiemlak: "https://www.hepsiemlak.com",
		model.SourceEmlakjet:   "https://www.emlakjet.com",
	}
)

// Generate builds a deterministic mock catalog with perDistrict listings for
// every district in g. The same seed and now always yield the same catalog.
func Generate(g *gazetteer.Gazetteer, perDistrict int, seed int64, now time.Time) *Catalog {
	rng := rand.New(rand.NewSource(seed))
	var listings []model.Listing
	id := 1

	for _, province := range g.Provinces() {
		for _, d := range g.Districts(province) {
			if len(d.Neighborhoods) == 0 {
				continue
			}
			for i := 0; i < perDistrict; i++ {
				listings = append(listings, generateListing(rng, id, province, d, now))
				id++
			}
		}
	}

	// ids are sequential so New cannot fail
	c, _ := New(listings)
	return c
}

func generateListing(rng *rand.Rand, id int, province string, d gazetteer.District, now time.Time) model.Listing {
	deal := model.KnownDealTypes[rng.Intn(len(model.KnownDealTypes))]
	neighborhood := d.Neighborhoods[rng.Intn(len(d.Neighborhoods))]
	rooms := roomOptions[rng.Intn(len(roomOptions))]
	inSite := rng.Float64() > 0.4
	source := sources[rng.Intn(len(sources))]
	createdAt := now.AddDate(0, 0, -rng.Intn(30)).Add(-time.Duration(rng.Intn(24*60)) * time.Minute)

	var price int64
	switch deal {
	case model.DealRental:
		price = rng.Int63n(35000) + 15000
	case model.DealDailyRental:
		price = rng.Int63n(4000) + 1500
	default:
		price = rng.Int63n(15000000) + 4000000
	}

	siteTitle := ""
	siteDesc := "Ulaşım araçlarına ve çarşıya yürüme mesafesindedir."
	if inSite {
		siteTitle = "Site İçi "
		siteDesc = "Geniş sosyal olanaklara sahip bir site içerisindedir."
	}

	return model.Listing{
		ID:           fmt.Sprintf("listing-%d", id),
		Title:        fmt.Sprintf("%s Mahallesinde %s %s%s Daire", neighborhood, deal, siteTitle, rooms),
		Price:        price,
		Province:     province,
		District:     d.Name,
		Neighborhood: neighborhood,
		RoomCount:    rooms,
		Area:         rng.Intn(120) + 50,
		DealType:     deal,
		InSite:       inSite,
		SourceName:   source,
		SourceURL:    sourceURLs[source],
		Description: fmt.Sprintf("%s bölgesinin kalbi %s mahallesinde bulunan bu ilan, %s kategorisinde nadir bir fırsattır. %s Şehir hayatının tadını çıkarın.",
			d.Name, neighborhood, deal, siteDesc),
		ImageURL:  fmt.Sprintf("https://picsum.photos/seed/%d/800/600", id+500),
		CreatedAt: createdAt,
	}
}
