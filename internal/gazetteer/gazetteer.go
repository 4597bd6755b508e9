// Package gazetteer holds the fixed province -> district -> neighborhood table
// used to recognise places in free text and to resolve coordinates to a district.
package gazetteer

import (
	"math"

	"evinburada/internal/model"
	"evinburada/internal/utils"
)

// Level is how specific a matched place is.
type Level int

const (
	LevelNone Level = iota
	LevelProvince
	LevelDistrict
	LevelNeighborhood
)

// Place is a position in the hierarchy. Fields below the matched level are empty.
type Place struct {
	Province     string
	District     string
	Neighborhood string
	Level        Level
}

// District is one district entry with its neighborhoods and centroid.
type District struct {
	Name          string
	Centroid      model.Coordinates
	Neighborhoods []string
}

// Province is one province entry. Districts keep table order.
type Province struct {
	Name      string
	Districts []District
}

// Gazetteer is read-only after construction and safe for concurrent use.
type Gazetteer struct {
	provinces []Province
	folded    map[string]string
}

const earthRadiusKm = 6371.0

// Istanbul is the table the service ships with.
var Istanbul = []Province{
	{
		Name: "İstanbul",
		Districts: []District{
			{
				Name:          "Beşiktaş",
				Centroid:      model.Coordinates{Latitude: 41.0430, Longitude: 29.0070},
				Neighborhoods: []string{"Bebek", "Arnavutköy", "Ortaköy", "Etiler", "Levent", "Gayrettepe", "Dikilitaş"},
			},
			{
				Name:          "Kadıköy",
				Centroid:      model.Coordinates{Latitude: 40.9900, Longitude: 29.0300},
				Neighborhoods: []string{"Moda", "Caddebostan", "Suadiye", "Feneryolu", "Erenköy", "Göztepe", "Bostancı"},
			},
			{
				Name:          "Şişli",
				Centroid:      model.Coordinates{Latitude: 41.0600, Longitude: 28.9870},
				Neighborhoods: []string{"Nişantaşı", "Teşvikiye", "Mecidiyeköy", "Fulya", "Feriköy", "Kurtuluş", "Gülbağ"},
			},
			{
				Name:          "Beylikdüzü",
				Centroid:      model.Coordinates{Latitude: 40.9990, Longitude: 28.6400},
				Neighborhoods: []string{"Adnan Kahveci", "Yakuplu", "Kavaklı", "Gürpınar", "Cumhuriyet", "Barış", "Sahil"},
			},
		},
	},
}

// New builds a gazetteer over provinces. The slice is not copied and must not
// be modified afterwards.
func New(provinces []Province) *Gazetteer {
	g := &Gazetteer{provinces: provinces, folded: make(map[string]string)}
	for _, p := range provinces {
		g.folded[p.Name] = utils.Fold(p.Name)
		for _, d := range p.Districts {
			g.folded[d.Name] = utils.Fold(d.Name)
			for _, n := range d.Neighborhoods {
				g.folded[n] = utils.Fold(n)
			}
		}
	}
	return g
}

// Default returns a gazetteer over the Istanbul table.
func Default() *Gazetteer {
	return New(Istanbul)
}

// Provinces returns province names in table order.
func (g *Gazetteer) Provinces() []string {
	out := make([]string, 0, len(g.provinces))
	for _, p := range g.provinces {
		out = append(out, p.Name)
	}
	return out
}

// Districts returns the districts of province, or nil when it is unknown.
func (g *Gazetteer) Districts(province string) []District {
	for _, p := range g.provinces {
		if p.Name == province {
			return p.Districts
		}
	}
	return nil
}

// Neighborhoods returns the neighborhoods of a district.
func (g *Gazetteer) Neighborhoods(province, district string) []string {
	for _, d := range g.Districts(province) {
		if d.Name == district {
			return d.Neighborhoods
		}
	}
	return nil
}

// FindMostSpecific scans text for known place names. A neighborhood beats a
// district, which beats a province; among equals the first in table order wins.
func (g *Gazetteer) FindMostSpecific(text string) (Place, bool) {
	folded := utils.Fold(text)
	best := Place{}
	consider := func(p Place) {
		if p.Level > best.Level {
			best = p
		}
	}

	for _, p := range g.provinces {
		if utils.ContainsWordPrefix(folded, g.folded[p.Name]) {
			consider(Place{Province: p.Name, Level: LevelProvince})
		}
		for _, d := range p.Districts {
			if utils.ContainsWordPrefix(folded, g.folded[d.Name]) {
				consider(Place{Province: p.Name, District: d.Name, Level: LevelDistrict})
			}
			for _, n := range d.Neighborhoods {
				if utils.ContainsWordPrefix(folded, g.folded[n]) {
					consider(Place{Province: p.Name, District: d.Name, Neighborhood: n, Level: LevelNeighborhood})
				}
			}
		}
	}
	return best, best.Level != LevelNone
}

// NearestDistrict returns the district whose centroid is closest to c and the
// great-circle distance to it in kilometres.
func (g *Gazetteer) NearestDistrict(c model.Coordinates) (Place, float64, bool) {
	best := Place{}
	bestDist := math.Inf(1)
	for _, p := range g.provinces {
		for _, d := range p.Districts {
			dist := Haversine(c, d.Centroid)
			if dist < bestDist {
				bestDist = dist
				best = Place{Province: p.Name, District: d.Name, Level: LevelDistrict}
			}
		}
	}
	if best.Level == LevelNone {
		return Place{}, 0, false
	}
	return best, bestDist, true
}

// Haversine returns the great-circle distance between a and b in kilometres.
func Haversine(a, b model.Coordinates) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := lat2 - lat1
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusKm * math.Asin(math.Min(1, math.Sqrt(h)))
}
