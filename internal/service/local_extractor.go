package service

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"evinburada/internal/gazetteer"
	"evinburada/internal/model"
	"evinburada/internal/utils"
)

// Keyword sets are matched against folded text, so diacritics are optional.
var (
	resetKeywords     = []string{"sıfırla", "baştan", "temizle", "yeni arama", "reset", "start over"}
	proximityKeywords = []string{"yakın", "etraf", "çevrem", "konumum", "near me", "nearby", "around me"}
	dailyKeywords     = []string{"günlük", "gecelik", "daily", "nightly"}
	rentalKeywords    = []string{"kiralık", "kirada", "rent"}
	saleKeywords      = []string{"satılık", "satın", "for sale"}
	saleWords         = []string{"buy", "buying", "purchase"}
	siteKeywords      = []string{"site", "sitesi", "gated"}
	studioKeywords    = []string{"stüdyo", "studio"}

	roomCountRe = regexp.MustCompile(`\d\+\d`)
	coordsRe    = regexp.MustCompile(`(?:enlem|lat(?:itude)?)\s*[:=]\s*(-?\d{1,3}(?:\.\d+)?)\D+?(?:boylam|lon(?:gitude)?|lng)\s*[:=]\s*(-?\d{1,3}(?:\.\d+)?)`)
)

const (
	replyCollecting      = "İstediğiniz kriterlere uygun ilanları hazırlıyorum. Semt, oda sayısı ya da bütçe gibi biraz daha detay verebilir misiniz?"
	replyLocationRequest = "Yakındaki ilanları bulmak için konum izni istiyorum..."
	replyReset           = "Filtreleri temizledim, yeni aramaya hazırım."
)

// LocalExtractor is the deterministic, offline extractor. Rules run in a fixed
// order over the folded utterance and never fail.
type LocalExtractor struct {
	gazetteer *gazetteer.Gazetteer
}

// NewLocalExtractor creates a local extractor over g.
func NewLocalExtractor(g *gazetteer.Gazetteer) *LocalExtractor {
	return &LocalExtractor{gazetteer: g}
}

// Interpret applies the rules in order:
//  0. reset phrase clears accumulated filters
//  1. inline coordinates or a proximity phrase yield a location answer or request
//  2. deal type, daily rental before rental before sale
//  3. room count
//  4. most specific place
//  5. gated community
//  6. price
//
// When nothing fires the reply asks for more detail and filters stay as they are.
func (e *LocalExtractor) Interpret(ctx context.Context, utterance string, history []model.ChatMessage) (*model.Intent, error) {
	folded := utils.Fold(strings.TrimSpace(utterance))

	reset := utils.ContainsWordFold(folded, resetKeywords...)

	if m := coordsRe.FindStringSubmatch(folded); m != nil {
		lat, errLat := strconv.ParseFloat(m[1], 64)
		lon, errLon := strconv.ParseFloat(m[2], 64)
		if errLat == nil && errLon == nil {
			return e.ResolveLocation(ctx, model.Coordinates{Latitude: lat, Longitude: lon})
		}
	}

	if utils.ContainsWordFold(folded, proximityKeywords...) {
		return &model.Intent{
			Kind:  model.IntentLocationRequest,
			Reply: replyLocationRequest,
			Reset: reset,
			Calls: []model.FunctionCall{{Name: model.FuncRequestLocation}},
		}, nil
	}

	filters := &model.SearchFilters{}
	var parts []string

	switch {
	case utils.ContainsWordFold(folded, dailyKeywords...):
		filters.DealType = dealTypePtr(model.DealDailyRental)
		parts = append(parts, "günlük kiralık")
	case utils.ContainsWordFold(folded, rentalKeywords...):
		filters.DealType = dealTypePtr(model.DealRental)
		parts = append(parts, "kiralık")
	case utils.ContainsWordFold(folded, saleKeywords...), utils.ContainsWholeWordFold(folded, saleWords...):
		filters.DealType = dealTypePtr(model.DealSale)
		parts = append(parts, "satılık")
	}

	if m := roomCountRe.FindString(utterance); m != "" {
		filters.RoomCount = &m
		parts = append(parts, m+" odalı")
	} else if utils.ContainsWordFold(folded, studioKeywords...) {
		studio := "1+0"
		filters.RoomCount = &studio
		parts = append(parts, "stüdyo")
	}

	locationText := ""
	if place, ok := e.gazetteer.FindMostSpecific(utterance); ok {
		province := place.Province
		filters.Province = &province
		locationText = province
		if place.District != "" {
			district := place.District
			filters.District = &district
			locationText = district
		}
		if place.Neighborhood != "" {
			filters.Neighborhoods = []string{place.Neighborhood}
			locationText = place.District + " " + place.Neighborhood
		}
	}

	if utils.ContainsWordFold(folded, siteKeywords...) {
		inSite := true
		filters.InSite = &inSite
		parts = append(parts, "site içerisinde")
	}

	if pr, ok := ParsePriceRange(folded); ok {
		filters.MinPrice = pr.Min
		filters.MaxPrice = pr.Max
		parts = append(parts, describePrice(pr))
	}

	if filters.IsEmpty() {
		if reset {
			return &model.Intent{
				Kind:    model.IntentFilterUpdate,
				Reply:   replyReset,
				Filters: filters,
				Reset:   true,
				Calls:   []model.FunctionCall{{Name: model.FuncSearchHomes, Args: filters}},
			}, nil
		}
		return &model.Intent{Kind: model.IntentPlainReply, Reply: replyCollecting}, nil
	}

	return &model.Intent{
		Kind:    model.IntentFilterUpdate,
		Reply:   composeReply(locationText, parts),
		Filters: filters,
		Reset:   reset,
		Calls:   []model.FunctionCall{{Name: model.FuncSearchHomes, Args: filters}},
	}, nil
}

// ResolveLocation maps coordinates to the nearest known district.
func (e *LocalExtractor) ResolveLocation(ctx context.Context, coords model.Coordinates) (*model.Intent, error) {
	return resolveNearest(e.gazetteer, coords)
}

func composeReply(locationText string, parts []string) string {
	var b strings.Builder
	if locationText != "" {
		b.WriteString(locationText)
		b.WriteString(" bölgesinde ")
	}
	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, " "))
		b.WriteString(" ")
	}
	b.WriteString("ilanları listeliyorum.")
	return b.String()
}

func describePrice(pr PriceRange) string {
	switch {
	case pr.Min != nil && pr.Max != nil:
		return fmt.Sprintf("%s - %s TL arası", formatTL(*pr.Min), formatTL(*pr.Max))
	case pr.Max != nil:
		return fmt.Sprintf("%s TL'ye kadar", formatTL(*pr.Max))
	default:
		return fmt.Sprintf("%s TL üzeri", formatTL(*pr.Min))
	}
}

// formatTL groups digits with dots as in "4.400.000".
func formatTL(v int64) string {
	s := strconv.FormatInt(v, 10)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	pre := len(s) % 3
	if pre > 0 {
		b.WriteString(s[:pre])
	}
	for i := pre; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

func dealTypePtr(d model.DealType) *model.DealType {
	return &d
}
