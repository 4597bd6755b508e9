package service

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// PriceRange is a pair of optional inclusive bounds.
type PriceRange struct {
	Min *int64
	Max *int64
}

// amountPattern matches a number with an optional multiplier word and an
// optional Turkish case suffix ("4 milyona", "50k'ya", "1.250.000 tl").
// It captures the number and the multiplier.
const amountPattern = `(\d{1,3}(?:[.,]\d{3})+|\d+(?:[.,]\d+)?)\s*(milyon\w*|million|mn|bin\w*|thousand|k|m)?(?:'\w+)?\b(?:\s*(?:tl|try|lira)\b(?:'\w+)?)?`

// fromAmountPattern is an amount in the ablative case ("2 milyondan",
// "100 binden", "50k'dan", "1 milyon tl'den").
const fromAmountPattern = `(\d{1,3}(?:[.,]\d{3})+|\d+(?:[.,]\d+)?)\s*(milyon|million|mn|bin|thousand|k|m)?(?:\s*(?:tl|try|lira))?'?(?:dan|den|tan|ten)\b`

var (
	groupedDigitsRe = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})+$`)
	roomTokenRe     = regexp.MustCompile(`\d\s*\+\s*\d`)

	// quantities that are never prices: areas, guests, ages, rooms, floors, durations
	quantityRe = regexp.MustCompile(`\d+(?:[.,]\d+)?\s*(?:m2|m²|metrekare|metre|km|kisi|yil|yas|oda|kat|dakika|dk|saat|gece|adet|person|people|guest|year|sqm)\w*`)

	betweenRe    = regexp.MustCompile(amountPattern + `\s*(?:-|–|ile|ve|and|to)\s*` + amountPattern + `\s*(?:arasi|arasinda)`)
	fromToRe     = regexp.MustCompile(fromAmountPattern + `\s*` + amountPattern + `\s*kadar`)
	betweenEnRe  = regexp.MustCompile(`(?:between|from)\s+` + amountPattern + `\s+(?:and|to)\s+` + amountPattern)
	aroundRe     = regexp.MustCompile(amountPattern + `\s*(?:civari|civarinda|civarlarinda|kadar bir sey)`)
	aroundPreRe  = regexp.MustCompile(`(?:\b(?:around|about|approximately|yaklasik|ortalama)|~)\s*` + amountPattern)
	upToRe       = regexp.MustCompile(amountPattern + `\s*(?:kadar|altinda|alti|max|maksimum)`)
	upToPreRe    = regexp.MustCompile(`\b(?:up to|under|below|at most|max(?:imum)?|maksimum|en fazla|en cok|butce\w*)\s*:?\s*` + amountPattern)
	atLeastRe    = regexp.MustCompile(amountPattern + `\s*(?:ustu|uzeri|ustunde|uzerinde|fazla)`)
	atLeastPreRe = regexp.MustCompile(`\b(?:over|above|at least|more than|en az|minimum|min)\s*:?\s*` + amountPattern)
)

// ParsePriceRange reads price constraints from folded text. Precedence is
// between > around > explicit min/max. The around band is X*0.9..X*1.1
// rounded half up. Numbers carrying a non-price unit ("120 m2", "4 kisilik",
// "10 yillik") are dropped before any pattern runs.
func ParsePriceRange(folded string) (PriceRange, bool) {
	text := roomTokenRe.ReplaceAllString(folded, " ")
	text = quantityRe.ReplaceAllString(text, " ")

	if m := firstMatch(text, betweenRe, fromToRe, betweenEnRe); m != nil {
		lo, loOK := parseAmount(m[1], m[2])
		hi, hiOK := parseAmount(m[3], m[4])
		if loOK && hiOK {
			// "3-5 milyon arasi" and "2'den 3 milyona kadar" carry the unit on the upper bound only
			if m[2] == "" && m[4] != "" && lo < 1000 {
				lo, _ = parseAmount(m[1], m[4])
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			return PriceRange{Min: &lo, Max: &hi}, true
		}
	}

	if m := firstMatch(text, aroundRe, aroundPreRe); m != nil {
		if x, ok := parseAmount(m[1], m[2]); ok {
			lo, hi := AroundBand(x)
			return PriceRange{Min: &lo, Max: &hi}, true
		}
	}

	var r PriceRange
	if m := firstMatch(text, upToPreRe, upToRe); m != nil {
		if x, ok := parseAmount(m[1], m[2]); ok {
			r.Max = &x
		}
	}
	if m := firstMatch(text, atLeastPreRe, atLeastRe); m != nil {
		if x, ok := parseAmount(m[1], m[2]); ok {
			r.Min = &x
		}
	}
	if r.Min != nil && r.Max != nil && *r.Min > *r.Max {
		r.Min, r.Max = r.Max, r.Min
	}
	return r, r.Min != nil || r.Max != nil
}

// AroundBand returns round(x*0.9) and round(x*1.1) with halves rounded up.
func AroundBand(x int64) (int64, int64) {
	return (9*x + 5) / 10, (11*x + 5) / 10
}

func firstMatch(text string, res ...*regexp.Regexp) []string {
	for _, re := range res {
		if m := re.FindStringSubmatch(text); m != nil {
			return m
		}
	}
	return nil
}

func parseAmount(num, unit string) (int64, bool) {
	var value float64
	if groupedDigitsRe.MatchString(num) {
		digits := strings.NewReplacer(".", "", ",", "").Replace(num)
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			return 0, false
		}
		value = float64(n)
	} else {
		f, err := strconv.ParseFloat(strings.Replace(num, ",", ".", 1), 64)
		if err != nil {
			return 0, false
		}
		value = f
	}

	switch {
	case strings.HasPrefix(unit, "milyon"), unit == "million", unit == "mn", unit == "m":
		value *= 1e6
	case strings.HasPrefix(unit, "bin"), unit == "thousand", unit == "k":
		value *= 1e3
	}

	if value <= 0 || value > math.MaxInt64/16 {
		return 0, false
	}
	return int64(math.Round(value)), true
}
