package service

import (
	"testing"

	"evinburada/internal/utils"

	"github.com/stretchr/testify/assert"
)

func TestParsePriceRange(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMin int64
		wantMax int64
		wantOK  bool
	}{
		{"around with dative suffix", "4 milyona civarı", 3600000, 4400000, true},
		{"up to with dative suffix", "4 milyona kadar", 0, 4000000, true},
		{"up to thousands", "30 bine kadar kiralık", 0, 30000, true},
		{"k shorthand with suffix", "50k'ya kadar", 0, 50000, true},
		{"grouped digits and currency", "1.250.000 TL'ye kadar", 0, 1250000, true},
		{"decimal comma", "1,5 milyon civarında", 1350000, 1650000, true},
		{"between with shared unit", "3-5 milyon arası", 3000000, 5000000, true},
		{"between with ile", "15 bin ile 25 bin arası", 15000, 25000, true},
		{"between reversed", "5 milyon ile 3 milyon arasında", 3000000, 5000000, true},
		{"english between", "between 2 and 3 million", 2000000, 3000000, true},
		{"english up to", "up to 20k", 0, 20000, true},
		{"english around", "around 1 million", 900000, 1100000, true},
		{"en fazla", "en fazla 2 milyon", 0, 2000000, true},
		{"budget", "bütçem 3 milyon", 0, 3000000, true},
		{"at least", "en az 2 milyon", 2000000, 0, true},
		{"above", "5 milyondan fazla", 5000000, 0, true},
		{"min and max", "en az 1 milyon en fazla 2 milyon", 1000000, 2000000, true},
		{"half rounds up", "15 civarı", 14, 17, true},
		{"room count is not a price", "2+1 daire", 0, 0, false},
		{"area is not a price", "120 m2 civarı", 0, 0, false},
		{"area after at least", "en az 120 m2", 0, 0, false},
		{"area in words", "en az 90 metrekare", 0, 0, false},
		{"guest count", "en fazla 4 kişilik", 0, 0, false},
		{"building age", "maksimum 10 yıllık bina", 0, 0, false},
		{"floor count", "en fazla 5 katlı", 0, 0, false},
		{"commute minutes", "metroya en fazla 10 dakika", 0, 0, false},
		{"nights", "en az 3 gece", 0, 0, false},
		{"area beside a real price", "en az 120 m2, en fazla 3 milyon", 0, 3000000, true},
		{"from to with units", "2 milyondan 3 milyona kadar", 2000000, 3000000, true},
		{"from to thousands", "100 binden 150 bine kadar", 100000, 150000, true},
		{"from to with shared unit", "2'den 3 milyona kadar", 2000000, 3000000, true},
		{"bare amount has no policy", "3 milyon", 0, 0, false},
		{"no numbers", "kiralık daire", 0, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParsePriceRange(utils.Fold(tt.input))
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantMin == 0 {
				assert.Nil(t, got.Min)
			} else if assert.NotNil(t, got.Min) {
				assert.Equal(t, tt.wantMin, *got.Min)
			}
			if tt.wantMax == 0 {
				assert.Nil(t, got.Max)
			} else if assert.NotNil(t, got.Max) {
				assert.Equal(t, tt.wantMax, *got.Max)
			}
		})
	}
}

func TestAroundBand(t *testing.T) {
	tests := []struct {
		x, lo, hi int64
	}{
		{4000000, 3600000, 4400000},
		{15, 14, 17}, // 13.5 -> 14, 16.5 -> 17
		{25, 23, 28}, // 22.5 -> 23, 27.5 -> 28
		{1, 1, 1},    // 0.9 -> 1, 1.1 -> 1
		{0, 0, 0},
	}

	for _, tt := range tests {
		lo, hi := AroundBand(tt.x)
		assert.Equal(t, tt.lo, lo, "min for %d", tt.x)
		assert.Equal(t, tt.hi, hi, "max for %d", tt.x)
	}
}

func TestFormatTL(t *testing.T) {
	assert.Equal(t, "950", formatTL(950))
	assert.Equal(t, "400.000", formatTL(400000))
	assert.Equal(t, "4.400.000", formatTL(4400000))
}
