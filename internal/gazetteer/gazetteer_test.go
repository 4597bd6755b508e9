package gazetteer

import (
	"testing"

	"evinburada/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindMostSpecific(t *testing.T) {
	g := Default()

	tests := []struct {
		name   string
		text   string
		want   Place
		wantOK bool
	}{
		{
			name:   "neighborhood beats district",
			text:   "Şişli Nişantaşı'nda 2+1 arıyorum",
			want:   Place{Province: "İstanbul", District: "Şişli", Neighborhood: "Nişantaşı", Level: LevelNeighborhood},
			wantOK: true,
		},
		{
			name:   "district with suffix",
			text:   "Beşiktaş'ta kiralık daire",
			want:   Place{Province: "İstanbul", District: "Beşiktaş", Level: LevelDistrict},
			wantOK: true,
		},
		{
			name:   "province only",
			text:   "istanbulda ev",
			want:   Place{Province: "İstanbul", Level: LevelProvince},
			wantOK: true,
		},
		{
			name:   "ascii spelling",
			text:   "nisantasi civari",
			want:   Place{Province: "İstanbul", District: "Şişli", Neighborhood: "Nişantaşı", Level: LevelNeighborhood},
			wantOK: true,
		},
		{
			name:   "multi word neighborhood",
			text:   "ADNAN KAHVECİ tarafında",
			want:   Place{Province: "İstanbul", District: "Beylikdüzü", Neighborhood: "Adnan Kahveci", Level: LevelNeighborhood},
			wantOK: true,
		},
		{
			name:   "mid-word occurrence is ignored",
			text:   "komodada eşya",
			wantOK: false,
		},
		{
			name:   "no place",
			text:   "3+1 satılık",
			wantOK: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := g.FindMostSpecific(tt.text)
			assert.Equal(t, tt.wantOK, ok)
			if tt.wantOK {
				assert.Equal(t, tt.want, got)
			}
		})
	}
}

func TestFindMostSpecific_TableOrderBreaksTies(t *testing.T) {
	g := Default()

	got, ok := g.FindMostSpecific("Moda ya da Bebek")
	require.True(t, ok)
	assert.Equal(t, "Bebek", got.Neighborhood, "Beşiktaş precedes Kadıköy in the table")
}

func TestNearestDistrict(t *testing.T) {
	g := Default()

	tests := []struct {
		name   string
		coords model.Coordinates
		want   string
	}{
		{"Ortaköy", model.Coordinates{Latitude: 41.0475, Longitude: 29.0260}, "Beşiktaş"},
		{"Moda", model.Coordinates{Latitude: 40.9830, Longitude: 29.0250}, "Kadıköy"},
		{"Mecidiyeköy", model.Coordinates{Latitude: 41.0670, Longitude: 28.9950}, "Şişli"},
		{"Yakuplu", model.Coordinates{Latitude: 40.9890, Longitude: 28.6690}, "Beylikdüzü"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, dist, ok := g.NearestDistrict(tt.coords)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.District)
			assert.Equal(t, "İstanbul", got.Province)
			assert.Less(t, dist, 10.0)
		})
	}
}

func TestNearestDistrict_EmptyTable(t *testing.T) {
	_, _, ok := New(nil).NearestDistrict(model.Coordinates{Latitude: 41, Longitude: 29})
	assert.False(t, ok)
}

func TestHaversine(t *testing.T) {
	a := model.Coordinates{Latitude: 41.0082, Longitude: 28.9784}
	assert.InDelta(t, 0, Haversine(a, a), 1e-9)

	// Istanbul to Ankara is roughly 350 km as the crow flies.
	ankara := model.Coordinates{Latitude: 39.9334, Longitude: 32.8597}
	assert.InDelta(t, 350, Haversine(a, ankara), 15)
}

func TestLookups(t *testing.T) {
	g := Default()

	assert.Equal(t, []string{"İstanbul"}, g.Provinces())
	assert.Len(t, g.Districts("İstanbul"), 4)
	assert.Nil(t, g.Districts("Ankara"))
	assert.Contains(t, g.Neighborhoods("İstanbul", "Kadıköy"), "Moda")
	assert.Nil(t, g.Neighborhoods("İstanbul", "Üsküdar"))
}
