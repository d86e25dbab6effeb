package usecase

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hotel-curator/internal/domain"
)

func TestBookingURLBuilder_Build(t *testing.T) {
	b := NewBookingURLBuilder("")
	req := domain.SearchRequest{
		RegionID: 2395,
		Checkin:  "2025-07-01",
		Checkout: "2025-07-04",
		Guests:   []domain.GuestRoom{{Adults: 2, Children: []int{7}}, {Adults: 1}},
	}

	tests := []struct {
		name string
		c    domain.Candidate
		want string
	}{
		{
			name: "known country and city",
			c:    domain.Candidate{ID: "novotel_sochi", HID: 7788, City: "Sochi", CountryCode: "RU"},
			want: "https://ostrovok.ru/hotel/russia/sochi/mid7788/novotel_sochi/?dates=01.07.2025-04.07.2025&guests=4&q=2395",
		},
		{
			name: "unknown location falls back",
			c:    domain.Candidate{ID: "x", HID: 1},
			want: "https://ostrovok.ru/hotel/russia/moscow/mid1/x/?dates=01.07.2025-04.07.2025&guests=4&q=2395",
		},
		{
			name: "multi word city",
			c:    domain.Candidate{ID: "y", HID: 2, City: "Nizhny Novgorod", CountryCode: "ru"},
			want: "https://ostrovok.ru/hotel/russia/nizhny_novgorod/mid2/y/?dates=01.07.2025-04.07.2025&guests=4&q=2395",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, b.Build(tt.c, req))
		})
	}
}

func TestBookingURLBuilder_BadDates(t *testing.T) {
	b := NewBookingURLBuilder("https://example.test/hotel/")

	assert.Empty(t, b.Build(domain.Candidate{ID: "x"}, domain.SearchRequest{Checkin: "soon"}))
}
