package rest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel-curator/internal/domain"
)

func validRequest() domain.SearchRequest {
	return domain.SearchRequest{
		RegionID:  2395,
		Checkin:   "2025-07-01",
		Checkout:  "2025-07-04",
		Guests:    []domain.GuestRoom{{Adults: 2, Children: []int{7}}},
		Residency: "ru",
		Currency:  "RUB",
	}
}

func ptr[T any](v T) *T { return &v }

func TestValidator_Validate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name   string
		mutate func(*domain.SearchRequest)
		field  string
	}{
		{name: "valid", mutate: func(*domain.SearchRequest) {}},
		{name: "missing region", mutate: func(r *domain.SearchRequest) { r.RegionID = 0 }, field: "region_id"},
		{name: "bad date", mutate: func(r *domain.SearchRequest) { r.Checkin = "01.07.2025" }, field: "checkin"},
		{name: "checkout before checkin", mutate: func(r *domain.SearchRequest) { r.Checkout = "2025-06-30" }, field: "checkout"},
		{name: "same day", mutate: func(r *domain.SearchRequest) { r.Checkout = r.Checkin }, field: "checkout"},
		{name: "no guests", mutate: func(r *domain.SearchRequest) { r.Guests = nil }, field: "guests"},
		{name: "too many adults", mutate: func(r *domain.SearchRequest) { r.Guests[0].Adults = 7 }, field: "guests[0].adults"},
		{name: "child too old", mutate: func(r *domain.SearchRequest) { r.Guests[0].Children = []int{18} }, field: "guests[0].children[0]"},
		{name: "residency upper case", mutate: func(r *domain.SearchRequest) { r.Residency = "RU" }, field: "residency"},
		{name: "unknown currency", mutate: func(r *domain.SearchRequest) { r.Currency = "XYZ1" }, field: "currency"},
		{name: "top hotels above cap", mutate: func(r *domain.SearchRequest) { r.TopHotels = 13 }, field: "top_hotels"},
		{
			name: "inverted price window",
			mutate: func(r *domain.SearchRequest) {
				r.MinPricePerNight = ptr(5000.0)
				r.MaxPricePerNight = ptr(3000.0)
			},
			field: "max_price_per_night",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(&req)

			err := v.Validate(req)
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			verr, ok := err.(*ValidationError)
			require.True(t, ok, "got %T", err)
			assert.Contains(t, verr.Errors, tt.field)
			assert.ErrorIs(t, verr, domain.ErrValidation)
		})
	}
}

func TestValidationError_Messages(t *testing.T) {
	req := validRequest()
	req.Checkout = "2025-06-01"
	req.RegionID = 0

	err := NewValidator().Validate(req)

	require.Error(t, err)
	assert.Equal(t, "validation failed: checkout: checkout must be after checkin, region_id: region_id is required", err.Error())
}
