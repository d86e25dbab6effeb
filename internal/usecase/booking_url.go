package usecase

import (
	"fmt"
	"net/url"
	"strings"

	"hotel-curator/internal/domain"
)

const (
	defaultBookingBaseURL = "https://ostrovok.ru/hotel"
	defaultCountrySlug    = "russia"
	defaultCitySlug       = "moscow"
)

var countrySlugs = map[string]string{
	"ru": "russia",
	"by": "belarus",
	"kz": "kazakhstan",
	"am": "armenia",
	"ge": "georgia",
	"az": "azerbaijan",
	"uz": "uzbekistan",
	"tr": "turkey",
	"ae": "united_arab_emirates",
	"th": "thailand",
	"eg": "egypt",
	"de": "germany",
	"fr": "france",
	"it": "italy",
	"es": "spain",
}

// BookingURLBuilder renders deep links to the booking site.
type BookingURLBuilder struct {
	baseURL string
}

func NewBookingURLBuilder(baseURL string) BookingURLBuilder {
	if baseURL == "" {
		baseURL = defaultBookingBaseURL
	}
	return BookingURLBuilder{baseURL: strings.TrimRight(baseURL, "/")}
}

// Build returns the deep link for a candidate and the dates and guests of req.
func (b BookingURLBuilder) Build(c domain.Candidate, req domain.SearchRequest) string {
	in, out, err := req.Dates()
	if err != nil {
		return ""
	}
	country := countrySlugs[strings.ToLower(c.CountryCode)]
	if country == "" {
		country = defaultCountrySlug
	}
	city := slugify(c.City)
	if city == "" {
		city = defaultCitySlug
	}
	dates := fmt.Sprintf("%s-%s", in.Format("02.01.2006"), out.Format("02.01.2006"))
	return fmt.Sprintf("%s/%s/%s/mid%d/%s/?dates=%s&guests=%d&q=%d",
		b.baseURL, country, city, c.HID, url.PathEscape(c.ID), dates, domain.TotalGuests(req.Guests), req.RegionID)
}

func slugify(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.Join(strings.Fields(s), "_")
}
