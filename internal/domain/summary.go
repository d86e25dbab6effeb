package domain

// SearchSummary is a short written recommendation over the final top results.
type SearchSummary struct {
	Overview       string           `json:"overview"`
	TopPicks       []Recommendation `json:"top_picks"`
	Considerations string           `json:"considerations"`
	FinalAdvice    string           `json:"final_advice"`
}

// Recommendation names one result the summary singles out.
type Recommendation struct {
	HotelID        string `json:"hotel_id"`
	HotelName      string `json:"hotel_name"`
	WhyRecommended string `json:"why_recommended"`
}
