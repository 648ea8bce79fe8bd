package models

import "time"

// ListingItem is one extracted property listing. Order matches the
// extraction-engine output order; Link may be empty when the harvested link
// list ran out before this item.
type ListingItem struct {
	Title       string `json:"title"`
	Link        string `json:"link"`
	Description string `json:"description"`
	Price       string `json:"price"`
}

// ExtractionResult is the validated structured output of one extraction call.
type ExtractionResult struct {
	Summary      string        `json:"summary"`
	TotalResults int           `json:"total_results"`
	Items        []ListingItem `json:"items"`
}

// CapturedPage is the page snapshot produced once per attempt after
// navigation settles.
type CapturedPage struct {
	HTML        string
	VisibleText string
	FinalURL    string
	Timestamp   time.Time
}
