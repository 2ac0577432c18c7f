package models

// ActivityDay is one row of the per-day study aggregation.
type ActivityDay struct {
	Day          string `json:"day"`
	Sessions     int    `json:"sessions"`
	CardsStudied int    `json:"cards_studied"`
	Correct      int    `json:"correct"`
	Incorrect    int    `json:"incorrect"`
}
