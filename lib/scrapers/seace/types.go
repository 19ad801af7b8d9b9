package seace

import "time"

// Ficha holds the raw blocks scraped from one process detail page.
// Panels the page did not render come back as empty blocks, never as
// a failure.
type Ficha struct {
	ID           string
	Nomenclature string
	ExtractedAt  time.Time

	General   map[string]string
	Entity    map[string]string
	Procedure map[string]string
	Schedule  []ScheduleRow
	Documents []DocumentRow
	Bidders   []BidderRow

	// human-readable reason when the flow could not finish; a ficha
	// with Error set is still a valid (partial) result
	Error string
}

// ScheduleRow is one stage of the process calendar, with the stage
// name exactly as the portal prints it.
type ScheduleRow struct {
	Stage string
	Start string
	End   string
}

type DocumentRow struct {
	Number string
	Stage  string
	Name   string
	URL    string
	Date   string
}

type BidderRow struct {
	RUC    string
	Name   string
	Amount string
}
