// Package procurement defines the canonical process record and the
// normalization from both acquisition paths (the open-data API and
// the scraped ficha) into it. Normalization never fails on missing
// nested data; it produces a partial record instead.
package procurement

import (
	"time"
)

const (
	SourceOCDS  = "ocds"
	SourceFicha = "seace_ficha"
)

// Record is one procurement process in canonical form, regardless of
// where it was acquired from.
type Record struct {
	// ocid for API records, ficha id for scraped ones
	SourceID string `json:"sourceId"`
	// the human process code, merge key across sources
	Nomenclature string `json:"nomenclature"`
	TenderID     string `json:"tenderId,omitempty"`

	Title         string `json:"title,omitempty"`
	Description   string `json:"description,omitempty"`
	Method        string `json:"method,omitempty"`
	MethodDetails string `json:"methodDetails,omitempty"`
	Category      string `json:"category,omitempty"`

	Value           *Money     `json:"value,omitempty"`
	PublicationDate *time.Time `json:"publicationDate,omitempty"`

	Buyer  Buyer  `json:"buyer"`
	Region string `json:"region,omitempty"`

	Schedule  []StageWindow `json:"schedule,omitempty"`
	Bidders   []Bidder      `json:"bidders,omitempty"`
	Winner    *Bidder       `json:"winner,omitempty"`
	Awarded   *Money        `json:"awarded,omitempty"`
	AwardDate *time.Time    `json:"awardDate,omitempty"`

	Contract  *Contract  `json:"contract,omitempty"`
	Documents []Document `json:"documents,omitempty"`
	Items     []Item     `json:"items,omitempty"`

	Provenance Provenance `json:"provenance"`
}

type Money struct {
	Amount float64 `json:"amount"`
	// always a resolved 3-letter code
	Currency string `json:"currency"`
}

type Buyer struct {
	Name       string `json:"name,omitempty"`
	TaxID      string `json:"taxId,omitempty"`
	Address    string `json:"address,omitempty"`
	Department string `json:"department,omitempty"`
	Phone      string `json:"phone,omitempty"`
}

// StageWindow is one stage of the process calendar. RawName keeps the
// stage name exactly as the source printed it.
type StageWindow struct {
	Name    string `json:"name"`
	RawName string `json:"rawName,omitempty"`
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
}

type Bidder struct {
	TaxID string `json:"taxId,omitempty"`
	Name  string `json:"name,omitempty"`
}

type Contract struct {
	Number       string     `json:"number,omitempty"`
	Amount       *Money     `json:"amount,omitempty"`
	SignedAt     *time.Time `json:"signedAt,omitempty"`
	Start        *time.Time `json:"start,omitempty"`
	End          *time.Time `json:"end,omitempty"`
	DurationDays *int       `json:"durationDays,omitempty"`
}

type Document struct {
	Title  string `json:"title,omitempty"`
	Type   string `json:"type,omitempty"`
	Format string `json:"format,omitempty"`
	URL    string `json:"url,omitempty"`
	Date   string `json:"date,omitempty"`
}

type Item struct {
	Description    string  `json:"description,omitempty"`
	Quantity       float64 `json:"quantity,omitempty"`
	Unit           string  `json:"unit,omitempty"`
	Classification string  `json:"classification,omitempty"`
}

// Provenance records where and how a record was acquired. Partial
// marks records missing one of the structural blocks (schedule,
// bidders, documents); that is a valid terminal state, not a failure.
type Provenance struct {
	Source      string    `json:"source"`
	ExtractedAt time.Time `json:"extractedAt"`
	Partial     bool      `json:"partial,omitempty"`
	Notes       []string  `json:"notes,omitempty"`
}

// markPartial sets the partial flag from the structural blocks.
func (r *Record) markPartial() {
	r.Provenance.Partial = len(r.Schedule) == 0 ||
		len(r.Bidders) == 0 ||
		len(r.Documents) == 0
}

// PublicationYear is the year used by the deduplicator's tie-break; 0
// when the record carries no publication date.
func (r Record) PublicationYear() int {
	if r.PublicationDate == nil {
		return 0
	}
	return r.PublicationDate.Year()
}
