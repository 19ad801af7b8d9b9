package ocds

// Wire types for the open-contracting API. Every nested field is
// optional on the wire; traversal always goes through pointers or zero
// values, never assumes presence.

type RecordsEnvelope struct {
	Records []Record `json:"records"`
}

type Record struct {
	CompiledRelease *CompiledRelease `json:"compiledRelease"`
}

type CompiledRelease struct {
	OCID    string  `json:"ocid"`
	Tender  *Tender `json:"tender"`
	Buyer   *Party  `json:"buyer"`
	Awards  []Award `json:"awards"`
	// the API serializes contracts under "contracts"
	Contracts []Contract `json:"contracts"`
	Parties   []Party    `json:"parties"`
}

type Tender struct {
	ID                       string     `json:"id"`
	Title                    string     `json:"title"`
	Description              string     `json:"description"`
	ProcurementMethod        string     `json:"procurementMethod"`
	ProcurementMethodDetails string     `json:"procurementMethodDetails"`
	MainProcurementCategory  string     `json:"mainProcurementCategory"`
	DatePublished            string     `json:"datePublished"`
	Value                    *Value     `json:"value"`
	TenderPeriod             *Period    `json:"tenderPeriod"`
	EnquiryPeriod            *Period    `json:"enquiryPeriod"`
	Tenderers                []Party    `json:"tenderers"`
	Documents                []Document `json:"documents"`
	Items                    []Item     `json:"items"`
}

type Value struct {
	Amount   *float64 `json:"amount"`
	Currency string   `json:"currency"`
}

type Period struct {
	StartDate      string `json:"startDate"`
	EndDate        string `json:"endDate"`
	DurationInDays *int   `json:"durationInDays"`
}

type Party struct {
	ID                    string       `json:"id"`
	Name                  string       `json:"name"`
	Roles                 []string     `json:"roles"`
	Address               *Address     `json:"address"`
	ContactPoint          *ContactPoint `json:"contactPoint"`
	AdditionalIdentifiers []Identifier `json:"additionalIdentifiers"`
}

type Address struct {
	StreetAddress string `json:"streetAddress"`
	Department    string `json:"department"`
	Region        string `json:"region"`
}

type ContactPoint struct {
	Telephone string `json:"telephone"`
}

type Identifier struct {
	ID string `json:"id"`
}

type Award struct {
	Date      string  `json:"date"`
	Value     *Value  `json:"value"`
	Suppliers []Party `json:"suppliers"`
}

type Contract struct {
	ID         string     `json:"id"`
	Title      string     `json:"title"`
	Value      *Value     `json:"value"`
	DateSigned string     `json:"dateSigned"`
	Period     *Period    `json:"period"`
	Documents  []Document `json:"documents"`
}

type Document struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	DocumentType  string `json:"documentType"`
	Format        string `json:"format"`
	URL           string `json:"url"`
	DatePublished string `json:"datePublished"`
}

type Item struct {
	Description    string          `json:"description"`
	Quantity       *float64        `json:"quantity"`
	Unit           *Unit           `json:"unit"`
	Classification *Classification `json:"classification"`
}

type Unit struct {
	Name string `json:"name"`
}

type Classification struct {
	Description string `json:"description"`
}

// FileDescriptor is one row of GET /files: an available bulk archive
// for a (year, month, source) scope.
type FileDescriptor struct {
	Year   string `json:"year"`
	Month  string `json:"month"`
	Source string `json:"sourceId"`
	JSON   string `json:"json"`
	SHA    string `json:"sha"`
}

type filesEnvelope struct {
	Results []FileDescriptor `json:"results"`
}

// helpers for optional traversal

func (r Record) Compiled() CompiledRelease {
	if r.CompiledRelease == nil {
		return CompiledRelease{}
	}
	return *r.CompiledRelease
}

func (c CompiledRelease) GetTender() Tender {
	if c.Tender == nil {
		return Tender{}
	}
	return *c.Tender
}

func (c CompiledRelease) BuyerName() string {
	if c.Buyer == nil {
		return ""
	}
	return c.Buyer.Name
}

func (v *Value) GetAmount() (float64, bool) {
	if v == nil || v.Amount == nil {
		return 0, false
	}
	return *v.Amount, true
}

func (v *Value) GetCurrency() string {
	if v == nil {
		return ""
	}
	return v.Currency
}
