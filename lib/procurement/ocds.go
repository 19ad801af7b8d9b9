package procurement

import (
	"strings"
	"time"

	"seaceintel-backend/lib/scrapers/ocds"
	"seaceintel-backend/lib/timezone"
)

// national tax ids arrive prefixed in party identifiers
const rucPrefix = "PE-RUC-"

func stripRuc(id string) string {
	return strings.TrimPrefix(id, rucPrefix)
}

// FromOCDS maps a raw API record to the canonical form. Every nested
// block of the source is optional; whatever is absent just leaves its
// canonical counterpart empty.
func FromOCDS(raw ocds.Record) Record {
	compiled := raw.Compiled()
	tender := compiled.GetTender()

	record := Record{
		SourceID:      compiled.OCID,
		Nomenclature:  tender.Title,
		TenderID:      tender.ID,
		Title:         tender.Title,
		Description:   tender.Description,
		Method:        tender.ProcurementMethod,
		MethodDetails: tender.ProcurementMethodDetails,
		Category:      tender.MainProcurementCategory,
		Provenance: Provenance{
			Source:      SourceOCDS,
			ExtractedAt: timezone.Now(),
		},
	}

	if amount, ok := tender.Value.GetAmount(); ok {
		record.Value = &Money{
			Amount:   amount,
			Currency: NormalizeCurrency(tender.Value.GetCurrency()),
		}
	}
	record.PublicationDate = parseDate(tender.DatePublished)

	record.Schedule = ocdsSchedule(tender)
	record.Documents = ocdsDocuments(tender, compiled.Contracts)
	record.Items = ocdsItems(tender.Items)

	for _, tenderer := range tender.Tenderers {
		record.Bidders = append(record.Bidders, Bidder{
			TaxID: stripRuc(tenderer.ID),
			Name:  tenderer.Name,
		})
	}

	applyAward(&record, compiled.Awards)
	applyContract(&record, compiled.Contracts)
	applyBuyer(&record, compiled)

	record.Region = DetectRegion(record.Buyer.Name)
	record.markPartial()
	return record
}

func ocdsSchedule(tender ocds.Tender) []StageWindow {
	var schedule []StageWindow
	if tender.TenderPeriod != nil {
		schedule = append(schedule, StageWindow{
			Name:  "CONVOCATORIA",
			Start: tender.TenderPeriod.StartDate,
			End:   tender.TenderPeriod.EndDate,
		})
	}
	if tender.EnquiryPeriod != nil {
		schedule = append(schedule, StageWindow{
			Name:  "CONSULTAS_OBSERVACIONES",
			Start: tender.EnquiryPeriod.StartDate,
			End:   tender.EnquiryPeriod.EndDate,
		})
	}
	return schedule
}

func ocdsDocuments(tender ocds.Tender, contracts []ocds.Contract) []Document {
	var documents []Document
	for _, doc := range tender.Documents {
		documents = append(documents, Document{
			Title:  doc.Title,
			Type:   doc.DocumentType,
			Format: doc.Format,
			URL:    doc.URL,
			Date:   doc.DatePublished,
		})
	}
	for _, contract := range contracts {
		for _, doc := range contract.Documents {
			title := doc.Title
			if title == "" {
				title = "Documento contrato"
			}
			documents = append(documents, Document{
				Title: title,
				Type:  doc.DocumentType,
				URL:   doc.URL,
				Date:  doc.DatePublished,
			})
		}
	}
	return documents
}

func ocdsItems(items []ocds.Item) []Item {
	var out []Item
	for _, item := range items {
		mapped := Item{Description: item.Description}
		if item.Quantity != nil {
			mapped.Quantity = *item.Quantity
		}
		if item.Unit != nil {
			mapped.Unit = item.Unit.Name
		}
		if item.Classification != nil {
			mapped.Classification = item.Classification.Description
		}
		out = append(out, mapped)
	}
	return out
}

func applyAward(record *Record, awards []ocds.Award) {
	if len(awards) == 0 {
		return
	}
	award := awards[0]
	record.AwardDate = parseDate(award.Date)
	if amount, ok := award.Value.GetAmount(); ok {
		record.Awarded = &Money{
			Amount:   amount,
			Currency: NormalizeCurrency(award.Value.GetCurrency()),
		}
	}
	if len(award.Suppliers) > 0 {
		record.Winner = &Bidder{
			TaxID: stripRuc(award.Suppliers[0].ID),
			Name:  award.Suppliers[0].Name,
		}
		ensureWinnerListed(record)
	}
}

// ensureWinnerListed keeps the bidders set a superset of the winner;
// some records publish the award without the tenderer list.
func ensureWinnerListed(record *Record) {
	if record.Winner == nil {
		return
	}
	for _, bidder := range record.Bidders {
		if bidder.TaxID == record.Winner.TaxID {
			return
		}
	}
	record.Bidders = append(record.Bidders, *record.Winner)
}

func applyContract(record *Record, contracts []ocds.Contract) {
	if len(contracts) == 0 {
		return
	}
	c := contracts[0]
	contract := &Contract{
		Number:   c.Title,
		SignedAt: parseDate(c.DateSigned),
	}
	if amount, ok := c.Value.GetAmount(); ok {
		contract.Amount = &Money{
			Amount:   amount,
			Currency: NormalizeCurrency(c.Value.GetCurrency()),
		}
	}
	if c.Period != nil {
		contract.Start = parseDate(c.Period.StartDate)
		contract.End = parseDate(c.Period.EndDate)
		contract.DurationDays = c.Period.DurationInDays
	}
	record.Contract = contract
}

func applyBuyer(record *Record, compiled ocds.CompiledRelease) {
	record.Buyer.Name = compiled.BuyerName()
	for _, party := range compiled.Parties {
		if !hasRole(party, "buyer") {
			continue
		}
		record.Buyer.Name = party.Name
		if len(party.AdditionalIdentifiers) > 0 {
			record.Buyer.TaxID = stripRuc(party.AdditionalIdentifiers[0].ID)
		}
		if party.Address != nil {
			record.Buyer.Address = party.Address.StreetAddress
			record.Buyer.Department = party.Address.Department
		}
		if party.ContactPoint != nil {
			record.Buyer.Phone = party.ContactPoint.Telephone
		}
		return
	}
}

func hasRole(party ocds.Party, role string) bool {
	for _, r := range party.Roles {
		if r == role {
			return true
		}
	}
	return false
}

var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
	"02/01/2006 15:04",
	"02/01/2006",
}

// parseDate tries the date shapes both sources emit; nil when none
// fit.
func parseDate(raw string) *time.Time {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		t, err := time.ParseInLocation(layout, raw, timezone.Location)
		if err == nil {
			return &t
		}
	}
	return nil
}
