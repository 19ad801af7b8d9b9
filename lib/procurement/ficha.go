package procurement

import (
	"seaceintel-backend/lib/scrapers/seace"
	"seaceintel-backend/lib/textutil"
)

// labelValue finds an attribute in a scraped block by a fragment of
// its label; labels vary in casing, accents and padding between
// portal versions.
func labelValue(block map[string]string, fragment string) string {
	for label, value := range block {
		if textutil.ContainsFold(label, fragment) {
			return value
		}
	}
	return ""
}

// FromFicha maps a scraped ficha to the canonical form. A ficha that
// ended in an error annotation still maps; whatever blocks were
// extracted before the failure are kept and the reason lands in the
// provenance notes.
func FromFicha(ficha seace.Ficha) Record {
	record := Record{
		SourceID:     ficha.ID,
		Nomenclature: ficha.Nomenclature,
		Provenance: Provenance{
			Source:      SourceFicha,
			ExtractedAt: ficha.ExtractedAt,
		},
	}
	if ficha.Error != "" {
		record.Provenance.Notes = append(record.Provenance.Notes, ficha.Error)
	}

	if nom := labelValue(ficha.General, "nomenclatura"); nom != "" {
		record.Nomenclature = nom
	}
	record.Title = record.Nomenclature
	record.Description = labelValue(ficha.General, "descripcion del objeto")
	record.Category = labelValue(ficha.General, "objeto de contratacion")
	record.MethodDetails = labelValue(ficha.General, "tipo de procedimiento")
	record.PublicationDate = parseDate(labelValue(ficha.General, "fecha y hora de publicacion"))

	if raw := labelValue(ficha.Procedure, "valor referencial"); raw != "" {
		if amount, ok := ParseAmount(raw); ok {
			record.Value = &Money{
				Amount:   amount,
				Currency: NormalizeCurrency(raw),
			}
		}
	}

	record.Buyer = Buyer{
		Name:       labelValue(ficha.Entity, "nombre o sigla"),
		TaxID:      labelValue(ficha.Entity, "ruc"),
		Address:    labelValue(ficha.Entity, "direccion"),
		Department: labelValue(ficha.Entity, "departamento"),
		Phone:      labelValue(ficha.Entity, "telefono"),
	}
	record.Region = DetectRegion(record.Buyer.Name)

	for _, row := range ficha.Schedule {
		record.Schedule = append(record.Schedule, StageWindow{
			Name:    NormalizeStage(row.Stage),
			RawName: row.Stage,
			Start:   row.Start,
			End:     row.End,
		})
	}

	for _, row := range ficha.Bidders {
		record.Bidders = append(record.Bidders, Bidder{
			TaxID: row.RUC,
			Name:  row.Name,
		})
	}

	for _, row := range ficha.Documents {
		record.Documents = append(record.Documents, Document{
			Title: row.Name,
			Type:  row.Stage,
			URL:   row.URL,
			Date:  row.Date,
		})
	}

	record.markPartial()
	return record
}
