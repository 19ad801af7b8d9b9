package procurement

import "seaceintel-backend/lib/textutil"

// DefaultRegion is assigned when no keyword matches; most national
// entities are seated in the capital.
const DefaultRegion = "LIMA"

type regionKeywords struct {
	region   string
	keywords []string
}

// regionTable maps entity-name keywords to regions. Keywords include
// capital cities and the regional utility companies that publish the
// bulk of the processes. Order matters: the first match wins, and
// LIMA sits near the end because "MINISTERIO" would otherwise shadow
// more specific regional names.
var regionTable = []regionKeywords{
	{"AMAZONAS", []string{"AMAZONAS", "CHACHAPOYAS", "BAGUA"}},
	{"ANCASH", []string{"ANCASH", "HUARAZ", "CHIMBOTE"}},
	{"APURIMAC", []string{"APURIMAC", "ABANCAY", "ANDAHUAYLAS"}},
	{"AREQUIPA", []string{"AREQUIPA", "ELECTROSUR", "SEAL"}},
	{"AYACUCHO", []string{"AYACUCHO", "HUAMANGA"}},
	{"CAJAMARCA", []string{"CAJAMARCA", "JAEN"}},
	{"CALLAO", []string{"CALLAO"}},
	{"CUSCO", []string{"CUSCO", "ELECTRO SUR ESTE"}},
	{"HUANCAVELICA", []string{"HUANCAVELICA"}},
	{"HUANUCO", []string{"HUANUCO"}},
	{"ICA", []string{"ICA", "NAZCA", "PISCO"}},
	{"JUNIN", []string{"JUNIN", "HUANCAYO"}},
	{"LA LIBERTAD", []string{"LA LIBERTAD", "TRUJILLO", "HIDRANDINA"}},
	{"LAMBAYEQUE", []string{"LAMBAYEQUE", "CHICLAYO"}},
	{"LIMA", []string{"LIMA", "MINISTERIO", "SEDAPAL"}},
	{"LORETO", []string{"LORETO", "IQUITOS"}},
	{"MADRE DE DIOS", []string{"MADRE DE DIOS", "PUERTO MALDONADO"}},
	{"MOQUEGUA", []string{"MOQUEGUA", "ILO"}},
	{"PASCO", []string{"PASCO"}},
	{"PIURA", []string{"PIURA", "ENOSA", "SULLANA"}},
	{"PUNO", []string{"PUNO", "JULIACA"}},
	{"SAN MARTIN", []string{"SAN MARTIN", "TARAPOTO"}},
	{"TACNA", []string{"TACNA"}},
	{"TUMBES", []string{"TUMBES"}},
	{"UCAYALI", []string{"UCAYALI", "PUCALLPA"}},
}

// DetectRegion infers a region from the buying entity's name.
func DetectRegion(entityName string) string {
	if entityName == "" {
		return DefaultRegion
	}
	for _, row := range regionTable {
		for _, keyword := range row.keywords {
			if textutil.ContainsFold(entityName, keyword) {
				return row.region
			}
		}
	}
	return DefaultRegion
}
