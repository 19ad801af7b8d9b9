package procurement

import "seaceintel-backend/lib/textutil"

// stageNames maps the portal's printed stage names to stable internal
// identifiers. Keys are matched on the folded form because the portal
// is inconsistent about accents.
var stageNames = map[string]string{
	"convocatoria":                           "CONVOCATORIA",
	"registro de participantes(electronica)": "REGISTRO_PARTICIPANTES",
	"formulacion de consultas y observaciones(electronica)": "CONSULTAS_OBSERVACIONES",
	"absolucion de consultas y observaciones(electronica)":  "ABSOLUCION_CONSULTAS",
	"integracion de las bases":             "INTEGRACION_BASES",
	"presentacion de ofertas(electronica)": "PRESENTACION_PROPUESTAS",
	"evaluacion y calificacion":            "CALIFICACION_EVALUACION",
	"otorgamiento de la buena pro":         "BUENA_PRO",
}

// NormalizeStage maps a printed stage name to its internal
// identifier. Unknown stages pass through unchanged so new portal
// stages still show up in output.
func NormalizeStage(raw string) string {
	if name, ok := stageNames[textutil.NormalizeLabel(raw)]; ok {
		return name
	}
	return raw
}
