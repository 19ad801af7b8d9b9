package seace

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"seaceintel-backend/lib/cachestore"
	"seaceintel-backend/lib/restyutil"

	"github.com/stretchr/testify/require"
)

const fichaFixture = `<html><body>
<div class="ui-panel">
  <div class="ui-panel-title">Información General</div>
  <table>
    <tr><td>Nomenclatura:</td><td>AS-SM-35-2024-ELSE-1</td></tr>
    <tr><td>Objeto de Contratación:</td><td>Servicio</td></tr>
  </table>
</div>
<div class="ui-panel">
  <div class="ui-panel-title">Informacion general de la Entidad</div>
  <table>
    <tr><td>Nombre o Sigla de la Entidad:</td><td>ELECTRO SUR ESTE S.A.A.</td></tr>
    <tr><td>RUC:</td><td>20116544289</td></tr>
  </table>
</div>
<div class="ui-panel">
  <div class="ui-panel-title">Informacion general del procedimiento</div>
  <table>
    <tr><td>Valor Referencial:</td><td>S/ 100,000.00</td></tr>
  </table>
</div>
<div class="ui-panel">
  <div class="ui-panel-title">Cronograma</div>
  <table>
    <tr><th>Etapa</th><th>Fecha Inicio</th><th>Fecha Fin</th></tr>
    <tr><td>Convocatoria</td><td>01/07/2024</td><td>01/07/2024</td></tr>
    <tr><td>Presentacion de ofertas(Electronica)</td><td>10/07/2024</td><td>11/07/2024</td></tr>
  </table>
</div>
<div class="ui-panel">
  <div class="ui-panel-title">Lista de Documentos</div>
  <table>
    <tr><th>Nro</th><th>Etapa</th><th>Documento</th><th>Archivo</th><th>Fecha</th></tr>
    <tr>
      <td>1</td><td>Convocatoria</td><td>Bases</td>
      <td><a href="/documentos/bases.pdf">Descargar</a></td>
      <td>01/07/2024</td>
    </tr>
  </table>
</div>
</body></html>`

const offersFixture = `<html><body>
<table>
  <tr><th>RUC</th><th>Postor</th><th>Monto</th></tr>
  <tr><td>20123456789</td><td>CONSTRUCTORA ANDINA S.A.C.</td><td>S/ 95,000.00</td></tr>
  <tr><td>20987654321</td><td>SERVICIOS DEL SUR E.I.R.L.</td><td>S/ 98,500.00</td></tr>
</table>
</body></html>`

const (
	fichaLinkSel = "//a[contains(@title, 'Ficha de Seleccion')]"
	offersBtnSel = "//span[contains(text(), 'Ver Ofertas Presentadas')]"
	nomenclature = "AS-SM-35-2024-ELSE-1"
)

// fakeDriver plays back scripted pages so flow logic runs without a
// browser.
type fakeDriver struct {
	// url prefix to page source
	pages map[string]string
	// selectors WaitVisible times out on
	hidden map[string]bool
	// selectors Click fails on
	unclickable map[string]bool
	// selector to page source shown after clicking it
	clickPages map[string]string
	// "selector|name" to attribute value
	attrs map[string]string

	source      string
	history     []string
	typed       map[string]string
	navigations int
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		pages:       map[string]string{},
		hidden:      map[string]bool{},
		unclickable: map[string]bool{},
		clickPages:  map[string]string{},
		attrs:       map[string]string{},
		typed:       map[string]string{},
	}
}

func (d *fakeDriver) Navigate(_ context.Context, url string) error {
	d.navigations++
	for prefix, source := range d.pages {
		if strings.HasPrefix(url, prefix) {
			d.source = source
			return nil
		}
	}
	d.source = ""
	return nil
}

func (d *fakeDriver) WaitVisible(_ context.Context, selector string, _ time.Duration) error {
	if d.hidden[selector] {
		return errors.New("wait timed out")
	}
	return nil
}

func (d *fakeDriver) Click(_ context.Context, selector string) error {
	if d.unclickable[selector] {
		return errors.New("no matching node")
	}
	if source, ok := d.clickPages[selector]; ok {
		d.history = append(d.history, d.source)
		d.source = source
	}
	return nil
}

func (d *fakeDriver) SendKeys(_ context.Context, selector, value string) error {
	d.typed[selector] = value
	return nil
}

func (d *fakeDriver) Attribute(_ context.Context, selector, name string) (string, bool, error) {
	value, ok := d.attrs[selector+"|"+name]
	return value, ok, nil
}

func (d *fakeDriver) PageSource(_ context.Context) (string, error) {
	return d.source, nil
}

func (d *fakeDriver) Back(_ context.Context) error {
	if n := len(d.history); n > 0 {
		d.source = d.history[n-1]
		d.history = d.history[:n-1]
	}
	return nil
}

func (d *fakeDriver) Close() error { return nil }

func newTestScraper(t *testing.T, driver *fakeDriver) *Scraper {
	t.Helper()
	cache, err := cachestore.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return NewScraper(driver, cache)
}

func scriptedDriver() *fakeDriver {
	driver := newFakeDriver()
	driver.pages[BuscadorUrl] = "<html><body>finder</body></html>"
	driver.pages[FichaUrl] = fichaFixture
	driver.attrs[fichaLinkSel+"|href"] = FichaUrl + "?id=ficha-uuid-1&ptoRetorno=LOCAL"
	driver.unclickable[offersBtnSel] = true
	return driver
}

func TestSearchProcessNoResultsIsNotFound(t *testing.T) {
	driver := scriptedDriver()
	driver.hidden[fichaLinkSel] = true

	scraper := newTestScraper(t, driver)
	_, err := scraper.SearchProcess(context.Background(), nomenclature)
	require.ErrorIs(t, err, restyutil.ErrNotFound)
	require.Equal(t, nomenclature, driver.typed["//input[contains(@id, 'siglaNomenclatura')]"])
}

func TestSearchProcessExtractsFichaId(t *testing.T) {
	scraper := newTestScraper(t, scriptedDriver())
	id, err := scraper.SearchProcess(context.Background(), nomenclature)
	require.NoError(t, err)
	require.Equal(t, "ficha-uuid-1", id)
	require.Equal(t, StateResultsLoaded, scraper.State())
}

func TestExtractFichaParsesAllPanels(t *testing.T) {
	scraper := newTestScraper(t, scriptedDriver())
	ficha, err := scraper.ExtractFicha(context.Background(), "ficha-uuid-1", nomenclature)
	require.NoError(t, err)
	require.Empty(t, ficha.Error)
	require.Equal(t, StateDone, scraper.State())

	require.Equal(t, "AS-SM-35-2024-ELSE-1", ficha.General["Nomenclatura"])
	require.Equal(t, "ELECTRO SUR ESTE S.A.A.", ficha.Entity["Nombre o Sigla de la Entidad"])
	require.Equal(t, "20116544289", ficha.Entity["RUC"])
	require.Equal(t, "S/ 100,000.00", ficha.Procedure["Valor Referencial"])

	require.Equal(t, []ScheduleRow{
		{Stage: "Convocatoria", Start: "01/07/2024", End: "01/07/2024"},
		{Stage: "Presentacion de ofertas(Electronica)", Start: "10/07/2024", End: "11/07/2024"},
	}, ficha.Schedule)

	require.Len(t, ficha.Documents, 1)
	require.Equal(t, "Bases", ficha.Documents[0].Name)
	require.Equal(t, "/documentos/bases.pdf", ficha.Documents[0].URL)

	// offers control missing, bidders stay empty
	require.Empty(t, ficha.Bidders)
}

func TestExtractFichaCollectsOffers(t *testing.T) {
	driver := scriptedDriver()
	delete(driver.unclickable, offersBtnSel)
	driver.clickPages[offersBtnSel] = offersFixture

	scraper := newTestScraper(t, driver)
	ficha, err := scraper.ExtractFicha(context.Background(), "ficha-uuid-1", nomenclature)
	require.NoError(t, err)

	require.Equal(t, []BidderRow{
		{RUC: "20123456789", Name: "CONSTRUCTORA ANDINA S.A.C.", Amount: "S/ 95,000.00"},
		{RUC: "20987654321", Name: "SERVICIOS DEL SUR E.I.R.L.", Amount: "S/ 98,500.00"},
	}, ficha.Bidders)
	// the flow navigated back to the ficha afterwards
	require.Equal(t, fichaFixture, driver.source)
}

func TestExtractFichaTimeoutIsPartialResult(t *testing.T) {
	driver := scriptedDriver()
	driver.hidden["//div[contains(@class, 'ui-panel')]"] = true

	scraper := newTestScraper(t, driver)
	ficha, err := scraper.ExtractFicha(context.Background(), "ficha-uuid-1", nomenclature)
	require.NoError(t, err)
	require.NotEmpty(t, ficha.Error)
	require.Equal(t, StateError, scraper.State())
	require.Empty(t, ficha.Schedule)
}

func TestScrapeProcessCachesOutcome(t *testing.T) {
	driver := scriptedDriver()
	scraper := newTestScraper(t, driver)

	first, err := scraper.ScrapeProcess(context.Background(), nomenclature)
	require.NoError(t, err)
	require.Empty(t, first.Error)
	navigationsAfterFirst := driver.navigations

	second, err := scraper.ScrapeProcess(context.Background(), nomenclature)
	require.NoError(t, err)
	require.Equal(t, first.General, second.General)
	require.Equal(t, navigationsAfterFirst, driver.navigations)
}

func TestScrapeProcessRetriesAfterLoadFailure(t *testing.T) {
	driver := scriptedDriver()
	driver.hidden["//div[contains(@class, 'ui-panel')]"] = true
	scraper := newTestScraper(t, driver)

	first, err := scraper.ScrapeProcess(context.Background(), nomenclature)
	require.NoError(t, err)
	require.Equal(t, "ficha panels never rendered", first.Error)
	navigationsAfterFirst := driver.navigations

	// the portal recovers, the next run must hit the browser again
	delete(driver.hidden, "//div[contains(@class, 'ui-panel')]")
	second, err := scraper.ScrapeProcess(context.Background(), nomenclature)
	require.NoError(t, err)
	require.Empty(t, second.Error)
	require.Greater(t, driver.navigations, navigationsAfterFirst)
	require.Equal(t, "AS-SM-35-2024-ELSE-1", second.General["Nomenclatura"])
}

func TestScrapeProcessCachesNotFound(t *testing.T) {
	driver := scriptedDriver()
	driver.hidden[fichaLinkSel] = true
	scraper := newTestScraper(t, driver)

	ficha, err := scraper.ScrapeProcess(context.Background(), nomenclature)
	require.NoError(t, err)
	require.Equal(t, "process not found", ficha.Error)

	navigationsAfterFirst := driver.navigations
	_, err = scraper.ScrapeProcess(context.Background(), nomenclature)
	require.NoError(t, err)
	require.Equal(t, navigationsAfterFirst, driver.navigations)
}
