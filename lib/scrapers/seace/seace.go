// Package seace scrapes process detail fichas out of the legacy SEACE
// portal. The portal only renders through javascript, so acquisition
// runs a browser session through a small state machine: search the
// public finder by nomenclature, follow the ficha link, extract the
// detail panels, and optionally open the submitted-offers view.
package seace

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"seaceintel-backend/lib/browser"
	"seaceintel-backend/lib/cachestore"
	"seaceintel-backend/lib/restyutil"
	"seaceintel-backend/lib/timezone"

	"github.com/PuerkitoBio/goquery"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/seace")

const (
	BuscadorUrl = "https://prod2.seace.gob.pe/seacebus-uiwd-pub/buscadorPublico/buscadorPublico.xhtml"
	FichaUrl    = "https://prod2.seace.gob.pe/seacebus-uiwd-pub/fichaSeleccion/fichaSeleccion.xhtml"

	// a ficha changes rarely once published, re-scrape daily
	fichaLifetime = 24 * time.Hour

	resultTimeout = 10 * time.Second
	panelTimeout  = 15 * time.Second
)

type State string

const (
	StateIdle            State = "idle"
	StateSearching       State = "searching"
	StateResultsLoaded   State = "results_loaded"
	StateFichaLoaded     State = "ficha_loaded"
	StatePanelsExtracted State = "panels_extracted"
	StateOffersExtracted State = "offers_extracted"
	StateDone            State = "done"
	StateError           State = "error"
)

// Scraper owns exactly one browser session and walks it through the
// ficha flow. It is not safe for concurrent use; run one Scraper per
// parallel flow.
type Scraper struct {
	driver browser.Driver
	cache  *cachestore.Store
	state  State
}

func NewScraper(driver browser.Driver, cache *cachestore.Store) *Scraper {
	return &Scraper{
		driver: driver,
		cache:  cache,
		state:  StateIdle,
	}
}

func (s *Scraper) State() State {
	return s.state
}

func (s *Scraper) fail(reason string) {
	s.state = StateError
	slog.Warn("ficha flow failed", "reason", reason)
}

// SearchProcess looks a nomenclature up in the public finder and
// returns the opaque id of its ficha. A nomenclature with no ficha
// link in its results is restyutil.ErrNotFound, which is an answer
// rather than a fault.
func (s *Scraper) SearchProcess(ctx context.Context, nomenclature string) (string, error) {
	ctx, span := tracer.Start(ctx, "SearchProcess")
	defer span.End()
	span.SetAttributes(attribute.String("nomenclature", nomenclature))

	s.state = StateSearching

	err := s.driver.Navigate(ctx, BuscadorUrl)
	if err != nil {
		s.fail("finder page did not load")
		span.RecordError(err)
		span.SetStatus(codes.Error, "finder page did not load")
		return "", err
	}

	// the advanced-search section may already be expanded
	err = s.driver.WaitVisible(ctx, "//a[contains(text(), 'Busqueda Avanzada')]", resultTimeout)
	if err == nil {
		s.driver.Click(ctx, "//a[contains(text(), 'Busqueda Avanzada')]")
	}

	input := "//input[contains(@id, 'siglaNomenclatura')]"
	err = s.driver.WaitVisible(ctx, input, resultTimeout)
	if err != nil {
		s.fail("nomenclature input never appeared")
		span.RecordError(err)
		span.SetStatus(codes.Error, "nomenclature input never appeared")
		return "", err
	}
	err = s.driver.SendKeys(ctx, input, nomenclature)
	if err != nil {
		s.fail("could not fill nomenclature input")
		span.RecordError(err)
		return "", err
	}

	err = s.driver.Click(ctx, "//button[contains(@id, 'btnBuscar')]")
	if err != nil {
		s.fail("search button click failed")
		span.RecordError(err)
		return "", err
	}

	link := "//a[contains(@title, 'Ficha de Seleccion')]"
	err = s.driver.WaitVisible(ctx, link, resultTimeout)
	if err != nil {
		// no results row for this nomenclature
		s.state = StateResultsLoaded
		span.SetStatus(codes.Ok, "no ficha link in results")
		return "", restyutil.ErrNotFound
	}
	s.state = StateResultsLoaded

	href, ok, err := s.driver.Attribute(ctx, link, "href")
	if err != nil || !ok {
		s.fail("ficha link has no href")
		return "", restyutil.ErrNotFound
	}

	id := fichaIdFromHref(href)
	if id == "" {
		s.fail("ficha link href carries no id")
		return "", restyutil.ErrNotFound
	}
	return id, nil
}

func fichaIdFromHref(href string) string {
	_, query, found := strings.Cut(href, "id=")
	if !found {
		return ""
	}
	id, _, _ := strings.Cut(query, "&")
	return id
}

// ExtractFicha loads a ficha by id and pulls every panel it renders.
// Missing panels produce empty blocks. The submitted-offers view is
// explored best effort; its failure never fails the extraction.
func (s *Scraper) ExtractFicha(ctx context.Context, id, nomenclature string) (Ficha, error) {
	ctx, span := tracer.Start(ctx, "ExtractFicha")
	defer span.End()
	span.SetAttributes(
		attribute.String("ficha_id", id),
		attribute.String("nomenclature", nomenclature),
	)

	ficha := Ficha{
		ID:           id,
		Nomenclature: nomenclature,
		ExtractedAt:  timezone.Now(),
		General:      map[string]string{},
		Entity:       map[string]string{},
		Procedure:    map[string]string{},
	}

	err := s.driver.Navigate(ctx, FichaUrl+"?id="+id+"&ptoRetorno=LOCAL")
	if err != nil {
		s.fail("ficha page did not load")
		span.RecordError(err)
		ficha.Error = "ficha page did not load"
		return ficha, nil
	}
	err = s.driver.WaitVisible(ctx, "//div[contains(@class, 'ui-panel')]", panelTimeout)
	if err != nil {
		s.fail("ficha panels never rendered")
		span.RecordError(err)
		ficha.Error = "ficha panels never rendered"
		return ficha, nil
	}
	s.state = StateFichaLoaded

	source, err := s.driver.PageSource(ctx)
	if err != nil {
		s.fail("could not read ficha page source")
		span.RecordError(err)
		ficha.Error = "could not read ficha page source"
		return ficha, nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		s.fail("ficha page source did not parse")
		span.RecordError(err)
		ficha.Error = "ficha page source did not parse"
		return ficha, nil
	}

	extractPanels(doc, &ficha)
	s.state = StatePanelsExtracted

	if s.extractOffers(ctx, &ficha) {
		s.state = StateOffersExtracted
	}

	s.state = StateDone
	span.SetAttributes(
		attribute.Int("schedule_rows", len(ficha.Schedule)),
		attribute.Int("documents", len(ficha.Documents)),
		attribute.Int("bidders", len(ficha.Bidders)),
	)
	return ficha, nil
}

// extractOffers opens the submitted-offers view when the portal shows
// one. Every failure on this path is swallowed.
func (s *Scraper) extractOffers(ctx context.Context, ficha *Ficha) bool {
	button := "//span[contains(text(), 'Ver Ofertas Presentadas')]"
	err := s.driver.Click(ctx, button)
	if err != nil {
		return false
	}
	defer s.driver.Back(ctx)

	err = s.driver.WaitVisible(ctx, "//table//th", resultTimeout)
	if err != nil {
		return false
	}
	source, err := s.driver.PageSource(ctx)
	if err != nil {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(source))
	if err != nil {
		return false
	}

	ficha.Bidders = extractBidders(doc)
	return len(ficha.Bidders) > 0
}

// ScrapeProcess runs the whole flow for one nomenclature: search,
// extract, cache. A nomenclature the portal does not know yields a
// ficha annotated with an error, cached like a success so re-runs
// skip the browser. Load and transport failures are never cached;
// the next run retries the portal.
func (s *Scraper) ScrapeProcess(ctx context.Context, nomenclature string) (Ficha, error) {
	ctx, span := tracer.Start(ctx, "ScrapeProcess")
	defer span.End()
	span.SetAttributes(attribute.String("nomenclature", nomenclature))

	key := cachestore.Key("ficha", nomenclature)
	if cached, ok := s.cacheGet(ctx, key); ok {
		span.SetStatus(codes.Ok, "CACHE HIT")
		return cached, nil
	}

	id, err := s.SearchProcess(ctx, nomenclature)
	if err == restyutil.ErrNotFound {
		ficha := Ficha{
			Nomenclature: nomenclature,
			ExtractedAt:  timezone.Now(),
			Error:        "process not found",
		}
		s.cachePut(ctx, key, ficha)
		return ficha, nil
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "search flow failed")
		return Ficha{Nomenclature: nomenclature, Error: err.Error()}, err
	}

	ficha, err := s.ExtractFicha(ctx, id, nomenclature)
	if err != nil {
		span.RecordError(err)
		return ficha, err
	}
	if ficha.Error != "" {
		// a portal hiccup must not poison the cache for a day
		span.SetStatus(codes.Error, ficha.Error)
		return ficha, nil
	}

	s.cachePut(ctx, key, ficha)
	slog.Info("scraped ficha",
		"nomenclature", nomenclature,
		"schedule_rows", len(ficha.Schedule),
		"bidders", len(ficha.Bidders),
		"error", ficha.Error)
	return ficha, nil
}

func (s *Scraper) cacheGet(ctx context.Context, key string) (Ficha, bool) {
	if s.cache == nil {
		return Ficha{}, false
	}
	e, err := s.cache.Get(ctx, key)
	if err != nil {
		return Ficha{}, false
	}
	var ficha Ficha
	err = json.Unmarshal(e.Payload, &ficha)
	if err != nil {
		return Ficha{}, false
	}
	return ficha, true
}

func (s *Scraper) cachePut(ctx context.Context, key string, ficha Ficha) {
	if s.cache == nil {
		return
	}
	payload, err := json.Marshal(ficha)
	if err != nil {
		return
	}
	s.cache.Put(ctx, key, payload, fichaLifetime)
}
