package ocds

import (
	"context"
	"fmt"
	"log/slog"

	"seaceintel-backend/lib/textutil"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type Mode string

const (
	// ModePaginated walks the search endpoint page by page.
	ModePaginated Mode = "paginated"
	// ModeBulk downloads one archive per month scope.
	ModeBulk Mode = "bulk"
)

// Filter selects records after acquisition. The remote filters drop
// records inconsistently so matching always happens client side.
type Filter struct {
	// substring of the buying entity's name
	Entity string
	// substring of the tender title or description
	Text string
}

func (f Filter) Match(record Record) bool {
	compiled := record.Compiled()
	if f.Entity != "" && !textutil.ContainsFold(compiled.BuyerName(), f.Entity) {
		return false
	}
	if f.Text != "" {
		tender := compiled.GetTender()
		if !textutil.ContainsFold(tender.Title, f.Text) &&
			!textutil.ContainsFold(tender.Description, f.Text) {
			return false
		}
	}
	return true
}

type MonthScope struct {
	Year  int
	Month int
}

func (s MonthScope) String() string {
	return fmt.Sprintf("%04d-%02d", s.Year, s.Month)
}

// CrawlUnit is the outcome of one month scope. A unit either carries
// the count of records it contributed or the error that ended it;
// errors stay inside their unit and never abort the batch.
type CrawlUnit struct {
	Scope   string
	Records int
	Err     error
}

type Result struct {
	Units   []CrawlUnit
	Records []Record
}

func (r Result) Attempted() int {
	return len(r.Units)
}

func (r Result) Succeeded() int {
	n := 0
	for _, u := range r.Units {
		if u.Err == nil {
			n++
		}
	}
	return n
}

func (r Result) Failed() int {
	return r.Attempted() - r.Succeeded()
}

type CrawlerOptions struct {
	// ModePaginated when empty
	Mode   Mode
	Source string
	Filter Filter
	// page-count ceiling for paginated mode
	MaxPages int
}

// Crawler acquires month scopes through a Client and applies the
// configured filter to whatever comes back.
type Crawler struct {
	client *Client
	opts   CrawlerOptions
}

func NewCrawler(client *Client, opts CrawlerOptions) *Crawler {
	if opts.Mode == "" {
		opts.Mode = ModePaginated
	}
	if opts.Source == "" {
		opts.Source = DefaultSource
	}
	return &Crawler{client: client, opts: opts}
}

// CrawlMonths acquires every scope in order. A scope that fails is
// recorded in its unit and the crawl moves on to the next one.
func (c *Crawler) CrawlMonths(ctx context.Context, scopes []MonthScope) Result {
	ctx, span := tracer.Start(ctx, "CrawlMonths")
	defer span.End()
	span.SetAttributes(
		attribute.Int("scopes", len(scopes)),
		attribute.String("mode", string(c.opts.Mode)),
	)

	var result Result
	for _, scope := range scopes {
		records, err := c.crawlScope(ctx, scope)
		if err != nil {
			span.RecordError(err)
			slog.Warn("scope failed", "scope", scope.String(), "err", err)
			result.Units = append(result.Units, CrawlUnit{Scope: scope.String(), Err: err})
			continue
		}

		matched := 0
		for _, record := range records {
			if !c.opts.Filter.Match(record) {
				continue
			}
			result.Records = append(result.Records, record)
			matched++
		}
		slog.Info("scope done",
			"scope", scope.String(), "fetched", len(records), "matched", matched)
		result.Units = append(result.Units, CrawlUnit{Scope: scope.String(), Records: matched})
	}

	if result.Failed() > 0 {
		span.SetStatus(codes.Error, fmt.Sprintf(
			"%d of %d scopes failed", result.Failed(), result.Attempted()))
	}
	return result
}

// CrawlYear asks the source which months of the year exist and crawls
// them. It only errors when the month listing itself cannot be
// fetched.
func (c *Crawler) CrawlYear(ctx context.Context, year int) (Result, error) {
	ctx, span := tracer.Start(ctx, "CrawlYear")
	defer span.End()
	span.SetAttributes(attribute.Int("year", year))

	months, err := c.client.AvailableMonths(ctx, year, c.opts.Source)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list available months")
		return Result{}, err
	}

	scopes := make([]MonthScope, len(months))
	for i, month := range months {
		scopes[i] = MonthScope{Year: year, Month: month}
	}
	return c.CrawlMonths(ctx, scopes), nil
}

func (c *Crawler) crawlScope(ctx context.Context, scope MonthScope) ([]Record, error) {
	if c.opts.Mode == ModeBulk {
		return c.client.DownloadBulk(ctx, scope.Year, scope.Month, c.opts.Source)
	}
	return c.client.SearchMonth(ctx, SearchMonthParams{
		Year:     scope.Year,
		Month:    scope.Month,
		Source:   c.opts.Source,
		MaxPages: c.opts.MaxPages,
	})
}
