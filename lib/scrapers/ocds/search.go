package ocds

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"seaceintel-backend/lib/restyutil"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// guards against an endpoint that never signals end-of-results
const DefaultMaxPages = 200

type SearchMonthParams struct {
	Year   int
	Month  int
	Source string
	// page-count ceiling, DefaultMaxPages when zero
	MaxPages int
}

// SearchMonth walks the paginated /records endpoint for one month
// scope until a page comes back empty or the ceiling is hit. Raw
// records are returned unfiltered; text filters are the crawler's
// responsibility because the remote title filter is unreliable.
func (c *Client) SearchMonth(ctx context.Context, params SearchMonthParams) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "SearchMonth")
	defer span.End()

	if params.Source == "" {
		params.Source = DefaultSource
	}
	maxPages := params.MaxPages
	if maxPages == 0 {
		maxPages = DefaultMaxPages
	}

	segment := fmt.Sprintf("%04d-%02d", params.Year, params.Month)
	span.SetAttributes(attribute.String("segment", segment))

	var records []Record
	for page := 1; page <= maxPages; page++ {
		envelope, err := c.searchPage(ctx, map[string]string{
			"sourceId":           params.Source,
			"dataSegmentationID": segment,
			"page":               strconv.Itoa(page),
		})
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, fmt.Sprintf("page %d failed", page))
			return records, err
		}
		if len(envelope.Records) == 0 {
			break
		}
		records = append(records, envelope.Records...)
		slog.Debug("fetched records page",
			"segment", segment, "page", page, "records", len(envelope.Records))
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

type SearchDatesParams struct {
	StartDate string
	EndDate   string
	Source    string
	// "goods", "works" or "services"; empty means all
	Category string
	MaxPages int
}

// SearchDates pages through /records constrained by a date range.
func (c *Client) SearchDates(ctx context.Context, params SearchDatesParams) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "SearchDates")
	defer span.End()

	if params.Source == "" {
		params.Source = DefaultSource
	}
	maxPages := params.MaxPages
	if maxPages == 0 {
		maxPages = DefaultMaxPages
	}

	query := map[string]string{
		"sourceId":  params.Source,
		"startDate": params.StartDate,
	}
	if params.EndDate != "" {
		query["endDate"] = params.EndDate
	}
	if params.Category != "" {
		query["mainProcurementCategory"] = params.Category
	}

	var records []Record
	for page := 1; page <= maxPages; page++ {
		query["page"] = strconv.Itoa(page)
		envelope, err := c.searchPage(ctx, query)
		if err != nil {
			span.RecordError(err)
			return records, err
		}
		if len(envelope.Records) == 0 {
			break
		}
		records = append(records, envelope.Records...)
	}

	span.SetAttributes(attribute.Int("records", len(records)))
	return records, nil
}

func (c *Client) searchPage(ctx context.Context, query map[string]string) (RecordsEnvelope, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", "application/json").
		SetQueryParams(query).
		Get("/records")
	if cerr := restyutil.Classify(res, err); cerr != nil {
		return RecordsEnvelope{}, cerr
	}

	var envelope RecordsEnvelope
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		return RecordsEnvelope{}, restyutil.Fatal("malformed /records page: %w", err)
	}
	return envelope, nil
}
