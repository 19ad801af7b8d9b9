// Package ocds acquires procurement process records from the Peru
// open-contracting API, either page by page or through the monthly
// bulk archives, populating a cache store along the way.
package ocds

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"seaceintel-backend/lib/cachestore"
	"seaceintel-backend/lib/restyutil"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("scrapers/ocds")

const (
	DefaultBaseUrl = "https://contratacionesabiertas.oece.gob.pe/api/v1"
	OcidPrefix     = "ocds-dgv273"
	DefaultSource  = "seace_v3"

	// source records can be updated upstream, so point lookups go
	// stale after an hour
	recordLifetime = time.Hour
)

type Client struct {
	http  *resty.Client
	cache *cachestore.Store
}

type ClientOptions struct {
	BaseUrl string
	// delay between paginated requests; bulk downloads tolerate a
	// shorter one so they reuse the same client unthrottled by size
	Delay   time.Duration
	Timeout time.Duration
	Retries int
	Cache   *cachestore.Store
}

func NewClient(opts ClientOptions) (*Client, error) {
	if opts.BaseUrl == "" {
		opts.BaseUrl = DefaultBaseUrl
	}
	if opts.Delay == 0 {
		opts.Delay = 300 * time.Millisecond
	}
	if opts.Timeout == 0 {
		opts.Timeout = 60 * time.Second
	}
	if opts.Retries == 0 {
		opts.Retries = 3
	}

	http, err := restyutil.NewClient(restyutil.Options{
		BaseUrl:    opts.BaseUrl,
		Delay:      opts.Delay,
		Timeout:    opts.Timeout,
		Retries:    opts.Retries,
		UserAgent:  "seaceintel/1.0",
		TracerName: "scrapers/ocds/http",
	})
	if err != nil {
		return nil, err
	}

	return &Client{http: http, cache: opts.Cache}, nil
}

func (c *Client) fetchEnvelope(ctx context.Context, url string) (RecordsEnvelope, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeader("accept", "application/json").
		Get(url)
	if cerr := restyutil.Classify(res, err); cerr != nil {
		return RecordsEnvelope{}, cerr
	}

	var envelope RecordsEnvelope
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		return RecordsEnvelope{}, restyutil.Fatal("malformed response from %s: %w", url, err)
	}
	return envelope, nil
}

// GetByOCID fetches one record by its full open-contracting id. The
// prefix is added when the caller passes the bare suffix.
func (c *Client) GetByOCID(ctx context.Context, ocid string) (Record, error) {
	ctx, span := tracer.Start(ctx, "GetByOCID")
	defer span.End()

	if len(ocid) < len(OcidPrefix) || ocid[:len(OcidPrefix)] != OcidPrefix {
		ocid = OcidPrefix + "-" + ocid
	}
	span.SetAttributes(attribute.String("ocid", ocid))

	key := cachestore.Key("record", ocid)
	if cached, err := c.cacheGet(ctx, key); err == nil {
		span.SetStatus(codes.Ok, "CACHE HIT")
		return cached, nil
	}

	envelope, err := c.fetchEnvelope(ctx, "/record/"+ocid)
	if err != nil {
		span.RecordError(err)
		return Record{}, err
	}
	if len(envelope.Records) == 0 {
		return Record{}, restyutil.ErrNotFound
	}

	c.cachePut(ctx, key, envelope.Records[0])
	return envelope.Records[0], nil
}

// GetByTenderID fetches one record by source and tender id (the SEACE
// expedient code).
func (c *Client) GetByTenderID(ctx context.Context, source, tenderId string) (Record, error) {
	ctx, span := tracer.Start(ctx, "GetByTenderID")
	defer span.End()
	span.SetAttributes(
		attribute.String("source", source),
		attribute.String("tender_id", tenderId),
	)

	if source == "" {
		source = DefaultSource
	}

	key := cachestore.Key("record", source, tenderId)
	if cached, err := c.cacheGet(ctx, key); err == nil {
		span.SetStatus(codes.Ok, "CACHE HIT")
		return cached, nil
	}

	envelope, err := c.fetchEnvelope(ctx, fmt.Sprintf("/record/%s/%s", source, tenderId))
	if err != nil {
		span.RecordError(err)
		return Record{}, err
	}
	if len(envelope.Records) == 0 {
		return Record{}, restyutil.ErrNotFound
	}

	c.cachePut(ctx, key, envelope.Records[0])
	return envelope.Records[0], nil
}

// AvailableMonths lists the months of a year for which the API offers
// a bulk archive.
func (c *Client) AvailableMonths(ctx context.Context, year int, source string) ([]int, error) {
	ctx, span := tracer.Start(ctx, "AvailableMonths")
	defer span.End()
	span.SetAttributes(attribute.Int("year", year))

	if source == "" {
		source = DefaultSource
	}

	res, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"year":       strconv.Itoa(year),
			"source":     source,
			"paginateBy": "100",
		}).
		Get("/files")
	if cerr := restyutil.Classify(res, err); cerr != nil {
		span.RecordError(cerr)
		return nil, cerr
	}

	var envelope filesEnvelope
	err = json.Unmarshal(res.Body(), &envelope)
	if err != nil {
		return nil, restyutil.Fatal("malformed /files response: %w", err)
	}

	var months []int
	for _, f := range envelope.Results {
		m, err := strconv.Atoi(f.Month)
		if err != nil {
			continue
		}
		months = append(months, m)
	}
	return months, nil
}

func (c *Client) cacheGet(ctx context.Context, key string) (Record, error) {
	if c.cache == nil {
		return Record{}, cachestore.ErrMiss
	}
	e, err := c.cache.Get(ctx, key)
	if err != nil {
		return Record{}, err
	}
	var record Record
	err = json.Unmarshal(e.Payload, &record)
	if err != nil {
		return Record{}, cachestore.ErrMiss
	}
	return record, nil
}

func (c *Client) cachePut(ctx context.Context, key string, record Record) {
	if c.cache == nil {
		return
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return
	}
	c.cache.Put(ctx, key, payload, recordLifetime)
}
