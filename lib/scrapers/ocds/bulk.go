package ocds

import (
	"archive/zip"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"seaceintel-backend/lib/cachestore"
	"seaceintel-backend/lib/restyutil"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// DownloadBulk fetches the compressed archive for one (year, month)
// scope and returns every record in it. A scope's archive is immutable
// upstream once the period closes, so a cached payload is never
// re-fetched.
func (c *Client) DownloadBulk(ctx context.Context, year, month int, source string) ([]Record, error) {
	ctx, span := tracer.Start(ctx, "DownloadBulk")
	defer span.End()

	if source == "" {
		source = DefaultSource
	}
	scope := fmt.Sprintf("%04d-%02d", year, month)
	span.SetAttributes(
		attribute.String("scope", scope),
		attribute.String("source", source),
	)

	key := cachestore.Key("bulk", source, scope)
	if c.cache != nil {
		cached, err := c.cache.Get(ctx, key)
		if err == nil {
			span.SetStatus(codes.Ok, "CACHE HIT")
			return decodeBulkPayload(cached.Payload, scope)
		}
	}

	res, err := c.http.R().
		SetContext(ctx).
		Get(fmt.Sprintf("/file/%s/json/%04d/%02d/", source, year, month))
	if cerr := restyutil.Classify(res, err); cerr != nil {
		span.RecordError(cerr)
		return nil, cerr
	}

	payload, err := extractSingleJson(res.Body())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "bad bulk archive")
		return nil, err
	}

	if c.cache != nil {
		err = c.cache.Put(ctx, key, payload, cachestore.Immutable)
		if err != nil {
			span.RecordError(err)
			slog.Warn("failed to cache bulk payload", "scope", scope, "err", err)
		}
	}

	slog.Info("downloaded bulk archive",
		"scope", scope, "source", source, "bytes", len(payload))
	return decodeBulkPayload(payload, scope)
}

// extractSingleJson opens a zip archive and returns the contents of
// its JSON member. An archive with zero or more than one JSON member
// is malformed and fatal for its scope only.
func extractSingleJson(archive []byte) ([]byte, error) {
	zr, err := zip.NewReader(bytes.NewReader(archive), int64(len(archive)))
	if err != nil {
		return nil, restyutil.Fatal("not a zip archive: %w", err)
	}

	var jsonFiles []*zip.File
	for _, f := range zr.File {
		if len(f.Name) > 5 && f.Name[len(f.Name)-5:] == ".json" {
			jsonFiles = append(jsonFiles, f)
		}
	}
	if len(jsonFiles) != 1 {
		return nil, restyutil.Fatal("bulk archive holds %d json files, want exactly 1", len(jsonFiles))
	}

	rc, err := jsonFiles[0].Open()
	if err != nil {
		return nil, restyutil.Fatal("failed to open archive member: %w", err)
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		return nil, restyutil.Fatal("failed to read archive member: %w", err)
	}
	return payload, nil
}

func decodeBulkPayload(payload []byte, scope string) ([]Record, error) {
	var envelope RecordsEnvelope
	err := json.Unmarshal(payload, &envelope)
	if err != nil {
		return nil, restyutil.Fatal("malformed bulk payload for %s: %w", scope, err)
	}
	return envelope.Records, nil
}
