// Package procindex maintains a queryable index of every process seen
// by past crawls: one row per nomenclature with just enough columns
// to find a process again without re-crawling its period.
package procindex

import (
	"context"
	"database/sql"
	"errors"
	"sort"
	"strings"

	"seaceintel-backend/lib/procurement"
	"seaceintel-backend/lib/timezone"

	"github.com/antzucaro/matchr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("services/procindex")

var ErrNotIndexed = errors.New("nomenclature not in index")

// descriptions are display columns, not payloads
const maxDescription = 200

type Entry struct {
	Nomenclature string
	TenderID     string
	OCID         string
	Entity       string
	Description  string
	Amount       float64
	Year         int
	Month        int
	UpdatedAt    int64
}

type Service struct {
	db *sql.DB
}

func NewService(database *sql.DB) Service {
	return Service{db: database}
}

// Upsert writes entries into the index, replacing any existing row
// for the same nomenclature.
func (s Service) Upsert(ctx context.Context, entries []Entry) error {
	ctx, span := tracer.Start(ctx, "Upsert")
	defer span.End()
	span.SetAttributes(attribute.Int("entries", len(entries)))

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	defer tx.Rollback()

	now := timezone.Now().Unix()
	for _, e := range entries {
		if e.Nomenclature == "" {
			continue
		}
		description := e.Description
		if len(description) > maxDescription {
			description = description[:maxDescription]
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO processes
				(nomenclature, tender_id, ocid, entity, description, amount, year, month, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT (nomenclature) DO UPDATE SET
				tender_id = excluded.tender_id,
				ocid = excluded.ocid,
				entity = excluded.entity,
				description = excluded.description,
				amount = excluded.amount,
				year = excluded.year,
				month = excluded.month,
				updated_at = excluded.updated_at`,
			e.Nomenclature, e.TenderID, e.OCID, e.Entity, description,
			e.Amount, e.Year, e.Month, now,
		)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			return err
		}
	}
	return tx.Commit()
}

// IndexRecords maps canonical records into index rows and upserts
// them.
func (s Service) IndexRecords(ctx context.Context, records []procurement.Record) error {
	entries := make([]Entry, 0, len(records))
	for _, r := range records {
		entry := Entry{
			Nomenclature: r.Nomenclature,
			TenderID:     r.TenderID,
			Entity:       r.Buyer.Name,
			Description:  r.Description,
		}
		if r.Provenance.Source == procurement.SourceOCDS {
			entry.OCID = r.SourceID
		}
		if r.Value != nil {
			entry.Amount = r.Value.Amount
		}
		if r.PublicationDate != nil {
			entry.Year = r.PublicationDate.Year()
			entry.Month = int(r.PublicationDate.Month())
		}
		entries = append(entries, entry)
	}
	return s.Upsert(ctx, entries)
}

func scanEntry(row interface{ Scan(...any) error }) (Entry, error) {
	var e Entry
	err := row.Scan(
		&e.Nomenclature, &e.TenderID, &e.OCID, &e.Entity,
		&e.Description, &e.Amount, &e.Year, &e.Month, &e.UpdatedAt,
	)
	return e, err
}

const entryColumns = `nomenclature, tender_id, ocid, entity, description, amount, year, month, updated_at`

// Lookup returns the indexed entry for an exact nomenclature.
func (s Service) Lookup(ctx context.Context, nomenclature string) (Entry, error) {
	ctx, span := tracer.Start(ctx, "Lookup")
	defer span.End()
	span.SetAttributes(attribute.String("nomenclature", nomenclature))

	row := s.db.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM processes WHERE nomenclature = ?`,
		nomenclature,
	)
	entry, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, ErrNotIndexed
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return Entry{}, err
	}
	return entry, nil
}

// Search lists entries whose nomenclature or entity contains the
// query, newest first.
func (s Service) Search(ctx context.Context, query string, limit int) ([]Entry, error) {
	ctx, span := tracer.Start(ctx, "Search")
	defer span.End()
	span.SetAttributes(attribute.String("query", query))

	if limit <= 0 {
		limit = 100
	}
	pattern := "%" + strings.ToUpper(query) + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+entryColumns+` FROM processes
		WHERE upper(nomenclature) LIKE ? OR upper(entity) LIKE ?
		ORDER BY year DESC, month DESC, nomenclature
		LIMIT ?`,
		pattern, pattern, limit,
	)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			span.RecordError(err)
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Nearest suggests the indexed nomenclatures closest to a code that
// missed an exact lookup, usually a typo in one segment.
func (s Service) Nearest(ctx context.Context, nomenclature string, limit int) ([]string, error) {
	ctx, span := tracer.Start(ctx, "Nearest")
	defer span.End()
	span.SetAttributes(attribute.String("nomenclature", nomenclature))

	if limit <= 0 {
		limit = 3
	}
	rows, err := s.db.QueryContext(ctx, `SELECT nomenclature FROM processes`)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	defer rows.Close()

	type scored struct {
		code     string
		distance int
	}
	var candidates []scored
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, err
		}
		candidates = append(candidates, scored{
			code:     code,
			distance: matchr.Levenshtein(nomenclature, code),
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].distance < candidates[j].distance
	})
	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	suggestions := make([]string, len(candidates))
	for i, c := range candidates {
		suggestions[i] = c.code
	}
	return suggestions, nil
}

func (s Service) Count(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT count(*) FROM processes`).Scan(&n)
	return n, err
}
