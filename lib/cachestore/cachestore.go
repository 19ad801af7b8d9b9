// Package cachestore persists raw acquisition payloads keyed by
// acquisition path and scope. Bulk period payloads are immutable once
// captured; point lookups carry a TTL. A corrupt or expired entry
// behaves like a miss so a broken cache can never abort a crawl.
package cachestore

import (
	"bytes"
	"context"
	"encoding/gob"
	"errors"
	"strings"
	"time"

	"seaceintel-backend/lib/timezone"

	"github.com/dgraph-io/badger/v4"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("cachestore")

var ErrMiss = errors.New("cache miss")

// Immutable marks an entry that is never considered stale.
const Immutable time.Duration = 0

type entry struct {
	Payload    []byte
	CapturedAt int64
	// unix seconds, 0 means the entry never expires
	ExpiresAt int64
}

type Entry struct {
	Payload    []byte
	CapturedAt time.Time
}

type Store struct {
	db *badger.DB
}

func Open(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

// OpenInMemory is used by tests.
func OpenInMemory() (*Store, error) {
	opts := badger.DefaultOptions("").WithInMemory(true)
	opts.Logger = nil
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func safeRune(c rune) rune {
	if c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' {
		return c
	}
	switch c {
	case '-', '_', '.':
		return c
	}
	return '_'
}

// Key builds a deterministic storage key from an acquisition path and
// scope descriptor parts, escaping anything unsafe for a storage
// identifier.
func Key(parts ...string) string {
	escaped := make([]string, len(parts))
	for i, p := range parts {
		escaped[i] = strings.Map(safeRune, p)
	}
	return strings.Join(escaped, "/")
}

func (s *Store) Get(ctx context.Context, key string) (Entry, error) {
	ctx, span := tracer.Start(ctx, "Get")
	defer span.End()
	span.SetAttributes(attribute.String("cache_key", key))

	tx := s.db.NewTransaction(false)
	defer tx.Discard()

	item, err := tx.Get([]byte(key))
	if err == badger.ErrKeyNotFound {
		return Entry{}, ErrMiss
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to read item from badger")
		return Entry{}, err
	}
	serialized, err := item.ValueCopy(nil)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to copy cached item")
		return Entry{}, err
	}

	var cached entry
	err = gob.NewDecoder(bytes.NewBuffer(serialized)).Decode(&cached)
	if err != nil {
		// a corrupt or partially written entry is a miss, not a fault
		span.AddEvent("drop corrupt cache entry", trace.WithAttributes(
			attribute.String("key", key),
		))
		s.delete(key)
		return Entry{}, ErrMiss
	}

	if cached.ExpiresAt != 0 && timezone.Now().Unix() >= cached.ExpiresAt {
		span.SetStatus(codes.Ok, "CACHE EXPIRED")
		s.delete(key)
		return Entry{}, ErrMiss
	}

	span.SetStatus(codes.Ok, "CACHE HIT")
	return Entry{
		Payload:    cached.Payload,
		CapturedAt: time.Unix(cached.CapturedAt, 0).In(timezone.Location),
	}, nil
}

// Put stores a payload under key. A ttl of Immutable means the entry
// never goes stale; any other ttl makes the entry expire.
func (s *Store) Put(ctx context.Context, key string, payload []byte, ttl time.Duration) error {
	ctx, span := tracer.Start(ctx, "Put")
	defer span.End()
	span.SetAttributes(
		attribute.String("cache_key", key),
		attribute.Int("payload_size", len(payload)),
	)

	now := timezone.Now()
	e := entry{
		Payload:    payload,
		CapturedAt: now.Unix(),
	}
	if ttl != Immutable {
		e.ExpiresAt = now.Add(ttl).Unix()
	}

	serialized := bytes.NewBuffer(nil)
	err := gob.NewEncoder(serialized).Encode(e)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to serialize cache entry")
		return err
	}

	tx := s.db.NewTransaction(true)
	defer tx.Discard()
	err = tx.Set([]byte(key), serialized.Bytes())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to set badger item")
		return err
	}
	return tx.Commit()
}

func (s *Store) delete(key string) {
	tx := s.db.NewTransaction(true)
	defer tx.Discard()
	if err := tx.Delete([]byte(key)); err == nil {
		tx.Commit()
	}
}
