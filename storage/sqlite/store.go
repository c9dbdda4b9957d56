// Package sqlite is the SQLite-backed invoicing store.
//
// Reads by external identifier take a lookup.Predicate. Customers and jobs
// are matched with a prefix LIKE on their UUID text, invoices with equality
// on an indexed projection column, products with integer equality. Every
// predicate read fetches at most two rows and reports a second match to the
// configured collision hook before returning the first.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
	"github.com/jonwraymond/invoicekit/storage/sqlite/migrations"
)

// Store persists invoicing records in SQLite.
//
// Contract:
// - Concurrency: safe for concurrent use; database/sql pools connections.
// - Errors: missing rows are storage.ErrNotFound.
type Store struct {
	db    *sql.DB
	hook  lookup.CollisionHook
	now   func() time.Time
	newID func() uuid.UUID
}

// Option configures a Store.
type Option func(*Store)

// WithCollisionHook sets the hook told about predicates matching more than
// one row.
func WithCollisionHook(hook lookup.CollisionHook) Option {
	return func(s *Store) {
		s.hook = hook
	}
}

// WithClock replaces the time source used for created and paid timestamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// Open opens the database at path and applies embedded migrations.
func Open(ctx context.Context, path string, opts ...Option) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: storage path is required", storage.ErrInvalidArgument)
	}
	dsn := "file:" + filepath.Clean(path) +
		"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := ApplyMigrations(ctx, db, migrations.FS, "."); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	s := &Store{
		db:    db,
		now:   time.Now,
		newID: uuid.New,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// DB exposes the handle for maintenance tasks.
func (s *Store) DB() *sql.DB {
	return s.db
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Millisecond)
}

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(v int64) time.Time {
	return time.UnixMilli(v).UTC()
}

// first picks the first of items through lookup.First so collisions reach
// the hook, and maps an empty result to storage.ErrNotFound.
func first[T any](ctx context.Context, s *Store, items []T, pred lookup.Predicate) (T, error) {
	item, ok := lookup.First(ctx, items, pred, s.hook)
	if !ok {
		return item, storage.ErrNotFound
	}
	return item, nil
}

func requirePrefix(pred lookup.Predicate) error {
	if pred.Kind != lookup.KindPrefix || len(pred.Prefix) == 0 {
		return fmt.Errorf("%w: %s", storage.ErrInvalidPredicate, pred)
	}
	return nil
}

func notFoundIfNoRows(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}

func scanUUID(text string) (uuid.UUID, error) {
	id, err := uuid.Parse(text)
	if err != nil {
		return uuid.Nil, fmt.Errorf("scan uuid %q: %w", text, err)
	}
	return id, nil
}

var errNilStore = errors.New("sqlite: store is not open")

func (s *Store) check(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.db == nil {
		return errNilStore
	}
	return nil
}

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)
