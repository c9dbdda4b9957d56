package sqlite

import (
	"context"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"testing/fstest"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
)

var testNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

// Two UUIDs sharing their first 13 hex characters, and so one projection.
var (
	collideLow  = uuid.MustParse("a1b2c3d4-e5f6-7000-8000-000000000001")
	collideHigh = uuid.MustParse("a1b2c3d4-e5f6-7fff-8000-000000000002")
)

type collisionRecorder struct {
	mu      sync.Mutex
	matches []int
}

func (r *collisionRecorder) hook(_ context.Context, _ lookup.Predicate, matches int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.matches = append(r.matches, matches)
}

func (r *collisionRecorder) calls() []int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]int(nil), r.matches...)
}

func openTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "invoicekit.db"), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testBuilder() *lookup.Builder {
	return lookup.NewBuilder(gid.MustNew(gid.DefaultNamespace), storage.IntegerTypes...)
}

func predicateFor(t *testing.T, typ string, id uuid.UUID) lookup.Predicate {
	t.Helper()
	b := testBuilder()
	pred, err := b.Predicate(typ, b.Codec().Encode(typ, id))
	require.NoError(t, err)
	return pred
}

func TestOpen_EmptyPath(t *testing.T) {
	_, err := Open(context.Background(), "  ")
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
}

func TestOpen_MigrationsAppliedOnce(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "invoicekit.db")

	s, err := Open(ctx, path)
	require.NoError(t, err)
	_, err = s.CreateCustomer(ctx, "Acme", "")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(ctx, path)
	require.NoError(t, err)
	defer s.Close()

	var applied int
	require.NoError(t, s.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM schema_migrations`).Scan(&applied))
	assert.Equal(t, 2, applied)

	customers, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	assert.Len(t, customers, 1)
}

func TestApplyMigrations(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	fsys := fstest.MapFS{
		"migrations/0001_widgets.sql": {Data: []byte("-- +migrate Up\nCREATE TABLE widgets (id INTEGER);\n-- +migrate Down\nDROP TABLE widgets;\n")},
		"migrations/0002_gadgets.sql": {Data: []byte("CREATE TABLE gadgets (id INTEGER);")},
		"migrations/README.md":        {Data: []byte("not a migration")},
	}

	require.NoError(t, ApplyMigrations(ctx, s.DB(), fsys, "migrations"))
	// The second run must skip both files rather than fail on CREATE TABLE.
	require.NoError(t, ApplyMigrations(ctx, s.DB(), fsys, "migrations"))

	for _, table := range []string{"widgets", "gadgets"} {
		var name string
		err := s.DB().QueryRowContext(ctx,
			`SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?`, table).Scan(&name)
		require.NoError(t, err, table)
	}

	require.Error(t, ApplyMigrations(ctx, nil, fsys, "migrations"))
}

func TestUpSection(t *testing.T) {
	assert.Equal(t, "\nA\n", upSection("-- +migrate Up\nA\n-- +migrate Down\nB"))
	assert.Equal(t, "\nA", upSection("-- +migrate Up\nA"))
	assert.Equal(t, "plain", upSection("plain"))
}

func TestCustomers(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.CreateCustomer(ctx, " ", "x@example.com")
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	zed, err := s.CreateCustomer(ctx, "Zed Plumbing", " zed@example.com ")
	require.NoError(t, err)
	assert.Equal(t, "zed@example.com", zed.Email)
	assert.Equal(t, testNow, zed.CreatedAt)

	acme, err := s.CreateCustomer(ctx, "Acme", "")
	require.NoError(t, err)

	list, err := s.ListCustomers(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Acme", list[0].Name)
	assert.Equal(t, "Zed Plumbing", list[1].Name)

	got, err := s.GetCustomer(ctx, predicateFor(t, storage.TypeCustomer, acme.ID))
	require.NoError(t, err)
	assert.Equal(t, acme, got)

	updated, err := s.UpdateCustomer(ctx, acme.ID, "Acme Ltd", "billing@acme.test")
	require.NoError(t, err)
	assert.Equal(t, "Acme Ltd", updated.Name)
	assert.Equal(t, acme.CreatedAt, updated.CreatedAt)

	_, err = s.UpdateCustomer(ctx, uuid.New(), "Nobody", "")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.DeleteCustomer(ctx, zed.ID))
	require.ErrorIs(t, s.DeleteCustomer(ctx, zed.ID), storage.ErrNotFound)

	_, err = s.GetCustomer(ctx, predicateFor(t, storage.TypeCustomer, zed.ID))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetCustomer_RawLegacyUUID(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c, err := s.CreateCustomer(ctx, "Acme", "")
	require.NoError(t, err)

	pred, err := testBuilder().Predicate(storage.TypeCustomer, c.ID.String())
	require.NoError(t, err)

	got, err := s.GetCustomer(ctx, pred)
	require.NoError(t, err)
	assert.Equal(t, c.ID, got.ID)
}

func TestGetCustomer_Collision(t *testing.T) {
	ctx := context.Background()
	rec := &collisionRecorder{}
	s := openTestStore(t, WithCollisionHook(rec.hook))

	// Insert the higher id first so ordering, not insertion, decides.
	for _, id := range []uuid.UUID{collideHigh, collideLow} {
		require.NoError(t, s.insertCustomer(ctx, storage.Customer{ID: id, Name: id.String(), CreatedAt: testNow}))
	}

	got, err := s.GetCustomer(ctx, predicateFor(t, storage.TypeCustomer, collideHigh))
	require.NoError(t, err)
	assert.Equal(t, collideLow, got.ID)
	assert.Equal(t, []int{2}, rec.calls())
}

func TestGetCustomer_WrongPredicateKind(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetCustomer(context.Background(), lookup.Predicate{Kind: lookup.KindInteger, Int: 7})
	require.ErrorIs(t, err, storage.ErrInvalidPredicate)
}

func TestJobs(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.CreateJob(ctx, uuid.New(), "Fix sink")
	require.ErrorIs(t, err, storage.ErrNotFound)

	c, err := s.CreateCustomer(ctx, "Acme", "")
	require.NoError(t, err)

	_, err = s.CreateJob(ctx, c.ID, "")
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	job, err := s.CreateJob(ctx, c.ID, "Fix sink")
	require.NoError(t, err)
	assert.Equal(t, storage.JobOpen, job.Status)

	got, err := s.GetJob(ctx, predicateFor(t, storage.TypeJob, job.ID))
	require.NoError(t, err)
	assert.Equal(t, job, got)

	jobs, err := s.ListJobsByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []storage.Job{job}, jobs)

	updated, err := s.UpdateJobStatus(ctx, job.ID, storage.JobActive)
	require.NoError(t, err)
	assert.Equal(t, storage.JobActive, updated.Status)

	_, err = s.UpdateJobStatus(ctx, job.ID, "paused")
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	_, err = s.UpdateJobStatus(ctx, uuid.New(), storage.JobActive)
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestUpdateJobStatus_CancelVoidsOpenInvoices(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c, err := s.CreateCustomer(ctx, "Acme", "")
	require.NoError(t, err)
	job, err := s.CreateJob(ctx, c.ID, "Roof")
	require.NoError(t, err)
	jobID := uuid.NullUUID{UUID: job.ID, Valid: true}

	open, err := s.CreateInvoice(ctx, storage.NewInvoice{CustomerID: c.ID, JobID: jobID, AmountCents: 100})
	require.NoError(t, err)
	paid, err := s.CreateInvoice(ctx, storage.NewInvoice{CustomerID: c.ID, JobID: jobID, AmountCents: 200})
	require.NoError(t, err)
	_, err = s.MarkInvoicePaid(ctx, paid.ID)
	require.NoError(t, err)
	other, err := s.CreateInvoice(ctx, storage.NewInvoice{CustomerID: c.ID, AmountCents: 300})
	require.NoError(t, err)

	_, err = s.UpdateJobStatus(ctx, job.ID, storage.JobCancelled)
	require.NoError(t, err)

	byJob, err := s.ListInvoicesByJob(ctx, job.ID)
	require.NoError(t, err)
	status := map[uuid.UUID]string{}
	for _, inv := range byJob {
		status[inv.ID] = inv.Status
		assert.Equal(t, storage.JobCancelled, inv.JobStatus)
	}
	assert.Equal(t, storage.InvoiceVoid, status[open.ID])
	assert.Equal(t, storage.InvoicePaid, status[paid.ID])

	unrelated, err := s.invoiceByID(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.InvoiceOpen, unrelated.Status)
}

func TestInvoices(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c, err := s.CreateCustomer(ctx, "Acme", "")
	require.NoError(t, err)
	other, err := s.CreateCustomer(ctx, "Other", "")
	require.NoError(t, err)
	job, err := s.CreateJob(ctx, c.ID, "Boiler")
	require.NoError(t, err)

	_, err = s.CreateInvoice(ctx, storage.NewInvoice{CustomerID: other.ID, JobID: uuid.NullUUID{UUID: job.ID, Valid: true}})
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = s.CreateInvoice(ctx, storage.NewInvoice{CustomerID: c.ID, AmountCents: -1})
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = s.CreateInvoice(ctx, storage.NewInvoice{CustomerID: uuid.New()})
	require.ErrorIs(t, err, storage.ErrNotFound)

	inv, err := s.CreateInvoice(ctx, storage.NewInvoice{
		CustomerID:  c.ID,
		JobID:       uuid.NullUUID{UUID: job.ID, Valid: true},
		AmountCents: 12500,
	})
	require.NoError(t, err)
	assert.Equal(t, "INV-"+strings.ToUpper(gid.Prefix(inv.ID)[:8]), inv.Number)
	assert.Equal(t, storage.InvoiceOpen, inv.Status)
	assert.Equal(t, storage.JobOpen, inv.JobStatus)
	assert.Nil(t, inv.PaidAt)

	named, err := s.CreateInvoice(ctx, storage.NewInvoice{CustomerID: c.ID, Number: "2026-001"})
	require.NoError(t, err)
	assert.Equal(t, "2026-001", named.Number)
	assert.False(t, named.JobID.Valid)
	assert.Empty(t, named.JobStatus)

	got, err := s.GetInvoice(ctx, predicateFor(t, storage.TypeInvoice, inv.ID))
	require.NoError(t, err)
	assert.Equal(t, inv, got)

	list, err := s.ListInvoicesByCustomer(ctx, c.ID)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	paid, err := s.MarkInvoicePaid(ctx, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, storage.InvoicePaid, paid.Status)
	require.NotNil(t, paid.PaidAt)
	assert.Equal(t, testNow, *paid.PaidAt)

	_, err = s.MarkInvoicePaid(ctx, inv.ID)
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = s.MarkInvoicePaid(ctx, uuid.New())
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetInvoice_ProjectionCollision(t *testing.T) {
	ctx := context.Background()
	rec := &collisionRecorder{}
	s := openTestStore(t, WithCollisionHook(rec.hook))

	c, err := s.CreateCustomer(ctx, "Acme", "")
	require.NoError(t, err)
	for _, id := range []uuid.UUID{collideHigh, collideLow} {
		require.NoError(t, s.insertInvoice(ctx, storage.Invoice{
			ID: id, CustomerID: c.ID, Number: id.String(), Status: storage.InvoiceOpen, CreatedAt: testNow,
		}))
	}

	got, err := s.GetInvoice(ctx, predicateFor(t, storage.TypeInvoice, collideLow))
	require.NoError(t, err)
	assert.Equal(t, collideLow, got.ID)
	assert.Equal(t, []int{2}, rec.calls())
}

func TestDeleteCustomer_Cascades(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	c, err := s.CreateCustomer(ctx, "Acme", "")
	require.NoError(t, err)
	job, err := s.CreateJob(ctx, c.ID, "Roof")
	require.NoError(t, err)
	inv, err := s.CreateInvoice(ctx, storage.NewInvoice{CustomerID: c.ID, JobID: uuid.NullUUID{UUID: job.ID, Valid: true}})
	require.NoError(t, err)

	require.NoError(t, s.DeleteCustomer(ctx, c.ID))

	_, err = s.GetJob(ctx, predicateFor(t, storage.TypeJob, job.ID))
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetInvoice(ctx, predicateFor(t, storage.TypeInvoice, inv.ID))
	require.ErrorIs(t, err, storage.ErrNotFound)
}

func TestProducts(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	b := testBuilder()

	_, err := s.CreateProduct(ctx, "", 100)
	require.ErrorIs(t, err, storage.ErrInvalidArgument)
	_, err = s.CreateProduct(ctx, "Valve", -1)
	require.ErrorIs(t, err, storage.ErrInvalidArgument)

	valve, err := s.CreateProduct(ctx, "Valve", 1250)
	require.NoError(t, err)
	pipe, err := s.CreateProduct(ctx, "Pipe", 300)
	require.NoError(t, err)
	assert.Equal(t, valve.ID+1, pipe.ID)

	external, err := b.Codec().EncodeInt(storage.TypeProduct, pipe.ID)
	require.NoError(t, err)
	pred, err := b.Predicate(storage.TypeProduct, external)
	require.NoError(t, err)

	got, err := s.GetProduct(ctx, pred)
	require.NoError(t, err)
	assert.Equal(t, pipe, got)

	_, err = s.GetProduct(ctx, lookup.Predicate{Kind: lookup.KindInteger, Int: 999})
	require.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.GetProduct(ctx, lookup.Predicate{Kind: lookup.KindPrefix, Prefix: "a1b2c3d4e5f67"})
	require.ErrorIs(t, err, storage.ErrInvalidPredicate)

	updated, err := s.UpdateProductPrice(ctx, valve.ID, 1500)
	require.NoError(t, err)
	assert.Equal(t, int64(1500), updated.PriceCents)
	_, err = s.UpdateProductPrice(ctx, 999, 1)
	require.ErrorIs(t, err, storage.ErrNotFound)

	all, err := s.ListProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, []storage.Product{updated, pipe}, all)
}

func TestStore_PingAndCancelledContext(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Ping(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.ListCustomers(ctx)
	require.ErrorIs(t, err, context.Canceled)
}

func TestStore_NilIsNotOpen(t *testing.T) {
	var s *Store
	_, err := s.ListProducts(context.Background())
	require.Error(t, err)
	require.NoError(t, s.Close())
}
