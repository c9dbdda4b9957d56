package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/observe"
	"github.com/jonwraymond/invoicekit/storage"
)

var (
	// ErrNotFound is returned for unknown or malformed identifiers.
	ErrNotFound = errors.New("resolver: not found")

	// ErrInvalidInput is returned for writes the store rejects.
	ErrInvalidInput = errors.New("resolver: invalid input")
)

// Entity names used in operation names and cache tags.
const (
	entityCustomer = "customer"
	entityJob      = "job"
	entityInvoice  = "invoice"
	entityProduct  = "product"
)

type idArgs struct {
	ID string `json:"id"`
}

type noArgs struct{}

// Resolver composes the store, the identifier codec and the read cache.
//
// Contract:
// - Concurrency: safe for concurrent use.
// - Errors: failures unwrap to ErrNotFound or ErrInvalidInput where they
//   describe the caller's input; other store errors pass through wrapped.
// - Ownership: returned rows may be shared with the cache and must not be mutated.
type Resolver struct {
	store   storage.Store
	builder *lookup.Builder
	codec   *gid.Codec
	reader  *cache.Reader
	mw      *observe.Middleware
	logger  observe.Logger

	getCustomer     func(context.Context, string) (lookup.Row, error)
	listCustomers   func(context.Context, noArgs) ([]lookup.Row, error)
	getJob          func(context.Context, string) (lookup.Row, error)
	listJobs        func(context.Context, string) ([]lookup.Row, error)
	getInvoice      func(context.Context, string) (lookup.Row, error)
	listInvoices    func(context.Context, string) ([]lookup.Row, error)
	getProduct      func(context.Context, string) (lookup.Row, error)
	listProducts    func(context.Context, noArgs) ([]lookup.Row, error)
	createCustomer  func(context.Context, CustomerInput) (lookup.Row, error)
	updateCustomer  func(context.Context, updateCustomerArgs) (lookup.Row, error)
	deleteCustomer  func(context.Context, idArgs) (struct{}, error)
	createJob       func(context.Context, JobInput) (lookup.Row, error)
	updateJobStatus func(context.Context, jobStatusArgs) (lookup.Row, error)
	createInvoice   func(context.Context, InvoiceInput) (lookup.Row, error)
	markInvoicePaid func(context.Context, idArgs) (lookup.Row, error)
	createProduct   func(context.Context, ProductInput) (lookup.Row, error)
	updatePrice     func(context.Context, priceArgs) (lookup.Row, error)
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithReader caches reads through reader. Without one every read hits the store.
func WithReader(reader *cache.Reader) Option {
	return func(r *Resolver) {
		r.reader = reader
	}
}

// WithMiddleware instruments every operation with mw.
func WithMiddleware(mw *observe.Middleware) Option {
	return func(r *Resolver) {
		r.mw = mw
	}
}

// WithLogger sets the logger used for invalidation events.
func WithLogger(logger observe.Logger) Option {
	return func(r *Resolver) {
		r.logger = logger
	}
}

// New creates a resolver. Reads are wrapped at construction, so a reader
// whose kill switch is off at this point leaves them uncached for the
// resolver's lifetime.
func New(store storage.Store, builder *lookup.Builder, opts ...Option) *Resolver {
	r := &Resolver{
		store:   store,
		builder: builder,
		codec:   builder.Codec(),
		mw:      observe.NoopMiddleware(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = observe.NopLogger()
	}

	r.getCustomer = readByID[lookup.Row](r, entityCustomer, "get", storage.TypeCustomer, r.fetchCustomer, customerTags)
	r.listCustomers = readAll[[]lookup.Row](r, entityCustomer, r.fetchCustomers)
	r.getJob = readByID[lookup.Row](r, entityJob, "get", storage.TypeJob, r.fetchJob, jobTags)
	r.listJobs = readByID[[]lookup.Row](r, entityJob, "listByCustomer", storage.TypeCustomer, r.fetchCustomerJobs, customerJobsTags)
	r.getInvoice = readByID[lookup.Row](r, entityInvoice, "get", storage.TypeInvoice, r.fetchInvoice, invoiceTags)
	r.listInvoices = readByID[[]lookup.Row](r, entityInvoice, "listByCustomer", storage.TypeCustomer, r.fetchCustomerInvoices, customerInvoicesTags)
	r.getProduct = readByID[lookup.Row](r, entityProduct, "get", storage.TypeProduct, r.fetchProduct, productTags)
	r.listProducts = readAll[[]lookup.Row](r, entityProduct, r.fetchProducts)

	r.createCustomer = write(r, entityCustomer, "create", r.doCreateCustomer)
	r.updateCustomer = write(r, entityCustomer, "update", r.doUpdateCustomer)
	r.deleteCustomer = write(r, entityCustomer, "delete", r.doDeleteCustomer)
	r.createJob = write(r, entityJob, "create", r.doCreateJob)
	r.updateJobStatus = write(r, entityJob, "updateStatus", r.doUpdateJobStatus)
	r.createInvoice = write(r, entityInvoice, "create", r.doCreateInvoice)
	r.markInvoicePaid = write(r, entityInvoice, "markPaid", r.doMarkInvoicePaid)
	r.createProduct = write(r, entityProduct, "create", r.doCreateProduct)
	r.updatePrice = write(r, entityProduct, "updatePrice", r.doUpdateProductPrice)
	return r
}

// Reader returns the read cache, or nil when reads are uncached.
func (r *Resolver) Reader() *cache.Reader {
	return r.reader
}

// Bulk runs fn with caching suspended, then clears the cache. Reads made by
// any caller during fn go straight to the store. Overlapping Bulk calls are
// counted, so caching resumes only when the last one returns, and the
// operator kill switch is never rewritten.
func (r *Resolver) Bulk(ctx context.Context, fn func(ctx context.Context) error) error {
	if r.reader == nil {
		return fn(ctx)
	}
	resume := r.reader.Suspend()
	defer func() {
		r.reader.Cache().Clear(ctx)
		resume()
		r.logger.Info(ctx, "cache cleared after bulk operation")
	}()
	return fn(ctx)
}

// readByID builds a cached, instrumented read keyed by one identifier of
// type typ. The identifier is canonicalised before the cache is consulted.
func readByID[R any](r *Resolver, entity, name, typ string, fetch cache.FetchFunc[idArgs, R], tags cache.TagFunc[idArgs, R]) func(context.Context, string) (R, error) {
	cached := cache.Wrap(r.reader, entity+"."+name, fetch, tags)
	op := observe.OperationMeta{Entity: entity, Name: name, Kind: observe.KindRead, Cached: r.reader != nil}

	return observe.Instrument[string, R](r.mw, op, func(ctx context.Context, raw string) (R, error) {
		canonical, err := r.canonical(typ, raw)
		if err != nil {
			var zero R
			return zero, err
		}
		return cached(ctx, idArgs{ID: canonical})
	})
}

func readAll[R any](r *Resolver, entity string, fetch cache.FetchFunc[noArgs, R]) func(context.Context, noArgs) (R, error) {
	tags := func(noArgs, R) []string { return []string{cache.TagAll(entity)} }
	cached := cache.Wrap(r.reader, entity+".list", fetch, tags)
	op := observe.OperationMeta{Entity: entity, Name: "list", Kind: observe.KindRead, Cached: r.reader != nil}
	return observe.Instrument[noArgs, R](r.mw, op, cached)
}

func write[A, R any](r *Resolver, entity, name string, fn func(context.Context, A) (R, error)) func(context.Context, A) (R, error) {
	op := observe.OperationMeta{Entity: entity, Name: name, Kind: observe.KindWrite}
	return observe.Instrument[A, R](r.mw, op, fn)
}

// canonical reduces raw to the external identifier every spelling of it
// shares.
func (r *Resolver) canonical(typ, raw string) (string, error) {
	pred, err := r.builder.Predicate(typ, raw)
	if err != nil {
		return "", translate(err)
	}
	if pred.Kind == lookup.KindInteger {
		id, err := r.codec.EncodeInt(typ, pred.Int)
		if err != nil {
			return "", translate(err)
		}
		return id, nil
	}
	return gid.ID{Namespace: r.codec.Namespace(), Type: typ, Projection: pred.Projection()}.String(), nil
}

func (r *Resolver) predicate(typ, id string) (lookup.Predicate, error) {
	pred, err := r.builder.Predicate(typ, id)
	if err != nil {
		return lookup.Predicate{}, translate(err)
	}
	return pred, nil
}

// invalidate evicts tags after a committed write.
func (r *Resolver) invalidate(ctx context.Context, tags ...string) {
	if r.reader == nil || len(tags) == 0 {
		return
	}
	removed := r.reader.Invalidate(ctx, tags...)
	r.logger.Debug(ctx, "cache invalidated",
		observe.Field{Key: "tags", Value: tags},
		observe.Field{Key: "removed", Value: removed},
	)
}

// translate maps identifier and storage failures onto the resolver's errors.
func translate(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInvalidInput):
		return err
	case errors.Is(err, gid.ErrMalformedIdentifier),
		errors.Is(err, gid.ErrOutOfRange),
		errors.Is(err, storage.ErrNotFound),
		errors.Is(err, storage.ErrInvalidPredicate):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, storage.ErrInvalidArgument):
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return err
}

type rower interface {
	Row() lookup.Row
}

func formatAll[T rower](b *lookup.Builder, items []T, typ string, fks lookup.ForeignKeys) []lookup.Row {
	rows := make([]lookup.Row, len(items))
	for i, item := range items {
		rows[i] = b.FormatRow(item.Row(), typ, fks)
	}
	return rows
}

func rowString(row lookup.Row, field string) string {
	s, _ := row[field].(string)
	return s
}
