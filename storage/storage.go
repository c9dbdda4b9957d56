package storage

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/jonwraymond/invoicekit/lookup"
)

// Entity type tags used in external identifiers.
const (
	TypeCustomer = "Customer"
	TypeJob      = "Job"
	TypeInvoice  = "Invoice"
	TypeProduct  = "Product"
)

// IntegerTypes lists the entity types keyed by an integer.
var IntegerTypes = []string{TypeProduct}

// Job statuses.
const (
	JobOpen      = "open"
	JobActive    = "active"
	JobCompleted = "completed"
	JobCancelled = "cancelled"
)

// Invoice statuses.
const (
	InvoiceOpen = "open"
	InvoicePaid = "paid"
	InvoiceVoid = "void"
)

var (
	// ErrNotFound is returned when no row satisfies a lookup.
	ErrNotFound = errors.New("storage: not found")

	// ErrInvalidArgument is returned for writes with missing or out of range values.
	ErrInvalidArgument = errors.New("storage: invalid argument")

	// ErrInvalidPredicate is returned when a predicate kind does not fit the
	// entity's key type.
	ErrInvalidPredicate = errors.New("storage: predicate does not fit key type")
)

// Foreign key tables for formatting rows.
var (
	JobForeignKeys     = lookup.ForeignKeys{"customer_id": TypeCustomer}
	InvoiceForeignKeys = lookup.ForeignKeys{"customer_id": TypeCustomer, "job_id": TypeJob}
)

// Customer is a billed party.
type Customer struct {
	ID        uuid.UUID
	Name      string
	Email     string
	CreatedAt time.Time
}

// Row returns the customer as a lookup row.
func (c Customer) Row() lookup.Row {
	return lookup.Row{
		"id":         c.ID,
		"name":       c.Name,
		"email":      c.Email,
		"created_at": c.CreatedAt,
	}
}

// Job is a piece of work done for a customer.
type Job struct {
	ID         uuid.UUID
	CustomerID uuid.UUID
	Title      string
	Status     string
	CreatedAt  time.Time
}

// Row returns the job as a lookup row.
func (j Job) Row() lookup.Row {
	return lookup.Row{
		"id":          j.ID,
		"customer_id": j.CustomerID,
		"title":       j.Title,
		"status":      j.Status,
		"created_at":  j.CreatedAt,
	}
}

// Invoice bills a customer, optionally for one job.
type Invoice struct {
	ID          uuid.UUID
	CustomerID  uuid.UUID
	JobID       uuid.NullUUID
	Number      string
	AmountCents int64
	Status      string

	// JobStatus is the status of the invoiced job, empty without one.
	JobStatus string

	CreatedAt time.Time
	PaidAt    *time.Time
}

// Row returns the invoice as a lookup row. A missing job is a nil job_id.
func (i Invoice) Row() lookup.Row {
	row := lookup.Row{
		"id":           i.ID,
		"customer_id":  i.CustomerID,
		"job_id":       nil,
		"number":       i.Number,
		"amount_cents": i.AmountCents,
		"status":       i.Status,
		"job_status":   i.JobStatus,
		"created_at":   i.CreatedAt,
		"paid_at":      nil,
	}
	if i.JobID.Valid {
		row["job_id"] = i.JobID.UUID
	}
	if i.PaidAt != nil {
		row["paid_at"] = *i.PaidAt
	}
	return row
}

// NewInvoice describes an invoice to create.
type NewInvoice struct {
	CustomerID  uuid.UUID
	JobID       uuid.NullUUID
	Number      string
	AmountCents int64
}

// Product is a catalogue item. Products are keyed by an integer.
type Product struct {
	ID         int64
	Name       string
	PriceCents int64
}

// Row returns the product as a lookup row.
func (p Product) Row() lookup.Row {
	return lookup.Row{
		"id":          p.ID,
		"name":        p.Name,
		"price_cents": p.PriceCents,
	}
}

// ValidJobStatus reports whether status is a known job status.
func ValidJobStatus(status string) bool {
	switch status {
	case JobOpen, JobActive, JobCompleted, JobCancelled:
		return true
	}
	return false
}

// Store is the persistence interface the resolver works against.
//
// Contract:
// - Concurrency: implementations must be safe for concurrent use.
// - Errors: lookups with no match return ErrNotFound; bad writes return
//   ErrInvalidArgument; predicates of the wrong kind return ErrInvalidPredicate.
// - Collisions: predicate reads return the first match in id order.
type Store interface {
	Ping(ctx context.Context) error

	CreateCustomer(ctx context.Context, name, email string) (Customer, error)
	GetCustomer(ctx context.Context, pred lookup.Predicate) (Customer, error)
	ListCustomers(ctx context.Context) ([]Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, name, email string) (Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error

	CreateJob(ctx context.Context, customerID uuid.UUID, title string) (Job, error)
	GetJob(ctx context.Context, pred lookup.Predicate) (Job, error)
	ListJobsByCustomer(ctx context.Context, customerID uuid.UUID) ([]Job, error)
	UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) (Job, error)

	CreateInvoice(ctx context.Context, in NewInvoice) (Invoice, error)
	GetInvoice(ctx context.Context, pred lookup.Predicate) (Invoice, error)
	ListInvoicesByCustomer(ctx context.Context, customerID uuid.UUID) ([]Invoice, error)
	ListInvoicesByJob(ctx context.Context, jobID uuid.UUID) ([]Invoice, error)
	MarkInvoicePaid(ctx context.Context, id uuid.UUID) (Invoice, error)

	CreateProduct(ctx context.Context, name string, priceCents int64) (Product, error)
	GetProduct(ctx context.Context, pred lookup.Predicate) (Product, error)
	ListProducts(ctx context.Context) ([]Product, error)
	UpdateProductPrice(ctx context.Context, id int64, priceCents int64) (Product, error)
}
