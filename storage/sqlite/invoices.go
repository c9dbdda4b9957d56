package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
)

const invoiceSelect = `SELECT i.id, i.customer_id, i.job_id, i.number, i.amount_cents, i.status,
       COALESCE(j.status, ''), i.created_at, i.paid_at
  FROM invoices i
  LEFT JOIN jobs j ON j.id = i.job_id`

// CreateInvoice inserts an open invoice. An empty Number is derived from the
// invoice's identifier prefix. The job, when given, must belong to the
// customer.
func (s *Store) CreateInvoice(ctx context.Context, in storage.NewInvoice) (storage.Invoice, error) {
	if err := s.check(ctx); err != nil {
		return storage.Invoice{}, err
	}
	if in.AmountCents < 0 {
		return storage.Invoice{}, fmt.Errorf("%w: negative amount", storage.ErrInvalidArgument)
	}
	if _, err := s.customerByID(ctx, in.CustomerID); err != nil {
		return storage.Invoice{}, fmt.Errorf("create invoice: %w", err)
	}
	if in.JobID.Valid {
		job, err := s.jobByID(ctx, in.JobID.UUID)
		if err != nil {
			return storage.Invoice{}, fmt.Errorf("create invoice: %w", err)
		}
		if job.CustomerID != in.CustomerID {
			return storage.Invoice{}, fmt.Errorf("%w: job belongs to another customer", storage.ErrInvalidArgument)
		}
	}

	id := s.newID()
	number := strings.TrimSpace(in.Number)
	if number == "" {
		number = "INV-" + strings.ToUpper(gid.Prefix(id)[:8])
	}
	inv := storage.Invoice{
		ID:          id,
		CustomerID:  in.CustomerID,
		JobID:       in.JobID,
		Number:      number,
		AmountCents: in.AmountCents,
		Status:      storage.InvoiceOpen,
		CreatedAt:   s.timestamp(),
	}
	if err := s.insertInvoice(ctx, inv); err != nil {
		return storage.Invoice{}, err
	}
	return s.invoiceByID(ctx, inv.ID)
}

func (s *Store) insertInvoice(ctx context.Context, inv storage.Invoice) error {
	var jobID any
	if inv.JobID.Valid {
		jobID = inv.JobID.UUID.String()
	}
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO invoices (id, projection, customer_id, job_id, number, amount_cents, status, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.ID.String(), gid.Project(inv.ID), inv.CustomerID.String(), jobID,
		inv.Number, inv.AmountCents, inv.Status, toMillis(inv.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create invoice: %w", err)
	}
	return nil
}

// GetInvoice returns the invoice whose projection equals the predicate's.
// The projection column is indexed, so this is an index lookup rather than a
// scan.
func (s *Store) GetInvoice(ctx context.Context, pred lookup.Predicate) (storage.Invoice, error) {
	if err := s.check(ctx); err != nil {
		return storage.Invoice{}, err
	}
	if err := requirePrefix(pred); err != nil {
		return storage.Invoice{}, err
	}
	invoices, err := s.queryInvoices(ctx,
		invoiceSelect+` WHERE i.projection = ? ORDER BY i.id LIMIT 2`,
		pred.Projection(),
	)
	if err != nil {
		return storage.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	return first(ctx, s, invoices, pred)
}

// ListInvoicesByCustomer returns the customer's invoices, oldest first.
func (s *Store) ListInvoicesByCustomer(ctx context.Context, customerID uuid.UUID) ([]storage.Invoice, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	invoices, err := s.queryInvoices(ctx,
		invoiceSelect+` WHERE i.customer_id = ? ORDER BY i.created_at, i.id`,
		customerID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// ListInvoicesByJob returns the invoices raised for a job.
func (s *Store) ListInvoicesByJob(ctx context.Context, jobID uuid.UUID) ([]storage.Invoice, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	invoices, err := s.queryInvoices(ctx,
		invoiceSelect+` WHERE i.job_id = ? ORDER BY i.created_at, i.id`,
		jobID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	return invoices, nil
}

// MarkInvoicePaid records payment of an open invoice. Paying an invoice that
// is already paid or void is an invalid argument.
func (s *Store) MarkInvoicePaid(ctx context.Context, id uuid.UUID) (storage.Invoice, error) {
	if err := s.check(ctx); err != nil {
		return storage.Invoice{}, err
	}
	current, err := s.invoiceByID(ctx, id)
	if err != nil {
		return storage.Invoice{}, fmt.Errorf("mark invoice paid: %w", err)
	}
	if current.Status != storage.InvoiceOpen {
		return storage.Invoice{}, fmt.Errorf("%w: invoice is %s", storage.ErrInvalidArgument, current.Status)
	}

	err = notFoundIfNoRows(s.db.ExecContext(ctx,
		`UPDATE invoices SET status = ?, paid_at = ? WHERE id = ? AND status = ?`,
		storage.InvoicePaid, toMillis(s.timestamp()), id.String(), storage.InvoiceOpen,
	))
	if err != nil {
		return storage.Invoice{}, fmt.Errorf("mark invoice paid: %w", err)
	}
	return s.invoiceByID(ctx, id)
}

func (s *Store) invoiceByID(ctx context.Context, id uuid.UUID) (storage.Invoice, error) {
	invoices, err := s.queryInvoices(ctx, invoiceSelect+` WHERE i.id = ?`, id.String())
	if err != nil {
		return storage.Invoice{}, fmt.Errorf("get invoice: %w", err)
	}
	if len(invoices) == 0 {
		return storage.Invoice{}, storage.ErrNotFound
	}
	return invoices[0], nil
}

func (s *Store) queryInvoices(ctx context.Context, query string, args ...any) ([]storage.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, inv)
	}
	return out, rows.Err()
}

func scanInvoice(rows *sql.Rows) (storage.Invoice, error) {
	var (
		inv            storage.Invoice
		id, customerID string
		jobID          sql.NullString
		createdAt      int64
		paidAt         sql.NullInt64
	)
	if err := rows.Scan(&id, &customerID, &jobID, &inv.Number, &inv.AmountCents, &inv.Status,
		&inv.JobStatus, &createdAt, &paidAt); err != nil {
		return storage.Invoice{}, err
	}
	var err error
	if inv.ID, err = scanUUID(id); err != nil {
		return storage.Invoice{}, err
	}
	if inv.CustomerID, err = scanUUID(customerID); err != nil {
		return storage.Invoice{}, err
	}
	if jobID.Valid {
		parsed, err := scanUUID(jobID.String)
		if err != nil {
			return storage.Invoice{}, err
		}
		inv.JobID = uuid.NullUUID{UUID: parsed, Valid: true}
	}
	inv.CreatedAt = fromMillis(createdAt)
	if paidAt.Valid {
		t := fromMillis(paidAt.Int64)
		inv.PaidAt = &t
	}
	return inv, nil
}
