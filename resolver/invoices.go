package resolver

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
)

// InvoiceInput describes an invoice to create. JobID is optional.
type InvoiceInput struct {
	CustomerID  string `json:"customer_id"`
	JobID       string `json:"job_id,omitempty"`
	Number      string `json:"number,omitempty"`
	AmountCents int64  `json:"amount_cents"`
}

// GetInvoice returns the invoice identified by id.
func (r *Resolver) GetInvoice(ctx context.Context, id string) (lookup.Row, error) {
	return r.getInvoice(ctx, id)
}

// ListInvoicesByCustomer returns the invoices of the customer identified by
// customerID, oldest first.
func (r *Resolver) ListInvoicesByCustomer(ctx context.Context, customerID string) ([]lookup.Row, error) {
	return r.listInvoices(ctx, customerID)
}

// CreateInvoice stores an open invoice.
func (r *Resolver) CreateInvoice(ctx context.Context, in InvoiceInput) (lookup.Row, error) {
	return r.createInvoice(ctx, in)
}

// MarkInvoicePaid records payment of an open invoice.
func (r *Resolver) MarkInvoicePaid(ctx context.Context, id string) (lookup.Row, error) {
	return r.markInvoicePaid(ctx, idArgs{ID: id})
}

func (r *Resolver) formatInvoice(inv storage.Invoice) lookup.Row {
	return r.builder.FormatRow(inv.Row(), storage.TypeInvoice, storage.InvoiceForeignKeys)
}

func (r *Resolver) fetchInvoice(ctx context.Context, args idArgs) (lookup.Row, error) {
	pred, err := r.predicate(storage.TypeInvoice, args.ID)
	if err != nil {
		return nil, err
	}
	inv, err := r.store.GetInvoice(ctx, pred)
	if err != nil {
		return nil, translate(err)
	}
	return r.formatInvoice(inv), nil
}

// invoiceRowTags files an invoice under its customer and, when it has one,
// its job.
func invoiceRowTags(row lookup.Row) []string {
	tags := []string{cache.TagRelation(entityInvoice, entityCustomer, rowString(row, "customer_id"))}
	if jobID := rowString(row, "job_id"); jobID != "" {
		tags = append(tags, cache.TagRelation(entityInvoice, entityJob, jobID))
	}
	return tags
}

func invoiceTags(args idArgs, row lookup.Row) []string {
	return append([]string{cache.TagEntity(entityInvoice, args.ID)}, invoiceRowTags(row)...)
}

func (r *Resolver) fetchCustomerInvoices(ctx context.Context, args idArgs) ([]lookup.Row, error) {
	c, err := r.customer(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	invoices, err := r.store.ListInvoicesByCustomer(ctx, c.ID)
	if err != nil {
		return nil, translate(err)
	}
	return formatAll(r.builder, invoices, storage.TypeInvoice, storage.InvoiceForeignKeys), nil
}

func customerInvoicesTags(args idArgs, rows []lookup.Row) []string {
	tags := []string{
		cache.TagRelation(entityInvoice, entityCustomer, args.ID),
		cache.TagEntity(entityCustomer, args.ID),
	}
	for _, row := range rows {
		if jobID := rowString(row, "job_id"); jobID != "" {
			tags = append(tags, cache.TagRelation(entityInvoice, entityJob, jobID))
		}
	}
	return tags
}

func (r *Resolver) doCreateInvoice(ctx context.Context, in InvoiceInput) (lookup.Row, error) {
	c, err := r.customer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	newInvoice := storage.NewInvoice{
		CustomerID:  c.ID,
		Number:      in.Number,
		AmountCents: in.AmountCents,
	}
	if strings.TrimSpace(in.JobID) != "" {
		j, err := r.job(ctx, in.JobID)
		if err != nil {
			return nil, err
		}
		newInvoice.JobID = uuid.NullUUID{UUID: j.ID, Valid: true}
	}

	inv, err := r.store.CreateInvoice(ctx, newInvoice)
	if err != nil {
		return nil, translate(err)
	}
	row := r.formatInvoice(inv)
	r.invalidate(ctx, append([]string{cache.TagAll(entityInvoice)}, invoiceRowTags(row)...)...)
	return row, nil
}

func (r *Resolver) doMarkInvoicePaid(ctx context.Context, args idArgs) (lookup.Row, error) {
	pred, err := r.predicate(storage.TypeInvoice, args.ID)
	if err != nil {
		return nil, err
	}
	current, err := r.store.GetInvoice(ctx, pred)
	if err != nil {
		return nil, translate(err)
	}
	inv, err := r.store.MarkInvoicePaid(ctx, current.ID)
	if err != nil {
		return nil, translate(err)
	}
	row := r.formatInvoice(inv)
	tags := []string{
		cache.TagAll(entityInvoice),
		cache.TagEntity(entityInvoice, rowString(row, lookup.IDField)),
	}
	r.invalidate(ctx, append(tags, invoiceRowTags(row)...)...)
	return row, nil
}
