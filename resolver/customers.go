package resolver

import (
	"context"

	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
)

// CustomerInput carries the writable fields of a customer.
type CustomerInput struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type updateCustomerArgs struct {
	ID    string
	Input CustomerInput
}

// GetCustomer returns the customer identified by id.
func (r *Resolver) GetCustomer(ctx context.Context, id string) (lookup.Row, error) {
	return r.getCustomer(ctx, id)
}

// ListCustomers returns every customer ordered by name.
func (r *Resolver) ListCustomers(ctx context.Context) ([]lookup.Row, error) {
	return r.listCustomers(ctx, noArgs{})
}

// CreateCustomer stores a new customer.
func (r *Resolver) CreateCustomer(ctx context.Context, in CustomerInput) (lookup.Row, error) {
	return r.createCustomer(ctx, in)
}

// UpdateCustomer replaces the name and email of the customer identified by id.
func (r *Resolver) UpdateCustomer(ctx context.Context, id string, in CustomerInput) (lookup.Row, error) {
	return r.updateCustomer(ctx, updateCustomerArgs{ID: id, Input: in})
}

// DeleteCustomer removes a customer with its jobs and invoices.
func (r *Resolver) DeleteCustomer(ctx context.Context, id string) error {
	_, err := r.deleteCustomer(ctx, idArgs{ID: id})
	return err
}

func (r *Resolver) customer(ctx context.Context, id string) (storage.Customer, error) {
	pred, err := r.predicate(storage.TypeCustomer, id)
	if err != nil {
		return storage.Customer{}, err
	}
	c, err := r.store.GetCustomer(ctx, pred)
	if err != nil {
		return storage.Customer{}, translate(err)
	}
	return c, nil
}

func (r *Resolver) formatCustomer(c storage.Customer) lookup.Row {
	return r.builder.FormatRow(c.Row(), storage.TypeCustomer, nil)
}

func (r *Resolver) fetchCustomer(ctx context.Context, args idArgs) (lookup.Row, error) {
	c, err := r.customer(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return r.formatCustomer(c), nil
}

func customerTags(args idArgs, _ lookup.Row) []string {
	return []string{cache.TagEntity(entityCustomer, args.ID)}
}

func (r *Resolver) fetchCustomers(ctx context.Context, _ noArgs) ([]lookup.Row, error) {
	customers, err := r.store.ListCustomers(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return formatAll(r.builder, customers, storage.TypeCustomer, nil), nil
}

func (r *Resolver) doCreateCustomer(ctx context.Context, in CustomerInput) (lookup.Row, error) {
	c, err := r.store.CreateCustomer(ctx, in.Name, in.Email)
	if err != nil {
		return nil, translate(err)
	}
	r.invalidate(ctx, cache.TagAll(entityCustomer))
	return r.formatCustomer(c), nil
}

func (r *Resolver) doUpdateCustomer(ctx context.Context, args updateCustomerArgs) (lookup.Row, error) {
	current, err := r.customer(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	c, err := r.store.UpdateCustomer(ctx, current.ID, args.Input.Name, args.Input.Email)
	if err != nil {
		return nil, translate(err)
	}
	row := r.formatCustomer(c)
	r.invalidate(ctx,
		cache.TagAll(entityCustomer),
		cache.TagEntity(entityCustomer, rowString(row, lookup.IDField)),
	)
	return row, nil
}

// doDeleteCustomer collects the tags of the customer's jobs and invoices
// before deleting, since the store removes them with the customer.
func (r *Resolver) doDeleteCustomer(ctx context.Context, args idArgs) (struct{}, error) {
	c, err := r.customer(ctx, args.ID)
	if err != nil {
		return struct{}{}, err
	}
	jobs, err := r.store.ListJobsByCustomer(ctx, c.ID)
	if err != nil {
		return struct{}{}, translate(err)
	}
	invoices, err := r.store.ListInvoicesByCustomer(ctx, c.ID)
	if err != nil {
		return struct{}{}, translate(err)
	}

	if err := r.store.DeleteCustomer(ctx, c.ID); err != nil {
		return struct{}{}, translate(err)
	}

	customerID := r.codec.Encode(storage.TypeCustomer, c.ID)
	tags := []string{
		cache.TagAll(entityCustomer),
		cache.TagEntity(entityCustomer, customerID),
		cache.TagRelation(entityJob, entityCustomer, customerID),
		cache.TagRelation(entityInvoice, entityCustomer, customerID),
	}
	for _, j := range jobs {
		jobID := r.codec.Encode(storage.TypeJob, j.ID)
		tags = append(tags, cache.TagEntity(entityJob, jobID), cache.TagRelation(entityInvoice, entityJob, jobID))
	}
	for _, inv := range invoices {
		tags = append(tags, cache.TagEntity(entityInvoice, r.codec.Encode(storage.TypeInvoice, inv.ID)))
	}
	r.invalidate(ctx, tags...)
	return struct{}{}, nil
}
