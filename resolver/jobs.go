package resolver

import (
	"context"

	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
)

// JobInput describes a job to create.
type JobInput struct {
	CustomerID string `json:"customer_id"`
	Title      string `json:"title"`
}

type jobStatusArgs struct {
	ID     string
	Status string
}

// GetJob returns the job identified by id.
func (r *Resolver) GetJob(ctx context.Context, id string) (lookup.Row, error) {
	return r.getJob(ctx, id)
}

// ListJobsByCustomer returns the jobs of the customer identified by
// customerID, oldest first.
func (r *Resolver) ListJobsByCustomer(ctx context.Context, customerID string) ([]lookup.Row, error) {
	return r.listJobs(ctx, customerID)
}

// CreateJob stores an open job for a customer.
func (r *Resolver) CreateJob(ctx context.Context, in JobInput) (lookup.Row, error) {
	return r.createJob(ctx, in)
}

// UpdateJobStatus changes a job's status. Invoices of the job report the
// job status, so their cached reads are invalidated too; cancelling a job
// also voids its open invoices.
func (r *Resolver) UpdateJobStatus(ctx context.Context, id, status string) (lookup.Row, error) {
	return r.updateJobStatus(ctx, jobStatusArgs{ID: id, Status: status})
}

func (r *Resolver) formatJob(j storage.Job) lookup.Row {
	return r.builder.FormatRow(j.Row(), storage.TypeJob, storage.JobForeignKeys)
}

func (r *Resolver) job(ctx context.Context, id string) (storage.Job, error) {
	pred, err := r.predicate(storage.TypeJob, id)
	if err != nil {
		return storage.Job{}, err
	}
	j, err := r.store.GetJob(ctx, pred)
	if err != nil {
		return storage.Job{}, translate(err)
	}
	return j, nil
}

func (r *Resolver) fetchJob(ctx context.Context, args idArgs) (lookup.Row, error) {
	j, err := r.job(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return r.formatJob(j), nil
}

func jobTags(args idArgs, row lookup.Row) []string {
	return []string{
		cache.TagEntity(entityJob, args.ID),
		cache.TagRelation(entityJob, entityCustomer, rowString(row, "customer_id")),
	}
}

func (r *Resolver) fetchCustomerJobs(ctx context.Context, args idArgs) ([]lookup.Row, error) {
	c, err := r.customer(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	jobs, err := r.store.ListJobsByCustomer(ctx, c.ID)
	if err != nil {
		return nil, translate(err)
	}
	return formatAll(r.builder, jobs, storage.TypeJob, storage.JobForeignKeys), nil
}

func customerJobsTags(args idArgs, _ []lookup.Row) []string {
	return []string{
		cache.TagRelation(entityJob, entityCustomer, args.ID),
		cache.TagEntity(entityCustomer, args.ID),
	}
}

func (r *Resolver) doCreateJob(ctx context.Context, in JobInput) (lookup.Row, error) {
	c, err := r.customer(ctx, in.CustomerID)
	if err != nil {
		return nil, err
	}
	j, err := r.store.CreateJob(ctx, c.ID, in.Title)
	if err != nil {
		return nil, translate(err)
	}
	row := r.formatJob(j)
	r.invalidate(ctx,
		cache.TagAll(entityJob),
		cache.TagRelation(entityJob, entityCustomer, rowString(row, "customer_id")),
	)
	return row, nil
}

func (r *Resolver) doUpdateJobStatus(ctx context.Context, args jobStatusArgs) (lookup.Row, error) {
	current, err := r.job(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	j, err := r.store.UpdateJobStatus(ctx, current.ID, args.Status)
	if err != nil {
		return nil, translate(err)
	}
	row := r.formatJob(j)
	jobID := rowString(row, lookup.IDField)
	customerID := rowString(row, "customer_id")
	r.invalidate(ctx,
		cache.TagAll(entityJob),
		cache.TagEntity(entityJob, jobID),
		cache.TagRelation(entityJob, entityCustomer, customerID),
		cache.TagRelation(entityInvoice, entityJob, jobID),
	)
	return row, nil
}
