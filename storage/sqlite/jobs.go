package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
)

const jobColumns = `id, customer_id, title, status, created_at`

// CreateJob inserts an open job for the customer with customerID.
func (s *Store) CreateJob(ctx context.Context, customerID uuid.UUID, title string) (storage.Job, error) {
	if err := s.check(ctx); err != nil {
		return storage.Job{}, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return storage.Job{}, fmt.Errorf("%w: job title is required", storage.ErrInvalidArgument)
	}
	if _, err := s.customerByID(ctx, customerID); err != nil {
		return storage.Job{}, fmt.Errorf("create job: %w", err)
	}
	j := storage.Job{
		ID:         s.newID(),
		CustomerID: customerID,
		Title:      title,
		Status:     storage.JobOpen,
		CreatedAt:  s.timestamp(),
	}
	if err := s.insertJob(ctx, j); err != nil {
		return storage.Job{}, err
	}
	return j, nil
}

func (s *Store) insertJob(ctx context.Context, j storage.Job) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?)`,
		j.ID.String(), j.CustomerID.String(), j.Title, j.Status, toMillis(j.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create job: %w", err)
	}
	return nil
}

// GetJob returns the job whose UUID starts with the predicate prefix.
func (s *Store) GetJob(ctx context.Context, pred lookup.Predicate) (storage.Job, error) {
	if err := s.check(ctx); err != nil {
		return storage.Job{}, err
	}
	if err := requirePrefix(pred); err != nil {
		return storage.Job{}, err
	}
	jobs, err := s.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE id LIKE ? ORDER BY id LIMIT 2`,
		pred.LikePattern(),
	)
	if err != nil {
		return storage.Job{}, fmt.Errorf("get job: %w", err)
	}
	return first(ctx, s, jobs, pred)
}

// ListJobsByCustomer returns the customer's jobs, oldest first.
func (s *Store) ListJobsByCustomer(ctx context.Context, customerID uuid.UUID) ([]storage.Job, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	jobs, err := s.queryJobs(ctx,
		`SELECT `+jobColumns+` FROM jobs WHERE customer_id = ? ORDER BY created_at, id`,
		customerID.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return jobs, nil
}

// UpdateJobStatus sets the status of the job with id. Cancelling a job voids
// its open invoices in the same transaction.
func (s *Store) UpdateJobStatus(ctx context.Context, id uuid.UUID, status string) (storage.Job, error) {
	if err := s.check(ctx); err != nil {
		return storage.Job{}, err
	}
	if !storage.ValidJobStatus(status) {
		return storage.Job{}, fmt.Errorf("%w: job status %q", storage.ErrInvalidArgument, status)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return storage.Job{}, fmt.Errorf("update job status: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = notFoundIfNoRows(tx.ExecContext(ctx, `UPDATE jobs SET status = ? WHERE id = ?`, status, id.String()))
	if err != nil {
		return storage.Job{}, fmt.Errorf("update job status: %w", err)
	}
	if status == storage.JobCancelled {
		if _, err := tx.ExecContext(ctx,
			`UPDATE invoices SET status = ? WHERE job_id = ? AND status = ?`,
			storage.InvoiceVoid, id.String(), storage.InvoiceOpen,
		); err != nil {
			return storage.Job{}, fmt.Errorf("void job invoices: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return storage.Job{}, fmt.Errorf("update job status: %w", err)
	}
	return s.jobByID(ctx, id)
}

func (s *Store) jobByID(ctx context.Context, id uuid.UUID) (storage.Job, error) {
	jobs, err := s.queryJobs(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id.String())
	if err != nil {
		return storage.Job{}, fmt.Errorf("get job: %w", err)
	}
	if len(jobs) == 0 {
		return storage.Job{}, storage.ErrNotFound
	}
	return jobs[0], nil
}

func (s *Store) queryJobs(ctx context.Context, query string, args ...any) ([]storage.Job, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Job
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	return out, rows.Err()
}

func scanJob(rows *sql.Rows) (storage.Job, error) {
	var (
		j              storage.Job
		id, customerID string
		createdAt      int64
	)
	if err := rows.Scan(&id, &customerID, &j.Title, &j.Status, &createdAt); err != nil {
		return storage.Job{}, err
	}
	var err error
	if j.ID, err = scanUUID(id); err != nil {
		return storage.Job{}, err
	}
	if j.CustomerID, err = scanUUID(customerID); err != nil {
		return storage.Job{}, err
	}
	j.CreatedAt = fromMillis(createdAt)
	return j, nil
}
