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

const customerColumns = `id, name, email, created_at`

// CreateCustomer inserts a customer with a fresh UUID.
func (s *Store) CreateCustomer(ctx context.Context, name, email string) (storage.Customer, error) {
	if err := s.check(ctx); err != nil {
		return storage.Customer{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Customer{}, fmt.Errorf("%w: customer name is required", storage.ErrInvalidArgument)
	}
	c := storage.Customer{
		ID:        s.newID(),
		Name:      name,
		Email:     strings.TrimSpace(email),
		CreatedAt: s.timestamp(),
	}
	if err := s.insertCustomer(ctx, c); err != nil {
		return storage.Customer{}, err
	}
	return c, nil
}

func (s *Store) insertCustomer(ctx context.Context, c storage.Customer) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO customers (`+customerColumns+`) VALUES (?, ?, ?, ?)`,
		c.ID.String(), c.Name, c.Email, toMillis(c.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("create customer: %w", err)
	}
	return nil
}

// GetCustomer returns the customer whose UUID starts with the predicate
// prefix. This is a LIKE scan over the primary key text.
func (s *Store) GetCustomer(ctx context.Context, pred lookup.Predicate) (storage.Customer, error) {
	if err := s.check(ctx); err != nil {
		return storage.Customer{}, err
	}
	if err := requirePrefix(pred); err != nil {
		return storage.Customer{}, err
	}
	customers, err := s.queryCustomers(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id LIKE ? ORDER BY id LIMIT 2`,
		pred.LikePattern(),
	)
	if err != nil {
		return storage.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	return first(ctx, s, customers, pred)
}

// ListCustomers returns every customer ordered by name.
func (s *Store) ListCustomers(ctx context.Context) ([]storage.Customer, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	customers, err := s.queryCustomers(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

// UpdateCustomer replaces the name and email of the customer with id.
func (s *Store) UpdateCustomer(ctx context.Context, id uuid.UUID, name, email string) (storage.Customer, error) {
	if err := s.check(ctx); err != nil {
		return storage.Customer{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Customer{}, fmt.Errorf("%w: customer name is required", storage.ErrInvalidArgument)
	}
	err := notFoundIfNoRows(s.db.ExecContext(ctx,
		`UPDATE customers SET name = ?, email = ? WHERE id = ?`,
		name, strings.TrimSpace(email), id.String(),
	))
	if err != nil {
		return storage.Customer{}, fmt.Errorf("update customer: %w", err)
	}
	return s.customerByID(ctx, id)
}

// DeleteCustomer removes the customer with id together with its jobs and
// invoices.
func (s *Store) DeleteCustomer(ctx context.Context, id uuid.UUID) error {
	if err := s.check(ctx); err != nil {
		return err
	}
	err := notFoundIfNoRows(s.db.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id.String()))
	if err != nil {
		return fmt.Errorf("delete customer: %w", err)
	}
	return nil
}

func (s *Store) customerByID(ctx context.Context, id uuid.UUID) (storage.Customer, error) {
	customers, err := s.queryCustomers(ctx,
		`SELECT `+customerColumns+` FROM customers WHERE id = ?`, id.String())
	if err != nil {
		return storage.Customer{}, fmt.Errorf("get customer: %w", err)
	}
	if len(customers) == 0 {
		return storage.Customer{}, storage.ErrNotFound
	}
	return customers[0], nil
}

func (s *Store) queryCustomers(ctx context.Context, query string, args ...any) ([]storage.Customer, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Customer
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func scanCustomer(rows *sql.Rows) (storage.Customer, error) {
	var (
		c         storage.Customer
		id        string
		createdAt int64
	)
	if err := rows.Scan(&id, &c.Name, &c.Email, &createdAt); err != nil {
		return storage.Customer{}, err
	}
	parsed, err := scanUUID(id)
	if err != nil {
		return storage.Customer{}, err
	}
	c.ID = parsed
	c.CreatedAt = fromMillis(createdAt)
	return c, nil
}
