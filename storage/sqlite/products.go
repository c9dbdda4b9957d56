package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/jonwraymond/invoicekit/gid"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
)

const productColumns = `id, name, price_cents`

// CreateProduct inserts a product. Its integer key must stay encodable as an
// external identifier.
func (s *Store) CreateProduct(ctx context.Context, name string, priceCents int64) (storage.Product, error) {
	if err := s.check(ctx); err != nil {
		return storage.Product{}, err
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return storage.Product{}, fmt.Errorf("%w: product name is required", storage.ErrInvalidArgument)
	}
	if priceCents < 0 {
		return storage.Product{}, fmt.Errorf("%w: negative price", storage.ErrInvalidArgument)
	}

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO products (name, price_cents) VALUES (?, ?)`, name, priceCents)
	if err != nil {
		return storage.Product{}, fmt.Errorf("create product: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return storage.Product{}, fmt.Errorf("create product: %w", err)
	}
	if uint64(id) > gid.MaxProjection {
		return storage.Product{}, fmt.Errorf("%w: product id %d exceeds identifier range", storage.ErrInvalidArgument, id)
	}
	return storage.Product{ID: id, Name: name, PriceCents: priceCents}, nil
}

// GetProduct returns the product whose key equals the predicate's integer.
func (s *Store) GetProduct(ctx context.Context, pred lookup.Predicate) (storage.Product, error) {
	if err := s.check(ctx); err != nil {
		return storage.Product{}, err
	}
	if pred.Kind != lookup.KindInteger {
		return storage.Product{}, fmt.Errorf("%w: %s", storage.ErrInvalidPredicate, pred)
	}
	products, err := s.queryProducts(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = ? LIMIT 2`, pred.Int)
	if err != nil {
		return storage.Product{}, fmt.Errorf("get product: %w", err)
	}
	return first(ctx, s, products, pred)
}

// ListProducts returns the catalogue ordered by key.
func (s *Store) ListProducts(ctx context.Context) ([]storage.Product, error) {
	if err := s.check(ctx); err != nil {
		return nil, err
	}
	products, err := s.queryProducts(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return products, nil
}

// UpdateProductPrice sets the price of the product with id.
func (s *Store) UpdateProductPrice(ctx context.Context, id int64, priceCents int64) (storage.Product, error) {
	if err := s.check(ctx); err != nil {
		return storage.Product{}, err
	}
	if priceCents < 0 {
		return storage.Product{}, fmt.Errorf("%w: negative price", storage.ErrInvalidArgument)
	}
	err := notFoundIfNoRows(s.db.ExecContext(ctx,
		`UPDATE products SET price_cents = ? WHERE id = ?`, priceCents, id))
	if err != nil {
		return storage.Product{}, fmt.Errorf("update product price: %w", err)
	}
	products, err := s.queryProducts(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	if err != nil {
		return storage.Product{}, fmt.Errorf("get product: %w", err)
	}
	if len(products) == 0 {
		return storage.Product{}, storage.ErrNotFound
	}
	return products[0], nil
}

func (s *Store) queryProducts(ctx context.Context, query string, args ...any) ([]storage.Product, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []storage.Product
	for rows.Next() {
		var p storage.Product
		if err := rows.Scan(&p.ID, &p.Name, &p.PriceCents); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
