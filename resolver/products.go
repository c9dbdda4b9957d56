package resolver

import (
	"context"

	"github.com/jonwraymond/invoicekit/cache"
	"github.com/jonwraymond/invoicekit/lookup"
	"github.com/jonwraymond/invoicekit/storage"
)

// ProductInput describes a product to create.
type ProductInput struct {
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
}

type priceArgs struct {
	ID         string
	PriceCents int64
}

// GetProduct returns the product identified by id. Products are keyed by
// integer, so id may also be the bare integer key.
func (r *Resolver) GetProduct(ctx context.Context, id string) (lookup.Row, error) {
	return r.getProduct(ctx, id)
}

// ListProducts returns the catalogue.
func (r *Resolver) ListProducts(ctx context.Context) ([]lookup.Row, error) {
	return r.listProducts(ctx, noArgs{})
}

// CreateProduct adds a product to the catalogue.
func (r *Resolver) CreateProduct(ctx context.Context, in ProductInput) (lookup.Row, error) {
	return r.createProduct(ctx, in)
}

// UpdateProductPrice sets the price of the product identified by id.
func (r *Resolver) UpdateProductPrice(ctx context.Context, id string, priceCents int64) (lookup.Row, error) {
	return r.updatePrice(ctx, priceArgs{ID: id, PriceCents: priceCents})
}

func (r *Resolver) formatProduct(p storage.Product) lookup.Row {
	return r.builder.FormatRow(p.Row(), storage.TypeProduct, nil)
}

func (r *Resolver) product(ctx context.Context, id string) (storage.Product, error) {
	pred, err := r.predicate(storage.TypeProduct, id)
	if err != nil {
		return storage.Product{}, err
	}
	p, err := r.store.GetProduct(ctx, pred)
	if err != nil {
		return storage.Product{}, translate(err)
	}
	return p, nil
}

func (r *Resolver) fetchProduct(ctx context.Context, args idArgs) (lookup.Row, error) {
	p, err := r.product(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	return r.formatProduct(p), nil
}

func productTags(args idArgs, _ lookup.Row) []string {
	return []string{cache.TagEntity(entityProduct, args.ID)}
}

func (r *Resolver) fetchProducts(ctx context.Context, _ noArgs) ([]lookup.Row, error) {
	products, err := r.store.ListProducts(ctx)
	if err != nil {
		return nil, translate(err)
	}
	return formatAll(r.builder, products, storage.TypeProduct, nil), nil
}

func (r *Resolver) doCreateProduct(ctx context.Context, in ProductInput) (lookup.Row, error) {
	p, err := r.store.CreateProduct(ctx, in.Name, in.PriceCents)
	if err != nil {
		return nil, translate(err)
	}
	r.invalidate(ctx, cache.TagAll(entityProduct))
	return r.formatProduct(p), nil
}

func (r *Resolver) doUpdateProductPrice(ctx context.Context, args priceArgs) (lookup.Row, error) {
	current, err := r.product(ctx, args.ID)
	if err != nil {
		return nil, err
	}
	p, err := r.store.UpdateProductPrice(ctx, current.ID, args.PriceCents)
	if err != nil {
		return nil, translate(err)
	}
	row := r.formatProduct(p)
	r.invalidate(ctx,
		cache.TagAll(entityProduct),
		cache.TagEntity(entityProduct, rowString(row, lookup.IDField)),
	)
	return row, nil
}
