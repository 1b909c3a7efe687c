package catalog

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudclutches/storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
)

const productCols = `id, name, description, price, image_url`

type Repo struct{ DB postgres.DB }

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.Name, &p.Description, &p.Price, &p.ImageURL)
	return p, err
}

func collect(rows pgx.Rows) ([]Product, error) {
	defer rows.Close()
	out := []Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *Repo) List(ctx context.Context) ([]Product, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+productCols+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return collect(rows)
}

func (r *Repo) Get(ctx context.Context, id int64) (Product, error) {
	p, err := scanProduct(r.DB.QueryRow(ctx, `SELECT `+productCols+` FROM products WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("get product %d: %w", id, err)
	}
	return p, nil
}

func (r *Repo) Create(ctx context.Context, in ProductInput) (Product, error) {
	if err := in.Validate(); err != nil {
		return Product{}, err
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		INSERT INTO products(name, description, price, image_url)
		VALUES ($1, $2, $3, $4)
		RETURNING `+productCols,
		in.Name, in.Description, *in.Price, in.ImageURL,
	))
	if err != nil {
		return Product{}, fmt.Errorf("create product: %w", err)
	}
	return p, nil
}

// Update applies only the fields present in the patch. An explicit null
// description clears it.
func (r *Repo) Update(ctx context.Context, id int64, patch ProductPatch) (Product, error) {
	if err := patch.Validate(); err != nil {
		return Product{}, err
	}
	if patch.Empty() {
		return r.Get(ctx, id)
	}
	p, err := scanProduct(r.DB.QueryRow(ctx, `
		UPDATE products SET
			name        = COALESCE($2, name),
			description = CASE WHEN $3 THEN $4 ELSE description END,
			price       = COALESCE($5, price),
			image_url   = COALESCE($6, image_url)
		WHERE id=$1
		RETURNING `+productCols,
		id, patch.Name, patch.Description.Set, patch.Description.Value, patch.Price, patch.ImageURL,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return Product{}, ErrNotFound
	}
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", id, err)
	}
	return p, nil
}

// Delete succeeds whether or not the row existed; order items keep their product_id.
func (r *Repo) Delete(ctx context.Context, id int64) error {
	if _, err := r.DB.Exec(ctx, `DELETE FROM products WHERE id=$1`, id); err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	return nil
}

func (r *Repo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.DB.QueryRow(ctx, `SELECT COUNT(*) FROM products`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

// ByIDs loads the current snapshot of each product that still exists.
// Missing ids are simply absent from the map.
func ByIDs(ctx context.Context, q postgres.Querier, ids []int64) (map[int64]Product, error) {
	out := make(map[int64]Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := q.Query(ctx, `SELECT `+productCols+` FROM products WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	ps, err := collect(rows)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	for _, p := range ps {
		out[p.ID] = p
	}
	return out, nil
}
