package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/cloudclutches/storefront/internal/apperr"
	"github.com/cloudclutches/storefront/internal/catalog"
	"github.com/cloudclutches/storefront/internal/postgres"
	"github.com/jackc/pgx/v5"
)

const orderCols = `id, customer_name, address, mobile_number, total_amount, upi_transaction_id, screenshot_url, status, created_at`

const itemCols = `id, order_id, product_id, quantity, price`

type Repo struct {
	DB     postgres.DB
	Policy Policy
}

func scanOrder(row pgx.Row) (Order, error) {
	var o Order
	err := row.Scan(&o.ID, &o.CustomerName, &o.Address, &o.MobileNumber, &o.TotalAmount,
		&o.UPITransactionID, &o.ScreenshotURL, &o.Status, &o.CreatedAt)
	return o, err
}

func scanItem(row pgx.Row) (OrderItem, error) {
	var it OrderItem
	err := row.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.Quantity, &it.Price)
	return it, err
}

// CreateOrderTx writes the header and every item in one transaction. Any
// failure rolls back the header, so an order is never visible without items.
func (r *Repo) CreateOrderTx(ctx context.Context, req CreateOrderRequest) (OrderResponse, error) {
	if err := req.Validate(); err != nil {
		return OrderResponse{}, err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return OrderResponse{}, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	// product references must resolve at order time; prices still come from the request
	products, err := catalog.ByIDs(ctx, tx, req.productIDs())
	if err != nil {
		return OrderResponse{}, err
	}
	for i, it := range req.Items {
		if _, ok := products[it.ProductID]; !ok {
			return OrderResponse{}, apperr.Invalid(fmt.Sprintf("items[%d].productId", i), "product %d not found", it.ProductID)
		}
	}

	o, err := scanOrder(tx.QueryRow(ctx, `
		INSERT INTO orders(customer_name, address, mobile_number, total_amount, upi_transaction_id, screenshot_url, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+orderCols,
		req.CustomerName, req.Address, req.MobileNumber, *req.TotalAmount, req.UPITransactionID, req.ScreenshotURL, string(StatusPending),
	))
	if err != nil {
		return OrderResponse{}, fmt.Errorf("insert order: %w", err)
	}

	items := make([]ItemWithProduct, 0, len(req.Items))
	for _, in := range req.Items {
		it, err := scanItem(tx.QueryRow(ctx, `
			INSERT INTO order_items(order_id, product_id, quantity, price)
			VALUES ($1, $2, $3, $4)
			RETURNING `+itemCols,
			o.ID, in.ProductID, in.Quantity, *in.Price,
		))
		if err != nil {
			return OrderResponse{}, fmt.Errorf("insert order item: %w", err)
		}
		p := products[in.ProductID]
		items = append(items, ItemWithProduct{OrderItem: it, Product: &p})
	}

	if err := tx.Commit(ctx); err != nil {
		return OrderResponse{}, fmt.Errorf("commit: %w", err)
	}
	return OrderResponse{Order: o, Items: items}, nil
}

// ListOrders returns every order, newest first, with items and product snapshots.
func (r *Repo) ListOrders(ctx context.Context) ([]OrderResponse, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+orderCols+` FROM orders ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var list []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		list = append(list, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return r.withItems(ctx, list)
}

func (r *Repo) GetOrder(ctx context.Context, id int64) (OrderResponse, error) {
	o, err := scanOrder(r.DB.QueryRow(ctx, `SELECT `+orderCols+` FROM orders WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return OrderResponse{}, ErrNotFound
	}
	if err != nil {
		return OrderResponse{}, fmt.Errorf("get order %d: %w", id, err)
	}
	out, err := r.withItems(ctx, []Order{o})
	if err != nil {
		return OrderResponse{}, err
	}
	return out[0], nil
}

func (r *Repo) withItems(ctx context.Context, list []Order) ([]OrderResponse, error) {
	out := make([]OrderResponse, len(list))
	if len(list) == 0 {
		return out, nil
	}
	ids := make([]int64, len(list))
	index := make(map[int64]int, len(list))
	for i, o := range list {
		ids[i] = o.ID
		index[o.ID] = i
		out[i] = OrderResponse{Order: o, Items: []ItemWithProduct{}}
	}

	rows, err := r.DB.Query(ctx, `SELECT `+itemCols+` FROM order_items WHERE order_id = ANY($1) ORDER BY id`, ids)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	var items []OrderItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, it)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}

	seen := map[int64]bool{}
	var productIDs []int64
	for _, it := range items {
		if !seen[it.ProductID] {
			seen[it.ProductID] = true
			productIDs = append(productIDs, it.ProductID)
		}
	}
	products, err := catalog.ByIDs(ctx, r.DB, productIDs)
	if err != nil {
		return nil, err
	}

	for _, it := range items {
		iwp := ItemWithProduct{OrderItem: it}
		if p, ok := products[it.ProductID]; ok {
			iwp.Product = &p
		}
		i := index[it.OrderID]
		out[i].Items = append(out[i].Items, iwp)
	}
	return out, nil
}

// UpdateStatus locks the row, checks the edge against the policy and writes
// the new status. It returns the updated order and the status it replaced.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, raw string) (Order, Status, error) {
	to, err := ParseStatus(raw)
	if err != nil {
		return Order{}, "", err
	}

	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return Order{}, "", fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var from Status
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id=$1 FOR UPDATE`, id).Scan(&from)
	if errors.Is(err, pgx.ErrNoRows) {
		return Order{}, "", ErrNotFound
	}
	if err != nil {
		return Order{}, "", fmt.Errorf("lock order %d: %w", id, err)
	}
	if !r.Policy.Allows(from, to) {
		return Order{}, "", transitionError(from, to)
	}

	o, err := scanOrder(tx.QueryRow(ctx, `UPDATE orders SET status=$2 WHERE id=$1 RETURNING `+orderCols, id, string(to)))
	if err != nil {
		return Order{}, "", fmt.Errorf("update order %d: %w", id, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return Order{}, "", fmt.Errorf("commit: %w", err)
	}
	return o, from, nil
}

func (r *Repo) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	err := r.DB.QueryRow(ctx, `
		SELECT COALESCE(SUM(total_amount) FILTER (WHERE status <> 'cancelled'), 0),
		       COUNT(*) FILTER (WHERE status = 'pending'),
		       COUNT(*),
		       (SELECT COUNT(*) FROM products)
		FROM orders`).Scan(&s.TotalRevenue, &s.PendingOrders, &s.TotalOrders, &s.TotalProducts)
	if err != nil {
		return Stats{}, fmt.Errorf("order stats: %w", err)
	}
	return s, nil
}
