package dbhelper

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/ray-remotestate/pizzeria/database"
	"github.com/ray-remotestate/pizzeria/models"
)

type OrderRepo struct {
	DB *sql.DB
}

func NewOrderRepo(db *sql.DB) *OrderRepo {
	return &OrderRepo{DB: db}
}

const orderColumns = `
	id, order_number, first_name, last_name, email, phone,
	street, house_number, postal_code, city, notes,
	payment_method, subtotal, delivery_fee, discount, total,
	status, created_at, updated_at`

// Create inserts the order and its items in one transaction and fills in the
// generated ids and timestamps.
func (r *OrderRepo) Create(ctx context.Context, o *models.Order) error {
	return database.Tx(r.DB, func(tx *sql.Tx) error {
		err := tx.QueryRowContext(ctx, `
			INSERT INTO orders (order_number, first_name, last_name, email, phone,
				street, house_number, postal_code, city, notes,
				payment_method, subtotal, delivery_fee, discount, total, status)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
			RETURNING id, created_at, updated_at`,
			o.OrderNumber, o.Customer.FirstName, o.Customer.LastName, o.Customer.Email, o.Customer.Phone,
			o.Address.Street, o.Address.HouseNumber, o.Address.PostalCode, o.Address.City, o.Address.Notes,
			o.PaymentMethod, o.Subtotal, o.DeliveryFee, o.Discount, o.Total, o.Status).
			Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return fmt.Errorf("insert order: %w", err)
		}

		for i := range o.Items {
			item := &o.Items[i]
			item.OrderID = o.ID
			err := tx.QueryRowContext(ctx, `
				INSERT INTO order_items (order_id, product_id, product_name, quantity, price_at_order, variant, extras)
				VALUES ($1, $2, $3, $4, $5, $6, $7)
				RETURNING id`,
				item.OrderID, item.ProductID, item.ProductName, item.Quantity, item.PriceAtOrder,
				item.Variant, pq.Array(item.Extras)).Scan(&item.ID)
			if err != nil {
				return fmt.Errorf("insert order item: %w", err)
			}
		}
		return nil
	})
}

func (r *OrderRepo) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	items, err := r.itemsFor(ctx, []uuid.UUID{o.ID})
	if err != nil {
		return nil, err
	}
	o.Items = items[o.ID]
	return o, nil
}

// List returns the newest orders first, optionally restricted to one status.
func (r *OrderRepo) List(ctx context.Context, status models.OrderStatus, limit int) ([]models.Order, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if status == "" {
		rows, err = r.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC LIMIT $1`, limit)
	} else {
		rows, err = r.DB.QueryContext(ctx, `SELECT `+orderColumns+` FROM orders WHERE status = $1 ORDER BY created_at DESC LIMIT $2`, status, limit)
	}
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	var (
		orders []models.Order
		ids    []uuid.UUID
	)
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *o)
		ids = append(ids, o.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return orders, nil
	}

	items, err := r.itemsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range orders {
		orders[i].Items = items[orders[i].ID]
	}
	return orders, nil
}

// UpdateStatus moves an order from one status to another. It fails with
// ErrStatusConflict when the order is no longer in status from.
func (r *OrderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, from, to models.OrderStatus) error {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2 AND status = $3`, to, id, from)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return models.ErrStatusConflict
	}
	return nil
}

func (r *OrderRepo) itemsFor(ctx context.Context, orderIDs []uuid.UUID) (map[uuid.UUID][]models.OrderItem, error) {
	ids := make([]string, len(orderIDs))
	for i, id := range orderIDs {
		ids[i] = id.String()
	}

	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, order_id, product_id, product_name, quantity, price_at_order, variant, extras
		FROM order_items
		WHERE order_id = ANY($1::uuid[])`, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("query order items: %w", err)
	}
	defer rows.Close()

	out := make(map[uuid.UUID][]models.OrderItem, len(orderIDs))
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName, &it.Quantity,
			&it.PriceAtOrder, &it.Variant, pq.Array(&it.Extras)); err != nil {
			return nil, err
		}
		out[it.OrderID] = append(out[it.OrderID], it)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.OrderNumber, &o.Customer.FirstName, &o.Customer.LastName, &o.Customer.Email, &o.Customer.Phone,
		&o.Address.Street, &o.Address.HouseNumber, &o.Address.PostalCode, &o.Address.City, &o.Address.Notes,
		&o.PaymentMethod, &o.Subtotal, &o.DeliveryFee, &o.Discount, &o.Total,
		&o.Status, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
