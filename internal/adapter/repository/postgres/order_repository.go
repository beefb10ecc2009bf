package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/domain"
	"github.com/MarxCha/guelaguetza-connect-sub001/internal/core/ports"
)

const orderColumns = `id, user_id, seller_id, total, currency, status, payment_id, tracking_number,
	cancellation_reason, paid_at, cancelled_at, delivered_at, version, created_at, updated_at`

func scanOrderHeader(row scanner) (domain.OrderAttrs, error) {
	var (
		a                              domain.OrderAttrs
		total                          decimal.Decimal
		currency                       string
		paidAt, cancelledAt, delivered sql.NullTime
	)
	if err := row.Scan(&a.ID, &a.UserID, &a.SellerID, &total, &currency, &a.Status, &a.PaymentID,
		&a.TrackingNumber, &a.CancellationReason, &paidAt, &cancelledAt, &delivered,
		&a.Version, &a.CreatedAt, &a.UpdatedAt); err != nil {
		return a, err
	}
	money, err := domain.NewMoney(total, currency)
	if err != nil {
		return a, err
	}
	a.Total = money
	a.PaidAt = timePtr(paidAt)
	a.CancelledAt = timePtr(cancelledAt)
	a.DeliveredAt = timePtr(delivered)
	return a, nil
}

func (s *Store) loadItems(ctx context.Context, orderID uuid.UUID) ([]domain.OrderItem, error) {
	query := `
	SELECT product_id, quantity, unit_price, currency
	FROM order_items
	WHERE order_id = $1
	ORDER BY product_id
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("load order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var (
			item     domain.OrderItem
			price    decimal.Decimal
			currency string
		)
		if err := rows.Scan(&item.ProductID, &item.Quantity, &price, &currency); err != nil {
			return nil, err
		}
		if item.UnitPrice, err = domain.NewMoney(price, currency); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *Store) FindOrderByID(ctx context.Context, id uuid.UUID) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	a, err := scanOrderHeader(s.conn(ctx).QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err, "order", id)
	}
	if a.Items, err = s.loadItems(ctx, id); err != nil {
		return nil, err
	}
	return domain.RestoreOrder(a)
}

// FindOrdersByStatus returns the oldest matching orders after the cursor first.
func (s *Store) FindOrdersByStatus(ctx context.Context, statuses []domain.OrderStatus, createdBefore time.Time, after ports.Cursor, limit int) ([]*domain.Order, error) {
	query := `
	SELECT ` + orderColumns + `
	FROM orders
	WHERE status = ANY($1) AND created_at < $2 AND (created_at, id) > ($3, $4)
	ORDER BY created_at, id
	LIMIT $5
	`
	rows, err := s.conn(ctx).QueryContext(ctx, query, statusArray(statuses), createdBefore,
		after.CreatedAt, after.ID, limitArg(limit))
	if err != nil {
		return nil, fmt.Errorf("find orders by status: %w", err)
	}
	var headers []domain.OrderAttrs
	for rows.Next() {
		a, err := scanOrderHeader(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		headers = append(headers, a)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orders := make([]*domain.Order, 0, len(headers))
	for _, a := range headers {
		if a.Items, err = s.loadItems(ctx, a.ID); err != nil {
			return nil, err
		}
		o, err := domain.RestoreOrder(a)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}

// SaveOrder inserts header and lines together; lines are immutable after.
func (s *Store) SaveOrder(ctx context.Context, o *domain.Order) error {
	now := s.now()
	if o.IsNew() {
		return s.WithTransaction(ctx, func(ctx context.Context, _ ports.Repository) error {
			return s.insertOrder(ctx, o, now)
		})
	}

	a := o.Attrs()
	query := `
	UPDATE orders
	SET status = $1, payment_id = $2, tracking_number = $3, cancellation_reason = $4,
		paid_at = $5, cancelled_at = $6, delivered_at = $7, version = $8, updated_at = $9
	WHERE id = $10 AND version = $11
	`
	if err := s.execVersioned(ctx, "order", a.ID, o.PersistedVersion(), query,
		a.Status, a.PaymentID, a.TrackingNumber, a.CancellationReason, a.PaidAt, a.CancelledAt, a.DeliveredAt,
		a.Version, now, a.ID, o.PersistedVersion()); err != nil {
		return err
	}
	o.MarkPersisted(now)
	return nil
}

func (s *Store) insertOrder(ctx context.Context, o *domain.Order, now time.Time) error {
	o.AssignIdentity(uuid.New(), now)
	a := o.Attrs()
	header := `
	INSERT INTO orders (` + orderColumns + `)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $14)
	`
	conn := s.conn(ctx)
	if _, err := conn.ExecContext(ctx, header, a.ID, a.UserID, a.SellerID, a.Total.Amount(), a.Total.Currency(),
		a.Status, a.PaymentID, a.TrackingNumber, a.CancellationReason, a.PaidAt, a.CancelledAt, a.DeliveredAt,
		a.Version, now); err != nil {
		return fmt.Errorf("insert order header: %w", err)
	}

	stmt, err := conn.PrepareContext(ctx, `
	INSERT INTO order_items (order_id, product_id, quantity, unit_price, currency)
	VALUES ($1, $2, $3, $4, $5)
	`)
	if err != nil {
		return fmt.Errorf("prepare order item statement: %w", err)
	}
	defer stmt.Close()

	for _, item := range a.Items {
		if _, err := stmt.ExecContext(ctx, a.ID, item.ProductID, item.Quantity,
			item.UnitPrice.Amount(), item.UnitPrice.Currency()); err != nil {
			return fmt.Errorf("insert order item product %s: %w", item.ProductID, err)
		}
	}
	o.MarkPersisted(now)
	return nil
}
