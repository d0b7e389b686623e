package order

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"printdesk-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	CreateOrderTx(ctx context.Context, o *Order, subs []SubOrder) error
	GetOrder(ctx context.Context, orderID string) (*Order, error)
	ListOrders(ctx context.Context) ([]Order, error)
	ListOrdersByCreator(ctx context.Context, userID string) ([]Order, error)
	ListSubOrders(ctx context.Context, orderID string) ([]SubOrder, error)
	GetSubOrder(ctx context.Context, orderID, subOrderID string) (*SubOrder, error)
	UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) error
	UpdateSubOrderStatus(ctx context.Context, orderID, subOrderID string, status SubOrderStatus) error
	ConfirmOrder(ctx context.Context, orderID string) error
	InsertUpdate(ctx context.Context, u *Update) error
	ListUpdates(ctx context.Context, orderID string) ([]Update, error)
	GetUpdate(ctx context.Context, orderID, updateID string) (*Update, error)
	DeleteUpdate(ctx context.Context, orderID, updateID string) error
	DeleteOrderTx(ctx context.Context, orderID string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const orderColumns = `id, created_by, created_by_name, created_by_email, display_name,
	client_name, client_email, client_phone, client_company,
	status, confirmed_by_client, created_at, updated_at`

func (r *repository) CreateOrderTx(ctx context.Context, o *Order, subs []SubOrder) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "CreateOrderTx"),
		zap.String("order_id", o.ID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, created_by, created_by_name, created_by_email, display_name,
			client_name, client_email, client_phone, client_company,
			status, confirmed_by_client, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
		o.ID, o.CreatedBy, o.CreatedByName, o.CreatedByEmail, o.DisplayName,
		o.Client.Name, o.Client.Email, o.Client.Phone, o.Client.Company,
		o.Status, o.ConfirmedByClient, o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to insert order", zap.Error(err))
		return fmt.Errorf("insert order: %w", err)
	}

	for _, sub := range subs {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO sub_orders (id, order_id, product_type, product_label, quantity,
				dimensions, description, design_file_url, delivery_at, notes,
				status, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`,
			sub.ID, sub.OrderID, sub.ProductType, sub.ProductLabel, sub.Quantity,
			sub.Dimensions, sub.Description, sub.DesignFileURL, sub.DeliveryAt, sub.Notes,
			sub.Status, sub.CreatedAt, sub.UpdatedAt,
		)
		if err != nil {
			log.Error("failed to insert sub-order", zap.String("sub_order_id", sub.ID), zap.Error(err))
			return fmt.Errorf("insert sub-order: %w", err)
		}
	}

	return tx.Commit()
}

func (r *repository) GetOrder(ctx context.Context, orderID string) (*Order, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE id = $1`, orderID)

	o, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order: %w", err)
	}
	return o, nil
}

func (r *repository) ListOrders(ctx context.Context) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *repository) ListOrdersByCreator(ctx context.Context, userID string) ([]Order, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+orderColumns+` FROM orders WHERE created_by = $1 ORDER BY created_at DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders by creator: %w", err)
	}
	defer rows.Close()

	return collectOrders(rows)
}

func (r *repository) ListSubOrders(ctx context.Context, orderID string) ([]SubOrder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, product_type, product_label, quantity,
			dimensions, description, design_file_url, delivery_at, notes,
			status, created_at, updated_at
		FROM sub_orders WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list sub-orders: %w", err)
	}
	defer rows.Close()

	var subs []SubOrder
	for rows.Next() {
		var sub SubOrder
		err := rows.Scan(
			&sub.ID, &sub.OrderID, &sub.ProductType, &sub.ProductLabel, &sub.Quantity,
			&sub.Dimensions, &sub.Description, &sub.DesignFileURL, &sub.DeliveryAt, &sub.Notes,
			&sub.Status, &sub.CreatedAt, &sub.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan sub-order: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (r *repository) GetSubOrder(ctx context.Context, orderID, subOrderID string) (*SubOrder, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, product_type, product_label, quantity,
			dimensions, description, design_file_url, delivery_at, notes,
			status, created_at, updated_at
		FROM sub_orders WHERE id = $1 AND order_id = $2`, subOrderID, orderID)

	var sub SubOrder
	err := row.Scan(
		&sub.ID, &sub.OrderID, &sub.ProductType, &sub.ProductLabel, &sub.Quantity,
		&sub.Dimensions, &sub.Description, &sub.DesignFileURL, &sub.DeliveryAt, &sub.Notes,
		&sub.Status, &sub.CreatedAt, &sub.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSubOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get sub-order: %w", err)
	}
	return &sub, nil
}

func (r *repository) UpdateOrderStatus(ctx context.Context, orderID string, status OrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE orders SET status = $1, updated_at = NOW() WHERE id = $2`, status, orderID)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}
	return requireRow(res, ErrOrderNotFound)
}

func (r *repository) UpdateSubOrderStatus(ctx context.Context, orderID, subOrderID string, status SubOrderStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sub_orders SET status = $1, updated_at = NOW() WHERE id = $2 AND order_id = $3`,
		status, subOrderID, orderID)
	if err != nil {
		return fmt.Errorf("update sub-order status: %w", err)
	}
	return requireRow(res, ErrSubOrderNotFound)
}

func (r *repository) ConfirmOrder(ctx context.Context, orderID string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE orders SET status = $1, confirmed_by_client = TRUE, updated_at = NOW()
		WHERE id = $2 AND confirmed_by_client = FALSE`, StatusPending, orderID)
	if err != nil {
		return fmt.Errorf("confirm order: %w", err)
	}
	return requireRow(res, ErrAlreadyConfirmed)
}

func (r *repository) InsertUpdate(ctx context.Context, u *Update) error {
	var url, name, mediaType *string
	if u.Attachment != nil {
		url, name, mediaType = &u.Attachment.URL, &u.Attachment.Name, &u.Attachment.MediaType
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO order_updates (id, order_id, author_id, author_name, text, is_system,
			attachment_url, attachment_name, attachment_media_type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		u.ID, u.OrderID, u.AuthorID, u.AuthorName, u.Text, u.IsSystem,
		url, name, mediaType, u.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert update: %w", err)
	}
	return nil
}

func (r *repository) ListUpdates(ctx context.Context, orderID string) ([]Update, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, order_id, author_id, author_name, text, is_system,
			attachment_url, attachment_name, attachment_media_type, created_at
		FROM order_updates WHERE order_id = $1 ORDER BY created_at ASC`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list updates: %w", err)
	}
	defer rows.Close()

	var updates []Update
	for rows.Next() {
		u, err := scanUpdate(rows)
		if err != nil {
			return nil, err
		}
		updates = append(updates, *u)
	}
	return updates, rows.Err()
}

func (r *repository) GetUpdate(ctx context.Context, orderID, updateID string) (*Update, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, order_id, author_id, author_name, text, is_system,
			attachment_url, attachment_name, attachment_media_type, created_at
		FROM order_updates WHERE id = $1 AND order_id = $2`, updateID, orderID)

	u, err := scanUpdate(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUpdateNotFound
	}
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *repository) DeleteUpdate(ctx context.Context, orderID, updateID string) error {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM order_updates WHERE id = $1 AND order_id = $2`, updateID, orderID)
	if err != nil {
		return fmt.Errorf("delete update: %w", err)
	}
	return requireRow(res, ErrUpdateNotFound)
}

// DeleteOrderTx removes an order together with its sub-orders, its trail
// entries and any notifications referencing it, so no orphans remain.
func (r *repository) DeleteOrderTx(ctx context.Context, orderID string) error {
	log := logger.FromCtx(ctx).With(
		zap.String("layer", "repository"),
		zap.String("method", "DeleteOrderTx"),
		zap.String("order_id", orderID),
	)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	for _, q := range []string{
		`DELETE FROM notifications WHERE order_id = $1`,
		`DELETE FROM order_updates WHERE order_id = $1`,
		`DELETE FROM sub_orders WHERE order_id = $1`,
	} {
		if _, err := tx.ExecContext(ctx, q, orderID); err != nil {
			log.Error("cascade delete failed", zap.Error(err))
			return fmt.Errorf("cascade delete: %w", err)
		}
	}

	res, err := tx.ExecContext(ctx, `DELETE FROM orders WHERE id = $1`, orderID)
	if err != nil {
		return fmt.Errorf("delete order: %w", err)
	}
	if err := requireRow(res, ErrOrderNotFound); err != nil {
		return err
	}

	return tx.Commit()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*Order, error) {
	var o Order
	err := row.Scan(
		&o.ID, &o.CreatedBy, &o.CreatedByName, &o.CreatedByEmail, &o.DisplayName,
		&o.Client.Name, &o.Client.Email, &o.Client.Phone, &o.Client.Company,
		&o.Status, &o.ConfirmedByClient, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func collectOrders(rows *sql.Rows) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, *o)
	}
	return orders, rows.Err()
}

func scanUpdate(row rowScanner) (*Update, error) {
	var (
		u               Update
		url, name, mime *string
	)
	err := row.Scan(
		&u.ID, &u.OrderID, &u.AuthorID, &u.AuthorName, &u.Text, &u.IsSystem,
		&url, &name, &mime, &u.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if url != nil {
		u.Attachment = &Attachment{URL: *url, Name: deref(name), MediaType: deref(mime)}
	}
	return &u, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
