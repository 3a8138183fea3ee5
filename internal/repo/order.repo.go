package repo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"checkout-gateway/internal/config"
	"checkout-gateway/internal/domain"
)

type OrderRepo interface {
	CreateOrder(ctx context.Context, order *domain.Order) error
	// FindById returns nil and no error when the order does not exist.
	FindById(ctx context.Context, id string) (*domain.Order, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Order, error)
	// SettleOrder moves a created order to status. It reports false, without
	// touching the row, when the order is missing or already settled.
	SettleOrder(ctx context.Context, id string, status domain.OrderStatus, paymentID, signature string, at time.Time) (bool, error)
}

type orderRepo struct {
	db       *sql.DB
	numbered bool
}

// NewOrderRepo binds the repo to db. driver selects the placeholder style.
func NewOrderRepo(db *sql.DB, driver string) OrderRepo {
	return &orderRepo{db: db, numbered: driver == config.DriverPostgres}
}

const orderColumns = `order_id, amount, currency, status, receipt, product, quantity,
	customer_name, customer_email, customer_phone, delivery_address,
	payment_id, signature, created_at, updated_at, verified_at`

func (r *orderRepo) CreateOrder(ctx context.Context, order *domain.Order) error {
	query := r.rebind(`INSERT INTO orders (` + orderColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)

	_, err := r.db.ExecContext(ctx, query,
		order.ID,
		order.Amount,
		order.Currency,
		order.Status,
		order.Receipt,
		order.Product,
		order.Quantity,
		order.CustomerName,
		order.CustomerEmail,
		order.CustomerPhone,
		order.DeliveryAddress,
		order.PaymentID,
		order.Signature,
		order.CreatedAt.UTC(),
		order.UpdatedAt.UTC(),
		nullTime(order.VerifiedAt),
	)
	if err != nil {
		return fmt.Errorf("db.Exec: %w", err)
	}
	return nil
}

func (r *orderRepo) FindById(ctx context.Context, id string) (*domain.Order, error) {
	row := r.db.QueryRowContext(ctx, r.rebind(`SELECT `+orderColumns+` FROM orders WHERE order_id = ?`), id)
	order, err := scanOrder(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return order, nil
}

func (r *orderRepo) ListRecent(ctx context.Context, limit int) ([]domain.Order, error) {
	rows, err := r.db.QueryContext(ctx,
		r.rebind(`SELECT `+orderColumns+` FROM orders ORDER BY created_at DESC, order_id DESC LIMIT ?`),
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("db.Query: %w", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows.Err: %w", err)
	}
	return orders, nil
}

func (r *orderRepo) SettleOrder(ctx context.Context, id string, status domain.OrderStatus, paymentID, signature string, at time.Time) (bool, error) {
	query := r.rebind(`
		UPDATE orders
		SET status = ?,
		    payment_id = ?,
		    signature = ?,
		    verified_at = ?,
		    updated_at = ?
		WHERE order_id = ? AND status = ?
	`)
	at = at.UTC()
	res, err := r.db.ExecContext(ctx, query, status, paymentID, signature, at, at, id, domain.OrderCreated)
	if err != nil {
		return false, fmt.Errorf("db.Exec: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("res.RowsAffected: %w", err)
	}
	return n == 1, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanOrder(s scanner) (*domain.Order, error) {
	var (
		order      domain.Order
		paymentID  sql.NullString
		signature  sql.NullString
		verifiedAt sql.NullTime
	)
	err := s.Scan(
		&order.ID,
		&order.Amount,
		&order.Currency,
		&order.Status,
		&order.Receipt,
		&order.Product,
		&order.Quantity,
		&order.CustomerName,
		&order.CustomerEmail,
		&order.CustomerPhone,
		&order.DeliveryAddress,
		&paymentID,
		&signature,
		&order.CreatedAt,
		&order.UpdatedAt,
		&verifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("rows.Scan: %w", err)
	}
	if paymentID.Valid {
		order.PaymentID = &paymentID.String
	}
	if signature.Valid {
		order.Signature = &signature.String
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		order.VerifiedAt = &t
	}
	return &order, nil
}

// rebind rewrites ? placeholders as $1, $2, ... for Postgres.
func (r *orderRepo) rebind(query string) string {
	if !r.numbered {
		return query
	}

	var b strings.Builder
	n := 0
	for _, c := range query {
		if c == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(c)
	}
	return b.String()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}
