package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/velocar/velocar/internal/core/domain"
)

type MySQLOrderStore struct {
	db *sql.DB
}

func NewMySQLOrderStore(db *sql.DB) *MySQLOrderStore {
	return &MySQLOrderStore{db: db}
}

// CreateFromCart is the cart-to-order transition. Everything happens in one
// transaction: the cart lines are read under FOR UPDATE so a concurrent
// checkout for the same user blocks and then observes an empty cart, the
// catalog rows are read inside the same transaction so the captured prices
// match one consistent snapshot, and the order insert plus cart delete commit
// or roll back together.
func (m *MySQLOrderStore) CreateFromCart(ctx context.Context, userID int64, shipping domain.ShippingInfo) (*domain.Order, error) {
	tx, err := m.db.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelRepeatableRead})
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	lines, err := lockCartLines(ctx, tx, userID)
	if err != nil {
		return nil, err
	}
	if len(lines) == 0 {
		return nil, nil
	}

	now := time.Now().UTC()
	order := &domain.Order{
		ID:        uuid.NewString(),
		UserID:    userID,
		Status:    domain.OrderStatusCreated,
		Shipping:  shipping,
		CreatedAt: now,
	}

	total := decimal.Zero
	items := make([]domain.OrderItem, 0, len(lines))
	for _, line := range lines {
		product, engine, color, trim, err := selectionInTx(ctx, tx, line.Selection)
		if err != nil {
			return nil, err
		}
		unit := domain.ComposePrice(*product, engine, color, trim)
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(line.Quantity))))
		items = append(items, domain.OrderItem{
			OrderID:      order.ID,
			Selection:    line.Selection,
			Quantity:     line.Quantity,
			PricePerUnit: unit,
		})
	}
	order.TotalPrice = total

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, user_id, status, total_price, full_name, phone, email, address, city, comment, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		order.ID, order.UserID, order.Status, order.TotalPrice,
		shipping.FullName, shipping.Phone, shipping.Email, shipping.Address, shipping.City, shipping.Comment,
		order.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", translateErr(err))
	}

	for i := range items {
		item := &items[i]
		result, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, engine_id, color_id, trim_id, quantity, price_per_unit)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			item.OrderID, item.ProductID, item.EngineID, item.ColorID, item.TrimID,
			item.Quantity, item.PricePerUnit,
		)
		if err != nil {
			return nil, fmt.Errorf("insert order item: %w", translateErr(err))
		}
		item.ID, _ = result.LastInsertId()
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, userID); err != nil {
		return nil, fmt.Errorf("clear cart: %w", translateErr(err))
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", translateErr(err))
	}

	order.Items = items
	return order, nil
}

func lockCartLines(ctx context.Context, tx *sql.Tx, userID int64) ([]domain.CartLine, error) {
	rows, err := tx.QueryContext(ctx, `
		SELECT `+cartLineColumns+` FROM cart_lines
		WHERE user_id = ? ORDER BY created_at DESC, id DESC FOR UPDATE`, userID)
	if err != nil {
		return nil, fmt.Errorf("lock cart lines: %w", translateErr(err))
	}
	defer rows.Close()

	var lines []domain.CartLine
	for rows.Next() {
		var line domain.CartLine
		err := rows.Scan(&line.ID, &line.UserID, &line.ProductID, &line.EngineID, &line.ColorID, &line.TrimID,
			&line.Quantity, &line.CreatedAt, &line.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}
		lines = append(lines, line)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", translateErr(err))
	}
	return lines, nil
}

// selectionInTx reads the catalog rows a selection references from inside the
// checkout transaction. Foreign keys normally guarantee existence; a miss
// still surfaces as a NotFoundError rather than a nil dereference.
func selectionInTx(ctx context.Context, tx *sql.Tx, sel domain.Selection) (*domain.Product, *domain.ProductEngine, *domain.ProductColor, *domain.ProductTrim, error) {
	var product domain.Product
	err := tx.QueryRowContext(ctx, `
		SELECT id, name, base_price FROM products WHERE id = ?`, sel.ProductID,
	).Scan(&product.ID, &product.Name, &product.BasePrice)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil, nil, nil, &domain.NotFoundError{Kind: domain.KindProduct, ID: sel.ProductID}
	}
	if err != nil {
		return nil, nil, nil, nil, fmt.Errorf("query product: %w", err)
	}

	var engine *domain.ProductEngine
	if sel.EngineID != 0 {
		engine = &domain.ProductEngine{}
		err := tx.QueryRowContext(ctx, `
			SELECT id, product_id, name, price_modifier FROM product_engines WHERE id = ?`, sel.EngineID,
		).Scan(&engine.ID, &engine.ProductID, &engine.Name, &engine.PriceModifier)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, nil, &domain.NotFoundError{Kind: domain.KindEngine, ID: sel.EngineID}
		}
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("query engine: %w", err)
		}
	}

	var color *domain.ProductColor
	if sel.ColorID != 0 {
		color = &domain.ProductColor{}
		err := tx.QueryRowContext(ctx, `
			SELECT id, product_id, name, price_modifier FROM product_colors WHERE id = ?`, sel.ColorID,
		).Scan(&color.ID, &color.ProductID, &color.Name, &color.PriceModifier)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, nil, &domain.NotFoundError{Kind: domain.KindColor, ID: sel.ColorID}
		}
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("query color: %w", err)
		}
	}

	var trim *domain.ProductTrim
	if sel.TrimID != 0 {
		trim = &domain.ProductTrim{}
		err := tx.QueryRowContext(ctx, `
			SELECT id, product_id, name, price_modifier FROM product_trims WHERE id = ?`, sel.TrimID,
		).Scan(&trim.ID, &trim.ProductID, &trim.Name, &trim.PriceModifier)
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, nil, &domain.NotFoundError{Kind: domain.KindTrim, ID: sel.TrimID}
		}
		if err != nil {
			return nil, nil, nil, nil, fmt.Errorf("query trim: %w", err)
		}
	}

	return &product, engine, color, trim, nil
}

const orderColumns = `id, user_id, status, total_price, full_name, phone, email, address, city, comment, created_at`

func (m *MySQLOrderStore) GetOrder(ctx context.Context, orderID string) (*domain.Order, error) {
	var o domain.Order
	err := m.db.QueryRowContext(ctx, `
		SELECT `+orderColumns+` FROM orders WHERE id = ?`, orderID,
	).Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice,
		&o.Shipping.FullName, &o.Shipping.Phone, &o.Shipping.Email,
		&o.Shipping.Address, &o.Shipping.City, &o.Shipping.Comment, &o.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query order: %w", err)
	}

	items, err := m.orderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

func (m *MySQLOrderStore) ListByUser(ctx context.Context, userID int64) ([]domain.Order, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT `+orderColumns+` FROM orders
		WHERE user_id = ? ORDER BY created_at DESC, id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []domain.Order
	for rows.Next() {
		var o domain.Order
		err := rows.Scan(&o.ID, &o.UserID, &o.Status, &o.TotalPrice,
			&o.Shipping.FullName, &o.Shipping.Phone, &o.Shipping.Email,
			&o.Shipping.Address, &o.Shipping.City, &o.Shipping.Comment, &o.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate orders: %w", err)
	}

	for i := range orders {
		items, err := m.orderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (m *MySQLOrderStore) orderItems(ctx context.Context, orderID string) ([]domain.OrderItem, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT id, order_id, product_id, engine_id, color_id, trim_id, quantity, price_per_unit
		FROM order_items WHERE order_id = ? ORDER BY id`, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	defer rows.Close()

	var items []domain.OrderItem
	for rows.Next() {
		var item domain.OrderItem
		err := rows.Scan(&item.ID, &item.OrderID, &item.ProductID, &item.EngineID, &item.ColorID, &item.TrimID,
			&item.Quantity, &item.PricePerUnit)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate order items: %w", err)
	}
	return items, nil
}
