package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/velocar/velocar/internal/core/domain"
)

const cartLineColumns = `id, user_id, product_id, engine_id, color_id, trim_id, quantity, created_at, updated_at`

type MySQLCartStore struct {
	db *sql.DB
}

func NewMySQLCartStore(db *sql.DB) *MySQLCartStore {
	return &MySQLCartStore{db: db}
}

// UpsertLine relies on the unique key over
// (user_id, product_id, engine_id, color_id, trim_id): a concurrent insert of
// the same configuration becomes an increment instead of a duplicate row, so
// there is no check-then-insert window.
func (m *MySQLCartStore) UpsertLine(ctx context.Context, userID int64, sel domain.Selection, qty int) (*domain.CartLine, error) {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO cart_lines (user_id, product_id, engine_id, color_id, trim_id, quantity, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, NOW(), NOW())
		ON DUPLICATE KEY UPDATE quantity = quantity + VALUES(quantity), updated_at = NOW()`,
		userID, sel.ProductID, sel.EngineID, sel.ColorID, sel.TrimID, qty,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert cart line: %w", translateErr(err))
	}

	var line domain.CartLine
	err = tx.QueryRowContext(ctx, `
		SELECT `+cartLineColumns+` FROM cart_lines
		WHERE user_id = ? AND product_id = ? AND engine_id = ? AND color_id = ? AND trim_id = ?`,
		userID, sel.ProductID, sel.EngineID, sel.ColorID, sel.TrimID,
	).Scan(&line.ID, &line.UserID, &line.ProductID, &line.EngineID, &line.ColorID, &line.TrimID,
		&line.Quantity, &line.CreatedAt, &line.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("read back cart line: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", translateErr(err))
	}
	return &line, nil
}

func (m *MySQLCartStore) GetLine(ctx context.Context, lineID int64) (*domain.CartLine, error) {
	var line domain.CartLine
	err := m.db.QueryRowContext(ctx, `
		SELECT `+cartLineColumns+` FROM cart_lines WHERE id = ?`, lineID,
	).Scan(&line.ID, &line.UserID, &line.ProductID, &line.EngineID, &line.ColorID, &line.TrimID,
		&line.Quantity, &line.CreatedAt, &line.UpdatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query cart line: %w", err)
	}
	return &line, nil
}

func (m *MySQLCartStore) UpdateQuantity(ctx context.Context, lineID int64, qty int) (*domain.CartLine, error) {
	// RowsAffected is 0 both for a missing row and for an unchanged value,
	// so existence is decided by the read-back instead.
	_, err := m.db.ExecContext(ctx, `
		UPDATE cart_lines SET quantity = ?, updated_at = NOW() WHERE id = ?`, qty, lineID)
	if err != nil {
		return nil, fmt.Errorf("update cart line: %w", translateErr(err))
	}
	return m.GetLine(ctx, lineID)
}

func (m *MySQLCartStore) DeleteLine(ctx context.Context, lineID int64) (bool, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE id = ?`, lineID)
	if err != nil {
		return false, fmt.Errorf("delete cart line: %w", translateErr(err))
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLCartStore) Clear(ctx context.Context, userID int64) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM cart_lines WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear cart: %w", translateErr(err))
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (m *MySQLCartStore) ListByUser(ctx context.Context, userID int64) ([]domain.CartLineView, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT cl.id, cl.user_id, cl.product_id, cl.engine_id, cl.color_id, cl.trim_id,
		       cl.quantity, cl.created_at, cl.updated_at,
		       p.name, p.description, p.base_price, p.category_id,
		       p.power, p.top_speed, p.acceleration, p.image,
		       e.name, e.price_modifier,
		       c.name, c.price_modifier,
		       t.name, t.price_modifier
		FROM cart_lines cl
		JOIN products p ON p.id = cl.product_id
		LEFT JOIN product_engines e ON e.id = cl.engine_id
		LEFT JOIN product_colors c ON c.id = cl.color_id
		LEFT JOIN product_trims t ON t.id = cl.trim_id
		WHERE cl.user_id = ?
		ORDER BY cl.created_at DESC, cl.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart lines: %w", err)
	}
	defer rows.Close()

	var views []domain.CartLineView
	for rows.Next() {
		var (
			v           domain.CartLineView
			description sql.NullString
			categoryID  sql.NullInt64
			power       sql.NullInt64
			topSpeed    sql.NullInt64
			accel       sql.NullFloat64
			image       sql.NullString
			engineName  sql.NullString
			engineMod   decimal.NullDecimal
			colorName   sql.NullString
			colorMod    decimal.NullDecimal
			trimName    sql.NullString
			trimMod     decimal.NullDecimal
		)
		err := rows.Scan(&v.ID, &v.UserID, &v.ProductID, &v.EngineID, &v.ColorID, &v.TrimID,
			&v.Quantity, &v.CreatedAt, &v.UpdatedAt,
			&v.Product.Name, &description, &v.Product.BasePrice, &categoryID,
			&power, &topSpeed, &accel, &image,
			&engineName, &engineMod,
			&colorName, &colorMod,
			&trimName, &trimMod)
		if err != nil {
			return nil, fmt.Errorf("scan cart line: %w", err)
		}

		v.Product.ID = v.ProductID
		v.Product.Description = description.String
		v.Product.CategoryID = categoryID.Int64
		v.Product.Power = int(power.Int64)
		v.Product.TopSpeed = int(topSpeed.Int64)
		v.Product.Acceleration = accel.Float64
		v.Product.Image = image.String

		if v.EngineID != 0 && engineName.Valid {
			v.Engine = &domain.ProductEngine{ID: v.EngineID, ProductID: v.ProductID, Name: engineName.String, PriceModifier: engineMod.Decimal}
		}
		if v.ColorID != 0 && colorName.Valid {
			v.Color = &domain.ProductColor{ID: v.ColorID, ProductID: v.ProductID, Name: colorName.String, PriceModifier: colorMod.Decimal}
		}
		if v.TrimID != 0 && trimName.Valid {
			v.Trim = &domain.ProductTrim{ID: v.TrimID, ProductID: v.ProductID, Name: trimName.String, PriceModifier: trimMod.Decimal}
		}
		v.UnitPrice = domain.ComposePrice(v.Product, v.Engine, v.Color, v.Trim)

		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cart lines: %w", err)
	}
	return views, nil
}
