package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/velocar/velocar/internal/core/domain"
)

// MySQLCatalog serves the read-only existence and pricing lookups against
// catalog tables owned by the surrounding CRUD layer.
type MySQLCatalog struct {
	db *sql.DB
}

func NewMySQLCatalog(db *sql.DB) *MySQLCatalog {
	return &MySQLCatalog{db: db}
}

func (m *MySQLCatalog) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var (
		p           domain.Product
		description sql.NullString
		categoryID  sql.NullInt64
		power       sql.NullInt64
		topSpeed    sql.NullInt64
		accel       sql.NullFloat64
		image       sql.NullString
	)
	err := m.db.QueryRowContext(ctx, `
		SELECT id, name, description, base_price, category_id, power, top_speed, acceleration, image
		FROM products WHERE id = ?`, id,
	).Scan(&p.ID, &p.Name, &description, &p.BasePrice, &categoryID, &power, &topSpeed, &accel, &image)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query product: %w", err)
	}

	p.Description = description.String
	p.CategoryID = categoryID.Int64
	p.Power = int(power.Int64)
	p.TopSpeed = int(topSpeed.Int64)
	p.Acceleration = accel.Float64
	p.Image = image.String
	return &p, nil
}

func (m *MySQLCatalog) GetEngine(ctx context.Context, id int64) (*domain.ProductEngine, error) {
	var e domain.ProductEngine
	err := m.db.QueryRowContext(ctx, `
		SELECT id, product_id, name, price_modifier
		FROM product_engines WHERE id = ?`, id,
	).Scan(&e.ID, &e.ProductID, &e.Name, &e.PriceModifier)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query engine: %w", err)
	}
	return &e, nil
}

func (m *MySQLCatalog) GetColor(ctx context.Context, id int64) (*domain.ProductColor, error) {
	var c domain.ProductColor
	err := m.db.QueryRowContext(ctx, `
		SELECT id, product_id, name, price_modifier
		FROM product_colors WHERE id = ?`, id,
	).Scan(&c.ID, &c.ProductID, &c.Name, &c.PriceModifier)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query color: %w", err)
	}
	return &c, nil
}

func (m *MySQLCatalog) GetTrim(ctx context.Context, id int64) (*domain.ProductTrim, error) {
	var t domain.ProductTrim
	err := m.db.QueryRowContext(ctx, `
		SELECT id, product_id, name, price_modifier
		FROM product_trims WHERE id = ?`, id,
	).Scan(&t.ID, &t.ProductID, &t.Name, &t.PriceModifier)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query trim: %w", err)
	}
	return &t, nil
}

func (m *MySQLCatalog) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var u domain.User
	err := m.db.QueryRowContext(ctx, `
		SELECT id, username FROM users WHERE id = ?`, id,
	).Scan(&u.ID, &u.Username)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
