package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/velocar/velocar/internal/core/domain"
)

type MySQLFavoriteStore struct {
	db *sql.DB
}

func NewMySQLFavoriteStore(db *sql.DB) *MySQLFavoriteStore {
	return &MySQLFavoriteStore{db: db}
}

// Insert is a plain optimistic insert; the unique key over
// (user_id, product_id) turns a lost race into ErrDuplicateKey instead of a
// second row.
func (m *MySQLFavoriteStore) Insert(ctx context.Context, userID, productID int64) (*domain.Favorite, error) {
	result, err := m.db.ExecContext(ctx, `
		INSERT INTO favorites (user_id, product_id, created_at)
		VALUES (?, ?, NOW())`, userID, productID)
	if err != nil {
		return nil, fmt.Errorf("insert favorite: %w", translateErr(err))
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("favorite id: %w", err)
	}

	var fav domain.Favorite
	err = m.db.QueryRowContext(ctx, `
		SELECT id, user_id, product_id, created_at FROM favorites WHERE id = ?`, id,
	).Scan(&fav.ID, &fav.UserID, &fav.ProductID, &fav.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("read back favorite: %w", err)
	}
	return &fav, nil
}

func (m *MySQLFavoriteStore) Delete(ctx context.Context, userID, productID int64) (bool, error) {
	result, err := m.db.ExecContext(ctx, `
		DELETE FROM favorites WHERE user_id = ? AND product_id = ?`, userID, productID)
	if err != nil {
		return false, fmt.Errorf("delete favorite: %w", translateErr(err))
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (m *MySQLFavoriteStore) Clear(ctx context.Context, userID int64) (int64, error) {
	result, err := m.db.ExecContext(ctx, `DELETE FROM favorites WHERE user_id = ?`, userID)
	if err != nil {
		return 0, fmt.Errorf("clear favorites: %w", translateErr(err))
	}
	rows, _ := result.RowsAffected()
	return rows, nil
}

func (m *MySQLFavoriteStore) ListByUser(ctx context.Context, userID int64) ([]domain.FavoriteView, error) {
	rows, err := m.db.QueryContext(ctx, `
		SELECT f.id, f.user_id, f.product_id, f.created_at,
		       p.name, p.description, p.base_price, p.category_id,
		       p.power, p.top_speed, p.acceleration, p.image
		FROM favorites f
		JOIN products p ON p.id = f.product_id
		WHERE f.user_id = ?
		ORDER BY f.created_at DESC, f.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	defer rows.Close()

	var views []domain.FavoriteView
	for rows.Next() {
		var (
			v           domain.FavoriteView
			description sql.NullString
			categoryID  sql.NullInt64
			power       sql.NullInt64
			topSpeed    sql.NullInt64
			accel       sql.NullFloat64
			image       sql.NullString
		)
		err := rows.Scan(&v.ID, &v.UserID, &v.ProductID, &v.CreatedAt,
			&v.Product.Name, &description, &v.Product.BasePrice, &categoryID,
			&power, &topSpeed, &accel, &image)
		if err != nil {
			return nil, fmt.Errorf("scan favorite: %w", err)
		}
		v.Product.ID = v.ProductID
		v.Product.Description = description.String
		v.Product.CategoryID = categoryID.Int64
		v.Product.Power = int(power.Int64)
		v.Product.TopSpeed = int(topSpeed.Int64)
		v.Product.Acceleration = accel.Float64
		v.Product.Image = image.String
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate favorites: %w", err)
	}
	return views, nil
}
