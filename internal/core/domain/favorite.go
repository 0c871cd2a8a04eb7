package domain

import "time"

// Favorite marks one product as favorited by one user. At most one row may
// exist per (UserID, ProductID).
type Favorite struct {
	ID        int64
	UserID    int64
	ProductID int64
	CreatedAt time.Time
}

// FavoriteView is a Favorite joined with its product for display.
type FavoriteView struct {
	Favorite
	Product Product
}
