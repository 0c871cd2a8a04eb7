package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Selection identifies one product configuration. A zero variant id means
// that option was not chosen; 0 is never a valid catalog id, so the tuple
// (ProductID, EngineID, ColorID, TrimID) is usable as a unique key as-is.
type Selection struct {
	ProductID int64
	EngineID  int64
	ColorID   int64
	TrimID    int64
}

// CartLine is one configured product in a user's cart. At most one line may
// exist per (UserID, Selection); repeated adds of the same selection merge
// into the existing line by incrementing Quantity.
type CartLine struct {
	ID     int64
	UserID int64
	Selection
	Quantity  int
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CartLineView is a CartLine enriched with current catalog data for display.
// UnitPrice is computed from today's catalog values and is never the source
// of an order price; checkout prices lines independently.
type CartLineView struct {
	CartLine
	Product   Product
	Engine    *ProductEngine
	Color     *ProductColor
	Trim      *ProductTrim
	UnitPrice decimal.Decimal
}
