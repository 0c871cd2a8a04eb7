package domain

import "github.com/shopspring/decimal"

// Catalog entities are read-only from this module's point of view; they are
// maintained by the surrounding CRUD layer and only looked up here.

type Product struct {
	ID           int64
	Name         string
	Description  string
	BasePrice    decimal.Decimal
	CategoryID   int64 // 0 when uncategorized
	Power        int
	TopSpeed     int
	Acceleration float64
	Image        string
}

type ProductEngine struct {
	ID            int64
	ProductID     int64
	Name          string
	PriceModifier decimal.Decimal
}

type ProductColor struct {
	ID            int64
	ProductID     int64
	Name          string
	PriceModifier decimal.Decimal
}

type ProductTrim struct {
	ID            int64
	ProductID     int64
	Name          string
	PriceModifier decimal.Decimal
}

type User struct {
	ID       int64
	Username string
}
