package domain

import "github.com/shopspring/decimal"

// ComposePrice returns the unit price of a configured product: the base price
// plus the modifier of every selected variant. Nil variants contribute
// nothing. Modifiers may be negative and are not clamped; callers decide
// whether a sub-zero result is acceptable.
func ComposePrice(product Product, engine *ProductEngine, color *ProductColor, trim *ProductTrim) decimal.Decimal {
	price := product.BasePrice
	if engine != nil {
		price = price.Add(engine.PriceModifier)
	}
	if color != nil {
		price = price.Add(color.PriceModifier)
	}
	if trim != nil {
		price = price.Add(trim.PriceModifier)
	}
	return price
}
