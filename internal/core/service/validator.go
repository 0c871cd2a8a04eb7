package service

import (
	"context"
	"fmt"

	"github.com/velocar/velocar/internal/core/domain"
	"github.com/velocar/velocar/internal/port"
)

// RefValidator confirms that every id an operation references exists before
// any write is attempted. This is a best-effort precondition for early,
// specific error messages; final enforcement is the store's foreign keys.
type RefValidator struct {
	catalog port.CatalogRepository
}

func NewRefValidator(catalog port.CatalogRepository) *RefValidator {
	return &RefValidator{catalog: catalog}
}

func (v *RefValidator) User(ctx context.Context, userID int64) error {
	user, err := v.catalog.GetUser(ctx, userID)
	if err != nil {
		return fmt.Errorf("validate user: %w", err)
	}
	if user == nil {
		return &domain.NotFoundError{Kind: domain.KindUser, ID: userID}
	}
	return nil
}

func (v *RefValidator) Product(ctx context.Context, productID int64) error {
	product, err := v.catalog.GetProduct(ctx, productID)
	if err != nil {
		return fmt.Errorf("validate product: %w", err)
	}
	if product == nil {
		return &domain.NotFoundError{Kind: domain.KindProduct, ID: productID}
	}
	return nil
}

// Selection validates the whole configuration tuple: the product and every
// selected variant must exist, and each variant must belong to the selected
// product. Cross-product variants fail with ErrVariantMismatch.
func (v *RefValidator) Selection(ctx context.Context, sel domain.Selection) error {
	if err := v.Product(ctx, sel.ProductID); err != nil {
		return err
	}

	if sel.EngineID != 0 {
		engine, err := v.catalog.GetEngine(ctx, sel.EngineID)
		if err != nil {
			return fmt.Errorf("validate engine: %w", err)
		}
		if engine == nil {
			return &domain.NotFoundError{Kind: domain.KindEngine, ID: sel.EngineID}
		}
		if engine.ProductID != sel.ProductID {
			return fmt.Errorf("%w: engine %d belongs to product %d", ErrVariantMismatch, sel.EngineID, engine.ProductID)
		}
	}

	if sel.ColorID != 0 {
		color, err := v.catalog.GetColor(ctx, sel.ColorID)
		if err != nil {
			return fmt.Errorf("validate color: %w", err)
		}
		if color == nil {
			return &domain.NotFoundError{Kind: domain.KindColor, ID: sel.ColorID}
		}
		if color.ProductID != sel.ProductID {
			return fmt.Errorf("%w: color %d belongs to product %d", ErrVariantMismatch, sel.ColorID, color.ProductID)
		}
	}

	if sel.TrimID != 0 {
		trim, err := v.catalog.GetTrim(ctx, sel.TrimID)
		if err != nil {
			return fmt.Errorf("validate trim: %w", err)
		}
		if trim == nil {
			return &domain.NotFoundError{Kind: domain.KindTrim, ID: sel.TrimID}
		}
		if trim.ProductID != sel.ProductID {
			return fmt.Errorf("%w: trim %d belongs to product %d", ErrVariantMismatch, sel.TrimID, trim.ProductID)
		}
	}

	return nil
}
