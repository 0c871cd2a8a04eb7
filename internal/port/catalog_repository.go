package port

import (
	"context"

	"github.com/velocar/velocar/internal/core/domain"
)

// CatalogRepository looks up catalog and user records maintained by the
// surrounding CRUD layer. Read-only here. Every method returns (nil, nil)
// when the id does not exist.
type CatalogRepository interface {
	GetProduct(ctx context.Context, id int64) (*domain.Product, error)
	GetEngine(ctx context.Context, id int64) (*domain.ProductEngine, error)
	GetColor(ctx context.Context, id int64) (*domain.ProductColor, error)
	GetTrim(ctx context.Context, id int64) (*domain.ProductTrim, error)
	GetUser(ctx context.Context, id int64) (*domain.User, error)
}
