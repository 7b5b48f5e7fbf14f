package catalog

import (
	"context"

	"github.com/shopspring/decimal"
)

type Product struct {
	ID       int64           `gorm:"primaryKey;autoIncrement" json:"id"`
	Name     string          `gorm:"type:text;not null" json:"name"`
	Price    decimal.Decimal `gorm:"type:numeric;not null" json:"price"`
	Stock    int             `gorm:"not null" json:"stock"`
	ImageURL *string         `gorm:"type:text" json:"image_url"`
}

// ProductInput is the mutable part of a Product, as accepted by Create and
// Update.
type ProductInput struct {
	Name     string
	Price    decimal.Decimal
	Stock    int
	ImageURL *string
}

func (in ProductInput) product(id int64) Product {
	return Product{
		ID:       id,
		Name:     in.Name,
		Price:    in.Price,
		Stock:    in.Stock,
		ImageURL: cloneString(in.ImageURL),
	}
}

// Store persists products. Missing ids are reported through the bool
// results, never as errors.
type Store interface {
	Ping(ctx context.Context) error
	// List returns products whose name contains search, ignoring case; an
	// empty search returns everything. Results are ordered by id.
	List(ctx context.Context, search string) ([]Product, error)
	Create(ctx context.Context, in ProductInput) (Product, error)
	Get(ctx context.Context, id int64) (Product, bool, error)
	Update(ctx context.Context, id int64, in ProductInput) (Product, bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
