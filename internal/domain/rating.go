package domain

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Star bounds for a single rating.
const (
	MinStars = 1
	MaxStars = 5
)

var (
	ErrInvalidStars    = errors.New("stars must be between 1 and 5")
	ErrProductNotFound = errors.New("product not found")
)

// ProductRef addresses a product. With StoreID empty it refers to every
// product with ProductID across all stores.
type ProductRef struct {
	StoreID   string `json:"store_id,omitempty"`
	ProductID string `json:"product_id"`
}

// ApplyRating folds one rating into p's running mean, rounded half up to one
// decimal. A negative stored count is treated as no prior ratings.
func ApplyRating(p Product, stars int) (Product, error) {
	if stars < MinStars || stars > MaxStars {
		return p, ErrInvalidStars
	}
	out := p.Clone()
	prior := max(p.RatingCount, 0)
	count := prior + 1
	mean := decimal.NewFromFloat(p.Rating).
		Mul(decimal.NewFromInt(int64(prior))).
		Add(decimal.NewFromInt(int64(stars))).
		Div(decimal.NewFromInt(int64(count)))
	out.Rating = mean.Round(1).InexactFloat64()
	out.RatingCount = count
	return out, nil
}

// RateProducts returns a new catalog with stars applied to every product
// ref addresses, plus the updated products in catalog order.
func RateProducts(stores []Store, ref ProductRef, stars int) ([]Store, []Product, error) {
	if stars < MinStars || stars > MaxStars {
		return stores, nil, ErrInvalidStars
	}

	out := CloneStores(stores)
	var rated []Product
	for si := range out {
		if ref.StoreID != "" && out[si].ID != ref.StoreID {
			continue
		}
		for pi, p := range out[si].Products {
			if p.ID != ref.ProductID {
				continue
			}
			updated, err := ApplyRating(p, stars)
			if err != nil {
				return stores, nil, err
			}
			out[si].Products[pi] = updated
			rated = append(rated, updated.Clone())
		}
	}

	if len(rated) == 0 {
		return stores, nil, ErrProductNotFound
	}
	return out, rated, nil
}
