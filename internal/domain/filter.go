package domain

import "strings"

// Default filter bounds. There is no "unset" value: a price range of 0..1000
// is simply what the catalog shows before the user narrows it.
const (
	DefaultMinPrice  = 0
	DefaultMaxPrice  = 1000
	DefaultMinRating = 0
)

// Filter selects catalog listings. All predicates must hold.
type Filter struct {
	Term        string
	Category    string
	MinPrice    float64
	MaxPrice    float64
	MinRating   float64
	InStockOnly bool
}

// DefaultFilter matches every product priced between 0 and 1000.
func DefaultFilter() Filter {
	return Filter{
		Category:  CategoryAll,
		MinPrice:  DefaultMinPrice,
		MaxPrice:  DefaultMaxPrice,
		MinRating: DefaultMinRating,
	}
}

// StoreSummary identifies the store a listing belongs to.
type StoreSummary struct {
	ID      string  `json:"id"`
	Name    string  `json:"name"`
	Address string  `json:"address"`
	Rating  float64 `json:"rating"`
}

// Listing is a product paired with its owning store.
type Listing struct {
	Product Product      `json:"product"`
	Store   StoreSummary `json:"store"`
}

// Matches reports whether p passes every predicate of f.
func (f Filter) Matches(p Product) bool {
	return f.matchesCategory(p.Category) &&
		strings.Contains(strings.ToLower(p.Name), strings.ToLower(f.Term)) &&
		p.Price >= f.MinPrice && p.Price <= f.MaxPrice &&
		p.Rating >= f.MinRating &&
		(!f.InStockOnly || p.InStock)
}

func (f Filter) matchesCategory(c Category) bool {
	if f.Category == "" || strings.EqualFold(f.Category, CategoryAll) {
		return true
	}
	return string(c) == f.Category
}

// FilterCatalog flattens stores into listings matching f, in store order
// then product order.
func FilterCatalog(stores []Store, f Filter) []Listing {
	out := make([]Listing, 0)
	for _, s := range stores {
		summary := StoreSummary{ID: s.ID, Name: s.Name, Address: s.Address, Rating: s.Rating}
		for _, p := range s.Products {
			if f.Matches(p) {
				out = append(out, Listing{Product: p.Clone(), Store: summary})
			}
		}
	}
	return out
}
