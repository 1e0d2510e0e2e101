package domain

import (
	"slices"
	"strings"

	"github.com/google/uuid"
)

// Category is the closed set of product categories.
type Category string

const (
	CategoryProduce      Category = "Produce"
	CategoryDairy        Category = "Dairy"
	CategoryGrains       Category = "Grains"
	CategoryCanned       Category = "Canned"
	CategorySnacks       Category = "Snacks"
	CategoryBeverages    Category = "Beverages"
	CategoryHousehold    Category = "Household"
	CategoryPersonalCare Category = "Personal Care"
)

// CategoryAll is the filter wildcard; it is not a product category.
const CategoryAll = "all"

var categories = []Category{
	CategoryProduce, CategoryDairy, CategoryGrains, CategoryCanned,
	CategorySnacks, CategoryBeverages, CategoryHousehold, CategoryPersonalCare,
}

// Categories returns every category in display order.
func Categories() []Category {
	return slices.Clone(categories)
}

// ParseCategory matches s case-insensitively against the known categories.
func ParseCategory(s string) (Category, bool) {
	for _, c := range categories {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, true
		}
	}
	return "", false
}

// Defaults for newly listed products.
const (
	DefaultUnit         = "pcs"
	DefaultProductImage = "https://via.placeholder.com/300?text=No+Image"
	NewProductRating    = 5.0
)

// Product is an item sold by exactly one store.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       float64  `json:"price"`
	Unit        string   `json:"unit"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Gallery     []string `json:"gallery"`
	InStock     bool     `json:"in_stock"`
	Quantity    *float64 `json:"quantity,omitempty"`
	Rating      float64  `json:"rating"`
	RatingCount int      `json:"rating_count"`
}

// Clone returns a deep copy of p.
func (p Product) Clone() Product {
	p.Gallery = cloneStrings(p.Gallery)
	if p.Quantity != nil {
		q := *p.Quantity
		p.Quantity = &q
	}
	return p
}

// ProductPatch is a partial product update. Nil fields are left unchanged.
type ProductPatch struct {
	Name        *string   `json:"name,omitempty"`
	Price       *Number   `json:"price,omitempty"`
	Unit        *string   `json:"unit,omitempty"`
	Category    *Category `json:"category,omitempty"`
	Description *string   `json:"description,omitempty"`
	Image       *string   `json:"image,omitempty"`
	Gallery     []string  `json:"gallery,omitempty"`
	InStock     *bool     `json:"in_stock,omitempty"`
	Quantity    *Number   `json:"quantity,omitempty"`
}

// Apply returns a copy of p with the patch applied.
func (pp ProductPatch) Apply(p Product) Product {
	out := p.Clone()
	if pp.Name != nil {
		out.Name = *pp.Name
	}
	if pp.Price != nil {
		out.Price = pp.Price.Float()
	}
	if pp.Unit != nil {
		out.Unit = *pp.Unit
	}
	if pp.Category != nil {
		out.Category = *pp.Category
	}
	if pp.Description != nil {
		out.Description = *pp.Description
	}
	if pp.Image != nil {
		out.Image = *pp.Image
	}
	if pp.Gallery != nil {
		out.Gallery = cloneStrings(pp.Gallery)
	}
	if pp.InStock != nil {
		out.InStock = *pp.InStock
	}
	if pp.Quantity != nil {
		q := pp.Quantity.Float()
		out.Quantity = &q
	}
	return out
}

// ProductDraft holds merchant input for a new listing.
type ProductDraft struct {
	Name        string   `json:"name"`
	Price       Number   `json:"price"`
	Unit        string   `json:"unit"`
	Category    Category `json:"category"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Gallery     []string `json:"gallery"`
	InStock     *bool    `json:"in_stock"`
	Quantity    *Number  `json:"quantity"`
}

// NewProduct builds a listing from d, filling the defaults of the listing
// form and assigning a fresh id. New listings start at five stars with no
// ratings.
func NewProduct(d ProductDraft) Product {
	p := Product{
		ID:          NewProductID(),
		Name:        d.Name,
		Price:       d.Price.Float(),
		Unit:        d.Unit,
		Category:    d.Category,
		Description: d.Description,
		Image:       d.Image,
		Gallery:     cloneStrings(d.Gallery),
		InStock:     true,
		Rating:      NewProductRating,
	}
	if p.Unit == "" {
		p.Unit = DefaultUnit
	}
	if p.Category == "" {
		p.Category = CategoryProduce
	}
	if p.Image == "" {
		p.Image = DefaultProductImage
	}
	if p.Gallery == nil {
		p.Gallery = []string{}
	}
	if d.InStock != nil {
		p.InStock = *d.InStock
	}
	var q float64
	if d.Quantity != nil {
		q = d.Quantity.Float()
	}
	p.Quantity = &q
	return p
}

// NewProductID returns "p" followed by nine random hex characters.
func NewProductID() string {
	return "p" + strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
}

func cloneStrings(s []string) []string {
	if s == nil {
		return nil
	}
	return slices.Clone(s)
}
