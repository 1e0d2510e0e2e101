package domain

import "github.com/shopspring/decimal"

// CartLine is a product snapshot taken when it was added. Later edits to the
// product do not change the line.
type CartLine struct {
	Product   Product `json:"product"`
	StoreName string  `json:"store_name"`
}

// Cart is an ordered list of lines. Duplicate products are separate lines.
// Methods never modify the receiver.
type Cart struct {
	Lines []CartLine `json:"lines"`
}

// Clone returns a deep copy of c.
func (c Cart) Clone() Cart {
	lines := make([]CartLine, len(c.Lines))
	for i, l := range c.Lines {
		lines[i] = CartLine{Product: l.Product.Clone(), StoreName: l.StoreName}
	}
	return Cart{Lines: lines}
}

// Add appends a snapshot of p. There is no stock or duplicate check.
func (c Cart) Add(p Product, storeName string) Cart {
	out := c.Clone()
	out.Lines = append(out.Lines, CartLine{Product: p.Clone(), StoreName: storeName})
	return out
}

// RemoveLine drops the line at index. The bool is false when index is out
// of range, in which case the cart is returned unchanged.
func (c Cart) RemoveLine(index int) (Cart, bool) {
	if index < 0 || index >= len(c.Lines) {
		return c.Clone(), false
	}
	out := Cart{Lines: make([]CartLine, 0, len(c.Lines)-1)}
	for i, l := range c.Lines {
		if i != index {
			out.Lines = append(out.Lines, CartLine{Product: l.Product.Clone(), StoreName: l.StoreName})
		}
	}
	return out, true
}

// RemoveProduct drops every line holding productID and reports how many
// were removed.
func (c Cart) RemoveProduct(productID string) (Cart, int) {
	out := Cart{Lines: make([]CartLine, 0, len(c.Lines))}
	for _, l := range c.Lines {
		if l.Product.ID != productID {
			out.Lines = append(out.Lines, CartLine{Product: l.Product.Clone(), StoreName: l.StoreName})
		}
	}
	return out, len(c.Lines) - len(out.Lines)
}

// Count returns the number of lines.
func (c Cart) Count() int { return len(c.Lines) }

// Total sums the snapshot prices in decimal so that cents add exactly.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.Lines {
		total = total.Add(decimal.NewFromFloat(l.Product.Price))
	}
	return total
}
