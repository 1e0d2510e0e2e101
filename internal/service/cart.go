package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/phpdave11/gofpdf"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
	"github.com/suleman231/provisimarket-hub/pkg/slug"
)

// GetCart returns the session cart.
func (m *Marketplace) GetCart(ctx context.Context, sessionID string) (domain.Cart, error) {
	var cart domain.Cart
	err := m.withSession(ctx, sessionID, func(s *session) error {
		cart = s.cart.Clone()
		return nil
	})
	return cart, err
}

// AddToCart appends a snapshot of a store's product to the cart.
func (m *Marketplace) AddToCart(ctx context.Context, sessionID, storeID, productID string) (domain.Cart, error) {
	var cart domain.Cart
	err := m.withSession(ctx, sessionID, func(s *session) error {
		store := domain.FindStore(s.stores, storeID)
		if store == nil {
			return apperrors.NotFound("store", storeID)
		}
		product, ok := store.FindProduct(productID)
		if !ok {
			return apperrors.NotFound("product", productID)
		}
		cart = s.cart.Add(product, store.Name)
		return m.commitCart(ctx, sessionID, s, cart)
	})
	if err != nil {
		return domain.Cart{}, err
	}

	m.logger.InfoContext(ctx, "added to cart",
		slog.String("session_id", sessionID),
		slog.String("store_id", storeID),
		slog.String("product_id", productID),
		slog.Int("line_count", cart.Count()),
	)
	m.publishCartUpdated(ctx, sessionID, cart)
	return cart, nil
}

// RemoveCartLine removes the single line at index.
func (m *Marketplace) RemoveCartLine(ctx context.Context, sessionID string, index int) (domain.Cart, error) {
	var cart domain.Cart
	err := m.withSession(ctx, sessionID, func(s *session) error {
		var ok bool
		cart, ok = s.cart.RemoveLine(index)
		if !ok {
			return apperrors.NotFound("cart line", strconv.Itoa(index))
		}
		return m.commitCart(ctx, sessionID, s, cart)
	})
	if err != nil {
		return domain.Cart{}, err
	}

	m.logger.InfoContext(ctx, "removed cart line",
		slog.String("session_id", sessionID),
		slog.Int("index", index),
	)
	m.publishCartUpdated(ctx, sessionID, cart)
	return cart, nil
}

// RemoveFromCart removes every line holding productID. Removing a product
// that is not in the cart is not an error.
func (m *Marketplace) RemoveFromCart(ctx context.Context, sessionID, productID string) (domain.Cart, error) {
	var (
		cart    domain.Cart
		removed int
	)
	err := m.withSession(ctx, sessionID, func(s *session) error {
		cart, removed = s.cart.RemoveProduct(productID)
		return m.commitCart(ctx, sessionID, s, cart)
	})
	if err != nil {
		return domain.Cart{}, err
	}

	m.logger.InfoContext(ctx, "removed product from cart",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
		slog.Int("removed", removed),
	)
	m.publishCartUpdated(ctx, sessionID, cart)
	return cart, nil
}

// ExportCart writes the cart as a printable PDF shopping list to w and
// returns a file name for it.
func (m *Marketplace) ExportCart(ctx context.Context, sessionID string, w io.Writer) (string, error) {
	cart, err := m.GetCart(ctx, sessionID)
	if err != nil {
		return "", err
	}
	user, err := m.GetProfile(ctx, sessionID)
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Shopping List", true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, "Shopping List")
	pdf.Ln(10)
	pdf.SetFont("Arial", "", 10)
	pdf.Cell(0, 6, tr(fmt.Sprintf("%s - %s", user.Name, m.now().Format("Jan 2, 2006"))))
	pdf.Ln(10)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(60, 8, "Store", "B", 0, "L", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	if cart.Count() == 0 {
		pdf.CellFormat(180, 8, "Your list is empty.", "", 1, "L", false, 0, "")
	}
	for _, line := range cart.Lines {
		name := line.Product.Name
		if line.Product.Unit != "" {
			name += " (" + line.Product.Unit + ")"
		}
		pdf.CellFormat(90, 8, tr(name), "", 0, "L", false, 0, "")
		pdf.CellFormat(60, 8, tr(line.StoreName), "", 0, "L", false, 0, "")
		pdf.CellFormat(30, 8, "$"+strconv.FormatFloat(line.Product.Price, 'f', 2, 64), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(150, 10, "Total", "T", 0, "L", false, 0, "")
	pdf.CellFormat(30, 10, "$"+cart.Total().StringFixed(2), "T", 1, "R", false, 0, "")

	if err := pdf.Output(w); err != nil {
		return "", fmt.Errorf("render shopping list: %w", err)
	}

	name := "shopping-list"
	if s := slug.Generate(user.Name); s != "" {
		name += "-" + s
	}
	return name + ".pdf", nil
}
