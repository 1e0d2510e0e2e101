package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

// RateProduct records one star rating. With ref.StoreID set only that
// store's product is rated; otherwise every product with ref.ProductID is.
func (m *Marketplace) RateProduct(ctx context.Context, sessionID string, ref domain.ProductRef, stars int) ([]domain.Product, error) {
	if ref.ProductID == "" {
		return nil, apperrors.InvalidInput("product id is required")
	}
	if stars < domain.MinStars || stars > domain.MaxStars {
		return nil, apperrors.InvalidInput("stars must be between 1 and 5")
	}

	var rated []domain.Product
	err := m.withSession(ctx, sessionID, func(s *session) error {
		stores, products, err := domain.RateProducts(s.stores, ref, stars)
		if err != nil {
			if errors.Is(err, domain.ErrProductNotFound) {
				return apperrors.NotFound("product", ref.ProductID)
			}
			return apperrors.InvalidInput(err.Error())
		}
		if err := m.commitStores(ctx, sessionID, s, stores); err != nil {
			return err
		}
		rated = products
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.InfoContext(ctx, "product rated",
		slog.String("session_id", sessionID),
		slog.String("store_id", ref.StoreID),
		slog.String("product_id", ref.ProductID),
		slog.Int("stars", stars),
		slog.Int("updated", len(rated)),
	)
	if err := m.publisher.PublishProductRated(ctx, sessionID, ref, stars, rated); err != nil {
		m.logger.WarnContext(ctx, "failed to publish product.rated event",
			slog.String("session_id", sessionID),
			slog.String("error", err.Error()),
		)
	}
	return rated, nil
}
