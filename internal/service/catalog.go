package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	"github.com/suleman231/provisimarket-hub/internal/event"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
	"github.com/suleman231/provisimarket-hub/pkg/pagination"
)

// Categories returns the product categories in display order.
func (m *Marketplace) Categories() []domain.Category {
	return domain.Categories()
}

// ListCatalog returns one page of listings matching filter.
func (m *Marketplace) ListCatalog(ctx context.Context, sessionID string, filter domain.Filter, page pagination.Params) (pagination.Result[domain.Listing], error) {
	var listings []domain.Listing
	err := m.withSession(ctx, sessionID, func(s *session) error {
		listings = domain.FilterCatalog(s.stores, filter)
		return nil
	})
	if err != nil {
		return pagination.Result[domain.Listing]{}, err
	}
	return pagination.Slice(listings, page), nil
}

// SearchStores returns stores whose name or tags contain term.
func (m *Marketplace) SearchStores(ctx context.Context, sessionID, term string) ([]domain.Store, error) {
	var stores []domain.Store
	err := m.withSession(ctx, sessionID, func(s *session) error {
		stores = domain.SearchStores(s.stores, term)
		return nil
	})
	return stores, err
}

// GetStore returns the store with storeID, or nil when it does not exist.
func (m *Marketplace) GetStore(ctx context.Context, sessionID, storeID string) (*domain.Store, error) {
	var store *domain.Store
	err := m.withSession(ctx, sessionID, func(s *session) error {
		store = domain.FindStore(s.stores, storeID)
		return nil
	})
	return store, err
}

// MerchantStore returns the store managed by the current user.
func (m *Marketplace) MerchantStore(ctx context.Context, sessionID string) (*domain.Store, error) {
	var store *domain.Store
	err := m.withSession(ctx, sessionID, func(s *session) error {
		var err error
		store, err = merchantStore(s)
		return err
	})
	return store, err
}

// UpdateStore applies patch to a store.
func (m *Marketplace) UpdateStore(ctx context.Context, sessionID, storeID string, patch domain.StorePatch) (domain.Store, error) {
	var updated domain.Store
	err := m.withSession(ctx, sessionID, func(s *session) error {
		stores, ok := domain.UpdateStore(s.stores, storeID, patch)
		if !ok {
			return apperrors.NotFound("store", storeID)
		}
		if err := m.commitStores(ctx, sessionID, s, stores); err != nil {
			return err
		}
		updated = *domain.FindStore(stores, storeID)
		return nil
	})
	if err != nil {
		return domain.Store{}, err
	}

	m.logger.InfoContext(ctx, "store updated",
		slog.String("session_id", sessionID),
		slog.String("store_id", storeID),
	)
	m.publishCatalogUpdated(ctx, sessionID, event.CatalogChange{Action: event.ActionStoreUpdated, StoreID: storeID})
	return updated, nil
}

// UpdateProduct applies patch to one product of one store.
func (m *Marketplace) UpdateProduct(ctx context.Context, sessionID, storeID, productID string, patch domain.ProductPatch) (domain.Product, error) {
	if patch.Category != nil {
		c, ok := domain.ParseCategory(string(*patch.Category))
		if !ok {
			return domain.Product{}, apperrors.InvalidInput("unknown category: " + string(*patch.Category))
		}
		patch.Category = &c
	}

	var updated domain.Product
	err := m.withSession(ctx, sessionID, func(s *session) error {
		stores, ok := domain.UpdateProduct(s.stores, storeID, productID, patch)
		if !ok {
			return apperrors.NotFound("product", storeID+"/"+productID)
		}
		if err := m.commitStores(ctx, sessionID, s, stores); err != nil {
			return err
		}
		updated, _ = domain.FindStore(stores, storeID).FindProduct(productID)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	m.logger.InfoContext(ctx, "product updated",
		slog.String("session_id", sessionID),
		slog.String("store_id", storeID),
		slog.String("product_id", productID),
	)
	m.publishCatalogUpdated(ctx, sessionID, event.CatalogChange{
		Action: event.ActionProductUpdated, StoreID: storeID, ProductID: productID,
	})
	return updated, nil
}

// AddProduct lists a new product in the current user's store.
func (m *Marketplace) AddProduct(ctx context.Context, sessionID string, draft domain.ProductDraft) (domain.Product, error) {
	if draft.Category != "" {
		c, ok := domain.ParseCategory(string(draft.Category))
		if !ok {
			return domain.Product{}, apperrors.InvalidInput("unknown category: " + string(draft.Category))
		}
		draft.Category = c
	}

	product := domain.NewProduct(draft)
	var storeID string
	err := m.withSession(ctx, sessionID, func(s *session) error {
		store, err := merchantStore(s)
		if err != nil {
			return err
		}
		storeID = store.ID
		stores, _ := domain.AddProduct(s.stores, storeID, product)
		return m.commitStores(ctx, sessionID, s, stores)
	})
	if err != nil {
		return domain.Product{}, err
	}

	m.logger.InfoContext(ctx, "product listed",
		slog.String("session_id", sessionID),
		slog.String("store_id", storeID),
		slog.String("product_id", product.ID),
	)
	m.publishCatalogUpdated(ctx, sessionID, event.CatalogChange{
		Action: event.ActionProductAdded, StoreID: storeID, ProductID: product.ID,
	})
	return product, nil
}

// AddGalleryImage appends a trimmed URL to the gallery of a product in the
// current user's store.
func (m *Marketplace) AddGalleryImage(ctx context.Context, sessionID, productID, url string) (domain.Product, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return domain.Product{}, apperrors.InvalidInput("image url is required")
	}

	var (
		updated domain.Product
		storeID string
	)
	err := m.withSession(ctx, sessionID, func(s *session) error {
		store, err := merchantStore(s)
		if err != nil {
			return err
		}
		storeID = store.ID
		product, ok := store.FindProduct(productID)
		if !ok {
			return apperrors.NotFound("product", productID)
		}

		stores, _ := domain.UpdateProduct(s.stores, storeID, productID, domain.ProductPatch{
			Gallery: append(product.Gallery, url),
		})
		if err := m.commitStores(ctx, sessionID, s, stores); err != nil {
			return err
		}
		updated, _ = domain.FindStore(stores, storeID).FindProduct(productID)
		return nil
	})
	if err != nil {
		return domain.Product{}, err
	}

	m.logger.InfoContext(ctx, "gallery image added",
		slog.String("session_id", sessionID),
		slog.String("product_id", productID),
	)
	m.publishCatalogUpdated(ctx, sessionID, event.CatalogChange{
		Action: event.ActionProductUpdated, StoreID: storeID, ProductID: productID,
	})
	return updated, nil
}

// GetProfile returns the current user.
func (m *Marketplace) GetProfile(ctx context.Context, sessionID string) (domain.User, error) {
	var user domain.User
	err := m.withSession(ctx, sessionID, func(s *session) error {
		user = s.user
		return nil
	})
	return user, err
}

// UpdateProfile applies patch to the current user.
func (m *Marketplace) UpdateProfile(ctx context.Context, sessionID string, patch domain.UserPatch) (domain.User, error) {
	if patch.Role != nil && *patch.Role != domain.RoleCustomer && *patch.Role != domain.RoleMerchant {
		return domain.User{}, apperrors.InvalidInput("role must be Customer or Merchant")
	}

	var user domain.User
	err := m.withSession(ctx, sessionID, func(s *session) error {
		user = patch.Apply(s.user)
		return m.commitUser(ctx, sessionID, s, user)
	})
	if err != nil {
		return domain.User{}, err
	}

	m.logger.InfoContext(ctx, "profile updated", slog.String("session_id", sessionID))
	return user, nil
}
