package service

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	"github.com/suleman231/provisimarket-hub/internal/event"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
)

// UploadFile is a file picked for a pending upload.
type UploadFile struct {
	Name        string
	ContentType string
	Body        io.Reader
}

// UploadResult reports what a completed upload did. Applied is false for a
// draft product image, which is handed back to the caller instead.
type UploadResult struct {
	Target  domain.UploadTarget `json:"target"`
	DataURI string              `json:"data_uri"`
	Applied bool                `json:"applied"`
}

// BeginUpload records target as the session's pending upload, replacing any
// previous one, and returns the token that must accompany the file.
func (m *Marketplace) BeginUpload(ctx context.Context, sessionID string, target domain.UploadTarget) (domain.PendingUpload, error) {
	if !target.Kind.Valid() {
		return domain.PendingUpload{}, apperrors.InvalidInput("unknown upload kind: " + string(target.Kind))
	}
	if (target.Kind == domain.UploadMain || target.Kind == domain.UploadGallery) && target.EntityID == "" {
		return domain.PendingUpload{}, apperrors.InvalidInput("entity_id is required for product uploads")
	}
	if target.Kind == domain.UploadGallery && target.EntityID == domain.DraftProductID {
		return domain.PendingUpload{}, apperrors.InvalidInput("gallery uploads need a listed product")
	}

	pending := domain.PendingUpload{
		Token:     uuid.NewString(),
		Target:    target,
		CreatedAt: m.now().UTC(),
	}
	err := m.withSession(ctx, sessionID, func(s *session) error {
		s.pending = &pending
		return nil
	})
	if err != nil {
		return domain.PendingUpload{}, err
	}

	m.logger.DebugContext(ctx, "upload started",
		slog.String("session_id", sessionID),
		slog.String("kind", string(target.Kind)),
		slog.String("entity_id", target.EntityID),
	)
	return pending, nil
}

// CompleteUpload reads file, encodes it as a data URI and applies it to the
// pending upload's target. A token that is not the pending one is rejected
// with Conflict and nothing changes. Once the token matches, the pending
// slot is cleared whether or not the target still exists.
func (m *Marketplace) CompleteUpload(ctx context.Context, sessionID, token string, file UploadFile) (UploadResult, error) {
	data, err := io.ReadAll(file.Body)
	if err != nil {
		return UploadResult{}, fmt.Errorf("read upload %q: %w", file.Name, err)
	}
	uri := domain.DataURI(detectMIME(file.ContentType, data), data)

	var (
		result UploadResult
		change *event.CatalogChange
	)
	err = m.withSession(ctx, sessionID, func(s *session) error {
		if s.pending == nil || s.pending.Token != token {
			return apperrors.Conflict("upload token is not the pending upload")
		}
		target := s.pending.Target
		s.pending = nil

		result = UploadResult{Target: target, DataURI: uri}
		var err error
		change, err = m.applyUpload(ctx, sessionID, s, target, uri)
		if err != nil {
			return err
		}
		result.Applied = !(target.Kind == domain.UploadMain && target.EntityID == domain.DraftProductID)
		return nil
	})
	if err != nil {
		return UploadResult{}, err
	}

	m.logger.InfoContext(ctx, "upload completed",
		slog.String("session_id", sessionID),
		slog.String("kind", string(result.Target.Kind)),
		slog.String("entity_id", result.Target.EntityID),
		slog.Int("bytes", len(data)),
		slog.Bool("applied", result.Applied),
	)
	if change != nil {
		m.publishCatalogUpdated(ctx, sessionID, *change)
	}
	return result, nil
}

// applyUpload stores uri in the target field. It returns the catalog change
// to publish, or nil when the catalog was not touched.
func (m *Marketplace) applyUpload(ctx context.Context, sessionID string, s *session, target domain.UploadTarget, uri string) (*event.CatalogChange, error) {
	if target.Kind == domain.UploadUserAvatar {
		return nil, m.commitUser(ctx, sessionID, s, domain.UserPatch{Avatar: &uri}.Apply(s.user))
	}
	if target.Kind == domain.UploadMain && target.EntityID == domain.DraftProductID {
		return nil, nil
	}

	store, err := merchantStore(s)
	if err != nil {
		return nil, err
	}

	var stores []domain.Store
	switch target.Kind {
	case domain.UploadStoreCover:
		stores, _ = domain.UpdateStore(s.stores, store.ID, domain.StorePatch{Image: &uri})
	case domain.UploadMain, domain.UploadGallery:
		product, ok := store.FindProduct(target.EntityID)
		if !ok {
			return nil, apperrors.NotFound("product", target.EntityID)
		}
		patch := domain.ProductPatch{Image: &uri}
		if target.Kind == domain.UploadGallery {
			patch = domain.ProductPatch{Gallery: append(product.Gallery, uri)}
		}
		stores, _ = domain.UpdateProduct(s.stores, store.ID, product.ID, patch)
	}

	if err := m.commitStores(ctx, sessionID, s, stores); err != nil {
		return nil, err
	}

	change := event.CatalogChange{Action: event.ActionMediaApplied, StoreID: store.ID}
	if target.Kind != domain.UploadStoreCover {
		change.ProductID = target.EntityID
	}
	return &change, nil
}

// detectMIME prefers the declared content type and sniffs the bytes when it
// is missing or generic.
func detectMIME(declared string, data []byte) string {
	if declared != "" {
		if mt, _, err := mime.ParseMediaType(declared); err == nil && mt != "application/octet-stream" {
			return mt
		}
	}
	sniffed := mimetype.Detect(data).String()
	if i := strings.IndexByte(sniffed, ';'); i >= 0 {
		sniffed = sniffed[:i]
	}
	return sniffed
}
