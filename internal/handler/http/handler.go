package http

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/suleman231/provisimarket-hub/internal/chat"
	"github.com/suleman231/provisimarket-hub/internal/service"
	apperrors "github.com/suleman231/provisimarket-hub/pkg/errors"
	"github.com/suleman231/provisimarket-hub/pkg/httputil"
	"github.com/suleman231/provisimarket-hub/pkg/logger"
	"github.com/suleman231/provisimarket-hub/pkg/middleware"
)

// ProductDescriber writes marketing copy for a product name.
type ProductDescriber interface {
	DescribeProduct(ctx context.Context, name string) (string, error)
}

// Handler serves the marketplace API. Every route operates on the session
// named by the X-Session-ID header.
type Handler struct {
	market         *service.Marketplace
	chat           *chat.Registry
	describer      ProductDescriber
	maxUploadBytes int64
	logger         *slog.Logger
}

// NewHandler creates the API handler.
func NewHandler(
	market *service.Marketplace,
	chatRegistry *chat.Registry,
	describer ProductDescriber,
	maxUploadBytes int64,
	logger *slog.Logger,
) *Handler {
	return &Handler{
		market:         market,
		chat:           chatRegistry,
		describer:      describer,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// RequireSession rejects requests without a session header and tags the
// request context with the session id for logging.
func RequireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sid := r.Header.Get(middleware.SessionIDHeader)
		if sid == "" {
			httputil.WriteError(w, r, apperrors.Unauthorized("missing "+middleware.SessionIDHeader+" header"), slog.Default())
			return
		}
		ctx := logger.WithSessionID(r.Context(), sid)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionID(r *http.Request) string {
	return logger.SessionIDFromContext(r.Context())
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	httputil.WriteError(w, r, err, h.logger)
}
