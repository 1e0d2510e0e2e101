package http

import (
	"net/http"

	"github.com/suleman231/provisimarket-hub/internal/domain"
	"github.com/suleman231/provisimarket-hub/pkg/httputil"
	"github.com/suleman231/provisimarket-hub/pkg/validator"
)

// AskRequest is the body of POST /api/v1/assistant/messages.
type AskRequest struct {
	Query    string              `json:"query" validate:"required,max=2000"`
	Location *domain.Coordinates `json:"location"`
}

// GetTranscript handles GET /api/v1/assistant/transcript
func (h *Handler) GetTranscript(w http.ResponseWriter, r *http.Request) {
	transcript, err := h.chat.Transcript(sessionID(r))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, transcript)
}

// Ask handles POST /api/v1/assistant/messages. The reply is always an
// assistant turn; a failing model yields an apology, not an error.
func (h *Handler) Ask(w http.ResponseWriter, r *http.Request) {
	var req AskRequest
	if err := validator.DecodeAndValidate(r, &req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	reply, err := h.chat.Submit(r.Context(), sessionID(r), req.Query, req.Location)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	httputil.WriteData(w, http.StatusOK, reply)
}
