package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
	"tramita/pkg/requestcontext"
)

type loginRequest struct {
	CollaboratorID string `json:"collaborator_id"`
	Password       string `json:"password"`
	ActiveSector   string `json:"active_sector,omitempty"`
}

type loginResponse struct {
	Token string `json:"token"`
}

func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	collaboratorID, err := id.ParseCollaboratorID(req.CollaboratorID)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.verifier.Verify(r.Context(), collaboratorID, req.Password); err != nil {
		writeError(w, dErrors.New(dErrors.CodeUnauthenticated, "invalid credentials"))
		return
	}

	var activeSector id.SectorID
	if req.ActiveSector != "" {
		activeSector, err = id.ParseSectorID(req.ActiveSector)
		if err != nil {
			writeError(w, err)
			return
		}
	}

	token, err := h.tokens.Issue(collaboratorID, activeSector, requestcontext.Now(r.Context()))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loginResponse{Token: token})
}

func (h *Handler) handleVerify(w http.ResponseWriter, r *http.Request) {
	result, err := h.documents.VerifyCode(r.Context(), chi.URLParam(r, "code"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
