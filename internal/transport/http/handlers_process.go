package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	procservice "tramita/internal/process/service"
	id "tramita/pkg/domain"
	"tramita/pkg/requestcontext"
)

type createProcessRequest struct {
	Type            string   `json:"type"`
	Specification   string   `json:"specification,omitempty"`
	InterestedParty string   `json:"interested_party"`
	AccessTier      string   `json:"access_tier"`
	Grantees        []string `json:"grantees,omitempty"`
}

func (h *Handler) handleCreateProcess(w http.ResponseWriter, r *http.Request) {
	var req createProcessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	grantees := make([]id.CollaboratorID, 0, len(req.Grantees))
	for _, raw := range req.Grantees {
		collaboratorID, err := id.ParseCollaboratorID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		grantees = append(grantees, collaboratorID)
	}

	process, err := h.processes.CreateProcess(r.Context(), procservice.CreateProcessInput{
		Type:            req.Type,
		Specification:   req.Specification,
		InterestedParty: req.InterestedParty,
		AccessTier:      req.AccessTier,
		Grantees:        grantees,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, process)
}

func (h *Handler) handleGetProcess(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	detail, err := h.processes.GetProcess(r.Context(), processID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

func (h *Handler) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	ledger, err := h.processes.GetHistory(r.Context(), processID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"movements": ledger})
}

type routeProcessRequest struct {
	ToSector         string `json:"to_sector"`
	Observations     string `json:"observations,omitempty"`
	KeepOpenAtOrigin bool   `json:"keep_open_at_origin,omitempty"`
}

func (h *Handler) handleRouteProcess(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req routeProcessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	toSector, err := id.ParseSectorID(req.ToSector)
	if err != nil {
		writeError(w, err)
		return
	}

	ledger, err := h.processes.RouteProcess(r.Context(), procservice.RouteInput{
		ProcessID:        processID,
		ToSector:         toSector,
		Observations:     req.Observations,
		KeepOpenAtOrigin: req.KeepOpenAtOrigin,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"movements": ledger})
}

func (h *Handler) handleArchiveProcess(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, true)
}

func (h *Handler) handleReopenProcess(w http.ResponseWriter, r *http.Request) {
	h.setArchived(w, r, false)
}

func (h *Handler) setArchived(w http.ResponseWriter, r *http.Request, archived bool) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if archived {
		err = h.processes.ArchiveProcess(r.Context(), processID)
	} else {
		err = h.processes.ReopenProcess(r.Context(), processID)
	}
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleSectorView(w http.ResponseWriter, r *http.Request) {
	sector := requestcontext.ActiveSector(r.Context())
	if raw := r.URL.Query().Get("sector"); raw != "" {
		sectorID, err := id.ParseSectorID(raw)
		if err != nil {
			writeError(w, err)
			return
		}
		sector = sectorID
	}
	view, err := h.processes.ListForSector(r.Context(), sector)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

func (h *Handler) handleSearchProcesses(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	var archived *bool
	switch query.Get("archived") {
	case "true":
		v := true
		archived = &v
	case "false":
		v := false
		archived = &v
	}
	processes, err := h.processes.SearchProcesses(r.Context(), query.Get("q"), archived)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"processes": processes})
}

type grantAccessRequest struct {
	CollaboratorID string `json:"collaborator_id"`
}

func (h *Handler) handleGrantAccess(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req grantAccessRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	collaboratorID, err := id.ParseCollaboratorID(req.CollaboratorID)
	if err != nil {
		writeError(w, err)
		return
	}
	grant, err := h.processes.GrantAccess(r.Context(), processID, collaboratorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, grant)
}

func (h *Handler) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	collaboratorID, err := id.ParseCollaboratorID(chi.URLParam(r, "collaboratorID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.processes.RevokeAccess(r.Context(), processID, collaboratorID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleListGrants(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	grants, err := h.processes.ListGrants(r.Context(), processID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"grants": grants})
}
