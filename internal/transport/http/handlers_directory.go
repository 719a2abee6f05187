package httptransport

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	dirservice "tramita/internal/directory/service"
	id "tramita/pkg/domain"
)

type createSectorRequest struct {
	Name       string `json:"name"`
	ParentUnit string `json:"parent_unit,omitempty"`
}

func (h *Handler) handleCreateSector(w http.ResponseWriter, r *http.Request) {
	var req createSectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	sector, err := h.directory.CreateSector(r.Context(), req.Name, req.ParentUnit)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, sector)
}

func (h *Handler) handleListSectors(w http.ResponseWriter, r *http.Request) {
	sectors, err := h.directory.ListSectors(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sectors": sectors})
}

type renameSectorRequest struct {
	Name string `json:"name"`
}

func (h *Handler) handleRenameSector(w http.ResponseWriter, r *http.Request) {
	sectorID, err := id.ParseSectorID(chi.URLParam(r, "sectorID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req renameSectorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	if err := h.directory.RenameSector(r.Context(), sectorID, req.Name); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type createCollaboratorRequest struct {
	Name         string   `json:"name"`
	Role         string   `json:"role,omitempty"`
	HomeSector   string   `json:"home_sector"`
	Capabilities []string `json:"capabilities,omitempty"`
	Password     string   `json:"password"`
}

func (h *Handler) handleCreateCollaborator(w http.ResponseWriter, r *http.Request) {
	var req createCollaboratorRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	homeSector, err := id.ParseSectorID(req.HomeSector)
	if err != nil {
		writeError(w, err)
		return
	}
	collaborator, err := h.directory.CreateCollaborator(r.Context(), dirservice.CreateCollaboratorInput{
		Name:         req.Name,
		Role:         req.Role,
		HomeSector:   homeSector,
		Capabilities: req.Capabilities,
		Password:     req.Password,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, collaborator)
}

func (h *Handler) handleGetCollaborator(w http.ResponseWriter, r *http.Request) {
	collaboratorID, err := id.ParseCollaboratorID(chi.URLParam(r, "collaboratorID"))
	if err != nil {
		writeError(w, err)
		return
	}
	collaborator, err := h.directory.GetCollaborator(r.Context(), collaboratorID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collaborator)
}
