package httptransport

import (
	"encoding/base64"
	"net/http"

	"github.com/go-chi/chi/v5"

	docservice "tramita/internal/document/service"
	id "tramita/pkg/domain"
	dErrors "tramita/pkg/domain-errors"
)

type addDocumentRequest struct {
	Name       string `json:"name"`
	Kind       string `json:"kind"`
	SourceHTML string `json:"source_html,omitempty"`
	// Content carries external document bytes, base64-encoded.
	Content string `json:"content,omitempty"`
}

func (h *Handler) handleAddDocument(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req addDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}

	var content []byte
	if req.Content != "" {
		content, err = base64.StdEncoding.DecodeString(req.Content)
		if err != nil {
			writeError(w, dErrors.New(dErrors.CodeInvalidInput, "content must be base64"))
			return
		}
	}

	document, err := h.documents.AddDocument(r.Context(), docservice.AddDocumentInput{
		ProcessID:  processID,
		Name:       req.Name,
		Kind:       req.Kind,
		SourceHTML: req.SourceHTML,
		Content:    content,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, document)
}

func (h *Handler) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	processID, err := id.ParseProcessID(chi.URLParam(r, "processID"))
	if err != nil {
		writeError(w, err)
		return
	}
	documents, err := h.documents.ListDocuments(r.Context(), processID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": documents})
}

func (h *Handler) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	document, err := h.documents.GetDocument(r.Context(), documentID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

type editDocumentRequest struct {
	Name       string  `json:"name,omitempty"`
	SourceHTML *string `json:"source_html,omitempty"`
}

func (h *Handler) handleEditDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req editDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	document, err := h.documents.EditDocument(r.Context(), docservice.EditDocumentInput{
		DocumentID: documentID,
		Name:       req.Name,
		SourceHTML: req.SourceHTML,
	})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}

func (h *Handler) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.documents.DeleteDocument(r.Context(), documentID); err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type signDocumentRequest struct {
	Password string `json:"password"`
}

func (h *Handler) handleSignDocument(w http.ResponseWriter, r *http.Request) {
	documentID, err := id.ParseDocumentID(chi.URLParam(r, "documentID"))
	if err != nil {
		writeError(w, err)
		return
	}
	var req signDocumentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, err)
		return
	}
	document, err := h.documents.SignDocument(r.Context(), documentID, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, document)
}
