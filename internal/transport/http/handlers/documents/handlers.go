package documentshandler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"ozziework/internal/domain/documents"
	"ozziework/internal/transport/http/api"
	"ozziework/internal/transport/http/middleware"
)

type Handler struct {
	Documents *documents.Service
}

func NewHandler(svc *documents.Service) *Handler {
	return &Handler{Documents: svc}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	docs, err := h.Documents.ListByOwner(r.Context(), user.UserID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "list_failed", "failed to list documents", middleware.GetRequestID(r.Context()))
		return
	}
	items := make([]map[string]any, 0, len(docs))
	for _, d := range docs {
		items = append(items, map[string]any{
			"id":        d.ID,
			"title":     d.Title,
			"category":  d.Category,
			"mimeType":  d.MimeType,
			"sizeBytes": d.SizeBytes,
			"createdAt": d.CreatedAt.Format(time.RFC3339),
		})
	}
	api.Success(w, map[string]any{"items": items}, middleware.GetRequestID(r.Context()))
}

func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUser(r.Context())
	if !ok {
		api.Fail(w, http.StatusUnauthorized, "unauthorized", "authentication required", middleware.GetRequestID(r.Context()))
		return
	}
	doc, err := h.Documents.ByID(r.Context(), chi.URLParam(r, "documentID"))
	if err != nil {
		api.Fail(w, http.StatusNotFound, "not_found", "document not found", middleware.GetRequestID(r.Context()))
		return
	}
	if doc.OwnerID != user.UserID {
		api.Fail(w, http.StatusForbidden, "forbidden", "not the document owner", middleware.GetRequestID(r.Context()))
		return
	}

	data, err := h.Documents.ReadArtifact(doc)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "read_failed", "failed to read document", middleware.GetRequestID(r.Context()))
		return
	}
	w.Header().Set("Content-Type", doc.MimeType)
	w.Header().Set("Content-Disposition", `attachment; filename="`+doc.Title+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
