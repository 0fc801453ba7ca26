package http

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/teamboard/popcache/internal/application"
	"github.com/teamboard/popcache/internal/domain"
)

// Handler is the HTTP adapter entrypoint for the popularity cache.
// Keeping only the application dependency here preserves clean adapter boundaries.
type Handler struct {
	service *application.Service
}

// NewHandler constructs an HTTP handler bound to the application service.
func NewHandler(service *application.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) healthz(w http.ResponseWriter, _ *http.Request) {
	writeProbe(w, "ok")
}

func (h *Handler) readyz(w http.ResponseWriter, _ *http.Request) {
	writeProbe(w, "ready")
}

func (h *Handler) getCategoryPage(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		status, code, message := mapDomainError(err)
		writeError(w, status, code, message)
		return
	}

	offset := queryInt(r, "offset", 0)
	size := queryInt(r, "size", 20)

	items, total, err := h.service.GetCategoryPage(r.Context(), category, offset, size)
	if err != nil {
		status, code, message := mapDomainError(err)
		logListingFailure(r.Context(), category.String(), status, code, err)
		writeError(w, status, code, message)
		return
	}
	writeListing(w, application.CategoryPage{Items: items, Total: total})
}

func (h *Handler) triggerRefresh(w http.ResponseWriter, r *http.Request) {
	category, err := domain.ParseCategory(chi.URLParam(r, "category"))
	if err != nil {
		status, code, message := mapDomainError(err)
		writeError(w, status, code, message)
		return
	}
	h.service.TriggerRefresh(category)
	writeAck(w, "refresh triggered")
}

func (h *Handler) postCreated(w http.ResponseWriter, r *http.Request) {
	summary, ok := decodeSummary(w, r)
	if !ok {
		return
	}
	h.service.OnPostCreated(r.Context(), summary)
	writeAck(w, "first page updated")
}

func (h *Handler) postUpdated(w http.ResponseWriter, r *http.Request) {
	summary, ok := decodeSummary(w, r)
	if !ok {
		return
	}
	if id, err := pathPostID(r); err != nil || id != summary.ID {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "post id mismatch")
		return
	}
	h.service.OnPostUpdated(r.Context(), summary)
	writeAck(w, "listings patched")
}

func (h *Handler) postDeleted(w http.ResponseWriter, r *http.Request) {
	id, err := pathPostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid post id")
		return
	}
	h.service.OnPostDeleted(r.Context(), id)
	writeAck(w, "post removed from listings")
}

func (h *Handler) noticeToggled(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Summary domain.PostSummary `json:"summary"`
		Enabled bool               `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	if id, err := pathPostID(r); err != nil || id != req.Summary.ID {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "post id mismatch")
		return
	}
	h.service.OnNoticeToggled(r.Context(), req.Summary, req.Enabled)
	writeAck(w, "notice listing updated")
}

func (h *Handler) postEngaged(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Delta float64 `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	id, err := pathPostID(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid post id")
		return
	}
	h.service.OnPostEngaged(r.Context(), id, req.Delta)
	writeAck(w, "score updated")
}

func decodeSummary(w http.ResponseWriter, r *http.Request) (domain.PostSummary, bool) {
	var summary domain.PostSummary
	if err := json.NewDecoder(r.Body).Decode(&summary); err != nil {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return domain.PostSummary{}, false
	}
	if summary.ID <= 0 {
		writeError(w, http.StatusBadRequest, "VALIDATION_ERROR", "post id is required")
		return domain.PostSummary{}, false
	}
	return summary, true
}

func pathPostID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "post_id"), 10, 64)
}

func queryInt(r *http.Request, name string, fallback int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}
