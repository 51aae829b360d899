package httpapi

import (
	"net/http"

	"github.com/eslsoft/hebcorpus/internal/adapter/mapping"
)

func (h *Handler) handleSearchWords(w http.ResponseWriter, r *http.Request) {
	words, err := h.lookup.SearchWords(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"words": words})
}

func (h *Handler) handleSegments(w http.ResponseWriter, r *http.Request) {
	word, err := requiredQuery(r, "word")
	if err != nil {
		h.fail(w, r, err, mapping.CodePreviewFailed)
		return
	}
	previews, err := h.lookup.PreviewSegments(r.Context(), word)
	if err != nil {
		h.fail(w, r, err, mapping.CodePreviewFailed)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"word": word, "segments": previews})
}

func (h *Handler) handleListAudits(w http.ResponseWriter, r *http.Request) {
	query, err := mapping.ListAuditQueryFromValues(r.URL.Query())
	if err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}
	items, total, err := h.audits.ListAudits(r.Context(), query)
	if err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}
	respondJSON(w, http.StatusOK, mapping.ListAuditsResponse{
		Items:    items,
		Total:    total,
		PageNo:   query.PageNo,
		PageSize: query.PageSize,
	})
}

func (h *Handler) handleCreateBook(w http.ResponseWriter, r *http.Request) {
	var req mapping.CreateBookRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}
	book, err := h.books.CreateBook(r.Context(), req.ToEntity())
	if err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}
	respondJSON(w, http.StatusCreated, book)
}
