package httpapi

import (
	"net/http"

	"github.com/eslsoft/hebcorpus/internal/adapter/mapping"
)

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req mapping.PreviewRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err, mapping.CodePreviewFailed)
		return
	}
	if err := req.Validate(); err != nil {
		h.fail(w, r, err, mapping.CodePreviewFailed)
		return
	}
	if err := h.checkRawText(req.RawText); err != nil {
		h.fail(w, r, err, mapping.CodePreviewFailed)
		return
	}

	analysis, err := h.ingest.Analyze(r.Context(), req.ToDraft())
	if err != nil {
		h.fail(w, r, err, mapping.CodePreviewFailed)
		return
	}
	respondJSON(w, http.StatusOK, mapping.PreviewResponse{Analysis: analysis})
}

func (h *Handler) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req mapping.CommitRequest
	if err := h.decode(w, r, &req); err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}
	if err := h.checkRawText(req.RawText); err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}
	commit, err := req.ToCommitRequest(ActorFromContext(r.Context()))
	if err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}

	result, err := h.ingest.Commit(r.Context(), commit)
	if err != nil {
		h.fail(w, r, err, mapping.CodeIngestFailed)
		return
	}
	respondJSON(w, http.StatusOK, mapping.ToCommitResponse(result))
}
