// Package httpapi is the JSON boundary of the ingestion pipeline.
package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/eslsoft/hebcorpus/internal/adapter/mapping"
	"github.com/eslsoft/hebcorpus/internal/entity"
	"github.com/eslsoft/hebcorpus/internal/usecase"
)

// DefaultMaxRawTextBytes bounds the rawText of a single chapter.
const DefaultMaxRawTextBytes = 256 << 10

// Handler serves the admin ingestion API.
type Handler struct {
	ingest          usecase.IngestUsecase
	lookup          usecase.LookupUsecase
	audits          usecase.AuditUsecase
	books           usecase.BookUsecase
	logger          *logrus.Logger
	maxRawTextBytes int
}

func NewHandler(
	ingest usecase.IngestUsecase,
	lookup usecase.LookupUsecase,
	audits usecase.AuditUsecase,
	books usecase.BookUsecase,
	logger *logrus.Logger,
	maxRawTextBytes int,
) *Handler {
	if maxRawTextBytes <= 0 {
		maxRawTextBytes = DefaultMaxRawTextBytes
	}
	return &Handler{
		ingest:          ingest,
		lookup:          lookup,
		audits:          audits,
		books:           books,
		logger:          logger,
		maxRawTextBytes: maxRawTextBytes,
	}
}

// Routes registers the /api/v1 endpoints on r.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/ingest/preview", h.handlePreview)
	r.Post("/ingest/commit", h.handleCommit)
	r.Get("/ingest/audits", h.handleListAudits)
	r.Get("/hebrew/words/search", h.handleSearchWords)
	r.Get("/hebrew/segments", h.handleSegments)
	r.Post("/books", h.handleCreateBook)
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// decode reads a JSON body. The body is capped relative to the rawText
// limit so oversized submissions fail before being buffered.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, int64(2*h.maxRawTextBytes+64<<10))
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return entity.ValidationError("request body exceeds %d bytes", tooLarge.Limit)
		}
		return entity.ValidationError("invalid request body: %v", err)
	}
	return nil
}

func (h *Handler) checkRawText(raw string) error {
	if len(raw) > h.maxRawTextBytes {
		return entity.ValidationError("rawText exceeds %d bytes", h.maxRawTextBytes)
	}
	return nil
}

// fail writes the mapped error and logs server-side failures.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status, body := mapping.ToHTTPError(err, fallback)
	if status >= http.StatusInternalServerError {
		h.logger.WithError(err).WithField("path", r.URL.Path).Error(fallback)
	}
	respondJSON(w, status, body)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, code, details string) {
	respondJSON(w, status, mapping.ErrorBody{Error: code, Details: details})
}

func requiredQuery(r *http.Request, name string) (string, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return "", entity.ValidationError("query parameter %q is required", name)
	}
	return v, nil
}
