package mapping

import (
	"errors"
	"net/http"

	"github.com/eslsoft/hebcorpus/internal/entity"
)

// Machine-readable error codes of the JSON boundary.
const (
	CodeInvalidRequest  = "invalid_request"
	CodeStaleAnalysis   = "stale_analysis"
	CodeInvalidOverride = "invalid_override"
	CodeNotFound        = "not_found"
	CodeConflict        = "conflict"
	CodePreviewFailed   = "preview_failed"
	CodeIngestFailed    = "ingest_failed"
	CodeUnauthorized    = "unauthorized"
	CodeForbidden       = "forbidden"
)

// ErrorBody is the JSON shape of every failed response.
type ErrorBody struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// ToHTTPError maps err to a status code and body. fallback is the code used
// for storage and unclassified failures.
func ToHTTPError(err error, fallback string) (int, ErrorBody) {
	body := ErrorBody{Details: err.Error()}
	switch entity.KindOf(err) {
	case entity.KindValidation:
		body.Error = CodeInvalidRequest
		return http.StatusBadRequest, body
	case entity.KindStaleAnalysis:
		body.Error = CodeStaleAnalysis
		return http.StatusConflict, body
	case entity.KindInvalidOverride:
		body.Error = CodeInvalidOverride
		return http.StatusUnprocessableEntity, body
	case entity.KindNotFound:
		body.Error = CodeNotFound
		return http.StatusNotFound, body
	case entity.KindConflict:
		body.Error = CodeConflict
		return http.StatusConflict, body
	}

	body.Error = fallback
	// storage internals are logged, not echoed
	var ie *entity.IngestError
	if errors.As(err, &ie) {
		body.Details = ie.Message
	} else {
		body.Details = "internal error"
	}
	return http.StatusInternalServerError, body
}
