package web

// errors.go maps pipeline errors onto JSON error responses. The technical
// error is logged server-side with the request ID; the client receives a
// stable machine-readable code plus the message.

import (
	"errors"
	"net/http"

	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/core"
	"github.com/VortexWeb-Dev/mondus-spa-importer/internal/logging"
)

// requestError marks a malformed request; always answered with 400.
type requestError struct {
	msg string
}

func (e *requestError) Error() string { return e.msg }

var errHistoryDisabled = errors.New("run history is not configured")

// ErrorResponse is the JSON body for failed requests.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// respondError classifies err, logs it, and writes the JSON response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)

	logging.FromContext(r.Context()).Error("request failed",
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"code", code,
		"error", err,
	)

	respondJSON(w, status, ErrorResponse{Error: err.Error(), Code: code})
}

func classify(err error) (status int, code string) {
	var reqErr *requestError
	var missing *core.MissingRequiredFieldsError

	switch {
	case errors.As(err, &reqErr):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, core.ErrNoMapping):
		return http.StatusUnprocessableEntity, "no_mapping"
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, "missing_required_fields"
	case errors.Is(err, core.ErrImportInProgress):
		return http.StatusConflict, "import_in_progress"
	case errors.Is(err, core.ErrUnknownRun):
		return http.StatusNotFound, "unknown_run"
	case errors.Is(err, errHistoryDisabled):
		return http.StatusNotFound, "history_disabled"
	default:
		return http.StatusBadGateway, "upstream_error"
	}
}
