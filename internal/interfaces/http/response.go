// Package http is the HTTP transport: router, middleware and handlers over
// the application services.
package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	apperrors "github.com/lexicon-health/lexicon/pkg/errors"
	"github.com/lexicon-health/lexicon/pkg/types/common"
)

// writeJSON writes data wrapped in the standard success envelope.
func writeJSON[T any](w http.ResponseWriter, r *http.Request, status int, data T) {
	resp := common.NewSuccessResponse(data)
	resp.RequestID = middleware.GetReqID(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// writeError maps err onto an HTTP status via its error code and writes the
// failure envelope.  Foreign errors surface as a generic internal error so no
// incidental detail leaks to callers.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)

	message := "internal server error"
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		message = ae.Message
	}

	resp := common.NewErrorResponse(string(code), message)
	resp.RequestID = middleware.GetReqID(r.Context())

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code.HTTPStatus())
	_ = json.NewEncoder(w).Encode(resp)
}

// writeBadRequest is the shorthand for malformed request bodies/params.
func writeBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeError(w, r, apperrors.New(apperrors.ErrCodeBadRequest, message))
}
