// Package handlers implements the HTTP handlers for the screening API.
package handlers

import (
	"encoding/json"
	stderrors "errors"
	"net/http"

	"github.com/molscreen/molscreen/pkg/errors"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// ErrorResponse is the standard error response body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeAppError maps application errors onto HTTP statuses.  Input and
// upstream errors keep their message so the page can display it verbatim;
// anything else is masked as an internal error.
func writeAppError(w http.ResponseWriter, err error) {
	var appErr *errors.AppError
	if !stderrors.As(err, &appErr) {
		writeJSON(w, http.StatusInternalServerError, ErrorResponse{
			Code:    string(errors.CodeInternal),
			Message: "internal server error",
		})
		return
	}

	status := errors.HTTPStatusForCode(appErr.Code)
	message := appErr.Message
	if appErr.Code == errors.CodeInternal {
		message = "internal server error"
	}
	writeJSON(w, status, ErrorResponse{
		Code:    string(appErr.Code),
		Message: message,
	})
}
