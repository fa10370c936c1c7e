package api

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/jakechorley/gift-registry/pkg/errors"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// SuccessResponse acknowledges a write
type SuccessResponse struct {
	Success bool `json:"success"`
}

func writeJSON(w http.ResponseWriter, status int, body any, logger *zap.Logger) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error("Failed to encode JSON response", zap.Error(err))
	}
}

// writeError maps a coded error to its status; uncoded errors become 500
func writeError(w http.ResponseWriter, err error, logger *zap.Logger) {
	code := errors.CodeOf(err)
	status := code.HTTPStatus()

	message := errors.MessageOf(err)
	if status >= http.StatusInternalServerError {
		logger.Error("Request failed", zap.String("code", string(code)), zap.Error(err))
		var coded *errors.Error
		if !errors.As(err, &coded) {
			message = "internal server error"
		}
	}

	writeJSON(w, status, ErrorResponse{Error: message, Code: string(code)}, logger)
}
