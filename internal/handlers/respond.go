package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/BerylCAtieno/eia-document-api/internal/utils"
)

// maxJSONBody bounds JSON request bodies; page images arrive inline.
const maxJSONBody = 64 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type functionErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code"`
}

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

// respondError writes a REST error using the AppError status code.
func respondError(w http.ResponseWriter, logger *utils.Logger, err error) {
	appErr := utils.AsAppError(err)
	logError(logger, appErr)

	respondJSON(w, logger, appErr.StatusCode, errorResponse{
		Error: appErr.Message,
		Code:  appErr.Code,
	})
}

// respondFunctionError writes the error shape of the function endpoints:
// always HTTP 500, with the kind in the code field.
func respondFunctionError(w http.ResponseWriter, logger *utils.Logger, err error) {
	appErr := utils.AsAppError(err)
	logError(logger, appErr)

	respondJSON(w, logger, http.StatusInternalServerError, functionErrorResponse{
		Success: false,
		Error:   appErr.Message,
		Code:    appErr.Code,
	})
}

func logError(logger *utils.Logger, appErr *utils.AppError) {
	args := []any{"status", appErr.StatusCode, "code", appErr.Code, "error", appErr.Message}
	if appErr.Err != nil {
		args = append(args, "cause", appErr.Err.Error())
	}

	if appErr.StatusCode >= http.StatusInternalServerError {
		logger.Error("Request error", args...)
	} else {
		logger.Warn("Request error", args...)
	}
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return utils.NewBadRequestError("Request body too large")
		case errors.Is(err, io.EOF):
			return utils.NewBadRequestError("Request body is required")
		default:
			return utils.NewBadRequestError("Invalid JSON body")
		}
	}
	return nil
}
