package http

import (
	"encoding/json"
	"net/http"

	"github.com/1anshu-stack/backend/internal/common"
	"github.com/1anshu-stack/backend/internal/logging"
)

// apiResponse is the envelope of every successful response.
type apiResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

type apiErrorResponse struct {
	StatusCode int    `json:"statusCode"`
	Code       string `json:"code"`
	Message    string `json:"message"`
	Success    bool   `json:"success"`
}

func writeJSON(w http.ResponseWriter, code int, data any, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(apiResponse{
		StatusCode: code,
		Data:       data,
		Message:    message,
		Success:    code < http.StatusBadRequest,
	})
}

func writeErr(w http.ResponseWriter, e *common.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(e.Status)
	_ = json.NewEncoder(w).Encode(apiErrorResponse{
		StatusCode: e.Status,
		Code:       e.Code,
		Message:    e.Message,
		Success:    false,
	})
}

// writeError classifies err and writes it. 5xx errors are logged with their
// cause; the cause never reaches the client.
func writeError(w http.ResponseWriter, r *http.Request, logger logging.Logger, err error) {
	e := common.AsAPIError(err)
	if e.Status >= http.StatusInternalServerError {
		logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
	} else {
		logger.Debug(r.Context(), "request rejected", "path", r.URL.Path, "code", e.Code, "error", err)
	}
	writeErr(w, e)
}
