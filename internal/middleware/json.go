package middleware

import (
	"encoding/json"
	"net/http"

	"github.com/pyhumph/jriit-cms-sub001/internal/model"
)

// errorEnvelope is the body every middleware rejection shares with the
// handlers' writeError.
func errorEnvelope(code string, message string) model.APIResponse {
	return model.APIResponse{
		Success: false,
		Error:   &model.APIError{Code: code, Message: message},
	}
}

func writeErrorJSON(w http.ResponseWriter, status int, code string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorEnvelope(code, message))
}
