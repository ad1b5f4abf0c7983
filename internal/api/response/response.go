package response

import (
	"encoding/json"
	"net/http"
)

// ErrorBody is the JSON body of every error response. Code carries the
// registry's numeric error code when the error came from a registry call.
type ErrorBody struct {
	Error string `json:"error"`
	Code  uint32 `json:"code,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, ErrorBody{Error: message})
}

// WriteErrorCode writes an error body that includes a registry error code.
func WriteErrorCode(w http.ResponseWriter, status int, message string, code uint32) {
	WriteJSON(w, status, ErrorBody{Error: message, Code: code})
}
