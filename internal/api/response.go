package api

import (
	"encoding/json"
	"net/http"
)

// Response statuses
const (
	StatusOK       = "OK"
	StatusNotFound = "NOT_FOUND"
	StatusError    = "ERROR"
)

// Envelope wraps every JSON body returned by the domain endpoints
type Envelope struct {
	Result  interface{} `json:"result"`
	Status  string      `json:"status"`
	Message string      `json:"message,omitempty"`
}

func writeJSON(w http.ResponseWriter, code int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(body)
}

func writeResult(w http.ResponseWriter, code int, result interface{}) {
	writeJSON(w, code, Envelope{Result: result, Status: StatusOK})
}

func writeNotFound(w http.ResponseWriter) {
	writeJSON(w, http.StatusNotFound, Envelope{Result: struct{}{}, Status: StatusNotFound})
}

func writeError(w http.ResponseWriter, code int, message string) {
	writeJSON(w, code, Envelope{Result: struct{}{}, Status: StatusError, Message: message})
}
