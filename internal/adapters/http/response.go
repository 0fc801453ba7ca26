package http

import (
	"encoding/json"
	"net/http"

	"github.com/teamboard/popcache/internal/application"
)

// The service speaks three response shapes: a listing page, an acknowledgement
// for the asynchronous internal hooks, and an error. Everything carries a
// status discriminator so callers can branch without inspecting HTTP codes.

type listingEnvelope struct {
	Status string                   `json:"status"`
	Data   application.CategoryPage `json:"data"`
}

type ackEnvelope struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

type errorEnvelope struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeListing(w http.ResponseWriter, page application.CategoryPage) {
	writeJSON(w, http.StatusOK, listingEnvelope{Status: "success", Data: page})
}

// writeAck acknowledges an internal hook. The mutation it triggered is
// best-effort and may still be in flight, hence 202 across the board.
func writeAck(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusAccepted, ackEnvelope{Status: "success", Message: message})
}

func writeProbe(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusOK, ackEnvelope{Status: "success", Message: message})
}

func writeError(w http.ResponseWriter, statusCode int, code, message string) {
	writeJSON(w, statusCode, errorEnvelope{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}
