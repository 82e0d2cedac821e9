// Package httpjson holds the JSON response helpers shared by the API handlers.
package httpjson

import (
	"encoding/json"
	"io"
	"net/http"
)

// maxBodyBytes caps request bodies decoded by Decode.
const maxBodyBytes = 1 << 20

// ErrorBody is the error shape the dashboards read.
type ErrorBody struct {
	Detail string `json:"detail"`
}

// MessageBody is the acknowledgement shape for mutating endpoints.
type MessageBody struct {
	Message string `json:"message"`
	ID      int64  `json:"id,omitempty"`
}

// Write encodes payload with the given status.
func Write(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// Error writes {"detail": detail} with the given status.
func Error(w http.ResponseWriter, status int, detail string) {
	Write(w, status, ErrorBody{Detail: detail})
}

// Message writes {"message": msg}.
func Message(w http.ResponseWriter, status int, msg string) {
	Write(w, status, MessageBody{Message: msg})
}

// Decode reads a size-limited JSON body into dst.
func Decode(r *http.Request, dst any) error {
	return json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
}
