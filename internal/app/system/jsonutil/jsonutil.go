// Package jsonutil writes the JSON responses of the viewer API.
//
// Every list endpoint answers with a Data envelope; upstream failures are not
// errors at this boundary and travel as a Notice next to an empty page.
package jsonutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

// MaxBodyBytes caps request bodies read by Decode.
const MaxBodyBytes = 64 << 10

// Envelope is the shape of every successful API response.
type Envelope struct {
	Data   any    `json:"data"`
	Notice string `json:"notice,omitempty"`
}

// JSON writes v with the given status code.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if v != nil {
		_ = json.NewEncoder(w).Encode(v)
	}
}

// Data writes a 200 response wrapping v in an Envelope.
func Data(w http.ResponseWriter, v any) {
	JSON(w, http.StatusOK, Envelope{Data: v})
}

// DataWithNotice writes a 200 Envelope carrying a viewer-facing notice.
// An empty notice is omitted.
func DataWithNotice(w http.ResponseWriter, v any, notice string) {
	JSON(w, http.StatusOK, Envelope{Data: v, Notice: notice})
}

// Created writes a 201 Envelope.
func Created(w http.ResponseWriter, v any) {
	JSON(w, http.StatusCreated, Envelope{Data: v})
}

// NoContent writes a 204 with no body.
func NoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// Error writes {"error": message} with the given status.
func Error(w http.ResponseWriter, status int, message string) {
	JSON(w, status, map[string]string{"error": message})
}

// BadRequest writes a 400 error.
func BadRequest(w http.ResponseWriter, message string) {
	Error(w, http.StatusBadRequest, message)
}

// NotFound writes a 404 error.
func NotFound(w http.ResponseWriter, message string) {
	Error(w, http.StatusNotFound, message)
}

// Conflict writes a 409 error.
func Conflict(w http.ResponseWriter, message string) {
	Error(w, http.StatusConflict, message)
}

// InternalError writes a 500 error. Log the cause separately; message is
// shown to the viewer.
func InternalError(w http.ResponseWriter, message string) {
	Error(w, http.StatusInternalServerError, message)
}

// ValidationError writes a 400 with per-field messages.
func ValidationError(w http.ResponseWriter, fields map[string]string) {
	JSON(w, http.StatusBadRequest, map[string]any{
		"error":  "validation failed",
		"fields": fields,
	})
}

// ErrBodyTooLarge is returned by Decode when the body exceeds MaxBodyBytes.
var ErrBodyTooLarge = fmt.Errorf("request body exceeds %d bytes", MaxBodyBytes)

// Decode reads one JSON value from the request body into v. Unknown fields,
// trailing data and bodies over MaxBodyBytes are rejected.
func Decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			return ErrBodyTooLarge
		case errors.Is(err, io.EOF):
			return errors.New("request body is empty")
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	if dec.More() {
		return errors.New("request body must contain a single JSON value")
	}
	return nil
}
