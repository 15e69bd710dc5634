// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package render writes the JSON response envelope shared by every route:
// {success, message, data} on success and {success, message, error} on
// failure.
package render

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"

	"inkwell/internal/apperr"
)

// Envelope is the body of every response.
type Envelope struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    any         `json:"data,omitempty"`
	Error   *ErrorField `json:"error,omitempty"`
}

// ErrorField carries the classified failure. Detail holds the low-level
// cause when there is one.
type ErrorField struct {
	Kind   apperr.Kind `json:"kind"`
	Detail string      `json:"detail,omitempty"`
}

// JSON writes a success envelope.
func JSON(w http.ResponseWriter, status int, message string, data any) {
	write(w, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes a failure envelope for err. Unclassified errors become a
// generic 500 without leaking their text; server-side failures are logged.
func Error(w http.ResponseWriter, r *http.Request, err error) {
	e, ok := apperr.As(err)
	if !ok {
		e = &apperr.Error{Kind: apperr.KindInternal, Message: "Something went wrong!", Err: err}
	}

	status := StatusFor(e.Kind)
	if status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"kind", e.Kind,
			"error", err,
		)
	}

	message := e.Message
	if message == "" {
		message = http.StatusText(status)
	}
	body := Envelope{Message: message, Error: &ErrorField{Kind: e.Kind}}
	if e.Kind != apperr.KindInternal {
		body.Error.Detail = e.Detail
	}
	write(w, status, body)
}

// Fail writes a failure envelope with an explicit status and kind, for
// conditions that arise outside the services (unknown route, rate limit).
func Fail(w http.ResponseWriter, status int, kind apperr.Kind, message string) {
	write(w, status, Envelope{Message: message, Error: &ErrorField{Kind: kind}})
}

// NotFound answers requests for unknown routes.
func NotFound(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusNotFound, Envelope{
		Message: "No path has been found",
		Data:    map[string]string{"path": r.URL.Path},
		Error:   &ErrorField{Kind: apperr.KindNotFound},
	})
}

// MethodNotAllowed answers known routes called with an unsupported method.
func MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	write(w, http.StatusMethodNotAllowed, Envelope{
		Message: fmt.Sprintf("Method %s is not allowed on %s", r.Method, r.URL.Path),
		Error:   &ErrorField{Kind: apperr.KindValidation},
	})
}

// StatusFor maps an error kind to its HTTP status code.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindUnauthenticated:
		return http.StatusUnauthorized
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindNotFound:
		return http.StatusNotFound
	case apperr.KindInvalidTransition, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	case apperr.KindRateLimited:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

func write(w http.ResponseWriter, status int, body Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		slog.Error("encode response", "error", err)
	}
}
