// Package http serves the back office collections as a JSON API.
//
// This file implements the builder used for every JSON response, and the
// single mapping from domain errors to status codes and error envelopes.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"signaldesk/internal/core"
	applog "signaldesk/internal/log"
)

// Error codes carried in the error envelope.
const (
	CodeValidation    = "validation_failed"
	CodeNotFound      = "not_found"
	CodeDuplicateID   = "duplicate_id"
	CodeUnknownFilter = "unknown_filter"
	CodeUnknownField  = "unknown_field"
	CodeBadRequest    = "bad_request"
	CodeUnauthorized  = "unauthorized"
	CodeRateLimited   = "rate_limited"
	CodeUnavailable   = "unavailable"
	CodeInternal      = "internal_error"
)

var errBadRequest = errors.New("bad request")

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// JSONResponseBuilder provides a fluent API for JSON responses.
type JSONResponseBuilder struct {
	statusCode int
	headers    map[string]string
	body       any
}

func NewJSONResponse() *JSONResponseBuilder {
	return &JSONResponseBuilder{
		statusCode: http.StatusOK,
		headers:    make(map[string]string),
	}
}

func (b *JSONResponseBuilder) Status(code int) *JSONResponseBuilder {
	b.statusCode = code
	return b
}

func (b *JSONResponseBuilder) Header(name, value string) *JSONResponseBuilder {
	b.headers[name] = value
	return b
}

func (b *JSONResponseBuilder) Body(v any) *JSONResponseBuilder {
	b.body = v
	return b
}

// Write sends the response. A nil body writes no content.
func (b *JSONResponseBuilder) Write(w http.ResponseWriter) {
	for name, value := range b.headers {
		w.Header().Set(name, value)
	}
	if b.body == nil {
		w.WriteHeader(b.statusCode)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(b.statusCode)
	_ = json.NewEncoder(w).Encode(b.body)
}

// ErrorResponse builds an error envelope response.
func ErrorResponse(statusCode int, code, message string) *JSONResponseBuilder {
	return NewJSONResponse().
		Status(statusCode).
		Body(errorBody{Error: errorDetail{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	NewJSONResponse().Status(status).Body(v).Write(w)
}

// classify maps an error to its status code and envelope code.
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, core.ErrValidation):
		return http.StatusUnprocessableEntity, CodeValidation
	case errors.Is(err, core.ErrNotFound):
		return http.StatusNotFound, CodeNotFound
	case errors.Is(err, core.ErrDuplicateID):
		return http.StatusConflict, CodeDuplicateID
	case errors.Is(err, core.ErrUnknownFilter):
		return http.StatusBadRequest, CodeUnknownFilter
	case errors.Is(err, core.ErrUnknownField):
		return http.StatusBadRequest, CodeUnknownField
	case errors.Is(err, core.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest, CodeBadRequest
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, CodeUnavailable
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// writeError sends the envelope for err. Internal errors are logged and
// their message is not exposed.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, code := classify(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			applog.FieldError, err,
			applog.FieldMethod, r.Method,
			applog.FieldPath, r.URL.Path)
		msg = "internal server error"
	}
	if status == http.StatusUnauthorized {
		w.Header().Set("WWW-Authenticate", `Bearer realm="signaldesk"`)
	}
	ErrorResponse(status, code, msg).Write(w)
}
