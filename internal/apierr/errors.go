// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package apierr defines the error taxonomy shared by every component and
// the HTTP status/envelope it maps to.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for HTTP surfacing and logging.
type Kind int

const (
	// KindInvalidArgument is malformed HTTP input.
	KindInvalidArgument Kind = iota
	// KindNotFound is a referenced entity or file that does not exist.
	KindNotFound
	// KindConflict is a uniqueness violation.
	KindConflict
	// KindTransport is a child process or socket failure.
	KindTransport
	// KindUpstream is a JSON-RPC error reply from the child.
	KindUpstream
	// KindFatal is a startup-only failure.
	KindFatal
)

// Error is a taxonomy-classified error with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a classified error.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap classifies an underlying error.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

func InvalidArgument(format string, args ...interface{}) *Error {
	return New(KindInvalidArgument, fmt.Sprintf(format, args...))
}

func NotFound(format string, args ...interface{}) *Error {
	return New(KindNotFound, fmt.Sprintf(format, args...))
}

func Conflict(format string, args ...interface{}) *Error {
	return New(KindConflict, fmt.Sprintf(format, args...))
}

func Transport(err error) *Error {
	return Wrap(KindTransport, "transport error", err)
}

func Upstream(message string) *Error {
	return New(KindUpstream, message)
}

// HTTPStatus maps a Kind to the status code the HTTP layer should write.
func HTTPStatus(err error) int {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindInvalidArgument:
			return http.StatusBadRequest
		case KindNotFound:
			return http.StatusNotFound
		case KindConflict:
			return http.StatusConflict
		case KindTransport:
			return http.StatusBadGateway
		case KindUpstream:
			return http.StatusBadGateway
		case KindFatal:
			return http.StatusInternalServerError
		}
	}
	return http.StatusInternalServerError
}

// Code returns a short machine-readable code for the error envelope.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindInvalidArgument:
			return "INVALID_ARGUMENT"
		case KindNotFound:
			return "NOT_FOUND"
		case KindConflict:
			return "CONFLICT"
		case KindTransport:
			return "TRANSPORT"
		case KindUpstream:
			return "UPSTREAM"
		case KindFatal:
			return "FATAL"
		}
	}
	return "INTERNAL_ERROR"
}

// Message extracts the human-readable message, falling back to err.Error().
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Error()
	}
	return err.Error()
}
