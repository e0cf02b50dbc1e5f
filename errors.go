// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at http://mozilla.org/MPL/2.0/.

package sensordb

import (
	"fmt"
	"net/http"
)

// Error is a known sensordb error with an associated HTTP status code.
type Error interface {
	Error() string
	String() string
	StatusCode() int
}

type sensorError struct {
	OK     bool        `json:"ok"`
	Status int         `json:"status"`
	Err    string      `json:"error"`
	Reason interface{} `json:"reason,omitempty"`
}

func newErr(status int, message string) Error {
	return &sensorError{false, status, message, nil}
}

// StatusCode used by the http transport.
func (e *sensorError) StatusCode() int {
	return e.Status
}

// Error returns the error string.
func (e *sensorError) Error() string {
	return e.Err
}

// String implements the Stringer interface for Error.
func (e *sensorError) String() string {
	return fmt.Sprintf("sensordb: %s", e.Err)
}

var (
	// ErrUnknown is returned when an underlying standard Go error reaches the user.
	ErrUnknown = newErr(http.StatusInternalServerError, "sensordb: unknown error")
	// ErrInvalidDir is returned when the data directory provided cannot be created or read, or is not a directory.
	ErrInvalidDir = newErr(http.StatusInternalServerError, "sensordb: invalid data directory")

	// ErrBadRequest is returned when invalid parameters are received.
	ErrBadRequest = newErr(http.StatusBadRequest, "sensordb: bad request")
	// ErrContentLengthRequired is returned when a POST is made without a Content-Length header.
	ErrContentLengthRequired = newErr(http.StatusLengthRequired, "sensordb: content-length required")
	// ErrPayloadTooLarge is returned when a POST body exceeds the configured limit.
	ErrPayloadTooLarge = newErr(http.StatusRequestEntityTooLarge, "sensordb: payload too large")
	// ErrNotFound is returned when addressing a sensor key, index or field with no data.
	ErrNotFound = newErr(http.StatusNotFound, "sensordb: not found")
)
