package httputil

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Error is an error that knows the HTTP status it should be reported with.
// Errors derived with With keep their parent's identity for errors.Is.
type Error struct {
	Status  int
	Message string
	kind    *Error
}

var ErrBadRequest = NewError(http.StatusBadRequest, "Bad request")

func NewError(status int, message string) *Error {
	e := &Error{Status: status, Message: message}
	e.kind = e
	return e
}

// With returns an error of the same kind and status carrying a new message.
func (e *Error) With(message string) *Error {
	return &Error{Status: e.Status, Message: message, kind: e.kind}
}

// Withf is With with fmt.Sprintf formatting.
func (e *Error) Withf(format string, args ...any) *Error {
	return e.With(fmt.Sprintf(format, args...))
}

func (e *Error) Error() string { return e.Message }

func (e *Error) StatusCode() int { return e.Status }

func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.kind == e.kind
}

// StatusFor maps err to the status it should be reported with.
func StatusFor(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.Status
	}
	return http.StatusInternalServerError
}

// WriteJSON writes v as a JSON response body with the given status.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError writes {"detail": message}.
func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"detail": message})
}

// WriteErr reports err using its own status and message when it carries one,
// and as a 500 otherwise.
func WriteErr(w http.ResponseWriter, err error) {
	var he *Error
	if errors.As(err, &he) {
		WriteError(w, he.Status, he.Message)
		return
	}
	WriteError(w, http.StatusInternalServerError, "Internal server error: "+err.Error())
}

// DecodeJSON reads the request body into v. An empty body leaves v untouched.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil || r.Body == http.NoBody {
		return nil
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return ErrBadRequest.With("Invalid JSON body: " + err.Error())
	}
	return nil
}

// AddServerTiming appends a Server-Timing entry for a named phase.
func AddServerTiming(w http.ResponseWriter, name string, d time.Duration) {
	ms := float64(d.Microseconds()) / 1000
	w.Header().Add("Server-Timing", fmt.Sprintf("%s;dur=%.1f", name, ms))
}
