package bridge

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Sentinel errors for the bridge pipeline.
var (
	// ErrNilResponse is returned by Finalize when given no response
	// descriptor.
	ErrNilResponse = errors.New("nil response")
	// ErrNoResponse is returned by Serve when the handler produced neither
	// a response nor an error. Distinct from a response with a nil body,
	// which is valid and writes nothing.
	ErrNoResponse = errors.New("handler returned no response")
)

// UnsupportedBodyError reports a response body whose shape matches no known
// variant. The offending value is retained for diagnostics.
type UnsupportedBodyError struct {
	Body any
}

func (e *UnsupportedBodyError) Error() string {
	return fmt.Sprintf("unsupported body shape %T", e.Body)
}

// WriteError reports an I/O failure while writing a body to the sink.
type WriteError struct {
	Err error
}

func (e *WriteError) Error() string { return "write body: " + e.Err.Error() }

func (e *WriteError) Unwrap() error { return e.Err }

// StatusCoder is implemented by errors that carry an HTTP status code.
type StatusCoder interface {
	StatusCode() int
}

// HTTPError is an error with an HTTP status code.
type HTTPError struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}

// Error returns the error message.
func (e *HTTPError) Error() string { return e.Message }

// StatusCode returns the HTTP status code.
func (e *HTTPError) StatusCode() int { return e.Status }

// Error returns an error with the given HTTP status code and message.
func Error(status int, message string) error {
	return &HTTPError{Status: status, Message: message}
}

// Errorf returns a formatted error with the given HTTP status code.
func Errorf(status int, format string, args ...any) error {
	return &HTTPError{Status: status, Message: fmt.Sprintf(format, args...)}
}

// ErrorStatus extracts the HTTP status code from an error. Returns
// http.StatusInternalServerError if the error does not implement
// StatusCoder — which covers the whole bridge taxonomy: a nil response, an
// unsupported body shape, and a write failure are all server faults.
func ErrorStatus(err error) int {
	var sc StatusCoder
	if errors.As(err, &sc) {
		return sc.StatusCode()
	}
	return http.StatusInternalServerError
}

// ProblemDetail is an RFC 9457 problem details response.
//
//nolint:errname // RFC 9457 standard name
type ProblemDetail struct {
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
}

// Error returns the detail message (or title if detail is empty).
func (p *ProblemDetail) Error() string {
	if p.Detail != "" {
		return p.Detail
	}
	return p.Title
}

// StatusCode returns the HTTP status code.
func (p *ProblemDetail) StatusCode() int { return p.Status }

// writeErrorResponse renders an error from the bridge pipeline as an
// RFC 9457 problem details response on the container error path.
func writeErrorResponse(w http.ResponseWriter, err error) {
	status := ErrorStatus(err)

	var pd *ProblemDetail
	if !errors.As(err, &pd) {
		pd = &ProblemDetail{
			Type:   "about:blank",
			Title:  http.StatusText(status),
			Status: status,
			Detail: err.Error(),
		}
	}

	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(pd.Status)
	//nolint:errcheck,errchkjson,gosec // best-effort after WriteHeader
	json.NewEncoder(w).Encode(pd)
}
