package bridge

import (
	"fmt"
	"net/http"
)

// Response is the descriptor a handler returns. It is consumed exactly once
// by Finalize.
type Response struct {
	// Status is the response status code. Zero leaves the container's
	// default in place.
	Status int
	// Headers maps header names to either a string (set, overwriting any
	// existing value) or a []string (add one header line per element).
	Headers map[string]any
	// Body is one of the variants accepted by WriteBody, a *Stream for
	// asynchronous completion, or nil for no body.
	Body any
}

// Finalize applies resp to the exchange: status first, then headers, then
// the body. A *Stream body is handed to the async completion controller and
// the exchange is left open for it; every other variant is written on the
// calling goroutine and the output is flushed, at which point the response
// is fully sent. Write failures propagate to the caller for the container's
// error path.
func Finalize(ex Exchange, resp *Response) error {
	if resp == nil {
		return ErrNilResponse
	}

	if resp.Status != 0 {
		ex.SetStatus(resp.Status)
	}

	for name, value := range resp.Headers {
		contentType := http.CanonicalHeaderKey(name) == "Content-Type"
		switch v := value.(type) {
		case string:
			ex.SetHeader(name, v)
			if contentType {
				ex.SetContentType(v)
			}
		case []string:
			for _, el := range v {
				ex.AddHeader(name, el)
			}
			if contentType && len(v) > 0 {
				ex.SetContentType(v[0])
			}
		default:
			return fmt.Errorf("header %q: unsupported value type %T", name, value)
		}
	}

	if s, ok := resp.Body.(*Stream); ok {
		startAsync(ex, s)
		return nil
	}

	if err := WriteBody(resp.Body, ex.Sink()); err != nil {
		return err
	}
	if err := ex.Sink().Flush(); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}
