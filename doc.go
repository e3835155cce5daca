// Package bridge connects data-oriented HTTP handlers to container-managed
// exchanges. A handler consumes an immutable Request snapshot and returns a
// Response descriptor — plain data — and the bridge owns the translation to
// the container's imperative request/response objects:
//
//	func hello(req *bridge.Request) (*bridge.Response, error) {
//	    return &bridge.Response{
//	        Status:  http.StatusOK,
//	        Headers: map[string]any{"Content-Type": "text/plain"},
//	        Body:    "hello",
//	    }, nil
//	}
//
//	mux.Handle("GET /hello", bridge.Handler(hello))
//
// The response body is polymorphic: a string or []byte, a finite []any
// sequence, an io.Reader, a File path, a WriterFunc callback, or a *Stream
// whose chunks arrive over time. Synchronous bodies are written on the
// calling goroutine and the exchange is flushed once they are sent.
// A *Stream body suspends the exchange and a background controller drains
// the channel in production order, completing the exchange exactly once
// whether the stream ends, a write fails, or the container reports an error
// or timeout.
//
// Containers other than net/http can plug in by implementing the Exchange
// interface; Handler ships the net/http implementation.
//
// Middleware uses the standard func(http.Handler) http.Handler signature,
// so the entire Go middleware ecosystem works natively.
package bridge
