package bridge

import "net/http"

// Serve runs one exchange through the bridge: build the request snapshot,
// invoke the handler, finalize the response. Handler errors and finalize
// errors propagate to the caller, which owns error rendering.
func Serve(ex Exchange, h HandlerFunc) error {
	req := NewRequest(ex)
	resp, err := h(req)
	if err != nil {
		return err
	}
	if resp == nil {
		return ErrNoResponse
	}
	return Finalize(ex, resp)
}

// ErrorWriter renders a pipeline error on the container error path.
type ErrorWriter func(w http.ResponseWriter, r *http.Request, err error)

// Option configures the net/http Handler glue.
type Option func(*handlerConfig)

type handlerConfig struct {
	contextPath string
	errorWriter ErrorWriter
}

// WithContextPath sets the context path reported to handlers through the
// request snapshot. net/http has no mount-point concept of its own, so this
// is a pure passthrough for callers that expect one.
func WithContextPath(p string) Option {
	return func(c *handlerConfig) {
		c.contextPath = p
	}
}

// WithErrorWriter replaces the default RFC 9457 problem-details error
// rendering.
func WithErrorWriter(fn ErrorWriter) Option {
	return func(c *handlerConfig) {
		c.errorWriter = fn
	}
}

// Handler adapts a bridge HandlerFunc to a net/http handler. Errors from
// the pipeline are rendered on the container error path. When the response
// body is a *Stream the handler blocks until the exchange is explicitly
// completed — net/http forbids writes after the handler returns — while the
// drain itself runs on the controller's goroutine.
func Handler(h HandlerFunc, opts ...Option) http.Handler {
	cfg := handlerConfig{
		errorWriter: func(w http.ResponseWriter, _ *http.Request, err error) {
			writeErrorResponse(w, err)
		},
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ex := newHTTPExchange(w, r, cfg.contextPath)
		if err := Serve(ex, h); err != nil {
			cfg.errorWriter(w, r, err)
			return
		}
		ex.wait()
	})
}
