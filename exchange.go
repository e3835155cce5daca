package bridge

import (
	"crypto/x509"
	"io"
	"net/http"
)

// Sink is an exchange's output channel. Bytes written become externally
// visible no later than the next Flush.
type Sink interface {
	io.Writer
	Flush() error
}

// EventKind identifies a container lifecycle notification.
type EventKind int

const (
	// EventError reports a container-side failure on the exchange.
	EventError EventKind = iota
	// EventTimeout reports that the container timed the exchange out.
	EventTimeout
	// EventComplete reports that the exchange has been finished.
	EventComplete
)

// Event is a lifecycle notification delivered to observers registered via
// Lifecycle.OnEvent.
type Event struct {
	Kind EventKind
	Err  error
}

// Lifecycle is the asynchronous side of a suspended exchange.
type Lifecycle interface {
	// Complete explicitly finishes the exchange. The async completion
	// controller guarantees at most one call per exchange.
	Complete()
	// OnEvent registers an observer for container-driven error, timeout,
	// and completion notifications. Events delivered before registration
	// are replayed to the new observer.
	OnEvent(fn func(Event))
}

// Exchange is the container-owned object for one in-flight request/response
// pair. The bridge never holds it as ambient state; every operation takes
// it explicitly.
type Exchange interface {
	// Request-side accessors, read once by NewRequest.
	ServerPort() int
	ServerName() string
	RemoteAddr() string
	RequestURI() string
	QueryString() string
	Scheme() string
	Method() string
	Header() http.Header
	ContentType() string
	// ContentLength is negative when the container does not know the length.
	ContentLength() int64
	CharacterEncoding() string
	Certificates() []*x509.Certificate
	ContextPath() string
	Body() io.ReadCloser

	// Response-side setters, applied by Finalize before any body bytes.
	SetStatus(code int)
	SetHeader(name, value string)
	AddHeader(name, value string)
	// SetContentType exists because some containers ignore a generic header
	// write for Content-Type.
	SetContentType(value string)
	Sink() Sink

	// Suspend takes the exchange off the synchronous completion path with
	// no timeout imposed; the producer controls its own lifetime. The
	// returned Lifecycle finishes the exchange later.
	Suspend() Lifecycle
}
