// Package bridgetest provides an in-memory fake exchange for testing code
// built on the bridge, with recorded response-side interactions and
// scriptable container lifecycle events.
package bridgetest

import (
	"bytes"
	"crypto/x509"
	"io"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/bjaus/bridge"
)

// RequestInfo holds the request-side values the fake exchange reports
// through its accessors.
type RequestInfo struct {
	Port          int
	Name          string
	Remote        string
	URI           string
	Query         string
	Scheme        string
	Method        string
	Header        http.Header
	ContentType   string
	ContentLength int64
	Charset       string
	Certs         []*x509.Certificate
	ContextPath   string
	Body          io.ReadCloser
}

// FakeExchange implements bridge.Exchange entirely in memory. All
// response-side interactions are recorded and safe to inspect from the test
// goroutine while a controller drains on another.
type FakeExchange struct {
	Req RequestInfo

	mu          sync.Mutex
	status      int
	headers     http.Header
	contentType string
	buf         bytes.Buffer
	writes      int
	flushes     int
	writeErr    error
	lc          *FakeLifecycle
}

// New returns a fake exchange with innocuous request defaults.
func New() *FakeExchange {
	return &FakeExchange{
		Req: RequestInfo{
			Port:          80,
			Name:          "example.test",
			Remote:        "192.0.2.1",
			URI:           "/",
			Scheme:        "http",
			Method:        "GET",
			Header:        http.Header{},
			ContentLength: -1,
		},
		headers: http.Header{},
	}
}

// Request-side accessors.

func (ex *FakeExchange) ServerPort() int                   { return ex.Req.Port }
func (ex *FakeExchange) ServerName() string                { return ex.Req.Name }
func (ex *FakeExchange) RemoteAddr() string                { return ex.Req.Remote }
func (ex *FakeExchange) RequestURI() string                { return ex.Req.URI }
func (ex *FakeExchange) QueryString() string               { return ex.Req.Query }
func (ex *FakeExchange) Scheme() string                    { return ex.Req.Scheme }
func (ex *FakeExchange) Method() string                    { return ex.Req.Method }
func (ex *FakeExchange) Header() http.Header               { return ex.Req.Header }
func (ex *FakeExchange) ContentType() string               { return ex.Req.ContentType }
func (ex *FakeExchange) ContentLength() int64              { return ex.Req.ContentLength }
func (ex *FakeExchange) CharacterEncoding() string         { return ex.Req.Charset }
func (ex *FakeExchange) Certificates() []*x509.Certificate { return ex.Req.Certs }
func (ex *FakeExchange) ContextPath() string               { return ex.Req.ContextPath }
func (ex *FakeExchange) Body() io.ReadCloser               { return ex.Req.Body }

// Response-side setters.

func (ex *FakeExchange) SetStatus(code int) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.status = code
}

func (ex *FakeExchange) SetHeader(name, value string) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.headers.Set(name, value)
}

func (ex *FakeExchange) AddHeader(name, value string) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.headers.Add(name, value)
}

func (ex *FakeExchange) SetContentType(value string) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.contentType = value
}

func (ex *FakeExchange) Sink() bridge.Sink { return &fakeSink{ex: ex} }

func (ex *FakeExchange) Suspend() bridge.Lifecycle {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.lc == nil {
		ex.lc = &FakeLifecycle{done: make(chan struct{})}
	}
	return ex.lc
}

// FailWrites makes every subsequent sink write fail with err.
func (ex *FakeExchange) FailWrites(err error) {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	ex.writeErr = err
}

// Recorded state.

// Status returns the last status code set, or zero.
func (ex *FakeExchange) Status() int {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.status
}

// ResponseHeader returns the recorded response headers.
func (ex *FakeExchange) ResponseHeader() http.Header {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.headers.Clone()
}

// ContentTypeSet returns the value passed to the dedicated content-type
// setter, or empty.
func (ex *FakeExchange) ContentTypeSet() string {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.contentType
}

// Written returns everything written to the sink so far.
func (ex *FakeExchange) Written() string {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.buf.String()
}

// Writes returns the number of successful sink writes.
func (ex *FakeExchange) Writes() int {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.writes
}

// Flushes returns the number of sink flushes.
func (ex *FakeExchange) Flushes() int {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.flushes
}

// Suspended reports whether the exchange was taken off the synchronous
// completion path.
func (ex *FakeExchange) Suspended() bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.lc != nil
}

// Completions returns the number of explicit completion calls. Zero when
// the exchange was never suspended.
func (ex *FakeExchange) Completions() int {
	ex.mu.Lock()
	lc := ex.lc
	ex.mu.Unlock()
	if lc == nil {
		return 0
	}
	return lc.completions()
}

// Fire delivers a container lifecycle event to registered observers, as the
// container would on error or timeout. The exchange must be suspended.
func (ex *FakeExchange) Fire(t testing.TB, e bridge.Event) {
	t.Helper()
	ex.mu.Lock()
	lc := ex.lc
	ex.mu.Unlock()
	if lc == nil {
		t.Fatal("bridgetest: Fire on an exchange that was never suspended")
	}
	lc.fire(e)
}

// AwaitCompletion blocks until the exchange is explicitly completed, or
// fails the test after two seconds.
func (ex *FakeExchange) AwaitCompletion(t testing.TB) {
	t.Helper()
	ex.mu.Lock()
	lc := ex.lc
	ex.mu.Unlock()
	if lc == nil {
		t.Fatal("bridgetest: AwaitCompletion on an exchange that was never suspended")
	}
	select {
	case <-lc.done:
	case <-time.After(2 * time.Second):
		t.Fatal("bridgetest: exchange was not completed")
	}
}

type fakeSink struct {
	ex *FakeExchange
}

func (s *fakeSink) Write(p []byte) (int, error) {
	s.ex.mu.Lock()
	defer s.ex.mu.Unlock()
	if s.ex.writeErr != nil {
		return 0, s.ex.writeErr
	}
	s.ex.writes++
	return s.ex.buf.Write(p)
}

func (s *fakeSink) Flush() error {
	s.ex.mu.Lock()
	defer s.ex.mu.Unlock()
	s.ex.flushes++
	return nil
}

// FakeLifecycle records completion calls and dispatches scripted events.
type FakeLifecycle struct {
	mu        sync.Mutex
	completed int
	observers []func(bridge.Event)
	done      chan struct{}
}

// Complete records an explicit completion. Only the first call closes the
// completion latch.
func (lc *FakeLifecycle) Complete() {
	lc.mu.Lock()
	lc.completed++
	first := lc.completed == 1
	lc.mu.Unlock()
	if first {
		close(lc.done)
	}
}

// OnEvent registers an observer.
func (lc *FakeLifecycle) OnEvent(fn func(bridge.Event)) {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	lc.observers = append(lc.observers, fn)
}

func (lc *FakeLifecycle) fire(e bridge.Event) {
	lc.mu.Lock()
	observers := append(make([]func(bridge.Event), 0, len(lc.observers)), lc.observers...)
	lc.mu.Unlock()
	for _, fn := range observers {
		fn(e)
	}
}

func (lc *FakeLifecycle) completions() int {
	lc.mu.Lock()
	defer lc.mu.Unlock()
	return lc.completed
}
