package bridge

import (
	"context"
	"crypto/x509"
	"errors"
	"io"
	"mime"
	"net"
	"net/http"
	"strconv"
	"sync"
)

// httpExchange adapts a net/http request/response pair to the Exchange
// contract. The status code is recorded and committed on the first body
// write or flush, so Finalize can set the status before the headers even
// though net/http freezes headers at WriteHeader.
type httpExchange struct {
	w           http.ResponseWriter
	r           *http.Request
	contextPath string

	status     int
	commitOnce sync.Once

	sink *httpSink

	mu sync.Mutex
	lc *httpLifecycle
}

func newHTTPExchange(w http.ResponseWriter, r *http.Request, contextPath string) *httpExchange {
	ex := &httpExchange{w: w, r: r, contextPath: contextPath}
	ex.sink = &httpSink{ex: ex}
	return ex
}

func (ex *httpExchange) ServerPort() int {
	if _, port, err := net.SplitHostPort(ex.r.Host); err == nil {
		if n, perr := strconv.Atoi(port); perr == nil {
			return n
		}
	}
	if ex.r.TLS != nil {
		return 443
	}
	return 80
}

func (ex *httpExchange) ServerName() string {
	if host, _, err := net.SplitHostPort(ex.r.Host); err == nil {
		return host
	}
	return ex.r.Host
}

func (ex *httpExchange) RemoteAddr() string {
	if host, _, err := net.SplitHostPort(ex.r.RemoteAddr); err == nil {
		return host
	}
	return ex.r.RemoteAddr
}

func (ex *httpExchange) RequestURI() string { return ex.r.URL.Path }

func (ex *httpExchange) QueryString() string { return ex.r.URL.RawQuery }

func (ex *httpExchange) Scheme() string {
	if ex.r.TLS != nil {
		return "https"
	}
	return "http"
}

func (ex *httpExchange) Method() string { return ex.r.Method }

func (ex *httpExchange) Header() http.Header { return ex.r.Header }

func (ex *httpExchange) ContentType() string { return ex.r.Header.Get("Content-Type") }

func (ex *httpExchange) ContentLength() int64 { return ex.r.ContentLength }

func (ex *httpExchange) CharacterEncoding() string {
	ct := ex.ContentType()
	if ct == "" {
		return ""
	}
	if _, params, err := mime.ParseMediaType(ct); err == nil {
		return params["charset"]
	}
	return ""
}

func (ex *httpExchange) Certificates() []*x509.Certificate {
	if ex.r.TLS == nil {
		return nil
	}
	return ex.r.TLS.PeerCertificates
}

func (ex *httpExchange) ContextPath() string { return ex.contextPath }

func (ex *httpExchange) Body() io.ReadCloser { return ex.r.Body }

func (ex *httpExchange) SetStatus(code int) { ex.status = code }

func (ex *httpExchange) SetHeader(name, value string) { ex.w.Header().Set(name, value) }

func (ex *httpExchange) AddHeader(name, value string) { ex.w.Header().Add(name, value) }

func (ex *httpExchange) SetContentType(value string) {
	ex.w.Header().Set("Content-Type", value)
}

func (ex *httpExchange) Sink() Sink { return ex.sink }

func (ex *httpExchange) Suspend() Lifecycle {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	if ex.lc == nil {
		ex.lc = &httpLifecycle{ex: ex, done: make(chan struct{})}
		go ex.lc.watch(ex.r.Context())
	}
	return ex.lc
}

// wait blocks until the exchange is explicitly completed. Returns
// immediately when the exchange was never suspended.
func (ex *httpExchange) wait() {
	ex.mu.Lock()
	lc := ex.lc
	ex.mu.Unlock()
	if lc == nil {
		return
	}
	<-lc.done
}

// commit sends the status line, freezing the headers. Idempotent.
func (ex *httpExchange) commit() {
	ex.commitOnce.Do(func() {
		if ex.status != 0 {
			ex.w.WriteHeader(ex.status)
		}
	})
}

// httpSink commits the exchange on first use so status and headers land
// before any body bytes.
type httpSink struct {
	ex *httpExchange
}

func (s *httpSink) Write(p []byte) (int, error) {
	s.ex.commit()
	return s.ex.w.Write(p)
}

func (s *httpSink) Flush() error {
	s.ex.commit()
	if f, ok := s.ex.w.(http.Flusher); ok {
		f.Flush()
	}
	return nil
}

// httpLifecycle implements suspend/complete over a net/http handler: the
// adapter parks on done until Complete, and a watcher translates request
// context cancellation into Error or Timeout events.
type httpLifecycle struct {
	ex   *httpExchange
	done chan struct{}
	once sync.Once

	mu        sync.Mutex
	observers []func(Event)
	delivered []Event
}

func (lc *httpLifecycle) Complete() {
	lc.once.Do(func() {
		lc.ex.commit()
		lc.notify(Event{Kind: EventComplete})
		close(lc.done)
	})
}

func (lc *httpLifecycle) OnEvent(fn func(Event)) {
	lc.mu.Lock()
	past := append([]Event(nil), lc.delivered...)
	lc.observers = append(lc.observers, fn)
	lc.mu.Unlock()

	// Replay events that raced ahead of registration.
	for _, e := range past {
		fn(e)
	}
}

func (lc *httpLifecycle) notify(e Event) {
	lc.mu.Lock()
	lc.delivered = append(lc.delivered, e)
	observers := append(make([]func(Event), 0, len(lc.observers)), lc.observers...)
	lc.mu.Unlock()

	for _, fn := range observers {
		fn(e)
	}
}

func (lc *httpLifecycle) watch(ctx context.Context) {
	select {
	case <-lc.done:
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			lc.notify(Event{Kind: EventTimeout, Err: ctx.Err()})
		} else {
			lc.notify(Event{Kind: EventError, Err: ctx.Err()})
		}
	}
}
