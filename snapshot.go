package bridge

import (
	"crypto/x509"
	"io"
	"strings"
)

// Request is the immutable snapshot of an inbound exchange, built once per
// request and handed to the handler. The body stream is a live handle owned
// by the exchange; everything else is a plain copy with no interpretation.
type Request struct {
	ServerPort int
	ServerName string
	RemoteAddr string
	URI        string
	// QueryString is empty when the request carried none.
	QueryString string
	// Scheme is "http", "https", or "other".
	Scheme string
	// Method is the lower-cased request method, e.g. "get".
	Method string
	// Headers holds one value per lower-cased header name; repeated headers
	// are joined with a comma in their original order.
	Headers map[string]string
	// ContentType is empty when the request did not declare one.
	ContentType string
	// ContentLength is -1 when the container reports an unknown length.
	ContentLength int64
	// CharacterEncoding is the declared charset, empty when absent.
	CharacterEncoding string
	// ClientCert is the first certificate of the peer chain, when present.
	ClientCert *x509.Certificate
	// Body is the raw request body stream, unread by the bridge.
	Body io.ReadCloser

	// Passthrough fields for callers that need the live exchange.
	Exchange    Exchange
	ContextPath string
}

// NewRequest reads the exchange's request accessors once and returns the
// snapshot. Values are copied faithfully, not validated, and the body
// stream is not read.
func NewRequest(ex Exchange) *Request {
	raw := ex.Header()
	headers := make(map[string]string, len(raw))
	for name, values := range raw {
		headers[strings.ToLower(name)] = strings.Join(values, ",")
	}

	length := ex.ContentLength()
	if length < 0 {
		length = -1 // many containers use any negative value as "unknown"
	}

	req := &Request{
		ServerPort:        ex.ServerPort(),
		ServerName:        ex.ServerName(),
		RemoteAddr:        ex.RemoteAddr(),
		URI:               ex.RequestURI(),
		QueryString:       ex.QueryString(),
		Scheme:            normalizeScheme(ex.Scheme()),
		Method:            strings.ToLower(ex.Method()),
		Headers:           headers,
		ContentType:       ex.ContentType(),
		ContentLength:     length,
		CharacterEncoding: ex.CharacterEncoding(),
		Body:              ex.Body(),
		Exchange:          ex,
		ContextPath:       ex.ContextPath(),
	}
	if certs := ex.Certificates(); len(certs) > 0 {
		req.ClientCert = certs[0]
	}
	return req
}

func normalizeScheme(s string) string {
	switch strings.ToLower(s) {
	case "http":
		return "http"
	case "https":
		return "https"
	default:
		return "other"
	}
}
