package bridge_test

import (
	"crypto/x509"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/bridge"
	"github.com/bjaus/bridge/bridgetest"
)

func TestNewRequest_copies_fields(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	ex.Req.Port = 8443
	ex.Req.Name = "api.example.test"
	ex.Req.Remote = "203.0.113.9"
	ex.Req.URI = "/things/42"
	ex.Req.Query = "full=true"
	ex.Req.Scheme = "https"
	ex.Req.Method = "POST"
	ex.Req.ContentType = "application/json"
	ex.Req.ContentLength = 12
	ex.Req.Charset = "utf-8"
	ex.Req.ContextPath = "/app"

	req := bridge.NewRequest(ex)

	assert.Equal(t, 8443, req.ServerPort)
	assert.Equal(t, "api.example.test", req.ServerName)
	assert.Equal(t, "203.0.113.9", req.RemoteAddr)
	assert.Equal(t, "/things/42", req.URI)
	assert.Equal(t, "full=true", req.QueryString)
	assert.Equal(t, "https", req.Scheme)
	assert.Equal(t, "post", req.Method)
	assert.Equal(t, "application/json", req.ContentType)
	assert.Equal(t, int64(12), req.ContentLength)
	assert.Equal(t, "utf-8", req.CharacterEncoding)
	assert.Equal(t, "/app", req.ContextPath)
	assert.Same(t, bridge.Exchange(ex), req.Exchange)
}

func TestNewRequest_headers_joined_and_lowercased(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	ex.Req.Header.Add("Accept", "text/html")
	ex.Req.Header.Add("Accept", "application/json")
	ex.Req.Header.Set("X-Token", "abc")

	req := bridge.NewRequest(ex)

	assert.Equal(t, "text/html,application/json", req.Headers["accept"])
	assert.Equal(t, "abc", req.Headers["x-token"])
	_, upper := req.Headers["Accept"]
	assert.False(t, upper)
}

func TestNewRequest_negative_length_is_absent(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	ex.Req.ContentLength = -42 // containers report unknown as any negative

	req := bridge.NewRequest(ex)

	assert.Equal(t, int64(-1), req.ContentLength)
}

func TestNewRequest_unknown_scheme_is_other(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	ex.Req.Scheme = "spdy"

	req := bridge.NewRequest(ex)

	assert.Equal(t, "other", req.Scheme)
}

func TestNewRequest_first_certificate(t *testing.T) {
	t.Parallel()

	first := &x509.Certificate{}
	second := &x509.Certificate{}
	ex := bridgetest.New()
	ex.Req.Certs = []*x509.Certificate{first, second}

	req := bridge.NewRequest(ex)

	assert.Same(t, first, req.ClientCert)
}

func TestNewRequest_no_certificate(t *testing.T) {
	t.Parallel()

	req := bridge.NewRequest(bridgetest.New())

	assert.Nil(t, req.ClientCert)
}

func TestNewRequest_body_not_read(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	ex.Req.Body = io.NopCloser(strings.NewReader("payload"))

	req := bridge.NewRequest(ex)

	data, err := io.ReadAll(req.Body)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}
