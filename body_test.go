package bridge_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bjaus/bridge"
	"github.com/bjaus/bridge/bridgetest"
)

func TestWriteBody_text(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	require.NoError(t, bridge.WriteBody("hello", ex.Sink()))

	assert.Equal(t, "hello", ex.Written())
	assert.Equal(t, 1, ex.Flushes())
}

func TestWriteBody_bytes(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	require.NoError(t, bridge.WriteBody([]byte{0x68, 0x69}, ex.Sink()))

	assert.Equal(t, "hi", ex.Written())
	assert.Equal(t, 1, ex.Flushes())
}

func TestWriteBody_nil_writes_nothing(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	require.NoError(t, bridge.WriteBody(nil, ex.Sink()))

	assert.Zero(t, ex.Writes())
	assert.Zero(t, ex.Flushes())
}

func TestWriteBody_sequence(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	body := []any{"a", []byte("b"), 42, 3.5}
	require.NoError(t, bridge.WriteBody(body, ex.Sink()))

	assert.Equal(t, "ab423.5", ex.Written())
	// One flush per element so partial progress is visible as produced.
	assert.Equal(t, 4, ex.Flushes())
}

type trackedReader struct {
	io.Reader
	closed bool
}

func (r *trackedReader) Close() error {
	r.closed = true
	return nil
}

func TestWriteBody_reader_copied_and_closed(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	src := &trackedReader{Reader: strings.NewReader("stream contents")}
	require.NoError(t, bridge.WriteBody(src, ex.Sink()))

	assert.Equal(t, "stream contents", ex.Written())
	assert.True(t, src.closed)
}

func TestWriteBody_reader_closed_on_write_failure(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	ex.FailWrites(io.ErrClosedPipe)
	src := &trackedReader{Reader: strings.NewReader("doomed")}

	err := bridge.WriteBody(src, ex.Sink())

	var werr *bridge.WriteError
	require.ErrorAs(t, err, &werr)
	assert.True(t, src.closed)
}

func TestWriteBody_file(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "body.txt")
	require.NoError(t, os.WriteFile(path, []byte("file contents here"), 0o600))

	ex := bridgetest.New()
	require.NoError(t, bridge.WriteBody(bridge.File(path), ex.Sink()))

	assert.Equal(t, "file contents here", ex.Written())
}

func TestWriteBody_file_missing(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	err := bridge.WriteBody(bridge.File(filepath.Join(t.TempDir(), "absent")), ex.Sink())

	var werr *bridge.WriteError
	require.ErrorAs(t, err, &werr)
	assert.Zero(t, ex.Writes())
}

func TestWriteBody_writer_func(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	body := bridge.WriterFunc(func(sink bridge.Sink) error {
		if _, err := sink.Write([]byte("callback")); err != nil {
			return err
		}
		return sink.Flush()
	})
	require.NoError(t, bridge.WriteBody(body, ex.Sink()))

	assert.Equal(t, "callback", ex.Written())
	assert.Equal(t, 1, ex.Flushes())
}

func TestWriteBody_writer_func_error_propagates(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	ex := bridgetest.New()
	err := bridge.WriteBody(bridge.WriterFunc(func(bridge.Sink) error { return boom }), ex.Sink())

	require.ErrorIs(t, err, boom)
}

func TestWriteBody_unsupported_shape(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	err := bridge.WriteBody(42, ex.Sink())

	var uerr *bridge.UnsupportedBodyError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 42, uerr.Body)
	assert.Contains(t, uerr.Error(), "int")
	assert.Zero(t, ex.Writes())
}

func TestWriteBody_write_failure_wrapped(t *testing.T) {
	t.Parallel()

	ex := bridgetest.New()
	ex.FailWrites(io.ErrClosedPipe)

	err := bridge.WriteBody("hello", ex.Sink())

	var werr *bridge.WriteError
	require.ErrorAs(t, err, &werr)
	assert.ErrorIs(t, err, io.ErrClosedPipe)
}
