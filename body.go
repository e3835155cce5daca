package bridge

import (
	"fmt"
	"io"
	"os"
)

// File is a body variant referencing a file by path. The file is opened
// when the body is written and closed when the write finishes, success or
// not.
type File string

// WriterFunc is a body variant given direct access to the sink. It is
// invoked exactly once and owns both writing and flushing.
type WriterFunc func(sink Sink) error

// Stream is the asynchronous body variant: a producer yields chunks over
// time and signals the end by closing the channel. Each chunk may be any
// synchronous body shape accepted by WriteBody.
type Stream struct {
	Chunks <-chan any
	// Cancel, when non-nil, is called once the exchange reaches a terminal
	// state so the producer stops. It must be safe to call after the
	// channel is closed.
	Cancel func()
}

// WriteBody writes body to sink according to its runtime shape:
//
//	nil             no write
//	string, []byte  written once, then flush
//	[]any           each element written then flushed; string and []byte
//	                elements are written raw, everything else through
//	                fmt.Sprint
//	io.Reader       copied until exhausted; closed when it is an io.Closer
//	File            opened, then byte-source semantics
//	WriterFunc      invoked once with the sink
//
// A *Stream is not writable here; Finalize routes it to the async
// completion path, and WriteBody only ever sees its individual chunks. Any
// unrecognized shape fails with *UnsupportedBodyError before anything is
// written.
func WriteBody(body any, sink Sink) error {
	switch b := body.(type) {
	case nil:
		return nil
	case string:
		return writeFlush(sink, []byte(b))
	case []byte:
		return writeFlush(sink, b)
	case []any:
		for _, el := range b {
			if err := writeFlush(sink, chunkBytes(el)); err != nil {
				return err
			}
		}
		return nil
	case File:
		f, err := os.Open(string(b))
		if err != nil {
			return &WriteError{Err: err}
		}
		return copyClose(sink, f)
	case io.Reader:
		return copyClose(sink, b)
	case WriterFunc:
		return b(sink)
	default:
		return &UnsupportedBodyError{Body: body}
	}
}

// chunkBytes converts a sequence element to bytes. Byte-oriented values are
// passed through untouched so they are not double-encoded; everything else
// takes its fmt.Sprint form.
func chunkBytes(el any) []byte {
	switch v := el.(type) {
	case string:
		return []byte(v)
	case []byte:
		return v
	default:
		return []byte(fmt.Sprint(v))
	}
}

func writeFlush(sink Sink, p []byte) error {
	if _, err := sink.Write(p); err != nil {
		return &WriteError{Err: err}
	}
	if err := sink.Flush(); err != nil {
		return &WriteError{Err: err}
	}
	return nil
}

// copyClose copies src to sink, closing src unconditionally. The source's
// lifetime is owned by the write: nothing else may read or close it.
func copyClose(sink Sink, src io.Reader) error {
	_, err := io.Copy(sink, src)
	if c, ok := src.(io.Closer); ok {
		if cerr := c.Close(); err == nil {
			err = cerr
		}
	}
	if err != nil {
		return &WriteError{Err: err}
	}
	return nil
}
