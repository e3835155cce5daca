package bridge

// HandlerFunc is the application handler contract: an immutable request
// snapshot in, a response descriptor out. Handlers never see the container's
// writer or request objects. Returning a nil response with a nil error is an
// adapter-level error; a response with a nil body is valid and writes
// nothing.
type HandlerFunc func(req *Request) (*Response, error)
