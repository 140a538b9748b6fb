package http

import (
	"github.com/indigo-web/sthttp/kv"
)

// Request is a read-only view of a parsed request.
//
// Method, Path, Proto and the headers are zero-copy views into the connection's incoming
// buffer, and so is Body. The view is valid only for the duration of a single Handler.Handle
// call: retaining anything past it results in reading the bytes of a following request.
// Use Clone if the request must outlive the call.
type Request struct {
	// Method is empty only if it couldn't be parsed.
	Method string
	// Path is empty only if it couldn't be parsed.
	Path    string
	Proto   string
	Headers *kv.Storage
	Body    []byte
}

// NewRequest returns an empty request with pre-allocated space for n headers.
func NewRequest(headersPrealloc int) *Request {
	return &Request{
		Headers: kv.NewPrealloc(headersPrealloc),
	}
}

// ContentLength returns the body length.
func (r *Request) ContentLength() int {
	return len(r.Body)
}

// Clone returns a deep copy of the request which is safe to retain.
func (r *Request) Clone() *Request {
	return &Request{
		Method:  string(append([]byte(nil), r.Method...)),
		Path:    string(append([]byte(nil), r.Path...)),
		Proto:   string(append([]byte(nil), r.Proto...)),
		Headers: r.Headers.Clone(),
		Body:    append([]byte(nil), r.Body...),
	}
}

// Reset drops all the values, keeping the allocated space.
func (r *Request) Reset() {
	r.Method = ""
	r.Path = ""
	r.Proto = ""
	r.Headers.Clear()
	r.Body = nil
}
