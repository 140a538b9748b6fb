package http

import (
	"github.com/indigo-web/sthttp/http/status"
	"github.com/indigo-web/sthttp/kv"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

const (
	// why 7? I don't know. There's no theory behind this number nor researches.
	preallocRespHeaders = 7
	defaultBodyPrealloc = 4096
)

// Response is a builder of the response to a single request. The status code is unset by
// default, in which case 500 Internal Server Error is sent. Headers and body are append-only.
type Response struct {
	code    status.Code
	headers *kv.Storage
	body    []byte
}

// NewResponse returns a new instance of the Response object with unset status code and
// pre-allocated space for response headers and body.
func NewResponse() *Response {
	return &Response{
		headers: kv.NewPrealloc(preallocRespHeaders),
		body:    make([]byte, 0, defaultBodyPrealloc),
	}
}

// Code sets a Response code.
func (r *Response) Code(code status.Code) *Response {
	r.code = code
	return r
}

// Header adds header values to a key. Headers are rendered in the order they were added,
// duplicates included.
func (r *Response) Header(key string, values ...string) *Response {
	for _, value := range values {
		r.headers.Add(key, value)
	}

	return r
}

// String appends the string to the body.
func (r *Response) String(body string) *Response {
	return r.Bytes(uf.S2B(body))
}

// Bytes appends the slice to the body. The slice is copied, so it can be safely reused.
func (r *Response) Bytes(body []byte) *Response {
	r.body = append(r.body, body...)
	return r
}

// Write implements io.Writer interface. It always returns n=len(b) and err=nil
func (r *Response) Write(b []byte) (n int, err error) {
	r.Bytes(b)
	return len(b), nil
}

// TryJSON appends the JSON-encoded model to the body and sets the corresponding
// Content-Type.
func (r *Response) TryJSON(model any) (*Response, error) {
	stream := json.ConfigDefault.BorrowStream(r)
	stream.WriteVal(model)
	err := stream.Flush()
	if err == nil {
		err = stream.Error
	}
	json.ConfigDefault.ReturnStream(stream)

	return r.Header("Content-Type", "application/json"), err
}

// JSON does the same as TryJSON does, except returned error is being implicitly turned
// into Error
func (r *Response) JSON(model any) *Response {
	resp, err := r.TryJSON(model)
	if err != nil {
		return r.Error(err)
	}

	return resp
}

// Error discards what was written so far and turns the response into an error one. If an
// instance of status.HTTPError is passed, its code is used, otherwise 500 Internal Server
// Error. Nil error is a no-op.
func (r *Response) Error(err error) *Response {
	if err == nil {
		return r
	}

	r.Reset()
	code := status.InternalServerError
	if http, ok := err.(status.HTTPError); ok {
		code = http.Code
	}

	return r.
		Code(code).
		Header("Content-Type", "text/plain").
		String(err.Error())
}

// Fields are the values collected by the builder.
type Fields struct {
	Code    status.Code
	Headers []kv.Pair
	Body    []byte
}

// Expose returns the values, filled by builder. Used mostly in internal purposes
func (r *Response) Expose() Fields {
	return Fields{
		Code:    r.code,
		Headers: r.headers.Expose(),
		Body:    r.body,
	}
}

// Reset discards everything was done with Response object before
func (r *Response) Reset() *Response {
	r.code = 0
	r.headers.Clear()
	r.body = r.body[:0]
	return r
}
