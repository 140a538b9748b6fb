package http

// Handler processes requests. It's called synchronously on the reactor goroutine, so it
// MUST NOT block: blocking inside of it stalls every other connection. The request must not
// be retained past the call, see Request.
type Handler interface {
	Handle(request *Request, response *Response)
}

// HandlerFunc allows using a plain function as a Handler.
type HandlerFunc func(request *Request, response *Response)

func (h HandlerFunc) Handle(request *Request, response *Response) {
	h(request, response)
}

// ConnectionObserver may optionally be implemented by a Handler in order to be notified
// about connections lifecycle. Those are per-connection, not per-request calls, as a single
// keep-alive connection may carry many requests.
type ConnectionObserver interface {
	// OnConnectionStart is called right after a connection was accepted.
	OnConnectionStart()
	// OnConnectionEnd is called before a connection is closed.
	OnConnectionEnd()
}

// OnConnectionStart notifies the handler if it's interested in it.
func OnConnectionStart(h Handler) {
	if o, ok := h.(ConnectionObserver); ok {
		o.OnConnectionStart()
	}
}

// OnConnectionEnd notifies the handler if it's interested in it.
func OnConnectionEnd(h Handler) {
	if o, ok := h.(ConnectionObserver); ok {
		o.OnConnectionEnd()
	}
}
