package status

// HTTPError is an error which knows the response code it must be answered with.
type HTTPError struct {
	Message string
	Code    Code
}

func NewError(code Code, message string) error {
	return HTTPError{
		Code:    code,
		Message: message,
	}
}

func (h HTTPError) Error() string {
	return h.Message
}

var (
	ErrBadRequest           = NewError(BadRequest, "Bad request")
	ErrIncompleteRequest    = NewError(BadRequest, "Incomplete request")
	ErrBadRequestLine       = NewError(BadRequest, "Malformed request line")
	ErrBadHeader            = NewError(BadRequest, "Malformed header")
	ErrUnsupportedProtocol  = NewError(BadRequest, "Unsupported protocol")
	ErrTooManyHeaders       = NewError(BadRequest, "Too many headers")
	ErrHeaderFieldsTooLarge = NewError(BadRequest, "Request head is too large")
	ErrBodyTooLarge         = NewError(RequestEntityTooLarge, "Request body is too large")
	ErrInternalServerError  = NewError(InternalServerError, "Internal server error")
)
