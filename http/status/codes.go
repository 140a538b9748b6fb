package status

type (
	Code   uint16
	Status string
)

// The set of codes is closed on purpose: a new code is introduced by widening this
// enumeration together with Text and KnownCodes, never by accepting arbitrary numbers.
const (
	OK      Code = 200 // RFC 9110, 15.3.1
	Created Code = 201 // RFC 9110, 15.3.2

	BadRequest            Code = 400 // RFC 9110, 15.5.1
	RequestEntityTooLarge Code = 413 // RFC 9110, 15.5.14

	InternalServerError Code = 500 // RFC 9110, 15.6.1
)

// KnownCodes lists every code the server is able to produce.
var KnownCodes = []Code{OK, Created, BadRequest, RequestEntityTooLarge, InternalServerError}

// Text returns a text for the HTTP status code. It returns the empty
// string if the code is unknown.
func Text(code Code) Status {
	switch code {
	case OK:
		return "OK"
	case Created:
		return "Created"
	case BadRequest:
		return "Bad Request"
	case RequestEntityTooLarge:
		return "Request Entity Too Large"
	case InternalServerError:
		return "Internal Server Error"
	default:
		return ""
	}
}

// Known reports whether the code belongs to the enumeration.
func Known(code Code) bool {
	return len(Text(code)) > 0
}

// StringCode returns the decimal representation of a known code without allocating.
// Unknown codes yield an empty string.
func StringCode(code Code) string {
	switch code {
	case OK:
		return "200"
	case Created:
		return "201"
	case BadRequest:
		return "400"
	case RequestEntityTooLarge:
		return "413"
	case InternalServerError:
		return "500"
	default:
		return ""
	}
}
