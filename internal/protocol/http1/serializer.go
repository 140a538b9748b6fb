package http1

import (
	"strconv"

	"github.com/indigo-web/sthttp/http"
	"github.com/indigo-web/sthttp/http/status"
	"github.com/indigo-web/sthttp/kv"
)

// Serialize appends the response into the buffer in wire format and resets the response
// afterward. Date and Content-Length are always rendered, before any of the user-set headers,
// which are written in the order they were set. An unset or unknown status code results in
// 500 Internal Server Error.
func Serialize(buff []byte, response *http.Response, date string) []byte {
	fields := response.Expose()
	buff = appendStatusLine(buff, fields.Code)
	buff = appendKnownHeader(buff, "Date: ", date)
	buff = append(buff, "Content-Length: "...)
	buff = strconv.AppendInt(buff, int64(len(fields.Body)), 10)
	buff = crlf(buff)

	for _, header := range fields.Headers {
		buff = appendHeader(buff, header)
	}

	buff = crlf(buff)
	buff = append(buff, fields.Body...)
	response.Reset()

	return buff
}

func appendStatusLine(buff []byte, code status.Code) []byte {
	if !status.Known(code) {
		code = status.InternalServerError
	}

	buff = append(buff, "HTTP/1.1 "...)
	buff = append(buff, status.StringCode(code)...)
	buff = append(buff, ' ')
	buff = append(buff, status.Text(code)...)

	return crlf(buff)
}

func appendHeader(buff []byte, header kv.Pair) []byte {
	buff = append(buff, header.Key...)
	buff = append(buff, ':', ' ')
	buff = append(buff, header.Value...)

	return crlf(buff)
}

// appendKnownHeader differs from appendHeader only by the fact that the key is known to already
// have a colon and a space included.
func appendKnownHeader(buff []byte, key, value string) []byte {
	buff = append(buff, key...)
	buff = append(buff, value...)

	return crlf(buff)
}

func crlf(buff []byte) []byte {
	return append(buff, '\r', '\n')
}
