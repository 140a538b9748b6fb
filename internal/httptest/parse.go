package httptest

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/indigo-web/sthttp/kv"
)

// Response is a raw response parsed as-is. Unlike net/http, headers keep their order and
// original case.
type Response struct {
	Proto   string
	Code    int
	Status  string
	Headers *kv.Storage
	Body    string
}

// Parse parses a single response framed by the Content-Length header, which must be
// presented. Bytes following the response are returned as the rest.
func Parse(raw string) (response Response, rest string, err error) {
	var found bool
	response.Headers = kv.New()

	response.Proto, raw, found = strings.Cut(raw, " ")
	if !found || len(raw) == 0 {
		return response, "", fmt.Errorf("bad status line: lacking code and status")
	}

	var code string
	code, raw, found = strings.Cut(raw, " ")
	if !found {
		return response, "", fmt.Errorf("bad status line: lacking status text")
	}

	response.Code, err = strconv.Atoi(code)
	if err != nil {
		return response, "", err
	}

	response.Status, raw, found = strings.Cut(raw, "\r\n")
	if !found {
		return response, "", fmt.Errorf("bad response: only status line is presented")
	}

	for {
		var headerLine string
		headerLine, raw, found = strings.Cut(raw, "\r\n")
		if !found {
			return response, "", fmt.Errorf("bad header line %s: no breaking CRLF", headerLine)
		}

		if len(headerLine) == 0 {
			break
		}

		key, value, found := strings.Cut(headerLine, ": ")
		if !found {
			return response, "", fmt.Errorf("bad header %s: no value", headerLine)
		}

		response.Headers.Add(key, value)
	}

	length, err := strconv.Atoi(response.Headers.Value("content-length"))
	if err != nil {
		return response, "", fmt.Errorf("bad content length: %w", err)
	}

	if len(raw) < length {
		return response, "", fmt.Errorf("body is too short: want %d bytes, got %d", length, len(raw))
	}

	response.Body = raw[:length]

	return response, raw[length:], nil
}

// ParseAll parses consecutive responses until no data is left.
func ParseAll(raw string) (responses []Response, err error) {
	for len(raw) > 0 {
		var response Response
		response, raw, err = Parse(raw)
		if err != nil {
			return responses, err
		}

		responses = append(responses, response)
	}

	return responses, nil
}
