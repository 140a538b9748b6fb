package http1

import (
	"bytes"

	"github.com/indigo-web/sthttp/config"
	"github.com/indigo-web/sthttp/http"
	"github.com/indigo-web/sthttp/http/status"
	"github.com/indigo-web/sthttp/kv"
	"github.com/indigo-web/utils/strcomp"
	"github.com/indigo-web/utils/uf"
)

// Parser is the request head parser. It keeps no state among calls: every call parses the
// whole buffered data from the very beginning, so feeding it the same bytes split in any way
// always results in the same request.
type Parser struct {
	maxHeaders  int
	maxHeadSize int
}

func NewParser(cfg *config.Config) *Parser {
	return &Parser{
		maxHeaders:  cfg.Headers.MaxNumber,
		maxHeadSize: cfg.Headers.MaxSize,
	}
}

// Parse fills the request with the head parsed from data. Returned offset is the head length
// and is meaningful only if the state is Complete. In case of Error, err is always an instance
// of status.HTTPError.
//
// All the strings set into the request point into data, no copies are made.
func (p *Parser) Parse(data []byte, request *http.Request) (state State, offset int, err error) {
	request.Reset()

	offset = skipEmptyLines(data)
	line, next, found := cutLine(data, offset)
	if !found {
		return p.pending(data)
	}

	if err = parseRequestLine(line, request); err != nil {
		return Error, 0, err
	}

	for offset = next; ; offset = next {
		line, next, found = cutLine(data, offset)
		if !found {
			return p.pending(data)
		}

		if len(line) == 0 {
			break
		}

		if request.Headers.Len() >= p.maxHeaders {
			return Error, 0, status.ErrTooManyHeaders
		}

		key, value, err := parseHeaderLine(line)
		if err != nil {
			return Error, 0, err
		}

		request.Headers.Add(key, value)
	}

	if next > p.maxHeadSize {
		return Error, 0, status.ErrHeaderFieldsTooLarge
	}

	return Complete, next, nil
}

func (p *Parser) pending(data []byte) (State, int, error) {
	if len(data) >= p.maxHeadSize {
		return Error, 0, status.ErrHeaderFieldsTooLarge
	}

	return Pending, 0, nil
}

// ContentLength returns the value of the first Content-Length header. The name is matched
// case-insensitively. If the value isn't a valid non-negative decimal number, the request is
// considered to have no body, same as if the header wasn't presented at all.
func ContentLength(headers *kv.Storage) (length int, found bool) {
	for _, pair := range headers.Expose() {
		if strcomp.EqualFold(pair.Key, "Content-Length") {
			return parseUint(pair.Value)
		}
	}

	return 0, false
}

func parseRequestLine(line []byte, request *http.Request) error {
	sp := bytes.IndexByte(line, ' ')
	if sp <= 0 || !isToken(line[:sp]) {
		return status.ErrBadRequestLine
	}

	method, line := line[:sp], line[sp+1:]
	sp = bytes.IndexByte(line, ' ')
	if sp <= 0 || !isPrintable(line[:sp]) {
		return status.ErrBadRequestLine
	}

	path, proto := line[:sp], line[sp+1:]
	switch string(proto) {
	case "HTTP/1.1", "HTTP/1.0":
	default:
		return status.ErrUnsupportedProtocol
	}

	request.Method = uf.B2S(method)
	request.Path = uf.B2S(path)
	request.Proto = uf.B2S(proto)

	return nil
}

func parseHeaderLine(line []byte) (key, value string, err error) {
	colon := bytes.IndexByte(line, ':')
	if colon <= 0 || !isToken(line[:colon]) {
		// obsolete line folding is rejected here as well, as a leading whitespace isn't a
		// token character
		return "", "", status.ErrBadHeader
	}

	rawValue := trimSpaces(line[colon+1:])
	for _, char := range rawValue {
		if char != '\t' && (char < 0x20 || char == 0x7f) {
			return "", "", status.ErrBadHeader
		}
	}

	return uf.B2S(line[:colon]), uf.B2S(rawValue), nil
}

// cutLine returns the line starting at the offset without its terminating LF or CRLF, and
// the offset of the next line. If there's no LF, found is false.
func cutLine(data []byte, offset int) (line []byte, next int, found bool) {
	lf := bytes.IndexByte(data[offset:], '\n')
	if lf == -1 {
		return nil, 0, false
	}

	line = data[offset : offset+lf]
	if len(line) > 0 && line[len(line)-1] == '\r' {
		line = line[:len(line)-1]
	}

	return line, offset + lf + 1, true
}

// skipEmptyLines skips empty lines preceding the request line, as RFC 9112, 2.2 recommends.
func skipEmptyLines(data []byte) (offset int) {
	for offset < len(data) {
		switch {
		case data[offset] == '\n':
			offset++
		case data[offset] == '\r' && offset+1 < len(data) && data[offset+1] == '\n':
			offset += 2
		default:
			return offset
		}
	}

	return offset
}

func parseUint(str string) (n int, ok bool) {
	if len(str) == 0 {
		return 0, false
	}

	const cutoff = int(^uint(0)>>1) / 10

	for i := 0; i < len(str); i++ {
		char := str[i]
		if char < '0' || char > '9' || n > cutoff {
			return 0, false
		}

		n = n*10 + int(char-'0')
		if n < 0 {
			return 0, false
		}
	}

	return n, true
}

func trimSpaces(b []byte) []byte {
	for len(b) > 0 && (b[0] == ' ' || b[0] == '\t') {
		b = b[1:]
	}

	for len(b) > 0 && (b[len(b)-1] == ' ' || b[len(b)-1] == '\t') {
		b = b[:len(b)-1]
	}

	return b
}

func isToken(b []byte) bool {
	for _, char := range b {
		if !tokenChars[char] {
			return false
		}
	}

	return true
}

func isPrintable(b []byte) bool {
	for _, char := range b {
		if char <= 0x20 || char >= 0x7f {
			return false
		}
	}

	return true
}

// tokenChars marks the tchar set of RFC 9110, 5.6.2.
var tokenChars = func() (table [256]bool) {
	for c := '0'; c <= '9'; c++ {
		table[c] = true
	}

	for c := 'a'; c <= 'z'; c++ {
		table[c] = true
		table[c-'a'+'A'] = true
	}

	for _, c := range "!#$%&'*+-.^_`|~" {
		table[c] = true
	}

	return table
}()
