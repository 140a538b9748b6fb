package requestgen

import (
	"strconv"
	"strings"

	"github.com/indigo-web/sthttp/kv"
)

// Headers generates n headers, the last one being Host.
func Headers(n int) *kv.Storage {
	hdrs := kv.NewPrealloc(n)

	for i := 0; i < n-1; i++ {
		hdrs.Add("some-random-header-name-nobody-cares-about"+strconv.Itoa(i), strings.Repeat("b", 100))
	}

	return hdrs.Add("Host", "localhost")
}

func HeadersBlock(hdrs *kv.Storage) (buff []byte) {
	for _, pair := range hdrs.Expose() {
		buff = append(buff, pair.Key+": "+pair.Value+"\r\n"...)
	}

	return buff
}

// Generate renders a GET request without a body.
func Generate(uri string, hdrs *kv.Storage) (request []byte) {
	return GenerateWithBody("GET", uri, hdrs, "")
}

// GenerateWithBody renders a request carrying the body. Content-Length is added only if
// the body isn't empty.
func GenerateWithBody(method, uri string, hdrs *kv.Storage, body string) (request []byte) {
	request = append(request, method+" /"+uri+" HTTP/1.1\r\n"...)
	request = append(request, HeadersBlock(hdrs)...)
	if len(body) > 0 {
		request = append(request, "Content-Length: "+strconv.Itoa(len(body))+"\r\n"...)
	}

	request = append(request, '\r', '\n')

	return append(request, body...)
}
