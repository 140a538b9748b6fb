package http1

import (
	"bufio"
	"bytes"
	"io"
	stdhttp "net/http"
	"strings"
	"testing"

	"github.com/indigo-web/sthttp/http"
	"github.com/indigo-web/sthttp/http/status"
	"github.com/indigo-web/sthttp/internal/httptest"
	"github.com/indigo-web/sthttp/kv"
	"github.com/stretchr/testify/require"
)

const testDate = "Sun, 06 Nov 1994 08:49:37 GMT"

func readResponse(t *testing.T, data []byte) (*stdhttp.Response, string) {
	stdreq, err := stdhttp.NewRequest(stdhttp.MethodGet, "/", nil)
	require.NoError(t, err)
	resp, err := stdhttp.ReadResponse(bufio.NewReader(bytes.NewReader(data)), stdreq)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, resp.Body.Close())

	return resp, string(body)
}

func BenchmarkSerialize(b *testing.B) {
	response := http.NewResponse()
	buff := make([]byte, 0, 4096)
	body := strings.Repeat("a", 1024)
	b.SetBytes(int64(len(Serialize(buff, response.Code(status.OK).String(body), testDate))))
	b.ReportAllocs()
	b.ResetTimer()

	for i := 0; i < b.N; i++ {
		response.
			Code(status.OK).
			Header("Content-Type", "text/plain").
			String(body)
		buff = Serialize(buff[:0], response, testDate)
	}
}

func TestSerialize(t *testing.T) {
	t.Run("exact bytes", func(t *testing.T) {
		response := http.NewResponse().
			Code(status.OK).
			Header("Content-Type", "text/plain").
			String("boom")

		data := Serialize(nil, response, testDate)
		require.Equal(t,
			"HTTP/1.1 200 OK\r\n"+
				"Date: "+testDate+"\r\n"+
				"Content-Length: 4\r\n"+
				"Content-Type: text/plain\r\n"+
				"\r\n"+
				"boom",
			string(data),
		)
	})

	t.Run("appends to the buffer", func(t *testing.T) {
		data := Serialize([]byte("previous"), http.NewResponse().Code(status.Created), testDate)
		require.True(t, bytes.HasPrefix(data, []byte("previousHTTP/1.1 201 Created\r\n")))
	})

	t.Run("headers order and duplicates", func(t *testing.T) {
		response := http.NewResponse().
			Code(status.Created).
			Header("Hello", "nether").
			Header("Something", "special", "here").
			Header("Hello", "world")

		data := Serialize(nil, response, testDate)
		resp, body := readResponse(t, data)
		require.Equal(t, 201, resp.StatusCode)
		require.Equal(t, []string{"nether", "world"}, resp.Header["Hello"])
		require.Equal(t, []string{"special", "here"}, resp.Header["Something"])
		require.Equal(t, testDate, resp.Header.Get("Date"))
		require.Empty(t, body)
		require.Less(t,
			bytes.Index(data, []byte("Hello: nether")),
			bytes.Index(data, []byte("Something: special")),
		)
	})

	t.Run("wire order", func(t *testing.T) {
		response := http.NewResponse().
			Code(status.OK).
			Header("X-First", "1").
			Header("x-second", "2").
			String("hi")

		parsed, rest, err := httptest.Parse(string(Serialize(nil, response, testDate)))
		require.NoError(t, err)
		require.Empty(t, rest)
		require.Equal(t, "OK", parsed.Status)
		require.Equal(t, []kv.Pair{
			{Key: "Date", Value: testDate},
			{Key: "Content-Length", Value: "2"},
			{Key: "X-First", Value: "1"},
			{Key: "x-second", Value: "2"},
		}, parsed.Headers.Expose())
		require.Equal(t, "hi", parsed.Body)
	})

	t.Run("empty body", func(t *testing.T) {
		data := Serialize(nil, http.NewResponse().Code(status.OK), testDate)
		require.Contains(t, string(data), "Content-Length: 0\r\n\r\n")
		require.True(t, bytes.HasSuffix(data, []byte("\r\n\r\n")))
	})

	t.Run("unset code", func(t *testing.T) {
		data := Serialize(nil, http.NewResponse().String("hello"), testDate)
		resp, body := readResponse(t, data)
		require.Equal(t, 500, resp.StatusCode)
		require.Equal(t, "Internal Server Error", strings.TrimPrefix(resp.Status, "500 "))
		require.Equal(t, "hello", body)
	})

	t.Run("unknown code", func(t *testing.T) {
		data := Serialize(nil, http.NewResponse().Code(418), testDate)
		require.True(t, bytes.HasPrefix(data, []byte("HTTP/1.1 500 Internal Server Error\r\n")))
	})

	t.Run("error response", func(t *testing.T) {
		response := http.NewResponse().Error(status.ErrIncompleteRequest)
		resp, body := readResponse(t, Serialize(nil, response, testDate))
		require.Equal(t, 400, resp.StatusCode)
		require.Equal(t, "Incomplete request", body)
		require.EqualValues(t, len(body), resp.ContentLength)
	})

	t.Run("response is reset", func(t *testing.T) {
		response := http.NewResponse().
			Code(status.Created).
			Header("Hello", "world").
			String("body")

		_ = Serialize(nil, response, testDate)
		fields := response.Expose()
		require.Zero(t, fields.Code)
		require.Empty(t, fields.Headers)
		require.Empty(t, fields.Body)
	})
}
