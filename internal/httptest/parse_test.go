package httptest

import (
	"testing"

	"github.com/indigo-web/sthttp/kv"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Run("single", func(t *testing.T) {
		response, rest, err := Parse("HTTP/1.1 200 OK\r\nB: 1\r\nContent-Length: 5\r\nA: 2\r\n\r\nhello")
		require.NoError(t, err)
		require.Empty(t, rest)
		require.Equal(t, "HTTP/1.1", response.Proto)
		require.Equal(t, 200, response.Code)
		require.Equal(t, "OK", response.Status)
		require.Equal(t, "hello", response.Body)
		require.Equal(t, []kv.Pair{
			{Key: "B", Value: "1"},
			{Key: "Content-Length", Value: "5"},
			{Key: "A", Value: "2"},
		}, response.Headers.Expose())
	})

	t.Run("consecutive", func(t *testing.T) {
		responses, err := ParseAll(
			"HTTP/1.1 201 Created\r\nContent-Length: 0\r\n\r\n" +
				"HTTP/1.1 400 Bad Request\r\nContent-Length: 3\r\n\r\nbad",
		)
		require.NoError(t, err)
		require.Len(t, responses, 2)
		require.Equal(t, "Created", responses[0].Status)
		require.Equal(t, "Bad Request", responses[1].Status)
		require.Equal(t, "bad", responses[1].Body)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, raw := range []string{
			"HTTP/1.1",
			"HTTP/1.1 abc OK\r\n\r\n",
			"HTTP/1.1 200 OK\r\nContent-Length: 5\r\n\r\nhi",
			"HTTP/1.1 200 OK\r\n\r\n",
			"HTTP/1.1 200 OK\r\nNoValue\r\n\r\n",
		} {
			_, _, err := Parse(raw)
			require.Error(t, err, raw)
		}
	})
}
