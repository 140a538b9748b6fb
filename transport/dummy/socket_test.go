package dummy

import (
	"errors"
	"io"
	"testing"

	"github.com/indigo-web/sthttp/transport"
	"github.com/stretchr/testify/require"
)

func TestSocket(t *testing.T) {
	t.Run("scripted reads", func(t *testing.T) {
		socket := NewSocket("Hello", "world!").EOF()
		buff := make([]byte, 16)

		for _, chunk := range []string{"Hello", "world!"} {
			n, err := socket.Read(buff)
			require.NoError(t, err)
			require.Equal(t, chunk, string(buff[:n]))
		}

		_, err := socket.Read(buff)
		require.ErrorIs(t, err, io.EOF)
		_, err = socket.Read(buff)
		require.ErrorIs(t, err, transport.ErrWouldBlock)
	})

	t.Run("short buffer", func(t *testing.T) {
		socket := NewSocket("Hello")
		buff := make([]byte, 3)

		n, err := socket.Read(buff)
		require.NoError(t, err)
		require.Equal(t, "Hel", string(buff[:n]))
		n, err = socket.Read(buff)
		require.NoError(t, err)
		require.Equal(t, "lo", string(buff[:n]))
		require.False(t, socket.Pending())
	})

	t.Run("writes", func(t *testing.T) {
		errReset := errors.New("connection reset")
		socket := NewSocket().
			WriteLimit(2).
			WriteError(transport.ErrWouldBlock, errReset)

		_, err := socket.Write([]byte("Hello"))
		require.ErrorIs(t, err, transport.ErrWouldBlock)
		_, err = socket.Write([]byte("Hello"))
		require.ErrorIs(t, err, errReset)

		n, err := socket.Write([]byte("Hello"))
		require.NoError(t, err)
		require.Equal(t, 2, n)
		require.Equal(t, "He", string(socket.Written()))
	})

	t.Run("close", func(t *testing.T) {
		socket := NewSocket("Hello")
		require.NoError(t, socket.Close())
		require.True(t, socket.Closed())

		_, err := socket.Read(make([]byte, 8))
		require.Error(t, err)
		_, err = socket.Write([]byte("Hello"))
		require.Error(t, err)
	})
}
