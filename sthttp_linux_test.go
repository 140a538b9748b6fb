//go:build linux

package sthttp

import (
	"bufio"
	"io"
	"log/slog"
	"net"
	stdhttp "net/http"
	"testing"
	"time"

	"github.com/indigo-web/sthttp/config"
	"github.com/indigo-web/sthttp/http"
	"github.com/indigo-web/sthttp/http/status"
	"github.com/stretchr/testify/require"
)

func boom(request *http.Request, response *http.Response) {
	if request.Path == "/echo" {
		response.Code(status.OK).Bytes(request.Body)
		return
	}

	response.
		Code(status.OK).
		Header("Content-Type", "text/plain").
		String("boom")
}

func runApp(t *testing.T, cfg *config.Config) (app *App, addr string) {
	started := make(chan struct{})
	done := make(chan error, 1)
	app = New("127.0.0.1:0").
		Tune(cfg).
		Logger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		NotifyOnStart(func() {
			close(started)
		})

	go func() {
		done <- app.Serve(http.HandlerFunc(boom))
	}()

	select {
	case <-started:
	case err := <-done:
		require.FailNow(t, "the server didn't start", err)
	}

	t.Cleanup(func() {
		app.Stop()
		require.NoError(t, <-done)
	})

	return app, app.Addr().String()
}

func dial(t *testing.T, addr string) (net.Conn, *bufio.Reader) {
	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	require.NoError(t, conn.SetDeadline(time.Now().Add(5*time.Second)))
	t.Cleanup(func() {
		_ = conn.Close()
	})

	return conn, bufio.NewReader(conn)
}

func readResponse(t *testing.T, reader *bufio.Reader) (*stdhttp.Response, string) {
	resp, err := stdhttp.ReadResponse(reader, nil)
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	return resp, string(body)
}

func TestApp(t *testing.T) {
	_, addr := runApp(t, config.Default())

	t.Run("boom", func(t *testing.T) {
		conn, reader := dial(t, addr)
		_, err := conn.Write([]byte("GET / HTTP/1.1\r\nHost: localhost\r\n\r\n"))
		require.NoError(t, err)

		resp, body := readResponse(t, reader)
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, "text/plain", resp.Header.Get("Content-Type"))
		require.NotEmpty(t, resp.Header.Get("Date"))
		require.Equal(t, "boom", body)
	})

	t.Run("echo split across writes", func(t *testing.T) {
		conn, reader := dial(t, addr)
		_, err := conn.Write([]byte("POST /echo HTTP/1.1\r\nContent-Length: 13\r\n\r\nHello, "))
		require.NoError(t, err)
		time.Sleep(20 * time.Millisecond)
		_, err = conn.Write([]byte("world!"))
		require.NoError(t, err)

		resp, body := readResponse(t, reader)
		require.Equal(t, 200, resp.StatusCode)
		require.Equal(t, "Hello, world!", body)
	})

	t.Run("keep-alive", func(t *testing.T) {
		conn, reader := dial(t, addr)

		for i := 0; i < 3; i++ {
			_, err := conn.Write([]byte("GET / HTTP/1.1\r\n\r\n"))
			require.NoError(t, err)
			_, body := readResponse(t, reader)
			require.Equal(t, "boom", body)
		}
	})

	t.Run("incomplete request", func(t *testing.T) {
		conn, reader := dial(t, addr)
		_, err := conn.Write([]byte("GET / HTTP/1.1\r\nHost: loc"))
		require.NoError(t, err)
		require.NoError(t, conn.(*net.TCPConn).CloseWrite())

		resp, body := readResponse(t, reader)
		require.Equal(t, 400, resp.StatusCode)
		require.Equal(t, "Incomplete request", body)
		_, err = reader.ReadByte()
		require.ErrorIs(t, err, io.EOF)
	})

	t.Run("clean close", func(t *testing.T) {
		conn, reader := dial(t, addr)
		require.NoError(t, conn.(*net.TCPConn).CloseWrite())
		_, err := reader.ReadByte()
		require.ErrorIs(t, err, io.EOF)
	})
}

func TestApp_Errors(t *testing.T) {
	t.Run("no handler", func(t *testing.T) {
		require.ErrorIs(t, New(":0").Serve(nil), ErrNoHandler)
	})

	t.Run("invalid config", func(t *testing.T) {
		cfg := config.Default()
		cfg.Conn.Capacity = 0
		err := New("127.0.0.1:0").Tune(cfg).Serve(http.HandlerFunc(boom))
		require.ErrorIs(t, err, config.ErrBadCapacity)
	})

	t.Run("bad address", func(t *testing.T) {
		err := New("127.0.0.1:99999").Serve(http.HandlerFunc(boom))
		require.Error(t, err)
	})

	t.Run("stop before start", func(t *testing.T) {
		require.NotPanics(t, func() {
			New(":0").Stop()
		})
	})

	t.Run("hooks", func(t *testing.T) {
		var calls []string
		done := make(chan error, 1)
		app := New("127.0.0.1:0").
			Logger(slog.New(slog.NewTextHandler(io.Discard, nil)))
		app.
			NotifyOnStart(func() {
				calls = append(calls, "start")
				app.Stop()
			}).
			NotifyOnStop(func() {
				calls = append(calls, "stop")
			})

		go func() {
			done <- app.Serve(http.HandlerFunc(boom))
		}()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(5 * time.Second):
			require.FailNow(t, "the server doesn't stop")
		}

		require.Equal(t, []string{"start", "stop"}, calls)
		require.NotNil(t, app.Addr())
	})
}
