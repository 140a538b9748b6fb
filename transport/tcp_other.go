//go:build !linux

package transport

import "net"

type Listener struct{}

func Listen(string, int) (*Listener, error) {
	return nil, ErrUnsupported
}

func (*Listener) Accept() (*Conn, error) { return nil, ErrUnsupported }
func (*Listener) Fd() int                { return -1 }
func (*Listener) Addr() net.Addr         { return nil }
func (*Listener) Close() error           { return ErrUnsupported }

type Conn struct{}

func (*Conn) Read([]byte) (int, error)  { return 0, ErrUnsupported }
func (*Conn) Write([]byte) (int, error) { return 0, ErrUnsupported }
func (*Conn) Close() error              { return ErrUnsupported }
func (*Conn) Fd() int                   { return -1 }
func (*Conn) Remote() net.Addr          { return nil }

func IsTemporary(error) bool {
	return false
}
