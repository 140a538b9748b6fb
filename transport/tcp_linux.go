//go:build linux

package transport

import (
	"errors"
	"io"
	"net"
	"os"

	"github.com/indigo-web/sthttp/internal/address"
	"golang.org/x/sys/unix"
)

// Listener is a non-blocking TCP listening socket.
type Listener struct {
	fd   int
	addr *net.TCPAddr
}

// Listen creates a non-blocking socket bound to the IPv4 address. If only the port is
// presented, the socket is bound to every interface.
func Listen(addr string, backlog int) (*Listener, error) {
	ip, port, err := address.Resolve(addr)
	if err != nil {
		return nil, err
	}

	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM|unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC, unix.IPPROTO_TCP)
	if err != nil {
		return nil, os.NewSyscallError("socket", err)
	}

	if err = listen(fd, ip, port, backlog); err != nil {
		_ = unix.Close(fd)
		return nil, err
	}

	sa, err := unix.Getsockname(fd)
	if err != nil {
		_ = unix.Close(fd)
		return nil, os.NewSyscallError("getsockname", err)
	}

	return &Listener{
		fd:   fd,
		addr: tcpAddr(sa),
	}, nil
}

func listen(fd int, ip [4]byte, port, backlog int) error {
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		return os.NewSyscallError("setsockopt", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: port, Addr: ip}); err != nil {
		return os.NewSyscallError("bind", err)
	}

	return os.NewSyscallError("listen", unix.Listen(fd, backlog))
}

// Accept accepts a single pending connection. ErrWouldBlock is returned if there are none.
func (l *Listener) Accept() (*Conn, error) {
	for {
		fd, sa, err := unix.Accept4(l.fd, unix.SOCK_NONBLOCK|unix.SOCK_CLOEXEC)
		switch err {
		case nil:
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return nil, ErrWouldBlock
		default:
			return nil, os.NewSyscallError("accept4", err)
		}

		// responses are written at once, so there's nothing to coalesce
		_ = unix.SetsockoptInt(fd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)

		return &Conn{
			fd:     fd,
			remote: tcpAddr(sa),
		}, nil
	}
}

func (l *Listener) Fd() int {
	return l.fd
}

// Addr returns the address the listener is actually bound to. It differs from the requested
// one if the port was 0.
func (l *Listener) Addr() net.Addr {
	return l.addr
}

func (l *Listener) Close() error {
	return os.NewSyscallError("close", unix.Close(l.fd))
}

var _ Socket = new(Conn)

// Conn is an accepted non-blocking TCP connection.
type Conn struct {
	fd     int
	remote *net.TCPAddr
}

func (c *Conn) Read(b []byte) (int, error) {
	for {
		n, err := unix.Read(c.fd, b)
		switch err {
		case nil:
			if n == 0 && len(b) > 0 {
				return 0, io.EOF
			}

			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, ErrWouldBlock
		default:
			return 0, os.NewSyscallError("read", err)
		}
	}
}

// Write writes the data with MSG_NOSIGNAL, so writing into a connection reset by the peer
// results in EPIPE instead of the signal.
func (c *Conn) Write(b []byte) (int, error) {
	for {
		n, err := unix.SendmsgN(c.fd, b, nil, nil, unix.MSG_NOSIGNAL)
		switch err {
		case nil:
			return n, nil
		case unix.EINTR:
			continue
		case unix.EAGAIN:
			return 0, ErrWouldBlock
		default:
			return 0, os.NewSyscallError("sendmsg", err)
		}
	}
}

func (c *Conn) Close() error {
	return os.NewSyscallError("close", unix.Close(c.fd))
}

func (c *Conn) Fd() int {
	return c.fd
}

func (c *Conn) Remote() net.Addr {
	return c.remote
}

// IsTemporary reports whether an accept error is caused by the state of a single pending
// connection or a transient resources shortage, so accepting may be continued later.
func IsTemporary(err error) bool {
	var errno unix.Errno
	if !errors.As(err, &errno) {
		return false
	}

	switch errno {
	case unix.ECONNABORTED, unix.EMFILE, unix.ENFILE, unix.ENOBUFS, unix.ENOMEM,
		unix.EPROTO, unix.EPERM, unix.ETIMEDOUT:
		return true
	default:
		return false
	}
}

func tcpAddr(sa unix.Sockaddr) *net.TCPAddr {
	switch addr := sa.(type) {
	case *unix.SockaddrInet4:
		return &net.TCPAddr{IP: net.IP(addr.Addr[:]).To16(), Port: addr.Port}
	case *unix.SockaddrInet6:
		return &net.TCPAddr{IP: net.IP(addr.Addr[:]), Port: addr.Port}
	default:
		return &net.TCPAddr{}
	}
}
