package address

import (
	"errors"
	"net"
	"strings"
)

const DefaultAddr = "0.0.0.0"

var ErrNotIPv4 = errors.New("only IPv4 addresses are supported")

// Normalize fills the host part with DefaultAddr if only the port is presented.
func Normalize(addr string) string {
	if len(stripPort(addr)) == 0 {
		// only port is presented
		return DefaultAddr + addr
	}

	return addr
}

// Resolve resolves the address into an IPv4 address and a port. Hostnames are resolved, too.
func Resolve(addr string) (ip [4]byte, port int, err error) {
	tcpAddr, err := net.ResolveTCPAddr("tcp4", Normalize(addr))
	if err != nil {
		return ip, 0, err
	}

	ipv4 := tcpAddr.IP.To4()
	if ipv4 == nil {
		return ip, 0, ErrNotIPv4
	}

	copy(ip[:], ipv4)

	return ip, tcpAddr.Port, nil
}

func stripPort(addr string) string {
	colon := strings.LastIndexByte(addr, ':')
	if colon != -1 {
		return addr[:colon]
	}

	return addr
}
