package server

import (
	"context"
	"net"
	"strconv"
	"syscall"

	"credocarbon/utils"
)

// Listen binds a TCP listener on host:port. The default wildcard host binds
// dual-stack (IPv6 socket with V6ONLY cleared) so the one listener the
// process owns accepts both IPv4 and IPv6, falling back to a plain IPv4
// socket on hosts without an IPv6 stack. A failure to reserve the address is
// returned as *BindError.
func Listen(host string, port int) (net.Listener, error) {
	portStr := strconv.Itoa(port)

	if host != "" && host != "0.0.0.0" && host != "::" {
		addr := net.JoinHostPort(host, portStr)
		ln, err := net.Listen("tcp", addr)
		if err != nil {
			return nil, &BindError{Addr: addr, Err: err}
		}
		return ln, nil
	}

	addrIPv6 := "[::]:" + portStr
	lc := net.ListenConfig{
		Control: func(network, address string, c syscall.RawConn) error {
			if network != "tcp6" {
				return nil
			}
			var sockErr error
			if controlErr := c.Control(func(fd uintptr) {
				sockErr = syscall.SetsockoptInt(int(fd), syscall.IPPROTO_IPV6, syscall.IPV6_V6ONLY, 0)
			}); controlErr != nil {
				return controlErr
			}
			return sockErr
		},
	}

	ln6, err6 := lc.Listen(context.Background(), "tcp6", addrIPv6)
	if err6 == nil {
		return ln6, nil
	}
	utils.LogInfo("IPv6 bind unavailable, falling back to IPv4", "addr", addrIPv6, "error", err6.Error())

	addrIPv4 := "0.0.0.0:" + portStr
	ln4, err4 := net.Listen("tcp4", addrIPv4)
	if err4 != nil {
		return nil, &BindError{Addr: addrIPv4, Err: err4}
	}
	return ln4, nil
}
