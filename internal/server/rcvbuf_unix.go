//go:build unix

package server

import (
	"net"

	"golang.org/x/sys/unix"
)

// socketReceiveBuffer reads SO_RCVBUF off the listening socket. On Linux
// the kernel reports double the requested size to account for bookkeeping
// overhead; the value returned here is whatever getsockopt says.
func socketReceiveBuffer(conn *net.UDPConn) (int, error) {
	raw, err := conn.SyscallConn()
	if err != nil {
		return 0, err
	}

	var (
		size    int
		sockErr error
	)
	if err := raw.Control(func(fd uintptr) {
		size, sockErr = unix.GetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_RCVBUF)
	}); err != nil {
		return 0, err
	}
	return size, sockErr
}
