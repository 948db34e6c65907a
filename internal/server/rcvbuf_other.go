//go:build !unix

package server

import (
	"errors"
	"net"
)

func socketReceiveBuffer(*net.UDPConn) (int, error) {
	return 0, errors.ErrUnsupported
}
