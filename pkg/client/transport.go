package client

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/Wa4h1h/tftpc/pkg/utils"
)

// Transport is the datagram endpoint a single transfer owns from start to
// end. Receive returns an error wrapping utils.ErrTimeout when nothing
// arrives before the timeout.
type Transport interface {
	Send(b []byte, addr *net.UDPAddr) error
	Receive(buf []byte, timeout time.Duration) (int, *net.UDPAddr, error)
	Close() error
}

// Dialer opens a fresh Transport for one transfer.
type Dialer func() (Transport, error)

type udpTransport struct {
	conn         *net.UDPConn
	writeTimeout time.Duration
}

func newUDPTransport(writeTimeout time.Duration) (Transport, error) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("error while opening udp socket: %w", err)
	}

	return &udpTransport{conn: conn, writeTimeout: writeTimeout}, nil
}

func (u *udpTransport) Send(b []byte, addr *net.UDPAddr) error {
	if err := u.conn.SetWriteDeadline(time.Now().Add(u.writeTimeout)); err != nil {
		return fmt.Errorf("%w: %w", utils.ErrCanNotSetWriteTimeout, err)
	}

	if _, err := u.conn.WriteToUDP(b, addr); err != nil {
		return fmt.Errorf("error while writing to %s: %w", addr, err)
	}

	return nil
}

func (u *udpTransport) Receive(buf []byte, timeout time.Duration) (int, *net.UDPAddr, error) {
	if err := u.conn.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return 0, nil, fmt.Errorf("%w: %w", utils.ErrCanNotSetReadTimeout, err)
	}

	n, addr, err := u.conn.ReadFromUDP(buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return 0, nil, utils.ErrTimeout
		}

		return 0, nil, fmt.Errorf("error while reading from socket: %w", err)
	}

	return n, addr, nil
}

func (u *udpTransport) Close() error {
	if err := u.conn.Close(); err != nil {
		return fmt.Errorf("error while closing connection: %w", err)
	}

	return nil
}
