package client

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"time"

	"github.com/Wa4h1h/tftpc/pkg/types"
	"github.com/Wa4h1h/tftpc/pkg/utils"
	"go.uber.org/zap"
)

type Connector interface {
	Connect(addr string) error
	Get(remote, local string) (Result, error)
	Put(local, remote string) (Result, error)
	Dir() ([]DirEntry, error)
	SetTimeout(timeout uint)
	SetTrace()
}

// Config tunes a Client. Timeout is the total inactivity budget of one
// outstanding packet, spread evenly over MaxAttempts waits.
type Config struct {
	Mode        string
	Timeout     time.Duration
	Port        int
	MaxAttempts int
	Trace       bool
}

func DefaultConfig() Config {
	return Config{
		Mode:        types.DefaultMode,
		Timeout:     types.DefaultTimeout * time.Second,
		Port:        types.DefaultPort,
		MaxAttempts: types.DefaultMaxAttempts,
	}
}

func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}

	if c.MaxAttempts < 1 {
		return fmt.Errorf("invalid max attempts %d", c.MaxAttempts)
	}

	if c.Timeout < time.Duration(c.MaxAttempts)*time.Millisecond {
		return fmt.Errorf("timeout %s too small for %d attempts", c.Timeout, c.MaxAttempts)
	}

	if c.Mode != types.ModeOctet && c.Mode != types.ModeNetascii {
		return fmt.Errorf("unsupported mode %q", c.Mode)
	}

	return nil
}

func (c Config) attemptTimeout() time.Duration {
	return c.Timeout / time.Duration(c.MaxAttempts)
}

// Result describes a finished transfer.
type Result struct {
	Bytes  int64
	Blocks int
}

type Client struct {
	l        *zap.SugaredLogger
	server   *net.UDPAddr
	dial     Dialer
	progress ProgressFunc
	now      func() time.Time
	cfg      Config
}

func NewClient(l *zap.SugaredLogger, cfg Config) *Client {
	c := &Client{l: l, cfg: cfg, now: time.Now}
	c.dial = func() (Transport, error) {
		return newUDPTransport(c.cfg.attemptTimeout())
	}

	return c
}

// Connect resolves the server address. A missing port falls back to the
// configured one.
func (c *Client) Connect(addr string) error {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		host, port = addr, strconv.Itoa(c.cfg.Port)
	}

	udpAddr, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(host, port))
	if err != nil {
		return fmt.Errorf("unknown server %q: %w", addr, err)
	}

	c.server = udpAddr

	return nil
}

func (c *Client) Server() *net.UDPAddr {
	return c.server
}

func (c *Client) SetTimeout(timeout uint) {
	c.cfg.Timeout = time.Duration(timeout) * time.Second
}

func (c *Client) SetTrace() {
	c.cfg.Trace = !c.cfg.Trace
}

func (c *Client) SetProgress(fn ProgressFunc) {
	c.progress = fn
}

// Get downloads remote into local, which defaults to the base name of
// remote. Errors wrap a *TransferError.
func (c *Client) Get(remote, local string) (Result, error) {
	if c.server == nil {
		return Result{}, newError(KindIO, utils.ErrNotConnected, "not connected")
	}

	if local == "" {
		local = filepath.Base(remote)
	}

	return c.download(remote, local)
}

// Put uploads local as remote, which defaults to the base name of local.
// Errors wrap a *TransferError.
func (c *Client) Put(local, remote string) (Result, error) {
	if c.server == nil {
		return Result{}, newError(KindIO, utils.ErrNotConnected, "not connected")
	}

	if remote == "" {
		remote = filepath.Base(local)
	}

	return c.upload(local, remote)
}

func (c *Client) closeTransport(t Transport) {
	if err := t.Close(); err != nil {
		c.l.Errorf("error while closing transport: %s", err.Error())
	}
}
