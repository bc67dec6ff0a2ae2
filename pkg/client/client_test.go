package client

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Wa4h1h/tftpc/pkg/types"
	"github.com/Wa4h1h/tftpc/pkg/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var (
	serverAddr = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 69}
	tidAddr    = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40000}
	strayAddr  = &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 40001}
)

type reply struct {
	from    *net.UDPAddr
	b       []byte
	timeout bool
}

type sentPacket struct {
	to *net.UDPAddr
	b  []byte
}

// fakeTransport replays scripted replies. Every Send hands the packet to
// respond and queues what it returns; an empty queue reads as a timeout.
type fakeTransport struct {
	respond func(b []byte) []reply
	sent    []sentPacket
	queue   []reply
	waits   []time.Duration
	closed  bool
}

func (f *fakeTransport) Send(b []byte, to *net.UDPAddr) error {
	f.sent = append(f.sent, sentPacket{to: to, b: append([]byte(nil), b...)})

	if f.respond != nil {
		f.queue = append(f.queue, f.respond(b)...)
	}

	return nil
}

func (f *fakeTransport) Receive(buf []byte, timeout time.Duration) (int, *net.UDPAddr, error) {
	f.waits = append(f.waits, timeout)

	if len(f.queue) == 0 {
		return 0, nil, utils.ErrTimeout
	}

	r := f.queue[0]
	f.queue = f.queue[1:]

	if r.timeout {
		return 0, nil, utils.ErrTimeout
	}

	return copy(buf, r.b), r.from, nil
}

func (f *fakeTransport) Close() error {
	f.closed = true

	return nil
}

// sentOf returns the packets of the given opcode in send order.
func (f *fakeTransport) sentOf(op types.OpCode) []sentPacket {
	var out []sentPacket

	for _, p := range f.sent {
		if got, err := types.PeekOpcode(p.b); err == nil && got == op {
			out = append(out, p)
		}
	}

	return out
}

func newTestClient(ft *fakeTransport) *Client {
	c := NewClient(zap.NewNop().Sugar(), DefaultConfig())
	c.server = serverAddr
	c.dial = func() (Transport, error) {
		return ft, nil
	}

	return c
}

// steppingClock advances by step on every reading.
func steppingClock(step time.Duration) func() time.Time {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	return func() time.Time {
		now = now.Add(step)

		return now
	}
}

func mustMarshal(t *testing.T, p interface{ MarshalBinary() ([]byte, error) }) []byte {
	t.Helper()

	b, err := p.MarshalBinary()
	require.NoError(t, err)

	return b
}

func content(n int) []byte {
	b := make([]byte, n)
	for i := range b {
		b[i] = byte(i % 251)
	}

	return b
}

func writeTemp(t *testing.T, b []byte) string {
	t.Helper()

	p := filepath.Join(t.TempDir(), "local.bin")
	require.NoError(t, os.WriteFile(p, b, 0o644))

	return p
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 5*time.Second, cfg.attemptTimeout())

	bad := cfg
	bad.Port = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.MaxAttempts = 0
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Mode = "mail"
	assert.Error(t, bad.Validate())

	bad = cfg
	bad.Timeout = time.Millisecond
	assert.Error(t, bad.Validate())
}

func TestConnectDefaultsPort(t *testing.T) {
	c := NewClient(zap.NewNop().Sugar(), DefaultConfig())

	require.NoError(t, c.Connect("127.0.0.1"))
	assert.Equal(t, 69, c.Server().Port)

	require.NoError(t, c.Connect("127.0.0.1:6969"))
	assert.Equal(t, 6969, c.Server().Port)
}

func TestTransferRequiresServer(t *testing.T) {
	c := NewClient(zap.NewNop().Sugar(), DefaultConfig())

	_, err := c.Get("a", filepath.Join(t.TempDir(), "a"))
	assert.ErrorIs(t, err, utils.ErrNotConnected)

	_, err = c.Put("a", "b")
	assert.ErrorIs(t, err, utils.ErrNotConnected)
}

func TestSetTimeoutAndTrace(t *testing.T) {
	c := NewClient(zap.NewNop().Sugar(), DefaultConfig())

	c.SetTimeout(10)
	assert.Equal(t, 2*time.Second, c.cfg.attemptTimeout())

	c.SetTrace()
	assert.True(t, c.cfg.Trace)
	c.SetTrace()
	assert.False(t, c.cfg.Trace)
}

func TestTransferErrorFormatting(t *testing.T) {
	err := serverError(types.NewError(types.ErrFileNotFound, ""))
	assert.Equal(t, "error 1: File not found", err.Error())
	assert.True(t, IsKind(err, KindServer))
	assert.False(t, IsKind(err, KindTimeout))

	wrapped := newError(KindIO, os.ErrPermission, "error while opening %s", "x")
	assert.ErrorIs(t, wrapped, os.ErrPermission)
	assert.Contains(t, wrapped.Error(), "error while opening x")
}

func TestParseListing(t *testing.T) {
	f := writeTemp(t, []byte("dir.txt 2024-01-01 10\nboot.img 2024-01-02 4096\nshort line\n"))

	r, err := os.Open(f)
	require.NoError(t, err)

	defer r.Close()

	entries, err := parseListing(r)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, DirEntry{Name: "boot.img", Date: "2024-01-02", Size: "4096"}, entries[0])
}
