package client

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Wa4h1h/tftpc/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// loopbackPeer is a minimal lockstep peer. It answers every request from a
// fresh ephemeral port, the way real servers pick a new TID per transfer.
type loopbackPeer struct {
	conn     *net.UDPConn
	files    map[string][]byte
	received chan []byte
}

func newLoopbackPeer(t *testing.T, files map[string][]byte) *loopbackPeer {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	p := &loopbackPeer{conn: conn, files: files, received: make(chan []byte, 1)}

	t.Cleanup(func() { _ = conn.Close() })

	go p.listen()

	return p
}

func (p *loopbackPeer) addr() string {
	return p.conn.LocalAddr().String()
}

func (p *loopbackPeer) listen() {
	datagram := make([]byte, types.RecvBufferSize)

	for {
		n, addr, err := p.conn.ReadFromUDP(datagram)
		if err != nil {
			return
		}

		var req types.Request
		if err := req.UnmarshalBinary(datagram[:n]); err != nil {
			continue
		}

		go p.handle(addr, req)
	}
}

func (p *loopbackPeer) handle(addr *net.UDPAddr, req types.Request) {
	conn, err := net.DialUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)}, addr)
	if err != nil {
		return
	}

	defer conn.Close()

	switch req.Opcode {
	case types.OpCodeRRQ:
		p.serveRead(conn, p.files[req.Filename])
	case types.OpCodeWRQ:
		p.serveWrite(conn)
	}
}

func (p *loopbackPeer) exchange(conn *net.UDPConn, b []byte) []byte {
	buf := make([]byte, types.RecvBufferSize)

	if _, err := conn.Write(b); err != nil {
		return nil
	}

	if err := conn.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		return nil
	}

	n, err := conn.Read(buf)
	if err != nil {
		return nil
	}

	return buf[:n]
}

func (p *loopbackPeer) serveRead(conn *net.UDPConn, file []byte) {
	for block := 1; ; block++ {
		start := (block - 1) * types.MaxPayloadSize
		end := min(start+types.MaxPayloadSize, len(file))

		b, err := (&types.Data{BlockNum: uint16(block), Payload: file[start:end]}).MarshalBinary()
		if err != nil {
			return
		}

		if p.exchange(conn, b) == nil || end-start < types.MaxPayloadSize {
			return
		}
	}
}

func (p *loopbackPeer) serveWrite(conn *net.UDPConn) {
	var got []byte

	var ack types.Ack

	for {
		b, err := ack.MarshalBinary()
		if err != nil {
			return
		}

		pkt := p.exchange(conn, b)
		if pkt == nil {
			return
		}

		var data types.Data
		if err := data.UnmarshalBinary(pkt); err != nil {
			return
		}

		got = append(got, data.Payload...)
		ack.BlockNum = data.BlockNum

		if data.Last() {
			b, err := ack.MarshalBinary()
			if err == nil {
				_, _ = conn.Write(b)
			}

			p.received <- got

			return
		}
	}
}

func newLoopbackClient(t *testing.T, addr string) *Client {
	cfg := DefaultConfig()
	cfg.Timeout = 5 * time.Second

	c := NewClient(zap.NewNop().Sugar(), cfg)
	require.NoError(t, c.Connect(addr))

	return c
}

func TestLoopbackDownload(t *testing.T) {
	file := content(2*types.MaxPayloadSize + 100)
	peer := newLoopbackPeer(t, map[string][]byte{"remote.bin": file})
	local := filepath.Join(t.TempDir(), "out.bin")

	res, err := newLoopbackClient(t, peer.addr()).Get("remote.bin", local)
	require.NoError(t, err)
	assert.Equal(t, int64(len(file)), res.Bytes)

	got, err := os.ReadFile(local)
	require.NoError(t, err)
	assert.Equal(t, file, got)
}

func TestLoopbackUpload(t *testing.T) {
	file := content(types.MaxPayloadSize + 7)
	peer := newLoopbackPeer(t, nil)

	res, err := newLoopbackClient(t, peer.addr()).Put(writeTemp(t, file), "remote.bin")
	require.NoError(t, err)
	assert.Equal(t, int64(len(file)), res.Bytes)

	select {
	case got := <-peer.received:
		assert.Equal(t, file, got)
	case <-time.After(5 * time.Second):
		t.Fatal("peer did not receive the file")
	}
}

func TestLoopbackClosedPortFailsFast(t *testing.T) {
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	require.NoError(t, err)

	addr := conn.LocalAddr().String()
	require.NoError(t, conn.Close())

	cfg := DefaultConfig()
	cfg.Timeout = 500 * time.Millisecond

	c := NewClient(zap.NewNop().Sugar(), cfg)
	require.NoError(t, c.Connect(addr))

	local := filepath.Join(t.TempDir(), "out.bin")

	_, err = c.Get("remote.bin", local)
	require.Error(t, err)
	assert.NoFileExists(t, local)
}
