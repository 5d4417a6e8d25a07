package connection

import (
	"bytes"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/Tnze/go-mc/net/packet"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"

	"github.com/skyezerfox/magma/constants"
	"github.com/skyezerfox/magma/protocol"
)

type stubSettings struct {
	max  int
	motd string
	bind string
	port int
}

func (s stubSettings) MaxPlayers() int     { return s.max }
func (s stubSettings) MOTD() string        { return s.motd }
func (s stubSettings) ServerPort() int     { return s.port }
func (s stubSettings) BindAddress() string { return s.bind }

func defaultSettings() stubSettings {
	return stubSettings{max: 20, motd: "A Minecraft Server", bind: "127.0.0.1", port: 0}
}

type recordingPlayers struct {
	mu           sync.Mutex
	registered   []Identity
	unregistered []Identity
}

func (p *recordingPlayers) OnlineCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.registered) - len(p.unregistered)
}

func (p *recordingPlayers) Register(id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, id)
}

func (p *recordingPlayers) Unregister(id Identity) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.unregistered = append(p.unregistered, id)
}

type playPacket struct {
	identity Identity
	id       int32
	body     []byte
}

type recordingSink struct {
	mu      sync.Mutex
	packets []playPacket
}

func (s *recordingSink) HandlePlayPacket(id Identity, packetID int32, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.packets = append(s.packets, playPacket{identity: id, id: packetID, body: append([]byte(nil), body...)})
	return nil
}

// recordConn captures writes; reads report EOF.
type recordConn struct {
	out bytes.Buffer
}

func (c *recordConn) Read([]byte) (int, error)         { return 0, net.ErrClosed }
func (c *recordConn) Write(b []byte) (int, error)      { return c.out.Write(b) }
func (c *recordConn) Close() error                     { return nil }
func (c *recordConn) LocalAddr() net.Addr              { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 25565} }
func (c *recordConn) RemoteAddr() net.Addr             { return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000} }
func (c *recordConn) SetDeadline(time.Time) error      { return nil }
func (c *recordConn) SetReadDeadline(time.Time) error  { return nil }
func (c *recordConn) SetWriteDeadline(time.Time) error { return nil }

type fixture struct {
	srv     *Server
	players *recordingPlayers
	sink    *recordingSink
	conn    *recordConn
	c       *Connection
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		players: &recordingPlayers{},
		sink:    &recordingSink{},
		conn:    &recordConn{},
	}
	f.srv = NewServer(Options{
		Settings: defaultSettings(),
		Players:  f.players,
		Sink:     f.sink,
		Log:      zerolog.Nop(),
	})
	f.c = newConnection(f.srv, 7, f.conn)
	return f
}

// inState drives the connection through real packets to reach state.
func (f *fixture) inState(t *testing.T, state constants.State) {
	t.Helper()
	switch state {
	case constants.Handshaking:
	case constants.Status:
		require.NoError(t, f.c.dispatch(handshakeBody(constants.MCProtocol, constants.IntentStatus)))
	case constants.Login:
		require.NoError(t, f.c.dispatch(handshakeBody(constants.MCProtocol, constants.IntentLogin)))
	case constants.Play:
		f.inState(t, constants.Login)
		require.NoError(t, f.c.dispatch(protocol.Marshal(constants.LoginStartServerbound, packet.String("Alice"))))
		f.conn.out.Reset()
	}
	require.Equal(t, state, f.c.State())
}

// next pops one clientbound packet from the recorded output.
func (f *fixture) next(t *testing.T) (int32, *protocol.Reader) {
	t.Helper()
	return popPacket(t, &f.conn.out)
}

func popPacket(t *testing.T, buf *bytes.Buffer) (int32, *protocol.Reader) {
	t.Helper()
	frame, n, err := protocol.ExtractFrame(buf.Bytes())
	require.NoError(t, err)
	frame = append([]byte(nil), frame...)
	buf.Next(n)
	r := protocol.NewReader(frame)
	id, err := r.VarInt()
	require.NoError(t, err)
	return id, r
}

func handshakeBody(version, intent int32) []byte {
	return protocol.Marshal(constants.HandshakeServerbound,
		packet.VarInt(version),
		packet.String("localhost"),
		packet.UnsignedShort(25565),
		packet.VarInt(intent),
	)
}
