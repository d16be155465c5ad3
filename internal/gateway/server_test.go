package gateway

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"errors"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusion32/forgottenserver/internal/config"
	"github.com/fusion32/forgottenserver/internal/crypto"
	"github.com/fusion32/forgottenserver/internal/game"
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

func testConfig() config.Gateway {
	cfg := config.DefaultGateway()
	cfg.ServerName = "TestWorld"
	cfg.MaxPacketsPerSecond = 0
	return cfg
}

type fakeSessions struct {
	token   string
	guid    uint32
	player  *model.Player
	stamped chan struct{}
}

func (f *fakeSessions) LoadSession(_ context.Context, token, characterName string) (*game.Session, error) {
	if token != f.token || characterName != "Hero" {
		return nil, nil
	}
	return &game.Session{AccountID: 77, CharacterID: f.guid, BoundIP: "127.0.0.1"}, nil
}

func (f *fakeSessions) PreloadPlayer(_ context.Context, p *model.Player) (bool, error) {
	p.CreatureName = "Hero"
	p.AccountID = 77
	p.AccountType = model.AccountTypeNormal
	f.player = p
	return true, nil
}

func (f *fakeSessions) LoadPlayerByID(_ context.Context, p *model.Player, _ uint32) (bool, error) {
	p.Level = 8
	p.HP = 150
	p.MaxHP = 150
	p.LoginPosition = model.Position{X: 100, Y: 100, Z: 7}
	p.TemplePosition = p.LoginPosition
	return true, nil
}

func (f *fakeSessions) VIPEntries(context.Context, uint32) ([]model.VIPEntry, error) {
	return nil, nil
}

func (f *fakeSessions) StampLogin(context.Context, uint32, int64, string) error {
	select {
	case <-f.stamped:
	default:
		close(f.stamped)
	}
	return nil
}

type fakeBans struct{}

func (fakeBans) IPBanInfo(context.Context, string) (*game.BanInfo, error)       { return nil, nil }
func (fakeBans) AccountBanInfo(context.Context, uint32) (*game.BanInfo, error)  { return nil, nil }
func (fakeBans) IsPlayerNamelocked(context.Context, uint32) (bool, error)       { return false, nil }

// fakeOps panics on anything the tests don't exercise.
type fakeOps struct {
	game.PlayerOps
}

func (fakeOps) OnLogout(*model.Player) bool { return true }

type handshakeEnv struct {
	srv      *Server
	world    *game.World
	exec     *game.Executor
	sessions *fakeSessions
	rsaKey   *crypto.RSAKey
	addr     net.Addr
}

func startTestServer(t *testing.T) *handshakeEnv {
	t.Helper()

	priv, err := rsa.GenerateKey(rand.Reader, 1024)
	require.NoError(t, err)
	rsaKey, err := crypto.NewRSAKey(priv)
	require.NoError(t, err)

	world := game.NewWorld(game.WorldTypePvP)
	world.SetState(game.StateNormal)
	world.SetTile(model.Position{X: 100, Y: 100, Z: 7}, &model.Tile{
		Ground: &model.Item{ClientID: 4526},
	})

	exec := game.NewExecutor(64)
	sessions := &fakeSessions{token: "session-token", guid: 42, stamped: make(chan struct{})}

	srv := NewServer(testConfig(), rsaKey, exec, world, fakeOps{}, sessions, fakeBans{})

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	go func() { _ = exec.Run(ctx) }()
	go func() { _ = srv.Serve(ctx, ln) }()

	return &handshakeEnv{
		srv:      srv,
		world:    world,
		exec:     exec,
		sessions: sessions,
		rsaKey:   rsaKey,
		addr:     ln.Addr(),
	}
}

// clientLogin runs the client side of the handshake and returns the open
// socket and the negotiated XTEA key.
func clientLogin(t *testing.T, env *handshakeEnv) (net.Conn, crypto.XTEAKey) {
	t.Helper()

	conn, err := net.Dial("tcp", env.addr.String())
	require.NoError(t, err)

	_, err = conn.Write([]byte("TestWorld\n"))
	require.NoError(t, err)

	// Challenge.
	var challenge protocol.NetworkMessage
	require.NoError(t, protocol.ReadFrame(conn, &challenge, nil, 0))
	require.Equal(t, byte(0x1F), challenge.GetByte())
	uptime := challenge.GetU32()
	random := challenge.GetByte()
	require.False(t, challenge.IsOverrun())

	key := crypto.XTEAKey{0x11111111, 0x22222222, 0x33333333, 0x44444444}

	// RSA block: zero byte, key words, gamemaster flag, token, name, echo.
	var rsaPlain protocol.NetworkMessage
	rsaPlain.AddByte(0)
	rsaPlain.AddU32(key[0])
	rsaPlain.AddU32(key[1])
	rsaPlain.AddU32(key[2])
	rsaPlain.AddU32(key[3])
	rsaPlain.AddByte(0)
	rsaPlain.AddString(base64.StdEncoding.EncodeToString([]byte("session-token")))
	rsaPlain.AddString("Hero")
	rsaPlain.AddU32(uptime)
	rsaPlain.AddByte(random)

	block := make([]byte, crypto.RSABlockSize)
	copy(block, rsaPlain.WrittenBuf())
	require.NoError(t, env.rsaKey.EncryptNoPadding(block))

	// The plaintext head must pad the packet to exactly 252 bytes.
	checksum := make([]byte, 105)
	for i := range checksum {
		checksum[i] = 'a'
	}

	login := &protocol.OutputMessage{}
	login.Reset()
	login.AddByte(0x0A)
	login.AddU16(terminalOTClientLinux)
	login.AddU16(clientVersionMin)
	login.AddU32(0)
	login.AddString(clientVersionStr)
	login.AddString(string(checksum))
	login.AddByte(0)
	login.AddBytes(block)
	require.Equal(t, loginPacketLen, login.OutputLen())

	require.NoError(t, protocol.WrapFrame(login, nil, 0))
	_, err = conn.Write(login.OutputBuf())
	require.NoError(t, err)

	return conn, key
}

func TestHandshakeWrongWorldNameAborts(t *testing.T) {
	env := startTestServer(t)

	conn, err := net.Dial("tcp", env.addr.String())
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte("OtherWorld\n"))
	require.NoError(t, err)

	// The server aborts without sending a single byte.
	conn.SetReadDeadline(time.Now().Add(3 * time.Second))
	buf := make([]byte, 1)
	n, err := conn.Read(buf)
	assert.Equal(t, 0, n)
	assert.Error(t, err)
	assert.True(t, errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) ||
		isConnReset(err), "expected a hard close, got %v", err)
}

func isConnReset(err error) bool {
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func TestHandshakeAdmitsValidSession(t *testing.T) {
	env := startTestServer(t)

	conn, _ := clientLogin(t, env)
	defer conn.Close()

	select {
	case <-env.sessions.stamped:
	case <-time.After(3 * time.Second):
		t.Fatal("login never completed")
	}

	// StampLogin runs after placement, so a task posted now observes the
	// fully admitted player.
	done := make(chan *model.Player, 1)
	env.exec.Post(func() { done <- env.world.PlayerByGUID(42) })
	select {
	case p := <-done:
		require.NotNil(t, p)
		assert.Equal(t, "Hero", p.Name())
		assert.Equal(t, "127.0.0.1", p.LastIP)
	case <-time.After(2 * time.Second):
		t.Fatal("game thread stalled")
	}
}

func TestGracefulCloseDrainsQueueInOrder(t *testing.T) {
	env := startTestServer(t)

	conn, key := clientLogin(t, env)
	defer conn.Close()

	select {
	case <-env.sessions.stamped:
	case <-time.After(3 * time.Second):
		t.Fatal("login never completed")
	}

	// Login already queued the extended-opcode enable packet for this OTClient
	// terminal. Enqueue three packets on the game thread, then detach: all of
	// them must arrive, in order, before the server closes the socket.
	env.exec.Post(func() {
		player := env.sessions.player
		c := player.Session.(*Connection)
		env.srv.SendPing(c)
		env.srv.SendPingBack(c)
		env.srv.SendSessionEnd(c, sessionEndLogout)
		Detach(c)
	})

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))

	var payload []byte
	expectSeq := uint32(1) // the challenge consumed server sequence 0
	for {
		var frame protocol.NetworkMessage
		err := protocol.ReadFrame(conn, &frame, &key, expectSeq)
		if err != nil {
			assert.True(t, errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF),
				"stream must end cleanly, got %v", err)
			break
		}
		expectSeq++
		payload = append(payload, frame.RemainingBuf()...)
	}

	assert.Equal(t, []byte{0x32, 0x00, 0x00, 0x00, 0x1D, 0x1E, 0x18, sessionEndLogout}, payload)
}
