package gateway

import (
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fusion32/forgottenserver/internal/crypto"
	"github.com/fusion32/forgottenserver/internal/model"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

// connState is the connection lifecycle. It is the single source of truth
// for whether inbound or outbound work may progress; transitions are one-way
// and race-free through compare-and-swap.
type connState int32

const (
	stateLogin connState = iota
	stateOK
	stateClose // graceful: the writer drains the queue, then exits
	stateAbort // hard: both tasks exit immediately
)

func (s connState) String() string {
	switch s {
	case stateLogin:
		return "login"
	case stateOK:
		return "ok"
	case stateClose:
		return "close"
	case stateAbort:
		return "abort"
	default:
		return "unknown"
	}
}

// Connection is the per-client record. Field groups follow their owner:
// sequence counters and socket belong to the network side, the player and
// known-creature set to the game thread, and the output queue is shared
// under its mutex. The key and terminal fields are written once during the
// handshake and read-only afterwards.
type Connection struct {
	srv  *Server
	conn net.Conn

	state atomic.Int32

	// Network side only.
	serverSequence uint32
	clientSequence uint32
	packetsRecv    uint32
	recvWindow     time.Time

	// Set once in the handshake.
	xteaKey         crypto.XTEAKey
	peer            string
	debugName       string
	terminalType    int
	terminalVersion int
	isGamemaster    bool

	// Shared between network and game threads.
	outputMu   sync.Mutex
	outputHead *protocol.OutputMessage

	// Game thread only.
	player              *model.Player
	debugAssertReceived bool
	knownCreatures      []uint32

	loginTimer *time.Timer
	loginDone  chan struct{}
	loginOnce  sync.Once
	closeOnce  sync.Once
}

func newConnection(srv *Server, conn net.Conn) *Connection {
	c := &Connection{
		srv:       srv,
		conn:      conn,
		loginDone: make(chan struct{}),
	}
	if addr, ok := conn.RemoteAddr().(*net.TCPAddr); ok {
		c.peer = addr.IP.String()
	} else if host, _, err := net.SplitHostPort(conn.RemoteAddr().String()); err == nil {
		c.peer = host
	} else {
		c.peer = conn.RemoteAddr().String()
	}
	c.debugName = c.peer
	c.state.Store(int32(stateLogin))
	c.recvWindow = time.Now()
	return c
}

// State returns the current lifecycle state.
func (c *Connection) State() connState {
	return connState(c.state.Load())
}

func (c *Connection) transition(from, to connState) bool {
	return c.state.CompareAndSwap(int32(from), int32(to))
}

// resolveLogin finishes the handshake phase: the LOGIN→to transition cancels
// the login timer and releases the handshake task. Safe to race with the
// timer itself.
func (c *Connection) resolveLogin(to connState) bool {
	if !c.transition(stateLogin, to) {
		return false
	}
	if c.loginTimer != nil {
		c.loginTimer.Stop()
	}
	c.loginOnce.Do(func() { close(c.loginDone) })
	return true
}

// Peer returns the remote address, set before the handshake.
func (c *Connection) Peer() string { return c.peer }

// TerminalType returns the client kind reported in the login packet.
func (c *Connection) TerminalType() int { return c.terminalType }

// TerminalVersion returns the client protocol version.
func (c *Connection) TerminalVersion() int { return c.terminalVersion }

// Player returns the attached player. Game thread only.
func (c *Connection) Player() *model.Player { return c.player }

// WriteToOutputBuffer appends a built packet to the connection's output
// queue. Callable from any thread; the lock covers only the append.
func (c *Connection) WriteToOutputBuffer(msg *protocol.NetworkMessage) {
	const maxPadding = 8

	c.outputMu.Lock()
	defer c.outputMu.Unlock()

	if c.outputHead == nil {
		c.outputHead = c.srv.pool.Get()
	}

	tail := c.outputHead
	for tail.Next != nil {
		tail = tail.Next
	}

	if !tail.CanAdd(msg.WrittenLen() + maxPadding) {
		tail.Next = c.srv.pool.Get()
		tail = tail.Next
	}

	tail.Append(msg)
}

// popOutput takes the head of the output queue, or nil.
func (c *Connection) popOutput() *protocol.OutputMessage {
	c.outputMu.Lock()
	defer c.outputMu.Unlock()

	out := c.outputHead
	if out != nil {
		c.outputHead = out.Next
		out.Next = nil
	}
	return out
}

// closeSocket shuts the socket exactly once.
func (c *Connection) closeSocket() {
	c.closeOnce.Do(func() { c.conn.Close() })
}

// abort hard-closes the connection: no farewell, queue not drained. Safe
// from any thread; detach is scheduled on the game thread.
func (c *Connection) abort() {
	c.resolveLogin(stateAbort)
	c.state.Store(int32(stateAbort))
	c.closeSocket()
	c.srv.exec.Post(func() { Detach(c) })
}

// close gracefully winds the connection down: the writer drains the output
// queue before the socket goes away.
func (c *Connection) close() {
	if !c.resolveLogin(stateClose) {
		c.transition(stateOK, stateClose)
	}
	c.srv.exec.Post(func() { Detach(c) })
}

// Detach is the exclusive path for undoing the connection⇄player relation.
// Game thread only. The local handle keeps the player alive until its
// back-pointer is observed cleared.
func Detach(c *Connection) {
	c.transition(stateOK, stateClose)

	if player := c.player; player != nil {
		c.player = nil
		player.Session = nil
		c.srv.eng.ReleaseCreature(player)
	}
}
