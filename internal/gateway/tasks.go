package gateway

import (
	"bufio"
	"errors"
	"io"
	"log/slog"
	"time"

	"github.com/fusion32/forgottenserver/internal/protocol"
)

const (
	readTimeout      = 15 * time.Second
	writeTimeout     = 15 * time.Second
	autoSendInterval = 10 * time.Millisecond
)

var errWorldNameTooLong = errors.New("gateway: world name too long")

// readerLoop pulls frames off the socket while the connection is OK. Each
// frame's payload crosses to the game thread as one task, preserving arrival
// order. Clean EOF closes gracefully, everything else aborts.
func (s *Server) readerLoop(c *Connection, br *bufio.Reader) {
	var input protocol.NetworkMessage

	for c.State() == stateOK {
		c.conn.SetReadDeadline(time.Now().Add(readTimeout))

		if err := protocol.ReadFrame(br, &input, &c.xteaKey, c.clientSequence); err != nil {
			if errors.Is(err, io.EOF) {
				c.close()
			} else {
				if c.State() == stateOK {
					slog.Debug("read failed", "remote", c.peer, "error", err)
				}
				c.abort()
			}
			return
		}
		c.clientSequence++

		if s.overPacketRate(c) {
			slog.Info("disconnecting for exceeding packet rate", "remote", c.peer)
			c.close()
			return
		}

		if input.RemainingLen() == 0 {
			continue
		}

		// The payload is copied out so the game thread never touches the
		// connection's read buffer.
		data := make([]byte, input.RemainingLen())
		copy(data, input.RemainingBuf())
		s.exec.Post(func() {
			s.parsePacket(c, data)
		})
	}
}

// overPacketRate applies the per-second inbound packet ceiling.
func (s *Server) overPacketRate(c *Connection) bool {
	limit := s.cfg.MaxPacketsPerSecond
	if limit == 0 {
		return false
	}

	c.packetsRecv++
	elapsed := time.Since(c.recvWindow)
	if elapsed >= 2*time.Second {
		c.recvWindow = time.Now()
		c.packetsRecv = 0
		return false
	}

	seconds := uint32(elapsed/time.Second) + 1
	return c.packetsRecv/seconds > limit
}

// writerLoop drains the output queue one frame per iteration while the
// connection is OK or CLOSE. A drained queue in CLOSE means the farewell is
// out: the socket is shut and the task exits. Exit always schedules a detach
// so half-admitted players are released on every path.
func (s *Server) writerLoop(c *Connection) {
	defer func() {
		c.closeSocket()
		s.exec.Post(func() { Detach(c) })
	}()

	for {
		state := c.State()
		if state != stateOK && state != stateClose {
			return
		}

		out := c.popOutput()
		if out == nil {
			if state == stateClose {
				return
			}
			time.Sleep(autoSendInterval)
			continue
		}

		err := protocol.WrapFrame(out, &c.xteaKey, c.serverSequence)
		if err == nil {
			c.serverSequence++
			c.conn.SetWriteDeadline(time.Now().Add(writeTimeout))
			_, err = c.conn.Write(out.OutputBuf())
		}
		s.pool.Put(out)

		if err != nil {
			c.abort()
			return
		}
	}
}
