package gateway

import (
	"bufio"
	"encoding/base64"
	"log/slog"
	"time"

	"github.com/fusion32/forgottenserver/internal/crypto"
	"github.com/fusion32/forgottenserver/internal/protocol"
)

const (
	loginTimeout   = 5 * time.Second
	maxWorldName   = 32
	loginPacketLen = 252
)

// handshake runs the pre-admission exchange on the network side:
//
//	SERVER <- CLIENT   world name, LF terminated
//	SERVER -> CLIENT   challenge (uptime + random byte), framed without key
//	SERVER <- CLIENT   login packet, framed without key, RSA block inside
//
// The login packet is handed to the game thread for admission; the task then
// parks until the login resolves or the 5 second deadline fires, and spawns
// the reader/writer pair on success.
func (s *Server) handshake(c *Connection, br *bufio.Reader) {
	c.loginTimer = time.AfterFunc(loginTimeout, func() {
		if c.State() == stateLogin {
			c.abort()
		}
	})

	// SERVER <- CLIENT (WORLDNAME)
	worldName, err := readWorldName(br)
	if err != nil || worldName != s.cfg.ServerName {
		slog.Debug("bad world greeting", "remote", c.peer, "error", err)
		c.abort()
		return
	}

	// SERVER -> CLIENT (CHALLENGE)
	challengeUptime := s.eng.UptimeSeconds()
	challengeRandom := crypto.RandByte()
	{
		challenge := s.pool.Get()
		challenge.AddByte(0x1F)
		challenge.AddU32(challengeUptime)
		challenge.AddByte(challengeRandom)
		err := protocol.WrapFrame(challenge, nil, c.serverSequence)
		if err == nil {
			c.conn.SetWriteDeadline(time.Now().Add(loginTimeout))
			_, err = c.conn.Write(challenge.OutputBuf())
		}
		s.pool.Put(challenge)
		if err != nil {
			c.abort()
			return
		}
		c.serverSequence++
	}

	// SERVER <- CLIENT (LOGIN)
	{
		var input protocol.NetworkMessage
		c.conn.SetReadDeadline(time.Now().Add(loginTimeout))
		if err := protocol.ReadFrame(br, &input, nil, c.clientSequence); err != nil {
			c.abort()
			return
		}
		c.clientSequence++

		if input.RemainingLen() != loginPacketLen {
			c.abort()
			return
		}
		if input.GetByte() != 0x0A {
			c.abort()
			return
		}

		c.terminalType = int(input.GetU16())
		c.terminalVersion = int(input.GetU16())
		input.GetU32()    // 32-bit terminal version
		input.GetString() // version string
		input.GetString() // asset checksum
		input.GetByte()

		rsaBlock := input.RemainingBuf()
		if len(rsaBlock) < crypto.RSABlockSize ||
			s.rsa.DecryptNoPadding(rsaBlock[:crypto.RSABlockSize]) != nil ||
			input.GetByte() != 0 {
			c.abort()
			return
		}

		c.xteaKey[0] = input.GetU32()
		c.xteaKey[1] = input.GetU32()
		c.xteaKey[2] = input.GetU32()
		c.xteaKey[3] = input.GetU32()

		c.isGamemaster = input.GetByte() != 0
		sessionToken := decodeBase64(input.GetString())
		characterName := input.GetString()

		// A consistency check more than a challenge: the client echoes what
		// the server sent.
		if input.GetU32() != challengeUptime ||
			input.GetByte() != challengeRandom ||
			input.IsOverrun() {
			c.abort()
			return
		}

		c.debugName = characterName

		s.exec.Post(func() {
			s.performLogin(c, sessionToken, characterName)
		})
	}

	select {
	case <-c.loginDone:
	case <-time.After(loginTimeout + time.Second):
		// The login timer aborts the socket on its own; this is a backstop
		// so the task never leaks.
		c.abort()
		return
	}

	switch c.State() {
	case stateOK:
		go s.readerLoop(c, br)
		go s.writerLoop(c)
	case stateClose:
		// Login refused with a farewell packet queued: drain it.
		go s.writerLoop(c)
	default:
		c.abort()
	}
}

// readWorldName consumes the LF-terminated greeting. Anything over-long or
// missing its terminator is a protocol violation.
func readWorldName(br *bufio.Reader) (string, error) {
	name := make([]byte, 0, maxWorldName)
	for {
		b, err := br.ReadByte()
		if err != nil {
			return "", err
		}
		if b == '\n' {
			return string(name), nil
		}
		if len(name) >= maxWorldName {
			return "", errWorldNameTooLong
		}
		name = append(name, b)
	}
}

func decodeBase64(s string) string {
	decoded, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return ""
	}
	return string(decoded)
}
