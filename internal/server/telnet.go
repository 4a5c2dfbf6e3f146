package server

import (
	"bufio"
	"errors"
	"io"
	"net"
	"sync"
)

// Telnet protocol constants.
const (
	IAC  byte = 255 // Interpret As Command
	DONT byte = 254
	DO   byte = 253
	WONT byte = 252
	WILL byte = 251
	SB   byte = 250 // Sub-negotiation Begin
	SE   byte = 240 // Sub-negotiation End
	GA   byte = 249 // Go Ahead

	// Telnet options
	OptEcho    byte = 1  // Echo
	OptSGA     byte = 3  // Suppress Go Ahead
	OptTType   byte = 24 // Terminal Type
	OptLinemod byte = 34 // Linemode
)

const maxSubnegLen = 1024

var errSubnegTooLong = errors.New("telnet subnegotiation too long")

// TelnetConn wraps a raw TCP connection with telnet protocol handling.
// IAC sequences are stripped from the input stream and literal 0xFF bytes are
// escaped on output.
type TelnetConn struct {
	conn   net.Conn
	reader *bufio.Reader
	mu     sync.Mutex

	termMu   sync.Mutex
	termType string
}

// NewTelnetConn wraps a raw TCP connection with telnet protocol handling.
func NewTelnetConn(conn net.Conn) *TelnetConn {
	return &TelnetConn{
		conn:   conn,
		reader: bufio.NewReaderSize(conn, 1024),
	}
}

// Negotiate sends the initial option negotiation: the server echoes, go-ahead
// is suppressed both ways, and linemode is refused so input arrives a
// character at a time.
func (tc *TelnetConn) Negotiate() error {
	for _, opt := range [][2]byte{
		{WILL, OptEcho},
		{WILL, OptSGA},
		{DO, OptSGA},
		{DONT, OptLinemod},
		{DO, OptTType},
	} {
		if err := tc.sendCommand(opt[0], opt[1]); err != nil {
			return err
		}
	}
	return nil
}

// TermType returns the terminal type the client reported, if any.
func (tc *TelnetConn) TermType() string {
	tc.termMu.Lock()
	defer tc.termMu.Unlock()
	return tc.termType
}

func (tc *TelnetConn) sendCommand(cmd, option byte) error {
	tc.mu.Lock()
	defer tc.mu.Unlock()
	_, err := tc.conn.Write([]byte{IAC, cmd, option})
	return err
}

// ReadByte reads a single data byte, consuming any telnet commands before it.
func (tc *TelnetConn) ReadByte() (byte, error) {
	for {
		b, err := tc.reader.ReadByte()
		if err != nil {
			return 0, err
		}
		if b != IAC {
			return b, nil
		}

		cmd, err := tc.reader.ReadByte()
		if err != nil {
			return 0, err
		}

		switch cmd {
		case IAC:
			return IAC, nil
		case WILL, WONT:
			opt, err := tc.reader.ReadByte()
			if err != nil {
				return 0, err
			}
			tc.handleWillWont(cmd, opt)
		case DO, DONT:
			opt, err := tc.reader.ReadByte()
			if err != nil {
				return 0, err
			}
			tc.handleDoDont(cmd, opt)
		case SB:
			if err := tc.handleSubNegotiation(); err != nil {
				return 0, err
			}
		default:
			// GA and anything unknown carry no data.
		}
	}
}

// Read implements io.Reader, filtering telnet protocol from the data stream.
func (tc *TelnetConn) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		b, err := tc.ReadByte()
		if err != nil {
			if n > 0 {
				return n, nil
			}
			return 0, err
		}
		p[n] = b
		n++

		if tc.reader.Buffered() == 0 {
			break
		}
	}
	return n, nil
}

// Write sends data to the client, escaping any literal 0xFF bytes.
func (tc *TelnetConn) Write(p []byte) (int, error) {
	tc.mu.Lock()
	defer tc.mu.Unlock()

	written := 0
	for i, b := range p {
		if b != IAC {
			continue
		}
		if i > written {
			if _, err := tc.conn.Write(p[written:i]); err != nil {
				return written, err
			}
		}
		if _, err := tc.conn.Write([]byte{IAC, IAC}); err != nil {
			return i, err
		}
		written = i + 1
	}
	if written < len(p) {
		if _, err := tc.conn.Write(p[written:]); err != nil {
			return written, err
		}
	}
	return len(p), nil
}

// Close closes the underlying connection.
func (tc *TelnetConn) Close() error {
	return tc.conn.Close()
}

// RemoteAddr returns the remote address of the connection.
func (tc *TelnetConn) RemoteAddr() net.Addr {
	return tc.conn.RemoteAddr()
}

func (tc *TelnetConn) handleWillWont(cmd, opt byte) {
	switch opt {
	case OptTType:
		if cmd == WILL {
			// SB TTYPE SEND SE
			tc.mu.Lock()
			_, _ = tc.conn.Write([]byte{IAC, SB, OptTType, 1, IAC, SE})
			tc.mu.Unlock()
		}
	case OptLinemod:
		if cmd == WILL {
			_ = tc.sendCommand(DONT, OptLinemod)
		}
	}
}

func (tc *TelnetConn) handleDoDont(cmd, opt byte) {
	switch opt {
	case OptEcho, OptSGA:
		// Already offered.
	default:
		if cmd == DO {
			_ = tc.sendCommand(WONT, opt)
		}
	}
}

// handleSubNegotiation reads up to IAC SE and records the terminal type.
func (tc *TelnetConn) handleSubNegotiation() error {
	var buf []byte
	for {
		b, err := tc.reader.ReadByte()
		if err != nil {
			return err
		}
		if b == IAC {
			next, err := tc.reader.ReadByte()
			if err != nil {
				return err
			}
			if next != IAC {
				break
			}
		}
		buf = append(buf, b)
		if len(buf) > maxSubnegLen {
			return errSubnegTooLong
		}
	}

	// TTYPE IS <name>
	if len(buf) >= 2 && buf[0] == OptTType && buf[1] == 0 {
		term := string(buf[2:])
		if len(term) > 64 {
			term = term[:64]
		}
		tc.termMu.Lock()
		tc.termType = term
		tc.termMu.Unlock()
	}
	return nil
}

var _ io.ReadWriteCloser = (*TelnetConn)(nil)
