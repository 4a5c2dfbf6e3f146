package terminal

import (
	"io"
	"strings"
)

// Terminal provides line-oriented read/write over a raw connection. It
// handles CRLF line endings and server-side echo.
type Terminal struct {
	rwc         io.ReadWriteCloser
	ANSIEnabled bool

	// lastCR swallows the LF or NUL that telnet clients send after CR.
	lastCR bool
}

// New creates a new Terminal wrapping the given ReadWriteCloser.
func New(rwc io.ReadWriteCloser, ansiEnabled bool) *Terminal {
	return &Terminal{
		rwc:         rwc,
		ANSIEnabled: ansiEnabled,
	}
}

// Close closes the underlying connection.
func (t *Terminal) Close() error {
	return t.rwc.Close()
}

// Send writes raw text to the terminal.
func (t *Terminal) Send(data string) error {
	_, err := io.WriteString(t.rwc, data)
	return err
}

// SendLn writes a line of text followed by CR+LF.
func (t *Terminal) SendLn(text string) error {
	return t.Send(text + "\r\n")
}

// SendText writes multi-line text, normalising every line ending to CR+LF.
// A trailing CR+LF is always written.
func (t *Terminal) SendText(text string) error {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\n", "\r\n")
	return t.SendLn(text)
}

// Paint colours text when ANSI is enabled and returns it unchanged otherwise.
func (t *Terminal) Paint(color, text string) string {
	if !t.ANSIEnabled {
		return text
	}
	return Paint(color, text)
}

// ReadByte reads a single byte from the terminal.
func (t *Terminal) ReadByte() (byte, error) {
	buf := make([]byte, 1)
	_, err := io.ReadFull(t.rwc, buf)
	return buf[0], err
}

// GetLine reads a line of input up to maxLen bytes, with echo.
// Returns the entered string without the line terminator.
func (t *Terminal) GetLine(maxLen int) (string, error) {
	var buf []byte
	for {
		b, err := t.ReadByte()
		if err != nil {
			return string(buf), err
		}

		if t.lastCR {
			t.lastCR = false
			if b == '\n' || b == 0 {
				continue
			}
		}

		switch b {
		case '\r', '\n':
			t.lastCR = b == '\r'
			t.Send("\r\n")
			return string(buf), nil
		case 8, 127: // backspace or delete
			if len(buf) > 0 {
				buf = buf[:len(buf)-1]
				t.Send("\b \b")
			}
		default:
			if b >= 32 && len(buf) < maxLen {
				buf = append(buf, b)
				t.Send(string(b))
			}
		}
	}
}
