package ansi

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Expand replaces {{KEY}} and {{KEY,N}} placeholders with values from vars.
// With a width N the value is padded or truncated to exactly N runes so
// the surrounding art keeps its layout. Unknown keys are left as written.
func Expand(data []byte, vars map[string]string) []byte {
	var out bytes.Buffer
	out.Grow(len(data))

	for i := 0; i < len(data); {
		if data[i] == '{' && i+1 < len(data) && data[i+1] == '{' {
			end := placeholderEnd(data, i+2)
			if end != -1 {
				key, width := parsePlaceholder(string(data[i+2 : end]))
				if v, ok := vars[key]; ok {
					out.WriteString(fit(v, width))
					i = end + 2
					continue
				}
			}
		}
		out.WriteByte(data[i])
		i++
	}
	return out.Bytes()
}

// Strip removes CSI and other ESC sequences, leaving printable text.
func Strip(data []byte) []byte {
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i++ {
		if data[i] != 0x1b {
			out = append(out, data[i])
			continue
		}
		if i+1 < len(data) && data[i+1] == '[' {
			i += 2
			for i < len(data) && (data[i] < 0x40 || data[i] > 0x7e) {
				i++
			}
			continue
		}
		i++
	}
	return out
}

func placeholderEnd(data []byte, start int) int {
	for i := start; i+1 < len(data); i++ {
		if data[i] == '}' && data[i+1] == '}' {
			return i
		}
		// placeholders are literal text; never span an escape sequence
		if data[i] == 0x1b || data[i] == '\n' {
			return -1
		}
	}
	return -1
}

func parsePlaceholder(payload string) (key string, width int) {
	parts := strings.SplitN(strings.TrimSpace(payload), ",", 2)
	key = strings.ToUpper(strings.TrimSpace(parts[0]))
	if len(parts) == 2 {
		if n, err := strconv.Atoi(strings.TrimSpace(parts[1])); err == nil && n > 0 {
			width = n
		}
	}
	return key, width
}

func fit(s string, width int) string {
	if width <= 0 {
		return s
	}
	n := utf8.RuneCountInString(s)
	if n >= width {
		return string([]rune(s)[:width])
	}
	return s + strings.Repeat(" ", width-n)
}
