package terminal

import "strings"

// ANSI SGR sequences.
const (
	Reset = "\033[0m"
	Bold  = "\033[1m"

	FgBlack   = "\033[30m"
	FgRed     = "\033[31m"
	FgGreen   = "\033[32m"
	FgYellow  = "\033[33m"
	FgBlue    = "\033[34m"
	FgMagenta = "\033[35m"
	FgCyan    = "\033[36m"
	FgWhite   = "\033[37m"

	FgGray          = "\033[1;30m"
	FgBrightRed     = "\033[1;31m"
	FgBrightGreen   = "\033[1;32m"
	FgBrightYellow  = "\033[1;33m"
	FgBrightBlue    = "\033[1;34m"
	FgBrightMagenta = "\033[1;35m"
	FgBrightCyan    = "\033[1;36m"
	FgBrightWhite   = "\033[1;37m"
)

var colorCodes = map[string]string{
	"black":         FgBlack,
	"red":           FgRed,
	"green":         FgGreen,
	"yellow":        FgYellow,
	"blue":          FgBlue,
	"magenta":       FgMagenta,
	"cyan":          FgCyan,
	"white":         FgWhite,
	"gray":          FgGray,
	"brightred":     FgBrightRed,
	"brightgreen":   FgBrightGreen,
	"brightyellow":  FgBrightYellow,
	"brightblue":    FgBrightBlue,
	"brightmagenta": FgBrightMagenta,
	"brightcyan":    FgBrightCyan,
	"brightwhite":   FgBrightWhite,
}

// ColorCode returns the SGR sequence for a palette colour name.
// Unknown names map to white.
func ColorCode(name string) string {
	if code, ok := colorCodes[strings.ToLower(name)]; ok {
		return code
	}
	return FgWhite
}

// Paint wraps text in the named colour and a reset.
func Paint(color, text string) string {
	return ColorCode(color) + text + Reset
}

// ClearScreen sends the ANSI clear-screen sequence and homes the cursor.
func ClearScreen() string {
	return "\033[2J\033[1;1H"
}
