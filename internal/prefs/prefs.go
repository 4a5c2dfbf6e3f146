// Package prefs resolves per-user display colours and persists them.
package prefs

import "strings"

// Customisable UI elements.
const (
	ElementPrompt    = "prompt"
	ElementUsername  = "username"
	ElementTimestamp = "timestamp"
)

// Fallback is used when a stored colour name is unknown.
const Fallback = "white"

// Elements lists the customisable elements in display order.
var Elements = []string{ElementPrompt, ElementUsername, ElementTimestamp}

// Palette lists the colour names a user may choose, in display order.
var Palette = []string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white", "gray",
	"brightred", "brightgreen", "brightyellow", "brightblue", "brightmagenta", "brightcyan", "brightwhite",
}

var defaults = map[string]string{
	ElementPrompt:    "green",
	ElementUsername:  "cyan",
	ElementTimestamp: "yellow",
}

// Defaults returns a fresh copy of the compiled-in colour table.
func Defaults() map[string]string {
	out := make(map[string]string, len(defaults))
	for k, v := range defaults {
		out[k] = v
	}
	return out
}

// ValidElement reports whether name is a customisable element.
func ValidElement(name string) bool {
	_, ok := defaults[name]
	return ok
}

// ValidColor reports whether name is in the palette.
func ValidColor(name string) bool {
	for _, c := range Palette {
		if c == name {
			return true
		}
	}
	return false
}

// Resolve returns the colour name for an element: the user's override, else
// the default, else Fallback. Unknown names resolve to Fallback.
func Resolve(colors map[string]string, element string) string {
	c, ok := colors[element]
	if !ok || c == "" {
		c, ok = defaults[element]
		if !ok {
			return Fallback
		}
	}
	c = strings.ToLower(c)
	if !ValidColor(c) {
		return Fallback
	}
	return c
}
