// Package command turns input lines into BBS operations.
package command

import (
	"strings"
	"unicode"
)

// Separator splits a short structured prefix from free-form trailing text in
// SENDMAIL, UPLOADINFO and FILEDESC.
const Separator = "///"

// Parse splits a line into an upper-cased command name and its
// whitespace-separated arguments. Blank input yields an empty command.
func Parse(line string) (string, []string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	return strings.ToUpper(fields[0]), fields[1:]
}

// Fields takes up to n leading whitespace-separated tokens from s and returns
// them with the remainder, which keeps its inner spacing. The remainder
// starts after the whitespace run that follows the last token.
func Fields(s string, n int) ([]string, string) {
	var out []string
	rest := strings.TrimLeftFunc(s, unicode.IsSpace)
	for len(out) < n && rest != "" {
		end := strings.IndexFunc(rest, unicode.IsSpace)
		if end < 0 {
			out = append(out, rest)
			return out, ""
		}
		out = append(out, rest[:end])
		rest = strings.TrimLeftFunc(rest[end:], unicode.IsSpace)
	}
	return out, rest
}

// Rest returns the raw text after the command token.
func Rest(line string) string {
	_, rest := Fields(line, 1)
	return rest
}

// CutSeparator splits s at the first Separator. found is false when s has no
// separator, in which case before is all of s.
func CutSeparator(s string) (before, after string, found bool) {
	return strings.Cut(s, Separator)
}
