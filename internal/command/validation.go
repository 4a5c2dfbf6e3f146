package command

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Input limits.
const (
	MaxUsernameLen = 30
	MaxPasswordLen = 128
	MaxSubjectLen  = 128
	MaxBodyLen     = 8192
	MaxFilenameLen = 255
	MaxBoardRefLen = 64
)

// validateLength checks UTF-8 validity and a rune-count bound.
func validateLength(value, field string, maxLen int) error {
	if !utf8.ValidString(value) {
		return fmt.Errorf("%s contains invalid characters", field)
	}
	if utf8.RuneCountInString(value) > maxLen {
		return fmt.Errorf("%s too long (max %d characters)", field, maxLen)
	}
	return nil
}

func validateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("username cannot be empty")
	}
	if err := validateLength(username, "username", MaxUsernameLen); err != nil {
		return err
	}
	for _, r := range username {
		if unicode.IsControl(r) {
			return fmt.Errorf("username contains control characters")
		}
	}
	return nil
}

func validatePassword(password string) error {
	if password == "" {
		return fmt.Errorf("password cannot be empty")
	}
	return validateLength(password, "password", MaxPasswordLen)
}

// validateFilename rejects path separators, traversal and control characters.
func validateFilename(filename string) error {
	if err := validateLength(filename, "filename", MaxFilenameLen); err != nil {
		return err
	}
	if strings.Contains(filename, "..") || strings.ContainsAny(filename, `/\`) {
		return fmt.Errorf("filename contains invalid path characters")
	}
	for _, r := range filename {
		if r < 32 || r == 127 {
			return fmt.Errorf("filename contains control characters")
		}
	}
	return nil
}

// sanitize strips control characters other than newline and tab so stored
// text cannot carry terminal escape sequences.
func sanitize(input string) string {
	var b strings.Builder
	for _, r := range input {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}
