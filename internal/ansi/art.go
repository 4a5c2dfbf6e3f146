package ansi

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound is returned when no art file matches a name.
var ErrNotFound = errors.New("art file not found")

// Art is a loaded ANSI (.ans) or plain (.asc) screen.
type Art struct {
	Name   string
	Path   string
	IsANSI bool
	Data   []byte
	Sauce  *SAUCE
}

// Loader finds art files in a list of directories.
type Loader struct {
	dirs []string
}

// NewLoader creates a Loader searching dirs in order.
func NewLoader(dirs ...string) *Loader {
	return &Loader{dirs: dirs}
}

// Find locates name (without extension) in the loader's directories.
// Colour terminals prefer .ans; plain terminals prefer .asc and fall back
// to .ans.
func (l *Loader) Find(name string, colored bool) (*Art, error) {
	safe, err := sanitizeName(name)
	if err != nil {
		return nil, err
	}

	exts := []string{".asc", ".ans"}
	if colored {
		exts = []string{".ans", ".asc"}
	}

	for _, dir := range l.dirs {
		for _, ext := range exts {
			path := filepath.Join(dir, safe+ext)
			if !withinDir(dir, path) {
				continue
			}
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			sauce, content := ParseSAUCE(data)
			return &Art{
				Name:   safe,
				Path:   path,
				IsANSI: ext == ".ans",
				Data:   content,
				Sauce:  sauce,
			}, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, safe)
}

// Render expands placeholders and, for plain terminals, strips escape
// sequences from ANSI art.
func (a *Art) Render(vars map[string]string, colored bool) string {
	out := Expand(a.Data, vars)
	if a.IsANSI && !colored {
		out = Strip(out)
	}
	return string(out)
}

func sanitizeName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" || strings.ContainsRune(name, 0) || strings.Contains(name, "\\") {
		return "", fmt.Errorf("invalid art name %q", name)
	}
	clean := filepath.Clean(name)
	if clean == "." || clean == ".." || filepath.IsAbs(clean) ||
		strings.HasPrefix(clean, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("invalid art name %q", name)
	}
	return clean, nil
}

func withinDir(base, path string) bool {
	baseAbs, err := filepath.Abs(base)
	if err != nil {
		return false
	}
	pathAbs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	rel, err := filepath.Rel(baseAbs, pathAbs)
	if err != nil {
		return false
	}
	return rel != ".." && !strings.HasPrefix(rel, ".."+string(os.PathSeparator))
}
