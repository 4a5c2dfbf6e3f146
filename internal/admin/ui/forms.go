package ui

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/huh"

	"github.com/notepid/dusk_bbs/internal/user"
)

// Limits mirror what the BBS accepts from users.
const (
	maxUsernameLen = 30
	maxPasswordLen = 128
	maxNameLen     = 64
	maxTextLen     = 255
)

var errFormType = errors.New("internal error: unexpected form model type")

// item is the list entry used by every screen.
type item struct {
	id    int
	title string
	desc  string
	kind  string
}

func (i item) Title() string       { return i.title }
func (i item) Description() string { return i.desc }
func (i item) FilterValue() string { return i.title }

func newList(items []list.Item, title string, w, h int, filter bool) list.Model {
	l := list.New(items, list.NewDefaultDelegate(), w, h)
	l.Title = title
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(filter)
	l.SetShowHelp(true)
	return l
}

// stepForm advances a huh form and reports whether it completed.
func stepForm(form *huh.Form, msg tea.Msg) (*huh.Form, tea.Cmd, bool, error) {
	updated, cmd := form.Update(msg)
	f, ok := updated.(*huh.Form)
	if !ok {
		return form, nil, false, errFormType
	}
	return f, cmd, f.State == huh.StateCompleted, nil
}

// dismissError reports whether msg acknowledges an error screen.
func dismissError(msg tea.Msg) bool {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return false
	}
	switch key.String() {
	case "esc", "q", "enter":
		return true
	}
	return false
}

func errorView(section string, err error) string {
	return errStyle.Render(section+" error: ") + err.Error() + "\n\n" + hintStyle.Render("Press Enter/Esc to go back.")
}

func nonEmpty(field string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s cannot be empty", field)
		}
		return nil
	}
}

func lengthBetween(field string, min, max int) func(string) error {
	return func(s string) error {
		n := utf8.RuneCountInString(strings.TrimSpace(s))
		if n < min || n > max {
			return fmt.Errorf("%s must be %d to %d characters", field, min, max)
		}
		return nil
	}
}

func validUsername(s string) error {
	if err := lengthBetween("username", 1, maxUsernameLen)(s); err != nil {
		return err
	}
	if strings.ContainsAny(s, " \t") {
		return fmt.Errorf("username cannot contain spaces")
	}
	return nil
}

func validPassword(s string) error {
	if s == "" || len(s) > maxPasswordLen {
		return fmt.Errorf("password must be 1 to %d characters", maxPasswordLen)
	}
	if strings.ContainsAny(s, " \t") {
		return fmt.Errorf("password cannot contain spaces")
	}
	return nil
}

func validRole(s string) error {
	if !user.ValidRole(s) {
		return fmt.Errorf("role must be %s or %s", user.RoleUser, user.RoleSysop)
	}
	return nil
}
