package ui

import (
	"errors"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/admin/app"
	"github.com/notepid/dusk_bbs/internal/user"
)

type usersState int

const (
	usersStateList usersState = iota
	usersStateDetail
	usersStateCreate
	usersStateSetRole
	usersStateResetPassword
)

type usersModel struct {
	app *app.App

	width  int
	height int

	done  bool
	state usersState
	list  list.Model
	form  *huh.Form
	err   error

	selected *user.User

	username string
	password string
	confirm  string
	role     string
	save     bool
}

func newUsersModel(a *app.App) *usersModel {
	m := &usersModel{app: a, state: usersStateList}
	m.reloadList()
	return m
}

func (m *usersModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *usersModel) Finished() bool { return m.done }

func (m *usersModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		if dismissError(msg) {
			m.err = nil
			m.form = nil
			m.selected = nil
			m.state = usersStateList
			m.reloadList()
		}
		return nil
	}

	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q":
			if m.state == usersStateList && m.list.FilterState() != list.Filtering {
				m.done = true
				return nil
			}
		case "esc":
			if m.list.FilterState() != list.Filtering {
				m.back()
				return nil
			}
		}
	}

	switch m.state {
	case usersStateList:
		return m.updateList(msg)
	case usersStateDetail:
		return m.updateDetail(msg)
	default:
		return m.updateForm(msg)
	}
}

func (m *usersModel) updateList(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	key, ok := msg.(tea.KeyMsg)
	if !ok || key.String() != "enter" {
		return cmd
	}
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return cmd
	}
	if it.kind == "create" {
		m.startCreate()
		return nil
	}

	m.selectUser(it.id)
	return nil
}

func (m *usersModel) updateDetail(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)

	key, ok := msg.(tea.KeyMsg)
	if !ok || key.String() != "enter" {
		return cmd
	}
	it, ok := m.list.SelectedItem().(item)
	if !ok {
		return cmd
	}
	switch it.kind {
	case "set_role":
		m.startSetRole()
	case "reset_password":
		m.startResetPassword()
	case "back":
		m.back()
	}
	return nil
}

func (m *usersModel) updateForm(msg tea.Msg) tea.Cmd {
	form, cmd, completed, err := stepForm(m.form, msg)
	m.form = form
	if err != nil {
		m.err = err
		return nil
	}
	if !completed {
		return cmd
	}

	ctx, cancel := m.app.Context()
	defer cancel()

	switch m.state {
	case usersStateCreate:
		if m.save {
			u, err := m.app.Users.Create(ctx, strings.TrimSpace(m.username), m.password)
			if errors.Is(err, user.ErrUsernameTaken) {
				m.err = fmt.Errorf("username %q already exists", strings.TrimSpace(m.username))
				return nil
			}
			if err != nil {
				m.err = err
				return nil
			}
			if m.role == user.RoleSysop {
				if err := m.app.Users.SetRole(ctx, u.ID, user.RoleSysop); err != nil {
					m.err = err
					return nil
				}
			}
			m.app.Log.Info("admin created user", zap.String("username", u.Username), zap.String("role", m.role))
		}
		m.form = nil
		m.state = usersStateList
		m.reloadList()
		return nil
	case usersStateSetRole:
		if m.save && m.selected != nil {
			if err := m.app.Users.SetRole(ctx, m.selected.ID, m.role); err != nil {
				m.err = err
				return nil
			}
			m.app.Log.Info("admin set role", zap.String("username", m.selected.Username), zap.String("role", m.role))
		}
	case usersStateResetPassword:
		if m.save && m.selected != nil {
			if err := m.app.Users.UpdatePassword(ctx, m.selected.ID, m.password); err != nil {
				m.err = err
				return nil
			}
			m.app.Log.Info("admin reset password", zap.String("username", m.selected.Username))
		}
	}

	m.form = nil
	m.selectUser(m.selected.ID)
	return nil
}

func (m *usersModel) View() string {
	if m.err != nil {
		return errorView("Users", m.err)
	}

	switch m.state {
	case usersStateList:
		return m.list.View() + "\n" + hintStyle.Render("(q to quit, enter to select)")
	case usersStateDetail:
		if m.selected == nil {
			return "No user selected\n\n(esc to go back)"
		}
		header := titleStyle.Render(fmt.Sprintf("User: %s", m.selected.Username)) + "\n"
		meta := fmt.Sprintf("Role: %s\nRegistered: %s\n\n",
			m.selected.Role, m.selected.RegistrationDate.Format("2006-01-02 15:04"),
		)
		return header + meta + m.list.View() + "\n" + hintStyle.Render("(esc to go back)")
	default:
		return m.form.View() + "\n\n" + hintStyle.Render("(esc to go back)")
	}
}

func (m *usersModel) reloadList() {
	ctx, cancel := m.app.Context()
	defer cancel()

	users, err := m.app.Users.List(ctx)
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(users)+1)
	items = append(items, item{title: "+ Create new user", desc: "Add a new account", kind: "create"})
	for _, u := range users {
		desc := fmt.Sprintf("%s • joined %s", u.Role, u.RegistrationDate.Format("2006-01-02"))
		items = append(items, item{id: u.ID, title: u.Username, desc: desc, kind: "user"})
	}
	m.list = newList(items, "Users", m.width, m.height-2, true)
}

func (m *usersModel) selectUser(id int) {
	ctx, cancel := m.app.Context()
	defer cancel()

	u, err := m.app.Users.GetByID(ctx, id)
	if err != nil {
		m.err = err
		return
	}
	m.selected = u
	m.state = usersStateDetail
	m.list = newList([]list.Item{
		item{title: "Set role", desc: "user or sysop", kind: "set_role"},
		item{title: "Reset password", desc: "Set a new password", kind: "reset_password"},
		item{title: "Back", desc: "Return to users list", kind: "back"},
	}, "Actions", m.width, m.height-8, false)
}

func (m *usersModel) roleSelect() *huh.Select[string] {
	return huh.NewSelect[string]().
		Title("Role").
		Options(
			huh.NewOption("User", user.RoleUser),
			huh.NewOption("Sysop", user.RoleSysop),
		).
		Value(&m.role).
		Validate(validRole)
}

func (m *usersModel) startCreate() {
	m.state = usersStateCreate
	m.username, m.password, m.confirm = "", "", ""
	m.role = user.RoleUser
	m.save = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Username").Value(&m.username).Validate(validUsername),
			huh.NewInput().Title("Password").EchoMode(huh.EchoModePassword).Value(&m.password).Validate(validPassword),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&m.confirm).Validate(m.matchesPassword),
			m.roleSelect(),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Create user?").Value(&m.save),
		),
	)
}

func (m *usersModel) startSetRole() {
	m.state = usersStateSetRole
	m.role = m.selected.Role
	m.save = true
	m.form = huh.NewForm(
		huh.NewGroup(m.roleSelect()),
		huh.NewGroup(
			huh.NewConfirm().Title("Save role?").Value(&m.save),
		),
	)
}

func (m *usersModel) startResetPassword() {
	m.state = usersStateResetPassword
	m.password, m.confirm = "", ""
	m.save = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("New password").EchoMode(huh.EchoModePassword).Value(&m.password).Validate(validPassword),
			huh.NewInput().Title("Confirm password").EchoMode(huh.EchoModePassword).Value(&m.confirm).Validate(m.matchesPassword),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Reset password?").Value(&m.save),
		),
	)
}

func (m *usersModel) matchesPassword(s string) error {
	if s != m.password {
		return fmt.Errorf("passwords do not match")
	}
	return nil
}

func (m *usersModel) back() {
	switch m.state {
	case usersStateList:
		m.done = true
	case usersStateDetail:
		m.state = usersStateList
		m.selected = nil
		m.reloadList()
	default:
		m.form = nil
		if m.selected == nil {
			m.state = usersStateList
			m.reloadList()
			return
		}
		m.selectUser(m.selected.ID)
	}
}
