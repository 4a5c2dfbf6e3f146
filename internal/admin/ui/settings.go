package ui

import (
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/notepid/dusk_bbs/internal/admin/app"
	"github.com/notepid/dusk_bbs/internal/db"
)

type settingsModel struct {
	app *app.App

	width  int
	height int

	done bool
	form *huh.Form
	err  error

	name    string
	sysop   string
	tagline string
	save    bool
}

func newSettingsModel(a *app.App) *settingsModel {
	m := &settingsModel{app: a, save: true}

	ctx, cancel := a.Context()
	defer cancel()
	settings, err := a.DB.GetBBSSettings(ctx)
	if err != nil {
		m.err = err
		return m
	}

	m.name = settings.Name
	m.sysop = settings.Sysop
	m.tagline = settings.Tagline
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("BBS Name").Value(&m.name).Validate(lengthBetween("name", 1, maxNameLen)),
			huh.NewInput().Title("Sysop").Value(&m.sysop).Validate(lengthBetween("sysop", 1, maxNameLen)),
			huh.NewInput().Title("Tagline").Description("Shown under the name in the connect banner").Value(&m.tagline).Validate(lengthBetween("tagline", 0, maxTextLen)),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Save changes?").Value(&m.save),
		),
	)
	return m
}

func (m *settingsModel) SetSize(w, h int) {
	m.width, m.height = w, h
}

func (m *settingsModel) Finished() bool { return m.done }

func (m *settingsModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		if dismissError(msg) {
			m.done = true
		}
		return nil
	}
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		m.done = true
		return nil
	}

	form, cmd, completed, err := stepForm(m.form, msg)
	m.form = form
	if err != nil {
		m.err = err
		return nil
	}
	if !completed {
		return cmd
	}

	if m.save {
		ctx, cancel := m.app.Context()
		defer cancel()
		settings := &db.BBSSettings{
			Name:    strings.TrimSpace(m.name),
			Sysop:   strings.TrimSpace(m.sysop),
			Tagline: strings.TrimSpace(m.tagline),
		}
		if err := m.app.DB.UpdateBBSSettings(ctx, settings); err != nil {
			m.err = err
			return nil
		}
	}
	m.done = true
	return nil
}

func (m *settingsModel) View() string {
	if m.err != nil {
		return errorView("Settings", m.err)
	}
	return titleStyle.Render("BBS Settings") + "\n\n" + m.form.View() + "\n\n" + hintStyle.Render("(esc to go back)")
}
