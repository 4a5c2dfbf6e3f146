package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/huh"
	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/admin/app"
	"github.com/notepid/dusk_bbs/internal/db"
	"github.com/notepid/dusk_bbs/internal/filearea"
)

type filesState int

const (
	filesStateAreas filesState = iota
	filesStateList
	filesStateDetail
	filesStateCreateArea
	filesStateEditDesc
)

type filesModel struct {
	app *app.App

	width  int
	height int

	done  bool
	state filesState
	list  list.Model
	form  *huh.Form
	err   error

	area    *filearea.Area
	listing *filearea.Listing

	name        string
	description string
	save        bool
}

func newFilesModel(a *app.App) *filesModel {
	m := &filesModel{app: a, state: filesStateAreas}
	m.reloadAreas()
	return m
}

func (m *filesModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *filesModel) Finished() bool { return m.done }

func (m *filesModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		if dismissError(msg) {
			m.err = nil
			m.form = nil
			m.state = filesStateAreas
			m.reloadAreas()
		}
		return nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch key.String() {
		case "q":
			if m.state == filesStateAreas {
				m.done = true
				return nil
			}
		case "esc":
			m.back()
			return nil
		case "c":
			if m.state == filesStateAreas {
				m.startCreateArea()
				return nil
			}
		case "e":
			if m.state == filesStateDetail {
				m.startEditDescription()
				return nil
			}
		}
	}

	switch m.state {
	case filesStateCreateArea, filesStateEditDesc:
		return m.updateForm(msg)
	case filesStateDetail:
		return nil
	}

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
	switch m.state {
	case filesStateAreas:
		m.openArea(it.id)
	case filesStateList:
		m.openListing(it.id)
	}
	return nil
}

func (m *filesModel) updateForm(msg tea.Msg) tea.Cmd {
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
	case filesStateCreateArea:
		if m.save {
			name := strings.TrimSpace(m.name)
			if _, err := m.app.Files.CreateArea(ctx, name, strings.TrimSpace(m.description)); err != nil {
				if db.IsUniqueViolation(err) {
					err = fmt.Errorf("a file area named %q already exists", name)
				}
				m.err = err
				return nil
			}
			m.app.Log.Info("admin created file area", zap.String("area", name))
		}
		m.form = nil
		m.state = filesStateAreas
		m.reloadAreas()
	case filesStateEditDesc:
		if m.save {
			if err := m.app.Files.UpdateDescription(ctx, m.listing.ID, strings.TrimSpace(m.description)); err != nil {
				m.err = err
				return nil
			}
			m.app.Log.Info("admin edited file description", zap.Int("listing", m.listing.ID))
		}
		m.form = nil
		m.openListing(m.listing.ID)
	}
	return nil
}

func (m *filesModel) View() string {
	if m.err != nil {
		return errorView("Files", m.err)
	}

	switch m.state {
	case filesStateAreas:
		return m.list.View() + "\n" + hintStyle.Render("(c create area, enter browse, q quit)")
	case filesStateList:
		return m.list.View() + "\n" + hintStyle.Render("(enter details, esc back)")
	case filesStateDetail:
		l := m.listing
		detail := fmt.Sprintf("Area: %s\nDescription: %s\nUploader: %s\nUploaded: %s\nDownloads: %d",
			m.area.Name, l.Description, l.UploaderName, l.UploadDate.Format("2006-01-02 15:04"), l.DownloadCount,
		)
		return titleStyle.Render(fmt.Sprintf("#%d %s", l.ID, l.Filename)) + "\n" + detail + "\n\n" + hintStyle.Render("(e edit description, esc back)")
	default:
		return m.form.View() + "\n\n" + hintStyle.Render("(esc to go back)")
	}
}

func (m *filesModel) reloadAreas() {
	ctx, cancel := m.app.Context()
	defer cancel()

	areas, err := m.app.Files.ListAreas(ctx)
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(areas))
	for _, a := range areas {
		desc := fmt.Sprintf("#%d • %d files", a.ID, a.FileCount)
		if a.Description != "" {
			desc = a.Description + " • " + desc
		}
		items = append(items, item{id: a.ID, title: a.Name, desc: desc, kind: "area"})
	}
	m.list = newList(items, "File Areas", m.width, m.height-2, true)
}

func (m *filesModel) openArea(id int) {
	ctx, cancel := m.app.Context()
	defer cancel()

	a, err := m.app.Files.GetArea(ctx, id)
	if err != nil {
		m.err = err
		return
	}
	files, err := m.app.Files.ListFiles(ctx, id)
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(files))
	for _, f := range files {
		desc := fmt.Sprintf("#%d • %s • %d dl", f.ID, f.UploaderName, f.DownloadCount)
		items = append(items, item{id: f.ID, title: f.Filename, desc: desc, kind: "file"})
	}
	m.area = a
	m.list = newList(items, fmt.Sprintf("Files in %s", a.Name), m.width, m.height-2, true)
	m.state = filesStateList
}

func (m *filesModel) openListing(id int) {
	ctx, cancel := m.app.Context()
	defer cancel()

	l, err := m.app.Files.GetListing(ctx, id)
	if err != nil {
		m.err = err
		return
	}
	m.listing = l
	m.state = filesStateDetail
}

func (m *filesModel) startCreateArea() {
	m.state = filesStateCreateArea
	m.name, m.description = "", ""
	m.save = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Area name").Value(&m.name).Validate(lengthBetween("name", 1, maxNameLen)),
			huh.NewInput().Title("Description").Value(&m.description).Validate(lengthBetween("description", 0, maxTextLen)),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Create area?").Value(&m.save),
		),
	)
}

func (m *filesModel) startEditDescription() {
	m.state = filesStateEditDesc
	m.description = m.listing.Description
	m.save = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Description").Value(&m.description).Validate(lengthBetween("description", 0, maxTextLen)),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Save description?").Value(&m.save),
		),
	)
}

func (m *filesModel) back() {
	switch m.state {
	case filesStateAreas:
		m.done = true
	case filesStateList:
		m.state = filesStateAreas
		m.reloadAreas()
	case filesStateDetail:
		m.openArea(m.area.ID)
	case filesStateCreateArea:
		m.form = nil
		m.state = filesStateAreas
		m.reloadAreas()
	case filesStateEditDesc:
		m.form = nil
		m.state = filesStateDetail
	}
}
