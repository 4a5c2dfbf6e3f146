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
	"github.com/notepid/dusk_bbs/internal/message"
)

const postsPerPage = 50

type boardsState int

const (
	boardsStateList boardsState = iota
	boardsStatePosts
	boardsStatePost
	boardsStateCreate
)

type boardsModel struct {
	app *app.App

	width  int
	height int

	done  bool
	state boardsState
	list  list.Model
	form  *huh.Form
	err   error

	board *message.Board
	posts map[int]*message.Post
	post  *message.Post

	name        string
	description string
	save        bool
}

func newBoardsModel(a *app.App) *boardsModel {
	m := &boardsModel{app: a, state: boardsStateList}
	m.reloadBoards()
	return m
}

func (m *boardsModel) SetSize(w, h int) {
	m.width, m.height = w, h
	m.list.SetSize(w, h-2)
}

func (m *boardsModel) Finished() bool { return m.done }

func (m *boardsModel) Update(msg tea.Msg) tea.Cmd {
	if m.err != nil {
		if dismissError(msg) {
			m.err = nil
			m.form = nil
			m.state = boardsStateList
			m.reloadBoards()
		}
		return nil
	}

	if key, ok := msg.(tea.KeyMsg); ok && m.list.FilterState() != list.Filtering {
		switch key.String() {
		case "q":
			if m.state == boardsStateList {
				m.done = true
				return nil
			}
		case "esc":
			m.back()
			return nil
		case "c":
			if m.state == boardsStateList {
				m.startCreate()
				return nil
			}
		case "d":
			if m.state == boardsStatePost {
				m.deletePost()
				return nil
			}
		}
	}

	if m.state == boardsStateCreate {
		return m.updateForm(msg)
	}
	if m.state == boardsStatePost {
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
	case boardsStateList:
		m.openBoard(it.id)
	case boardsStatePosts:
		if p, ok := m.posts[it.id]; ok {
			m.post = p
			m.state = boardsStatePost
		}
	}
	return nil
}

func (m *boardsModel) updateForm(msg tea.Msg) tea.Cmd {
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
		name := strings.TrimSpace(m.name)
		if _, err := m.app.Boards.CreateBoard(ctx, name, strings.TrimSpace(m.description)); err != nil {
			if db.IsUniqueViolation(err) {
				err = fmt.Errorf("a board named %q already exists", name)
			}
			m.err = err
			return nil
		}
		m.app.Log.Info("admin created board", zap.String("board", name))
	}
	m.form = nil
	m.state = boardsStateList
	m.reloadBoards()
	return nil
}

func (m *boardsModel) View() string {
	if m.err != nil {
		return errorView("Boards", m.err)
	}

	switch m.state {
	case boardsStateList:
		return m.list.View() + "\n" + hintStyle.Render("(c create board, enter browse, q quit)")
	case boardsStatePosts:
		return m.list.View() + "\n" + hintStyle.Render("(enter read, esc back)")
	case boardsStatePost:
		header := titleStyle.Render(fmt.Sprintf("Post #%d on %s", m.post.ID, m.board.Name))
		meta := fmt.Sprintf("From: %s\nDate: %s", m.post.Username, m.post.Timestamp.Format("2006-01-02 15:04"))
		return header + "\n" + meta + "\n\n" + m.post.Body + "\n\n" + hintStyle.Render("(d delete, esc back)")
	default:
		return m.form.View() + "\n\n" + hintStyle.Render("(esc to go back)")
	}
}

func (m *boardsModel) reloadBoards() {
	ctx, cancel := m.app.Context()
	defer cancel()

	boards, err := m.app.Boards.ListBoards(ctx)
	if err != nil {
		m.err = err
		return
	}

	items := make([]list.Item, 0, len(boards))
	for _, b := range boards {
		count, err := m.app.Boards.CountPosts(ctx, b.ID)
		if err != nil {
			m.err = err
			return
		}
		desc := fmt.Sprintf("#%d • %d posts", b.ID, count)
		if b.Description != "" {
			desc = b.Description + " • " + desc
		}
		items = append(items, item{id: b.ID, title: b.Name, desc: desc, kind: "board"})
	}
	m.list = newList(items, "Boards", m.width, m.height-2, true)
}

func (m *boardsModel) openBoard(id int) {
	ctx, cancel := m.app.Context()
	defer cancel()

	b, err := m.app.Boards.GetBoard(ctx, id)
	if err != nil {
		m.err = err
		return
	}
	posts, err := m.app.Boards.RecentPosts(ctx, id, postsPerPage)
	if err != nil {
		m.err = err
		return
	}

	m.board = b
	m.posts = make(map[int]*message.Post, len(posts))
	items := make([]list.Item, 0, len(posts))
	for _, p := range posts {
		m.posts[p.ID] = p
		title := p.Body
		if i := strings.IndexByte(title, '\n'); i >= 0 {
			title = title[:i]
		}
		desc := fmt.Sprintf("#%d • %s • %s", p.ID, p.Username, p.Timestamp.Format("2006-01-02 15:04"))
		items = append(items, item{id: p.ID, title: title, desc: desc, kind: "post"})
	}
	m.list = newList(items, fmt.Sprintf("Recent posts on %s", b.Name), m.width, m.height-2, true)
	m.state = boardsStatePosts
}

func (m *boardsModel) deletePost() {
	ctx, cancel := m.app.Context()
	defer cancel()

	if err := m.app.Boards.DeletePost(ctx, m.post.ID); err != nil {
		m.err = err
		return
	}
	m.app.Log.Info("admin deleted post", zap.Int("post", m.post.ID), zap.String("board", m.board.Name))
	m.post = nil
	m.openBoard(m.board.ID)
}

func (m *boardsModel) startCreate() {
	m.state = boardsStateCreate
	m.name, m.description = "", ""
	m.save = true
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Board name").Value(&m.name).Validate(lengthBetween("name", 1, maxNameLen)),
			huh.NewInput().Title("Description").Value(&m.description).Validate(lengthBetween("description", 0, maxTextLen)),
		),
		huh.NewGroup(
			huh.NewConfirm().Title("Create board?").Value(&m.save),
		),
	)
}

func (m *boardsModel) back() {
	switch m.state {
	case boardsStateList:
		m.done = true
	case boardsStatePosts:
		m.state = boardsStateList
		m.reloadBoards()
	case boardsStatePost:
		m.state = boardsStatePosts
		m.post = nil
	case boardsStateCreate:
		m.form = nil
		m.state = boardsStateList
		m.reloadBoards()
	}
}
