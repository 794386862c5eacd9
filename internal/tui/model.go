// Package tui provides the Bubble Tea counter page viewer.
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/sirupsen/logrus"

	"github.com/verte-zerg/tickup/internal/model"
	"github.com/verte-zerg/tickup/internal/page"
	"github.com/verte-zerg/tickup/internal/scheduler"
)

const (
	headerLines = 1
	footerLines = 1
)

// callbackMsg carries a scheduler callback onto the update loop.
type callbackMsg func()

// Loader reloads the page shown by the viewer.
type Loader func() (*page.Page, error)

// Model implements the Bubble Tea counter page viewer.
type Model struct {
	cfg    model.Config
	page   *page.Page
	load   Loader
	loop   *scheduler.Loop
	log    logrus.FieldLogger
	keys   keyMap
	errMsg string

	width  int
	height int

	session  *Session
	viewport viewport.Model
}

// NewModel constructs a viewer for p. load may be nil, which disables reload.
func NewModel(cfg model.Config, p *page.Page, load Loader, loop *scheduler.Loop, log logrus.FieldLogger) *Model {
	return &Model{
		cfg:      cfg,
		page:     p,
		load:     load,
		loop:     loop,
		log:      log,
		keys:     newKeyMap(),
		viewport: viewport.New(0, 0),
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.listenForCallbacks()
}

// listenForCallbacks waits for the next scheduler callback.
func (m *Model) listenForCallbacks() tea.Cmd {
	return func() tea.Msg {
		return callbackMsg(<-m.loop.C())
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case callbackMsg:
		msg()
		if m.session != nil && m.session.TakeDirty() {
			m.refresh()
		}
		return m, m.listenForCallbacks()
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		return m, nil
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.stop()
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reload):
			m.reload()
			return m, tea.ClearScreen
		case key.Matches(msg, m.keys.Top):
			m.viewport.GotoTop()
			m.syncScroll()
			return m, nil
		case key.Matches(msg, m.keys.Bottom):
			m.viewport.GotoBottom()
			m.syncScroll()
			return m, nil
		}
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	m.syncScroll()
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	header := fitLines(titleStyle.Render(truncateLine(m.page.Title, m.width)), m.width, headerLines)
	body := fitLines(m.viewport.View(), m.width, m.bodyHeight())
	footer := fitLines(m.renderFooter(), m.width, footerLines)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) bodyHeight() int {
	h := m.height - headerLines - footerLines
	if h < 1 {
		h = 1
	}
	return h
}

func (m *Model) resize(width, height int) {
	widthChanged := width != m.width
	m.width = width
	m.height = height
	m.viewport.Width = width
	m.viewport.Height = m.bodyHeight()
	if m.session == nil || widthChanged {
		// Card columns depend on the width, so the page is laid out again.
		m.restart(m.page)
		return
	}
	m.session.Window.Resize(float64(width), float64(m.bodyHeight()))
	m.refresh()
}

func (m *Model) restart(p *page.Page) {
	m.stop()
	m.page = p
	m.session = NewSession(p, m.cfg, m.loop, m.width, m.bodyHeight(), m.log)
	mode := m.session.Start()
	m.log.WithFields(logrus.Fields{
		"mode":     mode,
		"counters": len(m.session.Layout.Document.Elements),
		"columns":  m.session.Layout.Columns,
	}).Info("page started")
	m.refresh()
	m.viewport.GotoTop()
	m.syncScroll()
}

func (m *Model) reload() {
	if m.load == nil || m.width == 0 {
		return
	}
	p, err := m.load()
	if err != nil {
		m.errMsg = err.Error()
		m.log.WithError(err).Warn("failed to reload page")
		return
	}
	m.errMsg = ""
	m.restart(p)
}

func (m *Model) stop() {
	if m.session != nil {
		m.session.Stop()
	}
}

func (m *Model) refresh() {
	if m.session == nil {
		return
	}
	m.viewport.SetContent(renderPage(m.session.Layout, m.session.Engine.State))
}

// syncScroll mirrors the viewport offset into the visibility window.
func (m *Model) syncScroll() {
	if m.session == nil {
		return
	}
	m.session.ScrollTo(m.viewport.YOffset)
}

func (m *Model) renderFooter() string {
	if m.errMsg != "" {
		return errorStyle.Render(truncateLine(m.errMsg, m.width))
	}
	if m.session == nil {
		return ""
	}
	e := m.session.Engine
	segments := []string{
		fmt.Sprintf("Mode %s", m.session.Mode()),
		fmt.Sprintf("Running %d", e.Running()),
		fmt.Sprintf("Settled %d/%d", e.Settled(), len(m.session.Layout.Document.Elements)),
		fmt.Sprintf("Scroll %d%%", int(m.viewport.ScrollPercent()*100)),
	}
	help := "up/down scroll  " + m.keys.Reload.Help().Key + " " + m.keys.Reload.Help().Desc +
		"  " + m.keys.Quit.Help().Key + " " + m.keys.Quit.Help().Desc
	return footerStyle.Render(truncateLine(strings.Join(segments, "  ")+"  "+help, m.width))
}
