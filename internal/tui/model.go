// Package tui is the interactive inventory client: a login form that
// swaps into a tabbed, searchable table over the backend's rows. All
// network calls run as commands; the update loop is the only writer of
// view state.
package tui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"phonecrm/internal/api"
	"phonecrm/internal/browse"
	"phonecrm/internal/config"
	"phonecrm/internal/model"
	"phonecrm/internal/session"
)

const (
	defaultWidth  = 100
	defaultHeight = 30

	// bulkConfirmThreshold is the add count above which a y/n prompt
	// stands between the user and the request burst.
	bulkConfirmThreshold = 100
)

type viewMode int

const (
	viewLogin viewMode = iota
	viewBrowse
)

// overlay is the modal input layer drawn under the table, one at a
// time. overlayNone routes keys to the table itself.
type overlay int

const (
	overlayNone overlay = iota
	overlaySearch
	overlayAdd
	overlayEdit
	overlayConfirmAdd
	overlayConfirmDelete
	overlayConfirmReturn
)

type Model struct {
	cfg     *config.Config
	session *session.Handle
	client  *api.Client
	logger  *slog.Logger

	mode  viewMode
	login loginForm

	state browse.State
	table table.Model

	overlay    overlay
	input      textinput.Model // shared by search, add count and edit
	overlayErr string
	editID     int64
	editField  int // index into model.Fields
	confirmID  int64
	addCount   int // count awaiting the >100 confirmation

	keys keyMap
	help help.Model

	width  int
	height int

	flash    string
	flashErr bool
	flashSeq int
}

// New builds the program model. The session handle is shared with the
// HTTP middleware: a 401/403 anywhere clears it, and the next result
// message moves the view back to the login form.
func New(cfg *config.Config, sess *session.Handle, logger *slog.Logger) Model {
	client := api.New(api.Config{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
		Token:   sess.Token,
		OnAuthExpired: func() {
			_ = sess.Clear()
		},
	})

	input := textinput.New()
	input.Prompt = "> "
	input.CharLimit = 120

	m := Model{
		cfg:     cfg,
		session: sess,
		client:  client,
		logger:  logger,
		login:   newLoginForm(),
		state:   browse.New(initialTab(cfg), browse.PageSize),
		table:   newTable(),
		input:   input,
		keys:    newKeyMap(),
		help:    help.New(),
		width:   defaultWidth,
		height:  defaultHeight,
	}
	if sess.LoggedIn() {
		// Init cannot mutate the model, so the first page's
		// single-flight guard is taken here.
		m.mode = viewBrowse
		m.state.Begin()
	}
	return m
}

// Run starts the interactive client on the alternate screen and blocks
// until it quits.
func Run(cfg *config.Config, sess *session.Handle, logger *slog.Logger) error {
	p := tea.NewProgram(New(cfg, sess, logger), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func initialTab(cfg *config.Config) model.Tab {
	if t, ok := model.TabByID(cfg.Tab); ok {
		return t
	}
	return model.DefaultTab()
}

func (m Model) Init() tea.Cmd {
	if m.mode == viewBrowse {
		return tea.Batch(
			fetchItemsCmd(m.client, m.state.Tab.ID, m.state.Search(), m.state.PageSize, m.state.Offset(), true),
			fetchStatsCmd(m.client, m.state.Tab.ID),
		)
	}
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.layout()
		return m, nil
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
	}

	if m.mode == viewLogin {
		return m.updateLogin(msg)
	}
	return m.updateBrowse(msg)
}

// enterBrowse resets the view state for a fresh login and kicks off the
// first page and stats for the initial tab.
func (m Model) enterBrowse() (tea.Model, tea.Cmd) {
	m.mode = viewBrowse
	m.state = browse.New(initialTab(m.cfg), browse.PageSize)
	m.table.SetRows(nil)
	m.table.SetCursor(0)
	m.flash = ""
	m.overlay = overlayNone
	m.layout()
	return m.refetchAll()
}

// expireToLogin swaps back to the login form after the backend rejected
// our token. The middleware has already cleared the stored credentials.
func (m Model) expireToLogin() (tea.Model, tea.Cmd) {
	m.mode = viewLogin
	m.login = newLoginForm()
	m.login.errMsg = sessionExpiredText
	m.overlay = overlayNone
	m.input.Blur()
	return m, textinput.Blink
}

// refetchAll reloads page zero and the stats for the active tab. The
// list fetch respects the single-flight guard; stats are always asked.
func (m Model) refetchAll() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{fetchStatsCmd(m.client, m.state.Tab.ID)}
	if m.state.Begin() {
		cmds = append(cmds, fetchItemsCmd(m.client, m.state.Tab.ID, m.state.Search(), m.state.PageSize, m.state.Offset(), true))
	}
	return m, tea.Batch(cmds...)
}

// rebuildRows projects the loaded items into the table, keeping the
// cursor on the same position when possible.
func (m *Model) rebuildRows() {
	rows := make([]table.Row, 0, len(m.state.Items))
	for _, it := range m.state.Items {
		rows = append(rows, itemRow(it))
	}
	cursor := m.table.Cursor()
	m.table.SetRows(rows)
	if cursor >= len(rows) {
		cursor = len(rows) - 1
	}
	if cursor < 0 {
		cursor = 0
	}
	m.table.SetCursor(cursor)
}

// selectedItem returns the row under the cursor.
func (m *Model) selectedItem() (model.Item, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.state.Items) {
		return model.Item{}, false
	}
	return m.state.Items[i], true
}

// setFlash swaps the transient status message and schedules its fade.
func (m *Model) setFlash(text string, isErr bool) tea.Cmd {
	m.flash = text
	m.flashErr = isErr
	m.flashSeq++
	return flashClearCmd(m.flashSeq)
}

// layout re-sizes the table for the current terminal and overlay.
func (m *Model) layout() {
	m.help.Width = m.width
	m.table.SetColumns(tableColumns(m.width))
	m.table.SetWidth(m.width)

	// Chrome around the table: tab bar, search line, stats, status and
	// help lines plus the table's own header and border. The search
	// editor lives on the search line itself; every other overlay adds
	// a box below.
	chrome := 8
	if m.overlay != overlayNone && m.overlay != overlaySearch {
		chrome += 4
	}
	h := m.height - chrome
	if h < 3 {
		h = 3
	}
	m.table.SetHeight(h)
}
