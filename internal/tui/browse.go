package tui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"phonecrm/internal/api"
	"phonecrm/internal/model"
)

func (m Model) updateBrowse(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case itemsMsg:
		if msg.err != nil {
			m.state.Fail()
			return m.requestFailed("load items", msg.err)
		}
		m.state.EndFetch(msg.items, msg.reset)
		m.rebuildRows()
		if msg.reset {
			m.table.SetCursor(0)
		}
		return m, nil

	case statsMsg:
		if msg.err != nil {
			return m.requestFailed("load stats", msg.err)
		}
		m.state.SetStats(msg.stats)
		return m, nil

	case createdMsg:
		return m.handleCreated(msg)

	case updatedMsg:
		if msg.err != nil {
			m.state.RollbackField(msg.id, msg.field, msg.prev)
			m.rebuildRows()
			m.logger.Error("update item", "id", msg.id, "field", msg.field, "error", msg.err)
			if api.IsAuthError(msg.err) {
				return m.expireToLogin()
			}
			return m, m.setFlash("update failed, change undone", true)
		}
		if msg.refreshStats {
			return m, fetchStatsCmd(m.client, m.state.Tab.ID)
		}
		return m, nil

	case deletedMsg:
		if msg.err != nil {
			return m.requestFailed("delete item", msg.err)
		}
		m.state.Remove(msg.id)
		m.rebuildRows()
		return m, fetchStatsCmd(m.client, m.state.Tab.ID)

	case returnedMsg:
		if msg.err != nil {
			return m.requestFailed("return item", msg.err)
		}
		m.state.Replace(msg.item)
		m.rebuildRows()
		return m, fetchStatsCmd(m.client, m.state.Tab.ID)

	case debounceMsg:
		if !m.state.DebounceElapsed(msg.gen) {
			return m, nil
		}
		m.rebuildRows()
		if !m.state.Begin() {
			return m, nil
		}
		return m, fetchItemsCmd(m.client, m.state.Tab.ID, m.state.Search(), m.state.PageSize, m.state.Offset(), true)

	case flashClearMsg:
		if msg.seq == m.flashSeq {
			m.flash = ""
		}
		return m, nil

	case tea.KeyMsg:
		if m.overlay != overlayNone {
			return m.handleOverlayKeys(msg)
		}
		return m.handleBrowseKeys(msg)
	}

	// Everything else (cursor blinks, mouse) flows into whichever
	// component currently has focus.
	var cmd tea.Cmd
	switch m.overlay {
	case overlaySearch, overlayAdd, overlayEdit:
		m.input, cmd = m.input.Update(msg)
	default:
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

// requestFailed logs a backend failure. A rejected token swaps back to
// the login form; anything else leaves the view as it was.
func (m Model) requestFailed(op string, err error) (tea.Model, tea.Cmd) {
	m.logger.Error(op, "error", err)
	if api.IsAuthError(err) {
		return m.expireToLogin()
	}
	return m, nil
}

func (m Model) handleCreated(msg createdMsg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if len(msg.items) > 0 {
		m.state.Append(msg.items...)
		m.rebuildRows()
		cmds = append(cmds, fetchStatsCmd(m.client, m.state.Tab.ID))
	}
	if msg.err != nil {
		m.logger.Error("create items", "requested", msg.requested, "created", len(msg.items), "error", msg.err)
		if api.IsAuthError(msg.err) {
			return m.expireToLogin()
		}
		cmds = append(cmds, m.setFlash(fmt.Sprintf("added %d of %d, the rest failed", len(msg.items), msg.requested), true))
	} else {
		cmds = append(cmds, m.setFlash(fmt.Sprintf("added %d", len(msg.items)), false))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.NextTab):
		return m.switchTab(model.NextTab(m.state.Tab))

	case key.Matches(msg, m.keys.PrevTab):
		return m.switchTab(model.PrevTab(m.state.Tab))

	case key.Matches(msg, m.keys.Search):
		m.overlay = overlaySearch
		m.overlayErr = ""
		m.input.Placeholder = "owner, model or IMEI"
		m.input.SetValue(m.state.Search())
		m.input.CursorEnd()
		m.input.Focus()
		m.layout()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Refresh):
		m.state.ResetPaging()
		return m.refetchAll()

	case key.Matches(msg, m.keys.Add):
		m.overlay = overlayAdd
		m.overlayErr = ""
		m.input.Placeholder = "how many rows"
		m.input.SetValue("")
		m.input.Focus()
		m.layout()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.overlay = overlayEdit
		m.overlayErr = ""
		m.editID = it.ID
		m.editField = 0
		m.loadEditValue(it)
		m.input.Focus()
		m.layout()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Delete):
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		m.overlay = overlayConfirmDelete
		m.confirmID = it.ID
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Return):
		it, ok := m.selectedItem()
		if !ok {
			return m, nil
		}
		if !it.Sold() {
			return m, m.setFlash("item is not sold", true)
		}
		m.overlay = overlayConfirmReturn
		m.confirmID = it.ID
		m.layout()
		return m, nil

	case key.Matches(msg, m.keys.Logout):
		if info := m.session.Info(); info != nil && info.Source == "env" {
			return m, m.setFlash("token comes from PHONECRM_TOKEN, unset it to log out", true)
		}
		if err := m.session.Clear(); err != nil {
			m.logger.Error("logout", "error", err)
		}
		m.mode = viewLogin
		m.login = newLoginForm()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	// Digits jump straight to a tab.
	if n, err := strconv.Atoi(msg.String()); err == nil && n >= 1 && n <= len(model.Tabs) {
		return m.switchTab(model.Tabs[n-1])
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	if m.state.NeedMore(m.table.Cursor()) {
		m.state.Begin()
		return m, tea.Batch(cmd, fetchItemsCmd(m.client, m.state.Tab.ID, m.state.Search(), m.state.PageSize, m.state.Offset(), false))
	}
	return m, cmd
}

func (m Model) switchTab(tab model.Tab) (tea.Model, tea.Cmd) {
	if !m.state.SwitchTab(tab) {
		return m, nil
	}
	m.rebuildRows()
	return m.refetchAll()
}

func (m Model) handleOverlayKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.overlay {
	case overlaySearch:
		switch msg.String() {
		case "enter", "esc":
			return m.closeOverlay(), nil
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if gen, changed := m.state.SetSearch(m.input.Value()); changed {
			return m, tea.Batch(cmd, debounceCmd(gen))
		}
		return m, cmd

	case overlayAdd:
		switch msg.String() {
		case "esc":
			return m.closeOverlay(), nil
		case "enter":
			n, err := strconv.Atoi(strings.TrimSpace(m.input.Value()))
			if err != nil || n <= 0 {
				m.overlayErr = "enter a positive number"
				return m, nil
			}
			if n > bulkConfirmThreshold {
				m.addCount = n
				m.overlay = overlayConfirmAdd
				return m, nil
			}
			return m.startCreate(n)
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case overlayEdit:
		switch msg.String() {
		case "esc":
			return m.closeOverlay(), nil
		case "tab", "down":
			m.editField = (m.editField + 1) % len(model.Fields)
			if it, ok := m.state.Find(m.editID); ok {
				m.loadEditValue(it)
			}
			return m, nil
		case "shift+tab", "up":
			m.editField = (m.editField + len(model.Fields) - 1) % len(model.Fields)
			if it, ok := m.state.Find(m.editID); ok {
				m.loadEditValue(it)
			}
			return m, nil
		case "enter":
			return m.commitEdit()
		}
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd

	case overlayConfirmAdd:
		switch msg.String() {
		case "y", "Y", "enter":
			return m.startCreate(m.addCount)
		case "n", "N", "esc":
			return m.closeOverlay(), nil
		}
		return m, nil

	case overlayConfirmDelete:
		switch msg.String() {
		case "y", "Y", "enter":
			id := m.confirmID
			next := m.closeOverlay()
			return next, deleteItemCmd(next.client, id)
		case "n", "N", "esc":
			return m.closeOverlay(), nil
		}
		return m, nil

	case overlayConfirmReturn:
		switch msg.String() {
		case "y", "Y", "enter":
			id := m.confirmID
			next := m.closeOverlay()
			return next, returnItemCmd(next.client, id)
		case "n", "N", "esc":
			return m.closeOverlay(), nil
		}
		return m, nil
	}
	return m, nil
}

func (m Model) closeOverlay() Model {
	m.overlay = overlayNone
	m.overlayErr = ""
	m.input.Blur()
	m.input.SetValue("")
	m.layout()
	return m
}

// loadEditValue preloads the editor with the current value of the
// field under edit. Zero prices start empty to save backspacing.
func (m *Model) loadEditValue(it model.Item) {
	field := model.Fields[m.editField]
	v, err := it.FieldValue(field)
	if err != nil {
		return
	}
	switch n := v.(type) {
	case int64:
		if n == 0 {
			m.input.SetValue("")
		} else {
			m.input.SetValue(strconv.FormatInt(n, 10))
		}
	case string:
		m.input.SetValue(n)
	}
	m.input.Placeholder = fieldTitles[field]
	m.input.CursorEnd()
}

func (m Model) commitEdit() (tea.Model, tea.Cmd) {
	field := model.Fields[m.editField]
	value, err := model.ParseFieldInput(field, m.input.Value())
	if err != nil {
		m.overlayErr = err.Error()
		return m, nil
	}
	prev, err := m.state.PatchField(m.editID, field, value)
	if err != nil {
		// The row vanished while the editor was open.
		return m.closeOverlay(), nil
	}
	m.rebuildRows()
	id := m.editID
	next := m.closeOverlay()
	return next, updateItemCmd(next.client, id, field, value, prev)
}

func (m Model) startCreate(count int) (tea.Model, tea.Cmd) {
	next := m.closeOverlay()
	flash := next.setFlash(fmt.Sprintf("adding %d...", count), false)
	return next, tea.Batch(flash, createItemsCmd(next.client, next.state.Tab.ID, count))
}
