package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"phonecrm/internal/api"
	"phonecrm/internal/browse"
	"phonecrm/internal/model"
)

// flashFade is how long a transient status message stays up.
const flashFade = 3 * time.Second

// loginResultMsg carries the outcome of a login attempt.
type loginResultMsg struct {
	username string
	token    string
	err      error
}

// itemsMsg is one landed page of rows. reset tells the state machine to
// replace the list instead of appending.
type itemsMsg struct {
	items []model.Item
	reset bool
	err   error
}

// statsMsg is a landed aggregates snapshot.
type statsMsg struct {
	stats model.Stats
	err   error
}

// createdMsg reports a bulk add: every row that was actually created,
// even when some requests failed.
type createdMsg struct {
	items     []model.Item
	requested int
	err       error
}

// updatedMsg reports a single-field PUT. prev is the value before the
// optimistic patch so a failure can undo it.
type updatedMsg struct {
	id           int64
	field        string
	prev         any
	refreshStats bool
	err          error
}

type deletedMsg struct {
	id  int64
	err error
}

// returnedMsg carries the server's row after a sold item was reverted.
type returnedMsg struct {
	item model.Item
	err  error
}

// debounceMsg fires when the search input has been idle; gen pairs it
// with the keystroke that armed the timer.
type debounceMsg struct {
	gen int
}

// flashClearMsg removes a transient status message; seq pairs it with
// the flash that scheduled it.
type flashClearMsg struct {
	seq int
}

func loginCmd(c *api.Client, username, password string) tea.Cmd {
	return func() tea.Msg {
		token, err := c.Login(context.Background(), username, password)
		return loginResultMsg{username: username, token: token, err: err}
	}
}

func fetchItemsCmd(c *api.Client, tab, search string, limit, offset int, reset bool) tea.Cmd {
	return func() tea.Msg {
		items, err := c.ListItems(context.Background(), tab, search, limit, offset)
		return itemsMsg{items: items, reset: reset, err: err}
	}
}

func fetchStatsCmd(c *api.Client, tab string) tea.Cmd {
	return func() tea.Msg {
		stats, err := c.Stats(context.Background(), tab)
		return statsMsg{stats: stats, err: err}
	}
}

// createItemsCmd runs a bulk add. Rows created before a failure stay in
// the message so they remain visible.
func createItemsCmd(c *api.Client, tab string, count int) tea.Cmd {
	return func() tea.Msg {
		items, err := c.CreateItems(context.Background(), tab, count)
		return createdMsg{items: items, requested: count, err: err}
	}
}

func updateItemCmd(c *api.Client, id int64, field string, value, prev any) tea.Cmd {
	return func() tea.Msg {
		err := c.UpdateItem(context.Background(), id, field, value)
		return updatedMsg{
			id:           id,
			field:        field,
			prev:         prev,
			refreshStats: model.AffectsStats(field),
			err:          err,
		}
	}
}

func deleteItemCmd(c *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		return deletedMsg{id: id, err: c.DeleteItem(context.Background(), id)}
	}
}

func returnItemCmd(c *api.Client, id int64) tea.Cmd {
	return func() tea.Msg {
		item, err := c.ReturnItem(context.Background(), id)
		return returnedMsg{item: item, err: err}
	}
}

func debounceCmd(gen int) tea.Cmd {
	return tea.Tick(browse.SearchDebounce, func(time.Time) tea.Msg {
		return debounceMsg{gen: gen}
	})
}

func flashClearCmd(seq int) tea.Cmd {
	return tea.Tick(flashFade, func(time.Time) tea.Msg {
		return flashClearMsg{seq: seq}
	})
}
