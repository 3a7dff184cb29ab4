// Package browse is the view-state controller for the inventory screen:
// active tab, search text, loaded rows, paging flags, and the stats
// snapshot. It owns no I/O. Callers run the fetches and feed results
// back in, so the whole state machine is testable without a server.
package browse

import (
	"fmt"
	"time"

	"phonecrm/internal/model"
)

const (
	// PageSize is how many rows one list request asks for.
	PageSize = 500
	// SearchDebounce is how long the search input must sit idle before
	// a filtered refetch goes out.
	SearchDebounce = 500 * time.Millisecond
	// scrollAhead is how close to the bottom of the loaded rows the
	// cursor may get before the next page is requested.
	scrollAhead = 20
)

// State tracks everything the inventory view shows. Mutating methods
// take pointer receivers; the Bubble Tea update loop is the only
// writer, so there is no locking.
type State struct {
	Tab   model.Tab
	Items []model.Item
	Stats model.Stats

	PageSize int

	search    string
	searchGen int

	page    int
	hasMore bool
	loading bool
}

// New returns a state for tab with nothing loaded yet. pageSize <= 0
// falls back to PageSize; tests shrink it to exercise paging.
func New(tab model.Tab, pageSize int) State {
	if pageSize <= 0 {
		pageSize = PageSize
	}
	return State{Tab: tab, PageSize: pageSize, hasMore: true}
}

func (s *State) Loading() bool  { return s.loading }
func (s *State) HasMore() bool  { return s.hasMore }
func (s *State) Page() int      { return s.page }
func (s *State) Search() string { return s.search }
func (s *State) SearchGen() int { return s.searchGen }

// Offset is the offset parameter for the next list request.
func (s *State) Offset() int { return s.page * s.PageSize }

// ResetPaging rewinds to page zero and re-allows paging without
// touching the loaded rows. The manual refresh uses this alone, so the
// table keeps its rows until the replacing fetch lands.
func (s *State) ResetPaging() {
	s.page = 0
	s.hasMore = true
}

// SwitchTab activates a tab, dropping the loaded rows and rewinding
// paging. Rows of another tab must never linger, not even when the
// refetch fails. The search text is kept, so the new tab comes up with
// the same filter applied. Reports whether the tab actually changed.
func (s *State) SwitchTab(tab model.Tab) bool {
	if tab.ID == s.Tab.ID {
		return false
	}
	s.Tab = tab
	s.Items = nil
	s.ResetPaging()
	return true
}

// SetSearch records the live query text on every keystroke. It returns
// the generation to stamp on the debounce timer and whether the text
// changed; an unchanged value needs no new timer.
func (s *State) SetSearch(text string) (gen int, changed bool) {
	if text == s.search {
		return s.searchGen, false
	}
	s.search = text
	s.searchGen++
	return s.searchGen, true
}

// DebounceElapsed reports whether a timer stamped with gen is still the
// latest one. A later keystroke makes older timers stale. When current,
// the loaded rows are dropped and paging rewinds so the caller can
// issue a filtered refetch; the unfiltered rows leave the list at once.
func (s *State) DebounceElapsed(gen int) bool {
	if gen != s.searchGen {
		return false
	}
	s.Items = nil
	s.ResetPaging()
	return true
}

// Begin marks a list fetch in flight. While one is pending this returns
// false and the caller must not issue another request.
func (s *State) Begin() bool {
	if s.loading {
		return false
	}
	s.loading = true
	return true
}

// EndFetch lands a page of rows. reset replaces the list, otherwise the
// page is appended. A page shorter than PageSize means the backend ran
// out of rows for this tab and filter.
func (s *State) EndFetch(items []model.Item, reset bool) {
	s.loading = false
	if reset {
		s.Items = items
	} else {
		s.Items = append(s.Items, items...)
	}
	s.hasMore = len(items) >= s.PageSize
}

// Fail clears the in-flight flag after a failed list fetch.
func (s *State) Fail() {
	s.loading = false
}

// NeedMore reports whether the cursor sits close enough to the bottom
// of the loaded rows to warrant the next page. When it fires the page
// counter advances; the caller begins the fetch.
func (s *State) NeedMore(cursor int) bool {
	if s.loading || !s.hasMore || len(s.Items) == 0 {
		return false
	}
	if cursor < len(s.Items)-scrollAhead {
		return false
	}
	s.page++
	return true
}

// SetStats replaces the aggregates snapshot.
func (s *State) SetStats(stats model.Stats) {
	s.Stats = stats
}

// PatchField applies an optimistic single-field edit to the row with id
// and returns the prior value so a failed PUT can undo it.
func (s *State) PatchField(id int64, field string, value any) (prev any, err error) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return s.Items[i].SetField(field, value)
		}
	}
	return nil, fmt.Errorf("item %d not loaded", id)
}

// RollbackField restores a value captured by PatchField. A row that
// disappeared in the meantime is left alone.
func (s *State) RollbackField(id int64, field string, prev any) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items[i].SetField(field, prev)
			return
		}
	}
}

// Append adds server-created rows to the end of the list.
func (s *State) Append(items ...model.Item) {
	s.Items = append(s.Items, items...)
}

// Remove drops exactly the row with id, keeping the order of the rest.
func (s *State) Remove(id int64) bool {
	for i := range s.Items {
		if s.Items[i].ID == id {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Replace swaps the row with item.ID for the server's representation.
func (s *State) Replace(item model.Item) bool {
	for i := range s.Items {
		if s.Items[i].ID == item.ID {
			s.Items[i] = item
			return true
		}
	}
	return false
}

// Find returns a copy of the row with id.
func (s *State) Find(id int64) (model.Item, bool) {
	for i := range s.Items {
		if s.Items[i].ID == id {
			return s.Items[i], true
		}
	}
	return model.Item{}, false
}
