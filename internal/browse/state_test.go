package browse

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"phonecrm/internal/model"
)

func rows(ids ...int64) []model.Item {
	out := make([]model.Item, 0, len(ids))
	for _, id := range ids {
		out = append(out, model.Item{ID: id})
	}
	return out
}

func TestNew_Defaults(t *testing.T) {
	s := New(model.DefaultTab(), 0)
	assert.Equal(t, PageSize, s.PageSize)
	assert.True(t, s.HasMore())
	assert.False(t, s.Loading())
	assert.Zero(t, s.Offset())
	assert.Empty(t, s.Items)
}

func TestBegin_SingleFlight(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	assert.True(t, s.Begin())
	assert.False(t, s.Begin(), "a second fetch while one is pending must be dropped")

	s.EndFetch(rows(1, 2, 3), true)
	assert.True(t, s.Begin(), "a landed fetch frees the guard")

	s.Fail()
	assert.True(t, s.Begin(), "a failed fetch frees the guard too")
}

func TestEndFetch_ResetReplacesAppendExtends(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	s.Begin()
	s.EndFetch(rows(1, 2, 3), true)
	assert.Equal(t, rows(1, 2, 3), s.Items)
	assert.True(t, s.HasMore(), "a full page promises more rows")

	s.Begin()
	s.EndFetch(rows(4, 5), false)
	assert.Equal(t, rows(1, 2, 3, 4, 5), s.Items)
	assert.False(t, s.HasMore(), "a short page is the end of the data")

	s.Begin()
	s.EndFetch(rows(9), true)
	assert.Equal(t, rows(9), s.Items)
}

func TestNeedMore_PagingTriggers(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	assert.False(t, s.NeedMore(0), "nothing loaded yet")

	s.Begin()
	s.EndFetch(rows(1, 2, 3), true)

	// scrollAhead dwarfs a three row list, so any cursor is "near".
	assert.True(t, s.NeedMore(0))
	assert.Equal(t, 1, s.Page())
	assert.Equal(t, 3, s.Offset())

	// Guarded while the page two fetch is in flight.
	s.Begin()
	assert.False(t, s.NeedMore(2))
	s.EndFetch(rows(4), false)

	// Short page: no more fetches until a reset.
	assert.False(t, s.NeedMore(3))
	s.ResetPaging()
	assert.True(t, s.NeedMore(3))
}

func TestSwitchTab_ResetsPagingKeepsSearch(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	s.SetSearch("iphone")
	s.Begin()
	s.EndFetch(rows(1, 2, 3), true)
	s.NeedMore(2)
	assert.Equal(t, 1, s.Page())

	other := model.Tabs[1]
	assert.True(t, s.SwitchTab(other))
	assert.Equal(t, other.ID, s.Tab.ID)
	assert.Empty(t, s.Items, "the previous tab's rows leave with it")
	assert.Zero(t, s.Page())
	assert.True(t, s.HasMore())
	assert.Equal(t, "iphone", s.Search(), "the filter survives a tab switch")

	assert.False(t, s.SwitchTab(other), "re-selecting the active tab is a no-op")
}

func TestSetSearch_GenerationTracksKeystrokes(t *testing.T) {
	s := New(model.DefaultTab(), 3)

	gen1, changed := s.SetSearch("i")
	assert.True(t, changed)
	gen2, changed := s.SetSearch("ip")
	assert.True(t, changed)
	assert.Greater(t, gen2, gen1)

	same, changed := s.SetSearch("ip")
	assert.False(t, changed, "cursor movement must not restart the timer")
	assert.Equal(t, gen2, same)

	assert.False(t, s.DebounceElapsed(gen1), "an older timer is stale")
	assert.True(t, s.DebounceElapsed(gen2))
}

func TestDebounceElapsed_RewindsPaging(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	s.Begin()
	s.EndFetch(rows(1, 2), true)
	assert.False(t, s.HasMore())

	gen, _ := s.SetSearch("alice")
	assert.True(t, s.DebounceElapsed(gen))
	assert.Zero(t, s.Offset())
	assert.True(t, s.HasMore())
	assert.Empty(t, s.Items, "the unfiltered rows leave when the filter takes effect")
}

func TestTabAndSearchChange_DropRowsEvenWhenRefetchFails(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	s.Begin()
	s.EndFetch(rows(1, 2), true)

	assert.True(t, s.SwitchTab(model.Tabs[1]))
	assert.Empty(t, s.Items)
	s.Begin()
	s.Fail()
	assert.Empty(t, s.Items, "a failed refetch leaves the new tab empty, not showing the old one")

	s.Begin()
	s.EndFetch(rows(3, 4), true)
	gen, _ := s.SetSearch("galaxy")
	assert.True(t, s.DebounceElapsed(gen))
	assert.Empty(t, s.Items)
	s.Begin()
	s.Fail()
	assert.Empty(t, s.Items, "a failed filtered refetch must not resurface unfiltered rows")
}

func TestPatchField_ReturnsPriorValueForRollback(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	s.Append(model.Item{ID: 7, Owner: "Alice", PurchasePrice: 900})

	prev, err := s.PatchField(7, model.FieldOwner, "Bob")
	assert.NoError(t, err)
	assert.Equal(t, "Alice", prev)
	got, _ := s.Find(7)
	assert.Equal(t, "Bob", got.Owner)

	s.RollbackField(7, model.FieldOwner, prev)
	got, _ = s.Find(7)
	assert.Equal(t, "Alice", got.Owner)

	_, err = s.PatchField(99, model.FieldOwner, "X")
	assert.Error(t, err)
}

func TestRemove_DropsExactlyOneRow(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	s.Append(rows(1, 2, 3, 4)...)

	assert.True(t, s.Remove(3))
	assert.Equal(t, rows(1, 2, 4), s.Items)
	assert.False(t, s.Remove(3), "a second delete of the same id finds nothing")
}

func TestReplace_SwapsServerRow(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	s.Append(model.Item{ID: 5, Owner: "Bob", SoldDate: "2026-02-01", SalePrice: 1000})

	assert.True(t, s.Replace(model.Item{ID: 5, Owner: "Bob"}))
	got, ok := s.Find(5)
	assert.True(t, ok)
	assert.False(t, got.Sold())
	assert.Zero(t, got.SalePrice)

	assert.False(t, s.Replace(model.Item{ID: 6}))
}

func TestSetStats_ReplacesSnapshot(t *testing.T) {
	s := New(model.DefaultTab(), 3)
	s.SetStats(model.Stats{TotalRows: 4, Profit: 100})
	assert.Equal(t, 4, s.Stats.TotalRows)
	assert.Equal(t, int64(100), s.Stats.Profit)
}
