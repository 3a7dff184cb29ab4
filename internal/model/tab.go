package model

// Tab is a named partition of inventory rows. The backend filters every
// list/stats request by tab id.
type Tab struct {
	ID    string
	Label string
}

// Tabs in display order.
var Tabs = []Tab{
	{ID: "new", Label: "New stock"},
	{ID: "korea", Label: "Korean stock"},
}

// DefaultTab is the partition shown after login.
func DefaultTab() Tab { return Tabs[0] }

// TabByID looks a tab up by its wire id.
func TabByID(id string) (Tab, bool) {
	for _, t := range Tabs {
		if t.ID == id {
			return t, true
		}
	}
	return Tab{}, false
}

// NextTab returns the tab after t, wrapping around.
func NextTab(t Tab) Tab {
	for i, c := range Tabs {
		if c.ID == t.ID {
			return Tabs[(i+1)%len(Tabs)]
		}
	}
	return DefaultTab()
}

// PrevTab returns the tab before t, wrapping around.
func PrevTab(t Tab) Tab {
	for i, c := range Tabs {
		if c.ID == t.ID {
			return Tabs[(i+len(Tabs)-1)%len(Tabs)]
		}
	}
	return DefaultTab()
}
