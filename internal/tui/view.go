package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"phonecrm/internal/model"
	"phonecrm/internal/ui"
)

var (
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Faint(true).Padding(0, 2)

	overlayBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(0, 1)

	loginBox = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("8")).
			Padding(1, 3)
)

func (m Model) View() string {
	if m.mode == viewLogin {
		return m.loginView()
	}
	return m.browseView()
}

func (m Model) loginView() string {
	var b strings.Builder
	b.WriteString(ui.Title.Render("Phone CRM") + "\n\n")
	b.WriteString("Username\n" + m.login.username.View() + "\n\n")
	b.WriteString("Password\n" + m.login.password.View() + "\n\n")
	switch {
	case m.login.busy:
		b.WriteString(ui.Pending.Render("signing in...") + "\n")
	case m.login.errMsg != "":
		b.WriteString(ui.Error.Render(m.login.errMsg) + "\n")
	default:
		b.WriteString("\n")
	}
	b.WriteString("\n" + ui.Help.Render("enter sign in • tab switch field • esc quit"))
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, loginBox.Render(b.String()))
}

func (m Model) browseView() string {
	sections := []string{
		m.tabBarView(),
		m.searchLineView(),
		m.table.View(),
		m.statsView(),
		m.statusView(),
		m.help.View(m.keys),
	}
	if ov := m.overlayView(); ov != "" {
		sections = append(sections, ov)
	}
	return strings.Join(sections, "\n")
}

func (m Model) tabBarView() string {
	parts := make([]string, 0, len(model.Tabs))
	for i, t := range model.Tabs {
		label := fmt.Sprintf("%d %s", i+1, t.Label)
		if t.ID == m.state.Tab.ID {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func (m Model) searchLineView() string {
	if m.overlay == overlaySearch {
		return "search: " + m.input.View()
	}
	if s := m.state.Search(); s != "" {
		return "search: " + s + ui.Muted.Render("  (/ to edit)")
	}
	return ui.Muted.Render("press / to search")
}

func (m Model) statsView() string {
	st := m.state.Stats
	parts := []string{
		ui.Muted.Render("rows") + " " + fmt.Sprint(st.TotalRows),
		ui.Muted.Render("in stock") + " " + fmt.Sprint(st.TotalItems),
		ui.Muted.Render("stock value") + " " + ui.Money(st.InventoryValue),
		ui.Muted.Render("sold cost") + " " + ui.Money(st.SoldPurchaseValue),
		ui.Muted.Render("sales") + " " + ui.Money(st.SalesValue),
		ui.Muted.Render("profit") + " " + ui.Money(st.Profit),
	}
	return strings.Join(parts, "   ")
}

func (m Model) statusView() string {
	var parts []string
	if m.state.Loading() {
		parts = append(parts, ui.Pending.Render("loading..."))
	}
	if m.flash != "" {
		if m.flashErr {
			parts = append(parts, ui.Error.Render(m.flash))
		} else {
			parts = append(parts, ui.Success.Render(m.flash))
		}
	}
	parts = append(parts, ui.Muted.Render(fmt.Sprintf("%d rows loaded", len(m.state.Items))))
	return strings.Join(parts, "   ")
}

func (m Model) overlayView() string {
	switch m.overlay {
	case overlayAdd:
		title := "Add items: how many?"
		if m.overlayErr != "" {
			title += "  " + ui.Error.Render(m.overlayErr)
		}
		return overlayBox.Render(title + "\n" + m.input.View())
	case overlayEdit:
		field := model.Fields[m.editField]
		title := fmt.Sprintf("Edit #%d  %s", m.editID, ui.Accent.Render(fieldTitles[field]))
		if m.overlayErr != "" {
			title += "  " + ui.Error.Render(m.overlayErr)
		}
		hint := ui.Help.Render("enter save • tab next field • esc cancel")
		return overlayBox.Render(title + "\n" + m.input.View() + "\n" + hint)
	case overlayConfirmAdd:
		return overlayBox.Render(fmt.Sprintf("Create %d rows?  %s", m.addCount,
			ui.Help.Render("y confirm • n cancel")))
	case overlayConfirmDelete:
		return overlayBox.Render(fmt.Sprintf("Delete item #%d?  %s", m.confirmID,
			ui.Help.Render("y confirm • n cancel")))
	case overlayConfirmReturn:
		return overlayBox.Render(fmt.Sprintf("Return item #%d to stock?  %s", m.confirmID,
			ui.Help.Render("y confirm • n cancel")))
	}
	return ""
}
