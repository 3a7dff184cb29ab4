package tui

import (
	"strconv"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"

	"phonecrm/internal/model"
	"phonecrm/internal/ui"
)

// fieldTitles maps wire field names to column headers and edit labels.
var fieldTitles = map[string]string{
	model.FieldOwner:         "Owner",
	model.FieldAcquiredDate:  "Acquired",
	model.FieldModel:         "Model",
	model.FieldIMEI:          "IMEI",
	model.FieldGB:            "GB",
	model.FieldPurchasePrice: "Buy",
	model.FieldSoldDate:      "Sold",
	model.FieldSalePrice:     "Sale",
}

func newTable() table.Model {
	t := table.New(
		table.WithColumns(tableColumns(defaultWidth)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("8")).
		BorderBottom(true).
		Bold(true)
	s.Selected = ui.Selected
	t.SetStyles(s)
	return t
}

// tableColumns sizes the grid for a terminal width. The owner and model
// columns flex; everything else is fixed.
func tableColumns(width int) []table.Column {
	// Fixed widths plus one cell padding on each side per column.
	const fixed = 5 + 10 + 16 + 4 + 11 + 10 + 11 + 11 + 20
	flex := width - fixed - 4
	owner, phone := 18, 14
	if flex > 36 {
		owner = flex * 3 / 5
		phone = flex - owner
	}
	return []table.Column{
		{Title: "ID", Width: 5},
		{Title: fieldTitles[model.FieldOwner], Width: owner},
		{Title: fieldTitles[model.FieldAcquiredDate], Width: 10},
		{Title: fieldTitles[model.FieldModel], Width: phone},
		{Title: fieldTitles[model.FieldIMEI], Width: 16},
		{Title: fieldTitles[model.FieldGB], Width: 4},
		{Title: fieldTitles[model.FieldPurchasePrice], Width: 11},
		{Title: fieldTitles[model.FieldSoldDate], Width: 10},
		{Title: fieldTitles[model.FieldSalePrice], Width: 11},
		{Title: "Profit", Width: 11},
	}
}

// itemRow renders one inventory row. Sold-only cells show "-" while the
// item is still in stock.
func itemRow(it model.Item) table.Row {
	sold, sale, profit := "-", "-", "-"
	if it.Sold() {
		sold = it.SoldDate
		sale = ui.Money(it.SalePrice)
		profit = ui.Money(it.Profit())
	}
	return table.Row{
		strconv.FormatInt(it.ID, 10),
		it.Owner,
		it.AcquiredDate,
		it.Model,
		it.IMEI,
		it.GB,
		ui.Money(it.PurchasePrice),
		sold,
		sale,
		profit,
	}
}
