package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSoldAndProfit(t *testing.T) {
	it := Item{PurchasePrice: 500000, SalePrice: 650000}
	assert.False(t, it.Sold())

	it.SoldDate = "2025-03-14"
	assert.True(t, it.Sold())
	assert.Equal(t, int64(150000), it.Profit())
}

func TestSetFieldReturnsPrevious(t *testing.T) {
	it := Item{Owner: "Ali", PurchasePrice: 500000}

	prev, err := it.SetField(FieldOwner, "Vali")
	assert.NoError(t, err)
	assert.Equal(t, "Ali", prev)
	assert.Equal(t, "Vali", it.Owner)

	prev, err = it.SetField(FieldPurchasePrice, int64(450000))
	assert.NoError(t, err)
	assert.Equal(t, int64(500000), prev)
	assert.Equal(t, int64(450000), it.PurchasePrice)

	// Rolling back with the returned value restores the prior state.
	_, err = it.SetField(FieldPurchasePrice, prev)
	assert.NoError(t, err)
	assert.Equal(t, int64(500000), it.PurchasePrice)
}

func TestSetFieldRejectsWrongTypes(t *testing.T) {
	it := Item{}

	_, err := it.SetField(FieldPurchasePrice, "lots")
	assert.Error(t, err)

	_, err = it.SetField(FieldOwner, 42)
	assert.Error(t, err)

	_, err = it.SetField("color", "red")
	assert.Error(t, err)
}

func TestAffectsStats(t *testing.T) {
	assert.True(t, AffectsStats(FieldPurchasePrice))
	assert.True(t, AffectsStats(FieldSalePrice))
	assert.True(t, AffectsStats(FieldSoldDate))
	assert.False(t, AffectsStats(FieldOwner))
	assert.False(t, AffectsStats(FieldIMEI))
}

func TestParseFieldInput(t *testing.T) {
	v, err := ParseFieldInput(FieldPurchasePrice, "500000")
	assert.NoError(t, err)
	assert.Equal(t, int64(500000), v)

	// Grouping spaces are tolerated in amounts.
	v, err = ParseFieldInput(FieldSalePrice, "1 250 000")
	assert.NoError(t, err)
	assert.Equal(t, int64(1250000), v)

	_, err = ParseFieldInput(FieldPurchasePrice, "abc")
	assert.Error(t, err)

	_, err = ParseFieldInput(FieldSalePrice, "-5")
	assert.Error(t, err)

	v, err = ParseFieldInput(FieldOwner, "  Ali  ")
	assert.NoError(t, err)
	assert.Equal(t, "Ali", v)
}

func TestTabLookup(t *testing.T) {
	tab, ok := TabByID("korea")
	assert.True(t, ok)
	assert.Equal(t, "Korean stock", tab.Label)

	_, ok = TabByID("nope")
	assert.False(t, ok)

	assert.Equal(t, Tabs[1].ID, NextTab(Tabs[0]).ID)
	assert.Equal(t, Tabs[0].ID, NextTab(Tabs[len(Tabs)-1]).ID)
}
