package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Wire names for single-field updates (PUT /items/{id} {field: value}).
// The backend owns these; display labels live in the UI layer.
const (
	FieldOwner         = "fio"
	FieldAcquiredDate  = "sana"
	FieldModel         = "model"
	FieldIMEI          = "imei"
	FieldGB            = "gb"
	FieldPurchasePrice = "purchase_price"
	FieldSoldDate      = "sold_date"
	FieldSalePrice     = "sale_price"
)

// Fields lists the editable wire fields in display order.
var Fields = []string{
	FieldOwner,
	FieldAcquiredDate,
	FieldModel,
	FieldIMEI,
	FieldGB,
	FieldPurchasePrice,
	FieldSoldDate,
	FieldSalePrice,
}

// Item is one inventory row. The backend owns the canonical copy; the
// client holds a locally mutable cache of the loaded pages.
type Item struct {
	ID            int64  `json:"id"`
	Owner         string `json:"fio"`
	AcquiredDate  string `json:"sana"`
	Model         string `json:"model"`
	IMEI          string `json:"imei"`
	GB            string `json:"gb"`
	PurchasePrice int64  `json:"purchase_price"`
	SoldDate      string `json:"sold_date"`
	SalePrice     int64  `json:"sale_price"`
}

// Sold reports whether the row is sold (non-empty sold date).
func (i Item) Sold() bool { return i.SoldDate != "" }

// Profit is sale minus purchase. Only meaningful for sold rows.
func (i Item) Profit() int64 { return i.SalePrice - i.PurchasePrice }

// SetField applies a single-field update and returns the previous value
// so a failed request can roll it back.
func (i *Item) SetField(field string, value any) (prev any, err error) {
	if NumericField(field) {
		n, ok := toInt64(value)
		if !ok {
			return nil, fmt.Errorf("field %s: expected a number, got %T", field, value)
		}
		switch field {
		case FieldPurchasePrice:
			prev, i.PurchasePrice = i.PurchasePrice, n
		case FieldSalePrice:
			prev, i.SalePrice = i.SalePrice, n
		}
		return prev, nil
	}

	s, ok := value.(string)
	if !ok {
		return nil, fmt.Errorf("field %s: expected a string, got %T", field, value)
	}
	switch field {
	case FieldOwner:
		prev, i.Owner = i.Owner, s
	case FieldAcquiredDate:
		prev, i.AcquiredDate = i.AcquiredDate, s
	case FieldModel:
		prev, i.Model = i.Model, s
	case FieldIMEI:
		prev, i.IMEI = i.IMEI, s
	case FieldGB:
		prev, i.GB = i.GB, s
	case FieldSoldDate:
		prev, i.SoldDate = i.SoldDate, s
	default:
		return nil, fmt.Errorf("unknown field %q", field)
	}
	return prev, nil
}

// FieldValue returns the current value of a wire field.
func (i Item) FieldValue(field string) (any, error) {
	switch field {
	case FieldOwner:
		return i.Owner, nil
	case FieldAcquiredDate:
		return i.AcquiredDate, nil
	case FieldModel:
		return i.Model, nil
	case FieldIMEI:
		return i.IMEI, nil
	case FieldGB:
		return i.GB, nil
	case FieldPurchasePrice:
		return i.PurchasePrice, nil
	case FieldSoldDate:
		return i.SoldDate, nil
	case FieldSalePrice:
		return i.SalePrice, nil
	}
	return nil, fmt.Errorf("unknown field %q", field)
}

// AffectsStats reports whether updating field changes the backend's
// aggregates, meaning stats must be refetched afterwards.
func AffectsStats(field string) bool {
	switch field {
	case FieldPurchasePrice, FieldSalePrice, FieldSoldDate:
		return true
	}
	return false
}

// NumericField reports whether the field carries an integer amount on
// the wire rather than a string.
func NumericField(field string) bool {
	return field == FieldPurchasePrice || field == FieldSalePrice
}

// KnownField reports whether field is part of the wire contract.
func KnownField(field string) bool {
	for _, f := range Fields {
		if f == field {
			return true
		}
	}
	return false
}

// ParseFieldInput converts user-typed text into the wire value for a
// field: integers for prices, trimmed strings for everything else.
func ParseFieldInput(field, text string) (any, error) {
	text = strings.TrimSpace(text)
	if !NumericField(field) {
		return text, nil
	}
	if text == "" {
		return int64(0), nil
	}
	n, err := strconv.ParseInt(strings.ReplaceAll(text, " ", ""), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: not a number: %s", field, text)
	}
	if n < 0 {
		return nil, fmt.Errorf("%s: must not be negative", field)
	}
	return n, nil
}

func toInt64(value any) (int64, bool) {
	switch n := value.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
