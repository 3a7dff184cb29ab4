package model

// Stats are the backend-computed aggregates for one tab. The client
// never derives them locally; it replaces the snapshot wholesale after
// any mutation that touches prices or sold status.
type Stats struct {
	TotalRows         int   `json:"total_rows"`
	TotalItems        int   `json:"total_items"`
	InventoryValue    int64 `json:"inventory_value"`
	SoldPurchaseValue int64 `json:"sold_purchase_value"`
	SalesValue        int64 `json:"sales_value"`
	Profit            int64 `json:"profit"`
}
