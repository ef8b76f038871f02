package domain

type Medicine struct {
	ID           int64   `db:"id" json:"id"`
	Name         string  `db:"name" json:"name"`
	Price        float64 `db:"price" json:"price"`
	Quantity     int64   `db:"quantity" json:"quantity"`
	SupplierID   *int64  `db:"supplier_id" json:"supplier_id,omitempty"`
	SupplierName *string `db:"supplier_name" json:"supplier_name,omitempty"`
	Expiry       *string `db:"expiry" json:"expiry,omitempty"`
	CreatedAt    string  `db:"created_at" json:"created_at"`
}

// StockItem is a medicine annotated with flags derived at read time.
type StockItem struct {
	Medicine
	LowStock bool `json:"low_stock"`
	Expired  bool `json:"expired"`
}

// StockReport groups the medicines that need attention. A medicine may
// appear in both lists.
type StockReport struct {
	LowStock []StockItem `json:"low_stock"`
	Expired  []StockItem `json:"expired"`
}
