package domain

type Sale struct {
	ID          int64      `db:"id" json:"id"`
	SaleDate    string     `db:"sale_date" json:"sale_date"`
	TotalAmount float64    `db:"total_amount" json:"total_amount"`
	CreatedAt   string     `db:"created_at" json:"created_at"`
	Items       []SaleItem `json:"items,omitempty"`
}

type SaleItem struct {
	ID           int64   `db:"id" json:"id"`
	SaleID       int64   `db:"sale_id" json:"sale_id"`
	MedicineID   int64   `db:"medicine_id" json:"medicine_id"`
	MedicineName string  `db:"medicine_name" json:"medicine_name"`
	Quantity     int64   `db:"quantity" json:"quantity"`
	UnitPrice    float64 `db:"unit_price" json:"unit_price"`
	Subtotal     float64 `db:"subtotal" json:"subtotal"`
}

// Bill is an itemized quote over current prices and stock. Generating one
// writes nothing; only a sale records history.
type Bill struct {
	Lines    []BillLine `json:"lines"`
	Subtotal float64    `json:"subtotal"`
	Tax      float64    `json:"tax"`
	Discount float64    `json:"discount"`
	Total    float64    `json:"total"`
}

type BillLine struct {
	MedicineID int64   `json:"medicine_id"`
	Name       string  `json:"name"`
	UnitPrice  float64 `json:"unit_price"`
	Quantity   int64   `json:"quantity"`
	LineTotal  float64 `json:"line_total"`
}
