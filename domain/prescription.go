package domain

type Prescription struct {
	ID           int64              `db:"id" json:"id"`
	CustomerID   int64              `db:"customer_id" json:"customer_id"`
	CustomerName string             `db:"customer_name" json:"customer_name"`
	CreatedAt    string             `db:"created_at" json:"created_at"`
	Items        []PrescriptionItem `json:"items,omitempty"`
}

type PrescriptionItem struct {
	ID             int64  `db:"id" json:"id"`
	PrescriptionID int64  `db:"prescription_id" json:"prescription_id"`
	MedicineID     int64  `db:"medicine_id" json:"medicine_id"`
	MedicineName   string `db:"medicine_name" json:"medicine_name,omitempty"`
	Quantity       int64  `db:"quantity" json:"quantity"`
}

type Customer struct {
	ID    int64   `db:"id" json:"id"`
	Name  string  `db:"name" json:"name"`
	Phone *string `db:"phone" json:"phone,omitempty"`
}
