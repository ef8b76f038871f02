package api

import (
	"net/http"

	"pharmadesk/m/internal/store"
)

type saleRequest struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int64 `json:"quantity"`
}

func (h *Handler) createSale(w http.ResponseWriter, r *http.Request) {
	var req saleRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	sale, err := h.store.SellMedicine(r.Context(), req.MedicineID, req.Quantity)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, sale)
}

type prescriptionItemRequest struct {
	MedicineID int64 `json:"medicine_id"`
	Quantity   int64 `json:"quantity"`
}

type prescriptionRequest struct {
	CustomerName string                    `json:"customer_name"`
	Phone        string                    `json:"phone,omitempty"`
	Items        []prescriptionItemRequest `json:"items"`
}

func (h *Handler) createPrescription(w http.ResponseWriter, r *http.Request) {
	var req prescriptionRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	entries := make([]store.PrescriptionEntry, len(req.Items))
	for i, item := range req.Items {
		entries[i] = store.PrescriptionEntry{MedicineID: item.MedicineID, Quantity: item.Quantity}
	}
	prescription, err := h.store.RecordPrescription(r.Context(), req.CustomerName, req.Phone, entries)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, prescription)
}

func (h *Handler) dailySales(w http.ResponseWriter, r *http.Request) {
	total, count, err := h.store.TodaysSalesTotal(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"revenue": total, "sales_count": count})
}

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner") {
		return
	}
	sales, err := h.store.SalesReport(r.Context(),
		r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sales)
}

func (h *Handler) stockReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.LowStockExpiredReport(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, report)
}
