package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"pharmadesk/m/internal/store"
)

type medicineRequest struct {
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	Quantity     int64   `json:"quantity"`
	SupplierID   *int64  `json:"supplier_id,omitempty"`
	SupplierName string  `json:"supplier_name,omitempty"`
	Expiry       string  `json:"expiry,omitempty"`
}

func (h *Handler) listMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.store.ListMedicines(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) createMedicine(w http.ResponseWriter, r *http.Request) {
	var req medicineRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	medicine, err := h.store.AddMedicine(r.Context(), store.AddMedicineParams{
		Name:         req.Name,
		Price:        req.Price,
		Quantity:     req.Quantity,
		SupplierID:   req.SupplierID,
		SupplierName: req.SupplierName,
		Expiry:       req.Expiry,
	})
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, medicine)
}

func (h *Handler) searchMedicines(w http.ResponseWriter, r *http.Request) {
	medicines, err := h.store.SearchMedicines(r.Context(), r.URL.Query().Get("query"))
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, medicines)
}

func (h *Handler) deleteMedicine(w http.ResponseWriter, r *http.Request) {
	if !h.requireRole(w, r, "owner") {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid medicine id")
		return
	}
	if err := h.store.DeleteMedicine(r.Context(), id); err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (h *Handler) listStock(w http.ResponseWriter, r *http.Request) {
	items, err := h.store.ListStock(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, items)
}

type supplierRequest struct {
	Name    string `json:"name"`
	Contact string `json:"contact,omitempty"`
}

func (h *Handler) createSupplier(w http.ResponseWriter, r *http.Request) {
	var req supplierRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	supplier, err := h.store.AddSupplier(r.Context(), req.Name, req.Contact)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, supplier)
}

func (h *Handler) listSuppliers(w http.ResponseWriter, r *http.Request) {
	suppliers, err := h.store.ListSuppliers(r.Context())
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, suppliers)
}
