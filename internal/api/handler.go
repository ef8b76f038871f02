package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"pharmadesk/m/domain"
	"pharmadesk/m/internal/store"
)

// Handler bundles dependencies for HTTP handlers.
type Handler struct {
	store  *store.Store
	secret string
}

// New constructs a Handler.
func New(st *store.Store, secret string) *Handler {
	return &Handler{store: st, secret: secret}
}

// Router wires up the HTTP API. The medicine listing and creation routes
// are public; management routes sit behind bearer auth.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/health", h.health)

	r.Route("/auth", func(r chi.Router) {
		r.Post("/register", h.register)
		r.Post("/login", h.login)
	})

	r.Route("/medicines", func(r chi.Router) {
		r.Get("/", h.listMedicines)
		r.Post("/", h.createMedicine)
		r.Get("/search", h.searchMedicines)
		r.With(h.authMiddleware).Delete("/{id}", h.deleteMedicine)
	})

	r.Group(func(pr chi.Router) {
		pr.Use(h.authMiddleware)

		pr.Get("/stock", h.listStock)

		pr.Route("/suppliers", func(r chi.Router) {
			r.Post("/", h.createSupplier)
			r.Get("/", h.listSuppliers)
		})

		pr.Post("/sales", h.createSale)
		pr.Post("/prescriptions", h.createPrescription)

		pr.Route("/reports", func(r chi.Router) {
			r.Get("/sales/daily", h.dailySales)
			r.Get("/sales", h.salesReport)
			r.Get("/stock", h.stockReport)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Helpers

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps store error kinds to HTTP statuses.
func respondDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		respondError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, domain.ErrNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, domain.ErrInsufficientStock):
		respondError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("request failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}
