package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"agro-backoffice/internal/app"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Handler holds the ApplicationService and the chi router.
type Handler struct {
	svc app.ApplicationService
	log *zap.Logger
}

// NewHandler creates and wires the chi router with all routes.
func NewHandler(svc app.ApplicationService, allowedOrigins string, logger *zap.Logger) http.Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	h := &Handler{svc: svc, log: logger}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(Logger(logger))
	r.Use(Recoverer(logger))
	r.Use(CORS(allowedOrigins))

	// ── Health ────────────────────────────────────────────────────────────────
	r.Get("/api/health", h.health)

	// ── Printing views ───────────────────────────────────────────────────────
	r.Get("/report-panel", h.reportPanel)
	r.Get("/bill/{id}", h.billView)

	// ── Admin API ─────────────────────────────────────────────────────────────
	r.Route("/api", func(r chi.Router) {
		r.Use(RequestBodyLimit(1 << 20)) // 1 MB

		r.Get("/reports", h.reportPanel)

		r.Get("/raw-materials", h.apiListRawMaterials)
		r.Post("/raw-materials", h.apiCreateRawMaterial)
		r.Get("/raw-materials/{id}", h.apiGetRawMaterial)
		r.Put("/raw-materials/{id}", h.apiRenameRawMaterial)
		r.Delete("/raw-materials/{id}", h.apiDeleteRawMaterial)

		r.Get("/finished-products", h.apiListFinishedProducts)
		r.Post("/finished-products", h.apiCreateFinishedProduct)
		r.Get("/finished-products/{id}", h.apiGetFinishedProduct)
		r.Put("/finished-products/{id}", h.apiUpdateFinishedProduct)
		r.Delete("/finished-products/{id}", h.apiDeleteFinishedProduct)

		r.Get("/customers", h.apiListCustomers)
		r.Post("/customers", h.apiCreateCustomer)
		r.Get("/customers/{id}", h.apiGetCustomer)
		r.Put("/customers/{id}", h.apiUpdateCustomer)
		r.Delete("/customers/{id}", h.apiDeleteCustomer)

		r.Get("/purchases", h.apiListPurchases)
		r.Post("/purchases", h.apiCreatePurchase)
		r.Get("/purchases/{id}", h.apiGetPurchase)
		r.Put("/purchases/{id}", h.apiUpdatePurchase)
		r.Delete("/purchases/{id}", h.apiDeletePurchase)

		r.Get("/productions", h.apiListProductions)
		r.Post("/productions", h.apiRecordProduction)
		r.Get("/productions/{id}", h.apiGetProduction)
		r.Put("/productions/{id}", h.apiUpdateProduction)
		r.Delete("/productions/{id}", h.apiDeleteProduction)

		r.Get("/expenses", h.apiListExpenses)
		r.Post("/expenses", h.apiCreateExpense)
		r.Get("/expenses/{id}", h.apiGetExpense)
		r.Put("/expenses/{id}", h.apiUpdateExpense)
		r.Delete("/expenses/{id}", h.apiDeleteExpense)

		r.Get("/bills", h.apiListBills)
		r.Post("/bills", h.apiCreateBill)
		r.Post("/bills/mark-paid", h.apiMarkBillsPaid)
		r.Get("/bills/{id}", h.billView)
		r.Put("/bills/{id}", h.apiUpdateBill)
		r.Delete("/bills/{id}", h.apiDeleteBill)
	})

	return r
}

// health reports whether the database is reachable.
func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	type response struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	if err := h.svc.Ping(r.Context()); err != nil {
		h.log.Warn("health check failed", zap.Error(err))
		writeJSONStatus(w, http.StatusServiceUnavailable, response{Status: "degraded", Database: "unreachable"})
		return
	}
	writeJSON(w, response{Status: "ok", Database: "ok"})
}

// idParam parses the {id} URL parameter. It writes a 400 and returns false when
// the value is not a positive integer.
func idParam(w http.ResponseWriter, r *http.Request) (int, bool) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		writeError(w, r, "invalid id "+strconv.Quote(raw), "BAD_REQUEST", http.StatusBadRequest)
		return 0, false
	}
	return id, true
}

// windowParams reads the optional start_date / end_date query parameters.
func windowParams(r *http.Request) app.WindowRequest {
	q := r.URL.Query()
	return app.WindowRequest{StartDate: q.Get("start_date"), EndDate: q.Get("end_date")}
}

// decodeJSON decodes the request body into v and returns false + writes an appropriate
// error response on failure. Returns HTTP 413 when the body exceeds the size limit set
// by RequestBodyLimit middleware; HTTP 400 for all other decode errors.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			writeError(w, r, "request body too large", "REQUEST_TOO_LARGE", http.StatusRequestEntityTooLarge)
			return false
		}
		writeError(w, r, "invalid JSON body: "+err.Error(), "BAD_REQUEST", http.StatusBadRequest)
		return false
	}
	return true
}

func noContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}
