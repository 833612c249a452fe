package web

import (
	"net/http"

	"agro-backoffice/internal/app"
	"agro-backoffice/internal/core"
)

// billView handles GET /bill/{id}: the printable bill with computed totals.
func (h *Handler) billView(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	res, err := h.svc.GetBill(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res.Detail)
}

func (h *Handler) apiListBills(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListBills(r.Context(), windowParams(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiCreateBill(w http.ResponseWriter, r *http.Request) {
	var in core.BillInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = nil
	res, err := h.svc.SaveBill(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, res.Detail)
}

func (h *Handler) apiUpdateBill(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in core.BillInput
	if !decodeJSON(w, r, &in) {
		return
	}
	in.ID = &id
	res, err := h.svc.SaveBill(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res.Detail)
}

func (h *Handler) apiDeleteBill(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteBill(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// apiMarkBillsPaid handles POST /api/bills/mark-paid with body {"ids": [...]}.
func (h *Handler) apiMarkBillsPaid(w http.ResponseWriter, r *http.Request) {
	var req app.MarkPaidRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	res, err := h.svc.MarkBillsPaid(r.Context(), req)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}
