package web

import (
	"net/http"

	"agro-backoffice/internal/core"
)

// ── Purchases ─────────────────────────────────────────────────────────────────

func (h *Handler) apiListPurchases(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListPurchases(r.Context(), windowParams(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiGetPurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetPurchase(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, v)
}

func (h *Handler) apiCreatePurchase(w http.ResponseWriter, r *http.Request) {
	var in core.PurchaseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.CreatePurchase(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

func (h *Handler) apiUpdatePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in core.PurchaseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.UpdatePurchase(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) apiDeletePurchase(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeletePurchase(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// ── Production ────────────────────────────────────────────────────────────────

func (h *Handler) apiListProductions(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListProductions(r.Context(), windowParams(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiGetProduction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetProduction(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, v)
}

func (h *Handler) apiRecordProduction(w http.ResponseWriter, r *http.Request) {
	var in core.ProductionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.RecordProduction(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

func (h *Handler) apiUpdateProduction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in core.ProductionInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.UpdateProduction(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) apiDeleteProduction(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteProduction(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// ── Expenses ──────────────────────────────────────────────────────────────────

func (h *Handler) apiListExpenses(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListExpenses(r.Context(), windowParams(r))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiGetExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetExpense(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, v)
}

func (h *Handler) apiCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in core.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.svc.CreateExpense(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, e)
}

func (h *Handler) apiUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in core.ExpenseInput
	if !decodeJSON(w, r, &in) {
		return
	}
	e, err := h.svc.UpdateExpense(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, e)
}

func (h *Handler) apiDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteExpense(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}
