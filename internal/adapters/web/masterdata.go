package web

import (
	"net/http"

	"agro-backoffice/internal/core"
)

// ── Raw materials ─────────────────────────────────────────────────────────────

type rawMaterialRequest struct {
	Name string `json:"name"`
}

func (h *Handler) apiListRawMaterials(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListRawMaterials(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiGetRawMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetRawMaterial(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, v)
}

func (h *Handler) apiCreateRawMaterial(w http.ResponseWriter, r *http.Request) {
	var req rawMaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.CreateRawMaterial(r.Context(), req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, m)
}

func (h *Handler) apiRenameRawMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var req rawMaterialRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	m, err := h.svc.RenameRawMaterial(r.Context(), id, req.Name)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, m)
}

func (h *Handler) apiDeleteRawMaterial(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteRawMaterial(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// ── Finished products ─────────────────────────────────────────────────────────

func (h *Handler) apiListFinishedProducts(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListFinishedProducts(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiGetFinishedProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetFinishedProduct(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, v)
}

func (h *Handler) apiCreateFinishedProduct(w http.ResponseWriter, r *http.Request) {
	var in core.FinishedProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.CreateFinishedProduct(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, p)
}

func (h *Handler) apiUpdateFinishedProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in core.FinishedProductInput
	if !decodeJSON(w, r, &in) {
		return
	}
	p, err := h.svc.UpdateFinishedProduct(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, p)
}

func (h *Handler) apiDeleteFinishedProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteFinishedProduct(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}

// ── Customers ─────────────────────────────────────────────────────────────────

func (h *Handler) apiListCustomers(w http.ResponseWriter, r *http.Request) {
	res, err := h.svc.ListCustomers(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, res)
}

func (h *Handler) apiGetCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	v, err := h.svc.GetCustomer(r.Context(), id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, v)
}

func (h *Handler) apiCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var in core.CustomerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.CreateCustomer(r.Context(), in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSONStatus(w, http.StatusCreated, c)
}

func (h *Handler) apiUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	var in core.CustomerInput
	if !decodeJSON(w, r, &in) {
		return
	}
	c, err := h.svc.UpdateCustomer(r.Context(), id, in)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, c)
}

func (h *Handler) apiDeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	if err := h.svc.DeleteCustomer(r.Context(), id); err != nil {
		h.fail(w, r, err)
		return
	}
	noContent(w)
}
