package web

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"agro-backoffice/internal/app"
	"agro-backoffice/internal/core"

	"github.com/shopspring/decimal"
)

// stubService implements app.ApplicationService. Methods not overridden panic,
// which the Recoverer turns into a 500.
type stubService struct {
	app.ApplicationService

	pingErr    error
	report     *app.ReportResult
	reportErr  error
	lastReport app.ReportRequest
	bill       *app.BillResult
	billErr    error
	saved      core.BillInput
	markReq    app.MarkPaidRequest
	markErr    error
	deleteErr  error
	purchase   core.PurchaseInput
}

func (s *stubService) Ping(context.Context) error { return s.pingErr }

func (s *stubService) RunReport(_ context.Context, req app.ReportRequest) (*app.ReportResult, error) {
	s.lastReport = req
	return s.report, s.reportErr
}

func (s *stubService) GetBill(context.Context, int) (*app.BillResult, error) {
	return s.bill, s.billErr
}

func (s *stubService) SaveBill(_ context.Context, in core.BillInput) (*app.BillResult, error) {
	s.saved = in
	return s.bill, s.billErr
}

func (s *stubService) MarkBillsPaid(_ context.Context, req app.MarkPaidRequest) (*app.MarkPaidResult, error) {
	s.markReq = req
	if s.markErr != nil {
		return nil, s.markErr
	}
	return &app.MarkPaidResult{Updated: int64(len(req.BillIDs))}, nil
}

func (s *stubService) DeleteRawMaterial(context.Context, int) error { return s.deleteErr }

func (s *stubService) CreatePurchase(_ context.Context, in core.PurchaseInput) (*core.WheatPurchase, error) {
	s.purchase = in
	return &core.WheatPurchase{ID: 7, RawMaterialID: in.RawMaterialID, QuantityKg: in.QuantityKg}, nil
}

func (s *stubService) GetPurchase(_ context.Context, id int) (*core.WheatPurchase, error) {
	if id != 7 {
		return nil, fmt.Errorf("purchase %d: %w", id, core.ErrNotFound)
	}
	return &core.WheatPurchase{ID: 7, RawMaterialName: "Wheat"}, nil
}

func serve(t *testing.T, svc app.ApplicationService, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
		r.Header.Set("Content-Type", "application/json")
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	w := httptest.NewRecorder()
	NewHandler(svc, "", nil).ServeHTTP(w, r)
	return w
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode error body: %v (%q)", err, w.Body.String())
	}
	return resp
}

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err    error
		status int
		code   string
	}{
		{fmt.Errorf("bill 3: %w", core.ErrNotFound), http.StatusNotFound, "NOT_FOUND"},
		{fmt.Errorf("%w: quantity must be positive", core.ErrInvalidInput), http.StatusBadRequest, "VALIDATION_ERROR"},
		{core.ErrUnknownReport, http.StatusBadRequest, "UNKNOWN_REPORT"},
		{core.ErrDuplicate, http.StatusConflict, "DUPLICATE"},
		{core.ErrInsufficientStock, http.StatusConflict, "INSUFFICIENT_STOCK"},
		{errors.New("connection reset"), http.StatusInternalServerError, "INTERNAL_ERROR"},
	}
	for _, tc := range cases {
		status, code := statusFor(tc.err)
		if status != tc.status || code != tc.code {
			t.Errorf("statusFor(%v) = %d %s, want %d %s", tc.err, status, code, tc.status, tc.code)
		}
	}
}

func TestHealth(t *testing.T) {
	w := serve(t, &stubService{}, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if w.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID header")
	}

	w = serve(t, &stubService{pingErr: errors.New("down")}, http.MethodGet, "/api/health", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
}

func TestReportPanel_JSON(t *testing.T) {
	svc := &stubService{report: &app.ReportResult{Report: &core.Report{
		Kind: core.ReportSalesProfit, StartDate: "2024-01-01", EndDate: "2024-01-31",
		ProfitLoss: &core.ProfitLoss{ProfitLoss: decimal.NewFromInt(5000)},
	}}}
	w := serve(t, svc, http.MethodGet, "/report-panel?report_type=sales_profit&start_date=2024-01-01&end_date=2024-01-31", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if svc.lastReport.ReportType != "sales_profit" || svc.lastReport.StartDate != "2024-01-01" || svc.lastReport.EndDate != "2024-01-31" {
		t.Errorf("request = %+v", svc.lastReport)
	}
	if !strings.Contains(w.Body.String(), `"profit_loss"`) {
		t.Errorf("body missing profit_loss: %s", w.Body.String())
	}
}

func TestReportPanel_CSV(t *testing.T) {
	svc := &stubService{report: &app.ReportResult{Report: &core.Report{
		Kind: core.ReportExpenseSummary, StartDate: "2024-01-01", EndDate: "2024-01-31",
		Expenses: []core.ExpenseTotal{
			{Description: "=HYPERLINK(1)", TotalAmount: decimal.NewFromInt(300)},
			{Description: "Refund", TotalAmount: decimal.NewFromInt(-50)},
		},
	}}}
	w := serve(t, svc, http.MethodGet, "/api/reports?report_type=expense_summary&format=csv", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "text/csv" {
		t.Errorf("Content-Type = %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "expense_summary-2024-01-01-2024-01-31.csv") {
		t.Errorf("Content-Disposition = %q", cd)
	}
	records, err := csv.NewReader(w.Body).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	if records[1][0] != "'=HYPERLINK(1)" {
		t.Errorf("formula cell = %q, want quoted", records[1][0])
	}
	if records[2][1] != "-50.00" {
		t.Errorf("negative amount = %q, want -50.00", records[2][1])
	}
}

func TestReportPanel_UnknownKind(t *testing.T) {
	svc := &stubService{reportErr: fmt.Errorf("%w: %q", core.ErrUnknownReport, "yearly")}
	w := serve(t, svc, http.MethodGet, "/report-panel?report_type=yearly", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "UNKNOWN_REPORT" || resp.RequestID == "" {
		t.Errorf("error = %+v", resp)
	}
}

func TestBillView_NotFound(t *testing.T) {
	svc := &stubService{billErr: fmt.Errorf("bill 99: %w", core.ErrNotFound)}
	w := serve(t, svc, http.MethodGet, "/bill/99", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "NOT_FOUND" {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestBillView_AmountsFixedTwoDecimals(t *testing.T) {
	b := core.Bill{
		ID: 4, HasGST: true,
		Items: []core.BillItem{
			{ProductName: "Atta", QuantityKg: decimal.NewFromInt(10), PricePerUnit: decimal.NewFromInt(45)},
			{ProductName: "Maida", QuantityKg: decimal.NewFromInt(5), PricePerUnit: decimal.NewFromInt(40)},
		},
	}
	svc := &stubService{bill: &app.BillResult{Detail: core.NewBillDetail(b)}}
	w := serve(t, svc, http.MethodGet, "/bill/4", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	for _, want := range []string{
		`"subtotal":"650.00"`, `"gst_amount":"117.00"`, `"other_expenses":"0.00"`, `"grand_total":"767.00"`,
		`"quantity_kg":"10.00"`, `"total_price":"450.00"`,
	} {
		if !strings.Contains(body, want) {
			t.Errorf("body missing %s: %s", want, body)
		}
	}
}

func TestInvalidID(t *testing.T) {
	for _, target := range []string{"/bill/abc", "/bill/0", "/api/bills/-4"} {
		w := serve(t, &stubService{}, http.MethodGet, target, "")
		if w.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d, want 400", target, w.Code)
		}
	}
}

func TestUpdateBill_UsesPathID(t *testing.T) {
	svc := &stubService{bill: &app.BillResult{Detail: &core.BillDetail{}}}
	w := serve(t, svc, http.MethodPut, "/api/bills/12", `{"id": 3, "items": []}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200: %s", w.Code, w.Body.String())
	}
	if svc.saved.ID == nil || *svc.saved.ID != 12 {
		t.Errorf("saved id = %v, want 12", svc.saved.ID)
	}
}

func TestCreateBill_IgnoresBodyID(t *testing.T) {
	svc := &stubService{bill: &app.BillResult{Detail: &core.BillDetail{}}}
	w := serve(t, svc, http.MethodPost, "/api/bills", `{"id": 3, "items": []}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", w.Code)
	}
	if svc.saved.ID != nil {
		t.Errorf("saved id = %d, want nil", *svc.saved.ID)
	}
}

func TestMarkBillsPaid(t *testing.T) {
	svc := &stubService{}
	w := serve(t, svc, http.MethodPost, "/api/bills/mark-paid", `{"ids": [1, 2, 3]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if len(svc.markReq.BillIDs) != 3 {
		t.Errorf("ids = %v", svc.markReq.BillIDs)
	}
	var res app.MarkPaidResult
	if err := json.NewDecoder(w.Body).Decode(&res); err != nil {
		t.Fatal(err)
	}
	if res.Updated != 3 {
		t.Errorf("updated = %d, want 3", res.Updated)
	}

	svc = &stubService{markErr: fmt.Errorf("%w: bill id must be positive", core.ErrInvalidInput)}
	w = serve(t, svc, http.MethodPost, "/api/bills/mark-paid", `{"ids": [0]}`)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestDecodeJSON_Malformed(t *testing.T) {
	w := serve(t, &stubService{}, http.MethodPost, "/api/purchases", `{"raw_material_id":`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
	if resp := decodeError(t, w); resp.Code != "BAD_REQUEST" {
		t.Errorf("code = %s", resp.Code)
	}
}

func TestCreatePurchase(t *testing.T) {
	svc := &stubService{}
	w := serve(t, svc, http.MethodPost, "/api/purchases",
		`{"raw_material_id": 1, "quantity_kg": "100", "price_per_unit": "25", "payment_mode": "Cash"}`)
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201: %s", w.Code, w.Body.String())
	}
	if !svc.purchase.QuantityKg.Equal(decimal.NewFromInt(100)) {
		t.Errorf("quantity = %s", svc.purchase.QuantityKg)
	}
}

func TestGetPurchase(t *testing.T) {
	w := serve(t, &stubService{}, http.MethodGet, "/api/purchases/7", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	var p core.WheatPurchase
	if err := json.NewDecoder(w.Body).Decode(&p); err != nil {
		t.Fatal(err)
	}
	if p.ID != 7 || p.RawMaterialName != "Wheat" {
		t.Errorf("purchase = %+v", p)
	}

	w = serve(t, &stubService{}, http.MethodGet, "/api/purchases/8", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDelete_Conflict(t *testing.T) {
	svc := &stubService{deleteErr: fmt.Errorf("raw material 1: %w", core.ErrInsufficientStock)}
	w := serve(t, svc, http.MethodDelete, "/api/raw-materials/1", "")
	if w.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", w.Code)
	}

	w = serve(t, &stubService{}, http.MethodDelete, "/api/raw-materials/1", "")
	if w.Code != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", w.Code)
	}
}

func TestInternalErrorHidesMessage(t *testing.T) {
	svc := &stubService{billErr: errors.New("pq: password authentication failed")}
	w := serve(t, svc, http.MethodGet, "/bill/1", "")
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", w.Code)
	}
	if resp := decodeError(t, w); strings.Contains(resp.Error, "password") {
		t.Errorf("internal error leaked: %q", resp.Error)
	}
}

func TestCSVSafe(t *testing.T) {
	cases := map[string]string{
		"":                "",
		"Atta":            "Atta",
		"=1+1":            "'=1+1",
		"+91":             "'+91",
		"@SUM":            "'@SUM",
		"-12.50":          "-12.50",
		"-cmd":            "'-cmd",
		"-7":              "-7",
		"-2+HYPERLINK(1)": "'-2+HYPERLINK(1)",
		"-1e3":            "'-1e3",
		"-5.00 kg":        "'-5.00 kg",
		"\tindent":        "'\tindent",
	}
	for in, want := range cases {
		if got := csvSafe(in); got != want {
			t.Errorf("csvSafe(%q) = %q, want %q", in, got, want)
		}
	}
}
