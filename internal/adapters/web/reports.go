package web

import (
	"encoding/csv"
	"net/http"
	"strings"

	"agro-backoffice/internal/app"

	"github.com/shopspring/decimal"
)

// reportPanel handles GET /report-panel and GET /api/reports.
// Query: report_type, start_date, end_date (YYYY-MM-DD), format=csv.
func (h *Handler) reportPanel(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	res, err := h.svc.RunReport(r.Context(), app.ReportRequest{
		ReportType: q.Get("report_type"),
		StartDate:  q.Get("start_date"),
		EndDate:    q.Get("end_date"),
	})
	if err != nil {
		h.fail(w, r, err)
		return
	}

	if q.Get("format") == "csv" {
		rep := res.Report
		w.Header().Set("Content-Type", "text/csv")
		w.Header().Set("Content-Disposition",
			`attachment; filename="`+string(rep.Kind)+`-`+rep.StartDate+`-`+rep.EndDate+`.csv"`)
		header, rows := rep.Table()
		cw := csv.NewWriter(w)
		_ = cw.Write(header)
		for _, row := range rows {
			for i := range row {
				row[i] = csvSafe(row[i])
			}
			_ = cw.Write(row)
		}
		cw.Flush()
		return
	}

	writeJSON(w, res)
}

// csvSafe prevents CSV formula injection by prefixing cells that begin with a
// formula-triggering character with a single quote. A cell that is entirely a
// negative number is left as-is.
func csvSafe(s string) string {
	if len(s) == 0 {
		return s
	}
	switch s[0] {
	case '=', '+', '@', '\t', '\r':
		return "'" + s
	case '-':
		if _, err := decimal.NewFromString(s); err == nil && !strings.ContainsAny(s, "eE") {
			return s
		}
		return "'" + s
	}
	return s
}
