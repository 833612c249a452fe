package app

// WindowRequest carries optional YYYY-MM-DD bounds for list endpoints.
type WindowRequest struct {
	StartDate string
	EndDate   string
}

// ReportRequest is the input for RunReport. All fields are optional.
type ReportRequest struct {
	ReportType string
	StartDate  string
	EndDate    string
}

// MarkPaidRequest lists the bills to flag as paid.
type MarkPaidRequest struct {
	BillIDs []int `json:"ids"`
}
