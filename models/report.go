package models

// ReportSubmission holds the structure of a citizen report as posted to /reports/submit
type ReportSubmission struct {
	FullName    string     `json:"fullName"`
	PhoneNumber string     `json:"phoneNumber"`
	Email       string     `json:"email"`
	Region      string     `json:"region"`
	Subject     string     `json:"subject"`
	Message     string     `json:"message"`
	IsAnonymous bool       `json:"isAnonymous"`
	Location    *Location  `json:"location,omitempty"`
	Evidence    []Evidence `json:"evidence,omitempty"`
}

// SubmitReportResponse is returned once a report has been accepted
type SubmitReportResponse struct {
	Success bool   `json:"success"`
	CaseID  string `json:"caseId"`
	Status  string `json:"status"`
	Queued  bool   `json:"queued"`
	Durable bool   `json:"durable"`
}
