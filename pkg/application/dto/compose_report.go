package dto

import "time"

// ComposeReport is the outcome of composing a draft from a batch of
// candidate lines, as printed by the offline CLI
type ComposeReport struct {
	DocumentType string          `json:"document_type"`
	SourceCode   string          `json:"source_code,omitempty"`
	Location     string          `json:"location,omitempty"`
	Accepted     []LineView      `json:"accepted"`
	Rejected     []RejectedLine  `json:"rejected"`
	Warnings     []LineWarning   `json:"warnings,omitempty"`
	Payload      DocumentPayload `json:"payload"`
	ComposeTime  time.Duration   `json:"compose_time_ns"`
}

// RejectedLine is a candidate line a rule refused
type RejectedLine struct {
	Row         int    `json:"row"`
	PartNumber  string `json:"part_number"`
	Quantity    string `json:"quantity"`
	Code        string `json:"code"`
	Message     string `json:"message"`
	Limit       *int64 `json:"limit,omitempty"`
	LimitSource string `json:"limit_source,omitempty"`
}

// LineWarning is an advisory raised while accepting a line
type LineWarning struct {
	Row        int    `json:"row"`
	PartNumber string `json:"part_number"`
	Message    string `json:"message"`
}
