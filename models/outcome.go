package models

// Status is a non-error terminal outcome of the pipeline. Failures
// (render timeout, render error, challenge block, delivery error) are
// returned as errors, not statuses.
type Status string

const (
	StatusDedupSkipped Status = "dedup_skipped"
	StatusNoLandField  Status = "no_land_field"
	StatusFilteredOut  Status = "filtered_out"
	StatusPosted       Status = "posted"
)

// Outcome is the pipeline's sole product per request.
type Outcome struct {
	RequestID string           `json:"request_id"`
	Status    Status           `json:"status"`
	URL       string           `json:"url"`
	LandM2    *int             `json:"land_m2,omitempty"`
	Fields    *ExtractedFields `json:"fields,omitempty"`
	Message   string           `json:"-"`
}
