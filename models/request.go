package models

// DefaultSource tags requests that arrive without an explicit source.
const DefaultSource = "listing_email"

// AlertRequest is one inbound webhook event. Immutable once parsed.
type AlertRequest struct {
	URL     string `json:"url"`
	Source  string `json:"source,omitempty"`
	EmailID string `json:"email_id,omitempty"`
}
