package models

// RenderedPage holds the output of one browser render. Text is already
// capped to the configured maximum length.
type RenderedPage struct {
	HTML string
	Text string
}
