package extract

import "strings"

// Markers that usually mean an anti-bot interstitial was served instead
// of the listing. False negatives are expected for novel providers, and
// a legitimate page mentioning one of these terms will false-positive;
// this is a best-effort gate, not a proof.
var builtinChallengeMarkers = []string{
	"captcha",
	"cf-challenge",
	"cloudflare",
	"checking your browser",
	"/cdn-cgi/",
	"turnstile",
}

// Detector classifies raw markup as challenge-blocked or not.
type Detector struct {
	markers []string
}

// NewDetector builds a detector from the built-in markers plus any extra
// markers from config. Markers are matched case-insensitively.
func NewDetector(extraMarkers ...string) *Detector {
	markers := append([]string{}, builtinChallengeMarkers...)
	for _, m := range extraMarkers {
		markers = append(markers, strings.ToLower(m))
	}
	return &Detector{markers: markers}
}

// Blocked reports whether the markup contains any known challenge marker.
func (d *Detector) Blocked(markup string) bool {
	h := strings.ToLower(markup)
	for _, m := range d.markers {
		if strings.Contains(h, m) {
			return true
		}
	}
	return false
}
