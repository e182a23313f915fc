package extract

import (
	"fmt"
	"regexp"

	"land_alert/models"
)

// grouped number: 1-3 digits optionally followed by separator+3-digit
// groups. Separators cover comma, period, space and non-breaking space.
const groupedNumber = `([0-9]{1,3}(?:[.,\s\x{00A0}][0-9]{3})*)`

// Built-in land-area rules, tried strictly in order; the first rule whose
// match cleans to a non-zero integer wins. Each tolerates a bounded run
// of non-digit filler between the label and the number.
var builtinLandPatterns = []string{
	`(?i)\b(plot|land)\s*area\b[^0-9]{0,80}` + groupedNumber,
	`(?i)\blot\s*size\b[^0-9]{0,80}` + groupedNumber,
	`(?i)(Εμβαδόν\s*οικοπέδου|Εμβαδόν|οικόπεδο|οικοπέδου)[^0-9]{0,120}` + groupedNumber,
}

var (
	priceRegex = regexp.MustCompile(`(?i)(€|eur)\s*` + groupedNumber)
	// No trailing boundary assertion: the m² unit itself bounds the match
	// (RE2 word boundaries are ASCII-only and ² is not a word byte).
	areaRegex = regexp.MustCompile(`(?i)\b` + groupedNumber + `\s*m²`)
)

type landRule struct {
	pattern *regexp.Regexp
}

// Extractor pulls structured fields out of rendered listing text. It is
// pure and never fails; a field that cannot be found is simply absent.
type Extractor struct {
	landRules []landRule
}

// NewExtractor compiles the built-in rule set plus any site-specific
// patterns from config. Extra patterns are appended after the built-ins
// so the documented rule order is preserved.
func NewExtractor(extraLandPatterns []string) (*Extractor, error) {
	patterns := append([]string{}, builtinLandPatterns...)
	patterns = append(patterns, extraLandPatterns...)

	e := &Extractor{}
	for _, p := range patterns {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("compile land pattern %q: %w", p, err)
		}
		e.landRules = append(e.landRules, landRule{pattern: re})
	}
	return e, nil
}

// Fields extracts land area, price and living area from visible text.
// The three fields are independent: failing to find one does not block
// the others.
func (e *Extractor) Fields(text string) models.ExtractedFields {
	var fields models.ExtractedFields

	for _, rule := range e.landRules {
		m := rule.pattern.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := cleanInt(m[len(m)-1]); ok && v > 0 {
			fields.LandM2 = &v
			break
		}
	}

	if m := priceRegex.FindStringSubmatch(text); m != nil {
		if v, ok := cleanInt(m[2]); ok {
			fields.PriceEUR = &v
		}
	}

	// First m² occurrence in document order. Pages listing per-floor
	// breakdowns make this ambiguous; accepted as best-effort.
	if m := areaRegex.FindStringSubmatch(text); m != nil {
		if v, ok := cleanInt(m[1]); ok {
			fields.AreaM2 = &v
		}
	}

	return fields
}
