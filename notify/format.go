package notify

import (
	"fmt"
	"strings"

	"land_alert/models"
)

// FormatMessage composes the alert text: a fixed header, one line per
// present field in a fixed order, then the listing URL. Absent fields
// are omitted entirely.
func FormatMessage(listingURL string, fields models.ExtractedFields) string {
	parts := []string{"Nouvelle annonce qualifiee"}
	if fields.LandM2 != nil {
		parts = append(parts, fmt.Sprintf("Terrain: %d m²", *fields.LandM2))
	}
	if fields.PriceEUR != nil {
		parts = append(parts, fmt.Sprintf("Prix: %d EUR", *fields.PriceEUR))
	}
	if fields.AreaM2 != nil {
		parts = append(parts, fmt.Sprintf("Surface: %d m²", *fields.AreaM2))
	}
	parts = append(parts, listingURL)
	return strings.Join(parts, "\n")
}
