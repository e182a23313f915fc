package models

// ExtractedFields are the best-effort numeric fields pulled from a
// listing's visible text. Each field is independently present-or-absent;
// no cross-field plausibility is enforced (living area may exceed land).
type ExtractedFields struct {
	LandM2   *int `json:"land_m2"`
	PriceEUR *int `json:"price_eur"`
	AreaM2   *int `json:"area_m2"`
}
