package model

// ValuationRecord is a single parcel record from the district valuation
// roll. Numeric fields the roll frequently leaves blank are pointers.
// Records are fetched per query and owned by the caller.
type ValuationRecord struct {
	SituationNumber string   `json:"situation_number"`
	SituationName   string   `json:"situation_name"`
	TACode          int      `json:"district_ta_code"`
	CapitalValue    *int     `json:"capital_value,omitempty"`
	LandValue       *int     `json:"land_value,omitempty"`
	ImprovementsVal *int     `json:"improvements_value,omitempty"`
	LandAreaHa      *float64 `json:"land_area,omitempty"` // hectares
	Condition       string   `json:"building_condition_indicator,omitempty"`
	AgeIndicator    string   `json:"building_age_indicator,omitempty"`
	Bedrooms        *int     `json:"no_of_bedrooms,omitempty"`
	FloorArea       *float64 `json:"building_total_floor_area,omitempty"`
}

// LandAreaM2 converts the roll's hectare figure to square metres.
func (r *ValuationRecord) LandAreaM2() *float64 {
	if r.LandAreaHa == nil {
		return nil
	}
	m2 := *r.LandAreaHa * 10_000
	return &m2
}
