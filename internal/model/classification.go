package model

// Tier is the classification of one measured value against its range.
type Tier string

const (
	TierNormal        Tier = "normal"
	TierAbnormalLow   Tier = "abnormal_low"
	TierAbnormalHigh  Tier = "abnormal_high"
	TierCritical      Tier = "critical"
	TierIndeterminate Tier = "indeterminate"
)

// Abnormal reports whether the tier is outside the normal range.
// Indeterminate values are not abnormal, they are unclassifiable.
func (t Tier) Abnormal() bool {
	return t == TierAbnormalLow || t == TierAbnormalHigh || t == TierCritical
}

// Classification pairs a measured value with its tier and the range it
// was judged against. Range is nil for indeterminate results.
type Classification struct {
	Parameter string  `json:"parameter"`
	Value     float64 `json:"value"`
	Tier      Tier    `json:"tier"`
	Range     *Range  `json:"range,omitempty"`
}
