package model

// TrendDirection is the sign of a change between two measurements.
type TrendDirection string

const (
	TrendUp     TrendDirection = "up"
	TrendDown   TrendDirection = "down"
	TrendStable TrendDirection = "stable"
)

// TrendEntry compares one parameter across two consecutive records.
// Percent is zero when the previous value was zero.
type TrendEntry struct {
	Parameter string         `json:"parameter"`
	Previous  float64        `json:"previous"`
	Current   float64        `json:"current"`
	Delta     float64        `json:"delta"`
	Percent   float64        `json:"percent"`
	Direction TrendDirection `json:"direction"`
}
