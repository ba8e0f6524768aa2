package model

// Gender selects gender-specific reference ranges.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Valid reports whether g is a known gender value.
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale
}

// ParameterGroup buckets catalog entries for listing and filtering.
type ParameterGroup string

const (
	GroupHematology   ParameterGroup = "hematology"
	GroupBiochemistry ParameterGroup = "biochemistry"
	GroupLiver        ParameterGroup = "liver"
)

// Range is an inclusive normal interval. A value equal to either bound
// is inside the range.
type Range struct {
	Min float64 `json:"min" mapstructure:"min"`
	Max float64 `json:"max" mapstructure:"max"`
}

// Contains reports whether v falls inside the range, bounds included.
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// CriticalRange holds the life-threatening cutoffs for a parameter.
// Values strictly below Low or strictly above High are critical.
type CriticalRange struct {
	Low  float64 `json:"low" mapstructure:"low"`
	High float64 `json:"high" mapstructure:"high"`
}

// Exceeded reports whether v is outside the critical cutoffs.
func (c CriticalRange) Exceeded(v float64) bool {
	return v < c.Low || v > c.High
}

// ParameterDefinition describes one measurable blood parameter.
// Reference is the generic range; GenderRanges, when present, carries
// an entry for every gender and takes precedence over Reference.
type ParameterDefinition struct {
	Code         string           `json:"code" mapstructure:"code"`
	Name         string           `json:"name" mapstructure:"name"`
	Unit         string           `json:"unit" mapstructure:"unit"`
	Group        ParameterGroup   `json:"group" mapstructure:"group"`
	Reference    Range            `json:"reference" mapstructure:"reference"`
	GenderRanges map[Gender]Range `json:"gender_ranges,omitempty" mapstructure:"gender_ranges"`
	Critical     *CriticalRange   `json:"critical,omitempty" mapstructure:"critical"`
}

// RangeFor resolves the normal range for the given gender. When the
// parameter defines gender ranges, those are authoritative and an
// absent or unknown gender resolves to no range at all.
func (p *ParameterDefinition) RangeFor(gender Gender) (Range, bool) {
	if len(p.GenderRanges) > 0 {
		r, ok := p.GenderRanges[gender]
		return r, ok
	}
	return p.Reference, true
}
