package model

// PatternKind selects the predicate a pattern rule applies to its
// indicator classifications.
type PatternKind string

const (
	// PatternAllLow matches when every indicator is abnormal_low.
	PatternAllLow PatternKind = "all_low"
	// PatternAllHigh matches when every indicator is abnormal_high.
	PatternAllHigh PatternKind = "all_high"
	// PatternBothHigh matches when every indicator is abnormal_high or
	// critical. Rules of this kind need at least two indicators.
	PatternBothHigh PatternKind = "both_high"
	// PatternSingleHigh matches when the first indicator is
	// abnormal_high or critical, regardless of the others.
	PatternSingleHigh PatternKind = "single_high"
)

// PatternSeverity grades a matched pattern for triage.
type PatternSeverity string

const (
	SeverityLow      PatternSeverity = "low"
	SeverityMedium   PatternSeverity = "medium"
	SeverityHigh     PatternSeverity = "high"
	SeverityCritical PatternSeverity = "critical"
)

// PatternRule declares one clinical pattern over a set of indicator
// parameters. Rules are evaluated in declaration order.
type PatternRule struct {
	Name       string          `json:"name" mapstructure:"name"`
	Kind       PatternKind     `json:"kind" mapstructure:"kind"`
	Indicators []string        `json:"indicators" mapstructure:"indicators"`
	Severity   PatternSeverity `json:"severity" mapstructure:"severity"`
}

// PatternMatch reports a rule whose predicate held for a result set.
type PatternMatch struct {
	Name            string                    `json:"name"`
	Severity        PatternSeverity           `json:"severity"`
	Indicators      []string                  `json:"indicators"`
	Values          map[string]float64        `json:"values"`
	Classifications map[string]Classification `json:"classifications"`
}
