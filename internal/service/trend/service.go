package trend

import "github.com/labwise/lab-api/internal/model"

// Service computes per-parameter deltas between two result sets.
type Service struct{}

// NewService creates a new trend service
func NewService() *Service {
	return &Service{}
}

// Trend compares current against previous for the given parameters.
// Only parameters measured in both sets produce an entry; the rest are
// silently omitted. Percent change is zero when the previous value was
// zero.
func (s *Service) Trend(current, previous model.ResultSet, parameters []string) map[string]model.TrendEntry {
	out := make(map[string]model.TrendEntry)
	for _, code := range parameters {
		cur, okCur := current.Value(code)
		prev, okPrev := previous.Value(code)
		if !okCur || !okPrev {
			continue
		}

		delta := cur - prev
		percent := 0.0
		if prev != 0 {
			percent = delta / prev * 100
		}

		direction := model.TrendStable
		switch {
		case delta > 0:
			direction = model.TrendUp
		case delta < 0:
			direction = model.TrendDown
		}

		out[code] = model.TrendEntry{
			Parameter: code,
			Previous:  prev,
			Current:   cur,
			Delta:     delta,
			Percent:   percent,
			Direction: direction,
		}
	}
	return out
}
