package classification

import (
	"github.com/labwise/lab-api/internal/catalog"
	"github.com/labwise/lab-api/internal/model"
)

// Service classifies measured values against catalog reference ranges.
type Service struct {
	catalog *catalog.Catalog
}

// NewService creates a new classification service
func NewService(cat *catalog.Catalog) *Service {
	return &Service{catalog: cat}
}

// Classify grades one value. Critical cutoffs are checked first and do
// not depend on gender; otherwise the value is judged against the range
// resolved for the given gender. A parameter whose gender ranges cannot
// be resolved classifies as indeterminate.
func (s *Service) Classify(code string, value float64, gender model.Gender) (model.Classification, error) {
	def, err := s.catalog.Lookup(code)
	if err != nil {
		return model.Classification{}, err
	}

	cls := model.Classification{
		Parameter: code,
		Value:     value,
	}

	rng, resolved := def.RangeFor(gender)
	if resolved {
		r := rng
		cls.Range = &r
	}

	if def.Critical != nil && def.Critical.Exceeded(value) {
		cls.Tier = model.TierCritical
		return cls, nil
	}

	if !resolved {
		cls.Tier = model.TierIndeterminate
		return cls, nil
	}

	switch {
	case value < rng.Min:
		cls.Tier = model.TierAbnormalLow
	case value > rng.Max:
		cls.Tier = model.TierAbnormalHigh
	default:
		cls.Tier = model.TierNormal
	}
	return cls, nil
}

// EvaluateSet classifies every measured value in the result set. Null
// entries are skipped. An unknown parameter code fails the whole call.
func (s *Service) EvaluateSet(rs model.ResultSet, gender model.Gender) (map[string]model.Classification, error) {
	out := make(map[string]model.Classification, len(rs))
	for code := range rs {
		value, ok := rs.Value(code)
		if !ok {
			continue
		}
		cls, err := s.Classify(code, value, gender)
		if err != nil {
			return nil, err
		}
		out[code] = cls
	}
	return out, nil
}
