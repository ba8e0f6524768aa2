package pattern

import (
	"fmt"

	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/internal/service/classification"
)

// Service evaluates named pattern rules over classified result sets.
type Service struct {
	classifier *classification.Service
	rules      []model.PatternRule
}

// NewService creates a new pattern service. A nil rule set falls back
// to the built-in rules.
func NewService(classifier *classification.Service, rules []model.PatternRule) *Service {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Service{classifier: classifier, rules: rules}
}

// DefaultRules returns the built-in clinical patterns. Order matters:
// matches are reported in this order.
func DefaultRules() []model.PatternRule {
	return []model.PatternRule{
		{
			Name:       "Anemia",
			Kind:       model.PatternAllLow,
			Indicators: []string{"hemoglobin", "rbc", "hematocrit"},
			Severity:   model.SeverityHigh,
		},
		{
			Name:       "Inflammation",
			Kind:       model.PatternBothHigh,
			Indicators: []string{"wbc", "esr"},
			Severity:   model.SeverityMedium,
		},
		{
			Name:       "Liver dysfunction",
			Kind:       model.PatternAllHigh,
			Indicators: []string{"alt", "ast", "total_bilirubin"},
			Severity:   model.SeverityCritical,
		},
		{
			Name:       "Renal impairment",
			Kind:       model.PatternBothHigh,
			Indicators: []string{"creatinine", "urea"},
			Severity:   model.SeverityCritical,
		},
		{
			Name:       "Diabetes risk",
			Kind:       model.PatternSingleHigh,
			Indicators: []string{"glucose"},
			Severity:   model.SeverityHigh,
		},
	}
}

// ValidateRules rejects rule sets the detector cannot evaluate.
func ValidateRules(rules []model.PatternRule) error {
	for i, rule := range rules {
		if rule.Name == "" {
			return fmt.Errorf("rule %d: missing name", i)
		}
		if len(rule.Indicators) == 0 {
			return fmt.Errorf("rule %s: no indicators", rule.Name)
		}
		switch rule.Kind {
		case model.PatternAllLow, model.PatternAllHigh, model.PatternSingleHigh:
		case model.PatternBothHigh:
			if len(rule.Indicators) < 2 {
				return fmt.Errorf("rule %s: kind %s needs at least two indicators", rule.Name, rule.Kind)
			}
		default:
			return fmt.Errorf("rule %s: unknown kind %q", rule.Name, rule.Kind)
		}
	}
	return nil
}

// Rules returns the active rule set in evaluation order.
func (s *Service) Rules() []model.PatternRule {
	return append([]model.PatternRule(nil), s.rules...)
}

// Detect evaluates every rule against the result set, in declaration
// order. A rule whose indicators are not all present and non-null is
// skipped.
func (s *Service) Detect(rs model.ResultSet, gender model.Gender) ([]model.PatternMatch, error) {
	var matches []model.PatternMatch

	for _, rule := range s.rules {
		values := make(map[string]float64, len(rule.Indicators))
		classifications := make(map[string]model.Classification, len(rule.Indicators))
		complete := true
		for _, code := range rule.Indicators {
			value, ok := rs.Value(code)
			if !ok {
				complete = false
				break
			}
			cls, err := s.classifier.Classify(code, value, gender)
			if err != nil {
				return nil, fmt.Errorf("failed to classify indicator %s: %w", code, err)
			}
			values[code] = value
			classifications[code] = cls
		}
		if !complete {
			continue
		}

		if !matched(rule, classifications) {
			continue
		}

		matches = append(matches, model.PatternMatch{
			Name:            rule.Name,
			Severity:        rule.Severity,
			Indicators:      append([]string(nil), rule.Indicators...),
			Values:          values,
			Classifications: classifications,
		})
	}

	return matches, nil
}

func matched(rule model.PatternRule, classifications map[string]model.Classification) bool {
	switch rule.Kind {
	case model.PatternAllLow:
		for _, code := range rule.Indicators {
			if classifications[code].Tier != model.TierAbnormalLow {
				return false
			}
		}
		return true
	case model.PatternAllHigh:
		for _, code := range rule.Indicators {
			if classifications[code].Tier != model.TierAbnormalHigh {
				return false
			}
		}
		return true
	case model.PatternBothHigh:
		if len(rule.Indicators) < 2 {
			return false
		}
		for _, code := range rule.Indicators {
			if !elevated(classifications[code].Tier) {
				return false
			}
		}
		return true
	case model.PatternSingleHigh:
		return elevated(classifications[rule.Indicators[0]].Tier)
	default:
		return false
	}
}

func elevated(t model.Tier) bool {
	return t == model.TierAbnormalHigh || t == model.TierCritical
}
