package quality

import (
	"fmt"
	"sort"
	"strings"

	"github.com/labwise/lab-api/internal/catalog"
	"github.com/labwise/lab-api/internal/model"
)

// Bounds for the hemoglobin/hematocrit consistency heuristic. The
// ratio approximates the Hb/Hct rule of thumb; an out-of-band ratio
// only warns, it never blocks a save.
const (
	hbHctRatioMin = 0.25
	hbHctRatioMax = 0.35
)

// Factors for magnitude plausibility against critical cutoffs.
const (
	implausiblyLowFactor  = 0.1
	implausiblyHighFactor = 10.0
)

// Service validates candidate result sets before they are accepted.
type Service struct {
	catalog *catalog.Catalog
}

// NewService creates a new quality service
func NewService(cat *catalog.Catalog) *Service {
	return &Service{catalog: cat}
}

// Validate checks a result set against the required parameter list.
// All missing required parameters are aggregated into a single error
// entry. Unknown parameter codes fail the call outright. The input is
// never mutated.
func (s *Service) Validate(rs model.ResultSet, required []string) (*model.ValidationReport, error) {
	report := &model.ValidationReport{
		Errors:   []string{},
		Warnings: []string{},
	}

	codes := make([]string, 0, len(rs))
	for code := range rs {
		codes = append(codes, code)
	}
	sort.Strings(codes)

	for _, code := range codes {
		if _, err := s.catalog.Lookup(code); err != nil {
			return nil, fmt.Errorf("failed to validate result set: %w", err)
		}
	}

	var missing []string
	for _, code := range required {
		def, err := s.catalog.Lookup(code)
		if err != nil {
			return nil, fmt.Errorf("failed to validate required parameters: %w", err)
		}
		if _, ok := rs.Value(code); !ok {
			missing = append(missing, def.Name)
		}
	}
	if len(missing) > 0 {
		report.Errors = append(report.Errors,
			fmt.Sprintf("missing required parameters: %s", strings.Join(missing, ", ")))
	}

	for _, code := range codes {
		value, ok := rs.Value(code)
		if !ok {
			continue
		}
		def, _ := s.catalog.Get(code)
		if def.Critical == nil {
			continue
		}
		if value < def.Critical.Low*implausiblyLowFactor {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s value %v is implausibly low", def.Name, value))
		}
		if value > def.Critical.High*implausiblyHighFactor {
			report.Warnings = append(report.Warnings,
				fmt.Sprintf("%s value %v is implausibly high", def.Name, value))
		}
	}

	s.checkHemoglobinHematocrit(rs, report)

	return report, nil
}

// checkHemoglobinHematocrit applies the Hb/Hct ratio heuristic when
// both values are present and nonzero.
func (s *Service) checkHemoglobinHematocrit(rs model.ResultSet, report *model.ValidationReport) {
	hb, okHb := rs.Value("hemoglobin")
	hct, okHct := rs.Value("hematocrit")
	if !okHb || !okHct || hb == 0 || hct == 0 {
		return
	}

	ratio := hb / (hct / 3)
	if ratio < hbHctRatioMin || ratio > hbHctRatioMax {
		report.Warnings = append(report.Warnings,
			fmt.Sprintf("hemoglobin/hematocrit ratio %.2f outside expected band", ratio))
	}
}
