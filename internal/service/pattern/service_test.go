package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labwise/lab-api/internal/catalog"
	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/internal/service/classification"
)

func f(v float64) *float64 { return &v }

func newService(t *testing.T, rules []model.PatternRule) *Service {
	t.Helper()
	return NewService(classification.NewService(catalog.Default()), rules)
}

func TestDetectInflammation(t *testing.T) {
	svc := newService(t, nil)

	rs := model.ResultSet{
		"wbc": f(12.5),
		"esr": f(18),
	}

	matches, err := svc.Detect(rs, model.GenderFemale)
	require.NoError(t, err)
	require.Len(t, matches, 1)

	m := matches[0]
	assert.Equal(t, "Inflammation", m.Name)
	assert.Equal(t, model.SeverityMedium, m.Severity)
	assert.Equal(t, 12.5, m.Values["wbc"])
	assert.Equal(t, model.TierAbnormalHigh, m.Classifications["esr"].Tier)
}

func TestDetectAnemia(t *testing.T) {
	svc := newService(t, nil)

	rs := model.ResultSet{
		"hemoglobin": f(115),
		"rbc":        f(3.5),
		"hematocrit": f(33),
	}

	matches, err := svc.Detect(rs, model.GenderFemale)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Anemia", matches[0].Name)
}

func TestDetectSkipsRuleWithMissingIndicator(t *testing.T) {
	svc := newService(t, nil)

	rs := model.ResultSet{
		"hemoglobin": f(115),
		"rbc":        f(3.5),
	}
	matches, err := svc.Detect(rs, model.GenderFemale)
	require.NoError(t, err)
	assert.Empty(t, matches, "rule skipped when an indicator is absent")

	rs["hematocrit"] = nil
	matches, err = svc.Detect(rs, model.GenderFemale)
	require.NoError(t, err)
	assert.Empty(t, matches, "rule skipped when an indicator is null")
}

func TestDetectAllLowRejectsCritical(t *testing.T) {
	svc := newService(t, nil)

	rs := model.ResultSet{
		"hemoglobin": f(65),
		"rbc":        f(3.5),
		"hematocrit": f(33),
	}

	matches, err := svc.Detect(rs, model.GenderFemale)
	require.NoError(t, err)
	for _, m := range matches {
		assert.NotEqual(t, "Anemia", m.Name, "all_low requires every indicator strictly abnormal_low")
	}
}

func TestDetectBothHighAcceptsCritical(t *testing.T) {
	svc := newService(t, nil)

	rs := model.ResultSet{
		"creatinine": f(520),
		"urea":       f(9.0),
	}

	matches, err := svc.Detect(rs, model.GenderFemale)
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Equal(t, "Renal impairment", matches[0].Name)
	assert.Equal(t, model.TierCritical, matches[0].Classifications["creatinine"].Tier)
}

func TestDetectAllHighRejectsCritical(t *testing.T) {
	svc := newService(t, nil)

	rs := model.ResultSet{
		"alt":             f(80),
		"ast":             f(510),
		"total_bilirubin": f(30),
	}

	matches, err := svc.Detect(rs, model.GenderMale)
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestDetectReportsMatchesInDeclarationOrder(t *testing.T) {
	svc := newService(t, nil)

	rs := model.ResultSet{
		"hemoglobin": f(115),
		"rbc":        f(3.5),
		"hematocrit": f(33),
		"wbc":        f(12.5),
		"esr":        f(18),
		"glucose":    f(7.0),
	}

	matches, err := svc.Detect(rs, model.GenderFemale)
	require.NoError(t, err)
	require.Len(t, matches, 3)
	assert.Equal(t, "Anemia", matches[0].Name)
	assert.Equal(t, "Inflammation", matches[1].Name)
	assert.Equal(t, "Diabetes risk", matches[2].Name)
}

func TestDetectSingleHighChecksFirstIndicatorOnly(t *testing.T) {
	rules := []model.PatternRule{
		{
			Name:       "Glucose flag",
			Kind:       model.PatternSingleHigh,
			Indicators: []string{"glucose", "cholesterol"},
			Severity:   model.SeverityLow,
		},
	}
	svc := newService(t, rules)

	rs := model.ResultSet{
		"glucose":     f(7.0),
		"cholesterol": f(4.0),
	}
	matches, err := svc.Detect(rs, model.GenderMale)
	require.NoError(t, err)
	require.Len(t, matches, 1, "trailing indicators do not gate the match")

	rs["glucose"] = f(5.0)
	rs["cholesterol"] = f(9.0)
	matches, err = svc.Detect(rs, model.GenderMale)
	require.NoError(t, err)
	assert.Empty(t, matches, "only the first indicator is examined")
}

func TestValidateRules(t *testing.T) {
	assert.NoError(t, ValidateRules(DefaultRules()))

	tests := []struct {
		name string
		rule model.PatternRule
	}{
		{"missing name", model.PatternRule{Kind: model.PatternAllLow, Indicators: []string{"wbc"}}},
		{"no indicators", model.PatternRule{Name: "x", Kind: model.PatternAllLow}},
		{"both_high single indicator", model.PatternRule{Name: "x", Kind: model.PatternBothHigh, Indicators: []string{"wbc"}}},
		{"unknown kind", model.PatternRule{Name: "x", Kind: "sideways", Indicators: []string{"wbc"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, ValidateRules([]model.PatternRule{tt.rule}))
		})
	}
}

func TestDetectUnknownIndicatorFails(t *testing.T) {
	rules := []model.PatternRule{
		{
			Name:       "Broken",
			Kind:       model.PatternAllLow,
			Indicators: []string{"flux"},
			Severity:   model.SeverityLow,
		},
	}
	svc := newService(t, rules)

	_, err := svc.Detect(model.ResultSet{"flux": f(1)}, model.GenderMale)
	assert.Error(t, err)
}
