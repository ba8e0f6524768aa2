package simulator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labwise/lab-api/internal/catalog"
	"github.com/labwise/lab-api/internal/model"
	"github.com/labwise/lab-api/internal/service/quality"
)

func TestGenerateCoversRequestedParameters(t *testing.T) {
	c := catalog.Default()
	svc := NewSeeded(c, 42)

	params := []string{"hemoglobin", "glucose", "creatinine"}
	rs, err := svc.Generate(params, model.GenderMale)
	require.NoError(t, err)
	require.Len(t, rs, 3)
	for _, code := range params {
		v, ok := rs.Value(code)
		require.True(t, ok, "missing %s", code)
		assert.Greater(t, v, 0.0)
	}
}

func TestGenerateDefaultsToWholeCatalog(t *testing.T) {
	c := catalog.Default()
	svc := NewSeeded(c, 7)

	rs, err := svc.Generate(nil, "")
	require.NoError(t, err)
	assert.Len(t, rs, c.Len())
}

func TestGenerateDeterministicForSeed(t *testing.T) {
	c := catalog.Default()
	params := []string{"hemoglobin", "wbc", "platelets", "glucose"}

	first, err := NewSeeded(c, 1234).Generate(params, model.GenderFemale)
	require.NoError(t, err)
	second, err := NewSeeded(c, 1234).Generate(params, model.GenderFemale)
	require.NoError(t, err)

	for _, code := range params {
		a, _ := first.Value(code)
		b, _ := second.Value(code)
		assert.Equal(t, a, b, "seeded runs diverged on %s", code)
	}
}

func TestGenerateUnknownParameter(t *testing.T) {
	svc := NewSeeded(catalog.Default(), 1)
	_, err := svc.Generate([]string{"ferritin"}, model.GenderMale)
	assert.Error(t, err)
}

func TestGenerateStaysPlausible(t *testing.T) {
	c := catalog.Default()
	svc := NewSeeded(c, 99)
	validator := quality.NewService(c)

	// Many rounds so both abnormal branches get exercised. The
	// hemoglobin/hematocrit consistency warning is allowed since
	// generated values are uncorrelated; magnitude warnings are not.
	for i := 0; i < 50; i++ {
		rs, err := svc.Generate(nil, model.GenderMale)
		require.NoError(t, err)

		report, err := validator.Validate(rs, nil)
		require.NoError(t, err)
		for _, w := range report.Warnings {
			assert.NotContains(t, w, "implausibly", "round %d produced implausible values", i)
		}
	}
}

func TestGenerateAbnormalValuesOutsideRange(t *testing.T) {
	c := catalog.Default()
	svc := NewSeeded(c, 3)
	def, err := c.Lookup("glucose")
	require.NoError(t, err)

	var abnormal int
	const rounds = 200
	for i := 0; i < rounds; i++ {
		rs, err := svc.Generate([]string{"glucose"}, "")
		require.NoError(t, err)
		v, _ := rs.Value("glucose")
		if !def.Reference.Contains(v) {
			abnormal++
		}
	}

	// 30% nominal abnormality chance. Allow generous slack.
	assert.Greater(t, abnormal, rounds/10)
	assert.Less(t, abnormal, rounds/2)
}
