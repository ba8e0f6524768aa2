package trend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/labwise/lab-api/internal/model"
)

func f(v float64) *float64 { return &v }

func TestTrendDirections(t *testing.T) {
	svc := NewService()

	current := model.ResultSet{
		"hemoglobin": f(150),
		"glucose":    f(4.0),
		"wbc":        f(6.0),
	}
	previous := model.ResultSet{
		"hemoglobin": f(120),
		"glucose":    f(5.0),
		"wbc":        f(6.0),
	}

	out := svc.Trend(current, previous, []string{"hemoglobin", "glucose", "wbc"})
	require.Len(t, out, 3)

	hb := out["hemoglobin"]
	assert.Equal(t, model.TrendUp, hb.Direction)
	assert.Equal(t, 30.0, hb.Delta)
	assert.InDelta(t, 25.0, hb.Percent, 1e-9)

	glucose := out["glucose"]
	assert.Equal(t, model.TrendDown, glucose.Direction)
	assert.Equal(t, -1.0, glucose.Delta)
	assert.InDelta(t, -20.0, glucose.Percent, 1e-9)

	wbc := out["wbc"]
	assert.Equal(t, model.TrendStable, wbc.Direction)
	assert.Equal(t, 0.0, wbc.Delta)
	assert.Equal(t, 0.0, wbc.Percent)
}

func TestTrendZeroPrevious(t *testing.T) {
	svc := NewService()

	out := svc.Trend(
		model.ResultSet{"esr": f(12)},
		model.ResultSet{"esr": f(0)},
		[]string{"esr"},
	)
	require.Len(t, out, 1)
	entry := out["esr"]
	assert.Equal(t, 12.0, entry.Delta)
	assert.Equal(t, 0.0, entry.Percent, "zero previous yields zero percent")
	assert.Equal(t, model.TrendUp, entry.Direction)
}

func TestTrendIntersectionOnly(t *testing.T) {
	svc := NewService()

	current := model.ResultSet{
		"hemoglobin": f(150),
		"glucose":    nil,
	}
	previous := model.ResultSet{
		"hemoglobin": f(140),
		"wbc":        f(5.0),
	}

	out := svc.Trend(current, previous, []string{"hemoglobin", "glucose", "wbc", "esr"})
	require.Len(t, out, 1, "only parameters measured in both sets appear")
	assert.Contains(t, out, "hemoglobin")
}

func TestTrendEmptyParameters(t *testing.T) {
	svc := NewService()

	out := svc.Trend(model.ResultSet{"wbc": f(5)}, model.ResultSet{"wbc": f(4)}, nil)
	assert.Empty(t, out)
}
