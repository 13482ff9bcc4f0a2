package indicators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRSI_InsufficientData(t *testing.T) {
	assert.Zero(t, RSI(nil, 6))
	assert.Zero(t, RSI([]float64{1, 2, 3, 4, 5, 6}, 6))
	assert.Zero(t, RSI([]float64{1, 2, 3}, 0))
}

func TestRSI_MonotoneIncreasingIs100(t *testing.T) {
	closes := make([]float64, 35)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	assert.Equal(t, 100.0, RSI(closes, 6))
}

func TestRSI_FlatSeriesIs100(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5, 5, 5, 5}
	assert.Equal(t, 100.0, RSI(closes, 6))
}

func TestRSI_StrictlyDecreasingIsZero(t *testing.T) {
	closes := make([]float64, 20)
	for i := range closes {
		closes[i] = 200 - float64(i)
	}
	assert.Equal(t, 0.0, RSI(closes, 6))
}

func TestRSI_InitialWindowOnly(t *testing.T) {
	// 6 разностей: +2 +2 +2 -1 -1 -1 -> avgGain 1, avgLoss 0.5, RS 2
	closes := []float64{10, 12, 14, 16, 15, 14, 13}
	assert.InDelta(t, 100-100/3.0, RSI(closes, 6), 1e-9)
}

func TestRSI_SmoothingStep(t *testing.T) {
	// начальное окно как выше, затем +3:
	// avgGain = (1*5+3)/6 = 8/6, avgLoss = (0.5*5)/6 = 2.5/6, RS = 3.2
	closes := []float64{10, 12, 14, 16, 15, 14, 13, 16}
	assert.InDelta(t, 100-100/4.2, RSI(closes, 6), 1e-9)
}

func TestRSI_Bounds(t *testing.T) {
	closes := []float64{3, 7, 2, 9, 1, 8, 4, 6, 5, 10, 2, 11, 3}
	for period := 1; period < len(closes); period++ {
		v := RSI(closes, period)
		assert.GreaterOrEqual(t, v, 0.0)
		assert.LessOrEqual(t, v, 100.0)
	}
}

func TestRSI_Deterministic(t *testing.T) {
	closes := []float64{1, 3, 2, 5, 4, 6, 5, 7, 6, 9}
	assert.Equal(t, RSI(closes, 6), RSI(closes, 6))
}

func TestQualifies(t *testing.T) {
	assert.True(t, Qualifies(90, 90))
	assert.True(t, Qualifies(100, 90))
	assert.False(t, Qualifies(89.9, 90))
	assert.False(t, Qualifies(0, 0))
}
