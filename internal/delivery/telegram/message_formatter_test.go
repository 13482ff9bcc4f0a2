package telegram

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"rsi-radar/internal/types/market"

	"github.com/stretchr/testify/assert"
)

var reportTime = time.Date(2024, 3, 5, 16, 30, 0, 0, time.UTC)

func TestFormat_Empty(t *testing.T) {
	f := NewReportFormatter(15, 8, "1h", "4h")
	msg := f.Format(nil, reportTime)
	assert.Equal(t, "📡 *RSI Radar*  ·  03-06 00:30\n\n"+emptyMessage, msg)
}

func TestFormat_Rows(t *testing.T) {
	f := NewReportFormatter(15, 8, "1h", "4h")
	msg := f.Format([]market.ScanResult{
		{Symbol: "SMALLUSDT", Volume: 10, RSIShort: 91.7, RSILong: 80.2, FundingRate: -0.0001},
		{Symbol: "BIGUSDT", Volume: 1000, RSIShort: 95.4, RSILong: 88.9, FundingRate: 0.0005},
	}, reportTime)

	lines := strings.Split(msg, "\n")
	assert.Equal(t, "📡 *RSI Radar*  ·  03-06 00:30", lines[0])
	assert.Equal(t, separator, lines[1])
	assert.Equal(t, "`BIGUSDT`", lines[3])
	assert.Equal(t, "  RSI  1h `95` · 4h `88`  |  фандинг `+0.050%`", lines[4])
	assert.Equal(t, "`SMALLUSDT`", lines[6])
	assert.Equal(t, "  RSI  1h `91` · 4h `80`  |  фандинг `-0.010%`", lines[7])
	assert.True(t, strings.HasSuffix(msg, separator+"\n"+copyHint))
	assert.NotContains(t, msg, "more_")
}

func TestFormat_TruncatesToMaxRows(t *testing.T) {
	f := NewReportFormatter(3, 8, "1h", "4h")
	var results []market.ScanResult
	for i := 0; i < 5; i++ {
		results = append(results, market.ScanResult{Symbol: fmt.Sprintf("S%dUSDT", i), Volume: float64(100 - i)})
	}

	msg := f.Format(results, reportTime)
	assert.Contains(t, msg, "`S2USDT`")
	assert.NotContains(t, msg, "`S3USDT`")
	assert.Contains(t, msg, "_+2 more_")
}

func TestFormat_DoesNotReorderInput(t *testing.T) {
	f := NewReportFormatter(15, 0, "1h", "4h")
	results := []market.ScanResult{{Symbol: "A", Volume: 1}, {Symbol: "B", Volume: 2}}
	f.Format(results, reportTime)
	assert.Equal(t, "A", results[0].Symbol)
}

func TestHeader_TimezoneOffset(t *testing.T) {
	assert.Equal(t, "📡 *RSI Radar*  ·  03-05 16:30", NewReportFormatter(15, 0, "1h", "4h").Header(reportTime))
	assert.Equal(t, "📡 *RSI Radar*  ·  03-05 11:30", NewReportFormatter(15, -5, "1h", "4h").Header(reportTime))
}

func TestFormatFunding(t *testing.T) {
	assert.Equal(t, "+0.010%", FormatFunding(0.0001))
	assert.Equal(t, "-0.250%", FormatFunding(-0.0025))
	assert.Equal(t, "+0.000%", FormatFunding(0))
}
