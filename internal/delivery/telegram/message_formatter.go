// internal/delivery/telegram/message_formatter.go
package telegram

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"rsi-radar/internal/types/market"
)

const (
	separator    = "━━━━━━━━━━━━━━━━"
	emptyMessage = "✅ Нет монет с высоким RSI"
	copyHint     = "💡 _Нажмите на символ, чтобы скопировать_"
)

// ReportFormatter форматирует результаты сканирования для Telegram (Markdown)
type ReportFormatter struct {
	maxRows   int
	location  *time.Location
	shortName string
	longName  string
}

// NewReportFormatter создает форматтер. Время в заголовке показывается
// в зоне UTC+tzOffsetHours, shortName/longName - подписи интервалов RSI.
func NewReportFormatter(maxRows, tzOffsetHours int, shortName, longName string) *ReportFormatter {
	if maxRows < 1 {
		maxRows = 15
	}
	return &ReportFormatter{
		maxRows:   maxRows,
		location:  time.FixedZone(fmt.Sprintf("UTC%+d", tzOffsetHours), tzOffsetHours*3600),
		shortName: shortName,
		longName:  longName,
	}
}

// Header - заголовок сообщения
func (f *ReportFormatter) Header(at time.Time) string {
	return fmt.Sprintf("📡 *RSI Radar*  ·  %s", at.In(f.location).Format("01-02 15:04"))
}

// Format строит сообщение: до maxRows строк по убыванию объема,
// остальные сворачиваются в «+K more»
func (f *ReportFormatter) Format(results []market.ScanResult, at time.Time) string {
	if len(results) == 0 {
		return f.Header(at) + "\n\n" + emptyMessage
	}

	rows := make([]market.ScanResult, len(results))
	copy(rows, results)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].Volume > rows[j].Volume })

	var b strings.Builder
	b.WriteString(f.Header(at))
	b.WriteString("\n" + separator + "\n\n")

	shown := rows[:min(len(rows), f.maxRows)]
	for _, r := range shown {
		fmt.Fprintf(&b, "`%s`\n", r.Symbol)
		fmt.Fprintf(&b, "  RSI  %s `%d` · %s `%d`  |  фандинг `%s`\n\n",
			f.shortName, int(r.RSIShort), f.longName, int(r.RSILong), FormatFunding(r.FundingRate))
	}

	if hidden := len(rows) - len(shown); hidden > 0 {
		fmt.Fprintf(&b, "_+%d more_\n", hidden)
	}
	b.WriteString(separator + "\n")
	b.WriteString(copyHint)
	return b.String()
}

// FormatFunding - ставка финансирования в процентах со знаком, 3 знака
func FormatFunding(rate float64) string {
	return fmt.Sprintf("%+.3f%%", rate*100)
}
