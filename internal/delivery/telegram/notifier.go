// internal/delivery/telegram/notifier.go
package telegram

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"rsi-radar/internal/types/market"
	"rsi-radar/pkg/logger"
)

// Sender - транспорт готового текста
type Sender interface {
	Enabled() bool
	SendTextMessage(ctx context.Context, text string) error
}

// Notifier публикует отчет сканирования: в Telegram, либо в консоль,
// если бот не настроен
type Notifier struct {
	formatter *ReportFormatter
	sender    Sender
	console   io.Writer
	now       func() time.Time
}

// NewNotifier создает новый нотификатор
func NewNotifier(formatter *ReportFormatter, sender Sender) *Notifier {
	return &Notifier{
		formatter: formatter,
		sender:    sender,
		console:   os.Stdout,
		now:       time.Now,
	}
}

// SetConsole меняет вывод для режима без Telegram
func (n *Notifier) SetConsole(w io.Writer) {
	if w != nil {
		n.console = w
	}
}

// Publish форматирует и отправляет отчет
func (n *Notifier) Publish(ctx context.Context, report *market.ScanReport) error {
	if report == nil {
		return fmt.Errorf("nil scan report")
	}

	at := report.FinishedAt
	if at.IsZero() {
		at = n.now()
	}
	text := n.formatter.Format(report.Results, at)

	if n.sender == nil || !n.sender.Enabled() {
		logger.Warn("⚠️ Telegram не настроен, вывод результата в консоль")
		_, err := fmt.Fprintln(n.console, text)
		return err
	}

	if err := n.sender.SendTextMessage(ctx, text); err != nil {
		return fmt.Errorf("publish report %s: %w", report.ID, err)
	}
	return nil
}
