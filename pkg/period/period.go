// pkg/period/period.go
package period

import (
	"fmt"
	"time"
)

// Интервалы свечей фьючерсов Binance
const (
	Period1m  = "1m"
	Period3m  = "3m"
	Period5m  = "5m"
	Period15m = "15m"
	Period30m = "30m"
	Period1h  = "1h"
	Period2h  = "2h"
	Period4h  = "4h"
	Period6h  = "6h"
	Period8h  = "8h"
	Period12h = "12h"
	Period1d  = "1d"
)

var durations = map[string]time.Duration{
	Period1m:  time.Minute,
	Period3m:  3 * time.Minute,
	Period5m:  5 * time.Minute,
	Period15m: 15 * time.Minute,
	Period30m: 30 * time.Minute,
	Period1h:  time.Hour,
	Period2h:  2 * time.Hour,
	Period4h:  4 * time.Hour,
	Period6h:  6 * time.Hour,
	Period8h:  8 * time.Hour,
	Period12h: 12 * time.Hour,
	Period1d:  24 * time.Hour,
}

// IsKlineInterval - поддерживает ли биржа интервал
func IsKlineInterval(interval string) bool {
	_, err := Duration(interval)
	return err == nil
}

// Duration конвертирует интервал свечи в длительность
func Duration(interval string) (time.Duration, error) {
	d, ok := durations[interval]
	if !ok {
		return 0, fmt.Errorf("неизвестный интервал: %s", interval)
	}
	return d, nil
}

// Window - отрезок времени, который покрывают count свечей интервала
func Window(interval string, count int) (time.Duration, error) {
	d, err := Duration(interval)
	if err != nil {
		return 0, err
	}
	return time.Duration(count) * d, nil
}
