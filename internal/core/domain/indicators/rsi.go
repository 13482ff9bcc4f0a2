// internal/core/domain/indicators/rsi.go
package indicators

// RSI рассчитывает сглаженный по Уайлдеру индекс относительной силы.
// Окно короткое (десятки свечей), поэтому значение не успевает сойтись с
// классическим RSI на длинной истории.
//
// Возвращает 0, если точек меньше period+1: это «недостаточно данных»,
// такой символ не проходит ни один порог.
func RSI(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return 0
	}

	var avgGain, avgLoss float64
	for i := 1; i <= period; i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain += gain
		avgLoss += loss
	}
	avgGain /= float64(period)
	avgLoss /= float64(period)

	n := float64(period)
	for i := period + 1; i < len(closes); i++ {
		gain, loss := split(closes[i] - closes[i-1])
		avgGain = (avgGain*(n-1) + gain) / n
		avgLoss = (avgLoss*(n-1) + loss) / n
	}

	if avgLoss == 0 {
		return 100
	}
	return 100 - 100/(1+avgGain/avgLoss)
}

// Qualifies - прошло ли значение порог. Нулевое значение (нет данных) не проходит никогда.
func Qualifies(rsi, threshold float64) bool {
	return rsi > 0 && rsi >= threshold
}

func split(diff float64) (gain, loss float64) {
	switch {
	case diff > 0:
		return diff, 0
	case diff < 0:
		return 0, -diff
	}
	return 0, 0
}
