// pkg/logger/global.go
package logger

import (
	"os"
	"sync/atomic"
)

var globalLogger atomic.Pointer[Logger]

func init() {
	globalLogger.Store(New(os.Stdout, LevelInfo, false))
}

// InitGlobal заменяет глобальный логгер
func InitGlobal(logPath, logLevel string, debug bool) error {
	l, err := NewLogger(logPath, logLevel, debug)
	if err != nil {
		return err
	}
	SetGlobal(l)
	return nil
}

// SetGlobal устанавливает готовый логгер глобальным
func SetGlobal(l *Logger) {
	if l != nil {
		globalLogger.Store(l)
	}
}

func GetLogger() *Logger {
	return globalLogger.Load()
}

// Глобальные методы для удобства
func Debug(format string, v ...interface{}) { GetLogger().Debug(format, v...) }
func Info(format string, v ...interface{})  { GetLogger().Info(format, v...) }
func Warn(format string, v ...interface{})  { GetLogger().Warn(format, v...) }
func Error(format string, v ...interface{}) { GetLogger().Error(format, v...) }
func Fatal(format string, v ...interface{}) { GetLogger().Fatal(format, v...) }

func Match(symbol string, rsiShort, rsiLong, volume float64) {
	GetLogger().Match(symbol, rsiShort, rsiLong, volume)
}
