// pkg/logger/logger.go

package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// Уровни логирования
const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
	LevelFatal = "FATAL"
)

var levelPriority = map[string]int{
	LevelDebug: 0,
	LevelInfo:  1,
	LevelWarn:  2,
	LevelError: 3,
	LevelFatal: 4,
}

// Logger - уровневый логгер: консоль и (опционально) файл
type Logger struct {
	mu        sync.Mutex
	logFile   *os.File
	out       *log.Logger
	console   io.Writer
	logLevel  string
	debugMode bool
}

// NewLogger создает логгер. Пустой logPath - только консоль.
func NewLogger(logPath string, logLevel string, debug bool) (*Logger, error) {
	var writer io.Writer = os.Stdout
	var file *os.File

	if logPath != "" {
		if dir := filepath.Dir(logPath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("create log dir: %w", err)
			}
		}
		f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		file = f
		writer = io.MultiWriter(os.Stdout, file)
	}

	l := New(writer, logLevel, debug)
	l.logFile = file
	return l, nil
}

// New создает логгер поверх произвольного writer (используется в тестах)
func New(w io.Writer, logLevel string, debug bool) *Logger {
	return &Logger{
		out:       log.New(w, "", 0),
		console:   w,
		logLevel:  strings.ToUpper(logLevel),
		debugMode: debug,
	}
}

// shouldLog проверяет, нужно ли логировать сообщение на данном уровне
func (l *Logger) shouldLog(level string) bool {
	currentPriority, ok1 := levelPriority[l.logLevel]
	msgPriority, ok2 := levelPriority[level]
	if !ok1 || !ok2 {
		return true
	}
	return msgPriority >= currentPriority
}

func (l *Logger) log(level string, format string, v ...interface{}) {
	if !l.shouldLog(level) {
		return
	}

	msg := fmt.Sprintf(format, v...)
	timestamp := time.Now().Format("2006-01-02 15:04:05")

	color, reset := "", ""
	if l.debugMode {
		switch level {
		case LevelDebug:
			color = "\033[36m"
		case LevelInfo:
			color = "\033[32m"
		case LevelWarn:
			color = "\033[33m"
		case LevelError:
			color = "\033[31m"
		case LevelFatal:
			color = "\033[35m"
		}
		reset = "\033[0m"
	}

	l.mu.Lock()
	l.out.Printf("%s[%s] %s %s%s", color, level, timestamp, msg, reset)
	l.mu.Unlock()
}

func (l *Logger) Debug(format string, v ...interface{}) { l.log(LevelDebug, format, v...) }
func (l *Logger) Info(format string, v ...interface{})  { l.log(LevelInfo, format, v...) }
func (l *Logger) Warn(format string, v ...interface{})  { l.log(LevelWarn, format, v...) }
func (l *Logger) Error(format string, v ...interface{}) { l.log(LevelError, format, v...) }

func (l *Logger) Fatal(format string, v ...interface{}) {
	l.log(LevelFatal, format, v...)
	os.Exit(1)
}

// Status печатает блок статуса в консоль
func (l *Logger) Status(title string, stats map[string]string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	fmt.Fprintln(l.console, strings.Repeat("─", 50))
	fmt.Fprintln(l.console, "📊 "+title)
	for key, value := range stats {
		fmt.Fprintf(l.console, "   %-20s: %s\n", key, value)
	}
	fmt.Fprintln(l.console, strings.Repeat("─", 50))
}

// Match логирует найденный символ
func (l *Logger) Match(symbol string, rsiShort, rsiLong, volume float64) {
	l.Info("🔥 MATCH: %s RSI %.1f / %.1f (объем %.0f)", symbol, rsiShort, rsiLong, volume)
}

func (l *Logger) Close() {
	if l.logFile != nil {
		l.logFile.Close()
	}
}
