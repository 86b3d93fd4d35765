package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

// Level represents a logging level
type Level int

const (
	DEBUG Level = iota
	INFO
	WARN
	ERROR
)

func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name to a Level. Unknown names map to INFO.
func ParseLevel(name string) Level {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "DEBUG":
		return DEBUG
	case "WARN", "WARNING":
		return WARN
	case "ERROR":
		return ERROR
	default:
		return INFO
	}
}

// Format represents the log output format
type Format int

const (
	Text Format = iota
	JSON
)

// ParseFormat converts a format name to a Format. Anything but "json" is Text.
func ParseFormat(name string) Format {
	if strings.EqualFold(strings.TrimSpace(name), "json") {
		return JSON
	}
	return Text
}

// Logger handles structured logging
type Logger struct {
	mu     sync.Mutex
	out    io.Writer
	level  Level
	format Format
}

// LogConfig contains logger configuration
type LogConfig struct {
	Level  Level
	Format Format
}

var (
	defaultLogger = New(os.Stderr)

	debugColor = color.New(color.FgCyan)
	infoColor  = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errorColor = color.New(color.FgRed)
)

// New creates a text logger at INFO writing to out
func New(out io.Writer) *Logger {
	return &Logger{
		out:    out,
		level:  INFO,
		format: Text,
	}
}

// Configure sets up the default logger
func Configure(config LogConfig) {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	defaultLogger.level = config.Level
	defaultLogger.format = config.Format
}

// SetOutput redirects the default logger and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	defaultLogger.mu.Lock()
	defer defaultLogger.mu.Unlock()
	prev := defaultLogger.out
	defaultLogger.out = w
	return prev
}

type logEntry struct {
	Timestamp string      `json:"timestamp"`
	Level     string      `json:"level"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
}

func (l *Logger) log(level Level, msg string, data interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	timestamp := time.Now().Format("2006/01/02 15:04:05")

	if l.format == JSON {
		entry := logEntry{
			Timestamp: timestamp,
			Level:     level.String(),
			Message:   msg,
			Data:      data,
		}
		if err := json.NewEncoder(l.out).Encode(entry); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to encode log entry: %v\n", err)
		}
		return
	}

	var levelColor *color.Color
	switch level {
	case DEBUG:
		levelColor = debugColor
	case WARN:
		levelColor = warnColor
	case ERROR:
		levelColor = errorColor
	default:
		levelColor = infoColor
	}

	fmt.Fprintf(l.out, "%s %s: %s", timestamp, levelColor.Sprintf("%-5s", level.String()), msg)
	if data != nil {
		fmt.Fprintf(l.out, " %+v", data)
	}
	fmt.Fprintln(l.out)
}

func (l *Logger) Debug(msg string, data ...interface{}) {
	l.log(DEBUG, msg, firstOrNil(data))
}

func (l *Logger) Info(msg string, data ...interface{}) {
	l.log(INFO, msg, firstOrNil(data))
}

func (l *Logger) Warn(msg string, data ...interface{}) {
	l.log(WARN, msg, firstOrNil(data))
}

func (l *Logger) Error(msg string, err error, data ...interface{}) {
	if err != nil {
		msg = fmt.Sprintf("%s: %v", msg, err)
	}
	l.log(ERROR, msg, firstOrNil(data))
}

// Enabled reports whether messages at level would be written
func (l *Logger) Enabled(level Level) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return level >= l.level
}

func firstOrNil(data []interface{}) interface{} {
	if len(data) > 0 {
		return data[0]
	}
	return nil
}

// ScanStart logs the start of a batch
func (l *Logger) ScanStart(scanners []string, regions []string, maxWorkers int) {
	l.Info("Starting scan operation", map[string]interface{}{
		"scanners":    scanners,
		"regions":     regions,
		"max_workers": maxWorkers,
	})
}

// ScannerStart logs the start of a specific scanner
func (l *Logger) ScannerStart(scanner, region string) {
	l.Debug("Starting scanner", map[string]interface{}{
		"scanner": scanner,
		"region":  region,
	})
}

// ScannerComplete logs the completion of a specific scanner
func (l *Logger) ScannerComplete(scanner string, findings int, monthlyCost float64) {
	l.Info("Scanner completed", map[string]interface{}{
		"scanner":      scanner,
		"result_count": findings,
		"monthly_cost": monthlyCost,
	})
}

// ScannerError logs a scanner failure
func (l *Logger) ScannerError(scanner string, err error) {
	l.Error("Scanner failed", err, map[string]interface{}{
		"scanner": scanner,
	})
}

// ScanComplete logs the completion of a batch
func (l *Logger) ScanComplete(totalFindings, failed int, totalMonthlyCost float64, elapsed time.Duration) {
	l.Info("Scan operation complete", map[string]interface{}{
		"total_results":      totalFindings,
		"failed_scanners":    failed,
		"total_monthly_cost": totalMonthlyCost,
		"elapsed":            elapsed.Round(time.Millisecond).String(),
	})
}

// Enabled reports whether the default logger writes messages at level
func Enabled(level Level) bool {
	return defaultLogger.Enabled(level)
}

// Default logger methods
func Debug(msg string, data ...interface{}) {
	defaultLogger.Debug(msg, data...)
}

func Info(msg string, data ...interface{}) {
	defaultLogger.Info(msg, data...)
}

func Warn(msg string, data ...interface{}) {
	defaultLogger.Warn(msg, data...)
}

func Error(msg string, err error, data ...interface{}) {
	defaultLogger.Error(msg, err, data...)
}

func ScanStart(scanners []string, regions []string, maxWorkers int) {
	defaultLogger.ScanStart(scanners, regions, maxWorkers)
}

func ScannerStart(scanner, region string) {
	defaultLogger.ScannerStart(scanner, region)
}

func ScannerComplete(scanner string, findings int, monthlyCost float64) {
	defaultLogger.ScannerComplete(scanner, findings, monthlyCost)
}

func ScannerError(scanner string, err error) {
	defaultLogger.ScannerError(scanner, err)
}

func ScanComplete(totalFindings, failed int, totalMonthlyCost float64, elapsed time.Duration) {
	defaultLogger.ScanComplete(totalFindings, failed, totalMonthlyCost, elapsed)
}
