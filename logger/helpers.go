package logger

import (
	"fmt"
	"strings"
)

// Icons and symbols for different log types
const (
	IconSuccess = "✓"
	IconRefresh = "↻"
)

// Success logs a success message with a checkmark
func Success(args ...interface{}) {
	defaultLogger.Info(IconSuccess + " " + fmt.Sprint(args...))
}

// Successf logs a formatted success message
func Successf(format string, args ...interface{}) {
	Success(fmt.Sprintf(format, args...))
}

// Progress logs a progress message
func Progress(args ...interface{}) {
	defaultLogger.Info(IconRefresh + " " + fmt.Sprint(args...))
}

// Progressf logs a formatted progress message
func Progressf(format string, args ...interface{}) {
	Progress(fmt.Sprintf(format, args...))
}

// LogSection writes a visual section separator to the output of the default logger.
func LogSection(title string) {
	l, ok := defaultLogger.(*logger)
	if !ok {
		return
	}
	line := strings.Repeat("=", 50)
	l.mu.Lock()
	defer l.mu.Unlock()
	fmt.Fprintln(l.writer, l.paint(colorPrefix, line))
	fmt.Fprintln(l.writer, l.paint(colorTitle, title))
	fmt.Fprintln(l.writer, l.paint(colorPrefix, line))
}
