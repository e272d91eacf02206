package main

import (
	"fmt"
	"io"
	"os"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

// errOut receives status and diagnostic lines so command output on stdout
// stays pipeable.
var errOut io.Writer = os.Stderr

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

// promptRef renders a prompt ID the same way in every listing.
func promptRef(id int64) string {
	return colorize(colorCyan, fmt.Sprintf("#%d", id))
}

// statusLabel colors run statuses and rerank outcomes: green when the
// work happened as asked, yellow when it fell back, red when it failed.
func statusLabel(status string) string {
	switch status {
	case "completed", "applied":
		return colorize(colorGreen, status)
	case "degraded", "disabled":
		return colorize(colorYellow, status)
	case "failed":
		return colorize(colorRed, status)
	default:
		return status
	}
}

func printLine(color, marker, format string, args ...any) {
	fmt.Fprintln(errOut, colorize(color, marker+" "+fmt.Sprintf(format, args...)))
}

func printSuccess(format string, args ...any) { printLine(colorGreen, "✓", format, args...) }
func printError(format string, args ...any)   { printLine(colorRed, "✗", format, args...) }
func printWarning(format string, args ...any) { printLine(colorYellow, "⚠", format, args...) }
func printStep(format string, args ...any)    { printLine(colorCyan, "→", format, args...) }

func printStatus(label string, format string, args ...any) {
	fmt.Fprintf(errOut, "  %s %s\n", colorize(colorBold, label+":"), fmt.Sprintf(format, args...))
}
