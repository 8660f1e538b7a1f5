// Package colors provides terminal color support for Muninn output.
//
// This package provides:
// - ANSI color codes for terminal output
// - Automatic color detection and fallback for non-color terminals
// - Consistent color scheme across all Muninn commands
package colors

import (
	"os"
	"runtime"
	"strings"
)

// ANSI color codes
const (
	ColorReset = "\033[0m"
	ColorDim   = "\033[2m"

	ColorRed     = "\033[31m"
	ColorGreen   = "\033[32m"
	ColorYellow  = "\033[33m"
	ColorBlue    = "\033[34m"
	ColorMagenta = "\033[35m"
	ColorCyan    = "\033[36m"

	BrightRed    = "\033[91m"
	BrightGreen  = "\033[92m"
	BrightYellow = "\033[93m"
	BrightCyan   = "\033[96m"
)

// laneColors cycles per timeline lane in graph output.
var laneColors = []string{ColorGreen, ColorMagenta, ColorCyan, ColorYellow, ColorBlue, ColorRed}

// colorEnabled determines if color output should be used
var colorEnabled = shouldUseColor()

// shouldUseColor determines if the terminal supports colors
func shouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	if runtime.GOOS == "windows" {
		term := strings.ToLower(os.Getenv("TERM"))
		wt := os.Getenv("WT_SESSION")
		vscode := os.Getenv("VSCODE_PID")
		if wt != "" || vscode != "" || strings.Contains(term, "color") || strings.Contains(term, "xterm") {
			return true
		}
		return false
	}

	term := strings.ToLower(os.Getenv("TERM"))
	if term == "dumb" || term == "" {
		return false
	}

	if fileInfo, err := os.Stdout.Stat(); err == nil {
		return (fileInfo.Mode() & os.ModeCharDevice) != 0
	}
	return true
}

// SetColorEnabled allows manual control of color output
func SetColorEnabled(enabled bool) {
	colorEnabled = enabled
}

// colorize applies color to text if colors are enabled
func colorize(text, color string) string {
	if !colorEnabled {
		return text
	}
	return color + text + ColorReset
}

func Yellow(text string) string { return colorize(text, ColorYellow) }

func Dim(text string) string {
	if !colorEnabled {
		return text
	}
	return ColorDim + text + ColorReset
}

// SnapshotID renders an abbreviated commit id.
func SnapshotID(text string) string { return colorize(text, BrightYellow) }

// TimelineName renders a timeline slug or label.
func TimelineName(text string) string { return colorize(text, BrightGreen) }

// HeadMarker renders the current-position marker.
func HeadMarker(text string) string { return colorize(text, BrightCyan) }

// Lane renders graph text in the color assigned to a lane.
func Lane(text string, lane int) string {
	return colorize(text, laneColors[lane%len(laneColors)])
}

// ErrorText renders failure messages.
func ErrorText(text string) string { return colorize(text, BrightRed) }
