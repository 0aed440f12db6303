package ui

import (
	"fmt"
	"strings"
	"time"
)

// truncate shortens s to max runes, marking the cut with an ellipsis.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max <= 1 {
		return string(runes[:max])
	}
	return string(runes[:max-1]) + "…"
}

// padRight pads s with spaces to width runes.
func padRight(s string, width int) string {
	length := len([]rune(s))
	if length >= width {
		return s
	}
	return s + strings.Repeat(" ", width-length)
}

// formatDuration renders a second count as "1h 30m" or "45m" or "30s".
func formatDuration(seconds int64) string {
	if seconds <= 0 {
		return "0s"
	}
	d := time.Duration(seconds) * time.Second
	hours := int64(d.Hours())
	minutes := int64(d.Minutes()) % 60
	secs := seconds % 60

	switch {
	case hours > 0 && minutes > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes)
	case hours > 0:
		return fmt.Sprintf("%dh", hours)
	case minutes > 0:
		return fmt.Sprintf("%dm", minutes)
	default:
		return fmt.Sprintf("%ds", secs)
	}
}

// parseDurationText converts operator input like "45m", "1h 30m" or a bare
// minute count into seconds.
func parseDurationText(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty duration")
	}

	// A bare number means minutes.
	if !strings.ContainsAny(s, "hms") {
		var minutes int64
		if _, err := fmt.Sscanf(s, "%d", &minutes); err != nil || minutes < 0 {
			return 0, fmt.Errorf("cannot parse duration %q", s)
		}
		return minutes * 60, nil
	}

	d, err := time.ParseDuration(strings.ReplaceAll(s, " ", ""))
	if err != nil {
		return 0, fmt.Errorf("cannot parse duration %q", s)
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must not be negative")
	}
	return int64(d.Seconds()), nil
}
