package scoring

import "fmt"

// FormatTimeRemaining renders seconds as MM:SS. Minutes are not capped at 59.
func FormatTimeRemaining(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

// FormatDuration renders an exam length in minutes for display.
func FormatDuration(minutes int) string {
	if minutes < 60 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	hours, mins := minutes/60, minutes%60
	if mins > 0 {
		return fmt.Sprintf("%dh %dm", hours, mins)
	}
	if hours == 1 {
		return "1 hour"
	}
	return fmt.Sprintf("%d hours", hours)
}
