// Package scoring maps raw correctness counts to the 0-1000 certification scale.
//
// All rounding is half away from zero (math.Round).
package scoring

import "math"

// MaxScore is the top of the normalized scale.
const MaxScore = 1000

// NormalizeScore returns round(correct/total*1000), or 0 when total is zero.
// correct is clamped to [0, total].
func NormalizeScore(correct, total int) int {
	if total <= 0 {
		return 0
	}
	correct = max(0, min(correct, total))
	return int(math.Round(float64(correct) * MaxScore / float64(total)))
}

// IsPassing reports whether score meets the inclusive passing threshold.
func IsPassing(score, passingScore int) bool {
	return score >= passingScore
}

// ToPercentage converts a normalized score into a whole percentage.
func ToPercentage(score int) int {
	return int(math.Round(float64(score) * 100 / MaxScore))
}

// Percentage returns round(part/whole*100), or 0 when whole is zero.
func Percentage(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) * 100 / float64(whole)))
}
