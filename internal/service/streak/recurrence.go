package streak

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var everyNDays = regexp.MustCompile(`^every (\d+) days?$`)

// nextDeadline returns the instant by which the next completion is expected
// after a completion at from. Month-based recurrences use calendar
// arithmetic rather than fixed-length days. Unparseable rules fall back to
// the daily interval so bad input never corrupts streak state.
func nextDeadline(from time.Time, recurrence string, recurrenceDays []int) time.Time {
	switch normalizeRecurrence(recurrence) {
	case "", "none", "daily", "everyday":
		return from.AddDate(0, 0, 1)
	case "weekly":
		return from.AddDate(0, 0, 7)
	case "bi-weekly":
		return from.AddDate(0, 0, 14)
	case "monthly":
		return from.AddDate(0, 1, 0)
	case "bi-monthly":
		return from.AddDate(0, 2, 0)
	case "every-6-months":
		return from.AddDate(0, 6, 0)
	case "yearly":
		return from.AddDate(1, 0, 0)
	case "every x days":
		return from.AddDate(0, 0, customDayInterval(recurrenceDays))
	}

	if m := everyNDays.FindStringSubmatch(normalizeRecurrence(recurrence)); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			return from.AddDate(0, 0, n)
		}
	}

	return from.AddDate(0, 0, 1)
}

func normalizeRecurrence(recurrence string) string {
	return strings.ToLower(strings.TrimSpace(recurrence))
}

// customDayInterval resolves the "every x days" interval from the habit's
// configured day list, defaulting to daily when none is usable.
func customDayInterval(recurrenceDays []int) int {
	for _, d := range recurrenceDays {
		if d > 0 {
			return d
		}
	}
	return 1
}
