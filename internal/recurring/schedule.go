package recurring

import "time"

// NextDueDate returns the occurrence that follows from under the given
// frequency. Pure calendar arithmetic on naive dates; no timezone handling.
//
// Month and year steps use time.AddDate, which normalizes overflow instead
// of clamping: Jan 31 + 1 month = Mar 2 (Mar 3 outside leap years). That is
// the same convention the frontend's date math uses, so both sides agree on
// end-of-month schedules.
func NextDueDate(from time.Time, f Frequency) time.Time {
	switch f {
	case FrequencyDaily:
		return from.AddDate(0, 0, 1)
	case FrequencyWeekly:
		return from.AddDate(0, 0, 7)
	case FrequencyBiweekly:
		return from.AddDate(0, 0, 14)
	case FrequencyMonthly:
		return from.AddDate(0, 1, 0)
	case FrequencyQuarterly:
		return from.AddDate(0, 3, 0)
	case FrequencyYearly:
		return from.AddDate(1, 0, 0)
	default:
		// Unknown values cannot be stored through the API (validation
		// rejects them); rows predating that check advance monthly so a
		// bad value stalls the schedule instead of looping forever.
		return from.AddDate(0, 1, 0)
	}
}

func dateOnly(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
