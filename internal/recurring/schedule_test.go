package recurring

import (
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestNextDueDate(t *testing.T) {
	tests := []struct {
		name      string
		from      string
		frequency Frequency
		expected  string
	}{
		{"daily", "2024-01-15", FrequencyDaily, "2024-01-16"},
		{"weekly", "2024-01-15", FrequencyWeekly, "2024-01-22"},
		{"biweekly", "2024-01-15", FrequencyBiweekly, "2024-01-29"},
		{"monthly", "2024-01-15", FrequencyMonthly, "2024-02-15"},
		{"quarterly", "2024-01-15", FrequencyQuarterly, "2024-04-15"},
		{"yearly", "2024-01-15", FrequencyYearly, "2025-01-15"},
		{"daily across month end", "2024-01-31", FrequencyDaily, "2024-02-01"},
		{"weekly across year end", "2023-12-28", FrequencyWeekly, "2024-01-04"},
		// AddDate normalizes overflow instead of clamping: Jan 31 + 1
		// month lands on Mar 2 in a leap year.
		{"monthly overflow leap year", "2024-01-31", FrequencyMonthly, "2024-03-02"},
		{"monthly overflow non-leap", "2023-01-31", FrequencyMonthly, "2023-03-03"},
		{"quarterly overflow", "2024-11-30", FrequencyQuarterly, "2025-03-02"},
		{"yearly from leap day", "2024-02-29", FrequencyYearly, "2025-03-01"},
		{"unknown frequency falls back to monthly", "2024-01-15", Frequency("fortnightly"), "2024-02-15"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextDueDate(date(tt.from), tt.frequency)
			if !got.Equal(date(tt.expected)) {
				t.Errorf("NextDueDate(%s, %s) = %s, want %s",
					tt.from, tt.frequency, got.Format("2006-01-02"), tt.expected)
			}
		})
	}
}

func TestNextDueDateIsPure(t *testing.T) {
	from := date("2024-06-01")
	first := NextDueDate(from, FrequencyMonthly)
	second := NextDueDate(from, FrequencyMonthly)
	if !first.Equal(second) {
		t.Errorf("same inputs produced %s and %s", first, second)
	}
	if !from.Equal(date("2024-06-01")) {
		t.Errorf("input was mutated to %s", from)
	}
}

func TestFrequencyValid(t *testing.T) {
	for _, f := range []Frequency{
		FrequencyDaily, FrequencyWeekly, FrequencyBiweekly,
		FrequencyMonthly, FrequencyQuarterly, FrequencyYearly,
	} {
		if !f.Valid() {
			t.Errorf("%s should be valid", f)
		}
	}
	for _, f := range []Frequency{"", "hourly", "MONTHLY", "fortnightly"} {
		if f.Valid() {
			t.Errorf("%q should be invalid", f)
		}
	}
}
