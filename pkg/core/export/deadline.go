package export

import (
	"fmt"
	"time"

	"github.com/teambition/rrule-go"
)

// DefaultEventName labels calendar entries and summaries
const DefaultEventName = "Sub-for-Santa"

// DeliveryDeadline returns the first occurrence of rule at or after now.
// rule uses the DTSTART/RRULE line form, e.g.
// "DTSTART:20241210T000000Z\nRRULE:FREQ=YEARLY".
func DeliveryDeadline(rule string, now time.Time) (time.Time, error) {
	r, err := rrule.StrToRRule(rule)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse delivery rule: %w", err)
	}

	next := r.After(now, true)
	if next.IsZero() {
		return time.Time{}, fmt.Errorf("delivery rule has no occurrence after %s", now.Format(time.DateOnly))
	}

	return next.UTC(), nil
}

// deadlinePhrase renders a deadline as a month and ordinal day, e.g. "December 10th"
func deadlinePhrase(t time.Time) string {
	day := t.Day()
	return fmt.Sprintf("%s %d%s", t.Month(), day, ordinalSuffix(day))
}

func ordinalSuffix(n int) string {
	if n%100 >= 11 && n%100 <= 13 {
		return "th"
	}
	switch n % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
