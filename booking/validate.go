package booking

import (
	"fmt"
	"math"
	"time"
)

const (
	MinDurationMinutes   = 30
	MaxDurationMinutes   = 180
	MaxSubscriptionWeeks = 52
)

const clockLayout = "15:04"

func parseDate(s string) (time.Time, error) {
	return time.Parse(time.DateOnly, s)
}

func parseClock(s string) (time.Time, error) {
	return time.Parse(clockLayout, s)
}

// spanWeeks counts the weeks a subscription covers, rounding partial weeks up.
func spanWeeks(start, end time.Time) int {
	days := end.Sub(start).Hours() / 24
	return int(math.Ceil(days / 7))
}

// ValidateSubmission checks a booking before it is accepted, single or
// recurring. Violations are collected, not short-circuited; the returned
// error is a *ValidationError listing every problem, or nil.
func ValidateSubmission(b Booking) error {
	var problems []string

	switch b.Arena {
	case ArenaIndoor, ArenaOutdoor:
	case "":
		problems = append(problems, "arena is required")
	default:
		problems = append(problems, fmt.Sprintf("unknown arena %q", b.Arena))
	}

	var date time.Time
	if b.Date == "" {
		problems = append(problems, "date is required")
	} else if d, err := parseDate(b.Date); err != nil {
		problems = append(problems, fmt.Sprintf("date %q is not a valid YYYY-MM-DD date", b.Date))
	} else {
		date = d
	}

	var start, end time.Time
	startOK, endOK := false, false

	if b.StartTime == "" {
		problems = append(problems, "start time is required")
	} else if t, err := parseClock(b.StartTime); err != nil {
		problems = append(problems, fmt.Sprintf("start time %q is not a valid HH:MM time", b.StartTime))
	} else {
		start, startOK = t, true
	}

	if b.EndTime == "" {
		problems = append(problems, "end time is required")
	} else if t, err := parseClock(b.EndTime); err != nil {
		problems = append(problems, fmt.Sprintf("end time %q is not a valid HH:MM time", b.EndTime))
	} else {
		end, endOK = t, true
	}

	if startOK && endOK {
		if !end.After(start) {
			problems = append(problems, "end time must be after start time")
		} else {
			duration := end.Sub(start).Minutes()
			if duration < MinDurationMinutes {
				problems = append(problems, fmt.Sprintf("minimum booking duration is %d minutes", MinDurationMinutes))
			}
			if duration > MaxDurationMinutes {
				problems = append(problems, fmt.Sprintf("maximum booking duration is %d minutes", MaxDurationMinutes))
			}
		}
	}

	if b.IsSubscription {
		switch {
		case b.SubscriptionEndDate == "":
			problems = append(problems, "subscription end date is required for recurring bookings")
		default:
			endDate, err := parseDate(b.SubscriptionEndDate)
			switch {
			case err != nil:
				problems = append(problems, fmt.Sprintf("subscription end date %q is not a valid YYYY-MM-DD date", b.SubscriptionEndDate))
			case !date.IsZero() && !endDate.After(date):
				problems = append(problems, "subscription end date must be after the start date")
			case !date.IsZero() && spanWeeks(date, endDate) > MaxSubscriptionWeeks:
				problems = append(problems, fmt.Sprintf("a subscription may span at most %d weeks", MaxSubscriptionWeeks))
			}
		}
	}

	if len(problems) != 0 {
		return &ValidationError{Problems: problems}
	}

	return nil
}
