package teetime

import "time"

// FeeSchedule holds per-player green fees in whole dollars.
type FeeSchedule struct {
	Weekday         int
	WeekdayTwilight int
	Weekend         int
	WeekendTwilight int
	TwilightStart   TimeOfDay
}

func DefaultFees() FeeSchedule {
	return FeeSchedule{
		Weekday:         28,
		WeekdayTwilight: 20,
		Weekend:         33,
		WeekendTwilight: 23,
		TwilightStart:   TimeOfDay{Hour: 15},
	}
}

// GreenFee returns the per-player fee for a round at tod on date's day of
// week, evaluated in date's own location.
func (f FeeSchedule) GreenFee(date time.Time, tod TimeOfDay) int {
	twilight := !tod.Before(f.TwilightStart)
	switch date.Weekday() {
	case time.Saturday, time.Sunday:
		if twilight {
			return f.WeekendTwilight
		}
		return f.Weekend
	default:
		if twilight {
			return f.WeekdayTwilight
		}
		return f.Weekday
	}
}
