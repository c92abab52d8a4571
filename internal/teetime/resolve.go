package teetime

import (
	"strconv"
	"time"
)

const (
	// TextLayout is the tee time format ForeUP expects in request bodies.
	TextLayout = "2006-01-02 15:04"

	startFrontLayout = "200601021504"

	lookaheadDays     = 7
	lateLookaheadDays = 8
)

// DefaultRelease is when ForeUP opens the next day of the tee sheet.
var DefaultRelease = TimeOfDay{Hour: 19, Minute: 0}

// Target is the tee time the next release instant opens up.
type Target struct {
	At        time.Time
	TimeOfDay TimeOfDay
	// Text is At formatted with TextLayout.
	Text string
	// StartFront is the same wall-clock time one calendar month earlier,
	// encoded as the number yyyyMMddHHmm.
	StartFront int64
}

// Resolve picks the tee time that becomes bookable at the next release
// instant. Slots open on a rolling window one week out, so once today's
// release time has passed the next opening is eight days away instead of
// seven. All arithmetic happens in loc regardless of now's own location.
func Resolve(now time.Time, tod TimeOfDay, loc *time.Location, release TimeOfDay) Target {
	today := now.In(loc)
	days := lookaheadDays
	if today.Hour()*60+today.Minute() >= release.Minutes() {
		days = lateLookaheadDays
	}
	at := time.Date(today.Year(), today.Month(), today.Day()+days, tod.Hour, tod.Minute, 0, 0, loc)
	return Target{
		At:         at,
		TimeOfDay:  tod,
		Text:       at.Format(TextLayout),
		StartFront: startFront(at),
	}
}

// monthEarlier subtracts one calendar month, clamping the day to the end of
// the shorter month (Mar 31 -> Feb 28/29) rather than overflowing into the
// next one like time.AddDate does.
func monthEarlier(t time.Time) time.Time {
	y, m, d := t.Date()
	firstOfPrev := time.Date(y, m-1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	last := daysIn(firstOfPrev.Year(), firstOfPrev.Month())
	if d > last {
		d = last
	}
	return time.Date(firstOfPrev.Year(), firstOfPrev.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysIn(y int, m time.Month) int {
	return time.Date(y, m+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func startFront(at time.Time) int64 {
	n, _ := strconv.ParseInt(monthEarlier(at).Format(startFrontLayout), 10, 64)
	return n
}
