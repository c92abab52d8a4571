package teetime

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newYork(t *testing.T) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)
	return loc
}

func TestParseTimeOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    TimeOfDay
		wantErr bool
	}{
		{in: "0730", want: TimeOfDay{7, 30}},
		{in: "07:30", want: TimeOfDay{7, 30}},
		{in: " 1500 ", want: TimeOfDay{15, 0}},
		{in: "0000", want: TimeOfDay{0, 0}},
		{in: "23:59", want: TimeOfDay{23, 59}},
		{in: "2400", wantErr: true},
		{in: "0760", wantErr: true},
		{in: "730", wantErr: true},
		{in: "7:30", wantErr: true},
		{in: "073:0", wantErr: true},
		{in: "+730", wantErr: true},
		{in: "ab:cd", wantErr: true},
		{in: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimeOfDay(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveLookahead(t *testing.T) {
	loc := newYork(t)
	tod := TimeOfDay{Hour: 7, Minute: 30}

	tests := []struct {
		name string
		now  time.Time
		want time.Time
	}{
		{
			name: "friday after release targets next saturday",
			now:  time.Date(2025, 8, 15, 19, 30, 0, 0, loc),
			want: time.Date(2025, 8, 23, 7, 30, 0, 0, loc),
		},
		{
			name: "friday before release targets next friday",
			now:  time.Date(2025, 8, 15, 18, 0, 0, 0, loc),
			want: time.Date(2025, 8, 22, 7, 30, 0, 0, loc),
		},
		{
			name: "exactly at release hour counts as after",
			now:  time.Date(2025, 8, 15, 19, 0, 0, 0, loc),
			want: time.Date(2025, 8, 23, 7, 30, 0, 0, loc),
		},
		{
			name: "one minute before release",
			now:  time.Date(2025, 8, 15, 18, 59, 59, 0, loc),
			want: time.Date(2025, 8, 22, 7, 30, 0, 0, loc),
		},
		{
			name: "month rollover",
			now:  time.Date(2025, 8, 28, 9, 0, 0, 0, loc),
			want: time.Date(2025, 9, 4, 7, 30, 0, 0, loc),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.now, tod, loc, DefaultRelease)
			assert.True(t, tt.want.Equal(got.At), "got %s want %s", got.At, tt.want)
			assert.Equal(t, tt.want.Format(TextLayout), got.Text)
			assert.Equal(t, tod, got.TimeOfDay)
		})
	}
}

func TestResolveWithReleaseOffTheHour(t *testing.T) {
	loc := newYork(t)
	tod := TimeOfDay{Hour: 7, Minute: 30}
	release := TimeOfDay{Hour: 19, Minute: 30}

	tests := []struct {
		now  time.Time
		want string
	}{
		// Tonight's 19:30 release has not fired yet and opens the 22nd.
		{now: time.Date(2025, 8, 15, 19, 10, 0, 0, loc), want: "2025-08-22 07:30"},
		{now: time.Date(2025, 8, 15, 19, 29, 59, 0, loc), want: "2025-08-22 07:30"},
		{now: time.Date(2025, 8, 15, 19, 30, 0, 0, loc), want: "2025-08-23 07:30"},
		{now: time.Date(2025, 8, 15, 20, 0, 0, 0, loc), want: "2025-08-23 07:30"},
	}
	for _, tt := range tests {
		t.Run(tt.now.Format("15:04:05"), func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.now, tod, loc, release).Text)
		})
	}
}

func TestResolveUsesConfiguredZone(t *testing.T) {
	loc := newYork(t)
	tokyo, err := time.LoadLocation("Asia/Tokyo")
	require.NoError(t, err)
	tod := TimeOfDay{Hour: 7, Minute: 30}

	// 23:30 UTC is 19:30 EDT, past release in New York.
	after := time.Date(2025, 8, 15, 23, 30, 0, 0, time.UTC)
	for _, now := range []time.Time{after, after.In(tokyo)} {
		got := Resolve(now, tod, loc, DefaultRelease)
		assert.Equal(t, "2025-08-23 07:30", got.Text)
		assert.Equal(t, time.Saturday, got.At.Weekday())
		assert.Equal(t, loc, got.At.Location())
	}

	before := time.Date(2025, 8, 15, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2025-08-22 07:30", Resolve(before, tod, loc, DefaultRelease).Text)
}

func TestResolveIsDeterministic(t *testing.T) {
	loc := newYork(t)
	now := time.Date(2025, 11, 2, 1, 30, 0, 0, loc)
	tod := TimeOfDay{Hour: 16, Minute: 10}

	first := Resolve(now, tod, loc, DefaultRelease)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Resolve(now, tod, loc, DefaultRelease))
	}
}

func TestResolveStartFront(t *testing.T) {
	loc := newYork(t)
	tod := TimeOfDay{Hour: 7, Minute: 30}

	tests := []struct {
		name string
		now  time.Time
		text string
		want int64
	}{
		{name: "plain", now: time.Date(2025, 8, 15, 18, 0, 0, 0, loc), text: "2025-08-22 07:30", want: 202507220730},
		{name: "clamp to short february", now: time.Date(2026, 3, 24, 10, 0, 0, 0, loc), text: "2026-03-31 07:30", want: 202602280730},
		{name: "clamp to leap february", now: time.Date(2024, 3, 24, 10, 0, 0, 0, loc), text: "2024-03-31 07:30", want: 202402290730},
		{name: "clamp to 30 day month", now: time.Date(2025, 5, 24, 10, 0, 0, 0, loc), text: "2025-05-31 07:30", want: 202504300730},
		{name: "across year", now: time.Date(2025, 12, 29, 10, 0, 0, 0, loc), text: "2026-01-05 07:30", want: 202512050730},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Resolve(tt.now, tod, loc, DefaultRelease)
			assert.Equal(t, tt.text, got.Text)
			assert.Equal(t, tt.want, got.StartFront)
		})
	}
}

func TestResolveAcrossDaylightSaving(t *testing.T) {
	loc := newYork(t)
	// DST starts 2026-03-08; the wall-clock time must survive the shift.
	got := Resolve(time.Date(2026, 3, 1, 10, 0, 0, 0, loc), TimeOfDay{Hour: 7, Minute: 30}, loc, DefaultRelease)
	assert.Equal(t, "2026-03-08 07:30", got.Text)
	assert.Equal(t, int64(202602080730), got.StartFront)
}

func TestGreenFee(t *testing.T) {
	loc := newYork(t)
	fees := DefaultFees()
	friday := time.Date(2025, 8, 22, 0, 0, 0, 0, loc)
	saturday := time.Date(2025, 8, 23, 0, 0, 0, 0, loc)
	sunday := time.Date(2025, 8, 24, 0, 0, 0, 0, loc)

	tests := []struct {
		name string
		date time.Time
		tod  TimeOfDay
		want int
	}{
		{"weekday morning", friday, TimeOfDay{7, 30}, 28},
		{"weekday just before twilight", friday, TimeOfDay{14, 59}, 28},
		{"weekday twilight start", friday, TimeOfDay{15, 0}, 20},
		{"saturday", saturday, TimeOfDay{7, 30}, 33},
		{"sunday twilight", sunday, TimeOfDay{16, 0}, 23},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, fees.GreenFee(tt.date, tt.tod))
		})
	}
}

func TestGreenFeeWeekdayInDateZone(t *testing.T) {
	loc := newYork(t)
	// Friday 22:00 in New York is Saturday in UTC.
	fri := time.Date(2025, 8, 22, 22, 0, 0, 0, loc)
	assert.Equal(t, 28, DefaultFees().GreenFee(fri, TimeOfDay{7, 0}))
}

func TestNewWindow(t *testing.T) {
	loc := newYork(t)
	target := Resolve(time.Date(2025, 8, 15, 19, 30, 0, 0, loc), TimeOfDay{Hour: 7, Minute: 30}, loc, DefaultRelease)

	w, err := NewWindow(target, 3, DefaultFees())
	require.NoError(t, err)
	assert.Equal(t, Window{
		Target:     target.At,
		TargetText: "2025-08-23 07:30",
		StartFront: 202507230730,
		PartySize:  3,
		GreenFee:   33,
		TotalPrice: 99,
	}, w)

	for _, n := range []int{0, 5, -1} {
		_, err := NewWindow(target, n, DefaultFees())
		assert.Error(t, err, "party size %d", n)
	}
}
