package foreup

const (
	DefaultBaseURL = "https://foreupsoftware.com/index.php/api"
	DefaultAPIKey  = "no_limits"
)

// Course is the tee sheet configuration ForeUP echoes back in every booking
// call. Zero-valued fees and discounts are still sent explicitly.
type Course struct {
	ID                  int
	Name                string
	ScheduleName        string
	ScheduleID          int
	BookingClassID      int
	TeesheetSideFrontID int
	TeesheetSideBackID  int

	GreenFeeTax             int
	AllowCarts              bool
	CartFee                 int
	CartFeeTax              int
	Duration                int
	ForeUpDiscount          int
	ForeUpTradeDiscountRate int
	TradeMinPlayers         int
	TotalHoles              int
	MinPlayers              int
	MaxPlayers              int
}

func SunkenMeadow() Course {
	return Course{
		ID:                  19766,
		Name:                "Sunken Meadow State Park",
		ScheduleName:        "Sunken Meadow 18",
		ScheduleID:          2437,
		BookingClassID:      51086,
		TeesheetSideFrontID: 1338,
		TeesheetSideBackID:  1339,
		Duration:            1,
		TotalHoles:          18,
		MinPlayers:          1,
		MaxPlayers:          4,
	}
}

// GroupSizes lists the allowed party sizes as strings, e.g. ["1" "2" "3" "4"].
func (c Course) GroupSizes() []string {
	out := make([]string, 0, c.MaxPlayers-c.MinPlayers+1)
	for n := c.MinPlayers; n <= c.MaxPlayers; n++ {
		out = append(out, itoa(n))
	}
	return out
}
