package foreup

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/example/tee-time-sniper/internal/httpretry"
	"github.com/example/tee-time-sniper/internal/teetime"
)

// PendingReservation is the provisional hold returned by the intent call.
type PendingReservation struct {
	Success       bool   `json:"success" validate:"eq=true"`
	ReservationID string `json:"reservation_id" validate:"required"`
}

// Booking is the confirmed reservation.
type Booking struct {
	TeetimeID     string  `json:"teetime_id" validate:"required"`
	Time          string  `json:"time" validate:"required"`
	Holes         int     `json:"holes"`
	PlayerCount   int     `json:"player_count"`
	ScheduleID    int     `json:"schedule_id"`
	TeesheetTitle string  `json:"teesheet_title"`
	CourseName    string  `json:"course_name"`
	CourseID      int     `json:"course_id"`
	Details       *string `json:"details" validate:"required"`
}

// CreatePendingReservation places a hold on the slot described by w.
func (c *Client) CreatePendingReservation(ctx context.Context, jwt string, w teetime.Window) (PendingReservation, error) {
	co := c.cfg.Course
	form := url.Values{
		"holes":                      {itoa(co.TotalHoles)},
		"carts":                      {strconv.FormatBool(co.AllowCarts)},
		"schedule_id":                {itoa(co.ScheduleID)},
		"teesheet_side_id":           {itoa(co.TeesheetSideFrontID)},
		"course_id":                  {itoa(co.ID)},
		"booking_class_id":           {itoa(co.BookingClassID)},
		"duration":                   {itoa(co.Duration)},
		"foreup_discount":            {itoa(co.ForeUpDiscount)},
		"foreup_trade_discount_rate": {itoa(co.ForeUpTradeDiscountRate)},
		"trade_min_players":          {itoa(co.TradeMinPlayers)},
		"cart_fee":                   {itoa(co.CartFee)},
		"cart_fee_tax":               {itoa(co.CartFeeTax)},
		"green_fee_tax":              {itoa(co.GreenFeeTax)},
		"time":                       {w.TargetText},
		"players":                    {itoa(w.PartySize)},
		"green_fee":                  {itoa(w.GreenFee)},
	}

	var out PendingReservation
	req := httpretry.FormRequest(c.url(pendingPath), c.authHeader(jwt), form)
	if err := c.rc.DoJSON(ctx, req, &out); err != nil {
		return PendingReservation{}, fmt.Errorf("foreup pending reservation: %w", err)
	}
	return out, nil
}

// BookReservation turns a pending reservation into a confirmed booking.
func (c *Client) BookReservation(ctx context.Context, jwt, pendingID string, w teetime.Window) (*Booking, error) {
	req, err := httpretry.JSONRequest(c.url(reservationsPath), c.authHeader(jwt), newReservationBody(c.cfg.Course, pendingID, w))
	if err != nil {
		return nil, fmt.Errorf("foreup reservation: encode body: %w", err)
	}

	var out Booking
	if err := c.rc.DoJSON(ctx, req, &out); err != nil {
		return nil, fmt.Errorf("foreup reservation: %w", err)
	}
	if issues := c.checkBooking(out); len(issues) > 0 {
		err := &httpretry.SchemaError{Path: httpretry.SafePath(req.URL), Issues: issues}
		return nil, fmt.Errorf("foreup reservation: %w", err)
	}
	return &out, nil
}

// checkBooking verifies the confirmation is for the configured course.
func (c *Client) checkBooking(b Booking) []string {
	co := c.cfg.Course
	var issues []string
	mismatch := func(field string, got, want any) {
		issues = append(issues, fmt.Sprintf("%s: got %v, want %v", field, got, want))
	}
	if b.Holes != co.TotalHoles {
		mismatch("holes", b.Holes, co.TotalHoles)
	}
	if b.PlayerCount < co.MinPlayers || b.PlayerCount > co.MaxPlayers {
		issues = append(issues, fmt.Sprintf("player_count: %d not in %d-%d", b.PlayerCount, co.MinPlayers, co.MaxPlayers))
	}
	if b.ScheduleID != co.ScheduleID {
		mismatch("schedule_id", b.ScheduleID, co.ScheduleID)
	}
	if b.TeesheetTitle != co.ScheduleName {
		mismatch("teesheet_title", strconv.Quote(b.TeesheetTitle), strconv.Quote(co.ScheduleName))
	}
	if b.CourseName != co.Name {
		mismatch("course_name", strconv.Quote(b.CourseName), strconv.Quote(co.Name))
	}
	if b.CourseID != co.ID {
		mismatch("course_id", b.CourseID, co.ID)
	}
	return issues
}
