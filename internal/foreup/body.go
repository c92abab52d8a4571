package foreup

import "github.com/example/tee-time-sniper/internal/teetime"

type cartItem struct {
	Description string `json:"description"`
	Price       int    `json:"price"`
	Subtotal    int    `json:"subtotal"`
	Type        string `json:"type"`
	Quantity    int    `json:"quantity"`
}

// reservationBody mirrors the payload the ForeUP web client posts when a
// golfer confirms a tee time. Most fields are fixed for a walking, 18 hole,
// pay-at-course booking; the server rejects the request if any are missing.
type reservationBody struct {
	AirQuotesCart                  []cartItem `json:"airQuotesCart"`
	AllowMobileCheckin             int        `json:"allow_mobile_checkin"`
	AllowedGroupSizes              []string   `json:"allowed_group_sizes"`
	AvailableDuration              *int       `json:"available_duration"`
	AvailableSpots                 int        `json:"available_spots"`
	AvailableSpots18               int        `json:"available_spots_18"`
	AvailableSpots9                int        `json:"available_spots_9"`
	AvailableHoles                 string     `json:"availableHoles"`
	BlockDueToExistingReservation  bool       `json:"blockReservationDueToExistingReservation"`
	BookingClassID                 string     `json:"booking_class_id"`
	BookingFeePerPerson            bool       `json:"booking_fee_per_person"`
	BookingFeePrice                bool       `json:"booking_fee_price"`
	BookingFeeRequired             bool       `json:"booking_fee_required"`
	CaptchaID                      string     `json:"captchaid"`
	CartFee                        int        `json:"cart_fee"`
	CartFee18                      int        `json:"cart_fee_18"`
	CartFee9                       int        `json:"cart_fee_9"`
	CartFeeTax                     int        `json:"cart_fee_tax"`
	CartFeeTax18                   int        `json:"cart_fee_tax_18"`
	CartFeeTax9                    int        `json:"cart_fee_tax_9"`
	CartFeeTaxRate                 bool       `json:"cart_fee_tax_rate"`
	Carts                          bool       `json:"carts"`
	CourseID                       int        `json:"course_id"`
	CourseName                     string     `json:"course_name"`
	CustomerMessage                string     `json:"customer_message"`
	Details                        string     `json:"details"`
	Discount                       int        `json:"discount"`
	DiscountPercent                int        `json:"discount_percent"`
	Duration                       int        `json:"duration"`
	EstimatedTax                   int        `json:"estimatedTax"`
	ForeUpDiscount                 int        `json:"foreup_discount"`
	ForeUpTradeDiscountInformation []any      `json:"foreup_trade_discount_information"`
	ForeUpTradeDiscountRate        int        `json:"foreup_trade_discount_rate"`
	GreenFee                       int        `json:"green_fee"`
	GreenFee18                     int        `json:"green_fee_18"`
	GreenFee9                      int        `json:"green_fee_9"`
	GreenFeeTax                    int        `json:"green_fee_tax"`
	GreenFeeTax18                  int        `json:"green_fee_tax_18"`
	GreenFeeTax9                   int        `json:"green_fee_tax_9"`
	GreenFeeTaxRate                bool       `json:"green_fee_tax_rate"`
	GroupID                        bool       `json:"group_id"`
	GuestCartFee                   int        `json:"guest_cart_fee"`
	GuestCartFee18                 int        `json:"guest_cart_fee_18"`
	GuestCartFee9                  int        `json:"guest_cart_fee_9"`
	GuestCartFeeTax                int        `json:"guest_cart_fee_tax"`
	GuestCartFeeTax18              int        `json:"guest_cart_fee_tax_18"`
	GuestCartFeeTax9               int        `json:"guest_cart_fee_tax_9"`
	GuestCartFeeTaxRate            bool       `json:"guest_cart_fee_tax_rate"`
	GuestGreenFee                  int        `json:"guest_green_fee"`
	GuestGreenFee18                int        `json:"guest_green_fee_18"`
	GuestGreenFee9                 int        `json:"guest_green_fee_9"`
	GuestGreenFeeTax               int        `json:"guest_green_fee_tax"`
	GuestGreenFeeTax18             int        `json:"guest_green_fee_tax_18"`
	GuestGreenFeeTax9              int        `json:"guest_green_fee_tax_9"`
	GuestGreenFeeTaxRate           bool       `json:"guest_green_fee_tax_rate"`
	HasSpecial                     bool       `json:"has_special"`
	Holes                          string     `json:"holes"`
	IncrementAmount                *int       `json:"increment_amount"`
	MaximumPlayersPerBooking       string     `json:"maximum_players_per_booking"`
	MinimumPlayers                 string     `json:"minimum_players"`
	Notes                          []any      `json:"notes"`
	PaidPlayerCount                int        `json:"paid_player_count"`
	PayCarts                       int        `json:"pay_carts"`
	PayOnline                      string     `json:"pay_online"`
	PayPlayers                     string     `json:"pay_players"`
	PaySubtotal                    int        `json:"pay_subtotal"`
	PayTotal                       int        `json:"pay_total"`
	PendingReservationID           string     `json:"pending_reservation_id"`
	PlayerList                     bool       `json:"player_list"`
	Players                        string     `json:"players"`
	PreTaxSubtotal                 int        `json:"preTaxSubtotal"`
	PromoCode                      string     `json:"promo_code"`
	PromoDiscount                  int        `json:"promo_discount"`
	Purchased                      bool       `json:"purchased"`
	RateType                       string     `json:"rate_type"`
	RequireCreditCard              bool       `json:"require_credit_card"`
	ReroundTeeshotSideID           int        `json:"reround_teeshot_side_id"`
	ReroundTeeshotSideName         string     `json:"reround_teeshot_side_name"`
	ScheduleID                     int        `json:"schedule_id"`
	ScheduleName                   string     `json:"schedule_name"`
	SpecialDiscountPercentage      int        `json:"special_discount_percentage"`
	SpecialID                      bool       `json:"special_id"`
	SpecialWasPrice                *int       `json:"special_was_price"`
	StartFront                     int64      `json:"start_front"`
	Subtotal                       int        `json:"subtotal"`
	TeesheetHoles                  int        `json:"teesheet_holes"`
	TeesheetID                     int        `json:"teesheet_id"`
	TeesheetSideID                 int        `json:"teesheet_side_id"`
	TeesheetSideName               string     `json:"teesheet_side_name"`
	TeesheetSideOrder              int        `json:"teesheet_side_order"`
	Time                           string     `json:"time"`
	Total                          int        `json:"total"`
	TradeAvailablePlayers          int        `json:"trade_available_players"`
	TradeCartRequirement           string     `json:"trade_cart_requirement"`
	TradeHoleRequirement           string     `json:"trade_hole_requirement"`
	TradeMinPlayers                int        `json:"trade_min_players"`
}

func newReservationBody(co Course, pendingID string, w teetime.Window) reservationBody {
	players := itoa(w.PartySize)
	return reservationBody{
		AirQuotesCart: []cartItem{{
			Description: "Green Fee",
			Price:       w.GreenFee,
			Subtotal:    w.TotalPrice,
			Type:        "item",
			Quantity:    w.PartySize,
		}},
		AllowedGroupSizes:              co.GroupSizes(),
		AvailableSpots:                 w.PartySize,
		AvailableSpots18:               w.PartySize,
		AvailableHoles:                 itoa(co.TotalHoles),
		BookingClassID:                 itoa(co.BookingClassID),
		CartFee:                        co.CartFee,
		CartFee18:                      co.CartFee,
		CartFee9:                       co.CartFee,
		CartFeeTax:                     co.CartFeeTax,
		CartFeeTax18:                   co.CartFeeTax,
		CartFeeTax9:                    co.CartFeeTax,
		Carts:                          co.AllowCarts,
		CourseID:                       co.ID,
		CourseName:                     co.Name,
		Duration:                       co.Duration,
		ForeUpDiscount:                 co.ForeUpDiscount,
		ForeUpTradeDiscountInformation: []any{},
		ForeUpTradeDiscountRate:        co.ForeUpTradeDiscountRate,
		GreenFee:                       w.GreenFee,
		GreenFee18:                     w.GreenFee,
		GreenFeeTax:                    co.GreenFeeTax,
		GreenFeeTax18:                  co.GreenFeeTax,
		GreenFeeTax9:                   co.GreenFeeTax,
		GuestCartFee:                   co.CartFee,
		GuestCartFee18:                 co.CartFee,
		GuestCartFee9:                  co.CartFee,
		GuestCartFeeTax:                co.CartFeeTax,
		GuestCartFeeTax18:              co.CartFeeTax,
		GuestCartFeeTax9:               co.CartFeeTax,
		GuestGreenFee:                  w.GreenFee,
		GuestGreenFee18:                w.GreenFee,
		GuestGreenFeeTax:               co.GreenFeeTax,
		GuestGreenFeeTax18:             co.GreenFeeTax,
		GuestGreenFeeTax9:              co.GreenFeeTax,
		Holes:                          itoa(co.TotalHoles),
		MaximumPlayersPerBooking:       itoa(co.MaxPlayers),
		MinimumPlayers:                 itoa(co.MinPlayers),
		Notes:                          []any{},
		PayOnline:                      "no",
		PayPlayers:                     players,
		PaySubtotal:                    w.TotalPrice,
		PayTotal:                       w.TotalPrice,
		PendingReservationID:           pendingID,
		Players:                        players,
		PreTaxSubtotal:                 w.TotalPrice,
		RateType:                       "walking",
		ReroundTeeshotSideID:           co.TeesheetSideBackID,
		ReroundTeeshotSideName:         "Back",
		ScheduleID:                     co.ScheduleID,
		ScheduleName:                   co.ScheduleName,
		StartFront:                     w.StartFront,
		Subtotal:                       w.TotalPrice,
		TeesheetHoles:                  co.TotalHoles,
		TeesheetID:                     co.ScheduleID,
		TeesheetSideID:                 co.TeesheetSideFrontID,
		TeesheetSideName:               "Front",
		TeesheetSideOrder:              1,
		Time:                           w.TargetText,
		Total:                          w.TotalPrice,
		TradeCartRequirement:           "both",
		TradeHoleRequirement:           "all",
		TradeMinPlayers:                co.TradeMinPlayers,
	}
}
