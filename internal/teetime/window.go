package teetime

import (
	"fmt"
	"time"
)

const (
	MinPlayers = 1
	MaxPlayers = 4
)

// Window is everything the booking calls need to know about the slot. It is
// built once before scheduling and never modified.
type Window struct {
	Target     time.Time
	TargetText string
	StartFront int64
	PartySize  int
	GreenFee   int
	TotalPrice int
}

func NewWindow(t Target, partySize int, fees FeeSchedule) (Window, error) {
	if partySize < MinPlayers || partySize > MaxPlayers {
		return Window{}, fmt.Errorf("party size %d out of range %d-%d", partySize, MinPlayers, MaxPlayers)
	}
	fee := fees.GreenFee(t.At, t.TimeOfDay)
	return Window{
		Target:     t.At,
		TargetText: t.Text,
		StartFront: t.StartFront,
		PartySize:  partySize,
		GreenFee:   fee,
		TotalPrice: fee * partySize,
	}, nil
}
