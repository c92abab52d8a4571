package sniper

import (
	"errors"
	"fmt"

	"github.com/example/tee-time-sniper/internal/foreup"
)

type State int

const (
	Idle State = iota
	AwaitingToken
	TokenReady
	Booking
	Succeeded
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case AwaitingToken:
		return "awaiting_token"
	case TokenReady:
		return "token_ready"
	case Booking:
		return "booking"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

func (s State) Terminal() bool { return s == Succeeded || s == Failed }

// Phase names the step a run failed in.
type Phase string

const (
	PhaseAuth     Phase = "auth"
	PhaseState    Phase = "state"
	PhaseIntent   Phase = "intent"
	PhaseFinalize Phase = "finalize"
)

// ErrCredentialMissing means the release instant arrived before a token was
// obtained.
var ErrCredentialMissing = errors.New("sniper: no credential at release instant")

// ErrPhasePanicked wraps a panic raised inside a phase.
var ErrPhasePanicked = errors.New("sniper: phase panicked")

// Result is the terminal outcome of a run.
type Result struct {
	State   State
	Booking *foreup.Booking
	// ReservationID is the pending hold, if one was placed.
	ReservationID string
	// Phase and Err are set when State is Failed.
	Phase Phase
	Err   error
}

func (r Result) OK() bool { return r.State == Succeeded }

// ExitCode maps the result to a process exit status.
func (r Result) ExitCode() int {
	if r.OK() {
		return 0
	}
	return 1
}
