package sniper

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/tee-time-sniper/internal/foreup"
	"github.com/example/tee-time-sniper/internal/metrics"
	"github.com/example/tee-time-sniper/internal/teetime"
)

const (
	JobPreRelease = "pre-release"
	JobRelease    = "release"
)

// Client is the subset of the ForeUP API a run needs.
type Client interface {
	Login(ctx context.Context, email, password string) (string, error)
	CreatePendingReservation(ctx context.Context, jwt string, w teetime.Window) (foreup.PendingReservation, error)
	BookReservation(ctx context.Context, jwt, pendingID string, w teetime.Window) (*foreup.Booking, error)
}

// Scheduler fires each registered job at most once.
type Scheduler interface {
	Once(name, expr string, fn func(ctx context.Context)) error
	Start(ctx context.Context)
	Shutdown() error
}

type Options struct {
	Email    string
	Password string
	Window   teetime.Window

	PreReleaseCron string
	ReleaseCron    string
	// BookingDelay is waited after the release instant fires, to let the
	// tee sheet catch up before the first booking call.
	BookingDelay time.Duration
}

// Orchestrator drives one acquisition: log in shortly before the release
// instant, then at release place a hold and confirm it. Each phase runs at
// most once and any failure ends the run.
type Orchestrator struct {
	client Client
	sched  Scheduler
	opts   Options
	log    zerolog.Logger

	slot *CredentialSlot

	mu    sync.Mutex
	state State

	done     chan Result
	finished sync.Once

	// Swapped out in tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(client Client, sched Scheduler, opts Options, log zerolog.Logger) *Orchestrator {
	metrics.State.Set(float64(Idle))
	return &Orchestrator{
		client: client,
		sched:  sched,
		opts:   opts,
		log:    log.With().Str("component", "sniper").Logger(),
		slot:   NewCredentialSlot(),
		state:  Idle,
		done:   make(chan Result, 1),
		now:    time.Now,
		sleep:  sleep,
	}
}

// State is safe to call from any goroutine.
func (o *Orchestrator) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.state
}

// Run registers both phases, starts the scheduler and blocks until the run
// reaches a terminal state. The returned error is non-nil only when the run
// could not be scheduled or ctx ended first.
func (o *Orchestrator) Run(ctx context.Context) (Result, error) {
	if err := o.transition(Idle, AwaitingToken); err != nil {
		return Result{}, err
	}
	if err := o.sched.Once(JobPreRelease, o.opts.PreReleaseCron, o.PreRelease); err != nil {
		return Result{}, fmt.Errorf("sniper: schedule pre-release: %w", err)
	}
	if err := o.sched.Once(JobRelease, o.opts.ReleaseCron, o.Release); err != nil {
		return Result{}, fmt.Errorf("sniper: schedule release: %w", err)
	}

	o.sched.Start(ctx)
	defer func() {
		if err := o.sched.Shutdown(); err != nil {
			o.log.Warn().Err(err).Msg("scheduler shutdown")
		}
	}()

	o.log.Info().
		Str("tee_time", o.opts.Window.TargetText).
		Int("players", o.opts.Window.PartySize).
		Int("green_fee", o.opts.Window.GreenFee).
		Int("total", o.opts.Window.TotalPrice).
		Msg("waiting for release")

	select {
	case res := <-o.done:
		return res, nil
	case <-ctx.Done():
		return Result{}, fmt.Errorf("sniper: %w", ctx.Err())
	}
}

// PreRelease obtains the session token. A failed login ends the run since
// nothing at release time can succeed without it.
func (o *Orchestrator) PreRelease(ctx context.Context) {
	if s := o.State(); s != AwaitingToken {
		o.log.Warn().Stringer("state", s).Msg("pre-release fired out of order, ignoring")
		return
	}
	defer func() {
		if r := recover(); r != nil {
			o.fail(PhaseAuth, fmt.Errorf("%w: %v", ErrPhasePanicked, r), "")
		}
	}()

	start := o.now()
	token, err := o.client.Login(ctx, o.opts.Email, o.opts.Password)
	if err != nil {
		o.observe(PhaseAuth, start, err)
		o.fail(PhaseAuth, err, "")
		return
	}
	o.observe(PhaseAuth, start, nil)

	if err := o.storeCredential(Credential{Token: token, IssuedAt: o.now()}); err != nil {
		o.log.Warn().Err(err).Msg("token obtained after run ended")
		return
	}
	o.log.Info().Msg("session token ready")
}

// Release books the slot. It never touches the network unless a token is
// already in hand.
func (o *Orchestrator) Release(ctx context.Context) {
	if s := o.State(); s.Terminal() {
		o.log.Info().Stringer("state", s).Msg("run already finished, skipping release")
		return
	}

	phase, reservationID := PhaseState, ""
	defer func() {
		if r := recover(); r != nil {
			o.fail(phase, fmt.Errorf("%w: %v", ErrPhasePanicked, r), reservationID)
		}
	}()

	cred, ok := o.claimCredential()
	if !ok {
		o.fail(PhaseState, ErrCredentialMissing, "")
		return
	}

	phase = PhaseIntent
	if err := o.sleep(ctx, o.opts.BookingDelay); err != nil {
		o.fail(PhaseIntent, fmt.Errorf("booking delay: %w", err), "")
		return
	}

	start := o.now()
	hold, err := o.client.CreatePendingReservation(ctx, cred.Token, o.opts.Window)
	o.observe(PhaseIntent, start, err)
	if err != nil {
		o.fail(PhaseIntent, err, "")
		return
	}
	o.log.Info().Str("reservation_id", hold.ReservationID).Msg("pending reservation placed")

	phase, reservationID = PhaseFinalize, hold.ReservationID
	start = o.now()
	booking, err := o.client.BookReservation(ctx, cred.Token, hold.ReservationID, o.opts.Window)
	o.observe(PhaseFinalize, start, err)
	if err != nil {
		o.fail(PhaseFinalize, err, hold.ReservationID)
		return
	}

	o.finish(Result{State: Succeeded, Booking: booking, ReservationID: hold.ReservationID})
	o.log.Info().
		Str("teetime_id", booking.TeetimeID).
		Str("time", booking.Time).
		Int("players", booking.PlayerCount).
		Str("course", booking.CourseName).
		Msg("reservation booked")
}

func (o *Orchestrator) fail(phase Phase, err error, reservationID string) {
	ev := o.log.Error().Err(err).Str("phase", string(phase))
	if errors.Is(err, ErrCredentialMissing) {
		ev = ev.Bool("state_invariant", true)
	}
	ev.Msg("acquisition failed")
	o.finish(Result{State: Failed, Phase: phase, Err: err, ReservationID: reservationID})
}

func (o *Orchestrator) finish(res Result) {
	o.finished.Do(func() {
		o.setState(res.State)
		metrics.Runs.WithLabelValues(res.State.String()).Inc()
		o.done <- res
	})
}

func (o *Orchestrator) transition(from, to State) error {
	o.mu.Lock()
	if o.state != from {
		cur := o.state
		o.mu.Unlock()
		return fmt.Errorf("sniper: cannot move to %s from %s", to, cur)
	}
	o.state = to
	o.mu.Unlock()

	o.changed(from, to)
	return nil
}

// storeCredential fills the slot and moves to TokenReady as one step, so
// Release never sees a token without the matching state or the reverse.
func (o *Orchestrator) storeCredential(c Credential) error {
	o.mu.Lock()
	if o.state != AwaitingToken {
		cur := o.state
		o.mu.Unlock()
		return fmt.Errorf("sniper: cannot move to %s from %s", TokenReady, cur)
	}
	o.slot.Set(c)
	o.state = TokenReady
	o.mu.Unlock()

	o.changed(AwaitingToken, TokenReady)
	return nil
}

// claimCredential takes the token and moves to Booking under the same lock
// storeCredential uses.
func (o *Orchestrator) claimCredential() (Credential, bool) {
	o.mu.Lock()
	cred, ok := o.slot.Get()
	if !ok || o.state != TokenReady {
		o.mu.Unlock()
		return Credential{}, false
	}
	o.state = Booking
	o.mu.Unlock()

	o.changed(TokenReady, Booking)
	return cred, true
}

func (o *Orchestrator) changed(from, to State) {
	metrics.State.Set(float64(to))
	o.log.Debug().Stringer("from", from).Stringer("to", to).Msg("state changed")
}

func (o *Orchestrator) setState(to State) {
	o.mu.Lock()
	from := o.state
	o.state = to
	o.mu.Unlock()

	o.changed(from, to)
}

func (o *Orchestrator) observe(phase Phase, start time.Time, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.PhaseDuration.WithLabelValues(string(phase), status).Observe(o.now().Sub(start).Seconds())
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
