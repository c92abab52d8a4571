package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/rs/zerolog"
)

// ErrUnknownJob is returned by NextRun for a name that was never registered.
var ErrUnknownJob = errors.New("scheduler: unknown job")

// Scheduler fires named one-shot cron jobs in a fixed location, independent
// of the host's local time zone.
type Scheduler struct {
	cron gocron.Scheduler
	loc  *time.Location
	log  zerolog.Logger

	mu     sync.Mutex
	ctx    context.Context
	cancel context.CancelFunc
	jobs   map[string]gocron.Job
	wg     sync.WaitGroup
}

func New(loc *time.Location, log zerolog.Logger) (*Scheduler, error) {
	if loc == nil {
		return nil, errors.New("scheduler: nil location")
	}
	cron, err := gocron.NewScheduler(gocron.WithLocation(loc))
	if err != nil {
		return nil, fmt.Errorf("scheduler: create: %w", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Scheduler{
		cron:   cron,
		loc:    loc,
		log:    log.With().Str("component", "scheduler").Logger(),
		ctx:    ctx,
		cancel: cancel,
		jobs:   map[string]gocron.Job{},
	}, nil
}

// Once registers fn to run at the next instant matching expr and never
// again. expr is a standard 5-field cron expression or a 6-field one with a
// leading seconds field.
func (s *Scheduler) Once(name, expr string, fn func(ctx context.Context)) error {
	fields := len(strings.Fields(expr))
	if fields != 5 && fields != 6 {
		return fmt.Errorf("scheduler: job %s: cron expression %q has %d fields, want 5 or 6", name, expr, fields)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.jobs[name]; ok {
		return fmt.Errorf("scheduler: job %s already registered", name)
	}

	j, err := s.cron.NewJob(
		gocron.CronJob(expr, fields == 6),
		gocron.NewTask(s.wrap(name, fn)),
		gocron.WithName(name),
		gocron.WithLimitedRuns(1),
	)
	if err != nil {
		return fmt.Errorf("scheduler: job %s: %w", name, err)
	}
	s.jobs[name] = j
	s.log.Debug().Str("job", name).Str("cron", expr).Str("tz", s.loc.String()).Msg("job registered")
	return nil
}

// Start begins firing jobs. Job contexts derive from ctx and are also
// cancelled by Shutdown.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	s.cancel()
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	s.cron.Start()
	s.log.Info().Msg("scheduler started")
}

// NextRun reports when the named job fires next. It is only meaningful after
// Start.
func (s *Scheduler) NextRun(name string) (time.Time, error) {
	s.mu.Lock()
	j, ok := s.jobs[name]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, fmt.Errorf("%w: %s", ErrUnknownJob, name)
	}
	t, err := j.NextRun()
	if err != nil {
		return time.Time{}, fmt.Errorf("scheduler: job %s: %w", name, err)
	}
	return t.In(s.loc), nil
}

// Shutdown cancels running jobs and waits for them to return.
func (s *Scheduler) Shutdown() error {
	s.mu.Lock()
	s.cancel()
	s.mu.Unlock()

	err := s.cron.Shutdown()
	s.wg.Wait()
	if err != nil {
		return fmt.Errorf("scheduler: shutdown: %w", err)
	}
	s.log.Info().Msg("scheduler stopped")
	return nil
}

func (s *Scheduler) wrap(name string, fn func(ctx context.Context)) func() {
	return func() {
		s.mu.Lock()
		ctx := s.ctx
		if ctx.Err() != nil {
			s.mu.Unlock()
			s.log.Warn().Str("job", name).Msg("job skipped, scheduler is shutting down")
			return
		}
		s.wg.Add(1)
		s.mu.Unlock()
		defer s.wg.Done()

		defer func() {
			if r := recover(); r != nil {
				s.log.Error().Str("job", name).Interface("panic", r).Msg("job panicked")
			}
		}()

		start := time.Now()
		s.log.Info().Str("job", name).Msg("job fired")
		fn(ctx)
		s.log.Debug().Str("job", name).Dur("took", time.Since(start)).Msg("job finished")
	}
}

// ReleaseCron returns a seconds-precision expression firing daily at
// hour:minute.
func ReleaseCron(hour, minute int) string {
	return fmt.Sprintf("0 %d %d * * *", minute, hour)
}

// PreReleaseCron returns an expression firing lead before hour:minute,
// wrapping around midnight. Lead is truncated to whole seconds.
func PreReleaseCron(hour, minute int, lead time.Duration) string {
	const day = 24 * 60 * 60
	secs := (hour*3600 + minute*60 - int(lead/time.Second)) % day
	if secs < 0 {
		secs += day
	}
	return fmt.Sprintf("%d %d %d * * *", secs%60, secs/60%60, secs/3600)
}
