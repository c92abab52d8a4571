package cmd

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/tee-time-sniper/internal/config"
	"github.com/example/tee-time-sniper/internal/db"
	"github.com/example/tee-time-sniper/internal/foreup"
	"github.com/example/tee-time-sniper/internal/health"
	"github.com/example/tee-time-sniper/internal/httpretry"
	"github.com/example/tee-time-sniper/internal/journal"
	"github.com/example/tee-time-sniper/internal/migrate"
	"github.com/example/tee-time-sniper/internal/scheduler"
	"github.com/example/tee-time-sniper/internal/sniper"
)

func newSnipeCmd(opts *rootOptions) *cobra.Command {
	var (
		players int
		teeTime string
		dryRun  bool
	)

	c := &cobra.Command{
		Use:   "snipe",
		Short: "Wait for tonight's release and book the tee time a week out",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if !dryRun {
				if err := cfg.RequireCredentials(); err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			p, err := buildPlan(cfg, players, teeTime, time.Now())
			if err != nil {
				return err
			}
			log.Info().
				Str("account", cfg.Email).
				Str("tee_time", p.window.TargetText).
				Int("players", p.window.PartySize).
				Int("green_fee", p.window.GreenFee).
				Int("total_usd", p.window.TotalPrice).
				Str("pre_release_cron", p.preReleaseCron).
				Str("release_cron", p.releaseCron).
				Str("tz", p.loc.String()).
				Msg("starting tee time sniper")

			sched, err := scheduler.New(p.loc, log)
			if err != nil {
				return err
			}
			if dryRun {
				return reportNextRuns(ctx, cmd, sched, p)
			}

			store, closeStore := openJournal(ctx, cfg, log)
			defer closeStore()

			rc := httpretry.New(&http.Client{}, cfg.Policy(), log)
			client := foreup.New(rc, cfg.ForeUP(), log)
			orch := sniper.New(client, sched, sniper.Options{
				Email:          cfg.Email,
				Password:       cfg.Password,
				Window:         p.window,
				PreReleaseCron: p.preReleaseCron,
				ReleaseCron:    p.releaseCron,
				BookingDelay:   cfg.BookingDelay,
			}, log)

			started := time.Now()
			var (
				res    sniper.Result
				runErr error
			)
			g, gctx := errgroup.WithContext(ctx)
			healthCtx, stopHealth := context.WithCancel(gctx)
			defer stopHealth()

			if cfg.MetricsAddr != "" {
				srv := health.NewServer(cfg.MetricsAddr, statusFunc(orch, sched, p), log)
				g.Go(func() error { return srv.Start(healthCtx) })
			}
			g.Go(func() error {
				defer stopHealth()
				res, runErr = orch.Run(gctx)
				return nil
			})
			if err := g.Wait(); err != nil {
				return fmt.Errorf("health server: %w", err)
			}

			if store != nil {
				recordCtx, cancelRecord := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancelRecord()
				if err := store.Record(recordCtx, journal.NewRun(p.window, res, runErr, started, time.Now())); err != nil {
					log.Warn().Err(err).Msg("could not record run")
				}
			}

			if runErr != nil {
				return runErr
			}
			if !res.OK() {
				return fmt.Errorf("booking failed during %s: %w", res.Phase, res.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "booked teetime_id=%s time=%q players=%d course=%q\n",
				res.Booking.TeetimeID, res.Booking.Time, res.Booking.PlayerCount, res.Booking.CourseName)
			return nil
		},
	}

	c.Flags().IntVar(&players, "players", 0, "number of players (1-4)")
	c.Flags().StringVar(&teeTime, "time", "", "tee time of day, HHMM or HH:MM")
	c.Flags().BoolVar(&dryRun, "dry-run", false, "print the plan and next trigger times, then exit")

	_ = c.MarkFlagRequired("players")
	_ = c.MarkFlagRequired("time")
	return c
}

// reportNextRuns registers no-op jobs only to ask the scheduler when they
// would fire.
func reportNextRuns(ctx context.Context, cmd *cobra.Command, sched *scheduler.Scheduler, p plan) error {
	noop := func(context.Context) {}
	if err := sched.Once(sniper.JobPreRelease, p.preReleaseCron, noop); err != nil {
		return err
	}
	if err := sched.Once(sniper.JobRelease, p.releaseCron, noop); err != nil {
		return err
	}
	sched.Start(ctx)
	defer func() { _ = sched.Shutdown() }()

	out := cmd.OutOrStdout()
	printWindow(out, p)
	for _, name := range []string{sniper.JobPreRelease, sniper.JobRelease} {
		next, err := sched.NextRun(name)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s_at=%s\n", name, next.Format(time.RFC3339))
	}
	return nil
}

func statusFunc(orch *sniper.Orchestrator, sched *scheduler.Scheduler, p plan) func() health.Status {
	return func() health.Status {
		st := orch.State()
		s := health.Status{State: st.String(), Failed: st == sniper.Failed, TeeTime: p.window.TargetText}
		if st.Terminal() {
			return s
		}
		s.NextRuns = map[string]time.Time{}
		for _, name := range []string{sniper.JobPreRelease, sniper.JobRelease} {
			if next, err := sched.NextRun(name); err == nil && !next.IsZero() {
				s.NextRuns[name] = next
			}
		}
		return s
	}
}

// openJournal connects to the run journal when DATABASE_URL is set. The
// journal is optional, so connection problems are logged and skipped.
func openJournal(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*journal.Store, func()) {
	if cfg.DatabaseURL == "" {
		return nil, func() {}
	}
	d, err := db.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Warn().Err(err).Msg("run journal disabled")
		return nil, func() {}
	}
	if err := d.Ping(ctx); err != nil {
		log.Warn().Err(err).Msg("run journal disabled")
		d.Close()
		return nil, func() {}
	}
	if err := migrate.Up(ctx, d); err != nil {
		log.Warn().Err(err).Msg("run journal disabled")
		d.Close()
		return nil, func() {}
	}
	return journal.NewStore(d), d.Close
}
