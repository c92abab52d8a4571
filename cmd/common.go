package cmd

import (
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/example/tee-time-sniper/internal/config"
	"github.com/example/tee-time-sniper/internal/logger"
	"github.com/example/tee-time-sniper/internal/scheduler"
	"github.com/example/tee-time-sniper/internal/teetime"
)

func loadConfig(opts *rootOptions) (*config.Config, zerolog.Logger, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logger.New(cfg.Log.Level, cfg.Log.Pretty, nil), nil
}

// plan is everything derived from config and flags before anything is
// scheduled.
type plan struct {
	loc            *time.Location
	window         teetime.Window
	preReleaseCron string
	releaseCron    string
}

func buildPlan(cfg *config.Config, players int, teeTime string, now time.Time) (plan, error) {
	tod, err := teetime.ParseTimeOfDay(teeTime)
	if err != nil {
		return plan{}, fmt.Errorf("--time: %w", err)
	}
	loc, err := cfg.Location()
	if err != nil {
		return plan{}, err
	}
	release, err := cfg.Release()
	if err != nil {
		return plan{}, err
	}
	fees, err := cfg.Fees()
	if err != nil {
		return plan{}, err
	}

	target := teetime.Resolve(now, tod, loc, release)
	w, err := teetime.NewWindow(target, players, fees)
	if err != nil {
		return plan{}, fmt.Errorf("--players: %w", err)
	}
	return plan{
		loc:            loc,
		window:         w,
		preReleaseCron: scheduler.PreReleaseCron(release.Hour, release.Minute, cfg.PreReleaseLead),
		releaseCron:    scheduler.ReleaseCron(release.Hour, release.Minute),
	}, nil
}
