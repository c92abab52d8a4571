package cmd

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"
)

func newDetailsCmd(opts *rootOptions) *cobra.Command {
	var (
		players int
		teeTime string
	)

	c := &cobra.Command{
		Use:   "details",
		Short: "Show which tee time the next release would target and what it costs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			p, err := buildPlan(cfg, players, teeTime, time.Now())
			if err != nil {
				return err
			}
			printWindow(cmd.OutOrStdout(), p)
			return nil
		},
	}

	c.Flags().IntVar(&players, "players", 0, "number of players (1-4)")
	c.Flags().StringVar(&teeTime, "time", "", "tee time of day, HHMM or HH:MM")
	_ = c.MarkFlagRequired("players")
	_ = c.MarkFlagRequired("time")
	return c
}

func printWindow(out io.Writer, p plan) {
	w := p.window
	fmt.Fprintf(out, "tee_time=%q weekday=%s tz=%s\n", w.TargetText, w.Target.Weekday(), p.loc)
	fmt.Fprintf(out, "players=%d green_fee=%d total_usd=%d start_front=%d\n", w.PartySize, w.GreenFee, w.TotalPrice, w.StartFront)
	fmt.Fprintf(out, "pre_release_cron=%q release_cron=%q\n", p.preReleaseCron, p.releaseCron)
}
