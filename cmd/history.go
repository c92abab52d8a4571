package cmd

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/tee-time-sniper/internal/db"
	"github.com/example/tee-time-sniper/internal/journal"
	"github.com/example/tee-time-sniper/internal/migrate"
)

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	var (
		limit int
		state string
		id    string
	)

	c := &cobra.Command{
		Use:   "history",
		Short: "List past runs from the journal (requires DATABASE_URL)",
		RunE: func(cmd *cobra.Command, args []string) error {
			var runID uuid.UUID
			if id != "" {
				parsed, err := uuid.Parse(id)
				if err != nil {
					return fmt.Errorf("--id: %w", err)
				}
				runID = parsed
			}

			cfg, _, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.DatabaseURL == "" {
				return errors.New("history: DATABASE_URL is not set")
			}

			ctx := cmd.Context()
			d, err := db.Open(ctx, cfg.DatabaseURL)
			if err != nil {
				return err
			}
			defer d.Close()

			if err := migrate.Up(ctx, d); err != nil {
				return err
			}

			store := journal.NewStore(d)
			out := cmd.OutOrStdout()
			if id != "" {
				r, err := store.Get(ctx, runID)
				if db.IsNotFound(err) {
					return fmt.Errorf("history: no run with id %s", runID)
				}
				if err != nil {
					return err
				}
				printRun(out, r)
				return nil
			}

			runs, err := store.Recent(ctx, limit, state)
			if err != nil {
				return err
			}
			for _, r := range runs {
				printRun(out, r)
			}
			return nil
		},
	}

	c.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to show")
	c.Flags().StringVar(&state, "state", "", "only show runs in this state (succeeded or failed)")
	c.Flags().StringVar(&id, "id", "", "show a single run by id")
	return c
}

func printRun(out io.Writer, r journal.Run) {
	fmt.Fprintf(out, "id=%s started=%s state=%s tee_time=%q players=%d reservation_id=%q teetime_id=%q",
		r.ID, r.StartedAt.Format(time.RFC3339), r.State, r.TeeTime, r.PartySize, r.ReservationID, r.TeetimeID)
	if r.Error != "" {
		fmt.Fprintf(out, " phase=%s error=%q", r.Phase, r.Error)
	}
	fmt.Fprintln(out)
}
