// Package journal keeps an audit trail of finished runs. It is write-once
// history for the history command; nothing is ever resumed from it.
package journal

import (
	"context"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/example/tee-time-sniper/internal/db"
	"github.com/example/tee-time-sniper/internal/sniper"
	"github.com/example/tee-time-sniper/internal/teetime"
)

const table = "teesniper_runs"

var columns = []string{
	"id", "party_size", "tee_time", "state", "phase", "reservation_id",
	"teetime_id", "total_price", "error", "started_at", "finished_at",
}

type Run struct {
	ID            uuid.UUID
	PartySize     int
	TeeTime       string
	State         string
	Phase         string
	ReservationID string
	TeetimeID     string
	TotalPrice    int
	Error         string
	StartedAt     time.Time
	FinishedAt    time.Time
}

// NewRun summarizes a finished (or abandoned) run. runErr covers failures
// outside the orchestrator, such as cancellation.
func NewRun(w teetime.Window, res sniper.Result, runErr error, started, finished time.Time) Run {
	r := Run{
		ID:            uuid.New(),
		PartySize:     w.PartySize,
		TeeTime:       w.TargetText,
		State:         res.State.String(),
		Phase:         string(res.Phase),
		ReservationID: res.ReservationID,
		TotalPrice:    w.TotalPrice,
		StartedAt:     started,
		FinishedAt:    finished,
	}
	if res.Booking != nil {
		r.TeetimeID = res.Booking.TeetimeID
	}
	if runErr != nil {
		r.State = sniper.Failed.String()
	}
	if err := errors.Join(res.Err, runErr); err != nil {
		r.Error = err.Error()
	}
	return r
}

type Store struct {
	db db.Querier
	sb sq.StatementBuilderType
}

func NewStore(q db.Querier) *Store {
	return &Store{db: q, sb: sq.StatementBuilder.PlaceholderFormat(sq.Dollar)}
}

func (s *Store) Record(ctx context.Context, r Run) error {
	sql, args, err := s.sb.Insert(table).
		Columns(columns...).
		Values(r.ID.String(), r.PartySize, r.TeeTime, r.State, r.Phase, r.ReservationID,
			r.TeetimeID, r.TotalPrice, r.Error, r.StartedAt, r.FinishedAt).
		ToSql()
	if err != nil {
		return fmt.Errorf("journal: build insert: %w", err)
	}
	if err := s.db.Exec(ctx, sql, args...); err != nil {
		return fmt.Errorf("journal: record run: %w", err)
	}
	return nil
}

// Recent returns up to limit runs, newest first. A state filter of "" matches
// every run.
func (s *Store) Recent(ctx context.Context, limit int, state string) ([]Run, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("journal: limit must be positive, got %d", limit)
	}
	q := s.sb.Select(columns...).From(table).OrderBy("started_at DESC").Limit(uint64(limit))
	if state != "" {
		q = q.Where(sq.Eq{"state": state})
	}
	sql, args, err := q.ToSql()
	if err != nil {
		return nil, fmt.Errorf("journal: build select: %w", err)
	}

	rows, err := s.db.Query(ctx, sql, args...)
	if err != nil {
		return nil, db.WrapNotFound(err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.ID, &r.PartySize, &r.TeeTime, &r.State, &r.Phase, &r.ReservationID,
			&r.TeetimeID, &r.TotalPrice, &r.Error, &r.StartedAt, &r.FinishedAt); err != nil {
			return nil, fmt.Errorf("journal: scan: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// Get loads one run by id.
func (s *Store) Get(ctx context.Context, id uuid.UUID) (Run, error) {
	sql, args, err := s.sb.Select(columns...).From(table).Where(sq.Eq{"id": id.String()}).ToSql()
	if err != nil {
		return Run{}, fmt.Errorf("journal: build select: %w", err)
	}
	var r Run
	err = s.db.QueryRow(ctx, sql, args...).Scan(&r.ID, &r.PartySize, &r.TeeTime, &r.State, &r.Phase,
		&r.ReservationID, &r.TeetimeID, &r.TotalPrice, &r.Error, &r.StartedAt, &r.FinishedAt)
	if err != nil {
		return Run{}, db.WrapNotFound(err)
	}
	return r, nil
}
