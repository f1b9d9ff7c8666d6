// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"

	"github.com/danielhkuo/pollboard/cliparse"
	"github.com/danielhkuo/pollboard/db"
)

// queryer is satisfied by both *goqu.Database and *goqu.TxDatabase, so
// lookups can run inside or outside a transaction.
type queryer interface {
	From(from ...interface{}) *goqu.SelectDataset
	Insert(table interface{}) *goqu.InsertDataset
	Update(table interface{}) *goqu.UpdateDataset
	Delete(table interface{}) *goqu.DeleteDataset
}

// Services bundles the entity services over one store.
type Services struct {
	Users   *UserService
	Polls   *PollService
	Options *OptionService
	Votes   *VoteService
	Threads *ThreadService

	now func() time.Time
}

// New wires every service to store.
func New(store *db.DB, cfg cliparse.Config) *Services {
	now := func() time.Time { return time.Now().UTC() }

	options := &OptionService{store: store}
	votes := &VoteService{store: store, options: options, now: now}

	return &Services{
		Users:   &UserService{store: store, now: now},
		Polls:   &PollService{store: store, options: options, shareSalt: cfg.ShareTokenSalt, now: now},
		Options: options,
		Votes:   votes,
		Threads: &ThreadService{store: store, now: now},
		now:     now,
	}
}

// Now reads the clock shared by the services.
func (s *Services) Now() time.Time {
	return s.now()
}

// SetClock replaces the time source of every service.
func (s *Services) SetClock(now func() time.Time) {
	s.Users.now = now
	s.Polls.now = now
	s.Votes.now = now
	s.Threads.now = now
	s.now = now
}

func execOne(ctx context.Context, ex interface {
	ExecContext(ctx context.Context) (sql.Result, error)
}) (int64, error) {
	res, err := ex.ExecContext(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time.UTC()
	return &v
}

func stringPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
