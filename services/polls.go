// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/sirupsen/logrus"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/auth"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/schema"
)

// Layouts accepted for expires_at, tried in order. Values without a zone
// are read as UTC.
var expiryLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02",
}

const errOnlyCreator = "only the poll creator can do that"

type PollService struct {
	store     *db.DB
	options   *OptionService
	shareSalt string
	now       func() time.Time
}

// ShareToken returns the share token of a poll. Tokens are derived from
// the poll ID, so this never touches the store.
func (s *PollService) ShareToken(pollID string) string {
	return auth.GenerateShareToken(pollID, s.shareSalt)
}

// Create validates req and writes the poll and its options in one
// transaction.
func (s *PollService) Create(ctx context.Context, creatorID string, req models.CreatePollRequest) (models.Poll, []models.PollOption, error) {
	if creatorID == "" {
		return models.Poll{}, nil, apperr.AuthenticationRequired()
	}

	req.Title = strings.TrimSpace(req.Title)
	req.Description = strings.TrimSpace(req.Description)
	req.Options = normalizeOptions(req.Options)
	if err := validateStruct(req); err != nil {
		return models.Poll{}, nil, err
	}

	now := s.now().UTC()
	expiresAt, err := parseExpiry(req.ExpiresAt)
	if err != nil {
		return models.Poll{}, nil, err
	}
	if expiresAt != nil && !expiresAt.After(now) {
		return models.Poll{}, nil, apperr.ValidationFailed("expires_at", "expires_at must be in the future")
	}

	pollID, err := auth.GenerateID(16)
	if err != nil {
		return models.Poll{}, nil, apperr.Internal("failed to create poll", err)
	}

	poll := models.Poll{
		ID:                 pollID,
		Title:              req.Title,
		Description:        req.Description,
		CreatorID:          creatorID,
		ShareToken:         s.ShareToken(pollID),
		IsActive:           true,
		AllowMultipleVotes: req.AllowMultipleVotes,
		IsAnonymous:        req.IsAnonymous,
		ExpiresAt:          expiresAt,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	var options []models.PollOption
	err = s.store.WithTx(ctx, func(tx *goqu.TxDatabase) error {
		_, err := tx.Insert(schema.PollTable).Rows(goqu.Record{
			schema.PollTableIDColName:                 poll.ID,
			schema.PollTableTitleColName:              poll.Title,
			schema.PollTableDescriptionColName:        poll.Description,
			schema.PollTableCreatorIDColName:          poll.CreatorID,
			schema.PollTableShareTokenColName:         poll.ShareToken,
			schema.PollTableIsActiveColName:           poll.IsActive,
			schema.PollTableAllowMultipleVotesColName: poll.AllowMultipleVotes,
			schema.PollTableIsAnonymousColName:        poll.IsAnonymous,
			schema.PollTableExpiresAtColName:          nullTime(poll.ExpiresAt),
			schema.PollTableCreatedAtColName:          poll.CreatedAt,
			schema.PollTableUpdatedAtColName:          poll.UpdatedAt,
		}).Executor().ExecContext(ctx)
		if err != nil {
			return db.TranslateError(err, "failed to create poll")
		}

		options, err = s.options.insert(ctx, tx, poll.ID, req.Options)
		return err
	})
	if err != nil {
		logrus.WithError(err).WithField("creator_id", creatorID).Debug("poll create failed")
		return models.Poll{}, nil, err
	}

	return poll, options, nil
}

func (s *PollService) FindByID(ctx context.Context, pollID string) (models.Poll, error) {
	return findPoll(ctx, s.store, schema.PollTableIDCol.Eq(pollID))
}

// FindByShareToken loads a poll and its ordered options by share token.
func (s *PollService) FindByShareToken(ctx context.Context, token string) (models.Poll, []models.PollOption, error) {
	poll, err := findPoll(ctx, s.store, schema.PollTableShareTokenCol.Eq(token))
	if err != nil {
		return models.Poll{}, nil, err
	}

	options, err := listOptions(ctx, s.store, poll.ID)
	if err != nil {
		return models.Poll{}, nil, err
	}
	return poll, options, nil
}

// ListByCreator returns the creator's polls, newest first, with vote
// totals.
func (s *PollService) ListByCreator(ctx context.Context, creatorID string) ([]models.PollSummary, error) {
	var rows []schema.PollRow
	err := s.store.From(schema.PollTable).
		Where(schema.PollTableCreatorIDCol.Eq(creatorID)).
		Order(schema.PollTableCreatedAtCol.Desc(), schema.PollTableIDCol.Desc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, db.TranslateError(err, "failed to load polls")
	}

	summaries := make([]models.PollSummary, 0, len(rows))
	if len(rows) == 0 {
		return summaries, nil
	}

	ids := make([]string, 0, len(rows))
	for _, row := range rows {
		ids = append(ids, row.ID)
	}

	var counts []schema.PollCountRow
	err = s.store.From(schema.VoteTable).
		Select(schema.VoteTablePollIDCol, goqu.COUNT(goqu.Star()).As("votes")).
		Where(schema.VoteTablePollIDCol.In(ids)).
		GroupBy(schema.VoteTablePollIDCol).
		ScanStructsContext(ctx, &counts)
	if err != nil {
		return nil, db.TranslateError(err, "failed to count votes")
	}

	totals := make(map[string]int64, len(counts))
	for _, c := range counts {
		totals[c.PollID] = c.Votes
	}

	now := s.now()
	for _, row := range rows {
		poll := pollFromRow(row)
		summaries = append(summaries, models.PollSummary{
			Poll:       poll,
			Status:     poll.Status(now),
			TotalVotes: totals[poll.ID],
		})
	}
	return summaries, nil
}

// Update applies a partial update. Only the creator matches the update
// filter; anyone else, or a missing poll, is denied.
func (s *PollService) Update(ctx context.Context, callerID, pollID string, req models.UpdatePollRequest) (models.Poll, []models.PollOption, error) {
	if callerID == "" {
		return models.Poll{}, nil, apperr.AuthenticationRequired()
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		req.Title = &title
	}
	if req.Description != nil {
		description := strings.TrimSpace(*req.Description)
		req.Description = &description
	}
	if len(req.Options) > 0 {
		req.Options = normalizeOptions(req.Options)
		if len(req.Options) == 0 {
			return models.Poll{}, nil, apperr.ValidationFailed("options", "options must not be blank")
		}
	}
	if err := validateStruct(req); err != nil {
		return models.Poll{}, nil, err
	}

	var (
		poll    models.Poll
		options []models.PollOption
	)
	err := s.store.WithTx(ctx, func(tx *goqu.TxDatabase) error {
		ownedBy := goqu.Ex{
			schema.PollTableIDColName:        pollID,
			schema.PollTableCreatorIDColName: callerID,
		}

		var err error
		poll, err = findPoll(ctx, tx, ownedBy)
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.AuthorizationDenied(errOnlyCreator)
		}
		if err != nil {
			return err
		}

		record := goqu.Record{}
		if req.Title != nil {
			poll.Title = *req.Title
			record[schema.PollTableTitleColName] = poll.Title
		}
		if req.Description != nil {
			poll.Description = *req.Description
			record[schema.PollTableDescriptionColName] = poll.Description
		}
		if req.AllowMultipleVotes != nil {
			poll.AllowMultipleVotes = *req.AllowMultipleVotes
			record[schema.PollTableAllowMultipleVotesColName] = poll.AllowMultipleVotes
		}
		if req.IsAnonymous != nil {
			poll.IsAnonymous = *req.IsAnonymous
			record[schema.PollTableIsAnonymousColName] = poll.IsAnonymous
		}
		if req.IsActive != nil {
			poll.IsActive = *req.IsActive
			record[schema.PollTableIsActiveColName] = poll.IsActive
		}
		if req.ExpiresAt != nil {
			expiresAt, err := parseExpiry(*req.ExpiresAt)
			if err != nil {
				return err
			}
			if expiresAt != nil && !expiresAt.After(poll.CreatedAt) {
				return apperr.ValidationFailed("expires_at", "expires_at must be after the poll was created")
			}
			poll.ExpiresAt = expiresAt
			record[schema.PollTableExpiresAtColName] = nullTime(expiresAt)
		}

		poll.UpdatedAt = s.now().UTC()
		record[schema.PollTableUpdatedAtColName] = poll.UpdatedAt

		n, err := execOne(ctx, tx.Update(schema.PollTable).Set(record).Where(ownedBy).Executor())
		if err != nil {
			return db.TranslateError(err, "failed to update poll")
		}
		if n == 0 {
			return apperr.AuthorizationDenied(errOnlyCreator)
		}

		if len(req.Options) == 0 {
			options, err = listOptions(ctx, tx, pollID)
			return err
		}

		votes, err := tx.From(schema.VoteTable).
			Where(schema.VoteTablePollIDCol.Eq(pollID)).
			CountContext(ctx)
		if err != nil {
			return db.TranslateError(err, "failed to count votes")
		}
		if votes > 0 {
			return apperr.Conflict("options cannot change once voting has started")
		}

		options, err = s.options.Replace(ctx, tx, pollID, req.Options)
		return err
	})
	if err != nil {
		return models.Poll{}, nil, err
	}

	return poll, options, nil
}

// Delete removes a poll with its options, votes and threads. Only the
// creator matches the delete filter.
func (s *PollService) Delete(ctx context.Context, callerID, pollID string) (models.Poll, error) {
	if callerID == "" {
		return models.Poll{}, apperr.AuthenticationRequired()
	}

	var poll models.Poll
	err := s.store.WithTx(ctx, func(tx *goqu.TxDatabase) error {
		ownedBy := goqu.Ex{
			schema.PollTableIDColName:        pollID,
			schema.PollTableCreatorIDColName: callerID,
		}

		var err error
		poll, err = findPoll(ctx, tx, ownedBy)
		if apperr.Is(err, apperr.KindNotFound) {
			return apperr.AuthorizationDenied(errOnlyCreator)
		}
		if err != nil {
			return err
		}

		n, err := execOne(ctx, tx.Delete(schema.PollTable).Where(ownedBy).Executor())
		if err != nil {
			return db.TranslateError(err, "failed to delete poll")
		}
		if n == 0 {
			return apperr.AuthorizationDenied(errOnlyCreator)
		}
		return nil
	})
	if err != nil {
		return models.Poll{}, err
	}

	return poll, nil
}

func findPoll(ctx context.Context, q queryer, where ...exp.Expression) (models.Poll, error) {
	var row schema.PollRow
	found, err := q.From(schema.PollTable).Where(where...).ScanStructContext(ctx, &row)
	if err != nil {
		return models.Poll{}, db.TranslateError(err, "failed to load poll")
	}
	if !found {
		return models.Poll{}, apperr.NotFound("poll")
	}
	return pollFromRow(row), nil
}

func pollFromRow(row schema.PollRow) models.Poll {
	return models.Poll{
		ID:                 row.ID,
		Title:              row.Title,
		Description:        row.Description,
		CreatorID:          row.CreatorID,
		ShareToken:         row.ShareToken,
		IsActive:           row.IsActive,
		AllowMultipleVotes: row.AllowMultipleVotes,
		IsAnonymous:        row.IsAnonymous,
		ExpiresAt:          timePtr(row.ExpiresAt),
		CreatedAt:          row.CreatedAt.UTC(),
		UpdatedAt:          row.UpdatedAt.UTC(),
	}
}

// normalizeOptions trims every option and drops blank entries, which
// browser forms submit for unused inputs.
func normalizeOptions(options []string) []string {
	out := make([]string, 0, len(options))
	for _, opt := range options {
		if opt = strings.TrimSpace(opt); opt != "" {
			out = append(out, opt)
		}
	}
	return out
}

func parseExpiry(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	for _, layout := range expiryLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			t = t.UTC()
			return &t, nil
		}
	}
	return nil, apperr.ValidationFailed("expires_at", "expires_at must be a date and time")
}
