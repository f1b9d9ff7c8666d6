// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"math"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/schema"
)

type VoteService struct {
	store   *db.DB
	options *OptionService
	now     func() time.Time
}

// Submit casts one vote. Every precondition is checked inside a single
// transaction together with the insert, so concurrent submissions from
// one identity cannot both pass the duplicate check.
func (s *VoteService) Submit(ctx context.Context, pollID, optionID string, voter models.Voter) (models.Vote, error) {
	optionID = strings.TrimSpace(optionID)
	if optionID == "" {
		return models.Vote{}, apperr.ValidationFailed("option_id", "option_id is required")
	}

	var vote models.Vote
	err := s.store.WithTx(ctx, func(tx *goqu.TxDatabase) error {
		poll, err := findPoll(ctx, tx, schema.PollTableIDCol.Eq(pollID))
		if err != nil {
			return err
		}

		now := s.now().UTC()
		if !poll.AcceptsVotes(now) {
			if poll.IsExpired(now) {
				return apperr.Conflict("poll has expired")
			}
			return apperr.Conflict("poll is not active")
		}

		var option schema.PollOptionRow
		found, err := tx.From(schema.PollOptionTable).
			Where(schema.PollOptionTableIDCol.Eq(optionID)).
			ScanStructContext(ctx, &option)
		if err != nil {
			return db.TranslateError(err, "failed to load option")
		}
		if !found || option.PollID != poll.ID {
			return apperr.ValidationFailed("option_id", "option does not belong to this poll")
		}

		if voter.Anonymous() && (!poll.IsAnonymous || voter.IPHash == "") {
			return apperr.AuthenticationRequired()
		}

		prior := tx.From(schema.VoteTable).Where(
			schema.VoteTablePollIDCol.Eq(poll.ID),
			voterFilter(voter),
		)
		if poll.AllowMultipleVotes {
			prior = prior.Where(schema.VoteTableOptionIDCol.Eq(option.ID))
		}
		existing, err := prior.CountContext(ctx)
		if err != nil {
			return db.TranslateError(err, "failed to check prior votes")
		}
		if existing > 0 {
			if poll.AllowMultipleVotes {
				return apperr.Conflict("already voted for this option")
			}
			return apperr.Conflict("already voted")
		}

		vote = models.Vote{
			ID:        uuid.NewString(),
			PollID:    poll.ID,
			OptionID:  option.ID,
			CreatedAt: now,
		}
		if voter.UserID != "" {
			vote.VoterID = &voter.UserID
		}
		if voter.IPHash != "" {
			vote.VoterIP = &voter.IPHash
		}

		_, err = tx.Insert(schema.VoteTable).Rows(goqu.Record{
			schema.VoteTableIDColName:        vote.ID,
			schema.VoteTablePollIDColName:    vote.PollID,
			schema.VoteTableOptionIDColName:  vote.OptionID,
			schema.VoteTableVoterIDColName:   nullString(voter.UserID),
			schema.VoteTableVoterIPColName:   nullString(voter.IPHash),
			schema.VoteTableCreatedAtColName: vote.CreatedAt,
		}).Executor().ExecContext(ctx)
		if err != nil {
			return db.TranslateError(err, "failed to submit vote")
		}
		return nil
	})
	if err != nil {
		return models.Vote{}, err
	}

	return vote, nil
}

// HasVoted reports whether voter has any vote on the poll.
func (s *VoteService) HasVoted(ctx context.Context, pollID string, voter models.Voter) (bool, error) {
	if voter.UserID == "" && voter.IPHash == "" {
		return false, nil
	}

	n, err := s.store.From(schema.VoteTable).
		Where(schema.VoteTablePollIDCol.Eq(pollID), voterFilter(voter)).
		CountContext(ctx)
	if err != nil {
		return false, db.TranslateError(err, "failed to check votes")
	}
	return n > 0, nil
}

// Results counts votes per option in one grouped query. Options without
// votes are reported with zero.
func (s *VoteService) Results(ctx context.Context, pollID string) (models.PollResults, error) {
	options, err := s.options.ListByPoll(ctx, pollID)
	if err != nil {
		return models.PollResults{}, err
	}

	var counts []schema.OptionCountRow
	err = s.store.From(schema.VoteTable).
		Select(schema.VoteTableOptionIDCol, goqu.COUNT(goqu.Star()).As("votes")).
		Where(schema.VoteTablePollIDCol.Eq(pollID)).
		GroupBy(schema.VoteTableOptionIDCol).
		ScanStructsContext(ctx, &counts)
	if err != nil {
		return models.PollResults{}, db.TranslateError(err, "failed to count votes")
	}

	return tally(pollID, options, counts), nil
}

func tally(pollID string, options []models.PollOption, counts []schema.OptionCountRow) models.PollResults {
	byOption := make(map[string]int64, len(counts))
	for _, c := range counts {
		byOption[c.OptionID] = c.Votes
	}

	results := models.PollResults{
		PollID:  pollID,
		Options: make([]models.OptionResult, 0, len(options)),
	}
	for _, opt := range options {
		results.TotalVotes += byOption[opt.ID]
	}

	for _, opt := range options {
		votes := byOption[opt.ID]
		var pct float64
		if results.TotalVotes > 0 {
			pct = math.Round(float64(votes)/float64(results.TotalVotes)*1000) / 10
		}
		results.Options = append(results.Options, models.OptionResult{
			OptionID:   opt.ID,
			Text:       opt.Text,
			OrderIndex: opt.OrderIndex,
			Votes:      votes,
			Percentage: pct,
		})
	}
	return results
}

// voterFilter matches votes cast by voter. Signed-in voters are matched
// on user ID, everyone else on the hashed address.
func voterFilter(voter models.Voter) exp.Expression {
	if voter.UserID != "" {
		return schema.VoteTableVoterIDCol.Eq(voter.UserID)
	}
	return goqu.And(
		schema.VoteTableVoterIDCol.IsNull(),
		schema.VoteTableVoterIPCol.Eq(voter.IPHash),
	)
}
