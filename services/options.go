// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"fmt"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/schema"
)

type OptionService struct {
	store *db.DB
}

// ListByPoll returns the options of a poll in display order.
func (s *OptionService) ListByPoll(ctx context.Context, pollID string) ([]models.PollOption, error) {
	return listOptions(ctx, s.store, pollID)
}

// Replace swaps every option of a poll for texts, numbered from zero.
// It must run inside the caller's transaction so the poll is never left
// with fewer than the minimum number of options.
func (s *OptionService) Replace(ctx context.Context, tx *goqu.TxDatabase, pollID string, texts []string) ([]models.PollOption, error) {
	if err := checkOptionCount(texts); err != nil {
		return nil, err
	}

	_, err := tx.Delete(schema.PollOptionTable).
		Where(schema.PollOptionTablePollIDCol.Eq(pollID)).
		Executor().ExecContext(ctx)
	if err != nil {
		return nil, db.TranslateError(err, "failed to replace options")
	}

	return s.insert(ctx, tx, pollID, texts)
}

func (s *OptionService) insert(ctx context.Context, q queryer, pollID string, texts []string) ([]models.PollOption, error) {
	if err := checkOptionCount(texts); err != nil {
		return nil, err
	}

	options := make([]models.PollOption, 0, len(texts))
	rows := make([]interface{}, 0, len(texts))
	for i, text := range texts {
		opt := models.PollOption{
			ID:         uuid.NewString(),
			PollID:     pollID,
			Text:       text,
			OrderIndex: i,
		}
		options = append(options, opt)
		rows = append(rows, goqu.Record{
			schema.PollOptionTableIDColName:         opt.ID,
			schema.PollOptionTablePollIDColName:     opt.PollID,
			schema.PollOptionTableTextColName:       opt.Text,
			schema.PollOptionTableOrderIndexColName: opt.OrderIndex,
		})
	}

	_, err := q.Insert(schema.PollOptionTable).Rows(rows...).Executor().ExecContext(ctx)
	if err != nil {
		return nil, db.TranslateError(err, "failed to save options")
	}

	return options, nil
}

func listOptions(ctx context.Context, q queryer, pollID string) ([]models.PollOption, error) {
	var rows []schema.PollOptionRow
	err := q.From(schema.PollOptionTable).
		Where(schema.PollOptionTablePollIDCol.Eq(pollID)).
		Order(schema.PollOptionTableOrderIndexCol.Asc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, db.TranslateError(err, "failed to load options")
	}

	options := make([]models.PollOption, 0, len(rows))
	for _, row := range rows {
		options = append(options, models.PollOption{
			ID:         row.ID,
			PollID:     row.PollID,
			Text:       row.Text,
			OrderIndex: row.OrderIndex,
		})
	}
	return options, nil
}

func checkOptionCount(texts []string) error {
	if len(texts) < models.MinOptions || len(texts) > models.MaxOptions {
		return apperr.ValidationFailed("options",
			fmt.Sprintf("a poll needs between %d and %d options", models.MinOptions, models.MaxOptions))
	}
	return nil
}
