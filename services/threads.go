// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package services

import (
	"context"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"

	"github.com/danielhkuo/pollboard/apperr"
	"github.com/danielhkuo/pollboard/db"
	"github.com/danielhkuo/pollboard/models"
	"github.com/danielhkuo/pollboard/schema"
)

type ThreadService struct {
	store *db.DB
	now   func() time.Time
}

// ListTree returns the poll's visible discussion as a tree.
func (s *ThreadService) ListTree(ctx context.Context, pollID string) ([]*models.ThreadNode, error) {
	if _, err := findPoll(ctx, s.store, schema.PollTableIDCol.Eq(pollID)); err != nil {
		return nil, err
	}

	var rows []schema.ThreadRow
	err := s.store.From(schema.ThreadAuthorView).
		Where(
			schema.ThreadAuthorViewPollIDCol.Eq(pollID),
			schema.ThreadAuthorViewIsDeletedCol.Eq(false),
		).
		Order(schema.ThreadAuthorViewCreatedAtCol.Asc(), schema.ThreadAuthorViewIDCol.Asc()).
		ScanStructsContext(ctx, &rows)
	if err != nil {
		return nil, db.TranslateError(err, "failed to load discussion")
	}

	threads := make([]models.DiscussionThread, 0, len(rows))
	for _, row := range rows {
		threads = append(threads, threadFromRow(row))
	}
	return BuildThreadTree(threads), nil
}

// Create posts a top-level thread, or a reply when req.ParentID is set.
// The parent must be a visible thread of the same poll.
func (s *ThreadService) Create(ctx context.Context, authorID, pollID string, req models.CreateThreadRequest) (models.DiscussionThread, error) {
	if authorID == "" {
		return models.DiscussionThread{}, apperr.AuthenticationRequired()
	}

	req.Content = strings.TrimSpace(req.Content)
	req.ParentID = strings.TrimSpace(req.ParentID)
	if err := validateStruct(req); err != nil {
		return models.DiscussionThread{}, err
	}

	var thread models.DiscussionThread
	err := s.store.WithTx(ctx, func(tx *goqu.TxDatabase) error {
		if _, err := findPoll(ctx, tx, schema.PollTableIDCol.Eq(pollID)); err != nil {
			return err
		}

		if req.ParentID != "" {
			parent, err := findThread(ctx, tx, req.ParentID)
			if apperr.Is(err, apperr.KindNotFound) {
				return apperr.ValidationFailed("parent_id", "parent thread does not exist")
			}
			if err != nil {
				return err
			}
			if parent.PollID != pollID || parent.IsDeleted {
				return apperr.ValidationFailed("parent_id", "parent thread does not exist")
			}
		}

		now := s.now().UTC()
		id := uuid.NewString()
		_, err := tx.Insert(schema.ThreadTable).Rows(goqu.Record{
			schema.ThreadTableIDColName:        id,
			schema.ThreadTablePollIDColName:    pollID,
			schema.ThreadTableParentIDColName:  nullString(req.ParentID),
			schema.ThreadTableAuthorIDColName:  authorID,
			schema.ThreadTableContentColName:   req.Content,
			schema.ThreadTableIsDeletedColName: false,
			schema.ThreadTableCreatedAtColName: now,
			schema.ThreadTableUpdatedAtColName: now,
		}).Executor().ExecContext(ctx)
		if err != nil {
			return db.TranslateError(err, "failed to post thread")
		}

		thread, err = findThread(ctx, tx, id)
		return err
	})
	if err != nil {
		return models.DiscussionThread{}, err
	}

	return thread, nil
}

// Update changes the content of a visible thread. Only its author may.
func (s *ThreadService) Update(ctx context.Context, authorID, threadID string, req models.UpdateThreadRequest) (models.DiscussionThread, error) {
	if authorID == "" {
		return models.DiscussionThread{}, apperr.AuthenticationRequired()
	}

	req.Content = strings.TrimSpace(req.Content)
	if err := validateStruct(req); err != nil {
		return models.DiscussionThread{}, err
	}

	var thread models.DiscussionThread
	err := s.store.WithTx(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		thread, err = findThread(ctx, tx, threadID)
		if err != nil {
			return err
		}
		if thread.IsDeleted {
			return apperr.NotFound("thread")
		}
		if thread.AuthorID != authorID {
			return apperr.AuthorizationDenied("only the author can edit this thread")
		}

		thread.Content = req.Content
		thread.UpdatedAt = s.now().UTC()
		_, err = tx.Update(schema.ThreadTable).Set(goqu.Record{
			schema.ThreadTableContentColName:   thread.Content,
			schema.ThreadTableUpdatedAtColName: thread.UpdatedAt,
		}).Where(
			schema.ThreadTableIDCol.Eq(threadID),
			schema.ThreadTableAuthorCol.Eq(authorID),
		).Executor().ExecContext(ctx)
		if err != nil {
			return db.TranslateError(err, "failed to update thread")
		}
		return nil
	})
	if err != nil {
		return models.DiscussionThread{}, err
	}

	return thread, nil
}

// Delete soft-deletes a thread. The author and the poll's creator may
// delete; deleting twice is not an error. Replies stay in place.
func (s *ThreadService) Delete(ctx context.Context, callerID, threadID string) (models.DiscussionThread, error) {
	if callerID == "" {
		return models.DiscussionThread{}, apperr.AuthenticationRequired()
	}

	var thread models.DiscussionThread
	err := s.store.WithTx(ctx, func(tx *goqu.TxDatabase) error {
		var err error
		thread, err = findThread(ctx, tx, threadID)
		if err != nil {
			return err
		}

		if thread.AuthorID != callerID {
			poll, err := findPoll(ctx, tx, schema.PollTableIDCol.Eq(thread.PollID))
			if err != nil {
				return err
			}
			if poll.CreatorID != callerID {
				return apperr.AuthorizationDenied("only the author or the poll creator can delete this thread")
			}
		}

		if thread.IsDeleted {
			return nil
		}

		thread.IsDeleted = true
		thread.UpdatedAt = s.now().UTC()
		_, err = tx.Update(schema.ThreadTable).Set(goqu.Record{
			schema.ThreadTableIsDeletedColName: true,
			schema.ThreadTableUpdatedAtColName: thread.UpdatedAt,
		}).Where(schema.ThreadTableIDCol.Eq(threadID)).Executor().ExecContext(ctx)
		if err != nil {
			return db.TranslateError(err, "failed to delete thread")
		}
		return nil
	})
	if err != nil {
		return models.DiscussionThread{}, err
	}

	return thread, nil
}

func findThread(ctx context.Context, q queryer, id string) (models.DiscussionThread, error) {
	var row schema.ThreadRow
	found, err := q.From(schema.ThreadAuthorView).
		Where(schema.ThreadAuthorViewIDCol.Eq(id)).
		ScanStructContext(ctx, &row)
	if err != nil {
		return models.DiscussionThread{}, db.TranslateError(err, "failed to load thread")
	}
	if !found {
		return models.DiscussionThread{}, apperr.NotFound("thread")
	}
	return threadFromRow(row), nil
}

func threadFromRow(row schema.ThreadRow) models.DiscussionThread {
	return models.DiscussionThread{
		ID:         row.ID,
		PollID:     row.PollID,
		ParentID:   stringPtr(row.ParentID),
		AuthorID:   row.AuthorID,
		AuthorName: row.AuthorName,
		Content:    row.Content,
		IsDeleted:  row.IsDeleted,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}
