// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package schema

import (
	"database/sql"
	"time"

	"github.com/doug-martin/goqu/v9"
)

const (
	UserTableName                = "users"
	UserTableIDColName           = "id"
	UserTableEmailColName        = "email"
	UserTableDisplayNameColName  = "display_name"
	UserTablePasswordHashColName = "password_hash"
	UserTableCreatedAtColName    = "created_at"
)

var (
	UserTable         = goqu.T(UserTableName)
	UserTableIDCol    = UserTable.Col(UserTableIDColName)
	UserTableEmailCol = UserTable.Col(UserTableEmailColName)
)

type UserRow struct {
	ID           string    `db:"id"`
	Email        string    `db:"email"`
	DisplayName  string    `db:"display_name"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

const (
	PollTableName                      = "polls"
	PollTableIDColName                 = "id"
	PollTableTitleColName              = "title"
	PollTableDescriptionColName        = "description"
	PollTableCreatorIDColName          = "creator_id"
	PollTableShareTokenColName         = "share_token"
	PollTableIsActiveColName           = "is_active"
	PollTableAllowMultipleVotesColName = "allow_multiple_votes"
	PollTableIsAnonymousColName        = "is_anonymous"
	PollTableExpiresAtColName          = "expires_at"
	PollTableCreatedAtColName          = "created_at"
	PollTableUpdatedAtColName          = "updated_at"
)

var (
	PollTable              = goqu.T(PollTableName)
	PollTableIDCol         = PollTable.Col(PollTableIDColName)
	PollTableCreatorIDCol  = PollTable.Col(PollTableCreatorIDColName)
	PollTableShareTokenCol = PollTable.Col(PollTableShareTokenColName)
	PollTableCreatedAtCol  = PollTable.Col(PollTableCreatedAtColName)
)

type PollRow struct {
	ID                 string       `db:"id"`
	Title              string       `db:"title"`
	Description        string       `db:"description"`
	CreatorID          string       `db:"creator_id"`
	ShareToken         string       `db:"share_token"`
	IsActive           bool         `db:"is_active"`
	AllowMultipleVotes bool         `db:"allow_multiple_votes"`
	IsAnonymous        bool         `db:"is_anonymous"`
	ExpiresAt          sql.NullTime `db:"expires_at"`
	CreatedAt          time.Time    `db:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at"`
}

const (
	PollOptionTableName              = "poll_options"
	PollOptionTableIDColName         = "id"
	PollOptionTablePollIDColName     = "poll_id"
	PollOptionTableTextColName       = "text"
	PollOptionTableOrderIndexColName = "order_index"
)

var (
	PollOptionTable              = goqu.T(PollOptionTableName)
	PollOptionTableIDCol         = PollOptionTable.Col(PollOptionTableIDColName)
	PollOptionTablePollIDCol     = PollOptionTable.Col(PollOptionTablePollIDColName)
	PollOptionTableOrderIndexCol = PollOptionTable.Col(PollOptionTableOrderIndexColName)
)

type PollOptionRow struct {
	ID         string `db:"id"`
	PollID     string `db:"poll_id"`
	Text       string `db:"text"`
	OrderIndex int    `db:"order_index"`
}

const (
	VoteTableName             = "votes"
	VoteTableIDColName        = "id"
	VoteTablePollIDColName    = "poll_id"
	VoteTableOptionIDColName  = "option_id"
	VoteTableVoterIDColName   = "voter_id"
	VoteTableVoterIPColName   = "voter_ip"
	VoteTableCreatedAtColName = "created_at"
)

var (
	VoteTable            = goqu.T(VoteTableName)
	VoteTableIDCol       = VoteTable.Col(VoteTableIDColName)
	VoteTablePollIDCol   = VoteTable.Col(VoteTablePollIDColName)
	VoteTableOptionIDCol = VoteTable.Col(VoteTableOptionIDColName)
	VoteTableVoterIDCol  = VoteTable.Col(VoteTableVoterIDColName)
	VoteTableVoterIPCol  = VoteTable.Col(VoteTableVoterIPColName)
)

type VoteRow struct {
	ID        string         `db:"id"`
	PollID    string         `db:"poll_id"`
	OptionID  string         `db:"option_id"`
	VoterID   sql.NullString `db:"voter_id"`
	VoterIP   sql.NullString `db:"voter_ip"`
	CreatedAt time.Time      `db:"created_at"`
}

// OptionCountRow is one row of a per-option vote aggregate.
type OptionCountRow struct {
	OptionID string `db:"option_id"`
	Votes    int64  `db:"votes"`
}

// PollCountRow is one row of a per-poll vote aggregate.
type PollCountRow struct {
	PollID string `db:"poll_id"`
	Votes  int64  `db:"votes"`
}

const (
	ThreadTableName             = "discussion_threads"
	ThreadTableIDColName        = "id"
	ThreadTablePollIDColName    = "poll_id"
	ThreadTableParentIDColName  = "parent_id"
	ThreadTableAuthorIDColName  = "author_id"
	ThreadTableContentColName   = "content"
	ThreadTableIsDeletedColName = "is_deleted"
	ThreadTableCreatedAtColName = "created_at"
	ThreadTableUpdatedAtColName = "updated_at"

	ThreadAuthorViewName              = "discussion_threads_with_author"
	ThreadAuthorViewAuthorNameColName = "author_name"
)

var (
	ThreadTable          = goqu.T(ThreadTableName)
	ThreadTableIDCol     = ThreadTable.Col(ThreadTableIDColName)
	ThreadTableAuthorCol = ThreadTable.Col(ThreadTableAuthorIDColName)

	ThreadAuthorView             = goqu.T(ThreadAuthorViewName)
	ThreadAuthorViewIDCol        = ThreadAuthorView.Col(ThreadTableIDColName)
	ThreadAuthorViewPollIDCol    = ThreadAuthorView.Col(ThreadTablePollIDColName)
	ThreadAuthorViewIsDeletedCol = ThreadAuthorView.Col(ThreadTableIsDeletedColName)
	ThreadAuthorViewCreatedAtCol = ThreadAuthorView.Col(ThreadTableCreatedAtColName)
)

type ThreadRow struct {
	ID         string         `db:"id"`
	PollID     string         `db:"poll_id"`
	ParentID   sql.NullString `db:"parent_id"`
	AuthorID   string         `db:"author_id"`
	AuthorName string         `db:"author_name"`
	Content    string         `db:"content"`
	IsDeleted  bool           `db:"is_deleted"`
	CreatedAt  time.Time      `db:"created_at"`
	UpdatedAt  time.Time      `db:"updated_at"`
}
