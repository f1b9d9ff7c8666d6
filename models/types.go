package models

import "time"

// Poll status values
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
	StatusExpired  = "expired"
)

// Poll option bounds
const (
	MinOptions = 2
	MaxOptions = 20
)

// Request types

type RegisterRequest struct {
	Email       string `json:"email" form:"email" validate:"required,email,max=254"`
	DisplayName string `json:"display_name" form:"display_name" validate:"required,min=1,max=50"`
	Password    string `json:"password" form:"password" validate:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
}

// ExpiresAt accepts RFC 3339, "2006-01-02T15:04" (datetime-local) or a
// bare date. Empty means the poll never expires.
type CreatePollRequest struct {
	Title              string   `json:"title" form:"title" validate:"required,min=1,max=200"`
	Description        string   `json:"description" form:"description" validate:"max=1000"`
	Options            []string `json:"options" form:"options" validate:"min=2,max=20,dive,required,max=500"`
	AllowMultipleVotes bool     `json:"allow_multiple_votes" form:"allow_multiple_votes"`
	IsAnonymous        bool     `json:"is_anonymous" form:"is_anonymous"`
	ExpiresAt          string   `json:"expires_at" form:"expires_at"`
}

// Nil fields are left unchanged. An empty ExpiresAt clears the expiry.
type UpdatePollRequest struct {
	Title              *string  `json:"title" form:"title" validate:"omitnil,min=1,max=200"`
	Description        *string  `json:"description" form:"description" validate:"omitnil,max=1000"`
	Options            []string `json:"options" form:"options" validate:"omitempty,min=2,max=20,dive,required,max=500"`
	AllowMultipleVotes *bool    `json:"allow_multiple_votes" form:"allow_multiple_votes"`
	IsAnonymous        *bool    `json:"is_anonymous" form:"is_anonymous"`
	IsActive           *bool    `json:"is_active" form:"is_active"`
	ExpiresAt          *string  `json:"expires_at" form:"expires_at"`
}

type SubmitVoteRequest struct {
	OptionID string `json:"option_id" form:"option_id" validate:"required"`
}

type CreateThreadRequest struct {
	Content  string `json:"content" form:"content" validate:"required,min=1,max=2000"`
	ParentID string `json:"parent_id" form:"parent_id"`
}

type UpdateThreadRequest struct {
	Content string `json:"content" form:"content" validate:"required,min=1,max=2000"`
}

// Response types

type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	User      User      `json:"user"`
}

type CreatePollResponse struct {
	Poll     Poll         `json:"poll"`
	Options  []PollOption `json:"options"`
	ShareURL string       `json:"share_url"`
}

// PollDetail is the creator's view of a poll.
type PollDetail struct {
	Poll     Poll         `json:"poll"`
	Options  []PollOption `json:"options"`
	Results  PollResults  `json:"results"`
	Status   string       `json:"status"`
	ShareURL string       `json:"share_url"`
}

// SharedPoll is the public view of a poll reached through its share token.
type SharedPoll struct {
	Poll      Poll         `json:"poll"`
	Options   []PollOption `json:"options"`
	Results   PollResults  `json:"results"`
	Status    string       `json:"status"`
	HasVoted  bool         `json:"has_voted"`
	ExpiresIn string       `json:"expires_in,omitempty"`
}

// PollSummary is one dashboard row.
type PollSummary struct {
	Poll       Poll   `json:"poll"`
	Status     string `json:"status"`
	TotalVotes int64  `json:"total_votes"`
	ShareURL   string `json:"share_url"`
}

type SubmitVoteResponse struct {
	Vote    Vote        `json:"vote"`
	Results PollResults `json:"results"`
}

// Domain types

type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at"`
}

type Poll struct {
	ID                 string     `json:"id"`
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	CreatorID          string     `json:"creator_id"`
	ShareToken         string     `json:"share_token"`
	IsActive           bool       `json:"is_active"`
	AllowMultipleVotes bool       `json:"allow_multiple_votes"`
	IsAnonymous        bool       `json:"is_anonymous"`
	ExpiresAt          *time.Time `json:"expires_at,omitempty"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// IsExpired reports whether the poll has an expiry at or before now.
func (p Poll) IsExpired(now time.Time) bool {
	return p.ExpiresAt != nil && !now.Before(*p.ExpiresAt)
}

// Status derives the display status. Expiry is never stored, it is
// evaluated against now on every read.
func (p Poll) Status(now time.Time) string {
	switch {
	case p.IsExpired(now):
		return StatusExpired
	case !p.IsActive:
		return StatusInactive
	default:
		return StatusActive
	}
}

// AcceptsVotes reports whether a vote may be cast at now.
func (p Poll) AcceptsVotes(now time.Time) bool {
	return p.Status(now) == StatusActive
}

type PollOption struct {
	ID         string `json:"id"`
	PollID     string `json:"poll_id"`
	Text       string `json:"text"`
	OrderIndex int    `json:"order_index"`
}

type Vote struct {
	ID        string    `json:"id"`
	PollID    string    `json:"poll_id"`
	OptionID  string    `json:"option_id"`
	VoterID   *string   `json:"voter_id,omitempty"`
	VoterIP   *string   `json:"-"` // hashed, never exposed
	CreatedAt time.Time `json:"created_at"`
}

// Voter identifies whoever casts a vote. UserID is set for signed-in
// callers; IPHash is the salted hash of the client address.
type Voter struct {
	UserID string
	IPHash string
}

// Anonymous reports whether the voter is not signed in.
func (v Voter) Anonymous() bool {
	return v.UserID == ""
}

type DiscussionThread struct {
	ID         string    `json:"id"`
	PollID     string    `json:"poll_id"`
	ParentID   *string   `json:"parent_id,omitempty"`
	AuthorID   string    `json:"author_id"`
	AuthorName string    `json:"author_name"`
	Content    string    `json:"content"`
	IsDeleted  bool      `json:"is_deleted"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// ThreadNode is a discussion thread with its nested replies.
type ThreadNode struct {
	DiscussionThread
	Replies    []*ThreadNode `json:"replies"`
	ReplyCount int           `json:"reply_count"`
}

// Results types

type OptionResult struct {
	OptionID   string  `json:"option_id"`
	Text       string  `json:"text"`
	OrderIndex int     `json:"order_index"`
	Votes      int64   `json:"votes"`
	Percentage float64 `json:"percentage"`
}

type PollResults struct {
	PollID     string         `json:"poll_id"`
	TotalVotes int64          `json:"total_votes"`
	Options    []OptionResult `json:"options"`
}

// Envelope types

type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

type ErrorBody struct {
	Type     string `json:"type"`
	Message  string `json:"message"`
	Field    string `json:"field,omitempty"`
	Resource string `json:"resource,omitempty"`
}
