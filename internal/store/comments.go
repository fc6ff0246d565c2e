package store

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Comment is a single stored comment document. ThreadID groups all comments
// of one discussable unit (e.g. "anime-id:episode-number"). Path is the
// materialized path: the ordered ancestor ids from thread root down to, but
// excluding, this comment's own id; a top-level comment has an empty path.
// ThreadID, ParentID, Path, AuthorID and CreatedAt never change after insert.
type Comment struct {
	ID           string         `json:"id"`
	ThreadID     string         `json:"thread_id"`
	ParentID     *string        `json:"parent_id,omitempty"`
	Path         []string       `json:"path"`
	Body         string         `json:"body"`
	AuthorID     string         `json:"author_id"`
	AuthorName   string         `json:"author_name,omitempty"`
	AuthorAvatar string         `json:"author_avatar,omitempty"`
	Score        int            `json:"score"`
	Votes        map[string]int `json:"votes,omitempty"`
	IsSpoiler    bool           `json:"is_spoiler"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// ThreadSummary is one row of the moderation thread index.
type ThreadSummary struct {
	ThreadID      string    `json:"thread_id"`
	CommentCount  int       `json:"comment_count"`
	LastCommentAt time.Time `json:"last_comment_at"`
}

// Vote values. Users with no vote are absent from the Votes map, never
// stored as VoteNone.
const (
	VoteDown = -1
	VoteNone = 0
	VoteUp   = 1
)

// MaxBodyRunes bounds the comment body after whitespace trimming.
const MaxBodyRunes = 4000

// Listing bounds for ListByThread.
const (
	DefaultListLimit = 100
	MaxListLimit     = 200
)

var (
	ErrNotFound    = errors.New("comment not found")
	ErrBodyInvalid = errors.New("comment body must be 1 to 4000 characters")
	ErrVoteInvalid = errors.New("vote must be -1, 0, or 1")
)

// CommentStore defines the contract for comment persistence.
//
// CastVote applies `value - previous` to the score and updates the per-user
// vote entry in a single atomic document update, so score always equals the
// sum of the votes map, even under concurrent casts. A VoteNone value clears
// the caller's vote.
type CommentStore interface {
	Insert(ctx context.Context, c Comment) (Comment, error)
	GetByID(ctx context.Context, id string) (Comment, error)
	ListByThread(ctx context.Context, threadID string, limit int) ([]Comment, error)
	CastVote(ctx context.Context, commentID, userID string, value int) (Comment, error)
	SetSpoiler(ctx context.Context, commentID string, spoiler bool) (Comment, error)
	DeleteByID(ctx context.Context, commentID string) (Comment, error)
	ThreadSummaries(ctx context.Context) ([]ThreadSummary, error)
}

// NormalizeBody trims surrounding whitespace and validates the length bound.
func NormalizeBody(body string) (string, error) {
	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > MaxBodyRunes {
		return "", ErrBodyInvalid
	}
	return body, nil
}

// ValidVote reports whether v is within the allowed vote domain.
func ValidVote(v int) bool {
	return v == VoteDown || v == VoteNone || v == VoteUp
}

// ClampLimit normalizes a requested page size to the listing bounds.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	if limit > MaxListLimit {
		return MaxListLimit
	}
	return limit
}

// pathLess orders materialized paths lexicographically, so an ancestor's
// path (a strict prefix) sorts before its descendants'.
func pathLess(a, b []string) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
