package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresCommentStore persists comments in Postgres. The votes map lives in
// a jsonb column on the comment row itself, which lets CastVote apply the
// map change and the score delta in one statement.
type PostgresCommentStore struct {
	pool *pgxpool.Pool
}

// NewPostgresCommentStore creates a store backed by Postgres.
func NewPostgresCommentStore(pool *pgxpool.Pool) *PostgresCommentStore {
	return &PostgresCommentStore{pool: pool}
}

const commentCols = `id, thread_id, parent_id, path, body, author_id, author_name, author_avatar,
	score, votes, is_spoiler, created_at, updated_at`

func (s *PostgresCommentStore) Insert(ctx context.Context, c Comment) (Comment, error) {
	body, err := NormalizeBody(c.Body)
	if err != nil {
		return Comment{}, err
	}
	path := c.Path
	if path == nil {
		path = []string{}
	}

	const q = `INSERT INTO comments (thread_id, parent_id, path, body, author_id, author_name, author_avatar)
	           VALUES ($1, $2, $3, $4, $5, $6, $7)
	           RETURNING ` + commentCols
	row := s.pool.QueryRow(ctx, q, c.ThreadID, c.ParentID, path, body,
		c.AuthorID, c.AuthorName, c.AuthorAvatar)
	return scanComment(row)
}

func (s *PostgresCommentStore) GetByID(ctx context.Context, id string) (Comment, error) {
	if !validID(id) {
		return Comment{}, ErrNotFound
	}
	const q = `SELECT ` + commentCols + ` FROM comments WHERE id = $1`
	return scanComment(s.pool.QueryRow(ctx, q, id))
}

func (s *PostgresCommentStore) ListByThread(ctx context.Context, threadID string, limit int) ([]Comment, error) {
	const q = `SELECT ` + commentCols + `
	           FROM comments
	           WHERE thread_id = $1
	           ORDER BY path, created_at, id
	           LIMIT $2`
	rows, err := s.pool.Query(ctx, q, threadID, ClampLimit(limit))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Comment{}
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CastVote updates the caller's vote entry and the derived score together.
// The delta is computed inside the statement from the stored map, so two
// racing casts by the same user cannot drift the score away from the sum of
// the votes map.
func (s *PostgresCommentStore) CastVote(ctx context.Context, commentID, userID string, value int) (Comment, error) {
	if !ValidVote(value) {
		return Comment{}, ErrVoteInvalid
	}
	if !validID(commentID) {
		return Comment{}, ErrNotFound
	}

	const q = `UPDATE comments SET
	             score      = score + $3 - COALESCE((votes->>$2)::int, 0),
	             votes      = CASE WHEN $3 = 0 THEN votes - $2
	                               ELSE jsonb_set(votes, ARRAY[$2], to_jsonb($3::int), true) END,
	             updated_at = now()
	           WHERE id = $1
	           RETURNING ` + commentCols
	return scanComment(s.pool.QueryRow(ctx, q, commentID, userID, value))
}

func (s *PostgresCommentStore) SetSpoiler(ctx context.Context, commentID string, spoiler bool) (Comment, error) {
	if !validID(commentID) {
		return Comment{}, ErrNotFound
	}
	const q = `UPDATE comments SET is_spoiler = $2, updated_at = now()
	           WHERE id = $1
	           RETURNING ` + commentCols
	return scanComment(s.pool.QueryRow(ctx, q, commentID, spoiler))
}

// DeleteByID removes the row permanently. Replies keep their rows; readers
// see them as dangling roots.
func (s *PostgresCommentStore) DeleteByID(ctx context.Context, commentID string) (Comment, error) {
	if !validID(commentID) {
		return Comment{}, ErrNotFound
	}
	const q = `DELETE FROM comments WHERE id = $1 RETURNING ` + commentCols
	return scanComment(s.pool.QueryRow(ctx, q, commentID))
}

func (s *PostgresCommentStore) ThreadSummaries(ctx context.Context) ([]ThreadSummary, error) {
	const q = `SELECT thread_id, count(*), max(created_at)
	           FROM comments
	           GROUP BY thread_id
	           ORDER BY max(created_at) DESC, thread_id`
	rows, err := s.pool.Query(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []ThreadSummary{}
	for rows.Next() {
		var sum ThreadSummary
		if err := rows.Scan(&sum.ThreadID, &sum.CommentCount, &sum.LastCommentAt); err != nil {
			return nil, err
		}
		out = append(out, sum)
	}
	return out, rows.Err()
}

func scanComment(row pgx.Row) (Comment, error) {
	var c Comment
	err := row.Scan(&c.ID, &c.ThreadID, &c.ParentID, &c.Path, &c.Body,
		&c.AuthorID, &c.AuthorName, &c.AuthorAvatar,
		&c.Score, &c.Votes, &c.IsSpoiler, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Comment{}, ErrNotFound
	}
	if err != nil {
		return Comment{}, err
	}
	if len(c.Votes) == 0 {
		c.Votes = nil
	}
	return c, nil
}

// validID pre-screens caller-supplied ids so a malformed one reads as a miss
// instead of a uuid encoding error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
