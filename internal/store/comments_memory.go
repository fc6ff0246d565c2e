package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// InMemoryCommentStore is a development-only in-memory implementation.
type InMemoryCommentStore struct {
	mu       sync.RWMutex
	comments map[string]Comment // id -> comment
}

func NewInMemoryCommentStore() *InMemoryCommentStore {
	return &InMemoryCommentStore{comments: make(map[string]Comment)}
}

// clone copies the fields other code could otherwise mutate through aliasing.
func clone(c Comment) Comment {
	out := c
	out.Path = append([]string(nil), c.Path...)
	if c.Votes != nil {
		out.Votes = make(map[string]int, len(c.Votes))
		for k, v := range c.Votes {
			out.Votes[k] = v
		}
	}
	return out
}

func (s *InMemoryCommentStore) Insert(_ context.Context, c Comment) (Comment, error) {
	body, err := NormalizeBody(c.Body)
	if err != nil {
		return Comment{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	c = clone(c)
	c.ID = uuid.New().String()
	c.Body = body
	c.Score = 0
	c.Votes = nil
	c.IsSpoiler = false
	c.CreatedAt = now
	c.UpdatedAt = now
	if c.Path == nil {
		c.Path = []string{}
	}
	s.comments[c.ID] = c
	return clone(c), nil
}

func (s *InMemoryCommentStore) GetByID(_ context.Context, id string) (Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.comments[id]
	if !ok {
		return Comment{}, ErrNotFound
	}
	return clone(c), nil
}

func (s *InMemoryCommentStore) ListByThread(_ context.Context, threadID string, limit int) ([]Comment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	limit = ClampLimit(limit)

	out := []Comment{}
	for _, c := range s.comments {
		if c.ThreadID == threadID {
			out = append(out, clone(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !equalPaths(out[i].Path, out[j].Path) {
			return pathLess(out[i].Path, out[j].Path)
		}
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].ID < out[j].ID
	})
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *InMemoryCommentStore) CastVote(_ context.Context, commentID, userID string, value int) (Comment, error) {
	if !ValidVote(value) {
		return Comment{}, ErrVoteInvalid
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return Comment{}, ErrNotFound
	}

	c = clone(c)
	previous := c.Votes[userID]
	delta := value - previous
	if value == VoteNone {
		delete(c.Votes, userID)
		if len(c.Votes) == 0 {
			c.Votes = nil
		}
	} else {
		if c.Votes == nil {
			c.Votes = make(map[string]int, 1)
		}
		c.Votes[userID] = value
	}
	c.Score += delta
	c.UpdatedAt = time.Now().UTC()
	s.comments[commentID] = c
	return clone(c), nil
}

func (s *InMemoryCommentStore) SetSpoiler(_ context.Context, commentID string, spoiler bool) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return Comment{}, ErrNotFound
	}
	c = clone(c)
	c.IsSpoiler = spoiler
	c.UpdatedAt = time.Now().UTC()
	s.comments[commentID] = c
	return clone(c), nil
}

func (s *InMemoryCommentStore) DeleteByID(_ context.Context, commentID string) (Comment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.comments[commentID]
	if !ok {
		return Comment{}, ErrNotFound
	}
	delete(s.comments, commentID)
	return clone(c), nil
}

func (s *InMemoryCommentStore) ThreadSummaries(_ context.Context) ([]ThreadSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byThread := make(map[string]*ThreadSummary)
	for _, c := range s.comments {
		sum, ok := byThread[c.ThreadID]
		if !ok {
			sum = &ThreadSummary{ThreadID: c.ThreadID}
			byThread[c.ThreadID] = sum
		}
		sum.CommentCount++
		if c.CreatedAt.After(sum.LastCommentAt) {
			sum.LastCommentAt = c.CreatedAt
		}
	}

	out := make([]ThreadSummary, 0, len(byThread))
	for _, sum := range byThread {
		out = append(out, *sum)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].LastCommentAt.Equal(out[j].LastCommentAt) {
			return out[i].LastCommentAt.After(out[j].LastCommentAt)
		}
		return out[i].ThreadID < out[j].ThreadID
	})
	return out, nil
}

func equalPaths(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
