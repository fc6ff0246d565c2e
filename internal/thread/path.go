// Package thread turns flat comment storage into discussion threads: it
// computes materialized paths at write time and rebuilds reply trees at
// read time.
package thread

import (
	"context"
	"errors"
	"strings"

	"github.com/example/discussion-service/internal/store"
)

// DefaultMaxDepth is the deepest nesting level a reply may create.
const DefaultMaxDepth = 6

var (
	ErrUnknownParent = errors.New("parent comment does not exist in this thread")
	ErrDepthExceeded = errors.New("reply nesting is too deep")
)

// ParentLookup is the single store capability path resolution needs.
type ParentLookup interface {
	GetByID(ctx context.Context, id string) (store.Comment, error)
}

// Resolve computes the materialized path for a new comment in threadID.
// A nil or blank parent id yields an empty path (top-level comment).
// Otherwise the parent is looked up; a missing parent, or one from another
// thread, is ErrUnknownParent. The result is parent.Path plus parent.ID; if
// that exceeds maxDepth the reply is rejected with ErrDepthExceeded before
// anything is written. maxDepth <= 0 selects DefaultMaxDepth.
func Resolve(ctx context.Context, parents ParentLookup, threadID string, parentID *string, maxDepth int) ([]string, error) {
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	if parentID == nil || strings.TrimSpace(*parentID) == "" {
		return []string{}, nil
	}

	parent, err := parents.GetByID(ctx, strings.TrimSpace(*parentID))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrUnknownParent
		}
		return nil, err
	}
	if parent.ThreadID != threadID {
		return nil, ErrUnknownParent
	}

	path := make([]string, 0, len(parent.Path)+1)
	path = append(path, parent.Path...)
	path = append(path, parent.ID)
	if len(path) > maxDepth {
		return nil, ErrDepthExceeded
	}
	return path, nil
}
