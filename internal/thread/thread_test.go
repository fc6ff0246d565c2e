package thread

import (
	"context"
	"encoding/json"
	"reflect"
	"strconv"
	"testing"

	"github.com/example/discussion-service/internal/store"
)

func strptr(s string) *string { return &s }

// ─── Resolve ────────────────────────────────────────────────────────────────

func TestResolve_TopLevel(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	path, err := Resolve(context.Background(), s, "ep1", nil, 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(path) != 0 {
		t.Fatalf("expected empty path, got %v", path)
	}
}

func TestResolve_Reply(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	ctx := context.Background()
	parent, _ := s.Insert(ctx, store.Comment{ThreadID: "ep1", AuthorID: "u", Body: "root"})

	path, err := Resolve(ctx, s, "ep1", &parent.ID, 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(path, []string{parent.ID}) {
		t.Fatalf("expected path [%s], got %v", parent.ID, path)
	}
}

func TestResolve_GrandchildPath(t *testing.T) {
	// Replying to X whose path is [A,B] yields [A,B,X].
	s := store.NewInMemoryCommentStore()
	ctx := context.Background()
	x, _ := s.Insert(ctx, store.Comment{ThreadID: "ep1", AuthorID: "u", Path: []string{"A", "B"}, Body: "deep"})

	path, err := Resolve(ctx, s, "ep1", &x.ID, 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if !reflect.DeepEqual(path, []string{"A", "B", x.ID}) {
		t.Fatalf("expected path [A B %s], got %v", x.ID, path)
	}
}

func TestResolve_UnknownParent(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	_, err := Resolve(context.Background(), s, "ep1", strptr("missing"), 0)
	if err != ErrUnknownParent {
		t.Fatalf("expected ErrUnknownParent, got %v", err)
	}
}

func TestResolve_ParentInOtherThread(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	ctx := context.Background()
	parent, _ := s.Insert(ctx, store.Comment{ThreadID: "ep1", AuthorID: "u", Body: "root"})

	_, err := Resolve(ctx, s, "ep2", &parent.ID, 0)
	if err != ErrUnknownParent {
		t.Fatalf("expected ErrUnknownParent for cross-thread parent, got %v", err)
	}
}

func TestResolve_DepthLimit(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	ctx := context.Background()

	// Parent at depth 5: its reply lands exactly on the limit and is allowed.
	atLimit, _ := s.Insert(ctx, store.Comment{ThreadID: "ep1", AuthorID: "u",
		Path: []string{"a", "b", "c", "d", "e"}, Body: "depth 5"})
	path, err := Resolve(ctx, s, "ep1", &atLimit.ID, DefaultMaxDepth)
	if err != nil {
		t.Fatalf("expected reply at max depth to be allowed, got %v", err)
	}
	if len(path) != DefaultMaxDepth {
		t.Fatalf("expected path length %d, got %d", DefaultMaxDepth, len(path))
	}

	// Parent already at the limit: one more level is rejected.
	over, _ := s.Insert(ctx, store.Comment{ThreadID: "ep1", AuthorID: "u",
		Path: []string{"a", "b", "c", "d", "e", "f"}, Body: "depth 6"})
	if _, err := Resolve(ctx, s, "ep1", &over.ID, DefaultMaxDepth); err != ErrDepthExceeded {
		t.Fatalf("expected ErrDepthExceeded, got %v", err)
	}
}

func TestResolve_BlankParentIsTopLevel(t *testing.T) {
	s := store.NewInMemoryCommentStore()
	path, err := Resolve(context.Background(), s, "ep1", strptr("  "), 0)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(path) != 0 {
		t.Fatalf("expected empty path for blank parent id, got %v", path)
	}
}

// ─── BuildTree ──────────────────────────────────────────────────────────────

func flat(id string, parentID *string) store.Comment {
	return store.Comment{ID: id, ThreadID: "ep1", ParentID: parentID, Body: "c-" + id}
}

func TestBuildTree_Nesting(t *testing.T) {
	comments := []store.Comment{
		flat("1", nil),
		flat("2", strptr("1")),
		flat("3", strptr("2")),
		flat("4", nil),
	}

	roots := BuildTree(comments)
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots, got %d", len(roots))
	}
	if roots[0].ID != "1" || roots[1].ID != "4" {
		t.Fatalf("unexpected root order: %s, %s", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Replies) != 1 || roots[0].Replies[0].ID != "2" {
		t.Fatalf("expected 1 to have child 2, got %v", roots[0].Replies)
	}
	if len(roots[0].Replies[0].Replies) != 1 || roots[0].Replies[0].Replies[0].ID != "3" {
		t.Fatal("expected 2 to have child 3")
	}
}

func TestBuildTree_DanglingParentBecomesRoot(t *testing.T) {
	comments := []store.Comment{
		flat("1", nil),
		flat("2", strptr("1")),
		flat("3", strptr("99")),
	}

	roots := BuildTree(comments)
	if len(roots) != 2 {
		t.Fatalf("expected 2 roots (1 and dangling 3), got %d", len(roots))
	}
	if roots[0].ID != "1" || roots[1].ID != "3" {
		t.Fatalf("unexpected roots: %s, %s", roots[0].ID, roots[1].ID)
	}
	if len(roots[0].Replies) != 1 || roots[0].Replies[0].ID != "2" {
		t.Fatal("expected 1 to keep its child 2")
	}
}

func TestBuildTree_SiblingOrderStable(t *testing.T) {
	comments := []store.Comment{
		flat("1", nil),
		flat("2", strptr("1")),
		flat("3", strptr("1")),
		flat("4", strptr("1")),
	}

	roots := BuildTree(comments)
	replies := roots[0].Replies
	if len(replies) != 3 {
		t.Fatalf("expected 3 siblings, got %d", len(replies))
	}
	for i, want := range []string{"2", "3", "4"} {
		if replies[i].ID != want {
			t.Fatalf("sibling %d: expected %s, got %s", i, want, replies[i].ID)
		}
	}
}

func TestBuildTree_Idempotent(t *testing.T) {
	comments := []store.Comment{
		flat("1", nil),
		flat("2", strptr("1")),
		flat("3", strptr("2")),
		flat("4", strptr("1")),
		flat("5", strptr("77")),
	}

	first, _ := json.Marshal(BuildTree(comments))
	second, _ := json.Marshal(BuildTree(comments))
	if string(first) != string(second) {
		t.Fatalf("expected identical trees, got\n%s\nvs\n%s", first, second)
	}
}

func TestBuildTree_Empty(t *testing.T) {
	roots := BuildTree(nil)
	if len(roots) != 0 {
		t.Fatalf("expected no roots, got %d", len(roots))
	}
}

func TestBuildTree_DeepChainTolerated(t *testing.T) {
	// Writes cap depth, but the builder must not assume it.
	comments := []store.Comment{flat("0", nil)}
	for i := 1; i < 50; i++ {
		comments = append(comments, flat(strconv.Itoa(i), strptr(strconv.Itoa(i-1))))
	}

	roots := BuildTree(comments)
	if len(roots) != 1 {
		t.Fatalf("expected single root, got %d", len(roots))
	}
	depth := 0
	for n := roots[0]; len(n.Replies) > 0; n = n.Replies[0] {
		depth++
	}
	if depth != 49 {
		t.Fatalf("expected chain depth 49, got %d", depth)
	}
}
