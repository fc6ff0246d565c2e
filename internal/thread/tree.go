package thread

import (
	"github.com/example/discussion-service/internal/store"
)

// Node is a comment with its direct replies, in input order.
type Node struct {
	store.Comment
	Replies []*Node `json:"replies"`
}

// BuildTree reconstructs the reply forest from a flat, thread-scoped comment
// list. It is a pure function of its input: the same list always yields a
// structurally identical forest, and sibling order follows input order.
//
// A comment whose parent is not in the list (deleted between fetch and
// build, or removed by moderation) becomes a root rather than being dropped,
// so one inconsistent row never hides a subtree. Depth is not re-checked
// here; arbitrarily deep chains are tolerated.
func BuildTree(comments []store.Comment) []*Node {
	nodes := make(map[string]*Node, len(comments))
	for i := range comments {
		nodes[comments[i].ID] = &Node{Comment: comments[i], Replies: []*Node{}}
	}

	roots := []*Node{}
	for i := range comments {
		n := nodes[comments[i].ID]
		if pid := comments[i].ParentID; pid != nil {
			if parent, ok := nodes[*pid]; ok && parent != n {
				parent.Replies = append(parent.Replies, n)
				continue
			}
		}
		roots = append(roots, n)
	}
	return roots
}
