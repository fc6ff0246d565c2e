package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/discussion-service/internal/cache"
	"github.com/example/discussion-service/internal/events"
	"github.com/example/discussion-service/internal/platform/api"
	"github.com/example/discussion-service/internal/platform/auth"
	"github.com/example/discussion-service/internal/platform/httpserver"
	"github.com/example/discussion-service/internal/store"
	"github.com/example/discussion-service/internal/thread"
)

type postCommentRequest struct {
	Body     string  `json:"body"`
	ParentID *string `json:"parent_id,omitempty"`
}

type voteRequest struct {
	CommentID string `json:"comment_id"`
	Direction int    `json:"direction"`
}

type commentResponse struct {
	Comment store.Comment `json:"comment"`
}

type threadResponse struct {
	Comments []store.Comment `json:"comments"`
}

type treeResponse struct {
	Comments []*thread.Node `json:"comments"`
}

// GetThread handles GET /v1/threads/{thread_id}/comments.
// The default response is the flat path-ordered listing; nested=true runs
// the tree builder server-side and returns the reply forest instead.
func GetThread(cs store.CommentStore, tc *cache.ThreadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		threadID := strings.TrimSpace(chi.URLParam(r, "thread_id"))
		if threadID == "" {
			api.BadRequest(w, "MISSING_ID", "thread_id is required", rid, nil)
			return
		}

		limit := 0
		if l := r.URL.Query().Get("limit"); l != "" {
			if parsed, err := strconv.Atoi(l); err == nil {
				limit = parsed
			}
		}
		limit = store.ClampLimit(limit)

		nested, _ := strconv.ParseBool(r.URL.Query().Get("nested"))
		if nested {
			comments, err := cs.ListByThread(r.Context(), threadID, limit)
			if err != nil {
				api.Internal(w, rid)
				return
			}
			api.WriteJSON(w, http.StatusOK, treeResponse{Comments: thread.BuildTree(comments)})
			return
		}

		if comments, ok := tc.Get(r.Context(), threadID, limit); ok {
			api.WriteJSON(w, http.StatusOK, threadResponse{Comments: comments})
			return
		}

		comments, err := cs.ListByThread(r.Context(), threadID, limit)
		if err != nil {
			api.Internal(w, rid)
			return
		}
		tc.Set(r.Context(), threadID, limit, comments)
		api.WriteJSON(w, http.StatusOK, threadResponse{Comments: comments})
	}
}

// PostComment handles POST /v1/threads/{thread_id}/comments.
func PostComment(cs store.CommentStore, pub *events.Publisher, tc *cache.ThreadCache, maxDepth int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", rid)
			return
		}

		threadID := strings.TrimSpace(chi.URLParam(r, "thread_id"))
		if threadID == "" {
			api.BadRequest(w, "MISSING_ID", "thread_id is required", rid, nil)
			return
		}

		var req postCommentRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", rid, nil)
			return
		}

		body, err := store.NormalizeBody(req.Body)
		if err != nil {
			api.BadRequest(w, "INVALID_BODY", err.Error(), rid, nil)
			return
		}

		path, err := thread.Resolve(r.Context(), cs, threadID, req.ParentID, maxDepth)
		switch {
		case errors.Is(err, thread.ErrUnknownParent):
			api.NotFound(w, "INVALID_PARENT", "parent comment not found in this thread", rid)
			return
		case errors.Is(err, thread.ErrDepthExceeded):
			api.Conflict(w, "DEPTH_EXCEEDED", "reply nesting is too deep", rid, nil)
			return
		case err != nil:
			api.Internal(w, rid)
			return
		}

		c := store.Comment{
			ThreadID:     threadID,
			ParentID:     req.ParentID,
			Path:         path,
			Body:         body,
			AuthorID:     id.UserID,
			AuthorName:   id.Name,
			AuthorAvatar: id.Avatar,
		}

		created, err := cs.Insert(r.Context(), c)
		if err != nil {
			if errors.Is(err, store.ErrBodyInvalid) {
				api.BadRequest(w, "INVALID_BODY", err.Error(), rid, nil)
				return
			}
			api.Internal(w, rid)
			return
		}

		tc.Invalidate(r.Context(), threadID)
		pub.Publish(events.SubjectCommentCreated, events.Event{
			ThreadID:  created.ThreadID,
			CommentID: created.ID,
			ActorID:   id.UserID,
		})
		api.WriteJSON(w, http.StatusCreated, commentResponse{Comment: created})
	}
}

// CastVote handles POST /v1/votes. Direction 1 and -1 set the caller's vote,
// 0 clears it; repeating the same direction is a no-op.
func CastVote(cs store.CommentStore, pub *events.Publisher, tc *cache.ThreadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		id, ok := auth.IdentityFromContext(r.Context())
		if !ok {
			api.Unauthorized(w, "UNAUTHORIZED", "authentication required", rid)
			return
		}

		var req voteRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", rid, nil)
			return
		}
		req.CommentID = strings.TrimSpace(req.CommentID)
		if req.CommentID == "" {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", rid, nil)
			return
		}
		if !store.ValidVote(req.Direction) {
			api.BadRequest(w, "INVALID_VOTE", "direction must be -1, 0, or 1", rid, nil)
			return
		}

		updated, err := cs.CastVote(r.Context(), req.CommentID, id.UserID, req.Direction)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}

		tc.Invalidate(r.Context(), updated.ThreadID)
		pub.Publish(events.SubjectCommentVoted, events.Event{
			ThreadID:  updated.ThreadID,
			CommentID: updated.ID,
			ActorID:   id.UserID,
			Properties: map[string]any{
				"direction": req.Direction,
				"score":     updated.Score,
			},
		})
		api.WriteJSON(w, http.StatusOK, commentResponse{Comment: updated})
	}
}
