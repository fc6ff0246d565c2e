package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/example/discussion-service/internal/cache"
	"github.com/example/discussion-service/internal/events"
	"github.com/example/discussion-service/internal/platform/api"
	"github.com/example/discussion-service/internal/platform/auth"
	"github.com/example/discussion-service/internal/platform/httpserver"
	"github.com/example/discussion-service/internal/store"
)

// Moderation handlers assume auth.RequireModerator already gated the route;
// they perform no authorization of their own.

type spoilerRequest struct {
	IsSpoiler *bool `json:"is_spoiler"`
}

type spoilerResponse struct {
	IsSpoiler bool `json:"is_spoiler"`
}

type okResponse struct {
	OK bool `json:"ok"`
}

type threadsResponse struct {
	Threads []store.ThreadSummary `json:"threads"`
}

// DeleteComment handles DELETE /v1/comments/{comment_id}. The removal is
// permanent and does NOT cascade: replies keep their rows and surface as
// roots in subsequent tree builds.
func DeleteComment(cs store.CommentStore, pub *events.Publisher, tc *cache.ThreadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", rid, nil)
			return
		}

		removed, err := cs.DeleteByID(r.Context(), commentID)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}

		tc.Invalidate(r.Context(), removed.ThreadID)
		id, _ := auth.IdentityFromContext(r.Context())
		pub.Publish(events.SubjectCommentDeleted, events.Event{
			ThreadID:  removed.ThreadID,
			CommentID: removed.ID,
			ActorID:   id.UserID,
		})
		api.WriteJSON(w, http.StatusOK, okResponse{OK: true})
	}
}

// ToggleSpoiler handles PATCH /v1/comments/{comment_id}.
func ToggleSpoiler(cs store.CommentStore, pub *events.Publisher, tc *cache.ThreadCache) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		commentID := strings.TrimSpace(chi.URLParam(r, "comment_id"))
		if commentID == "" {
			api.BadRequest(w, "MISSING_ID", "comment_id is required", rid, nil)
			return
		}

		var req spoilerRequest
		if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(&req); err != nil {
			api.BadRequest(w, "INVALID_JSON", "invalid JSON", rid, nil)
			return
		}
		if req.IsSpoiler == nil {
			api.BadRequest(w, "MISSING_FLAG", "is_spoiler is required", rid, nil)
			return
		}

		updated, err := cs.SetSpoiler(r.Context(), commentID, *req.IsSpoiler)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				api.NotFound(w, "NOT_FOUND", "comment not found", rid)
				return
			}
			api.Internal(w, rid)
			return
		}

		tc.Invalidate(r.Context(), updated.ThreadID)
		id, _ := auth.IdentityFromContext(r.Context())
		pub.Publish(events.SubjectCommentFlagged, events.Event{
			ThreadID:  updated.ThreadID,
			CommentID: updated.ID,
			ActorID:   id.UserID,
			Properties: map[string]any{
				"is_spoiler": updated.IsSpoiler,
			},
		})
		api.WriteJSON(w, http.StatusOK, spoilerResponse{IsSpoiler: updated.IsSpoiler})
	}
}

// ListThreads handles GET /v1/threads: the moderation console's index of
// every thread with a comment count and last activity time.
func ListThreads(cs store.CommentStore) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rid := httpserver.RequestIDFromContext(r.Context())

		threads, err := cs.ThreadSummaries(r.Context())
		if err != nil {
			api.Internal(w, rid)
			return
		}
		api.WriteJSON(w, http.StatusOK, threadsResponse{Threads: threads})
	}
}
