package api

import (
	"net/http"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
)

// FeedHandler handles posts and comments.
type FeedHandler struct {
	deps FeedDependencies
	log  logger.Logger
}

// NewFeedHandler creates a new feed handler.
func NewFeedHandler(deps FeedDependencies, log logger.Logger) *FeedHandler {
	return &FeedHandler{deps: deps, log: log}
}

// HandleListFeed handles GET /posts.
func (h *FeedHandler) HandleListFeed(w http.ResponseWriter, r *http.Request, _ session.Session) {
	posts, err := h.deps.ListFeed(r.Context())
	if err != nil {
		writeServiceError(w, r, h.log, "api.list_feed", err)
		return
	}
	writeJSON(w, http.StatusOK, list(posts))
}

// HandleCreatePost handles POST /posts.
func (h *FeedHandler) HandleCreatePost(w http.ResponseWriter, r *http.Request, sess session.Session) {
	const op = "api.post_post"
	var in model.PostInput
	if err := decodeBody(w, r, op, &in); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	p, err := h.deps.CreatePost(r.Context(), sess, in)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

// HandleListComments handles GET /posts/{postID}/comments.
func (h *FeedHandler) HandleListComments(w http.ResponseWriter, r *http.Request, _ session.Session) {
	comments, err := h.deps.ListComments(r.Context(), r.PathValue("postID"))
	if err != nil {
		writeServiceError(w, r, h.log, "api.list_comments", err)
		return
	}
	writeJSON(w, http.StatusOK, list(comments))
}

// HandleAddComment handles POST /posts/{postID}/comments.
func (h *FeedHandler) HandleAddComment(w http.ResponseWriter, r *http.Request, sess session.Session) {
	const op = "api.post_comment"
	var in model.CommentInput
	if err := decodeBody(w, r, op, &in); err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	c, err := h.deps.AddComment(r.Context(), sess, r.PathValue("postID"), in)
	if err != nil {
		writeServiceError(w, r, h.log, op, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}
