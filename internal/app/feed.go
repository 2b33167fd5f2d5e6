package service

import (
	"context"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/aggregate"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/resolve"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
)

// CreatePost publishes a post by the session's user.
func (s *Service) CreatePost(ctx context.Context, sess session.Session, in model.PostInput) (model.Post, error) {
	const op = "service.create_post"
	if err := model.Validate(in); err != nil {
		return model.Post{}, types.Op(op, types.ErrValidation, err)
	}
	now := s.now()
	p := model.Post{
		PostID:    s.newKey(),
		AuthorID:  sess.UserID,
		Body:      in.Body,
		AudioURL:  in.AudioURL,
		Status:    model.StatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Posts.Create(ctx, p); err != nil {
		return model.Post{}, backendErr(ctx, op, err)
	}
	return p, nil
}

// ListFeed returns active posts newest first with author names resolved.
func (s *Service) ListFeed(ctx context.Context) ([]model.PostView, error) {
	const op = "service.list_feed"
	posts, err := s.repo.Posts.ListActive(ctx)
	if err != nil {
		return nil, backendErr(ctx, op, err)
	}
	authors := make([]string, len(posts))
	for i, p := range posts {
		authors[i] = p.AuthorID
	}
	users, err := s.resolveUsers(ctx, authors)
	if err != nil {
		return nil, backendErr(ctx, op, err)
	}
	return aggregate.JoinAuthors(posts, users), nil
}

// AddComment comments on an active post.
func (s *Service) AddComment(ctx context.Context, sess session.Session, postID string, in model.CommentInput) (model.Comment, error) {
	const op = "service.add_comment"
	if err := model.Validate(in); err != nil {
		return model.Comment{}, types.Op(op, types.ErrValidation, err)
	}
	if err := s.activePost(ctx, op, postID); err != nil {
		return model.Comment{}, err
	}
	now := s.now()
	c := model.Comment{
		CommentID: s.newKey(),
		PostID:    postID,
		AuthorID:  sess.UserID,
		Body:      in.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Comments.Create(ctx, c); err != nil {
		return model.Comment{}, backendErr(ctx, op, err)
	}
	return c, nil
}

// ListComments returns a post's comments oldest first with author names.
func (s *Service) ListComments(ctx context.Context, postID string) ([]model.CommentView, error) {
	const op = "service.list_comments"
	if err := s.activePost(ctx, op, postID); err != nil {
		return nil, err
	}
	comments, err := s.repo.Comments.ListByPost(ctx, postID)
	if err != nil {
		return nil, backendErr(ctx, op, err)
	}
	authors := make([]string, len(comments))
	for i, c := range comments {
		authors[i] = c.AuthorID
	}
	users, err := s.resolveUsers(ctx, authors)
	if err != nil {
		return nil, backendErr(ctx, op, err)
	}
	return aggregate.JoinCommentAuthors(comments, users), nil
}

func (s *Service) activePost(ctx context.Context, op, postID string) error {
	p, err := s.repo.Posts.Get(ctx, postID)
	if err != nil {
		return backendErr(ctx, op, err)
	}
	if p.Status != model.StatusActive {
		return types.Op(op, types.ErrNotFound, nil)
	}
	return nil
}

func (s *Service) resolveUsers(ctx context.Context, keys []string) (resolve.LookupTable[model.User], error) {
	return resolve.Resolve(ctx, s.resolver, entityUser, keys, s.repo.Users.ByKeys,
		func(u model.User) string { return u.UserID })
}
