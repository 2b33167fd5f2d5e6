package service

import (
	"context"
	"errors"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/adapters/repository"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/logger"
	"github.com/Allen-Young-Org/gybscript-sub001/pkg/metrics"
)

// Register admits a new artist account. With access codes configured, the
// input must carry one of them.
func (s *Service) Register(ctx context.Context, in model.RegisterInput) (model.User, error) {
	const op = "service.register"
	if err := model.Validate(in); err != nil {
		metrics.RecordRegistration("invalid")
		return model.User{}, types.Op(op, types.ErrValidation, err)
	}
	if len(s.accessCodes) > 0 {
		if _, ok := s.accessCodes[in.AccessCode]; !ok {
			metrics.RecordRegistration("denied")
			return model.User{}, types.Op(op, types.ErrAccessDenied, nil)
		}
	}

	now := s.now()
	u := model.User{
		UserID:      s.newKey(),
		Email:       in.Email,
		DisplayName: in.DisplayName,
		ArtistName:  in.ArtistName,
		AccessCode:  in.AccessCode,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Users.Create(ctx, u); err != nil {
		if errors.Is(err, types.ErrConflict) {
			metrics.RecordRegistration("conflict")
		} else {
			metrics.RecordRegistration("error")
		}
		return model.User{}, backendErr(ctx, op, err)
	}
	metrics.RecordRegistration("created")
	s.log().Info(ctx, "user registered", logger.String("userID", u.UserID))
	u.Email = repository.NormalizeEmail(u.Email)
	// The code is kept on record but never handed back.
	u.AccessCode = ""
	return u, nil
}

// SignIn opens a session for the account registered with the email. The
// hosted identity provider has already proven who the caller is.
func (s *Service) SignIn(ctx context.Context, in model.SignInInput) (session.Session, error) {
	const op = "service.sign_in"
	if err := model.Validate(in); err != nil {
		return session.Session{}, types.Op(op, types.ErrValidation, err)
	}
	u, err := s.repo.Users.ByEmail(ctx, in.Email)
	if errors.Is(err, types.ErrNotFound) {
		return session.Session{}, types.Op(op, types.ErrUnauthorized, nil)
	}
	if err != nil {
		return session.Session{}, backendErr(ctx, op, err)
	}
	sess := session.New(u.UserID, u.Email, u.DisplayName, s.now(), s.sessionTTL)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return session.Session{}, backendErr(ctx, op, err)
	}
	metrics.SessionOpened()
	s.log().Info(ctx, "session opened", logger.String("userID", u.UserID))
	return sess, nil
}

// SignOut clears the session for token. Signing out twice is not an error.
func (s *Service) SignOut(ctx context.Context, token string) error {
	const op = "service.sign_out"
	_, err := s.sessions.Get(ctx, token)
	switch {
	case errors.Is(err, session.ErrNotFound):
		return nil
	case err != nil && !errors.Is(err, session.ErrExpired):
		return backendErr(ctx, op, err)
	}
	if err := s.sessions.Delete(ctx, token); err != nil {
		return backendErr(ctx, op, err)
	}
	metrics.SessionClosed()
	return nil
}

// Authenticate returns the live session for token.
func (s *Service) Authenticate(ctx context.Context, token string) (session.Session, error) {
	const op = "service.authenticate"
	if token == "" {
		return session.Session{}, types.Op(op, types.ErrUnauthorized, nil)
	}
	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrExpired) {
		return session.Session{}, types.Op(op, types.ErrUnauthorized, err)
	}
	if err != nil {
		return session.Session{}, backendErr(ctx, op, err)
	}
	return sess, nil
}
