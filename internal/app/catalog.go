package service

import (
	"context"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/session"
)

// CreateBand stores a band owned by the session's user.
func (s *Service) CreateBand(ctx context.Context, sess session.Session, in model.BandInput) (model.Band, error) {
	const op = "service.create_band"
	if err := model.Validate(in); err != nil {
		return model.Band{}, types.Op(op, types.ErrValidation, err)
	}
	now := s.now()
	b := model.Band{
		BandID:    s.newKey(),
		OwnerID:   sess.UserID,
		Name:      in.Name,
		Genre:     in.Genre,
		Members:   in.Members,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Bands.Create(ctx, b); err != nil {
		return model.Band{}, backendErr(ctx, op, err)
	}
	return b, nil
}

// ListBands returns the session user's bands.
func (s *Service) ListBands(ctx context.Context, sess session.Session) ([]model.Band, error) {
	bands, err := s.repo.Bands.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, backendErr(ctx, "service.list_bands", err)
	}
	return bands, nil
}

// GetBand returns one of the session user's bands. Other users' bands are
// reported as not found.
func (s *Service) GetBand(ctx context.Context, sess session.Session, bandID string) (model.Band, error) {
	const op = "service.get_band"
	b, err := s.repo.Bands.Get(ctx, bandID)
	if err != nil {
		return model.Band{}, backendErr(ctx, op, err)
	}
	if b.OwnerID != sess.UserID {
		return model.Band{}, types.Op(op, types.ErrNotFound, nil)
	}
	return b, nil
}

// CreateSetlist stores a setlist owned by the session's user.
func (s *Service) CreateSetlist(ctx context.Context, sess session.Session, in model.SetlistInput) (model.Setlist, error) {
	const op = "service.create_setlist"
	if err := model.Validate(in); err != nil {
		return model.Setlist{}, types.Op(op, types.ErrValidation, err)
	}
	now := s.now()
	sl := model.Setlist{
		SetListID: s.newKey(),
		OwnerID:   sess.UserID,
		Name:      in.Name,
		Songs:     in.Songs,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.Setlists.Create(ctx, sl); err != nil {
		return model.Setlist{}, backendErr(ctx, op, err)
	}
	return sl, nil
}

// ListSetlists returns the session user's setlists.
func (s *Service) ListSetlists(ctx context.Context, sess session.Session) ([]model.Setlist, error) {
	sls, err := s.repo.Setlists.ListByOwner(ctx, sess.UserID)
	if err != nil {
		return nil, backendErr(ctx, "service.list_setlists", err)
	}
	return sls, nil
}

// GetSetlist returns one of the session user's setlists.
func (s *Service) GetSetlist(ctx context.Context, sess session.Session, setListID string) (model.Setlist, error) {
	const op = "service.get_setlist"
	sl, err := s.repo.Setlists.Get(ctx, setListID)
	if err != nil {
		return model.Setlist{}, backendErr(ctx, op, err)
	}
	if sl.OwnerID != sess.UserID {
		return model.Setlist{}, types.Op(op, types.ErrNotFound, nil)
	}
	return sl, nil
}

// CreateVenue stores a venue. Venues are shared by every account.
func (s *Service) CreateVenue(ctx context.Context, in model.VenueInput) (model.Venue, error) {
	const op = "service.create_venue"
	if err := model.Validate(in); err != nil {
		return model.Venue{}, types.Op(op, types.ErrValidation, err)
	}
	now := s.now()
	v := model.Venue{
		VenueID:       s.newKey(),
		Name:          in.Name,
		City:          in.City,
		State:         in.State,
		StreetAddress: in.StreetAddress,
		Zip:           in.Zip,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.repo.Venues.Create(ctx, v); err != nil {
		return model.Venue{}, backendErr(ctx, op, err)
	}
	return v, nil
}

// ListVenues returns every venue.
func (s *Service) ListVenues(ctx context.Context) ([]model.Venue, error) {
	vs, err := s.repo.Venues.List(ctx)
	if err != nil {
		return nil, backendErr(ctx, "service.list_venues", err)
	}
	return vs, nil
}

// GetVenue returns one venue.
func (s *Service) GetVenue(ctx context.Context, venueID string) (model.Venue, error) {
	v, err := s.repo.Venues.Get(ctx, venueID)
	if err != nil {
		return model.Venue{}, backendErr(ctx, "service.get_venue", err)
	}
	return v, nil
}
