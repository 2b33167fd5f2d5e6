package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/Allen-Young-Org/gybscript-sub001/internal/adapters/docstore"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/types"
)

// Repository groups the typed collections of the portal.
type Repository struct {
	store docstore.Store

	Performances *Performances
	Bands        *Bands
	Setlists     *Setlists
	Venues       *Venues
	Users        *Users
	Posts        *Posts
	Comments     *Comments
}

// New builds the repositories over store.
func New(store docstore.Store) *Repository {
	return &Repository{
		store: store,
		Performances: &Performances{t: table[model.Performance]{
			store: store, name: CollPerformances, keyField: "performanceID",
			keyOf: func(p model.Performance) string { return p.PerformanceID },
		}},
		Bands: &Bands{t: table[model.Band]{
			store: store, name: CollBands, keyField: "bandID",
			keyOf: func(b model.Band) string { return b.BandID },
		}},
		Setlists: &Setlists{t: table[model.Setlist]{
			store: store, name: CollSetlists, keyField: "setListID",
			keyOf: func(s model.Setlist) string { return s.SetListID },
		}},
		Venues: &Venues{t: table[model.Venue]{
			store: store, name: CollVenues, keyField: "venueId",
			keyOf: func(v model.Venue) string { return v.VenueID },
		}},
		Users: &Users{
			store: store,
			t: table[model.User]{
				store: store, name: CollUsers, keyField: "userID",
				keyOf: func(u model.User) string { return u.UserID },
			},
		},
		Posts: &Posts{t: table[model.Post]{
			store: store, name: CollPosts, keyField: "postID",
			keyOf: func(p model.Post) string { return p.PostID },
		}},
		Comments: &Comments{t: table[model.Comment]{
			store: store, name: CollComments, keyField: "commentID",
			keyOf: func(c model.Comment) string { return c.CommentID },
		}},
	}
}

// Close releases the underlying store.
func (r *Repository) Close() error { return r.store.Close() }

// Performances is the performance collection.
type Performances struct{ t table[model.Performance] }

// Create stores p.
func (r *Performances) Create(ctx context.Context, p model.Performance) error {
	return r.t.insert(ctx, p)
}

// ListByOwner returns the owner's performances in the given status.
func (r *Performances) ListByOwner(ctx context.Context, ownerID string, status model.Status) ([]model.Performance, error) {
	return r.t.find(ctx, docstore.Eq("ownerID", ownerID), docstore.Eq("status", string(status)))
}

// Get returns one performance by key.
func (r *Performances) Get(ctx context.Context, performanceID string) (model.Performance, error) {
	return r.t.get(ctx, performanceID)
}

// SoftDelete marks every record carrying performanceID inactive and stamps
// updatedAt with the store's time. It reports how many records matched.
func (r *Performances) SoftDelete(ctx context.Context, performanceID string) (int, error) {
	n, err := r.t.store.Update(ctx, CollPerformances, docstore.Eq("performanceID", performanceID), docstore.Patch{
		"status":    string(model.StatusInactive),
		"updatedAt": docstore.ServerTimestamp,
	})
	if err != nil {
		return 0, storeErr("repository.soft_delete_performance", CollPerformances, err)
	}
	return n, nil
}

// Bands is the band collection.
type Bands struct{ t table[model.Band] }

// Create stores b.
func (r *Bands) Create(ctx context.Context, b model.Band) error { return r.t.insert(ctx, b) }

// ListByOwner returns the owner's bands.
func (r *Bands) ListByOwner(ctx context.Context, ownerID string) ([]model.Band, error) {
	return r.t.find(ctx, docstore.Eq("ownerID", ownerID))
}

// Get returns one band by key.
func (r *Bands) Get(ctx context.Context, bandID string) (model.Band, error) {
	return r.t.get(ctx, bandID)
}

// ByKeys loads the bands with the given keys in one query.
func (r *Bands) ByKeys(ctx context.Context, keys []string) ([]model.Band, error) {
	return r.t.byKeys(ctx, keys)
}

// Setlists is the setlist collection.
type Setlists struct{ t table[model.Setlist] }

// Create stores s.
func (r *Setlists) Create(ctx context.Context, s model.Setlist) error { return r.t.insert(ctx, s) }

// ListByOwner returns the owner's setlists.
func (r *Setlists) ListByOwner(ctx context.Context, ownerID string) ([]model.Setlist, error) {
	return r.t.find(ctx, docstore.Eq("ownerID", ownerID))
}

// Get returns one setlist by key.
func (r *Setlists) Get(ctx context.Context, setListID string) (model.Setlist, error) {
	return r.t.get(ctx, setListID)
}

// ByKeys loads the setlists with the given keys in one query.
func (r *Setlists) ByKeys(ctx context.Context, keys []string) ([]model.Setlist, error) {
	return r.t.byKeys(ctx, keys)
}

// Venues is the shared venue collection.
type Venues struct{ t table[model.Venue] }

// Create stores v.
func (r *Venues) Create(ctx context.Context, v model.Venue) error { return r.t.insert(ctx, v) }

// List returns every venue.
func (r *Venues) List(ctx context.Context) ([]model.Venue, error) { return r.t.find(ctx) }

// Get returns one venue by key.
func (r *Venues) Get(ctx context.Context, venueID string) (model.Venue, error) {
	return r.t.get(ctx, venueID)
}

// ByKeys loads the venues with the given keys in one query.
func (r *Venues) ByKeys(ctx context.Context, keys []string) ([]model.Venue, error) {
	return r.t.byKeys(ctx, keys)
}

// Users is the account collection. Email uniqueness is held by a claim
// document keyed by the normalised address.
type Users struct {
	store docstore.Store
	t     table[model.User]
}

// NormalizeEmail lower-cases and trims an address.
func NormalizeEmail(email string) string { return strings.ToLower(strings.TrimSpace(email)) }

// Create claims the user's email and stores u. A taken email is a conflict.
// When the user cannot be stored the claim is released so the address can
// register again.
func (r *Users) Create(ctx context.Context, u model.User) error {
	email := NormalizeEmail(u.Email)
	if _, err := r.store.Insert(ctx, CollUserEmails, email, map[string]any{"email": email, "userID": u.UserID}); err != nil {
		return storeErr("repository.claim_email", CollUserEmails, err)
	}
	u.Email = email
	err := r.t.insert(ctx, u)
	if err == nil {
		return nil
	}
	// The request may already be cancelled; the release must still run.
	if _, derr := r.store.Delete(context.WithoutCancel(ctx), CollUserEmails, docstore.Eq("userID", u.UserID)); derr != nil {
		return errors.Join(err, storeErr("repository.release_email", CollUserEmails, derr))
	}
	return err
}

// ByEmail returns the account registered with email.
func (r *Users) ByEmail(ctx context.Context, email string) (model.User, error) {
	found, err := r.t.find(ctx, docstore.Eq("email", NormalizeEmail(email)))
	if err != nil {
		return model.User{}, err
	}
	if len(found) == 0 {
		return model.User{}, types.Op("repository.user_by_email", types.ErrNotFound, nil)
	}
	return found[0], nil
}

// Get returns one user by key.
func (r *Users) Get(ctx context.Context, userID string) (model.User, error) {
	return r.t.get(ctx, userID)
}

// ByKeys loads the users with the given keys in one query.
func (r *Users) ByKeys(ctx context.Context, keys []string) ([]model.User, error) {
	return r.t.byKeys(ctx, keys)
}

// Posts is the feed collection.
type Posts struct{ t table[model.Post] }

// Create stores p.
func (r *Posts) Create(ctx context.Context, p model.Post) error { return r.t.insert(ctx, p) }

// ListActive returns active posts, newest first.
func (r *Posts) ListActive(ctx context.Context) ([]model.Post, error) {
	posts, err := r.t.find(ctx, docstore.Eq("status", string(model.StatusActive)))
	if err != nil {
		return nil, err
	}
	// Keys are ULIDs, so key order is creation order.
	for i, j := 0, len(posts)-1; i < j; i, j = i+1, j-1 {
		posts[i], posts[j] = posts[j], posts[i]
	}
	return posts, nil
}

// Get returns one post by key.
func (r *Posts) Get(ctx context.Context, postID string) (model.Post, error) {
	return r.t.get(ctx, postID)
}

// Comments is the comment collection.
type Comments struct{ t table[model.Comment] }

// Create stores c.
func (r *Comments) Create(ctx context.Context, c model.Comment) error { return r.t.insert(ctx, c) }

// ListByPost returns the comments on postID, oldest first.
func (r *Comments) ListByPost(ctx context.Context, postID string) ([]model.Comment, error) {
	return r.t.find(ctx, docstore.Eq("postID", postID))
}
