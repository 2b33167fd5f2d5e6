// Package aggregate joins performances with the lookup tables built for
// their band, setlist and venue references.
package aggregate

import (
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/model"
	"github.com/Allen-Young-Org/gybscript-sub001/internal/domain/resolve"
)

// Display defaults for references that did not resolve.
const (
	UnknownBand  = "Unknown Band"
	UnknownSet   = "Unknown Set"
	UnknownVenue = "Unknown Venue"
	UnknownCity  = "Unknown City"
	UnknownState = "Unknown State"
)

// Tables bundles the three lookup tables a join needs. All three must be
// complete before Join is called.
type Tables struct {
	Bands    resolve.LookupTable[model.Band]
	Setlists resolve.LookupTable[model.Setlist]
	Venues   resolve.LookupTable[model.Venue]
}

// Join returns one view per performance, in input order. It does no I/O and
// keeps no state; nil tables behave as empty ones.
func Join(perfs []model.Performance, t Tables) []model.PerformanceView {
	out := make([]model.PerformanceView, len(perfs))
	for i, p := range perfs {
		v := model.PerformanceView{
			Performance: p,
			BandName:    UnknownBand,
			SetListName: UnknownSet,
			VenueName:   UnknownVenue,
			City:        UnknownCity,
			State:       UnknownState,
		}
		if b, ok := t.Bands.Lookup(p.Band); ok {
			v.BandName = b.Name
		}
		if s, ok := t.Setlists.Lookup(p.SetList); ok {
			v.SetListName = s.Name
		}
		if venue, ok := t.Venues.Lookup(p.VenueID); ok {
			v.VenueName = venue.Name
			v.City = venue.City
			v.State = venue.State
			v.StreetAddress = venue.StreetAddress
			v.Zip = venue.Zip
		}
		out[i] = v
	}
	return out
}

// JoinAuthors attaches author display names to posts. Unknown authors keep
// an empty name.
func JoinAuthors(posts []model.Post, users resolve.LookupTable[model.User]) []model.PostView {
	out := make([]model.PostView, len(posts))
	for i, p := range posts {
		out[i] = model.PostView{Post: p}
		if u, ok := users.Lookup(p.AuthorID); ok {
			out[i].AuthorName = u.DisplayName
		}
	}
	return out
}

// JoinCommentAuthors attaches author display names to comments.
func JoinCommentAuthors(comments []model.Comment, users resolve.LookupTable[model.User]) []model.CommentView {
	out := make([]model.CommentView, len(comments))
	for i, c := range comments {
		out[i] = model.CommentView{Comment: c}
		if u, ok := users.Lookup(c.AuthorID); ok {
			out[i].AuthorName = u.DisplayName
		}
	}
	return out
}
