package model

import "time"

// Band is a performing act owned by an artist account.
type Band struct {
	BandID    string    `json:"bandID" validate:"required"`
	OwnerID   string    `json:"ownerID" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Genre     string    `json:"genre"`
	Members   []string  `json:"members"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Setlist is an ordered list of songs a band plays.
type Setlist struct {
	SetListID string    `json:"setListID" validate:"required"`
	OwnerID   string    `json:"ownerID" validate:"required"`
	Name      string    `json:"name" validate:"required"`
	Songs     []string  `json:"songs"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Venue is a place where performances happen. Venues are shared across
// accounts.
type Venue struct {
	VenueID       string    `json:"venueId" validate:"required"`
	Name          string    `json:"name" validate:"required"`
	City          string    `json:"city"`
	State         string    `json:"state"`
	StreetAddress string    `json:"streetAddress"`
	Zip           string    `json:"zip"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// User is an artist account admitted through early access.
type User struct {
	UserID      string    `json:"userID" validate:"required"`
	Email       string    `json:"email" validate:"required,email"`
	DisplayName string    `json:"displayName" validate:"required"`
	ArtistName  string    `json:"artistName"`
	AccessCode  string    `json:"accessCode"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

// Post is an entry in the social feed, optionally carrying an audio track.
type Post struct {
	PostID    string    `json:"postID" validate:"required"`
	AuthorID  string    `json:"authorID" validate:"required"`
	Body      string    `json:"body"`
	AudioURL  string    `json:"audioURL"`
	Status    Status    `json:"status" validate:"required,oneof=active inactive previous"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Comment belongs to a post.
type Comment struct {
	CommentID string    `json:"commentID" validate:"required"`
	PostID    string    `json:"postID" validate:"required"`
	AuthorID  string    `json:"authorID" validate:"required"`
	Body      string    `json:"body" validate:"required"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PostView is a post with its author's display name resolved.
type PostView struct {
	Post

	AuthorName string `json:"authorName"`
}

// CommentView is a comment with its author's display name resolved.
type CommentView struct {
	Comment

	AuthorName string `json:"authorName"`
}
