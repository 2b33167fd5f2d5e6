package model

// RegisterInput is an early-access registration request.
type RegisterInput struct {
	Email       string `json:"email" validate:"required,email"`
	DisplayName string `json:"displayName" validate:"required,max=80"`
	ArtistName  string `json:"artistName" validate:"max=80"`
	AccessCode  string `json:"accessCode"`
}

// SignInInput starts a session for an already-verified identity.
type SignInInput struct {
	Email string `json:"email" validate:"required,email"`
}

// BandInput creates a band.
type BandInput struct {
	Name    string   `json:"name" validate:"required,max=120"`
	Genre   string   `json:"genre"`
	Members []string `json:"members"`
}

// SetlistInput creates a setlist.
type SetlistInput struct {
	Name  string   `json:"name" validate:"required,max=120"`
	Songs []string `json:"songs"`
}

// VenueInput creates a venue.
type VenueInput struct {
	Name          string `json:"name" validate:"required,max=120"`
	City          string `json:"city"`
	State         string `json:"state"`
	StreetAddress string `json:"streetAddress"`
	Zip           string `json:"zip"`
}

// PerformanceInput creates a performance. Status defaults to active.
type PerformanceInput struct {
	Name      string `json:"name" validate:"required,max=120"`
	EventType string `json:"eventType"`
	Date      string `json:"date"`
	Band      string `json:"band"`
	SetList   string `json:"setList"`
	VenueID   string `json:"venueId"`
	Status    Status `json:"status" validate:"omitempty,oneof=active inactive previous"`
}

// PostInput creates a feed post.
type PostInput struct {
	Body     string `json:"body" validate:"required_without=AudioURL,max=2000"`
	AudioURL string `json:"audioURL" validate:"omitempty,url"`
}

// CommentInput adds a comment to a post.
type CommentInput struct {
	Body string `json:"body" validate:"required,max=1000"`
}

// MutationResult reports how many records a mutation touched.
type MutationResult struct {
	Matched int `json:"matched"`
}
