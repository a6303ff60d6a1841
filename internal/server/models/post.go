package models

import "time"

// Post is a content row. NumberOfShares is computed by queries joining
// shared_posts and is not stored on the row itself.
type Post struct {
	ID             string
	AuthorID       string
	Description    string
	CreatedOn      time.Time
	UpdatedAt      time.Time
	NumberOfShares int64
}

// SharedPost records that a post was shared with a user.
type SharedPost struct {
	ID     string
	PostID string
	UserID string
}

// SharedPostView is a post shared with the caller, joined with its author.
type SharedPostView struct {
	PostID          string
	Description     string
	CreatedOn       time.Time
	AuthorID        string
	AuthorFirstName string
	AuthorLastName  string
}

// PostSearchResult is a search hit joined with its author.
type PostSearchResult struct {
	ID              string
	Description     string
	CreatedOn       time.Time
	AuthorID        string
	AuthorFirstName string
	AuthorLastName  string
}
