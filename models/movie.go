package models

import (
	"time"

	"github.com/google/uuid"
)

// Movie is the locally persisted record for one externally sourced title.
// TmdbID is the stable join key between cache, storage, and provider calls;
// ID is an internal surrogate and never leaves the database layer's control.
type Movie struct {
	ID           string     `json:"id"`
	TmdbID       int        `json:"tmdbId"`
	Title        string     `json:"title"`
	VoteAverage  float64    `json:"voteAverage"`
	PosterPath   string     `json:"posterPath,omitempty"`
	ReleaseDate  string     `json:"releaseDate,omitempty"`
	MediaType    MediaType  `json:"mediaType"`
	LikeCount    int        `json:"likeCount"`
	DislikeCount int        `json:"dislikeCount"`
	Genres       []Genre    `json:"genres,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// NewMovie creates a movie record with a fresh internal ID.
func NewMovie(tmdbID int, title string, voteAverage float64, posterPath, releaseDate string, mediaType MediaType) *Movie {
	now := time.Now().UTC()
	return &Movie{
		ID:          uuid.NewString(),
		TmdbID:      tmdbID,
		Title:       title,
		VoteAverage: voteAverage,
		PosterPath:  posterPath,
		ReleaseDate: releaseDate,
		MediaType:   mediaType,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// Genre is a named category scoped to a media type. TmdbID is unique per
// media type.
type Genre struct {
	ID        string    `json:"id"`
	TmdbID    int       `json:"tmdbId"`
	Name      string    `json:"name"`
	MediaType MediaType `json:"mediaType"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewGenre creates a genre record with a fresh internal ID.
func NewGenre(tmdbID int, name string, mediaType MediaType) *Genre {
	now := time.Now().UTC()
	return &Genre{
		ID:        uuid.NewString(),
		TmdbID:    tmdbID,
		Name:      name,
		MediaType: mediaType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// MovieItem is one entry in a paginated catalog listing. Interaction flags are
// overlaid per requesting user after the cached payload is read back, so the
// cached copy always carries them as false.
type MovieItem struct {
	TmdbID        int       `json:"tmdbId"`
	Title         string    `json:"title"`
	Overview      string    `json:"overview,omitempty"`
	PosterPath    string    `json:"posterPath,omitempty"`
	BackdropPath  string    `json:"backdropPath,omitempty"`
	ReleaseDate   string    `json:"releaseDate,omitempty"`
	VoteAverage   float64   `json:"voteAverage"`
	MediaType     MediaType `json:"mediaType"`
	GenreIDs      []int     `json:"genreIds,omitempty"`
	IsLiked       bool      `json:"isLiked"`
	IsDisliked    bool      `json:"isDisliked"`
	IsWatchlisted bool      `json:"isWatchlisted"`
}

// MovieDetails is the full detail view for one title, optionally expanded with
// credits and videos.
type MovieDetails struct {
	MovieItem
	Tagline      string  `json:"tagline,omitempty"`
	Runtime      int     `json:"runtime,omitempty"`
	Status       string  `json:"status,omitempty"`
	VoteCount    int     `json:"voteCount"`
	LikeCount    int     `json:"likeCount"`
	DislikeCount int     `json:"dislikeCount"`
	Genres       []Genre `json:"genres,omitempty"`
	Cast         []Cast  `json:"cast,omitempty"`
	Videos       []Video `json:"videos,omitempty"`
}

// Cast is one credited cast member.
type Cast struct {
	TmdbID      int    `json:"tmdbId"`
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profilePath,omitempty"`
	Order       int    `json:"order"`
}

// Video is one promotional video attached to a title.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}
