package models

import (
	"time"

	"github.com/google/uuid"
)

// UserInteraction tracks one user's relationship to one title, keyed by
// (UserID, TmdbID). Liked and disliked are mutually exclusive; watchlisted is
// independent.
type UserInteraction struct {
	UserID        string    `json:"userId"`
	TmdbID        int       `json:"tmdbId"`
	MediaType     MediaType `json:"mediaType"`
	IsLiked       bool      `json:"isLiked"`
	IsDisliked    bool      `json:"isDisliked"`
	IsWatchlisted bool      `json:"isWatchlisted"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// NewUserInteraction returns a zero-flag interaction for the pair.
func NewUserInteraction(userID string, tmdbID int, mediaType MediaType) *UserInteraction {
	now := time.Now().UTC()
	return &UserInteraction{
		UserID:    userID,
		TmdbID:    tmdbID,
		MediaType: mediaType,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// ToggleLike flips the liked flag, clearing disliked first so the two flags
// are never set together. The returned event is dispatched by the caller
// after the surrounding transaction commits.
func (i *UserInteraction) ToggleLike() InteractionEvent {
	if i.IsDisliked {
		i.IsDisliked = false
	}
	i.IsLiked = !i.IsLiked
	i.UpdatedAt = time.Now().UTC()
	return i.changedEvent(EventLikeToggled)
}

// ToggleDislike is the mirror of ToggleLike for the disliked flag.
func (i *UserInteraction) ToggleDislike() InteractionEvent {
	if i.IsLiked {
		i.IsLiked = false
	}
	i.IsDisliked = !i.IsDisliked
	i.UpdatedAt = time.Now().UTC()
	return i.changedEvent(EventDislikeToggled)
}

// ToggleWatchlist flips the watchlisted flag.
func (i *UserInteraction) ToggleWatchlist() InteractionEvent {
	i.IsWatchlisted = !i.IsWatchlisted
	i.UpdatedAt = time.Now().UTC()
	return i.changedEvent(EventWatchlistToggled)
}

func (i *UserInteraction) changedEvent(kind EventKind) InteractionEvent {
	return InteractionEvent{
		Kind:          kind,
		UserID:        i.UserID,
		TmdbID:        i.TmdbID,
		MediaType:     i.MediaType,
		IsLiked:       i.IsLiked,
		IsDisliked:    i.IsDisliked,
		IsWatchlisted: i.IsWatchlisted,
		OccurredAt:    i.UpdatedAt,
	}
}

// EventKind names a user interaction change for post-commit dispatch.
type EventKind string

const (
	EventLikeToggled      EventKind = "like_toggled"
	EventDislikeToggled   EventKind = "dislike_toggled"
	EventWatchlistToggled EventKind = "watchlist_toggled"
	EventCommentAdded     EventKind = "comment_added"
	EventCommentDeleted   EventKind = "comment_deleted"
)

// InteractionEvent is an outbox entry describing a committed interaction
// change. Mutations return these instead of mutating hidden entity state; the
// service layer dispatches them only after the transaction commits.
type InteractionEvent struct {
	Kind          EventKind `json:"kind"`
	UserID        string    `json:"userId"`
	TmdbID        int       `json:"tmdbId"`
	MediaType     MediaType `json:"mediaType,omitempty"`
	CommentID     string    `json:"commentId,omitempty"`
	IsLiked       bool      `json:"isLiked"`
	IsDisliked    bool      `json:"isDisliked"`
	IsWatchlisted bool      `json:"isWatchlisted"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// Comment is a user's text attached to a title.
type Comment struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	UserID    string    `json:"userId"`
	UserName  string    `json:"userName,omitempty"`
	TmdbID    int       `json:"tmdbId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NewComment creates a comment with a fresh ID.
func NewComment(content, userID string, tmdbID int) *Comment {
	now := time.Now().UTC()
	return &Comment{
		ID:        uuid.NewString(),
		Content:   content,
		UserID:    userID,
		TmdbID:    tmdbID,
		CreatedAt: now,
		UpdatedAt: now,
	}
}
