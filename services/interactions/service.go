// Package interactions implements the write path: like/dislike/watchlist
// toggles and comments, with lazy creation of the referenced catalog title
// and cache invalidation after every commit.
package interactions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"cinehub/internal/database"
	"cinehub/models"
	"cinehub/services/cache"
	"cinehub/services/movies"
	"cinehub/services/tmdb"
)

const defaultPageSize = 20

var (
	// ErrUnauthorized is returned when the acting user has no profile.
	ErrUnauthorized = errors.New("user does not exist")
	// ErrNotOwner is returned when a user tries to delete someone else's comment.
	ErrNotOwner = errors.New("you can only delete your own comments")
	// ErrNotFound is returned for missing comments.
	ErrNotFound = database.ErrCommentNotFound
	// ErrInvalidComment is returned before any database call for empty or
	// oversized comment content.
	ErrInvalidComment = errors.New("comment content must be between 1 and 1000 characters")
)

type detailsProvider interface {
	GetDetails(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool) (*tmdb.MovieDetails, error)
}

var _ detailsProvider = (*tmdb.Client)(nil)

// Service mutates user interaction state.
type Service struct {
	provider detailsProvider
	cache    *cache.Store
	db       *database.DB
}

// NewService creates the interaction service.
func NewService(provider detailsProvider, cacheStore *cache.Store, db *database.DB) *Service {
	return &Service{
		provider: provider,
		cache:    cacheStore,
		db:       db,
	}
}

// ensureMovie guarantees the referenced title exists locally, fetching full
// details from the provider and creating the movie plus genre rows when it
// does not. The creation itself is the store-layer EnsureMovie primitive.
func (s *Service) ensureMovie(ctx context.Context, mediaType models.MediaType, tmdbID int) (*models.Movie, error) {
	movie, err := s.db.Movies.GetByTmdbID(ctx, tmdbID)
	if err == nil {
		return movie, nil
	}
	if !errors.Is(err, database.ErrMovieNotFound) {
		return nil, err
	}

	details, err := s.provider.GetDetails(ctx, mediaType, tmdbID, false)
	if err != nil {
		return nil, fmt.Errorf("fetch details for %s %d: %w", mediaType, tmdbID, err)
	}

	seed := database.MovieSeed{
		TmdbID:      details.ID,
		Title:       details.DisplayTitle(),
		VoteAverage: details.VoteAverage,
		PosterPath:  details.PosterPath,
		ReleaseDate: details.DisplayDate(),
		MediaType:   mediaType,
	}
	for _, g := range details.Genres {
		seed.Genres = append(seed.Genres, database.GenreSeed{TmdbID: g.ID, Name: g.Name})
	}

	return s.db.Movies.EnsureMovie(ctx, seed)
}

// ToggleLike flips the user's liked flag for a title and adjusts the title's
// aggregate counters. Returns the new liked state.
//
// The counter adjustment mirrors the long-standing observed behavior exactly:
// un-liking decrements likes and increments dislikes, liking does the
// reverse. See DESIGN.md before changing this.
func (s *Service) ToggleLike(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int, title string) (bool, error) {
	movie, err := s.ensureMovie(ctx, mediaType, tmdbID)
	if err != nil {
		return false, err
	}

	interaction, err := s.db.Interactions.Get(ctx, userID, movie.TmdbID)
	if errors.Is(err, database.ErrInteractionNotFound) {
		interaction = models.NewUserInteraction(userID, movie.TmdbID, mediaType)
	} else if err != nil {
		return false, err
	}

	wasLiked := interaction.IsLiked
	event := interaction.ToggleLike()

	likeDelta, dislikeDelta := 1, -1
	if wasLiked {
		likeDelta, dislikeDelta = -1, 1
	}

	err = s.db.RunWithRetry(ctx, func(ctx context.Context) error {
		return s.db.WithTx(ctx, func(tx *sql.Tx) error {
			if err := s.db.Interactions.UpsertTx(ctx, tx, interaction); err != nil {
				return err
			}
			return s.db.Movies.AdjustCountersTx(ctx, tx, movie.TmdbID, likeDelta, dislikeDelta)
		})
	})
	if err != nil {
		return false, fmt.Errorf("toggle like %s/%d: %w", userID, tmdbID, err)
	}

	s.afterCommit(mediaType, tmdbID, event)
	return interaction.IsLiked, nil
}

// ToggleDislike flips the user's disliked flag for a title, adjusting only
// the dislike counter. Returns the new disliked state.
func (s *Service) ToggleDislike(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int, title string) (bool, error) {
	movie, err := s.ensureMovie(ctx, mediaType, tmdbID)
	if err != nil {
		return false, err
	}

	interaction, err := s.db.Interactions.Get(ctx, userID, movie.TmdbID)
	if errors.Is(err, database.ErrInteractionNotFound) {
		interaction = models.NewUserInteraction(userID, movie.TmdbID, mediaType)
	} else if err != nil {
		return false, err
	}

	wasDisliked := interaction.IsDisliked
	event := interaction.ToggleDislike()

	dislikeDelta := 1
	if wasDisliked {
		dislikeDelta = -1
	}

	err = s.db.RunWithRetry(ctx, func(ctx context.Context) error {
		return s.db.WithTx(ctx, func(tx *sql.Tx) error {
			if err := s.db.Interactions.UpsertTx(ctx, tx, interaction); err != nil {
				return err
			}
			return s.db.Movies.AdjustCountersTx(ctx, tx, movie.TmdbID, 0, dislikeDelta)
		})
	})
	if err != nil {
		return false, fmt.Errorf("toggle dislike %s/%d: %w", userID, tmdbID, err)
	}

	s.afterCommit(mediaType, tmdbID, event)
	return interaction.IsDisliked, nil
}

// ToggleWatchlist flips the user's watchlisted flag for a title. The acting
// user must have a profile. Returns the new watchlisted state.
func (s *Service) ToggleWatchlist(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int, title string) (bool, error) {
	exists, err := s.db.Users.Exists(ctx, userID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, fmt.Errorf("toggle watchlist for %q: %w", userID, ErrUnauthorized)
	}

	movie, err := s.ensureMovie(ctx, mediaType, tmdbID)
	if err != nil {
		return false, err
	}

	interaction, err := s.db.Interactions.Get(ctx, userID, movie.TmdbID)
	if errors.Is(err, database.ErrInteractionNotFound) {
		interaction = models.NewUserInteraction(userID, movie.TmdbID, mediaType)
	} else if err != nil {
		return false, err
	}

	event := interaction.ToggleWatchlist()

	if err := s.db.Interactions.Upsert(ctx, interaction); err != nil {
		return false, fmt.Errorf("toggle watchlist %s/%d: %w", userID, tmdbID, err)
	}

	s.afterCommit(mediaType, tmdbID, event)
	return interaction.IsWatchlisted, nil
}

// GetUserInteraction returns the user's interaction state for one title. A
// missing row yields a zero-valued state, not an error.
func (s *Service) GetUserInteraction(ctx context.Context, mediaType models.MediaType, userID string, tmdbID int) (models.UserInteraction, error) {
	interaction, err := s.db.Interactions.Get(ctx, userID, tmdbID)
	if errors.Is(err, database.ErrInteractionNotFound) {
		return *models.NewUserInteraction(userID, tmdbID, mediaType), nil
	}
	if err != nil {
		return models.UserInteraction{}, err
	}
	return *interaction, nil
}

// GetUserWatchlist returns one page of the user's watchlisted titles from
// local storage, newest first.
func (s *Service) GetUserWatchlist(ctx context.Context, userID string, page, pageSize int) (models.PagedResult[models.MovieItem], error) {
	page, pageSize = clampPage(page, pageSize)

	watchlist, total, err := s.db.Interactions.Watchlist(ctx, userID, page, pageSize)
	if err != nil {
		return models.PagedResult[models.MovieItem]{}, err
	}

	ids := make([]int, len(watchlist))
	items := make([]models.MovieItem, len(watchlist))
	for i, m := range watchlist {
		ids[i] = m.TmdbID
		items[i] = models.MovieItem{
			TmdbID:        m.TmdbID,
			Title:         m.Title,
			PosterPath:    m.PosterPath,
			ReleaseDate:   m.ReleaseDate,
			VoteAverage:   m.VoteAverage,
			MediaType:     m.MediaType,
			IsWatchlisted: true,
		}
	}

	flags, err := s.db.Interactions.ListForUser(ctx, userID, ids)
	if err != nil {
		return models.PagedResult[models.MovieItem]{}, err
	}
	for i := range items {
		if f, ok := flags[items[i].TmdbID]; ok {
			items[i].IsLiked = f.IsLiked
			items[i].IsDisliked = f.IsDisliked
		}
	}

	return models.NewPagedResult(items, total, page, pageSize), nil
}

// AddComment attaches a comment to a title, creating the title locally first
// when needed.
func (s *Service) AddComment(ctx context.Context, userID string, tmdbID int, content string) (models.Comment, error) {
	if content == "" || len(content) > 1000 {
		return models.Comment{}, ErrInvalidComment
	}

	if _, err := s.ensureMovie(ctx, models.MediaTypeMovie, tmdbID); err != nil {
		return models.Comment{}, err
	}

	comment := models.NewComment(content, userID, tmdbID)
	if err := s.db.Comments.Add(ctx, comment); err != nil {
		return models.Comment{}, err
	}

	s.dispatch(models.InteractionEvent{
		Kind:       models.EventCommentAdded,
		UserID:     userID,
		TmdbID:     tmdbID,
		CommentID:  comment.ID,
		OccurredAt: comment.CreatedAt,
	})
	return *comment, nil
}

// DeleteComment removes a comment. Only the author may delete it.
func (s *Service) DeleteComment(ctx context.Context, commentID string, tmdbID int, userID string) error {
	comment, err := s.db.Comments.GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if comment.UserID != userID {
		return ErrNotOwner
	}

	if err := s.db.Comments.Delete(ctx, commentID); err != nil {
		return err
	}

	s.dispatch(models.InteractionEvent{
		Kind:       models.EventCommentDeleted,
		UserID:     userID,
		TmdbID:     tmdbID,
		CommentID:  commentID,
		OccurredAt: comment.UpdatedAt,
	})
	return nil
}

// GetMovieComments returns one page of a title's comments, newest first.
func (s *Service) GetMovieComments(ctx context.Context, tmdbID, page, pageSize int) (models.PagedResult[models.Comment], error) {
	page, pageSize = clampPage(page, pageSize)

	comments, total, err := s.db.Comments.ListByMovie(ctx, tmdbID, page, pageSize)
	if err != nil {
		return models.PagedResult[models.Comment]{}, err
	}
	return models.NewPagedResult(comments, total, page, pageSize), nil
}

// afterCommit invalidates every cached view of the touched item and then
// dispatches the outbox events. Invalidation happens strictly after the
// transaction commits so a concurrent reader cannot repopulate the cache
// with pre-mutation data.
func (s *Service) afterCommit(mediaType models.MediaType, tmdbID int, events ...models.InteractionEvent) {
	movies.InvalidateItem(s.cache, mediaType, tmdbID)
	s.dispatch(events...)
}

func (s *Service) dispatch(events ...models.InteractionEvent) {
	for _, e := range events {
		log.Printf("[interactions] event %s user=%s tmdb=%d", e.Kind, e.UserID, e.TmdbID)
	}
}

func clampPage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > 100 {
		pageSize = 100
	}
	return page, pageSize
}
