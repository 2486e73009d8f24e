package interactions

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"cinehub/internal/database"
	"cinehub/models"
	"cinehub/services/cache"
	"cinehub/services/tmdb"
)

type fakeDetailsProvider struct {
	details *tmdb.MovieDetails
	calls   int
	err     error
}

func (f *fakeDetailsProvider) GetDetails(ctx context.Context, mediaType models.MediaType, tmdbID int, expand bool) (*tmdb.MovieDetails, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.details, nil
}

func newTestService(t *testing.T) (*Service, *fakeDetailsProvider, *cache.Store, *database.DB) {
	t.Helper()

	badgerDB, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatalf("open badger: %v", err)
	}
	t.Cleanup(func() { badgerDB.Close() })
	store := cache.NewStore(badgerDB, cache.Options{InstanceName: "test:"})

	db, err := database.NewDB(database.Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.Users.EnsureDefaultUser(context.Background()); err != nil {
		t.Fatalf("ensure default user: %v", err)
	}

	provider := &fakeDetailsProvider{details: &tmdb.MovieDetails{
		ID:          603,
		Title:       "The Matrix",
		ReleaseDate: "1999-03-31",
		VoteAverage: 8.2,
		Genres:      []tmdb.GenreResult{{ID: 28, Name: "Action"}},
	}}

	return NewService(provider, store, db), provider, store, db
}

func TestToggleLikeCreatesMovieAndAdjustsCounters(t *testing.T) {
	service, provider, _, db := newTestService(t)
	ctx := context.Background()

	liked, err := service.ToggleLike(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, "The Matrix")
	if err != nil {
		t.Fatalf("toggle like: %v", err)
	}
	if !liked {
		t.Fatalf("expected liked state after first toggle")
	}
	if provider.calls != 1 {
		t.Fatalf("expected one provider fetch for the unseen title, got %d", provider.calls)
	}

	movie, err := db.Movies.GetByTmdbID(ctx, 603)
	if err != nil {
		t.Fatalf("movie should exist after toggle: %v", err)
	}
	if movie.LikeCount != 1 || movie.DislikeCount != -1 {
		t.Fatalf("unexpected counters after like: likes=%d dislikes=%d", movie.LikeCount, movie.DislikeCount)
	}

	liked, err = service.ToggleLike(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, "The Matrix")
	if err != nil {
		t.Fatalf("second toggle: %v", err)
	}
	if liked {
		t.Fatalf("expected un-liked state after second toggle")
	}

	movie, err = db.Movies.GetByTmdbID(ctx, 603)
	if err != nil {
		t.Fatalf("reload movie: %v", err)
	}
	if movie.LikeCount != 0 || movie.DislikeCount != 0 {
		t.Fatalf("expected counters back to zero, got likes=%d dislikes=%d", movie.LikeCount, movie.DislikeCount)
	}
	if provider.calls != 1 {
		t.Fatalf("known title should not refetch, got %d provider calls", provider.calls)
	}
}

func TestLikeAndDislikeAreMutuallyExclusive(t *testing.T) {
	service, _, _, db := newTestService(t)
	ctx := context.Background()

	if _, err := service.ToggleLike(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, ""); err != nil {
		t.Fatalf("like: %v", err)
	}
	disliked, err := service.ToggleDislike(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, "")
	if err != nil {
		t.Fatalf("dislike: %v", err)
	}
	if !disliked {
		t.Fatalf("expected disliked state")
	}

	interaction, err := db.Interactions.Get(ctx, models.DefaultUserID, 603)
	if err != nil {
		t.Fatalf("load interaction: %v", err)
	}
	if interaction.IsLiked {
		t.Fatalf("dislike must clear the liked flag")
	}
	if !interaction.IsDisliked {
		t.Fatalf("expected disliked flag set")
	}
}

func TestToggleDislikeOnlyTouchesDislikeCounter(t *testing.T) {
	service, _, _, db := newTestService(t)
	ctx := context.Background()

	if _, err := service.ToggleDislike(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, ""); err != nil {
		t.Fatalf("dislike: %v", err)
	}

	movie, err := db.Movies.GetByTmdbID(ctx, 603)
	if err != nil {
		t.Fatalf("load movie: %v", err)
	}
	if movie.LikeCount != 0 || movie.DislikeCount != 1 {
		t.Fatalf("unexpected counters: likes=%d dislikes=%d", movie.LikeCount, movie.DislikeCount)
	}

	if _, err := service.ToggleDislike(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, ""); err != nil {
		t.Fatalf("second dislike: %v", err)
	}
	movie, _ = db.Movies.GetByTmdbID(ctx, 603)
	if movie.DislikeCount != 0 {
		t.Fatalf("expected dislike counter back to zero, got %d", movie.DislikeCount)
	}
}

func TestToggleWatchlistRequiresKnownUser(t *testing.T) {
	service, _, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := service.ToggleWatchlist(ctx, models.MediaTypeMovie, "ghost", 603, "")
	if !errors.Is(err, ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for unknown user, got %v", err)
	}

	listed, err := service.ToggleWatchlist(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, "")
	if err != nil {
		t.Fatalf("toggle watchlist: %v", err)
	}
	if !listed {
		t.Fatalf("expected watchlisted state")
	}
}

func TestGetUserWatchlistReturnsToggledTitles(t *testing.T) {
	service, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.ToggleWatchlist(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, ""); err != nil {
		t.Fatalf("toggle: %v", err)
	}

	result, err := service.GetUserWatchlist(ctx, models.DefaultUserID, 1, 20)
	if err != nil {
		t.Fatalf("watchlist: %v", err)
	}
	if result.TotalCount != 1 || len(result.Data) != 1 {
		t.Fatalf("expected one watchlisted title, got %+v", result)
	}
	item := result.Data[0]
	if item.TmdbID != 603 || !item.IsWatchlisted {
		t.Fatalf("unexpected watchlist item %+v", item)
	}

	if _, err := service.ToggleWatchlist(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, ""); err != nil {
		t.Fatalf("toggle off: %v", err)
	}
	result, err = service.GetUserWatchlist(ctx, models.DefaultUserID, 1, 20)
	if err != nil {
		t.Fatalf("watchlist after removal: %v", err)
	}
	if result.TotalCount != 0 {
		t.Fatalf("expected empty watchlist, got %d", result.TotalCount)
	}
}

func TestGetUserInteractionZeroValueWhenAbsent(t *testing.T) {
	service, _, _, _ := newTestService(t)

	interaction, err := service.GetUserInteraction(context.Background(), models.MediaTypeMovie, models.DefaultUserID, 999)
	if err != nil {
		t.Fatalf("get interaction: %v", err)
	}
	if interaction.IsLiked || interaction.IsDisliked || interaction.IsWatchlisted {
		t.Fatalf("expected zero-valued flags, got %+v", interaction)
	}
	if interaction.TmdbID != 999 {
		t.Fatalf("expected the requested id echoed back, got %d", interaction.TmdbID)
	}
}

func TestToggleLikeInvalidatesCachedViews(t *testing.T) {
	service, _, store, _ := newTestService(t)
	ctx := context.Background()

	cache.Set(store, "movie_details:603", models.MovieDetails{}, 0)
	cache.Set(store, "movie:603:credits", []models.Cast{{Name: "Someone"}}, 0)

	if _, err := service.ToggleLike(ctx, models.MediaTypeMovie, models.DefaultUserID, 603, ""); err != nil {
		t.Fatalf("toggle like: %v", err)
	}

	if _, ok := cache.Get[models.MovieDetails](store, "movie_details:603"); ok {
		t.Fatalf("details entry should be invalidated after the write")
	}
	if _, ok := cache.Get[[]models.Cast](store, "movie:603:credits"); ok {
		t.Fatalf("credits entry should be invalidated after the write")
	}
}

func TestCommentsLifecycle(t *testing.T) {
	service, _, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := service.AddComment(ctx, models.DefaultUserID, 603, ""); !errors.Is(err, ErrInvalidComment) {
		t.Fatalf("expected ErrInvalidComment for empty content, got %v", err)
	}

	comment, err := service.AddComment(ctx, models.DefaultUserID, 603, "Still holds up.")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}
	if comment.ID == "" {
		t.Fatalf("expected a generated comment id")
	}

	page, err := service.GetMovieComments(ctx, 603, 1, 20)
	if err != nil {
		t.Fatalf("list comments: %v", err)
	}
	if page.TotalCount != 1 || page.Data[0].Content != "Still holds up." {
		t.Fatalf("unexpected comments page %+v", page)
	}

	err = service.DeleteComment(ctx, comment.ID, 603, "someone-else")
	if !errors.Is(err, ErrNotOwner) {
		t.Fatalf("expected ErrNotOwner, got %v", err)
	}

	if err := service.DeleteComment(ctx, comment.ID, 603, models.DefaultUserID); err != nil {
		t.Fatalf("delete own comment: %v", err)
	}

	err = service.DeleteComment(ctx, comment.ID, 603, models.DefaultUserID)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}

	page, err = service.GetMovieComments(ctx, 603, 1, 20)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if page.TotalCount != 0 {
		t.Fatalf("expected no comments, got %d", page.TotalCount)
	}
}
