package database

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"cinehub/models"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db, err := NewDB(Config{DatabasePath: filepath.Join(t.TempDir(), "test.db")})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func matrixSeed() MovieSeed {
	return MovieSeed{
		TmdbID:      603,
		Title:       "The Matrix",
		VoteAverage: 8.2,
		PosterPath:  "/poster.jpg",
		ReleaseDate: "1999-03-31",
		MediaType:   models.MediaTypeMovie,
		Genres: []GenreSeed{
			{TmdbID: 28, Name: "Action"},
			{TmdbID: 878, Name: "Science Fiction"},
		},
	}
}

func TestEnsureMovieCreatesRowWithGenres(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	movie, err := db.Movies.EnsureMovie(ctx, matrixSeed())
	require.NoError(t, err)
	require.Equal(t, 603, movie.TmdbID)
	require.Equal(t, "The Matrix", movie.Title)
	require.Zero(t, movie.LikeCount)

	genres, err := db.Movies.GenresForMovie(ctx, 603)
	require.NoError(t, err)
	require.Len(t, genres, 2)
}

func TestEnsureMovieIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	first, err := db.Movies.EnsureMovie(ctx, matrixSeed())
	require.NoError(t, err)

	changed := matrixSeed()
	changed.Title = "Different Title"
	second, err := db.Movies.EnsureMovie(ctx, changed)
	require.NoError(t, err)

	// Ensure never overwrites an existing row.
	require.Equal(t, first.ID, second.ID)
	require.Equal(t, "The Matrix", second.Title)
}

func TestEnsureMovieConcurrentCallersYieldOneRow(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	const callers = 8
	results := make([]*models.Movie, callers)
	errs := make([]error, callers)

	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = db.Movies.EnsureMovie(ctx, matrixSeed())
		}(i)
	}
	wg.Wait()

	for i := 0; i < callers; i++ {
		require.NoError(t, errs[i], "caller %d", i)
		require.Equal(t, results[0].ID, results[i].ID, "caller %d got a different row", i)
	}

	var count int
	err := db.Connection().QueryRowContext(ctx, `SELECT COUNT(*) FROM movies WHERE tmdb_id = 603`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestUpsertRefreshesFieldsButPreservesCounters(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Movies.EnsureMovie(ctx, matrixSeed())
	require.NoError(t, err)
	require.NoError(t, db.Movies.AdjustCounters(ctx, 603, 3, 1))

	refreshed := matrixSeed()
	refreshed.Title = "The Matrix (Remastered)"
	refreshed.VoteAverage = 8.7
	movie, err := db.Movies.Upsert(ctx, refreshed)
	require.NoError(t, err)

	require.Equal(t, "The Matrix (Remastered)", movie.Title)
	require.InDelta(t, 8.7, movie.VoteAverage, 0.001)
	require.Equal(t, 3, movie.LikeCount)
	require.Equal(t, 1, movie.DislikeCount)
}

func TestAdjustCountersUnknownMovie(t *testing.T) {
	db := newTestDB(t)

	err := db.Movies.AdjustCounters(context.Background(), 999, 1, 0)
	require.ErrorIs(t, err, ErrMovieNotFound)
}

func TestGetByTmdbIDNotFound(t *testing.T) {
	db := newTestDB(t)

	_, err := db.Movies.GetByTmdbID(context.Background(), 999)
	require.ErrorIs(t, err, ErrMovieNotFound)
}

func TestListByTmdbIDs(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, err := db.Movies.EnsureMovie(ctx, matrixSeed())
	require.NoError(t, err)

	other := matrixSeed()
	other.TmdbID = 604
	other.Title = "The Matrix Reloaded"
	_, err = db.Movies.EnsureMovie(ctx, other)
	require.NoError(t, err)

	movies, err := db.Movies.ListByTmdbIDs(ctx, []int{603, 604, 999})
	require.NoError(t, err)
	require.Len(t, movies, 2)

	empty, err := db.Movies.ListByTmdbIDs(ctx, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}
