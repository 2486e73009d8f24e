package database

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"cinehub/models"
)

func seedUser(t *testing.T, db *DB, id string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, db.Users.EnsureDefaultUser(ctx))
	if id != models.DefaultUserID {
		now := time.Now().UTC()
		require.NoError(t, db.Users.Create(ctx, &models.User{
			ID: id, Name: id, CreatedAt: now, UpdatedAt: now,
		}))
	}
}

func TestInteractionUpsertRoundTrip(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, models.DefaultUserID)

	_, err := db.Interactions.Get(ctx, models.DefaultUserID, 603)
	require.ErrorIs(t, err, ErrInteractionNotFound)

	interaction := models.NewUserInteraction(models.DefaultUserID, 603, models.MediaTypeMovie)
	interaction.ToggleLike()
	require.NoError(t, db.Interactions.Upsert(ctx, interaction))

	stored, err := db.Interactions.Get(ctx, models.DefaultUserID, 603)
	require.NoError(t, err)
	require.True(t, stored.IsLiked)
	require.False(t, stored.IsDisliked)

	stored.ToggleWatchlist()
	require.NoError(t, db.Interactions.Upsert(ctx, stored))

	again, err := db.Interactions.Get(ctx, models.DefaultUserID, 603)
	require.NoError(t, err)
	require.True(t, again.IsLiked)
	require.True(t, again.IsWatchlisted)
}

func TestListForUserBatches(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, models.DefaultUserID)

	for _, id := range []int{100, 200, 300} {
		interaction := models.NewUserInteraction(models.DefaultUserID, id, models.MediaTypeMovie)
		interaction.ToggleLike()
		require.NoError(t, db.Interactions.Upsert(ctx, interaction))
	}

	flags, err := db.Interactions.ListForUser(ctx, models.DefaultUserID, []int{100, 300, 999})
	require.NoError(t, err)
	require.Len(t, flags, 2)
	require.True(t, flags[100].IsLiked)
	require.True(t, flags[300].IsLiked)

	empty, err := db.Interactions.ListForUser(ctx, models.DefaultUserID, nil)
	require.NoError(t, err)
	require.Empty(t, empty)
}

func TestWatchlistJoinsMovieRows(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, models.DefaultUserID)

	_, err := db.Movies.EnsureMovie(ctx, matrixSeed())
	require.NoError(t, err)

	interaction := models.NewUserInteraction(models.DefaultUserID, 603, models.MediaTypeMovie)
	interaction.ToggleWatchlist()
	require.NoError(t, db.Interactions.Upsert(ctx, interaction))

	// Watchlisted but never stored locally: must not appear in the join.
	orphan := models.NewUserInteraction(models.DefaultUserID, 999, models.MediaTypeMovie)
	orphan.ToggleWatchlist()
	require.NoError(t, db.Interactions.Upsert(ctx, orphan))

	movies, total, err := db.Interactions.Watchlist(ctx, models.DefaultUserID, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 2, total)
	require.Len(t, movies, 1)
	require.Equal(t, "The Matrix", movies[0].Title)
}

func TestCommentLifecycle(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	seedUser(t, db, models.DefaultUserID)

	comment := models.NewComment("A classic.", models.DefaultUserID, 603)
	require.NoError(t, db.Comments.Add(ctx, comment))

	stored, err := db.Comments.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	require.Equal(t, "A classic.", stored.Content)

	comments, total, err := db.Comments.ListByMovie(ctx, 603, 1, 20)
	require.NoError(t, err)
	require.Equal(t, 1, total)
	require.Len(t, comments, 1)
	require.Equal(t, models.DefaultUserName, comments[0].UserName)

	require.NoError(t, db.Comments.Delete(ctx, comment.ID))

	_, err = db.Comments.GetByID(ctx, comment.ID)
	require.ErrorIs(t, err, ErrCommentNotFound)
	require.ErrorIs(t, db.Comments.Delete(ctx, comment.ID), ErrCommentNotFound)
}

func TestEnsureDefaultUserIsIdempotent(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	require.NoError(t, db.Users.EnsureDefaultUser(ctx))
	require.NoError(t, db.Users.EnsureDefaultUser(ctx))

	user, err := db.Users.GetByID(ctx, models.DefaultUserID)
	require.NoError(t, err)
	require.Equal(t, models.DefaultUserName, user.Name)
	require.NotEmpty(t, user.APIKey)

	exists, err := db.Users.Exists(ctx, models.DefaultUserID)
	require.NoError(t, err)
	require.True(t, exists)

	exists, err = db.Users.Exists(ctx, "ghost")
	require.NoError(t, err)
	require.False(t, exists)
}
