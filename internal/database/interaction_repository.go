package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cinehub/models"
)

// ErrInteractionNotFound is returned when no interaction row exists for the
// (user, external ID) pair.
var ErrInteractionNotFound = errors.New("interaction not found")

// InteractionRepository persists per-user interaction flags, keyed by
// (user_id, tmdb_id).
type InteractionRepository struct {
	db *DB
}

// NewInteractionRepository creates an interaction repository backed by db.
func NewInteractionRepository(db *DB) *InteractionRepository {
	return &InteractionRepository{db: db}
}

const interactionColumns = `user_id, tmdb_id, media_type, is_liked, is_disliked, is_watchlisted, created_at, updated_at`

func scanInteraction(row interface{ Scan(...any) error }) (*models.UserInteraction, error) {
	var i models.UserInteraction
	err := row.Scan(
		&i.UserID, &i.TmdbID, &i.MediaType,
		&i.IsLiked, &i.IsDisliked, &i.IsWatchlisted,
		&i.CreatedAt, &i.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

// Get fetches the interaction row for a (user, external ID) pair.
func (r *InteractionRepository) Get(ctx context.Context, userID string, tmdbID int) (*models.UserInteraction, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+interactionColumns+` FROM user_interactions WHERE user_id = ? AND tmdb_id = ?`,
		userID, tmdbID)

	interaction, err := scanInteraction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrInteractionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get interaction %s/%d: %w", userID, tmdbID, err)
	}
	return interaction, nil
}

// Upsert writes the interaction row, last write winning at the row level.
func (r *InteractionRepository) Upsert(ctx context.Context, i *models.UserInteraction) error {
	return r.upsert(ctx, r.db.conn, i)
}

// UpsertTx is Upsert inside an existing transaction.
func (r *InteractionRepository) UpsertTx(ctx context.Context, tx *sql.Tx, i *models.UserInteraction) error {
	return r.upsert(ctx, tx, i)
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (r *InteractionRepository) upsert(ctx context.Context, ex execer, i *models.UserInteraction) error {
	_, err := ex.ExecContext(ctx,
		`INSERT INTO user_interactions (`+interactionColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(user_id, tmdb_id) DO UPDATE SET
			media_type = excluded.media_type,
			is_liked = excluded.is_liked,
			is_disliked = excluded.is_disliked,
			is_watchlisted = excluded.is_watchlisted,
			updated_at = excluded.updated_at`,
		i.UserID, i.TmdbID, i.MediaType,
		i.IsLiked, i.IsDisliked, i.IsWatchlisted,
		i.CreatedAt, i.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert interaction %s/%d: %w", i.UserID, i.TmdbID, err)
	}
	return nil
}

// ListForUser returns the user's interaction rows for the given external IDs
// in one batch, for overlaying flags onto a result page.
func (r *InteractionRepository) ListForUser(ctx context.Context, userID string, tmdbIDs []int) (map[int]models.UserInteraction, error) {
	if len(tmdbIDs) == 0 {
		return map[int]models.UserInteraction{}, nil
	}

	query := `SELECT ` + interactionColumns + ` FROM user_interactions
		 WHERE user_id = ? AND tmdb_id IN (?` + repeatPlaceholder(len(tmdbIDs)-1) + `)`
	args := make([]any, 0, len(tmdbIDs)+1)
	args = append(args, userID)
	for _, id := range tmdbIDs {
		args = append(args, id)
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list interactions for %s: %w", userID, err)
	}
	defer rows.Close()

	interactions := make(map[int]models.UserInteraction)
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		interactions[i.TmdbID] = *i
	}
	return interactions, rows.Err()
}

// Watchlist returns one page of the user's watchlisted movies joined against
// the local movie rows, newest first.
func (r *InteractionRepository) Watchlist(ctx context.Context, userID string, page, pageSize int) ([]models.Movie, int, error) {
	var total int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM user_interactions WHERE user_id = ? AND is_watchlisted = 1`,
		userID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count watchlist for %s: %w", userID, err)
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT m.id, m.tmdb_id, m.title, m.vote_average, m.poster_path, m.release_date,
		        m.media_type, m.like_count, m.dislike_count, m.created_at, m.updated_at
		 FROM user_interactions ui
		 JOIN movies m ON m.tmdb_id = ui.tmdb_id
		 WHERE ui.user_id = ? AND ui.is_watchlisted = 1
		 ORDER BY ui.updated_at DESC
		 LIMIT ? OFFSET ?`,
		userID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list watchlist for %s: %w", userID, err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan watchlist movie: %w", err)
		}
		movies = append(movies, *m)
	}
	return movies, total, rows.Err()
}
