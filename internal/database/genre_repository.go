package database

import (
	"context"
	"database/sql"
	"fmt"

	"cinehub/models"
)

// GenreRepository persists catalog genres, keyed by (tmdb_id, media_type).
type GenreRepository struct {
	db *DB
}

// NewGenreRepository creates a genre repository backed by db.
func NewGenreRepository(db *DB) *GenreRepository {
	return &GenreRepository{db: db}
}

// upsertGenreTx inserts a genre or refreshes its name if it changed upstream.
// Shared with MovieRepository.EnsureMovie so genre creation joins the same
// transaction as the movie row.
func upsertGenreTx(ctx context.Context, tx *sql.Tx, tmdbID int, name string, mediaType models.MediaType) error {
	genre := models.NewGenre(tmdbID, name, mediaType)
	_, err := tx.ExecContext(ctx,
		`INSERT INTO genres (id, tmdb_id, name, media_type, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(tmdb_id, media_type) DO UPDATE SET
			name = excluded.name,
			updated_at = excluded.updated_at`,
		genre.ID, genre.TmdbID, genre.Name, genre.MediaType,
		genre.CreatedAt, genre.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("upsert genre %d (%s): %w", tmdbID, mediaType, err)
	}
	return nil
}

// UpsertAll synchronizes the full genre list for one media type in a single
// transaction. A mid-batch failure rolls back the whole sync.
func (r *GenreRepository) UpsertAll(ctx context.Context, mediaType models.MediaType, genres []GenreSeed) error {
	return r.db.RunWithRetry(ctx, func(ctx context.Context) error {
		return r.db.WithTx(ctx, func(tx *sql.Tx) error {
			for _, g := range genres {
				if err := upsertGenreTx(ctx, tx, g.TmdbID, g.Name, mediaType); err != nil {
					return err
				}
			}
			return nil
		})
	})
}

// ListByMediaType returns the canonical locally stored genre list.
func (r *GenreRepository) ListByMediaType(ctx context.Context, mediaType models.MediaType) ([]models.Genre, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT id, tmdb_id, name, media_type, created_at, updated_at
		 FROM genres WHERE media_type = ? ORDER BY name`,
		mediaType,
	)
	if err != nil {
		return nil, fmt.Errorf("list genres for %s: %w", mediaType, err)
	}
	defer rows.Close()

	var genres []models.Genre
	for rows.Next() {
		var g models.Genre
		if err := rows.Scan(&g.ID, &g.TmdbID, &g.Name, &g.MediaType, &g.CreatedAt, &g.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}
