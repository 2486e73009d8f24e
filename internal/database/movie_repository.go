package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cinehub/models"
)

// ErrMovieNotFound is returned when no movie row exists for the external ID.
var ErrMovieNotFound = errors.New("movie not found")

// GenreSeed is the genre slice of a MovieSeed.
type GenreSeed struct {
	TmdbID int
	Name   string
}

// MovieSeed carries the provider-sourced fields needed to create or refresh a
// movie row together with its genres.
type MovieSeed struct {
	TmdbID      int
	Title       string
	VoteAverage float64
	PosterPath  string
	ReleaseDate string
	MediaType   models.MediaType
	Genres      []GenreSeed
}

// MovieRepository persists locally tracked catalog titles.
type MovieRepository struct {
	db *DB
}

// NewMovieRepository creates a movie repository backed by db.
func NewMovieRepository(db *DB) *MovieRepository {
	return &MovieRepository{db: db}
}

const movieColumns = `id, tmdb_id, title, vote_average, poster_path, release_date, media_type, like_count, dislike_count, created_at, updated_at`

func scanMovie(row interface{ Scan(...any) error }) (*models.Movie, error) {
	var m models.Movie
	err := row.Scan(
		&m.ID, &m.TmdbID, &m.Title, &m.VoteAverage, &m.PosterPath,
		&m.ReleaseDate, &m.MediaType, &m.LikeCount, &m.DislikeCount,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// GetByTmdbID fetches a movie by its external ID.
func (r *MovieRepository) GetByTmdbID(ctx context.Context, tmdbID int) (*models.Movie, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT `+movieColumns+` FROM movies WHERE tmdb_id = ?`, tmdbID)

	movie, err := scanMovie(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get movie by tmdb id %d: %w", tmdbID, err)
	}
	return movie, nil
}

// EnsureMovie guarantees a movie row and its genre rows exist for the seed,
// creating them in one transaction when absent. Safe under concurrent callers
// racing to create the same external ID: the unique constraint resolves the
// race and the losing transaction re-reads the winner's row.
//
// Both the aggregation and interaction services call this primitive, which is
// why it lives in the store layer rather than either service.
func (r *MovieRepository) EnsureMovie(ctx context.Context, seed MovieSeed) (*models.Movie, error) {
	// Fast path outside any transaction.
	if movie, err := r.GetByTmdbID(ctx, seed.TmdbID); err == nil {
		return movie, nil
	} else if !errors.Is(err, ErrMovieNotFound) {
		return nil, err
	}

	var result *models.Movie
	err := r.db.RunWithRetry(ctx, func(ctx context.Context) error {
		return r.db.WithTx(ctx, func(tx *sql.Tx) error {
			movie := models.NewMovie(seed.TmdbID, seed.Title, seed.VoteAverage, seed.PosterPath, seed.ReleaseDate, seed.MediaType)

			_, err := tx.ExecContext(ctx,
				`INSERT INTO movies (`+movieColumns+`)
				 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
				 ON CONFLICT(tmdb_id) DO NOTHING`,
				movie.ID, movie.TmdbID, movie.Title, movie.VoteAverage,
				movie.PosterPath, movie.ReleaseDate, movie.MediaType,
				movie.CreatedAt, movie.UpdatedAt,
			)
			if err != nil {
				return fmt.Errorf("insert movie %d: %w", seed.TmdbID, err)
			}

			for _, g := range seed.Genres {
				if err := upsertGenreTx(ctx, tx, g.TmdbID, g.Name, seed.MediaType); err != nil {
					return err
				}
				if _, err := tx.ExecContext(ctx,
					`INSERT INTO movie_genres (movie_id, genre_id)
					 SELECT m.id, g.id FROM movies m, genres g
					 WHERE m.tmdb_id = ? AND g.tmdb_id = ? AND g.media_type = ?
					 ON CONFLICT DO NOTHING`,
					seed.TmdbID, g.TmdbID, seed.MediaType,
				); err != nil {
					return fmt.Errorf("link genre %d to movie %d: %w", g.TmdbID, seed.TmdbID, err)
				}
			}

			// Re-read inside the transaction: covers the lost-race case where
			// the conflict clause skipped our insert.
			row := tx.QueryRowContext(ctx,
				`SELECT `+movieColumns+` FROM movies WHERE tmdb_id = ?`, seed.TmdbID)
			stored, err := scanMovie(row)
			if err != nil {
				return fmt.Errorf("read back movie %d: %w", seed.TmdbID, err)
			}
			result = stored
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// Upsert refreshes title, rating, poster and release date for an existing row
// or creates one. Counters are preserved on update.
func (r *MovieRepository) Upsert(ctx context.Context, seed MovieSeed) (*models.Movie, error) {
	movie := models.NewMovie(seed.TmdbID, seed.Title, seed.VoteAverage, seed.PosterPath, seed.ReleaseDate, seed.MediaType)

	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO movies (`+movieColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, 0, 0, ?, ?)
		 ON CONFLICT(tmdb_id) DO UPDATE SET
			title = excluded.title,
			vote_average = excluded.vote_average,
			poster_path = excluded.poster_path,
			release_date = excluded.release_date,
			updated_at = excluded.updated_at`,
		movie.ID, movie.TmdbID, movie.Title, movie.VoteAverage,
		movie.PosterPath, movie.ReleaseDate, movie.MediaType,
		movie.CreatedAt, movie.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert movie %d: %w", seed.TmdbID, err)
	}

	return r.GetByTmdbID(ctx, seed.TmdbID)
}

// AdjustCounters applies like/dislike counter deltas to a movie row.
func (r *MovieRepository) AdjustCounters(ctx context.Context, tmdbID, likeDelta, dislikeDelta int) error {
	return r.adjustCounters(ctx, r.db.conn, tmdbID, likeDelta, dislikeDelta)
}

// AdjustCountersTx is AdjustCounters inside an existing transaction.
func (r *MovieRepository) AdjustCountersTx(ctx context.Context, tx *sql.Tx, tmdbID, likeDelta, dislikeDelta int) error {
	return r.adjustCounters(ctx, tx, tmdbID, likeDelta, dislikeDelta)
}

func (r *MovieRepository) adjustCounters(ctx context.Context, ex execer, tmdbID, likeDelta, dislikeDelta int) error {
	res, err := ex.ExecContext(ctx,
		`UPDATE movies
		 SET like_count = like_count + ?, dislike_count = dislike_count + ?, updated_at = ?
		 WHERE tmdb_id = ?`,
		likeDelta, dislikeDelta, time.Now().UTC(), tmdbID,
	)
	if err != nil {
		return fmt.Errorf("adjust counters for movie %d: %w", tmdbID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("adjust counters for movie %d: %w", tmdbID, err)
	}
	if affected == 0 {
		return ErrMovieNotFound
	}
	return nil
}

// GenresForMovie returns the genres linked to a movie.
func (r *MovieRepository) GenresForMovie(ctx context.Context, tmdbID int) ([]models.Genre, error) {
	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT g.id, g.tmdb_id, g.name, g.media_type, g.created_at, g.updated_at
		 FROM genres g
		 JOIN movie_genres mg ON mg.genre_id = g.id
		 JOIN movies m ON m.id = mg.movie_id
		 WHERE m.tmdb_id = ?
		 ORDER BY g.name`,
		tmdbID,
	)
	if err != nil {
		return nil, fmt.Errorf("genres for movie %d: %w", tmdbID, err)
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

// ListByTmdbIDs fetches the stored rows for a set of external IDs.
func (r *MovieRepository) ListByTmdbIDs(ctx context.Context, tmdbIDs []int) ([]models.Movie, error) {
	if len(tmdbIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + movieColumns + ` FROM movies WHERE tmdb_id IN (?` +
		repeatPlaceholder(len(tmdbIDs)-1) + `)`
	args := make([]any, len(tmdbIDs))
	for i, id := range tmdbIDs {
		args[i] = id
	}

	rows, err := r.db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list movies by tmdb ids: %w", err)
	}
	defer rows.Close()

	var movies []models.Movie
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		movies = append(movies, *m)
	}
	return movies, rows.Err()
}

func repeatPlaceholder(n int) string {
	s := ""
	for i := 0; i < n; i++ {
		s += ", ?"
	}
	return s
}
