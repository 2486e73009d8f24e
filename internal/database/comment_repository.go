package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"cinehub/models"
)

// ErrCommentNotFound is returned when no comment row exists for the ID.
var ErrCommentNotFound = errors.New("comment not found")

// CommentRepository persists user comments attached to titles.
type CommentRepository struct {
	db *DB
}

// NewCommentRepository creates a comment repository backed by db.
func NewCommentRepository(db *DB) *CommentRepository {
	return &CommentRepository{db: db}
}

// Add inserts a new comment row.
func (r *CommentRepository) Add(ctx context.Context, c *models.Comment) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO comments (id, content, user_id, tmdb_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.Content, c.UserID, c.TmdbID, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert comment: %w", err)
	}
	return nil
}

// GetByID fetches one comment.
func (r *CommentRepository) GetByID(ctx context.Context, id string) (*models.Comment, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, content, user_id, tmdb_id, created_at, updated_at
		 FROM comments WHERE id = ?`, id)

	var c models.Comment
	err := row.Scan(&c.ID, &c.Content, &c.UserID, &c.TmdbID, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCommentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get comment %s: %w", id, err)
	}
	return &c, nil
}

// Delete removes a comment row.
func (r *CommentRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.conn.ExecContext(ctx, `DELETE FROM comments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment %s: %w", id, err)
	}
	if affected == 0 {
		return ErrCommentNotFound
	}
	return nil
}

// ListByMovie returns one page of comments for a title, newest first, with the
// author's profile name joined in for display.
func (r *CommentRepository) ListByMovie(ctx context.Context, tmdbID, page, pageSize int) ([]models.Comment, int, error) {
	var total int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM comments WHERE tmdb_id = ?`, tmdbID).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count comments for %d: %w", tmdbID, err)
	}

	rows, err := r.db.conn.QueryContext(ctx,
		`SELECT c.id, c.content, c.user_id, COALESCE(u.name, ''), c.tmdb_id, c.created_at, c.updated_at
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.user_id
		 WHERE c.tmdb_id = ?
		 ORDER BY c.created_at DESC
		 LIMIT ? OFFSET ?`,
		tmdbID, pageSize, (page-1)*pageSize,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list comments for %d: %w", tmdbID, err)
	}
	defer rows.Close()

	var comments []models.Comment
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Content, &c.UserID, &c.UserName, &c.TmdbID, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, 0, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	return comments, total, rows.Err()
}
