package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"cinehub/models"
	"cinehub/utils"
)

// ErrUserNotFound is returned when no profile row exists for the ID.
var ErrUserNotFound = errors.New("user not found")

// UserRepository persists CineHub profiles.
type UserRepository struct {
	db *DB
}

// NewUserRepository creates a user repository backed by db.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByID fetches a profile.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*models.User, error) {
	row := r.db.conn.QueryRowContext(ctx,
		`SELECT id, name, api_key, created_at, updated_at FROM users WHERE id = ?`, id)

	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.APIKey, &u.CreatedAt, &u.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user %s: %w", id, err)
	}
	return &u, nil
}

// Exists reports whether a profile row exists for the ID.
func (r *UserRepository) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := r.db.conn.QueryRowContext(ctx,
		`SELECT 1 FROM users WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check user %s: %w", id, err)
	}
	return true, nil
}

// Create inserts a new profile row.
func (r *UserRepository) Create(ctx context.Context, u *models.User) error {
	_, err := r.db.conn.ExecContext(ctx,
		`INSERT INTO users (id, name, api_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.APIKey, u.CreatedAt, u.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.ID, err)
	}
	return nil
}

// EnsureDefaultUser creates the initial profile on first boot.
func (r *UserRepository) EnsureDefaultUser(ctx context.Context) error {
	exists, err := r.Exists(ctx, models.DefaultUserID)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	apiKey, err := utils.GenerateAPIKey()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        models.DefaultUserID,
		Name:      models.DefaultUserName,
		APIKey:    apiKey,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.Create(ctx, user); err != nil {
		return err
	}
	log.Printf("[database] created default profile %q", user.ID)
	return nil
}
