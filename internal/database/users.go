// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/solmarita/filmopine/internal/models"
)

// usersMutex serializes user writes. DuckDB handles concurrent writers
// poorly, and registration volume does not justify finer locking.
var usersMutex sync.Mutex

// scanUserRow scans a users row into a User struct.
func scanUserRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.User, error) {
	u := &models.User{}
	err := scanner.Scan(
		&u.ID, &u.Username, &u.Email, &u.PasswordHash,
		&u.FirstName, &u.LastName, &u.IsStaff,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return u, nil
}

const userColumns = `id, username, email, password_hash, first_name, last_name, is_staff, created_at, updated_at`

// CreateUser inserts a new user. Username and email must be unique;
// violations surface as ErrUsernameTaken or ErrEmailTaken. On success the
// ID and timestamps are populated on the passed struct.
func (db *DB) CreateUser(ctx context.Context, user *models.User) error {
	usersMutex.Lock()
	defer usersMutex.Unlock()

	// Pre-check both unique columns so the caller gets a field-level
	// error instead of whichever constraint DuckDB trips first.
	if err := db.checkUserUniqueness(ctx, user.Username, user.Email, 0); err != nil {
		return err
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	query := `
		INSERT INTO users (id, username, email, password_hash, first_name, last_name, is_staff, created_at, updated_at)
		VALUES (nextval('seq_users_id'), ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`

	err := db.conn.QueryRowContext(ctx, query,
		user.Username, user.Email, user.PasswordHash,
		user.FirstName, user.LastName, user.IsStaff,
		user.CreatedAt, user.UpdatedAt,
	).Scan(&user.ID)
	if err != nil {
		if isUniqueViolation(err) {
			// Lost a race with a concurrent insert.
			return db.classifyUserConflict(ctx, user.Username, user.Email)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// checkUserUniqueness returns a conflict error if the username or email
// belongs to a user other than excludeID.
func (db *DB) checkUserUniqueness(ctx context.Context, username, email string, excludeID int64) error {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ? AND id != ?`, username, excludeID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check username: %w", err)
	}
	if count > 0 {
		return ErrUsernameTaken
	}

	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE email = ? AND id != ?`, email, excludeID,
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to check email: %w", err)
	}
	if count > 0 {
		return ErrEmailTaken
	}

	return nil
}

// classifyUserConflict decides which unique column caused a violation.
func (db *DB) classifyUserConflict(ctx context.Context, username, email string) error {
	var count int
	if err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM users WHERE username = ?`, username,
	).Scan(&count); err == nil && count > 0 {
		return ErrUsernameTaken
	}
	return ErrEmailTaken
}

// GetUserByID returns the user with the given ID, or ErrUserNotFound.
func (db *DB) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`

	user, err := scanUserRow(db.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", id, err)
	}
	return user, nil
}

// GetUserByUsername returns the user with the given username, or
// ErrUserNotFound. Used by login.
func (db *DB) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = ?`

	user, err := scanUserRow(db.conn.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %q: %w", username, err)
	}
	return user, nil
}

// ListUsers returns a page of users ordered by ID, plus the total count.
func (db *DB) ListUsers(ctx context.Context, page, pageSize int) ([]*models.User, int64, error) {
	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	query := `SELECT ` + userColumns + ` FROM users ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.conn.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := make([]*models.User, 0, pageSize)
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate user rows: %w", err)
	}

	return users, total, nil
}

// UpdateUser updates profile fields and, when PasswordHash is set, the
// stored credential. Returns ErrUserNotFound if the user does not exist.
func (db *DB) UpdateUser(ctx context.Context, user *models.User) error {
	usersMutex.Lock()
	defer usersMutex.Unlock()

	if err := db.checkUserUniqueness(ctx, user.Username, user.Email, user.ID); err != nil {
		return err
	}

	user.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE users
		SET username = ?, email = ?, first_name = ?, last_name = ?, is_staff = ?, updated_at = ?
		WHERE id = ?
	`
	args := []interface{}{
		user.Username, user.Email, user.FirstName, user.LastName, user.IsStaff, user.UpdatedAt, user.ID,
	}
	if user.PasswordHash != "" {
		query = `
			UPDATE users
			SET username = ?, email = ?, password_hash = ?, first_name = ?, last_name = ?, is_staff = ?, updated_at = ?
			WHERE id = ?
		`
		args = []interface{}{
			user.Username, user.Email, user.PasswordHash,
			user.FirstName, user.LastName, user.IsStaff, user.UpdatedAt, user.ID,
		}
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update user %d: %w", user.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// DeleteUser removes a user and all of their reviews in one transaction.
// Returns ErrUserNotFound if the user does not exist.
func (db *DB) DeleteUser(ctx context.Context, id int64) error {
	usersMutex.Lock()
	defer usersMutex.Unlock()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM reviews WHERE user_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete reviews for user %d: %w", id, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit user deletion: %w", err)
	}

	return nil
}
