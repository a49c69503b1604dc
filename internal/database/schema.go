// Filmopine - Movie Review and Rating API
// Copyright 2026 Filmopine contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/solmarita/filmopine

package database

import (
	"fmt"
)

// schemaStatements defines the full schema in execution order.
//
// DuckDB notes:
//   - No AUTO_INCREMENT; integer primary keys draw from explicit sequences.
//   - reviews.id is an application-generated UUID (stored as VARCHAR so
//     it scans portably) so review URLs are not enumerable.
//   - Reviews reference their subject through (target_type_id, target_id)
//     instead of a movie foreign key, so future reviewable types only
//     need a row in target_types.
var schemaStatements = []string{
	`CREATE SEQUENCE IF NOT EXISTS seq_users_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_movies_id START 1`,
	`CREATE SEQUENCE IF NOT EXISTS seq_target_types_id START 1`,

	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_users_id'),
		username VARCHAR NOT NULL UNIQUE,
		email VARCHAR NOT NULL UNIQUE,
		password_hash VARCHAR NOT NULL,
		first_name VARCHAR NOT NULL DEFAULT '',
		last_name VARCHAR NOT NULL DEFAULT '',
		is_staff BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS movies (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_movies_id'),
		imdb_id VARCHAR NOT NULL UNIQUE,
		title VARCHAR NOT NULL,
		year VARCHAR NOT NULL DEFAULT '',
		film_type VARCHAR NOT NULL DEFAULT '',
		poster VARCHAR NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE TABLE IF NOT EXISTS target_types (
		id BIGINT PRIMARY KEY DEFAULT nextval('seq_target_types_id'),
		name VARCHAR NOT NULL UNIQUE
	)`,

	`CREATE TABLE IF NOT EXISTS reviews (
		id VARCHAR PRIMARY KEY,
		user_id BIGINT NOT NULL,
		target_type_id BIGINT NOT NULL,
		target_id BIGINT NOT NULL,
		title VARCHAR NOT NULL,
		content VARCHAR NOT NULL,
		rating DECIMAL(2,1) NOT NULL,
		created_at TIMESTAMP NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`,

	`CREATE INDEX IF NOT EXISTS idx_reviews_target ON reviews(target_type_id, target_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_user ON reviews(user_id)`,
	`CREATE INDEX IF NOT EXISTS idx_reviews_rating ON reviews(rating)`,
	`CREATE INDEX IF NOT EXISTS idx_movies_title ON movies(title)`,
}

// createSchema executes all schema statements.
func (db *DB) createSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("schema statement failed: %w", err)
		}
	}
	return nil
}

// seedTargetTypes registers the built-in reviewable types.
func (db *DB) seedTargetTypes() error {
	_, err := db.conn.Exec(
		`INSERT INTO target_types (id, name) VALUES (nextval('seq_target_types_id'), 'movie')
		 ON CONFLICT (name) DO NOTHING`,
	)
	if err != nil {
		return fmt.Errorf("failed to seed target_types: %w", err)
	}
	return nil
}
