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

// moviesMutex serializes movie writes, including catalog sync upserts.
var moviesMutex sync.Mutex

// scanMovieRow scans a movies row into a Movie struct.
func scanMovieRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Movie, error) {
	m := &models.Movie{}
	err := scanner.Scan(
		&m.ID, &m.IMDbID, &m.Title, &m.Year, &m.Type, &m.Poster,
		&m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return m, nil
}

const movieColumns = `id, imdb_id, title, year, film_type, poster, created_at, updated_at`

// UpsertMovie inserts a movie or, when the IMDb ID is already known,
// refreshes the mutable fields of the existing row. The row's local ID
// and created_at are preserved across updates, so repeated catalog
// searches are idempotent.
func (db *DB) UpsertMovie(ctx context.Context, in models.MovieUpsert) (*models.Movie, error) {
	moviesMutex.Lock()
	defer moviesMutex.Unlock()

	return db.upsertMovieLocked(ctx, in)
}

// UpsertMovies upserts a batch in order under a single lock acquisition.
// Used by catalog sync to persist one upstream result page.
func (db *DB) UpsertMovies(ctx context.Context, ins []models.MovieUpsert) ([]*models.Movie, error) {
	moviesMutex.Lock()
	defer moviesMutex.Unlock()

	movies := make([]*models.Movie, 0, len(ins))
	for _, in := range ins {
		movie, err := db.upsertMovieLocked(ctx, in)
		if err != nil {
			return nil, err
		}
		movies = append(movies, movie)
	}
	return movies, nil
}

// upsertMovieLocked performs the insert-or-update. Caller must hold
// moviesMutex.
func (db *DB) upsertMovieLocked(ctx context.Context, in models.MovieUpsert) (*models.Movie, error) {
	now := time.Now().UTC()

	query := `
		INSERT INTO movies (id, imdb_id, title, year, film_type, poster, created_at, updated_at)
		VALUES (nextval('seq_movies_id'), ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (imdb_id) DO UPDATE SET
			title = excluded.title,
			year = excluded.year,
			film_type = excluded.film_type,
			poster = excluded.poster,
			updated_at = excluded.updated_at
	`
	_, err := db.conn.ExecContext(ctx, query,
		in.IMDbID, in.Title, in.Year, in.Type, in.Poster, now, now,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert movie %s: %w", in.IMDbID, err)
	}

	return db.getMovieByIMDbID(ctx, in.IMDbID)
}

// GetMovieByID returns the movie with the given local ID, or
// ErrMovieNotFound.
func (db *DB) GetMovieByID(ctx context.Context, id int64) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE id = ?`

	movie, err := scanMovieRow(db.conn.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie %d: %w", id, err)
	}
	return movie, nil
}

// GetMovieByIMDbID returns the movie with the given IMDb ID, or
// ErrMovieNotFound.
func (db *DB) GetMovieByIMDbID(ctx context.Context, imdbID string) (*models.Movie, error) {
	return db.getMovieByIMDbID(ctx, imdbID)
}

func (db *DB) getMovieByIMDbID(ctx context.Context, imdbID string) (*models.Movie, error) {
	query := `SELECT ` + movieColumns + ` FROM movies WHERE imdb_id = ?`

	movie, err := scanMovieRow(db.conn.QueryRowContext(ctx, query, imdbID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMovieNotFound
		}
		return nil, fmt.Errorf("failed to get movie %s: %w", imdbID, err)
	}
	return movie, nil
}

// ListMovies returns a page of the local catalog ordered by ID, plus the
// total count.
func (db *DB) ListMovies(ctx context.Context, page, pageSize int) ([]*models.Movie, int64, error) {
	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count movies: %w", err)
	}

	query := `SELECT ` + movieColumns + ` FROM movies ORDER BY id LIMIT ? OFFSET ?`
	rows, err := db.conn.QueryContext(ctx, query, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list movies: %w", err)
	}
	defer rows.Close()

	movies := make([]*models.Movie, 0, pageSize)
	for rows.Next() {
		movie, err := scanMovieRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan movie row: %w", err)
		}
		movies = append(movies, movie)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate movie rows: %w", err)
	}

	return movies, total, nil
}

// UpdateMovie updates the mutable fields of a movie. Returns
// ErrMovieNotFound if the movie does not exist.
func (db *DB) UpdateMovie(ctx context.Context, movie *models.Movie) error {
	moviesMutex.Lock()
	defer moviesMutex.Unlock()

	movie.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE movies
		SET title = ?, year = ?, film_type = ?, poster = ?, updated_at = ?
		WHERE id = ?
	`
	result, err := db.conn.ExecContext(ctx, query,
		movie.Title, movie.Year, movie.Type, movie.Poster, movie.UpdatedAt, movie.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update movie %d: %w", movie.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return ErrMovieNotFound
	}

	return nil
}

// DeleteMovie removes a movie from the local catalog. Reviews attached to
// it are kept; their target simply no longer resolves to a title.
func (db *DB) DeleteMovie(ctx context.Context, id int64) error {
	moviesMutex.Lock()
	defer moviesMutex.Unlock()

	result, err := db.conn.ExecContext(ctx, `DELETE FROM movies WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete movie %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return ErrMovieNotFound
	}

	return nil
}
