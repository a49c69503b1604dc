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

	"github.com/google/uuid"

	"github.com/solmarita/filmopine/internal/models"
)

// reviewsMutex serializes review writes.
var reviewsMutex sync.Mutex

// reviewSelect joins reviews with users and target metadata. The movies
// join is LEFT so reviews survive deletion of their target; MovieTitle is
// empty for dangling targets.
const reviewSelect = `
	SELECT r.id, r.user_id, u.username, tt.name, r.target_id,
	       r.title, r.content, r.rating, r.created_at, r.updated_at,
	       m.title
	FROM reviews r
	JOIN users u ON u.id = r.user_id
	JOIN target_types tt ON tt.id = r.target_type_id
	LEFT JOIN movies m ON tt.name = 'movie' AND m.id = r.target_id
`

// reviewOrder gives a deterministic listing: newest first, UUID as the
// tiebreaker for reviews created in the same instant.
const reviewOrder = ` ORDER BY r.created_at DESC, r.id DESC`

// scanReviewRow scans a joined review row into a Review struct.
func scanReviewRow(scanner interface {
	Scan(dest ...interface{}) error
}) (*models.Review, error) {
	r := &models.Review{}
	var id string
	var targetType string
	var movieTitle sql.NullString

	err := scanner.Scan(
		&id, &r.UserID, &r.Username, &targetType, &r.Target.ID,
		&r.Title, &r.Content, &r.Rating, &r.CreatedAt, &r.UpdatedAt,
		&movieTitle,
	)
	if err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("invalid review id %q: %w", id, err)
	}
	r.ID = parsed
	r.Target.Type = models.TargetType(targetType)
	if movieTitle.Valid {
		r.MovieTitle = movieTitle.String
	}
	return r, nil
}

// targetTypeID resolves a target type name to its row ID, or
// ErrInvalidTargetType for unregistered names.
func (db *DB) targetTypeID(ctx context.Context, t models.TargetType) (int64, error) {
	var id int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT id FROM target_types WHERE name = ?`, string(t),
	).Scan(&id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrInvalidTargetType
		}
		return 0, fmt.Errorf("failed to resolve target type %q: %w", t, err)
	}
	return id, nil
}

// targetExists reports whether the entity addressed by ref currently
// exists.
func (db *DB) targetExists(ctx context.Context, ref models.TargetRef) (bool, error) {
	switch ref.Type {
	case models.TargetMovie:
		var count int
		err := db.conn.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM movies WHERE id = ?`, ref.ID,
		).Scan(&count)
		if err != nil {
			return false, fmt.Errorf("failed to check movie %d: %w", ref.ID, err)
		}
		return count > 0, nil
	default:
		return false, ErrInvalidTargetType
	}
}

// CreateReview attaches a new review to a target entity. The target must
// be a registered type and must exist at creation time; violations
// surface as ErrInvalidTargetType and ErrTargetNotFound. On success the
// ID and timestamps are populated on the passed struct.
func (db *DB) CreateReview(ctx context.Context, review *models.Review) error {
	reviewsMutex.Lock()
	defer reviewsMutex.Unlock()

	typeID, err := db.targetTypeID(ctx, review.Target.Type)
	if err != nil {
		return err
	}

	// Existence check and insert run under reviewsMutex, and movie
	// deletion takes moviesMutex, so a sliver of raciness remains.
	// Dangling targets are tolerated at read time regardless, so a lost
	// race only produces a review that reads as target-deleted.
	exists, err := db.targetExists(ctx, review.Target)
	if err != nil {
		return err
	}
	if !exists {
		return ErrTargetNotFound
	}

	if review.ID == uuid.Nil {
		review.ID = uuid.New()
	}
	now := time.Now().UTC()
	review.CreatedAt = now
	review.UpdatedAt = now

	query := `
		INSERT INTO reviews (id, user_id, target_type_id, target_id, title, content, rating, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = db.conn.ExecContext(ctx, query,
		review.ID.String(), review.UserID, typeID, review.Target.ID,
		review.Title, review.Content, review.Rating,
		review.CreatedAt, review.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create review: %w", err)
	}

	return nil
}

// GetReviewByID returns one review with its author and resolved target
// title, or ErrReviewNotFound.
func (db *DB) GetReviewByID(ctx context.Context, id uuid.UUID) (*models.Review, error) {
	query := reviewSelect + ` WHERE r.id = ?`

	review, err := scanReviewRow(db.conn.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review %s: %w", id, err)
	}
	return review, nil
}

// GetReviewForTarget returns one review scoped to a target, or
// ErrReviewNotFound when the review does not exist or belongs to a
// different target.
func (db *DB) GetReviewForTarget(ctx context.Context, ref models.TargetRef, id uuid.UUID) (*models.Review, error) {
	typeID, err := db.targetTypeID(ctx, ref.Type)
	if err != nil {
		return nil, err
	}

	query := reviewSelect + ` WHERE r.id = ? AND r.target_type_id = ? AND r.target_id = ?`

	review, err := scanReviewRow(db.conn.QueryRowContext(ctx, query, id.String(), typeID, ref.ID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrReviewNotFound
		}
		return nil, fmt.Errorf("failed to get review %s for %s: %w", id, ref, err)
	}
	return review, nil
}

// ListReviewsForTarget returns a page of the reviews attached to one
// target, newest first, plus the total count.
func (db *DB) ListReviewsForTarget(ctx context.Context, ref models.TargetRef, page, pageSize int) ([]*models.Review, int64, error) {
	typeID, err := db.targetTypeID(ctx, ref.Type)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE target_type_id = ? AND target_id = ?`, typeID, ref.ID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews for %s: %w", ref, err)
	}

	query := reviewSelect + ` WHERE r.target_type_id = ? AND r.target_id = ?` + reviewOrder + ` LIMIT ? OFFSET ?`
	return db.queryReviews(ctx, query, total, typeID, ref.ID, pageSize, (page-1)*pageSize)
}

// ListReviewsByUser returns a page of one user's reviews, newest first.
func (db *DB) ListReviewsByUser(ctx context.Context, userID int64, page, pageSize int) ([]*models.Review, int64, error) {
	var total int64
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE user_id = ?`, userID,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews for user %d: %w", userID, err)
	}

	query := reviewSelect + ` WHERE r.user_id = ?` + reviewOrder + ` LIMIT ? OFFSET ?`
	return db.queryReviews(ctx, query, total, userID, pageSize, (page-1)*pageSize)
}

// ListReviews returns a page of all reviews, newest first.
func (db *DB) ListReviews(ctx context.Context, page, pageSize int) ([]*models.Review, int64, error) {
	var total int64
	if err := db.conn.QueryRowContext(ctx, `SELECT COUNT(*) FROM reviews`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reviews: %w", err)
	}

	query := reviewSelect + reviewOrder + ` LIMIT ? OFFSET ?`
	return db.queryReviews(ctx, query, total, pageSize, (page-1)*pageSize)
}

// ReviewSearchFilter narrows a review search. A nil Rating matches any
// rating; MovieTitle matches case-insensitively as a substring.
type ReviewSearchFilter struct {
	MovieTitle string
	Rating     *float64
}

// SearchReviews returns reviews whose resolved movie title contains the
// given fragment and whose rating matches exactly when a rating filter is
// set.
func (db *DB) SearchReviews(ctx context.Context, filter ReviewSearchFilter, page, pageSize int) ([]*models.Review, int64, error) {
	where := ` WHERE 1=1`
	args := []interface{}{}

	if filter.MovieTitle != "" {
		where += ` AND m.title ILIKE ?`
		args = append(args, "%"+filter.MovieTitle+"%")
	}
	if filter.Rating != nil {
		where += ` AND r.rating = ?`
		args = append(args, *filter.Rating)
	}

	countQuery := `
		SELECT COUNT(*)
		FROM reviews r
		JOIN target_types tt ON tt.id = r.target_type_id
		LEFT JOIN movies m ON tt.name = 'movie' AND m.id = r.target_id
	` + where
	var total int64
	if err := db.conn.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count review search: %w", err)
	}

	query := reviewSelect + where + reviewOrder + ` LIMIT ? OFFSET ?`
	args = append(args, pageSize, (page-1)*pageSize)
	return db.queryReviews(ctx, query, total, args...)
}

// queryReviews runs a review listing query and scans all rows.
func (db *DB) queryReviews(ctx context.Context, query string, total int64, args ...interface{}) ([]*models.Review, int64, error) {
	rows, err := db.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]*models.Review, 0)
	for rows.Next() {
		review, err := scanReviewRow(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan review row: %w", err)
		}
		reviews = append(reviews, review)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate review rows: %w", err)
	}

	return reviews, total, nil
}

// UpdateReview updates a review's content fields. When ownerID is
// non-nil the update only applies if the review belongs to that user;
// the guard lives in the WHERE clause so a permission check cannot go
// stale between read and write. Returns ErrNotOwner when the row exists
// but the guard rejected it.
func (db *DB) UpdateReview(ctx context.Context, review *models.Review, ownerID *int64) error {
	reviewsMutex.Lock()
	defer reviewsMutex.Unlock()

	review.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE reviews
		SET title = ?, content = ?, rating = ?, updated_at = ?
		WHERE id = ?
	`
	args := []interface{}{
		review.Title, review.Content, review.Rating, review.UpdatedAt, review.ID.String(),
	}
	if ownerID != nil {
		query += ` AND user_id = ?`
		args = append(args, *ownerID)
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to update review %s: %w", review.ID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check update result: %w", err)
	}
	if affected == 0 {
		return db.classifyReviewMiss(ctx, review.ID, ownerID)
	}

	return nil
}

// DeleteReview removes a review, with the same ownership guard semantics
// as UpdateReview.
func (db *DB) DeleteReview(ctx context.Context, id uuid.UUID, ownerID *int64) error {
	reviewsMutex.Lock()
	defer reviewsMutex.Unlock()

	query := `DELETE FROM reviews WHERE id = ?`
	args := []interface{}{id.String()}
	if ownerID != nil {
		query += ` AND user_id = ?`
		args = append(args, *ownerID)
	}

	result, err := db.conn.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to delete review %s: %w", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check delete result: %w", err)
	}
	if affected == 0 {
		return db.classifyReviewMiss(ctx, id, ownerID)
	}

	return nil
}

// classifyReviewMiss distinguishes "no such review" from "review owned by
// someone else" after a guarded mutation touched zero rows.
func (db *DB) classifyReviewMiss(ctx context.Context, id uuid.UUID, ownerID *int64) error {
	var count int
	err := db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM reviews WHERE id = ?`, id.String(),
	).Scan(&count)
	if err != nil {
		return fmt.Errorf("failed to classify review miss: %w", err)
	}
	if count == 0 {
		return ErrReviewNotFound
	}
	if ownerID != nil {
		return ErrNotOwner
	}
	return ErrReviewNotFound
}

// AggregateForTarget returns the review count and average rating for one
// target. Average is nil when the target has no reviews.
func (db *DB) AggregateForTarget(ctx context.Context, ref models.TargetRef) (models.ReviewAggregate, error) {
	typeID, err := db.targetTypeID(ctx, ref.Type)
	if err != nil {
		return models.ReviewAggregate{}, err
	}

	var agg models.ReviewAggregate
	var avg sql.NullFloat64
	err = db.conn.QueryRowContext(ctx,
		`SELECT COUNT(*), AVG(rating) FROM reviews WHERE target_type_id = ? AND target_id = ?`,
		typeID, ref.ID,
	).Scan(&agg.Count, &avg)
	if err != nil {
		return models.ReviewAggregate{}, fmt.Errorf("failed to aggregate reviews for %s: %w", ref, err)
	}
	if avg.Valid {
		agg.Average = &avg.Float64
	}
	return agg, nil
}

// ResolveTargetTitle returns the display title for a target, or ok=false
// when the target row no longer exists.
func (db *DB) ResolveTargetTitle(ctx context.Context, ref models.TargetRef) (string, bool, error) {
	switch ref.Type {
	case models.TargetMovie:
		var title string
		err := db.conn.QueryRowContext(ctx,
			`SELECT title FROM movies WHERE id = ?`, ref.ID,
		).Scan(&title)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return "", false, nil
			}
			return "", false, fmt.Errorf("failed to resolve title for %s: %w", ref, err)
		}
		return title, true, nil
	default:
		return "", false, ErrInvalidTargetType
	}
}
