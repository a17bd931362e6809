package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kisanlink/agrimandi/internal/model"
)

// PostRepository provides access to community posts, the district adjacency
// table, and the per-district alert fan-out rows.
type PostRepository struct {
	pool *pgxpool.Pool
}

// NewPostRepository creates a new post repository.
func NewPostRepository(pool *pgxpool.Pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// CreatePost inserts a post. The caller supplies the UUID so the fan-out
// can reference it in the same request.
func (r *PostRepository) CreatePost(ctx context.Context, p *model.Post) error {
	query := `
		INSERT INTO posts (id, user_id, category, title, body, district, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`

	err := r.pool.QueryRow(ctx, query,
		p.ID, p.UserID, p.Category, p.Title, p.Body, p.District, p.State,
	).Scan(&p.CreatedAt)
	if err != nil {
		return fmt.Errorf("create post: %w", err)
	}
	return nil
}

// ListPosts returns recent posts, optionally filtered by district.
func (r *PostRepository) ListPosts(ctx context.Context, district string, limit int) ([]model.Post, error) {
	query := `
		SELECT id, user_id, category, title, body, district, state, created_at
		FROM posts
		WHERE ($1 = '' OR LOWER(district) = LOWER($1))
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, district, limit)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

// ListAlertsForDistrict returns alert posts fanned out to the given district,
// newest first. This is what a reader in that district sees — alerts raised
// there or in any neighboring district.
func (r *PostRepository) ListAlertsForDistrict(ctx context.Context, district string, limit int) ([]model.Post, error) {
	query := `
		SELECT p.id, p.user_id, p.category, p.title, p.body, p.district, p.state, p.created_at
		FROM district_alerts da
		JOIN posts p ON p.id = da.post_id
		WHERE LOWER(da.district) = LOWER($1)
		ORDER BY p.created_at DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, district, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts for %s: %w", district, err)
	}
	defer rows.Close()

	return scanPosts(rows)
}

func scanPosts(rows pgx.Rows) ([]model.Post, error) {
	var posts []model.Post
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(
			&p.ID, &p.UserID, &p.Category, &p.Title, &p.Body,
			&p.District, &p.State, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		posts = append(posts, p)
	}
	return posts, rows.Err()
}

// GetNeighborDistricts returns the districts adjacent to the given one,
// from the district_neighbors adjacency table.
func (r *PostRepository) GetNeighborDistricts(ctx context.Context, state, district string) ([]string, error) {
	query := `
		SELECT neighbor_district
		FROM district_neighbors
		WHERE LOWER(state) = LOWER($1) AND LOWER(district) = LOWER($2)
		ORDER BY neighbor_district
	`

	rows, err := r.pool.Query(ctx, query, state, district)
	if err != nil {
		return nil, fmt.Errorf("neighbors of %s/%s: %w", state, district, err)
	}
	defer rows.Close()

	var neighbors []string
	for rows.Next() {
		var d string
		if err := rows.Scan(&d); err != nil {
			return nil, fmt.Errorf("scan neighbor district: %w", err)
		}
		neighbors = append(neighbors, d)
	}
	return neighbors, rows.Err()
}

// InsertDistrictAlerts fans an alert post out to the given districts.
// Duplicate (post, district) pairs are skipped, so re-delivery is safe.
func (r *PostRepository) InsertDistrictAlerts(
	ctx context.Context,
	postID string,
	state string,
	districts []string,
) error {

	query := `
		INSERT INTO district_alerts (post_id, district, state)
		VALUES ($1, $2, $3)
		ON CONFLICT (post_id, district) DO NOTHING
	`

	for _, d := range districts {
		if _, err := r.pool.Exec(ctx, query, postID, d, state); err != nil {
			return fmt.Errorf("fan out post %s to %s: %w", postID, d, err)
		}
	}
	return nil
}
