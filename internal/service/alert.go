package service

import (
	"context"
	"errors"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/kisanlink/agrimandi/internal/model"
	"github.com/kisanlink/agrimandi/internal/repository"
)

// ─── Errors ─────────────────────────────────────────────────

var ErrInvalidPost = errors.New("post is missing required fields")

// ─── PostService ────────────────────────────────────────────

// PostService creates community posts and fans alert posts out to the
// author's district and its neighbors.
type PostService struct {
	posts *repository.PostRepository
}

// NewPostService creates a post service.
func NewPostService(posts *repository.PostRepository) *PostService {
	return &PostService{posts: posts}
}

// CreatePost stores the post and, for alerts, writes one district_alerts
// row per district in the fan-out set. A fan-out failure does not undo the
// post — the alert rows are re-insertable (ON CONFLICT DO NOTHING), so a
// retry or the next alert in the area heals the gap.
func (s *PostService) CreatePost(ctx context.Context, p *model.Post) (*model.Post, error) {
	if p.Title == "" || p.District == "" || p.State == "" {
		return nil, ErrInvalidPost
	}
	if p.Category == "" {
		p.Category = model.PostGeneral
	}
	p.ID = uuid.NewString()

	if err := s.posts.CreatePost(ctx, p); err != nil {
		return nil, err
	}

	if p.Category == model.PostAlert {
		neighbors, err := s.posts.GetNeighborDistricts(ctx, p.State, p.District)
		if err != nil {
			log.Printf("[alert] neighbor lookup failed for %s/%s: %v — alerting home district only",
				p.State, p.District, err)
			neighbors = nil
		}

		targets := FanoutDistricts(p.District, neighbors)
		if err := s.posts.InsertDistrictAlerts(ctx, p.ID, p.State, targets); err != nil {
			log.Printf("[alert] fan-out failed for post %s: %v", p.ID, err)
		} else {
			log.Printf("[alert] post %s fanned out to %d districts", p.ID, len(targets))
		}
	}

	return p, nil
}

// ListPosts returns recent posts, optionally scoped to a district.
func (s *PostService) ListPosts(ctx context.Context, district string, limit int) ([]model.Post, error) {
	return s.posts.ListPosts(ctx, district, limit)
}

// ListAlerts returns the alerts visible in a district: those raised there
// or fanned out from a neighboring district.
func (s *PostService) ListAlerts(ctx context.Context, district string, limit int) ([]model.Post, error) {
	return s.posts.ListAlertsForDistrict(ctx, district, limit)
}

// FanoutDistricts returns the fan-out set for an alert: the home district
// plus its neighbors, de-duplicated case-insensitively, home first.
func FanoutDistricts(home string, neighbors []string) []string {
	seen := map[string]bool{strings.ToLower(home): true}
	targets := []string{home}

	for _, d := range neighbors {
		key := strings.ToLower(d)
		if d == "" || seen[key] {
			continue
		}
		seen[key] = true
		targets = append(targets, d)
	}
	return targets
}
