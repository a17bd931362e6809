package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/kisanlink/agrimandi/internal/middleware"
	"github.com/kisanlink/agrimandi/internal/model"
	"github.com/kisanlink/agrimandi/internal/service"
)

// CreatePostBody is the JSON body for POST /api/v1/posts.
type CreatePostBody struct {
	Category string `json:"category"`
	Title    string `json:"title"`
	Body     string `json:"body"`
	District string `json:"district"`
	State    string `json:"state"`
}

// PostHandler handles community post HTTP requests.
type PostHandler struct {
	postSvc *service.PostService
}

// NewPostHandler creates a new post handler.
func NewPostHandler(postSvc *service.PostService) *PostHandler {
	return &PostHandler{postSvc: postSvc}
}

// CreatePost handles POST /api/v1/posts (authenticated)
//
// Posts with category "alert" are fanned out to the district and its
// neighbors so nearby readers see them under /api/v1/alerts.
func (h *PostHandler) CreatePost(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserID(r.Context())
	if !ok {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "unauthenticated"})
		return
	}

	var body CreatePostBody
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "invalid JSON body",
		})
		return
	}

	category := model.PostCategory(body.Category)
	switch category {
	case "", model.PostGeneral, model.PostQuestion, model.PostAlert:
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "category must be 'general', 'question', or 'alert'",
		})
		return
	}

	post := &model.Post{
		UserID:   userID,
		Category: category,
		Title:    body.Title,
		Body:     body.Body,
		District: body.District,
		State:    body.State,
	}

	created, err := h.postSvc.CreatePost(r.Context(), post)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidPost):
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": "title, district, and state are required",
			})
		default:
			log.Printf("[handler] create post error: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{
				"error": "failed to create post",
			})
		}
		return
	}

	writeJSON(w, http.StatusCreated, created)
}

// ListPosts handles GET /api/v1/posts?district=&limit=
func (h *PostHandler) ListPosts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	posts, err := h.postSvc.ListPosts(r.Context(), q.Get("district"), parseLimit(q.Get("limit")))
	if err != nil {
		log.Printf("[handler] list posts error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list posts",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(posts),
		"posts": posts,
	})
}

// ListAlerts handles GET /api/v1/alerts?district=
//
// Returns alerts visible in the district: raised there or fanned out
// from a neighboring district.
func (h *PostHandler) ListAlerts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	district := q.Get("district")
	if district == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{
			"error": "district is required",
		})
		return
	}

	alerts, err := h.postSvc.ListAlerts(r.Context(), district, parseLimit(q.Get("limit")))
	if err != nil {
		log.Printf("[handler] list alerts error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{
			"error": "failed to list alerts",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"district": district,
		"count":    len(alerts),
		"alerts":   alerts,
	})
}

// parseLimit bounds list sizes; defaults to 50, caps at 200.
func parseLimit(raw string) int {
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 50
	}
	if limit > 200 {
		return 200
	}
	return limit
}
