package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/isdelr/aurora-be/internal/auth"
	"github.com/isdelr/aurora-be/internal/models"
	"github.com/isdelr/aurora-be/internal/services"
	"github.com/rs/zerolog/log"
)

// PostHandler handles HTTP requests related to posts.
type PostHandler struct {
	service services.PostServiceProvider
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(service services.PostServiceProvider) *PostHandler {
	return &PostHandler{service: service}
}

// CreatePostPayload is the body of a create request. Any authorId sent by
// the client is ignored.
type CreatePostPayload struct {
	Title   string `json:"title"`
	Author  string `json:"author"`
	Content string `json:"content"`
	Image   string `json:"image"`
}

// GetAll handles the request to get all posts.
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.service.GetAllPosts(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, posts)
}

// Get handles the request to get a single post by its ID.
func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := models.PostID(chi.URLParam(r, "id"))
	post, err := h.service.GetPostByID(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Create handles the request to create a new post.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())

	var payload CreatePostPayload
	if !decodeJSON(w, r, &payload) {
		return
	}

	post, err := h.service.CreatePost(r.Context(), user, payload.Title, payload.Author, payload.Content, payload.Image)
	if err != nil {
		writeError(w, r, err)
		return
	}

	log.Info().Str("post_id", post.ID.String()).Str("user_id", user.ID.String()).Msg("Post created")
	writeJSON(w, http.StatusCreated, post)
}

// Update handles the request to update an existing post.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := models.PostID(chi.URLParam(r, "id"))

	var payload models.PostUpdate
	if !decodeOptionalJSON(w, r, &payload) {
		return
	}

	post, err := h.service.UpdatePost(r.Context(), user, id, payload)
	if err != nil {
		log.Warn().Err(err).Str("post_id", id.String()).Str("user_id", user.ID.String()).Msg("Failed to update post")
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, post)
}

// Delete handles the request to delete a post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, _ := auth.UserFromContext(r.Context())
	id := models.PostID(chi.URLParam(r, "id"))

	if err := h.service.DeletePost(r.Context(), user, id); err != nil {
		log.Warn().Err(err).Str("post_id", id.String()).Str("user_id", user.ID.String()).Msg("Failed to delete post")
		writeError(w, r, err)
		return
	}
	writeMessage(w, http.StatusOK, "Post deleted successfully")
}
