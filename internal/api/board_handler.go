package api

import (
	"net/http"
	"strconv"

	"github.com/bulletin-board-api/internal/models"
	"github.com/bulletin-board-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// BoardHandler handles category, post and comment endpoints
type BoardHandler struct {
	services *service.Services
	log      zerolog.Logger
}

// NewBoardHandler creates a new BoardHandler
func NewBoardHandler(services *service.Services, log zerolog.Logger) *BoardHandler {
	return &BoardHandler{
		services: services,
		log:      log.With().Str("handler", "board").Logger(),
	}
}

// ListCategories handles GET /v1/categories
func (h *BoardHandler) ListCategories(c *gin.Context) {
	categories, err := h.services.Board.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err, "failed to list categories")
		return
	}
	if categories == nil {
		categories = []*models.Category{}
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// CreateCategory handles POST /v1/categories
func (h *BoardHandler) CreateCategory(c *gin.Context) {
	var req models.CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	category, err := h.services.Board.CreateCategory(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err, "failed to create category")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// UpdateCategory handles PATCH /v1/categories/:id
// Only the board type can change.
func (h *BoardHandler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req struct {
		Type models.CategoryType `json:"type"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	category, err := h.services.Board.UpdateCategoryType(c.Request.Context(), id, req.Type)
	if err != nil {
		respondError(c, h.log, err, "failed to update category")
		return
	}
	c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /v1/categories/:id
func (h *BoardHandler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	removed, err := h.services.Board.DeleteCategory(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "failed to delete category")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "posts_deleted": removed})
}

// ListPosts handles GET /v1/posts?category=...&q=...&page=...
func (h *BoardHandler) ListPosts(c *gin.Context) {
	page, err := strconv.Atoi(c.DefaultQuery("page", "1"))
	if err != nil || page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be a positive integer"})
		return
	}

	result, err := h.services.Board.ListPosts(c.Request.Context(), models.PostListOpts{
		Category: c.Query("category"),
		Query:    c.Query("q"),
		Page:     page,
	})
	if err != nil {
		respondError(c, h.log, err, "failed to list posts")
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetPost handles GET /v1/posts/:id
func (h *BoardHandler) GetPost(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	post, err := h.services.Board.GetPost(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err, "failed to get post")
		return
	}
	c.JSON(http.StatusOK, post)
}

// CreatePost handles POST /v1/posts
func (h *BoardHandler) CreatePost(c *gin.Context) {
	var req models.CreatePostRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	post, err := h.services.Board.CreatePost(c.Request.Context(), &req)
	if err != nil {
		respondError(c, h.log, err, "failed to create post")
		return
	}
	c.JSON(http.StatusCreated, post)
}

// DeletePost handles DELETE /v1/posts/:id
// The password may come from the X-Post-Password header, a JSON body or
// the password query parameter.
func (h *BoardHandler) DeletePost(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	password := c.GetHeader("X-Post-Password")
	if password == "" && c.Request.ContentLength > 0 {
		var body struct {
			Password string `json:"password"`
		}
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
			return
		}
		password = body.Password
	}
	if password == "" {
		password = c.Query("password")
	}

	if err := h.services.Board.DeletePost(c.Request.Context(), id, password); err != nil {
		respondError(c, h.log, err, "failed to delete post")
		return
	}
	c.Status(http.StatusNoContent)
}

// AddComment handles POST /v1/posts/:id/comments
func (h *BoardHandler) AddComment(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}

	var req models.CreateCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	comment, err := h.services.Board.AddComment(c.Request.Context(), id, &req)
	if err != nil {
		respondError(c, h.log, err, "failed to add comment")
		return
	}
	c.JSON(http.StatusCreated, comment)
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "id must be a positive integer"})
		return 0, false
	}
	return id, true
}
