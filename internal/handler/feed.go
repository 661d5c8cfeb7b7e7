package handler

import (
	"encoding/base64"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/artfeed/backend/internal/model"
	"github.com/artfeed/backend/internal/service"
)

type FeedHandler struct {
	articles *service.ArticleService
	images   *service.ImageService
}

func NewFeedHandler(articles *service.ArticleService, images *service.ImageService) *FeedHandler {
	return &FeedHandler{articles: articles, images: images}
}

// GetArticles godoc
// @Summary List article announcements
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param author query string false "Filter by author login"
// @Success 200 {object} model.ArticlesResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /feed/articles [get]
func (h *FeedHandler) GetArticles(c *gin.Context) {
	list, err := h.articles.ListAnnouncements(c.Request.Context(), c.Query("author"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, model.ArticlesResponse{Articles: list})
}

// GetArticle godoc
// @Summary Get one article with its image identifiers
// @Tags feed
// @Produce json
// @Security BearerAuth
// @Param article_id query int true "Article id"
// @Success 200 {object} model.Article
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /feed/article [get]
func (h *FeedHandler) GetArticle(c *gin.Context) {
	articleID, ok := queryInt64(c, "article_id")
	if !ok {
		return
	}

	article, err := h.articles.GetArticle(c.Request.Context(), articleID)
	if err != nil {
		if errors.Is(err, service.ErrArticleNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "article not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, article)
}

// AddArticle godoc
// @Summary Publish an article attributed to the caller
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.NewArticle true "Article content"
// @Success 201 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /feed/add_article [post]
func (h *FeedHandler) AddArticle(c *gin.Context) {
	var req model.NewArticle
	if err := c.ShouldBindJSON(&req); err != nil || req.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	// Authorship comes from the verified token, never from the body.
	author := AuthSubject(c)
	if author == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
		return
	}

	if err := h.articles.AddArticles(c.Request.Context(), author, []model.NewArticle{req}); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, model.MessageResponse{Message: "article published"})
}

// RemoveArticle godoc
// @Summary Remove an article and its images
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.RemoveArticleRequest true "Article id"
// @Success 200 {object} model.MessageResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /feed/remove_article [post]
func (h *FeedHandler) RemoveArticle(c *gin.Context) {
	var req model.RemoveArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	if err := h.articles.RemoveArticle(c.Request.Context(), req.ArticleID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, model.MessageResponse{Message: "article removed"})
}

// AddImages godoc
// @Summary Attach images to an article
// @Description Payloads are base64-encoded; identifiers come back in input order.
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.AddImagesRequest true "Article id and base64 payloads"
// @Success 201 {object} model.AddImagesResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /feed/add_images [post]
func (h *FeedHandler) AddImages(c *gin.Context) {
	var req model.AddImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	payloads := make([][]byte, 0, len(req.Images))
	for _, encoded := range req.Images {
		payload, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid image encoding"})
			return
		}
		payloads = append(payloads, payload)
	}

	ids, err := h.images.AddImages(c.Request.Context(), req.ArticleID, payloads)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusCreated, model.AddImagesResponse{ImageIDs: ids})
}

// RemoveImages godoc
// @Summary Remove images from an article
// @Description Returns the identifiers that were actually deleted.
// @Tags feed
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body model.RemoveImagesRequest true "Article id and image ids"
// @Success 200 {object} model.RemoveImagesResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /feed/remove_images [post]
func (h *FeedHandler) RemoveImages(c *gin.Context) {
	var req model.RemoveImagesRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ArticleID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	deleted, err := h.images.DeleteImages(c.Request.Context(), req.ArticleID, req.ImageIDs)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, model.RemoveImagesResponse{Deleted: deleted})
}

// GetImage godoc
// @Summary Fetch one image payload
// @Tags feed
// @Produce octet-stream
// @Security BearerAuth
// @Param article_id query int true "Article id"
// @Param image_id query string true "Image id"
// @Success 200 {file} binary
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /feed/image [get]
func (h *FeedHandler) GetImage(c *gin.Context) {
	articleID, ok := queryInt64(c, "article_id")
	if !ok {
		return
	}
	imageID := c.Query("image_id")
	if imageID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image_id is required"})
		return
	}

	payload, err := h.images.GetImageBytes(c.Request.Context(), articleID, imageID)
	if err != nil {
		if errors.Is(err, service.ErrImageNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "image not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.Data(http.StatusOK, "application/octet-stream", payload)
}

func queryInt64(c *gin.Context, name string) (int64, bool) {
	value, err := strconv.ParseInt(c.Query(name), 10, 64)
	if err != nil || value <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return value, true
}
