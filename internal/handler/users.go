package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/artfeed/backend/internal/model"
	"github.com/artfeed/backend/internal/service"
)

type UserHandler struct {
	svc *service.AuthService
}

func NewUserHandler(svc *service.AuthService) *UserHandler {
	return &UserHandler{svc: svc}
}

// GetAuthor godoc
// @Summary Get public info about an author
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param author_name query string true "Author login"
// @Success 200 {object} model.AuthorResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 500 {object} model.ErrorResponse
// @Router /users/author [get]
func (h *UserHandler) GetAuthor(c *gin.Context) {
	author := c.Query("author_name")
	if author == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "author_name is required"})
		return
	}

	info, err := h.svc.AuthorInfo(c.Request.Context(), author)
	if err != nil {
		if errors.Is(err, service.ErrIncorrectLogin) {
			c.JSON(http.StatusNotFound, gin.H{"error": "author not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
		return
	}
	c.JSON(http.StatusOK, model.AuthorResponse{AuthorInfo: info})
}
