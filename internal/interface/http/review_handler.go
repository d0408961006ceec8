package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/application"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/apperr"
	"github.com/tonearm/tonearm/pkg/response"
	"github.com/tonearm/tonearm/pkg/validation"
)

type ReviewHandler struct {
	Reviews *application.ReviewService
	Logger  *logrus.Logger
}

func NewReviewHandler(reviews *application.ReviewService, logger *logrus.Logger) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews, Logger: logger}
}

type createReviewRequest struct {
	AlbumID string   `json:"album_id" binding:"required"`
	Content string   `json:"content" binding:"required,min=1,max=5000"`
	Rating  *float64 `json:"rating" binding:"omitempty,halfstep"`
}

type updateReviewRequest struct {
	Content *string  `json:"content" binding:"omitempty,min=1,max=5000"`
	Rating  *float64 `json:"rating" binding:"omitempty,halfstep"`
}

// Create has upsert semantics: reviewing an album twice overwrites the
// first review instead of growing a second row.
func (h *ReviewHandler) Create(c *gin.Context) {
	var req createReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	review, err := h.Reviews.Upsert(c.Request.Context(), currentUser(c).ID, req.AlbumID, req.Content, req.Rating)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toReviewOut(review))
}

func (h *ReviewHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	review, err := h.Reviews.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toReviewOut(review))
}

func (h *ReviewHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	review, err := h.Reviews.Update(c.Request.Context(), currentUser(c).ID, id, req.Content, req.Rating)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toReviewOut(review))
}

func (h *ReviewHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Reviews.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, id)
}

func (h *ReviewHandler) List(c *gin.Context) {
	filter, err := reviewFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	total, reviews, err := h.Reviews.List(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, toReviewOuts(reviews))
}

func reviewFilterFromQuery(c *gin.Context) (repository.ReviewFilter, error) {
	var f repository.ReviewFilter
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, apperr.Validation("user_id", "must be an integer")
		}
		f.UserID = &id
	}
	f.SpotifyAlbumID = c.Query("album_id")
	return f, nil
}
