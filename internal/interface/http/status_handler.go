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

type StatusHandler struct {
	Statuses *application.StatusService
	Logger   *logrus.Logger
}

func NewStatusHandler(statuses *application.StatusService, logger *logrus.Logger) *StatusHandler {
	return &StatusHandler{Statuses: statuses, Logger: logger}
}

type createStatusRequest struct {
	AlbumID    string `json:"album_id" binding:"required"`
	Status     string `json:"status" binding:"required,oneof=listened want-to-listen favorite"`
	IsFavorite bool   `json:"is_favorite"`
}

type updateStatusRequest struct {
	Status     *string `json:"status" binding:"omitempty,oneof=listened want-to-listen favorite"`
	IsFavorite *bool   `json:"is_favorite"`
}

// Create has upsert semantics, like reviews: one status row per
// (user, album).
func (h *StatusHandler) Create(c *gin.Context) {
	var req createStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	status, err := h.Statuses.Set(c.Request.Context(), currentUser(c).ID, req.AlbumID, req.Status, req.IsFavorite)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toStatusOut(status))
}

func (h *StatusHandler) Get(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	status, err := h.Statuses.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toStatusOut(status))
}

func (h *StatusHandler) Update(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req updateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	status, err := h.Statuses.Update(c.Request.Context(), currentUser(c).ID, id, req.Status, req.IsFavorite)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toStatusOut(status))
}

func (h *StatusHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Statuses.Delete(c.Request.Context(), currentUser(c).ID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, id)
}

func (h *StatusHandler) List(c *gin.Context) {
	filter, err := statusFilterFromQuery(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	total, statuses, err := h.Statuses.List(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, toStatusOuts(statuses))
}

func statusFilterFromQuery(c *gin.Context) (repository.StatusFilter, error) {
	var f repository.StatusFilter
	if v := c.Query("user_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, apperr.Validation("user_id", "must be an integer")
		}
		f.UserID = &id
	}
	f.SpotifyAlbumID = c.Query("album_id")
	f.Status = c.Query("status")
	if v := c.Query("is_favorite"); v != "" {
		fav, err := strconv.ParseBool(v)
		if err != nil {
			return f, apperr.Validation("is_favorite", "must be a boolean")
		}
		f.IsFavorite = &fav
	}
	return f, nil
}
