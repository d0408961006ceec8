package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/application"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/response"
	"github.com/tonearm/tonearm/pkg/validation"
)

// AlbumHandler fronts the external catalog. Album ids are opaque catalog
// strings, never local row ids.
type AlbumHandler struct {
	Albums   *application.AlbumService
	Reviews  *application.ReviewService
	Statuses *application.StatusService
	Logger   *logrus.Logger
}

func NewAlbumHandler(albums *application.AlbumService, reviews *application.ReviewService, statuses *application.StatusService, logger *logrus.Logger) *AlbumHandler {
	return &AlbumHandler{Albums: albums, Reviews: reviews, Statuses: statuses, Logger: logger}
}

type albumReviewRequest struct {
	Content string   `json:"content" binding:"required,min=1,max=5000"`
	Rating  *float64 `json:"rating" binding:"omitempty,halfstep"`
}

type albumStatusRequest struct {
	Status     string `json:"status" binding:"required,oneof=listened want-to-listen favorite"`
	IsFavorite bool   `json:"is_favorite"`
}

func (h *AlbumHandler) Search(c *gin.Context) {
	total, albums, err := h.Albums.SearchAlbums(c.Request.Context(), c.Query("q"), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, albums)
}

func (h *AlbumHandler) Get(c *gin.Context) {
	album, err := h.Albums.GetAlbum(c.Request.Context(), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, album)
}

func (h *AlbumHandler) AlbumReviews(c *gin.Context) {
	filter := repository.ReviewFilter{SpotifyAlbumID: c.Param("id")}
	total, reviews, err := h.Reviews.List(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, toReviewOuts(reviews))
}

func (h *AlbumHandler) AlbumStatuses(c *gin.Context) {
	filter := repository.StatusFilter{SpotifyAlbumID: c.Param("id")}
	total, statuses, err := h.Statuses.List(c.Request.Context(), filter, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, toStatusOuts(statuses))
}

// CreateAlbumReview writes a review under the album in the path; any
// album_id in the body is ignored.
func (h *AlbumHandler) CreateAlbumReview(c *gin.Context) {
	var req albumReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	review, err := h.Reviews.Upsert(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.Content, req.Rating)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toReviewOut(review))
}

func (h *AlbumHandler) CreateAlbumStatus(c *gin.Context) {
	var req albumStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	status, err := h.Statuses.Set(c.Request.Context(), currentUser(c).ID, c.Param("id"), req.Status, req.IsFavorite)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toStatusOut(status))
}

// SpotifyLogin hands back the authorization URL for linking the acting
// user's Spotify account.
func (h *AlbumHandler) SpotifyLogin(c *gin.Context) {
	authorizeURL, err := h.Albums.BeginLink(currentUser(c).ID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"authorize_url": authorizeURL})
}

// SpotifyCallback is hit by the browser redirect, so it cannot carry a
// bearer token; the signed state parameter identifies the user instead.
func (h *AlbumHandler) SpotifyCallback(c *gin.Context) {
	user, err := h.Albums.CompleteLink(c.Request.Context(), c.Query("code"), c.Query("state"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "linked", "id": user.ID})
}
