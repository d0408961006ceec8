package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/tonearm/tonearm/internal/application"
	"github.com/tonearm/tonearm/internal/domain/repository"
	"github.com/tonearm/tonearm/pkg/apperr"
	"github.com/tonearm/tonearm/pkg/helpers"
	"github.com/tonearm/tonearm/pkg/response"
	"github.com/tonearm/tonearm/pkg/validation"
)

type UserHandler struct {
	Users    *application.UserService
	Social   *application.SocialService
	Reviews  *application.ReviewService
	Statuses *application.StatusService
	Logger   *logrus.Logger
}

func NewUserHandler(users *application.UserService, social *application.SocialService, reviews *application.ReviewService, statuses *application.StatusService, logger *logrus.Logger) *UserHandler {
	return &UserHandler{Users: users, Social: social, Reviews: reviews, Statuses: statuses, Logger: logger}
}

type profilePictureRequest struct {
	Filename    string `json:"filename" binding:"required"`
	ContentType string `json:"content_type"`
}

// pathID parses the :id segment. Non-numeric ids are a validation error,
// not a 404; the route matched, the value did not.
func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, apperr.Validation("id", "must be a positive integer"))
		return 0, false
	}
	return id, true
}

func pageFromQuery(c *gin.Context) helpers.Page {
	return helpers.ParsePage(c.Query("limit"), c.Query("offset"))
}

func (h *UserHandler) Me(c *gin.Context) {
	response.JSON(c, http.StatusOK, toMeOut(currentUser(c)))
}

func (h *UserHandler) PresignProfilePicture(c *gin.Context) {
	var req profilePictureRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, validation.ToValidationError(err))
		return
	}
	upload, err := h.Users.PresignProfilePicture(c.Request.Context(), currentUser(c), req.Filename, req.ContentType)
	if err != nil {
		if h.Logger != nil {
			h.Logger.WithError(err).WithField("request_id", c.GetString("request_id")).Warn("presign profile picture")
		}
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{
		"upload_url": upload.UploadURL,
		"public_url": upload.ProfilePicture,
	})
}

func (h *UserHandler) List(c *gin.Context) {
	total, users, err := h.Users.List(c.Request.Context(), pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, toUserOuts(users))
}

func (h *UserHandler) Search(c *gin.Context) {
	size, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	total, hits, err := h.Users.SearchUsers(c.Request.Context(), c.Query("q"), size)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, hits)
}

func (h *UserHandler) Profile(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	h.renderProfile(c, id)
}

func (h *UserHandler) ProfileByUsername(c *gin.Context) {
	user, err := h.Users.GetByUsername(c.Request.Context(), c.Param("username"))
	if err != nil {
		response.Error(c, err)
		return
	}
	h.renderProfile(c, user.ID)
}

func (h *UserHandler) renderProfile(c *gin.Context, subjectID int64) {
	var viewerID *int64
	if viewer := currentUser(c); viewer != nil {
		viewerID = &viewer.ID
	}
	view, err := h.Social.ProfileView(c.Request.Context(), viewerID, subjectID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, toProfileOut(view))
}

func (h *UserHandler) Delete(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Users.Delete(c.Request.Context(), currentUser(c), id); err != nil {
		response.Error(c, err)
		return
	}
	response.Deleted(c, id)
}

func (h *UserHandler) Follow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Social.Follow(c.Request.Context(), currentUser(c).ID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "followed", "id": id})
}

func (h *UserHandler) Unfollow(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.Social.Unfollow(c.Request.Context(), currentUser(c).ID, id); err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"status": "unfollowed", "id": id})
}

func (h *UserHandler) Followers(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	users, err := h.Social.FollowersOf(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, int64(len(users)), toUserOuts(users))
}

func (h *UserHandler) Following(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	users, err := h.Social.FollowingOf(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, int64(len(users)), toUserOuts(users))
}

func (h *UserHandler) UserReviews(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.Users.GetByID(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	total, reviews, err := h.Reviews.List(c.Request.Context(), repository.ReviewFilter{UserID: &id}, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, toReviewOuts(reviews))
}

func (h *UserHandler) UserStatuses(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if _, err := h.Users.GetByID(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	total, statuses, err := h.Statuses.List(c.Request.Context(), repository.StatusFilter{UserID: &id}, pageFromQuery(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.List(c, total, toStatusOuts(statuses))
}
