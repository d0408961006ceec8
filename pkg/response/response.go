// Package response writes the API's wire format: plain JSON payloads on
// success, `{"detail": ...}` on failure, `{"total": n, "items": [...]}` for
// paginated lists. Detail is a string except for validation failures, where
// it is the itemized field list.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/tonearm/tonearm/pkg/apperr"
)

// ListEnvelope is the body of every list endpoint. Total comes from a count
// query over the same predicate as the page, so it is independent of
// limit/offset.
type ListEnvelope struct {
	Total int64 `json:"total"`
	Items any   `json:"items"`
}

// JSON writes an arbitrary success payload.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// List writes a `{total, items}` envelope.
func List(c *gin.Context, total int64, items any) {
	c.JSON(http.StatusOK, ListEnvelope{Total: total, Items: items})
}

// Deleted writes the `{"status": "deleted", "id": n}` body shared by all
// delete endpoints.
func Deleted(c *gin.Context, id int64) {
	c.JSON(http.StatusOK, gin.H{"status": "deleted", "id": id})
}

// Detail writes an error body with the given status.
func Detail(c *gin.Context, status int, detail any) {
	c.JSON(status, gin.H{"detail": detail})
}

// Error maps a domain error onto the HTTP contract. Errors outside the
// apperr taxonomy become a 500 with a fixed body; the cause belongs in the
// caller's log, never in the response.
func Error(c *gin.Context, err error) {
	var (
		vErr *apperr.ValidationError
		cErr *apperr.ConflictError
		aErr *apperr.AuthError
		fErr *apperr.ForbiddenError
		nErr *apperr.NotFoundError
	)
	switch {
	case errors.As(err, &vErr):
		Detail(c, http.StatusBadRequest, vErr.Fields)
	case errors.As(err, &cErr):
		if cErr.Field != "" {
			// Registration-time uniqueness keeps the observed contract:
			// 400 with the conflict itemized under its field.
			Detail(c, http.StatusBadRequest, []apperr.FieldError{{Field: cErr.Field, Message: cErr.Message}})
			return
		}
		Detail(c, http.StatusConflict, cErr.Message)
	case errors.As(err, &aErr):
		c.Header("WWW-Authenticate", "Bearer")
		Detail(c, http.StatusUnauthorized, aErr.Message)
	case errors.As(err, &fErr):
		Detail(c, http.StatusForbidden, fErr.Message)
	case errors.As(err, &nErr):
		Detail(c, http.StatusNotFound, nErr.Error())
	default:
		Detail(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

// AbortError is Error plus request abortion, for middleware use.
func AbortError(c *gin.Context, err error) {
	Error(c, err)
	c.Abort()
}

// AbortDetail is Detail plus request abortion, for middleware use.
func AbortDetail(c *gin.Context, status int, detail any) {
	Detail(c, status, detail)
	c.Abort()
}
