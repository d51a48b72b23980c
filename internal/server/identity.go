package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	apperrors "github.com/squagol/squadgoals/internal/core/errors"
	"github.com/squagol/squadgoals/internal/core/storage"
)

const userContextKey = "currentUser"

// UserResolver resolves a caller identity to a known user.
type UserResolver interface {
	GetUser(ctx context.Context, userID int64) (*v1.User, error)
}

// Identity authenticates requests via the X-User-ID header. The header
// carries a trusted identity established upstream (gateway or dev harness);
// requests without a resolvable user are rejected.
func Identity(users UserResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader("X-User-ID")
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.ErrorResponse{
				ErrorType: apperrors.HttpUnauthenticatedError,
				Message:   "missing X-User-ID header",
			})
			return
		}

		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.ErrorResponse{
				ErrorType: apperrors.HttpUnauthenticatedError,
				Message:   "X-User-ID must be an integer",
			})
			return
		}

		user, err := users.GetUser(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.AbortWithStatusJSON(http.StatusUnauthorized, apperrors.ErrorResponse{
					ErrorType: apperrors.HttpUnauthenticatedError,
					Message:   "unknown user",
				})
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, apperrors.ErrorResponse{
				ErrorType: apperrors.HttpInternalError,
				Message:   "failed to resolve user",
			})
			return
		}

		c.Set(userContextKey, user)
		c.Next()
	}
}

// CurrentUser returns the authenticated user placed on the context by
// Identity. It panics if called on a route outside the identity middleware.
func CurrentUser(c *gin.Context) *v1.User {
	return c.MustGet(userContextKey).(*v1.User)
}
