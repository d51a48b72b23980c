// Package profile serves the per-user profile endpoints.
package profile

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	httperr "github.com/squagol/squadgoals/internal/core/errors"
	"github.com/squagol/squadgoals/internal/core/storage"
	"github.com/squagol/squadgoals/internal/server"
)

type Service struct {
	profiles storage.ProfileStore
}

func NewService(profiles storage.ProfileStore) *Service {
	if profiles == nil {
		panic("profile: store must not be nil")
	}
	return &Service{profiles: profiles}
}

func (s *Service) RegisterRoutes(r gin.IRouter, identity gin.HandlerFunc) {
	g := r.Group("/v1/profile", identity)
	g.GET("", s.GetHandler)
	g.PUT("", s.SaveHandler)
}

// GetHandler returns the caller's profile. Users who never saved one get an
// empty profile rather than a 404.
func (s *Service) GetHandler(c *gin.Context) {
	user := server.CurrentUser(c)

	p, err := s.profiles.GetProfile(c.Request.Context(), user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusOK, &v1.Profile{})
			return
		}
		slog.Error("Failed to load profile", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to load profile",
		})
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Service) SaveHandler(c *gin.Context) {
	user := server.CurrentUser(c)

	var p v1.Profile
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Invalid JSON body",
		})
		return
	}

	if err := s.profiles.SaveProfile(c.Request.Context(), user.ID, &p); err != nil {
		slog.Error("Failed to save profile", "error", err, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to save profile",
		})
		return
	}
	c.JSON(http.StatusOK, &p)
}
