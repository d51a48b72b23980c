package squad

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	httperr "github.com/squagol/squadgoals/internal/core/errors"
	"github.com/squagol/squadgoals/internal/core/storage"
	"github.com/squagol/squadgoals/internal/server"
)

// RequireMember rejects requests from users who do not belong to the squad
// named in the squad_id path parameter.
func (s *Service) RequireMember() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := server.CurrentUser(c)
		squadID := c.Param("squad_id")

		if _, err := s.roster.GetSquad(c.Request.Context(), squadID); err != nil {
			abortSquadLookup(c, err, squadID)
			return
		}

		member, err := s.roster.IsMember(c.Request.Context(), squadID, user.ID)
		if err != nil {
			abortSquadLookup(c, err, squadID)
			return
		}
		if !member {
			c.AbortWithStatusJSON(http.StatusForbidden, httperr.ErrorResponse{
				ErrorType: httperr.HttpForbiddenError,
				Message:   "You are not a member of this squad",
			})
			return
		}
		c.Next()
	}
}

// RequireAdmin rejects requests from anyone but the squad's admin.
func (s *Service) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		user := server.CurrentUser(c)
		squadID := c.Param("squad_id")

		sq, err := s.roster.GetSquad(c.Request.Context(), squadID)
		if err != nil {
			abortSquadLookup(c, err, squadID)
			return
		}
		if sq.AdminID != user.ID {
			c.AbortWithStatusJSON(http.StatusForbidden, httperr.ErrorResponse{
				ErrorType: httperr.HttpForbiddenError,
				Message:   "Only the squad admin can do this",
			})
			return
		}
		c.Next()
	}
}

func abortSquadLookup(c *gin.Context, err error, squadID string) {
	if errors.Is(err, storage.ErrNotFound) {
		c.AbortWithStatusJSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNotFoundError,
			Message:   "Squad not found",
		})
		return
	}
	slog.Error("Failed to resolve squad", "error", err, "squad_id", squadID)
	c.AbortWithStatusJSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   "Failed to resolve squad",
	})
}
