package history

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	httperr "github.com/squagol/squadgoals/internal/core/errors"
	"github.com/squagol/squadgoals/internal/core/storage"
	"github.com/squagol/squadgoals/internal/server"
)

// RegisterRoutes registers the goal history routes. The supplied middleware
// chain (identity, squad membership) guards every route.
func (s *Service) RegisterRoutes(r gin.IRouter, guards ...gin.HandlerFunc) {
	g := r.Group("/v1/squads/:squad_id/goals/history", guards...)
	g.GET("", s.HistoryHandler)
	g.GET("/:group_id", s.HistoryHandler)
}

// HistoryHandler handles GET /v1/squads/:squad_id/goals/history[/:group_id].
// Query parameters: page (default 0), page_size (default from config).
func (s *Service) HistoryHandler(c *gin.Context) {
	user := server.CurrentUser(c)
	squadID := c.Param("squad_id")
	groupID := c.Param("group_id")

	page, ok := intQuery(c, "page", 0)
	if !ok {
		return
	}
	pageSize, ok := intQuery(c, "page_size", 0)
	if !ok {
		return
	}

	histories, err := s.History(c.Request.Context(), user.ID, squadID, groupID, page, pageSize)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "Goal group not found",
			})
			return
		}
		slog.Error("Failed to assemble goal history", "error", err, "squad_id", squadID, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to assemble goal history",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"goals": histories})
}

// intQuery parses an optional non-negative integer query parameter. Writes
// the error response itself and returns ok=false on a malformed value.
func intQuery(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Query parameter " + name + " must be a non-negative integer",
		})
		return 0, false
	}
	return v, true
}
