package goals

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	httperr "github.com/squagol/squadgoals/internal/core/errors"
	"github.com/squagol/squadgoals/internal/core/partition"
	"github.com/squagol/squadgoals/internal/core/storage"
)

// RegisterRoutes registers group and goal management routes. Reads are open
// to squad members; writes require the squad admin. Groups live under their
// own /goal-groups segment so goal ids and group routes never share a path
// position.
func (s *Service) RegisterRoutes(r gin.IRouter, read, write gin.HandlersChain) {
	g := r.Group("/v1/squads/:squad_id/goals")
	g.GET("", append(read, s.ListGoalsHandler)...)
	g.POST("", append(write, s.SaveGoalHandler)...)
	g.DELETE("/:goal_id", append(write, s.DeleteGoalHandler)...)

	gg := r.Group("/v1/squads/:squad_id/goal-groups")
	gg.GET("", append(read, s.ListGroupsHandler)...)
	gg.POST("", append(write, s.SaveGroupHandler)...)
	gg.DELETE("/:group_id", append(write, s.DeleteGroupHandler)...)
	gg.POST("/from-template", append(write, s.ApplyTemplateHandler)...)

	// Template catalog needs no squad context.
	r.GET("/v1/goal-templates", s.ListTemplatesHandler)
}

func (s *Service) ListGroupsHandler(c *gin.Context) {
	groups, err := s.ListGroups(c.Request.Context(), c.Param("squad_id"))
	if err != nil {
		writeStoreError(c, err, "Failed to list goal groups")
		return
	}
	if groups == nil {
		groups = []*v1.GoalGroup{}
	}
	c.JSON(http.StatusOK, gin.H{"groups": groups})
}

func (s *Service) SaveGroupHandler(c *gin.Context) {
	var req GroupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}

	group, err := s.SaveGroup(c.Request.Context(), c.Param("squad_id"), &req)
	if err != nil {
		if isPartitionConfigError(err) || errors.Is(err, ErrMissingName) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidPartition,
				Message:   err.Error(),
			})
			return
		}
		writeStoreError(c, err, "Failed to save goal group")
		return
	}
	c.JSON(http.StatusOK, group)
}

func (s *Service) DeleteGroupHandler(c *gin.Context) {
	if err := s.DeleteGroup(c.Request.Context(), c.Param("squad_id"), c.Param("group_id")); err != nil {
		writeStoreError(c, err, "Failed to delete goal group")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Service) ListGoalsHandler(c *gin.Context) {
	goals, err := s.ListGoals(c.Request.Context(), c.Param("squad_id"))
	if err != nil {
		writeStoreError(c, err, "Failed to list goals")
		return
	}
	if goals == nil {
		goals = []*v1.Goal{}
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals})
}

func (s *Service) SaveGoalHandler(c *gin.Context) {
	var req GoalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}

	g, err := s.SaveGoal(c.Request.Context(), c.Param("squad_id"), &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrUnknownKind), errors.Is(err, ErrGroupImmutable), errors.Is(err, ErrMissingName):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   err.Error(),
			})
		default:
			writeStoreError(c, err, "Failed to save goal")
		}
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Service) DeleteGoalHandler(c *gin.Context) {
	if err := s.DeleteGoal(c.Request.Context(), c.Param("squad_id"), c.Param("goal_id")); err != nil {
		writeStoreError(c, err, "Failed to delete goal")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Service) ApplyTemplateHandler(c *gin.Context) {
	var req TemplateApplyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeInvalidJSON(c, err)
		return
	}

	group, created, err := s.ApplyTemplate(c.Request.Context(), c.Param("squad_id"), &req)
	if err != nil {
		if isPartitionConfigError(err) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidPartition,
				Message:   err.Error(),
			})
			return
		}
		// Unknown template names and unconfigured repositories read as 400:
		// the request named something that does not exist.
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   err.Error(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{"group": group, "goals": created})
}

func (s *Service) ListTemplatesHandler(c *gin.Context) {
	templates := s.Templates()
	if templates == nil {
		templates = []GoalTemplate{}
	}
	c.JSON(http.StatusOK, gin.H{"templates": templates})
}

// isPartitionConfigError matches every validation failure ValidateConfig can
// produce.
func isPartitionConfigError(err error) bool {
	return errors.Is(err, partition.ErrInvalidType) ||
		errors.Is(err, partition.ErrMissingLabel) ||
		errors.Is(err, partition.ErrNonIntegerCounterBound) ||
		errors.Is(err, partition.ErrInvalidCounterRange) ||
		errors.Is(err, partition.ErrMissingDateBounds) ||
		errors.Is(err, partition.ErrInvalidDateFormat) ||
		errors.Is(err, partition.ErrNonChronologicalRange)
}

func writeInvalidJSON(c *gin.Context, err error) {
	slog.Warn("Invalid JSON body received", "error", err)
	c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
		ErrorType: httperr.HttpInvalidJsonError,
		Message:   "Invalid JSON body",
	})
}

func writeStoreError(c *gin.Context, err error, msg string) {
	if errors.Is(err, storage.ErrNotFound) {
		c.JSON(http.StatusNotFound, httperr.ErrorResponse{
			ErrorType: httperr.HttpNotFoundError,
			Message:   "Not found",
		})
		return
	}
	slog.Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   msg,
	})
}
