package entries

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	v1 "github.com/squagol/squadgoals/internal/api/v1"
	httperr "github.com/squagol/squadgoals/internal/core/errors"
	"github.com/squagol/squadgoals/internal/core/partition"
	"github.com/squagol/squadgoals/internal/server"
)

const (
	msgReadBodyFailed = "Failed to read request body"
	msgInvalidJSON    = "Invalid JSON body"
	msgRecordFailed   = "Failed to record entries"
)

// SubmitHandler handles POST /v1/squads/:squad_id/goals/entry.
func (s *Service) SubmitHandler(c *gin.Context) {
	user := server.CurrentUser(c)
	squadID := c.Param("squad_id")

	sub, ok := s.parseSubmission(c)
	if !ok {
		return
	}

	result, err := s.Submit(c.Request.Context(), user.ID, squadID, sub)
	if err != nil {
		switch {
		case errors.Is(err, partition.ErrEmptyBoundary):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidBoundary,
				Message:   err.Error(),
			})
		case errors.Is(err, ErrNoKnownGoals):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   "No entries matched goals of this squad",
			})
		default:
			slog.Error("Failed to record entries", "error", err, "squad_id", squadID, "user_id", user.ID)
			c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
				ErrorType: httperr.HttpInternalError,
				Message:   msgRecordFailed,
			})
		}
		return
	}

	slog.Info("Entries recorded",
		"user_id", user.ID,
		"squad_id", squadID,
		"boundary", result.Boundary,
		"recorded", len(result.Entries),
		"skipped", len(result.Skipped))

	c.JSON(http.StatusOK, result)
}

// parseSubmission reads the request body under the configured size limit and
// binds it into an EntrySubmission. Writes the error response itself and
// returns ok=false on failure.
func (s *Service) parseSubmission(c *gin.Context) (*v1.EntrySubmission, bool) {
	maxBytes := int64(s.maxBodySizeBytes)
	limitedBody := io.LimitReader(c.Request.Body, maxBytes+1) // +1 to detect oversized requests

	bodyBytes, err := io.ReadAll(limitedBody)
	if err != nil {
		slog.Error("Failed to read request body", "error", err)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   msgReadBodyFailed,
		})
		return nil, false
	}

	if int64(len(bodyBytes)) > maxBytes {
		slog.Warn("Request body exceeds maximum size", "size", len(bodyBytes), "max", maxBytes)
		c.JSON(http.StatusRequestEntityTooLarge, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Request body exceeds maximum allowed size",
			Details: map[string]interface{}{
				"max_size_mb": maxBytes / (1024 * 1024),
			},
		})
		return nil, false
	}

	c.Request.Body = io.NopCloser(bytes.NewReader(bodyBytes))

	var sub v1.EntrySubmission
	if err := c.ShouldBindJSON(&sub); err != nil {
		slog.Warn("Invalid JSON body received", "error", err, "payload_size", len(bodyBytes))
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   msgInvalidJSON,
		})
		return nil, false
	}
	return &sub, true
}

// GetEntriesHandler handles GET /v1/squads/:squad_id/goals/entry.
// Query parameters: date (required), goal_id (optional).
func (s *Service) GetEntriesHandler(c *gin.Context) {
	user := server.CurrentUser(c)
	squadID := c.Param("squad_id")

	rows, err := s.Get(c.Request.Context(), user.ID, squadID, c.Query("date"), c.Query("goal_id"))
	if err != nil {
		if errors.Is(err, partition.ErrEmptyBoundary) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidBoundary,
				Message:   err.Error(),
			})
			return
		}
		slog.Error("Failed to fetch entries", "error", err, "squad_id", squadID, "user_id", user.ID)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to fetch entries",
		})
		return
	}

	if rows == nil {
		rows = []*v1.Entry{}
	}
	c.JSON(http.StatusOK, gin.H{"entries": rows})
}

// DayViewHandler handles GET /v1/squads/:squad_id/goals/entries/day.
// Query parameters: date, or start_date + end_date; defaults to today when
// none are supplied.
func (s *Service) DayViewHandler(c *gin.Context) {
	squadID := c.Param("squad_id")

	byUser, err := s.DayView(c.Request.Context(), squadID,
		c.Query("date"), c.Query("start_date"), c.Query("end_date"))
	if err != nil {
		if errors.Is(err, ErrInvalidDayRange) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidBoundary,
				Message:   err.Error(),
			})
			return
		}
		slog.Error("Failed to fetch day view", "error", err, "squad_id", squadID)
		c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
			ErrorType: httperr.HttpInternalError,
			Message:   "Failed to fetch day view",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries_by_user": byUser})
}
