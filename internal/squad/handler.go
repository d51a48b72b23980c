package squad

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

// RegisterRoutes registers squad, membership and invite routes behind the
// identity middleware.
func (s *Service) RegisterRoutes(r gin.IRouter, identity gin.HandlerFunc) {
	sq := r.Group("/v1/squads", identity)
	sq.GET("", s.ListSquadsHandler)
	sq.POST("", s.CreateSquadHandler)
	sq.GET("/:squad_id", s.RequireMember(), s.GetSquadHandler)
	sq.DELETE("/:squad_id", s.RequireAdmin(), s.DeleteSquadHandler)
	sq.POST("/:squad_id/leave", s.RequireMember(), s.LeaveHandler)
	sq.GET("/:squad_id/members", s.RequireMember(), s.ListMembersHandler)
	sq.DELETE("/:squad_id/members/:user_id", s.RequireAdmin(), s.RemoveMemberHandler)
	sq.POST("/:squad_id/invites", s.RequireAdmin(), s.InviteHandler)
	sq.GET("/:squad_id/invites", s.RequireAdmin(), s.ListSquadInvitesHandler)

	inv := r.Group("/v1/invites", identity)
	inv.GET("", s.ListMyInvitesHandler)
	inv.POST("/:invite_id/accept", s.RespondHandler(true))
	inv.POST("/:invite_id/decline", s.RespondHandler(false))
	inv.DELETE("/:invite_id", s.RevokeInviteHandler)
}

func (s *Service) ListSquadsHandler(c *gin.Context) {
	user := server.CurrentUser(c)

	squads, err := s.roster.SquadsForUser(c.Request.Context(), user.ID)
	if err != nil {
		writeInternal(c, err, "Failed to list squads")
		return
	}
	if squads == nil {
		squads = []*v1.Squad{}
	}
	for _, sq := range squads {
		sq.IsAdmin = sq.AdminID == user.ID
	}
	c.JSON(http.StatusOK, gin.H{"squads": squads})
}

func (s *Service) CreateSquadHandler(c *gin.Context) {
	user := server.CurrentUser(c)

	var req struct {
		Name string `json:"name" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "Squad name is required",
		})
		return
	}

	sq, err := s.CreateSquad(c.Request.Context(), user.ID, req.Name)
	if err != nil {
		if errors.Is(err, storage.ErrDuplicate) {
			c.JSON(http.StatusConflict, httperr.ErrorResponse{
				ErrorType: httperr.HttpConflictError,
				Message:   "A squad with this name already exists",
			})
			return
		}
		writeInternal(c, err, "Failed to create squad")
		return
	}

	slog.Info("Squad created", "squad_id", sq.ID, "admin_id", user.ID)
	c.JSON(http.StatusCreated, sq)
}

func (s *Service) GetSquadHandler(c *gin.Context) {
	user := server.CurrentUser(c)

	sq, err := s.roster.GetSquad(c.Request.Context(), c.Param("squad_id"))
	if err != nil {
		// Membership middleware already resolved the squad; reaching here
		// means it vanished mid-request.
		writeInternal(c, err, "Failed to load squad")
		return
	}
	sq.IsAdmin = sq.AdminID == user.ID
	c.JSON(http.StatusOK, sq)
}

func (s *Service) DeleteSquadHandler(c *gin.Context) {
	squadID := c.Param("squad_id")
	if err := s.roster.DeleteSquad(c.Request.Context(), squadID); err != nil {
		writeInternal(c, err, "Failed to delete squad")
		return
	}
	slog.Info("Squad deleted", "squad_id", squadID)
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

func (s *Service) LeaveHandler(c *gin.Context) {
	user := server.CurrentUser(c)

	err := s.Leave(c.Request.Context(), c.Param("squad_id"), user.ID)
	if err != nil {
		if errors.Is(err, ErrAdminCannotLeave) {
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   err.Error(),
			})
			return
		}
		writeInternal(c, err, "Failed to leave squad")
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "left"})
}

func (s *Service) ListMembersHandler(c *gin.Context) {
	members, err := s.roster.MembersOf(c.Request.Context(), c.Param("squad_id"))
	if err != nil {
		writeInternal(c, err, "Failed to list members")
		return
	}
	if members == nil {
		members = []*v1.User{}
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

func (s *Service) RemoveMemberHandler(c *gin.Context) {
	var uri struct {
		UserID int64 `uri:"user_id" binding:"required"`
	}
	if err := c.ShouldBindUri(&uri); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "user_id must be an integer",
		})
		return
	}

	err := s.RemoveMember(c.Request.Context(), c.Param("squad_id"), uri.UserID)
	if err != nil {
		switch {
		case errors.Is(err, ErrAdminCannotLeave):
			c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
				ErrorType: httperr.HttpInvalidJsonError,
				Message:   err.Error(),
			})
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "Member not found",
			})
		default:
			writeInternal(c, err, "Failed to remove member")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "removed"})
}

func (s *Service) InviteHandler(c *gin.Context) {
	var req struct {
		Username string `json:"username" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidJsonError,
			Message:   "username is required",
		})
		return
	}

	invite, err := s.Invite(c.Request.Context(), c.Param("squad_id"), req.Username)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "No such user",
			})
		case errors.Is(err, ErrAlreadyMember):
			c.JSON(http.StatusConflict, httperr.ErrorResponse{
				ErrorType: httperr.HttpConflictError,
				Message:   err.Error(),
			})
		case errors.Is(err, storage.ErrDuplicate):
			c.JSON(http.StatusConflict, httperr.ErrorResponse{
				ErrorType: httperr.HttpConflictError,
				Message:   "An invite for this user is already pending",
			})
		default:
			writeInternal(c, err, "Failed to create invite")
		}
		return
	}

	slog.Info("Invite created", "invite_id", invite.ID, "squad_id", invite.SquadID, "invited_user_id", invite.InvitedUserID)
	c.JSON(http.StatusCreated, invite)
}

func (s *Service) ListSquadInvitesHandler(c *gin.Context) {
	invites, err := s.roster.InvitesForSquad(c.Request.Context(), c.Param("squad_id"))
	if err != nil {
		writeInternal(c, err, "Failed to list invites")
		return
	}
	if invites == nil {
		invites = []*v1.Invite{}
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

func (s *Service) ListMyInvitesHandler(c *gin.Context) {
	user := server.CurrentUser(c)

	invites, err := s.roster.InvitesForUser(c.Request.Context(), user.ID)
	if err != nil {
		writeInternal(c, err, "Failed to list invites")
		return
	}
	if invites == nil {
		invites = []*v1.Invite{}
	}
	c.JSON(http.StatusOK, gin.H{"invites": invites})
}

// RespondHandler builds the accept/decline handler for invite responses.
func (s *Service) RespondHandler(accept bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		user := server.CurrentUser(c)

		invite, err := s.Respond(c.Request.Context(), c.Param("invite_id"), user.ID, accept)
		if err != nil {
			switch {
			case errors.Is(err, storage.ErrNotFound):
				c.JSON(http.StatusNotFound, httperr.ErrorResponse{
					ErrorType: httperr.HttpNotFoundError,
					Message:   "Invite not found",
				})
			case errors.Is(err, ErrNotInvitee):
				c.JSON(http.StatusForbidden, httperr.ErrorResponse{
					ErrorType: httperr.HttpForbiddenError,
					Message:   err.Error(),
				})
			case errors.Is(err, ErrInviteNotPending):
				c.JSON(http.StatusConflict, httperr.ErrorResponse{
					ErrorType: httperr.HttpConflictError,
					Message:   err.Error(),
				})
			default:
				writeInternal(c, err, "Failed to respond to invite")
			}
			return
		}
		c.JSON(http.StatusOK, invite)
	}
}

func (s *Service) RevokeInviteHandler(c *gin.Context) {
	user := server.CurrentUser(c)

	err := s.Revoke(c.Request.Context(), c.Param("invite_id"), user.ID)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			c.JSON(http.StatusNotFound, httperr.ErrorResponse{
				ErrorType: httperr.HttpNotFoundError,
				Message:   "Invite not found",
			})
		case errors.Is(err, ErrNotAdmin):
			c.JSON(http.StatusForbidden, httperr.ErrorResponse{
				ErrorType: httperr.HttpForbiddenError,
				Message:   err.Error(),
			})
		case errors.Is(err, ErrInviteNotPending):
			c.JSON(http.StatusConflict, httperr.ErrorResponse{
				ErrorType: httperr.HttpConflictError,
				Message:   err.Error(),
			})
		default:
			writeInternal(c, err, "Failed to revoke invite")
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "revoked"})
}

func writeInternal(c *gin.Context, err error, msg string) {
	slog.Error(msg, "error", err)
	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   msg,
	})
}
