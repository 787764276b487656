package webapi

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/modsentry/modsentry/internal/flagged"
	"github.com/modsentry/modsentry/internal/platform"
)

// eventRequest is a single platform event delivered to the webhook.
// Type selects the dispatch path: "dm" for direct messages, "channel" for
// guild channel traffic, "moderator" for the moderator channel.
type eventRequest struct {
	Type      string `json:"type" binding:"required"`
	UserID    string `json:"user_id"`
	UserName  string `json:"user_name"`
	ChannelID string `json:"channel_id"`
	MessageID string `json:"message_id"`
	Content   string `json:"content" binding:"required"`
}

// HandleEvent handles POST /api/v1/events — the ingestion point for
// platform message events.
func (s *Server) HandleEvent(c *gin.Context) {
	var req eventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	switch req.Type {
	case "dm":
		if req.UserID == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required for dm events"})
			return
		}
		replies, err := s.router.HandleDirectMessage(c.Request.Context(), req.UserID, req.UserName, req.Content)
		if err != nil {
			s.logger.Error("handle dm event", zap.String("user_id", req.UserID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
			return
		}
		if replies == nil {
			replies = []string{}
		}
		c.JSON(http.StatusOK, gin.H{"replies": replies})

	case "channel":
		msg := &platform.Message{
			ID:         req.MessageID,
			ChannelID:  req.ChannelID,
			AuthorID:   req.UserID,
			AuthorName: req.UserName,
			Content:    req.Content,
		}
		if err := s.router.HandleChannelMessage(c.Request.Context(), msg); err != nil {
			s.logger.Error("handle channel event", zap.String("channel_id", req.ChannelID), zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})

	case "moderator":
		msg := &platform.Message{
			ID:         req.MessageID,
			ChannelID:  req.ChannelID,
			AuthorID:   req.UserID,
			AuthorName: req.UserName,
			Content:    req.Content,
		}
		if err := s.router.HandleModeratorMessage(c.Request.Context(), msg); err != nil {
			s.logger.Error("handle moderator event", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process event"})
			return
		}
		c.JSON(http.StatusAccepted, gin.H{"status": "accepted"})

	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown event type: " + req.Type})
	}
}

// ListReports handles GET /api/v1/admin/reports.
func (s *Server) ListReports(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit < 1 || limit > 500 {
		limit = 50
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	entries, err := s.reports.List(c.Request.Context(), limit, offset)
	if err != nil {
		s.logger.Error("list reports", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list reports"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"reports": entries,
		"limit":   limit,
		"offset":  offset,
	})
}

// ListFlagged handles GET /api/v1/admin/flagged.
func (s *Server) ListFlagged(c *gin.Context) {
	ids, err := s.flags.List(c.Request.Context())
	if err != nil {
		s.logger.Error("list flagged accounts", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list flagged accounts"})
		return
	}
	if ids == nil {
		ids = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"flagged": ids})
}

// FlagAccount handles PUT /api/v1/admin/flagged/:id.
func (s *Server) FlagAccount(c *gin.Context) {
	id := c.Param("id")
	if err := s.flags.SetFlagged(c.Request.Context(), id, true); err != nil {
		s.logger.Error("flag account", zap.String("account_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to flag account"})
		return
	}
	s.logger.Info("account flagged",
		zap.String("account_id", id),
		zap.String("moderator", c.GetString("moderator")))
	c.JSON(http.StatusOK, gin.H{"account_id": id, "flagged": true})
}

// UnflagAccount handles DELETE /api/v1/admin/flagged/:id.
func (s *Server) UnflagAccount(c *gin.Context) {
	id := c.Param("id")
	err := s.flags.Remove(c.Request.Context(), id)
	if errors.Is(err, flagged.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "account not found"})
		return
	}
	if err != nil {
		s.logger.Error("unflag account", zap.String("account_id", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to unflag account"})
		return
	}
	s.logger.Info("account unflagged",
		zap.String("account_id", id),
		zap.String("moderator", c.GetString("moderator")))
	c.JSON(http.StatusOK, gin.H{"account_id": id, "flagged": false})
}
