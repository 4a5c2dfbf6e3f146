package web

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/command"
	"github.com/notepid/dusk_bbs/internal/session"
)

type commandRequest struct {
	SessionID string `json:"sessionId"`
	Command   string `json:"command"`
}

// commandResponse is the reply shape shared by the JSON API and WebSocket.
type commandResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"sessionId"`
}

// handleCommand runs one command line. A missing or unknown session id
// silently starts a new web session.
func (s *Server) handleCommand(c *gin.Context) {
	var req commandRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	sess, ok := s.sessions.Get(req.SessionID)
	if !ok {
		sess = s.sessions.Create(session.KindWeb)
		s.log.Debug("web session created", zap.String("session", sess.ID))
	}

	reply, err := s.dispatcher.Execute(c.Request.Context(), sess.ID, req.Command)
	if errors.Is(err, command.ErrSessionInvalid) {
		c.JSON(http.StatusOK, commandResponse{Response: command.SessionInvalidReply})
		return
	}
	if err != nil {
		s.log.Error("command failed", zap.String("session", sess.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
		return
	}

	c.JSON(http.StatusOK, commandResponse{Response: reply, SessionID: sess.ID})
}
