package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/notepid/dusk_bbs/internal/command"
	"github.com/notepid/dusk_bbs/internal/session"
)

const (
	maxFrameSize = 64 * 1024
	genericError = "An error occurred processing your command."
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleSocket serves one web session per socket. Each text frame is a
// command line; each reply is a JSON frame. The session ends with the socket.
func (s *Server) handleSocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.log.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	conn.SetReadLimit(maxFrameSize)
	defer conn.Close()

	sess := s.sessions.Create(session.KindWeb)
	defer s.sessions.End(sess.ID)

	log := s.log.With(zap.String("session", sess.ID), zap.String("remote", c.ClientIP()))
	log.Info("websocket opened")
	defer log.Info("websocket closed")

	ctx := c.Request.Context()
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return
		}

		reply, err := s.execute(ctx, sess.ID, string(msg), log)
		if errors.Is(err, command.ErrSessionInvalid) {
			_ = conn.WriteJSON(commandResponse{Response: command.SessionInvalidReply})
			return
		}
		if err != nil {
			reply = genericError
		}
		if err := conn.WriteJSON(commandResponse{Response: reply, SessionID: sess.ID}); err != nil {
			return
		}
	}
}

// execute runs one frame, turning a panic into an error so the socket stays
// open.
func (s *Server) execute(ctx context.Context, sessionID, line string, log *zap.Logger) (reply string, err error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error("command panicked", zap.Any("panic", r), zap.Stack("stack"))
			err = fmt.Errorf("command panicked: %v", r)
		}
	}()
	return s.dispatcher.Execute(ctx, sessionID, line)
}
