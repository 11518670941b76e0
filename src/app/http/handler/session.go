package handler

import (
	"github.com/gin-gonic/gin"

	"returnsdesk/src/app/http/dto"
	"returnsdesk/src/app/http/response"
	"returnsdesk/src/app/middleware"
)

// SessionHandler exposes the session the edge filter resolved.
type SessionHandler struct{}

func NewSessionHandler() *SessionHandler {
	return &SessionHandler{}
}

// Me returns the authenticated user.
// GET /v1/session
func (h *SessionHandler) Me(c *gin.Context) {
	user, ok := middleware.GetSessionUser(c)
	if !ok {
		response.Unauthorized(c, "no active session", middleware.GetRequestID(c))
		return
	}
	response.OK(c, dto.SessionUserResponse{}.FromDomain(user))
}
