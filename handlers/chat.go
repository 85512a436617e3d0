package handlers

import (
	"net/http"

	"homeserve/middleware"
	"homeserve/models"
	"homeserve/services/chat"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ChatHandler struct {
	svc *chat.Service
	hub *chat.Hub
}

func NewChatHandler(svc *chat.Service, hub *chat.Hub) *ChatHandler {
	return &ChatHandler{svc: svc, hub: hub}
}

func (h *ChatHandler) Open(c *gin.Context) {
	var input struct {
		Topic string `json:"topic"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&input); err != nil {
			badRequest(c, err)
			return
		}
	}
	conv, err := h.svc.Open(c.Request.Context(), middleware.UserID(c), input.Topic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, conv)
}

func (h *ChatHandler) History(c *gin.Context) {
	thread, err := h.svc.History(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, thread)
}

func (h *ChatHandler) SaveDraft(c *gin.Context) {
	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	conv, err := h.svc.SaveDraft(c.Request.Context(), middleware.UserID(c), c.Param("id"), input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, conv)
}

// Send posts a message as the calling user.
func (h *ChatHandler) Send(c *gin.Context) {
	var input struct {
		Text string `json:"text"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		badRequest(c, err)
		return
	}
	msg, err := h.svc.Send(c.Request.Context(), middleware.UserID(c), c.Param("id"), models.SenderUser, input.Text)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

// Live upgrades to a websocket that streams new messages and typing events.
func (h *ChatHandler) Live(c *gin.Context) {
	userID, id := middleware.UserID(c), c.Param("id")
	if _, err := h.svc.Conversation(c.Request.Context(), userID, id); err != nil {
		respondError(c, err)
		return
	}
	conn, err := chat.Upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		getLogger(c).Warn("websocket upgrade failed", zap.String("conversationId", id), zap.Error(err))
		return
	}
	h.hub.ServeWS(conn, id, userID)
}
