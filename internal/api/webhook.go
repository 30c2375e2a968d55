package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/cidbot/backend/internal/bot"
)

// WebhookHandler receives chat-platform updates over HTTP and feeds them
// through the dialogue router. The transport pushes pre-parsed events; the
// replies come back in the response body for the transport to deliver.
type WebhookHandler struct {
	router   *bot.Router
	botToken string
	log      *logrus.Entry
}

// NewWebhookHandler creates a new WebhookHandler instance
func NewWebhookHandler(router *bot.Router, botToken string, log *logrus.Entry) *WebhookHandler {
	return &WebhookHandler{router: router, botToken: botToken, log: log}
}

// RegisterRoutes mounts the webhook under a token-guarded path, the usual
// way bot platforms authenticate pushed updates.
func (h *WebhookHandler) RegisterRoutes(r gin.IRouter) {
	r.POST("/webhook/:token", h.HandleUpdate)
}

// HandleUpdate processes one pushed update
func (h *WebhookHandler) HandleUpdate(c *gin.Context) {
	if subtle.ConstantTimeCompare([]byte(c.Param("token")), []byte(h.botToken)) != 1 {
		c.JSON(http.StatusForbidden, gin.H{"error": "invalid token"})
		return
	}

	var ev bot.Event
	if err := c.ShouldBindJSON(&ev); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid update payload"})
		return
	}
	if ev.ChatKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "chat_key is required"})
		return
	}

	replies := h.router.Dispatch(c.Request.Context(), ev)
	c.JSON(http.StatusOK, gin.H{"replies": replies})
}
