package api

import (
	"net/http"
	"strconv"

	"github.com/vuthevietgps/chatbot2-sub001/internal/chatbot"
	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
	"github.com/vuthevietgps/chatbot2-sub001/internal/store"
	"github.com/vuthevietgps/chatbot2-sub001/internal/ws"

	"github.com/gin-gonic/gin"
)

type ConversationHandler struct {
	conversations *store.ConversationStore
	messages      *store.MessageStore
	fanpages      *store.FanpageStore
	webhookLogs   *store.WebhookLogStore
	transport     chatbot.Transport
	hub           *ws.Hub
}

func NewConversationHandler(conversations *store.ConversationStore, messages *store.MessageStore, fanpages *store.FanpageStore, webhookLogs *store.WebhookLogStore, transport chatbot.Transport, hub *ws.Hub) *ConversationHandler {
	return &ConversationHandler{
		conversations: conversations,
		messages:      messages,
		fanpages:      fanpages,
		webhookLogs:   webhookLogs,
		transport:     transport,
		hub:           hub,
	}
}

func (h *ConversationHandler) GetConversations(c *gin.Context) {
	convs, err := h.conversations.ListByPage(c.Request.Context(), c.Query("page_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, convs)
}

func (h *ConversationHandler) GetMessages(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	msgs, err := h.messages.ListByConversation(c.Request.Context(), c.Param("id"), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, msgs)
}

// UpdateStatus lets an agent open or close a conversation.
func (h *ConversationHandler) UpdateStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	switch req.Status {
	case models.ConversationOpen, models.ConversationPendingAgent, models.ConversationClosed:
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}

	id := c.Param("id")
	if err := h.conversations.UpdateStatus(c.Request.Context(), id, req.Status); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.hub != nil {
		h.hub.NotifyConversation(map[string]string{"conversation_id": id, "status": req.Status})
	}
	c.JSON(http.StatusOK, gin.H{"message": "Conversation updated"})
}

// SendMessage is the agent's manual reply: it goes straight through the
// transport without the automation pacing delay.
func (h *ConversationHandler) SendMessage(c *gin.Context) {
	var req struct {
		Text string `json:"text" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	conv, err := h.conversations.ByID(ctx, c.Param("id"))
	if err != nil || conv == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "conversation not found"})
		return
	}

	fanpage, err := h.fanpages.ByPageID(ctx, conv.PageID)
	if err != nil || fanpage == nil || fanpage.AccessToken == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "fanpage has no credentials"})
		return
	}

	result, err := h.transport.SendText(ctx, fanpage.AccessToken, conv.PSID, req.Text)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	msg := models.Message{
		ConversationID: conv.ID,
		Direction:      models.DirectionOut,
		SenderType:     models.SenderAgent,
		Text:           req.Text,
		PlatformMsgID:  result.MessageID,
		ProcessedBy:    models.ProcessedByAgent,
		Status:         models.MessageSent,
	}
	if err := h.messages.Create(ctx, &msg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	h.fanpages.IncrementMonthlySent(ctx, conv.PageID)
	h.conversations.UpdateLastMessage(ctx, conv.ID, req.Text)
	if h.hub != nil {
		h.hub.NotifyMessage(msg)
	}

	c.JSON(http.StatusOK, msg)
}

// GetWebhookLogs returns recent raw platform events for debugging.
func (h *ConversationHandler) GetWebhookLogs(c *gin.Context) {
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	logs, err := h.webhookLogs.Recent(c.Request.Context(), limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, logs)
}
