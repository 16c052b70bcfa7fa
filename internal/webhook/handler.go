package webhook

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/vuthevietgps/chatbot2-sub001/internal/config"
	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
	"github.com/vuthevietgps/chatbot2-sub001/internal/store"
	"github.com/vuthevietgps/chatbot2-sub001/internal/ws"

	"github.com/gin-gonic/gin"
)

// Event is the Messenger page webhook payload.
type Event struct {
	Object string  `json:"object"`
	Entry  []Entry `json:"entry"`
}

type Entry struct {
	ID        string      `json:"id"` // page id
	Time      int64       `json:"time"`
	Messaging []Messaging `json:"messaging"`
}

type Messaging struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message  *MessagePayload  `json:"message"`
	Delivery *json.RawMessage `json:"delivery"`
	Read     *json.RawMessage `json:"read"`
}

type MessagePayload struct {
	Mid    string `json:"mid"`
	Text   string `json:"text"`
	IsEcho bool   `json:"is_echo"`
}

// Processor is the automation entry point the webhook hands messages to.
type Processor interface {
	Process(ctx context.Context, pageID, psid, text, conversationID string) bool
}

// Handler receives platform events, normalizes them and hands text messages
// to the chatbot. When automation declines a message the conversation is
// flagged for a human agent.
type Handler struct {
	Config        *config.Config
	Bot           Processor
	Customers     *store.CustomerStore
	Conversations *store.ConversationStore
	Messages      *store.MessageStore
	WebhookLogs   *store.WebhookLogStore
	Hub           *ws.Hub
}

func NewHandler(cfg *config.Config, bot Processor, customers *store.CustomerStore, conversations *store.ConversationStore, messages *store.MessageStore, webhookLogs *store.WebhookLogStore, hub *ws.Hub) *Handler {
	return &Handler{
		Config:        cfg,
		Bot:           bot,
		Customers:     customers,
		Conversations: conversations,
		Messages:      messages,
		WebhookLogs:   webhookLogs,
		Hub:           hub,
	}
}

// Verify answers the platform's subscription handshake.
func (h *Handler) Verify(c *gin.Context) {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && token != "" && token == h.Config.VerifyToken {
		log.Println("Webhook verified successfully!")
		c.String(http.StatusOK, challenge)
		return
	}
	c.Status(http.StatusForbidden)
}

// Receive ingests one webhook delivery. The platform always gets a 200; all
// processing failures are absorbed internally.
func (h *Handler) Receive(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.Status(http.StatusBadRequest)
		return
	}

	if !h.validSignature(c.GetHeader("X-Hub-Signature-256"), body) {
		log.Println("Webhook: invalid payload signature")
		c.Status(http.StatusForbidden)
		return
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		log.Printf("Webhook: malformed payload: %v", err)
		c.Status(http.StatusBadRequest)
		return
	}

	if event.Object == "page" {
		for _, entry := range event.Entry {
			for _, messaging := range entry.Messaging {
				h.handleMessaging(entry.ID, messaging, body)
			}
		}
	}

	c.Status(http.StatusOK)
}

func (h *Handler) handleMessaging(pageID string, messaging Messaging, raw []byte) {
	// Delivery receipts, read receipts and echoes of our own sends carry no
	// inbound text to automate.
	if messaging.Message == nil || messaging.Message.IsEcho {
		return
	}

	psid := messaging.Sender.ID
	text := messaging.Message.Text
	ctx := context.Background()

	if err := h.WebhookLogs.Record(ctx, pageID, psid, "message", string(raw)); err != nil {
		log.Printf("Webhook: event log failed: %v", err)
	}

	if _, err := h.Customers.Upsert(ctx, psid, pageID, ""); err != nil {
		log.Printf("Webhook: customer upsert failed for %s: %v", psid, err)
	}

	conv, err := h.Conversations.Upsert(ctx, pageID, psid)
	if err != nil {
		log.Printf("Webhook: conversation upsert failed for %s/%s: %v", pageID, psid, err)
		return
	}

	inbound := models.Message{
		ConversationID: conv.ID,
		Direction:      models.DirectionIn,
		SenderType:     models.SenderCustomer,
		Text:           text,
		PlatformMsgID:  messaging.Message.Mid,
		ProcessedBy:    models.ProcessedByNone,
		Status:         models.MessageReceived,
	}
	if err := h.Messages.Create(ctx, &inbound); err != nil {
		log.Printf("Webhook: inbound message persist failed: %v", err)
	}
	if err := h.Conversations.UpdateLastMessage(ctx, conv.ID, text); err != nil {
		log.Printf("Webhook: conversation update failed: %v", err)
	}

	if h.Hub != nil {
		h.Hub.NotifyMessage(inbound)
	}

	if text == "" {
		// Attachments and stickers go straight to a human agent.
		h.flagForAgent(ctx, conv.ID)
		return
	}

	// Automation runs detached so the webhook answer is never held up by
	// script matching, the pacing delay or the completion call.
	go func() {
		handled := h.Bot.Process(context.Background(), pageID, psid, text, conv.ID)
		if !handled {
			h.flagForAgent(context.Background(), conv.ID)
		}
	}()
}

func (h *Handler) flagForAgent(ctx context.Context, conversationID string) {
	if err := h.Conversations.UpdateStatus(ctx, conversationID, models.ConversationPendingAgent); err != nil {
		log.Printf("Webhook: agent handoff flag failed for %s: %v", conversationID, err)
		return
	}
	if h.Hub != nil {
		h.Hub.NotifyConversation(map[string]string{
			"conversation_id": conversationID,
			"status":          models.ConversationPendingAgent,
		})
	}
}

// validSignature checks X-Hub-Signature-256 against the app secret. When no
// secret is configured verification is skipped (local development).
func (h *Handler) validSignature(header string, body []byte) bool {
	if h.Config.AppSecret == "" {
		return true
	}
	const prefix = "sha256="
	if !strings.HasPrefix(header, prefix) {
		return false
	}
	mac := hmac.New(sha256.New, []byte(h.Config.AppSecret))
	mac.Write(body)
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(strings.TrimPrefix(header, prefix)))
}
