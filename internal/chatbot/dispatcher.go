package chatbot

import (
	"context"
	"log"
	"time"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

// defaultSendDelay paces automated replies so they read as typed, not fired.
// It suspends only the current message's goroutine.
const defaultSendDelay = 1000 * time.Millisecond

// Dispatcher sends a finished reply through the outbound transport and makes
// it durable: one Message record and one quota increment per successful send.
type Dispatcher struct {
	fanpages      FanpageSource
	messages      MessageSink
	conversations ConversationSink
	transport     Transport

	// SendDelay defaults to defaultSendDelay; tests shorten it.
	SendDelay time.Duration
}

func NewDispatcher(fanpages FanpageSource, messages MessageSink, conversations ConversationSink, transport Transport) *Dispatcher {
	return &Dispatcher{
		fanpages:      fanpages,
		messages:      messages,
		conversations: conversations,
		transport:     transport,
		SendDelay:     defaultSendDelay,
	}
}

// Send delivers text to the customer and persists the outbound turn. It
// returns true only when the transport accepted the message and the Message
// record was written. Typing indicators are best effort; a transport send
// failure aborts without persisting anything.
func (d *Dispatcher) Send(ctx context.Context, pageID, psid, text, conversationID, processedBy string) bool {
	fanpage, err := d.fanpages.ByPageID(ctx, pageID)
	if err != nil || fanpage == nil {
		log.Printf("Dispatcher: fanpage %s not found: %v", pageID, err)
		return false
	}
	if fanpage.AccessToken == "" {
		log.Printf("Dispatcher: fanpage %s has no access token", pageID)
		return false
	}

	if err := d.transport.SendTyping(ctx, fanpage.AccessToken, psid, true); err != nil {
		log.Printf("Dispatcher: typing-on failed for %s: %v", psid, err)
	}

	select {
	case <-time.After(d.SendDelay):
	case <-ctx.Done():
		log.Printf("Dispatcher: canceled before send to %s: %v", psid, ctx.Err())
		return false
	}

	result, err := d.transport.SendText(ctx, fanpage.AccessToken, psid, text)
	if err != nil {
		log.Printf("Dispatcher: send to %s failed: %v", psid, err)
		return false
	}

	if err := d.transport.SendTyping(ctx, fanpage.AccessToken, psid, false); err != nil {
		log.Printf("Dispatcher: typing-off failed for %s: %v", psid, err)
	}

	msg := models.Message{
		ConversationID: conversationID,
		Direction:      models.DirectionOut,
		SenderType:     models.SenderBot,
		Text:           text,
		PlatformMsgID:  result.MessageID,
		ProcessedBy:    processedBy,
		Status:         models.MessageSent,
	}
	if err := d.messages.Create(ctx, &msg); err != nil {
		log.Printf("Dispatcher: persist outbound message failed for %s: %v", conversationID, err)
		return false
	}

	if err := d.fanpages.IncrementMonthlySent(ctx, pageID); err != nil {
		log.Printf("Dispatcher: quota increment failed for %s: %v", pageID, err)
	}
	if err := d.conversations.UpdateLastMessage(ctx, conversationID, text); err != nil {
		log.Printf("Dispatcher: conversation update failed for %s: %v", conversationID, err)
	}

	return true
}
