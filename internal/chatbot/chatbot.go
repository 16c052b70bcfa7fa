package chatbot

import (
	"context"
	"log"
	"time"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

// Bot is the automation entry point: it decides whether a scripted reply or
// the AI fallback handles an inbound message, and reports back whether
// automation handled it at all. A false return means the caller must leave
// the conversation for a human agent.
type Bot struct {
	fanpages     FanpageSource
	matcher      *Matcher
	personalizer *Personalizer
	actions      *ActionExecutor
	ai           *AIResponder
	dispatcher   *Dispatcher
}

func NewBot(fanpages FanpageSource, matcher *Matcher, personalizer *Personalizer, actions *ActionExecutor, ai *AIResponder, dispatcher *Dispatcher) *Bot {
	return &Bot{
		fanpages:     fanpages,
		matcher:      matcher,
		personalizer: personalizer,
		actions:      actions,
		ai:           ai,
		dispatcher:   dispatcher,
	}
}

// Process runs one inbound message through the automation pipeline. It never
// panics past this boundary: any failure degrades to false so the webhook
// layer can route the conversation to an agent.
func (b *Bot) Process(ctx context.Context, pageID, psid, text, conversationID string) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("ChatBot: recovered panic while processing page %s psid %s: %v", pageID, psid, r)
			handled = false
		}
	}()

	fanpage, err := b.fanpages.ByPageID(ctx, pageID)
	if err != nil {
		log.Printf("ChatBot: fanpage lookup failed for %s: %v", pageID, err)
		return false
	}
	if fanpage == nil || !fanpage.AIEnabled {
		return false
	}

	match, err := b.matcher.FindBestMatch(ctx, text, fanpage)
	if err != nil {
		log.Printf("ChatBot: matcher failed for page %s: %v", pageID, err)
		return false
	}

	if match != nil {
		reply := b.personalizer.Personalize(ctx, match.Template, psid, pageID)

		msgCtx := MessageContext{
			PageID:         pageID,
			PSID:           psid,
			MessageText:    text,
			ConversationID: conversationID,
			Timestamp:      time.Now().Unix(),
		}
		if err := b.actions.Execute(ctx, match.Action, psid, pageID, msgCtx); err != nil {
			// Side effects never cancel the send.
			log.Printf("ChatBot: action %s failed for page %s: %v", match.Action.Type, pageID, err)
		}

		return b.dispatcher.Send(ctx, pageID, psid, reply, conversationID, models.ProcessedByScript)
	}

	return b.ai.Respond(ctx, pageID, psid, text, conversationID, fanpage)
}
