package chatbot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

// MessageContext carries the inbound turn an action may reference.
type MessageContext struct {
	PageID         string `json:"pageId"`
	PSID           string `json:"psid"`
	MessageText    string `json:"messageText"`
	ConversationID string `json:"conversationId"`
	Timestamp      int64  `json:"timestamp"`
}

// ActionExecutor applies a matched script's side effect. Callers receive an
// error to acknowledge (log-and-continue); a failed action must never block
// message delivery.
type ActionExecutor struct {
	customers  CustomerSource
	httpClient *http.Client
}

func NewActionExecutor(customers CustomerSource) *ActionExecutor {
	return &ActionExecutor{
		customers:  customers,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

// Execute applies one action variant. Unknown and none types are no-ops.
func (e *ActionExecutor) Execute(ctx context.Context, action models.Action, psid, pageID string, msgCtx MessageContext) error {
	switch action.Type {
	case models.ActionAddTag:
		if action.TagName == "" {
			return nil
		}
		if err := e.customers.MergeTags(ctx, psid, pageID, []string{action.TagName}); err != nil {
			return fmt.Errorf("add_tag %q: %w", action.TagName, err)
		}
		return nil

	case models.ActionSetVariable:
		if action.VarName == "" || action.VarValue == "" {
			return nil
		}
		if err := e.customers.MergeVariables(ctx, psid, pageID, map[string]string{action.VarName: action.VarValue}); err != nil {
			return fmt.Errorf("set_variable %q: %w", action.VarName, err)
		}
		return nil

	case models.ActionCallWebhook:
		if action.WebhookURL == "" {
			return nil
		}
		return e.callWebhook(ctx, action.WebhookURL, msgCtx)

	case models.ActionNone, "":
		return nil

	default:
		// Unknown variants are ignored explicitly rather than guessed at.
		return nil
	}
}

func (e *ActionExecutor) callWebhook(ctx context.Context, url string, msgCtx MessageContext) error {
	if msgCtx.Timestamp == 0 {
		msgCtx.Timestamp = time.Now().Unix()
	}
	payload, err := json.Marshal(msgCtx)
	if err != nil {
		return fmt.Errorf("call_webhook marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("call_webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call_webhook %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("call_webhook %s: status %d", url, resp.StatusCode)
	}
	return nil
}
