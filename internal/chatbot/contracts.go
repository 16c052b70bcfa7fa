package chatbot

import (
	"context"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

// The core consumes persistence and transport through these narrow
// collaborator contracts. Lookups return (nil, nil) when nothing is found.

// ScriptSource serves the ranked candidate sets. Both queries return rows
// pre-sorted by descending priority, ties in insertion order.
type ScriptSource interface {
	ActiveSubScripts(ctx context.Context, scenarioID string) ([]models.SubScript, error)
	ActiveScripts(ctx context.Context, groupID string) ([]models.Script, error)
}

// FanpageSource resolves fanpages and owns their quota counter.
type FanpageSource interface {
	ByPageID(ctx context.Context, pageID string) (*models.Fanpage, error)
	IncrementMonthlySent(ctx context.Context, pageID string) error
}

// CustomerSource resolves customers and applies side-effect mutations.
type CustomerSource interface {
	ByExternalID(ctx context.Context, psid, pageID string) (*models.Customer, error)
	MergeTags(ctx context.Context, psid, pageID string, tags []string) error
	MergeVariables(ctx context.Context, psid, pageID string, vars map[string]string) error
}

// MessageSink persists conversation turns and serves recent history.
type MessageSink interface {
	Create(ctx context.Context, msg *models.Message) error
	Recent(ctx context.Context, conversationID string, limit int) ([]models.Message, error)
}

// ConversationSink keeps the conversation preview current after a dispatch.
type ConversationSink interface {
	UpdateLastMessage(ctx context.Context, id, text string) error
}

// SendResult is the outbound transport's answer to a text send.
type SendResult struct {
	MessageID string
}

// Transport sends replies and typing indicators through the messaging
// platform.
type Transport interface {
	SendTyping(ctx context.Context, accessToken, recipientID string, on bool) error
	SendText(ctx context.Context, accessToken, recipientID, text string) (*SendResult, error)
}

// ChatTurn is one prior exchange handed to the completion capability.
type ChatTurn struct {
	Role    string
	Content string
}

// CompletionRequest carries everything the completion capability needs for
// one reply.
type CompletionRequest struct {
	SystemPrompt string
	History      []ChatTurn
	UserMessage  string
	Model        string
	APIKey       string
	MaxTokens    int
	Temperature  float32
}

// CompletionResult is the structured outcome of a successful completion call.
// An empty Text still counts as a failed attempt for usage accounting.
type CompletionResult struct {
	Text       string
	TokensUsed int
}

// Completer is the generative-AI completion capability.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
}

// AIConfigSource resolves completion configurations and records their usage.
type AIConfigSource interface {
	FindByFanpage(ctx context.Context, pageID string) (*models.AIConfig, error)
	FindByScenario(ctx context.Context, scenarioID string) (*models.AIConfig, error)
	FindDefault(ctx context.Context) (*models.AIConfig, error)
	RecordUsage(ctx context.Context, id uint, tokensUsed int, success bool) error
}
