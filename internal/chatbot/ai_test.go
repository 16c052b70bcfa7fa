package chatbot

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

func newTestResponder(configs *fakeAIConfigSource, customers *fakeCustomerSource, messages *fakeMessageSink, completer *fakeCompleter, fanpages *fakeFanpageSource, transport *fakeTransport) *AIResponder {
	d := NewDispatcher(fanpages, messages, &fakeConversationSink{}, transport)
	d.SendDelay = time.Millisecond
	return NewAIResponder(configs, customers, messages, completer, d, DefaultAIDefaults())
}

func TestRespondSendsCompletion(t *testing.T) {
	configs := &fakeAIConfigSource{byDefault: &models.AIConfig{
		ID:     3,
		Model:  "gpt-4o-mini",
		APIKey: "sk-test",
	}}
	customers := &fakeCustomerSource{customer: &models.Customer{Name: "Minh"}}
	messages := &fakeMessageSink{recent: []models.Message{
		{Direction: models.DirectionOut, Text: "Chào bạn!"},
		{Direction: models.DirectionIn, Text: "xin chào"},
	}}
	completer := &fakeCompleter{result: &CompletionResult{Text: "Dạ, shop nghe ạ!", TokensUsed: 57}}
	fanpages := &fakeFanpageSource{page: activeFanpage()}
	transport := &fakeTransport{}
	r := newTestResponder(configs, customers, messages, completer, fanpages, transport)

	ok := r.Respond(context.Background(), "100200300", "psid-1", "shop ơi", "conv-1", activeFanpage())
	if !ok {
		t.Fatal("Respond should succeed")
	}

	if got := transport.sentTexts(); len(got) != 1 || got[0] != "Dạ, shop nghe ạ!" {
		t.Errorf("sent texts = %v", got)
	}
	created := messages.createdMessages()
	if len(created) != 1 || created[0].ProcessedBy != models.ProcessedByAI {
		t.Errorf("persisted message = %+v", created)
	}

	req := completer.req
	if req == nil {
		t.Fatal("completer was not called")
	}
	if req.Model != "gpt-4o-mini" || req.APIKey != "sk-test" {
		t.Errorf("request model/key = %q/%q", req.Model, req.APIKey)
	}
	if req.UserMessage != "shop ơi" {
		t.Errorf("user message = %q", req.UserMessage)
	}
	if !strings.Contains(req.SystemPrompt, "Minh") {
		t.Errorf("system prompt should mention the customer, got %q", req.SystemPrompt)
	}
	// History arrives newest first and must be handed over chronologically.
	if len(req.History) != 2 || req.History[0].Role != "user" || req.History[1].Role != "assistant" {
		t.Errorf("history = %+v", req.History)
	}

	usage := configs.usageRecords()
	if len(usage) != 1 || usage[0].configID != 3 || usage[0].tokens != 57 || !usage[0].success {
		t.Errorf("usage = %+v", usage)
	}
}

func TestRespondConfigPriority(t *testing.T) {
	pageCfg := &models.AIConfig{ID: 1}
	scenarioCfg := &models.AIConfig{ID: 2}
	defaultCfg := &models.AIConfig{ID: 3}

	tests := []struct {
		name    string
		configs *fakeAIConfigSource
		wantID  uint
	}{
		{"fanpage config wins", &fakeAIConfigSource{byFanpage: pageCfg, byScenario: scenarioCfg, byDefault: defaultCfg}, 1},
		{"scenario config next", &fakeAIConfigSource{byScenario: scenarioCfg, byDefault: defaultCfg}, 2},
		{"default config last", &fakeAIConfigSource{byDefault: defaultCfg}, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			completer := &fakeCompleter{result: &CompletionResult{Text: "ok", TokensUsed: 1}}
			fanpages := &fakeFanpageSource{page: activeFanpage()}
			r := newTestResponder(tt.configs, &fakeCustomerSource{}, &fakeMessageSink{}, completer, fanpages, &fakeTransport{})

			if !r.Respond(context.Background(), "100200300", "psid-1", "hi", "conv-1", activeFanpage()) {
				t.Fatal("Respond should succeed")
			}
			usage := tt.configs.usageRecords()
			if len(usage) != 1 || usage[0].configID != tt.wantID {
				t.Errorf("usage = %+v, want config %d", usage, tt.wantID)
			}
		})
	}
}

func TestRespondNoConfig(t *testing.T) {
	completer := &fakeCompleter{result: &CompletionResult{Text: "ok"}}
	r := newTestResponder(&fakeAIConfigSource{}, &fakeCustomerSource{}, &fakeMessageSink{}, completer, &fakeFanpageSource{page: activeFanpage()}, &fakeTransport{})

	if r.Respond(context.Background(), "100200300", "psid-1", "hi", "conv-1", activeFanpage()) {
		t.Fatal("Respond must fail without any applicable config")
	}
	if completer.calls != 0 {
		t.Error("completer must not be called without a config")
	}
}

func TestRespondCompletionFailureStillRecordsUsage(t *testing.T) {
	configs := &fakeAIConfigSource{byDefault: &models.AIConfig{ID: 3}}
	completer := &fakeCompleter{err: errors.New("rate limited")}
	transport := &fakeTransport{}
	r := newTestResponder(configs, &fakeCustomerSource{}, &fakeMessageSink{}, completer, &fakeFanpageSource{page: activeFanpage()}, transport)

	if r.Respond(context.Background(), "100200300", "psid-1", "hi", "conv-1", activeFanpage()) {
		t.Fatal("Respond must fail when the completion fails")
	}
	usage := configs.usageRecords()
	if len(usage) != 1 || usage[0].success || usage[0].tokens != 0 {
		t.Errorf("usage = %+v, want one failed record", usage)
	}
	if len(transport.sentTexts()) != 0 {
		t.Error("no reply should be dispatched on failure")
	}
}

func TestRespondEmptyCompletionIsFailure(t *testing.T) {
	configs := &fakeAIConfigSource{byDefault: &models.AIConfig{ID: 3}}
	completer := &fakeCompleter{result: &CompletionResult{Text: "", TokensUsed: 12}}
	r := newTestResponder(configs, &fakeCustomerSource{}, &fakeMessageSink{}, completer, &fakeFanpageSource{page: activeFanpage()}, &fakeTransport{})

	if r.Respond(context.Background(), "100200300", "psid-1", "hi", "conv-1", activeFanpage()) {
		t.Fatal("an empty completion must count as a failure")
	}
	usage := configs.usageRecords()
	if len(usage) != 1 || usage[0].success {
		t.Errorf("usage = %+v, want a failed record", usage)
	}
	if usage[0].tokens != 12 {
		t.Errorf("tokens should still be recorded, got %d", usage[0].tokens)
	}
}

func TestRespondAppliesDefaults(t *testing.T) {
	// Config leaves prompt, tokens and temperature empty.
	configs := &fakeAIConfigSource{byDefault: &models.AIConfig{ID: 3, Model: "gpt-4o-mini"}}
	completer := &fakeCompleter{result: &CompletionResult{Text: "ok"}}
	r := newTestResponder(configs, &fakeCustomerSource{}, &fakeMessageSink{}, completer, &fakeFanpageSource{page: activeFanpage()}, &fakeTransport{})

	if !r.Respond(context.Background(), "100200300", "psid-1", "hi", "conv-1", activeFanpage()) {
		t.Fatal("Respond should succeed")
	}

	defaults := DefaultAIDefaults()
	req := completer.req
	if req.MaxTokens != defaults.MaxTokens {
		t.Errorf("max tokens = %d, want %d", req.MaxTokens, defaults.MaxTokens)
	}
	if req.Temperature != defaults.Temperature {
		t.Errorf("temperature = %v, want %v", req.Temperature, defaults.Temperature)
	}
	if !strings.HasPrefix(req.SystemPrompt, defaults.SystemPrompt) {
		t.Errorf("system prompt should start with the default, got %q", req.SystemPrompt)
	}
	if !strings.Contains(req.SystemPrompt, defaults.CustomerName) {
		t.Errorf("unknown customer should use the default name, got %q", req.SystemPrompt)
	}
}
