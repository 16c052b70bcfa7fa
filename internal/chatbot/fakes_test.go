package chatbot

import (
	"context"
	"sync"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

type fakeScriptSource struct {
	mu          sync.Mutex
	subs        []models.SubScript
	scripts     []models.Script
	subErr      error
	scriptErr   error
	subCalls    int
	scriptCalls int
}

func (f *fakeScriptSource) ActiveSubScripts(ctx context.Context, scenarioID string) ([]models.SubScript, error) {
	f.mu.Lock()
	f.subCalls++
	f.mu.Unlock()
	return f.subs, f.subErr
}

func (f *fakeScriptSource) ActiveScripts(ctx context.Context, groupID string) ([]models.Script, error) {
	f.mu.Lock()
	f.scriptCalls++
	f.mu.Unlock()
	return f.scripts, f.scriptErr
}

func (f *fakeScriptSource) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.subCalls, f.scriptCalls
}

type fakeFanpageSource struct {
	mu          sync.Mutex
	page        *models.Fanpage
	err         error
	lookups     int
	incremented []string
}

func (f *fakeFanpageSource) ByPageID(ctx context.Context, pageID string) (*models.Fanpage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.page, f.err
}

func (f *fakeFanpageSource) IncrementMonthlySent(ctx context.Context, pageID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.incremented = append(f.incremented, pageID)
	return nil
}

func (f *fakeFanpageSource) increments() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.incremented)
}

type fakeCustomerSource struct {
	mu         sync.Mutex
	customer   *models.Customer
	err        error
	lookups    int
	mergedTags [][]string
	mergedVars []map[string]string
	mergeErr   error
}

func (f *fakeCustomerSource) ByExternalID(ctx context.Context, psid, pageID string) (*models.Customer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.customer, f.err
}

func (f *fakeCustomerSource) MergeTags(ctx context.Context, psid, pageID string, tags []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergedTags = append(f.mergedTags, tags)
	return f.mergeErr
}

func (f *fakeCustomerSource) MergeVariables(ctx context.Context, psid, pageID string, vars map[string]string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergedVars = append(f.mergedVars, vars)
	return f.mergeErr
}

type fakeMessageSink struct {
	mu        sync.Mutex
	created   []models.Message
	recent    []models.Message
	createErr error
	recentErr error
}

func (f *fakeMessageSink) Create(ctx context.Context, msg *models.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, *msg)
	return nil
}

func (f *fakeMessageSink) Recent(ctx context.Context, conversationID string, limit int) ([]models.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.recentErr != nil {
		return nil, f.recentErr
	}
	if len(f.recent) > limit {
		return f.recent[:limit], nil
	}
	return f.recent, nil
}

func (f *fakeMessageSink) createdMessages() []models.Message {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Message, len(f.created))
	copy(out, f.created)
	return out
}

type fakeConversationSink struct {
	mu      sync.Mutex
	updates map[string]string
}

func (f *fakeConversationSink) UpdateLastMessage(ctx context.Context, id, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updates == nil {
		f.updates = map[string]string{}
	}
	f.updates[id] = text
	return nil
}

type fakeTransport struct {
	mu        sync.Mutex
	typing    []bool
	sent      []string
	sendErr   error
	typingErr error
	messageID string
}

func (f *fakeTransport) SendTyping(ctx context.Context, accessToken, recipientID string, on bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.typing = append(f.typing, on)
	return f.typingErr
}

func (f *fakeTransport) SendText(ctx context.Context, accessToken, recipientID, text string) (*SendResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, text)
	id := f.messageID
	if id == "" {
		id = "mid.1"
	}
	return &SendResult{MessageID: id}, nil
}

func (f *fakeTransport) sentTexts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	copy(out, f.sent)
	return out
}

type usageRecord struct {
	configID uint
	tokens   int
	success  bool
}

type fakeAIConfigSource struct {
	mu         sync.Mutex
	byFanpage  *models.AIConfig
	byScenario *models.AIConfig
	byDefault  *models.AIConfig
	usage      []usageRecord
}

func (f *fakeAIConfigSource) FindByFanpage(ctx context.Context, pageID string) (*models.AIConfig, error) {
	return f.byFanpage, nil
}

func (f *fakeAIConfigSource) FindByScenario(ctx context.Context, scenarioID string) (*models.AIConfig, error) {
	return f.byScenario, nil
}

func (f *fakeAIConfigSource) FindDefault(ctx context.Context) (*models.AIConfig, error) {
	return f.byDefault, nil
}

func (f *fakeAIConfigSource) RecordUsage(ctx context.Context, id uint, tokensUsed int, success bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.usage = append(f.usage, usageRecord{configID: id, tokens: tokensUsed, success: success})
	return nil
}

func (f *fakeAIConfigSource) usageRecords() []usageRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]usageRecord, len(f.usage))
	copy(out, f.usage)
	return out
}

type fakeCompleter struct {
	mu     sync.Mutex
	req    *CompletionRequest
	result *CompletionResult
	err    error
	calls  int
}

func (f *fakeCompleter) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.req = &req
	return f.result, f.err
}
