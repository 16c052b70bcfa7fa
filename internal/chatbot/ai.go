package chatbot

import (
	"context"
	"log"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
)

// AIDefaults consolidates every fallback value of the AI path in one place
// instead of ad hoc chains at each call site.
type AIDefaults struct {
	CustomerName string
	FanpageName  string
	SystemPrompt string
	MaxTokens    int
	Temperature  float32
	HistoryLimit int
}

// DefaultAIDefaults returns the stock defaults.
func DefaultAIDefaults() AIDefaults {
	return AIDefaults{
		CustomerName: "bạn",
		FanpageName:  "shop",
		SystemPrompt: "Bạn là trợ lý bán hàng thân thiện của một fanpage. Trả lời ngắn gọn, lịch sự và hữu ích bằng tiếng Việt.",
		MaxTokens:    1000,
		Temperature:  0.7,
		HistoryLimit: 10,
	}
}

// AIResponder answers messages no script matched by calling the generative
// completion capability with conversation context.
type AIResponder struct {
	configs    AIConfigSource
	customers  CustomerSource
	messages   MessageSink
	completer  Completer
	dispatcher *Dispatcher
	defaults   AIDefaults
}

func NewAIResponder(configs AIConfigSource, customers CustomerSource, messages MessageSink, completer Completer, dispatcher *Dispatcher, defaults AIDefaults) *AIResponder {
	return &AIResponder{
		configs:    configs,
		customers:  customers,
		messages:   messages,
		completer:  completer,
		dispatcher: dispatcher,
		defaults:   defaults,
	}
}

// Respond selects a completion config, assembles context, calls the
// completion capability and dispatches the reply. It returns true only when a
// reply was actually sent. Usage stats are recorded against the selected
// config on both success and failure.
func (r *AIResponder) Respond(ctx context.Context, pageID, psid, text, conversationID string, fanpage *models.Fanpage) bool {
	cfg := r.selectConfig(ctx, fanpage)
	if cfg == nil {
		log.Printf("AIResponder: no completion config applies to page %s", pageID)
		return false
	}

	customer, history := r.gatherContext(ctx, psid, pageID, conversationID)

	req := r.buildRequest(cfg, fanpage, customer, history, text)

	result, err := r.completer.Complete(ctx, req)

	tokensUsed := 0
	if result != nil {
		tokensUsed = result.TokensUsed
	}
	success := err == nil && result != nil && result.Text != ""
	if recordErr := r.configs.RecordUsage(ctx, cfg.ID, tokensUsed, success); recordErr != nil {
		log.Printf("AIResponder: usage record failed for config %d: %v", cfg.ID, recordErr)
	}

	if !success {
		log.Printf("AIResponder: completion failed for page %s (config %d): %v", pageID, cfg.ID, err)
		return false
	}

	return r.dispatcher.Send(ctx, pageID, psid, result.Text, conversationID, models.ProcessedByAI)
}

// selectConfig resolves the completion config by strict priority: fanpage
// specific, then scenario, then the single default.
func (r *AIResponder) selectConfig(ctx context.Context, fanpage *models.Fanpage) *models.AIConfig {
	if cfg, err := r.configs.FindByFanpage(ctx, fanpage.PageID); err == nil && cfg != nil {
		return cfg
	} else if err != nil {
		log.Printf("AIResponder: fanpage config lookup failed: %v", err)
	}

	if fanpage.DefaultScriptGroupID != "" {
		if cfg, err := r.configs.FindByScenario(ctx, fanpage.DefaultScriptGroupID); err == nil && cfg != nil {
			return cfg
		} else if err != nil {
			log.Printf("AIResponder: scenario config lookup failed: %v", err)
		}
	}

	cfg, err := r.configs.FindDefault(ctx)
	if err != nil {
		log.Printf("AIResponder: default config lookup failed: %v", err)
		return nil
	}
	return cfg
}

// gatherContext fetches the customer and the recent history concurrently.
// Either lookup may fail without sinking the turn; the request just carries
// less context.
func (r *AIResponder) gatherContext(ctx context.Context, psid, pageID, conversationID string) (*models.Customer, []models.Message) {
	customerCh := make(chan *models.Customer, 1)
	historyCh := make(chan []models.Message, 1)

	go func() {
		customer, err := r.customers.ByExternalID(ctx, psid, pageID)
		if err != nil {
			log.Printf("AIResponder: customer lookup failed for %s: %v", psid, err)
		}
		customerCh <- customer
	}()
	go func() {
		history, err := r.messages.Recent(ctx, conversationID, r.defaults.HistoryLimit)
		if err != nil {
			log.Printf("AIResponder: history lookup failed for %s: %v", conversationID, err)
		}
		historyCh <- history
	}()

	return <-customerCh, <-historyCh
}

func (r *AIResponder) buildRequest(cfg *models.AIConfig, fanpage *models.Fanpage, customer *models.Customer, history []models.Message, text string) CompletionRequest {
	customerName := r.defaults.CustomerName
	if customer != nil && customer.Name != "" {
		customerName = customer.Name
	}
	fanpageName := r.defaults.FanpageName
	if fanpage.Name != "" {
		fanpageName = fanpage.Name
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = r.defaults.SystemPrompt
	}
	systemPrompt += "\nFanpage: " + fanpageName + ". Khách hàng: " + customerName + "."
	if categories := fanpage.CategoryList(); len(categories) > 0 {
		systemPrompt += "\nLĩnh vực kinh doanh: "
		for i, c := range categories {
			if i > 0 {
				systemPrompt += ", "
			}
			systemPrompt += c
		}
		systemPrompt += "."
	}
	if fanpage.TimeZone != "" {
		systemPrompt += "\nMúi giờ: " + fanpage.TimeZone + "."
	}

	maxTokens := cfg.MaxTokens
	if maxTokens == 0 {
		maxTokens = r.defaults.MaxTokens
	}
	temperature := cfg.Temperature
	if temperature == 0 {
		temperature = r.defaults.Temperature
	}

	// History arrives newest first; reverse to chronological order for the
	// completion API.
	turns := make([]ChatTurn, 0, len(history))
	for i := len(history) - 1; i >= 0; i-- {
		msg := history[i]
		role := "assistant"
		if msg.Direction == models.DirectionIn {
			role = "user"
		}
		turns = append(turns, ChatTurn{Role: role, Content: msg.Text})
	}

	return CompletionRequest{
		SystemPrompt: systemPrompt,
		History:      turns,
		UserMessage:  text,
		Model:        cfg.Model,
		APIKey:       cfg.APIKey,
		MaxTokens:    maxTokens,
		Temperature:  temperature,
	}
}
