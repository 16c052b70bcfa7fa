package models

import (
	"encoding/json"
	"time"
)

// Script / sub-script lifecycle status
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Message direction
const (
	DirectionIn  = "in"
	DirectionOut = "out"
)

// Message sender types
const (
	SenderCustomer = "customer"
	SenderBot      = "bot"
	SenderAgent    = "agent"
)

// Who produced an automated reply
const (
	ProcessedByScript = "script"
	ProcessedByAI     = "ai"
	ProcessedByAgent  = "agent"
	ProcessedByNone   = "none"
)

// Message delivery status
const (
	MessageReceived  = "received"
	MessageProcessed = "processed"
	MessageSent      = "sent"
	MessageError     = "error"
)

// Conversation status
const (
	ConversationOpen         = "open"
	ConversationPendingAgent = "pending_agent"
	ConversationClosed       = "closed"
)

// MatchMode controls how trigger keywords are tested against a message.
type MatchMode string

const (
	MatchExact      MatchMode = "exact"
	MatchStartsWith MatchMode = "startswith"
	MatchRegex      MatchMode = "regex"
	MatchContains   MatchMode = "contains"
)

// ValidMatchMode reports whether m is one of the supported modes.
func ValidMatchMode(m MatchMode) bool {
	switch m {
	case MatchExact, MatchStartsWith, MatchRegex, MatchContains:
		return true
	}
	return false
}

// ActionType discriminates the side-effect variant attached to a script.
type ActionType string

const (
	ActionNone        ActionType = "none"
	ActionAddTag      ActionType = "add_tag"
	ActionSetVariable ActionType = "set_variable"
	ActionCallWebhook ActionType = "call_webhook"
)

// Action is the side effect a matched script fires. Exactly one variant is
// active at a time, selected by Type; fields of other variants are ignored.
// Unknown types are treated as no-ops by the executor.
type Action struct {
	Type       ActionType `gorm:"type:varchar(50);default:'none'" json:"type"`
	TagName    string     `gorm:"type:varchar(255)" json:"tag_name,omitempty"`
	VarName    string     `gorm:"type:varchar(255)" json:"var_name,omitempty"`
	VarValue   string     `gorm:"type:varchar(255)" json:"var_value,omitempty"`
	WebhookURL string     `gorm:"type:text" json:"webhook_url,omitempty"`
}

// Fanpage is an operator-connected messaging page with its own credentials
// and automation settings. AIEnabled=false short-circuits all automation.
type Fanpage struct {
	ID                    uint      `gorm:"primaryKey" json:"id"`
	PageID                string    `gorm:"type:varchar(50);not null;uniqueIndex" json:"page_id"`
	Name                  string    `gorm:"type:varchar(255)" json:"name"`
	AccessToken           string    `gorm:"type:text" json:"access_token"`
	AIEnabled             bool      `gorm:"default:true" json:"ai_enabled"`
	DefaultScriptGroupID  string    `gorm:"type:varchar(50)" json:"default_script_group_id"`
	MessageQuota          int       `gorm:"default:10000" json:"message_quota"`
	MessagesSentThisMonth int       `gorm:"default:0" json:"messages_sent_this_month"`
	TimeZone              string    `gorm:"type:varchar(100);default:'Asia/Ho_Chi_Minh'" json:"time_zone"`
	Categories            string    `gorm:"type:text" json:"categories"` // JSON array
	CreatedAt             time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt             time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Fanpage) TableName() string {
	return "fanpages"
}

// CategoryList decodes the JSON categories column.
func (f *Fanpage) CategoryList() []string {
	return decodeList(f.Categories)
}

// Customer is an end user of a fanpage, keyed by (facebook_id, fanpage_id).
type Customer struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	FacebookID string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_page" json:"facebook_id"`
	FanpageID  string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_customer_page" json:"fanpage_id"`
	Name       string    `gorm:"type:varchar(255)" json:"name"`
	Phone      string    `gorm:"type:varchar(50)" json:"phone"`
	Email      string    `gorm:"type:varchar(255)" json:"email"`
	Tags       string    `gorm:"type:text" json:"tags"`        // JSON array
	CustomVars string    `gorm:"type:text" json:"custom_vars"` // JSON object
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Customer) TableName() string {
	return "customers"
}

// TagList decodes the JSON tags column.
func (c *Customer) TagList() []string {
	return decodeList(c.Tags)
}

// SetTagList encodes tags back into the JSON column.
func (c *Customer) SetTagList(tags []string) {
	c.Tags = encodeList(tags)
}

// Variables decodes the JSON custom-variables column.
func (c *Customer) Variables() map[string]string {
	vars := map[string]string{}
	if c.CustomVars != "" {
		json.Unmarshal([]byte(c.CustomVars), &vars)
	}
	return vars
}

// SetVariables encodes variables back into the JSON column.
func (c *Customer) SetVariables(vars map[string]string) {
	data, _ := json.Marshal(vars)
	c.CustomVars = string(data)
}

// Conversation groups the message history between a fanpage and one customer.
type Conversation struct {
	ID          string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	PageID      string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_conversation_page" json:"page_id"`
	PSID        string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_conversation_page" json:"psid"`
	LastMessage string    `gorm:"type:text" json:"last_message"`
	Status      string    `gorm:"type:varchar(20);default:'open'" json:"status"`
	LastUpdated time.Time `gorm:"autoUpdateTime" json:"last_updated"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Conversation) TableName() string {
	return "conversations"
}

// Message is an append-only record of one inbound or outbound turn.
type Message struct {
	ID             uint      `gorm:"primaryKey" json:"id"`
	ConversationID string    `gorm:"type:varchar(50);index" json:"conversation_id"`
	Direction      string    `gorm:"type:varchar(10);not null" json:"direction"`
	SenderType     string    `gorm:"type:varchar(20);not null" json:"sender_type"`
	Text           string    `gorm:"type:text" json:"text"`
	PlatformMsgID  string    `gorm:"type:varchar(255)" json:"platform_msg_id"`
	ProcessedBy    string    `gorm:"type:varchar(20);default:'none'" json:"processed_by"`
	Status         string    `gorm:"type:varchar(20)" json:"status"`
	CreatedAt      time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Message) TableName() string {
	return "messages"
}

// Script is a coarse trigger->response rule. Scripts always match with the
// contains mode.
type Script struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	GroupID   string    `gorm:"type:varchar(50);index" json:"group_id"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	Triggers  string    `gorm:"type:text" json:"triggers"` // JSON array
	Response  string    `gorm:"type:text" json:"response"`
	Priority  int       `gorm:"default:0" json:"priority"`
	Status    string    `gorm:"type:varchar(20);default:'active'" json:"status"`
	Action    Action    `gorm:"embedded;embeddedPrefix:action_" json:"action"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Script) TableName() string {
	return "scripts"
}

// TriggerList decodes the JSON triggers column.
func (s *Script) TriggerList() []string {
	return decodeList(s.Triggers)
}

// SubScript is the fine-grained sibling of Script: it carries its own match
// mode and is evaluated with higher precedence on confidence ties.
type SubScript struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ScenarioID string    `gorm:"type:varchar(50);index" json:"scenario_id"`
	Name       string    `gorm:"type:varchar(255);not null" json:"name"`
	Keywords   string    `gorm:"type:text" json:"keywords"` // JSON array
	MatchMode  MatchMode `gorm:"type:varchar(20);default:'contains'" json:"match_mode"`
	Response   string    `gorm:"type:text" json:"response"`
	Priority   int       `gorm:"default:0" json:"priority"`
	Status     string    `gorm:"type:varchar(20);default:'active'" json:"status"`
	Action     Action    `gorm:"embedded;embeddedPrefix:action_" json:"action"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SubScript) TableName() string {
	return "sub_scripts"
}

// KeywordList decodes the JSON keywords column.
func (s *SubScript) KeywordList() []string {
	return decodeList(s.Keywords)
}

// AIConfig is a named, reusable completion configuration. At most one config
// may have IsDefault=true at any time; the store enforces the swap atomically.
type AIConfig struct {
	ID                  uint       `gorm:"primaryKey" json:"id"`
	Name                string     `gorm:"type:varchar(255);not null" json:"name"`
	APIKey              string     `gorm:"type:text" json:"api_key"`
	Model               string     `gorm:"type:varchar(100)" json:"model"`
	SystemPrompt        string     `gorm:"type:text" json:"system_prompt"`
	MaxTokens           int        `gorm:"default:0" json:"max_tokens"`
	Temperature         float32    `gorm:"default:0" json:"temperature"`
	ApplicableScenarios string     `gorm:"type:text" json:"applicable_scenarios"` // JSON array of group ids
	ApplicableFanpages  string     `gorm:"type:text" json:"applicable_fanpages"`  // JSON array of page ids
	IsDefault           bool       `gorm:"default:false;index" json:"is_default"`
	TotalRequests       int64      `gorm:"default:0" json:"total_requests"`
	TotalTokensUsed     int64      `gorm:"default:0" json:"total_tokens_used"`
	SuccessfulResponses int64      `gorm:"default:0" json:"successful_responses"`
	FailedResponses     int64      `gorm:"default:0" json:"failed_responses"`
	LastUsedAt          *time.Time `json:"last_used_at"`
	CreatedAt           time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (AIConfig) TableName() string {
	return "ai_configs"
}

// ScenarioList decodes the applicable-scenarios column.
func (a *AIConfig) ScenarioList() []string {
	return decodeList(a.ApplicableScenarios)
}

// FanpageList decodes the applicable-fanpages column.
func (a *AIConfig) FanpageList() []string {
	return decodeList(a.ApplicableFanpages)
}

// WebhookLog records one raw inbound platform event for debugging.
type WebhookLog struct {
	ID        string    `gorm:"type:varchar(50);primaryKey" json:"id"`
	PageID    string    `gorm:"type:varchar(50);index" json:"page_id"`
	PSID      string    `gorm:"type:varchar(50)" json:"psid"`
	EventType string    `gorm:"type:varchar(50)" json:"event_type"`
	Payload   string    `gorm:"type:text" json:"payload"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WebhookLog) TableName() string {
	return "webhook_logs"
}

func decodeList(raw string) []string {
	var out []string
	if raw != "" {
		json.Unmarshal([]byte(raw), &out)
	}
	return out
}

func encodeList(items []string) string {
	data, _ := json.Marshal(items)
	return string(data)
}
