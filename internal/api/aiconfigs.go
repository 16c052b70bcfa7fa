package api

import (
	"net/http"
	"strconv"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
	"github.com/vuthevietgps/chatbot2-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

type AIConfigHandler struct {
	configs *store.AIConfigStore
}

func NewAIConfigHandler(configs *store.AIConfigStore) *AIConfigHandler {
	return &AIConfigHandler{configs: configs}
}

func (h *AIConfigHandler) GetConfigs(c *gin.Context) {
	cfgs, err := h.configs.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, cfgs)
}

func (h *AIConfigHandler) CreateConfig(c *gin.Context) {
	var req struct {
		Name                string  `json:"name" binding:"required"`
		APIKey              string  `json:"api_key" binding:"required"`
		Model               string  `json:"model" binding:"required"`
		SystemPrompt        string  `json:"system_prompt"`
		MaxTokens           int     `json:"max_tokens"`
		Temperature         float32 `json:"temperature"`
		ApplicableScenarios string  `json:"applicable_scenarios"`
		ApplicableFanpages  string  `json:"applicable_fanpages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	cfg := models.AIConfig{
		Name:                req.Name,
		APIKey:              req.APIKey,
		Model:               req.Model,
		SystemPrompt:        req.SystemPrompt,
		MaxTokens:           req.MaxTokens,
		Temperature:         req.Temperature,
		ApplicableScenarios: req.ApplicableScenarios,
		ApplicableFanpages:  req.ApplicableFanpages,
	}
	if err := h.configs.Create(c.Request.Context(), &cfg); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, cfg)
}

func (h *AIConfigHandler) UpdateConfig(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Name                string   `json:"name"`
		APIKey              string   `json:"api_key"`
		Model               string   `json:"model"`
		SystemPrompt        *string  `json:"system_prompt"`
		MaxTokens           *int     `json:"max_tokens"`
		Temperature         *float32 `json:"temperature"`
		ApplicableScenarios *string  `json:"applicable_scenarios"`
		ApplicableFanpages  *string  `json:"applicable_fanpages"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.APIKey != "" {
		fields["api_key"] = req.APIKey
	}
	if req.Model != "" {
		fields["model"] = req.Model
	}
	if req.SystemPrompt != nil {
		fields["system_prompt"] = *req.SystemPrompt
	}
	if req.MaxTokens != nil {
		fields["max_tokens"] = *req.MaxTokens
	}
	if req.Temperature != nil {
		fields["temperature"] = *req.Temperature
	}
	if req.ApplicableScenarios != nil {
		fields["applicable_scenarios"] = *req.ApplicableScenarios
	}
	if req.ApplicableFanpages != nil {
		fields["applicable_fanpages"] = *req.ApplicableFanpages
	}

	if err := h.configs.Update(c.Request.Context(), uint(id), fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Config updated successfully"})
}

func (h *AIConfigHandler) DeleteConfig(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.configs.Delete(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Config deleted successfully"})
}

// SetDefault promotes one config to the single default.
func (h *AIConfigHandler) SetDefault(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.configs.SetDefault(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Default config updated"})
}

// GetUsage returns one config's usage counters.
func (h *AIConfigHandler) GetUsage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	cfg, err := h.configs.ByID(c.Request.Context(), uint(id))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if cfg == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "config not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"total_requests":       cfg.TotalRequests,
		"total_tokens_used":    cfg.TotalTokensUsed,
		"successful_responses": cfg.SuccessfulResponses,
		"failed_responses":     cfg.FailedResponses,
		"last_used_at":         cfg.LastUsedAt,
	})
}
