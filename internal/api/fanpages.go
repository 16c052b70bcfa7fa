package api

import (
	"net/http"
	"strconv"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
	"github.com/vuthevietgps/chatbot2-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

type FanpageHandler struct {
	fanpages *store.FanpageStore
	cached   *store.CachedFanpageStore
}

func NewFanpageHandler(fanpages *store.FanpageStore, cached *store.CachedFanpageStore) *FanpageHandler {
	return &FanpageHandler{fanpages: fanpages, cached: cached}
}

func (h *FanpageHandler) GetFanpages(c *gin.Context) {
	pages, err := h.fanpages.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, pages)
}

func (h *FanpageHandler) CreateFanpage(c *gin.Context) {
	var req struct {
		PageID               string `json:"page_id" binding:"required"`
		Name                 string `json:"name"`
		AccessToken          string `json:"access_token" binding:"required"`
		AIEnabled            *bool  `json:"ai_enabled"`
		DefaultScriptGroupID string `json:"default_script_group_id"`
		MessageQuota         int    `json:"message_quota"`
		TimeZone             string `json:"time_zone"`
		Categories           string `json:"categories"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	page := models.Fanpage{
		PageID:               req.PageID,
		Name:                 req.Name,
		AccessToken:          req.AccessToken,
		AIEnabled:            true,
		DefaultScriptGroupID: req.DefaultScriptGroupID,
		TimeZone:             req.TimeZone,
		Categories:           req.Categories,
	}
	if req.AIEnabled != nil {
		page.AIEnabled = *req.AIEnabled
	}
	if req.MessageQuota > 0 {
		page.MessageQuota = req.MessageQuota
	}

	if err := h.fanpages.Create(c.Request.Context(), &page); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, page)
}

func (h *FanpageHandler) UpdateFanpage(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Name                 string  `json:"name"`
		AccessToken          string  `json:"access_token"`
		AIEnabled            *bool   `json:"ai_enabled"`
		DefaultScriptGroupID *string `json:"default_script_group_id"`
		MessageQuota         *int    `json:"message_quota"`
		TimeZone             string  `json:"time_zone"`
		Categories           *string `json:"categories"`
		PageID               string  `json:"page_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.AccessToken != "" {
		fields["access_token"] = req.AccessToken
	}
	if req.AIEnabled != nil {
		fields["ai_enabled"] = *req.AIEnabled
	}
	if req.DefaultScriptGroupID != nil {
		fields["default_script_group_id"] = *req.DefaultScriptGroupID
	}
	if req.MessageQuota != nil {
		fields["message_quota"] = *req.MessageQuota
	}
	if req.TimeZone != "" {
		fields["time_zone"] = req.TimeZone
	}
	if req.Categories != nil {
		fields["categories"] = *req.Categories
	}

	if err := h.fanpages.Update(c.Request.Context(), uint(id), fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// Drop the cached copy so automation picks up the change immediately.
	if req.PageID != "" && h.cached != nil {
		h.cached.Invalidate(c.Request.Context(), req.PageID)
	}

	c.JSON(http.StatusOK, gin.H{"message": "Fanpage updated successfully"})
}

// ResetMonthlyCounter zeroes a fanpage's monthly sent counter.
func (h *FanpageHandler) ResetMonthlyCounter(c *gin.Context) {
	pageID := c.Param("pageId")
	if err := h.fanpages.ResetMonthlySent(c.Request.Context(), pageID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	if h.cached != nil {
		h.cached.Invalidate(c.Request.Context(), pageID)
	}
	c.JSON(http.StatusOK, gin.H{"message": "Counter reset successfully"})
}
