package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
	"github.com/vuthevietgps/chatbot2-sub001/internal/store"

	"github.com/gin-gonic/gin"
)

type ScriptHandler struct {
	scripts *store.ScriptStore
}

func NewScriptHandler(scripts *store.ScriptStore) *ScriptHandler {
	return &ScriptHandler{scripts: scripts}
}

func validAction(a models.Action) bool {
	switch a.Type {
	case models.ActionNone, models.ActionAddTag, models.ActionSetVariable, models.ActionCallWebhook, "":
		return true
	}
	return false
}

// GetScripts returns scripts, optionally filtered by group.
func (h *ScriptHandler) GetScripts(c *gin.Context) {
	scripts, err := h.scripts.ListScripts(c.Request.Context(), c.Query("group_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, scripts)
}

// CreateScript creates a new script.
func (h *ScriptHandler) CreateScript(c *gin.Context) {
	var req struct {
		GroupID  string          `json:"group_id"`
		Name     string          `json:"name" binding:"required"`
		Triggers json.RawMessage `json:"triggers" binding:"required"`
		Response string          `json:"response" binding:"required"`
		Priority int             `json:"priority"`
		Action   models.Action   `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validAction(req.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action type"})
		return
	}
	if req.Action.Type == "" {
		req.Action.Type = models.ActionNone
	}

	script := models.Script{
		GroupID:  req.GroupID,
		Name:     req.Name,
		Triggers: string(req.Triggers),
		Response: req.Response,
		Priority: req.Priority,
		Status:   models.StatusActive,
		Action:   req.Action,
	}
	if err := h.scripts.CreateScript(c.Request.Context(), &script); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, script)
}

// UpdateScript applies a partial update.
func (h *ScriptHandler) UpdateScript(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Name     string          `json:"name"`
		GroupID  *string         `json:"group_id"`
		Triggers json.RawMessage `json:"triggers"`
		Response string          `json:"response"`
		Priority *int            `json:"priority"`
		Status   string          `json:"status"`
		Action   *models.Action  `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if req.GroupID != nil {
		fields["group_id"] = *req.GroupID
	}
	if len(req.Triggers) > 0 {
		fields["triggers"] = string(req.Triggers)
	}
	if req.Response != "" {
		fields["response"] = req.Response
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Status != "" {
		if req.Status != models.StatusActive && req.Status != models.StatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		fields["status"] = req.Status
	}
	if req.Action != nil {
		if !validAction(*req.Action) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action type"})
			return
		}
		fields["action_type"] = req.Action.Type
		fields["action_tag_name"] = req.Action.TagName
		fields["action_var_name"] = req.Action.VarName
		fields["action_var_value"] = req.Action.VarValue
		fields["action_webhook_url"] = req.Action.WebhookURL
	}

	if err := h.scripts.UpdateScript(c.Request.Context(), uint(id), fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Script updated successfully"})
}

// DeleteScript removes a script.
func (h *ScriptHandler) DeleteScript(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.scripts.DeleteScript(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Script deleted successfully"})
}

// GetSubScripts returns sub-scripts, optionally filtered by scenario.
func (h *ScriptHandler) GetSubScripts(c *gin.Context) {
	subs, err := h.scripts.ListSubScripts(c.Request.Context(), c.Query("scenario_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, subs)
}

// CreateSubScript creates a new sub-script.
func (h *ScriptHandler) CreateSubScript(c *gin.Context) {
	var req struct {
		ScenarioID string           `json:"scenario_id"`
		Name       string           `json:"name" binding:"required"`
		Keywords   json.RawMessage  `json:"keywords" binding:"required"`
		MatchMode  models.MatchMode `json:"match_mode"`
		Response   string           `json:"response" binding:"required"`
		Priority   int              `json:"priority"`
		Action     models.Action    `json:"action"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MatchMode == "" {
		req.MatchMode = models.MatchContains
	}
	if !models.ValidMatchMode(req.MatchMode) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match mode"})
		return
	}
	if !validAction(req.Action) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown action type"})
		return
	}
	if req.Action.Type == "" {
		req.Action.Type = models.ActionNone
	}

	sub := models.SubScript{
		ScenarioID: req.ScenarioID,
		Name:       req.Name,
		Keywords:   string(req.Keywords),
		MatchMode:  req.MatchMode,
		Response:   req.Response,
		Priority:   req.Priority,
		Status:     models.StatusActive,
		Action:     req.Action,
	}
	if err := h.scripts.CreateSubScript(c.Request.Context(), &sub); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, sub)
}

// UpdateSubScript applies a partial update.
func (h *ScriptHandler) UpdateSubScript(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}

	var req struct {
		Name      string           `json:"name"`
		Keywords  json.RawMessage  `json:"keywords"`
		MatchMode models.MatchMode `json:"match_mode"`
		Response  string           `json:"response"`
		Priority  *int             `json:"priority"`
		Status    string           `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	fields := map[string]interface{}{}
	if req.Name != "" {
		fields["name"] = req.Name
	}
	if len(req.Keywords) > 0 {
		fields["keywords"] = string(req.Keywords)
	}
	if req.MatchMode != "" {
		if !models.ValidMatchMode(req.MatchMode) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match mode"})
			return
		}
		fields["match_mode"] = req.MatchMode
	}
	if req.Response != "" {
		fields["response"] = req.Response
	}
	if req.Priority != nil {
		fields["priority"] = *req.Priority
	}
	if req.Status != "" {
		if req.Status != models.StatusActive && req.Status != models.StatusInactive {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		fields["status"] = req.Status
	}

	if err := h.scripts.UpdateSubScript(c.Request.Context(), uint(id), fields); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sub-script updated successfully"})
}

// DeleteSubScript removes a sub-script.
func (h *ScriptHandler) DeleteSubScript(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid id"})
		return
	}
	if err := h.scripts.DeleteSubScript(c.Request.Context(), uint(id)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Sub-script deleted successfully"})
}
