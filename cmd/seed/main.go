package main

import (
	"context"
	"log"

	"github.com/vuthevietgps/chatbot2-sub001/internal/config"
	"github.com/vuthevietgps/chatbot2-sub001/internal/database"
	"github.com/vuthevietgps/chatbot2-sub001/internal/models"
	"github.com/vuthevietgps/chatbot2-sub001/internal/store"
)

// Seeds a demo fanpage with a few scripts, sub-scripts and a default AI
// config for local development.
func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	db := database.GormDB
	ctx := context.Background()

	fanpages := store.NewFanpageStore(db)
	scripts := store.NewScriptStore(db)
	configs := store.NewAIConfigStore(db)

	page := models.Fanpage{
		PageID:               "1234567890",
		Name:                 "Demo Shop",
		AccessToken:          "demo-token",
		AIEnabled:            true,
		DefaultScriptGroupID: "default",
		TimeZone:             "Asia/Ho_Chi_Minh",
		Categories:           `["thời trang","giày dép"]`,
	}
	if err := fanpages.Create(ctx, &page); err != nil {
		log.Printf("Seed: fanpage exists or failed: %v", err)
	}

	demoScripts := []models.Script{
		{
			GroupID:  "default",
			Name:     "Chào hỏi",
			Triggers: `["xin chào","chào shop","hello"]`,
			Response: "Chào {{name}}! Shop có thể giúp gì cho bạn?",
			Priority: 10,
			Status:   models.StatusActive,
			Action:   models.Action{Type: models.ActionAddTag, TagName: "greeted"},
		},
		{
			GroupID:  "default",
			Name:     "Hỏi giá",
			Triggers: `["giá","bao nhiêu tiền"]`,
			Response: "Bạn quan tâm sản phẩm nào ạ? Shop sẽ báo giá ngay.",
			Priority: 5,
			Status:   models.StatusActive,
			Action:   models.Action{Type: models.ActionNone},
		},
	}
	for i := range demoScripts {
		if err := scripts.CreateScript(ctx, &demoScripts[i]); err != nil {
			log.Printf("Seed: script %q failed: %v", demoScripts[i].Name, err)
		}
	}

	sub := models.SubScript{
		ScenarioID: "default",
		Name:       "Tra cứu đơn hàng",
		Keywords:   `["đơn hàng của tôi","kiểm tra đơn"]`,
		MatchMode:  models.MatchStartsWith,
		Response:   "Bạn cho shop xin mã đơn hàng để kiểm tra nhé.",
		Priority:   20,
		Status:     models.StatusActive,
		Action:     models.Action{Type: models.ActionSetVariable, VarName: "intent", VarValue: "order_lookup"},
	}
	if err := scripts.CreateSubScript(ctx, &sub); err != nil {
		log.Printf("Seed: sub-script failed: %v", err)
	}

	aiCfg := models.AIConfig{
		Name:        "Default GPT",
		APIKey:      "sk-demo",
		Model:       "gpt-4o-mini",
		MaxTokens:   1000,
		Temperature: 0.7,
	}
	if err := configs.Create(ctx, &aiCfg); err != nil {
		log.Printf("Seed: ai config failed: %v", err)
	} else if err := configs.SetDefault(ctx, aiCfg.ID); err != nil {
		log.Printf("Seed: set default failed: %v", err)
	}

	log.Println("Seed completed")
}
