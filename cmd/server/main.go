package main

import (
	"log"

	"github.com/vuthevietgps/chatbot2-sub001/internal/api"
	"github.com/vuthevietgps/chatbot2-sub001/internal/cache"
	"github.com/vuthevietgps/chatbot2-sub001/internal/chatbot"
	"github.com/vuthevietgps/chatbot2-sub001/internal/config"
	"github.com/vuthevietgps/chatbot2-sub001/internal/database"
	"github.com/vuthevietgps/chatbot2-sub001/internal/messenger"
	"github.com/vuthevietgps/chatbot2-sub001/internal/middleware"
	"github.com/vuthevietgps/chatbot2-sub001/internal/openai"
	"github.com/vuthevietgps/chatbot2-sub001/internal/store"
	"github.com/vuthevietgps/chatbot2-sub001/internal/webhook"
	"github.com/vuthevietgps/chatbot2-sub001/internal/ws"

	"github.com/gin-gonic/gin"
)

func main() {
	cfg := config.LoadConfig()
	database.InitGorm(cfg)
	db := database.GormDB

	// Stores
	fanpageStore := store.NewFanpageStore(db)
	fanpageCache := cache.New(cfg.RedisAddr, cfg.RedisPassword)
	cachedFanpages := store.NewCachedFanpageStore(fanpageStore, fanpageCache)
	customerStore := store.NewCustomerStore(db)
	conversationStore := store.NewConversationStore(db)
	messageStore := store.NewMessageStore(db)
	scriptStore := store.NewScriptStore(db)
	aiConfigStore := store.NewAIConfigStore(db)
	webhookLogStore := store.NewWebhookLogStore(db)

	// Transports
	transport := messenger.NewClient()
	completer := openai.NewClient(cfg.OpenAIBaseURL)

	// Core automation pipeline
	matcher := chatbot.NewMatcher(scriptStore)
	personalizer := chatbot.NewPersonalizer(customerStore, cachedFanpages)
	actions := chatbot.NewActionExecutor(customerStore)
	dispatcher := chatbot.NewDispatcher(cachedFanpages, messageStore, conversationStore, transport)
	aiResponder := chatbot.NewAIResponder(aiConfigStore, customerStore, messageStore, completer, dispatcher, chatbot.DefaultAIDefaults())
	bot := chatbot.NewBot(cachedFanpages, matcher, personalizer, actions, aiResponder, dispatcher)

	// Realtime hub
	hub := ws.NewHub()
	go hub.Run()

	webhookHandler := webhook.NewHandler(cfg, bot, customerStore, conversationStore, messageStore, webhookLogStore, hub)
	authHandler := api.NewAuthHandler(cfg)
	scriptHandler := api.NewScriptHandler(scriptStore)
	fanpageHandler := api.NewFanpageHandler(fanpageStore, cachedFanpages)
	aiConfigHandler := api.NewAIConfigHandler(aiConfigStore)
	conversationHandler := api.NewConversationHandler(conversationStore, messageStore, fanpageStore, webhookLogStore, transport, hub)
	customerHandler := api.NewCustomerHandler(customerStore)

	r := gin.Default()

	// CORS Middleware
	r.Use(func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	// Webhook Routes
	r.GET("/webhook", webhookHandler.Verify)
	r.POST("/webhook", webhookHandler.Receive)

	// Realtime push for agent consoles
	r.GET("/ws", func(c *gin.Context) {
		hub.ServeWs(c.Writer, c.Request)
	})

	r.POST("/auth/login", authHandler.Login)

	apiGroup := r.Group("/api")
	apiGroup.Use(middleware.RequireAuth(cfg.JWTSecret))
	{
		// Script Routes
		apiGroup.GET("/scripts", scriptHandler.GetScripts)
		apiGroup.POST("/scripts", scriptHandler.CreateScript)
		apiGroup.PUT("/scripts/:id", scriptHandler.UpdateScript)
		apiGroup.DELETE("/scripts/:id", scriptHandler.DeleteScript)
		apiGroup.GET("/sub-scripts", scriptHandler.GetSubScripts)
		apiGroup.POST("/sub-scripts", scriptHandler.CreateSubScript)
		apiGroup.PUT("/sub-scripts/:id", scriptHandler.UpdateSubScript)
		apiGroup.DELETE("/sub-scripts/:id", scriptHandler.DeleteSubScript)

		// Fanpage Routes
		apiGroup.GET("/fanpages", fanpageHandler.GetFanpages)
		apiGroup.POST("/fanpages", fanpageHandler.CreateFanpage)
		apiGroup.PUT("/fanpages/:id", fanpageHandler.UpdateFanpage)
		apiGroup.POST("/fanpages/:pageId/reset-counter", fanpageHandler.ResetMonthlyCounter)

		// AI Config Routes
		apiGroup.GET("/ai-configs", aiConfigHandler.GetConfigs)
		apiGroup.POST("/ai-configs", aiConfigHandler.CreateConfig)
		apiGroup.PUT("/ai-configs/:id", aiConfigHandler.UpdateConfig)
		apiGroup.DELETE("/ai-configs/:id", aiConfigHandler.DeleteConfig)
		apiGroup.POST("/ai-configs/:id/default", aiConfigHandler.SetDefault)
		apiGroup.GET("/ai-configs/:id/usage", aiConfigHandler.GetUsage)

		// Conversation Routes
		apiGroup.GET("/conversations", conversationHandler.GetConversations)
		apiGroup.GET("/conversations/:id/messages", conversationHandler.GetMessages)
		apiGroup.PUT("/conversations/:id/status", conversationHandler.UpdateStatus)
		apiGroup.POST("/conversations/:id/messages", conversationHandler.SendMessage)
		apiGroup.GET("/webhook-logs", conversationHandler.GetWebhookLogs)

		// Customer Routes
		apiGroup.GET("/customers", customerHandler.GetCustomers)
		apiGroup.GET("/customers/:psid", customerHandler.GetCustomer)
	}

	log.Printf("Server starting on port %s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
