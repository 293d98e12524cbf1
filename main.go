package main

import (
	"context"
	"log"
	"os"
	"time"

	"docuchat/internal/api"
	"docuchat/internal/chat"
	"docuchat/internal/config"
	"docuchat/internal/extract"
	"docuchat/internal/gateway"
	"docuchat/internal/models"
	"docuchat/internal/store"

	"github.com/gin-gonic/gin"
)

func main() {
	cfgPath := os.Getenv("DOCUCHAT_CONFIG")
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	files := store.New(cfg.BasicConfig.FileBaseDir)
	cleanCtx, cleanCancel := context.WithCancel(context.Background())
	defer cleanCancel()
	ttl := time.Duration(cfg.BasicConfig.TempFileTTL) * time.Minute
	interval := time.Duration(cfg.BasicConfig.TempCleanInterval) * time.Minute
	files.StartCleaner(cleanCtx, ttl, interval)

	gw, err := gateway.New(cfg)
	if err != nil {
		log.Fatalf("init model gateway: %v", err)
	}

	orch := chat.New(extract.New(), gw, files)
	defer orch.Close()

	handlers := api.NewHandler(orch)
	router := gin.Default()
	router.MaxMultipartMemory = models.MaxUploadBytes
	handlers.RegisterRoutes(router)

	if err := router.Run(cfg.BasicConfig.ServerAddress); err != nil {
		log.Fatalf("server stopped: %v", err)
	}
}
