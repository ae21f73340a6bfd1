// cmd/email-notify/main.go
// Lambda 入口 - 內容移除通知

package main

import (
	"context"
	"encoding/json"
	"log"

	"github.com/aws/aws-lambda-go/lambda"
	"go.uber.org/zap"

	"pathway-notify/internal/app"
	"pathway-notify/internal/config"
	"pathway-notify/internal/logger"
)

func main() {
	// 載入設定
	cfg := config.Load()

	zlog, err := logger.New(cfg.Debug)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()

	ctx := context.Background()

	// 初始化設定來源
	resolver, err := app.NewResolver(ctx, cfg)
	if err != nil {
		zlog.Fatal("Failed to init config resolver", zap.Error(err))
	}

	// 初始化批次處理器
	h, cleanup, err := app.NewHandler(ctx, cfg, resolver, zlog)
	if err != nil {
		zlog.Fatal("Failed to init handler", zap.Error(err))
	}
	defer cleanup()

	lambda.Start(func(ctx context.Context, event json.RawMessage) error {
		_, err := h.Handle(ctx, event)
		return err
	})
}
