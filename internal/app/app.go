// internal/app/app.go
// 組裝模組 - 依設定建立批次處理器

package app

import (
	"context"
	"fmt"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"go.uber.org/zap"

	"pathway-notify/internal/config"
	"pathway-notify/internal/handler"
	"pathway-notify/internal/params"
	"pathway-notify/internal/services"
)

// NewResolver 依 PARAM_SOURCE 建立設定來源
func NewResolver(ctx context.Context, cfg *config.Config) (params.Resolver, error) {
	switch cfg.ParamSource {
	case config.ParamSourceEnv:
		return params.NewEnvResolver(cfg), nil
	case config.ParamSourceSSM:
		awsCfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %w", err)
		}
		return params.NewSSMResolver(ssm.NewFromConfig(awsCfg), cfg.ParamPath), nil
	default:
		return nil, fmt.Errorf("unknown PARAM_SOURCE %q", cfg.ParamSource)
	}
}

// NewHandler 建立批次處理器，回傳的 cleanup 需於結束時呼叫
func NewHandler(ctx context.Context, cfg *config.Config, resolver params.Resolver, log *zap.Logger) (*handler.BatchHandler, func(), error) {
	opts := []handler.Option{
		handler.WithTemplates(cfg.SubjectTemplate, cfg.BodyTemplate),
	}
	cleanup := func() {}

	if cfg.StatusCacheEnabled() {
		keydbService, err := services.NewKeyDBService(cfg)
		if err != nil {
			return nil, cleanup, err
		}
		opts = append(opts, handler.WithStatusRecorder(keydbService))
		cleanup = func() { _ = keydbService.Close() }
	} else {
		log.Debug("KeyDB not configured, outcome status cache disabled")
	}

	sendgridService := services.NewSendGridService(services.DefaultClientFactory, log)
	return handler.NewBatchHandler(resolver, sendgridService, log, opts...), cleanup, nil
}
