package main

import (
	"context"

	"pathway-notify/internal/models"
	"pathway-notify/internal/params"
)

// dryRunOverride 以命令列旗標覆寫設定來源的 dry_run
type dryRunOverride struct {
	params.Resolver
	DryRun bool
}

func (r dryRunOverride) Resolve(ctx context.Context) (*models.NotifyConfig, error) {
	cfg, err := r.Resolver.Resolve(ctx)
	if err != nil {
		return nil, err
	}
	cfg.DryRun = r.DryRun
	return cfg, nil
}
