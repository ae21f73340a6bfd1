// internal/services/keydb_service.go
// KeyDB 狀態快取服務 - 記錄每筆紀錄的發送結果

package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pathway-notify/internal/config"
	"pathway-notify/internal/models"
)

// StatusRecorder 發送結果記錄介面
type StatusRecorder interface {
	SetStatus(ctx context.Context, batchID string, outcome models.Outcome) error
}

// KeyDBService KeyDB 服務
type KeyDBService struct {
	ttl    time.Duration
	client *redis.Client
}

// NewKeyDBService 建立 KeyDB 服務
func NewKeyDBService(cfg *config.Config) (*KeyDBService, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.KeyDBURL,
		Password: cfg.KeyDBPassword,
		DB:       0,
	})

	// 測試連接
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to KeyDB: %w", err)
	}

	return &KeyDBService{
		ttl:    cfg.KeyDBStatusTTL,
		client: client,
	}, nil
}

func statusKey(batchID string, index int) string {
	return fmt.Sprintf("notify:status:%s:%d", batchID, index)
}

// SetStatus 設定單筆紀錄的發送結果
func (s *KeyDBService) SetStatus(ctx context.Context, batchID string, outcome models.Outcome) error {
	statusCache := models.OutcomeStatusCache{
		BatchID:     batchID,
		Index:       outcome.Index,
		SendTo:      outcome.SendTo,
		Status:      string(outcome.Kind),
		StatusCode:  outcome.StatusCode,
		LastUpdated: time.Now().UTC().Format(time.RFC3339),
		Reason:      outcome.Reason,
	}

	data, err := json.Marshal(statusCache)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}

	return s.client.Set(ctx, statusKey(batchID, outcome.Index), data, s.ttl).Err()
}

// GetStatus 取得單筆紀錄的發送結果
func (s *KeyDBService) GetStatus(ctx context.Context, batchID string, index int) (*models.OutcomeStatusCache, error) {
	data, err := s.client.Get(ctx, statusKey(batchID, index)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, fmt.Errorf("status not found")
		}
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	var status models.OutcomeStatusCache
	if err := json.Unmarshal(data, &status); err != nil {
		return nil, fmt.Errorf("failed to unmarshal status: %w", err)
	}

	return &status, nil
}

// Close 關閉連接
func (s *KeyDBService) Close() error {
	return s.client.Close()
}
