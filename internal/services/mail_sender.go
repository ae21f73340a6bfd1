// internal/services/mail_sender.go
// 郵件發送服務共用介面

package services

import (
	"context"

	"pathway-notify/internal/models"
)

// MailSender 郵件發送服務介面
// 發送失敗不會回傳 error，結果記錄於 SendResult
type MailSender interface {
	// Send 發送郵件
	Send(ctx context.Context, cfg *models.NotifyConfig, params *models.EmailParams) models.SendResult

	// Name 回傳服務名稱，用於 logging
	Name() string
}
