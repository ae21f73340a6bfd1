// internal/services/sendgrid_service.go
// SendGrid 郵件發送服務

package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"

	"pathway-notify/internal/models"
)

// SendClient SendGrid client 介面 (*sendgrid.Client 實作)
type SendClient interface {
	SendWithContext(ctx context.Context, email *mail.SGMailV3) (*rest.Response, error)
}

// ClientFactory 依 API Key 建立 client
type ClientFactory func(apiKey string) SendClient

// DefaultClientFactory 使用官方 SendGrid API
func DefaultClientFactory(apiKey string) SendClient {
	return sendgrid.NewSendClient(apiKey)
}

// SendGridService SendGrid 郵件發送服務
// 實作 MailSender interface
type SendGridService struct {
	newClient ClientFactory
	log       *zap.Logger
}

// NewSendGridService 建立 SendGrid 服務
func NewSendGridService(newClient ClientFactory, log *zap.Logger) *SendGridService {
	if newClient == nil {
		newClient = DefaultClientFactory
	}
	return &SendGridService{
		newClient: newClient,
		log:       log,
	}
}

// Name 回傳服務名稱
func (s *SendGridService) Name() string {
	return "SendGrid"
}

// Recipients 回傳收件人清單，cc 與 to 相同時不重複加入
func Recipients(params *models.EmailParams) []string {
	recipients := []string{params.To}
	if params.CC != "" && !strings.EqualFold(params.CC, params.To) {
		recipients = append(recipients, params.CC)
	}
	return recipients
}

// BuildMessage 建立 SendGrid 郵件
func BuildMessage(params *models.EmailParams) *mail.SGMailV3 {
	message := mail.NewV3Mail()
	message.SetFrom(mail.NewEmail("", params.From))
	message.Subject = params.Subject

	// 建立個人化設定 (收件人)
	personalization := mail.NewPersonalization()
	for _, addr := range Recipients(params) {
		personalization.AddTos(mail.NewEmail(addr, addr))
	}
	message.AddPersonalizations(personalization)

	message.AddContent(mail.NewContent("text/html", params.Body))
	return message
}

// Send 發送郵件 (使用 SendGrid API)
// 缺少 API Key 時不發送；任何發送錯誤皆記錄後回傳，不中斷批次
func (s *SendGridService) Send(ctx context.Context, cfg *models.NotifyConfig, params *models.EmailParams) models.SendResult {
	apiKey := cfg.SendGrid.APIKey
	if apiKey == "" {
		s.log.Error("No SendGrid API key in parameters", zap.String("to", params.To))
		return models.SendResult{Err: models.ErrMissingAPIKey}
	}
	s.log.Debug("Using SendGrid API key", zap.String("api_key", maskKey(apiKey)))

	client := s.newClient(apiKey)
	response, err := client.SendWithContext(ctx, BuildMessage(params))
	if err != nil {
		err = fmt.Errorf("failed to send email via SendGrid: %w", err)
		s.log.Error("Send failed", zap.String("to", params.To), zap.Error(err))
		return models.SendResult{Attempted: true, Err: err}
	}

	result := models.SendResult{
		Attempted:  true,
		StatusCode: response.StatusCode,
		Body:       response.Body,
	}

	// 檢查回應狀態 (2xx 表示成功)
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		result.Err = fmt.Errorf("SendGrid API error (status %d): %s", response.StatusCode, response.Body)
		s.log.Error("Send rejected",
			zap.String("to", params.To),
			zap.Int("status_code", response.StatusCode),
			zap.String("body", response.Body),
		)
		return result
	}

	s.log.Info("Email sent",
		zap.String("to", params.To),
		zap.Int("status_code", response.StatusCode),
		zap.String("body", response.Body),
	)
	return result
}

// maskKey 遮蔽 API Key，僅保留前四碼
func maskKey(key string) string {
	if len(key) <= 4 {
		return "****"
	}
	return key[:4] + strings.Repeat("*", len(key)-4)
}
