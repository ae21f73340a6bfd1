// internal/services/record_processor.go
// 紀錄處理服務 - 將事件紀錄轉換為郵件參數

package services

import (
	"go.uber.org/zap"

	"pathway-notify/internal/models"
)

// RecordProcessor 紀錄處理服務
type RecordProcessor struct {
	renderer  *TemplateRenderer
	templates Templates
	log       *zap.Logger
}

// NewRecordProcessor 建立紀錄處理服務
func NewRecordProcessor(renderer *TemplateRenderer, templates Templates, log *zap.Logger) *RecordProcessor {
	return &RecordProcessor{
		renderer:  renderer,
		templates: templates,
		log:       log,
	}
}

// Process 產生單筆紀錄的郵件參數
// 缺少寄件人回傳 models.ErrMissingFrom (整批中止)；樣板錯誤回傳 models.ErrTemplate (略過本筆)
func (p *RecordProcessor) Process(cfg *models.NotifyConfig, record models.Record) (*models.EmailParams, error) {
	from := cfg.SendGrid.From
	if from == "" {
		p.log.Error("Can not send email - from address not defined in config/sendgrid/from parameter")
		return nil, models.ErrMissingFrom
	}

	p.log.Info("Sending email",
		zap.String("send_to", record.SendTo),
		zap.String("pathway_title", record.PathwayTitle),
		zap.String("wiki_url", record.WikiURL),
	)

	params := &models.EmailParams{
		From: from,
		To:   record.SendTo,
		CC:   from,
	}
	if cfg.DryRun {
		params.To = from
	}

	subject, err := p.renderer.RenderSubject(p.templates.Subject, record)
	if err != nil {
		p.log.Error("Failed to render subject",
			zap.String("send_to", record.SendTo),
			zap.String("pathway_title", record.PathwayTitle),
			zap.Error(err),
		)
		return nil, err
	}
	params.Subject = subject

	body, err := p.renderer.RenderBody(p.templates.Body, record)
	if err != nil {
		p.log.Error("Failed to render body",
			zap.String("send_to", record.SendTo),
			zap.String("pathway_title", record.PathwayTitle),
			zap.Error(err),
		)
		return nil, err
	}
	params.Body = body

	return params, nil
}
