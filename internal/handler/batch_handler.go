// internal/handler/batch_handler.go
// 批次處理入口 - 驗證事件格式並逐筆發送通知

package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pathway-notify/internal/models"
	"pathway-notify/internal/params"
	"pathway-notify/internal/services"
)

// BatchHandler 批次處理器
type BatchHandler struct {
	resolver params.Resolver
	renderer *services.TemplateRenderer
	sender   services.MailSender
	status   services.StatusRecorder
	validate *validator.Validate
	log      *zap.Logger

	subjectTemplate string
	bodyTemplate    string
}

// Option 批次處理器選項
type Option func(*BatchHandler)

// WithStatusRecorder 設定發送結果記錄 (KeyDB)
func WithStatusRecorder(status services.StatusRecorder) Option {
	return func(h *BatchHandler) {
		h.status = status
	}
}

// WithTemplates 覆寫預設主旨與內文樣板
func WithTemplates(subject, body string) Option {
	return func(h *BatchHandler) {
		h.subjectTemplate = subject
		h.bodyTemplate = body
	}
}

// NewBatchHandler 建立批次處理器
func NewBatchHandler(resolver params.Resolver, sender services.MailSender, log *zap.Logger, opts ...Option) *BatchHandler {
	h := &BatchHandler{
		resolver: resolver,
		renderer: services.NewTemplateRenderer(),
		sender:   sender,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		log:      log,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Handle 處理一批事件紀錄
// 僅在設定來源失敗時回傳 error；其餘錯誤皆記錄於 log 與 BatchReport
func (h *BatchHandler) Handle(ctx context.Context, event json.RawMessage) (*models.BatchReport, error) {
	report := &models.BatchReport{
		BatchID:   uuid.NewString(),
		StartedAt: time.Now().UTC(),
	}
	log := h.log.With(zap.String("batch_id", report.BatchID))

	cfg, err := h.resolver.Resolve(ctx)
	if err != nil {
		return report, fmt.Errorf("failed to resolve config: %w", err)
	}
	log.Debug("Config resolved",
		zap.Bool("dry_run", cfg.DryRun),
		zap.String("from", cfg.SendGrid.From),
		zap.Bool("api_key_set", cfg.SendGrid.APIKey != ""),
	)
	log.Debug("Event", zap.ByteString("event", event))

	records, rejected, err := h.parseEvent(event)
	if err != nil {
		log.Error("Event is not a list - incorrect format for processing",
			zap.ByteString("event", event),
			zap.Error(err),
		)
		report.Aborted = true
		return report, nil
	}
	report.Total = len(records)
	report.Rejected = rejected

	templates := services.BuildTemplates(cfg.DryRun, h.subjectTemplate, h.bodyTemplate)
	processor := services.NewRecordProcessor(h.renderer, templates, log)

	skip := make(map[int]string, len(rejected))
	for _, r := range rejected {
		skip[r.Index] = r.Reason
	}

	for i, record := range records {
		if record == nil {
			log.Warn("Skipping malformed record", zap.Int("index", i), zap.String("reason", skip[i]))
			h.record(ctx, log, report, models.Outcome{Index: i, Kind: models.OutcomeRecordSkipped, Reason: skip[i]})
			continue
		}

		outcome := h.processRecord(ctx, cfg, processor, i, *record)
		h.record(ctx, log, report, outcome)
		if outcome.Kind == models.OutcomeBatchFatal {
			report.Aborted = true
			break
		}
	}

	log.Info("Batch finished",
		zap.String("provider", h.sender.Name()),
		zap.Int("total", report.Total),
		zap.Int("sent", report.Count(models.OutcomeSent)),
		zap.Int("failed", report.Count(models.OutcomeSendFailed)),
		zap.Int("skipped", report.Count(models.OutcomeRecordSkipped)),
		zap.Bool("aborted", report.Aborted),
	)
	return report, nil
}

// processRecord 處理單筆紀錄並回傳結果
func (h *BatchHandler) processRecord(ctx context.Context, cfg *models.NotifyConfig, processor *services.RecordProcessor, index int, record models.Record) models.Outcome {
	outcome := models.Outcome{Index: index, SendTo: record.SendTo}

	emailParams, err := processor.Process(cfg, record)
	if err != nil {
		outcome.Reason = err.Error()
		if errors.Is(err, models.ErrMissingFrom) {
			outcome.Kind = models.OutcomeBatchFatal
		} else {
			outcome.Kind = models.OutcomeRecordSkipped
		}
		return outcome
	}

	result := h.sender.Send(ctx, cfg, emailParams)
	outcome.StatusCode = result.StatusCode
	switch {
	case result.OK():
		outcome.Kind = models.OutcomeSent
	case !result.Attempted:
		outcome.Kind = models.OutcomeRecordSkipped
		outcome.Reason = result.Err.Error()
	default:
		outcome.Kind = models.OutcomeSendFailed
		outcome.Reason = result.Err.Error()
	}
	return outcome
}

// record 將結果加入報告並寫入狀態快取
func (h *BatchHandler) record(ctx context.Context, log *zap.Logger, report *models.BatchReport, outcome models.Outcome) {
	report.Outcomes = append(report.Outcomes, outcome)
	if h.status == nil {
		return
	}
	if err := h.status.SetStatus(ctx, report.BatchID, outcome); err != nil {
		log.Warn("Failed to store outcome status", zap.Int("index", outcome.Index), zap.Error(err))
	}
}

// parseEvent 驗證事件格式
// 事件必須為非空陣列且第一筆為物件，否則整批拒絕；
// 其餘每筆逐一驗證，不合格者以 nil 佔位並列入 rejected
func (h *BatchHandler) parseEvent(event json.RawMessage) ([]*models.Record, []models.Rejection, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(event, &items); err != nil {
		return nil, nil, fmt.Errorf("%w: %v", models.ErrInvalidEvent, err)
	}
	if len(items) == 0 {
		return nil, nil, fmt.Errorf("%w: empty list", models.ErrInvalidEvent)
	}
	if !isObject(items[0]) {
		return nil, nil, fmt.Errorf("%w: first element is not an object", models.ErrInvalidEvent)
	}

	records := make([]*models.Record, len(items))
	var rejected []models.Rejection
	for i, item := range items {
		record, err := h.parseRecord(item)
		if err != nil {
			rejected = append(rejected, models.Rejection{Index: i, Reason: err.Error()})
			continue
		}
		records[i] = record
	}
	return records, rejected, nil
}

func (h *BatchHandler) parseRecord(item json.RawMessage) (*models.Record, error) {
	if !isObject(item) {
		return nil, errors.New("record is not an object")
	}
	var record models.Record
	if err := json.Unmarshal(item, &record); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	if err := h.validate.Struct(record); err != nil {
		return nil, fmt.Errorf("invalid record: %w", err)
	}
	return &record, nil
}

func isObject(item json.RawMessage) bool {
	trimmed := bytes.TrimSpace(item)
	return len(trimmed) > 0 && trimmed[0] == '{'
}
