// internal/models/notify.go
// 通知資料模型 - 設定、事件紀錄與郵件參數

package models

import (
	"encoding/json"
	"errors"
)

var (
	// ErrMissingFrom 設定中缺少寄件人位址，整批中止
	ErrMissingFrom = errors.New("from address not defined in config/sendgrid/from parameter")
	// ErrMissingAPIKey 設定中缺少 SendGrid API Key，僅略過本次發送
	ErrMissingAPIKey = errors.New("no sendgrid api key in parameters")
	// ErrInvalidEvent 事件格式錯誤
	ErrInvalidEvent = errors.New("event is not a list - incorrect format for processing")
	// ErrTemplate 樣板解析或渲染失敗
	ErrTemplate = errors.New("template render failed")
)

// SendGridConfig SendGrid 相關參數
type SendGridConfig struct {
	APIKey string `json:"api_key,omitempty"`
	From   string `json:"from,omitempty"`
}

// NotifyConfig 通知設定 (由參數來源解析)
type NotifyConfig struct {
	SendGrid SendGridConfig `json:"sendgrid"`
	DryRun   bool           `json:"dry_run,omitempty"`
}

// UnmarshalJSON 解析設定
// dry_run 為存在旗標：只要鍵存在即視為啟用，與其值無關
func (c *NotifyConfig) UnmarshalJSON(data []byte) error {
	var raw struct {
		SendGrid SendGridConfig  `json:"sendgrid"`
		DryRun   json.RawMessage `json:"dry_run"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	c.SendGrid = raw.SendGrid
	c.DryRun = raw.DryRun != nil
	return nil
}

// Record 內容移除事件紀錄
type Record struct {
	SendTo       string `json:"send_to" validate:"required,email"`
	PathwayTitle string `json:"pathway_title" validate:"required"`
	WikiURL      string `json:"wiki_url" validate:"required,url"`
}

// TemplateData 回傳樣板使用的資料 (snake_case 鍵)
func (r Record) TemplateData() map[string]string {
	return map[string]string{
		"send_to":       r.SendTo,
		"pathway_title": r.PathwayTitle,
		"wiki_url":      r.WikiURL,
	}
}

// EmailParams 單筆紀錄的外寄郵件參數
type EmailParams struct {
	From    string `json:"from"`
	To      string `json:"to"`
	CC      string `json:"cc,omitempty"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}
