// internal/models/outcome.go
// 處理結果模型

package models

import "time"

// OutcomeKind 單筆紀錄處理結果類型
type OutcomeKind string

const (
	OutcomeSent          OutcomeKind = "sent"
	OutcomeSendFailed    OutcomeKind = "send_failed"
	OutcomeRecordSkipped OutcomeKind = "skipped"
	OutcomeBatchFatal    OutcomeKind = "batch_fatal"
)

// SendResult 發送結果
type SendResult struct {
	Attempted  bool
	StatusCode int
	Body       string
	Err        error
}

// OK 是否發送成功
func (r SendResult) OK() bool {
	return r.Attempted && r.Err == nil
}

// Outcome 單筆紀錄的處理結果
type Outcome struct {
	Index      int         `json:"index"`
	Kind       OutcomeKind `json:"kind"`
	SendTo     string      `json:"send_to,omitempty"`
	StatusCode int         `json:"status_code,omitempty"`
	Reason     string      `json:"reason,omitempty"`
}

// Rejection 事件驗證失敗的紀錄
type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

// BatchReport 單次呼叫的處理摘要
type BatchReport struct {
	BatchID   string      `json:"batch_id"`
	StartedAt time.Time   `json:"started_at"`
	Total     int         `json:"total"`
	Rejected  []Rejection `json:"rejected,omitempty"`
	Outcomes  []Outcome   `json:"outcomes,omitempty"`
	Aborted   bool        `json:"aborted"`
}

// Count 統計指定類型的結果數量
func (r *BatchReport) Count(kind OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == kind {
			n++
		}
	}
	return n
}

// OutcomeStatusCache KeyDB 快取格式
type OutcomeStatusCache struct {
	BatchID     string `json:"batch_id"`
	Index       int    `json:"index"`
	SendTo      string `json:"send_to,omitempty"`
	Status      string `json:"status"`
	StatusCode  int    `json:"status_code,omitempty"`
	LastUpdated string `json:"last_updated"`
	Reason      string `json:"reason,omitempty"`
}
