package model

import (
	"math"
	"time"
)

const (
	EventTypeMessageIn   = "message.in"
	EventTypeWebhookTest = "webhook.test"
)

// WebhookLog is one forward attempt. StatusCode is 0 when no response arrived.
type WebhookLog struct {
	ID             string
	DeviceID       string
	UserID         string
	WebhookURL     string
	EventType      string
	StatusCode     int
	ResponseTimeMs int64
	Success        bool
	ErrorMessage   *string
	CreatedAt      time.Time
}

// WebhookLogFilter scopes a log query to one user and optional device/event.
type WebhookLogFilter struct {
	UserID    string
	DeviceID  string
	EventType string
	Offset    int
	Limit     int
}

// WebhookStats aggregates over a filtered log set.
type WebhookStats struct {
	TotalCalls        int64   `json:"total_calls"`
	SuccessfulCalls   int64   `json:"successful_calls"`
	FailedCalls       int64   `json:"failed_calls"`
	SuccessRate       float64 `json:"success_rate"`
	AvgResponseTimeMs int64   `json:"avg_response_time_ms"`
}

// NewWebhookStats derives rates from raw counters. Rate has one decimal place.
func NewWebhookStats(total, successful, sumResponseMs int64) WebhookStats {
	st := WebhookStats{
		TotalCalls:      total,
		SuccessfulCalls: successful,
		FailedCalls:     total - successful,
	}
	if total > 0 {
		st.SuccessRate = math.Round(float64(successful)/float64(total)*1000) / 10
		st.AvgResponseTimeMs = int64(math.Round(float64(sumResponseMs) / float64(total)))
	}
	return st
}
