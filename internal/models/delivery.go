// internal/models/delivery.go
package models

import "time"

type SubmissionMeta struct {
	UserAgent   string `json:"user_agent,omitempty" validate:"max=512"`
	UTMSource   string `json:"utm_source,omitempty" validate:"max=200"`
	UTMMedium   string `json:"utm_medium,omitempty" validate:"max=200"`
	UTMCampaign string `json:"utm_campaign,omitempty" validate:"max=200"`
	PageURL     string `json:"page_url,omitempty" validate:"omitempty,url,max=2048"`
}

// OutboundEvent is the wire document posted to the lead sink. Timestamp is
// fixed when the event is built and never refreshed on retry.
type OutboundEvent struct {
	Source               string         `json:"source"`
	IdempotencyKey       string         `json:"idempotency_key"`
	Timestamp            string         `json:"timestamp"`
	Lead                 LeadPayload    `json:"lead"`
	Eligibility          Eligibility    `json:"eligibility"`
	Analise              Analise        `json:"analise"`
	FundosAlcancaveis    []FundVerdict  `json:"fundos_alcancaveis"`
	FundosNaoAlcancaveis []FundVerdict  `json:"fundos_nao_alcancaveis"`
	ScoreGamificado      int            `json:"score_gamificado"`
	Meta                 SubmissionMeta `json:"meta"`
}

type DeliveryAttempt struct {
	IdempotencyKey string    `json:"idempotency_key" db:"idempotency_key"`
	Attempt        int       `json:"attempt" db:"attempt"`
	Timestamp      time.Time `json:"timestamp" db:"created_at"`
	Success        bool      `json:"success" db:"success"`
	LeadName       string    `json:"lead_name" db:"lead_name"`
	LeadEmail      string    `json:"lead_email" db:"lead_email"`
	StatusCode     *int      `json:"status_code" db:"status_code"`
	Error          *string   `json:"error" db:"error"`
	DurationMS     int64     `json:"duration_ms" db:"duration_ms"`
}

type DeliveryState string

const (
	DeliveryBuilt     DeliveryState = "built"
	DeliverySending   DeliveryState = "sending"
	DeliveryFailed    DeliveryState = "failed"
	DeliveryRetrying  DeliveryState = "retrying"
	DeliveryDelivered DeliveryState = "delivered"
	DeliveryExhausted DeliveryState = "exhausted"
)

type DeliveryOutcome struct {
	Delivered      bool            `json:"success"`
	IdempotencyKey string          `json:"idempotency_key"`
	Timestamp      string          `json:"timestamp"`
	StatusCode     int             `json:"webhook_status,omitempty"`
	Attempts       int             `json:"attempts"`
	State          DeliveryState   `json:"state"`
	Transitions    []DeliveryState `json:"transitions,omitempty"`
	Message        string          `json:"message"`
	Error          string          `json:"error,omitempty"`
}

// DeliveryAlert is raised to operators when a submission exhausts its
// delivery budget.
type DeliveryAlert struct {
	IdempotencyKey string    `json:"idempotency_key"`
	LeadName       string    `json:"lead_name"`
	LeadEmail      string    `json:"lead_email"`
	Attempts       int       `json:"attempts"`
	StatusCode     int       `json:"status_code,omitempty"`
	Error          string    `json:"error"`
	OccurredAt     time.Time `json:"occurred_at"`
}
