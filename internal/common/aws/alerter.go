// internal/common/aws/alerter.go
package aws

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"lead-qualifier/internal/common/config"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/models"
)

// Alerter notifies operators when a lead could not be delivered. Each channel
// is optional; a failing channel does not stop the others.
type Alerter struct {
	sns      *SNSClient
	topicARN string
	ses      *SESClient
	from     string
	to       []string
	logger   logger.Logger
}

func NewAlerter(snsClient *SNSClient, topicARN string, sesClient *SESClient, from string, to []string, log logger.Logger) *Alerter {
	return &Alerter{
		sns:      snsClient,
		topicARN: topicARN,
		ses:      sesClient,
		from:     from,
		to:       to,
		logger:   logger.ForComponent(log, "alerter"),
	}
}

// NewAlerterFromConfig builds the AWS clients for every enabled channel.
func NewAlerterFromConfig(ctx context.Context, cfg config.AlertsConfig, log logger.Logger) (*Alerter, error) {
	var (
		snsClient *SNSClient
		sesClient *SESClient
		err       error
	)
	if cfg.SNS.Enabled {
		if snsClient, err = NewSNSClient(ctx, cfg.Region); err != nil {
			return nil, fmt.Errorf("sns client: %w", err)
		}
	}
	if cfg.SES.Enabled {
		if sesClient, err = NewSESClient(ctx, cfg.Region); err != nil {
			return nil, fmt.Errorf("ses client: %w", err)
		}
	}
	return NewAlerter(snsClient, cfg.SNS.TopicARN, sesClient, cfg.SES.FromEmail, cfg.SES.To, log), nil
}

func (a *Alerter) DeliveryExhausted(ctx context.Context, alert models.DeliveryAlert) error {
	subject := fmt.Sprintf("Lead não entregue: %s", alert.LeadName)
	var errs []string

	if a.sns != nil {
		body, _ := json.Marshal(alert)
		if err := a.sns.PublishMessage(ctx, a.topicARN, subject, string(body)); err != nil {
			errs = append(errs, "sns: "+err.Error())
		}
	}
	if a.ses != nil && len(a.to) > 0 {
		if err := a.ses.SendText(ctx, a.from, a.to, subject, renderAlert(alert)); err != nil {
			errs = append(errs, "ses: "+err.Error())
		}
	}

	if len(errs) > 0 {
		a.logger.Warn("ops alert not fully sent", map[string]interface{}{
			"idempotencyKey": alert.IdempotencyKey,
			"errors":         errs,
		})
		return fmt.Errorf("alert failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

func renderAlert(alert models.DeliveryAlert) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Lead: %s <%s>\n", alert.LeadName, alert.LeadEmail)
	fmt.Fprintf(&b, "Idempotency key: %s\n", alert.IdempotencyKey)
	fmt.Fprintf(&b, "Tentativas: %d\n", alert.Attempts)
	if alert.StatusCode != 0 {
		fmt.Fprintf(&b, "Status HTTP: %d\n", alert.StatusCode)
	}
	fmt.Fprintf(&b, "Erro: %s\n", alert.Error)
	fmt.Fprintf(&b, "Quando: %s\n", alert.OccurredAt.Format("2006-01-02T15:04:05Z07:00"))
	return b.String()
}
