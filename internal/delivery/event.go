// internal/delivery/event.go
package delivery

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"

	"lead-qualifier/internal/models"
)

// isoMillis matches the timestamp format the sink has always received.
const isoMillis = "2006-01-02T15:04:05.000Z"

func buildEvent(source, key string, builtAt time.Time, p models.Profile, r models.EligibilityResult, meta models.SubmissionMeta) models.OutboundEvent {
	return models.OutboundEvent{
		Source:               source,
		IdempotencyKey:       key,
		Timestamp:            builtAt.UTC().Format(isoMillis),
		Lead:                 p.Payload(),
		Eligibility:          r.Eligibility,
		Analise:              r.Analise,
		FundosAlcancaveis:    r.FundosAlcancaveis,
		FundosNaoAlcancaveis: r.FundosNaoAlcancaveis,
		ScoreGamificado:      r.Score,
		Meta:                 meta,
	}
}

// headers are rebuilt per attempt; only the timestamp header changes.
func (o Options) headers(key string, sentAt time.Time, body []byte) map[string]string {
	h := map[string]string{
		"Content-Type":          "application/json",
		"X-Request-Id":          key,
		"User-Agent":            o.UserAgent,
		"X-Investiza-Timestamp": strconv.FormatInt(sentAt.Unix(), 10),
		"X-Investiza-Source":    "form-api",
	}
	if o.Secret != "" {
		h["X-Investiza-Signature"] = Sign(o.Secret, body)
	}
	return h
}

// Sign returns the hex HMAC-SHA256 of body under secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}
