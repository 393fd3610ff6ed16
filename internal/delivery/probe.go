// internal/delivery/probe.go
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"lead-qualifier/internal/models"
)

const probeLeadName = "Unknown"

// ProbeResult reports a single test call to the current sink.
type ProbeResult struct {
	Success        bool   `json:"success"`
	IdempotencyKey string `json:"idempotency_key"`
	StatusCode     int    `json:"status_code,omitempty"`
	Response       string `json:"response,omitempty"`
	Error          string `json:"error,omitempty"`
}

// Probe posts a marked test document to the sink once, without retries, and
// logs the attempt like any other.
func (p *Pipeline) Probe(ctx context.Context) ProbeResult {
	key := p.newKey()
	now := p.now()
	res := ProbeResult{IdempotencyKey: key}

	doc := map[string]interface{}{
		"idempotency_key": key,
		"timestamp":       now.UTC().Format(isoMillis),
		"test":            true,
		"message":         "Webhook test message from Investiza Form",
	}

	entry := models.DeliveryAttempt{
		IdempotencyKey: key,
		Attempt:        1,
		LeadName:       probeLeadName,
		LeadEmail:      probeLeadName,
	}

	var sinkURL string
	body, err := json.Marshal(doc)
	if err == nil {
		sinkURL, err = ValidateSinkURL(p.target.URL())
	}
	if err == nil {
		attemptCtx, cancel := context.WithTimeout(ctx, p.opts.AttemptTimeout)
		defer cancel()

		resp, perr := p.sender.Post(attemptCtx, sinkURL, body, map[string]string{
			"Content-Type":          "application/json",
			"User-Agent":            p.opts.UserAgent,
			"X-Investiza-Test":      "true",
			"X-Investiza-Timestamp": strconv.FormatInt(now.Unix(), 10),
			"X-Investiza-Source":    "admin-panel",
		})
		switch {
		case perr != nil:
			err = perr
		default:
			res.StatusCode = resp.StatusCode
			res.Response = cut(string(resp.Body), 200)
			res.Success = resp.StatusCode < 400
			if !res.Success {
				err = fmt.Errorf("HTTP %d", resp.StatusCode)
			}
		}
	}

	if err != nil {
		res.Error = err.Error()
		text := res.Error
		entry.Error = &text
	}
	if res.StatusCode != 0 {
		code := res.StatusCode
		entry.StatusCode = &code
	}
	entry.Success = res.Success
	entry.Timestamp = p.now().UTC()
	entry.DurationMS = entry.Timestamp.Sub(now).Milliseconds()

	if rerr := p.recorder.Append(ctx, entry); rerr != nil {
		p.logger.Error("probe attempt not logged", map[string]interface{}{"error": rerr.Error()})
	}
	p.logger.Info("sink probed", map[string]interface{}{
		"idempotencyKey": key,
		"success":        res.Success,
		"statusCode":     res.StatusCode,
	})
	return res
}
