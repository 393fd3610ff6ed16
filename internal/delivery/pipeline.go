// internal/delivery/pipeline.go
package delivery

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"lead-qualifier/internal/common/config"
	apperrors "lead-qualifier/internal/common/errors"
	httpclient "lead-qualifier/internal/common/http"
	"lead-qualifier/internal/common/logger"
	"lead-qualifier/internal/common/metrics"
	"lead-qualifier/internal/models"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	MsgNotProvisioned = "Webhook não está ativo. Você precisa ativar o workflow no n8n primeiro."
	MsgTryAgain       = "Não foi possível enviar agora. Tente novamente."
	MsgDelivered      = "Lead enviado com sucesso"

	maxErrorBody = 500
)

// Sender posts one encoded event. *httpclient.Client satisfies it.
type Sender interface {
	Post(ctx context.Context, url string, body []byte, headers map[string]string) (*httpclient.Response, error)
}

// Recorder receives one entry per attempt.
type Recorder interface {
	Append(ctx context.Context, attempt models.DeliveryAttempt) error
}

type Alerter interface {
	DeliveryExhausted(ctx context.Context, alert models.DeliveryAlert) error
}

type Options struct {
	AttemptTimeout  time.Duration
	MaxAttempts     int
	BackoffStep     time.Duration
	MaxPayloadBytes int
	Secret          string
	Source          string
	UserAgent       string
}

func OptionsFromConfig(cfg config.DeliveryConfig) Options {
	return Options{
		AttemptTimeout:  config.GetDuration(cfg.AttemptTimeout),
		MaxAttempts:     cfg.MaxAttempts,
		BackoffStep:     config.GetDuration(cfg.BackoffStep),
		MaxPayloadBytes: cfg.MaxPayloadBytes,
		Secret:          cfg.Secret,
		Source:          cfg.Source,
		UserAgent:       cfg.UserAgent,
	}
}

// Pipeline builds outbound events and delivers them to the sink with a
// bounded, sequential retry budget.
type Pipeline struct {
	opts     Options
	target   *Target
	sender   Sender
	recorder Recorder
	alerter  Alerter
	tracer   trace.Tracer
	logger   logger.Logger

	now    func() time.Time
	sleep  func(ctx context.Context, d time.Duration)
	newKey func() string
}

// NewPipeline wires a pipeline. alerter may be nil.
func NewPipeline(opts Options, target *Target, sender Sender, recorder Recorder, alerter Alerter, tracer trace.Tracer, log logger.Logger) *Pipeline {
	if opts.MaxAttempts < 1 {
		opts.MaxAttempts = 1
	}
	return &Pipeline{
		opts:     opts,
		target:   target,
		sender:   sender,
		recorder: recorder,
		alerter:  alerter,
		tracer:   tracer,
		logger:   logger.ForComponent(log, "delivery"),
		now:      time.Now,
		sleep:    sleepContext,
		newKey:   func() string { return uuid.New().String() },
	}
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// Build creates the outbound event under a fresh idempotency key. The event
// timestamp is fixed here and reused by every attempt.
func (p *Pipeline) Build(profile models.Profile, result models.EligibilityResult, meta models.SubmissionMeta) models.OutboundEvent {
	return buildEvent(p.opts.Source, p.newKey(), p.now(), profile, result, meta)
}

// Submit is Build followed by Deliver.
func (p *Pipeline) Submit(ctx context.Context, profile models.Profile, result models.EligibilityResult, meta models.SubmissionMeta) (models.DeliveryOutcome, error) {
	return p.Deliver(ctx, p.Build(profile, result, meta))
}

type attemptResult struct {
	statusCode int
	errText    string
}

func (a attemptResult) ok() bool {
	return a.errText == "" && a.statusCode >= 200 && a.statusCode < 300
}

// Deliver sends a built event. Caller cancellation does not interrupt it; each
// attempt is bounded by the attempt timeout only.
func (p *Pipeline) Deliver(ctx context.Context, event models.OutboundEvent) (models.DeliveryOutcome, error) {
	ctx = context.WithoutCancel(ctx)
	key := event.IdempotencyKey
	log := p.logger.WithFields(map[string]interface{}{"idempotencyKey": key})

	ctx, span := p.tracer.Start(ctx, "lead.delivery", trace.WithAttributes(
		attribute.String("idempotency_key", key),
	))
	defer span.End()

	out := models.DeliveryOutcome{
		IdempotencyKey: key,
		Timestamp:      event.Timestamp,
		State:          models.DeliveryBuilt,
		Transitions:    []models.DeliveryState{models.DeliveryBuilt},
	}
	move := func(s models.DeliveryState) {
		out.State = s
		out.Transitions = append(out.Transitions, s)
	}

	sinkURL := p.target.URL()
	body, err := json.Marshal(event)
	if err == nil {
		if _, uerr := ValidateSinkURL(sinkURL); uerr != nil {
			err = uerr
		} else if len(body) > p.opts.MaxPayloadBytes && p.opts.MaxPayloadBytes > 0 {
			err = apperrors.NewPayloadTooLargeError(len(body), p.opts.MaxPayloadBytes)
		}
	}
	if err != nil {
		// Nothing was sent; one failed entry documents the refusal.
		p.record(ctx, log, event, 1, attemptResult{errText: err.Error()}, 0)
		move(models.DeliveryFailed)
		move(models.DeliveryExhausted)
		out.Message = MsgTryAgain
		out.Error = err.Error()
		span.SetStatus(codes.Error, err.Error())
		log.Error("lead not sent", map[string]interface{}{"error": err.Error()})
		return out, err
	}

	var last attemptResult
	for attempt := 1; attempt <= p.opts.MaxAttempts; attempt++ {
		move(models.DeliverySending)
		out.Attempts = attempt

		last = p.attempt(ctx, log, event, body, sinkURL, attempt)
		out.StatusCode = last.statusCode
		if last.ok() {
			move(models.DeliveryDelivered)
			out.Delivered = true
			out.Message = MsgDelivered
			span.SetAttributes(attribute.Int("delivery.attempts", attempt))
			log.Info("lead delivered", map[string]interface{}{
				"attempts":   attempt,
				"statusCode": last.statusCode,
			})
			return out, nil
		}

		move(models.DeliveryFailed)
		if attempt < p.opts.MaxAttempts {
			move(models.DeliveryRetrying)
			p.sleep(ctx, time.Duration(attempt)*p.opts.BackoffStep)
		}
	}

	move(models.DeliveryExhausted)
	out.Error = last.errText
	details := fmt.Sprintf("attempts: %d, error: %s", out.Attempts, last.errText)

	var derr *apperrors.StandardError
	if last.statusCode == 404 {
		out.Message = MsgNotProvisioned
		derr = apperrors.NewDeliveryNotProvisionedError(MsgNotProvisioned, details)
	} else {
		out.Message = MsgTryAgain
		derr = apperrors.NewDeliveryExhaustedError(MsgTryAgain, details)
	}
	if last.statusCode != 0 {
		derr.WithMetadata("statusCode", last.statusCode)
	}
	derr.WithMetadata("idempotencyKey", key)

	span.SetStatus(codes.Error, last.errText)
	log.Error("lead delivery exhausted", map[string]interface{}{
		"attempts":   out.Attempts,
		"statusCode": last.statusCode,
		"error":      last.errText,
	})
	p.alert(ctx, log, event, out)
	return out, derr
}

func (p *Pipeline) attempt(ctx context.Context, log logger.Logger, event models.OutboundEvent, body []byte, sinkURL string, n int) attemptResult {
	ctx, span := p.tracer.Start(ctx, "lead.delivery.attempt", trace.WithAttributes(
		attribute.Int("delivery.attempt", n),
	))
	defer span.End()

	attemptCtx, cancel := context.WithTimeout(ctx, p.opts.AttemptTimeout)
	defer cancel()

	start := p.now()
	resp, err := p.sender.Post(attemptCtx, sinkURL, body, p.opts.headers(event.IdempotencyKey, start, body))
	elapsed := p.now().Sub(start)
	metrics.DeliveryAttemptDuration.Observe(elapsed.Seconds())

	var res attemptResult
	switch {
	case err != nil:
		res.errText = err.Error()
		if resp != nil {
			res.statusCode = resp.StatusCode
		}
	case resp.StatusCode == 404:
		res.statusCode = resp.StatusCode
		res.errText = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, MsgNotProvisioned)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		res.statusCode = resp.StatusCode
		res.errText = fmt.Sprintf("HTTP %d: %s", resp.StatusCode, cut(string(resp.Body), maxErrorBody))
	default:
		res.statusCode = resp.StatusCode
	}

	result := "success"
	if !res.ok() {
		result = "failure"
		span.RecordError(apperrors.NewDeliveryTransientError(res.errText))
		span.SetStatus(codes.Error, res.errText)
		log.Warn("lead delivery attempt failed", map[string]interface{}{
			"attempt":    n,
			"statusCode": res.statusCode,
			"error":      res.errText,
		})
	}
	if res.statusCode != 0 {
		span.SetAttributes(attribute.Int("http.status_code", res.statusCode))
	}
	metrics.DeliveryAttempts.WithLabelValues(result).Inc()

	p.record(ctx, log, event, n, res, elapsed)
	return res
}

func (p *Pipeline) record(ctx context.Context, log logger.Logger, event models.OutboundEvent, n int, res attemptResult, elapsed time.Duration) {
	entry := models.DeliveryAttempt{
		IdempotencyKey: event.IdempotencyKey,
		Attempt:        n,
		Timestamp:      p.now().UTC(),
		Success:        res.ok(),
		LeadName:       event.Lead.Nome,
		LeadEmail:      event.Lead.Email,
		DurationMS:     elapsed.Milliseconds(),
	}
	if res.statusCode != 0 {
		code := res.statusCode
		entry.StatusCode = &code
	}
	if res.errText != "" {
		text := res.errText
		entry.Error = &text
	}
	if err := p.recorder.Append(ctx, entry); err != nil {
		log.Error("delivery attempt not logged", map[string]interface{}{
			"attempt": n,
			"error":   err.Error(),
		})
	}
}

func (p *Pipeline) alert(ctx context.Context, log logger.Logger, event models.OutboundEvent, out models.DeliveryOutcome) {
	if p.alerter == nil {
		return
	}
	err := p.alerter.DeliveryExhausted(ctx, models.DeliveryAlert{
		IdempotencyKey: out.IdempotencyKey,
		LeadName:       event.Lead.Nome,
		LeadEmail:      event.Lead.Email,
		Attempts:       out.Attempts,
		StatusCode:     out.StatusCode,
		Error:          out.Error,
		OccurredAt:     p.now().UTC(),
	})
	if err != nil {
		log.Warn("delivery alert failed", map[string]interface{}{"error": err.Error()})
	}
}

// cut shortens s to n bytes on a rune boundary and marks the cut.
func cut(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return strings.TrimSpace(s[:n]) + "..."
}
