package alerts

import (
	"context"
	"sync"
	"time"

	"dabmon/internal/config"
	"dabmon/internal/logger"
	"dabmon/internal/telemetry"
)

// Sink persists raised alerts and acknowledgment updates. Persistence is
// best-effort relative to the in-memory store, which stays authoritative.
type Sink interface {
	SaveAlert(ctx context.Context, a *Alert) error
	Acknowledge(ctx context.Context, id int64, by string) error
}

// Notifier receives finalized alerts for delivery. Implementations must not
// block; delivery outcome never affects the evaluation result.
type Notifier interface {
	Notify(a Alert)
}

// sinkTimeout bounds a persistence call inside an evaluation pass.
const sinkTimeout = 5 * time.Second

// Engine runs one evaluation pass per telemetry snapshot: threshold and
// trend classification, cooldown gating, store append, and notification.
// Passes are atomic with respect to the store; concurrent callers serialize.
type Engine struct {
	mu sync.Mutex

	classifier *Classifier
	trends     *TrendAnalyzer
	gate       *CooldownGate
	store      *Store

	sink     Sink
	notifier Notifier

	enabled bool
}

// Result is what one evaluation pass returns: the newly raised alerts and a
// summary over the trend window.
type Result struct {
	Raised  []Alert
	Summary Summary
}

// NewEngine builds an engine from alert configuration, failing fast on
// threshold or trend ordering defects.
func NewEngine(cfg config.AlertsConfig, maxHistory int) (*Engine, error) {
	classifier, err := NewClassifier(cfg.Thresholds)
	if err != nil {
		return nil, err
	}

	trends, err := NewTrendAnalyzer(cfg.Trends, cfg.TrendWindowHours)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		classifier: classifier,
		trends:     trends,
		gate:       NewCooldownGate(cfg.Cooldown),
		store:      NewStore(maxHistory),
		enabled:    cfg.Enabled,
	}

	logger.Info("alert engine configured",
		"threshold_tables", len(classifier.Tables()),
		"trend_window_hours", cfg.TrendWindowHours,
		"cooldown_enabled", cfg.Cooldown.Enabled,
		"max_history", maxHistory)

	return e, nil
}

// SetSink attaches a persistence sink for raised alerts.
func (e *Engine) SetSink(sink Sink) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sink = sink
}

// SetNotifier attaches the notification dispatcher.
func (e *Engine) SetNotifier(n Notifier) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notifier = n
}

// SetEnabled enables or disables evaluation.
func (e *Engine) SetEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.enabled = enabled
}

// SetCooldownEnabled toggles cooldown suppression.
func (e *Engine) SetCooldownEnabled(enabled bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gate.SetEnabled(enabled)
}

// Store exposes the engine's alert store for queries and acknowledgment.
func (e *Engine) Store() *Store {
	return e.store
}

// Acknowledge marks an alert acknowledged in the store and, when a sink is
// attached, in persisted history.
func (e *Engine) Acknowledge(ctx context.Context, id int64, user string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.store.Acknowledge(id, user); err != nil {
		return err
	}

	if e.sink != nil {
		sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
		defer cancel()
		if err := e.sink.Acknowledge(sctx, id, user); err != nil {
			logger.Warn("failed to persist acknowledgment", "id", id, "error", err.Error())
		}
	}

	logger.Info("alert acknowledged", "id", id, "user", user)
	return nil
}

// Evaluate runs one pass over the ordered reading sequence. Malformed or
// empty input yields an empty result, never an error: input defects are
// handled by skipping, and only configuration defects fail construction.
func (e *Engine) Evaluate(ctx context.Context, readings []telemetry.Reading) Result {
	e.mu.Lock()
	defer e.mu.Unlock()

	latest, ok := telemetry.Latest(readings)
	if !ok || !e.enabled {
		return Result{Summary: e.store.Summary(e.trends.window, time.Now())}
	}

	// The evaluation clock is the latest telemetry timestamp, not wall
	// clock, so replaying historical data reproduces the same alerts.
	evalTime := latest.Timestamp

	candidates := e.classifier.Check(latest)
	candidates = append(candidates, e.trends.Check(readings)...)

	var raised []Alert
	for _, candidate := range candidates {
		if !e.gate.Allow(e.store, candidate, evalTime) {
			continue
		}

		candidate.Recommendations = Recommendations(candidate.Metric, candidate.Severity)
		if candidate.Metric == telemetry.MetricEfficiency && !latest.ZVS {
			candidate.Recommendations = append(candidate.Recommendations, ZVSRecommendation)
		}

		stored := e.store.Append(candidate)
		raised = append(raised, stored)

		logger.Info("alert raised",
			"id", stored.ID,
			"metric", stored.Metric,
			"kind", stored.Kind.String(),
			"severity", stored.Severity.String(),
			"value", stored.Value)

		if e.sink != nil {
			sctx, cancel := context.WithTimeout(ctx, sinkTimeout)
			if err := e.sink.SaveAlert(sctx, &stored); err != nil {
				logger.Warn("failed to persist alert", "id", stored.ID, "error", err.Error())
			}
			cancel()
		}

		if e.notifier != nil {
			e.notifier.Notify(stored)
		}
	}

	return Result{
		Raised:  raised,
		Summary: e.store.Summary(e.trends.window, evalTime),
	}
}
