package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"rolefit/internal/analysis"
	"rolefit/internal/config"
	"rolefit/internal/errors"
)

// Metrics holds the business and infrastructure instruments. Every method
// is safe to call on a nil *Metrics.
type Metrics struct {
	cfg config.CustomMetricsConfig

	AnalysesTotal     metric.Int64Counter
	AnalysisScore     metric.Int64Histogram
	AnalysisErrors    metric.Int64Counter
	ResumeTextSize    metric.Int64Histogram
	HistoryOperations metric.Int64Counter
	RateLimitHits     metric.Int64Counter
	TaxonomyReloads   metric.Int64Counter
}

func newMetrics(meter metric.Meter, cfg config.CustomMetricsConfig) (*Metrics, error) {
	m := &Metrics{cfg: cfg}
	var err error

	if m.AnalysesTotal, err = meter.Int64Counter("rolefit_analyses_total",
		metric.WithDescription("Completed analyses by branch, role and fit level")); err != nil {
		return nil, fmt.Errorf("failed to create analyses metric: %w", err)
	}
	if m.AnalysisScore, err = meter.Int64Histogram("rolefit_analysis_score",
		metric.WithDescription("Distribution of role-fit scores"),
		metric.WithExplicitBucketBoundaries(10, 25, 50, 75, 90, 100)); err != nil {
		return nil, fmt.Errorf("failed to create score metric: %w", err)
	}
	if m.AnalysisErrors, err = meter.Int64Counter("rolefit_analysis_errors_total",
		metric.WithDescription("Failed analyses by error code")); err != nil {
		return nil, fmt.Errorf("failed to create analysis error metric: %w", err)
	}
	if m.ResumeTextSize, err = meter.Int64Histogram("rolefit_resume_text_bytes",
		metric.WithDescription("Size of analyzed resume text"),
		metric.WithUnit("By")); err != nil {
		return nil, fmt.Errorf("failed to create text size metric: %w", err)
	}
	if m.HistoryOperations, err = meter.Int64Counter("rolefit_history_operations_total",
		metric.WithDescription("History sink operations by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create history metric: %w", err)
	}
	if m.RateLimitHits, err = meter.Int64Counter("rolefit_rate_limit_hits_total",
		metric.WithDescription("Requests rejected by the rate limiter")); err != nil {
		return nil, fmt.Errorf("failed to create rate limit metric: %w", err)
	}
	if m.TaxonomyReloads, err = meter.Int64Counter("rolefit_taxonomy_reloads_total",
		metric.WithDescription("Taxonomy hot reload attempts by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create taxonomy reload metric: %w", err)
	}

	return m, nil
}

// RecordAnalysis records a completed analysis. textBytes is the size of the
// submitted résumé text.
func (m *Metrics) RecordAnalysis(ctx context.Context, rec *analysis.Record, textBytes int) {
	if m == nil || rec == nil || !m.cfg.Analysis.Enabled {
		return
	}

	attrs := metric.WithAttributes(
		attribute.String("branch", rec.Branch),
		attribute.String("role", rec.Role),
		attribute.String("level", rec.Level.String()),
	)
	m.AnalysesTotal.Add(ctx, 1, attrs)
	if m.cfg.Analysis.TrackScores {
		m.AnalysisScore.Record(ctx, int64(rec.Match.Score), attrs)
	}
	if m.cfg.Analysis.TrackTextSizes {
		m.ResumeTextSize.Record(ctx, int64(textBytes))
	}
}

// RecordAnalysisError records a failed analysis under its error code.
func (m *Metrics) RecordAnalysisError(ctx context.Context, err error) {
	if m == nil || err == nil || !m.cfg.Analysis.Enabled {
		return
	}
	m.AnalysisErrors.Add(ctx, 1, metric.WithAttributes(attribute.String("code", ErrorCode(err))))
}

// RecordHistoryOperation records a history save or list and its outcome.
func (m *Metrics) RecordHistoryOperation(ctx context.Context, op string, err error) {
	if m == nil || !m.infrastructure(m.cfg.Infrastructure.TrackHistory) {
		return
	}
	result := "success"
	if err != nil {
		result = ErrorCode(err)
	}
	m.HistoryOperations.Add(ctx, 1, metric.WithAttributes(
		attribute.String("op", op),
		attribute.String("result", result),
	))
}

// RecordRateLimitHit records a request rejected by the rate limiter.
func (m *Metrics) RecordRateLimitHit(ctx context.Context, endpoint string) {
	if m == nil || !m.infrastructure(m.cfg.Infrastructure.TrackRateLimits) {
		return
	}
	m.RateLimitHits.Add(ctx, 1, metric.WithAttributes(attribute.String("endpoint", endpoint)))
}

// RecordTaxonomyReload records a hot reload attempt.
func (m *Metrics) RecordTaxonomyReload(ctx context.Context, err error) {
	if m == nil || !m.cfg.Infrastructure.Enabled {
		return
	}
	result := "success"
	if err != nil {
		result = "failure"
	}
	m.TaxonomyReloads.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
}

func (m *Metrics) infrastructure(track bool) bool {
	return m.cfg.Infrastructure.Enabled && track
}

// ErrorCode returns the AppError code of err, or "INTERNAL" for other errors.
func ErrorCode(err error) string {
	if appErr, ok := errors.As(err); ok && appErr.Code != "" {
		return appErr.Code
	}
	return "INTERNAL"
}
