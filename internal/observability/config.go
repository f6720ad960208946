package observability

import (
	"rolefit/internal/config"
)

// GetObservabilityConfig creates observability config from provided config
func GetObservabilityConfig(cfg *config.Config, version string) ObservabilityConfig {
	if cfg == nil {
		return ObservabilityConfig{
			ServiceName:    "rolefit",
			ServiceVersion: version,
			Enabled:        true,
			SampleRate:     1.0,
			TracingEnabled: true,
			Prometheus:     PrometheusConfig{Enabled: true, Endpoint: "/metrics"},
			CustomMetrics: config.CustomMetricsConfig{
				Analysis:       config.AnalysisMetricsConfig{Enabled: true, TrackScores: true, TrackTextSizes: true},
				Infrastructure: config.InfrastructureMetricsConfig{Enabled: true, TrackRateLimits: true, TrackHistory: true},
			},
		}
	}

	obsConfig := cfg.Observability

	serviceVersion := obsConfig.ServiceVersion
	if serviceVersion == "" {
		serviceVersion = version
	}

	sampleRate := obsConfig.SampleRate
	if obsConfig.Tracing.SampleRate > 0 {
		sampleRate = obsConfig.Tracing.SampleRate
	}

	return ObservabilityConfig{
		ServiceName:     obsConfig.ServiceName,
		ServiceVersion:  serviceVersion,
		ServiceInstance: obsConfig.ServiceInstance,
		Enabled:         obsConfig.Enabled,
		ConsoleOutput:   obsConfig.ConsoleOutput || obsConfig.Console.Enabled,
		PrettyPrint:     obsConfig.Console.PrettyPrint,
		SampleRate:      sampleRate,
		TracingEnabled:  obsConfig.Tracing.Enabled,
		MetricsInterval: obsConfig.Metrics.CollectionInterval,
		Prometheus: PrometheusConfig{
			Enabled:  obsConfig.Metrics.Enabled && obsConfig.Prometheus.Enabled,
			Endpoint: obsConfig.Prometheus.Endpoint,
		},
		OTLP:          obsConfig.OTLP,
		CustomMetrics: obsConfig.CustomMetrics,
	}
}
