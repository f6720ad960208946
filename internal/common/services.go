package common

import (
	"context"
	"fmt"

	"rolefit/internal/analysis"
	"rolefit/internal/config"
	"rolefit/internal/docreader"
	"rolefit/internal/errors"
	"rolefit/internal/history"
	"rolefit/internal/identity"
	"rolefit/internal/matcher"
	"rolefit/internal/taxonomy"
)

// Services bundles the collaborators built from configuration that both the
// CLI and the HTTP server use.
type Services struct {
	Taxonomy *taxonomy.Holder
	Engine   *analysis.Engine
	Reader   *docreader.Reader

	// History is nil when history is disabled.
	History history.Sink
	// Identity is nil when accounts are disabled.
	Identity identity.Provider

	watcher *taxonomy.Watcher
	logger  *errors.Logger
}

// NewServices builds every collaborator from cfg. The taxonomy watcher is
// created but not started; see StartWatching.
func NewServices(cfg *config.Config, logger *errors.Logger, onReload taxonomy.ReloadFunc) (*Services, error) {
	if logger == nil {
		logger = errors.Nop()
	}

	tax, err := loadTaxonomy(cfg.Taxonomy)
	if err != nil {
		return nil, err
	}
	holder := taxonomy.NewHolder(tax)

	strategy, err := matcher.ParseStrategy(cfg.Taxonomy.MatchStrategy)
	if err != nil {
		return nil, err
	}

	s := &Services{
		Taxonomy: holder,
		Engine:   analysis.NewEngine(holder, analysis.WithStrategy(strategy)),
		Reader:   docreader.New(cfg.App.MaxFileSize, logger),
		logger:   logger,
	}

	if cfg.History.Enabled {
		sink, err := newHistorySink(cfg.History, logger)
		if err != nil {
			return nil, err
		}
		s.History = sink
	}

	if cfg.Identity.Enabled {
		s.Identity = identity.NewMemoryProvider(cfg.Identity.BcryptCost)
	}

	if cfg.Taxonomy.Watch {
		s.watcher = taxonomy.NewWatcher(cfg.Taxonomy.File, holder, cfg.Taxonomy.DebounceDelay, onReload, logger)
	}

	logger.Debug("Services initialized",
		"branches", len(tax.ListBranches()),
		"match_strategy", strategy.Name(),
		"history_enabled", s.History != nil,
		"identity_enabled", s.Identity != nil)

	return s, nil
}

func loadTaxonomy(cfg config.TaxonomyConfig) (*taxonomy.Taxonomy, error) {
	if cfg.File == "" {
		return taxonomy.Default(), nil
	}
	return taxonomy.LoadFile(cfg.File)
}

func newHistorySink(cfg config.HistoryConfig, logger *errors.Logger) (history.Sink, error) {
	var sink history.Sink
	switch cfg.Backend {
	case "", "memory":
		sink = history.NewMemorySink(cfg.MaxEntries)
	case "redis":
		client := history.NewRedisClient(cfg.Redis)
		sink = history.NewRedisSink(client, cfg.Redis.KeyPrefix, cfg.Redis.TTL, cfg.MaxEntries)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("unknown history backend: %s", cfg.Backend), nil)
	}
	return history.NewBreakerSink(sink, cfg.CircuitBreaker, logger), nil
}

// StartWatching starts the taxonomy watcher when one is configured.
func (s *Services) StartWatching() error {
	if s.watcher == nil {
		return nil
	}
	return s.watcher.Start()
}

// Watching reports whether taxonomy hot reload is configured.
func (s *Services) Watching() bool {
	return s.watcher != nil
}

// Ping checks the history backend. It succeeds when history is disabled.
func (s *Services) Ping(ctx context.Context) error {
	if s.History == nil {
		return nil
	}
	return s.History.Ping(ctx)
}

// Close stops the watcher and releases the history backend.
func (s *Services) Close() error {
	var firstErr error
	if s.watcher != nil {
		if err := s.watcher.Stop(); err != nil {
			firstErr = err
		}
	}
	if s.History != nil {
		if err := s.History.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
