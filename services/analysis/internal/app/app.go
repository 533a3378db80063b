package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	rcron "github.com/robfig/cron/v3"

	"melify/internal/util"
	"melify/pkg/ai"
	"melify/pkg/analysis"
	"melify/pkg/lock"
	"melify/pkg/queue"
	"melify/pkg/quote"
	"melify/pkg/recommend"
	"melify/pkg/store"
	"melify/pkg/workflow"
	"melify/services/analysis/internal/config"
)

// Config holds runtime configuration.
type Config struct {
	DatabaseURL string
	// Store is used as is when set; otherwise StoreType picks postgres or memory.
	Store     store.Store
	StoreType string
	// Redis is shared by the queue, the journal lock and the rate limiter.
	Redis         *redis.Client
	RedisAddr     string
	RedisPassword string
	// Generator overrides the provider built from the Generation* fields.
	Generator          ai.TextGenerator
	GenerationProvider string
	GenerationAPIKey   string
	GenerationModel    string
	GenerationBaseURL  string
	GenerationTimeout  time.Duration
	Strategy           string
	QueueName          string
	QueueGroup         string
	QueueConcurrency   int
	QueueMaxRetries    int
	QueueRetryDelay    time.Duration
	LockTTL            time.Duration
	SweepSchedule      string
	SweepGrace         time.Duration
	SweepBatchSize     int
	// DisableWorkers skips queue consumers and the sweep scheduler.
	DisableWorkers bool
	// Standalone runs without Redis: no queue, no journal lock and no
	// workers. Enqueue and GetJob return ErrQueueDisabled.
	Standalone bool
	Logger         *slog.Logger
}

// App runs journal analyses synchronously or through the job queue.
type App struct {
	store        store.Store
	redis        *redis.Client
	orchestrator *workflow.Orchestrator
	queue        *queue.RedisJobQueue
	locker       *lock.JournalLocker
	sched        *rcron.Cron
	logger       *slog.Logger
	sweepGrace   time.Duration
	sweepBatch   int
	now          func() time.Time
	stop         context.CancelFunc
}

var newRedisClient = redis.NewClient

// New constructs the analysis service with persistence. Connections New
// opened itself are closed again when a later step fails.
func New(cfg Config) (_ *App, err error) {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	var owned []func() error
	defer func() {
		if err == nil {
			return
		}
		for _, closeFn := range owned {
			_ = closeFn()
		}
	}()

	dataStore, err := openStore(cfg)
	if err != nil {
		return nil, err
	}
	if c, ok := dataStore.(interface{ Close() error }); ok && cfg.Store == nil {
		owned = append(owned, c.Close)
	}
	gen := cfg.Generator
	if gen == nil {
		gen, err = ai.NewGenerator(ai.ProviderConfig{
			Provider: cfg.GenerationProvider,
			APIKey:   cfg.GenerationAPIKey,
			BaseURL:  cfg.GenerationBaseURL,
			Model:    cfg.GenerationModel,
			Timeout:  cfg.GenerationTimeout,
		})
		if err != nil {
			return nil, fmt.Errorf("init text generator: %w", err)
		}
	}
	quoteSel, recSel, err := selectors(cfg.Strategy, gen, dataStore, logger)
	if err != nil {
		return nil, err
	}

	a := &App{
		store: dataStore,
		orchestrator: workflow.New(workflow.Options{
			Journals:        dataStore,
			Quotes:          dataStore,
			Recommendations: dataStore,
			Analyzer:        analysis.NewAnalyzer(gen, logger),
			QuoteSelector:   quoteSel,
			RecSelector:     recSel,
			Logger:          logger,
		}),
		logger:     logger,
		sweepGrace: cfg.SweepGrace,
		sweepBatch: cfg.SweepBatchSize,
		now:        func() time.Time { return time.Now().UTC() },
	}
	if a.sweepGrace <= 0 {
		a.sweepGrace = 10 * time.Minute
	}
	if a.sweepBatch <= 0 {
		a.sweepBatch = 100
	}
	if cfg.Standalone {
		return a, nil
	}

	client := cfg.Redis
	if client == nil {
		addr := strings.TrimSpace(cfg.RedisAddr)
		if addr == "" {
			return nil, fmt.Errorf("redis addr required")
		}
		client = newRedisClient(&redis.Options{Addr: addr, Password: cfg.RedisPassword})
		owned = append(owned, client.Close)
	}
	a.redis = client
	a.queue, err = queue.NewRedisJobQueue(queue.RedisQueueConfig{
		Client:     client,
		Stream:     defaultQueueName(cfg.QueueName),
		Group:      defaultQueueGroup(cfg.QueueGroup),
		Consumer:   util.NewID(),
		MaxRetries: cfg.QueueMaxRetries,
		RetryDelay: cfg.QueueRetryDelay,
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}
	a.locker, err = lock.NewJournalLocker(client, "", cfg.LockTTL)
	if err != nil {
		return nil, err
	}
	if !cfg.DisableWorkers {
		if err = a.startSweeper(cfg.SweepSchedule); err != nil {
			return nil, err
		}
		ctx, cancel := context.WithCancel(context.Background())
		a.stop = cancel
		a.startWorkers(ctx, cfg.QueueConcurrency)
	}
	return a, nil
}

func openStore(cfg Config) (store.Store, error) {
	if cfg.Store != nil {
		return cfg.Store, nil
	}
	switch strings.ToLower(strings.TrimSpace(cfg.StoreType)) {
	case config.StoreTypeMemory:
		return store.NewMemoryStore(), nil
	case "", config.StoreTypePostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("database URL required")
		}
		s, err := store.NewGormStore(cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("init postgres store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store type: %s", cfg.StoreType)
	}
}

// selectors picks one quote and one recommendation strategy for the deployment.
func selectors(strategy string, gen ai.TextGenerator, s store.Store, logger *slog.Logger) (quote.Selector, recommend.Selector, error) {
	switch strings.ToLower(strings.TrimSpace(strategy)) {
	case "", config.StrategyGenerative:
		return quote.NewGenerativeSelector(gen, logger), recommend.NewGenerativeSelector(gen, logger), nil
	case config.StrategyCorpus:
		return quote.NewCorpusSelector(nil, nil), recommend.NewCatalogSelector(s, logger), nil
	default:
		return nil, nil, fmt.Errorf("unknown strategy: %s", strategy)
	}
}

// Store exposes the persistence layer to the CLI.
func (a *App) Store() store.Store {
	return a.store
}

// Redis returns the shared client so callers can build limiters on it. It is
// nil for standalone apps.
func (a *App) Redis() *redis.Client {
	return a.redis
}

// Analyze runs the workflow for one journal while holding its lock.
func (a *App) Analyze(ctx context.Context, journalID, userID string) (*workflow.Result, error) {
	journalID = strings.TrimSpace(journalID)
	userID = strings.TrimSpace(userID)
	if journalID == "" || userID == "" {
		return nil, fmt.Errorf("journalId and userId required")
	}
	if a.locker != nil {
		lease, err := a.locker.Acquire(ctx, journalID)
		if errors.Is(err, lock.ErrHeld) {
			return nil, ErrAnalysisInProgress
		}
		if err != nil {
			return nil, err
		}
		defer func() {
			// The lease must be released even when ctx was cancelled mid-run.
			releaseCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
			defer cancel()
			if err := lease.Release(releaseCtx); err != nil {
				a.logger.Warn("release journal lock failed", "journal_id", journalID, "error", err)
			}
		}()
	}

	journal, ok, err := a.store.GetJournal(ctx, journalID, userID)
	if err != nil {
		return nil, fmt.Errorf("load journal: %w", err)
	}
	if !ok {
		return nil, workflow.ErrNotFound
	}
	if journal.IsAIAnalyzed {
		return nil, ErrAlreadyAnalyzed
	}
	return a.orchestrator.Run(ctx, journalID, userID)
}

// Enqueue registers a new analysis job for background processing.
func (a *App) Enqueue(ctx context.Context, journalID, userID string) (queue.Job, error) {
	if a.queue == nil {
		return queue.Job{}, ErrQueueDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return a.queue.Enqueue(ctx, journalID, userID)
}

// GetJob returns a job by ID.
func (a *App) GetJob(ctx context.Context, id string) (queue.Job, bool, error) {
	if a.queue == nil {
		return queue.Job{}, false, ErrQueueDisabled
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return a.queue.GetJob(ctx, id)
}

// Ping checks Redis (unless standalone) and, for postgres deployments, the database.
func (a *App) Ping(ctx context.Context) error {
	if a.queue != nil {
		if err := a.queue.Ping(ctx); err != nil {
			return fmt.Errorf("redis: %w", err)
		}
	}
	if p, ok := a.store.(interface{ Ping(context.Context) error }); ok {
		if err := p.Ping(ctx); err != nil {
			return fmt.Errorf("database: %w", err)
		}
	}
	return nil
}

// Close stops workers and the scheduler and releases connections.
func (a *App) Close() error {
	if a.sched != nil {
		<-a.sched.Stop().Done()
	}
	if a.stop != nil {
		a.stop()
	}
	var errs []error
	if c, ok := a.store.(interface{ Close() error }); ok {
		errs = append(errs, c.Close())
	}
	if a.redis != nil {
		errs = append(errs, a.redis.Close())
	}
	return errors.Join(errs...)
}

func (a *App) process(ctx context.Context, job queue.Job) error {
	_, err := a.Analyze(ctx, job.JournalID, job.UserID)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, workflow.ErrNotFound), errors.Is(err, ErrAlreadyAnalyzed):
		return queue.Permanent(err)
	default:
		return err
	}
}

func (a *App) startWorkers(ctx context.Context, concurrency int) {
	a.queue.Start(ctx, concurrency, a.process)
}

func defaultQueueName(name string) string {
	if strings.TrimSpace(name) == "" {
		return "melify:analysis"
	}
	return name
}

func defaultQueueGroup(name string) string {
	if strings.TrimSpace(name) == "" {
		return "analysis"
	}
	return name
}
