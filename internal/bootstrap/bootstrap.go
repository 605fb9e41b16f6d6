package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/kirillkom/internship-allocator/internal/config"
	"github.com/kirillkom/internship-allocator/internal/core/domain"
	"github.com/kirillkom/internship-allocator/internal/core/engine"
	"github.com/kirillkom/internship-allocator/internal/core/ports"
	"github.com/kirillkom/internship-allocator/internal/core/usecase"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/dataset"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/queue/nats"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/repository/memory"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/internship-allocator/internal/infrastructure/resilience"
)

// QueueMode says whether a process needs the NATS connection.
type QueueMode int

const (
	QueueDisabled QueueMode = iota
	// QueueOptional connects when possible; the API keeps serving
	// synchronous matches without it.
	QueueOptional
	QueueRequired
)

type App struct {
	Config config.Config
	Policy domain.PolicyConfig

	Store     ports.AllocationStore
	Queue     *nats.Queue
	Executor  *resilience.Executor
	Source    ports.OpportunitySource
	MatchUC   *usecase.MatchUseCase
	RequestUC *usecase.RequestMatchUseCase

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, queueMode QueueMode) (*App, error) {
	policy, err := config.LoadPolicy(cfg.PolicyFile)
	if err != nil {
		return nil, fmt.Errorf("load policy: %w", err)
	}
	policy = cfg.ApplyOverrides(policy)

	executor := resilience.NewExecutor(cfg.Resilience)

	store, db, err := openStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	var queue *nats.Queue
	if queueMode != QueueDisabled {
		queue, err = nats.NewWithOptions(cfg.NATSURL, cfg.MatchSubject, nats.Options{
			QueueGroup:         cfg.MatchQueueName,
			ResilienceExecutor: executor,
		})
		if err != nil {
			if queueMode == QueueRequired {
				closeDB(db)
				return nil, fmt.Errorf("init message queue: %w", err)
			}
			slog.Warn("message_queue_unavailable", "url", cfg.NATSURL, "error", err)
			queue = nil
		}
	}

	app := &App{
		Config:   cfg,
		Policy:   policy,
		Store:    store,
		Queue:    queue,
		Executor: executor,
		Source:   dataset.NewOpportunityFile(cfg.CorpusPath),
		MatchUC:  usecase.NewMatchUseCase(store),
		closeFn: func() {
			if queue != nil {
				queue.Close()
			}
			closeDB(db)
		},
	}
	if queue != nil {
		app.RequestUC = usecase.NewRequestMatchUseCase(queue)
	}
	return app, nil
}

func openStore(ctx context.Context, cfg config.Config) (ports.AllocationStore, *sql.DB, error) {
	switch cfg.StoreBackend {
	case config.StoreBackendMemory:
		slog.Warn("using in-memory allocation store; allocations are lost on restart")
		return memory.NewAllocationStore(), nil, nil
	case config.StoreBackendPostgres, "":
		db, err := postgres.OpenDB(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		repo := postgres.NewAllocationRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, db, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}

func closeDB(db *sql.DB) {
	if db != nil {
		_ = db.Close()
	}
}

// BuildEngine loads the corpus and freezes it with the policy into an engine.
func BuildEngine(ctx context.Context, source ports.OpportunitySource, policy domain.PolicyConfig) (*engine.Engine, error) {
	opportunities, err := source.LoadOpportunities(ctx)
	if err != nil {
		return nil, fmt.Errorf("load opportunities: %w", err)
	}
	p, err := engine.NewPolicy(policy)
	if err != nil {
		return nil, fmt.Errorf("build policy: %w", err)
	}
	geo := engine.NewGeoClassifier(policy.AspirationalDistricts, policy.RuralDistricts)
	e, err := engine.New(opportunities, p, geo, engine.Options{
		Threshold:  policy.Threshold,
		MaxResults: policy.MaxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("build engine: %w", err)
	}
	return e, nil
}

// LoadEngine builds the engine and installs it into the match use case.
func (a *App) LoadEngine(ctx context.Context) (*engine.Engine, error) {
	e, err := BuildEngine(ctx, a.Source, a.Policy)
	if err != nil {
		return nil, err
	}
	a.MatchUC.Install(e)
	slog.Info("engine_loaded",
		"opportunities", e.OpportunityCount(),
		"vocabulary", e.Vocabulary().Len(),
		"threshold", e.Threshold(),
	)
	return e, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
