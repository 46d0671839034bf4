package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"visibility-backend/internal/analysis"
	"visibility-backend/internal/llm"
	"visibility-backend/internal/llm/gemini"
	"visibility-backend/internal/llm/openai"
	"visibility-backend/internal/pagefetch"
	"visibility-backend/internal/queue"
	"visibility-backend/internal/runs"
	"visibility-backend/internal/shared/config"
	"visibility-backend/internal/shared/server"
	"visibility-backend/internal/shared/storage/db"
	"visibility-backend/internal/shared/storage/object"
	localstore "visibility-backend/internal/shared/storage/object/local"
	s3store "visibility-backend/internal/shared/storage/object/s3"
)

// App holds the wired dependencies shared by the binaries.
type App struct {
	Config   config.Config
	Router   *gin.Engine
	DB       *sql.DB
	Store    object.ObjectStore
	Queue    queue.Client
	Runs     runs.Repo
	Analyzer *analysis.Analyzer
}

// Build wires storage, the model client, the analyzer and the HTTP router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}
	client, err := NewLLMClient(cfg)
	if err != nil {
		return nil, err
	}

	var runRepo runs.Repo
	if sqlDB != nil {
		runRepo = &runs.PGRepo{DB: sqlDB}
	} else {
		runRepo = runs.NewMemoryRepo()
	}

	recorder := runs.NewRecorder(runRepo, store, queueClient)
	analyzer := NewAnalyzer(cfg, client, recorder)

	app := &App{
		Config:   cfg,
		DB:       sqlDB,
		Store:    store,
		Queue:    queueClient,
		Runs:     runRepo,
		Analyzer: analyzer,
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          cfg,
		AnalysisHandler: analysis.NewHandler(analyzer),
		RunsHandler:     runs.NewHandler(runRepo, store),
	})
	return app, nil
}

// NewLLMClient returns the client for the configured provider. Dev-like
// environments without credentials get a placeholder that fails every call.
func NewLLMClient(cfg config.Config) (llm.Client, error) {
	var (
		client llm.Client
		err    error
	)
	switch cfg.LLMProvider {
	case "none":
		return llm.PlaceholderClient{}, nil
	case "gemini":
		client, err = gemini.NewClient(cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMJSONMode)
	default:
		timeout := time.Duration(cfg.OpenAITimeoutSeconds) * time.Second
		client, err = openai.NewClient(cfg.OpenAIAPIKey, cfg.LLMModel, timeout, cfg.LLMJSONMode)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: %s client unavailable, model calls will fail: %v", cfg.LLMProvider, err)
			return llm.PlaceholderClient{}, nil
		}
		return nil, fmt.Errorf("llm client: %w", err)
	}
	return client, nil
}

// NewAnalyzer builds an Analyzer for cfg. JSON mode switches to strict extraction.
func NewAnalyzer(cfg config.Config, client llm.Client, observers ...analysis.Observer) *analysis.Analyzer {
	var extractor analysis.Extractor = analysis.FenceExtractor{}
	if cfg.LLMJSONMode {
		extractor = analysis.StrictExtractor{}
	}
	return &analysis.Analyzer{
		LLM:        client,
		Extractor:  extractor,
		TrendModel: cfg.LLMTrendModel,
		JSONMode:   cfg.LLMJSONMode,
		Pages:      pagefetch.New(time.Duration(cfg.PageFetchTimeoutSeconds)*time.Second, cfg.PageFetchMaxBytes),
		Observers:  observers,
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		log.Printf("bootstrap: DATABASE_URL empty; run history kept in memory")
		return nil, nil
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		sqlDB, err = db.Shared(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.Defaults(db.ProfileLambda)))
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.Defaults(db.ProfileServer)))
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; run history kept in memory: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if isDevLike(cfg.Env) {
		return migrateOrRelease(ctx, sqlDB, !db.IsLambdaRuntime()), nil
	}
	return sqlDB, nil
}

var runMigrations = db.RunMigrations

// migrateOrRelease returns nil when migrations fail, closing the pool if
// this process owns it. The Lambda pool is shared across invocations.
func migrateOrRelease(ctx context.Context, sqlDB *sql.DB, owned bool) *sql.DB {
	if err := runMigrations(ctx, sqlDB); err != nil {
		log.Printf("bootstrap: migrations failed; run history kept in memory: %v", err)
		if owned {
			if cerr := sqlDB.Close(); cerr != nil {
				log.Printf("bootstrap: close database: %v", cerr)
			}
		}
		return nil
	}
	return sqlDB
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.RunsQueueURL) == "" {
		return queue.Noop{}, nil
	}
	return queue.NewSQSClient(ctx, cfg.AWSRegion, cfg.RunsQueueURL)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}
