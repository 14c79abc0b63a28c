package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/landover-agents/server/internal/agent/embedder"
	"github.com/landover-agents/server/internal/agent/graph"
	"github.com/landover-agents/server/internal/agent/graph/nodes"
	"github.com/landover-agents/server/internal/agent/model"
	"github.com/landover-agents/server/internal/agent/repo"
	"github.com/landover-agents/server/internal/core"
	"github.com/landover-agents/server/internal/storage"
	logx "github.com/landover-agents/server/pkg/logger"
	pkgredis "github.com/landover-agents/server/pkg/redis"
)

// AppConfig defines all configurable parameters for the budget answering
// service, sourced from environment variables (loaded from .env for local runs).
type AppConfig struct {
	Environment string `envconfig:"ENVIRONMENT" default:"development"`

	// Infrastructure
	Redis   pkgredis.Config
	Storage model.StorageConfig

	// LLM provider
	APIKey  string `envconfig:"GEMINI_API_KEY" required:"true"`
	BaseURL string `envconfig:"GEMINI_BASE_URL"`

	// Pipeline configs
	Resolver  model.ResolverModelConfig
	Composer  model.ComposerModelConfig
	Embedding model.EmbeddingModelConfig
	Pipeline  model.PipelineConfig
	Cache     model.CacheConfig
}

func main() {
	ctx := context.Background()
	// Load .env file
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	// Load structured config from env
	var envCfg AppConfig
	if err := envconfig.Process("", &envCfg); err != nil {
		log.Fatalf("Failed to process environment config: %v", err)
	}
	logx.Init(logx.LoggerOpts{Environment: core.ParseEnvironment(envCfg.Environment)})

	repository, err := storage.NewRepository(envCfg.Storage.Path)
	if err != nil {
		log.Fatalf("Failed to open budget store: %v", err)
	}
	defer repository.Close()

	if err := seedDemoData(ctx, repository); err != nil {
		log.Fatalf("Failed to seed demo data: %v", err)
	}
	logStoreContents(ctx, repository)

	// The answer cache is optional; skip it when no Redis URL is configured.
	var cache model.AnswerCache
	if envCfg.Cache.Enabled && envCfg.Redis.URL != "" {
		ttl, err := time.ParseDuration(envCfg.Cache.TTL)
		if err != nil {
			log.Fatalf("Invalid ANSWER_CACHE_TTL '%s': %v", envCfg.Cache.TTL, err)
		}
		rdb, err := envCfg.Redis.New()
		if err != nil {
			log.Fatalf("Failed to initialise Redis client: %v", err)
		}
		defer rdb.Close()
		cache = repo.NewRedisAnswerCache(rdb, ttl)
		logx.Info().Msg("Connected to Redis successfully")
	}

	cms, err := nodes.NewChatModels(ctx, nodes.ChatModelConfig{
		APIKey:         envCfg.APIKey,
		BaseURL:        envCfg.BaseURL,
		ResolverConfig: &envCfg.Resolver,
		ComposerConfig: &envCfg.Composer,
	})
	if err != nil {
		log.Fatalf("Failed to create chat models: %v", err)
	}

	runner, err := graph.BuildAnswerGraph(ctx, graph.Config{
		ResolverModel:     cms.Resolver,
		ComposerModel:     cms.Composer,
		ResolverModelName: cms.ResolverModelName,
		ComposerModelName: cms.ComposerModelName,
		Embedder:          embedder.NewGemini(cms.Client, envCfg.Embedding.Model, envCfg.Embedding.Dimensions),
		Aggregates:        repository,
		Facts:             repository,
		Excerpts:          repository,
		Cache:             cache,
		Pipeline:          envCfg.Pipeline,
	})
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}

	questions := []string{
		"What is the total budget for FY25?",
		"What is the difference between FY24 and FY25?",
		"What percentage of FY25 came from taxes?",
		"Which department received the most funding in FY25?",
		"What is the percent change from FY24 to FY25 for police?",
		"What if police lose 10% of their budget?",
	}

	for i, q := range questions {
		fmt.Printf("\nQ%d: %s\n", i+1, q)

		env, err := runner.Ask(ctx, model.QueryInput{Question: q})
		if err != nil {
			log.Fatalf("Failed to answer question %d: %v", i+1, err)
		}
		fmt.Printf("A%d: %s\n", i+1, env.Answer)
	}
}

// logStoreContents reports which departments and fiscal years are loaded.
func logStoreContents(ctx context.Context, repository *storage.Repository) {
	departments, err := repository.Departments(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("Failed to list departments")
		return
	}
	years, err := repository.Years(ctx)
	if err != nil {
		logx.Warn().Err(err).Msg("Failed to list fiscal years")
		return
	}
	labels := make([]string, len(years))
	for i, y := range years {
		labels[i] = y.Label()
	}
	logx.Info().
		Strs("departments", departments).
		Strs("fiscal_years", labels).
		Msg("Budget store ready")
}

// seedDemoData loads the Landover demo budget once into an empty store.
func seedDemoData(ctx context.Context, repository *storage.Repository) error {
	n, err := repository.FactCount(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		if err := repository.InsertFacts(ctx, demoFacts()); err != nil {
			return err
		}
		logx.Info().Msg("Seeded demo budget facts")
	}

	n, err = repository.ExcerptCount(ctx)
	if err != nil {
		return err
	}
	if n == 0 {
		if err := repository.InsertExcerpts(ctx, demoExcerpts()); err != nil {
			return err
		}
		logx.Info().Msg("Seeded demo budget excerpts")
	}
	return nil
}

func demoFacts() []model.BudgetFact {
	return []model.BudgetFact{
		// FY24
		{FiscalYear: 2024, Department: "TAXES", LineItem: "REAL PROPERTY TAX", Amount: 9_800_000},
		{FiscalYear: 2024, Department: "TAXES", LineItem: "PERSONAL PROPERTY TAX", Amount: 1_450_000},
		{FiscalYear: 2024, Department: "POLICE DEPARTMENT", LineItem: "SALARIES", Amount: 4_200_000},
		{FiscalYear: 2024, Department: "POLICE DEPARTMENT", LineItem: "OVERTIME", Amount: 480_000},
		{FiscalYear: 2024, Department: "PUBLIC WORKS", LineItem: "ROAD MAINTENANCE", Amount: 2_100_000},
		{FiscalYear: 2024, Department: "PUBLIC WORKS", LineItem: "SNOW REMOVAL", Amount: 350_000},
		{FiscalYear: 2024, Department: "ADMINISTRATION", LineItem: "SALARIES", Amount: 1_650_000},
		{FiscalYear: 2024, Department: "GRANTS", LineItem: "STATE AID", Amount: 900_000},
		// FY25
		{FiscalYear: 2025, Department: "TAXES", LineItem: "REAL PROPERTY TAX", Amount: 10_400_000},
		{FiscalYear: 2025, Department: "TAXES", LineItem: "PERSONAL PROPERTY TAX", Amount: 1_520_000},
		{FiscalYear: 2025, Department: "POLICE DEPARTMENT", LineItem: "SALARIES", Amount: 4_550_000},
		{FiscalYear: 2025, Department: "POLICE DEPARTMENT", LineItem: "OVERTIME", Amount: 510_000},
		{FiscalYear: 2025, Department: "PUBLIC WORKS", LineItem: "ROAD MAINTENANCE", Amount: 2_250_000},
		{FiscalYear: 2025, Department: "PUBLIC WORKS", LineItem: "SNOW REMOVAL", Amount: 300_000},
		{FiscalYear: 2025, Department: "ADMINISTRATION", LineItem: "SALARIES", Amount: 1_700_000},
		{FiscalYear: 2025, Department: "GRANTS", LineItem: "STATE AID", Amount: 1_050_000},
		// FY26 (partial)
		{FiscalYear: 2026, Department: "TAXES", LineItem: "REAL PROPERTY TAX", Amount: 5_300_000},
		{FiscalYear: 2026, Department: "POLICE DEPARTMENT", LineItem: "SALARIES", Amount: 2_280_000},
		{FiscalYear: 2026, Department: "PUBLIC WORKS", LineItem: "ROAD MAINTENANCE", Amount: 1_050_000},
		{FiscalYear: 2026, Department: "ADMINISTRATION", LineItem: "SALARIES", Amount: 860_000},
	}
}

func demoExcerpts() []model.Excerpt {
	return []model.Excerpt{
		{FiscalYear: 2025, Department: "POLICE DEPARTMENT",
			Text: "The FY25 police budget adds two school resource officers and funds body camera replacements across all patrol units."},
		{FiscalYear: 2025, Department: "PUBLIC WORKS",
			Text: "Public works prioritizes the Route 202 resurfacing project in FY25, deferring sidewalk expansion to future years."},
		{FiscalYear: 2026, Department: "ADMINISTRATION",
			Text: "FY26 figures reflect the first two quarters only; full-year administration totals will be published after adoption."},
		{FiscalYear: 2024, Department: "TAXES",
			Text: "Real property tax collections in FY24 exceeded projections on higher assessed values, offsetting a flat personal property base."},
	}
}
