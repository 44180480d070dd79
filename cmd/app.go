package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/viper"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/lucienvoid/ai-hr-agent/internal/agent"
	"github.com/lucienvoid/ai-hr-agent/internal/ai"
	"github.com/lucienvoid/ai-hr-agent/internal/ai/anthropic"
	"github.com/lucienvoid/ai-hr-agent/internal/ai/gemini"
	"github.com/lucienvoid/ai-hr-agent/internal/ai/openai"
	"github.com/lucienvoid/ai-hr-agent/internal/extract"
	"github.com/lucienvoid/ai-hr-agent/internal/logger"
	"github.com/lucienvoid/ai-hr-agent/internal/metrics"
	"github.com/lucienvoid/ai-hr-agent/internal/retrieval"
	"github.com/lucienvoid/ai-hr-agent/internal/secrets"
)

const tracerName = "github.com/lucienvoid/ai-hr-agent"

var providerKeyEnv = map[string]string{
	ai.ProviderOpenAI:    "OPENAI_API_KEY",
	ai.ProviderGemini:    "GEMINI_API_KEY",
	ai.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

// application is the fully wired agent shared by the run and serve commands.
type application struct {
	config  *Config
	router  *agent.Router
	metrics *metrics.Collector
	logger  *zap.Logger
	index   *retrieval.PGVectorIndex
}

func newLogger() *zap.Logger {
	l, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		log.Fatalf("creating a logger: %s", err)
	}
	return l
}

func newApplication(ctx context.Context, config *Config, log *zap.Logger) (*application, error) {
	collector := metrics.New()

	generator, err := newGenerator(ctx, config.LLM, config.Agent.MaxLogLength, collector, log)
	if err != nil {
		return nil, fmt.Errorf("building generator: %w", err)
	}

	prompts, err := agent.LoadPrompts(config.Agent.PromptsFile)
	if err != nil {
		return nil, err
	}

	a := &application{config: config, metrics: collector, logger: log}

	var index retrieval.Index
	if config.Retrieval.DSN == "" {
		log.Warn("retrieval is disabled", zap.String("hint", "set retrieval.dsn or HR_AGENT_RETRIEVAL_DSN to ground answers in internal documents"))
	} else if pg, err := newIndex(ctx, config, log); err != nil {
		// Requests fall back to answers without internal context.
		log.Warn("similarity index unavailable, retrieval is disabled", zap.Error(err))
	} else {
		a.index = pg
		index = pg
	}

	retriever := retrieval.New(index, collector, log.Named("retrieval"), config.Retrieval.Timeout)
	extractor := extract.New(generator, collector, log.Named("extract"), config.Agent.MaxLogLength)
	hr := agent.New(retriever, generator, extractor, prompts, log.Named("agent"))

	a.router = agent.NewRouter(hr, collector, otel.Tracer(tracerName), log.Named("router"))
	return a, nil
}

func (a *application) Close() {
	if a.index != nil {
		a.index.Close()
	}
	_ = a.logger.Sync()
}

func newGenerator(ctx context.Context, cfg LLMConfig, maxLogLength int, observer ai.LatencyObserver, log *zap.Logger) (ai.Generator, error) {
	apiKey, err := secrets.Load(secrets.Source{
		Name:  cfg.Provider + " api key",
		Value: cfg.APIKey,
		File:  cfg.APIKeyFile,
		Env:   providerKeyEnv[cfg.Provider],
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set llm.api-key-file, llm.api-key or %s)", err, providerKeyEnv[cfg.Provider])
	}

	var base ai.Generator
	switch cfg.Provider {
	case ai.ProviderOpenAI:
		base, err = openai.NewGenerator(openai.Config{
			APIKey:      apiKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			BaseURL:     cfg.BaseURL,
		})
	case ai.ProviderGemini:
		base, err = gemini.NewGenerator(ctx, gemini.Config{
			APIKey:      apiKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
		})
	case ai.ProviderAnthropic:
		base, err = anthropic.NewGenerator(anthropic.Config{
			APIKey:      apiKey,
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
			BaseURL:     cfg.BaseURL,
		})
	default:
		return nil, fmt.Errorf("unsupported llm provider: %s", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	var limiter ai.Middleware
	if cfg.RateLimit > 0 {
		limiter = ai.WithRateLimit(rate.Limit(cfg.RateLimit), max(cfg.Burst, 1))
	}

	log.Info("generator ready", logger.CommonFields(cfg.Provider, base.Model())...)

	return ai.Chain(base,
		ai.WithLogging(log.Named("llm"), cfg.Provider, maxLogLength),
		ai.WithTracing(otel.Tracer(tracerName), cfg.Provider),
		ai.WithMetrics(observer, cfg.Provider),
		limiter,
		ai.WithTimeout(cfg.Timeout),
	), nil
}

func newIndex(ctx context.Context, config *Config, log *zap.Logger) (*retrieval.PGVectorIndex, error) {
	rc := config.Retrieval

	src := secrets.Source{
		Name:  rc.EmbeddingProvider + " embeddings api key",
		Value: rc.APIKey,
		File:  rc.APIKeyFile,
		Env:   providerKeyEnv[rc.EmbeddingProvider],
	}
	// Share the generation credential when both use the same provider.
	if src.Value == "" && src.File == "" && rc.EmbeddingProvider == config.LLM.Provider {
		src.Value = config.LLM.APIKey
		src.File = config.LLM.APIKeyFile
	}

	apiKey, err := secrets.Load(src)
	if err != nil {
		return nil, err
	}

	var embedder retrieval.Embedder
	switch rc.EmbeddingProvider {
	case ai.ProviderGemini:
		embedder, err = retrieval.NewGeminiEmbedder(ctx, apiKey, rc.EmbeddingModel)
	default:
		baseURL := ""
		if config.LLM.Provider == ai.ProviderOpenAI {
			baseURL = config.LLM.BaseURL
		}
		embedder, err = retrieval.NewOpenAIEmbedder(apiKey, rc.EmbeddingModel, baseURL)
	}
	if err != nil {
		return nil, err
	}

	index, err := retrieval.ConnectPGVector(ctx, retrieval.PGConfig{
		DSN:      rc.DSN,
		Table:    rc.Table,
		MaxConns: rc.MaxConns,
	}, embedder)
	if err != nil {
		return nil, err
	}

	log.Info("similarity index connected",
		zap.String("table", rc.Table),
		zap.String("embedding_provider", rc.EmbeddingProvider),
		zap.String("embedding_model", rc.EmbeddingModel),
	)
	return index, nil
}
