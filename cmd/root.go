package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/lucienvoid/ai-hr-agent/internal/ai"
)

const (
	app       = "hr-agent"
	envPrefix = "HR_AGENT"
)

type Config struct {
	LLM       LLMConfig       `mapstructure:"llm"`
	Retrieval RetrievalConfig `mapstructure:"retrieval"`
	Agent     AgentConfig     `mapstructure:"agent"`
	Server    ServerConfig    `mapstructure:"server"`
}

type LLMConfig struct {
	Provider    string        `mapstructure:"provider" validate:"oneof=openai gemini anthropic"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature" validate:"gte=0,lte=2"`
	Timeout     time.Duration `mapstructure:"timeout" validate:"gt=0"`
	APIKey      string        `mapstructure:"api-key" json:"-"`
	APIKeyFile  string        `mapstructure:"api-key-file"`
	BaseURL     string        `mapstructure:"base-url"`
	MaxTokens   int           `mapstructure:"max-tokens" validate:"gte=0"`
	// RateLimit is requests per second; zero disables pacing.
	RateLimit float64 `mapstructure:"rate-limit" validate:"gte=0"`
	Burst     int     `mapstructure:"burst" validate:"gte=0"`
}

// RetrievalConfig points at the pgvector table. An empty DSN runs the agent
// without internal context.
type RetrievalConfig struct {
	DSN               string        `mapstructure:"dsn" json:"-"`
	Table             string        `mapstructure:"table" validate:"required"`
	EmbeddingProvider string        `mapstructure:"embedding-provider" validate:"oneof=openai gemini"`
	EmbeddingModel    string        `mapstructure:"embedding-model" validate:"required"`
	APIKey            string        `mapstructure:"api-key" json:"-"`
	APIKeyFile        string        `mapstructure:"api-key-file"`
	Timeout           time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxConns          int32         `mapstructure:"max-conns" validate:"gte=0"`
}

type AgentConfig struct {
	PromptsFile  string `mapstructure:"prompts-file"`
	MaxLogLength int    `mapstructure:"max-log-length" validate:"gte=0"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr" validate:"required"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout" validate:"gt=0"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hr-agent screens resumes, runs interviews and answers HR questions with an LLM",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hr-agent.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))

	setDefaults(viper.GetViper())
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", ai.ProviderOpenAI)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.temperature", 0.2)
	v.SetDefault("llm.timeout", 60*time.Second)
	v.SetDefault("llm.api-key", "")
	v.SetDefault("llm.api-key-file", "")
	v.SetDefault("llm.base-url", "")
	v.SetDefault("llm.max-tokens", 0)
	v.SetDefault("llm.rate-limit", 0)
	v.SetDefault("llm.burst", 1)

	v.SetDefault("retrieval.dsn", "")
	v.SetDefault("retrieval.table", "hr_chunks")
	v.SetDefault("retrieval.embedding-provider", ai.ProviderOpenAI)
	v.SetDefault("retrieval.embedding-model", "text-embedding-3-small")
	v.SetDefault("retrieval.api-key", "")
	v.SetDefault("retrieval.api-key-file", "")
	v.SetDefault("retrieval.timeout", 10*time.Second)
	v.SetDefault("retrieval.max-conns", 4)

	v.SetDefault("agent.prompts-file", "")
	v.SetDefault("agent.max-log-length", 200)

	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.read-timeout", 15*time.Second)
	v.SetDefault("server.write-timeout", 180*time.Second)
	v.SetDefault("server.shutdown-timeout", 10*time.Second)
}

func initConfig() {
	// A missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env: %v", err)
	}

	if err := readConfig(viper.GetViper(), cfgFile); err != nil {
		log.Fatal(err)
	}
}

// readConfig wires the config file and environment into v. Without an explicit
// path the config file is optional.
func readConfig(v *viper.Viper, path string) error {
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName(app)
		v.SetConfigType("yaml")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

func getConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	config.LLM.Provider = strings.ToLower(strings.TrimSpace(config.LLM.Provider))
	config.Retrieval.EmbeddingProvider = strings.ToLower(strings.TrimSpace(config.Retrieval.EmbeddingProvider))

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return &config, nil
}
