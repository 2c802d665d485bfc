package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App     App     `mapstructure:"app"`
	Agent   Agent   `mapstructure:"agent"`
	AI      AI      `mapstructure:"ai"`
	History History `mapstructure:"history"`
	Export  Export  `mapstructure:"export"`
	Server  Server  `mapstructure:"server"`
	Logging Logging `mapstructure:"logging"`
}

// App holds general application configuration
type App struct {
	Debug      bool   `mapstructure:"debug"`
	DataDir    string `mapstructure:"data_dir"`
	ConfigFile string `mapstructure:"config_file"`
}

// Agent selects and configures the agent back end used for all three roles
type Agent struct {
	Provider string       `mapstructure:"provider"` // gemini, openai, remote, sample
	Timeout  string       `mapstructure:"timeout"`
	Remote   RemoteConfig `mapstructure:"remote"`
}

// RemoteConfig holds the hosted agent platform endpoint and per-role agent ids
type RemoteConfig struct {
	URL         string `mapstructure:"url"`
	APIKey      string `mapstructure:"api_key"`
	GeneratorID string `mapstructure:"generator_id"`
	AnalyzerID  string `mapstructure:"analyzer_id"`
	RefinerID   string `mapstructure:"refiner_id"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
	OpenAI OpenAIConfig `mapstructure:"openai"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int32   `mapstructure:"max_tokens"`
	Temperature float32 `mapstructure:"temperature"`
}

// OpenAIConfig holds OpenAI configuration
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"`
}

// History holds history persistence configuration
type History struct {
	Backend    string      `mapstructure:"backend"` // file, sqlite, redis, memory
	File       string      `mapstructure:"file"`
	SQLitePath string      `mapstructure:"sqlite_path"`
	Redis      RedisConfig `mapstructure:"redis"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Export holds export configuration
type Export struct {
	Directory string `mapstructure:"directory"`
	Format    string `mapstructure:"format"` // txt, md, html
}

// Server holds HTTP server configuration
type Server struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	CORS         CORSConfig    `mapstructure:"cors"`
}

// CORSConfig holds CORS settings for the HTTP API
type CORSConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// Logging holds logging configuration
type Logging struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json, console
}

var globalConfig *Config

// Load loads the configuration from various sources
func Load(configFile string) (*Config, error) {
	if globalConfig != nil {
		return globalConfig, nil
	}

	// Load .env file if it exists
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: Error loading .env file: %v\n", err)
		}
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.AddConfigPath(".")
		viper.AddConfigPath("$HOME")
		viper.SetConfigName(".contentstudio")
		viper.SetConfigType("yaml")
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.SetEnvPrefix("CONTENTSTUDIO")
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	config := &Config{}
	if err := viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.App.ConfigFile = viper.ConfigFileUsed()

	if err := postProcessConfig(config); err != nil {
		return nil, fmt.Errorf("error post-processing config: %w", err)
	}

	if err := validateConfig(config); err != nil {
		return nil, err
	}

	globalConfig = config
	return config, nil
}

// Get returns the global configuration, loading it if necessary
func Get() *Config {
	if globalConfig == nil {
		config, err := Load("")
		if err != nil {
			panic(fmt.Sprintf("Failed to load configuration: %v", err))
		}
		return config
	}
	return globalConfig
}

// setDefaults sets default configuration values
func setDefaults() {
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.data_dir", ".contentstudio")

	viper.SetDefault("agent.provider", "gemini")
	viper.SetDefault("agent.timeout", "90s")

	viper.SetDefault("ai.gemini.model", "gemini-1.5-flash-latest")
	viper.SetDefault("ai.gemini.max_tokens", 8192)
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.openai.model", "gpt-4o-mini")

	viper.SetDefault("history.backend", "file")
	viper.SetDefault("history.file", "content_studio_history.json")
	viper.SetDefault("history.sqlite_path", "contentstudio.db")
	viper.SetDefault("history.redis.addr", "localhost:6379")
	viper.SetDefault("history.redis.db", 0)

	viper.SetDefault("export.directory", "exports")
	viper.SetDefault("export.format", "txt")

	viper.SetDefault("server.host", "127.0.0.1")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "15s")
	viper.SetDefault("server.write_timeout", "120s")
	viper.SetDefault("server.cors.enabled", false)
	viper.SetDefault("server.cors.allowed_origins", []string{"http://localhost:3000"})

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "console")
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("ai.openai.api_key", []string{
		"OPENAI_API_KEY",
	})

	bindEnvKeys("agent.remote.api_key", []string{
		"AGENT_API_KEY",
		"CONTENTSTUDIO_AGENT_API_KEY",
	})

	bindEnvKeys("agent.provider", []string{
		"AGENT_PROVIDER",
	})

	bindEnvKeys("history.redis.addr", []string{
		"REDIS_ADDR",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"CONTENTSTUDIO_DEBUG",
	})
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig resolves paths relative to the data directory and checks durations
func postProcessConfig(config *Config) error {
	if config.App.DataDir != "" {
		config.App.DataDir = expandPath(config.App.DataDir)
	}
	config.History.File = underDataDir(config.App.DataDir, config.History.File)
	config.History.SQLitePath = underDataDir(config.App.DataDir, config.History.SQLitePath)
	if config.Export.Directory != "" {
		config.Export.Directory = expandPath(config.Export.Directory)
	}

	if config.Agent.Timeout != "" {
		if _, err := time.ParseDuration(config.Agent.Timeout); err != nil {
			return fmt.Errorf("invalid duration for agent.timeout: %s", config.Agent.Timeout)
		}
	}

	return nil
}

func underDataDir(dataDir, path string) string {
	if path == "" {
		return ""
	}
	path = expandPath(path)
	if filepath.IsAbs(path) || dataDir == "" {
		return path
	}
	return filepath.Join(dataDir, path)
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// validateConfig ensures required configuration is present
func validateConfig(config *Config) error {
	var errors []string

	switch config.Agent.Provider {
	case "gemini", "openai", "remote", "sample":
	default:
		errors = append(errors, fmt.Sprintf("Unknown agent provider: %s. Supported: gemini, openai, remote, sample", config.Agent.Provider))
	}

	switch config.History.Backend {
	case "file", "sqlite", "memory":
	case "redis":
		if config.History.Redis.Addr == "" {
			errors = append(errors, "history.redis.addr is required for the redis history backend")
		}
	default:
		errors = append(errors, fmt.Sprintf("Unknown history backend: %s. Supported: file, sqlite, redis, memory", config.History.Backend))
	}

	switch config.Export.Format {
	case "txt", "md", "html":
	default:
		errors = append(errors, fmt.Sprintf("Unknown export format: %s. Supported: txt, md, html", config.Export.Format))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration errors:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// ValidateAgent checks the credentials of the configured agent provider. Load
// does not call it; commands that talk to an agent do.
func (c *Config) ValidateAgent() error {
	switch c.Agent.Provider {
	case "gemini":
		if !isValidAPIKey(c.AI.Gemini.APIKey) {
			return fmt.Errorf("Gemini API key is required. Set GEMINI_API_KEY environment variable or ai.gemini.api_key in config file.\nGet your API key from: https://makersuite.google.com/app/apikey")
		}
	case "openai":
		if !isValidAPIKey(c.AI.OpenAI.APIKey) {
			return fmt.Errorf("OpenAI API key is required. Set OPENAI_API_KEY environment variable or ai.openai.api_key in config file")
		}
	case "remote":
		if c.Agent.Remote.URL == "" {
			return fmt.Errorf("agent.remote.url is required for the remote agent provider")
		}
	}
	return nil
}

// AgentTimeout returns the per-call agent timeout, zero meaning none
func (a Agent) AgentTimeout() time.Duration {
	d, err := time.ParseDuration(a.Timeout)
	if err != nil {
		return 0
	}
	return d
}

// isValidAPIKey checks if an API key is valid (not empty and not a placeholder)
func isValidAPIKey(apiKey string) bool {
	if apiKey == "" {
		return false
	}

	placeholders := []string{
		"your-api-key", "your-gemini-key", "your-openai-key",
		"YOUR_API_KEY", "PLACEHOLDER", "TODO", "CHANGE_ME",
	}

	for _, placeholder := range placeholders {
		if apiKey == placeholder {
			return false
		}
	}

	return true
}

// Reset clears the global configuration (useful for testing)
func Reset() {
	globalConfig = nil
	viper.Reset()
}
