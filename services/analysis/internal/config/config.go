package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	rcron "github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

// ConfigPath is the default config file location, relative to the working directory.
const ConfigPath = "config.yaml"

const (
	StoreTypePostgres = "postgres"
	StoreTypeMemory   = "memory"

	StrategyGenerative = "generative"
	StrategyCorpus     = "corpus"
)

// ScheduleParser accepts five-field cron lines, an optional leading seconds
// field and descriptors such as "@every 5m".
var ScheduleParser = rcron.NewParser(rcron.SecondOptional | rcron.Minute | rcron.Hour | rcron.Dom | rcron.Month | rcron.Dow | rcron.Descriptor)

// FileConfig represents configuration loaded from YAML.
type FileConfig struct {
	Port                     string   `yaml:"port"`
	LogLevel                 string   `yaml:"logLevel"`
	DatabaseURL              string   `yaml:"databaseURL"`
	Store                    string   `yaml:"store"`
	RedisAddr                string   `yaml:"redisAddr"`
	RedisPassword            string   `yaml:"redisPassword"`
	InternalToken            string   `yaml:"internalToken"`
	GenerationProvider       string   `yaml:"generationProvider"`
	GenerationAPIKey         string   `yaml:"generationAPIKey"`
	GenerationModel          string   `yaml:"generationModel"`
	GenerationBaseURL        string   `yaml:"generationBaseURL"`
	GenerationTimeoutSeconds int      `yaml:"generationTimeoutSeconds"`
	Strategy                 string   `yaml:"strategy"`
	QueueName                string   `yaml:"queueName"`
	QueueGroup               string   `yaml:"queueGroup"`
	QueueConcurrency         int      `yaml:"queueConcurrency"`
	QueueMaxRetries          int      `yaml:"queueMaxRetries"`
	QueueRetryDelaySeconds   int      `yaml:"queueRetryDelaySeconds"`
	LockTTLSeconds           int      `yaml:"lockTTLSeconds"`
	RateLimitPerMinute       int      `yaml:"rateLimitPerMinute"`
	SweepSchedule            string   `yaml:"sweepSchedule"`
	SweepGraceMinutes        int      `yaml:"sweepGraceMinutes"`
	SweepBatchSize           int      `yaml:"sweepBatchSize"`
	TrustedProxies           []string `yaml:"trustedProxies"`
}

// Load reads config from path (defaults to config.yaml).
func Load(path string) (FileConfig, error) {
	return load(path, true)
}

// LoadStandalone is Load for one-off runs without Redis or the HTTP
// server, so redisAddr and internalToken may be empty.
func LoadStandalone(path string) (FileConfig, error) {
	return load(path, false)
}

func load(path string, server bool) (FileConfig, error) {
	cfg := FileConfig{}
	if path == "" {
		path = ConfigPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}
	applyEnv(&cfg)
	applyDefaults(&cfg)
	if err := validateConfig(cfg, server); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Override with environment variables
func applyEnv(cfg *FileConfig) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.DatabaseURL = v
	}
	if v := os.Getenv("ANALYSIS_STORE"); v != "" {
		cfg.Store = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.RedisPassword = v
	}
	if v := os.Getenv("MELIFY_INTERNAL_TOKEN"); v != "" {
		cfg.InternalToken = v
	}
	if v := os.Getenv("GENERATION_PROVIDER"); v != "" {
		cfg.GenerationProvider = v
	}
	if v := os.Getenv("GENERATION_API_KEY"); v != "" {
		cfg.GenerationAPIKey = v
	}
	if v := os.Getenv("GENERATION_MODEL"); v != "" {
		cfg.GenerationModel = v
	}
	if v := os.Getenv("GENERATION_BASE_URL"); v != "" {
		cfg.GenerationBaseURL = v
	}
	if v := os.Getenv("ANALYSIS_GENERATION_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.GenerationTimeoutSeconds = n
		}
	}
	if v := os.Getenv("ANALYSIS_STRATEGY"); v != "" {
		cfg.Strategy = v
	}
	if v := os.Getenv("ANALYSIS_QUEUE_NAME"); v != "" {
		cfg.QueueName = v
	}
	if v := os.Getenv("ANALYSIS_QUEUE_GROUP"); v != "" {
		cfg.QueueGroup = v
	}
	if v := os.Getenv("ANALYSIS_QUEUE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueConcurrency = n
		}
	}
	if v := os.Getenv("ANALYSIS_QUEUE_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueMaxRetries = n
		}
	}
	if v := os.Getenv("ANALYSIS_QUEUE_RETRY_DELAY_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.QueueRetryDelaySeconds = n
		}
	}
	if v, ok := os.LookupEnv("ANALYSIS_SWEEP_SCHEDULE"); ok {
		cfg.SweepSchedule = v
	}
}

func applyDefaults(cfg *FileConfig) {
	cfg.Store = strings.ToLower(strings.TrimSpace(cfg.Store))
	if cfg.Store == "" {
		cfg.Store = StoreTypePostgres
	}
	cfg.Strategy = strings.ToLower(strings.TrimSpace(cfg.Strategy))
	if cfg.Strategy == "" {
		cfg.Strategy = StrategyGenerative
	}
	if cfg.SweepGraceMinutes <= 0 {
		cfg.SweepGraceMinutes = 10
	}
	if cfg.SweepBatchSize <= 0 {
		cfg.SweepBatchSize = 100
	}
}

func validateConfig(cfg FileConfig, server bool) error {
	if server {
		if cfg.Port == "" {
			return errors.New("config: port is required (set in config.yaml)")
		}
		if cfg.RedisAddr == "" {
			return errors.New("config: redisAddr is required (set in config.yaml or REDIS_ADDR)")
		}
		if strings.TrimSpace(cfg.InternalToken) == "" {
			return errors.New("config: internalToken is required (set in config.yaml or MELIFY_INTERNAL_TOKEN)")
		}
	}
	switch cfg.Store {
	case StoreTypePostgres:
		if cfg.DatabaseURL == "" {
			return errors.New("config: databaseURL is required (set in config.yaml or DATABASE_URL)")
		}
	case StoreTypeMemory:
	default:
		return fmt.Errorf("config: unknown store %q (postgres or memory)", cfg.Store)
	}
	switch cfg.Strategy {
	case StrategyGenerative, StrategyCorpus:
	default:
		return fmt.Errorf("config: unknown strategy %q (generative or corpus)", cfg.Strategy)
	}
	if cfg.GenerationTimeoutSeconds < 0 {
		return errors.New("config: generationTimeoutSeconds must be >= 0")
	}
	if cfg.QueueConcurrency < 0 {
		return errors.New("config: queueConcurrency must be >= 0")
	}
	if cfg.RateLimitPerMinute < 0 {
		return errors.New("config: rateLimitPerMinute must be >= 0")
	}
	if s := strings.TrimSpace(cfg.SweepSchedule); s != "" {
		if _, err := ScheduleParser.Parse(s); err != nil {
			return fmt.Errorf("config: invalid sweepSchedule %q: %w", s, err)
		}
	}
	return nil
}
