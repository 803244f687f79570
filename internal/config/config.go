package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP struct {
		Addr         string   `yaml:"addr"`
		AllowOrigins []string `yaml:"allow_origins"`
	} `yaml:"http"`
	Database struct {
		DSN          string `yaml:"dsn"`
		AutoMigrate  bool   `yaml:"auto_migrate"`
		MaxOpenConns int    `yaml:"max_open_conns"`
	} `yaml:"database"`
	Redis struct {
		URL string `yaml:"url"`
	} `yaml:"redis"`
	LLM struct {
		Provider      string        `yaml:"provider"`
		Model         string        `yaml:"model"`
		GeminiKey     string        `yaml:"gemini_key"`
		OpenAIKey     string        `yaml:"openai_key"`
		OpenAIBaseURL string        `yaml:"openai_base_url"`
		OllamaURL     string        `yaml:"ollama_url"`
		Timeout       time.Duration `yaml:"timeout"`
	} `yaml:"llm"`
	Triage struct {
		BaseDelay time.Duration `yaml:"base_delay"`
	} `yaml:"triage"`
	Geocode struct {
		APIKey   string        `yaml:"api_key"`
		Language string        `yaml:"language"`
		CacheTTL time.Duration `yaml:"cache_ttl"`
	} `yaml:"geocode"`
	Intake struct {
		RatePerMinute int `yaml:"rate_per_minute"`
		Burst         int `yaml:"burst"`
	} `yaml:"intake"`
	Log struct {
		Level       string `yaml:"level"`
		Development bool   `yaml:"development"`
	} `yaml:"log"`
}

func Default() Config {
	var cfg Config
	cfg.HTTP.Addr = ":3000"
	cfg.HTTP.AllowOrigins = []string{"*"}
	cfg.Database.AutoMigrate = true
	cfg.Database.MaxOpenConns = 20
	cfg.LLM.Provider = "gemini"
	cfg.LLM.Timeout = 30 * time.Second
	cfg.Triage.BaseDelay = 350 * time.Millisecond
	cfg.Geocode.Language = "pt-BR"
	cfg.Geocode.CacheTTL = 24 * time.Hour
	cfg.Intake.RatePerMinute = 30
	cfg.Intake.Burst = 5
	cfg.Log.Level = "info"
	return cfg
}

func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Read loads defaults, the optional file and the environment without
// validating, for commands that only need part of the configuration.
func Read(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, err
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Validate reports settings the service cannot start with.
func (c Config) Validate() error {
	if c.Database.DSN == "" {
		return errors.New("missing database.dsn (or ZL_DB_DSN / DATABASE_URL)")
	}
	switch c.LLM.Provider {
	case "gemini":
		if c.LLM.GeminiKey == "" {
			return errors.New("missing llm.gemini_key (or ZL_GEMINI_API_KEY / GEMINI_API_KEY)")
		}
	case "openai":
		if c.LLM.OpenAIKey == "" {
			return errors.New("missing llm.openai_key (or ZL_OPENAI_API_KEY)")
		}
	case "ollama", "noop":
	default:
		return fmt.Errorf("unknown llm.provider %q", c.LLM.Provider)
	}
	if c.Intake.RatePerMinute < 0 || c.Intake.Burst < 0 {
		return errors.New("intake rate limits must not be negative")
	}
	return nil
}

func applyEnv(cfg *Config) {
	// Legacy unprefixed names, read first so ZL_* wins.
	if v := os.Getenv("PORT"); v != "" {
		cfg.HTTP.Addr = ":" + strings.TrimPrefix(v, ":")
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.LLM.GeminiKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("GOOGLE_MAPS_API_KEY"); v != "" {
		cfg.Geocode.APIKey = v
	}

	if v := os.Getenv("ZL_HTTP_ADDR"); v != "" {
		cfg.HTTP.Addr = v
	}
	if v := os.Getenv("ZL_ALLOW_ORIGINS"); v != "" {
		cfg.HTTP.AllowOrigins = splitCSV(v)
	}
	if v := os.Getenv("ZL_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("ZL_DB_AUTO_MIGRATE"); v != "" {
		cfg.Database.AutoMigrate = parseBool(v, cfg.Database.AutoMigrate)
	}
	if v := os.Getenv("ZL_DB_MAX_OPEN_CONNS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Database.MaxOpenConns = n
		}
	}
	if v := os.Getenv("ZL_REDIS_URL"); v != "" {
		cfg.Redis.URL = v
	}
	if v := os.Getenv("ZL_LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("ZL_LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("ZL_GEMINI_API_KEY"); v != "" {
		cfg.LLM.GeminiKey = v
	}
	if v := os.Getenv("ZL_OPENAI_API_KEY"); v != "" {
		cfg.LLM.OpenAIKey = v
	}
	if v := os.Getenv("ZL_OPENAI_BASE_URL"); v != "" {
		cfg.LLM.OpenAIBaseURL = v
	}
	if v := os.Getenv("ZL_OLLAMA_URL"); v != "" {
		cfg.LLM.OllamaURL = v
	}
	if v := os.Getenv("ZL_LLM_TIMEOUT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.LLM.Timeout = d
		}
	}
	if v := os.Getenv("ZL_TRIAGE_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Triage.BaseDelay = d
		}
	}
	if v := os.Getenv("ZL_GEOCODE_API_KEY"); v != "" {
		cfg.Geocode.APIKey = v
	}
	if v := os.Getenv("ZL_GEOCODE_LANGUAGE"); v != "" {
		cfg.Geocode.Language = v
	}
	if v := os.Getenv("ZL_GEOCODE_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Geocode.CacheTTL = d
		}
	}
	if v := os.Getenv("ZL_INTAKE_RATE_PER_MINUTE"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Intake.RatePerMinute = n
		}
	}
	if v := os.Getenv("ZL_INTAKE_BURST"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Intake.Burst = n
		}
	}
	if v := os.Getenv("ZL_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("ZL_LOG_DEVELOPMENT"); v != "" {
		cfg.Log.Development = parseBool(v, cfg.Log.Development)
	}
}

func parseBool(input string, fallback bool) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "1", "true", "yes", "y", "on":
		return true
	case "0", "false", "no", "n", "off":
		return false
	default:
		return fallback
	}
}

func splitCSV(input string) []string {
	parts := strings.Split(input, ",")
	var out []string
	for _, part := range parts {
		val := strings.TrimSpace(part)
		if val == "" {
			continue
		}
		out = append(out, val)
	}
	return out
}
