package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "DATABASE_URL", "GEMINI_API_KEY", "GEMINI_MODEL", "GOOGLE_MAPS_API_KEY",
		"ZL_HTTP_ADDR", "ZL_DB_DSN", "ZL_LLM_PROVIDER", "ZL_GEMINI_API_KEY", "ZL_OPENAI_API_KEY",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZL_HTTP_ADDR", ":9000")
	t.Setenv("ZL_ALLOW_ORIGINS", "https://painel.example, https://app.example")
	t.Setenv("ZL_DB_DSN", "postgres://localhost/zeladoria")
	t.Setenv("ZL_DB_AUTO_MIGRATE", "false")
	t.Setenv("ZL_REDIS_URL", "redis://localhost:6379/0")
	t.Setenv("ZL_LLM_PROVIDER", "OpenAI")
	t.Setenv("ZL_OPENAI_API_KEY", "sk-test")
	t.Setenv("ZL_LLM_TIMEOUT", "5s")
	t.Setenv("ZL_TRIAGE_BASE_DELAY", "10ms")
	t.Setenv("ZL_INTAKE_RATE_PER_MINUTE", "12")
	t.Setenv("ZL_LOG_DEVELOPMENT", "yes")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":9000" {
		t.Fatalf("expected http addr override")
	}
	if len(cfg.HTTP.AllowOrigins) != 2 || cfg.HTTP.AllowOrigins[1] != "https://app.example" {
		t.Fatalf("expected allow origins override, got %v", cfg.HTTP.AllowOrigins)
	}
	if cfg.Database.DSN != "postgres://localhost/zeladoria" {
		t.Fatalf("expected dsn override")
	}
	if cfg.Database.AutoMigrate {
		t.Fatalf("expected auto migrate false")
	}
	if cfg.Redis.URL != "redis://localhost:6379/0" {
		t.Fatalf("expected redis url override")
	}
	if cfg.LLM.Provider != "openai" {
		t.Fatalf("expected provider normalized to openai, got %q", cfg.LLM.Provider)
	}
	if cfg.LLM.Timeout != 5*time.Second {
		t.Fatalf("expected llm timeout override")
	}
	if cfg.Triage.BaseDelay != 10*time.Millisecond {
		t.Fatalf("expected triage base delay override")
	}
	if cfg.Intake.RatePerMinute != 12 {
		t.Fatalf("expected rate override")
	}
	if !cfg.Log.Development {
		t.Fatalf("expected development logging")
	}
}

func TestLoadLegacyVariables(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "8080")
	t.Setenv("DATABASE_URL", "postgres://legacy/db")
	t.Setenv("GEMINI_API_KEY", "gem-key")
	t.Setenv("GEMINI_MODEL", "gemini-1.5-flash")
	t.Setenv("GOOGLE_MAPS_API_KEY", "maps-key")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":8080" {
		t.Fatalf("expected :8080, got %s", cfg.HTTP.Addr)
	}
	if cfg.Database.DSN != "postgres://legacy/db" || cfg.LLM.GeminiKey != "gem-key" {
		t.Fatalf("expected legacy dsn and gemini key")
	}
	if cfg.LLM.Model != "gemini-1.5-flash" || cfg.Geocode.APIKey != "maps-key" {
		t.Fatalf("expected legacy model and maps key")
	}
}

func TestPrefixedVariablesWinOverLegacy(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://legacy/db")
	t.Setenv("ZL_DB_DSN", "postgres://new/db")
	t.Setenv("ZL_LLM_PROVIDER", "noop")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Database.DSN != "postgres://new/db" {
		t.Fatalf("expected ZL_DB_DSN to win, got %s", cfg.Database.DSN)
	}
}

func TestLoadYAMLFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "zeladoria.yaml")
	data := []byte(`
http:
  addr: ":7000"
database:
  dsn: postgres://file/db
llm:
  provider: ollama
  model: mistral
geocode:
  cache_ttl: 1h
`)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.HTTP.Addr != ":7000" || cfg.LLM.Provider != "ollama" || cfg.LLM.Model != "mistral" {
		t.Fatalf("unexpected config from file: %+v", cfg)
	}
	if cfg.Geocode.CacheTTL != time.Hour {
		t.Fatalf("expected cache ttl 1h, got %s", cfg.Geocode.CacheTTL)
	}
	if cfg.Geocode.Language != "pt-BR" {
		t.Fatalf("expected default language to survive file load")
	}
}

func TestValidateRequiresProviderKey(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZL_DB_DSN", "postgres://localhost/db")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected missing gemini key error")
	}
	t.Setenv("ZL_LLM_PROVIDER", "claude")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected unknown provider error")
	}
}

func TestValidateRequiresDSN(t *testing.T) {
	clearEnv(t)
	t.Setenv("ZL_LLM_PROVIDER", "noop")
	if _, err := Load(""); err == nil {
		t.Fatalf("expected missing dsn error")
	}
}
