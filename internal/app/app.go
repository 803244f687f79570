package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"zeladoria/internal/api"
	"zeladoria/internal/cache"
	"zeladoria/internal/config"
	"zeladoria/internal/geocode"
	"zeladoria/internal/intake"
	"zeladoria/internal/llm"
	"zeladoria/internal/observability"
	"zeladoria/internal/store"
	"zeladoria/internal/triage"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	Config    config.Config
	Logger    *zap.Logger
	Store     *store.Store
	Cache     cache.Cache
	Generator llm.Generator
	Pipeline  *triage.Pipeline
	Observer  *observability.TriageObserver
	Intake    *intake.Service
}

func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	st, err := store.Open(cfg.Database.DSN)
	if err != nil {
		return nil, err
	}
	if cfg.Database.MaxOpenConns > 0 {
		st.DB().SetMaxOpenConns(cfg.Database.MaxOpenConns)
	}
	if cfg.Database.AutoMigrate {
		if err := store.Migrate(ctx, st.DB()); err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	addressCache, err := cache.Open(ctx, cfg.Redis.URL, cfg.Geocode.CacheTTL)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	gen, err := SelectGenerator(ctx, cfg)
	if err != nil {
		_ = st.Close()
		_ = addressCache.Close()
		return nil, err
	}

	var reverser geocode.Reverser
	if cfg.Geocode.APIKey != "" {
		g, err := geocode.NewGoogle(cfg.Geocode.APIKey, geocode.WithLanguage(cfg.Geocode.Language))
		if err != nil {
			_ = st.Close()
			_ = addressCache.Close()
			return nil, err
		}
		reverser = g
	} else {
		logger.Info("reverse geocoding disabled, keeping citizen location text")
	}
	resolver := geocode.NewResolver(reverser, addressCache, cfg.Geocode.CacheTTL, logger.Named("geocode"))

	pipeline := triage.New(gen,
		triage.WithBaseDelay(cfg.Triage.BaseDelay),
		triage.WithLogger(logger.Named("pipeline")))
	observer := observability.NewTriageObserver(logger)
	svc := intake.NewService(pipeline, resolver, st, observer, logger.Named("intake"))

	logger.Info("app ready",
		zap.String("provider", gen.Name()),
		zap.String("model", gen.Model()),
		zap.Bool("shared_cache", cfg.Redis.URL != ""))

	return &App{
		Config:    cfg,
		Logger:    logger,
		Store:     st,
		Cache:     addressCache,
		Generator: gen,
		Pipeline:  pipeline,
		Observer:  observer,
		Intake:    svc,
	}, nil
}

func (a *App) Close() error {
	var errs []error
	if a.Store != nil {
		errs = append(errs, a.Store.Close())
	}
	if a.Cache != nil {
		errs = append(errs, a.Cache.Close())
	}
	return errors.Join(errs...)
}

// Handler returns the full HTTP surface: API routes, probes and CORS.
func (a *App) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	mux.HandleFunc("GET /readyz", a.handleReady)
	if a.Intake != nil {
		throttle := api.NewThrottle(a.Config.Intake.RatePerMinute, a.Config.Intake.Burst)
		api.NewHandler(a.Intake, throttle, a.Logger.Named("api")).RegisterRoutes(mux)
	}
	return api.WithCORS(mux, a.Config.HTTP.AllowOrigins)
}

func (a *App) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	if a.Store == nil {
		http.Error(w, "database not configured", http.StatusServiceUnavailable)
		return
	}
	if err := a.Store.Ping(ctx); err != nil {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	if a.Cache != nil {
		if err := a.Cache.Ping(ctx); err != nil {
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Serve runs the HTTP server until ctx is cancelled, then drains it.
func (a *App) Serve(ctx context.Context) error {
	srv := &http.Server{
		Addr:              a.Config.HTTP.Addr,
		Handler:           a.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// SelectGenerator builds the text generator named by llm.provider.
func SelectGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	base := llm.Config{
		Provider: cfg.LLM.Provider,
		Model:    cfg.LLM.Model,
		Timeout:  cfg.LLM.Timeout,
	}
	switch cfg.LLM.Provider {
	case "gemini":
		base.APIKey = cfg.LLM.GeminiKey
		return llm.NewGemini(ctx, base)
	case "openai":
		base.APIKey = cfg.LLM.OpenAIKey
		base.BaseURL = cfg.LLM.OpenAIBaseURL
		return llm.NewOpenAI(base)
	case "ollama":
		base.BaseURL = cfg.LLM.OllamaURL
		return llm.NewOllama(base), nil
	case "noop", "":
		return llm.NewNoop(), nil
	}
	return nil, fmt.Errorf("unknown llm provider %q", cfg.LLM.Provider)
}
