// Command ipa-navigator is the pronunciation assessment server.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/twilight39/IPA-Navigator/internal/assess"
	"github.com/twilight39/IPA-Navigator/internal/config"
	"github.com/twilight39/IPA-Navigator/internal/health"
	"github.com/twilight39/IPA-Navigator/internal/observe"
	"github.com/twilight39/IPA-Navigator/internal/resilience"
	"github.com/twilight39/IPA-Navigator/internal/server"
	"github.com/twilight39/IPA-Navigator/internal/store"
	"github.com/twilight39/IPA-Navigator/pkg/provider/artic"
	"github.com/twilight39/IPA-Navigator/pkg/provider/artic/panphon"
	"github.com/twilight39/IPA-Navigator/pkg/provider/g2p"
	"github.com/twilight39/IPA-Navigator/pkg/provider/g2p/espeak"
	"github.com/twilight39/IPA-Navigator/pkg/provider/phonerec"
	"github.com/twilight39/IPA-Navigator/pkg/provider/phonerec/wav2vec"
	"github.com/twilight39/IPA-Navigator/pkg/provider/speech"
	"github.com/twilight39/IPA-Navigator/pkg/provider/speech/whisper"
	"github.com/twilight39/IPA-Navigator/pkg/provider/speech/whisperx"
)

func main() {
	os.Exit(run())
}

func run() int {
	// ── CLI flags ──────────────────────────────────────────────────────────────
	configPath := flag.String("config", "config.yaml", "path to the YAML configuration file")
	flag.Parse()

	// ── Load configuration ────────────────────────────────────────────────────
	cfg, err := config.Load(*configPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			fmt.Fprintf(os.Stderr, "ipa-navigator: config file %q not found — copy configs/example.yaml to get started\n", *configPath)
		} else {
			fmt.Fprintf(os.Stderr, "ipa-navigator: %v\n", err)
		}
		return 1
	}

	// ── Logger ────────────────────────────────────────────────────────────────
	logLevel := new(slog.LevelVar)
	logLevel.Set(slogLevel(cfg.Server.LogLevel))
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	slog.Info("ipa-navigator starting",
		"config", *configPath,
		"listen_addr", cfg.Server.ListenAddr,
		"log_level", cfg.Server.LogLevel,
	)

	// ── Signal context ────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// ── Telemetry ─────────────────────────────────────────────────────────────
	otelShutdown, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName: "ipa-navigator",
	})
	if err != nil {
		slog.Error("failed to initialise telemetry", "err", err)
		return 1
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := otelShutdown(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown error", "err", err)
		}
	}()
	metrics := observe.DefaultMetrics()

	// ── Collaborator registry ─────────────────────────────────────────────────
	reg := config.NewRegistry()
	registerBuiltinCollaborators(reg)

	collabs, err := buildCollaborators(cfg, reg)
	if err != nil {
		slog.Error("failed to build collaborators", "err", err)
		return 1
	}

	// ── Persistence (optional) ────────────────────────────────────────────────
	var (
		pool    *pgxpool.Pool
		records *store.PostgresStore
	)
	if cfg.Database.PostgresDSN != "" {
		pool, err = pgxpool.New(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			slog.Error("failed to create database pool", "err", err)
			return 1
		}
		defer pool.Close()

		records = store.NewPostgresStore(pool)
		if err := records.Migrate(ctx); err != nil {
			slog.Error("failed to migrate database schema", "err", err)
			return 1
		}
		slog.Info("assessment history enabled")
	}

	// ── Engine ────────────────────────────────────────────────────────────────
	engineOpts := []assess.Option{
		assess.WithMetrics(metrics),
		assess.WithLogger(logger),
	}
	if cfg.Engine.MaxConcurrent > 0 {
		engineOpts = append(engineOpts, assess.WithMaxConcurrent(int64(cfg.Engine.MaxConcurrent)))
	}
	if collabs.measure != nil {
		engineOpts = append(engineOpts, assess.WithMeasure(collabs.measure))
	}
	if records != nil {
		engineOpts = append(engineOpts, assess.WithRecorder(records))
	}
	engine := assess.NewEngine(collabs.aligner, collabs.recognizer, collabs.converter, engineOpts...)

	// ── HTTP routes ───────────────────────────────────────────────────────────
	apiOpts := []server.Option{
		server.WithDefaultAccent(cfg.Engine.DefaultAccent),
		server.WithLogger(logger),
	}
	if records != nil {
		apiOpts = append(apiOpts, server.WithStore(records))
	}
	api := server.New(engine, apiOpts...)

	mux := http.NewServeMux()
	api.Register(mux)
	health.New(buildCheckers(cfg, pool)...).Register(mux)
	mux.Handle("GET /metrics", promhttp.Handler())

	printStartupSummary(cfg, records != nil)

	// ── Config watcher ────────────────────────────────────────────────────────
	watcher, err := config.NewWatcher(*configPath, func(old, new *config.Config) {
		d := config.Diff(old, new)
		if d.LogLevelChanged {
			logLevel.Set(slogLevel(d.NewLogLevel))
			slog.Info("log level updated", "level", d.NewLogLevel)
		}
		if d.RequiresRestart() {
			for _, cd := range d.CollaboratorChanges {
				slog.Warn("collaborator config changed; restart required to apply",
					"kind", cd.Kind,
					"name_changed", cd.NameChanged,
					"endpoint_changed", cd.EndpointChanged,
				)
			}
			if d.EngineChanged {
				slog.Warn("engine config changed; restart required to apply")
			}
			if d.DatabaseChanged {
				slog.Warn("database config changed; restart required to apply")
			}
		}
	})
	if err != nil {
		slog.Warn("config watcher disabled", "err", err)
	} else {
		defer watcher.Stop()
	}

	// ── HTTP server ───────────────────────────────────────────────────────────
	addr := cfg.Server.ListenAddr
	if addr == "" {
		addr = ":8080"
	}
	srv := &http.Server{
		Addr:              addr,
		Handler:           observe.Middleware(metrics)(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if tls := cfg.Server.TLS; tls != nil {
			errCh <- srv.ListenAndServeTLS(tls.CertFile, tls.KeyFile)
		} else {
			errCh <- srv.ListenAndServe()
		}
	}()

	slog.Info("server ready — press Ctrl+C to shut down", "addr", addr)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("server error", "err", err)
			return 1
		}
	case <-ctx.Done():
	}

	// ── Graceful shutdown ─────────────────────────────────────────────────────
	slog.Info("shutdown signal received, stopping…")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("shutdown error", "err", err)
		return 1
	}
	slog.Info("goodbye")
	return 0
}

// ── Collaborator wiring ───────────────────────────────────────────────────────

// collaborators holds one interface value per collaborator slot. measure is
// nil when no articulatory backend is configured; the engine then falls back
// to built-in feature comparison.
type collaborators struct {
	aligner    speech.Aligner
	recognizer phonerec.Recognizer
	converter  g2p.Converter
	measure    artic.Measure
}

// registerBuiltinCollaborators wires all built-in collaborator factories into
// reg. Each factory receives a config.CollaboratorEntry and constructs the
// appropriate client from the real implementation packages.
func registerBuiltinCollaborators(reg *config.Registry) {
	// ── Speech ────────────────────────────────────────────────────────────────

	reg.RegisterSpeech("whisperx", func(entry config.CollaboratorEntry) (speech.Aligner, error) {
		return whisperx.New(entry.BaseURL), nil
	})

	reg.RegisterSpeech("whisper-native", func(entry config.CollaboratorEntry) (speech.Aligner, error) {
		var opts []whisper.Option
		if lang := optString(entry.Options, "language"); lang != "" {
			opts = append(opts, whisper.WithLanguage(lang))
		}
		return whisper.New(entry.ModelPath, opts...)
	})

	// ── Phonemes ──────────────────────────────────────────────────────────────

	reg.RegisterPhonemes("wav2vec", func(entry config.CollaboratorEntry) (phonerec.Recognizer, error) {
		return wav2vec.New(entry.BaseURL), nil
	})

	// ── G2P ───────────────────────────────────────────────────────────────────

	reg.RegisterG2P("espeak", func(entry config.CollaboratorEntry) (g2p.Converter, error) {
		return espeak.New(entry.BaseURL), nil
	})

	// ── Articulatory ──────────────────────────────────────────────────────────

	reg.RegisterArticulatory("panphon", func(entry config.CollaboratorEntry) (artic.Measure, error) {
		var opts []panphon.Option
		if w := optFloat(entry.Options, "total_weight"); w > 0 {
			opts = append(opts, panphon.WithTotalWeight(w))
		}
		return panphon.New(entry.BaseURL, opts...), nil
	})
}

// buildCollaborators instantiates all collaborators named in cfg using the
// registry. Speech, phonemes and g2p are mandatory; articulatory is optional.
func buildCollaborators(cfg *config.Config, reg *config.Registry) (*collaborators, error) {
	c := &collaborators{}

	aligner, err := reg.CreateSpeech(cfg.Collaborators.Speech)
	if err != nil {
		return nil, fmt.Errorf("create speech collaborator %q: %w", cfg.Collaborators.Speech.Name, err)
	}
	c.aligner = aligner
	slog.Info("collaborator created", "kind", "speech", "name", cfg.Collaborators.Speech.Name)

	// A whisperx entry that also names a model_path gets in-process whisper.cpp
	// as an automatic fallback behind a circuit breaker.
	if cfg.Collaborators.Speech.Name == "whisperx" && cfg.Collaborators.Speech.ModelPath != "" {
		native, err := whisper.New(cfg.Collaborators.Speech.ModelPath)
		if err != nil {
			return nil, fmt.Errorf("create speech fallback: %w", err)
		}
		fb := resilience.NewSpeechFallback(c.aligner, "whisperx", resilience.FallbackConfig{})
		fb.AddFallback("whisper-native", native)
		c.aligner = fb
		slog.Info("speech fallback enabled", "fallback", "whisper-native")
	}

	recognizer, err := reg.CreatePhonemes(cfg.Collaborators.Phonemes)
	if err != nil {
		return nil, fmt.Errorf("create phonemes collaborator %q: %w", cfg.Collaborators.Phonemes.Name, err)
	}
	c.recognizer = recognizer
	slog.Info("collaborator created", "kind", "phonemes", "name", cfg.Collaborators.Phonemes.Name)

	converter, err := reg.CreateG2P(cfg.Collaborators.G2P)
	if err != nil {
		return nil, fmt.Errorf("create g2p collaborator %q: %w", cfg.Collaborators.G2P.Name, err)
	}
	c.converter = converter
	slog.Info("collaborator created", "kind", "g2p", "name", cfg.Collaborators.G2P.Name)

	if name := cfg.Collaborators.Articulatory.Name; name != "" {
		measure, err := reg.CreateArticulatory(cfg.Collaborators.Articulatory)
		if err != nil {
			return nil, fmt.Errorf("create articulatory collaborator %q: %w", name, err)
		}
		// The breaker stops a dead sidecar from stalling every phoneme pair;
		// the engine falls back to feature comparison on error.
		c.measure = resilience.NewBreakerMeasure(measure, resilience.CircuitBreakerConfig{Name: name})
		slog.Info("collaborator created", "kind", "articulatory", "name", name)
	}

	return c, nil
}

// buildCheckers assembles the /readyz checks: one per HTTP collaborator plus
// the database when persistence is enabled.
func buildCheckers(cfg *config.Config, pool *pgxpool.Pool) []health.Checker {
	var checks []health.Checker

	probes := []struct {
		kind  string
		entry config.CollaboratorEntry
	}{
		{"speech", cfg.Collaborators.Speech},
		{"phonemes", cfg.Collaborators.Phonemes},
		{"g2p", cfg.Collaborators.G2P},
		{"articulatory", cfg.Collaborators.Articulatory},
	}
	for _, p := range probes {
		if p.entry.BaseURL == "" {
			continue
		}
		checks = append(checks, health.Collaborator(p.kind, p.entry.BaseURL, nil))
	}

	if pool != nil {
		checks = append(checks, health.Database(pool))
	}
	return checks
}

// ── Startup summary ───────────────────────────────────────────────────────────

func printStartupSummary(cfg *config.Config, persistence bool) {
	fmt.Println("╔═══════════════════════════════════════╗")
	fmt.Println("║     IPA Navigator — startup summary   ║")
	fmt.Println("╠═══════════════════════════════════════╣")
	printCollaborator("Speech", cfg.Collaborators.Speech)
	printCollaborator("Phonemes", cfg.Collaborators.Phonemes)
	printCollaborator("G2P", cfg.Collaborators.G2P)
	printCollaborator("Articulatory", cfg.Collaborators.Articulatory)
	if persistence {
		fmt.Printf("║  History         : %-19s║\n", "enabled")
	} else {
		fmt.Printf("║  History         : %-19s║\n", "(disabled)")
	}
	accent := cfg.Engine.DefaultAccent
	if accent == "" {
		accent = g2p.LocaleUS
	}
	fmt.Printf("║  Default accent  : %-19s║\n", accent)
	if cfg.Server.ListenAddr != "" {
		fmt.Printf("║  Listen addr     : %-19s║\n", cfg.Server.ListenAddr)
	}
	fmt.Println("╚═══════════════════════════════════════╝")
}

func printCollaborator(kind string, entry config.CollaboratorEntry) {
	value := entry.Name
	if value == "" {
		value = "(not configured)"
	}
	if len(value) > 19 {
		value = value[:16] + "…"
	}
	fmt.Printf("║  %-12s    : %-19s║\n", kind, value)
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func slogLevel(level config.LogLevel) slog.Level {
	switch level {
	case config.LogDebug:
		return slog.LevelDebug
	case config.LogWarn:
		return slog.LevelWarn
	case config.LogError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// optString extracts a string value from a collaborator Options map.
// Returns "" if the map is nil, the key is absent, or the value is not a string.
func optString(opts map[string]any, key string) string {
	if opts == nil {
		return ""
	}
	v, ok := opts[key]
	if !ok {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}

// optFloat extracts a numeric value from a collaborator Options map. YAML
// decodes whole numbers as int, so both forms are accepted.
func optFloat(opts map[string]any, key string) float64 {
	if opts == nil {
		return 0
	}
	switch v := opts[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}
