package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"

	"github.com/kailas-cloud/kidprint/internal/config"
	dbRedis "github.com/kailas-cloud/kidprint/internal/db/redis"
	"github.com/kailas-cloud/kidprint/internal/domain"
	"github.com/kailas-cloud/kidprint/internal/domain/phrase"
	logpkg "github.com/kailas-cloud/kidprint/internal/logger"
	"github.com/kailas-cloud/kidprint/internal/metrics"
	quotarepo "github.com/kailas-cloud/kidprint/internal/repository/quota"
	"github.com/kailas-cloud/kidprint/internal/transport/alsa"
	chiTransport "github.com/kailas-cloud/kidprint/internal/transport/chi"
	"github.com/kailas-cloud/kidprint/internal/transport/console"
	"github.com/kailas-cloud/kidprint/internal/transport/cups"
	openaiTransport "github.com/kailas-cloud/kidprint/internal/transport/openai"
	"github.com/kailas-cloud/kidprint/internal/usecase/command"
	"github.com/kailas-cloud/kidprint/internal/usecase/content"
	healthuc "github.com/kailas-cloud/kidprint/internal/usecase/health"
	"github.com/kailas-cloud/kidprint/internal/usecase/quota"
	"github.com/kailas-cloud/kidprint/internal/usecase/session"
	usageuc "github.com/kailas-cloud/kidprint/internal/usecase/usage"
	"github.com/kailas-cloud/kidprint/internal/version"
)

// quotaBackend is a persistence store the health service can ping.
type quotaBackend interface {
	quota.StateStore
	healthuc.StoragePinger
}

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, logpkg.Options{
		Level: cfg.Logging.Level,
		File:  cfg.Logging.File,
	})
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting kidprint kiosk",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("daily_limit", cfg.Kiosk.DailyLimit),
		zap.String("storage_driver", cfg.Storage.Driver),
		zap.String("speech_driver", cfg.Speech.Driver),
		zap.String("feedback_driver", cfg.Feedback.Driver),
		zap.String("printer_driver", cfg.Printer.Driver),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterKioskMetrics()
	metrics.RegisterHTTPMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openQuotaStore(ctx, cfg.Storage, logger)
	if err != nil {
		logger.Fatal("Failed to open quota storage", zap.Error(err))
	}
	defer closeStore()

	loc, err := cfg.Kiosk.Location()
	if err != nil {
		logger.Fatal("Invalid time zone", zap.Error(err))
	}
	tracker, err := quota.NewTracker(cfg.Kiosk.DailyLimit, logger, quota.WithLocation(loc))
	if err != nil {
		logger.Fatal("Failed to create quota tracker", zap.Error(err))
	}
	tracker.WithStore(ctx, store)

	gate := content.New(content.Config{
		MaxLength:        cfg.Content.MaxLength,
		MaxRepeat:        cfg.Content.MaxRepeat,
		BlockedTerms:     cfg.Content.BlockedTerms,
		SafeTerms:        cfg.Content.SafeTerms,
		EducationalTerms: cfg.Content.EducationalTerms,
		Suggestions:      cfg.Content.Suggestions,
	}, logger)
	interpreter := command.New(cfg.Command.PrintKeywords, cfg.Command.PictureKeywords)
	logger.Info("Listening for print keywords", zap.Strings("keywords", interpreter.Keywords()))

	catalog := phrase.New(cfg.Feedback.Messages)
	source, speechChecker := buildSpeechSource(cfg, logger)
	feedback := buildFeedbackSink(cfg, catalog, logger)
	printer := buildPrintSink(cfg.Printer, logger)

	healthSvc := healthuc.New(store, printer, speechChecker)
	usageSvc := usageuc.New(tracker)

	var srv *http.Server
	if cfg.Admin.Enabled {
		server := chiTransport.NewServer(usageSvc, healthSvc, tracker, gate, logger)
		addr := fmt.Sprintf(":%d", cfg.Admin.Port)
		srv = &http.Server{
			Addr: addr,
			Handler: server.Router(chiTransport.Config{
				APIKeys:           cfg.Admin.APIKeys,
				RequestsPerMinute: cfg.Admin.RequestsPerMinute,
			}),
			ReadTimeout:  time.Duration(cfg.Admin.ReadTimeoutSec) * time.Second,
			WriteTimeout: time.Duration(cfg.Admin.WriteTimeoutSec) * time.Second,
		}

		go func() {
			logger.Info("Starting admin HTTP server", zap.String("addr", addr))
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("Admin HTTP server error", zap.Error(err))
				stop()
			}
		}()
	}

	controller := session.New(session.Config{
		ListenTimeout: cfg.Kiosk.ListenTimeout(),
		RetryDelay:    cfg.Kiosk.RetryDelay(),
	}, tracker, gate, interpreter, source, feedback, printer, logger)

	if err := controller.Run(ctx); err != nil {
		logger.Error("Session loop stopped", zap.Error(err))
	}
	logger.Info("Received shutdown signal")

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Admin.ShutdownSec)*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Error during shutdown", zap.Error(err))
		}
	}

	stats := tracker.Stats(context.Background())
	logger.Info("Kiosk stopped gracefully",
		zap.Int("prints_today", stats.TodayCount),
		zap.Int("remaining", stats.Remaining),
	)
}

// openQuotaStore opens the configured quota backend. The returned func releases it.
func openQuotaStore(ctx context.Context, cfg config.StorageConfig, logger *zap.Logger) (quotaBackend, func(), error) {
	switch cfg.Driver {
	case "sqlite":
		s, err := quotarepo.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("open sqlite %s: %w", cfg.Path, err)
		}
		logger.Info("Quota storage: sqlite", zap.String("path", cfg.Path))
		return s, func() { _ = s.Close() }, nil
	case "valkey", "redis":
		kv, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Addrs,
			Password: cfg.Password,
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect %s: %w", cfg.Driver, err)
		}
		timeout := time.Duration(cfg.ReadinessTimeout) * time.Second
		if err := kv.WaitForReady(ctx, timeout); err != nil {
			kv.Close()
			return nil, nil, fmt.Errorf("%s not ready: %w", cfg.Driver, err)
		}
		logger.Info("Quota storage: key-value",
			zap.String("driver", cfg.Driver),
			zap.Strings("addrs", cfg.Addrs),
			zap.String("key", cfg.Key),
		)
		return quotarepo.NewKVStore(kv, cfg.Key), kv.Close, nil
	default:
		logger.Info("Quota storage: file", zap.String("path", cfg.Path))
		return quotarepo.NewFileStore(afero.NewOsFs(), cfg.Path), func() {}, nil
	}
}

// buildSpeechSource returns the speech source and, for the microphone path,
// a health checker covering the recorder and the transcription API.
func buildSpeechSource(cfg config.Config, logger *zap.Logger) (domain.SpeechSource, healthuc.Checker) {
	lang := domain.Language(cfg.Kiosk.Language)
	if cfg.Speech.Driver != "openai" {
		logger.Info("Speech source: console (type one phrase per line)")
		return console.NewSource(os.Stdin, lang, nil, logger), nil
	}

	rec := alsa.NewRecorder(cfg.Audio.RecordCommand, logger)
	t := openaiTransport.NewTranscriber(&openaiTransport.TranscriberConfig{
		APIKey:          cfg.OpenAI.APIKey,
		BaseURL:         cfg.OpenAI.BaseURL,
		Model:           cfg.Speech.Model,
		Language:        lang,
		PhraseTimeLimit: cfg.Kiosk.PhraseTimeLimit(),
		Logger:          logger,
	}, rec)
	logger.Info("Speech source: microphone + transcription", zap.String("model", cfg.Speech.Model))
	return t, checkers{rec, t}
}

func buildFeedbackSink(cfg config.Config, catalog *phrase.Catalog, logger *zap.Logger) domain.FeedbackSink {
	if cfg.Feedback.Driver != "openai" {
		return console.NewLogSink(catalog, logger)
	}
	player := alsa.NewPlayer(cfg.Audio.PlayCommand, cfg.Audio.PlayMP3, logger)
	return openaiTransport.NewSpeaker(&openaiTransport.SpeakerConfig{
		APIKey:    cfg.OpenAI.APIKey,
		BaseURL:   cfg.OpenAI.BaseURL,
		Model:     cfg.Feedback.Model,
		Voice:     cfg.Feedback.Voice,
		Speed:     cfg.Feedback.Speed,
		AssetsDir: cfg.Feedback.AssetsDir,
		Fs:        afero.NewOsFs(),
		Catalog:   catalog,
		Logger:    logger,
	}, player)
}

// printSink is a print sink with a health check.
type printSink interface {
	domain.PrintSink
	healthuc.Checker
}

func buildPrintSink(cfg config.PrinterConfig, logger *zap.Logger) printSink {
	if cfg.Driver == "cups" {
		return cups.NewLPSink(&cups.LPConfig{
			Printer: cfg.Name,
			Timeout: time.Duration(cfg.TimeoutSec) * time.Second,
			Logger:  logger,
		})
	}
	return cups.NewSpoolSink(afero.NewOsFs(), cfg.SpoolDir, logger)
}

// checkers runs several health checks and returns the first failure.
type checkers []healthuc.Checker

func (cs checkers) HealthCheck(ctx context.Context) error {
	for _, c := range cs {
		if err := c.HealthCheck(ctx); err != nil {
			return err
		}
	}
	return nil
}
