package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
	"google.golang.org/api/option"

	"github.com/akitas-arrow/child-name/internal/content"
	"github.com/akitas-arrow/child-name/internal/httpserver"
	"github.com/akitas-arrow/child-name/internal/platform/auth"
	"github.com/akitas-arrow/child-name/internal/platform/config"
	pfirestore "github.com/akitas-arrow/child-name/internal/platform/firestore"
	"github.com/akitas-arrow/child-name/internal/platform/observability"
	"github.com/akitas-arrow/child-name/internal/platform/secrets"
	"github.com/akitas-arrow/child-name/internal/platform/submitguard"
	"github.com/akitas-arrow/child-name/internal/repositories"
	firestoreRepo "github.com/akitas-arrow/child-name/internal/repositories/firestore"
	"github.com/akitas-arrow/child-name/internal/repositories/memory"
	"github.com/akitas-arrow/child-name/internal/services"
	"github.com/akitas-arrow/child-name/internal/session"
)

const (
	guardCleanupInterval  = 15 * time.Minute
	guardCleanupBatchSize = 200
	shutdownTimeout       = 10 * time.Second
)

func main() {
	ctx := context.Background()

	baseLogger, err := observability.NewLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialise logger: %v\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = baseLogger.Sync()
	}()

	logger := baseLogger.Named("childname")
	ctx = observability.WithLogger(ctx, logger)

	secretsCfg, err := config.LoadSecrets()
	if err != nil {
		logger.Fatal("failed to read secret settings", zap.Error(err))
	}
	fetcherOpts := []secrets.Option{
		secrets.WithLogger(logger.Named("secrets")),
		secrets.WithProject(secretsCfg.ProjectID),
		secrets.WithFallbackFile(secretsCfg.FallbackFile),
	}
	if secretsCfg.ProjectID == "" {
		fetcherOpts = append(fetcherOpts, secrets.WithoutRemote())
	}
	if creds := os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"); creds != "" {
		fetcherOpts = append(fetcherOpts, secrets.WithClientOptions(option.WithCredentialsFile(creds)))
	}
	fetcher, err := secrets.NewFetcher(ctx, fetcherOpts...)
	if err != nil {
		logger.Fatal("failed to initialise secret fetcher", zap.Error(err))
	}
	defer func() {
		if err := fetcher.Close(); err != nil {
			logger.Warn("secret fetcher close error", zap.Error(err))
		}
	}()

	cfg, err := config.Load(ctx, config.WithSecretResolver(fetcher))
	if err != nil {
		var validation *config.ValidationError
		if errors.As(err, &validation) {
			logger.Fatal("invalid configuration", zap.Strings("fields", validation.Fields()))
		}
		logger.Fatal("failed to load configuration", zap.Error(err))
	}

	registry, guard, err := openStore(ctx, cfg)
	if err != nil {
		logger.Fatal("failed to initialise store", zap.String("store", cfg.Store), zap.Error(err))
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := registry.Close(closeCtx); err != nil {
			logger.Warn("store close error", zap.Error(err))
		}
	}()

	metrics, err := observability.NewHTTPMetrics()
	if err != nil {
		logger.Fatal("failed to initialise http metrics", zap.Error(err))
	}
	observe, err := observability.SubmissionObserver()
	if err != nil {
		logger.Fatal("failed to initialise submission metrics", zap.Error(err))
	}

	suggestionService, err := services.NewSuggestionService(services.SuggestionServiceDeps{
		Suggestions: registry.Suggestions(),
		Submitters:  registry.Submitters(),
		Guard:       guard,
		GuardTTL:    cfg.Submission.TokenTTL,
		Clock:       time.Now,
		IDGenerator: func() string { return ulid.Make().String() },
		Logger:      observability.ServiceLogger(logger.Named("suggestions")),
		Observe:     observe,
	})
	if err != nil {
		logger.Fatal("failed to initialise suggestion service", zap.Error(err))
	}

	var authenticator httpserver.Authenticator
	if cfg.Auth.Required || strings.TrimSpace(cfg.Firebase.APIKey) != "" {
		authenticator, err = newAuthenticator(ctx, cfg)
		if err != nil {
			logger.Fatal("failed to initialise authenticator", zap.Error(err))
		}
	}

	sessions, err := session.NewManager(session.Config{
		HashKey:      []byte(cfg.Session.HashKey),
		BlockKey:     []byte(cfg.Session.BlockKey),
		CookieSecure: cfg.Session.CookieSecure,
		IdleTimeout:  cfg.Session.IdleTimeout,
		Lifetime:     cfg.Session.Lifetime,
	})
	if err != nil {
		logger.Fatal("failed to initialise session manager", zap.Error(err))
	}

	srv := httpserver.New(httpserver.Config{
		Address:        cfg.Server.Address,
		Logger:         logger,
		Metrics:        metrics,
		TraceProjectID: cfg.Firebase.ProjectID,
		Suggestions:    suggestionService,
		Store:          registry.Health(),
		Pages:          content.NewLoader(cfg.Content.Dir),
		Authenticator:  authenticator,
		AuthRequired:   cfg.Auth.Required,
		Sessions:       sessions,
		CookieSecure:   cfg.Session.CookieSecure,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
	})

	cleanupCtx, cleanupCancel := context.WithCancel(context.Background())
	var cleanupWG sync.WaitGroup
	cleanupWG.Add(1)
	go func() {
		defer cleanupWG.Done()
		runGuardCleanup(cleanupCtx, guard, logger.Named("submitguard"))
	}()

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", cfg.Environment),
			zap.String("store", cfg.Store),
			zap.Bool("auth_required", authenticator != nil && cfg.Auth.Required),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	select {
	case err, ok := <-serverErr:
		if ok && err != nil {
			logger.Error("server error", zap.Error(err))
		}
	case <-signalCtx.Done():
		logger.Info("shutdown signal received")
	}

	cleanupCancel()
	cleanupWG.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	logger.Info("server stopped")
}

func openStore(ctx context.Context, cfg config.Config) (repositories.Registry, submitguard.Store, error) {
	switch cfg.Store {
	case config.StoreMemory:
		return memory.NewStore(memory.DemoSubmitters()...), submitguard.NewMemoryStore(), nil
	case config.StoreFirestore:
		var opts []pfirestore.ProviderOption
		if creds := strings.TrimSpace(cfg.Firebase.CredentialsFile); creds != "" {
			opts = append(opts, pfirestore.WithClientOptions(option.WithCredentialsFile(creds)))
		}
		provider := pfirestore.NewProvider(cfg.Firestore, opts...)
		client, err := provider.Client(ctx)
		if err != nil {
			return nil, nil, err
		}
		return firestoreRepo.NewRegistry(provider), submitguard.NewFirestoreStore(client), nil
	default:
		return nil, nil, fmt.Errorf("unknown store %q", cfg.Store)
	}
}

func newAuthenticator(ctx context.Context, cfg config.Config) (*auth.Authenticator, error) {
	verifier, err := auth.NewFirebaseVerifier(ctx, cfg.Firebase)
	if err != nil {
		return nil, fmt.Errorf("firebase verifier: %w", err)
	}
	signer, err := auth.NewIdentityToolkitSigner(ctx, cfg.Firebase.APIKey)
	if err != nil {
		return nil, fmt.Errorf("password signer: %w", err)
	}
	return auth.NewAuthenticator(signer, verifier), nil
}

func runGuardCleanup(ctx context.Context, guard submitguard.Store, logger *zap.Logger) {
	ticker := time.NewTicker(guardCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			runCtx, cancel := context.WithTimeout(ctx, time.Minute)
			removed, err := guard.CleanupExpired(runCtx, time.Now().UTC(), guardCleanupBatchSize)
			cancel()
			if err != nil {
				logger.Error("submission token cleanup error", zap.Error(err))
				continue
			}
			if removed > 0 {
				logger.Info("submission token cleanup removed records", zap.Int("count", removed))
			}
		case <-ctx.Done():
			return
		}
	}
}
