package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/go-chi/chi/v5"
	"github.com/jaevor/go-nanoid"
	"github.com/samber/do"
	"github.com/serroba/shortify/internal/account"
	"github.com/serroba/shortify/internal/container"
	"github.com/serroba/shortify/internal/messaging"
	"github.com/serroba/shortify/internal/seed"
	"go.uber.org/zap"
)

const generatedPasswordSize = 32

func seedPublicAccount(ctx context.Context, injector *do.Injector, options *container.Options) error {
	newPassword, err := nanoid.Standard(generatedPasswordSize)
	if err != nil {
		return fmt.Errorf("password generator: %w", err)
	}

	_, err = seed.EnsurePublicAccount(ctx, do.MustInvoke[*account.Directory](injector), seed.PublicAccount{
		Username:    options.PublicUsername,
		DisplayName: options.PublicDisplayName,
		Password:    options.PublicPassword,
		NewPassword: newPassword,
	}, do.MustInvoke[*zap.Logger](injector))

	return err
}

func main() {
	if err := container.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		if err := options.Validate(); err != nil {
			log.Fatal(err)
		}

		injector := do.New()
		container.Register(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)

		ctx, cancel := context.WithCancel(context.Background())

		var server *http.Server

		hooks.OnStart(func() {
			if err := seedPublicAccount(ctx, injector, options); err != nil {
				logger.Fatal("seed failed", zap.Error(err))
			}

			// The in-memory bus only reaches subscribers in this process.
			if options.EventBus == container.BackendMemory {
				group := do.MustInvoke[*messaging.ConsumerGroup](injector)
				if err := group.Start(ctx); err != nil {
					logger.Fatal("failed to start consumer group", zap.Error(err))
				}
			}

			router := do.MustInvoke[*chi.Mux](injector)

			// Invoke API to trigger route registration
			_ = do.MustInvoke[huma.API](injector)

			server = &http.Server{
				Addr:              fmt.Sprintf(":%d", options.Port),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			logger.Info("server starting",
				zap.Int("port", options.Port),
				zap.String("baseUrl", options.ShortURLBase()),
				zap.String("storage", options.Storage),
				zap.String("cache", options.Cache),
				zap.String("eventBus", options.EventBus),
			)

			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Fatal("server failed", zap.Error(err))
			}
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")

			shutdownCtx, stop := context.WithTimeout(context.Background(), 30*time.Second)
			defer stop()

			if server != nil {
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.Error("server shutdown error", zap.Error(err))
				}
			}

			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("service shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Run()
}
