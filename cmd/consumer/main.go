package main

import (
	"context"
	"log"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/samber/do"
	"github.com/serroba/shortify/internal/container"
	"github.com/serroba/shortify/internal/messaging"
	"go.uber.org/zap"
)

func main() {
	if err := container.LoadDotEnv(); err != nil {
		log.Fatal(err)
	}

	cli := humacli.New(func(hooks humacli.Hooks, options *container.Options) {
		if err := options.Validate(); err != nil {
			log.Fatal(err)
		}

		if options.EventBus != container.BackendRedis {
			log.Fatal("the consumer needs --event-bus redis; the memory bus runs inside the server")
		}

		injector := do.New()
		container.Register(injector, options)

		logger := do.MustInvoke[*zap.Logger](injector)
		ctx, cancel := context.WithCancel(context.Background())

		hooks.OnStart(func() {
			group := do.MustInvoke[*messaging.ConsumerGroup](injector)

			if err := group.Start(ctx); err != nil {
				logger.Fatal("failed to start consumer group", zap.Error(err))
			}

			<-ctx.Done()
		})

		hooks.OnStop(func() {
			logger.Info("shutting down")
			cancel()

			if err := injector.Shutdown(); err != nil {
				logger.Error("shutdown error", zap.Error(err))
			}

			logger.Info("shutdown complete")
		})
	})

	cli.Run()
}
