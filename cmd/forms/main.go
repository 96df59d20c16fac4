package main

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/Pavel-Shcherbo/REKLIX/internal/antispam"
	"github.com/Pavel-Shcherbo/REKLIX/internal/handlers"
	"github.com/Pavel-Shcherbo/REKLIX/internal/store"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/clients/mailer"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/config"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/email"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/logging"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/monitoring"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/redis"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/server"
	"github.com/Pavel-Shcherbo/REKLIX/pkg/version"
)

func main() {
	logger := logging.NewLoggerWithService("forms")
	config.LoadEnv(logger)

	port := config.GetEnv("PORT", "18080")

	rateLimitMax := config.GetEnvInt("RATE_LIMIT_MAX", 3)
	rateLimitWindow := config.GetEnvDuration("RATE_LIMIT_WINDOW", 60*time.Second)
	notifyTimeout := config.GetEnvDuration("NOTIFY_TIMEOUT", 30*time.Second)

	corsOrigin := "*"
	if config.GetEnv("GIN_MODE", "debug") == "release" {
		corsOrigin = config.GetEnv("CORS_ORIGIN", "https://reklix.com")
	}

	healthChecker := monitoring.NewHealthChecker("forms", version.Version)
	metricsCollector := monitoring.NewMetricsCollector("forms", version.Version, version.GetShortCommit())

	// Shared state: process memory by default, Redis when configured so
	// multiple instances share one rate-limit window and subscriber set.
	var limiter store.RateLimiter = store.NewMemoryRateLimiter(rateLimitMax, rateLimitWindow)
	var subscribers store.SubscriberStore = store.NewMemorySubscriberStore()

	if redisURL := config.GetEnv("REDIS_URL", ""); redisURL != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		client, err := redis.NewClientFromURL(ctx, redisURL)
		cancel()
		if err != nil {
			logger.WithError(err).Fatal("Failed to connect to Redis")
		}

		limiter = store.NewRedisRateLimiter(client, rateLimitMax, rateLimitWindow)
		subscribers = store.NewRedisSubscriberStore(client)
		healthChecker.AddCheck("redis", monitoring.RedisHealthCheck(redisPinger{client}))
	}

	engine := antispam.NewEngine(limiter)

	toEmail := config.GetEnv("TO_EMAIL", "contact@reklix.com")
	fromEmail := config.GetEnv("FROM_EMAIL", "noreply@reklix.com")

	var sender handlers.EmailSender
	if mailerURL := config.GetEnv("MAILER_URL", ""); mailerURL != "" {
		sender = mailer.NewClient(
			mailerURL,
			config.GetEnv("MAILER_USER", ""),
			config.GetEnv("MAILER_PASSWORD", ""),
			fromEmail,
		)
		healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
			"MAILER_URL": mailerURL,
			"TO_EMAIL":   toEmail,
		}))
	} else {
		smtpHost := config.GetEnv("SMTP_HOST", "")
		sender = email.NewSender(email.Config{
			Host:     smtpHost,
			Port:     config.GetEnv("SMTP_PORT", "587"),
			User:     config.GetEnv("SMTP_USER", ""),
			Password: config.GetEnv("SMTP_PASSWORD", ""),
			From:     fromEmail,
			FromName: "Reklix",
		})
		healthChecker.AddCheck("config", monitoring.ConfigurationHealthCheck(map[string]string{
			"SMTP_HOST": smtpHost,
			"TO_EMAIL":  toEmail,
		}))
	}

	formMetrics := handlers.NewFormMetrics(metricsCollector)

	app := server.SetupServiceRouter(logger, "forms", healthChecker, metricsCollector, corsOrigin)

	contactHandler := handlers.NewContactHandler(sender, engine, toEmail, notifyTimeout, logger, formMetrics)
	newsletterHandler := handlers.NewNewsletterHandler(subscribers, engine, sender, notifyTimeout, logger, formMetrics)

	app.POST("/api/contact", contactHandler.Handle)
	app.POST("/api/newsletter", newsletterHandler.Handle)

	serverConfig := server.DefaultConfig("forms", port)
	if err := server.Start(serverConfig, app, logger); err != nil {
		logger.Fatal(err.Error())
	}
}

type redisPinger struct {
	client *goredis.Client
}

func (p redisPinger) Ping(ctx context.Context) error {
	return p.client.Ping(ctx).Err()
}
