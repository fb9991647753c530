package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"fraudgate/internal/access/cache"
	"fraudgate/internal/access/gate"
	accessmetrics "fraudgate/internal/access/metrics"
	"fraudgate/internal/audit"
	"fraudgate/internal/audit/kafka"
	"fraudgate/internal/ban/escalation"
	banmetrics "fraudgate/internal/ban/metrics"
	jwttoken "fraudgate/internal/jwt_token"
	"fraudgate/internal/platform/config"
	"fraudgate/internal/platform/httpserver"
	"fraudgate/internal/platform/logger"
	"fraudgate/internal/platform/metrics"
	"fraudgate/internal/storage"
	httptransport "fraudgate/internal/transport/http"
	"fraudgate/internal/verification/handler"
	verificationmetrics "fraudgate/internal/verification/metrics"
	"fraudgate/internal/verification/review"
	"fraudgate/internal/verification/service"
	"fraudgate/pkg/platform/circuit"
	"fraudgate/pkg/platform/middleware/admin"
	"fraudgate/pkg/platform/privacy"
)

func main() {
	log := logger.New()
	if err := run(log); err != nil {
		log.Error("fraudgate exited", "error", err)
		os.Exit(1)
	}
}

// run wires dependencies and blocks until SIGINT/SIGTERM or a fatal error.
func run(log *slog.Logger) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stores, err := storage.Open(ctx, cfg, log)
	if err != nil {
		return fmt.Errorf("open storage: %w", err)
	}
	defer stores.Close()

	auditBuffer := audit.NewRingBuffer(cfg.Audit.BufferSize)
	publisher := audit.NewPublisher(auditBuffer)
	sink, closeSink, err := auditSink(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeSink()
	auditWorker := audit.NewWorker(auditBuffer, sink,
		audit.WithFlushInterval(cfg.Audit.FlushInterval),
		audit.WithWorkerLogger(log),
		audit.WithWorkerMetrics(audit.NewMetrics()),
	)

	originCache, err := cache.New(cfg.Access.CacheSize, cfg.Access.CacheTTL)
	if err != nil {
		return err
	}
	breakerOpts := []circuit.Option{
		circuit.WithFailureThreshold(cfg.Access.BreakerThreshold),
		circuit.WithCooldown(cfg.Access.BreakerCooldown),
	}
	accessGate, err := gate.New(stores.Bans, originCache, cfg.Access.RedirectURL,
		gate.WithLogger(log),
		gate.WithMetrics(accessmetrics.New()),
		gate.WithAuditPublisher(publisher),
		gate.WithBreakers(
			circuit.New("ban-store-origin", breakerOpts...),
			circuit.New("ban-store-identity", breakerOpts...),
		),
	)
	if err != nil {
		return err
	}

	escalator, err := escalation.New(stores.Bans, stores.Claims,
		escalation.WithLogger(log),
		escalation.WithAuditPublisher(publisher),
		escalation.WithMetrics(banmetrics.New()),
		escalation.WithOriginCache(originCache),
		escalation.WithRetry(cfg.Verification.BanRetryAttempts, cfg.Verification.BanRetryBackoff),
	)
	if err != nil {
		return err
	}

	hasher, err := privacy.NewOriginHasher(cfg.Verification.OriginHashKey)
	if err != nil {
		return err
	}

	integrations, err := newIntegrations(ctx, cfg, log)
	if err != nil {
		return err
	}

	pipeline, err := service.New(stores.Claims, integrations.classifier, integrations.artifacts, escalator, hasher, cfg.Access.RedirectURL,
		service.WithLogger(log),
		service.WithMetrics(verificationmetrics.New()),
		service.WithAuditPublisher(publisher),
		service.WithIdentityChecker(accessGate),
		service.WithNotifier(integrations.notifier),
		service.WithFraudThreshold(cfg.Verification.FraudThreshold),
		service.WithClassifierTimeout(cfg.Verification.ClassifierTimeout),
		service.WithMaxArtifactBytes(cfg.Verification.MaxUploadBytes),
	)
	if err != nil {
		return err
	}
	reviewer, err := review.New(stores.Claims, escalator, log)
	if err != nil {
		return err
	}

	checks := map[string]httptransport.Pinger{}
	if stores.DB != nil {
		checks["postgres"] = stores.DB
	}
	if stores.Redis != nil {
		checks["redis"] = httptransport.PingFunc(stores.Redis.Health)
	}

	router := httptransport.NewRouter(httptransport.Deps{
		Logger:         log,
		TrustProxy:     cfg.Server.TrustProxy,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        metrics.New(),
		Access:         accessGate,
		Claims:         handler.New(pipeline, reviewer, cfg.Verification.MaxUploadBytes, log),
		Admin:          adminMiddleware(cfg.Admin, log),
		Health:         httptransport.NewHealth(log, checks),
	})
	srv := httpserver.New(cfg.Server.Addr, router)

	log.Info("starting fraudgate",
		"addr", cfg.Server.Addr,
		"environment", cfg.Server.Environment,
		"ban_backend", string(stores.BanBackend),
		"claim_backend", string(stores.ClaimBackend),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return httpserver.Serve(gctx, srv, cfg.Server.ShutdownTimeout, log)
	})
	g.Go(func() error {
		return auditWorker.Run(gctx)
	})
	return g.Wait()
}

// adminMiddleware returns nil when neither a static token nor a JWT key is
// configured, which leaves the operator routes unmounted.
func adminMiddleware(cfg config.Admin, log *slog.Logger) func(http.Handler) http.Handler {
	if cfg.Token == "" && cfg.JWTSigningKey == "" {
		return nil
	}
	var validator admin.TokenValidator
	if cfg.JWTSigningKey != "" {
		validator = jwttoken.NewJWTService(cfg.JWTSigningKey, cfg.JWTIssuer, cfg.JWTAudience)
	}
	return admin.RequireAdmin(admin.Config{StaticToken: cfg.Token, Emails: cfg.Emails}, validator, log)
}

// auditSink ships to Kafka when brokers are configured and to the log otherwise.
func auditSink(ctx context.Context, cfg config.Config, log *slog.Logger) (audit.Sink, func(), error) {
	if len(cfg.Kafka.Brokers) == 0 {
		return audit.NewLogSink(log), func() {}, nil
	}
	sink, err := kafka.NewSink(cfg.Kafka.Brokers, cfg.Kafka.Topic)
	if err != nil {
		return nil, nil, fmt.Errorf("audit sink: %w", err)
	}
	if err := sink.EnsureTopic(ctx, -1, -1); err != nil {
		log.Warn("could not ensure audit topic", "topic", cfg.Kafka.Topic, "error", err)
	}
	return sink, sink.Close, nil
}
