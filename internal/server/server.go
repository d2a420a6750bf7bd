// Package server wires the payment service together and registers its routes.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/cyphera/cyphera-agentpay/internal/catalog"
	"github.com/cyphera/cyphera-agentpay/internal/chain"
	awsclient "github.com/cyphera/cyphera-agentpay/internal/client/aws"
	"github.com/cyphera/cyphera-agentpay/internal/config"
	"github.com/cyphera/cyphera-agentpay/internal/constants"
	"github.com/cyphera/cyphera-agentpay/internal/db"
	"github.com/cyphera/cyphera-agentpay/internal/handlers"
	"github.com/cyphera/cyphera-agentpay/internal/ledger"
	"github.com/cyphera/cyphera-agentpay/internal/logger"
	"github.com/cyphera/cyphera-agentpay/internal/middleware"
	"github.com/cyphera/cyphera-agentpay/internal/notify"
	"github.com/cyphera/cyphera-agentpay/internal/onchain"
	"github.com/cyphera/cyphera-agentpay/internal/payment"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
)

// Server holds the wired dependencies of the API.
type Server struct {
	cfg         *config.Config
	router      *gin.Engine
	pool        *pgxpool.Pool
	chainClient *chain.Client
	ledger      *ledger.Ledger
	engine      *payment.Engine
	rateLimiter *middleware.RateLimiter
}

// LoadConfig loads configuration, resolving *_ARN secrets through Secrets Manager.
func LoadConfig(ctx context.Context) (*config.Config, error) {
	awsCfg, err := awsclient.LoadConfig(ctx, os.Getenv("AWS_REGION"), os.Getenv("AWS_ENDPOINT_URL"))
	if err != nil {
		return nil, err
	}
	return config.Load(ctx, awsclient.NewSecretsManagerClient(awsCfg))
}

// New connects to every backing service and builds the router.
func New(ctx context.Context, cfg *config.Config) (*Server, error) {
	s := &Server{cfg: cfg}

	registry, err := chain.NewRegistry(cfg.SupportedNetworks)
	if err != nil {
		return nil, err
	}

	var (
		items catalog.Store
		store ledger.Store
	)
	switch cfg.LedgerBackend {
	case constants.LedgerBackendPostgres:
		pool, err := newPool(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, err
		}
		s.pool = pool
		if cfg.AutoMigrate {
			if err := db.Migrate(ctx, pool); err != nil {
				s.Close()
				return nil, err
			}
		}
		items = catalog.NewPostgresStore(db.New(pool))
		store = ledger.NewPostgresStore(pool)
	default:
		logger.Warn("Using in-memory ledger; purchases are lost on restart")
		items = catalog.NewMemoryStore()
		store = ledger.NewMemoryStore()
	}

	if cfg.CatalogSeedFile != "" {
		seed, err := catalog.LoadSeedFile(cfg.CatalogSeedFile)
		if err != nil {
			s.Close()
			return nil, err
		}
		if err := catalog.Seed(ctx, items, seed); err != nil {
			s.Close()
			return nil, fmt.Errorf("failed to seed catalog: %w", err)
		}
		logger.Info("Catalog seeded", zap.Int("items", len(seed)))
	}

	s.chainClient = chain.NewClient(registry, chain.ClientConfig{
		RPCAPIKey: cfg.RPCAPIKey,
		RPCURLs:   cfg.RPCURLs,
		Timeout:   cfg.ChainTimeout,
	})
	if err := s.chainClient.Initialize(ctx); err != nil {
		s.Close()
		return nil, fmt.Errorf("failed to initialize chain client: %w", err)
	}

	publisher, err := newPublisher(ctx, cfg)
	if err != nil {
		s.Close()
		return nil, err
	}

	s.ledger = ledger.New(store)
	s.engine = payment.NewEngine(s.ledger, onchain.NewVerifier(s.chainClient, registry), publisher, payment.Config{
		PayeeAddress: cfg.PayeeAddress,
		Networks:     registry,
	})

	s.rateLimiter = middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst)
	s.router = s.routes(
		handlers.NewPurchaseHandler(items, s.engine, s.ledger),
		handlers.NewAuthorizationHandler(s.ledger, nil),
	)
	return s, nil
}

// Router returns the HTTP handler.
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) routes(purchases *handlers.PurchaseHandler, authorizations *handlers.AuthorizationHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.CorrelationIDMiddleware())
	router.Use(middleware.RequestLoggingMiddleware(s.cfg.IsDevelopment()))
	router.Use(configureCORS(s.cfg.CORSAllowedOrigins))

	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	router.GET("/health", handlers.NewHealthHandler().Health)

	v1 := router.Group("/api/v1")
	v1.Use(s.rateLimiter.Middleware())
	{
		v1.GET("/items", purchases.ListItems)
		v1.POST("/items/:item_id/purchase", purchases.Purchase)
		v1.GET("/purchases/:purchase_id", purchases.GetPurchase)

		if s.cfg.JWTSecret == "" {
			logger.Warn("JWT_SECRET not set; spending authorization routes are disabled")
		} else {
			auth := middleware.NewJWTAuth(s.cfg.JWTSecret)
			protected := v1.Group("/authorizations")
			protected.Use(auth.RequireAuth())
			{
				protected.POST("", authorizations.CreateAuthorization)
				protected.GET("/:authorization_id", authorizations.GetAuthorization)
				protected.POST("/:authorization_id/cancel", authorizations.CancelAuthorization)
			}
		}
	}

	return router
}

// RunExpirySweep deactivates expired spending authorizations every interval
// until ctx is cancelled.
func (s *Server) RunExpirySweep(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.ExpirySweep)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if _, err := s.ledger.ExpireAuthorizations(ctx, now.UTC()); err != nil {
				logger.Error("Failed to expire spending authorizations", zap.Error(err))
			}
		}
	}
}

// WaitForNotifications blocks until purchase events published in the background
// have been delivered or have failed.
func (s *Server) WaitForNotifications() {
	if s.engine != nil {
		s.engine.Wait()
	}
}

// Close waits for pending notifications and releases connections held by the server.
func (s *Server) Close() {
	s.WaitForNotifications()
	if s.rateLimiter != nil {
		s.rateLimiter.Stop()
	}
	if s.chainClient != nil {
		s.chainClient.Close()
	}
	if s.pool != nil {
		s.pool.Close()
	}
}

func newPool(ctx context.Context, databaseURL string) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("unable to parse database connection string: %w", err)
	}

	poolConfig.MaxConns = 20
	poolConfig.MinConns = 5
	poolConfig.MaxConnLifetime = time.Hour
	poolConfig.MaxConnIdleTime = time.Minute * 30

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to reach database: %w", err)
	}
	return pool, nil
}

// newPublisher builds the post-commit event sinks that are configured.
func newPublisher(ctx context.Context, cfg *config.Config) (notify.Publisher, error) {
	var sinks notify.Multi

	if cfg.PurchaseEventsQueueURL != "" {
		awsCfg, err := awsclient.LoadConfig(ctx, cfg.AWSRegion, cfg.AWSEndpointURL)
		if err != nil {
			return nil, err
		}
		sinks = append(sinks, notify.NewSQSPublisher(awsclient.NewSQSClient(awsCfg), cfg.PurchaseEventsQueueURL))
		logger.Info("Purchase events will be published to SQS", zap.String("queue_url", cfg.PurchaseEventsQueueURL))
	}
	if cfg.ResendAPIKey != "" {
		sinks = append(sinks, notify.NewEmailPublisher(cfg.ResendAPIKey, cfg.ReceiptFromEmail, cfg.ReceiptFromName, cfg.ReceiptToEmails))
		logger.Info("Purchase receipts will be emailed", zap.Strings("to", cfg.ReceiptToEmails))
	}

	if len(sinks) == 0 {
		return notify.Noop{}, nil
	}
	return sinks, nil
}

func configureCORS(origins []string) gin.HandlerFunc {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = origins
	corsConfig.AllowMethods = []string{http.MethodGet, http.MethodPost, http.MethodOptions}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization", constants.PaymentHeader, constants.CorrelationIDHeader}
	corsConfig.ExposeHeaders = []string{constants.PaymentResponseHeader, constants.CorrelationIDHeader, "Retry-After"}
	return cors.New(corsConfig)
}
