// Package main Storefront Orders API
//
// Order placement and lifecycle service. Checkout reserves stock for every
// cart line in one transaction; cancellation gives it back.
//
//	@title			Storefront Orders API
//	@version		1.0
//	@description	Order placement and lifecycle with an inventory-reserving checkout
//
//	@BasePath	/
//	@schemes	http https
//
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	_ "go-storefront/docs/swagger"
	catalogadapters "go-storefront/internal/catalog/adapters"
	catalogapp "go-storefront/internal/catalog/application"
	cataloginfra "go-storefront/internal/catalog/infrastructure"
	"go-storefront/internal/orders/adapters"
	"go-storefront/internal/orders/application"
	"go-storefront/internal/orders/infrastructure"
	"go-storefront/internal/orders/ports"
	"go-storefront/pkg/auth"
	"go-storefront/pkg/config"
	"go-storefront/pkg/db"
	"go-storefront/pkg/events"
	grpcpkg "go-storefront/pkg/grpc"
	"go-storefront/pkg/kafka"
	"go-storefront/pkg/logger"
	"go-storefront/pkg/metrics"
	"go-storefront/pkg/middleware"
	"go-storefront/pkg/rabbitmq"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.New("orders-service", "info").Fatal("failed to load config", zap.Error(err))
	}

	log := logger.New(cfg.ServiceName, cfg.LogLevel)
	defer log.Sync()

	log.Info("starting orders service", zap.String("events_broker", cfg.EventsBroker))

	dbConn, err := db.NewConnection(db.Config{DSN: cfg.DSN(), Timeout: cfg.DBTimeout})
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	log.Info("connected to database")

	// products own the table order lines reference, so they migrate first
	products := catalogadapters.NewPostgresProductRepository(dbConn)
	if err := products.Migrate(); err != nil {
		log.Fatal("failed to migrate products", zap.Error(err))
	}
	store := adapters.NewPostgresOrderStore(dbConn)
	if err := store.Migrate(); err != nil {
		log.Fatal("failed to migrate orders", zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	var rabbitConn *rabbitmq.Connection
	var publisher ports.EventPublisher
	switch cfg.EventsBroker {
	case config.BrokerRabbitMQ:
		rabbitConn, err = rabbitmq.NewConnection(cfg.RabbitMQURL, log)
		if err != nil {
			log.Warn("failed to connect to RabbitMQ, events will be disabled", zap.Error(err))
			break
		}
		defer rabbitConn.Close()
		pub, err := rabbitmq.NewPublisher(rabbitConn, events.ExchangeOrders, log)
		if err != nil {
			log.Warn("failed to create publisher", zap.Error(err))
			break
		}
		publisher = adapters.NewBrokerPublisher(pub)
	case config.BrokerKafka:
		pub, err := kafka.NewPublisher(kafka.NewClient(cfg.KafkaBrokers), events.ExchangeOrders, log)
		if err != nil {
			log.Warn("kafka publisher disabled", zap.Error(err))
			break
		}
		defer pub.Close()
		publisher = adapters.NewBrokerPublisher(pub)
	}

	useCase := application.NewOrderUseCase(store, publisher, adapters.NewOrderMetrics(registry), log, application.Options{
		MaxAttempts: cfg.TxMaxAttempts,
		RetryDelay:  cfg.TxRetryDelay,
	})

	if rabbitConn != nil {
		consumer, err := adapters.NewFulfillmentConsumer(rabbitConn, useCase, log)
		if err != nil {
			log.Warn("fulfillment consumer disabled", zap.Error(err))
		} else if err := consumer.Start(ctx); err != nil {
			log.Warn("fulfillment consumer disabled", zap.Error(err))
		}
	}

	verifier := auth.NewVerifier(cfg.JWTSecret, cfg.JWTIssuer)
	httpServer := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      setupRouter(log, registry, products, useCase, verifier),
		ReadTimeout:  cfg.HTTPTimeout,
		WriteTimeout: cfg.HTTPTimeout,
	}

	grpcServer := setupGRPCServer(cfg, log, useCase, verifier)
	lis, err := net.Listen("tcp", ":"+cfg.GRPCPort)
	if err != nil {
		log.Fatal("failed to listen for gRPC", zap.Error(err))
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening", zap.String("port", cfg.HTTPPort))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		log.Info("gRPC server listening", zap.String("port", cfg.GRPCPort))
		return grpcServer.Serve(lis)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down servers")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		grpcServer.GracefulStop()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error("server stopped with error", zap.Error(err))
		return
	}
	log.Info("servers stopped")
}

func setupRouter(
	log *logger.Logger,
	registry *prometheus.Registry,
	products *catalogadapters.PostgresProductRepository,
	useCase *application.OrderUseCase,
	verifier *auth.Verifier,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(middleware.TraceID())
	router.Use(middleware.RequestLogger(log))
	router.Use(middleware.ErrorHandler(log))
	router.Use(middleware.CORS())
	router.Use(middleware.Metrics(metrics.NewServerMetrics(registry, "orders")))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler(registry)))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	authenticate := middleware.Authenticate(verifier)
	cataloginfra.NewHTTPHandler(catalogapp.NewProductUseCase(products, log)).RegisterRoutes(&router.RouterGroup, authenticate)
	infrastructure.NewHTTPHandler(useCase).RegisterRoutes(&router.RouterGroup, authenticate)

	return router
}

func setupGRPCServer(cfg *config.Config, log *logger.Logger, useCase *application.OrderUseCase, verifier *auth.Verifier) *grpc.Server {
	opts := grpcpkg.ServerOptions(log, cfg.GRPCTimeout)

	if cfg.GRPCMTLSEnabled {
		creds, err := grpcpkg.ServerCredentials(cfg.TLSCertFile, cfg.TLSKeyFile, cfg.TLSCAFile)
		if err != nil {
			log.Fatal("failed to load TLS config", zap.Error(err))
		}
		opts = append(opts, creds)
		log.Info("gRPC mTLS enabled")
	}

	server := grpc.NewServer(opts...)
	infrastructure.NewGRPCServer(useCase, verifier).Register(server)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(infrastructure.OrderQueryServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server
}
