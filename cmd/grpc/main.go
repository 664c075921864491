package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fekuna/omnipos-catalog-service/config"
	"github.com/fekuna/omnipos-catalog-service/internal/auth"
	"github.com/fekuna/omnipos-catalog-service/internal/category/cache"
	"github.com/fekuna/omnipos-catalog-service/internal/category/events"
	catH "github.com/fekuna/omnipos-catalog-service/internal/category/handler"
	catRepoPkg "github.com/fekuna/omnipos-catalog-service/internal/category/repository"
	"github.com/fekuna/omnipos-catalog-service/internal/category/search"
	catUCPkg "github.com/fekuna/omnipos-catalog-service/internal/category/usecase"
	"github.com/fekuna/omnipos-catalog-service/internal/database"
	"github.com/fekuna/omnipos-catalog-service/internal/logger"
	"github.com/fekuna/omnipos-catalog-service/internal/server"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"
)

const serviceName = "omnipos.catalog.v1.CategoryService"

func main() {
	// 1. Load Configuration
	_ = godotenv.Load() // Load .env file if it exists
	cfg := config.LoadEnv()

	// 2. Initialize Logger
	logConfig := &logger.ZapLoggerConfig{
		IsDevelopment:     false,
		Encoding:          cfg.Logger.Encoding,
		Level:             cfg.Logger.Level,
		DisableCaller:     cfg.Logger.DisableCaller,
		DisableStacktrace: cfg.Logger.DisableStacktrace,
	}
	if cfg.Server.AppEnv == "development" || cfg.Server.AppEnv == "dev" {
		logConfig.IsDevelopment = true
	}

	appLogger := logger.NewZapLogger(logConfig)
	defer appLogger.Sync()

	// 3. Connect to Database
	db, err := database.Connect(cfg.Database, appLogger)
	if err != nil {
		appLogger.Fatal("Could not connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.Migrate {
		if err := database.Migrate(db, appLogger); err != nil {
			appLogger.Fatal("Could not migrate database", zap.Error(err))
		}
	}

	// 4. Initialize Repository
	catRepo := catRepoPkg.NewSQLRepository(db)

	var opts []catUCPkg.Option

	// 5. Initialize Redis
	if cfg.Redis.Enabled {
		redisClient, err := cache.Connect(cfg.Redis, appLogger)
		if err != nil {
			appLogger.Warn("Could not connect to Redis, tree cache disabled", zap.Error(err))
		} else {
			defer redisClient.Close()
			opts = append(opts, catUCPkg.WithTreeCache(cache.NewRedisTreeCache(redisClient, cfg.Redis.TreeTTL)))
		}
	}

	// 6. Initialize Kafka Publisher
	if cfg.Kafka.Enabled {
		publisher := events.NewKafkaPublisher(cfg.Kafka, appLogger)
		defer publisher.Close()
		opts = append(opts, catUCPkg.WithPublisher(publisher))
	}

	// 7. Initialize Elasticsearch
	if cfg.Elastic.Enabled {
		esClient, err := search.NewClient(cfg.Elastic)
		if err != nil {
			appLogger.Warn("Could not create Elasticsearch client (search sync disabled)", zap.Error(err))
		} else {
			indexer := search.NewElasticIndexer(esClient, cfg.Elastic.Index, appLogger)
			if err := indexer.EnsureIndex(context.Background()); err != nil {
				appLogger.Warn("Could not prepare search index", zap.Error(err))
			}
			opts = append(opts, catUCPkg.WithIndexer(indexer))
		}
	}

	// 8. Initialize UseCase and load the collection
	catUC := catUCPkg.NewCategoryUseCase(catRepo, appLogger, opts...)
	if err := catUC.Reload(context.Background()); err != nil {
		appLogger.Fatal("Could not load categories", zap.Error(err))
	}

	// 9. Start HTTP Server
	catHandler := catH.NewCategoryHandler(catUC, appLogger)
	httpServer := &http.Server{
		Addr:    normalizePort(cfg.Server.HTTPPort),
		Handler: server.NewRouter(catHandler, appLogger),
	}
	go func() {
		appLogger.Info("Starting HTTP server", zap.String("addr", httpServer.Addr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLogger.Fatal("failed to serve http", zap.Error(err))
		}
	}()

	// 10. Start gRPC Server
	port := normalizePort(cfg.Server.GRPCPort)
	lis, err := net.Listen("tcp", port)
	if err != nil {
		appLogger.Fatal("failed to listen", zap.String("port", port), zap.Error(err))
	}

	grpcServer := grpc.NewServer(
		grpc.UnaryInterceptor(auth.UnaryServerInterceptor()),
	)
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus("", healthpb.HealthCheckResponse_SERVING)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)

	// Register Reflection
	reflection.Register(grpcServer)

	appLogger.Info("Starting gRPC server", zap.String("port", port))

	// Graceful Shutdown
	go func() {
		if err := grpcServer.Serve(lis); err != nil {
			appLogger.Fatal("failed to serve", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")
	healthServer.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		appLogger.Error("HTTP server shutdown failed", zap.Error(err))
	}
	grpcServer.GracefulStop()
	appLogger.Info("Server stopped")
}

func normalizePort(port string) string {
	if !strings.HasPrefix(port, ":") && !strings.Contains(port, ":") {
		return ":" + port
	}
	return port
}
