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
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/reflection"

	"github.com/stemcomputerscienceclub/STEMuiz/config"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/auth"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/game"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/handlers"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/logger"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/middleware"
	"github.com/stemcomputerscienceclub/STEMuiz/internal/repository"
	ws "github.com/stemcomputerscienceclub/STEMuiz/internal/websocket"
	"github.com/stemcomputerscienceclub/STEMuiz/pkg/cache"
	"github.com/stemcomputerscienceclub/STEMuiz/pkg/database"
	"github.com/stemcomputerscienceclub/STEMuiz/pkg/messaging"
)

const serviceName = "game-service"

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log, err := logger.New(cfg)
	if err != nil {
		panic(err)
	}
	defer log.Sync()
	log.Info("configuration loaded", zap.String("env", cfg.Env))

	pgClient, err := database.NewPostgresClient(&cfg.DB)
	if err != nil {
		log.Fatal("failed to connect to PostgreSQL", zap.Error(err))
	}
	log.Info("connected to PostgreSQL")
	defer pgClient.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := pgClient.InitSchema(ctx); err != nil {
		log.Warn("failed to initialize PostgreSQL schema", zap.Error(err))
	} else {
		log.Info("PostgreSQL schema initialized")
	}
	cancel()

	readiness := map[string]handlers.Pinger{"postgres": pgClient}
	hubCfg := ws.HubConfig{
		GCDelay: cfg.Game.SessionGCDelay,
		Logger:  log,
		Game: game.Options{
			DefaultTimeLimit:   cfg.Game.DefaultTimeLimit,
			DefaultPoints:      cfg.Game.DefaultPoints,
			MinComebackPlayers: cfg.Game.MinComebackPlayers,
		},
	}

	redisClient, err := cache.NewRedisClient(&cfg.Redis)
	if err != nil {
		log.Warn("failed to connect to Redis, snapshots stay in memory", zap.Error(err))
	} else {
		log.Info("connected to Redis")
		defer redisClient.Close()
		readiness["redis"] = redisClient
		hubCfg.Snapshots = cache.NewSnapshotStore(redisClient, cfg.Redis.SnapshotTTL)
	}

	publisher, err := messaging.NewPublisher(&cfg.RabbitMQ)
	if err != nil {
		log.Warn("failed to connect to RabbitMQ, game events will not be published", zap.Error(err))
	} else {
		log.Info("connected to RabbitMQ", zap.String("exchange", cfg.RabbitMQ.Exchange))
		defer publisher.Close()
		hubCfg.Events = publisher
	}

	sessionRepo := repository.NewSessionRepository(pgClient.GetDB())
	hubCfg.Sessions = sessionRepo

	hub := ws.NewHub(hubCfg)
	hubCtx, stopHub := context.WithCancel(context.Background())
	go hub.Run(hubCtx)
	log.Info("websocket hub started")

	verifier := auth.NewVerifier(cfg.Auth.JWTSecret)
	if !verifier.Enabled() {
		log.Warn("auth.jwt_secret is empty, host tokens are not verified")
	}

	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := handlers.Router{
		WebSocket: handlers.NewWebSocketHandler(hub, cfg.Server.AllowedOrigins, verifier, sessionRepo, log),
		Sessions:  handlers.NewSessionHandler(sessionRepo, log),
		Health:    handlers.NewHealthHandler(readiness),
		Auth:      middleware.Authenticate(verifier),
	}.Engine()

	httpServer := &http.Server{
		Addr:    ":" + cfg.Server.HTTPPort,
		Handler: router,
	}
	log.Info("HTTP server starting", zap.String("port", cfg.Server.HTTPPort))
	go func() {
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("failed to start HTTP server", zap.Error(err))
		}
	}()

	grpcServer := grpc.NewServer()
	healthServer := health.NewServer()
	healthpb.RegisterHealthServer(grpcServer, healthServer)
	healthServer.SetServingStatus(serviceName, healthpb.HealthCheckResponse_SERVING)
	reflection.Register(grpcServer)

	log.Info("gRPC health server starting", zap.String("port", cfg.Server.GRPCPort))
	go func() {
		lis, err := net.Listen("tcp", ":"+cfg.Server.GRPCPort)
		if err != nil {
			log.Fatal("failed to listen on gRPC port", zap.Error(err))
		}
		if err := grpcServer.Serve(lis); err != nil {
			log.Fatal("failed to serve gRPC", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")
	healthServer.Shutdown()

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Warn("HTTP server shutdown", zap.Error(err))
	}

	stopHub()
	<-hub.Done()
	grpcServer.GracefulStop()

	log.Info("game service stopped")
}
