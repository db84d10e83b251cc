package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"prediction-escrow/internal/auth"
	"prediction-escrow/internal/blockchain"
	"prediction-escrow/internal/config"
	"prediction-escrow/internal/database"
	"prediction-escrow/internal/handlers"
	"prediction-escrow/internal/jobs"
	"prediction-escrow/internal/ledger"
	"prediction-escrow/internal/logger"
	"prediction-escrow/internal/repository"
	"prediction-escrow/internal/services"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zl, err := logger.New(cfg.Log)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer func() { _ = zl.Sync() }()

	auth.InitJWT(cfg.App.JWTSecret)

	if err := database.Connect(cfg.Database.Driver, cfg.GetDSN(), zl); err != nil {
		zl.Fatal("failed to connect to database", zap.Error(err))
	}
	if err := database.AutoMigrate(database.GetDB(), zl); err != nil {
		zl.Fatal("failed to run migrations", zap.Error(err))
	}

	deriver, err := blockchain.NewDeriver(cfg.Solana.ProgramID)
	if err != nil {
		zl.Fatal("invalid program id", zap.Error(err))
	}

	repo := repository.NewRepository(database.GetDB())
	l := ledger.New(repo, deriver.ProgramID(), ledger.SystemClock, zl.Named("ledger"))

	authService := services.NewAuthService(repo, zl.Named("auth"))
	vaultService := services.NewVaultService(deriver, zl.Named("vault"))
	competitionService := services.NewCompetitionService(l, deriver, vaultService, zl.Named("competition"))

	authHandler := handlers.NewAuthHandler(authService, zl)
	competitionHandler := handlers.NewCompetitionHandler(competitionService, zl)
	accountHandler := handlers.NewAccountHandler(competitionService, cfg.App.EnableAirdrop, zl)
	probes := blockchain.DiagnosticProbes{Database: repo.Ping}
	if cfg.Solana.CheckCluster {
		cluster := blockchain.NewClusterClient(cfg.Solana.Network, cfg.Solana.RPCURL)
		probes.Cluster = cluster.Ping
		zl.Info("cluster health checks enabled", zap.String("endpoint", cluster.Endpoint()))
	}
	healthHandler := handlers.NewHealthHandler(deriver, cfg.Solana.Network, probes, zl)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runner := jobs.NewRunner(zl.Named("cron"), ctx)
	staleMonitor := jobs.NewStaleMonitor(repo, ledger.SystemClock, zl.Named("stale"))
	if _, err := runner.Add("stale-competitions", cfg.Jobs.StaleScanSpec, staleMonitor.Run); err != nil {
		zl.Fatal("failed to schedule stale monitor", zap.Error(err))
	}
	runner.Start()

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestLogger(zl.Named("http")))

	allowedOrigins := []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}
	if cfg.Server.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.Server.FrontendURL)
	}
	router.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/health", healthHandler.Health)
	router.GET("/health/diagnostics", healthHandler.Diagnostics)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/wallet", authHandler.WalletLogin)
		authRoutes.POST("/logout", authHandler.Logout)
		authRoutes.GET("/me", auth.AuthMiddleware(zl), authHandler.GetMe)
	}

	// Public reads
	router.GET("/api/competitions", competitionHandler.GetCompetitions)
	router.GET("/api/competitions/:id", competitionHandler.GetCompetition)
	router.GET("/api/competitions/:id/predictions", competitionHandler.GetPredictions)
	router.GET("/api/competitions/:id/vault", competitionHandler.GetVault)
	router.GET("/api/accounts/:address/balance", accountHandler.GetBalance)

	// Instructions signed by the authenticated wallet
	api := router.Group("/api")
	api.Use(auth.AuthMiddleware(zl))
	{
		api.POST("/competitions", competitionHandler.CreateCompetition)
		api.POST("/competitions/:id/predictions", competitionHandler.SubmitPrediction)
		api.GET("/competitions/:id/predictions/me", competitionHandler.GetMyPrediction)
		api.POST("/competitions/:id/resolve", competitionHandler.ResolveCompetition)
		api.POST("/dev/airdrop", accountHandler.Airdrop)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	go func() {
		zl.Info("server starting",
			zap.String("port", cfg.Server.Port),
			zap.String("program_id", deriver.ProgramID().String()),
			zap.String("db_driver", cfg.Database.Driver),
			zap.Bool("airdrop", cfg.App.EnableAirdrop))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zl.Fatal("failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	zl.Info("shutting down server")
	runner.Stop()
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		zl.Error("server forced to shutdown", zap.Error(err))
	}

	zl.Info("server exited")
}

func requestLogger(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}
