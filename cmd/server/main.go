package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/gorilla/mux"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/riyakoli232311/SHG-management/internal/config"
	"github.com/riyakoli232311/SHG-management/internal/crypto"
	"github.com/riyakoli232311/SHG-management/internal/handler"
	"github.com/riyakoli232311/SHG-management/internal/repository"
	"github.com/riyakoli232311/SHG-management/internal/service"
)

func main() {
	logger := logrus.New()
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := sql.Open("postgres", fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		cfg.DBHost, cfg.DBPort, cfg.DBUser, cfg.DBPassword, cfg.DBName,
	))
	if err != nil {
		logger.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		logger.Fatalf("Failed to ping database: %v", err)
	}

	logger.Info("Running database migrations...")
	if err := repository.RunMigrations(db); err != nil {
		logger.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		logger.Fatalf("Failed to ping Redis: %v", err)
	}
	defer redisClient.Close()

	pgpManager, err := crypto.NewPGPManager(cfg.PGPKeyPath)
	if err != nil {
		logger.Fatalf("Failed to initialize PGP: %v", err)
	}

	hmacKey := []byte(os.Getenv("HMAC_SECRET"))
	if len(hmacKey) == 0 {
		logger.Fatal("HMAC_SECRET environment variable is not set")
	}
	if len(hmacKey) < 32 {
		logger.Fatal("HMAC key must be at least 32 bytes")
	}

	logger.Info("Initializing repositories...")
	userRepo := repository.NewUserRepository(db, logger)
	shgRepo := repository.NewSHGRepository(db, logger)
	memberRepo := repository.NewMemberRepository(db, logger)
	savingRepo := repository.NewSavingRepository(db, logger)
	loanRepo := repository.NewLoanRepository(db, logger)
	repaymentRepo := repository.NewRepaymentRepository(db, logger)
	sessionRepo := repository.NewSessionRepository(redisClient, logger)
	emailSender := service.NewEmailSender(logger)

	logger.Info("Initializing services...")
	authService := service.NewAuthService(userRepo, shgRepo, cfg.JWTSecret, cfg.TokenExpiry, logger)
	shgService := service.NewSHGService(shgRepo, logger)
	memberService := service.NewMemberService(memberRepo, pgpManager, hmacKey, logger)
	savingService := service.NewSavingService(savingRepo, memberRepo, logger)
	loanService := service.NewLoanService(loanRepo, memberRepo, logger)
	repaymentService := service.NewRepaymentService(repaymentRepo, loanRepo, emailSender, logger)
	dashboardService := service.NewDashboardService(memberRepo, savingRepo, loanRepo, repaymentRepo, logger)
	assistantService := service.NewAssistantService(sessionRepo, dashboardService, cfg.LLMAPIKey, cfg.LLMBaseURL, logger)
	reportService := service.NewReportService(dashboardService, loanRepo, repaymentRepo, logger)

	logger.Info("Initializing API handlers...")
	authHandler := handler.NewAuthHandler(authService, cfg.TokenExpiry, logger)
	shgHandler := handler.NewSHGHandler(shgService, logger)
	memberHandler := handler.NewMemberHandler(memberService, logger)
	savingHandler := handler.NewSavingHandler(savingService, logger)
	loanHandler := handler.NewLoanHandler(loanService, repaymentService, logger)
	repaymentHandler := handler.NewRepaymentHandler(repaymentService, logger)
	dashboardHandler := handler.NewDashboardHandler(dashboardService, logger)
	chatHandler := handler.NewChatHandler(assistantService, logger)
	reportHandler := handler.NewReportHandler(reportService, logger)

	router := mux.NewRouter()
	router.Use(handler.CORSMiddleware(cfg.FrontendURL))

	router.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"status":"ok"}`))
	}).Methods("GET")

	// Public auth routes
	authRouter := router.PathPrefix("/api/auth").Subrouter()
	authHandler.RegisterRoutes(authRouter)

	// Routes that need a valid session but not a completed SHG setup
	sessionRouter := router.PathPrefix("/api").Subrouter()
	sessionRouter.Use(handler.AuthMiddleware(authService, shgRepo, logger))

	meRouter := sessionRouter.PathPrefix("/auth").Subrouter()
	authHandler.RegisterProtectedRoutes(meRouter)

	shgRouter := sessionRouter.PathPrefix("/shg").Subrouter()
	shgHandler.RegisterRoutes(shgRouter)

	// Domain routes, available once the SHG profile exists
	shgScoped := sessionRouter.NewRoute().Subrouter()
	shgScoped.Use(handler.RequireSHGMiddleware())

	memberHandler.RegisterRoutes(shgScoped.PathPrefix("/members").Subrouter())
	savingHandler.RegisterRoutes(shgScoped.PathPrefix("/savings").Subrouter())
	loanHandler.RegisterRoutes(shgScoped.PathPrefix("/loans").Subrouter())
	repaymentHandler.RegisterRoutes(shgScoped.PathPrefix("/repayments").Subrouter())
	dashboardHandler.RegisterRoutes(shgScoped.PathPrefix("/dashboard").Subrouter())
	chatHandler.RegisterRoutes(shgScoped.PathPrefix("/chat").Subrouter())
	reportHandler.RegisterRoutes(shgScoped.PathPrefix("/reports").Subrouter())

	logger.Info("Scheduling daily repayment reminders...")
	c := cron.New()
	_, err = c.AddFunc("0 8 * * *", func() {
		logger.Info("Running repayment reminder digest")
		if err := repaymentService.SendDueReminders(context.Background()); err != nil {
			logger.WithError(err).Error("Failed to send repayment reminders")
		}
	})
	if err != nil {
		logger.Fatalf("Failed to schedule reminders: %v", err)
	}
	c.Start()
	defer c.Stop()

	server := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	go func() {
		logger.Infof("Server listening on port :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	if err := server.Shutdown(context.Background()); err != nil {
		logger.Errorf("Server shutdown error: %v", err)
	}
	logger.Info("Server stopped")
}
