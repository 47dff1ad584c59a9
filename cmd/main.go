package main

import (
	"context"
	"fmt"
	"os"
	"time"

	redisclient "github.com/emaratgreen/esg-backend/internal/clients/redis"
	"github.com/emaratgreen/esg-backend/internal/db"
	"github.com/emaratgreen/esg-backend/internal/handlers"
	"github.com/emaratgreen/esg-backend/internal/logger"
	"github.com/emaratgreen/esg-backend/internal/middleware"
	"github.com/emaratgreen/esg-backend/internal/observability"
	"github.com/emaratgreen/esg-backend/internal/repos"
	"github.com/emaratgreen/esg-backend/internal/seed"
	"github.com/emaratgreen/esg-backend/internal/server"
	"github.com/emaratgreen/esg-backend/internal/services"
	"github.com/emaratgreen/esg-backend/internal/utils"
)

func main() {
	// Logger
	logMode := os.Getenv("LOG_MODE")
	if logMode == "" {
		logMode = "development"
	}
	log, err := logger.New(logMode)
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	// Env
	log.Info("Loading environment variables from main...")
	jwtSecretKey := utils.GetEnv("JWT_SECRET_KEY", "defaultsecret", log)
	accessTokenTTL := utils.GetEnvAsInt("ACCESS_TOKEN_TTL", 3600, log)
	refreshTokenTTL := utils.GetEnvAsInt("REFRESH_TOKEN_TTL", 86400, log)
	seedPath := utils.GetEnv("SEED_FILE", "configs/frameworks.yaml", log)
	serviceName := utils.GetEnv("SERVICE_NAME", "esg-backend", log)

	// Tracing
	ctx := context.Background()
	shutdownTracing := observability.InitOTel(ctx, log, observability.OtelConfig{
		ServiceName: serviceName,
		Environment: logMode,
		Version:     os.Getenv("SERVICE_VERSION"),
	})
	if shutdownTracing != nil {
		defer shutdownTracing(ctx)
	}

	// Postgres
	postgresService, err := db.NewPostgresService(log)
	if err != nil {
		log.Error("Postgres init failed", "error", err)
		os.Exit(1)
	}
	if err := postgresService.AutoMigrateAll(); err != nil {
		log.Error("Postgres auto migration failed", "error", err)
		os.Exit(1)
	}
	thePG := postgresService.DB()

	// Redis (optional)
	cache, err := redisclient.NewCache(log)
	if err != nil {
		log.Warn("Redis init failed, continuing without cache", "error", err)
		cache = nil
	}

	// Repos
	log.Info("Setting up repos from main...")
	userRepo := repos.NewUserRepo(thePG, log)
	userTokenRepo := repos.NewUserTokenRepo(thePG, log)
	emailTokenRepo := repos.NewEmailTokenRepo(thePG, log)
	companyRepo := repos.NewCompanyRepo(thePG, log)
	siteRepo := repos.NewSiteRepo(thePG, log)
	activityRepo := repos.NewActivityRepo(thePG, log)
	frameworkRepo := repos.NewFrameworkRepo(thePG, log)
	frameworkElementRepo := repos.NewFrameworkElementRepo(thePG, log)
	companyFrameworkRepo := repos.NewCompanyFrameworkRepo(thePG, log)
	profileRepo := repos.NewProfileRepo(thePG, log)
	checklistRepo := repos.NewChecklistRepo(thePG, log)
	meterRepo := repos.NewMeterRepo(thePG, log)
	submissionRepo := repos.NewSubmissionRepo(thePG, log)
	assignmentRepo := repos.NewAssignmentRepo(thePG, log)

	// Reference data
	seedFile, err := seed.Load(seedPath)
	if err != nil {
		log.Error("Could not load seed file", "path", seedPath, "error", err)
		os.Exit(1)
	}
	seeder := seed.NewSeeder(thePG, log, frameworkRepo, frameworkElementRepo, profileRepo, activityRepo)
	if err := seeder.Run(ctx, seedFile); err != nil {
		log.Error("Seeding failed", "error", err)
		os.Exit(1)
	}

	// Services
	log.Info("Setting up services from main...")
	avatarService := services.NewAvatarService(log)
	notifier := services.NewLogNotifier(log)
	authService := services.NewAuthService(
		thePG, log,
		userRepo, userTokenRepo, emailTokenRepo,
		avatarService, notifier,
		jwtSecretKey,
		time.Duration(accessTokenTTL)*time.Second,
		time.Duration(refreshTokenTTL)*time.Second,
	)
	userService := services.NewUserService(thePG, log, userRepo, userTokenRepo, emailTokenRepo, avatarService, notifier)
	conditionEvaluator := services.NewConditionEvaluator(log)
	frameworkService := services.NewFrameworkService(thePG, log, frameworkRepo, companyFrameworkRepo)
	frameworkProcessor := services.NewFrameworkProcessor(log, conditionEvaluator, frameworkService, frameworkElementRepo, activityRepo, profileRepo)
	checklistService := services.NewChecklistService(thePG, log, frameworkProcessor, checklistRepo)
	meterService := services.NewMeterService(thePG, log, meterRepo, checklistRepo, submissionRepo)
	dataCollectionService := services.NewDataCollectionService(thePG, log, checklistRepo, meterRepo, submissionRepo, frameworkElementRepo, siteRepo)
	dashboardService := services.NewDashboardService(thePG, log, cache, companyFrameworkRepo, checklistRepo, meterRepo, dataCollectionService)
	companyService := services.NewCompanyService(thePG, log, companyRepo, siteRepo, activityRepo, profileRepo, userRepo, frameworkService, checklistService, meterService)
	siteService := services.NewSiteService(thePG, log, siteRepo, checklistService, meterService)
	assignmentService := services.NewAssignmentService(thePG, log, assignmentRepo, frameworkElementRepo, userRepo)

	// Handlers
	log.Info("Setting up handlers from main...")
	healthcheckHandler := handlers.NewHealthcheckHandler(thePG)
	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(userService)
	companyHandler := handlers.NewCompanyHandler(userService, companyService)
	siteHandler := handlers.NewSiteHandler(userService, companyService, siteService)
	frameworkHandler := handlers.NewFrameworkHandler(userService, companyService, frameworkService)
	checklistHandler := handlers.NewChecklistHandler(userService, companyService, checklistService)
	meterHandler := handlers.NewMeterHandler(userService, companyService, meterService)
	dataCollectionHandler := handlers.NewDataCollectionHandler(userService, companyService, dataCollectionService, dashboardService)
	dashboardHandler := handlers.NewDashboardHandler(userService, companyService, dashboardService)
	assignmentHandler := handlers.NewAssignmentHandler(userService, companyService, assignmentService)

	// Middleware
	authMiddleware := middleware.NewAuthMiddleware(log, authService)

	// Router
	log.Info("Setting up router from main...")
	router := server.NewRouter(server.RouterConfig{
		ServiceName:           serviceName,
		CORSOrigins:           server.ParseOrigins(utils.GetEnv("CORS_ORIGINS", "", log)),
		AuthMiddleware:        authMiddleware,
		HealthcheckHandler:    healthcheckHandler,
		AuthHandler:           authHandler,
		UserHandler:           userHandler,
		CompanyHandler:        companyHandler,
		SiteHandler:           siteHandler,
		FrameworkHandler:      frameworkHandler,
		ChecklistHandler:      checklistHandler,
		MeterHandler:          meterHandler,
		DataCollectionHandler: dataCollectionHandler,
		DashboardHandler:      dashboardHandler,
		AssignmentHandler:     assignmentHandler,
	})

	port := utils.GetEnv("PORT", "8080", log)
	log.Info("Server listening", "port", port)
	if err := router.Run(":" + port); err != nil {
		log.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
