package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"hara-wellness-system/handlers"
	"hara-wellness-system/middleware"
	"hara-wellness-system/models"
	"hara-wellness-system/services"
	"hara-wellness-system/utils"
	"hara-wellness-system/workers"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, reading environment variables directly")
	}

	if err := utils.InitLogger(os.Getenv("LOG_LEVEL"), os.Getenv("LOG_PATH")); err != nil {
		log.Fatal("failed to initialize logger:", err)
	}
	defer utils.Logger.Sync()

	app := fiber.New(fiber.Config{
		BodyLimit: 25 * 1024 * 1024, // voice notes stay small
	})

	// Only Gateway requests allowed — no exceptions
	app.Use(middleware.GatewayAuthMiddleware())

	allowedOriginsEnv := os.Getenv("ALLOWED_ORIGINS")
	if allowedOriginsEnv == "" {
		utils.Sugar.Warn("ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOriginsEnv = "http://localhost:3000"
	}
	allowedOriginsList := strings.Split(allowedOriginsEnv, ",")
	for i, origin := range allowedOriginsList {
		allowedOriginsList[i] = strings.TrimSpace(origin)
	}
	allowedOriginsString := strings.Join(allowedOriginsList, ",")

	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOriginsString,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH,HEAD",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Requested-With, X-Request-ID, User-Agent, Cache-Control, X-Session-Token, X-Service-Token, X-Device-ID",
		ExposeHeaders:    "Content-Length, Content-Type, Authorization, X-Request-ID",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		utils.Sugar.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		utils.Sugar.Fatal("failed to initialize R2 client: ", err)
	}

	redisDB, _ := strconv.Atoi(os.Getenv("REDIS_DB"))
	utils.ConfigureRedis(os.Getenv("REDIS_ADDR"), os.Getenv("REDIS_PASSWORD"), redisDB)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		utils.Sugar.Fatal("failed to connect to database: ", err)
	}

	if err := db.AutoMigrate(
		&models.CheckInEntry{},
		&models.UserProgression{},
		&models.AchievementGrant{},
		&models.ProfileMirror{},
		&models.PortfolioMirror{},
	); err != nil {
		utils.Sugar.Fatal("failed to migrate database: ", err)
	}

	clock := services.SystemClock()
	checkInService := services.NewCheckInService(db, clock, utils.Sugar)
	progressionStore := services.NewGormProgressionStore(db)
	gamificationService := services.NewGamificationService(progressionStore, checkInService, clock, utils.Sugar)
	insightClient := services.NewInsightClient(
		os.Getenv("AI_GATEWAY_URL"),
		os.Getenv("AI_GATEWAY_TOKEN"),
		utils.Sugar,
	)
	reminderService := services.NewReminderService(db, clock, os.Getenv("REMINDER_WEBHOOK_URL"), utils.Sugar)

	profileServiceURL := os.Getenv("PROFILE_SERVICE_URL")
	if profileServiceURL == "" {
		utils.Sugar.Fatal("PROFILE_SERVICE_URL environment variable not set")
	}
	serviceToken := os.Getenv("HARA_SERVICE_TOKEN")
	if serviceToken == "" {
		utils.Sugar.Fatal("HARA_SERVICE_TOKEN environment variable not set")
	}

	profileSyncWorker := workers.NewProfileSyncWorker(db, profileServiceURL, "/api/v1/public/profiles", serviceToken)

	portfolioSyncClient := workers.NewPortfolioSyncClient(db)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go workers.PollPortfolios(ctx, portfolioSyncClient, 10*time.Minute)

	profileSyncWorker.Start(ctx)

	reminderService.StartReminderScheduler()

	handlers.SetupCheckInRoutes(app, checkInService, gamificationService)
	handlers.SetupProgressionRoutes(app, gamificationService, checkInService)
	handlers.SetupInsightRoutes(app, insightClient, checkInService, gamificationService)
	handlers.SetupBufferRoutes(app, db)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}
	go func() {
		if err := app.Listen(":" + port); err != nil {
			utils.Sugar.Errorw("server error", "err", err)
		}
	}()

	utils.Sugar.Infof("server running on http://localhost:%s", port)
	utils.Sugar.Info("profile sync worker running")
	utils.Sugar.Info("portfolio polling running (every 10m)")
	utils.Sugar.Info("streak reminder scheduler running")
	utils.Sugar.Infof("CORS configured for origins: %s", allowedOriginsString)

	<-ctx.Done()
	utils.Sugar.Info("shutting down server...")
	_ = app.Shutdown()
}
