package main

import (
	"context"

	config "rental-marketplace-backend/config"
	"rental-marketplace-backend/token"
	"rental-marketplace-backend/utils"

	"rental-marketplace-backend/internal/jobs"
	"rental-marketplace-backend/middleware"
	"rental-marketplace-backend/notifications"

	// Repositories
	availability_repositories "rental-marketplace-backend/availability/repositories"
	bookings_repositories "rental-marketplace-backend/bookings/repositories"
	bookings_services "rental-marketplace-backend/bookings/services"
	reservations_repositories "rental-marketplace-backend/reservations/repositories"
	reservations_services "rental-marketplace-backend/reservations/services"

	// Routes
	availability_routes "rental-marketplace-backend/availability/routes"
	bookings_routes "rental-marketplace-backend/bookings/routes"
	reservations_routes "rental-marketplace-backend/reservations/routes"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	// Initialize Zap logger
	config.InitLogger()

	// Load environment variables
	err := godotenv.Load(".env")
	if err != nil {
		config.Logger.Fatal("Error loading .env file", zap.Error(err))
	}

	// Date location
	if err := utils.InitializeDateLocation(); err != nil {
		config.Logger.Fatal("Failed to initialize date location", zap.Error(err))
	}

	app := fiber.New()

	// Apply CORS middleware from middleware package
	middleware.InitCors(app)

	// Initialize database and configs
	db := config.ConfigureDatabase()
	port := config.GetEnv("PORT")
	ctx := context.Background()

	// Redis client for Asynq, the cart store and the in-flight guard
	redisAddr := config.GetEnv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379" // Default for development
		config.Logger.Warn("REDIS_ADDRESS not set, using default: localhost:6379")
	}

	redisClient := config.InitRedisServer(ctx)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: "",
		DB:       0,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	tokenKey := config.GetEnv("TOKEN_SYMMETRIC_KEY")
	tokenMaker, err := token.NewPasetoMaker(tokenKey)
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	appCtx := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	// Initialize the mailer for counterparty notifications
	utils.InitializeMailer()

	// Repositories
	availabilityRepo := availability_repositories.NewAvailabilityRepository(db)
	bookingRepo := bookings_repositories.NewBookingRepository(db)
	cartStore := reservations_repositories.NewRedisLineStore(redisClient)

	// Services
	aggregator := reservations_services.NewAggregator(cartStore)
	guard := bookings_services.NewInflightGuard(redisClient)

	// Routes
	availability_routes.AvailabilityRouterInit(app, db, availabilityRepo, asynqClient, appCtx)
	bookings_routes.BookingRouterInit(app, db, bookingRepo, guard, asynqClient, appCtx)
	reservations_routes.ReservationRouterInit(app, db, aggregator, availabilityRepo, bookingRepo, asynqClient, appCtx)

	// Notification worker consuming produced events
	worker := notifications.StartWorker(asynqRedisOpt)
	defer worker.Shutdown()

	// Background sweep for expired maintenance overrides
	jobs.RunMaintenanceSweep(availabilityRepo)

	if port == "" {
		port = "8080"
		config.Logger.Warn("PORT not set, using default: 8080")
	}

	config.Logger.Info("Starting server", zap.String("port", port))
	if err := app.Listen(":" + port); err != nil {
		config.Logger.Fatal("Server stopped", zap.Error(err))
	}
}
