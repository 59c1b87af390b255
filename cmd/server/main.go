package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron"

	config "github.com/pagecast/pagecast/configs"
	"github.com/pagecast/pagecast/internal/api/handlers"
	"github.com/pagecast/pagecast/internal/api/middleware"
	"github.com/pagecast/pagecast/internal/cache"
	job "github.com/pagecast/pagecast/internal/jobs"
	"github.com/pagecast/pagecast/internal/queue"
	"github.com/pagecast/pagecast/internal/repository"
	"github.com/pagecast/pagecast/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisURI})
	defer redisClient.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	connectionRepo := repository.NewConnectionRepository(db)
	pageRepo := repository.NewPageRepository(db)
	linkedAccountRepo := repository.NewLinkedAccountRepository(db)
	postMediaRepo := repository.NewPostMediaRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)
	connectionStore := repository.NewConnectionStore(db, connectionRepo, pageRepo, linkedAccountRepo)

	discoveryCache := cache.NewDiscoveryCache(redisClient, cfg.SecretKey)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	r2Service := service.NewR2Service(*cfg)
	facebookService := service.NewFacebookService(*cfg)
	discoveryService := service.NewDiscoveryService(*cfg)
	connectService := service.NewConnectService(facebookService, discoveryService, discoveryCache)
	selectionService := service.NewSelectionService(*cfg, discoveryCache, connectionStore)
	connectionService := service.NewConnectionService(connectionRepo, pageRepo, linkedAccountRepo, connectionStore)
	postService := service.NewPostService(*cfg, db, postRepo, pageRepo, linkedAccountRepo, mediaAssetRepo, postMediaRepo, r2Service)
	publishService := service.NewPublishService(*cfg, postRepo, pageRepo, linkedAccountRepo, mediaAssetRepo, postMediaRepo)
	scheduleService := service.NewScheduleService(*cfg, scheduleRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	facebook := handlers.NewFacebookHandler(*cfg, facebookService, connectService, selectionService)
	app.Get("/auth/facebook", authMiddleware.AuthMiddleware(), facebook.Connect)
	app.Get("/auth/facebook/callback", authMiddleware.AuthMiddleware(), facebook.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	api.Get("/facebook/discovery", facebook.Discovery)
	api.Post("/facebook/select", facebook.Select)

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	connection := handlers.NewConnectionHandler(connectionService)
	api.Get("/connections", connection.ListConnections)
	api.Post("/connections/default", connection.SetDefault)
	api.Post("/connections/disconnect", connection.Disconnect)

	schedule := handlers.NewScheduleHandler(scheduleService)
	api.Get("/schedules", schedule.GetSchedule)
	api.Post("/schedules/update", schedule.UpdateSchedule)
	api.Post("/schedules/toggle", schedule.ToggleSchedule)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	post := handlers.NewPostHandler(postService, client)
	api.Post("/posts/create", post.CreatePost)
	api.Get("/posts", post.ListPosts)
	api.Post("/posts/remove", post.RemovePost)

	// cron jobs
	refreshTokenJob := job.NewTokenRefreshJob(*cfg, connectionRepo, facebookService)
	scheduleTickJob := job.NewScheduleTickJob(scheduleRepo)

	//queue
	queueW := queue.NewQueue(publishService)

	c := cron.New()
	c.AddFunc("@every 06h00m00s", refreshTokenJob.RefreshTokens)
	c.AddFunc("@every 00h01m00s", scheduleTickJob.Tick)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeSchedulePost, queueW.HandleSchedulePostTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
