package main

import (
	"context"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/artfeed/backend/internal/config"
	"github.com/artfeed/backend/internal/db"
	"github.com/artfeed/backend/internal/handler"
	"github.com/artfeed/backend/internal/kv"
	"github.com/artfeed/backend/internal/service"
)

func main() {
	_ = godotenv.Load()

	cfg := config.Load()

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	logger := zerolog.New(os.Stdout).Level(level).With().Timestamp().Logger()

	ctx := context.Background()

	pool, err := db.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()

	store := db.New(pool, logger)
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("schema bootstrap failed")
	}

	hasher, err := service.NewPasswordHasher(cfg.Auth.PasswordScheme)
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid password scheme")
	}

	authSvc, err := service.NewAuthService(store, hasher, cfg.Auth, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("auth service init failed")
	}

	var backend service.ImageBackend
	switch cfg.Images.Store {
	case config.ImageStoreRedis:
		rdb, err := kv.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		defer rdb.Close()
		backend = kv.NewImageStore(rdb, logger)
	case config.ImageStorePostgres:
		backend = store
	default:
		logger.Fatal().Str("store", cfg.Images.Store).Msg("unknown image store")
	}

	imageSvc := service.NewImageService(backend, logger)
	articleSvc := service.NewArticleService(store, imageSvc, logger)

	authHandler := handler.NewAuthHandler(authSvc)
	feedHandler := handler.NewFeedHandler(articleSvc, imageSvc)
	userHandler := handler.NewUserHandler(authSvc)

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(handler.RequestLogger(logger))
	router.Use(handler.CORSMiddleware(cfg.HTTP.AllowOrigins, true))

	router.GET("/ping", handler.Ping)
	router.GET("/", handler.Root)

	auth := router.Group("/auth")
	{
		auth.POST("/sign_up", authHandler.SignUp)
		auth.POST("/sign_in", authHandler.SignIn)
		auth.POST("/change_password", handler.AuthMiddleware(authSvc), authHandler.ChangePassword)
	}

	feed := router.Group("/feed", handler.AuthMiddleware(authSvc))
	{
		feed.GET("/articles", feedHandler.GetArticles)
		feed.GET("/article", feedHandler.GetArticle)
		feed.POST("/add_article", feedHandler.AddArticle)
		feed.POST("/remove_article", feedHandler.RemoveArticle)
		feed.POST("/add_images", feedHandler.AddImages)
		feed.POST("/remove_images", feedHandler.RemoveImages)
		feed.GET("/image", feedHandler.GetImage)
	}

	users := router.Group("/users", handler.AuthMiddleware(authSvc))
	{
		users.GET("/author", userHandler.GetAuthor)
	}

	logger.Info().Str("addr", cfg.HTTP.Addr).Str("image_store", cfg.Images.Store).Msg("starting server")
	if err := router.Run(cfg.HTTP.Addr); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
