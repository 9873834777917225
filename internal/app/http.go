package app

import (
	"context"

	"auth-broker/internal/config"
	"auth-broker/internal/handler"
	"auth-broker/internal/middleware"
	"auth-broker/internal/provider/google"
	"auth-broker/internal/session"
	"auth-broker/internal/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func setupHTTP(ctx context.Context, cfg config.Config) (*gin.Engine, func() error, error) {

	infra, err := setupInfra(cfg)
	if err != nil {
		return nil, nil, err
	}

	// ----------------------------
	// Dependencies
	// ----------------------------

	credentialStore := store.NewRedisStore(infra.Redis.Client)

	googleClient, err := google.New(
		ctx,
		google.Issuer,
		cfg.GoogleClientID,
		cfg.GoogleClientSecret,
		cfg.GoogleRedirectURL,
		cfg.OAuthScopes,
	)
	if err != nil {
		return nil, nil, err
	}

	manager := session.NewManager(credentialStore, googleClient, cfg.SessionMaxAge)

	authHandler := handler.NewHandler(
		manager,
		googleClient,
		cfg.AllowedOrigin,
		int(cfg.SessionMaxAge.Seconds()),
	)

	// ----------------------------
	// Router
	// ----------------------------

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())

	// The broker serves exactly one browser origin, with cookies.
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.AllowedOrigin},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
	}))

	// ----------------------------
	// Routes
	// ----------------------------

	authHandler.RegisterRoutes(router)

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ----------------------------
	// Cleanup
	// ----------------------------

	return router, func() error {
		return infra.Redis.Close()
	}, nil
}
