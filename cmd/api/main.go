package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"

	"keymaster/internal/config"
	"keymaster/internal/database"
	"keymaster/internal/middleware"
	"keymaster/internal/modules/assistant"
	"keymaster/internal/modules/checkin"
	"keymaster/internal/modules/host"
	"keymaster/internal/modules/verification"
	"keymaster/internal/pkg/ai"
	jwtsvc "keymaster/internal/pkg/jwt"
	"keymaster/internal/repository"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatal(err)
	}
	if err := repository.AutoMigrate(db); err != nil {
		log.Fatal(err)
	}

	propertyRepo := repository.NewPropertyRepository(db)
	reservationRepo := repository.NewReservationRepository(db)
	hostUserRepo := repository.NewHostUserRepository(db)

	j := jwtsvc.New(cfg.SessionSecret, cfg.SessionTTL)

	var geminiOpts []ai.GeminiOption
	if cfg.TextModel != "" {
		geminiOpts = append(geminiOpts, ai.WithTextModel(cfg.TextModel))
	}
	if cfg.TTSModel != "" {
		geminiOpts = append(geminiOpts, ai.WithTTSModel(cfg.TTSModel))
	}
	if cfg.TTSVoice != "" {
		geminiOpts = append(geminiOpts, ai.WithVoice(cfg.TTSVoice))
	}
	provider, err := ai.NewGemini(context.Background(), cfg.GeminiAPIKey, geminiOpts...)
	if err != nil {
		log.Fatal(err)
	}

	sessions := checkin.NewManager()

	verificationService := verification.NewService(provider)
	verificationHandler := verification.NewHandler(verificationService)

	assistantService := assistant.NewService(provider, propertyRepo)
	assistantHub := assistant.NewHub()
	assistantHandler := assistant.NewHandler(assistantService, assistantHub, sessions)

	checkinService := checkin.NewService(
		reservationRepo,
		propertyRepo,
		verificationService,
		sessions,
		assistantHub,
		cfg.VerifyTimeout,
	)
	checkinHandler := checkin.NewHandler(checkinService)

	hostService := host.NewService(hostUserRepo, propertyRepo, reservationRepo, j)
	hostHandler := host.NewHandler(hostService, cfg.CookieSecure, cfg.SessionTTL)

	r := gin.Default()
	r.Use(middleware.CORS())
	r.Use(middleware.ErrorLogger())

	v1 := r.Group("/api/v1")
	{
		// public (guest flow)
		verificationHandler.RegisterRoutes(v1)
		assistantHandler.RegisterRoutes(v1)
		checkinHandler.RegisterRoutes(v1)
		hostHandler.RegisterPublicRoutes(v1)

		// protected (host dashboard)
		protected := v1.Group("/")
		protected.Use(middleware.RequireHostSession(j))
		{
			hostHandler.RegisterProtectedRoutes(protected)
		}
	}

	if err := r.Run(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
