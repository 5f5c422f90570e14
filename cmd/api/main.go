package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/Engrjalalkhan/easydoctor/internal/config"
	"github.com/Engrjalalkhan/easydoctor/internal/email"
	"github.com/Engrjalalkhan/easydoctor/internal/handler"
	rosterHandler "github.com/Engrjalalkhan/easydoctor/internal/handler/roster"
	sessionHandler "github.com/Engrjalalkhan/easydoctor/internal/handler/session"
	"github.com/Engrjalalkhan/easydoctor/internal/middleware"
	"github.com/Engrjalalkhan/easydoctor/internal/repository"
	"github.com/Engrjalalkhan/easydoctor/internal/repository/memory"
	"github.com/Engrjalalkhan/easydoctor/internal/repository/postgres"
	redisrepo "github.com/Engrjalalkhan/easydoctor/internal/repository/redis"
	"github.com/Engrjalalkhan/easydoctor/internal/router"
	"github.com/Engrjalalkhan/easydoctor/pkg/auth"
	"github.com/Engrjalalkhan/easydoctor/pkg/logger"
	"github.com/Engrjalalkhan/easydoctor/pkg/metrics"
	"github.com/Engrjalalkhan/easydoctor/pkg/security"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	logger.SetupGlobal(&logger.Config{
		Level:      logger.ParseLevel(cfg.Log.Level),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		Pretty:     cfg.Log.Pretty,
	})

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	doctorRepo := postgres.NewDoctorRepository(db)
	bookingRepo := postgres.NewBookingRepository(db)
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	authn := postgres.NewCredentialRepository(db, hasher)

	var sessionStore repository.SessionStore
	if cfg.Redis.URL != "" {
		store, err := redisrepo.NewStore(redisrepo.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer store.Close()
		sessionStore = store
	} else {
		log.Warn().Msg("no Redis URL configured, using in-memory session store")
		sessionStore = memory.NewStore()
	}

	var mailer email.Service = email.Noop{}
	if cfg.SMTP.Enabled {
		mailer = email.NewSMTPService(cfg.SMTP)
	}

	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	m := metrics.New("easydoctor")

	h := handler.NewHandler()
	sessionH := sessionHandler.NewHandler(sessionStore, doctorRepo, authn, jwtSvc, m, cfg.Session.TTL)
	rosterH := rosterHandler.NewHandler(bookingRepo, mailer, m)
	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(authMiddleware, sessionH, rosterH, h, m, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		CORS:           middleware.CORSConfig{AllowedOrigins: cfg.Security.AllowedOrigins},
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
