package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/redis/go-redis/v9"

	"github.com/rsommers/lakehouse/internal/http/handlers"
	mw "github.com/rsommers/lakehouse/internal/http/middleware"
	"github.com/rsommers/lakehouse/internal/notify"
	"github.com/rsommers/lakehouse/internal/platform/mailer"
	"github.com/rsommers/lakehouse/internal/repo/postgres"
	"github.com/rsommers/lakehouse/internal/service"
	"github.com/rsommers/lakehouse/pkg/config"
	"github.com/rsommers/lakehouse/pkg/database"
	"github.com/rsommers/lakehouse/pkg/events"
	"github.com/rsommers/lakehouse/pkg/logger"
)

func main() {
	cfg := config.Load()

	ctx := context.Background()
	pool, err := database.Connect(ctx, cfg.Database)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	// Event bus is optional infrastructure: the calendar keeps working
	// without it, just without published events.
	var bus events.Publisher
	if eventBus, err := events.NewNATSEventBus(cfg.NATS.URL); err != nil {
		logger.Warn("Event bus unavailable, continuing without events", "error", err)
	} else {
		bus = eventBus
		defer eventBus.Close()
	}

	var rdb *redis.Client
	if opts, err := redis.ParseURL(cfg.Redis.URL); err != nil {
		logger.Warn("Invalid Redis URL, rate limiting disabled", "error", err)
	} else {
		rdb = redis.NewClient(opts)
		defer rdb.Close()
	}

	// One configured notifier for the process lifetime.
	notifier := notify.New(mailer.FromConfig(cfg.Email), bus, cfg.App.NotifyEmail)

	userRepo := postgres.NewUserRepository(pool)
	reservationRepo := postgres.NewReservationRepository(pool)

	authService := service.NewAuthService(userRepo, notifier, cfg)
	reservationService := service.NewReservationService(reservationRepo, notifier)

	h := handlers.New(authService, reservationService)

	authLimiter := mw.NewRateLimiter(rdb, "rl:auth", 10, time.Minute)

	r := chi.NewRouter()
	r.Use(mw.RequestID)
	r.Use(mw.Logging)
	r.Use(mw.Health)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{cfg.App.BaseURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	requireAuth := mw.RequireAuth(cfg.Auth.JWTSecret)

	r.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.With(authLimiter.Middleware).Post("/login", h.Login)
			r.With(authLimiter.Middleware).Post("/forgot-password", h.ForgotPassword)
			r.Post("/reset-password/{token}", h.ResetPassword)

			r.Group(func(r chi.Router) {
				r.Use(requireAuth)
				r.Get("/me", h.Me)
				r.Put("/update-profile", h.UpdateProfile)

				r.Group(func(r chi.Router) {
					r.Use(mw.RequireAdmin)
					r.Get("/users", h.ListUsers)
					r.Delete("/delete-user/{id}", h.DeleteUserCascading)
					r.Put("/make-admin/{id}", h.MakeAdmin)
				})
			})
		})

		r.Route("/reservations", func(r chi.Router) {
			r.Use(requireAuth)
			r.Get("/my-reservations", h.MyReservations)
			r.Post("/reserve", h.CreateReservation)
			r.Put("/update/{id}", h.UpdateReservation)
			r.Delete("/delete/{id}", h.DeleteReservation)

			r.Group(func(r chi.Router) {
				r.Use(mw.RequireAdmin)
				r.Get("/", h.ListReservations)
				r.Put("/admin/update/{id}", h.AdminUpdateReservation)
				r.Delete("/admin/delete/{id}", h.AdminDeleteReservation)
			})
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(requireAuth)
			r.Use(mw.RequireAdmin)
			r.Get("/users", h.AdminListUsers)
			r.Delete("/users/{id}", h.AdminDeleteUser)
		})
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		logger.Info("Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Shutdown error", "error", err)
		}
	}()

	logger.Info("Starting booking calendar API", "port", cfg.Server.Port)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Error("Server error", "error", err)
		os.Exit(1)
	}
}
