package main

import (
	"context"
	"errors"
	"expvar"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"tarelka/internal/auth"
	"tarelka/internal/booking"
	"tarelka/internal/domain/menu"
	"tarelka/internal/domain/orders"
	"tarelka/internal/mailer"
	"tarelka/internal/notifications"
	"tarelka/internal/pricing"
	"tarelka/internal/ratelimiter"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.uber.org/zap"
)

type application struct {
	config        config
	logger        *zap.SugaredLogger
	menu          menu.Store
	orders        orders.Store
	pricing       *pricing.Engine
	booking       booking.Client
	mailer        mailer.Client
	notifier      notifications.Sender
	authenticator auth.Authenticator
	rateLimiter   ratelimiter.Limiter
}

type config struct {
	addr        string
	env         string
	apiURL      string
	frontendURL string
	db          dbConfig
	order       orderConfig
	booking     bookingConfig
	telegram    telegramConfig
	mail        mailConfig
	auth        authConfig
	rateLimiter ratelimiter.Config
}

type dbConfig struct {
	addr        string
	maxConns    int32
	minConns    int32
	maxIdleTime string
}

type orderConfig struct {
	pricing    pricing.Config
	numberSalt string
}

type bookingConfig struct {
	baseURL   string
	apiKey    string
	cacheTTL  time.Duration
	cacheSize int
}

type telegramConfig struct {
	botToken string
	chatID   string
	// When true, order submission requires a verified init-data header.
	requireInitData bool
	initDataMaxAge  time.Duration
}

type mailConfig struct {
	host      string
	port      int
	username  string
	password  string
	fromEmail string
}

type authConfig struct {
	basic basicConfig
	token tokenConfig
	staff staffConfig
}

type basicConfig struct {
	user string
	pass string
}

type tokenConfig struct {
	secret        string
	refreshSecret string
	accessExp     time.Duration
	refreshExp    time.Duration
	iss           string
}

type staffConfig struct {
	username     string
	passwordHash string // bcrypt
}

func (app *application) mount() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Telegram-Init-Data"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Use(app.RateLimiterMiddleware)

	// Request context timeout; handlers observe ctx.Done().
	r.Use(middleware.Timeout(60 * time.Second))

	r.Route("/v1", func(r chi.Router) {
		r.With(app.BasicAuthMiddleware()).Get("/health", app.healthCheckHandler)
		r.With(app.BasicAuthMiddleware()).Get("/debug/vars", expvar.Handler().ServeHTTP)

		r.Route("/menu", func(r chi.Router) {
			r.Get("/", app.listMenuHandler)
			r.Get("/{itemID}", app.getMenuItemHandler)
		})

		r.Route("/cart", func(r chi.Router) {
			r.Post("/recalculate", app.recalculateCartHandler)
		})

		r.Route("/orders", func(r chi.Router) {
			r.With(app.TelegramInitDataMiddleware).Post("/", app.createOrderHandler)
			r.Get("/{orderNumber}", app.getOrderHandler)
		})

		r.Get("/restaurants/{restaurantID}/slots", app.bookingSlotsHandler)

		r.Route("/authentication", func(r chi.Router) {
			r.Post("/staff", app.staffTokenHandler)
			r.Post("/refresh", app.refreshTokenHandler)
		})

		r.Route("/staff", func(r chi.Router) {
			r.Use(app.AuthTokenMiddleware)
			r.Get("/orders", app.listOrdersHandler)
			r.Patch("/orders/{orderID}/status", app.updateOrderStatusHandler)
		})
	})

	return r
}

func (app *application) run(mux http.Handler) error {
	srv := &http.Server{
		Addr:         app.config.addr,
		Handler:      mux,
		WriteTimeout: time.Second * 30,
		ReadTimeout:  time.Second * 10,
		IdleTimeout:  time.Minute,
	}

	shutdown := make(chan error)

	go func() {
		quit := make(chan os.Signal, 1)

		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		s := <-quit

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		app.logger.Infow("signal caught", "signal", s.String())

		shutdown <- srv.Shutdown(ctx)
	}()

	app.logger.Infow("server has started", "addr", app.config.addr, "env", app.config.env)

	err := srv.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	err = <-shutdown
	if err != nil {
		return err
	}

	app.logger.Infow("server has stopped", "addr", app.config.addr, "env", app.config.env)

	return nil
}
