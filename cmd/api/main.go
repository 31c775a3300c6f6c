package main

import (
	"expvar"
	"fmt"
	"log"
	"os"
	"runtime"
	"strconv"
	"time"

	"tarelka/internal/auth"
	"tarelka/internal/booking"
	"tarelka/internal/db"
	"tarelka/internal/domain/menu"
	"tarelka/internal/domain/orders"
	"tarelka/internal/mailer"
	"tarelka/internal/notifications"
	"tarelka/internal/pricing"
	"tarelka/internal/ratelimiter"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var version = "1.0.0"

func envInt(key string, fallback int) int {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.Atoi(val); err == nil {
			return parsed
		}
		fmt.Printf("Invalid %s, defaulting to %d\n", key, fallback)
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := time.ParseDuration(val); err == nil {
			return parsed
		}
		fmt.Printf("Invalid %s, defaulting to %s\n", key, fallback)
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if val, exists := os.LookupEnv(key); exists {
		if parsed, err := strconv.ParseBool(val); err == nil {
			return parsed
		}
		fmt.Printf("Invalid %s, defaulting to %t\n", key, fallback)
	}
	return fallback
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: envInt("RATELIMITER_REQUESTS_COUNT", 200),
		TimeFrame:            5 * time.Second,
		Enabled:              envBool("RATE_LIMITER_ENABLED", false),
	}
}

// NewLogger creates a zap logger writing colored console output to stdout.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)
	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := config{
		addr:        os.Getenv("ADDR"),
		env:         os.Getenv("ENV"),
		apiURL:      os.Getenv("EXTERNAL_URL"),
		frontendURL: os.Getenv("FRONTEND_URL"),
		db: dbConfig{
			addr:        os.Getenv("DB_ADDR"),
			maxConns:    int32(envInt("DB_MAX_CONNS", 25)),
			minConns:    int32(envInt("DB_MIN_CONNS", 2)),
			maxIdleTime: os.Getenv("DB_MAX_IDLE_TIME"),
		},
		order: orderConfig{
			pricing: pricing.Config{
				DeliveryFee:      envInt("ORDER_DELIVERY_FEE", 199),
				FreeDeliveryOver: envInt("ORDER_FREE_DELIVERY_OVER", 0),
				MinOrder:         envInt("ORDER_MIN_SUBTOTAL", 500),
			},
			numberSalt: os.Getenv("ORDER_NUMBER_SALT"),
		},
		booking: bookingConfig{
			baseURL:   os.Getenv("REMARKED_URL"),
			apiKey:    os.Getenv("REMARKED_API_KEY"),
			cacheTTL:  envDuration("BOOKING_CACHE_TTL", 2*time.Minute),
			cacheSize: envInt("BOOKING_CACHE_SIZE", 128),
		},
		telegram: telegramConfig{
			botToken:        os.Getenv("TELEGRAM_BOT_TOKEN"),
			chatID:          os.Getenv("TELEGRAM_ORDERS_CHAT_ID"),
			requireInitData: envBool("TELEGRAM_REQUIRE_INIT_DATA", false),
			initDataMaxAge:  envDuration("TELEGRAM_INIT_DATA_MAX_AGE", 24*time.Hour),
		},
		mail: mailConfig{
			host:      os.Getenv("SMTP_HOST"),
			port:      envInt("SMTP_PORT", 587),
			username:  os.Getenv("SMTP_USERNAME"),
			password:  os.Getenv("SMTP_PASSWORD"),
			fromEmail: os.Getenv("SMTP_FROM_EMAIL"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret:        os.Getenv("AUTH_TOKEN_SECRET"),
				refreshSecret: os.Getenv("AUTH_TOKEN_REFRESH_SECRET"),
				accessExp:     envDuration("AUTH_ACCESS_EXP", 12*time.Hour),
				refreshExp:    envDuration("AUTH_REFRESH_EXP", 9*24*time.Hour),
				iss:           "Tarelka",
			},
			staff: staffConfig{
				username:     os.Getenv("STAFF_USERNAME"),
				passwordHash: os.Getenv("STAFF_PASSWORD_HASH"),
			},
		},
		rateLimiter: LoadRateLimiterConfig(),
	}

	logger, err := NewLogger()
	if err != nil {
		fmt.Println("Error creating logger:", err)
		return
	}
	defer logger.Sync()

	pool, err := db.New(
		cfg.db.addr,
		cfg.db.maxConns,
		cfg.db.minConns,
		cfg.db.maxIdleTime,
	)
	if err != nil {
		logger.Fatal(err)
	}
	defer pool.Close()
	logger.Info("database connection pool established")

	menuStore := menu.NewRepository(pool)

	numberGen, err := orders.NewOrderNumberGenerator(cfg.order.numberSalt)
	if err != nil {
		logger.Fatal(err)
	}
	orderStore := orders.NewRepository(pool, numberGen)

	pricingEngine := pricing.NewEngine(menuStore, cfg.order.pricing)

	slotClient := booking.NewCachedClient(
		booking.NewRemarkedClient(cfg.booking.baseURL, cfg.booking.apiKey),
		cfg.booking.cacheSize,
		cfg.booking.cacheTTL,
	)

	mailClient, err := mailer.NewSMTPClient(
		cfg.mail.host,
		cfg.mail.port,
		cfg.mail.username,
		cfg.mail.password,
		cfg.mail.fromEmail,
	)
	if err != nil {
		logger.Fatal(err)
	}

	notifier := notifications.NewTelegramAdapter(cfg.telegram.botToken, cfg.telegram.chatID)

	jwtAuthenticator := auth.NewJWTAuthenticator(
		cfg.auth.token.secret,
		cfg.auth.token.refreshSecret,
		cfg.auth.token.iss,
		cfg.auth.token.iss,
		cfg.auth.token.accessExp,
		cfg.auth.token.refreshExp,
	)

	rateLimiter := ratelimiter.NewFixedWindowLimiter(
		cfg.rateLimiter.RequestsPerTimeFrame,
		cfg.rateLimiter.TimeFrame,
	)

	app := &application{
		config:        cfg,
		logger:        logger,
		menu:          menuStore,
		orders:        orderStore,
		pricing:       pricingEngine,
		booking:       slotClient,
		mailer:        mailClient,
		notifier:      notifier,
		authenticator: jwtAuthenticator,
		rateLimiter:   rateLimiter,
	}

	// Metrics served at /v1/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("database", expvar.Func(func() any {
		s := pool.Stat()
		return map[string]any{
			"total_conns":    s.TotalConns(),
			"idle_conns":     s.IdleConns(),
			"acquired_conns": s.AcquiredConns(),
		}
	}))
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
