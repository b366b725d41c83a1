package main

import (
	"expvar"
	"log"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"mogges/internal/auth"
	"mogges/internal/chat"
	"mogges/internal/db"
	"mogges/internal/domain/orders"
	"mogges/internal/domain/storage"
	"mogges/internal/mailer"
	"mogges/internal/ratelimiter"

	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const developmentSecret = "mogges-development-secret"

var defaultCORSOrigins = []string{
	"https://www.mogges-store.se",
	"https://mogges-store.se",
	"http://localhost:8080",
	"http://127.0.0.1:8080",
	"http://localhost:5500",
	"http://127.0.0.1:5500",
}

func getString(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok && val != "" {
		return val
	}
	return fallback
}

func getInt(key string, fallback int) int {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	parsed, err := strconv.Atoi(val)
	if err != nil {
		log.Printf("Invalid %s, defaulting to %d", key, fallback)
		return fallback
	}
	return parsed
}

func getBool(key string, fallback bool) bool {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	parsed, err := strconv.ParseBool(val)
	if err != nil {
		log.Printf("Invalid %s, defaulting to %t", key, fallback)
		return fallback
	}
	return parsed
}

func getDuration(key string, fallback time.Duration) time.Duration {
	val, ok := os.LookupEnv(key)
	if !ok || val == "" {
		return fallback
	}
	parsed, err := time.ParseDuration(val)
	if err != nil {
		log.Printf("Invalid %s, defaulting to %s", key, fallback)
		return fallback
	}
	return parsed
}

func getList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}

// LoadRateLimiterConfig retrieves rate limiter settings from environment variables
func LoadRateLimiterConfig() ratelimiter.Config {
	return ratelimiter.Config{
		RequestsPerTimeFrame: getInt("RATELIMITER_REQUESTS_COUNT", 20),
		TimeFrame:            time.Minute,
		Enabled:              getBool("RATE_LIMITER_ENABLED", true),
	}
}

func loadConfig() config {
	return config{
		addr:        getString("ADDR", ":8080"),
		env:         getString("ENV", "development"),
		apiURL:      getString("EXTERNAL_URL", "localhost:8080"),
		frontendURL: getString("FRONTEND_URL", "https://www.mogges-store.se"),
		corsOrigins: getList("CORS_ALLOWED_ORIGINS", defaultCORSOrigins),
		db: dbConfig{
			addr:         os.Getenv("DB_ADDR"),
			maxOpenConns: getInt("DB_MAX_OPEN_CONNS", 25),
			maxIdleTime:  getString("DB_MAX_IDLE_TIME", "15m"),
		},
		mail: mailConfig{
			host:      os.Getenv("SMTP_HOST"),
			port:      getInt("SMTP_PORT", 587),
			username:  os.Getenv("SMTP_USERNAME"),
			password:  os.Getenv("SMTP_PASSWORD"),
			fromEmail: os.Getenv("MAIL_FROM"),
		},
		auth: authConfig{
			basic: basicConfig{
				user: os.Getenv("AUTH_BASIC_USER"),
				pass: os.Getenv("AUTH_BASIC_PASS"),
			},
			token: tokenConfig{
				secret: os.Getenv("AUTH_TOKEN_SECRET"),
				exp:    getDuration("AUTH_TOKEN_TTL", 24*time.Hour),
				iss:    "mogges-store",
			},
		},
		chat: chat.AnthropicConfig{
			APIKey:  os.Getenv("ANTHROPIC_API_KEY"),
			Model:   getString("ANTHROPIC_MODEL", "claude-3-5-haiku-latest"),
			BaseURL: getString("ANTHROPIC_BASE_URL", "https://api.anthropic.com"),
		},
		rateLimiter: LoadRateLimiterConfig(),
	}
}

// NewLogger creates a new zap logger with color.
func NewLogger() (*zap.SugaredLogger, error) {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderCfg.EncodeLevel = zapcore.CapitalColorLevelEncoder

	consoleEncoder := zapcore.NewConsoleEncoder(encoderCfg)

	core := zapcore.NewCore(consoleEncoder, zapcore.AddSync(os.Stdout), zapcore.InfoLevel)

	return zap.New(core).Sugar(), nil
}

var version = "1.0.0"

//	@title			Mogges Store API
//	@description	Catalog, cart, orders and shopping assistant for Mogges Store.

//	@contact.name	Mogges Store
//	@contact.url	https://www.mogges-store.se

//	@BasePath					/api
//	@securityDefinitions.apikey	ApiKeyAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer <token>

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("no .env file loaded: %v", err)
	}

	cfg := loadConfig()

	logger, err := NewLogger()
	if err != nil {
		log.Fatalf("Error creating logger: %v", err)
	}
	defer logger.Sync()

	if cfg.auth.token.secret == "" {
		if cfg.env != "development" {
			logger.Fatal("AUTH_TOKEN_SECRET is required outside development")
		}
		logger.Warn("AUTH_TOKEN_SECRET not set, using the development secret")
		cfg.auth.token.secret = developmentSecret
	}

	orderNumbers := orders.NewOrderNumberGenerator(cfg.auth.token.secret)

	// Storage
	var store *storage.Container
	if cfg.db.addr == "" {
		logger.Warn("DB_ADDR not set, using in-memory storage; data is lost on restart")
		store = storage.NewMemoryContainer(orderNumbers)
	} else {
		pool, err := db.New(db.Options{
			Addr:        cfg.db.addr,
			MaxConns:    int32(cfg.db.maxOpenConns),
			MaxIdleTime: cfg.db.maxIdleTime,
			AppName:     "mogges-api",
		})
		if err != nil {
			logger.Fatal(err)
		}
		defer pool.Close()
		logger.Info("database connection pool established")

		store = storage.NewContainer(pool, orderNumbers)

		expvar.Publish("database", expvar.Func(func() any {
			stat := pool.Stat()
			return map[string]any{
				"total_conns":    stat.TotalConns(),
				"idle_conns":     stat.IdleConns(),
				"acquired_conns": stat.AcquiredConns(),
				"max_conns":      stat.MaxConns(),
			}
		}))
	}

	app := &application{
		config:        cfg,
		logger:        logger,
		store:         store,
		authenticator: auth.NewJWTAuthenticator(cfg.auth.token.secret, cfg.auth.token.iss, cfg.auth.token.exp),
		rateLimiter: ratelimiter.NewFixedWindowLimiter(
			cfg.rateLimiter.RequestsPerTimeFrame,
			cfg.rateLimiter.TimeFrame,
		),
	}

	//cloudinary
	if cloudinaryURL := os.Getenv("CLOUDINARY_URL"); cloudinaryURL != "" {
		cld, err := cloudinary.NewFromURL(cloudinaryURL)
		if err != nil {
			logger.Fatal(err)
		}
		app.cld = cld
	} else {
		logger.Warn("CLOUDINARY_URL not set, product image uploads are disabled")
	}

	// mail for welcome messages
	if cfg.mail.host != "" {
		smtp, err := mailer.NewSMTPMailer(cfg.mail.host, cfg.mail.port, cfg.mail.username, cfg.mail.password, cfg.mail.fromEmail)
		if err != nil {
			logger.Fatal(err)
		}
		app.mailer = smtp
	}

	var completer chat.Completer
	if cfg.chat.APIKey != "" {
		completer = chat.NewAnthropicProvider(cfg.chat)
	}
	app.assistant = chat.NewAssistant(completer, logger)
	logger.Infow("chat assistant ready", "provider", app.assistant.Provider())

	//Metrics collected http://localhost:8080/api/debug/vars
	expvar.NewString("version").Set(version)
	expvar.Publish("goroutines", expvar.Func(func() any {
		return runtime.NumGoroutine()
	}))

	mux := app.mount()

	logger.Fatal(app.run(mux))
}
