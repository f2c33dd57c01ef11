package main

import (
	"database/sql"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/alexedwards/scs/v2"

	"github.com/DijitalRED/red-blog/internal/blogservice"
	"github.com/DijitalRED/red-blog/internal/common"
	"github.com/DijitalRED/red-blog/internal/mailservice"
	"github.com/DijitalRED/red-blog/internal/userservice"
)

type application struct {
	config         *Config
	logger         *slog.Logger
	userService    *userservice.UserService
	blogService    *blogservice.BlogService
	mailService    *mailservice.MailService
	sessionManager *scs.SessionManager
	broker         common.MessageProducer
	limiters       *common.Cache
	csrfKey        []byte
}

func main() {
	cfg, err := loadConfig(".env")
	if err != nil {
		slog.Error("failed to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	logger := newLogger(cfg)

	db, err := common.NewDB(cfg.DatabaseURL, 25, 25, 15*time.Minute)
	if err != nil {
		logger.Error("failed to connect to the database", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer common.CloseDB(db)

	if _, err := common.Migrate(db); err != nil {
		logger.Error("failed to run migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	var broker common.MessageProducer = common.NopProducer{}
	if cfg.RabbitMQURL != "" {
		mb, err := common.NewMessageBroker(cfg.RabbitMQURL)
		if err != nil {
			logger.Error("failed to connect to the message broker", slog.String("error", err.Error()))
			os.Exit(1)
		}
		defer mb.Close()

		if err := common.SetupBlogExchange(mb); err != nil {
			logger.Error("failed to setup the blog exchange", slog.String("error", err.Error()))
			os.Exit(1)
		}
		broker = mb
	}

	dialer := mailservice.NewDialer(cfg.Mail.Host, cfg.Mail.Port, cfg.Mail.User, cfg.Mail.Password)

	app := &application{
		config:         cfg,
		logger:         logger,
		userService:    userservice.NewUserService(db, cfg.PasswordIterations),
		blogService:    blogservice.NewBlogService(db),
		mailService:    mailservice.NewMailService(dialer, cfg.mailSender(), cfg.mailRecipient(), logger),
		sessionManager: common.NewSessionManager(newSessionStore(cfg, db), cfg.SessionLifetime, cfg.Environment == "production"),
		broker:         broker,
		limiters:       common.NewCache(3*time.Minute, 5*time.Minute),
		csrfKey:        []byte(cfg.SecretKey),
	}

	err = app.serve(cfg.Port)
	if err != nil {
		logger.Error("failed to start the server", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func newLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.ToUpper(cfg.LogLevel))); err != nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Environment == "production" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}

func newSessionStore(cfg *Config, db *sql.DB) scs.Store {
	if cfg.SessionStore == "memory" {
		return common.NewCacheStore(common.NewCache(cfg.SessionLifetime, 10*time.Minute))
	}
	return common.NewPostgresSessionStore(db)
}
