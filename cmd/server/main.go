package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/wessam/partnerledger/internal/config"
	"github.com/wessam/partnerledger/internal/domain/audit"
	"github.com/wessam/partnerledger/internal/domain/notification"
	"github.com/wessam/partnerledger/internal/domain/period"
	"github.com/wessam/partnerledger/internal/domain/project"
	"github.com/wessam/partnerledger/internal/domain/transaction"
	"github.com/wessam/partnerledger/internal/domain/user"
	"github.com/wessam/partnerledger/internal/sqlite"
	"github.com/wessam/partnerledger/internal/transport"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: parseLogLevel(cfg.Log.Level),
	}))

	if err := ensureDBDir(cfg.DB.Path); err != nil {
		logger.Error("failed to prepare database path", "error", err)
		os.Exit(1)
	}

	db, err := sqlite.New(cfg.DB.Path)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()

	if err := db.RunMigrations(); err != nil {
		logger.Error("failed to run migrations", "error", err)
		os.Exit(1)
	}

	projectRepo := sqlite.NewProjectRepository(db)
	periodRepo := sqlite.NewPeriodRepository(db)
	transactionRepo := sqlite.NewTransactionRepository(db)
	auditRepo := sqlite.NewAuditRepository(db)
	notificationRepo := sqlite.NewNotificationRepository(db)
	userRepo := sqlite.NewUserRepository(db)
	tokenRepo := sqlite.NewTokenRepository(db)
	partnerRepo := sqlite.NewPartnerRepository(db)

	auditSvc := audit.NewService(auditRepo, logger)
	projectSvc := project.NewService(projectRepo, logger)
	periodSvc := period.NewService(periodRepo, auditSvc, logger)
	userSvc := user.NewService(userRepo, tokenRepo, auditSvc, logger)

	var emailSender notification.EmailSender
	if cfg.SMTP.Host != "" {
		emailSender = notification.NewSMTPSender(
			cfg.SMTP.Host, cfg.SMTP.Port,
			cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From,
		)
	}
	var whatsappSender notification.WhatsAppSender
	if cfg.WhatsApp.InstanceID != "" {
		whatsappSender = notification.NewUltramsgSender(
			cfg.WhatsApp.BaseURL, cfg.WhatsApp.InstanceID, cfg.WhatsApp.Token,
		)
	}

	notificationSvc := notification.NewService(
		notificationRepo, transactionRepo, partnerRepo, auditSvc,
		emailSender, whatsappSender, logger,
	)
	transactionSvc := transaction.NewService(transactionRepo, auditSvc, notificationSvc, logger)

	if err := seedAdminUser(context.Background(), userSvc, logger); err != nil {
		logger.Error("failed to seed admin user", "error", err)
		os.Exit(1)
	}

	router := transport.NewRouter(transport.Services{
		Projects:      projectSvc,
		Periods:       periodSvc,
		Transactions:  transactionSvc,
		Audit:         auditSvc,
		Notifications: notificationSvc,
		Users:         userSvc,
		Partners:      partnerRepo,
	}, logger)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		logger.Info("server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
		}
	}()

	waitForShutdown(logger, httpServer)
}

// seedAdminUser creates the first ADMIN account on an empty database.
// The password comes from PARTNERLEDGER_ADMIN_PASSWORD; without it a
// fresh install has no way to log in.
func seedAdminUser(ctx context.Context, users *user.Service, logger *slog.Logger) error {
	existing, err := users.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	password := os.Getenv("PARTNERLEDGER_ADMIN_PASSWORD")
	if password == "" {
		logger.Warn("no users exist and PARTNERLEDGER_ADMIN_PASSWORD is unset, skipping admin seed")
		return nil
	}

	_, err = users.Create(ctx, user.CreateRequest{
		DisplayName: "Administrator",
		Role:        user.RoleAdmin,
		Username:    "admin",
		Password:    password,
	})
	if err != nil {
		return err
	}
	logger.Info("seeded initial admin user", "username", "admin")
	return nil
}

func ensureDBDir(path string) error {
	if path == ":memory:" || path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir == "." {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func waitForShutdown(logger *slog.Logger, server *http.Server) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	logger.Info("shutting down")
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}

func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
