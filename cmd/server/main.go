package main

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/telelink-next/internal/app"
	"github.com/telelink-next/internal/config"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/models"

	"github.com/gin-gonic/gin"
)

const (
	ansiReset = "\033[0m"
	ansiDim   = "\033[2m"
	ansiCyan  = "\033[36m"
)

func main() {
	printStartupBanner()

	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()

	if cfg.Server.Mode == "release" {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Fatalf("JWT secret is weak or still the default, configure a strong random key in production")
		}
		if isWeakSecret(cfg.Security.GatewayKey) {
			stdLog.Fatalf("gateway key is weak or still the default, configure a strong random key in production")
		}
	} else {
		if isWeakSecret(cfg.JWT.SecretKey) {
			stdLog.Printf("warning: JWT secret is weak or still the default, change it before going to production")
		}
		if isWeakSecret(cfg.Security.GatewayKey) {
			stdLog.Printf("warning: gateway key is weak or still the default, change it before going to production")
		}
	}

	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("database init failed: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("database migration failed: %v", err)
	}

	defaultAdminUser := os.Getenv("TL_DEFAULT_ADMIN_USERNAME")
	defaultAdminPass := os.Getenv("TL_DEFAULT_ADMIN_PASSWORD")
	if cfg.Server.Mode == "release" && defaultAdminPass == "" {
		stdLog.Printf("warning: TL_DEFAULT_ADMIN_PASSWORD not set, skipped default admin init")
	} else if err := models.InitDefaultAdmin(defaultAdminUser, defaultAdminPass); err != nil {
		stdLog.Printf("warning: default admin init failed: %v", err)
	}

	if err := models.InitPlatformAccount(); err != nil {
		stdLog.Fatalf("platform account init failed: %v", err)
	}

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	var mode string
	flag.StringVar(&mode, "mode", app.ModeAll, "run mode: all (default), api, worker")
	flag.Parse()

	if err := app.Run(app.Options{
		Config:  cfg,
		Logger:  logger.S(),
		Signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		Mode:    mode,
	}); err != nil {
		stdLog.Fatalf("service exited with error: %v", err)
	}
}

func printStartupBanner() {
	fmt.Println(ansiCyan + "████████╗███████╗██╗     ███████╗██╗     ██╗███╗   ██╗██╗  ██╗" + ansiReset)
	fmt.Println(ansiCyan + "╚══██╔══╝██╔════╝██║     ██╔════╝██║     ██║████╗  ██║██║ ██╔╝" + ansiReset)
	fmt.Println(ansiCyan + "   ██║   █████╗  ██║     █████╗  ██║     ██║██╔██╗ ██║█████╔╝ " + ansiReset)
	fmt.Println(ansiCyan + "   ██║   ██╔══╝  ██║     ██╔══╝  ██║     ██║██║╚██╗██║██╔═██╗ " + ansiReset)
	fmt.Println(ansiCyan + "   ██║   ███████╗███████╗███████╗███████╗██║██║ ╚████║██║  ██╗" + ansiReset)
	fmt.Println(ansiCyan + "   ╚═╝   ╚══════╝╚══════╝╚══════╝╚══════╝╚═╝╚═╝  ╚═══╝╚═╝  ╚═╝" + ansiReset)
	fmt.Println(ansiDim + "--------------------------------------------------------------" + ansiReset)
}

func isWeakSecret(secret string) bool {
	if len(secret) < 32 {
		return true
	}
	normalized := strings.ToLower(secret)
	if strings.Contains(normalized, "change-me") ||
		strings.Contains(normalized, "change-in-production") ||
		strings.Contains(normalized, "your-secret-key") {
		return true
	}
	return false
}
