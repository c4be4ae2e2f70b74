package provider

import (
	"github.com/telelink-next/internal/authz"
	"github.com/telelink-next/internal/cache"
	"github.com/telelink-next/internal/config"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/models"
	"github.com/telelink-next/internal/payout"
	"github.com/telelink-next/internal/payout/cashfree"
	"github.com/telelink-next/internal/queue"
	"github.com/telelink-next/internal/repository"
	"github.com/telelink-next/internal/service"
)

// Container dependency injection container
type Container struct {
	Config      *config.Config
	QueueClient *queue.Client

	// Repositories
	AdminRepo      repository.AdminRepository
	CreatorRepo    repository.CreatorRepository
	LinkRepo       repository.LinkRepository
	WalletRepo     repository.WalletRepository
	LedgerRepo     repository.LedgerRepository
	WithdrawalRepo repository.WithdrawalRepository

	// Services
	AuthzService        *authz.Service
	AuthService         *service.AuthService
	CreatorService      *service.CreatorService
	LinkService         *service.LinkService
	LedgerService       *service.LedgerService
	WalletService       *service.WalletService
	WithdrawalService   *service.WithdrawalService
	NotificationService *service.NotificationService

	// PayoutProvider is nil when payouts are disabled
	PayoutProvider payout.Provider
}

// NewContainer initializes the container
func NewContainer(cfg *config.Config) *Container {
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:      cfg,
		QueueClient: queueClient,
	}

	c.initRepositories()
	c.initPayoutProvider()
	c.initServices()

	return c
}

func (c *Container) initRepositories() {
	db := models.DB
	c.AdminRepo = repository.NewAdminRepository(db)
	c.CreatorRepo = repository.NewCreatorRepository(db)
	c.LinkRepo = repository.NewLinkRepository(db)
	c.WalletRepo = repository.NewWalletRepository(db)
	c.LedgerRepo = repository.NewLedgerRepository(db)
	c.WithdrawalRepo = repository.NewWithdrawalRepository(db)
}

func (c *Container) initPayoutProvider() {
	if !c.Config.Payout.Enabled {
		logger.Infow("provider_payout_disabled")
		return
	}
	client, err := cashfree.New(cashfree.Config{
		BaseURL:      c.Config.Payout.BaseURL,
		ClientID:     c.Config.Payout.ClientID,
		ClientSecret: c.Config.Payout.ClientSecret,
		TimeoutSec:   c.Config.Payout.TimeoutSeconds,
	})
	if err != nil {
		logger.Errorw("provider_init_payout_failed", "error", err)
		return
	}
	c.PayoutProvider = client
}

func (c *Container) initServices() {
	authzService, err := authz.NewService(models.DB)
	if err != nil {
		logger.Errorw("provider_init_authz_failed", "error", err)
		panic(err)
	}
	c.AuthzService = authzService
	if err := c.AuthzService.BootstrapBuiltinRoles(); err != nil {
		logger.Errorw("provider_bootstrap_builtin_roles_failed", "error", err)
		panic(err)
	}

	c.AuthService = service.NewAuthService(c.Config, c.AdminRepo)
	c.CreatorService = service.NewCreatorService(c.CreatorRepo, c.WalletRepo)
	c.LinkService = service.NewLinkService(c.LinkRepo, c.CreatorRepo)
	c.LedgerService = service.NewLedgerService(c.LedgerRepo, c.LinkRepo, c.CreatorRepo, c.WalletRepo, &c.Config.Ledger)
	c.WalletService = service.NewWalletService(c.WalletRepo, c.LedgerRepo, c.WithdrawalRepo, c.CreatorRepo)
	c.NotificationService = service.NewNotificationService(c.Config.Notify, c.QueueClient, c.WithdrawalRepo, c.CreatorRepo)
	c.WithdrawalService = service.NewWithdrawalService(
		c.WithdrawalRepo,
		c.WalletRepo,
		c.CreatorRepo,
		c.PayoutProvider,
		c.QueueClient,
		c.NotificationService,
		&c.Config.Ledger,
		&c.Config.Payout,
	)
}
