package main

import (
	"fmt"

	"github.com/telelink-next/internal/config"
	"github.com/telelink-next/internal/constants"
	"github.com/telelink-next/internal/logger"
	"github.com/telelink-next/internal/models"

	"github.com/shopspring/decimal"
)

func main() {
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(cfg.Database.Driver, cfg.Database.DSN, models.DBPoolConfig{
		MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
		MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
		ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
		ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	if err := models.InitPlatformAccount(); err != nil {
		stdLog.Fatalf("Failed to init platform account: %v", err)
	}

	// Demo creators. IDs mimic external chat user ids, the second one
	// signed up with the first one's referral code.
	creators := []models.Creator{
		{
			ID:           700100100,
			Handle:       "demo_alpha",
			ReferralCode: "SEEDALPHA1",
			PayoutUPI:    "demo.alpha@upi",
		},
		{
			ID:                700100200,
			Handle:            "demo_beta",
			ReferralCode:      "SEEDBETA01",
			ReferredBy:        "SEEDALPHA1",
			PayoutBankAccount: "000011112222",
			PayoutBankIFSC:    "DEMO0001234",
		},
	}

	for _, creator := range creators {
		var existing models.Creator
		if err := models.DB.Where("id = ?", creator.ID).First(&existing).Error; err != nil {
			if err := models.DB.Create(&creator).Error; err != nil {
				stdLog.Printf("Failed to create creator %d: %v", creator.ID, err)
				continue
			}
			stdLog.Printf("Created creator: %d (%s)", creator.ID, creator.Handle)
		} else {
			stdLog.Printf("Creator already exists: %d (%s)", existing.ID, existing.Handle)
		}

		var wallet models.WalletAccount
		if err := models.DB.Where("creator_id = ?", creator.ID).First(&wallet).Error; err != nil {
			wallet = models.WalletAccount{CreatorID: creator.ID}
			if err := models.DB.Create(&wallet).Error; err != nil {
				stdLog.Printf("Failed to create wallet for creator %d: %v", creator.ID, err)
			} else {
				stdLog.Printf("Created wallet for creator: %d", creator.ID)
			}
		}
	}

	// Demo links, one per creator.
	links := []models.Link{
		{
			CreatorID: 700100100,
			Code:      "seedlink01",
			URL:       "https://example.com/premium/guide",
			Price:     models.NewMoneyFromDecimal(decimal.NewFromInt(99)),
			Status:    constants.LinkStatusActive,
		},
		{
			CreatorID: 700100200,
			Code:      "seedlink02",
			URL:       "https://example.com/premium/course",
			Price:     models.NewMoneyFromDecimal(decimal.NewFromInt(249)),
			Status:    constants.LinkStatusActive,
		},
	}

	for _, link := range links {
		var existing models.Link
		if err := models.DB.Where("code = ?", link.Code).First(&existing).Error; err != nil {
			if err := models.DB.Create(&link).Error; err != nil {
				stdLog.Printf("Failed to create link %s: %v", link.Code, err)
			} else {
				stdLog.Printf("Created link: %s", link.Code)
			}
		} else {
			stdLog.Printf("Link already exists: %s", link.Code)
		}
	}

	fmt.Println("\nSeed data created:")
	fmt.Println("- 2 creators (demo_beta referred by demo_alpha)")
	fmt.Println("- 2 wallets")
	fmt.Println("- 2 active links")
	fmt.Println("- Platform account")
}
