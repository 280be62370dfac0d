package db

import (
	"encoding/json"
	"fmt"

	"github.com/ashascraft/storefront-backend/internal/app/model"
	"github.com/ashascraft/storefront-backend/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the service, parents first.
func Models() []interface{} {
	return []interface{}{
		&model.User{},
		&model.Category{},
		&model.Subcategory{},
		&model.Tag{},
		&model.Product{},
		&model.ProductImage{},
		&model.ProductTag{},
		&model.Order{},
		&model.OrderItem{},
		&model.Setting{},
	}
}

// AutoMigrate registers the product_tags join model and migrates all tables.
func AutoMigrate(conn *gorm.DB) error {
	if err := conn.SetupJoinTable(&model.Product{}, "Tags", &model.ProductTag{}); err != nil {
		return fmt.Errorf("failed to set up product_tags join table: %w", err)
	}
	return conn.AutoMigrate(Models()...)
}

// Migrate runs database migrations
func Migrate() error {
	logger.Info("Running database migrations...")

	if err := AutoMigrate(DB); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(Models()),
	})
	return nil
}

// Seed writes default settings sections that are not stored yet
func Seed() error {
	return SeedDefaultSettings(DB)
}

func SeedDefaultSettings(conn *gorm.DB) error {
	defaults := model.DefaultSettings()
	sections := map[model.SettingsSection]interface{}{
		model.SectionStoreInfo:       defaults.StoreInfo,
		model.SectionDeliveryCharges: defaults.DeliveryCharges,
		model.SectionMetaPixel:       defaults.MetaPixel,
		model.SectionPolicies:        defaults.Policies,
		model.SectionHomepageContent: defaults.HomepageContent,
	}

	seeded := 0
	for _, section := range model.SettingsSections {
		var count int64
		if err := conn.Model(&model.Setting{}).Where("key = ?", string(section)).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		raw, err := json.Marshal(sections[section])
		if err != nil {
			return err
		}
		if err := conn.Create(&model.Setting{Key: string(section), Value: string(raw)}).Error; err != nil {
			return err
		}
		seeded++
	}

	if seeded > 0 {
		logger.Info("Default settings seeded", map[string]interface{}{
			"sections": seeded,
		})
	}
	return nil
}
