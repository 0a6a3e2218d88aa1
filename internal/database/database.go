// Package database mirrors persisted snapshot records into MySQL so
// historical series can be queried outside the workbook. The workbook
// stays the system of record; everything here is best effort.
package database

import (
	"fmt"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"steam-resale-tracker/internal/models"
)

func Initialize(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(mysql.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MySQL database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&models.PriceSample{}); err != nil {
		return nil, fmt.Errorf("migrate price samples: %w", err)
	}
	return db, nil
}

// ArchiveRecords inserts one PriceSample row per snapshot record, all
// stamped with the run's capture time.
func ArchiveRecords(db *gorm.DB, records []models.SnapshotRecord, at time.Time) error {
	if len(records) == 0 {
		return nil
	}
	samples := make([]models.PriceSample, 0, len(records))
	for _, rec := range records {
		samples = append(samples, models.PriceSample{
			ItemName:    rec.ItemName,
			BuyPrice:    rec.BuyPrice,
			MarketPrice: rec.MarketPrice,
			NetPrice:    rec.NetPrice,
			ReturnPct:   rec.ReturnPct,
			CapturedAt:  at,
		})
	}
	return db.Create(&samples).Error
}
