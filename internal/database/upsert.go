package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	gormlogger "gorm.io/gorm/logger"

	"aptrack/server/internal/models"
)

// OpenGorm opens a gorm handle over the same SQLite file. Only the batch
// persistence path goes through gorm; queries stay on database/sql.
func OpenGorm(dbPath string) (*gorm.DB, error) {
	return gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
}

// UpsertTransactions inserts a batch of transactions, skipping rows that
// collide with the dedup uniqueness constraint.
func UpsertTransactions(tx *gorm.DB, batch []*models.Transaction) error {
	if len(batch) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{DoNothing: true}).
		CreateInBatches(batch, 100).Error
}
