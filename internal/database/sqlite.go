package database

import (
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InMemoryDSN names a shared in-memory sqlite database. Connections opened
// with the same name see the same data.
func InMemoryDSN(name string) string {
	return "file:" + name + "?mode=memory&cache=shared"
}

// ConnectSqlite opens a sqlite database with a single connection so every
// transaction runs against the same handle.
func ConnectSqlite(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(1)

	return db, nil
}
