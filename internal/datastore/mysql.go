package datastore

import (
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	mysqlMaxOpenConns    = 20
	mysqlMaxIdleConns    = 5
	mysqlConnMaxLifetime = time.Hour
)

// openMySQL opens a MySQL connection pool.
func openMySQL(cfg MySQLConfig, gormCfg *gorm.Config) (*gorm.DB, error) {
	if cfg.Host == "" {
		return nil, validationError("mysql host must not be empty", "database.mysql.host", cfg.Host)
	}
	if cfg.Database == "" {
		return nil, validationError("mysql database must not be empty", "database.mysql.database", cfg.Database)
	}

	db, err := gorm.Open(mysql.Open(cfg.DSN()), gormCfg)
	if err != nil {
		return nil, connectionError(err, DialectMySQL, "open")
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, connectionError(err, DialectMySQL, "get_sql_db")
	}
	sqlDB.SetMaxOpenConns(mysqlMaxOpenConns)
	sqlDB.SetMaxIdleConns(mysqlMaxIdleConns)
	sqlDB.SetConnMaxLifetime(mysqlConnMaxLifetime)

	return db, nil
}
