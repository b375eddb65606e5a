package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database holds the optional stores. Either field is nil when its URL is
// empty or the connection failed.
type Database struct {
	Postgres *gorm.DB
	MongoDB  *mongo.Database
	log      *zap.Logger
}

func NewDatabase(postgresURL, mongoURL, mongoDBName string, log *zap.Logger) *Database {
	db := &Database{log: log}

	if postgresURL != "" {
		postgresDB, err := initPostgreSQL(postgresURL)
		if err != nil {
			log.Warn("PostgreSQL connection failed, using built-in coupon catalog", zap.Error(err))
		} else {
			log.Info("Connected to PostgreSQL successfully")
			db.Postgres = postgresDB
		}
	}

	if mongoURL != "" {
		mongoDB, err := initMongoDB(mongoURL, mongoDBName)
		if err != nil {
			log.Warn("MongoDB connection failed, order references disabled", zap.Error(err))
		} else {
			log.Info("Connected to MongoDB successfully", zap.String("database", mongoDBName))
			db.MongoDB = mongoDB
		}
	}

	return db
}

func initPostgreSQL(url string) (*gorm.DB, error) {
	config := &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	}

	db, err := gorm.Open(postgres.Open(url), config)
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	// The coupon catalog is read once at start; a small pool is plenty.
	sqlDB.SetMaxOpenConns(5)
	sqlDB.SetMaxIdleConns(1)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping: %w", err)
	}

	return db, nil
}

func initMongoDB(url, dbName string) (*mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(url))
	if err != nil {
		return nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("ping: %w", err)
	}

	return client.Database(dbName), nil
}

func (db *Database) Close() error {
	if db.Postgres != nil {
		if sqlDB, err := db.Postgres.DB(); err == nil {
			if err := sqlDB.Close(); err != nil {
				db.log.Warn("Failed to close PostgreSQL", zap.Error(err))
			}
		}
	}

	if db.MongoDB != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return db.MongoDB.Client().Disconnect(ctx)
	}

	return nil
}
