package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v4/stdlib"
	"go.uber.org/zap"

	"events-venues/config"
	"events-venues/data/repository"
)

// openStore returns the configured store. For postgres it also applies the
// schema migrations and keeps the connection for health checks.
func (app *application) openStore(ctx context.Context) (repository.Store, error) {
	switch app.cfg.Store {
	case config.StoreMemory:
		app.log.Info("using in-memory store")
		return repository.NewMemRepo(), nil
	default:
		db, err := app.ConnectToDB(ctx)
		if err != nil {
			return nil, err
		}
		app.db = db

		repo := &repository.SqlRepo{DB: db}
		if err := repo.RunMigrations(app.cfg.DatabaseName); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.log.Info("database migrations applied")
		return repo, nil
	}
}

func (app *application) ConnectToDB(ctx context.Context) (*sql.DB, error) {
	db, err := openDB(ctx, app.cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}

	app.log.Info("database connection established")
	return db, nil
}

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(25)
	db.SetConnMaxIdleTime(15 * time.Minute)

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return db, nil
}

func (app *application) closeDB() {
	if app.db == nil {
		return
	}
	if err := app.db.Close(); err != nil {
		app.log.Warn("error closing database", zap.Error(err))
	}
}
