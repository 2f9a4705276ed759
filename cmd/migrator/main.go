package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/lib/pq"
	"github.com/linemk/subculture/internal/app"
	"github.com/linemk/subculture/internal/config"
	"github.com/linemk/subculture/internal/storage"
)

// buildMigrateDSN добавляет к DSN таблицу версий мигратора
func buildMigrateDSN(dbCfg config.DatabaseConfig, migrationTable string) string {
	return fmt.Sprintf("%s&x-migrations-table=%s", app.QueryDSN(dbCfg), migrationTable)
}

func main() {
	var (
		configPath, migrationsPathFlag, migrationTableName string
		down                                               bool
	)
	flag.StringVar(&configPath, "config", "", "path to config file")
	flag.StringVar(&migrationsPathFlag, "migrations-path", "", "path to migration files")
	flag.StringVar(&migrationTableName, "migrations-table", "migrations", "name of migrations table")
	flag.BoolVar(&down, "down", false, "roll back the last migration")
	flag.Parse()

	if configPath == "" {
		configPath = os.Getenv("CONFIG_PATH")
	}
	if configPath == "" {
		log.Fatal("CONFIG_PATH not exists")
	}
	cfg := config.MustLoadGatewayByPath(configPath)

	migrationsPath := cfg.Migrations.Path
	if migrationsPathFlag != "" {
		migrationsPath = migrationsPathFlag
	}

	m, err := migrate.New("file://"+migrationsPath, buildMigrateDSN(cfg.Database, migrationTableName))
	if err != nil {
		log.Fatalf("failed to create migrate instance: %v", err)
	}
	defer m.Close()

	if down {
		err = m.Steps(-1)
	} else {
		err = m.Up()
	}
	switch {
	case errors.Is(err, migrate.ErrNoChange):
		fmt.Println("No migrations to apply")
	case err != nil:
		log.Fatalf("migration failed: %v", err)
	default:
		log.Println("Migrations applied successfully")
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		fmt.Println("Schema is empty")
		return
	case err != nil:
		log.Fatalf("failed to read schema version: %v", err)
	}
	fmt.Printf("Schema version: %d (dirty: %t)\n", version, dirty)

	db, err := sql.Open("postgres", app.QueryDSN(cfg.Database))
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// каталог должен быть засеян первой миграцией
	gifts, err := storage.NewGiftRepository(db).ListGifts(ctx, 0)
	if err != nil {
		log.Fatalf("failed to read gift catalog: %v", err)
	}
	fmt.Printf("Gift catalog: %d items\n", len(gifts))
	for _, g := range gifts {
		fmt.Printf(" - %s (%d)\n", g.Name, g.Price)
	}
}
