package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	_ "github.com/lib/pq"
	"github.com/pageza/mealplanner/backend/config"
	"github.com/pageza/mealplanner/backend/internal/database"
	"github.com/pageza/mealplanner/backend/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func main() {
	status := flag.Bool("status", false, "Only report which tables exist")
	timeout := flag.Duration("timeout", 2*time.Minute, "Maximum time to spend migrating")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	sqlDB, err := connect(ctx)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer sqlDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to open gorm connection: %v", err)
	}
	db = db.WithContext(ctx)

	if !*status {
		if err := database.Migrate(db); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		fmt.Println("All migrations applied successfully.")
	}

	for _, m := range models.All() {
		stmt := &gorm.Statement{DB: db}
		if err := stmt.Parse(m); err != nil {
			log.Fatalf("failed to parse model %T: %v", m, err)
		}
		state := "missing"
		if db.Migrator().HasTable(m) {
			state = "present"
		}
		fmt.Printf("%-24s %s\n", stmt.Schema.Table, state)
	}
}

// connect prefers DATABASE_URL and falls back to the regular DB_* settings.
func connect(ctx context.Context) (*sql.DB, error) {
	if dsn := os.Getenv("DATABASE_URL"); dsn != "" {
		db, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, err
		}
		if err := db.PingContext(ctx); err != nil {
			db.Close()
			return nil, err
		}
		return db, nil
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return database.OpenSQL(ctx, cfg)
}
