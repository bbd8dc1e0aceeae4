package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"time"

	"papergen/internal/auth"
	"papergen/internal/config"
	"papergen/internal/domain/models"
	"papergen/internal/repository/postgres"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
)

func main() {
	// Parse command-line flags
	dropTables := flag.Bool("drop-tables", false, "Drop all tables before seeding (fresh start)")
	schemaOnly := flag.Bool("schema-only", false, "Only set up schema, don't seed demo data")
	flag.Parse()

	// Load .env file
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// SAFETY: Prevent destructive operations in production
	if cfg.Environment == "prod" && *dropTables {
		log.Fatalf("🚫 BLOCKED: Cannot run --drop-tables in production environment")
	}

	// Setup logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	if *schemaOnly {
		log.Printf("🏗️  Setting up schema only (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	} else {
		log.Printf("🌱 Seeding database (environment: %s, prefix: %s)", cfg.Environment, cfg.TablePrefix)
	}

	// Create database connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	// Create table names
	tables := postgres.NewTableNames(cfg.TablePrefix)

	// Drop tables if requested
	if *dropTables {
		log.Println("🗑️  Dropping all tables...")
		if err := dropAllTables(ctx, pool, tables); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		log.Println("✅ Tables dropped")
	}

	// Run schema to ensure tables exist
	log.Println("📋 Ensuring database schema is up to date...")
	if err := runSchema(ctx, pool, tables, cfg.TablePrefix); err != nil {
		log.Fatalf("Failed to run schema: %v", err)
	}
	log.Println("✅ Schema ready")

	if *schemaOnly {
		log.Println("✅ Schema setup complete (schema-only mode)")
		return
	}

	// Create repositories
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	accountRepo := postgres.NewAccountRepository(repoConfig)
	patternRepo := postgres.NewPatternRepository(repoConfig)
	pageRepo := postgres.NewPageRepository(repoConfig)

	// Seed demo accounts, one per role/plan combination the UI needs
	log.Println("👤 Seeding demo accounts...")
	now := time.Now()
	accounts := []models.Account{
		{ID: uuid.NewString(), Email: "teacher@example.com", Name: "Demo Teacher", Role: models.RoleTeacher, Plan: models.PlanFree, Credits: 2},
		{ID: uuid.NewString(), Email: "basic@example.com", Name: "Basic Teacher", Role: models.RoleTeacher, Plan: models.PlanBasic, Credits: 10},
		{ID: uuid.NewString(), Email: "reviewer@example.com", Name: "Demo Reviewer", Role: models.RoleReviewer, Plan: models.PlanFree, Credits: 0},
		{ID: uuid.NewString(), Email: "admin@example.com", Name: "Demo Admin", Role: models.RoleAdmin, Plan: models.PlanFree, Credits: 0},
	}

	// When the identity provider's admin API is configured, provision a
	// matching login for each demo account so the seeded ids line up with
	// the JWT subject claims.
	if cfg.AuthAdminURL != "" && cfg.AuthServiceKey != "" {
		log.Println("🔑 Provisioning identity provider logins...")
		adminClient := auth.NewAdminClient(cfg.AuthAdminURL, cfg.AuthServiceKey)
		for i := range accounts {
			id, err := adminClient.EnsureUser(accounts[i].Email, "password123")
			if err != nil {
				log.Fatalf("Failed to provision login for %s: %v", accounts[i].Email, err)
			}
			accounts[i].ID = id
			log.Printf("  ✓ %s", accounts[i].Email)
		}
	}

	for i := range accounts {
		accounts[i].CreatedAt = now
		accounts[i].UpdatedAt = now
		if err := accountRepo.Create(ctx, &accounts[i]); err != nil {
			// Re-running the seed against an existing database is fine
			log.Printf("  ⚠️  %s: %v", accounts[i].Email, err)
			continue
		}
		log.Printf("  ✓ %s (%s/%s)", accounts[i].Email, accounts[i].Role, accounts[i].Plan)
	}

	// Seed style presets
	log.Println("🎨 Seeding patterns...")
	patterns := []models.Pattern{
		{
			ID: uuid.NewString(), Name: "Board sample 2024", Class: "10", Subject: "Mathematics",
			Text: "Questions follow the board sample paper style: short numerical problems first, multi-step word problems later. Use real-world contexts.",
		},
		{
			ID: uuid.NewString(), Name: "Concept check", Class: "8", Subject: "Science",
			Text: "Short direct questions testing one concept each, written in simple language.",
		},
	}
	for i := range patterns {
		patterns[i].CreatedAt = now
		patterns[i].UpdatedAt = now
		if err := patternRepo.Upsert(ctx, &patterns[i]); err != nil {
			log.Fatalf("Failed to seed pattern %q: %v", patterns[i].Name, err)
		}
		log.Printf("  ✓ %s (class %s, %s)", patterns[i].Name, patterns[i].Class, patterns[i].Subject)
	}

	// Seed static pages
	log.Println("📄 Seeding pages...")
	pages := []models.Page{
		{Slug: "about", Title: "About", Body: "Build complete exam papers from a blueprint in minutes."},
		{Slug: "help", Title: "Help", Body: "Add blueprint rows, assemble, then edit any question before exporting."},
		{Slug: "plans", Title: "Plans", Body: "Free: 2 papers. Basic: 10. Standard: 25. Premium: 60."},
	}
	for i := range pages {
		pages[i].UpdatedAt = now
		if err := pageRepo.Upsert(ctx, &pages[i]); err != nil {
			log.Fatalf("Failed to seed page %q: %v", pages[i].Slug, err)
		}
		log.Printf("  ✓ /%s", pages[i].Slug)
	}

	log.Println("✅ Seeding complete")
}

// runSchema creates tables if they don't exist
func runSchema(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames, tablePrefix string) error {
	// Enable UUID extension
	_, err := pool.Exec(ctx, "CREATE EXTENSION IF NOT EXISTS \"uuid-ossp\"")
	if err != nil {
		return err
	}

	// Create accounts table
	createAccounts := `
		CREATE TABLE IF NOT EXISTS ` + tables.Accounts + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			email TEXT NOT NULL UNIQUE,
			name TEXT NOT NULL,
			role TEXT NOT NULL DEFAULT 'teacher',
			plan TEXT NOT NULL DEFAULT 'free',
			credits INTEGER NOT NULL DEFAULT 0 CHECK (credits >= 0),
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createAccounts); err != nil {
		return err
	}

	// Create papers table; sections live in a single JSONB column because
	// a paper is always read and written as a whole document
	createPapers := `
		CREATE TABLE IF NOT EXISTS ` + tables.Papers + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			owner_id UUID NOT NULL REFERENCES ` + tables.Accounts + `(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			class TEXT NOT NULL,
			subject TEXT NOT NULL,
			session TEXT NOT NULL DEFAULT '',
			duration TEXT NOT NULL DEFAULT '',
			max_marks DOUBLE PRECISION NOT NULL DEFAULT 0,
			instructions TEXT NOT NULL DEFAULT '',
			locale TEXT NOT NULL DEFAULT 'en',
			sections JSONB NOT NULL DEFAULT '[]',
			visible_to_owner BOOLEAN NOT NULL DEFAULT TRUE,
			visible_to_reviewer BOOLEAN NOT NULL DEFAULT TRUE,
			edit_count INTEGER NOT NULL DEFAULT 0,
			downloads INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createPapers); err != nil {
		return err
	}

	// Create approvals table
	createApprovals := `
		CREATE TABLE IF NOT EXISTS ` + tables.Approvals + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			account_id UUID NOT NULL REFERENCES ` + tables.Accounts + `(id) ON DELETE CASCADE,
			plan TEXT NOT NULL,
			reference TEXT NOT NULL,
			status TEXT NOT NULL DEFAULT 'pending',
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createApprovals); err != nil {
		return err
	}

	// Create patterns table
	createPatterns := `
		CREATE TABLE IF NOT EXISTS ` + tables.Patterns + ` (
			id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
			name TEXT NOT NULL,
			class TEXT NOT NULL,
			subject TEXT NOT NULL,
			text TEXT NOT NULL,
			created_at TIMESTAMPTZ DEFAULT NOW(),
			updated_at TIMESTAMPTZ DEFAULT NOW(),
			UNIQUE(class, subject, name)
		)
	`
	if _, err := pool.Exec(ctx, createPatterns); err != nil {
		return err
	}

	// Create pages table
	createPages := `
		CREATE TABLE IF NOT EXISTS ` + tables.Pages + ` (
			slug TEXT PRIMARY KEY,
			title TEXT NOT NULL,
			body TEXT NOT NULL,
			updated_at TIMESTAMPTZ DEFAULT NOW()
		)
	`
	if _, err := pool.Exec(ctx, createPages); err != nil {
		return err
	}

	// Create indexes
	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `papers_owner ON ` + tables.Papers + `(owner_id, created_at DESC) WHERE visible_to_owner`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `papers_review ON ` + tables.Papers + `(created_at DESC) WHERE visible_to_reviewer`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `approvals_pending ON ` + tables.Approvals + `(created_at) WHERE status = 'pending'`,
		`CREATE INDEX IF NOT EXISTS idx_` + tablePrefix + `patterns_class_subject ON ` + tables.Patterns + `(class, subject)`,
	}

	for _, indexSQL := range indexes {
		if _, err := pool.Exec(ctx, indexSQL); err != nil {
			return err
		}
	}

	return nil
}

// dropAllTables drops all tables in reverse order (to respect foreign keys)
func dropAllTables(ctx context.Context, pool *pgxpool.Pool, tables *postgres.TableNames) error {
	tableNames := []string{
		tables.Papers,
		tables.Approvals,
		tables.Patterns,
		tables.Pages,
		tables.Accounts,
	}

	for _, table := range tableNames {
		dropSQL := "DROP TABLE IF EXISTS " + table + " CASCADE"
		if _, err := pool.Exec(ctx, dropSQL); err != nil {
			return err
		}
		log.Printf("  ✓ Dropped %s", table)
	}

	return nil
}
