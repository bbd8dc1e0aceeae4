package main

import (
	"context"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"papergen/internal/auth"
	"papergen/internal/catalog"
	"papergen/internal/config"
	"papergen/internal/handler"
	"papergen/internal/middleware"
	"papergen/internal/repository/postgres"
	"papergen/internal/service/assembly"
	"papergen/internal/service/editor"
	"papergen/internal/service/export"
	"papergen/internal/service/generation"
	"papergen/internal/service/regen"
	"papergen/internal/service/session"

	"github.com/joho/godotenv"
	"github.com/rs/cors"
)

func main() {
	// Load .env file (silently ignore if it doesn't exist - for production)
	_ = godotenv.Load()

	// Load configuration
	cfg := config.Load()

	// Setup structured logging
	logLevel := slog.LevelInfo
	if cfg.Environment == "dev" {
		logLevel = slog.LevelDebug
	}

	logOutput := io.Writer(os.Stdout)
	if cfg.Debug {
		if f, err := config.SetupLogFile("logs", 5); err == nil {
			defer f.Close()
			logOutput = io.MultiWriter(os.Stdout, f)
		}
	}

	logger := slog.New(slog.NewJSONHandler(logOutput, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	logger.Info("server starting",
		"environment", cfg.Environment,
		"port", cfg.Port,
		"table_prefix", cfg.TablePrefix,
	)

	// Create JWT verifier against the identity provider's JWKS endpoint
	jwtVerifier, err := auth.NewJWTVerifier(cfg.JWKSURL, logger)
	if err != nil {
		log.Fatalf("Failed to create JWT verifier: %v", err)
	}
	defer jwtVerifier.Close()

	// Create pgx connection pool
	ctx := context.Background()
	pool, err := postgres.CreateConnectionPool(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()
	logger.Info("database connection established")

	// Create repositories
	tables := postgres.NewTableNames(cfg.TablePrefix)
	repoConfig := &postgres.RepositoryConfig{
		Pool:   pool,
		Tables: tables,
		Logger: logger,
	}
	paperRepo := postgres.NewPaperRepository(repoConfig)
	accountRepo := postgres.NewAccountRepository(repoConfig)
	approvalRepo := postgres.NewApprovalRepository(repoConfig)
	patternRepo := postgres.NewPatternRepository(repoConfig)
	pageRepo := postgres.NewPageRepository(repoConfig)
	txManager := postgres.NewTransactionManager(pool)

	// Initialize the question/curriculum/label catalog
	catalogRegistry, err := catalog.NewRegistry()
	if err != nil {
		log.Fatalf("Failed to initialize catalog registry: %v", err)
	}
	logger.Info("catalog registry initialized")

	// Setup the generation collaborator (real or offline)
	generator, err := generation.SetupGenerator(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to setup question generator: %v", err)
	}
	imageClient := generation.NewImageClient(cfg, logger)

	// Create services
	queue := assembly.NewQueue()
	defer queue.Shutdown()

	registry := session.NewRegistry()
	assembler := assembly.NewService(generator, accountRepo, catalogRegistry, queue, logger)
	editorSvc := editor.NewService(catalogRegistry, logger)
	regenGov := regen.NewGovernor(generator, logger)
	exporter := export.NewService(paperRepo, logger)

	// Create handlers
	draftHandler := handler.NewDraftHandler(registry, assembler, editorSvc, regenGov, exporter, imageClient, accountRepo, patternRepo, logger)
	paperHandler := handler.NewPaperHandler(paperRepo, accountRepo, registry, logger)
	accountHandler := handler.NewAccountHandler(accountRepo, approvalRepo, txManager, logger)
	catalogHandler := handler.NewCatalogHandler(catalogRegistry, accountRepo, patternRepo, pageRepo, logger)

	logger.Info("services initialized")

	// Create HTTP router (Go 1.22+ enhanced patterns)
	mux := http.NewServeMux()

	// Public routes - no token required
	mux.HandleFunc("GET /health", handler.HealthCheck)
	mux.HandleFunc("GET /api/pages/{slug}", catalogHandler.GetPage)
	mux.HandleFunc("GET /api/catalog/question-types", catalogHandler.QuestionTypes)
	mux.HandleFunc("GET /api/catalog/curriculum", catalogHandler.Curriculum)

	// Everything else under /api requires a verified token
	api := http.NewServeMux()

	// Account routes
	api.HandleFunc("POST /api/accounts", accountHandler.Register)
	api.HandleFunc("GET /api/accounts/me", accountHandler.Me)

	// Approval routes
	api.HandleFunc("POST /api/approvals", accountHandler.SubmitApproval)
	api.HandleFunc("GET /api/approvals", accountHandler.ListApprovals)
	api.HandleFunc("POST /api/approvals/{id}/approve", accountHandler.ApproveRequest)
	api.HandleFunc("POST /api/approvals/{id}/reject", accountHandler.RejectRequest)

	// Draft session routes
	api.HandleFunc("POST /api/drafts", draftHandler.CreateDraft)
	api.HandleFunc("GET /api/drafts/{id}", draftHandler.GetDraft)
	api.HandleFunc("DELETE /api/drafts/{id}", draftHandler.CloseDraft)
	api.HandleFunc("GET /api/drafts/{id}/quota", draftHandler.Quota)
	api.HandleFunc("POST /api/drafts/{id}/blueprint", draftHandler.AddBlueprintItem)
	api.HandleFunc("DELETE /api/drafts/{id}/blueprint/{itemID}", draftHandler.RemoveBlueprintItem)
	api.HandleFunc("POST /api/drafts/{id}/assemble", draftHandler.Assemble)
	api.HandleFunc("PATCH /api/drafts/{id}/meta", draftHandler.UpdateMeta)
	api.HandleFunc("PATCH /api/drafts/{id}/sections/{sectionID}", draftHandler.UpdateSection)
	api.HandleFunc("DELETE /api/drafts/{id}/sections/{sectionID}", draftHandler.DeleteSection)
	api.HandleFunc("POST /api/drafts/{id}/sections/{sectionID}/questions", draftHandler.AddQuestion)
	api.HandleFunc("PATCH /api/drafts/{id}/sections/{sectionID}/questions/{questionID}", draftHandler.UpdateQuestion)
	api.HandleFunc("DELETE /api/drafts/{id}/sections/{sectionID}/questions/{questionID}", draftHandler.DeleteQuestion)
	api.HandleFunc("POST /api/drafts/{id}/sections/{sectionID}/questions/{questionID}/regenerate", draftHandler.RegenerateQuestion)
	api.HandleFunc("POST /api/drafts/{id}/sections/{sectionID}/questions/{questionID}/image", draftHandler.AttachImage)
	api.HandleFunc("DELETE /api/drafts/{id}/sections/{sectionID}/questions/{questionID}/image", draftHandler.DetachImage)
	api.HandleFunc("POST /api/drafts/{id}/save", draftHandler.SaveDraft)
	api.HandleFunc("POST /api/drafts/{id}/export", draftHandler.Export)

	// Paper library routes
	api.HandleFunc("GET /api/papers", paperHandler.ListMine)
	api.HandleFunc("GET /api/papers/{id}", paperHandler.GetPaper)
	api.HandleFunc("POST /api/papers/{id}/draft", paperHandler.OpenDraft)
	api.HandleFunc("DELETE /api/papers/{id}", paperHandler.HidePaper)
	api.HandleFunc("DELETE /api/papers/{id}/purge", paperHandler.PurgePaper)

	// Review surface routes
	api.HandleFunc("GET /api/review/papers", paperHandler.ListForReview)
	api.HandleFunc("DELETE /api/review/papers/{id}", paperHandler.HideFromReview)

	// Pattern routes
	api.HandleFunc("GET /api/patterns", catalogHandler.ListPatterns)
	api.HandleFunc("POST /api/patterns", catalogHandler.UpsertPattern)

	// The more specific public patterns above win over this subtree
	mux.Handle("/api/", middleware.AuthMiddleware(jwtVerifier)(api))

	// Build middleware chain
	var root http.Handler = mux

	// Apply middleware in reverse order (they wrap each other)
	// Order: CORS → Recovery → Routes
	root = middleware.Recovery(logger)(root)

	// CORS - Must be outermost to handle OPTIONS pre-flight requests
	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   strings.Split(cfg.CORSOrigins, ","),
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Origin", "Content-Type", "Accept", "Authorization"},
		AllowCredentials: true,
	})
	root = corsHandler.Handler(root)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      root,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // Assembly waits on the generation collaborator
		IdleTimeout:  60 * time.Second,
	}

	// Start server
	logger.Info("server listening", "port", cfg.Port)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("Failed to start server: %v", err)
	}
}
