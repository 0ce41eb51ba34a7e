package entrypoint

import (
	"context"
	"encoding/hex"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/soundwave/internal/audit"
	"github.com/mrlokans/soundwave/internal/auth"
	"github.com/mrlokans/soundwave/internal/config"
	"github.com/mrlokans/soundwave/internal/database"
	"github.com/mrlokans/soundwave/internal/database/albums"
	dbaudit "github.com/mrlokans/soundwave/internal/database/audit"
	"github.com/mrlokans/soundwave/internal/database/comments"
	"github.com/mrlokans/soundwave/internal/database/likes"
	"github.com/mrlokans/soundwave/internal/database/reconcile"
	"github.com/mrlokans/soundwave/internal/database/songs"
	"github.com/mrlokans/soundwave/internal/database/users"
	"github.com/mrlokans/soundwave/internal/demo"
	http_controllers "github.com/mrlokans/soundwave/internal/http"
	"github.com/mrlokans/soundwave/internal/scheduler"
	"github.com/mrlokans/soundwave/internal/services"
	"github.com/mrlokans/soundwave/internal/storage"
	"github.com/mrlokans/soundwave/internal/storage/providers/gcs"
	"github.com/mrlokans/soundwave/internal/storage/providers/local"
	"github.com/mrlokans/soundwave/internal/tasks"
)

// ShutdownFunc is called during graceful shutdown to clean up resources.
type ShutdownFunc func(ctx context.Context)

func Serve(router *gin.Engine, cfg *config.Config, onShutdown ShutdownFunc) {
	timeout := time.Duration(cfg.Global.ShutdownTimeoutInSeconds) * time.Second

	srv := &http.Server{
		Addr:    fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port),
		Handler: router,
	}

	go func() {
		fmt.Printf("Starting server at %s:%d\n", cfg.HTTP.Host, cfg.HTTP.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// kill (no param) sends SIGTERM, kill -2 sends SIGINT; SIGKILL can't be caught
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Printf("Shutdown Server, waiting %v before killing\n", timeout)

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	// Stop background work first so nothing writes after the server is gone
	if onShutdown != nil {
		onShutdown(ctx)
	}

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server Shutdown:", err)
	}

	log.Println("Server exiting")
}

// OpenDatabase opens the relationship store with the configured retry policy.
func OpenDatabase(cfg *config.Config) (*database.Database, error) {
	opts := database.DefaultOptions()
	if cfg.Database.MaxTxAttempts > 0 {
		opts.MaxTxAttempts = cfg.Database.MaxTxAttempts
	}
	if cfg.Database.BusyTimeout > 0 {
		opts.BusyTimeout = cfg.Database.BusyTimeout
	}
	opts.LogLevel = database.ParseLogLevel(cfg.Database.LogLevel)

	return database.NewDatabase(cfg.Database.Path, opts)
}

// NewRecountService wires reconciliation with its audit trail and report archive.
func NewRecountService(cfg *config.Config, db *database.Database, auditor *audit.Service) *services.RecountService {
	var archive services.ReportArchiver
	if cfg.Recount.ReportDir != "" {
		archive = audit.NewArchive(cfg.Recount.ReportDir)
	}
	return services.NewRecountService(reconcile.NewRepository(db), auditor, archive)
}

func newMediaStore(ctx context.Context, cfg config.Media) (storage.Store, string, func(), error) {
	switch cfg.Provider {
	case config.MediaProviderGCS:
		client, err := gcs.NewClient(ctx, cfg.GCSBucket, cfg.GCSCredentialsFile)
		if err != nil {
			return nil, "", nil, err
		}
		log.Printf("Media storage: gs://%s", cfg.GCSBucket)
		closeFn := func() {
			if err := client.Close(); err != nil {
				log.Printf("Error closing GCS client: %v", err)
			}
		}
		return client, "", closeFn, nil
	case config.MediaProviderLocal, "":
		client, err := local.NewClient(cfg.LocalDir, cfg.PublicBaseURL)
		if err != nil {
			return nil, "", nil, err
		}
		log.Printf("Media storage: local directory %s", client.Dir())
		return client, client.Dir(), func() {}, nil
	default:
		return nil, "", nil, fmt.Errorf("unknown media provider %q", cfg.Provider)
	}
}

// secretOrGenerate returns the configured secret, or a random one that only
// lives as long as the process.
func secretOrGenerate(configured, envName string) string {
	if configured != "" {
		return configured
	}
	secret, err := auth.GenerateSecret()
	if err != nil {
		log.Fatalf("Failed to generate secret: %v", err)
	}
	log.Printf("Generated a random secret (set %s to persist it across restarts)", envName)
	return secret
}

func Run(cfg *config.Config, version string) {
	log.Printf("Starting Soundwave v%s", version)

	db, err := OpenDatabase(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Printf("Error closing database: %v", err)
		}
	}()

	// Repositories
	userRepo := users.NewRepository(db.DB)
	songRepo := songs.NewRepository(db)
	likeRepo := likes.NewRepository(db)
	commentRepo := comments.NewRepository(db)
	albumRepo := albums.NewRepository(db)

	auditRepo := dbaudit.NewRepository(db.DB)
	auditor := audit.NewService(auditRepo)
	defer auditor.Flush()

	recountService := NewRecountService(cfg, db, auditor)

	media, mediaDir, closeMedia, err := newMediaStore(context.Background(), cfg.Media)
	if err != nil {
		log.Fatalf("Failed to initialize media storage: %v", err)
	}
	defer closeMedia()

	// Authentication
	tokens := auth.NewTokenManager(secretOrGenerate(cfg.Auth.JWTSecret, "AUTH_JWT_SECRET"), cfg.Auth.TokenExpiry)
	authService := auth.NewService(userRepo, tokens, cfg.Auth)
	if len(cfg.Auth.AdminIDs) == 0 {
		log.Printf("No admin users configured (set AUTH_ADMIN_IDS); POST /api/admin/recount will refuse every caller")
	}

	sqlDB, err := db.DB.DB()
	if err != nil {
		log.Fatalf("Failed to get SQL DB for sessions: %v", err)
	}
	sessionManager, err := auth.NewSessionManager(sqlDB, cfg.Auth)
	if err != nil {
		log.Fatalf("Failed to initialize session manager: %v", err)
	}
	authMiddleware := auth.NewMiddleware(authService, sessionManager)

	csrfSecretRaw := secretOrGenerate(cfg.Auth.CSRFSecret, "AUTH_CSRF_SECRET")
	csrfSecret, err := hex.DecodeString(csrfSecretRaw)
	if err != nil {
		// Not hex, use as raw bytes
		csrfSecret = []byte(csrfSecretRaw)
	}

	rateLimiter := auth.NewRateLimiter(auth.DefaultRateLimitConfig())
	defer rateLimiter.Stop()

	// Task queue
	var taskClient *tasks.Client
	var taskCtxCancel context.CancelFunc
	var recountQueue http_controllers.RecountEnqueuer
	var schedulerQueue scheduler.Queue
	if cfg.Tasks.Enabled {
		taskClient, err = tasks.NewClient(cfg.Database.Path, tasks.ConfigFrom(cfg.Tasks))
		if err != nil {
			log.Fatalf("Failed to initialize task queue: %v", err)
		}
		defer func() {
			if err := taskClient.Close(); err != nil {
				log.Printf("Error closing task client: %v", err)
			}
		}()

		taskClient.Register(
			tasks.NewRecountQueue(recountService),
			tasks.NewCleanupAuditEventsQueue(auditor),
		)

		var taskCtx context.Context
		taskCtx, taskCtxCancel = context.WithCancel(context.Background())
		go taskClient.Start(taskCtx)

		recountQueue = taskClient
		schedulerQueue = taskClient
	}

	// Periodic reconciliation and audit retention
	var sched *scheduler.Scheduler
	if cfg.Recount.Enabled {
		sched = scheduler.New(recountService, auditor, schedulerQueue, scheduler.Options{
			RecountSchedule:      cfg.Recount.Schedule,
			AuditCleanupSchedule: cfg.Tasks.AuditCleanupSchedule,
			AuditRetentionDays:   cfg.Tasks.AuditRetentionDays,
		})
		if err := sched.Start(context.Background()); err != nil {
			log.Fatalf("Failed to start scheduler: %v", err)
		}
	}

	var demoMiddleware *demo.Middleware
	if cfg.Demo.Enabled {
		log.Printf("Demo mode enabled - write operations will be blocked")
		demoMiddleware = demo.NewMiddleware(true)
	}

	routerCfg := http_controllers.RouterConfig{
		Songs:          songRepo,
		SongLikes:      likeRepo,
		CommentLikes:   likeRepo,
		Comments:       commentRepo,
		Albums:         albumRepo,
		Users:          userRepo,
		Health:         db,
		Media:          media,
		MediaDir:       mediaDir,
		MaxUploadBytes: cfg.Media.MaxUploadBytes,
		Auditor:        auditor,
		AuditEvents:    auditor,
		Recount:        recountService,
		RecountQueue:   recountQueue,
		AuthService:    authService,
		AuthMiddleware: authMiddleware,
		SessionManager: sessionManager,
		RateLimiter:    rateLimiter,
		CSRFSecret:     csrfSecret,
		SecureCookies:  cfg.Auth.SecureCookies,
		MetricsEnabled: cfg.Metrics.Enabled,
		DemoMiddleware: demoMiddleware,
		Version:        version,
	}

	router := http_controllers.NewRouter(routerCfg)

	onShutdown := func(ctx context.Context) {
		if sched != nil {
			sched.Stop()
		}
		if taskClient != nil && taskCtxCancel != nil {
			taskClient.Stop(ctx)
			taskCtxCancel()
		}
	}

	Serve(router, cfg, onShutdown)
}
