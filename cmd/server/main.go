package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"evinburada/internal/catalog"
	"evinburada/internal/config"
	"evinburada/internal/gazetteer"
	"evinburada/internal/handler"
	"evinburada/internal/job"
	"evinburada/internal/logger"
	"evinburada/internal/model"
	"evinburada/internal/repository"
	"evinburada/internal/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewStructured(cfg.Logging.Level, cfg.Logging.Format)
	defer log.Sync()

	log.Info("Evinburada chat search", map[string]interface{}{
		"version":    Version,
		"build_time": BuildTime,
		"git_commit": GitCommit,
	})

	if err := run(cfg, log); err != nil {
		log.WithError(err).Error("server exited with error", nil)
		_ = log.Sync()
		os.Exit(1)
	}
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx := context.Background()
	gin.SetMode(cfg.Server.GinMode)

	places := gazetteer.Default()

	// Catalog: PostgreSQL when configured, generated otherwise
	var repo *repository.PostgresRepository
	if cfg.PostgreSQLEnabled() {
		var err error
		repo, err = repository.NewPostgresRepository(
			cfg.GetPostgreSQLDSN(),
			cfg.PostgreSQL.MaxConnections,
			cfg.PostgreSQL.MaxIdleConnections,
		)
		if err != nil {
			return err
		}
		defer repo.Close()
		if err := repo.EnsureSchema(ctx); err != nil {
			return err
		}
		log.Info("connected to PostgreSQL database", nil)
	}

	cat, err := loadCatalog(ctx, cfg, places, repo, log)
	if err != nil {
		return err
	}

	// Sessions: Redis when configured, in-process otherwise
	var (
		store service.SessionStore
		guard service.TurnGuard
	)
	if cfg.RedisEnabled() {
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Address,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer client.Close()
		if err := client.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("failed to connect to redis: %w", err)
		}
		store = service.NewRedisStore(client, cfg.Redis.SessionTTL)
		guard = service.NewRedisGuard(client, cfg.Extractor.TurnTimeout+10*time.Second)
		log.Info("using redis session store", map[string]interface{}{"addr": cfg.Redis.Address})
	} else {
		memory := service.NewMemoryStore(cfg.Redis.SessionTTL)
		sweeper, err := job.StartSessionSweeper(memory, job.DefaultSweepSpec, log)
		if err != nil {
			return err
		}
		defer sweeper.Stop()
		store = memory
		guard = service.NewMemoryGuard()
		log.Info("using in-memory session store", map[string]interface{}{"ttl": cfg.Redis.SessionTTL.String()})
	}

	extractor, err := service.NewExtractor(cfg, places, log)
	if err != nil {
		return err
	}
	backend := config.ExtractorLocal
	if _, ok := extractor.(*service.LLMExtractor); ok {
		backend = config.ExtractorLLM
	}

	var recorder service.Recorder
	if repo != nil {
		recorder = repo
	}

	defaultSort := model.ParseSortOrder(cfg.Search.DefaultSort, model.SortNewest)
	chatService := service.NewChatService(extractor, store, guard, cat, log,
		service.WithRecorder(recorder),
		service.WithTurnTimeout(cfg.Extractor.TurnTimeout),
		service.WithDefaultSort(defaultSort),
		service.WithBackendName(backend),
	)
	searchService := service.NewSearchService(cat, recorder, log, defaultSort)

	log.Info("services initialized", map[string]interface{}{
		"extractor": backend,
		"listings":  cat.Len(),
	})

	handlers := handler.Handlers{
		Chat:     handler.NewChatHandler(chatService),
		Search:   handler.NewSearchHandler(searchService, cfg.Search.DefaultLimit, cfg.Search.MaxLimit),
		Feedback: handler.NewFeedbackHandler(searchService),
	}
	if repo != nil {
		handlers.Import = handler.NewImportHandler(repo)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{cfg.Server.AllowedOrigins}
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Content-Type", "Authorization"}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":     "healthy",
			"service":    "evinburada-chat-search",
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/version", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"version":    Version,
			"build_time": BuildTime,
			"git_commit": GitCommit,
		})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	handler.RegisterRoutes(router.Group("/api/v1"), handlers)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{Addr: addr, Handler: router}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", map[string]interface{}{"addr": addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("failed to start server: %w", err)
	case <-quit:
	}

	log.Info("shutting down server", nil)
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	log.Info("server stopped", nil)
	return nil
}

// loadCatalog reads listings from PostgreSQL. An empty table is seeded with
// the generated catalog so a fresh database serves the same listings.
func loadCatalog(ctx context.Context, cfg *config.Config, places *gazetteer.Gazetteer, repo *repository.PostgresRepository, log logger.Logger) (*catalog.Catalog, error) {
	if repo == nil {
		cat := catalog.Generate(places, cfg.Catalog.MockPerDistrict, cfg.Catalog.Seed, time.Now())
		log.Info("generated mock catalog", map[string]interface{}{"listings": cat.Len(), "seed": cfg.Catalog.Seed})
		return cat, nil
	}

	listings, err := repo.LoadListings(ctx)
	if err != nil {
		return nil, err
	}
	if len(listings) > 0 {
		log.Info("loaded catalog from database", map[string]interface{}{"listings": len(listings)})
		return catalog.New(listings)
	}

	cat := catalog.Generate(places, cfg.Catalog.MockPerDistrict, cfg.Catalog.Seed, time.Now())
	written, errs := repo.ImportListings(ctx, cat.All())
	fields := map[string]interface{}{"written": written, "failed": len(errs)}
	if len(errs) > 0 {
		fields["first_error"] = errs[0]
		log.Warn("catalog seeding incomplete", fields)
	} else {
		log.Info("seeded empty database with generated catalog", fields)
	}
	return cat, nil
}
