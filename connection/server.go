package connection

import (
	"context"
	"errors"
	"georeport/controller"
	"georeport/controller/category"
	"georeport/controller/report"
	"georeport/controller/view"
	"georeport/mapview"
	"georeport/scheduler"
	"georeport/services"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
)

func NewRouter(deps *controller.Deps) *gin.Engine {
	router := gin.Default()

	router.GET("/", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "Api is running!"})
	})

	router.Use(cors.Default())

	report.ReportController(router, deps)
	category.CategoryController(router, deps)
	view.MapViewController(router, deps)

	return router
}

// Services holds everything built from the configuration, plus what has to
// be torn down on shutdown.
type Services struct {
	Deps *controller.Deps
	cron *cron.Cron
}

func (s *Services) Close() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
	s.Deps.Views.CloseAll()
}

// Build wires stores, category sources, notifiers and the import job from
// cfg. Optional backends are skipped when not configured.
func Build(ctx context.Context, cfg Config) (*Services, error) {
	DB, err := DBConnection(cfg)
	if err != nil {
		return nil, err
	}
	app, FB, err := FBConnection(ctx, cfg)
	if err != nil {
		return nil, err
	}

	resolver := services.DefaultResolver()
	notifier := services.MultiNotifier{&services.LogNotifier{}}
	if app != nil {
		fcm, err := services.NewFCMNotifier(ctx, app, cfg.NoticeTopic)
		if err != nil {
			return nil, err
		}
		notifier = append(notifier, fcm)
	}

	var store services.ReportStore
	sources := []services.CategorySource{}
	if DB != nil {
		gs := services.NewGormStore(DB)
		if err := gs.Migrate(ctx); err != nil {
			return nil, err
		}
		if err := gs.Seed(ctx, services.SeedReports(), services.SeedCategories()); err != nil {
			return nil, err
		}
		store = gs
		sources = append(sources, services.GormCategorySource{DB: DB})
	} else {
		store = services.NewMemoryStore(services.SeedReports())
		sources = append(sources, services.StaticCategorySource{Label: "seed", Categories: services.SeedCategories()})
	}

	deps := &controller.Deps{
		Store:    store,
		Importer: &services.Importer{Dir: cfg.ImportDir, Store: store, Notifier: notifier},
		Notifier: notifier,
		Resolver: resolver,
	}
	if FB != nil {
		sources = append(sources, services.FirestoreCategorySource{Client: FB})
		deps.Mirror = services.FirestoreMirror{Client: FB, Resolver: resolver}
	}
	sources = append(sources, services.StaticCategorySource{Label: "local", Categories: services.LocalCategories()})
	deps.Categories = services.NewCategoryService(store, sources...)
	deps.Views = mapview.NewRegistry(ctx, store, resolver, notifier, mapview.Options{
		Interval: cfg.RefreshInterval,
		Timeout:  cfg.RefreshTimeout,
		Retries:  cfg.RefreshRetries,
	})

	s := &Services{Deps: deps}
	if cfg.ImportDir != "" {
		s.cron, err = scheduler.StartImportScheduler(ctx, cfg.ImportSchedule, deps.Importer)
		if err != nil {
			return nil, err
		}
	}
	return s, nil
}

func StartServer() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := LoadConfig()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	svc, err := Build(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to initialize services: %v", err)
	}

	srv := &http.Server{Addr: ":" + cfg.Port, Handler: NewRouter(svc.Deps)}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()
	log.Printf("Listening on :%s", cfg.Port)

	<-ctx.Done()
	log.Println("Shutting down")
	// closing the views ends their event streams
	svc.Close()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
