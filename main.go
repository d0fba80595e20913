package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NomadCrew/neoevents/config"
	"github.com/NomadCrew/neoevents/db"
	"github.com/NomadCrew/neoevents/handlers"
	"github.com/NomadCrew/neoevents/internal/notification"
	"github.com/NomadCrew/neoevents/internal/state"
	"github.com/NomadCrew/neoevents/internal/websocket"
	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/pkg/ipgeo"
	"github.com/NomadCrew/neoevents/pkg/nominatim"
	"github.com/NomadCrew/neoevents/pkg/ticketmaster"
	"github.com/NomadCrew/neoevents/router"
	"github.com/NomadCrew/neoevents/services"
	"github.com/NomadCrew/neoevents/store"
	"github.com/NomadCrew/neoevents/store/memory"
	"github.com/NomadCrew/neoevents/store/postgres"
	redisstore "github.com/NomadCrew/neoevents/store/redis"
	"github.com/NomadCrew/neoevents/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	printConfig := flag.Bool("print-config", false, "Print the effective configuration as YAML and exit")
	flag.Parse()

	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	logger.InitLogger()
	log := logger.GetLogger()
	defer logger.Close()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	if *printConfig {
		if err := cfg.WriteYAML(os.Stdout); err != nil {
			log.Fatalf("Failed to print config: %v", err)
		}
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatalf("Server stopped with error: %v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, log *zap.SugaredLogger) error {
	be, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer be.Close()

	favorites := store.NewFavoritesRepository(be.kv, cfg.Favorites.Key)

	pool := services.NewWorkerPool(cfg.WorkerPool)
	pool.Start()

	notifier := newFavoriteNotifier(cfg, pool)

	hub := websocket.NewHub()

	source := ticketmaster.NewClient(cfg.Ticketmaster.APIKey,
		ticketmaster.WithBaseURL(cfg.Ticketmaster.BaseURL),
		ticketmaster.WithRadiusKm(cfg.Ticketmaster.RadiusKm),
		ticketmaster.WithHTTPClient(&http.Client{Timeout: seconds(cfg.Ticketmaster.TimeoutSeconds, 10)}),
	)
	geocoder := nominatim.NewClient(
		nominatim.WithBaseURL(cfg.Geocoding.BaseURL),
		nominatim.WithUserAgent(cfg.Geocoding.UserAgent),
		nominatim.WithHTTPClient(&http.Client{Timeout: seconds(cfg.Geocoding.TimeoutSeconds, 10)}),
	)

	locations := state.NewLocationStore(newPositioner(cfg), geocoder, hub)
	events := state.NewEventStore(source, favorites, notifier)
	coordinator := services.NewCoordinator(locations, events, cfg.Server.Location(), services.WithPublisher(hub))
	defer coordinator.Close()

	coordinator.Start(ctx, cfg.Device.AcquireOnStartup)

	var scheduler *services.RefreshScheduler
	if cfg.Refresh.Cron != "" {
		scheduler, err = services.NewRefreshScheduler(cfg.Refresh.Cron, cfg.Server.Location(), coordinator)
		if err != nil {
			return err
		}
		scheduler.Start()
	}

	healthOpts := []services.HealthOption{services.WithEventSource(cfg.Ticketmaster.APIKey != "")}
	if be.pg != nil {
		healthOpts = append(healthOpts, services.WithDatabase(be.pg))
	}
	var searchLimiter services.RateLimiter = services.NewMemoryRateLimiter()
	if be.redis != nil {
		healthOpts = append(healthOpts, services.WithRedis(be.redis))
		searchLimiter = services.NewRedisRateLimiter(be.redis)
	}

	r := router.SetupRouter(router.Dependencies{
		Config:              cfg,
		DiscoveryHandler:    handlers.NewDiscoveryHandler(coordinator),
		FavoritesHandler:    handlers.NewFavoritesHandler(coordinator, cfg.Server.Location()),
		NotificationHandler: handlers.NewNotificationHandler(notifier),
		HealthHandler:       handlers.NewHealthHandler(services.NewHealthService(favorites, cfg.Server.Version, healthOpts...)),
		WSHandler:           websocket.NewHandler(hub, coordinator, &cfg.Server),
		SearchLimiter:       searchLimiter,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Infow("Starting server", "port", cfg.Server.Port, "environment", cfg.Server.Environment)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), pool.ShutdownTimeout()+5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warnw("HTTP server shutdown incomplete", "error", err)
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			log.Warnw("Refresh scheduler did not stop in time", "error", err)
		}
	}
	if err := hub.Shutdown(shutdownCtx); err != nil {
		log.Warnw("WebSocket hub shutdown incomplete", "error", err)
	}
	if err := pool.Shutdown(shutdownCtx); err != nil {
		log.Warnw("Worker pool shutdown incomplete", "error", err)
	}
	log.Info("Server stopped")
	return nil
}

type backends struct {
	kv    store.KVStore
	redis *redis.Client
	pg    *pgxpool.Pool
}

func (b *backends) Close() {
	if b.redis != nil {
		_ = b.redis.Close()
	}
	if b.pg != nil {
		b.pg.Close()
	}
}

// openBackends connects the favorites backend. The postgres backend runs
// migrations first.
func openBackends(ctx context.Context, cfg *config.Config) (*backends, error) {
	b := &backends{}
	switch cfg.Favorites.Backend {
	case config.FavoritesBackendRedis:
		client, err := config.InitRedis(ctx, &cfg.Redis)
		if err != nil {
			return nil, err
		}
		b.redis = client
		b.kv = redisstore.NewKV(client)
	case config.FavoritesBackendPostgres:
		if err := db.RunMigrations(cfg.Database.URL()); err != nil {
			return nil, err
		}
		pool, err := config.InitDB(ctx, &cfg.Database)
		if err != nil {
			return nil, err
		}
		b.pg = pool
		b.kv = postgres.NewKV(pool)
	default:
		b.kv = memory.NewKV()
	}
	return b, nil
}

func newPositioner(cfg *config.Config) state.DevicePositioner {
	switch cfg.Device.Provider {
	case config.DeviceProviderIPGeo:
		return ipgeo.NewClient(cfg.Device.IPGeoURL,
			ipgeo.WithHTTPClient(&http.Client{Timeout: seconds(cfg.Device.TimeoutSeconds, 5)}))
	case config.DeviceProviderStatic:
		return state.StaticPositioner{Coords: types.Coordinates{Lat: cfg.Device.Latitude, Lng: cfg.Device.Longitude}}
	default:
		return state.UnavailablePositioner{}
	}
}

func newFavoriteNotifier(cfg *config.Config, pool *services.WorkerPool) *services.FavoriteNotifier {
	n := cfg.Notification
	if !n.Enabled {
		return services.NewFavoriteNotifier(nil, nil, "", false)
	}
	client := notification.NewClient(n.APIUrl, n.APIKey,
		notification.WithHTTPClient(&http.Client{Timeout: seconds(n.TimeoutSeconds, 10)}))
	return services.NewFavoriteNotifier(client, pool, n.UserID, n.PermissionGranted)
}

func seconds(n, fallback int) time.Duration {
	if n <= 0 {
		n = fallback
	}
	return time.Duration(n) * time.Second
}
