package services

import (
	"context"
	"time"

	"github.com/NomadCrew/neoevents/logger"
	"github.com/NomadCrew/neoevents/types"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const poolSaturationThreshold = 0.8

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DBPool is the part of *pgxpool.Pool the health check needs.
type DBPool interface {
	Ping(ctx context.Context) error
	Stat() *pgxpool.Stat
}

// HealthOption adds an optional component to the health report.
type HealthOption func(*HealthService)

// WithDatabase reports the Postgres pool.
func WithDatabase(pool DBPool) HealthOption {
	return func(h *HealthService) {
		h.db = pool
	}
}

// WithRedis reports the Redis connection.
func WithRedis(client redis.Cmdable) HealthOption {
	return func(h *HealthService) {
		h.redis = client
	}
}

// WithEventSource reports whether the ticketing API is configured.
func WithEventSource(configured bool) HealthOption {
	return func(h *HealthService) {
		h.eventSourceConfigured = &configured
	}
}

type HealthService struct {
	favorites             Pinger
	db                    DBPool
	redis                 redis.Cmdable
	eventSourceConfigured *bool
	version               string
	startedAt             time.Time
	log                   *zap.SugaredLogger
}

func NewHealthService(favorites Pinger, version string, opts ...HealthOption) *HealthService {
	h := &HealthService{
		favorites: favorites,
		version:   version,
		startedAt: time.Now(),
		log:       logger.GetLogger().Named("health"),
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

func (h *HealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	components := make(map[string]types.HealthComponent)

	components["favorites"] = h.checkFavorites(ctx)
	if h.db != nil {
		components["database"] = h.checkDatabase(ctx)
	}
	if h.redis != nil {
		components["redis"] = h.checkRedis(ctx)
	}
	if h.eventSourceConfigured != nil {
		components["ticketmaster"] = h.checkEventSource()
	}

	overall := types.HealthStatusUp
	for _, c := range components {
		switch c.Status {
		case types.HealthStatusDown:
			overall = types.HealthStatusDown
		case types.HealthStatusDegraded:
			if overall != types.HealthStatusDown {
				overall = types.HealthStatusDegraded
			}
		}
	}

	return types.HealthCheck{
		Status:     overall,
		Components: components,
		Version:    h.version,
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
		Uptime:     time.Since(h.startedAt).Truncate(time.Second).String(),
	}
}

func (h *HealthService) checkFavorites(ctx context.Context) types.HealthComponent {
	if h.favorites == nil {
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Favorites storage not configured"}
	}
	if err := h.favorites.Ping(ctx); err != nil {
		h.log.Errorw("Favorites storage health check failed", "error", err)
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Favorites storage unreachable"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkDatabase(ctx context.Context) types.HealthComponent {
	if err := h.db.Ping(ctx); err != nil {
		h.log.Errorw("Database health check failed", "error", err)
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Database connection failed"}
	}

	if stat := h.db.Stat(); stat != nil && stat.MaxConns() > 0 {
		if float64(stat.AcquiredConns())/float64(stat.MaxConns()) > poolSaturationThreshold {
			return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Connection pool near capacity"}
		}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkRedis(ctx context.Context) types.HealthComponent {
	if err := h.redis.Ping(ctx).Err(); err != nil {
		h.log.Errorw("Redis health check failed", "error", err)
		return types.HealthComponent{Status: types.HealthStatusDown, Details: "Redis connection failed"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}

func (h *HealthService) checkEventSource() types.HealthComponent {
	if !*h.eventSourceConfigured {
		return types.HealthComponent{Status: types.HealthStatusDegraded, Details: "Ticketmaster API key not configured"}
	}
	return types.HealthComponent{Status: types.HealthStatusUp}
}
