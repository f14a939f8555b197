package router

import (
	"time"

	"github.com/redis/go-redis/v9"

	appuser "github.com/oksasatya/user-directory/internal/application"
	"github.com/oksasatya/user-directory/internal/container"
	pginfra "github.com/oksasatya/user-directory/internal/infrastructure/postgres"
	handlers "github.com/oksasatya/user-directory/internal/interface/http"
	"github.com/oksasatya/user-directory/internal/interface/middleware"
	"github.com/oksasatya/user-directory/internal/router/modules"
	"github.com/oksasatya/user-directory/pkg/helpers"
)

type UserModuleDeps struct {
	Service *appuser.Service
	Handler *handlers.UserHandler
}

// redisCmdable keeps an unset client a nil interface.
func redisCmdable() redis.Cmdable {
	if rdb := container.GetRedis(); rdb != nil {
		return rdb
	}
	return nil
}

// BuildUserService wires the user service from the container singletons.
// Optional side channels are left nil when their client is absent.
func BuildUserService() *appuser.Service {
	cfg := container.GetConfig()
	pool := container.GetPGPool()

	service := appuser.NewService(
		pginfra.NewUserRepository(pool),
		helpers.NewBcryptHasher(cfg.BcryptCost),
		container.GetLogger(),
	)
	service.Cfg = cfg
	service.Audit = pginfra.NewAuditRepository(pool)
	service.Redis = redisCmdable()
	if cfg.UserCacheTTL > 0 {
		service.CacheTTL = cfg.UserCacheTTL
	}
	if es := container.GetES(); es != nil {
		service.Indexer = helpers.NewESIndexer(es, cfg.ESUsersIndex)
	}
	if pub := container.GetRabbitPub(); pub != nil {
		service.Mail = pub
	}
	if gcs := container.GetGCS(); gcs != nil && cfg.GCSBucket != "" {
		service.Avatars = helpers.NewGCSUploader(gcs, cfg.GCSBucket)
	}
	return service
}

func buildUserDeps() UserModuleDeps {
	service := BuildUserService()
	return UserModuleDeps{
		Service: service,
		Handler: handlers.NewUserHandler(service, container.GetLogger()),
	}
}

// InitModules initializes all application modules and registers them with the router registry
// This function should be called once during application startup to wire up all modules
func InitModules(r *Registry) {
	cfg := container.GetConfig()
	userDeps := buildUserDeps()

	r.Add(modules.NewUserModule(userDeps.Handler, modules.RateLimits{
		Redis:         redisCmdable(),
		Logger:        container.GetLogger(),
		Create:        cfg.RateLimitCreate,
		Update:        cfg.RateLimitUpdate,
		Window:        cfg.RateLimitWindow,
		BypassPrivate: cfg.RateLimitBypassPrivate,
	}))

	if cfg.DebugMetricsEnabled {
		limiter := middleware.RateLimit(redisCmdable(), container.GetLogger(), 120, time.Minute, middleware.KeyByIPAndRoute(), nil)
		r.Add(modules.NewDebugModule(limiter))
	}
}
