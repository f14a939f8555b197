package modules

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	handlers "github.com/oksasatya/user-directory/internal/interface/http"
	"github.com/oksasatya/user-directory/internal/interface/middleware"
)

// RateLimits configures the per-IP limiters on write routes. A nil Redis disables them.
type RateLimits struct {
	Redis         redis.Cmdable
	Logger        *logrus.Logger
	Create        int
	Update        int
	Window        time.Duration
	BypassPrivate bool
}

func (l RateLimits) limiter(n int) gin.HandlerFunc {
	var allow middleware.AllowFunc
	if l.BypassPrivate {
		allow = middleware.AllowPrivateIP()
	}
	return middleware.RateLimit(l.Redis, l.Logger, n, l.Window, middleware.KeyByIPAndRoute(), allow)
}

// UserModule serves the user directory:
//
//	POST /users              create
//	GET  /users/:id          read
//	PUT  /users/:id          update email, password, avatar
//	PUT  /users/:id/avatar   upload an avatar image
type UserModule struct {
	Handler *handlers.UserHandler
	Limits  RateLimits
}

func NewUserModule(h *handlers.UserHandler, limits RateLimits) *UserModule {
	return &UserModule{Handler: h, Limits: limits}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	createLimiter := m.Limits.limiter(m.Limits.Create)
	updateLimiter := m.Limits.limiter(m.Limits.Update)

	users := rg.Group("/users")
	{
		users.POST("", createLimiter, m.Handler.Create)
		users.GET("/:id", m.Handler.Get)
		users.PUT("/:id", updateLimiter, m.Handler.Update)
		users.PUT("/:id/avatar", updateLimiter, m.Handler.UploadAvatar)
	}
}
