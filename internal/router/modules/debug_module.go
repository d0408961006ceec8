package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/tonearm/tonearm/internal/container"
	handlers "github.com/tonearm/tonearm/internal/interface/http"
	"github.com/tonearm/tonearm/internal/interface/middleware"
)

type DebugModule struct {
	Handler *handlers.DebugHandler
}

func NewDebugModule(h *handlers.DebugHandler) *DebugModule {
	return &DebugModule{Handler: h}
}

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Probes are rate-limited per IP, with a bypass for in-cluster callers
	rl := middleware.RateLimit(container.GetRedis(), 120, time.Minute, middleware.KeyByIP(), middleware.AllowPrivateIP())

	rg.GET("/", m.Handler.Root)
	rg.GET("/ping-db", rl, m.Handler.PingDB)
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
