package http

import (
    "github.com/gin-gonic/gin"
    "github.com/prometheus/client_golang/prometheus/promhttp"
    "github.com/rs/zerolog"

    "github.com/example/focus-pulse/internal/config"
    "github.com/example/focus-pulse/internal/leave"
)

func NewRouter(cfg config.Config, log zerolog.Logger, svc service, book *leave.Book) *gin.Engine {
    if cfg.AppEnv != "dev" { gin.SetMode(gin.ReleaseMode) }
    r := gin.New()
    r.Use(gin.Recovery())
    r.Use(func(c *gin.Context){
        c.Next()
        log.Info().Str("m", c.Request.Method).Str("p", c.FullPath()).Int("s", c.Writer.Status()).Msg("http")
    })

    h := NewHandlers(cfg, log, svc, book)

    r.GET("/healthz", h.Healthz)
    r.GET("/metrics", gin.WrapH(promhttp.Handler()))

    r.GET("/api/report", h.Report)
    r.GET("/api/leave", h.LeaveList)
    r.PUT("/api/leave/:contributor", h.LeaveSet)
    r.DELETE("/api/leave/:contributor", h.LeaveReset)

    r.GET("/admin/last-run", h.LastRun)
    r.POST("/admin/run", h.RunNow)

    return r
}
