package http

import (
    "context"
    "net/http"

    "github.com/gin-gonic/gin"
    "github.com/go-playground/validator/v10"
    "github.com/rs/zerolog"

    "github.com/example/focus-pulse/internal/config"
    "github.com/example/focus-pulse/internal/domain"
    "github.com/example/focus-pulse/internal/leave"
)

type service interface {
    BuildReport(ctx context.Context, timeframe string) (*domain.Report, error)
    RunWeeklyDigest(ctx context.Context) error
    GetLastRun(ctx context.Context) (any, error)
}

type Handlers struct {
    cfg      config.Config
    log      zerolog.Logger
    svc      service
    leave    *leave.Book
    validate *validator.Validate
}

func NewHandlers(cfg config.Config, log zerolog.Logger, svc service, book *leave.Book) *Handlers {
    return &Handlers{cfg: cfg, log: log, svc: svc, leave: book, validate: validator.New()}
}

func (h *Handlers) Healthz(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *Handlers) Report(c *gin.Context) {
    timeframe := c.DefaultQuery("timeframe", "this-week")
    if timeframe != "this-week" && timeframe != "last-week" {
        c.JSON(http.StatusBadRequest, gin.H{"error": "timeframe must be this-week or last-week"})
        return
    }
    rep, err := h.svc.BuildReport(c.Request.Context(), timeframe)
    if err != nil {
        // fetch failures surface as a gateway problem; the pipeline itself does not fail
        c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, rep)
}

type leaveRequest struct {
    Days int `json:"days" validate:"min=0,max=5"`
}

func (h *Handlers) LeaveSet(c *gin.Context) {
    contributor := c.Param("contributor")
    var req leaveRequest
    if err := c.ShouldBindJSON(&req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
        return
    }
    if err := h.validate.Struct(req); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": "days must be between 0 and 5"})
        return
    }
    if err := h.leave.Set(contributor, req.Days); err != nil {
        c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, gin.H{"contributor": contributor, "days": req.Days})
}

func (h *Handlers) LeaveReset(c *gin.Context) {
    contributor := c.Param("contributor")
    h.leave.Reset(contributor)
    c.JSON(http.StatusOK, gin.H{"contributor": contributor, "days": 0})
}

func (h *Handlers) LeaveList(c *gin.Context) {
    c.JSON(http.StatusOK, gin.H{"leave": h.leave.Days()})
}

func (h *Handlers) LastRun(c *gin.Context) {
    lr, err := h.svc.GetLastRun(c.Request.Context())
    if err != nil {
        c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
        return
    }
    c.JSON(http.StatusOK, lr)
}

func (h *Handlers) RunNow(c *gin.Context) {
    // Run in background detached from the HTTP request to avoid context cancellation
    go func(){ _ = h.svc.RunWeeklyDigest(context.Background()) }()
    c.JSON(http.StatusAccepted, gin.H{"status": "queued"})
}
