package http

import (
    "context"
    "encoding/json"
    "net/http"
    "net/http/httptest"
    "strings"
    "testing"

    "github.com/gin-gonic/gin"
    "github.com/rs/zerolog"
    "github.com/stretchr/testify/require"

    "github.com/example/focus-pulse/internal/config"
    "github.com/example/focus-pulse/internal/domain"
    "github.com/example/focus-pulse/internal/leave"
)

type stubService struct {
    report     *domain.Report
    err        error
    timeframes []string
    digests    int
}

func (s *stubService) BuildReport(ctx context.Context, timeframe string) (*domain.Report, error) {
    s.timeframes = append(s.timeframes, timeframe)
    return s.report, s.err
}

func (s *stubService) RunWeeklyDigest(ctx context.Context) error {
    s.digests++
    return nil
}

func (s *stubService) GetLastRun(ctx context.Context) (any, error) { return nil, nil }

func newTestRouter(svc *stubService, book *leave.Book) *gin.Engine {
    gin.SetMode(gin.TestMode)
    return NewRouter(config.Config{AppEnv: "test"}, zerolog.Nop(), svc, book)
}

func TestHealthz(t *testing.T) {
    r := newTestRouter(&stubService{}, leave.NewBook(5))
    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
    require.Equal(t, http.StatusOK, w.Code)
}

func TestReportTimeframe(t *testing.T) {
    svc := &stubService{report: &domain.Report{Timeframe: "last-week"}}
    r := newTestRouter(svc, leave.NewBook(5))

    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/report?timeframe=last-week", nil))
    require.Equal(t, http.StatusOK, w.Code)
    require.Equal(t, []string{"last-week"}, svc.timeframes)

    w = httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/report", nil))
    require.Equal(t, http.StatusOK, w.Code)
    require.Equal(t, "this-week", svc.timeframes[1])

    w = httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/report?timeframe=next-week", nil))
    require.Equal(t, http.StatusBadRequest, w.Code)
    require.Len(t, svc.timeframes, 2)
}

func TestLeaveSetValidation(t *testing.T) {
    book := leave.NewBook(5)
    r := newTestRouter(&stubService{}, book)

    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/leave/dana", strings.NewReader(`{"days":3}`)))
    require.Equal(t, http.StatusOK, w.Code)
    require.Equal(t, 3, book.Get("dana"))

    w = httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/leave/dana", strings.NewReader(`{"days":6}`)))
    require.Equal(t, http.StatusBadRequest, w.Code)
    require.Equal(t, 3, book.Get("dana"), "rejected request must not change state")

    w = httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodPut, "/api/leave/dana", strings.NewReader(`not json`)))
    require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLeaveResetAndList(t *testing.T) {
    book := leave.NewBook(5)
    require.NoError(t, book.Set("dana", 2))
    r := newTestRouter(&stubService{}, book)

    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/api/leave/dana", nil))
    require.Equal(t, http.StatusOK, w.Code)
    require.Equal(t, 0, book.Get("dana"))

    require.NoError(t, book.Set("omid", 1))
    w = httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/leave", nil))
    require.Equal(t, http.StatusOK, w.Code)
    var body struct {
        Leave map[string]int `json:"leave"`
    }
    require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
    require.Equal(t, map[string]int{"omid": 1}, body.Leave)
}

func TestRunNowQueues(t *testing.T) {
    svc := &stubService{}
    r := newTestRouter(svc, leave.NewBook(5))
    w := httptest.NewRecorder()
    r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/admin/run", nil))
    require.Equal(t, http.StatusAccepted, w.Code)
}
