package jira

import (
    "context"
    "encoding/json"
    "errors"
    "fmt"
    "io"
    "net/http"
    "net/url"
    "strings"
    "time"

    "github.com/example/focus-pulse/internal/config"
    "github.com/example/focus-pulse/internal/domain"
    "github.com/rs/zerolog"
)

type Client struct {
    baseURL string
    token   string
    user    string
    pass    string
    http    *http.Client
    log     zerolog.Logger
    apiVer  string
}

func NewClient(cfg config.Config, log zerolog.Logger) *Client {
    return &Client{
        baseURL: cfg.JiraBaseURL,
        token:   cfg.JiraPAT,
        user:    cfg.JiraUsername,
        pass:    cfg.JiraPassword,
        http:    &http.Client{ Timeout: cfg.HTTPTimeout },
        log:     log,
        apiVer:  cfg.JiraAPIVersion,
    }
}

func (c *Client) apiURL(path string, q url.Values) string {
    base := strings.TrimRight(c.baseURL, "/")
    if !strings.HasPrefix(path, "/") { path = "/" + path }
    u := base + path
    if len(q) > 0 { u = u + "?" + q.Encode() }
    return u
}

func (c *Client) doJSON(ctx context.Context, method, u string, body any) (map[string]any, error) {
    if c.baseURL == "" { return nil, errors.New("jira: empty baseURL") }
    var payload []byte
    if body != nil {
        b, err := json.Marshal(body)
        if err != nil { return nil, err }
        payload = b
    }
    var lastErr error
    for attempt := 0; attempt < 3; attempt++ {
        var r io.Reader
        if payload != nil { r = strings.NewReader(string(payload)) }
        req, err := http.NewRequestWithContext(ctx, method, u, r)
        if err != nil { return nil, err }
        if payload != nil { req.Header.Set("Content-Type", "application/json") }
        if c.token != "" {
            req.Header.Set("Authorization", "Bearer "+c.token)
        } else if c.user != "" && c.pass != "" {
            req.SetBasicAuth(c.user, c.pass)
        }
        resp, err := c.http.Do(req)
        if err != nil {
            lastErr = err
        } else {
            out, retry, err := decodeResponse(resp)
            if err != nil {
                if !retry { return nil, err }
                lastErr = err
            } else {
                return out, nil
            }
        }
        // backoff
        time.Sleep(time.Duration(300*(1<<attempt)) * time.Millisecond)
    }
    return nil, lastErr
}

func decodeResponse(resp *http.Response) (map[string]any, bool, error) {
    defer resp.Body.Close()
    if resp.StatusCode >= 300 {
        b, _ := io.ReadAll(resp.Body)
        err := fmt.Errorf("jira api status=%d body=%s", resp.StatusCode, strings.TrimSpace(string(b)))
        // retry on 429/5xx
        return nil, resp.StatusCode == 429 || resp.StatusCode >= 500, err
    }
    var out map[string]any
    if err := json.NewDecoder(resp.Body).Decode(&out); err != nil { return nil, false, err }
    return out, false, nil
}

// Search runs one page of the search API. v2 uses GET with query params,
// v3 expects a POST body.
func (c *Client) Search(ctx context.Context, jql string, fields []string, startAt, max int) (map[string]any, error) {
    if jql == "" { return nil, errors.New("jira: empty jql") }
    if c.apiVer == "2" {
        q := url.Values{}
        q.Set("jql", jql)
        q.Set("fields", strings.Join(fields, ","))
        if startAt > 0 { q.Set("startAt", fmt.Sprint(startAt)) }
        if max > 0 { q.Set("maxResults", fmt.Sprint(max)) }
        return c.doJSON(ctx, http.MethodGet, c.apiURL("/rest/api/2/search", q), nil)
    }
    body := map[string]any{"jql": jql, "fields": fields, "startAt": startAt, "maxResults": max}
    return c.doJSON(ctx, http.MethodPost, c.apiURL("/rest/api/3/search", nil), body)
}

// SearchAll paginates until the reported total is exhausted and returns the
// complete snapshot for one JQL.
func (c *Client) SearchAll(ctx context.Context, jql string, fields []string) ([]domain.WorkItem, error) {
    var items []domain.WorkItem
    startAt := 0
    for {
        page, err := c.Search(ctx, jql, fields, startAt, 100)
        if err != nil { return nil, err }
        arr, _ := page["issues"].([]any)
        if len(arr) == 0 { break }
        for _, it := range arr {
            im, _ := it.(map[string]any)
            if im == nil { continue }
            key, _ := im["key"].(string)
            f, _ := im["fields"].(map[string]any)
            if f == nil { f = map[string]any{} }
            items = append(items, domain.WorkItem{Key: key, Fields: f})
        }
        total, _ := page["total"].(float64)
        startAt += len(arr)
        if float64(startAt) >= total { break }
    }
    c.log.Debug().Str("jql", jql).Int("issues", len(items)).Msg("jira search complete")
    return items, nil
}
