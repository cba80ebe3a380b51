package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/store"
)

type testEnv struct {
	router  *gin.Engine
	session *session.Manager
	store   *store.Memory
}

func setupTest(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	st := store.NewMemory()
	m := session.NewManager(st, session.Options{
		Window: time.Hour,
		Delay:  time.Hour,
	})
	t.Cleanup(func() { _ = m.Shutdown(context.Background()) })

	router := gin.New()
	NewHandlers(m).Register(router)
	return &testEnv{router: router, session: m, store: st}
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	var resp map[string]interface{}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	}
	return w, resp
}

func TestHealth(t *testing.T) {
	env := setupTest(t)

	w, resp := env.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", resp["status"])
	assert.EqualValues(t, 1, resp["tabs"])

	w, resp = env.do(t, http.MethodGet, "/", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Version, resp["version"])
}

func TestGetSession(t *testing.T) {
	env := setupTest(t)

	w, resp := env.do(t, http.MethodGet, "/session", nil)
	require.Equal(t, http.StatusOK, w.Code)

	tabList := resp["tabs"].([]interface{})
	require.Len(t, tabList, 1)
	assert.EqualValues(t, 0, resp["current_index"])
	assert.NotEmpty(t, resp["id"])
}

func TestOpenTab(t *testing.T) {
	env := setupTest(t)

	w, resp := env.do(t, http.MethodPost, "/tabs", gin.H{"url": "https://example.com", "title": "Example"})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.EqualValues(t, 1, resp["current_index"])

	tab := resp["tab"].(map[string]interface{})
	payload := tab["payload"].(map[string]interface{})
	assert.Equal(t, "https://example.com", payload["url"])
	assert.Equal(t, "Example", payload["title"])

	// The first mutation is written straight away
	raw, err := env.store.Get(context.Background(), session.DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "https://example.com")
}

func TestOpenTabInvalidBody(t *testing.T) {
	env := setupTest(t)

	req := httptest.NewRequest(http.MethodPost, "/tabs", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/tabs", gin.H{"url": "https://example.com/\x00"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.session.View().Tabs, 1)
}

func TestOpenTabsBatch(t *testing.T) {
	env := setupTest(t)

	w, resp := env.do(t, http.MethodPost, "/tabs/batch", gin.H{"tabs": []gin.H{
		{"url": "https://a.example"},
		{"url": "https://b.example"},
	}})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Len(t, resp["tabs"], 2)
	assert.EqualValues(t, 2, resp["current_index"])

	w, _ = env.do(t, http.MethodPost, "/tabs/batch", gin.H{"tabs": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, _ = env.do(t, http.MethodPost, "/tabs/batch", gin.H{"tabs": []gin.H{
		{"url": "https://c.example"},
		{"url": "https://d.example", "title": strings.Repeat("t", 2000)},
	}})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Len(t, env.session.View().Tabs, 3)
}

func TestSelectTab(t *testing.T) {
	env := setupTest(t)
	env.do(t, http.MethodPost, "/tabs", gin.H{"url": "https://a.example"})

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{name: "valid index", path: "/tabs/0/select", wantStatus: http.StatusOK},
		{name: "out of range", path: "/tabs/7/select", wantStatus: http.StatusNotFound},
		{name: "negative", path: "/tabs/-1/select", wantStatus: http.StatusNotFound},
		{name: "not a number", path: "/tabs/first/select", wantStatus: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, http.MethodPost, tt.path, nil)
			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus != http.StatusOK {
				assert.NotEmpty(t, resp["error"])
			}
		})
	}

	assert.Equal(t, 0, env.session.View().CurrentIndex)
}

func TestCloseTab(t *testing.T) {
	env := setupTest(t)
	env.do(t, http.MethodPost, "/tabs", gin.H{"url": "https://a.example"})

	w, resp := env.do(t, http.MethodDelete, "/tabs/1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, resp["tabs"])
	assert.EqualValues(t, 0, resp["current_index"])

	w, _ = env.do(t, http.MethodDelete, "/tabs/4", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestClearTabs(t *testing.T) {
	env := setupTest(t)
	env.do(t, http.MethodPost, "/tabs", gin.H{"url": "https://a.example"})
	env.do(t, http.MethodPost, "/tabs", gin.H{"url": "https://b.example"})

	w, resp := env.do(t, http.MethodDelete, "/tabs", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, resp["tabs"], 1)
	assert.EqualValues(t, 0, resp["current_index"])
}

func TestSettings(t *testing.T) {
	env := setupTest(t)

	w, resp := env.do(t, http.MethodGet, "/settings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	engine := resp["search_engine"].(map[string]interface{})
	assert.Equal(t, "Google", engine["name"])

	w, _ = env.do(t, http.MethodPut, "/settings", gin.H{"searchEngine": 99})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w, resp = env.do(t, http.MethodPut, "/settings", gin.H{"searchEngine": 1})
	require.Equal(t, http.StatusOK, w.Code)
	s := resp["settings"].(map[string]interface{})
	assert.EqualValues(t, 1, s["searchEngine"])
	assert.Equal(t, false, s["debuggingEnabled"])

	// Omitted fields keep their value
	w, resp = env.do(t, http.MethodPut, "/settings", gin.H{"debuggingEnabled": true})
	require.Equal(t, http.StatusOK, w.Code)
	s = resp["settings"].(map[string]interface{})
	assert.EqualValues(t, 1, s["searchEngine"])
	assert.Equal(t, true, s["debuggingEnabled"])
}

func TestListSearchEngines(t *testing.T) {
	env := setupTest(t)

	w, resp := env.do(t, http.MethodGet, "/search-engines", nil)
	require.Equal(t, http.StatusOK, w.Code)

	engines := resp["engines"].([]interface{})
	require.Len(t, engines, env.session.Registry().Len())
	first := engines[0].(map[string]interface{})
	assert.EqualValues(t, 0, first["index"])
	assert.Equal(t, "Google", first["name"])
	assert.EqualValues(t, 0, resp["selected"])
}

func TestSearch(t *testing.T) {
	env := setupTest(t)
	env.do(t, http.MethodPut, "/settings", gin.H{"searchEngine": 1})

	tests := []struct {
		name       string
		path       string
		wantStatus int
		wantEngine string
		wantURL    string
	}{
		{
			name:       "selected engine",
			path:       "/search?q=go+tabs",
			wantStatus: http.StatusOK,
			wantEngine: "DuckDuckGo",
			wantURL:    "https://duckduckgo.com/?q=go+tabs",
		},
		{
			name:       "engine by keyword",
			path:       "/search?q=go&engine=b",
			wantStatus: http.StatusOK,
			wantEngine: "Bing",
			wantURL:    "https://www.bing.com/search?q=go",
		},
		{name: "missing query", path: "/search", wantStatus: http.StatusBadRequest},
		{name: "unknown engine", path: "/search?q=go&engine=altavista", wantStatus: http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := env.do(t, http.MethodGet, tt.path, nil)
			require.Equal(t, tt.wantStatus, w.Code)
			if tt.wantStatus == http.StatusOK {
				assert.Equal(t, tt.wantEngine, resp["engine"])
				assert.Equal(t, tt.wantURL, resp["url"])
			}
		})
	}
}

func TestFlushAndRestore(t *testing.T) {
	env := setupTest(t)
	env.do(t, http.MethodPost, "/tabs", gin.H{"url": "https://a.example"})
	env.do(t, http.MethodPost, "/tabs", gin.H{"url": "https://b.example"})

	// The second open is deferred behind the hour-long window
	raw, err := env.store.Get(context.Background(), session.DefaultKey)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "https://b.example")

	w, resp := env.do(t, http.MethodPost, "/session/flush", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["success"])

	raw, err = env.store.Get(context.Background(), session.DefaultKey)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "https://b.example")

	env.do(t, http.MethodDelete, "/tabs", nil)
	w, resp = env.do(t, http.MethodPost, "/session/restore", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, resp["restored"])
	assert.EqualValues(t, 3, resp["tabs"])
	assert.Len(t, env.session.View().Tabs, 3)
}
