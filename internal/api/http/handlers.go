package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/search"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/session"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/settings"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/tabs"
	"github.com/GriffinCanCode/AgentOS/browser/internal/shared/utils"
)

// Version is reported by the root endpoint
const Version = "0.1.0"

// Handlers contains all HTTP handlers
type Handlers struct {
	session *session.Manager
}

// NewHandlers creates a new handler set
func NewHandlers(sessionManager *session.Manager) *Handlers {
	return &Handlers{session: sessionManager}
}

// Register adds every route to r
func (h *Handlers) Register(r gin.IRoutes) {
	r.GET("/", h.Root)
	r.GET("/health", h.Health)

	// Session
	r.GET("/session", h.GetSession)
	r.POST("/session/flush", h.FlushSession)
	r.POST("/session/restore", h.RestoreSession)

	// Tabs
	r.POST("/tabs", h.OpenTab)
	r.POST("/tabs/batch", h.OpenTabs)
	r.POST("/tabs/:index/select", h.SelectTab)
	r.DELETE("/tabs/:index", h.CloseTab)
	r.DELETE("/tabs", h.ClearTabs)

	// Settings
	r.GET("/settings", h.GetSettings)
	r.PUT("/settings", h.UpdateSettings)
	r.GET("/search-engines", h.ListSearchEngines)
	r.GET("/search", h.Search)
}

// pageRequest is the body for opening a tab
type pageRequest struct {
	URL   string `json:"url"`
	Title string `json:"title"`
}

func (p pageRequest) validate() error {
	return utils.ValidatePage(p.URL, p.Title)
}

func (p pageRequest) payload() tabs.Payload {
	return tabs.NewPage(p.URL, p.Title)
}

// settingsRequest is a partial settings update; omitted fields are kept
type settingsRequest struct {
	SearchEngine     *int  `json:"searchEngine"`
	DebuggingEnabled *bool `json:"debuggingEnabled"`
}

// Root handles health check
func (h *Handlers) Root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "online",
		"service": "browser-session",
		"version": Version,
	})
}

// Health handles detailed health check
func (h *Handlers) Health(c *gin.Context) {
	view := h.session.View()
	c.JSON(http.StatusOK, gin.H{
		"status":     "healthy",
		"session_id": view.ID,
		"tabs":       len(view.Tabs),
		"save":       view.Save,
	})
}

// GetSession returns the full session view
func (h *Handlers) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, h.session.View())
}

// OpenTab appends a tab and selects it
func (h *Handlers) OpenTab(c *gin.Context) {
	var req pageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := req.validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	tab := h.session.OpenTab(c.Request.Context(), req.payload())

	c.JSON(http.StatusCreated, gin.H{
		"tab":           tabJSON(tab),
		"current_index": tab.Index,
	})
}

// OpenTabs appends several tabs at once and selects the last
func (h *Handlers) OpenTabs(c *gin.Context) {
	var req struct {
		Tabs []pageRequest `json:"tabs"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := utils.ValidateBatchSize(len(req.Tabs)); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	for _, p := range req.Tabs {
		if err := p.validate(); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
	}

	payloads := make([]tabs.Payload, len(req.Tabs))
	for i, p := range req.Tabs {
		payloads[i] = p.payload()
	}
	opened := h.session.OpenTabs(c.Request.Context(), payloads)

	out := make([]gin.H, len(opened))
	for i, t := range opened {
		out[i] = tabJSON(t)
	}
	c.JSON(http.StatusCreated, gin.H{
		"tabs":          out,
		"current_index": opened[len(opened)-1].Index,
	})
}

// SelectTab makes the tab at :index current
func (h *Handlers) SelectTab(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}

	if err := h.session.SelectTab(c.Request.Context(), index); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"current_index": index,
	})
}

// CloseTab removes the tab at :index
func (h *Handlers) CloseTab(c *gin.Context) {
	index, ok := indexParam(c)
	if !ok {
		return
	}

	if err := h.session.CloseTab(c.Request.Context(), index); err != nil {
		respondError(c, err)
		return
	}

	view := h.session.View()
	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"tabs":          len(view.Tabs),
		"current_index": view.CurrentIndex,
	})
}

// ClearTabs closes every tab
func (h *Handlers) ClearTabs(c *gin.Context) {
	h.session.ClearTabs(c.Request.Context())
	c.JSON(http.StatusOK, h.session.View())
}

// GetSettings returns the settings and the engine they select
func (h *Handlers) GetSettings(c *gin.Context) {
	s := h.session.Settings()
	resp := gin.H{"settings": s}
	if engine, err := s.Engine(h.session.Registry()); err == nil {
		resp["search_engine"] = engine
	}
	c.JSON(http.StatusOK, resp)
}

// UpdateSettings applies a partial settings update
func (h *Handlers) UpdateSettings(c *gin.Context) {
	var req settingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	s := h.session.Settings()
	if req.SearchEngine != nil {
		s = s.WithSearchEngine(*req.SearchEngine)
	}
	if req.DebuggingEnabled != nil {
		s = s.WithDebugging(*req.DebuggingEnabled)
	}

	if err := h.session.UpdateSettings(c.Request.Context(), s); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": h.session.Settings()})
}

// ListSearchEngines lists the registry in index order
func (h *Handlers) ListSearchEngines(c *gin.Context) {
	engines := h.session.Registry().All()

	type indexedEngine struct {
		Index int `json:"index"`
		search.Engine
	}
	out := make([]indexedEngine, len(engines))
	for i, e := range engines {
		out[i] = indexedEngine{Index: i, Engine: e}
	}

	c.JSON(http.StatusOK, gin.H{
		"engines":  out,
		"selected": h.session.Settings().SearchEngine,
	})
}

// Search expands ?q= into a search URL, using the engine named by
// ?engine= (name or keyword) or the selected one
func (h *Handlers) Search(c *gin.Context) {
	query := c.Query("q")
	if err := utils.ValidateString(query, "q", 1, utils.MaxURLLength, true); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	registry := h.session.Registry()
	index := h.session.Settings().SearchEngine
	if name := c.Query("engine"); name != "" {
		if index = registry.IndexOf(name); index < 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "unknown search engine: " + name})
			return
		}
	}

	engine, err := registry.At(index)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"engine": engine.Name,
		"url":    engine.QueryURL(query),
	})
}

// FlushSession writes any pending snapshot now
func (h *Handlers) FlushSession(c *gin.Context) {
	if err := h.session.Flush(c.Request.Context()); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"save":    h.session.View().Save,
	})
}

// RestoreSession reloads the session from the store
func (h *Handlers) RestoreSession(c *gin.Context) {
	result := h.session.Restore(c.Request.Context())
	c.JSON(http.StatusOK, result)
}

func tabJSON(t tabs.Tab) gin.H {
	return gin.H{
		"index":   t.Index,
		"payload": t.Payload.Encode(),
	}
}

// indexParam parses :index, answering 400 itself when it is not a number
func indexParam(c *gin.Context) (int, bool) {
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "index must be an integer"})
		return 0, false
	}
	return index, true
}

// respondError maps domain errors to status codes
func respondError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, tabs.ErrIndexOutOfRange):
		status = http.StatusNotFound
	case errors.Is(err, settings.ErrInvalidSearchEngineIndex), errors.Is(err, settings.ErrInvalidSettings):
		status = http.StatusBadRequest
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
