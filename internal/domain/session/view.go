package session

import (
	"time"

	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/search"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/settings"
	"github.com/GriffinCanCode/AgentOS/browser/internal/shared/id"
)

// TabView is a tab as seen from outside the session
type TabView struct {
	Index   int                    `json:"index"`
	Active  bool                   `json:"active"`
	Payload map[string]interface{} `json:"payload"`
}

// StreamStats describes the state-changed subscribers
type StreamStats struct {
	Subscribers int    `json:"subscribers"`
	Dropped     uint64 `json:"dropped"`
}

// View is a point-in-time copy of the session state
type View struct {
	ID           id.SessionID      `json:"id"`
	Tabs         []TabView         `json:"tabs"`
	CurrentIndex int               `json:"current_index"`
	Settings     settings.Settings `json:"settings"`
	SearchEngine *search.Engine    `json:"search_engine,omitempty"`
	Save         SaveStats         `json:"save"`
	Stream       StreamStats       `json:"stream"`
	LastRestored *time.Time        `json:"last_restored,omitempty"`
}

// View returns a copy of the current state
func (m *Manager) View() View {
	m.mu.Lock()
	current := m.tabs.Current()
	all := m.tabs.Tabs()
	views := make([]TabView, len(all))
	for i, t := range all {
		views[i] = TabView{
			Index:   t.Index,
			Active:  t.Index == current,
			Payload: t.Payload.Encode(),
		}
	}
	v := View{
		ID:           m.id,
		Tabs:         views,
		CurrentIndex: current,
		Settings:     m.settings.Copy(),
	}
	if m.lastRestored != nil {
		restored := *m.lastRestored
		v.LastRestored = &restored
	}
	m.mu.Unlock()

	if engine, err := v.Settings.Engine(m.registry); err == nil {
		v.SearchEngine = &engine
	}
	v.Save = m.scheduler.Stats()
	v.Stream = StreamStats{
		Subscribers: m.events.Subscribers(),
		Dropped:     m.events.Dropped(),
	}
	return v
}
