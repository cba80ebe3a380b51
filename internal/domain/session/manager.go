package session

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/events"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/search"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/settings"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/snapshot"
	"github.com/GriffinCanCode/AgentOS/browser/internal/domain/tabs"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/store"
	"github.com/GriffinCanCode/AgentOS/browser/internal/infrastructure/tracing"
	"github.com/GriffinCanCode/AgentOS/browser/internal/shared/id"
)

// DefaultKey is the store key the session is persisted under
const DefaultKey = "browser"

// Options configures a Manager. Zero values select defaults.
type Options struct {
	Key      string
	Window   time.Duration
	Delay    time.Duration
	Registry *search.Registry
	Codec    tabs.Codec
	Logger   *logging.Logger
	Metrics  *monitoring.Metrics
	Tracer   *tracing.Tracer
}

// Manager is the browser session: the tab collection, the settings and the
// machinery that keeps both persisted.
type Manager struct {
	id        id.SessionID
	key       string
	store     store.Store
	registry  *search.Registry
	codec     tabs.Codec
	scheduler *Scheduler
	events    *events.Broadcaster[tabs.Event]
	logger    *logging.Logger
	metrics   *monitoring.Metrics
	tracer    *tracing.Tracer

	mu           sync.Mutex
	tabs         *tabs.Collection
	settings     settings.Settings
	revision     uint64
	lastRestored *time.Time
}

// NewManager creates a session holding one fresh default tab and default
// settings. Call Restore to load the persisted state.
func NewManager(st store.Store, opts Options) *Manager {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.Registry == nil {
		opts.Registry = search.Default()
	}
	if opts.Codec == nil {
		opts.Codec = tabs.PageCodec{}
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	broadcaster := events.NewBroadcaster[tabs.Event]()
	m := &Manager{
		id:       id.NewSessionID(),
		key:      opts.Key,
		store:    st,
		registry: opts.Registry,
		codec:    opts.Codec,
		events:   broadcaster,
		logger:   opts.Logger.Named("session"),
		metrics:  opts.Metrics,
		tracer:   opts.Tracer,
		tabs:     tabs.NewCollection(opts.Codec, broadcaster),
		settings: settings.Default(),
	}
	m.scheduler = NewScheduler(st, SchedulerConfig{
		Key:    opts.Key,
		Window: opts.Window,
		Delay:  opts.Delay,
	}, opts.Logger, opts.Metrics)

	m.tabs.AppendDefault()
	return m
}

// ID returns the session identifier
func (m *Manager) ID() id.SessionID {
	return m.id
}

// Registry returns the search-engine registry
func (m *Manager) Registry() *search.Registry {
	return m.registry
}

// Subscribe registers for state-changed notifications
func (m *Manager) Subscribe(buffer int) (<-chan tabs.Event, func()) {
	return m.events.Subscribe(buffer)
}

// OpenTab appends p and makes it the current tab
func (m *Manager) OpenTab(ctx context.Context, p tabs.Payload) tabs.Tab {
	m.mu.Lock()
	tab := m.tabs.Append(p)
	save := m.commitLocked("open")
	m.mu.Unlock()

	m.persist(ctx, save)
	return tab
}

// OpenTabs appends ps in order and selects the last one. An empty batch is
// a no-op.
func (m *Manager) OpenTabs(ctx context.Context, ps []tabs.Payload) []tabs.Tab {
	if len(ps) == 0 {
		return nil
	}

	m.mu.Lock()
	opened := m.tabs.AppendBatch(ps)
	save := m.commitLocked("open_batch")
	m.mu.Unlock()

	m.persist(ctx, save)
	return opened
}

// CloseTab removes tab i. Closing the last tab leaves a fresh default tab.
func (m *Manager) CloseTab(ctx context.Context, i int) error {
	m.mu.Lock()
	if err := m.tabs.RemoveAt(i); err != nil {
		m.mu.Unlock()
		return err
	}
	save := m.commitLocked("close")
	m.mu.Unlock()

	m.persist(ctx, save)
	return nil
}

// SelectTab makes tab i current
func (m *Manager) SelectTab(ctx context.Context, i int) error {
	m.mu.Lock()
	if i == m.tabs.Current() {
		m.mu.Unlock()
		return nil
	}
	if err := m.tabs.SelectAt(i); err != nil {
		m.mu.Unlock()
		return err
	}
	save := m.commitLocked("select")
	m.mu.Unlock()

	m.persist(ctx, save)
	return nil
}

// ClearTabs closes every tab and opens a fresh default one, so the session
// is never left without a tab.
func (m *Manager) ClearTabs(ctx context.Context) {
	m.mu.Lock()
	m.tabs.Clear()
	m.tabs.AppendDefault()
	save := m.commitLocked("clear")
	m.mu.Unlock()

	m.persist(ctx, save)
}

// Settings returns a copy of the current settings
func (m *Manager) Settings() settings.Settings {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.settings.Copy()
}

// UpdateSettings replaces the settings record
func (m *Manager) UpdateSettings(ctx context.Context, s settings.Settings) error {
	if err := s.Validate(m.registry); err != nil {
		return err
	}

	m.mu.Lock()
	m.settings = s.Copy()
	save := m.commitLocked("settings")
	m.mu.Unlock()

	m.persist(ctx, save)
	return nil
}

// Flush writes any pending snapshot now
func (m *Manager) Flush(ctx context.Context) error {
	return m.scheduler.Flush(ctx)
}

// Shutdown stops scheduling, writes the pending snapshot and closes the
// notification channel. The store is left open for its owner to close.
func (m *Manager) Shutdown(ctx context.Context) error {
	m.scheduler.Stop()
	err := m.scheduler.Flush(ctx)
	m.events.Close()
	if err != nil {
		m.logger.Error("Final snapshot save failed", zap.Error(err))
		return err
	}
	m.logger.Info("Session shut down", zap.Uint64("revision", m.scheduler.Stats().Revision))
	return nil
}

// pendingSave is a snapshot encoded under the lock, waiting to be handed
// to the scheduler
type pendingSave struct {
	revision uint64
	data     []byte
	err      error
}

// commitLocked bumps the revision and encodes the current state.
// Caller holds m.mu.
func (m *Manager) commitLocked(op string) pendingSave {
	m.revision++
	if m.metrics != nil {
		m.metrics.RecordTabMutation(op, m.tabs.Len())
	}

	snap := snapshot.Encode(m.settings, m.tabs.Tabs(), m.tabs.Current()).Stamp(time.Now())
	data, err := snapshot.Marshal(snap)
	return pendingSave{revision: m.revision, data: data, err: err}
}

// persist hands a committed snapshot to the scheduler. Failures are logged;
// they never fail the operation that caused them.
func (m *Manager) persist(ctx context.Context, save pendingSave) {
	if save.err != nil {
		m.logger.Error("Failed to encode snapshot", zap.Uint64("revision", save.revision), zap.Error(save.err))
		return
	}

	// A write started on behalf of a request must outlive that request
	ctx = context.WithoutCancel(ctx)
	if err := m.scheduler.Request(ctx, save.revision, save.data); err != nil {
		m.logger.Warn("Snapshot save failed",
			zap.Uint64("revision", save.revision),
			tracing.Field(ctx),
			zap.Error(err),
		)
	}
}
