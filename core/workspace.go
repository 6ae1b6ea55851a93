package core

import (
	"context"
	"errors"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/trove/schema"
)

// Workspace ties the tab store to a bridge and serializes the document and
// tab services so that structural operations never interleave.
type Workspace struct {
	bridge Bridge
	store  *Store
	logger pslog.Logger
	cancel func()

	// mu is held for the full duration of every exported service call.
	mu sync.Mutex

	settingsMu sync.Mutex
	settings   schema.Settings
	loaded     bool

	Documents *Documents
	Tabs      *Tabs
}

// NewWorkspace constructs a workspace over the provided bridge.
func NewWorkspace(bridge Bridge, deps Deps) (*Workspace, error) {
	if bridge == nil {
		return nil, errors.New("missing bridge")
	}
	w := &Workspace{
		bridge: bridge,
		store:  NewStore(),
		logger: deps.Logger,
	}
	w.Documents = &Documents{w: w}
	w.Tabs = &Tabs{w: w}
	if deps.EventSink != nil {
		w.cancel = w.store.Subscribe(deps.EventSink.OnTabsEvent)
	}
	return w, nil
}

// Store exposes the workspace tab store for reads and subscriptions.
func (w *Workspace) Store() *Store {
	if w == nil {
		return nil
	}
	return w.store
}

// Bridge returns the bridge the workspace talks to.
func (w *Workspace) Bridge() Bridge {
	if w == nil {
		return nil
	}
	return w.bridge
}

// Init re-syncs the tab list and makes the first tab current.
func (w *Workspace) Init(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.resync(ctx); err != nil {
		return err
	}
	w.store.ResetCurrentTab()
	return nil
}

// Attach re-syncs the tab list and adopts the bridge's active tab when the
// store knows it, falling back to the first tab otherwise.
func (w *Workspace) Attach(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if _, err := w.resync(ctx); err != nil {
		return err
	}
	active, err := w.bridge.GetActiveTab(ctx)
	if err != nil {
		return err
	}
	if tab, ok := w.store.TabByID(active); ok {
		w.store.SetCurrentTab(&tab)
		return nil
	}
	w.store.ResetCurrentTab()
	return nil
}

// Settings returns the bridge settings snapshot, fetching it once.
func (w *Workspace) Settings(ctx context.Context) (schema.Settings, error) {
	w.settingsMu.Lock()
	defer w.settingsMu.Unlock()
	if w.loaded {
		return w.settings, nil
	}
	settings, err := w.bridge.GetSettings(ctx)
	if err != nil {
		w.log(ctx).Warn("workspace settings load failed", "err", err)
		return nil, err
	}
	w.settings = settings
	w.loaded = true
	return settings, nil
}

// ReloadSettings drops the cached settings snapshot.
func (w *Workspace) ReloadSettings() {
	w.settingsMu.Lock()
	w.settings = nil
	w.loaded = false
	w.settingsMu.Unlock()
}

// Close detaches the event sink.
func (w *Workspace) Close() {
	if w == nil || w.cancel == nil {
		return
	}
	w.cancel()
	w.cancel = nil
}

func (w *Workspace) log(ctx context.Context) pslog.Logger {
	if w.logger != nil {
		return w.logger
	}
	return pslog.Ctx(ctx)
}

// resync is the single point where the tab list is refreshed from the bridge.
func (w *Workspace) resync(ctx context.Context) ([]schema.Tab, error) {
	tabs, err := w.bridge.ListTabs(ctx)
	if err != nil {
		return nil, err
	}
	return w.store.SetTabs(tabs), nil
}

func (w *Workspace) activate(ctx context.Context, tab schema.Tab) error {
	w.store.SetCurrentTab(&tab)
	return w.bridge.SetActiveTab(ctx, tab.ID)
}

func (w *Workspace) activateLastOrCreate(ctx context.Context, tabs []schema.Tab) bool {
	if len(tabs) == 0 {
		_, ok := w.addTab(ctx)
		return ok
	}
	last := tabs[len(tabs)-1]
	if err := w.activate(ctx, last); err != nil {
		w.log(ctx).Warn("workspace active tab notify failed", "tab", last.ID, "err", err)
		return false
	}
	return true
}
