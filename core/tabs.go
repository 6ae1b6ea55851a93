package core

import (
	"context"

	"pkt.systems/trove/internal/logx"
	"pkt.systems/trove/schema"
)

// Tabs manages tab navigation.
type Tabs struct {
	w *Workspace
}

// SwitchTab makes the tab with id current and tells the bridge. Unknown ids
// report found=false without side effects; a failed bridge notification is
// returned with the store already updated.
func (t *Tabs) SwitchTab(ctx context.Context, id schema.TabID) (schema.Tab, bool, error) {
	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	return t.w.switchTab(ctx, id)
}

func (w *Workspace) switchTab(ctx context.Context, id schema.TabID) (schema.Tab, bool, error) {
	tab, ok := w.store.TabByID(id)
	if !ok {
		return schema.Tab{}, false, nil
	}
	if err := w.activate(ctx, tab); err != nil {
		return tab, true, err
	}
	return tab, true, nil
}

// CloseTab closes the tab with id. Unknown ids are a no-op. Closing the
// current tab moves current to the last remaining tab, or to a fresh tab
// when none remain.
func (t *Tabs) CloseTab(ctx context.Context, id schema.TabID) bool {
	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	w := t.w
	if id == "" {
		return false
	}
	current, ok := w.store.CurrentTab()
	if !ok {
		return false
	}
	if _, known := w.store.TabByID(id); !known {
		return false
	}
	log := logx.WithTab(w.log(ctx), id)
	if err := w.bridge.CloseTab(ctx, id); err != nil {
		log.Warn("workspace tab close failed", "err", err)
		return false
	}
	tabs, err := w.resync(ctx)
	if err != nil {
		log.Warn("workspace tab list failed", "err", err)
		return false
	}
	log.Info("workspace tab closed", "remaining", len(tabs))
	if current.ID != id {
		return true
	}
	return w.activateLastOrCreate(ctx, tabs)
}

// GotoFirstTab switches to the first tab.
func (t *Tabs) GotoFirstTab(ctx context.Context) (schema.Tab, bool, error) {
	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	tabs := t.w.store.Tabs()
	if len(tabs) == 0 {
		return schema.Tab{}, false, nil
	}
	return t.w.switchTab(ctx, tabs[0].ID)
}

// GotoLastTab switches to the last tab.
func (t *Tabs) GotoLastTab(ctx context.Context) (schema.Tab, bool, error) {
	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	tabs := t.w.store.Tabs()
	if len(tabs) == 0 {
		return schema.Tab{}, false, nil
	}
	return t.w.switchTab(ctx, tabs[len(tabs)-1].ID)
}

// CycleTabs switches to the tab after the current one, wrapping around.
// Without a current tab the first tab is chosen.
func (t *Tabs) CycleTabs(ctx context.Context) (schema.Tab, bool, error) {
	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	state := t.w.store.Snapshot()
	if len(state.Tabs) == 0 {
		return schema.Tab{}, false, nil
	}
	next := (state.Index(state.CurrentID()) + 1) % len(state.Tabs)
	return t.w.switchTab(ctx, state.Tabs[next].ID)
}

// UpdateTabTitleByID rewrites one tab's title in the store only.
func (t *Tabs) UpdateTabTitleByID(id schema.TabID, title string) bool {
	t.w.mu.Lock()
	defer t.w.mu.Unlock()
	return t.w.store.UpdateTitle(id, title)
}
