package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"pkt.systems/trove/schema"
)

type recordingSink struct {
	mu     sync.Mutex
	events []schema.TabsEvent
}

func (r *recordingSink) OnTabsEvent(ev schema.TabsEvent) {
	r.mu.Lock()
	r.events = append(r.events, ev)
	r.mu.Unlock()
}

func TestNewWorkspaceRequiresBridge(t *testing.T) {
	if _, err := NewWorkspace(nil, Deps{}); err == nil {
		t.Fatalf("expected missing bridge error")
	}
}

func TestInitSelectsFirstTab(t *testing.T) {
	w := newTestWorkspace(t, newFakeBridge(tabsOf("a", "b")...))
	if err := w.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	if got := currentID(w); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
}

func TestAttachAdoptsBridgeActive(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a", "b")...)
	bridge.active = "b"
	w := newTestWorkspace(t, bridge)
	if err := w.Attach(context.Background()); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if got := currentID(w); got != "b" {
		t.Fatalf("expected b, got %q", got)
	}
	for _, call := range bridge.callLog() {
		if call == "SetActiveTab" {
			t.Fatalf("attach should not notify the bridge")
		}
	}
}

func TestAttachUnknownActiveFallsBack(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a", "b")...)
	bridge.active = "zzz"
	w := newTestWorkspace(t, bridge)
	if err := w.Attach(context.Background()); err != nil {
		t.Fatalf("attach: %v", err)
	}
	if got := currentID(w); got != "a" {
		t.Fatalf("expected a, got %q", got)
	}
}

func TestAttachReturnsBridgeError(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a")...)
	bridge.failOn("GetActiveTab", errors.New("down"))
	w := newTestWorkspace(t, bridge)
	if err := w.Attach(context.Background()); err == nil {
		t.Fatalf("expected attach error")
	}
}

func TestSettingsAreCached(t *testing.T) {
	bridge := newFakeBridge()
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		settings, err := w.Settings(ctx)
		if err != nil {
			t.Fatalf("settings: %v", err)
		}
		if _, ok := settings.Lookup("Theme"); !ok {
			t.Fatalf("expected Theme setting")
		}
	}
	if bridge.settingsCalls != 1 {
		t.Fatalf("expected one bridge fetch, got %d", bridge.settingsCalls)
	}
	w.ReloadSettings()
	if _, err := w.Settings(ctx); err != nil {
		t.Fatalf("settings: %v", err)
	}
	if bridge.settingsCalls != 2 {
		t.Fatalf("expected refetch after reload, got %d", bridge.settingsCalls)
	}
}

func TestEventSinkReceivesChanges(t *testing.T) {
	sink := &recordingSink{}
	w, err := NewWorkspace(newFakeBridge(tabsOf("a")...), Deps{EventSink: sink})
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	if err := w.Init(context.Background()); err != nil {
		t.Fatalf("init: %v", err)
	}
	w.Close()
	w.Tabs.UpdateTabTitleByID("a", "Alpha")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	if len(sink.events) != 2 {
		t.Fatalf("expected listed+activated events, got %+v", sink.events)
	}
	if sink.events[1].State.CurrentID() != "a" {
		t.Fatalf("expected a current in event, got %+v", sink.events[1].State)
	}
}

func TestConcurrentOperationsKeepInvariants(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a", "b", "c")...)
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	if err := w.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			w.Tabs.CloseTab(ctx, currentID(w))
		}()
		go func() {
			defer wg.Done()
			w.Documents.AddNewDocumentTab(ctx)
		}()
	}
	wg.Wait()
	state := w.Store().Snapshot()
	if len(state.Tabs) == 0 || state.Current == nil {
		t.Fatalf("expected a current tab, got %+v", state)
	}
	assertCurrentListed(t, w)
}
