package core

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"pkt.systems/trove/schema"
)

type fakeBridge struct {
	mu       sync.Mutex
	tabs     []schema.Tab
	active   schema.TabID
	docs     map[schema.DocumentID]schema.Document
	recent   []schema.Document
	settings schema.Settings
	fail     map[string]error
	calls    []string
	nextID   int

	settingsCalls int
}

func newFakeBridge(tabs ...schema.Tab) *fakeBridge {
	return &fakeBridge{
		tabs:     append([]schema.Tab(nil), tabs...),
		docs:     make(map[schema.DocumentID]schema.Document),
		fail:     make(map[string]error),
		settings: schema.DefaultSettings(),
	}
}

func (f *fakeBridge) record(name string) error {
	f.calls = append(f.calls, name)
	return f.fail[name]
}

func (f *fakeBridge) callLog() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeBridge) failOn(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fail[name] = err
}

func (f *fakeBridge) CreateTab(context.Context) (schema.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CreateTab"); err != nil {
		return schema.Tab{}, err
	}
	f.nextID++
	tab := schema.Tab{ID: schema.TabID(fmt.Sprintf("new-%d", f.nextID)), Title: schema.DefaultTabTitle}
	f.tabs = append(f.tabs, tab)
	return tab, nil
}

func (f *fakeBridge) ListTabs(context.Context) ([]schema.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListTabs"); err != nil {
		return nil, err
	}
	return append([]schema.Tab{}, f.tabs...), nil
}

func (f *fakeBridge) SetActiveTab(_ context.Context, id schema.TabID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SetActiveTab"); err != nil {
		return err
	}
	f.active = id
	return nil
}

func (f *fakeBridge) GetActiveTab(context.Context) (schema.TabID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetActiveTab"); err != nil {
		return "", err
	}
	return f.active, nil
}

func (f *fakeBridge) GetDocument(_ context.Context, id schema.DocumentID, _ string) (schema.Document, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetDocument"); err != nil {
		return schema.Document{}, false, err
	}
	doc, ok := f.docs[id]
	return doc, ok, nil
}

func (f *fakeBridge) SaveDocument(_ context.Context, req schema.SaveDocumentRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("SaveDocument"); err != nil {
		return err
	}
	f.docs[req.DocumentID] = schema.Document{ID: req.DocumentID, Title: req.Title, Content: req.Content, Encoding: req.Encoding}
	for i := range f.tabs {
		if f.tabs[i].DocumentRef() == req.DocumentID {
			f.tabs[i].Title = req.Title
		}
	}
	return nil
}

func (f *fakeBridge) ListRecentDocuments(context.Context) ([]schema.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListRecentDocuments"); err != nil {
		return nil, err
	}
	return append([]schema.Document(nil), f.recent...), nil
}

func (f *fakeBridge) LoadTab(_ context.Context, id schema.DocumentID, title string) (schema.Tab, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("LoadTab"); err != nil {
		return schema.Tab{}, err
	}
	tab := schema.Tab{ID: schema.TabID(id), Title: title, DocumentID: id}
	for i := range f.tabs {
		if f.tabs[i].ID == tab.ID {
			f.tabs[i] = tab
			return tab, nil
		}
	}
	f.tabs = append(f.tabs, tab)
	return tab, nil
}

func (f *fakeBridge) CloseTab(_ context.Context, id schema.TabID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("CloseTab"); err != nil {
		return err
	}
	f.removeTab(id)
	return nil
}

func (f *fakeBridge) DeleteDocument(_ context.Context, id schema.DocumentID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("DeleteDocument"); err != nil {
		return err
	}
	delete(f.docs, id)
	for _, tab := range f.tabs {
		if tab.DocumentRef() == id {
			f.removeTab(tab.ID)
			return nil
		}
	}
	return schema.ErrTabNotFound
}

func (f *fakeBridge) GetSettings(context.Context) (schema.Settings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("GetSettings"); err != nil {
		return nil, err
	}
	f.settingsCalls++
	return f.settings, nil
}

func (f *fakeBridge) removeTab(id schema.TabID) {
	for i := range f.tabs {
		if f.tabs[i].ID == id {
			f.tabs = append(f.tabs[:i], f.tabs[i+1:]...)
			return
		}
	}
}

func tabsOf(ids ...string) []schema.Tab {
	tabs := make([]schema.Tab, 0, len(ids))
	for _, id := range ids {
		tabs = append(tabs, schema.Tab{ID: schema.TabID(id), Title: "Tab " + id})
	}
	return tabs
}

func newTestWorkspace(t testing.TB, bridge *fakeBridge) *Workspace {
	t.Helper()
	w, err := NewWorkspace(bridge, Deps{})
	if err != nil {
		t.Fatalf("new workspace: %v", err)
	}
	return w
}

func currentID(w *Workspace) schema.TabID {
	return w.Store().Snapshot().CurrentID()
}

// assertCurrentListed checks that the current tab, when set, is a list member.
func assertCurrentListed(t testing.TB, w *Workspace) {
	t.Helper()
	state := w.Store().Snapshot()
	if state.Current == nil {
		return
	}
	if state.Index(state.Current.ID) < 0 {
		t.Fatalf("current tab %q not in list %+v", state.Current.ID, state.Tabs)
	}
}
