package core

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"pkt.systems/trove/schema"
)

func TestGetAllDocumentTabsIsIdempotent(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a", "b", "c")...)
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	if _, ok, _ := w.Tabs.SwitchTab(ctx, "b"); ok {
		t.Fatalf("expected switch before sync to be a no-op")
	}

	first, err := w.Documents.GetAllDocumentTabs(ctx)
	if err != nil {
		t.Fatalf("first sync: %v", err)
	}
	if _, ok, err := w.Tabs.SwitchTab(ctx, "b"); !ok || err != nil {
		t.Fatalf("switch: ok=%v err=%v", ok, err)
	}
	second, err := w.Documents.GetAllDocumentTabs(ctx)
	if err != nil {
		t.Fatalf("second sync: %v", err)
	}
	third, err := w.Documents.GetAllDocumentTabs(ctx)
	if err != nil {
		t.Fatalf("third sync: %v", err)
	}
	if diff := cmp.Diff(first, second); diff != "" {
		t.Fatalf("tab list changed (-first +second):\n%s", diff)
	}
	if diff := cmp.Diff(second, third); diff != "" {
		t.Fatalf("tab list changed (-second +third):\n%s", diff)
	}
	if got := currentID(w); got != "b" {
		t.Fatalf("expected current b after re-sync, got %q", got)
	}
}

func TestGetAllDocumentTabsReturnsBridgeError(t *testing.T) {
	bridge := newFakeBridge()
	bridge.failOn("ListTabs", errors.New("boom"))
	w := newTestWorkspace(t, bridge)
	if _, err := w.Documents.GetAllDocumentTabs(context.Background()); err == nil {
		t.Fatalf("expected list error")
	}
}

func TestAddNewDocumentTab(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a")...)
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()

	tab, ok := w.Documents.AddNewDocumentTab(ctx)
	if !ok {
		t.Fatalf("expected add to succeed")
	}
	if tab.Title != schema.DefaultTabTitle {
		t.Fatalf("unexpected title %q", tab.Title)
	}
	if got := currentID(w); got != tab.ID {
		t.Fatalf("expected new tab current, got %q", got)
	}
	if bridge.active != tab.ID {
		t.Fatalf("expected bridge active %q, got %q", tab.ID, bridge.active)
	}
	if len(w.Store().Tabs()) != 2 {
		t.Fatalf("expected 2 tabs, got %+v", w.Store().Tabs())
	}
	assertCurrentListed(t, w)
}

func TestAddNewDocumentTabCreateFailureLeavesStore(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a")...)
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	if err := w.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	before := w.Store().Snapshot()
	bridge.failOn("CreateTab", errors.New("disk full"))

	if _, ok := w.Documents.AddNewDocumentTab(ctx); ok {
		t.Fatalf("expected add to fail")
	}
	if diff := cmp.Diff(before, w.Store().Snapshot()); diff != "" {
		t.Fatalf("store changed (-want +got):\n%s", diff)
	}
}

func TestAddNewDocumentTabNotifyFailureKeepsLocalState(t *testing.T) {
	bridge := newFakeBridge()
	bridge.failOn("SetActiveTab", errors.New("gone"))
	w := newTestWorkspace(t, bridge)

	tab, ok := w.Documents.AddNewDocumentTab(context.Background())
	if ok {
		t.Fatalf("expected notify failure to be reported")
	}
	if got := currentID(w); got != tab.ID || tab.ID == "" {
		t.Fatalf("expected created tab current, got %q", got)
	}
}

func TestDeleteLastDocumentTabCreatesFresh(t *testing.T) {
	bridge := newFakeBridge(tabsOf("only")...)
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	if err := w.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if !w.Documents.DeleteDocumentTab(ctx) {
		t.Fatalf("expected delete to succeed")
	}
	state := w.Store().Snapshot()
	if len(state.Tabs) != 1 {
		t.Fatalf("expected exactly one tab, got %+v", state.Tabs)
	}
	if state.Current == nil || state.Current.ID != state.Tabs[0].ID {
		t.Fatalf("expected the remaining tab to be current, got %+v", state.Current)
	}
	if state.Tabs[0].ID == "only" {
		t.Fatalf("expected a fresh tab")
	}
}

func TestDeleteDocumentTabSelectsLast(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a", "b", "c")...)
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	if err := w.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	if !w.Documents.DeleteDocumentTab(ctx) {
		t.Fatalf("expected delete to succeed")
	}
	if got := currentID(w); got != "c" {
		t.Fatalf("expected last tab current, got %q", got)
	}
	if bridge.active != "c" {
		t.Fatalf("expected bridge active c, got %q", bridge.active)
	}
	assertCurrentListed(t, w)
}

func TestDeleteDocumentTabWithoutCurrentIsNoop(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a")...)
	w := newTestWorkspace(t, bridge)
	if w.Documents.DeleteDocumentTab(context.Background()) {
		t.Fatalf("expected no-op without current tab")
	}
	if len(bridge.callLog()) != 0 {
		t.Fatalf("expected no bridge calls, got %v", bridge.callLog())
	}
}

func TestDeleteDocumentTabFailureLeavesStore(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a", "b")...)
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	if err := w.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	bridge.failOn("DeleteDocument", errors.New("locked"))
	before := w.Store().Snapshot()

	if w.Documents.DeleteDocumentTab(ctx) {
		t.Fatalf("expected delete failure")
	}
	if diff := cmp.Diff(before, w.Store().Snapshot()); diff != "" {
		t.Fatalf("store changed (-want +got):\n%s", diff)
	}
}

func TestLoadRecentDocumentsOrderAndActive(t *testing.T) {
	bridge := newFakeBridge()
	bridge.recent = []schema.Document{{ID: "doc1", Title: "One"}, {ID: "doc2", Title: "Two"}}
	bridge.active = "doc2"
	w := newTestWorkspace(t, bridge)

	if !w.Documents.LoadRecentDocuments(context.Background()) {
		t.Fatalf("expected recent load to succeed")
	}
	var order []schema.TabID
	for _, tab := range w.Store().Tabs() {
		order = append(order, tab.ID)
	}
	if diff := cmp.Diff([]schema.TabID{"doc1", "doc2"}, order); diff != "" {
		t.Fatalf("unexpected tab order (-want +got):\n%s", diff)
	}
	if got := currentID(w); got != "doc2" {
		t.Fatalf("expected last open tab current, got %q", got)
	}
}

func TestLoadRecentDocumentsUnknownActiveFallsBackToFirst(t *testing.T) {
	bridge := newFakeBridge()
	bridge.recent = []schema.Document{{ID: "doc1", Title: "One"}, {ID: "doc2", Title: "Two"}}
	bridge.active = "gone"
	w := newTestWorkspace(t, bridge)

	if !w.Documents.LoadRecentDocuments(context.Background()) {
		t.Fatalf("expected recent load to succeed")
	}
	if got := currentID(w); got != "doc1" {
		t.Fatalf("expected first tab current, got %q", got)
	}
	if bridge.active != "doc1" {
		t.Fatalf("expected bridge told about doc1, got %q", bridge.active)
	}
}

func TestLoadRecentDocumentsEmptyCreatesTab(t *testing.T) {
	bridge := newFakeBridge()
	w := newTestWorkspace(t, bridge)

	if !w.Documents.LoadRecentDocuments(context.Background()) {
		t.Fatalf("expected recent load to succeed")
	}
	state := w.Store().Snapshot()
	if len(state.Tabs) != 1 || state.Current == nil {
		t.Fatalf("expected one current tab, got %+v", state)
	}
}

func TestSaveDocumentUpdatesLocalTitle(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a", "b")...)
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	if err := w.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}

	err := w.Documents.SaveDocument(ctx, schema.SaveDocumentRequest{DocumentID: "b", Title: "Plans", Content: "<p>x</p>"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	tab, _ := w.Store().TabByID("b")
	if tab.Title != "Plans" {
		t.Fatalf("expected local title update, got %q", tab.Title)
	}
	if other, _ := w.Store().TabByID("a"); other.Title != "Tab a" {
		t.Fatalf("unexpected title change on a: %q", other.Title)
	}
}

func TestSaveDocumentReturnsBridgeError(t *testing.T) {
	bridge := newFakeBridge(tabsOf("a")...)
	bridge.failOn("SaveDocument", errors.New("read-only"))
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()
	if err := w.Init(ctx); err != nil {
		t.Fatalf("init: %v", err)
	}
	if err := w.Documents.SaveDocument(ctx, schema.SaveDocumentRequest{DocumentID: "a", Title: "New"}); err == nil {
		t.Fatalf("expected save error")
	}
	if tab, _ := w.Store().TabByID("a"); tab.Title != "Tab a" {
		t.Fatalf("expected title untouched, got %q", tab.Title)
	}
}

func TestLoadDocument(t *testing.T) {
	bridge := newFakeBridge()
	bridge.docs["html"] = schema.Document{ID: "html", Title: "H", Content: "<p>hi</p>"}
	bridge.docs["tree"] = schema.Document{ID: "tree", Title: "T", Content: `{"type":"doc","content":[]}`}
	w := newTestWorkspace(t, bridge)
	ctx := context.Background()

	doc, ok := w.Documents.LoadDocument(ctx, "html", "H")
	if !ok || doc.Encoding != schema.EncodingHTML {
		t.Fatalf("expected html document, got %+v ok=%v", doc, ok)
	}
	doc, ok = w.Documents.LoadDocument(ctx, "tree", "T")
	if !ok || doc.Encoding != schema.EncodingJSON {
		t.Fatalf("expected json document, got %+v ok=%v", doc, ok)
	}
	if _, ok := w.Documents.LoadDocument(ctx, "missing", "M"); ok {
		t.Fatalf("expected missing document to report false")
	}
	bridge.failOn("GetDocument", errors.New("io"))
	if _, ok := w.Documents.LoadDocument(ctx, "html", "H"); ok {
		t.Fatalf("expected bridge failure to report false")
	}
}
