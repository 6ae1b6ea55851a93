package core

import (
	"context"
	"encoding/json"
	"strings"

	"pkt.systems/trove/internal/logx"
	"pkt.systems/trove/schema"
)

// Documents manages document-backed tabs and document content.
type Documents struct {
	w *Workspace
}

// GetAllDocumentTabs replaces the store's tab list with the bridge's.
func (d *Documents) GetAllDocumentTabs(ctx context.Context) ([]schema.Tab, error) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	return d.w.resync(ctx)
}

// AddNewDocumentTab creates a tab, re-syncs, makes it current and tells the
// bridge. Failures are logged and reported as false.
func (d *Documents) AddNewDocumentTab(ctx context.Context) (schema.Tab, bool) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	return d.w.addTab(ctx)
}

func (w *Workspace) addTab(ctx context.Context) (schema.Tab, bool) {
	log := w.log(ctx)
	created, err := w.bridge.CreateTab(ctx)
	if err != nil {
		log.Warn("workspace tab add failed", "err", err)
		return schema.Tab{}, false
	}
	log = logx.WithTab(log, created.ID)
	if _, err := w.resync(ctx); err != nil {
		log.Warn("workspace tab list failed", "err", err)
		return schema.Tab{}, false
	}
	tab, ok := w.store.TabByID(created.ID)
	if !ok {
		log.Warn("workspace tab missing after create")
		w.store.ResetCurrentTab()
		return schema.Tab{}, false
	}
	if err := w.activate(ctx, tab); err != nil {
		log.Warn("workspace active tab notify failed", "err", err)
		return tab, false
	}
	log.Info("workspace tab added")
	return tab, true
}

// DeleteDocumentTab deletes the current tab's document. The last remaining
// tab becomes current, or a fresh tab is created when none remain.
func (d *Documents) DeleteDocumentTab(ctx context.Context) bool {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	w := d.w
	current, ok := w.store.CurrentTab()
	if !ok {
		return false
	}
	log := logx.WithTab(w.log(ctx), current.ID)
	if err := w.bridge.DeleteDocument(ctx, current.DocumentRef()); err != nil {
		log.Warn("workspace document delete failed", "err", err)
		return false
	}
	tabs, err := w.resync(ctx)
	if err != nil {
		log.Warn("workspace tab list failed", "err", err)
		return false
	}
	log.Info("workspace document deleted", "remaining", len(tabs))
	return w.activateLastOrCreate(ctx, tabs)
}

// LoadRecentDocuments opens a tab for every recent document and restores the
// bridge's active tab. With no recent documents a fresh tab is created.
func (d *Documents) LoadRecentDocuments(ctx context.Context) bool {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	w := d.w
	log := w.log(ctx)
	docs, err := w.bridge.ListRecentDocuments(ctx)
	if err != nil {
		log.Warn("workspace recent documents failed", "err", err)
		return false
	}
	if len(docs) == 0 {
		_, ok := w.addTab(ctx)
		return ok
	}
	for _, doc := range docs {
		if _, err := w.bridge.LoadTab(ctx, doc.ID, doc.Title); err != nil {
			logx.WithDocument(log, doc.ID, doc.Title).Warn("workspace tab load failed", "err", err)
			return false
		}
	}
	if _, err := w.resync(ctx); err != nil {
		log.Warn("workspace tab list failed", "err", err)
		return false
	}
	active, err := w.bridge.GetActiveTab(ctx)
	if err != nil {
		log.Warn("workspace active tab lookup failed", "err", err)
		return false
	}
	_, found, err := w.switchTab(ctx, active)
	if found {
		if err != nil {
			log.Warn("workspace active tab notify failed", "tab", active, "err", err)
			return false
		}
		log.Info("workspace recent documents loaded", "count", len(docs))
		return true
	}
	log.Debug("workspace active tab unknown", "tab", active)
	first, ok := w.store.ResetCurrentTab()
	if !ok {
		return false
	}
	if err := w.bridge.SetActiveTab(ctx, first.ID); err != nil {
		log.Warn("workspace active tab notify failed", "tab", first.ID, "err", err)
		return false
	}
	log.Info("workspace recent documents loaded", "count", len(docs))
	return true
}

// SaveDocument persists content through the bridge. On success the local tab
// title follows the saved title.
func (d *Documents) SaveDocument(ctx context.Context, req schema.SaveDocumentRequest) error {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	w := d.w
	log := logx.WithDocument(w.log(ctx), req.DocumentID, req.Title)
	if err := w.bridge.SaveDocument(ctx, req); err != nil {
		log.Warn("workspace document save failed", "err", err)
		return err
	}
	title := schema.NormalizeTitle(req.Title)
	for _, tab := range w.store.Tabs() {
		if tab.DocumentRef() == req.DocumentID {
			w.store.UpdateTitle(tab.ID, title)
		}
	}
	log.Debug("workspace document saved")
	return nil
}

// LoadDocument fetches document content. Missing documents and bridge
// failures both report false.
func (d *Documents) LoadDocument(ctx context.Context, id schema.DocumentID, title string) (schema.Document, bool) {
	d.w.mu.Lock()
	defer d.w.mu.Unlock()
	log := logx.WithDocument(d.w.log(ctx), id, title)
	doc, ok, err := d.w.bridge.GetDocument(ctx, id, title)
	if err != nil {
		log.Warn("workspace document load failed", "err", err)
		return schema.Document{}, false
	}
	if !ok {
		return schema.Document{}, false
	}
	if isStructuredJSON(doc.Content) {
		doc.Encoding = schema.EncodingJSON
	} else if doc.Encoding == "" {
		doc.Encoding = schema.EncodingHTML
	}
	return doc, true
}

// isStructuredJSON reports whether content is a JSON object or array.
func isStructuredJSON(content string) bool {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" || (trimmed[0] != '{' && trimmed[0] != '[') {
		return false
	}
	return json.Valid([]byte(trimmed))
}
