package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"pkt.systems/trove/internal/markdown"
	"pkt.systems/trove/internal/persist"
	"pkt.systems/trove/schema"
)

const (
	markdownExt = ".md"
	jsonExt     = ".json"
	maxNameLen  = 250
)

// SaveDocument writes a document under its title, removing the file of the
// previous title, and retitles the tab that owns it.
func (b *Backend) SaveDocument(_ context.Context, req schema.SaveDocumentRequest) error {
	if err := schema.ValidateDocumentID(req.DocumentID); err != nil {
		return err
	}
	title := schema.NormalizeTitle(req.Title)
	encoding := schema.NormalizeEncoding(req.Encoding)
	body := req.Content
	if encoding == schema.EncodingHTML {
		converted, err := markdown.ToMarkdown(req.Content)
		if err != nil {
			return fmt.Errorf("convert document: %w", err)
		}
		body = converted
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	log := b.log.With("document", req.DocumentID, "title", title)

	// Only a document that was saved before owns a file under its old title.
	var oldPaths []string
	idx := b.documentIndexLocked(req.DocumentID)
	if idx >= 0 && b.tabs[idx].DocumentID != "" {
		oldPaths = b.documentPaths(b.tabs[idx].Title)
	} else if i := b.recentIndexLocked(req.DocumentID); i >= 0 {
		oldPaths = b.documentPaths(b.recent[i].Title)
	}
	target := b.documentPath(title, encoding)
	for _, old := range oldPaths {
		if old == target {
			continue
		}
		if err := os.Remove(old); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn("backend document stale file remove failed", "path", old, "err", err)
			return fmt.Errorf("remove old document: %w", err)
		}
	}
	if err := persist.WriteFileAtomic(target, []byte(body), 0o644); err != nil {
		log.Warn("backend document write failed", "err", err)
		return fmt.Errorf("write document: %w", err)
	}

	if idx >= 0 {
		b.tabs[idx].Title = title
		b.tabs[idx].DocumentID = req.DocumentID
	}
	entry := schema.RecentFile{ID: req.DocumentID, Title: title, ModifiedAt: b.now().UTC()}
	if i := b.recentIndexLocked(req.DocumentID); i >= 0 {
		b.recent[i] = entry
	} else {
		b.recent = append(b.recent, entry)
	}
	log.Info("backend document saved", "path", target, "encoding", encoding)
	return b.persistLocked()
}

// GetDocument reads a document by title. When title is empty the title of
// the tab owning id is used. A missing file reports ok=false.
func (b *Backend) GetDocument(_ context.Context, id schema.DocumentID, title string) (schema.Document, bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if strings.TrimSpace(title) == "" {
		if idx := b.documentIndexLocked(id); idx >= 0 {
			title = b.tabs[idx].Title
		}
	}
	return b.readDocument(id, title)
}

// ListRecentDocuments rebuilds the open tabs from saved user data, keeping
// only tabs whose document still exists, and returns their documents in tab
// order. Without saved user data every document in the trove is returned
// under a fresh id.
func (b *Backend) ListRecentDocuments(_ context.Context) ([]schema.Document, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	data, ok, err := b.store.LoadUserData()
	if err != nil {
		return nil, fmt.Errorf("load userdata: %w", err)
	}
	if ok {
		b.recent = data.RecentFiles
		b.active = data.LastOpenTab
		b.tabs = b.tabs[:0]
		docs := make([]schema.Document, 0, len(data.Tabs))
		for _, tab := range data.Tabs {
			doc, found, err := b.readDocument(tab.DocumentRef(), tab.Title)
			if err != nil {
				b.log.Warn("backend document restore failed", "tab", tab.ID, "err", err)
				continue
			}
			if !found {
				continue
			}
			b.tabs = append(b.tabs, tab)
			docs = append(docs, doc)
		}
		b.log.Debug("backend recent documents restored", "tabs", len(docs))
		return docs, nil
	}

	entries, err := os.ReadDir(b.troveDir)
	if err != nil {
		return nil, fmt.Errorf("read trove: %w", err)
	}
	var docs []schema.Document
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != markdownExt && ext != jsonExt {
			continue
		}
		title := strings.TrimSuffix(entry.Name(), ext)
		doc, found, err := b.readDocument(schema.DocumentID(b.newID()), title)
		if err != nil || !found {
			continue
		}
		docs = append(docs, doc)
	}
	b.log.Debug("backend trove scanned", "documents", len(docs))
	return docs, nil
}

// DeleteDocument removes the tab owning id and, when the tab was saved, its
// file. The active tab moves to the tab now at the same position, or the
// last tab.
func (b *Backend) DeleteDocument(_ context.Context, id schema.DocumentID) error {
	if err := schema.ValidateDocumentID(id); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.documentIndexLocked(id)
	if idx < 0 {
		return schema.ErrTabNotFound
	}
	tab := b.tabs[idx]
	b.tabs = append(b.tabs[:idx], b.tabs[idx+1:]...)
	switch {
	case idx < len(b.tabs):
		b.active = b.tabs[idx].ID
	case len(b.tabs) > 0:
		b.active = b.tabs[len(b.tabs)-1].ID
	default:
		b.active = ""
	}
	if tab.DocumentID != "" {
		for _, path := range b.documentPaths(tab.Title) {
			if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
				return fmt.Errorf("delete document: %w", err)
			}
		}
	}
	b.recent = slices.DeleteFunc(b.recent, func(f schema.RecentFile) bool { return f.ID == id })
	b.log.Info("backend document deleted", "document", id, "title", tab.Title)
	return b.persistLocked()
}

// RecentFiles persists user data and returns the recent file list.
func (b *Backend) RecentFiles(_ context.Context) ([]schema.RecentFile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.persistLocked(); err != nil {
		b.log.Warn("backend userdata save failed", "err", err)
	}
	return append([]schema.RecentFile{}, b.recent...), nil
}

// CleanupStaleEntries drops saved tabs and recent files whose document file
// no longer exists. Unsaved tabs are kept. It returns how many entries were
// removed.
func (b *Backend) CleanupStaleEntries(_ context.Context) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	removed := 0
	b.tabs = slices.DeleteFunc(b.tabs, func(tab schema.Tab) bool {
		if tab.DocumentID == "" || b.documentExists(tab.Title) {
			return false
		}
		removed++
		return true
	})
	b.recent = slices.DeleteFunc(b.recent, func(f schema.RecentFile) bool {
		if b.documentExists(f.Title) {
			return false
		}
		removed++
		return true
	})
	if removed == 0 {
		return 0, nil
	}
	if b.active != "" && b.indexLocked(b.active) < 0 {
		b.active = ""
		if len(b.tabs) > 0 {
			b.active = b.tabs[len(b.tabs)-1].ID
		}
	}
	b.log.Info("backend stale entries removed", "count", removed)
	return removed, b.persistLocked()
}

func (b *Backend) recentIndexLocked(id schema.DocumentID) int {
	for i := range b.recent {
		if b.recent[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Backend) readDocument(id schema.DocumentID, title string) (schema.Document, bool, error) {
	title = schema.NormalizeTitle(title)
	path := b.documentPath(title, schema.EncodingHTML)
	data, err := os.ReadFile(path)
	if err == nil {
		html, err := markdown.ToHTML(string(data))
		if err != nil {
			return schema.Document{}, false, fmt.Errorf("render document: %w", err)
		}
		return schema.Document{ID: id, Title: title, Content: html, Encoding: schema.EncodingHTML}, true, nil
	}
	if !errors.Is(err, os.ErrNotExist) {
		return schema.Document{}, false, fmt.Errorf("read document: %w", err)
	}
	data, err = os.ReadFile(b.documentPath(title, schema.EncodingJSON))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return schema.Document{}, false, nil
		}
		return schema.Document{}, false, fmt.Errorf("read document: %w", err)
	}
	return schema.Document{ID: id, Title: title, Content: string(data), Encoding: schema.EncodingJSON}, true, nil
}

func (b *Backend) documentPath(title string, encoding schema.Encoding) string {
	ext := markdownExt
	if encoding == schema.EncodingJSON {
		ext = jsonExt
	}
	return filepath.Join(b.troveDir, sanitizeFilename(title)+ext)
}

func (b *Backend) documentPaths(title string) []string {
	return []string{
		b.documentPath(title, schema.EncodingHTML),
		b.documentPath(title, schema.EncodingJSON),
	}
}

func (b *Backend) documentExists(title string) bool {
	for _, path := range b.documentPaths(title) {
		if _, err := os.Stat(path); err == nil {
			return true
		}
	}
	return false
}

// sanitizeFilename strips path separators, reserved characters and control
// characters so that a title can be used as a file name.
func sanitizeFilename(name string) string {
	var out strings.Builder
	for _, r := range name {
		switch {
		case unicode.IsControl(r):
			continue
		case strings.ContainsRune(`/\?%*:|"<>`, r):
			continue
		}
		out.WriteRune(r)
	}
	cleaned := strings.TrimRight(strings.TrimSpace(out.String()), ". ")
	if cleaned == "" || cleaned == "." || cleaned == ".." {
		return schema.DefaultTabTitle
	}
	if len(cleaned) > maxNameLen {
		cleaned = cleaned[:maxNameLen]
		for !utf8.ValidString(cleaned) {
			cleaned = cleaned[:len(cleaned)-1]
		}
	}
	return cleaned
}
