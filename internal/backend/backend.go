package backend

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"pkt.systems/pslog"
	"pkt.systems/trove/internal/persist"
	"pkt.systems/trove/schema"
)

// DefaultTrove is the trove directory used when none is configured.
const DefaultTrove = "Untitled_Trove"

// Config controls where the backend keeps its files.
type Config struct {
	// Root holds the trove directories, appdata/ and settings.json.
	Root   string
	Trove  string
	Logger pslog.Logger
}

// Backend is the filesystem peer that owns tabs, documents, recent files
// and settings.
type Backend struct {
	root     string
	troveDir string
	store    *persist.Store
	log      pslog.Logger

	mu     sync.Mutex
	tabs   []schema.Tab
	active schema.TabID
	recent []schema.RecentFile
	lock   *os.File

	newID func() string
	now   func() time.Time
}

// New constructs a backend rooted at cfg.Root and restores the last saved
// tab state.
func New(cfg Config) (*Backend, error) {
	root := strings.TrimSpace(cfg.Root)
	if root == "" {
		return nil, errors.New("backend root is required")
	}
	trove := strings.TrimSpace(cfg.Trove)
	if trove == "" {
		trove = DefaultTrove
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	troveDir := filepath.Join(root, sanitizeFilename(trove))
	if err := os.MkdirAll(troveDir, 0o755); err != nil {
		return nil, fmt.Errorf("create trove dir: %w", err)
	}
	store, err := persist.NewStoreWithLogger(root, logger)
	if err != nil {
		return nil, fmt.Errorf("open state store: %w", err)
	}
	b := &Backend{
		root:     root,
		troveDir: troveDir,
		store:    store,
		log:      logger.With("trove", trove),
		newID:    uuid.NewString,
		now:      time.Now,
	}
	data, ok, err := store.LoadUserData()
	if err != nil {
		b.log.Warn("backend userdata restore failed", "err", err)
	} else if ok {
		b.tabs = data.Tabs
		b.active = data.LastOpenTab
		b.recent = data.RecentFiles
	}
	b.log.Debug("backend open", "root", root, "tabs", len(b.tabs))
	return b, nil
}

// TroveDir returns the directory holding document files.
func (b *Backend) TroveDir() string {
	return b.troveDir
}

// CreateTab appends a fresh untitled tab.
func (b *Backend) CreateTab(_ context.Context) (schema.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	tab := schema.Tab{ID: schema.TabID(b.newID()), Title: schema.DefaultTabTitle, Type: schema.TabTypeDocument}
	b.tabs = append(b.tabs, tab)
	if err := b.persistLocked(); err != nil {
		return schema.Tab{}, err
	}
	b.log.Debug("backend tab created", "tab", tab.ID)
	return tab, nil
}

// ListTabs returns the open tabs in order.
func (b *Backend) ListTabs(_ context.Context) ([]schema.Tab, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]schema.Tab{}, b.tabs...), nil
}

// SetActiveTab records the active tab.
func (b *Backend) SetActiveTab(_ context.Context, id schema.TabID) error {
	if err := schema.ValidateTabID(id); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexLocked(id) < 0 {
		return schema.ErrTabNotFound
	}
	b.active = id
	return b.persistLocked()
}

// GetActiveTab returns the recorded active tab id, which may be empty.
func (b *Backend) GetActiveTab(_ context.Context) (schema.TabID, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active, nil
}

// LoadTab opens a tab for a document, retitling it in place when the tab is
// already open.
func (b *Backend) LoadTab(_ context.Context, id schema.DocumentID, title string) (schema.Tab, error) {
	if err := schema.ValidateDocumentID(id); err != nil {
		return schema.Tab{}, err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	tab := schema.Tab{ID: schema.TabID(id), Title: schema.NormalizeTitle(title), Type: schema.TabTypeDocument, DocumentID: id}
	if idx := b.indexLocked(tab.ID); idx >= 0 {
		b.tabs[idx] = tab
	} else {
		b.tabs = append(b.tabs, tab)
	}
	if err := b.persistLocked(); err != nil {
		return schema.Tab{}, err
	}
	return tab, nil
}

// CloseTab drops a tab from the open set. Its document stays on disk.
func (b *Backend) CloseTab(_ context.Context, id schema.TabID) error {
	if err := schema.ValidateTabID(id); err != nil {
		return err
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	idx := b.indexLocked(id)
	if idx < 0 {
		return nil
	}
	b.tabs = append(b.tabs[:idx], b.tabs[idx+1:]...)
	if b.active == id {
		b.active = ""
	}
	b.log.Debug("backend tab closed", "tab", id)
	return b.persistLocked()
}

// Close persists user data and releases the trove lock.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	err := b.persistLocked()
	if unlockErr := b.unlockLocked(); err == nil {
		err = unlockErr
	}
	return err
}

func (b *Backend) indexLocked(id schema.TabID) int {
	for i := range b.tabs {
		if b.tabs[i].ID == id {
			return i
		}
	}
	return -1
}

func (b *Backend) documentIndexLocked(id schema.DocumentID) int {
	for i := range b.tabs {
		if b.tabs[i].DocumentRef() == id {
			return i
		}
	}
	return -1
}

func (b *Backend) persistLocked() error {
	data := persist.UserData{
		Tabs:        append([]schema.Tab{}, b.tabs...),
		LastOpenTab: b.active,
		RecentFiles: append([]schema.RecentFile{}, b.recent...),
	}
	if err := b.store.SaveUserData(data); err != nil {
		return fmt.Errorf("save userdata: %w", err)
	}
	return nil
}
