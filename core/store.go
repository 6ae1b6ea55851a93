package core

import (
	"sync"

	"pkt.systems/trove/schema"
)

// Store holds the in-memory tab list and the current tab.
type Store struct {
	mu      sync.RWMutex
	tabs    []schema.Tab
	current *schema.Tab

	listenersMu sync.Mutex
	listeners   []storeListener
	nextID      uint64
}

type storeListener struct {
	id uint64
	fn func(schema.TabsEvent)
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{}
}

// SetTabs replaces the tab list. The current tab is rebound to the new
// element with the same id, or cleared when that id is gone.
func (s *Store) SetTabs(tabs []schema.Tab) []schema.Tab {
	if s == nil {
		return nil
	}
	next := cloneTabs(tabs)
	s.mu.Lock()
	s.tabs = next
	if s.current != nil {
		s.current = findTab(s.tabs, s.current.ID)
	}
	state := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(schema.TabsEventListed, state)
	return cloneTabs(next)
}

// SetCurrentTab replaces the current tab. A nil tab clears it.
func (s *Store) SetCurrentTab(tab *schema.Tab) *schema.Tab {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	if tab == nil {
		s.current = nil
	} else {
		copied := *tab
		s.current = &copied
	}
	state := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(schema.TabsEventActivated, state)
	return state.Current
}

// TabByID returns the tab with the given id.
func (s *Store) TabByID(id schema.TabID) (schema.Tab, bool) {
	if s == nil {
		return schema.Tab{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if tab := findTab(s.tabs, id); tab != nil {
		return *tab, true
	}
	return schema.Tab{}, false
}

// CurrentTab returns the current tab, if any.
func (s *Store) CurrentTab() (schema.Tab, bool) {
	if s == nil {
		return schema.Tab{}, false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return schema.Tab{}, false
	}
	return *s.current, true
}

// Tabs returns a copy of the tab list.
func (s *Store) Tabs() []schema.Tab {
	if s == nil {
		return nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneTabs(s.tabs)
}

// ResetCurrentTab makes the first tab current, or clears current when the
// list is empty.
func (s *Store) ResetCurrentTab() (schema.Tab, bool) {
	if s == nil {
		return schema.Tab{}, false
	}
	s.mu.Lock()
	if len(s.tabs) == 0 {
		s.current = nil
	} else {
		first := s.tabs[0]
		s.current = &first
	}
	state := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(schema.TabsEventActivated, state)
	if state.Current == nil {
		return schema.Tab{}, false
	}
	return *state.Current, true
}

// UpdateTitle rewrites the title of one tab. It reports false when no tab
// carries the id.
func (s *Store) UpdateTitle(id schema.TabID, title string) bool {
	if s == nil {
		return false
	}
	s.mu.Lock()
	idx := -1
	for i := range s.tabs {
		if s.tabs[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return false
	}
	s.tabs[idx].Title = title
	if s.current != nil && s.current.ID == id {
		s.current.Title = title
	}
	state := s.snapshotLocked()
	s.mu.Unlock()
	s.publish(schema.TabsEventRetitled, state)
	return true
}

// Snapshot returns a copy of the full state.
func (s *Store) Snapshot() schema.TabsState {
	if s == nil {
		return schema.TabsState{}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

// Subscribe registers fn for every state change and returns a cancel func.
// Listeners run synchronously on the mutating goroutine.
func (s *Store) Subscribe(fn func(schema.TabsEvent)) func() {
	if s == nil || fn == nil {
		return func() {}
	}
	s.listenersMu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, storeListener{id: id, fn: fn})
	s.listenersMu.Unlock()
	var once sync.Once
	return func() {
		once.Do(func() {
			s.listenersMu.Lock()
			defer s.listenersMu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) publish(kind schema.TabsEventType, state schema.TabsState) {
	s.listenersMu.Lock()
	listeners := make([]storeListener, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersMu.Unlock()
	for _, l := range listeners {
		l.fn(schema.TabsEvent{Type: kind, State: cloneState(state)})
	}
}

func (s *Store) snapshotLocked() schema.TabsState {
	state := schema.TabsState{Tabs: cloneTabs(s.tabs)}
	if s.current != nil {
		current := *s.current
		state.Current = &current
	}
	return state
}

func findTab(tabs []schema.Tab, id schema.TabID) *schema.Tab {
	for i := range tabs {
		if tabs[i].ID == id {
			tab := tabs[i]
			return &tab
		}
	}
	return nil
}

func cloneTabs(tabs []schema.Tab) []schema.Tab {
	if tabs == nil {
		return nil
	}
	out := make([]schema.Tab, len(tabs))
	copy(out, tabs)
	return out
}

func cloneState(state schema.TabsState) schema.TabsState {
	out := schema.TabsState{Tabs: cloneTabs(state.Tabs)}
	if state.Current != nil {
		current := *state.Current
		out.Current = &current
	}
	return out
}
