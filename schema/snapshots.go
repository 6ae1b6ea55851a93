package schema

// TabsState is a read-only view of the open tabs and the current tab.
type TabsState struct {
	Tabs    []Tab
	Current *Tab
}

// CurrentID returns the id of the current tab, or "" when there is none.
func (s TabsState) CurrentID() TabID {
	if s.Current == nil {
		return ""
	}
	return s.Current.ID
}

// Index returns the position of the tab with the given id, or -1.
func (s TabsState) Index(id TabID) int {
	for i, tab := range s.Tabs {
		if tab.ID == id {
			return i
		}
	}
	return -1
}
