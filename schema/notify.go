package schema

// TabsEventType describes what changed in the tab state.
type TabsEventType string

const (
	// TabsEventListed indicates the tab list was replaced.
	TabsEventListed TabsEventType = "listed"
	// TabsEventActivated indicates the current tab changed.
	TabsEventActivated TabsEventType = "activated"
	// TabsEventRetitled indicates a tab title changed.
	TabsEventRetitled TabsEventType = "retitled"
)

// TabsEvent carries a tab state change to subscribers.
type TabsEvent struct {
	Type  TabsEventType
	State TabsState
}
