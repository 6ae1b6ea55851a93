package core

import "pkt.systems/trove/schema"

// EventSink receives tab state changes from the workspace store.
type EventSink interface {
	OnTabsEvent(event schema.TabsEvent)
}
