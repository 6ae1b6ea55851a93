package eventbus

import (
	"context"
	"sync"

	"pkt.systems/pslog"
	"pkt.systems/trove/schema"
)

// Bus fans tab state changes out to channel subscribers. It implements
// core.EventSink.
type Bus struct {
	mu    sync.RWMutex
	subs  map[chan schema.TabsEvent]struct{}
	log   pslog.Logger
	depth int
}

// New constructs a Bus.
func New(logger pslog.Logger) *Bus {
	if logger == nil {
		logger = pslog.Ctx(context.Background())
	}
	return &Bus{
		subs:  make(map[chan schema.TabsEvent]struct{}),
		log:   logger,
		depth: 256,
	}
}

// Subscribe registers a subscriber and returns a channel + cancel. The
// channel is closed by cancel.
func (b *Bus) Subscribe() (<-chan schema.TabsEvent, func()) {
	if b == nil {
		return nil, func() {}
	}
	ch := make(chan schema.TabsEvent, b.depth)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	count := len(b.subs)
	b.mu.Unlock()
	b.log.Debug("eventbus subscribe", "subs", count)
	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			close(ch)
			b.mu.Unlock()
			b.log.Debug("eventbus unsubscribe")
		})
	}
}

// OnTabsEvent publishes a tab state change.
func (b *Bus) OnTabsEvent(event schema.TabsEvent) {
	if b == nil {
		return
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if len(b.subs) == 0 {
		return
	}
	dropped := 0
	for sub := range b.subs {
		select {
		case sub <- event:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.log.Trace("eventbus dropped", "count", dropped, "type", event.Type)
	}
}
