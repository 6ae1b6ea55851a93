package logx

import (
	"pkt.systems/pslog"
	"pkt.systems/trove/schema"
)

// WithTab annotates the logger with the tab id if present.
func WithTab(log pslog.Logger, tabID schema.TabID) pslog.Logger {
	if tabID != "" {
		log = log.With("tab", tabID)
	}
	return log
}

// WithDocument annotates the logger with document id and title when available.
func WithDocument(log pslog.Logger, id schema.DocumentID, title string) pslog.Logger {
	if id != "" {
		log = log.With("document", id)
	}
	if title != "" {
		log = log.With("title", title)
	}
	return log
}
