package core

import "pkt.systems/pslog"

// Deps captures optional dependencies for the workspace.
type Deps struct {
	EventSink EventSink
	Logger    pslog.Logger
}
