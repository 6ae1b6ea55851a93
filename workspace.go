package trove

import (
	"context"

	"pkt.systems/pslog"
	"pkt.systems/trove/core"
)

// OpenWorkspace builds a workspace over bridge, delivers store changes to
// every sink and adopts the bridge's current tab state.
func OpenWorkspace(ctx context.Context, bridge core.Bridge, sinks ...core.EventSink) (*core.Workspace, error) {
	ws, err := core.NewWorkspace(bridge, core.Deps{
		EventSink: fanout(sinks...),
		Logger:    pslog.Ctx(ctx),
	})
	if err != nil {
		return nil, err
	}
	if err := ws.Attach(ctx); err != nil {
		ws.Close()
		return nil, err
	}
	return ws, nil
}
