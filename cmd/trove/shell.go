package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/pslog"
	"pkt.systems/trove/internal/eventbus"
	"pkt.systems/trove/schema"
)

var shellActions = map[string]action{
	"tabs":    listTabs,
	"new":     newTab,
	"switch":  switchTab,
	"close":   closeTab,
	"delete":  deleteDocument,
	"next":    nextTab,
	"first":   firstTab,
	"last":    lastTab,
	"show":    showDocument(true),
	"html":    showDocument(false),
	"recent":  listRecent,
	"load":    loadRecent,
	"cleanup": cleanupStale,
}

const shellHelp = "commands: tabs new switch <id> close [id] delete next first last show [id] html [id] recent load cleanup help quit"

func newShellCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Interactive workspace that keeps one session open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			bus := eventbus.New(pslog.Ctx(cmd.Context()))
			events, cancel := bus.Subscribe()
			defer cancel()
			s, err := openSession(cmd, opts, bus)
			if err != nil {
				return err
			}
			defer func() { _ = s.Close() }()
			drainEvents(events)
			return runShell(cmd.Context(), s, cmd.InOrStdin(), cmd.OutOrStdout(), events)
		},
	}
}

// runShell reads commands line by line until EOF or quit. After each
// command the tab bar is reprinted when the workspace reported a change.
func runShell(ctx context.Context, s *session, in io.Reader, out io.Writer, events <-chan schema.TabsEvent) error {
	log := pslog.Ctx(ctx)
	_, _ = fmt.Fprintln(out, tabBar(s.workspace.Store().Snapshot()))
	scanner := bufio.NewScanner(in)
	for {
		_, _ = fmt.Fprint(out, "trove> ")
		if !scanner.Scan() {
			_, _ = fmt.Fprintln(out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		name, args := fields[0], fields[1:]
		switch name {
		case "quit", "exit":
			return nil
		case "help":
			_, _ = fmt.Fprintln(out, shellHelp)
			continue
		}
		act, ok := shellActions[name]
		if !ok {
			_, _ = fmt.Fprintf(out, "unknown command %q\n", name)
			continue
		}
		callCtx, cancel := s.callContext(ctx)
		err := act(callCtx, s, out, args)
		cancel()
		if err != nil {
			log.Debug("shell command failed", "command", name, "err", err)
			_, _ = fmt.Fprintf(out, "error: %v\n", err)
		}
		if state, changed := drainEvents(events); changed {
			_, _ = fmt.Fprintln(out, tabBar(state))
		}
	}
}

// drainEvents consumes pending notifications and returns the newest state.
func drainEvents(events <-chan schema.TabsEvent) (schema.TabsState, bool) {
	var latest schema.TabsState
	changed := false
	for {
		select {
		case event, ok := <-events:
			if !ok {
				return latest, changed
			}
			latest, changed = event.State, true
		default:
			return latest, changed
		}
	}
}
