package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"

	"pkt.systems/trove/internal/markdown"
	"pkt.systems/trove/schema"
)

// action is a workspace operation shared by the one-shot commands and the
// interactive shell.
type action func(ctx context.Context, s *session, out io.Writer, args []string) error

var errNoCurrentTab = errors.New("no current tab")

func listTabs(_ context.Context, s *session, out io.Writer, _ []string) error {
	printTabs(out, s.workspace.Store().Snapshot())
	return nil
}

func newTab(ctx context.Context, s *session, out io.Writer, _ []string) error {
	tab, ok := s.workspace.Documents.AddNewDocumentTab(ctx)
	if !ok {
		return errors.New("tab add failed")
	}
	_, err := fmt.Fprintf(out, "created %s\n", tab.ID)
	return err
}

func switchTab(ctx context.Context, s *session, out io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("switch requires a tab id")
	}
	id := schema.TabID(strings.TrimSpace(args[0]))
	if err := schema.ValidateTabID(id); err != nil {
		return err
	}
	tab, found, err := s.workspace.Tabs.SwitchTab(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("%w: %s", schema.ErrTabNotFound, id)
	}
	return printCurrent(out, tab)
}

func closeTab(ctx context.Context, s *session, out io.Writer, args []string) error {
	id, err := targetTab(s, args)
	if err != nil {
		return err
	}
	if !s.workspace.Tabs.CloseTab(ctx, id) {
		return fmt.Errorf("tab close failed: %s", id)
	}
	_, err = fmt.Fprintf(out, "closed %s\n", id)
	return err
}

func deleteDocument(ctx context.Context, s *session, out io.Writer, _ []string) error {
	current, ok := s.workspace.Store().CurrentTab()
	if !ok {
		return errNoCurrentTab
	}
	if !s.workspace.Documents.DeleteDocumentTab(ctx) {
		return fmt.Errorf("document delete failed: %s", current.Title)
	}
	_, err := fmt.Fprintf(out, "deleted %s\n", current.Title)
	return err
}

func navigate(move func(context.Context, *session) (schema.Tab, bool, error)) action {
	return func(ctx context.Context, s *session, out io.Writer, _ []string) error {
		tab, found, err := move(ctx, s)
		if err != nil {
			return err
		}
		if !found {
			return errors.New("no tabs open")
		}
		return printCurrent(out, tab)
	}
}

var (
	nextTab  = navigate(func(ctx context.Context, s *session) (schema.Tab, bool, error) { return s.workspace.Tabs.CycleTabs(ctx) })
	firstTab = navigate(func(ctx context.Context, s *session) (schema.Tab, bool, error) { return s.workspace.Tabs.GotoFirstTab(ctx) })
	lastTab  = navigate(func(ctx context.Context, s *session) (schema.Tab, bool, error) { return s.workspace.Tabs.GotoLastTab(ctx) })
)

func showDocument(asMarkdown bool) action {
	return func(ctx context.Context, s *session, out io.Writer, args []string) error {
		id, err := targetTab(s, args)
		if err != nil {
			return err
		}
		tab, ok := s.workspace.Store().TabByID(id)
		if !ok {
			return fmt.Errorf("%w: %s", schema.ErrTabNotFound, id)
		}
		doc, ok := s.workspace.Documents.LoadDocument(ctx, tab.DocumentRef(), tab.Title)
		if !ok {
			return fmt.Errorf("%w: %s", schema.ErrDocumentNotFound, tab.Title)
		}
		content := doc.Content
		if asMarkdown && doc.Encoding != schema.EncodingJSON {
			content, err = markdown.ToMarkdown(content)
			if err != nil {
				return err
			}
		}
		if !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		_, err = io.WriteString(out, content)
		return err
	}
}

func listRecent(ctx context.Context, s *session, out io.Writer, _ []string) error {
	files, err := s.bridge.RecentFiles(ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		_, err := fmt.Fprintln(out, "no recent documents")
		return err
	}
	for _, file := range files {
		when := "unknown"
		if !file.ModifiedAt.IsZero() {
			when = humanize.Time(file.ModifiedAt)
		}
		if _, err := fmt.Fprintf(out, "%s\t%s\t%s\n", file.Title, file.ID, when); err != nil {
			return err
		}
	}
	return nil
}

func loadRecent(ctx context.Context, s *session, out io.Writer, _ []string) error {
	if !s.workspace.Documents.LoadRecentDocuments(ctx) {
		return errors.New("recent documents load failed")
	}
	_, err := fmt.Fprintf(out, "opened %d tabs\n", len(s.workspace.Store().Tabs()))
	return err
}

func cleanupStale(ctx context.Context, s *session, out io.Writer, _ []string) error {
	removed, err := s.bridge.CleanupStaleEntries(ctx)
	if err != nil {
		return err
	}
	if removed > 0 {
		if _, err := s.workspace.Documents.GetAllDocumentTabs(ctx); err != nil {
			return err
		}
	}
	_, err = fmt.Fprintf(out, "removed %d stale %s\n", removed, plural(removed, "entry", "entries"))
	return err
}

func targetTab(s *session, args []string) (schema.TabID, error) {
	if len(args) > 0 && strings.TrimSpace(args[0]) != "" {
		id := schema.TabID(strings.TrimSpace(args[0]))
		return id, schema.ValidateTabID(id)
	}
	current, ok := s.workspace.Store().CurrentTab()
	if !ok {
		return "", errNoCurrentTab
	}
	return current.ID, nil
}

func printCurrent(out io.Writer, tab schema.Tab) error {
	_, err := fmt.Fprintf(out, "current %s %s\n", tab.ID, tab.Title)
	return err
}

func printTabs(out io.Writer, state schema.TabsState) {
	if len(state.Tabs) == 0 {
		_, _ = fmt.Fprintln(out, "no tabs open")
		return
	}
	current := state.CurrentID()
	for _, tab := range state.Tabs {
		marker := " "
		if tab.ID == current {
			marker = "*"
		}
		saved := ""
		if tab.DocumentID == "" {
			saved = " (unsaved)"
		}
		_, _ = fmt.Fprintf(out, "%s %s\t%s%s\n", marker, tab.ID, tab.Title, saved)
	}
}

// tabBar renders the tabs on one line with the current tab bracketed.
func tabBar(state schema.TabsState) string {
	if len(state.Tabs) == 0 {
		return "(no tabs)"
	}
	current := state.CurrentID()
	parts := make([]string, 0, len(state.Tabs))
	for _, tab := range state.Tabs {
		if tab.ID == current {
			parts = append(parts, "["+tab.Title+"]")
			continue
		}
		parts = append(parts, tab.Title)
	}
	return strings.Join(parts, " | ")
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
