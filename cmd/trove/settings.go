package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/trove/schema"
)

func newSettingsCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "List or change settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				settings, err := s.workspace.Settings(ctx)
				if err != nil {
					return err
				}
				printSettings(cmd.OutOrStdout(), settings)
				return nil
			})
		},
	}
	cmd.AddCommand(newSettingsGetCmd(opts))
	cmd.AddCommand(newSettingsSetCmd(opts))
	cmd.AddCommand(newSettingsToggleCmd(opts))
	return cmd
}

func newSettingsGetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "get <title>",
		Short: "Print one setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				setting, err := s.bridge.GetSetting(ctx, args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), formatSetting(setting))
				return err
			})
		},
	}
}

func newSettingsSetCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set <title> <value>",
		Short: "Select a setting value",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.bridge.SaveSetting(ctx, args[0], args[1]); err != nil {
					return err
				}
				return printSetting(ctx, s, cmd.OutOrStdout(), args[0])
			})
		},
	}
}

func newSettingsToggleCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <title>",
		Short: "Flip a setting checkbox",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.bridge.ToggleCheck(ctx, args[0]); err != nil {
					return err
				}
				return printSetting(ctx, s, cmd.OutOrStdout(), args[0])
			})
		},
	}
}

// printSetting re-reads the settings after a change and prints one entry.
func printSetting(ctx context.Context, s *session, out io.Writer, title string) error {
	s.workspace.ReloadSettings()
	settings, err := s.workspace.Settings(ctx)
	if err != nil {
		return err
	}
	setting, ok := settings.Lookup(title)
	if !ok {
		return fmt.Errorf("%w: %s", schema.ErrSettingNotFound, title)
	}
	_, err = fmt.Fprintln(out, formatSetting(setting))
	return err
}

func printSettings(out io.Writer, settings schema.Settings) {
	for _, category := range settings {
		_, _ = fmt.Fprintf(out, "%s\n", category.Title)
		for _, setting := range category.Settings {
			_, _ = fmt.Fprintf(out, "  %s\n", formatSetting(setting))
		}
	}
}

func formatSetting(setting schema.Setting) string {
	var b strings.Builder
	b.WriteString(setting.Title)
	b.WriteString(":")
	if setting.Selected != nil || len(setting.Select) > 0 {
		b.WriteString(" ")
		b.WriteString(setting.Value())
		if len(setting.Select) > 0 {
			b.WriteString(" [")
			b.WriteString(strings.Join(setting.Select, ", "))
			b.WriteString("]")
		}
	}
	if setting.Check != nil {
		_, _ = fmt.Fprintf(&b, " checked=%t", setting.Checked())
	}
	return b.String()
}
