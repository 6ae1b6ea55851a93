package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"pkt.systems/trove/internal/markdown"
	"pkt.systems/trove/schema"
)

func newShowCmd(opts *cliOptions) *cobra.Command {
	var asMarkdown bool
	cmd := &cobra.Command{
		Use:   "show [tab-id]",
		Short: "Print a tab's document, the current one by default",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				return showDocument(asMarkdown)(ctx, s, cmd.OutOrStdout(), args)
			})
		},
	}
	cmd.Flags().BoolVarP(&asMarkdown, "markdown", "m", false, "print markdown instead of html")
	return cmd
}

func newSaveCmd(opts *cliOptions) *cobra.Command {
	var title string
	var file string
	var asJSON bool
	var fromMarkdown bool
	cmd := &cobra.Command{
		Use:   "save <document-id>",
		Short: "Save content from a file or stdin under a title",
		Long: "Save content under a title. The document id is the tab id for a document\n" +
			"that was never saved, or the document id printed by `trove recent`.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if asJSON && fromMarkdown {
				return errors.New("--json and --markdown are mutually exclusive")
			}
			content, err := readContent(cmd.InOrStdin(), file)
			if err != nil {
				return err
			}
			req := schema.SaveDocumentRequest{
				DocumentID: schema.DocumentID(strings.TrimSpace(args[0])),
				Title:      title,
				Content:    content,
				Encoding:   schema.EncodingHTML,
			}
			switch {
			case asJSON:
				req.Encoding = schema.EncodingJSON
			case fromMarkdown:
				req.Content, err = markdown.ToHTML(content)
				if err != nil {
					return err
				}
			}
			if err := schema.ValidateDocumentID(req.DocumentID); err != nil {
				return err
			}
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				if err := s.workspace.Documents.SaveDocument(ctx, req); err != nil {
					return err
				}
				_, err := fmt.Fprintf(cmd.OutOrStdout(), "saved %s\n", schema.NormalizeTitle(req.Title))
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&title, "title", "t", "", "document title")
	cmd.Flags().StringVarP(&file, "file", "f", "", "read content from file instead of stdin")
	cmd.Flags().BoolVar(&asJSON, "json", false, "store content verbatim as a json document")
	cmd.Flags().BoolVarP(&fromMarkdown, "markdown", "m", false, "content is markdown")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}

func newRecentCmd(opts *cliOptions) *cobra.Command {
	var load bool
	cmd := &cobra.Command{
		Use:   "recent",
		Short: "List recently saved documents",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withSession(cmd, opts, func(ctx context.Context, s *session) error {
				out := cmd.OutOrStdout()
				if !load {
					return listRecent(ctx, s, out, args)
				}
				if err := loadRecent(ctx, s, out, args); err != nil {
					return err
				}
				printTabs(out, s.workspace.Store().Snapshot())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&load, "load", false, "reopen the saved tabs instead of listing")
	return cmd
}

func readContent(stdin io.Reader, file string) (string, error) {
	if file != "" && file != "-" {
		data, err := os.ReadFile(file)
		if err != nil {
			return "", fmt.Errorf("read %s: %w", file, err)
		}
		return string(data), nil
	}
	data, err := io.ReadAll(stdin)
	if err != nil {
		return "", fmt.Errorf("read stdin: %w", err)
	}
	return string(data), nil
}
