package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pinnhq/pinncheck/internal/dom"
)

// NewInspectCmd creates the inspect command: offline probes against a DOM
// snapshot captured with --save-dom.
func NewInspectCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <dom-file>",
		Short: "Re-check a saved DOM snapshot without a browser",
		Long: `Inspect reads a DOM snapshot written by a --save-dom run and reports
what it contains: the page title, its headings, and whether the given text
fragments appear anywhere in the rendered text content.`,
		Args: cobra.ExactArgs(1),
		RunE: runInspect,
	}

	cmd.Flags().StringArray("text", nil, "Text fragment to probe for (repeatable)")

	return cmd
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read DOM snapshot: %w", err)
	}
	htmlContent := string(data)

	summary, err := dom.Summarize(htmlContent)
	if err != nil {
		return fmt.Errorf("failed to parse DOM snapshot: %w", err)
	}

	out := cmd.OutOrStdout()
	if summary.Title != "" {
		fmt.Fprintf(out, "page title: %s\n", summary.Title)
	}
	for _, heading := range summary.Headings {
		fmt.Fprintf(out, "heading: %s\n", heading)
	}

	texts, _ := cmd.Flags().GetStringArray("text")
	for _, text := range texts {
		found, err := dom.ContainsText(htmlContent, text)
		if err != nil {
			return fmt.Errorf("failed to probe snapshot for %q: %w", text, err)
		}
		if found {
			fmt.Fprintf(out, "text %q present\n", text)
		} else {
			fmt.Fprintf(out, "text %q absent\n", text)
		}
	}
	return nil
}
