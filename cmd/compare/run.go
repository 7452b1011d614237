package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/beerlens/backend/config"
	"github.com/beerlens/backend/internal/domain"
	"github.com/beerlens/backend/internal/render"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// Output formats of the run command
const (
	formatTable = "table"
	formatCards = "cards"
	formatJSON  = "json"
)

func newRunCmd(c *cli) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "run NAME=URL[|IMAGE] NAME=URL[|IMAGE]...",
		Short: "Fetch and compare products",
		Long: `Fetch detail and capacity data for two to four products and print them side by side.

Each argument names a product and its page, optionally followed by an image URL:

  compare run "Pale Ale=https://bier.jp/itemdetail/1001" "Stout=https://bier.jp/itemdetail/1002|https://bier.jp/img/1002.jpg"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if format != formatTable && format != formatCards && format != formatJSON {
				return fmt.Errorf("unknown format %q: must be table, cards or json", format)
			}

			entries := make([]domain.SelectionEntry, 0, len(args))
			for _, arg := range args {
				entry, err := parseEntry(arg)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			return c.runComparison(ctx, entries, format)
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatTable, "Output format (table, cards, json)")

	return cmd
}

// parseEntry parses NAME=URL[|IMAGE]
func parseEntry(arg string) (domain.SelectionEntry, error) {
	name, rest, ok := strings.Cut(arg, "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return domain.SelectionEntry{}, fmt.Errorf("invalid product %q: want NAME=URL[|IMAGE]", arg)
	}

	pageURL, imageURL, _ := strings.Cut(rest, "|")
	pageURL = strings.TrimSpace(pageURL)
	if pageURL == "" {
		return domain.SelectionEntry{}, fmt.Errorf("invalid product %q: missing URL", arg)
	}

	return domain.SelectionEntry{
		Key:       name,
		SourceURL: pageURL,
		ImageURL:  strings.TrimSpace(imageURL),
	}, nil
}

// runComparison selects every entry through the selection service, so the
// size limit applies, then runs the comparison and prints the result.
func (c *cli) runComparison(ctx context.Context, entries []domain.SelectionEntry, format string) error {
	container, err := c.build(prometheus.NewRegistry(), func(cfg *config.Config) {
		// A single run never outlives the process
		cfg.Session.Store = "memory"
		c.quietLogs(cfg)
	})
	if err != nil {
		return err
	}
	defer container.Cleanup()
	defer syncLogger(container.Logger)

	sessionID := uuid.NewString()
	for _, entry := range entries {
		if err := container.SelectionService.Add(ctx, sessionID, entry); err != nil {
			return fmt.Errorf("cannot select %q: %w", entry.Key, err)
		}
	}

	selected, err := container.SelectionService.List(ctx, sessionID)
	if err != nil {
		return err
	}

	result, err := container.ComparisonService.Run(ctx, selected, func(current, total int) {
		fmt.Fprintln(c.stderr, gray(fmt.Sprintf("[%d/%d] fetched", current, total)))
	})
	if err != nil {
		return err
	}

	if err := c.print(result, format); err != nil {
		return err
	}

	if result.ErrorCount > 0 {
		fmt.Fprintln(c.stderr, red(fmt.Sprintf("%d of %d products could not be fetched", result.ErrorCount, len(result.Items))))
	} else {
		fmt.Fprintln(c.stderr, green(fmt.Sprintf("compared %d products", len(result.Items))))
	}
	return nil
}

func (c *cli) print(result *domain.ComparisonResult, format string) error {
	switch format {
	case formatCards:
		return writeJSON(c, render.Cards(result.Items))
	case formatJSON:
		return writeJSON(c, result)
	default:
		return render.WriteText(c.stdout, render.Table(result.Items), !color.NoColor)
	}
}

func writeJSON(c *cli, v any) error {
	encoder := json.NewEncoder(c.stdout)
	encoder.SetIndent("", "  ")
	encoder.SetEscapeHTML(false)
	return encoder.Encode(v)
}
