package handlers

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/history"
	"contentstudio/internal/render"
)

// NewHistoryCmd creates the history command and its subcommands
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse and manage past generations and analyses",
		Long: fmt.Sprintf(`Browse and manage the content history.

The history keeps the %d most recent generations and analyses, newest first.
Refinements are not recorded.`, history.MaxEntries),
	}

	cmd.AddCommand(newHistoryListCmd())
	cmd.AddCommand(newHistoryShowCmd())
	cmd.AddCommand(newHistoryDeleteCmd())
	cmd.AddCommand(newHistoryClearCmd())
	cmd.AddCommand(newHistoryRerunCmd())

	return cmd
}

// withHistory opens the configured history for the duration of fn.
func withHistory(ctx context.Context, fn func(*history.Store) error) error {
	hist, closeHist, err := openHistory(ctx, config.Get().History)
	if err != nil {
		return err
	}
	defer closeHist()
	return fn(hist)
}

func newHistoryListCmd() *cobra.Command {
	var (
		kind  string
		query string
		limit int
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List history entries",
		Long: `List history entries, newest first.

Examples:
  # Everything
  contentstudio history list

  # Blog posts mentioning "AI" in the topic or title
  contentstudio history list --kind blog_post --query ai`,
		RunE: func(cmd *cobra.Command, args []string) error {
			k := core.ContentKind(kind)
			if k != "" && k != "all" && !k.Known() {
				return fmt.Errorf("unknown content kind %q", kind)
			}
			return withHistory(cmd.Context(), func(hist *history.Store) error {
				entries := hist.Filter(k, query)
				if len(entries) == 0 {
					_, _ = warningColor.Println("No history entries found.")
					return nil
				}
				if limit > 0 && len(entries) > limit {
					entries = entries[:limit]
				}
				for _, e := range entries {
					printEntryLine(e)
				}
				fmt.Printf("\n%d of %d entries\n", len(entries), hist.Len())
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", "", "Filter by content kind")
	cmd.Flags().StringVarP(&query, "query", "q", "", "Filter by text in the topic or title")
	cmd.Flags().IntVarP(&limit, "limit", "l", 0, "Maximum number of entries to show (0 for all)")

	return cmd
}

func printEntryLine(e core.HistoryEntry) {
	_, _ = headerColor.Printf("%s  ", e.ID)
	fmt.Println(e.Title)
	_, _ = infoColor.Printf("    %s", e.ContentType.Label())
	fmt.Printf(" · %s", e.GeneratedAt)
	if e.Topic != "" {
		fmt.Printf(" · %s", e.Topic)
	}
	fmt.Println()
}

func newHistoryShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), func(hist *history.Store) error {
				e, ok := hist.Get(args[0])
				if !ok {
					return fmt.Errorf("history entry %q not found", args[0])
				}
				printEntryLine(e)
				if len(e.SEOKeywords) > 0 {
					fmt.Printf("    Keywords: %s\n", strings.Join(e.SEOKeywords, ", "))
				}
				fmt.Println()
				fmt.Println(render.Content(e.Title, e.ContentBody, outputWidth))
				return nil
			})
		},
	}
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a history entry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), func(hist *history.Store) error {
				found, err := hist.Delete(cmd.Context(), args[0])
				if !found {
					return fmt.Errorf("history entry %q not found", args[0])
				}
				if err != nil {
					return fmt.Errorf("entry deleted but history could not be saved: %w", err)
				}
				_, _ = successColor.Printf("✓ Deleted %s\n", args[0])
				return nil
			})
		},
	}
}

func newHistoryClearCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete every history entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to clear history without --yes")
			}
			return withHistory(cmd.Context(), func(hist *history.Store) error {
				n := hist.Len()
				if err := hist.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("history could not be saved: %w", err)
				}
				_, _ = successColor.Printf("✓ Cleared %d entries\n", n)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm clearing the history")
	return cmd
}

func newHistoryRerunCmd() *cobra.Command {
	var (
		sample bool
		out    outputFlags
	)

	cmd := &cobra.Command{
		Use:   "rerun <id>",
		Short: "Generate again from a history entry's form",
		Long: `Load a history entry's content kind and form and run the generator again.
The new result is added to the history as a separate entry.

Competitor analyses cannot be rerun: the competitor content is not stored.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := config.Get()

			hist, closeHist, err := openHistory(ctx, cfg.History)
			if err != nil {
				return err
			}
			defer closeHist()

			entry, ok := hist.Get(args[0])
			if !ok {
				return fmt.Errorf("history entry %q not found", args[0])
			}
			if entry.ContentType.Mode() != core.ModeStandard {
				return fmt.Errorf("%s entries cannot be rerun", entry.ContentType.Label())
			}

			caller, err := newCaller(ctx, cfg, sample)
			if err != nil {
				return err
			}
			studio := newStudio(caller, hist)
			studio.LoadEntry(entry)

			_, _ = infoColor.Fprintf(os.Stderr, "Regenerating %s about %q...\n", entry.ContentType.Label(), entry.FormData.Topic)
			if err := studio.Generate(ctx); err != nil {
				return stageError(studio, core.RoleGenerator, err)
			}

			fmt.Println(render.Generation(studio.Snapshot().Generated, outputWidth))
			printResult(studio)
			return deliver(studio, out, cfg.Export)
		},
	}

	cmd.Flags().BoolVar(&sample, "sample", false, "Use the canned sample reply instead of a live agent")
	out.register(cmd)

	return cmd
}
