package handlers

import (
	"github.com/spf13/cobra"

	"contentstudio/internal/history"
	"contentstudio/internal/tui"
)

// NewTUICmd creates the TUI command
func NewTUICmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Browse the content history in a terminal UI",
		Long: `Launch the history browser: filter by content kind with tab, search
topics and titles with /, scroll the selected entry, delete with d and clear
everything with C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withHistory(cmd.Context(), func(hist *history.Store) error {
				return tui.Run(hist)
			})
		},
	}
}
