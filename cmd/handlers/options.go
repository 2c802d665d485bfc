package handlers

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"contentstudio/internal/core"
	"contentstudio/internal/export"
)

// NewOptionsCmd creates the options command
func NewOptionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "options",
		Short: "List content kinds and the accepted form values",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = headerColor.Println("Content kinds")
			for _, k := range core.ContentKinds {
				usage := "generate --kind " + string(k)
				if k.Mode() == core.ModeCompetitorAnalysis {
					usage = "analyze"
				}
				fmt.Printf("  %-20s %-16s %s\n", k, k.Label(), usage)
			}

			printOptions("Tones (--tone)", core.Tones)
			printOptions("Platforms (--platform, social_media only)", core.Platforms)
			printOptions("Response goals (--goal)", core.ResponseGoals)
			printOptions("Tone adjustments (--refine-tone)", core.ToneAdjustments)

			formats := make([]string, len(export.Formats))
			for i, f := range export.Formats {
				formats[i] = string(f)
			}
			printOptions("Export formats (--export)", formats)

			fmt.Printf("\nWord count: %d-%d in steps of %d (default %d)\n",
				core.MinWordCount, core.MaxWordCount, core.WordCountStep, core.DefaultWordCount)
		},
	}
}

func printOptions(heading string, values []string) {
	fmt.Println()
	_, _ = headerColor.Println(heading)
	fmt.Printf("  %s\n", strings.Join(values, ", "))
}
