package handlers

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"contentstudio/internal/agent"
	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/export"
	"contentstudio/internal/history"
	"contentstudio/internal/logger"
	"contentstudio/internal/render"
	"contentstudio/internal/store"
	"contentstudio/internal/workflow"
)

// outputWidth wraps rendered content on stdout.
const outputWidth = 100

var (
	successColor = color.New(color.FgGreen, color.Bold)
	errorColor   = color.New(color.FgRed, color.Bold)
	infoColor    = color.New(color.FgCyan)
	warningColor = color.New(color.FgYellow)
	headerColor  = color.New(color.FgMagenta, color.Bold)
)

func printError(err error) {
	_, _ = errorColor.Fprintf(os.Stderr, "Error: %v\n", err)
}

// openHistory opens the configured backend and the history store over it. The
// returned func closes the backend.
func openHistory(ctx context.Context, cfg config.History) (*history.Store, func(), error) {
	backend, err := store.Open(ctx, cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open history: %w", err)
	}
	closeFn := func() {
		if err := backend.Close(); err != nil {
			logger.Warn("Failed to close history backend", "error", err.Error())
		}
	}
	return history.Open(ctx, backend), closeFn, nil
}

// newCaller builds the agent caller. sample forces the canned-reply provider.
func newCaller(ctx context.Context, cfg *config.Config, sample bool) (agent.Caller, error) {
	agentCfg := cfg.Agent
	if sample {
		agentCfg.Provider = agent.ProviderSample
	} else if err := cfg.ValidateAgent(); err != nil {
		return nil, err
	}
	return agent.New(ctx, agentCfg, cfg.AI)
}

func newStudio(caller agent.Caller, hist *history.Store) *workflow.Studio {
	var appender workflow.HistoryAppender
	if hist != nil {
		appender = hist
	}
	return workflow.New(caller, appender, workflow.WithEntryFactory(history.NewEntry))
}

// stageError turns a failed workflow run into the error shown to the user.
func stageError(studio *workflow.Studio, role core.Role, err error) error {
	if errors.Is(err, workflow.ErrAgentFailed) {
		if msg := studio.Error(role); msg != "" {
			logger.Debug("Agent call failed", "role", string(role), "error", err.Error())
			return errors.New(msg)
		}
	}
	return err
}

// refineFlags are the one-pass refinement options shared by generate and analyze.
type refineFlags struct {
	tone       string
	feedback   string
	brandNotes string
}

func (f refineFlags) input() core.FeedbackInput {
	return core.FeedbackInput{
		ToneAdjustment: f.tone,
		FeedbackText:   f.feedback,
		BrandNotes:     f.brandNotes,
	}
}

func (f *refineFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.tone, "refine-tone", "", "Refine once with a tone adjustment (see 'contentstudio options')")
	cmd.Flags().StringVar(&f.feedback, "refine-feedback", "", "Refine once with specific feedback")
	cmd.Flags().StringVar(&f.brandNotes, "refine-brand-notes", "", "Refine once with brand guideline notes")
}

// refine runs the refiner when any refinement flag was given.
func refine(ctx context.Context, studio *workflow.Studio, f refineFlags) error {
	fb := f.input()
	if !fb.HasFeedback() {
		return nil
	}
	if fb.ToneAdjustment != "" && !core.IsToneAdjustment(fb.ToneAdjustment) {
		return fmt.Errorf("%w: %q", workflow.ErrUnknownTone, fb.ToneAdjustment)
	}
	studio.SetFeedback(fb)

	_, _ = infoColor.Fprintln(os.Stderr, "Refining content...")
	if err := studio.Refine(ctx); err != nil {
		return stageError(studio, core.RoleRefiner, err)
	}

	st := studio.Snapshot()
	fmt.Println(render.Refinement(st.Refinement, outputWidth))
	return nil
}

// exportDefault is the --export value used when the flag has no argument.
const exportDefault = "default"

// outputFlags are the copy and export options shared by generate and analyze.
type outputFlags struct {
	copy        bool
	copyTalking bool
	export      string // Format name, exportDefault for the configured one, "" for none
	exportDir   string
}

func (f *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&f.copy, "copy", false, "Copy the final title and body to the clipboard")
	cmd.Flags().StringVar(&f.export, "export", "", "Export the final content (txt, md, html; bare flag uses the configured format)")
	cmd.Flags().Lookup("export").NoOptDefVal = exportDefault
	cmd.Flags().StringVar(&f.exportDir, "export-dir", "", "Export directory (default from config)")
}

// deliver runs the copy and export options against the displayed content.
func deliver(studio *workflow.Studio, f outputFlags, cfg config.Export) error {
	if f.copy {
		if studio.Copy(export.SystemClipboard{}) {
			_, _ = successColor.Fprintln(os.Stderr, "✓ Copied to clipboard")
		} else {
			_, _ = warningColor.Fprintln(os.Stderr, "Could not copy to clipboard")
		}
	}
	if f.copyTalking {
		if studio.CopyTalkingPoints(export.SystemClipboard{}) {
			_, _ = successColor.Fprintln(os.Stderr, "✓ Talking points copied to clipboard")
		} else {
			_, _ = warningColor.Fprintln(os.Stderr, "No talking points to copy")
		}
	}

	if f.export == "" {
		return nil
	}
	name := f.export
	if name == exportDefault {
		name = cfg.Format
	}
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}
	dir := f.exportDir
	if dir == "" {
		dir = cfg.Directory
	}

	path, err := studio.Export(export.NewDir(dir), format)
	if err != nil {
		return fmt.Errorf("failed to export: %w", err)
	}
	_, _ = successColor.Fprintf(os.Stderr, "✓ Exported to %s\n", path)
	return nil
}

// printResult writes the displayed title and body to stdout.
func printResult(studio *workflow.Studio) {
	title, body := studio.Display()
	fmt.Println(render.Content(title, body, outputWidth))
}
