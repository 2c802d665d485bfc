package handlers

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"contentstudio/internal/agent"
	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/fetch"
	"contentstudio/internal/render"
)

// NewAnalyzeCmd creates the analyze command
func NewAnalyzeCmd() *cobra.Command {
	var (
		form        core.AnalysisRequest
		contentFile string
		url         string
		sample      bool
		ref         refineFlags
		out         outputFlags
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze competitor content and draft a strategic response",
		Long: `Analyze a competitor or critic's content with the analyzer agent.

The analyzer summarizes the piece, lists its arguments, factual issues,
rhetorical strategies, weaknesses and valid points, rates the threat level and
drafts a response with strategic talking points. The result is added to the
history. Any --refine-* flag runs one refinement pass on the response.

The competitor content comes from --content, --content-file (use - for stdin)
or --url, which fetches the page and extracts the article text.

Examples:
  # Analyze an article from the web
  contentstudio analyze --url https://example.com/ai-content-is-killing-brands

  # Analyze pasted text with context, copy the talking points
  contentstudio analyze --content-file post.txt --position "AI-assisted, human-led" --goal "Factual Rebuttal" --copy-talking-points

  # Offline demo with the canned sample reply
  contentstudio analyze --sample`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, form, contentFile, url, sample, ref, out)
		},
	}

	cmd.Flags().StringVarP(&form.CompetitorContent, "content", "c", "", "Competitor content to analyze")
	cmd.Flags().StringVarP(&contentFile, "content-file", "f", "", "Read competitor content from a file (- for stdin)")
	cmd.Flags().StringVarP(&url, "url", "u", "", "Fetch competitor content from a URL")
	cmd.Flags().StringVarP(&form.CompetitorSource, "source", "s", "", "Author or publication of the content")
	cmd.Flags().StringVar(&form.YourPosition, "position", "", "Your brand's position")
	cmd.Flags().StringVar(&form.Industry, "industry", "", "Industry context")
	cmd.Flags().StringVarP(&form.ResponseGoal, "goal", "g", "", "Response goal (see 'contentstudio options')")
	cmd.Flags().BoolVar(&sample, "sample", false, "Use the canned sample form and reply instead of a live agent")
	cmd.Flags().BoolVar(&out.copyTalking, "copy-talking-points", false, "Copy the strategic talking points as a numbered list")
	cmd.MarkFlagsMutuallyExclusive("content", "content-file", "url")
	ref.register(cmd)
	out.register(cmd)

	return cmd
}

func runAnalyze(cmd *cobra.Command, form core.AnalysisRequest, contentFile, url string, sample bool, ref refineFlags, out outputFlags) error {
	ctx := cmd.Context()
	cfg := config.Get()

	switch {
	case contentFile != "":
		text, err := readContent(cmd.InOrStdin(), contentFile)
		if err != nil {
			return err
		}
		form.CompetitorContent = text
	case url != "":
		_, _ = infoColor.Fprintf(os.Stderr, "Fetching %s...\n", url)
		page, err := fetch.NewFetcher(nil).Fetch(ctx, url)
		if err != nil {
			return err
		}
		form.CompetitorContent = page.Text
		if strings.TrimSpace(form.CompetitorSource) == "" {
			form.CompetitorSource = page.SourceLabel()
		}
	}
	if sample && !form.Ready() {
		form = agent.SampleAnalysisRequest()
	}
	if err := form.Validate(); err != nil {
		return err
	}

	caller, err := newCaller(ctx, cfg, sample)
	if err != nil {
		return err
	}
	hist, closeHist, err := openHistory(ctx, cfg.History)
	if err != nil {
		return err
	}
	defer closeHist()

	studio := newStudio(caller, hist)
	studio.SelectKind(core.KindCompetitorAnalysis)
	studio.SetAnalysisForm(form)

	_, _ = infoColor.Fprintln(os.Stderr, "Analyzing competitor content...")
	if err := studio.Analyze(ctx); err != nil {
		return stageError(studio, core.RoleAnalyzer, err)
	}

	st := studio.Snapshot()
	fmt.Println(render.Analysis(st.Analysis, outputWidth))

	if err := refine(ctx, studio, ref); err != nil {
		return err
	}

	printResult(studio)
	return deliver(studio, out, cfg.Export)
}

func readContent(stdin io.Reader, path string) (string, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return "", fmt.Errorf("failed to read competitor content: %w", err)
	}
	return string(data), nil
}
