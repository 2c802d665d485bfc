package handlers

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"contentstudio/internal/agent"
	"contentstudio/internal/config"
	"contentstudio/internal/core"
	"contentstudio/internal/render"
)

// NewGenerateCmd creates the generate command
func NewGenerateCmd() *cobra.Command {
	var (
		kind   string
		form   = core.NewContentRequest()
		sample bool
		ref    refineFlags
		out    outputFlags
	)

	cmd := &cobra.Command{
		Use:   "generate [topic]",
		Short: "Generate marketing content with the generator agent",
		Long: `Generate a draft for one of the standard content kinds.

The generator agent researches the topic, drafts the piece and reports SEO
keywords, key takeaways, a call to action and alternative titles. The result is
added to the history. Any --refine-* flag runs one refinement pass on top.

Examples:
  # Blog post on a topic
  contentstudio generate "How AI is transforming content marketing"

  # LinkedIn post in a witty tone, copied to the clipboard
  contentstudio generate --kind social_media --platform LinkedIn --tone Witty "Our Series A" --copy

  # Generate, tighten, and export as markdown
  contentstudio generate "Remote onboarding" --refine-tone Shorter --export md

  # Offline demo with the canned sample reply
  contentstudio generate --sample`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				form.Topic = strings.Join(args, " ")
			}
			return runGenerate(cmd, core.ContentKind(kind), form, sample, ref, out)
		},
	}

	cmd.Flags().StringVarP(&kind, "kind", "k", string(core.KindBlogPost), "Content kind (see 'contentstudio options')")
	cmd.Flags().StringVar(&form.Topic, "topic", "", "Topic of the piece")
	cmd.Flags().StringVarP(&form.Audience, "audience", "a", "", "Target audience")
	cmd.Flags().StringVarP(&form.Tone, "tone", "t", "", "Tone of voice")
	cmd.Flags().StringVarP(&form.KeyMessages, "key-messages", "m", "", "Key messages the draft must carry")
	cmd.Flags().StringVarP(&form.Platform, "platform", "p", "", "Platform for social media content")
	cmd.Flags().IntVarP(&form.WordCount, "words", "w", core.DefaultWordCount, fmt.Sprintf("Target word count (%d-%d, steps of %d)", core.MinWordCount, core.MaxWordCount, core.WordCountStep))
	cmd.Flags().BoolVar(&sample, "sample", false, "Use the canned sample form and reply instead of a live agent")
	ref.register(cmd)
	out.register(cmd)

	return cmd
}

func runGenerate(cmd *cobra.Command, kind core.ContentKind, form core.ContentRequest, sample bool, ref refineFlags, out outputFlags) error {
	ctx := cmd.Context()
	cfg := config.Get()

	if !kind.Known() {
		return fmt.Errorf("unknown content kind %q", kind)
	}
	if kind.Mode() != core.ModeStandard {
		return fmt.Errorf("%s uses the analyze command", kind.Label())
	}
	if sample && strings.TrimSpace(form.Topic) == "" {
		form = agent.SampleContentRequest()
	}
	if err := form.Validate(kind); err != nil {
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
	studio.SelectKind(kind)
	studio.SetForm(form)

	_, _ = infoColor.Fprintf(os.Stderr, "Generating %s about %q...\n", kind.Label(), form.Topic)
	if err := studio.Generate(ctx); err != nil {
		return stageError(studio, core.RoleGenerator, err)
	}

	st := studio.Snapshot()
	fmt.Println(render.Generation(st.Generated, outputWidth))

	if err := refine(ctx, studio, ref); err != nil {
		return err
	}

	printResult(studio)
	return deliver(studio, out, cfg.Export)
}
