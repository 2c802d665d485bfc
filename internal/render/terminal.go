package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"contentstudio/internal/core"
)

var (
	colorPrimary = lipgloss.Color("#7C3AED")
	colorAccent  = lipgloss.Color("#06B6D4")
	colorMuted   = lipgloss.Color("#6B7280")

	styleTitle    = lipgloss.NewStyle().Foreground(colorPrimary).Bold(true)
	styleH1       = lipgloss.NewStyle().Bold(true).Underline(true)
	styleH2       = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleH3       = lipgloss.NewStyle().Bold(true)
	styleBold     = lipgloss.NewStyle().Bold(true)
	styleItalic   = lipgloss.NewStyle().Italic(true)
	styleSection  = lipgloss.NewStyle().Foreground(colorMuted).Bold(true)
	styleMuted    = lipgloss.NewStyle().Foreground(colorMuted)
	styleKeywords = lipgloss.NewStyle().Foreground(colorAccent)

	severityStyles = map[Severity]lipgloss.Style{
		SeverityUnknown:  lipgloss.NewStyle().Foreground(colorMuted),
		SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981")).Bold(true),
		SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B")).Bold(true),
		SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("#F97316")).Bold(true),
		SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444")).Bold(true),
	}
)

// Terminal styles markdown-flavoured text for a terminal. A positive width
// wraps paragraphs and list items.
func Terminal(text string, width int) string {
	blocks := Blocks(text)
	lines := make([]string, 0, len(blocks))
	for _, b := range blocks {
		lines = append(lines, terminalBlock(b, width))
	}
	return strings.Join(lines, "\n")
}

func terminalBlock(b Block, width int) string {
	switch b.Kind {
	case Heading1:
		return styleH1.Render(b.Text())
	case Heading2:
		return styleH2.Render(b.Text())
	case Heading3:
		return styleH3.Render(b.Text())
	case Spacer:
		return ""
	case Bullet:
		return wrap("  • "+spans(b.Spans), width)
	case Numbered:
		return wrap("  ‣ "+spans(b.Spans), width)
	default:
		return wrap(spans(b.Spans), width)
	}
}

func spans(ss []Span) string {
	var sb strings.Builder
	for _, s := range ss {
		switch s.Style {
		case Bold:
			sb.WriteString(styleBold.Render(s.Text))
		case Italic:
			sb.WriteString(styleItalic.Render(s.Text))
		default:
			sb.WriteString(s.Text)
		}
	}
	return sb.String()
}

func wrap(s string, width int) string {
	if width <= 0 {
		return s
	}
	return lipgloss.NewStyle().Width(width).Render(s)
}

// Badge renders a threat label in its severity colour.
func Badge(label string) string {
	return severityStyles[SeverityOf(label)].Render(strings.ToUpper(ThreatLabel(label)))
}

// Content renders a title and body.
func Content(title, body string, width int) string {
	var sb strings.Builder
	if title != "" {
		sb.WriteString(styleTitle.Render(title))
		sb.WriteString("\n\n")
	}
	sb.WriteString(Terminal(body, width))
	return sb.String()
}

// Generation renders the insight panels of a generation reply.
func Generation(g *core.GeneratedContent, width int) string {
	if g == nil {
		return ""
	}
	var sb strings.Builder
	meta := []string{}
	if g.ContentType != "" {
		meta = append(meta, g.ContentType)
	}
	if g.WordCount > 0 {
		meta = append(meta, fmt.Sprintf("%d words", g.WordCount))
	}
	if len(meta) > 0 {
		sb.WriteString(styleMuted.Render(strings.Join(meta, " · ")) + "\n")
	}
	keywords(&sb, g.SEOKeywords)
	section(&sb, "Meta Description", g.MetaDescription, width)
	list(&sb, "Key Takeaways", g.KeyTakeaways, false, width)
	section(&sb, "Call to Action", g.CTAText, width)
	list(&sb, "Suggested Titles", g.SuggestedTitles, false, width)
	section(&sb, "Research Summary", g.ResearchSummary, width)
	section(&sb, "Competitive Insights", g.CompetitiveInsights, width)
	section(&sb, "Audience Insights", g.AudienceInsights, width)
	return strings.TrimRight(sb.String(), "\n")
}

// Analysis renders the analysis panels of an analyzer reply.
func Analysis(a *core.AnalysisResult, width int) string {
	if a == nil {
		return ""
	}
	var sb strings.Builder
	sb.WriteString(styleSection.Render("Threat Level") + " " + Badge(a.ThreatLevel) + "\n")
	if a.RecommendedResponseType != "" {
		sb.WriteString(styleSection.Render("Recommended Response") + " " + a.RecommendedResponseType + "\n")
	}
	section(&sb, "Competitor Summary", a.CompetitorSummary, width)
	list(&sb, "Key Arguments", a.KeyArguments, false, width)
	list(&sb, "Factual Issues", a.FactualIssues, false, width)
	list(&sb, "Rhetorical Strategies", a.RhetoricalStrategies, false, width)
	list(&sb, "Weaknesses", a.Weaknesses, false, width)
	list(&sb, "Valid Points", a.ValidPoints, false, width)
	list(&sb, "Strategic Talking Points", a.StrategicTalkingPoints, true, width)
	keywords(&sb, a.SEOKeywords)
	section(&sb, "Tone Guidance", a.ToneGuidance, width)
	return strings.TrimRight(sb.String(), "\n")
}

// Refinement renders the editor's notes of a refiner reply.
func Refinement(r *core.RefinementResult, width int) string {
	if r == nil {
		return ""
	}
	var sb strings.Builder
	if r.BrandAlignmentScore != "" {
		sb.WriteString(styleSection.Render("Brand Alignment") + " " + styleBold.Render(r.BrandAlignmentScore) + "\n")
	}
	section(&sb, "Tone Assessment", r.ToneAssessment, width)
	list(&sb, "Changes Made", r.ChangesMade, false, width)
	list(&sb, "Suggestions", r.Suggestions, false, width)
	return strings.TrimRight(sb.String(), "\n")
}

func section(sb *strings.Builder, heading, text string, width int) {
	if strings.TrimSpace(text) == "" {
		return
	}
	sb.WriteString("\n" + styleSection.Render(heading) + "\n")
	sb.WriteString(wrap(text, width) + "\n")
}

func list(sb *strings.Builder, heading string, items []string, numbered bool, width int) {
	if len(items) == 0 {
		return
	}
	sb.WriteString("\n" + styleSection.Render(heading) + "\n")
	for i, item := range items {
		prefix := "  • "
		if numbered {
			prefix = fmt.Sprintf("  %d. ", i+1)
		}
		sb.WriteString(wrap(prefix+item, width) + "\n")
	}
}

func keywords(sb *strings.Builder, kws []string) {
	if len(kws) == 0 {
		return
	}
	tags := make([]string, len(kws))
	for i, k := range kws {
		tags[i] = "#" + k
	}
	sb.WriteString(styleKeywords.Render(strings.Join(tags, "  ")) + "\n")
}
