package core

import (
	"fmt"
	"strings"
)

// Default and bounds for the word-count target on the generation form.
const (
	DefaultWordCount = 1200
	MinWordCount     = 300
	MaxWordCount     = 5000
	WordCountStep    = 100
)

// ContentRequest is the generation form.
type ContentRequest struct {
	Topic       string `json:"topic"`       // Subject of the piece (required)
	Audience    string `json:"audience"`    // Target audience, free text
	Tone        string `json:"tone"`        // One of Tones, or empty
	KeyMessages string `json:"keyMessages"` // Messages the draft must carry
	Platform    string `json:"platform"`    // One of Platforms, only used for social media
	WordCount   int    `json:"wordCount"`   // Target length in words
}

// NewContentRequest returns an empty form with the default word count.
func NewContentRequest() ContentRequest {
	return ContentRequest{WordCount: DefaultWordCount}
}

// Ready reports whether the form may be submitted.
func (r ContentRequest) Ready() bool {
	return strings.TrimSpace(r.Topic) != ""
}

// Validate checks the form against the input constraints for the given kind.
func (r ContentRequest) Validate(kind ContentKind) error {
	var problems []string
	if !r.Ready() {
		problems = append(problems, "topic is required")
	}
	if r.Tone != "" && !contains(Tones, r.Tone) {
		problems = append(problems, fmt.Sprintf("unknown tone %q (choose one of: %s)", r.Tone, strings.Join(Tones, ", ")))
	}
	if kind == KindSocialMedia {
		if r.Platform == "" {
			problems = append(problems, "platform is required for social media content")
		} else if !contains(Platforms, r.Platform) {
			problems = append(problems, fmt.Sprintf("unknown platform %q (choose one of: %s)", r.Platform, strings.Join(Platforms, ", ")))
		}
	}
	if r.WordCount < MinWordCount || r.WordCount > MaxWordCount || r.WordCount%WordCountStep != 0 {
		problems = append(problems, fmt.Sprintf("word count must be between %d and %d in steps of %d", MinWordCount, MaxWordCount, WordCountStep))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid content request: %s", strings.Join(problems, "; "))
	}
	return nil
}

// AnalysisRequest is the competitor-analysis form.
type AnalysisRequest struct {
	CompetitorContent string `json:"competitorContent"` // Text being answered (required)
	CompetitorSource  string `json:"competitorSource"`  // Author or publication
	YourPosition      string `json:"yourPosition"`      // The caller's own brand position
	Industry          string `json:"industry"`
	ResponseGoal      string `json:"responseGoal"` // One of ResponseGoals, or empty
}

// Ready reports whether the form may be submitted.
func (r AnalysisRequest) Ready() bool {
	return strings.TrimSpace(r.CompetitorContent) != ""
}

// Validate checks the form against the input constraints.
func (r AnalysisRequest) Validate() error {
	var problems []string
	if !r.Ready() {
		problems = append(problems, "competitor content is required")
	}
	if r.ResponseGoal != "" && !contains(ResponseGoals, r.ResponseGoal) {
		problems = append(problems, fmt.Sprintf("unknown response goal %q (choose one of: %s)", r.ResponseGoal, strings.Join(ResponseGoals, ", ")))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid analysis request: %s", strings.Join(problems, "; "))
	}
	return nil
}

// FeedbackInput is the refinement form.
type FeedbackInput struct {
	ToneAdjustment string `json:"toneAdjustment"` // One of ToneAdjustments, or empty
	FeedbackText   string `json:"feedbackText"`
	BrandNotes     string `json:"brandNotes"`
}

// ToggleTone selects label, or clears the selection when label is already selected.
func (f *FeedbackInput) ToggleTone(label string) {
	if f.ToneAdjustment == label {
		f.ToneAdjustment = ""
		return
	}
	f.ToneAdjustment = label
}

// HasFeedback reports whether at least one feedback field is set.
func (f FeedbackInput) HasFeedback() bool {
	return f.ToneAdjustment != "" ||
		strings.TrimSpace(f.FeedbackText) != "" ||
		strings.TrimSpace(f.BrandNotes) != ""
}

// BaseResult is the output of a Generate or Analyze run, before any refinement.
type BaseResult interface {
	Kind() ResultKind
	BaseTitle() string
	BaseBody() string
	Keywords() []string
}

// ResultKind names the three normalized response shapes.
type ResultKind string

const (
	ResultGeneration ResultKind = "generation"
	ResultAnalysis   ResultKind = "analysis"
	ResultRefinement ResultKind = "refinement"
)

// GeneratedContent is the normalized reply of the generator role.
type GeneratedContent struct {
	ContentType         string   `json:"content_type"`
	Title               string   `json:"title"`
	ContentBody         string   `json:"content_body"` // Markdown-flavoured body
	SEOKeywords         []string `json:"seo_keywords"`
	ResearchSummary     string   `json:"research_summary"`
	CompetitiveInsights string   `json:"competitive_insights"`
	AudienceInsights    string   `json:"audience_insights"`
	MetaDescription     string   `json:"meta_description"`
	KeyTakeaways        []string `json:"key_takeaways"`
	CTAText             string   `json:"cta_text"`
	WordCount           int      `json:"word_count"`
	SuggestedTitles     []string `json:"suggested_titles"`
}

func (g *GeneratedContent) Kind() ResultKind   { return ResultGeneration }
func (g *GeneratedContent) BaseTitle() string  { return g.Title }
func (g *GeneratedContent) BaseBody() string   { return g.ContentBody }
func (g *GeneratedContent) Keywords() []string { return g.SEOKeywords }

// AnalysisResult is the normalized reply of the analyzer role.
type AnalysisResult struct {
	CompetitorSummary       string   `json:"competitor_summary"`
	KeyArguments            []string `json:"key_arguments"`
	FactualIssues           []string `json:"factual_issues"`
	RhetoricalStrategies    []string `json:"rhetorical_strategies"`
	Weaknesses              []string `json:"weaknesses"`
	ValidPoints             []string `json:"valid_points"`
	ThreatLevel             string   `json:"threat_level"` // Conventionally low/medium/high/critical, never validated
	RecommendedResponseType string   `json:"recommended_response_type"`
	ResponseTitle           string   `json:"response_title"`
	ResponseContent         string   `json:"response_content"` // Markdown-flavoured body
	StrategicTalkingPoints  []string `json:"strategic_talking_points"`
	SEOKeywords             []string `json:"seo_keywords"`
	ToneGuidance            string   `json:"tone_guidance"`
}

func (a *AnalysisResult) Kind() ResultKind   { return ResultAnalysis }
func (a *AnalysisResult) BaseTitle() string  { return a.ResponseTitle }
func (a *AnalysisResult) BaseBody() string   { return a.ResponseContent }
func (a *AnalysisResult) Keywords() []string { return a.SEOKeywords }

// RefinementResult is the normalized reply of the refiner role. It applies to
// either kind of base result.
type RefinementResult struct {
	Title               string   `json:"title"`
	RefinedContent      string   `json:"refined_content"`
	ChangesMade         []string `json:"changes_made"`
	ToneAssessment      string   `json:"tone_assessment"`
	BrandAlignmentScore string   `json:"brand_alignment_score"` // Free-text label such as "9.2/10"
	Suggestions         []string `json:"suggestions"`
}

// HistoryEntry is a frozen projection of a completed generation or analysis.
type HistoryEntry struct {
	ID          string         `json:"id"`          // "<unix millis>_<random suffix>"
	ContentType ContentKind    `json:"contentType"` // Kind the entry was produced under
	Topic       string         `json:"topic"`
	GeneratedAt string         `json:"generatedAt"` // Human-readable timestamp
	Title       string         `json:"title"`
	ContentBody string         `json:"contentBody"`
	SEOKeywords []string       `json:"seoKeywords"`
	FormData    ContentRequest `json:"formData"` // Snapshot of the originating form
}

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
