// Package normalize maps loosely shaped agent replies onto strict result
// records. Every function here is total: missing or mistyped fields become the
// zero value of their type and unknown keys are dropped, so callers never have
// to check a normalized field for absence.
package normalize

import (
	"math"
	"regexp"
	"strings"

	"github.com/tidwall/gjson"

	"contentstudio/internal/core"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*(.*?)```")

// ExtractJSON finds the JSON value in a model reply. It accepts bare JSON, JSON
// inside a markdown code fence, and a JSON object or array embedded in prose.
// The result does not exist when nothing parses.
func ExtractJSON(text string) gjson.Result {
	s := strings.TrimSpace(text)
	if s == "" {
		return gjson.Result{}
	}
	if gjson.Valid(s) {
		return gjson.Parse(s)
	}

	for _, m := range fencePattern.FindAllStringSubmatch(s, -1) {
		inner := strings.TrimSpace(m[1])
		if gjson.Valid(inner) {
			return gjson.Parse(inner)
		}
	}

	for _, pair := range [][2]byte{{'{', '}'}, {'[', ']'}} {
		start := strings.IndexByte(s, pair[0])
		end := strings.LastIndexByte(s, pair[1])
		if start >= 0 && end > start {
			candidate := s[start : end+1]
			if gjson.Valid(candidate) {
				return gjson.Parse(candidate)
			}
		}
	}

	return gjson.Result{}
}

// Payload picks the object to normalize. In order, the first present value
// wins: the parsed reply's "result" field, the parsed reply itself, and the
// transport envelope's "response.result". With none present it is {}.
func Payload(parsed gjson.Result, envelope []byte) gjson.Result {
	if r := parsed.Get("result"); present(r) {
		return r
	}
	if present(parsed) {
		return parsed
	}
	if len(envelope) > 0 {
		if r := gjson.GetBytes(envelope, "response.result"); present(r) {
			return r
		}
	}
	return gjson.Parse("{}")
}

// Generation normalizes a generator payload.
func Generation(p gjson.Result) core.GeneratedContent {
	return core.GeneratedContent{
		ContentType:         text(p, "content_type"),
		Title:               text(p, "title"),
		ContentBody:         text(p, "content_body"),
		SEOKeywords:         list(p, "seo_keywords"),
		ResearchSummary:     text(p, "research_summary"),
		CompetitiveInsights: text(p, "competitive_insights"),
		AudienceInsights:    text(p, "audience_insights"),
		MetaDescription:     text(p, "meta_description"),
		KeyTakeaways:        list(p, "key_takeaways"),
		CTAText:             text(p, "cta_text"),
		WordCount:           count(p, "word_count"),
		SuggestedTitles:     list(p, "suggested_titles"),
	}
}

// Analysis normalizes an analyzer payload.
func Analysis(p gjson.Result) core.AnalysisResult {
	return core.AnalysisResult{
		CompetitorSummary:       text(p, "competitor_summary"),
		KeyArguments:            list(p, "key_arguments"),
		FactualIssues:           list(p, "factual_issues"),
		RhetoricalStrategies:    list(p, "rhetorical_strategies"),
		Weaknesses:              list(p, "weaknesses"),
		ValidPoints:             list(p, "valid_points"),
		ThreatLevel:             text(p, "threat_level"),
		RecommendedResponseType: text(p, "recommended_response_type"),
		ResponseTitle:           text(p, "response_title"),
		ResponseContent:         text(p, "response_content"),
		StrategicTalkingPoints:  list(p, "strategic_talking_points"),
		SEOKeywords:             list(p, "seo_keywords"),
		ToneGuidance:            text(p, "tone_guidance"),
	}
}

// Refinement normalizes a refiner payload.
func Refinement(p gjson.Result) core.RefinementResult {
	return core.RefinementResult{
		Title:               text(p, "title"),
		RefinedContent:      text(p, "refined_content"),
		ChangesMade:         list(p, "changes_made"),
		ToneAssessment:      text(p, "tone_assessment"),
		BrandAlignmentScore: text(p, "brand_alignment_score"),
		Suggestions:         list(p, "suggestions"),
	}
}

func present(r gjson.Result) bool {
	return r.Exists() && r.Type != gjson.Null
}

func field(p gjson.Result, key string) gjson.Result {
	if !p.IsObject() {
		return gjson.Result{}
	}
	return p.Get(key)
}

func text(p gjson.Result, key string) string {
	v := field(p, key)
	if v.Type != gjson.String {
		return ""
	}
	return v.Str
}

// list keeps only real JSON arrays, and only their string elements.
func list(p gjson.Result, key string) []string {
	out := []string{}
	v := field(p, key)
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		if item.Type == gjson.String {
			out = append(out, item.Str)
		}
	}
	return out
}

func count(p gjson.Result, key string) int {
	v := field(p, key)
	if v.Type != gjson.Number || math.IsNaN(v.Num) || v.Num <= 0 {
		return 0
	}
	if v.Num >= math.MaxInt32 {
		return math.MaxInt32
	}
	return int(v.Num)
}
