package prompts

import (
	"fmt"
	"strings"

	"contentstudio/internal/core"
)

// FieldType is the JSON type an output field is expected to carry.
type FieldType string

const (
	FieldString  FieldType = "string"
	FieldList    FieldType = "array of strings"
	FieldInteger FieldType = "integer"
)

// Field describes one key of a role's JSON reply.
type Field struct {
	Name        string
	Type        FieldType
	Description string
}

var outputFields = map[core.Role][]Field{
	core.RoleGenerator: {
		{"content_type", FieldString, "Human-readable content type, e.g. Blog Post"},
		{"title", FieldString, "Headline for the piece"},
		{"content_body", FieldString, "Full draft in markdown (## headings, - bullets, **bold**)"},
		{"seo_keywords", FieldList, "5-8 SEO keywords"},
		{"research_summary", FieldString, "What the research on the topic found"},
		{"competitive_insights", FieldString, "How competitors cover the topic"},
		{"audience_insights", FieldString, "What the audience cares about"},
		{"meta_description", FieldString, "Search snippet under 160 characters"},
		{"key_takeaways", FieldList, "3-5 takeaways"},
		{"cta_text", FieldString, "Call to action"},
		{"word_count", FieldInteger, "Word count of content_body"},
		{"suggested_titles", FieldList, "Alternative headlines"},
	},
	core.RoleAnalyzer: {
		{"competitor_summary", FieldString, "Neutral summary of the competitor's piece"},
		{"key_arguments", FieldList, "Main arguments made"},
		{"factual_issues", FieldList, "Claims that are unsupported or wrong"},
		{"rhetorical_strategies", FieldList, "Persuasion techniques used"},
		{"weaknesses", FieldList, "Gaps in the argument"},
		{"valid_points", FieldList, "Points worth conceding"},
		{"threat_level", FieldString, "One of Low, Medium, High, Critical"},
		{"recommended_response_type", FieldString, "Format of the suggested response"},
		{"response_title", FieldString, "Headline of the response piece"},
		{"response_content", FieldString, "Full response in markdown"},
		{"strategic_talking_points", FieldList, "Talking points for spokespeople"},
		{"seo_keywords", FieldList, "SEO keywords for the response"},
		{"tone_guidance", FieldString, "How the response should sound"},
	},
	core.RoleRefiner: {
		{"title", FieldString, "Refined headline"},
		{"refined_content", FieldString, "Refined body in markdown"},
		{"changes_made", FieldList, "One entry per change"},
		{"tone_assessment", FieldString, "Assessment of the refined tone"},
		{"brand_alignment_score", FieldString, "Score label such as 8.5/10"},
		{"suggestions", FieldList, "Further improvements"},
	},
}

var roleBriefs = map[core.Role]string{
	core.RoleGenerator: "You are a content strategist who researches a topic and writes a complete, publication-ready draft.",
	core.RoleAnalyzer:  "You are a communications analyst who dissects competitor or critic content and drafts a strategic professional response.",
	core.RoleRefiner:   "You are an editor who revises existing content according to user feedback while keeping it on brand.",
}

// OutputFields returns the reply contract for role.
func OutputFields(role core.Role) []Field {
	return outputFields[role]
}

// SystemInstruction describes the role and the JSON object it must reply with.
func SystemInstruction(role core.Role) string {
	var b strings.Builder
	b.WriteString(roleBriefs[role])
	b.WriteString("\n\nRespond with a single JSON object and nothing else. Keys:\n")
	for _, f := range outputFields[role] {
		b.WriteString(fmt.Sprintf("- %s (%s): %s\n", f.Name, f.Type, f.Description))
	}
	return b.String()
}
