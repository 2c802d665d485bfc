// Package prompts turns form state into the text sent to each agent role.
//
// Optional fields are tested for emptiness after trimming, but the original,
// untrimmed value is what lands in the prompt.
package prompts

import (
	"fmt"
	"strings"

	"contentstudio/internal/core"
)

const (
	generationInstruction = "Please research this topic and generate a complete %s draft."
	analysisInstruction   = "Please analyze this competitor/critic content thoroughly and generate a strategic professional response."
	refinementInstruction = "Please refine this content based on the feedback above."
)

// Generation builds the generator prompt. Line order is fixed: content type,
// topic, audience, tone, key messages, platform, word count target.
func Generation(req core.ContentRequest, kind core.ContentKind) string {
	label := kind.Label()

	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Content Type: %s\nTopic: %s", label, req.Topic))
	if !blank(req.Audience) {
		prompt.WriteString(fmt.Sprintf("\nTarget Audience: %s", req.Audience))
	}
	if req.Tone != "" {
		prompt.WriteString(fmt.Sprintf("\nTone/Voice: %s", req.Tone))
	}
	if !blank(req.KeyMessages) {
		prompt.WriteString(fmt.Sprintf("\nKey Messages: %s", req.KeyMessages))
	}
	if kind == core.KindSocialMedia && req.Platform != "" {
		prompt.WriteString(fmt.Sprintf("\nPlatform: %s", req.Platform))
	}
	prompt.WriteString(fmt.Sprintf("\nWord Count Target: %d", req.WordCount))
	prompt.WriteString("\n\n")
	prompt.WriteString(fmt.Sprintf(generationInstruction, label))

	return prompt.String()
}

// Analysis builds the analyzer prompt around the quoted competitor content.
func Analysis(req core.AnalysisRequest) string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Competitor/Critic Content:\n\"\"\"\n%s\n\"\"\"", req.CompetitorContent))
	if !blank(req.CompetitorSource) {
		prompt.WriteString(fmt.Sprintf("\n\nSource: %s", req.CompetitorSource))
	}
	if !blank(req.Industry) {
		prompt.WriteString(fmt.Sprintf("\nIndustry: %s", req.Industry))
	}
	if !blank(req.YourPosition) {
		prompt.WriteString(fmt.Sprintf("\n\nOur Brand's Position: %s", req.YourPosition))
	}
	if !blank(req.ResponseGoal) {
		prompt.WriteString(fmt.Sprintf("\n\nResponse Goal: %s", req.ResponseGoal))
	}
	prompt.WriteString("\n\n")
	prompt.WriteString(analysisInstruction)

	return prompt.String()
}

// Refinement builds the refiner prompt. The caller decides which title and
// body count as current.
func Refinement(title, body string, fb core.FeedbackInput) string {
	var prompt strings.Builder
	prompt.WriteString(fmt.Sprintf("Original Content:\nTitle: %s\nContent: %s\n\nUser Feedback:", title, body))
	if fb.ToneAdjustment != "" {
		prompt.WriteString(fmt.Sprintf("\nTone Adjustment: %s", fb.ToneAdjustment))
	}
	if !blank(fb.FeedbackText) {
		prompt.WriteString(fmt.Sprintf("\nSpecific Feedback: %s", fb.FeedbackText))
	}
	if !blank(fb.BrandNotes) {
		prompt.WriteString(fmt.Sprintf("\nBrand Notes: %s", fb.BrandNotes))
	}
	prompt.WriteString("\n\n")
	prompt.WriteString(refinementInstruction)

	return prompt.String()
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}
