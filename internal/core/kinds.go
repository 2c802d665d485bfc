package core

// ContentKind identifies what the studio is producing.
type ContentKind string

const (
	KindBlogPost           ContentKind = "blog_post"
	KindSocialMedia        ContentKind = "social_media"
	KindEmailCampaign      ContentKind = "email_campaign"
	KindAdCopy             ContentKind = "ad_copy"
	KindVideoScript        ContentKind = "video_script"
	KindCaseStudy          ContentKind = "case_study"
	KindCompetitorAnalysis ContentKind = "competitor_analysis"
)

// ContentKinds lists the kinds in menu order.
var ContentKinds = []ContentKind{
	KindBlogPost,
	KindSocialMedia,
	KindEmailCampaign,
	KindAdCopy,
	KindVideoScript,
	KindCaseStudy,
	KindCompetitorAnalysis,
}

var kindLabels = map[ContentKind]string{
	KindBlogPost:           "Blog Post",
	KindSocialMedia:        "Social Media",
	KindEmailCampaign:      "Email Campaign",
	KindAdCopy:             "Ad Copy",
	KindVideoScript:        "Video Script",
	KindCaseStudy:          "Case Study",
	KindCompetitorAnalysis: "Critic Response",
}

// Label returns the display label, or the raw id for unknown kinds.
func (k ContentKind) Label() string {
	if label, ok := kindLabels[k]; ok {
		return label
	}
	return string(k)
}

// Known reports whether k is one of ContentKinds.
func (k ContentKind) Known() bool {
	_, ok := kindLabels[k]
	return ok
}

// Mode returns the workflow mode the kind selects.
func (k ContentKind) Mode() Mode {
	if k == KindCompetitorAnalysis {
		return ModeCompetitorAnalysis
	}
	return ModeStandard
}

// Mode is the workflow variant: standard content generation or competitor analysis.
type Mode string

const (
	ModeStandard           Mode = "standard"
	ModeCompetitorAnalysis Mode = "competitor-analysis"
)

// Role is an opaque routing token for one of the three agents.
type Role string

const (
	RoleGenerator Role = "generator"
	RoleAnalyzer  Role = "analyzer"
	RoleRefiner   Role = "refiner"
)

// Roles lists every agent role.
var Roles = []Role{RoleGenerator, RoleAnalyzer, RoleRefiner}

// Form option sets.
var (
	Tones     = []string{"Professional", "Casual", "Persuasive", "Educational", "Witty"}
	Platforms = []string{"Twitter/X", "LinkedIn", "Instagram", "Facebook"}

	ResponseGoals = []string{
		"Counter Narrative",
		"Thought Leadership Response",
		"Factual Rebuttal",
		"Strategic Positioning",
		"No Direct Response (Analysis Only)",
	}

	ToneAdjustments = []string{
		"More Formal",
		"More Casual",
		"Shorter",
		"Longer",
		"More Persuasive",
		"More Data-Driven",
	}
)

// IsToneAdjustment reports whether label is one of ToneAdjustments.
func IsToneAdjustment(label string) bool {
	return contains(ToneAdjustments, label)
}
