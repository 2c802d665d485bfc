package workflow

import "contentstudio/internal/core"

// State is a point-in-time copy of a Studio, safe to hand to renderers.
type State struct {
	Kind         core.ContentKind     `json:"kind"`
	KindLabel    string               `json:"kindLabel"`
	Mode         core.Mode            `json:"mode"`
	Form         core.ContentRequest  `json:"form"`
	AnalysisForm core.AnalysisRequest `json:"analysisForm"`
	Feedback     core.FeedbackInput   `json:"feedback"`

	Generated        *core.GeneratedContent `json:"generated,omitempty"`
	Analysis         *core.AnalysisResult   `json:"analysis,omitempty"`
	Refinement       *core.RefinementResult `json:"refinement,omitempty"`
	RefinementActive bool                   `json:"refinementActive"`

	DisplayTitle string `json:"displayTitle"`
	DisplayBody  string `json:"displayBody"`

	ActiveRole core.Role `json:"activeRole,omitempty"` // Most recently started call still running
	Errors     Errors    `json:"errors"`
}

// Errors holds the last user-facing failure message of each role.
type Errors struct {
	Generate string `json:"generate,omitempty"`
	Analyze  string `json:"analyze,omitempty"`
	Refine   string `json:"refine,omitempty"`
}

// HasResult reports whether there is content to display, copy or refine.
func (st State) HasResult() bool {
	return st.Generated != nil || st.Analysis != nil
}

// Snapshot returns a deep copy of the current state.
func (s *Studio) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Kind:             s.kind,
		KindLabel:        s.kind.Label(),
		Mode:             s.kind.Mode(),
		Form:             s.form,
		AnalysisForm:     s.analysisForm,
		Feedback:         s.feedback,
		RefinementActive: s.refinementActive,
		Errors: Errors{
			Generate: s.errs[core.RoleGenerator],
			Analyze:  s.errs[core.RoleAnalyzer],
			Refine:   s.errs[core.RoleRefiner],
		},
	}
	if n := len(s.active); n > 0 {
		st.ActiveRole = s.active[n-1]
	}

	switch base := s.base.(type) {
	case *core.GeneratedContent:
		g := *base
		g.SEOKeywords = cloneStrings(base.SEOKeywords)
		g.KeyTakeaways = cloneStrings(base.KeyTakeaways)
		g.SuggestedTitles = cloneStrings(base.SuggestedTitles)
		st.Generated = &g
	case *core.AnalysisResult:
		a := *base
		a.KeyArguments = cloneStrings(base.KeyArguments)
		a.FactualIssues = cloneStrings(base.FactualIssues)
		a.RhetoricalStrategies = cloneStrings(base.RhetoricalStrategies)
		a.Weaknesses = cloneStrings(base.Weaknesses)
		a.ValidPoints = cloneStrings(base.ValidPoints)
		a.StrategicTalkingPoints = cloneStrings(base.StrategicTalkingPoints)
		a.SEOKeywords = cloneStrings(base.SEOKeywords)
		st.Analysis = &a
	}
	if s.refinement != nil {
		r := *s.refinement
		r.ChangesMade = cloneStrings(s.refinement.ChangesMade)
		r.Suggestions = cloneStrings(s.refinement.Suggestions)
		st.Refinement = &r
	}

	st.DisplayTitle, st.DisplayBody = s.displayLocked()
	return st
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string{}, in...)
}

// Error returns the last failure message for role, or "".
func (s *Studio) Error(role core.Role) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errs[role]
}

// ActiveRole returns the most recently started role still running, or "".
func (s *Studio) ActiveRole() core.Role {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n := len(s.active); n > 0 {
		return s.active[n-1]
	}
	return ""
}
