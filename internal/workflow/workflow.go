// Package workflow runs the studio's three-stage pipeline: generate (or
// analyze competitor content), then optionally refine with feedback. A Studio
// owns the forms, the current result, the refinement overlay and the per-role
// error messages, and is safe for concurrent use.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/semaphore"

	"contentstudio/internal/agent"
	"contentstudio/internal/core"
	"contentstudio/internal/export"
	"contentstudio/internal/logger"
	"contentstudio/internal/normalize"
	"contentstudio/internal/prompts"
)

// Sentinel errors returned by Studio operations.
var (
	ErrTopicRequired    = errors.New("topic is required")
	ErrContentRequired  = errors.New("competitor content is required")
	ErrFeedbackRequired = errors.New("at least one feedback field is required")
	ErrNoResult         = errors.New("no content to work on")
	ErrWrongMode        = errors.New("operation not available for the selected content type")
	ErrBusy             = errors.New("a request for this agent is already running")
	ErrUnknownTone      = errors.New("unknown tone adjustment")
	// ErrAgentFailed wraps every failed agent call; the user-facing message is
	// also stored on the Studio for the role.
	ErrAgentFailed = errors.New("agent call failed")
	// ErrSuperseded reports a reply that arrived after the content it belonged
	// to was replaced; the reply is dropped.
	ErrSuperseded = errors.New("result superseded by a newer request")
)

// User-facing failure messages.
const (
	MsgGenerateFailed = "Content generation failed. Please try again."
	MsgAnalyzeFailed  = "Analysis failed. Please try again."
	MsgRefineFailed   = "Refinement failed. Please try again."
	MsgUnexpected     = "An unexpected error occurred. Please try again."
)

// Fallback labels used when a reply leaves a field empty.
const (
	UntitledTitle           = "Untitled"
	CompetitorAnalysisLabel = "Competitor Analysis"
)

// Clipboard receives copied text.
type Clipboard interface {
	WriteText(text string) error
}

// Exporter writes a document and returns where it went.
type Exporter interface {
	Export(doc export.Document, format export.Format) (string, error)
}

// HistoryAppender records completed generations and analyses.
type HistoryAppender interface {
	Append(ctx context.Context, entry core.HistoryEntry) error
}

// EntryFactory builds a history entry; history.NewEntry satisfies it.
type EntryFactory func(now time.Time, kind core.ContentKind, topic, title, body string, keywords []string, form core.ContentRequest) core.HistoryEntry

// Option configures a Studio.
type Option func(*Studio)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Studio) { s.now = now }
}

// WithEntryFactory replaces the default history entry builder.
func WithEntryFactory(f EntryFactory) Option {
	return func(s *Studio) { s.newEntry = f }
}

// Studio is the workflow state machine.
type Studio struct {
	caller   agent.Caller
	history  HistoryAppender
	now      func() time.Time
	newEntry EntryFactory
	sems     map[core.Role]*semaphore.Weighted

	mu               sync.Mutex
	kind             core.ContentKind
	form             core.ContentRequest
	analysisForm     core.AnalysisRequest
	feedback         core.FeedbackInput
	base             core.BaseResult
	refinement       *core.RefinementResult
	refinementActive bool
	active           []core.Role
	errs             map[core.Role]string
	generation       uint64 // bumped whenever the base result is invalidated
}

// New creates a Studio on the blog post kind with an empty form. A nil history
// disables recording.
func New(caller agent.Caller, history HistoryAppender, opts ...Option) *Studio {
	s := &Studio{
		caller:   caller,
		history:  history,
		now:      time.Now,
		newEntry: defaultEntry,
		sems:     make(map[core.Role]*semaphore.Weighted, len(core.Roles)),
		kind:     core.KindBlogPost,
		form:     core.NewContentRequest(),
		errs:     make(map[core.Role]string, len(core.Roles)),
	}
	for _, r := range core.Roles {
		s.sems[r] = semaphore.NewWeighted(1)
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func defaultEntry(now time.Time, kind core.ContentKind, topic, title, body string, keywords []string, form core.ContentRequest) core.HistoryEntry {
	return core.HistoryEntry{
		ID:          fmt.Sprintf("%d", now.UnixNano()),
		ContentType: kind,
		Topic:       topic,
		GeneratedAt: now.Format(time.DateTime),
		Title:       title,
		ContentBody: body,
		SEOKeywords: append([]string{}, keywords...),
		FormData:    form,
	}
}

// resetLocked drops the base result and the refinement overlay.
func (s *Studio) resetLocked() {
	s.base = nil
	s.refinement = nil
	s.refinementActive = false
	s.generation++
}

// SelectKind switches the content kind. Results are cleared; forms are kept.
func (s *Studio) SelectKind(kind core.ContentKind) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.kind = kind
	s.resetLocked()
}

// Kind returns the selected content kind.
func (s *Studio) Kind() core.ContentKind {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.kind
}

// SetForm replaces the generation form.
func (s *Studio) SetForm(form core.ContentRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = form
}

// SetAnalysisForm replaces the analysis form.
func (s *Studio) SetAnalysisForm(form core.AnalysisRequest) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.analysisForm = form
}

// SetFeedback replaces the feedback form.
func (s *Studio) SetFeedback(fb core.FeedbackInput) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback = fb
}

// ToggleTone selects a tone adjustment, or clears it when already selected.
func (s *Studio) ToggleTone(label string) error {
	if !core.IsToneAdjustment(label) {
		return fmt.Errorf("%w: %q", ErrUnknownTone, label)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.feedback.ToggleTone(label)
	return nil
}

// LoadEntry restores a history entry's form and kind. The results are cleared
// and no agent is called.
func (s *Studio) LoadEntry(entry core.HistoryEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.form = entry.FormData
	s.kind = entry.ContentType
	s.resetLocked()
}

// begin reserves the role and marks it active. The returned func releases both.
func (s *Studio) begin(role core.Role) (func(), error) {
	sem := s.sems[role]
	if !sem.TryAcquire(1) {
		return nil, ErrBusy
	}
	return func() {
		s.mu.Lock()
		for i, r := range s.active {
			if r == role {
				s.active = append(s.active[:i], s.active[i+1:]...)
				break
			}
		}
		s.mu.Unlock()
		sem.Release(1)
	}, nil
}

func (s *Studio) canGenerateLocked() error {
	if s.kind.Mode() != core.ModeStandard {
		return ErrWrongMode
	}
	if !s.form.Ready() {
		return ErrTopicRequired
	}
	return nil
}

func (s *Studio) canAnalyzeLocked() error {
	if s.kind.Mode() != core.ModeCompetitorAnalysis {
		return ErrWrongMode
	}
	if !s.analysisForm.Ready() {
		return ErrContentRequired
	}
	return nil
}

// Generate runs the generator on the generation form.
func (s *Studio) Generate(ctx context.Context) error {
	s.mu.Lock()
	err := s.canGenerateLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	done, err := s.begin(core.RoleGenerator)
	if err != nil {
		return err
	}
	defer done()

	s.mu.Lock()
	if err := s.canGenerateLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.resetLocked()
	s.errs[core.RoleGenerator] = ""
	s.active = append(s.active, core.RoleGenerator)
	gen := s.generation
	kind := s.kind
	form := s.form
	s.mu.Unlock()

	res, msg, err := s.invoke(ctx, prompts.Generation(form, kind), core.RoleGenerator, MsgGenerateFailed)
	if err != nil {
		s.setError(core.RoleGenerator, msg)
		return err
	}

	content := normalize.Generation(payload(res))
	if content.ContentType == "" {
		content.ContentType = kind.Label()
	}

	title := content.Title
	if title == "" {
		title = UntitledTitle
	}
	entry := s.newEntry(s.now(), kind, form.Topic, title, content.ContentBody, content.SEOKeywords, form)

	stale := !s.setBase(gen, &content)
	s.record(ctx, entry)
	if stale {
		logger.Debug("Dropping superseded generation", "kind", string(kind))
		return ErrSuperseded
	}
	return nil
}

// Analyze runs the analyzer on the analysis form.
func (s *Studio) Analyze(ctx context.Context) error {
	s.mu.Lock()
	err := s.canAnalyzeLocked()
	s.mu.Unlock()
	if err != nil {
		return err
	}

	done, err := s.begin(core.RoleAnalyzer)
	if err != nil {
		return err
	}
	defer done()

	s.mu.Lock()
	if err := s.canAnalyzeLocked(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.resetLocked()
	s.errs[core.RoleAnalyzer] = ""
	s.active = append(s.active, core.RoleAnalyzer)
	gen := s.generation
	form := s.analysisForm
	s.mu.Unlock()

	res, msg, err := s.invoke(ctx, prompts.Analysis(form), core.RoleAnalyzer, MsgAnalyzeFailed)
	if err != nil {
		s.setError(core.RoleAnalyzer, msg)
		return err
	}

	result := normalize.Analysis(payload(res))

	topic := form.CompetitorSource
	if strings.TrimSpace(topic) == "" {
		topic = CompetitorAnalysisLabel
	}
	title := result.ResponseTitle
	if title == "" {
		title = CompetitorAnalysisLabel
	}
	snapshot := core.ContentRequest{Topic: form.CompetitorSource, WordCount: 0}
	entry := s.newEntry(s.now(), core.KindCompetitorAnalysis, topic, title, result.ResponseContent, result.SEOKeywords, snapshot)

	stale := !s.setBase(gen, &result)
	s.record(ctx, entry)
	if stale {
		logger.Debug("Dropping superseded analysis")
		return ErrSuperseded
	}
	return nil
}

// Refine sends the displayed content and the feedback to the refiner. It never
// records history.
func (s *Studio) Refine(ctx context.Context) error {
	s.mu.Lock()
	if s.base == nil || !baseMatchesMode(s.base, s.kind.Mode()) {
		s.mu.Unlock()
		return ErrNoResult
	}
	if !s.feedback.HasFeedback() {
		s.mu.Unlock()
		return ErrFeedbackRequired
	}
	s.mu.Unlock()

	done, err := s.begin(core.RoleRefiner)
	if err != nil {
		return err
	}
	defer done()

	s.mu.Lock()
	if s.base == nil {
		s.mu.Unlock()
		return ErrNoResult
	}
	s.errs[core.RoleRefiner] = ""
	s.active = append(s.active, core.RoleRefiner)
	gen := s.generation
	title, body := s.displayLocked()
	fb := s.feedback
	s.mu.Unlock()

	res, msg, err := s.invoke(ctx, prompts.Refinement(title, body, fb), core.RoleRefiner, MsgRefineFailed)
	if err != nil {
		s.mu.Lock()
		if gen == s.generation {
			s.errs[core.RoleRefiner] = msg
		}
		s.mu.Unlock()
		return err
	}

	refined := normalize.Refinement(payload(res))

	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		logger.Debug("Dropping superseded refinement")
		return ErrSuperseded
	}
	s.refinement = &refined
	s.refinementActive = true
	return nil
}

// invoke calls the agent for role and classifies the outcome. On failure msg
// is the text for the role's error slot.
func (s *Studio) invoke(ctx context.Context, prompt string, role core.Role, fallback string) (*agent.Result, string, error) {
	res, err := s.caller.Call(ctx, prompt, role)
	if err != nil {
		return nil, MsgUnexpected, fmt.Errorf("%w: %w", ErrAgentFailed, err)
	}
	if res == nil {
		return nil, MsgUnexpected, fmt.Errorf("%w: no result", ErrAgentFailed)
	}
	if !res.Success {
		msg := strings.TrimSpace(res.Error)
		if msg == "" {
			msg = fallback
		}
		return nil, msg, fmt.Errorf("%w: %s", ErrAgentFailed, msg)
	}
	return res, "", nil
}

func payload(res *agent.Result) gjson.Result {
	return normalize.Payload(normalize.ExtractJSON(res.Response), res.Envelope)
}

func (s *Studio) setError(role core.Role, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs[role] = msg
}

// setBase installs a new base result unless the request was superseded.
func (s *Studio) setBase(gen uint64, base core.BaseResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.generation {
		return false
	}
	s.base = base
	return true
}

// record appends to history. Persist failures are logged by the history store
// and do not fail the operation.
func (s *Studio) record(ctx context.Context, entry core.HistoryEntry) {
	if s.history == nil {
		return
	}
	if err := s.history.Append(ctx, entry); err != nil {
		logger.Warn("History entry kept in memory only", "id", entry.ID, "error", err.Error())
	}
}

func baseMatchesMode(base core.BaseResult, mode core.Mode) bool {
	switch base.Kind() {
	case core.ResultGeneration:
		return mode == core.ModeStandard
	case core.ResultAnalysis:
		return mode == core.ModeCompetitorAnalysis
	default:
		return false
	}
}

// Display returns the title and body shown to the user. A refinement field
// wins only while the refinement is active and the field is non-empty.
func (s *Studio) Display() (title, body string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayLocked()
}

func (s *Studio) displayLocked() (string, string) {
	if s.base == nil {
		return "", ""
	}
	title, body := s.base.BaseTitle(), s.base.BaseBody()
	if s.refinementActive && s.refinement != nil {
		if s.refinement.Title != "" {
			title = s.refinement.Title
		}
		if s.refinement.RefinedContent != "" {
			body = s.refinement.RefinedContent
		}
	}
	return title, body
}

// Copy puts the displayed title and body on the clipboard. It reports whether
// anything was copied.
func (s *Studio) Copy(cb Clipboard) bool {
	s.mu.Lock()
	if s.base == nil {
		s.mu.Unlock()
		return false
	}
	title, body := s.displayLocked()
	s.mu.Unlock()

	if err := cb.WriteText(title + "\n\n" + body); err != nil {
		logger.Warn("Copy to clipboard failed", "error", err.Error())
		return false
	}
	return true
}

// CopyTalkingPoints copies the analysis talking points as a numbered list. It
// reports false when there is no analysis or it has no talking points.
func (s *Studio) CopyTalkingPoints(cb Clipboard) bool {
	s.mu.Lock()
	an, ok := s.base.(*core.AnalysisResult)
	if !ok || an == nil || len(an.StrategicTalkingPoints) == 0 {
		s.mu.Unlock()
		return false
	}
	text := export.NumberedList(an.StrategicTalkingPoints)
	s.mu.Unlock()

	if err := cb.WriteText(text); err != nil {
		logger.Warn("Copy to clipboard failed", "error", err.Error())
		return false
	}
	return true
}

// Document returns the displayed content as an export document.
func (s *Studio) Document() (export.Document, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.base == nil {
		return export.Document{}, ErrNoResult
	}
	title, body := s.displayLocked()
	doc := export.Document{
		Title:       title,
		Body:        body,
		ContentType: s.kind.Label(),
		Keywords:    append([]string{}, s.base.Keywords()...),
		ExportedAt:  s.now(),
	}
	if g, ok := s.base.(*core.GeneratedContent); ok {
		doc.ContentType = g.ContentType
		doc.MetaDescription = g.MetaDescription
	}
	return doc, nil
}

// Export writes the displayed content through exp and returns the location.
func (s *Studio) Export(exp Exporter, format export.Format) (string, error) {
	doc, err := s.Document()
	if err != nil {
		return "", err
	}
	return exp.Export(doc, format)
}
