package agent

import (
	"context"
	"embed"
	"encoding/json"
	"fmt"

	"contentstudio/internal/core"
)

//go:embed samples/*.json
var samples embed.FS

var sampleFiles = map[core.Role]string{
	core.RoleGenerator: "samples/generation.json",
	core.RoleAnalyzer:  "samples/analysis.json",
	core.RoleRefiner:   "samples/refinement.json",
}

// Sample replays canned replies for demos and offline runs. The prompt is
// ignored.
type Sample struct{}

// NewSample creates the offline back end.
func NewSample() *Sample {
	return &Sample{}
}

// Call implements Caller.
func (Sample) Call(ctx context.Context, _ string, role core.Role) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	name, ok := sampleFiles[role]
	if !ok {
		return Failed(fmt.Sprintf("no sample reply for role %q", role)), nil
	}
	data, err := samples.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("failed to read sample reply: %w", err)
	}
	return &Result{Success: true, Response: string(data)}, nil
}

// SampleContentRequest returns the generation form that goes with the canned
// generation reply.
func SampleContentRequest() core.ContentRequest {
	req := core.NewContentRequest()
	mustSample("samples/content_request.json", &req)
	return req
}

// SampleAnalysisRequest returns the analysis form that goes with the canned
// analysis reply.
func SampleAnalysisRequest() core.AnalysisRequest {
	var req core.AnalysisRequest
	mustSample("samples/analysis_request.json", &req)
	return req
}

func mustSample(name string, v any) {
	data, err := samples.ReadFile(name)
	if err != nil {
		panic(fmt.Sprintf("embedded sample %s missing: %v", name, err))
	}
	if err := json.Unmarshal(data, v); err != nil {
		panic(fmt.Sprintf("embedded sample %s invalid: %v", name, err))
	}
}
