package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"forge-research/internal/model"
	"forge-research/internal/research"
)

type fakeRunner struct {
	result model.PipelineResult
	calls  int
}

func (f *fakeRunner) Run(_ context.Context, _ research.Request) (model.PipelineResult, *research.Trace) {
	f.calls++
	return f.result, research.NewTrace()
}

func doResearch(t *testing.T, s *Server, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/research", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	return rec
}

func TestResearchMissingFieldsIs400(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, true)

	for _, body := range []string{
		`{}`,
		`{"prompt":"","companyDescription":"x"}`,
		`{"prompt":"x","companyDescription":"   "}`,
		`{"prompt":42,"companyDescription":"x"}`,
	} {
		rec := doResearch(t, s, body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s: status = %d, want 400", body, rec.Code)
		}
	}
	if runner.calls != 0 {
		t.Errorf("invalid input must not start the pipeline, got %d runs", runner.calls)
	}
}

func TestResearchUnconfiguredIs500(t *testing.T) {
	runner := &fakeRunner{}
	s := New(runner, false)
	rec := doResearch(t, s, `{"prompt":"a","companyDescription":"b","enableResearch":true}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if runner.calls != 0 {
		t.Errorf("missing configuration must not start the pipeline")
	}
}

func TestResearchSuccess(t *testing.T) {
	runner := &fakeRunner{result: model.PipelineResult{
		Success:               true,
		EnrichedPrompt:        "enriched",
		SourceURL:             "https://www.reddit.com/r/trailrunning/comments/p2",
		SourceTitle:           "500km review",
		ProcessingTimeSeconds: 1.5,
	}}
	s := New(runner, true)
	rec := doResearch(t, s, `{"prompt":"best trail running shoes","companyDescription":"outdoor gear retailer","enableResearch":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		model.PipelineResult
		Trace *research.Trace `json:"trace"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !resp.Success || resp.EnrichedPrompt != "enriched" {
		t.Errorf("unexpected response: %+v", resp.PipelineResult)
	}
	if resp.Trace == nil || resp.Trace.RunID == "" {
		t.Errorf("expected the trace alongside the result")
	}
}

func TestResearchNegativeOutcomeIs200(t *testing.T) {
	runner := &fakeRunner{result: model.PipelineResult{FallbackReason: "no high-quality insight found in the candidate threads"}}
	s := New(runner, true)
	rec := doResearch(t, s, `{"prompt":"a","companyDescription":"b","enableResearch":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("negative outcomes are 200, got %d", rec.Code)
	}
}

func TestResearchHardErrorIs500(t *testing.T) {
	runner := &fakeRunner{result: model.PipelineResult{Error: "discovery failed: network down"}}
	s := New(runner, true)
	rec := doResearch(t, s, `{"prompt":"a","companyDescription":"b","enableResearch":true}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("hard errors are 500, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	s := New(&fakeRunner{}, true)
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	s.echo.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
