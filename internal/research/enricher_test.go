package research

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"forge-research/internal/model"
)

func TestEnrichAcceptsHighConfidence(t *testing.T) {
	post := testPost("p2", "trailrunning", "300 miles in, here's what broke")
	platform := &fakePlatform{
		threads: map[string]*model.Thread{
			"p2": testThread(post, "The toe box wore through first for me", "Drainage matters more than waterproofing"),
		},
	}
	comp := &fakeCompleter{replies: []string{`{"enrichedPrompt":"write about real-world durability...","confidenceScore":8}`}}
	e := &Enricher{AI: comp}

	candidates := []model.Candidate{{PostID: "p2", InsightSummary: "durability insight"}}
	result, thread := e.Enrich(context.Background(), NewTrace(), platform, candidates, "trail shoes", "retailer")
	if result == nil {
		t.Fatalf("expected an accepted enrichment")
	}
	if result.ConfidenceScore != 8 {
		t.Errorf("confidence = %d", result.ConfidenceScore)
	}
	if thread == nil || thread.Post.ID != "p2" {
		t.Errorf("expected backing thread for p2, got %+v", thread)
	}
}

func TestEnrichRejectsLowConfidence(t *testing.T) {
	post := testPost("p2", "trailrunning", "Mild opinions inside")
	platform := &fakePlatform{
		threads: map[string]*model.Thread{"p2": testThread(post, "It was fine I guess, nothing special")},
	}
	comp := &fakeCompleter{replies: []string{`{"enrichedPrompt":"slightly better prompt","confidenceScore":5}`}}
	e := &Enricher{AI: comp}

	result, thread := e.Enrich(context.Background(), NewTrace(), platform, []model.Candidate{{PostID: "p2", InsightSummary: "meh"}}, "x", "y")
	if result != nil || thread != nil {
		t.Fatalf("confidence below %d must be rejected, got %+v", acceptConfidence, result)
	}
}

func TestEnrichSkipsEmptyThreadsAndTriesNext(t *testing.T) {
	post := testPost("p2", "trailrunning", "The good one")
	platform := &fakePlatform{
		threads: map[string]*model.Thread{
			// p1 resolves to no thread, p2 succeeds
			"p2": testThread(post, "Concrete experience with sizing up half a size"),
		},
	}
	comp := &fakeCompleter{replies: []string{`{"enrichedPrompt":"enriched","confidenceScore":9}`}}
	e := &Enricher{AI: comp}

	candidates := []model.Candidate{
		{PostID: "p1", InsightSummary: "first"},
		{PostID: "p2", InsightSummary: "second"},
	}
	result, thread := e.Enrich(context.Background(), NewTrace(), platform, candidates, "x", "y")
	if result == nil || thread.Post.ID != "p2" {
		t.Fatalf("expected second candidate to be used, got %+v", thread)
	}
	if len(platform.threadReqs) != 2 {
		t.Errorf("expected both candidates tried, got %v", platform.threadReqs)
	}
}

func TestEnrichBoundsCandidates(t *testing.T) {
	platform := &fakePlatform{}
	comp := &fakeCompleter{}
	e := &Enricher{AI: comp}
	var candidates []model.Candidate
	for i := 0; i < 5; i++ {
		candidates = append(candidates, model.Candidate{PostID: fmt.Sprintf("p%d", i), InsightSummary: "s"})
	}
	result, _ := e.Enrich(context.Background(), NewTrace(), platform, candidates, "x", "y")
	if result != nil {
		t.Fatalf("no threads available, expected none")
	}
	if len(platform.threadReqs) != maxCandidatesToEnrich {
		t.Errorf("expected at most %d thread fetches, got %d", maxCandidatesToEnrich, len(platform.threadReqs))
	}
}

func TestEnrichPromptTruncation(t *testing.T) {
	post := testPost("p1", "running", "Huge post")
	post.Body = strings.Repeat("b", 1500)
	var comments []string
	for i := 0; i < 12; i++ {
		comments = append(comments, fmt.Sprintf("comment %02d %s", i, strings.Repeat("c", 400)))
	}
	platform := &fakePlatform{threads: map[string]*model.Thread{"p1": testThread(post, comments...)}}
	comp := &fakeCompleter{replies: []string{`{"enrichedPrompt":"ok","confidenceScore":7}`}}
	e := &Enricher{AI: comp}

	result, _ := e.Enrich(context.Background(), NewTrace(), platform, []model.Candidate{{PostID: "p1", InsightSummary: "s"}}, "x", "y")
	if result == nil {
		t.Fatalf("expected acceptance at exactly the threshold")
	}
	user := comp.calls[0]
	if strings.Contains(user, strings.Repeat("b", maxEnrichBodyRunes+1)) {
		t.Errorf("post body not truncated to %d runes", maxEnrichBodyRunes)
	}
	if strings.Contains(user, "comment 10") {
		t.Errorf("more than %d comments quoted", maxEnrichComments)
	}
	if strings.Contains(user, strings.Repeat("c", maxEnrichCommentRunes)) {
		t.Errorf("comment bodies not truncated to %d runes", maxEnrichCommentRunes)
	}
}
