package research

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"forge-research/internal/ai"
	"forge-research/internal/llmjson"
	"forge-research/internal/model"
)

const (
	// maxCandidatesToEnrich bounds the deep-analysis pass.
	maxCandidatesToEnrich = 2
	// acceptConfidence is the minimum self-reported confidence for an
	// enrichment to be accepted.
	acceptConfidence = 7
	// maxEnrichBodyRunes truncates the post body in the enrichment prompt.
	maxEnrichBodyRunes = 1000
	// maxEnrichComments bounds how many top-level comments are quoted.
	maxEnrichComments = 10
	// maxEnrichCommentRunes truncates each quoted comment.
	maxEnrichCommentRunes = 300
)

// Platform lists hot posts and fetches full threads. Thread reports
// (nil, nil) for a post with no usable data.
type Platform interface {
	HotPosts(ctx context.Context, community string, limit int) ([]model.Post, error)
	Thread(ctx context.Context, postID string) (*model.Thread, error)
}

// Enricher deep-analyzes candidate threads and produces an enriched prompt.
type Enricher struct {
	Templates Templates
	AI        ai.Completer
}

type rawEnrichment struct {
	EnrichedPrompt  string   `json:"enrichedPrompt"`
	ConfidenceScore *float64 `json:"confidenceScore"`
}

// Enrich tries at most maxCandidatesToEnrich candidates in ranked order and
// returns the first acceptable enrichment together with the thread that
// backed it, or (nil, nil) if no candidate yields one.
func (e *Enricher) Enrich(ctx context.Context, tr *Trace, platform Platform, candidates []model.Candidate, prompt, company string) (*model.EnrichmentResult, *model.Thread) {
	if len(candidates) > maxCandidatesToEnrich {
		candidates = candidates[:maxCandidatesToEnrich]
	}
	system := loadTemplate(ctx, e.Templates, tmplEnrichSystem, defaultEnrichSystem)
	tmpl := loadTemplate(ctx, e.Templates, tmplEnrichUser, defaultEnrichTemplate)

	for _, cand := range candidates {
		thread, err := platform.Thread(ctx, cand.PostID)
		if err != nil {
			slog.Warn("research: thread fetch failed", "post", cand.PostID, "err", err)
			tr.Add("enrich", "thread %s fetch failed: %v", cand.PostID, err)
			continue
		}
		if thread == nil || len(thread.Comments) == 0 {
			tr.Add("enrich", "thread %s empty, skipping", cand.PostID)
			continue
		}
		result := e.analyzeThread(ctx, tr, system, tmpl, thread, prompt, company)
		if result == nil {
			continue
		}
		if result.ConfidenceScore >= acceptConfidence {
			tr.Add("enrich", "accepted thread %s with confidence %d", cand.PostID, result.ConfidenceScore)
			return result, thread
		}
		tr.Add("enrich", "thread %s below confidence threshold: %d", cand.PostID, result.ConfidenceScore)
	}
	return nil, nil
}

func (e *Enricher) analyzeThread(ctx context.Context, tr *Trace, system, tmpl string, thread *model.Thread, prompt, company string) *model.EnrichmentResult {
	user := strings.NewReplacer(
		"{prompt}", prompt,
		"{company}", company,
		"{title}", thread.Post.Title,
		"{body}", truncateRunes(strings.TrimSpace(thread.Post.Body), maxEnrichBodyRunes),
		"{comments}", renderComments(thread.Comments),
	).Replace(tmpl)

	reply, _, err := e.AI.Complete(ctx, system, user)
	if err != nil {
		slog.Warn("research: enrichment completion failed", "post", thread.Post.ID, "err", err)
		tr.Add("enrich", "completion failed for %s: %v", thread.Post.ID, err)
		return nil
	}
	var raw rawEnrichment
	if err := llmjson.Unmarshal(reply, &raw); err != nil {
		slog.Warn("research: enrichment reply unparseable", "post", thread.Post.ID, "err", err)
		tr.Add("enrich", "reply unparseable for %s: %v", thread.Post.ID, err)
		return nil
	}
	if strings.TrimSpace(raw.EnrichedPrompt) == "" {
		return nil
	}
	return &model.EnrichmentResult{
		EnrichedPrompt:  raw.EnrichedPrompt,
		ConfidenceScore: clampScore(raw.ConfidenceScore),
	}
}

func renderComments(comments []model.Comment) string {
	b := &strings.Builder{}
	for i, c := range comments {
		if i >= maxEnrichComments {
			break
		}
		fmt.Fprintf(b, "- (%d upvotes) %s\n", c.Upvotes, truncateRunes(c.Body, maxEnrichCommentRunes))
	}
	return b.String()
}
