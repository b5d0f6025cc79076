package research

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"forge-research/internal/model"
)

// Fallback reasons returned with well-formed negative results.
const (
	reasonDisabled     = "research disabled for this request"
	reasonNoCommunity  = "no relevant communities found for the topic"
	reasonNoPosts      = "no posts could be scraped from the discovered communities"
	reasonNoCandidates = "no insight-bearing posts identified among the scraped posts"
	reasonNoInsight    = "no high-quality insight found in the candidate threads"
)

// Request is the pipeline input.
type Request struct {
	Prompt         string `json:"prompt"`
	Company        string `json:"companyDescription"`
	EnableResearch bool   `json:"enableResearch"`
}

// Pipeline sequences discovery, scraping, classification and enrichment, and
// converts every outcome into a PipelineResult. Run never returns an error;
// hard faults are carried in the result.
type Pipeline struct {
	Discovery  *Discovery
	Classifier *Classifier
	Enricher   *Enricher
	// NewSession opens a fresh platform view with a per-run call budget.
	NewSession func() Platform
	// PostsPerCommunity is the per-community hot-listing limit.
	PostsPerCommunity int
	// Disabled is the service-level kill switch; it overrides the request
	// flag.
	Disabled bool
	// Deadline bounds a whole run; zero means no pipeline-imposed deadline.
	Deadline time.Duration
}

// Run executes the pipeline for a request. The returned trace records every
// stage transition for the run.
func (p *Pipeline) Run(ctx context.Context, req Request) (model.PipelineResult, *Trace) {
	start := time.Now()
	tr := NewTrace()
	finish := func(r model.PipelineResult) (model.PipelineResult, *Trace) {
		r.ProcessingTimeSeconds = time.Since(start).Seconds()
		return r, tr
	}

	prompt := strings.TrimSpace(req.Prompt)
	company := strings.TrimSpace(req.Company)
	if prompt == "" || company == "" {
		tr.Add("start", "rejected: missing prompt or company")
		return finish(model.PipelineResult{Error: "prompt and company description are required"})
	}
	if p.Disabled || !req.EnableResearch {
		tr.Add("start", "research disabled, skipping")
		return finish(model.PipelineResult{FallbackReason: reasonDisabled})
	}

	if p.Deadline > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Deadline)
		defer cancel()
	}

	// Discovering
	communities := p.Discovery.Discover(ctx, tr, prompt, company)
	if err := ctx.Err(); err != nil {
		return finish(hardError("discovery", err))
	}
	if len(communities) == 0 {
		return finish(model.PipelineResult{FallbackReason: reasonNoCommunity})
	}
	tr.Add("pipeline", "discovered %d communities", len(communities))

	// Scraping: per-community failures are recorded and skipped, never fatal.
	session := p.NewSession()
	limit := p.PostsPerCommunity
	if limit <= 0 {
		limit = 10
	}
	var posts []model.Post
	failed := 0
	for _, community := range communities {
		if err := ctx.Err(); err != nil {
			return finish(hardError("scraping", err))
		}
		batch, err := session.HotPosts(ctx, community.Name, limit)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return finish(hardError("scraping", ctxErr))
			}
			slog.Warn("research: community scrape failed", "community", community.Name, "err", err)
			tr.Add("scrape", "r/%s failed: %v", community.Name, err)
			failed++
			continue
		}
		tr.Add("scrape", "r/%s: %d posts", community.Name, len(batch))
		posts = append(posts, batch...)
	}
	if len(posts) == 0 {
		tr.Add("pipeline", "no posts scraped (%d communities failed)", failed)
		return finish(model.PipelineResult{FallbackReason: reasonNoPosts})
	}
	tr.Add("pipeline", "scraped %d posts, %d communities failed", len(posts), failed)

	// Classifying
	candidates := p.Classifier.Classify(ctx, tr, posts, prompt, company)
	if err := ctx.Err(); err != nil {
		return finish(hardError("classification", err))
	}
	if len(candidates) == 0 {
		return finish(model.PipelineResult{FallbackReason: reasonNoCandidates})
	}

	// Enriching
	enrichment, thread := p.Enricher.Enrich(ctx, tr, session, candidates, prompt, company)
	if err := ctx.Err(); err != nil {
		return finish(hardError("enrichment", err))
	}
	if enrichment == nil {
		return finish(model.PipelineResult{FallbackReason: reasonNoInsight})
	}

	insight := ""
	for _, c := range candidates {
		if c.PostID == thread.Post.ID {
			insight = c.InsightSummary
			break
		}
	}
	return finish(model.PipelineResult{
		Success:        true,
		EnrichedPrompt: enrichment.EnrichedPrompt,
		InsightSummary: insight,
		SourceURL:      thread.Post.URL,
		SourceTitle:    thread.Post.Title,
	})
}

func hardError(stage string, err error) model.PipelineResult {
	if errors.Is(err, context.DeadlineExceeded) {
		return model.PipelineResult{Error: fmt.Sprintf("research timed out during %s", stage)}
	}
	return model.PipelineResult{Error: fmt.Sprintf("%s failed: %v", stage, err)}
}
