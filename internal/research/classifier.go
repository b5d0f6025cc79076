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
	// maxPostsToClassify bounds how many scraped posts are offered to the
	// completion service in one classification call.
	maxPostsToClassify = 20
	// maxClassifyBodyRunes truncates each post body in the prompt.
	maxClassifyBodyRunes = 500
	// maxCandidates is the classification candidate cap.
	maxCandidates = 3
)

// Classifier ranks scraped posts by insight value for the topic.
type Classifier struct {
	Templates Templates
	AI        ai.Completer
}

type rawCandidate struct {
	PostID         string   `json:"postId"`
	InsightSummary string   `json:"insightSummary"`
	RelevanceScore *float64 `json:"relevanceScore"`
}

// Classify returns at most maxCandidates candidates drawn from the first
// maxPostsToClassify posts. A failed call or an unparseable reply yields an
// empty list; classification failure is a valid pipeline outcome, not a fault.
func (c *Classifier) Classify(ctx context.Context, tr *Trace, posts []model.Post, prompt, company string) []model.Candidate {
	if len(posts) == 0 {
		return nil
	}
	if len(posts) > maxPostsToClassify {
		posts = posts[:maxPostsToClassify]
	}

	system := loadTemplate(ctx, c.Templates, tmplClassifySystem, defaultClassifySystem)
	tmpl := loadTemplate(ctx, c.Templates, tmplClassifyUser, defaultClassifyTemplate)
	// one pass over the template, so placeholder text inside the topic
	// prompt is never re-substituted
	user := strings.NewReplacer(
		"{prompt}", prompt,
		"{company}", company,
		"{posts}", renderPosts(posts),
	).Replace(tmpl)

	reply, _, err := c.AI.Complete(ctx, system, user)
	if err != nil {
		slog.Warn("research: classification completion failed", "err", err)
		tr.Add("classify", "completion failed: %v", err)
		return nil
	}
	var raw []rawCandidate
	if err := llmjson.Unmarshal(reply, &raw); err != nil {
		slog.Warn("research: classification reply unparseable", "err", err)
		tr.Add("classify", "reply unparseable: %v", err)
		return nil
	}
	known := make(map[string]struct{}, len(posts))
	for _, p := range posts {
		known[p.ID] = struct{}{}
	}
	out := make([]model.Candidate, 0, maxCandidates)
	for _, rc := range raw {
		if strings.TrimSpace(rc.PostID) == "" || strings.TrimSpace(rc.InsightSummary) == "" {
			continue
		}
		if _, ok := known[rc.PostID]; !ok {
			// the classifier may not invent posts it was never shown
			continue
		}
		out = append(out, model.Candidate{
			PostID:         rc.PostID,
			InsightSummary: rc.InsightSummary,
			RelevanceScore: clampScore(rc.RelevanceScore),
		})
		if len(out) >= maxCandidates {
			break
		}
	}
	tr.Add("classify", "%d candidates from %d posts", len(out), len(posts))
	return out
}

func renderPosts(posts []model.Post) string {
	b := &strings.Builder{}
	for _, p := range posts {
		body := truncateRunes(strings.TrimSpace(p.Body), maxClassifyBodyRunes)
		fmt.Fprintf(b, "- id: %s | r/%s | %d upvotes | %d comments\n  title: %s\n", p.ID, p.Community, p.Upvotes, p.CommentCount, p.Title)
		if body != "" {
			fmt.Fprintf(b, "  body: %s\n", body)
		}
	}
	return b.String()
}
