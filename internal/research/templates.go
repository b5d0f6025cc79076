package research

import (
	"context"
	"log/slog"
	"strings"
)

// Template names looked up in the template store. Absence of any of them is
// non-fatal; the built-in text below is substituted.
const (
	tmplDiscovery      = "research_subreddit_discovery"
	tmplClassifySystem = "research_classification_system"
	tmplClassifyUser   = "research_insight_classification"
	tmplEnrichSystem   = "research_enrichment_system"
	tmplEnrichUser     = "research_prompt_enrichment"
)

// Templates serves named prompt templates; implementations may be backed by
// any store.
type Templates interface {
	Get(ctx context.Context, name string) (string, error)
}

const discoverySystemPrompt = `You are a research assistant that maps content topics to online discussion communities.
Respond with a JSON array only. No prose, no explanations, no markdown.`

const defaultDiscoveryTemplate = `Suggest up to 10 discussion communities where people share first-hand experiences about the topic below.

Topic: {prompt}
Requesting organization: {company}

Return a JSON array of objects with keys:
- "name": community name without any prefix
- "relevanceScore": integer 1-10
- "activityLevel": "low", "medium" or "high"
- "themes": array of short strings
- "expectedQuality": "low", "medium" or "high"

Order by relevance, most relevant first.`

const defaultClassifySystem = `You rank discussion posts by how much authentic, first-hand insight they carry for a research topic.
Respond with a JSON array only. No prose, no markdown.`

const defaultClassifyTemplate = `Topic: {prompt}
Requesting organization: {company}

Posts:
{posts}

Select at most 3 posts that carry genuine first-hand insight into the topic.
Return a JSON array of objects with keys:
- "postId": the post id
- "insightSummary": one or two sentences on why the post is insightful
- "relevanceScore": integer 1-10

Order by insight value, best first. Return [] if none qualify.`

const defaultEnrichSystem = `You expand a content brief with authentic detail mined from a discussion thread.
Respond with a JSON object only. No prose, no markdown.`

const defaultEnrichTemplate = `Original brief: {prompt}
Requesting organization: {company}

Thread title: {title}
Thread body: {body}

Top comments:
{comments}

Rewrite the original brief into an enriched prompt that folds in the concrete
experiences, vocabulary and concerns voiced in this thread.
Return a JSON object with keys:
- "enrichedPrompt": the rewritten brief
- "confidenceScore": integer 1-10, your assessment of how much the thread improved the brief`

// loadTemplate fetches a named template, falling back to the built-in text
// when the store is unreachable or the name is absent.
func loadTemplate(ctx context.Context, store Templates, name, fallback string) string {
	if store == nil {
		return fallback
	}
	body, err := store.Get(ctx, name)
	if err != nil {
		slog.Warn("research: template fallback", "name", name, "err", err)
		return fallback
	}
	return body
}

// renderTopic substitutes the {prompt}/{company} placeholders.
func renderTopic(tmpl, prompt, company string) string {
	return strings.NewReplacer(
		"{prompt}", prompt,
		"{company}", company,
	).Replace(tmpl)
}

func truncateRunes(s string, max int) string {
	if max <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
