package model

import "time"

// CommunityInfo describes a discussion community suggested for a research topic.
type CommunityInfo struct {
	Name            string   `json:"name"`
	RelevanceScore  int      `json:"relevance_score"` // 1..10
	ActivityLevel   string   `json:"activity_level"`  // low|medium|high
	Themes          []string `json:"themes"`
	ExpectedQuality string   `json:"expected_quality"` // low|medium|high
}

// Post is a single scraped post from a community's hot listing.
type Post struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	Body         string    `json:"body"`
	URL          string    `json:"url"`
	Upvotes      int       `json:"upvotes"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	Community    string    `json:"community"`
	Author       string    `json:"author"`
}

// Comment is a node in a post's comment tree. Replies are bounded to depth 2
// during parsing.
type Comment struct {
	ID        string    `json:"id"`
	Body      string    `json:"body"`
	Author    string    `json:"author"`
	Upvotes   int       `json:"upvotes"`
	CreatedAt time.Time `json:"created_at"`
	Replies   []Comment `json:"replies,omitempty"`
}

// Thread is a post together with its top-level comments.
type Thread struct {
	Post     Post      `json:"post"`
	Comments []Comment `json:"comments"`
}

// Candidate is a post provisionally selected as insight-bearing by the
// classifier, pending deep analysis.
type Candidate struct {
	PostID         string `json:"post_id"`
	InsightSummary string `json:"insight_summary"`
	RelevanceScore int    `json:"relevance_score"`
}

// EnrichmentResult is the enricher's output for one thread.
type EnrichmentResult struct {
	EnrichedPrompt  string `json:"enriched_prompt"`
	ConfidenceScore int    `json:"confidence_score"`
}

// CacheEntry is the discovery cache record keyed by topic hash.
type CacheEntry struct {
	TopicHash      string          `json:"topic_hash"`
	SubjectPrompt  string          `json:"subject_prompt"`
	CompanyContext string          `json:"company_context"`
	Communities    []CommunityInfo `json:"communities"`
	ExpiresAt      time.Time       `json:"expires_at"`
	LastUsedAt     time.Time       `json:"last_used_at"`
}

// PipelineResult is the terminal artifact of a research run. Success carries
// the enrichment and its citation; failure carries either a fallback reason
// (expected negative outcome) or an error message (hard fault).
type PipelineResult struct {
	Success               bool    `json:"success"`
	EnrichedPrompt        string  `json:"enriched_prompt,omitempty"`
	InsightSummary        string  `json:"insight_summary,omitempty"`
	SourceURL             string  `json:"source_url,omitempty"`
	SourceTitle           string  `json:"source_title,omitempty"`
	ProcessingTimeSeconds float64 `json:"processing_time_seconds"`
	FallbackReason        string  `json:"fallback_reason,omitempty"`
	Error                 string  `json:"error,omitempty"`
}
