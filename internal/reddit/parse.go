package reddit

import (
	"encoding/json"
	"strings"
	"time"
	"unicode/utf8"

	"forge-research/internal/model"
)

const (
	// maxCommentDepth bounds comment-tree parsing.
	maxCommentDepth = 2
	// minCommentRunes filters out bodies too short to carry a usable point.
	minCommentRunes = 10
)

// postData mirrors the subset of the platform's post fields we care about.
type postData struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	URL         string  `json:"url"`
	Permalink   string  `json:"permalink"`
	Ups         int     `json:"ups"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Stickied    bool    `json:"stickied"`
}

type listing struct {
	Data struct {
		Children []struct {
			Kind string   `json:"kind"`
			Data postData `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type commentNode struct {
	Kind string `json:"kind"`
	Data struct {
		ID         string          `json:"id"`
		Body       string          `json:"body"`
		Author     string          `json:"author"`
		Ups        int             `json:"ups"`
		CreatedUTC float64         `json:"created_utc"`
		Replies    json.RawMessage `json:"replies"` // empty string or a nested listing
	} `json:"data"`
}

type commentListing struct {
	Data struct {
		Children []commentNode `json:"children"`
	} `json:"data"`
}

func convertPost(p postData) model.Post {
	urlStr := strings.TrimSpace(p.URL)
	if p.Permalink != "" {
		urlStr = "https://www.reddit.com" + p.Permalink
	}
	return model.Post{
		ID:           p.ID,
		Title:        p.Title,
		Body:         p.Selftext,
		URL:          urlStr,
		Upvotes:      p.Ups,
		CommentCount: p.NumComments,
		CreatedAt:    time.Unix(int64(p.CreatedUTC), 0).UTC(),
		Community:    p.Subreddit,
		Author:       p.Author,
	}
}

// parseComments converts comment nodes at the given depth, recursing into
// replies until maxCommentDepth. Deleted, removed, and very short bodies are
// discarded together with their subtrees; "more" stubs are ignored.
func parseComments(nodes []commentNode, depth int) []model.Comment {
	if depth > maxCommentDepth {
		return nil
	}
	out := make([]model.Comment, 0, len(nodes))
	for _, n := range nodes {
		if n.Kind != "t1" {
			continue
		}
		body := strings.TrimSpace(n.Data.Body)
		if body == "" || body == "[deleted]" || body == "[removed]" {
			continue
		}
		if utf8.RuneCountInString(body) < minCommentRunes {
			continue
		}
		c := model.Comment{
			ID:        n.Data.ID,
			Body:      body,
			Author:    n.Data.Author,
			Upvotes:   n.Data.Ups,
			CreatedAt: time.Unix(int64(n.Data.CreatedUTC), 0).UTC(),
		}
		if len(n.Data.Replies) > 0 && depth < maxCommentDepth {
			var nested commentListing
			// replies is "" when there are none; ignore anything unparseable
			if err := json.Unmarshal(n.Data.Replies, &nested); err == nil {
				c.Replies = parseComments(nested.Data.Children, depth+1)
			}
		}
		out = append(out, c)
	}
	return out
}
