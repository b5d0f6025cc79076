package research

import (
	"context"
	"fmt"
	"time"

	"forge-research/internal/model"
)

// fakeCompleter replays scripted replies in call order.
type fakeCompleter struct {
	replies []string
	err     error
	calls   []string // user prompts, in order
}

func (f *fakeCompleter) Complete(_ context.Context, _, user string) (string, int, error) {
	f.calls = append(f.calls, user)
	if f.err != nil {
		return "", 0, f.err
	}
	i := len(f.calls) - 1
	if i >= len(f.replies) {
		return "", 0, fmt.Errorf("no scripted reply for call %d", i)
	}
	return f.replies[i], 10, nil
}

// fakeCache is an in-memory discovery cache.
type fakeCache struct {
	entries map[string][]model.CommunityInfo
	puts    int
	putErr  error
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string][]model.CommunityInfo{}}
}

func (f *fakeCache) Get(_ context.Context, hash string) ([]model.CommunityInfo, bool) {
	c, ok := f.entries[hash]
	return c, ok
}

func (f *fakeCache) Put(_ context.Context, hash, _, _ string, communities []model.CommunityInfo) error {
	f.puts++
	if f.putErr != nil {
		return f.putErr
	}
	f.entries[hash] = communities
	return nil
}

// fakeTemplates returns a fixed body per name, or an error when absent.
type fakeTemplates struct {
	bodies map[string]string
}

func (f *fakeTemplates) Get(_ context.Context, name string) (string, error) {
	if f == nil || f.bodies == nil {
		return "", fmt.Errorf("template %q not found", name)
	}
	b, ok := f.bodies[name]
	if !ok {
		return "", fmt.Errorf("template %q not found", name)
	}
	return b, nil
}

// fakePlatform serves canned listings and threads.
type fakePlatform struct {
	hot        map[string][]model.Post
	hotErr     map[string]error
	threads    map[string]*model.Thread
	threadErr  map[string]error
	hotCalls   []string
	threadReqs []string
}

func (f *fakePlatform) HotPosts(_ context.Context, community string, _ int) ([]model.Post, error) {
	f.hotCalls = append(f.hotCalls, community)
	if err := f.hotErr[community]; err != nil {
		return nil, err
	}
	return f.hot[community], nil
}

func (f *fakePlatform) Thread(_ context.Context, postID string) (*model.Thread, error) {
	f.threadReqs = append(f.threadReqs, postID)
	if err := f.threadErr[postID]; err != nil {
		return nil, err
	}
	return f.threads[postID], nil
}

func testPost(id, community, title string) model.Post {
	return model.Post{
		ID:           id,
		Title:        title,
		Body:         "body of " + id,
		URL:          "https://www.reddit.com/r/" + community + "/comments/" + id,
		Upvotes:      42,
		CommentCount: 7,
		CreatedAt:    time.Now().Add(-6 * time.Hour),
		Community:    community,
		Author:       "tester",
	}
}

func testThread(p model.Post, comments ...string) *model.Thread {
	t := &model.Thread{Post: p}
	for i, body := range comments {
		t.Comments = append(t.Comments, model.Comment{
			ID:     fmt.Sprintf("c%d", i),
			Body:   body,
			Author: "commenter",
		})
	}
	return t
}
