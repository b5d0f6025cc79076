package storage

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

// TemplateStore serves named prompt templates from redis. A missing or
// unreachable template is reported as an error; callers substitute their
// built-in fallback text.
type TemplateStore struct {
	rdb *redis.Client
}

func NewTemplateStore(rdb *redis.Client) *TemplateStore {
	return &TemplateStore{rdb: rdb}
}

func templateKey(name string) string {
	return fmt.Sprintf("research:template:%s", name)
}

// Get returns the template body stored under name.
func (s *TemplateStore) Get(ctx context.Context, name string) (string, error) {
	v, err := s.rdb.Get(ctx, templateKey(name)).Result()
	if err == redis.Nil {
		return "", fmt.Errorf("storage: template %q not found", name)
	}
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(v) == "" {
		return "", fmt.Errorf("storage: template %q is empty", name)
	}
	return v, nil
}

// Set stores a template body under name, for seeding and tests.
func (s *TemplateStore) Set(ctx context.Context, name, body string) error {
	return s.rdb.Set(ctx, templateKey(name), body, 0).Err()
}
