package config

// AppConfig holds application-level settings.
type AppConfig struct {
	LogLevel string `mapstructure:"log_level"`
}

// RedisConfig holds redis connection settings.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// OpenAIConfig configures the chat-completion service.
type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
	BaseURL string `mapstructure:"base_url"` // optional, for compatible gateways
}

// RedditConfig configures the platform content API.
type RedditConfig struct {
	ClientID          string `mapstructure:"client_id"`
	ClientSecret      string `mapstructure:"client_secret"`
	UserAgent         string `mapstructure:"user_agent"`
	BaseURL           string `mapstructure:"base_url"`
	AuthURL           string `mapstructure:"auth_url"`
	RequestInterval   string `mapstructure:"request_interval"` // duration string, e.g., "1100ms"
	MaxCallsPerRun    int    `mapstructure:"max_calls_per_run"`
	PostsPerCommunity int    `mapstructure:"posts_per_community"`
	Timeout           string `mapstructure:"timeout"` // per-call HTTP timeout
}

// ResearchConfig controls the enrichment pipeline.
type ResearchConfig struct {
	Disabled     bool   `mapstructure:"disabled"`
	CacheTTL     string `mapstructure:"cache_ttl"` // discovery cache TTL, default "24h"
	Deadline     string `mapstructure:"deadline"`  // overall per-run deadline
	FallbackFile string `mapstructure:"fallback_file"`
}

// ServerConfig controls the HTTP surface.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Config is the top-level configuration structure.
type Config struct {
	App      AppConfig      `mapstructure:"app"`
	Redis    RedisConfig    `mapstructure:"redis"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Reddit   RedditConfig   `mapstructure:"reddit"`
	Research ResearchConfig `mapstructure:"research"`
	Server   ServerConfig   `mapstructure:"server"`
}

// FillDefaults applies default values if not provided. Credentials have no
// defaults; their absence is surfaced when the pipeline is started.
func (c *Config) FillDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Redis.Addr == "" {
		c.Redis.Addr = "127.0.0.1:6379"
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o-mini"
	}
	if c.Reddit.BaseURL == "" {
		c.Reddit.BaseURL = "https://oauth.reddit.com"
	}
	if c.Reddit.AuthURL == "" {
		c.Reddit.AuthURL = "https://www.reddit.com/api/v1/access_token"
	}
	if c.Reddit.UserAgent == "" {
		c.Reddit.UserAgent = "forge-research/1.0 (research enrichment pipeline)"
	}
	if c.Reddit.RequestInterval == "" {
		c.Reddit.RequestInterval = "1100ms"
	}
	if c.Reddit.MaxCallsPerRun == 0 {
		c.Reddit.MaxCallsPerRun = 30
	}
	if c.Reddit.PostsPerCommunity == 0 {
		c.Reddit.PostsPerCommunity = 10
	}
	if c.Reddit.Timeout == "" {
		c.Reddit.Timeout = "15s"
	}
	if c.Research.CacheTTL == "" {
		c.Research.CacheTTL = "24h"
	}
	if c.Research.Deadline == "" {
		c.Research.Deadline = "5m"
	}
	if c.Server.Addr == "" {
		c.Server.Addr = ":8085"
	}
}
