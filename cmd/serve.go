package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"forge-research/internal/ai"
	"forge-research/internal/config"
	"forge-research/internal/reddit"
	"forge-research/internal/redisclient"
	"forge-research/internal/research"
	"forge-research/internal/server"
	"forge-research/internal/storage"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the research HTTP service",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		pipeline, err := buildPipeline(cfg)
		if err != nil {
			slog.Warn("serve: starting without a configured pipeline", "err", err)
		}
		srv := server.New(pipeline, err == nil)

		// Signal handling for systemd
		sigc := make(chan os.Signal, 1)
		signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
		go func() {
			s := <-sigc
			slog.Info("serve: received signal, shutting down", "signal", s.String())
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		}()

		slog.Info("serve: listening", "addr", cfg.Server.Addr)
		return srv.Start(cfg.Server.Addr)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// buildPipeline assembles the research pipeline from configuration. An error
// means required credentials are absent; the HTTP surface reports that as a
// configuration failure per request instead of refusing to start.
func buildPipeline(cfg config.Config) (*research.Pipeline, error) {
	if strings.TrimSpace(cfg.OpenAI.APIKey) == "" {
		return nil, fmt.Errorf("openai.api_key is not configured")
	}
	if strings.TrimSpace(cfg.Reddit.ClientID) == "" || strings.TrimSpace(cfg.Reddit.ClientSecret) == "" {
		return nil, fmt.Errorf("reddit.client_id and reddit.client_secret are not configured")
	}

	rdb := redisclient.New(cfg.Redis)
	cacheTTL, err := time.ParseDuration(cfg.Research.CacheTTL)
	if err != nil {
		return nil, fmt.Errorf("invalid research.cache_ttl: %w", err)
	}
	deadline, err := time.ParseDuration(cfg.Research.Deadline)
	if err != nil {
		return nil, fmt.Errorf("invalid research.deadline: %w", err)
	}
	interval, err := time.ParseDuration(cfg.Reddit.RequestInterval)
	if err != nil {
		return nil, fmt.Errorf("invalid reddit.request_interval: %w", err)
	}
	timeout, err := time.ParseDuration(cfg.Reddit.Timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid reddit.timeout: %w", err)
	}

	cache := storage.NewDiscoveryCache(rdb, cacheTTL)
	templates := storage.NewTemplateStore(rdb)
	completer := ai.NewOpenAI(ai.Config{
		APIKey:  cfg.OpenAI.APIKey,
		Model:   cfg.OpenAI.Model,
		BaseURL: cfg.OpenAI.BaseURL,
	})
	platform := reddit.NewClient(reddit.Config{
		ClientID:     cfg.Reddit.ClientID,
		ClientSecret: cfg.Reddit.ClientSecret,
		UserAgent:    cfg.Reddit.UserAgent,
		BaseURL:      cfg.Reddit.BaseURL,
		AuthURL:      cfg.Reddit.AuthURL,
		MinInterval:  interval,
		Timeout:      timeout,
	})

	fallback := research.DefaultFallback()
	if cfg.Research.FallbackFile != "" {
		fl, err := research.LoadFallbackFile(cfg.Research.FallbackFile)
		if err != nil {
			slog.Warn("serve: fallback file ignored", "path", cfg.Research.FallbackFile, "err", err)
		} else {
			fallback = fl
		}
	}

	return &research.Pipeline{
		Discovery: &research.Discovery{
			Cache:     cache,
			Templates: templates,
			AI:        completer,
			Fallback:  fallback,
		},
		Classifier: &research.Classifier{Templates: templates, AI: completer},
		Enricher:   &research.Enricher{Templates: templates, AI: completer},
		NewSession: func() research.Platform {
			return platform.Session(cfg.Reddit.MaxCallsPerRun)
		},
		PostsPerCommunity: cfg.Reddit.PostsPerCommunity,
		Disabled:          cfg.Research.Disabled,
		Deadline:          deadline,
	}, nil
}
