package main

import (
	"github.com/spf13/cobra"

	"linkdex/internal/crawler"
	"linkdex/internal/embed"
	httpserver "linkdex/internal/http"
	"linkdex/internal/jobs"
	"linkdex/internal/search"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		logger := newLogger(cfg)

		st, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		embedder, err := embed.NewFromConfig(cfg)
		if err != nil {
			logger.Warn("embedding provider unavailable; vector and hybrid search disabled", "error", err)
			embedder = nil
		}

		svc := &search.Service{
			Store:           st,
			Embedder:        embedder,
			CacheTTLSeconds: cfg.Cache.TTLSeconds,
		}

		srv := httpserver.NewServer(httpserver.Deps{
			Config:   cfg,
			Store:    st,
			Search:   svc,
			Fetcher:  crawler.NewFetcher(cfg.Crawler),
			Embedder: embedder,
			Runner:   jobs.NewRunner(),
			Logger:   logger,
		})

		logger.Info("listening", "host", cfg.Server.Host, "port", cfg.Server.Port)
		return srv.Listen()
	},
}
