package main

import (
	"database/sql"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"linkdex/internal/config"
	"linkdex/internal/store"
)

var (
	cfgPath string
	version = "0.1.0"
)

var rootCmd = &cobra.Command{
	Use:           "linkdex",
	Short:         "Personal search engine for curated links",
	Long:          "linkdex stores the links you choose to keep and makes them searchable\nwith full-text, semantic and hybrid queries.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgPath, "config", "", "path to config file")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(updateCmd)
	rootCmd.AddCommand(hideCmd)
	rootCmd.AddCommand(cleanDuplicatesCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(textSearchCmd)
	rootCmd.AddCommand(vectorSearchCmd)
	rootCmd.AddCommand(crawlCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(dbCmd)
}

func loadConfig() (*config.Config, error) {
	return config.Load(cfgPath)
}

func newLogger(cfg *config.Config) *slog.Logger {
	level := slog.LevelInfo
	if cfg.Server.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// openStore connects to Postgres or fails with the configuration hint.
func openStore(cfg *config.Config) (*store.Store, *sql.DB, error) {
	dsn := cfg.Database.DSN()
	if dsn == "" {
		return nil, nil, store.ErrNotConfigured
	}
	db, err := store.Open(dsn)
	if err != nil {
		return nil, nil, err
	}
	return store.New(db), db, nil
}

// normalizeURL defaults a bare host to https.
func normalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return raw
	}
	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}
	return raw
}
