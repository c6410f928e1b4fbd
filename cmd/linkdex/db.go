package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"linkdex/internal/embed"
	"linkdex/internal/migrate"
	"linkdex/internal/store"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the database schema",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		dsn := cfg.Database.DSN()
		if dsn == "" {
			return store.ErrNotConfigured
		}
		if err := migrate.Run(dsn); err != nil {
			return err
		}
		fmt.Println("Database initialized.")
		return nil
	},
}

var migrateFile string

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Import links from a legacy links.csv into the database",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		_, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		imported, skipped, err := migrate.ImportCSV(cmd.Context(), db, migrateFile)
		if err != nil {
			return err
		}
		fmt.Printf("Migration complete: %d imported, %d skipped (duplicates).\n", imported, skipped)
		return nil
	},
}

var dbStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show database connection status",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		status, err := st.ConnectionStatus(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Println("Connection: OK")
		fmt.Println("Database:  ", status.Database)
		fmt.Println("User:      ", status.User)
		fmt.Println("Version:   ", status.Version)
		fmt.Println("Links:     ", status.LinkCount)
		fmt.Println("Crawled:   ", status.Crawled)
		return nil
	},
}

var vectorCmd = &cobra.Command{
	Use:   "vector",
	Short: "Semantic search management",
}

var vectorInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the embedding column and index",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := st.InitVector(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Vector search initialized.")
		fmt.Println("Run 'linkdex db vector embed' to generate embeddings for links.")
		return nil
	},
}

var vectorStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show embedding coverage",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		status, err := st.VectorStatusInfo(cmd.Context())
		if err != nil {
			return err
		}
		if !status.Initialized {
			fmt.Println("Vector search is not initialized. Run 'linkdex db vector init'.")
			return nil
		}
		fmt.Println("Links:    ", status.Total)
		fmt.Println("Embedded: ", status.Embedded)
		fmt.Println("Pending:  ", status.Pending)
		return nil
	},
}

var embedLimit int

var vectorEmbedCmd = &cobra.Command{
	Use:   "embed",
	Short: "Generate embeddings for links missing them",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		st, db, err := openStore(cfg)
		if err != nil {
			return err
		}
		defer db.Close()

		embedder, err := embed.NewFromConfig(cfg)
		if err != nil {
			return err
		}

		pending, err := st.ListPendingEmbeddings(cmd.Context(), embedLimit)
		if err != nil {
			return err
		}
		if len(pending) == 0 {
			fmt.Println("Nothing to embed.")
			return nil
		}

		success, failed := 0, 0
		for i, p := range pending {
			fmt.Printf("[%d/%d] %s\n", i+1, len(pending), p.URL)
			vec, err := embedder.Embed(cmd.Context(), p.SearchText)
			if err != nil {
				failed++
				fmt.Println("  error:", err)
				continue
			}
			if err := st.SetEmbedding(cmd.Context(), p.ID, vec); err != nil {
				failed++
				fmt.Println("  error:", err)
				continue
			}
			success++
		}

		fmt.Printf("\nEmbedded %d link(s): %d ok, %d failed.\n", len(pending), success, failed)
		return nil
	},
}

func init() {
	dbMigrateCmd.Flags().StringVar(&migrateFile, "file", "links.csv", "links csv file to import")
	vectorEmbedCmd.Flags().IntVarP(&embedLimit, "limit", "n", 0, "maximum links to embed (0 = all)")

	vectorCmd.AddCommand(vectorInitCmd)
	vectorCmd.AddCommand(vectorStatusCmd)
	vectorCmd.AddCommand(vectorEmbedCmd)

	dbCmd.AddCommand(dbInitCmd)
	dbCmd.AddCommand(dbMigrateCmd)
	dbCmd.AddCommand(dbStatusCmd)
	dbCmd.AddCommand(vectorCmd)
}
