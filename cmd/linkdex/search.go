package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"linkdex/internal/embed"
	"linkdex/internal/model"
	"linkdex/internal/search"
)

var (
	searchLimit   int
	searchOffset  int
	keywordWeight float64
	vectorWeight  float64
	searchNoCache bool
	maxDistance   float64
)

func newSearchService(cmd *cobra.Command) (*search.Service, func(), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	st, db, err := openStore(cfg)
	if err != nil {
		return nil, nil, err
	}

	embedder, err := embed.NewFromConfig(cfg)
	if err != nil {
		// Lexical search works without an embedder; vector and hybrid
		// will report the configuration error on use.
		embedder = nil
	}

	svc := &search.Service{
		Store:           st,
		Embedder:        embedder,
		CacheTTLSeconds: cfg.Cache.TTLSeconds,
	}
	return svc, func() { db.Close() }, nil
}

var searchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Hybrid search combining keyword and semantic ranking",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := newSearchService(cmd)
		if err != nil {
			return err
		}
		defer closeDB()
		if svc.Embedder == nil {
			return fmt.Errorf("hybrid search needs an embedding provider: set LINKDEX_EMBEDDING_API_KEY or provider \"static\"")
		}

		query := joinArgs(args)
		results, total, err := svc.Hybrid(cmd.Context(), query, search.HybridOptions{
			Limit:         searchLimit,
			Offset:        searchOffset,
			KeywordWeight: keywordWeight,
			VectorWeight:  vectorWeight,
			UseCache:      !searchNoCache,
		})
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results for:", query)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tKW\tVEC\tLINK\tTITLE")
		for _, r := range results {
			fmt.Fprintf(w, "%.4f\t%s\t%s\t%s\t%s\n",
				r.RRFScore, rankLabel(r.KeywordRank), rankLabel(r.VectorRank),
				r.URL, derefOr(r.Title, "-"))
		}
		w.Flush()
		fmt.Printf("\n%d result(s)\n", total)
		return nil
	},
}

var textSearchCmd = &cobra.Command{
	Use:   "text-search <query>",
	Short: "Keyword search using BM25 full-text ranking",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := newSearchService(cmd)
		if err != nil {
			return err
		}
		defer closeDB()

		query := joinArgs(args)
		results, total, err := svc.Text(cmd.Context(), query, searchLimit, searchOffset)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results for:", query)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "SCORE\tLINK\tTITLE")
		for _, r := range results {
			fmt.Fprintf(w, "%.4f\t%s\t%s\n", r.Score, r.URL, derefOr(r.Title, "-"))
		}
		w.Flush()
		fmt.Printf("\n%d result(s)\n", total)
		return nil
	},
}

var vectorSearchCmd = &cobra.Command{
	Use:   "vector-search <query>",
	Short: "Semantic search using embedding similarity",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		svc, closeDB, err := newSearchService(cmd)
		if err != nil {
			return err
		}
		defer closeDB()
		if svc.Embedder == nil {
			return fmt.Errorf("vector search needs an embedding provider: set LINKDEX_EMBEDDING_API_KEY or provider \"static\"")
		}

		query := joinArgs(args)
		results, total, err := svc.Vector(cmd.Context(), query, searchLimit, searchOffset, maxDistance)
		if err != nil {
			return err
		}
		if len(results) == 0 {
			fmt.Println("No results for:", query)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "DISTANCE\tLINK\tTITLE")
		for _, r := range results {
			fmt.Fprintf(w, "%.4f\t%s\t%s\n", r.Distance, r.URL, derefOr(r.Title, "-"))
		}
		w.Flush()
		fmt.Printf("\n%d result(s)\n", total)
		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{searchCmd, textSearchCmd, vectorSearchCmd} {
		cmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum results")
		cmd.Flags().IntVar(&searchOffset, "offset", 0, "results to skip")
	}
	searchCmd.Flags().Float64Var(&keywordWeight, "keyword-weight", 0.5, "BM25 keyword weight (0-1)")
	searchCmd.Flags().Float64Var(&vectorWeight, "vector-weight", 0.5, "semantic similarity weight (0-1)")
	searchCmd.Flags().BoolVar(&searchNoCache, "no-cache", false, "bypass the search cache")
	vectorSearchCmd.Flags().Float64Var(&maxDistance, "max-distance", 0.8, "maximum cosine distance")
}

func joinArgs(args []string) string {
	q := args[0]
	for _, a := range args[1:] {
		q += " " + a
	}
	return q
}

func derefOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

func rankLabel(rank int) string {
	if rank >= model.MissingRank {
		return "-"
	}
	return fmt.Sprintf("#%d", rank)
}
