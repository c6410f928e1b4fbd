package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"linkdex/internal/crawler"
	"linkdex/internal/store"
)

var (
	crawlAll     bool
	crawlMissing bool
	crawlOldDays int
)

var crawlCmd = &cobra.Command{
	Use:   "crawl [url]",
	Short: "Crawl links and extract their content",
	Long: "Crawl fetches pages in a headless browser and stores title,\n" +
		"description and readable content for search. Without flags only\n" +
		"never-crawled links are visited.",
	Args: cobra.MaximumNArgs(1),
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

		var sel store.CrawlSelector
		switch {
		case len(args) == 1:
			sel = store.SelectURL(normalizeURL(args[0]))
		case crawlAll:
			sel = store.SelectAll()
		case crawlOldDays > 0:
			sel = store.SelectOld(crawlOldDays)
		default:
			sel = store.SelectMissing()
		}

		urls, err := st.ListToCrawl(cmd.Context(), sel)
		if err != nil {
			return err
		}
		if len(urls) == 0 {
			fmt.Println("Nothing to crawl.")
			return nil
		}

		fetcher := crawler.NewFetcher(cfg.Crawler)
		success, failed := 0, 0
		for i, url := range urls {
			fmt.Printf("[%d/%d] %s\n", i+1, len(urls), url)
			result := fetcher.Fetch(cmd.Context(), url)

			if _, _, err := st.CrawlUpdate(cmd.Context(), url, store.CrawlUpdateParams{
				Title:       result.Title,
				Description: result.Description,
				Content:     result.Content,
				HTTPStatus:  result.HTTPStatus,
				CrawlError:  result.Error,
			}); err != nil {
				return err
			}

			if result.Error != nil {
				failed++
				fmt.Println("  error:", *result.Error)
			} else {
				success++
				if result.Title != nil {
					fmt.Println("  ok:", *result.Title)
				} else {
					fmt.Println("  ok")
				}
			}
		}

		fmt.Printf("\nCrawled %d link(s): %d ok, %d failed.\n", len(urls), success, failed)
		return nil
	},
}

func init() {
	crawlCmd.Flags().BoolVar(&crawlAll, "all", false, "crawl every visible link")
	crawlCmd.Flags().BoolVar(&crawlMissing, "missing", false, "crawl links never crawled (default)")
	crawlCmd.Flags().IntVar(&crawlOldDays, "old", 0, "crawl links not crawled in N days")
}
