package main

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var addCmd = &cobra.Command{
	Use:   "add <url>",
	Short: "Add a link",
	Args:  cobra.ExactArgs(1),
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

		url := normalizeURL(args[0])
		if _, err := st.Insert(cmd.Context(), url); err != nil {
			return err
		}
		fmt.Println("Added:", url)
		return nil
	},
}

var (
	listLimit  int
	listOffset int
	listHidden bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored links",
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

		limit := listLimit
		if limit <= 0 {
			limit = 50
		}
		if limit > 100 {
			limit = 100
		}
		links, total, pending, err := st.List(cmd.Context(), limit, listOffset, listHidden)
		if err != nil {
			return err
		}
		if len(links) == 0 {
			fmt.Println("No links stored yet.")
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "LINK\tTITLE\tADDED\tUPDATED")
		for _, l := range links {
			title := "-"
			if l.Title != nil && *l.Title != "" {
				title = *l.Title
			}
			hidden := ""
			if l.Hidden {
				hidden = " (hidden)"
			}
			fmt.Fprintf(w, "%s%s\t%s\t%s\t%s\n",
				l.URL, hidden, title,
				l.AddedAt.Format("Jan 02, 2006 15:04"),
				l.UpdatedAt.Format("Jan 02, 2006 15:04"))
		}
		w.Flush()
		fmt.Printf("\n%d link(s) total", total)
		if pending > 0 {
			fmt.Printf(", %d pending embedding(s)", pending)
		}
		fmt.Println()
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove <url-or-glob>",
	Short: "Remove a link, or several by glob pattern",
	Args:  cobra.ExactArgs(1),
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

		identifier := args[0]
		if strings.ContainsAny(identifier, "*?") {
			removed, err := st.RemoveByGlob(cmd.Context(), identifier)
			if err != nil {
				return err
			}
			if len(removed) == 0 {
				fmt.Println("No links matching:", identifier)
				return nil
			}
			fmt.Printf("Removed %d link(s):\n", len(removed))
			for _, u := range removed {
				fmt.Println(" ", u)
			}
			return nil
		}

		ok, err := st.RemoveByURL(cmd.Context(), identifier)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Link not found:", identifier)
			return nil
		}
		fmt.Println("Removed:", identifier)
		return nil
	},
}

var updateCmd = &cobra.Command{
	Use:   "update <url>",
	Short: "Refresh the updated timestamp for a link",
	Args:  cobra.ExactArgs(1),
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

		ok, err := st.Touch(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Link not found:", args[0])
			return nil
		}
		fmt.Println("Updated:", args[0])
		return nil
	},
}

var hideCmd = &cobra.Command{
	Use:   "hide <url>",
	Short: "Toggle a link's hidden flag",
	Args:  cobra.ExactArgs(1),
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

		hidden, err := st.ToggleHidden(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if hidden {
			fmt.Println("Hidden:", args[0])
		} else {
			fmt.Println("Visible:", args[0])
		}
		return nil
	},
}

var cleanFile string

// cleanDuplicatesCmd operates on the legacy links.csv file, which has
// no uniqueness constraint. The database enforces unique URLs, so no
// db variant is needed.
var cleanDuplicatesCmd = &cobra.Command{
	Use:   "clean-duplicates",
	Short: "Remove duplicate entries from a links.csv file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(cleanFile)
		if err != nil {
			if os.IsNotExist(err) {
				fmt.Println("No links file to clean.")
				return nil
			}
			return err
		}
		rows, err := csv.NewReader(f).ReadAll()
		f.Close()
		if err != nil {
			return err
		}
		if len(rows) <= 1 {
			fmt.Println("No links to clean.")
			return nil
		}

		header, body := rows[0], rows[1:]
		seen := map[string]bool{}
		unique := make([][]string, 0, len(body))
		for _, row := range body {
			if len(row) == 0 || seen[row[0]] {
				continue
			}
			seen[row[0]] = true
			unique = append(unique, row)
		}

		removed := len(body) - len(unique)
		if removed == 0 {
			fmt.Println("No duplicates found.")
			return nil
		}

		tmp := cleanFile + ".tmp"
		out, err := os.Create(tmp)
		if err != nil {
			return err
		}
		w := csv.NewWriter(out)
		if err := w.Write(header); err != nil {
			out.Close()
			return err
		}
		if err := w.WriteAll(unique); err != nil {
			out.Close()
			return err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			out.Close()
			return err
		}
		if err := out.Close(); err != nil {
			return err
		}
		if err := os.Rename(tmp, cleanFile); err != nil {
			return err
		}
		fmt.Printf("Cleaned: removed %d duplicate(s).\n", removed)
		return nil
	},
}

func init() {
	listCmd.Flags().IntVarP(&listLimit, "limit", "n", 50, "maximum links to list")
	listCmd.Flags().IntVar(&listOffset, "offset", 0, "number of links to skip")
	listCmd.Flags().BoolVar(&listHidden, "hidden", false, "include hidden links")

	cleanDuplicatesCmd.Flags().StringVar(&cleanFile, "file", "links.csv", "links csv file to clean")
}
