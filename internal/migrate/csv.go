package migrate

import (
	"context"
	"database/sql"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"time"
)

// ImportCSV loads a legacy links.csv export into the links table. The
// file carries a header row with link, added_at and updated_at
// columns; existing URLs are skipped via ON CONFLICT DO NOTHING.
// Returns (imported, skipped).
func ImportCSV(ctx context.Context, db *sql.DB, path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	header, err := r.Read()
	if err == io.EOF {
		return 0, 0, nil
	}
	if err != nil {
		return 0, 0, fmt.Errorf("read csv header: %w", err)
	}

	col := map[string]int{}
	for i, name := range header {
		col[name] = i
	}
	linkIdx, ok := col["link"]
	if !ok {
		return 0, 0, fmt.Errorf("csv missing link column")
	}

	imported, skipped := 0, 0
	for {
		row, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return imported, skipped, fmt.Errorf("read csv row: %w", err)
		}

		addedAt := parseCSVTime(field(row, col, "added_at"))
		updatedAt := parseCSVTime(field(row, col, "updated_at"))

		res, err := db.ExecContext(ctx, `
			INSERT INTO links (url, added_at, updated_at)
			VALUES ($1, COALESCE($2, NOW()), COALESCE($3, NOW()))
			ON CONFLICT (url) DO NOTHING`,
			row[linkIdx], addedAt, updatedAt)
		if err != nil {
			skipped++
			continue
		}
		if n, _ := res.RowsAffected(); n > 0 {
			imported++
		} else {
			skipped++
		}
	}
	return imported, skipped, nil
}

func field(row []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func parseCSVTime(v string) *time.Time {
	if v == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t
		}
	}
	return nil
}
