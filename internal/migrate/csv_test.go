package migrate

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.csv")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImportCSVCountsImportedAndSkipped(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	path := writeCSV(t, "link,added_at,updated_at\n"+
		"https://a.example,2024-01-02T10:00:00Z,2024-01-02T10:00:00Z\n"+
		"https://b.example,,\n")

	mock.ExpectExec("INSERT INTO links").
		WillReturnResult(sqlmock.NewResult(0, 1))
	// ON CONFLICT DO NOTHING reports zero rows for the duplicate.
	mock.ExpectExec("INSERT INTO links").
		WillReturnResult(sqlmock.NewResult(0, 0))

	imported, skipped, err := ImportCSV(context.Background(), db, path)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if imported != 1 || skipped != 1 {
		t.Fatalf("imported=%d skipped=%d, want 1/1", imported, skipped)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestImportCSVEmptyFile(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	path := writeCSV(t, "")
	imported, skipped, err := ImportCSV(context.Background(), db, path)
	if err != nil {
		t.Fatalf("ImportCSV: %v", err)
	}
	if imported != 0 || skipped != 0 {
		t.Fatalf("imported=%d skipped=%d, want 0/0", imported, skipped)
	}
}

func TestImportCSVMissingLinkColumn(t *testing.T) {
	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	path := writeCSV(t, "url,added_at\nhttps://a.example,\n")
	if _, _, err := ImportCSV(context.Background(), db, path); err == nil {
		t.Fatal("expected error for csv without link column")
	}
}
