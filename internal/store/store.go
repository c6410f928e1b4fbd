package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/lib/pq"

	"linkdex/internal/model"
)

// Store wraps access to the links database on a shared *sql.DB with
// pooling. Every mutation that can change search results invalidates
// the search cache before returning, so a subsequent query never sees
// a stale cached hit.
type Store struct {
	DB *sql.DB
}

// New creates a Store over a shared *sql.DB.
func New(db *sql.DB) *Store {
	return &Store{DB: db}
}

// Open dials Postgres with the pool settings used across the app.
func Open(dsn string) (*sql.DB, error) {
	if dsn == "" {
		return nil, ErrNotConfigured
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(10)
	db.SetConnMaxLifetime(30 * time.Minute)
	return db, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// Insert adds a new URL and returns its id. The URL string is stored
// as given and never mutated afterwards.
func (s *Store) Insert(ctx context.Context, url string) (uuid.UUID, error) {
	var id uuid.UUID
	err := s.DB.QueryRowContext(ctx,
		`INSERT INTO links (url) VALUES ($1) RETURNING id`, url,
	).Scan(&id)
	if err != nil {
		if isUniqueViolation(err) {
			return uuid.Nil, fmt.Errorf("%w: %s", ErrAlreadyExists, url)
		}
		return uuid.Nil, fmt.Errorf("insert link: %w", err)
	}
	if _, err := s.InvalidateSearchCache(ctx); err != nil {
		return id, err
	}
	return id, nil
}

const linkColumns = `id, url, title, description, content, notes, tags,
       hidden, added_at, updated_at, crawled_at, http_status, crawl_error`

func (s *Store) scanLink(ctx context.Context, row *sql.Row) (*model.Link, error) {
	var l model.Link
	var title, description, content, notes, crawlError sql.NullString
	var crawledAt sql.NullTime
	var httpStatus sql.NullInt64

	err := row.Scan(&l.ID, &l.URL, &title, &description, &content, &notes,
		pq.Array(&l.Tags), &l.Hidden, &l.AddedAt, &l.UpdatedAt,
		&crawledAt, &httpStatus, &crawlError)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan link: %w", err)
	}

	l.Title = nullableString(title)
	l.Description = nullableString(description)
	l.Content = nullableString(content)
	l.Notes = nullableString(notes)
	l.CrawlError = nullableString(crawlError)
	if crawledAt.Valid {
		t := crawledAt.Time
		l.CrawledAt = &t
	}
	if httpStatus.Valid {
		v := int(httpStatus.Int64)
		l.HTTPStatus = &v
	}

	hasCol, err := s.HasEmbeddingColumn(ctx)
	if err != nil {
		return nil, err
	}
	if hasCol {
		err = s.DB.QueryRowContext(ctx,
			`SELECT embedding IS NOT NULL FROM links WHERE id = $1`, l.ID,
		).Scan(&l.HasEmbedding)
		if err != nil {
			return nil, fmt.Errorf("check embedding: %w", err)
		}
	}
	return &l, nil
}

func nullableString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	s := v.String
	return &s
}

// GetByID fetches the full record for a link id.
func (s *Store) GetByID(ctx context.Context, id uuid.UUID) (*model.Link, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE id = $1`, id)
	return s.scanLink(ctx, row)
}

// GetByURL fetches the full record for a URL.
func (s *Store) GetByURL(ctx context.Context, url string) (*model.Link, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+linkColumns+` FROM links WHERE url = $1`, url)
	return s.scanLink(ctx, row)
}

// List returns a page of links ordered by updated_at descending (nulls
// last), the total count under the same filter, and the number of
// documents whose embedding is pending (0 when the vector column is
// absent). Hidden links are excluded unless includeHidden is set.
func (s *Store) List(ctx context.Context, limit, offset int, includeHidden bool) ([]model.LinkSummary, int, int, error) {
	filter := ""
	if !includeHidden {
		filter = " WHERE hidden = FALSE"
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`+filter).Scan(&total); err != nil {
		return nil, 0, 0, fmt.Errorf("count links: %w", err)
	}

	pending := 0
	hasCol, err := s.HasEmbeddingColumn(ctx)
	if err != nil {
		return nil, 0, 0, err
	}
	if hasCol {
		if err := s.DB.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM links WHERE embedding IS NULL`,
		).Scan(&pending); err != nil {
			return nil, 0, 0, fmt.Errorf("count pending embeddings: %w", err)
		}
	}

	rows, err := s.DB.QueryContext(ctx,
		`SELECT url, title, added_at, updated_at, hidden
		 FROM links`+filter+`
		 ORDER BY updated_at DESC NULLS LAST
		 LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, 0, fmt.Errorf("list links: %w", err)
	}
	defer rows.Close()

	var out []model.LinkSummary
	for rows.Next() {
		var ls model.LinkSummary
		var title sql.NullString
		if err := rows.Scan(&ls.URL, &title, &ls.AddedAt, &ls.UpdatedAt, &ls.Hidden); err != nil {
			return nil, 0, 0, fmt.Errorf("scan link row: %w", err)
		}
		ls.Title = nullableString(title)
		out = append(out, ls)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, 0, fmt.Errorf("list links: %w", err)
	}
	return out, total, pending, nil
}

// RemoveByURL deletes one link by URL. Returns whether a row was removed.
func (s *Store) RemoveByURL(ctx context.Context, url string) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM links WHERE url = $1`, url)
	if err != nil {
		return false, fmt.Errorf("remove link: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	if _, err := s.InvalidateSearchCache(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// RemoveByID deletes one link by id. Returns whether a row was removed.
func (s *Store) RemoveByID(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := s.DB.ExecContext(ctx, `DELETE FROM links WHERE id = $1`, id)
	if err != nil {
		return false, fmt.Errorf("remove link: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return false, nil
	}
	if _, err := s.InvalidateSearchCache(ctx); err != nil {
		return true, err
	}
	return true, nil
}

// globToLike converts a URL glob (`*` any run, `?` one character) to a
// SQL LIKE pattern, escaping LIKE metacharacters in the input first so
// user text can never smuggle wildcards.
func globToLike(pattern string) string {
	var b strings.Builder
	for _, r := range pattern {
		switch r {
		case '*':
			b.WriteByte('%')
		case '?':
			b.WriteByte('_')
		case '%', '_', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RemoveByGlob deletes every link whose URL matches the glob pattern
// and returns the removed URLs. Ordering of the result is unspecified.
func (s *Store) RemoveByGlob(ctx context.Context, pattern string) ([]string, error) {
	like := globToLike(pattern)

	rows, err := s.DB.QueryContext(ctx, `SELECT url FROM links WHERE url LIKE $1`, like)
	if err != nil {
		return nil, fmt.Errorf("match links: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("match links: %w", err)
	}

	if len(urls) == 0 {
		return nil, nil
	}

	if _, err := s.DB.ExecContext(ctx, `DELETE FROM links WHERE url LIKE $1`, like); err != nil {
		return nil, fmt.Errorf("remove links: %w", err)
	}
	if _, err := s.InvalidateSearchCache(ctx); err != nil {
		return urls, err
	}
	return urls, nil
}

// Touch refreshes updated_at for a URL without changing anything else.
func (s *Store) Touch(ctx context.Context, url string) (bool, error) {
	res, err := s.DB.ExecContext(ctx,
		`UPDATE links SET updated_at = NOW() WHERE url = $1`, url)
	if err != nil {
		return false, fmt.Errorf("touch link: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// ToggleHidden flips the hidden flag for a URL and returns the new
// value. added_at, crawled_at, content fields and the embedding are
// untouched; updated_at is refreshed and the cache invalidated.
func (s *Store) ToggleHidden(ctx context.Context, url string) (bool, error) {
	var hidden bool
	err := s.DB.QueryRowContext(ctx,
		`UPDATE links SET hidden = NOT hidden, updated_at = NOW()
		 WHERE url = $1 RETURNING hidden`, url,
	).Scan(&hidden)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle hidden: %w", err)
	}
	if _, err := s.InvalidateSearchCache(ctx); err != nil {
		return hidden, err
	}
	return hidden, nil
}

// ToggleHiddenByID is ToggleHidden keyed by link id.
func (s *Store) ToggleHiddenByID(ctx context.Context, id uuid.UUID) (bool, error) {
	var hidden bool
	err := s.DB.QueryRowContext(ctx,
		`UPDATE links SET hidden = NOT hidden, updated_at = NOW()
		 WHERE id = $1 RETURNING hidden`, id,
	).Scan(&hidden)
	if err == sql.ErrNoRows {
		return false, ErrNotFound
	}
	if err != nil {
		return false, fmt.Errorf("toggle hidden: %w", err)
	}
	if _, err := s.InvalidateSearchCache(ctx); err != nil {
		return hidden, err
	}
	return hidden, nil
}

// CrawlUpdateParams carries a crawl result into the store. Title and
// Description are coalesced (nil keeps the prior value); HTTPStatus
// and CrawlError always overwrite, possibly to NULL.
type CrawlUpdateParams struct {
	Title       *string
	Description *string
	Content     *string
	HTTPStatus  *int
	CrawlError  *string
}

// CrawlUpdate binds a crawl result to a URL. It reports whether a row
// was updated and whether the content changed. A content change nulls
// the embedding (when the vector column exists) and invalidates the
// search cache; crawled_at and updated_at are always refreshed.
func (s *Store) CrawlUpdate(ctx context.Context, url string, p CrawlUpdateParams) (updated, contentChanged bool, err error) {
	var prior sql.NullString
	err = s.DB.QueryRowContext(ctx, `SELECT content FROM links WHERE url = $1`, url).Scan(&prior)
	if err == sql.ErrNoRows {
		return false, false, nil
	}
	if err != nil {
		return false, false, fmt.Errorf("read prior content: %w", err)
	}

	contentChanged = p.Content != nil && (!prior.Valid || *p.Content != prior.String)

	hasCol, err := s.HasEmbeddingColumn(ctx)
	if err != nil {
		return false, false, err
	}

	var res sql.Result
	if contentChanged && hasCol {
		res, err = s.DB.ExecContext(ctx,
			`UPDATE links
			 SET title = COALESCE($1, title),
			     description = COALESCE($2, description),
			     content = $3,
			     http_status = $4,
			     crawl_error = $5,
			     crawled_at = NOW(),
			     updated_at = NOW(),
			     embedding = NULL
			 WHERE url = $6`,
			p.Title, p.Description, p.Content, p.HTTPStatus, p.CrawlError, url)
	} else {
		res, err = s.DB.ExecContext(ctx,
			`UPDATE links
			 SET title = COALESCE($1, title),
			     description = COALESCE($2, description),
			     content = COALESCE($3, content),
			     http_status = $4,
			     crawl_error = $5,
			     crawled_at = NOW(),
			     updated_at = NOW()
			 WHERE url = $6`,
			p.Title, p.Description, p.Content, p.HTTPStatus, p.CrawlError, url)
	}
	if err != nil {
		return false, false, fmt.Errorf("update crawl data: %w", err)
	}

	n, _ := res.RowsAffected()
	if contentChanged {
		if _, err := s.InvalidateSearchCache(ctx); err != nil {
			return n > 0, contentChanged, err
		}
	}
	return n > 0, contentChanged, nil
}

// CrawlSelector picks which links a bulk crawl should visit.
type CrawlSelector struct {
	Mode string // missing | all | old | url
	Days int    // for old
	URL  string // for url
}

func SelectMissing() CrawlSelector     { return CrawlSelector{Mode: "missing"} }
func SelectAll() CrawlSelector         { return CrawlSelector{Mode: "all"} }
func SelectOld(days int) CrawlSelector { return CrawlSelector{Mode: "old", Days: days} }
func SelectURL(u string) CrawlSelector { return CrawlSelector{Mode: "url", URL: u} }

// ListToCrawl returns the URLs the selector picks, in crawl order.
// Hidden links are excluded from the bulk selectors but a url selector
// returns its record regardless of the hidden flag.
func (s *Store) ListToCrawl(ctx context.Context, sel CrawlSelector) ([]string, error) {
	var rows *sql.Rows
	var err error

	switch sel.Mode {
	case "url":
		rows, err = s.DB.QueryContext(ctx,
			`SELECT url FROM links WHERE url = $1`, sel.URL)
	case "missing":
		rows, err = s.DB.QueryContext(ctx,
			`SELECT url FROM links
			 WHERE crawled_at IS NULL AND hidden = FALSE
			 ORDER BY added_at`)
	case "all":
		rows, err = s.DB.QueryContext(ctx,
			`SELECT url FROM links WHERE hidden = FALSE ORDER BY added_at`)
	case "old":
		rows, err = s.DB.QueryContext(ctx,
			`SELECT url FROM links
			 WHERE (crawled_at IS NULL OR crawled_at < NOW() - make_interval(days => $1))
			   AND hidden = FALSE
			 ORDER BY crawled_at NULLS FIRST, added_at`, sel.Days)
	default:
		return nil, fmt.Errorf("%w: unknown crawl selector %q", ErrInvalid, sel.Mode)
	}
	if err != nil {
		return nil, fmt.Errorf("list to crawl: %w", err)
	}
	defer rows.Close()

	var urls []string
	for rows.Next() {
		var u string
		if err := rows.Scan(&u); err != nil {
			return nil, fmt.Errorf("scan url: %w", err)
		}
		urls = append(urls, u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list to crawl: %w", err)
	}
	return urls, nil
}

// Status summarizes the database connection for `db status` and the
// /v1/db/status endpoint.
type Status struct {
	Database  string `json:"database"`
	User      string `json:"user"`
	Version   string `json:"version"`
	LinkCount int    `json:"link_count"`
	Crawled   int    `json:"crawled"`
}

// ConnectionStatus pings the database and collects basic statistics.
func (s *Store) ConnectionStatus(ctx context.Context) (*Status, error) {
	var st Status
	err := s.DB.QueryRowContext(ctx,
		`SELECT current_database(), current_user, version()`,
	).Scan(&st.Database, &st.User, &st.Version)
	if err != nil {
		return nil, fmt.Errorf("db status: %w", err)
	}
	if i := strings.Index(st.Version, ","); i > 0 {
		st.Version = st.Version[:i]
	}
	if err := s.DB.QueryRowContext(ctx, `SELECT COUNT(*) FROM links`).Scan(&st.LinkCount); err != nil {
		return nil, fmt.Errorf("count links: %w", err)
	}
	if err := s.DB.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM links WHERE crawled_at IS NOT NULL`,
	).Scan(&st.Crawled); err != nil {
		return nil, fmt.Errorf("count crawled: %w", err)
	}
	return &st, nil
}
