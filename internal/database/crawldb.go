package database

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/hopcrawl/internal/model"
)

// DBFileName is the name of the database file inside the database directory.
const DBFileName = "crawler.sqlite"

// maxLineSize bounds a single line of the visited-URL log.
const maxLineSize = 1024 * 1024

// CrawlDB provides SQLite-based storage for visited URLs and run summaries.
type CrawlDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures CrawlDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a CrawlDB in dbDir.
// If CreateIfNotExists is false and the database doesn't exist, an error is returned.
func Open(dbDir string, opts Options) (*CrawlDB, error) {
	dbPath := filepath.Join(dbDir, DBFileName)

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else if err := os.MkdirAll(dbDir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	// mode=rw refuses to create a missing file, mode=rwc allows it.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite only supports one writer
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	cdb := &CrawlDB{
		db:     db,
		dbPath: dbPath,
	}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := cdb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return cdb, nil
}

// Path returns the path of the database file.
func (cdb *CrawlDB) Path() string {
	return cdb.dbPath
}

// Close closes the database connection.
func (cdb *CrawlDB) Close() error {
	return cdb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (cdb *CrawlDB) createTables() error {
	schema := `
	-- Visited URLs of the last loaded crawl
	CREATE TABLE IF NOT EXISTS links (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_links_name ON links(name);

	-- One row per finished crawl run
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		home_domain TEXT NOT NULL,
		started_at TEXT NOT NULL,
		finished_at TEXT NOT NULL,
		links INTEGER NOT NULL,
		external_links INTEGER NOT NULL,
		unique_external_links INTEGER NOT NULL,
		dead_links INTEGER NOT NULL,
		document_links INTEGER NOT NULL,
		visited_pages INTEGER NOT NULL,
		interrupted INTEGER NOT NULL DEFAULT 0,
		timestamp DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(home_domain);
	`

	_, err := cdb.db.ExecContext(context.Background(), schema)
	return err
}

// LoadLinks replaces the contents of the links table with the URLs read
// from r, one per line. Blank lines and lines containing "mailto" are
// skipped. It returns the number of rows inserted.
func (cdb *CrawlDB) LoadLinks(ctx context.Context, r io.Reader) (int, error) {
	tx, err := cdb.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after commit

	if _, err := tx.ExecContext(ctx, "DELETE FROM links"); err != nil {
		return 0, fmt.Errorf("failed to clear links: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, "INSERT INTO links (name) VALUES (?)")
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	count := 0
	for scanner.Scan() {
		link := strings.TrimSpace(scanner.Text())
		if link == "" || strings.Contains(link, "mailto") {
			continue
		}
		if _, err := stmt.ExecContext(ctx, link); err != nil {
			return 0, fmt.Errorf("failed to insert link: %w", err)
		}
		count++
	}
	if err := scanner.Err(); err != nil {
		return 0, fmt.Errorf("failed to read links: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit links: %w", err)
	}
	return count, nil
}

// LoadLinksFile is LoadLinks reading from the file at path.
func (cdb *CrawlDB) LoadLinksFile(ctx context.Context, path string) (int, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the configured output directory
	if err != nil {
		return 0, fmt.Errorf("failed to open links file: %w", err)
	}
	defer f.Close()

	return cdb.LoadLinks(ctx, f)
}

// CountLinks returns the number of rows in the links table.
func (cdb *CrawlDB) CountLinks(ctx context.Context) (int, error) {
	var n int
	if err := cdb.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM links").Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count links: %w", err)
	}
	return n, nil
}

// SubdomainCount returns the number of distinct subdomains of homeDomain
// among the loaded links. The subdomain of a link is the text between the
// scheme and the first occurrence of homeDomain, so "https://math.spbu.ru/x"
// contributes "math." and "https://spbu.ru/x" contributes nothing.
func (cdb *CrawlDB) SubdomainCount(ctx context.Context, homeDomain string) (int, error) {
	query := `
	WITH prefixed AS (
		SELECT SUBSTR(name, 1, INSTR(name, ?) - 1) AS before
		FROM links
		WHERE INSTR(name, ?) > 0
	),

	stripped AS (
		SELECT CASE
			WHEN before LIKE 'https://%' THEN SUBSTR(before, 9)
			WHEN before LIKE 'http://%' THEN SUBSTR(before, 8)
			ELSE before
		END AS subdomain
		FROM prefixed
	)

	SELECT COUNT(DISTINCT subdomain)
	FROM stripped
	WHERE subdomain <> ''
	`

	var n int
	if err := cdb.db.QueryRowContext(ctx, query, homeDomain, homeDomain).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count subdomains: %w", err)
	}
	return n, nil
}

// InternalPageCount returns the number of loaded links below the bare home
// domain, over either scheme.
func (cdb *CrawlDB) InternalPageCount(ctx context.Context, homeDomain string) (int, error) {
	query := `
	SELECT COUNT(name)
	FROM links
	WHERE name LIKE ? OR name LIKE ?
	`

	var n int
	err := cdb.db.QueryRowContext(ctx, query,
		"https://"+homeDomain+"/%",
		"http://"+homeDomain+"/%",
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count internal pages: %w", err)
	}
	return n, nil
}

// DomainStats computes both link statistics for homeDomain.
func (cdb *CrawlDB) DomainStats(ctx context.Context, homeDomain string) (*model.DomainStats, error) {
	subdomains, err := cdb.SubdomainCount(ctx, homeDomain)
	if err != nil {
		return nil, err
	}
	pages, err := cdb.InternalPageCount(ctx, homeDomain)
	if err != nil {
		return nil, err
	}
	return &model.DomainStats{Subdomains: subdomains, InternalPages: pages}, nil
}

// RunRecord is a stored crawl run.
type RunRecord struct {
	// ID is the unique identifier of the run in the database.
	ID int64

	// Summary holds the counters of the run.
	Summary *model.Summary

	// RecordedAt is when the run was saved.
	RecordedAt time.Time
}

// SaveRun stores the summary of a finished run and returns its ID.
func (cdb *CrawlDB) SaveRun(ctx context.Context, summary *model.Summary) (int64, error) {
	if summary == nil {
		return 0, errors.New("summary is nil")
	}

	query := `
	INSERT INTO runs (
		home_domain, started_at, finished_at,
		links, external_links, unique_external_links,
		dead_links, document_links, visited_pages, interrupted
	)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := cdb.db.ExecContext(ctx, query,
		summary.HomeDomain,
		summary.StartedAt.UTC().Format(time.RFC3339Nano),
		summary.FinishedAt.UTC().Format(time.RFC3339Nano),
		summary.Links,
		summary.ExternalLinks,
		summary.UniqueExternalLinks,
		summary.DeadLinks,
		summary.DocumentLinks,
		summary.VisitedPages,
		summary.Interrupted,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to save run: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run id: %w", err)
	}
	return id, nil
}

const runColumns = `
	id, home_domain, started_at, finished_at,
	links, external_links, unique_external_links,
	dead_links, document_links, visited_pages, interrupted, timestamp
`

// LatestRun returns the most recent run for homeDomain, or nil if there is none.
func (cdb *CrawlDB) LatestRun(ctx context.Context, homeDomain string) (*RunRecord, error) {
	runs, err := cdb.ListRuns(ctx, homeDomain, 1)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, nil
	}
	return &runs[0], nil
}

// ListRuns returns stored runs for homeDomain, newest first. An empty
// homeDomain lists runs of every domain. A limit of zero or less returns
// all runs.
func (cdb *CrawlDB) ListRuns(ctx context.Context, homeDomain string, limit int) ([]RunRecord, error) {
	query := "SELECT " + runColumns + " FROM runs"
	var args []any
	if homeDomain != "" {
		query += " WHERE home_domain = ?"
		args = append(args, homeDomain)
	}
	query += " ORDER BY id DESC"
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := cdb.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var results []RunRecord
	for rows.Next() {
		var (
			rec                             RunRecord
			s                               model.Summary
			startedAt, finishedAt, recorded string
		)
		if err := rows.Scan(
			&rec.ID, &s.HomeDomain, &startedAt, &finishedAt,
			&s.Links, &s.ExternalLinks, &s.UniqueExternalLinks,
			&s.DeadLinks, &s.DocumentLinks, &s.VisitedPages, &s.Interrupted, &recorded,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		s.StartedAt = parseTimestamp(startedAt)
		s.FinishedAt = parseTimestamp(finishedAt)
		rec.Summary = &s
		rec.RecordedAt = parseTimestamp(recorded)
		results = append(results, rec)
	}

	return results, rows.Err()
}

// ListDomains returns every home domain with at least one stored run.
func (cdb *CrawlDB) ListDomains(ctx context.Context) ([]string, error) {
	query := `
	SELECT DISTINCT home_domain FROM runs
	ORDER BY home_domain
	`

	rows, err := cdb.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list domains: %w", err)
	}
	defer rows.Close()

	var domains []string
	for rows.Next() {
		var domain string
		if err := rows.Scan(&domain); err != nil {
			return nil, fmt.Errorf("failed to scan domain: %w", err)
		}
		domains = append(domains, domain)
	}

	return domains, rows.Err()
}

// timestampFormats contains the timestamp formats that SQLite may return.
// The order matters: more specific formats should come first.
var timestampFormats = []string{
	"2006-01-02 15:04:05",     // SQLite default datetime format
	"2006-01-02T15:04:05Z",    // ISO 8601 with Z suffix
	"2006-01-02T15:04:05",     // ISO 8601 without timezone
	time.RFC3339,              // Full RFC3339 format
	time.RFC3339Nano,          // RFC3339 with nanoseconds
	"2006-01-02 15:04:05.999", // SQLite with milliseconds
}

// parseTimestamp attempts to parse a timestamp string using multiple formats.
// If parsing fails with all formats, returns zero time.
func parseTimestamp(s string) time.Time {
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
