// Package database provides SQLite-based storage for hopcrawl.
//
// The CrawlDB stores:
//   - the visited-URL log of the last crawl, one row per page, used to
//     count subdomains and internal pages of the home domain
//   - the summary of every finished crawl run, for the history command
//
// SQLite is provided by modernc.org/sqlite, which needs no cgo. The database
// is a single file, crawler.sqlite, inside the output directory.
package database
