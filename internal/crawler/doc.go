// Package crawler implements a breadth-first crawler confined to a single
// home domain.
//
// # Architecture
//
// The Spider drives the crawl. It drains the Frontier in fixed-size batches,
// fetches every URL of a batch concurrently, feeds the discovered links back
// into the Frontier and commits the batch to the visited set and to the
// visited-URL log before the next batch is drained.
//
// # Components
//
//   - IsDocument, IsInDomain: URL classification
//   - ExtractLinks: lazy, tolerant link extraction from HTML
//   - Frontier: FIFO queue plus visited, external and document sets
//   - Fetcher, HTTPFetcher: single page retrieval
//   - Stats: discovered, external and dead link counters
//   - VisitLog: append-only visited-URL log
//
// # Usage
//
//	fetcher, err := crawler.NewHTTPFetcher(crawler.WithTimeout(30 * time.Second))
//	if err != nil {
//		return err
//	}
//	spider := crawler.NewSpider("spbu.ru", fetcher,
//		crawler.WithBatchSize(8),
//		crawler.WithMaxHops(500),
//	)
//	summary, err := spider.Run(ctx)
//
// # Failures
//
// No failure stops a crawl. A page that cannot be fetched is counted as a
// dead link, logged, and marked visited so it is never tried again. The crawl
// ends when the frontier is empty or the hop limit is reached; cancelling the
// context stops it at the next batch boundary.
package crawler
