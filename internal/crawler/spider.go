package crawler

import (
	"context"
	"log/slog"
	"time"

	"github.com/nao1215/hopcrawl/internal/model"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultBatchSize is the number of URLs fetched concurrently per batch.
	DefaultBatchSize = 8

	// DefaultMaxHops is the number of visited pages after which no new batch starts.
	DefaultMaxHops = 500
)

// Spider crawls a single home domain breadth-first.
//
// The crawl proceeds in strictly sequential batches: a batch is drained from
// the frontier, all of its URLs are processed concurrently, and only when
// every task has finished is the batch committed to the visited set and the
// visit log. The hop limit and context cancellation are checked between
// batches only, so an in-flight batch always completes.
type Spider struct {
	// homeDomain is the substring that makes a URL internal.
	homeDomain string

	// rootURL is the first URL fetched. Defaults to https://<homeDomain>.
	rootURL string

	// fetcher retrieves page bodies.
	fetcher Fetcher

	// batchSize is the maximum number of URLs per batch.
	batchSize int

	// maxHops stops the crawl once the visited set reaches this size.
	maxHops int

	// keepQueryParams are preserved when URLs are cleaned at dequeue.
	keepQueryParams []string

	// visitLog receives committed batches; nil disables the log.
	visitLog *VisitLog

	logger   *slog.Logger
	stats    *Stats
	frontier *Frontier
}

// SpiderOption configures a Spider.
type SpiderOption func(*Spider)

// WithBatchSize sets the number of URLs processed concurrently.
func WithBatchSize(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.batchSize = n
		}
	}
}

// WithMaxHops sets the visited-page limit.
func WithMaxHops(n int) SpiderOption {
	return func(s *Spider) {
		if n > 0 {
			s.maxHops = n
		}
	}
}

// WithLogger sets the logger for batch progress and fetch failures.
func WithLogger(logger *slog.Logger) SpiderOption {
	return func(s *Spider) {
		s.logger = logger
	}
}

// WithVisitLog sets the log that committed batches are appended to.
func WithVisitLog(l *VisitLog) SpiderOption {
	return func(s *Spider) {
		s.visitLog = l
	}
}

// WithRootURL overrides the start URL.
func WithRootURL(rootURL string) SpiderOption {
	return func(s *Spider) {
		s.rootURL = rootURL
	}
}

// WithKeepQueryParams sets the query parameters that survive URL cleaning.
func WithKeepQueryParams(names []string) SpiderOption {
	return func(s *Spider) {
		s.keepQueryParams = names
	}
}

// NewSpider creates a Spider for homeDomain that retrieves pages with fetcher.
func NewSpider(homeDomain string, fetcher Fetcher, opts ...SpiderOption) *Spider {
	s := &Spider{
		homeDomain: homeDomain,
		rootURL:    "https://" + homeDomain,
		fetcher:    fetcher,
		batchSize:  DefaultBatchSize,
		maxHops:    DefaultMaxHops,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}

	s.stats = NewStats()
	s.frontier = NewFrontier(homeDomain, NewQueryCleaner(s.keepQueryParams...), s.stats)
	s.frontier.Seed(s.rootURL)
	return s
}

// Run crawls until the frontier is empty or the hop limit is reached and
// returns the run summary.
//
// Run returns a non-nil error only when ctx is cancelled, observed at a
// batch boundary, or when the visit log cannot be written. The summary
// accumulated so far is returned in both cases.
func (s *Spider) Run(ctx context.Context) (*model.Summary, error) {
	startedAt := time.Now()
	var (
		runErr      error
		interrupted bool
		batchNo     int
	)

	for s.frontier.Len() > 0 && s.frontier.VisitedCount() < s.maxHops {
		if err := ctx.Err(); err != nil {
			interrupted = true
			runErr = err
			s.logger.Warn("crawl interrupted", "visited", s.frontier.VisitedCount(), "queued", s.frontier.Len())
			break
		}

		batch := s.frontier.DrainBatch(s.batchSize)
		if len(batch) == 0 {
			continue
		}
		batchNo++
		s.logger.Info("processing batch", "batch", batchNo, "urls", batch)

		s.processBatch(context.WithoutCancel(ctx), batch)

		pages := s.frontier.Commit(batch)
		if s.visitLog != nil {
			if err := s.visitLog.AppendBatch(pages); err != nil {
				runErr = err
				break
			}
		}
	}

	summary := s.Summary()
	summary.StartedAt = startedAt
	summary.FinishedAt = time.Now()
	summary.Interrupted = interrupted

	s.logger.Info("crawl finished",
		"domain", s.homeDomain,
		"batches", batchNo,
		"visited", summary.VisitedPages,
		"dead", summary.DeadLinks,
		"elapsed", summary.Duration(),
	)
	return summary, runErr
}

// processBatch runs one task per URL and waits for all of them.
func (s *Spider) processBatch(ctx context.Context, batch []string) {
	var g errgroup.Group
	for _, u := range batch {
		g.Go(func() error {
			s.visit(ctx, u)
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // tasks never return errors
}

// visit handles a single batch URL. Documents are recorded without being
// fetched; pages are fetched and their links fed back into the frontier.
func (s *Spider) visit(ctx context.Context, u string) {
	if IsDocument(u) {
		s.frontier.RecordDocument(u)
		s.logger.Debug("document link recorded", "url", u)
		return
	}

	body, err := s.fetcher.Fetch(ctx, u)
	if err != nil {
		s.stats.AddDead()
		s.logger.Error("failed to fetch page", "url", u, "error", err)
		return
	}

	for link, ok := range ExtractLinks(u, body) {
		if !ok {
			continue
		}
		s.stats.AddLink()
		s.frontier.AddCandidate(link)
	}
}

// Summary returns the current counters. After Run returns they are final.
func (s *Spider) Summary() *model.Summary {
	return &model.Summary{
		HomeDomain:          s.homeDomain,
		Links:               s.stats.Links(),
		ExternalLinks:       s.stats.External(),
		UniqueExternalLinks: s.frontier.ExternalCount(),
		DeadLinks:           s.stats.Dead(),
		DocumentLinks:       s.frontier.DocumentCount(),
		VisitedPages:        s.frontier.VisitedCount(),
	}
}

// Frontier exposes the crawl state, mainly for inspection after a run.
func (s *Spider) Frontier() *Frontier {
	return s.frontier
}
