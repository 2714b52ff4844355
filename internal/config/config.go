package config

import (
	"fmt"
	"net"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/adrg/xdg"
	"golang.org/x/net/idna"

	"github.com/nao1215/hopcrawl/internal/crawler"
)

// Default configuration values.
const (
	// DefaultBatchSize is the number of pages fetched concurrently per batch.
	DefaultBatchSize = crawler.DefaultBatchSize

	// DefaultMaxHops is the number of pages a run marks visited before it stops.
	DefaultMaxHops = crawler.DefaultMaxHops

	// DefaultTimeout is the per-request timeout. A request that exceeds it
	// is counted as a dead link.
	DefaultTimeout = crawler.DefaultFetchTimeout

	// DefaultUserAgent identifies hopcrawl in HTTP requests.
	DefaultUserAgent = "hopcrawl/1.0 (+https://github.com/nao1215/hopcrawl)"

	// DefaultMaxBodySize limits how much of a response body is read.
	DefaultMaxBodySize = crawler.DefaultMaxBodySize

	// DefaultOutputDir is where the visited-URL log, stats and crawl log are written.
	DefaultOutputDir = "logs"

	// AppName is the application name used for XDG directory paths.
	AppName = "hopcrawl"
)

// Output file names inside OutputDir.
const (
	// LinksFileName is the visited-URL log, one URL per line.
	LinksFileName = "links.txt"

	// StatsFileName is the run summary table.
	StatsFileName = "stats.csv"

	// LogFileName is the crawl log.
	LogFileName = "crawler.log"
)

// Config holds all configuration options for hopcrawl.
// It is populated from defaults, the configuration file and CLI flags, in
// that order, and passed down explicitly.
type Config struct {
	// HomeDomain is the domain substring that scopes the crawl.
	// The crawl starts at https://<HomeDomain>.
	HomeDomain string

	// BatchSize is the number of URLs fetched concurrently per batch.
	BatchSize int

	// MaxHops is the maximum number of pages marked visited before the
	// crawl stops. It is checked between batches.
	MaxHops int

	// Timeout is the timeout of a single HTTP request.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with every request.
	UserAgent string

	// MaxBodySize is the maximum number of response bytes read per page.
	// 0 means DefaultMaxBodySize.
	MaxBodySize int64

	// OutputDir holds links.txt, stats.csv, crawler.log and the statistics database.
	OutputDir string

	// ProxyAddress is an optional SOCKS5 proxy in "host:port" format.
	ProxyAddress string

	// RequestsPerSecond paces all requests of a run. 0 disables pacing.
	RequestsPerSecond float64

	// KeepQueryParams lists query parameters that survive URL cleaning.
	// All other query parameters are removed before a URL is fetched.
	KeepQueryParams []string

	// SaveToDB records the run summary in the run history database.
	SaveToDB bool

	// DBDir holds the run history database. Defaults to XDGDataDir().
	DBDir string

	// Verbose enables debug output on stderr.
	Verbose bool

	// JSONReport prints the summary as JSON. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the summary as Markdown. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ConfigFilePath is the configuration file given with --config, if any.
	ConfigFilePath string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		BatchSize:   DefaultBatchSize,
		MaxHops:     DefaultMaxHops,
		Timeout:     DefaultTimeout,
		UserAgent:   DefaultUserAgent,
		MaxBodySize: DefaultMaxBodySize,
		OutputDir:   DefaultOutputDir,
		SaveToDB:    true,
		DBDir:       XDGDataDir(),
	}
}

// Apply copies every value set in the configuration file onto c.
// Zero values in the file leave c unchanged.
func (c *Config) Apply(f *File) {
	if f == nil {
		return
	}
	if f.HomeDomain != "" {
		c.HomeDomain = f.HomeDomain
	}
	if f.BatchSize != 0 {
		c.BatchSize = f.BatchSize
	}
	if f.MaxHops != 0 {
		c.MaxHops = f.MaxHops
	}
	if f.Timeout != 0 {
		c.Timeout = f.Timeout
	}
	if f.UserAgent != "" {
		c.UserAgent = f.UserAgent
	}
	if f.MaxBodySize != 0 {
		c.MaxBodySize = f.MaxBodySize
	}
	if f.OutputDir != "" {
		c.OutputDir = f.OutputDir
	}
	if f.Proxy != "" {
		c.ProxyAddress = f.Proxy
	}
	if f.RequestsPerSecond != 0 {
		c.RequestsPerSecond = f.RequestsPerSecond
	}
	if len(f.KeepQueryParams) > 0 {
		c.KeepQueryParams = append([]string(nil), f.KeepQueryParams...)
	}
	if f.SaveToDB != nil {
		c.SaveToDB = *f.SaveToDB
	}
	if f.DBDir != "" {
		c.DBDir = f.DBDir
	}
}

// Validate checks if the configuration is valid and normalizes HomeDomain.
// It returns the first problem found.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.HomeDomain) == "" {
		return ErrNoHomeDomain
	}

	domain, err := NormalizeHomeDomain(c.HomeDomain)
	if err != nil {
		return err
	}
	c.HomeDomain = domain

	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	if c.MaxHops <= 0 {
		return ErrInvalidMaxHops
	}

	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	if c.RequestsPerSecond < 0 {
		return ErrInvalidRequestRate
	}

	if c.ProxyAddress != "" && !IsValidProxyAddress(c.ProxyAddress) {
		return ErrInvalidProxyAddress
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if strings.TrimSpace(c.OutputDir) == "" {
		return ErrEmptyOutputDir
	}

	return nil
}

// RootURL returns the URL the crawl starts from.
func (c *Config) RootURL() string {
	return "https://" + c.HomeDomain
}

// LinksPath returns the path of the visited-URL log.
func (c *Config) LinksPath() string {
	return filepath.Join(c.OutputDir, LinksFileName)
}

// StatsPath returns the path of the run summary table.
func (c *Config) StatsPath() string {
	return filepath.Join(c.OutputDir, StatsFileName)
}

// LogPath returns the path of the crawl log.
func (c *Config) LogPath() string {
	return filepath.Join(c.OutputDir, LogFileName)
}

// NormalizeHomeDomain turns user input such as "https://SPbU.ru/" into the
// bare ASCII host "spbu.ru". Internationalized names are converted to
// punycode so they match the hrefs found in pages.
func NormalizeHomeDomain(raw string) (string, error) {
	domain := strings.TrimSpace(raw)
	for _, prefix := range []string{"https://", "http://"} {
		if len(domain) >= len(prefix) && strings.EqualFold(domain[:len(prefix)], prefix) {
			domain = domain[len(prefix):]
			break
		}
	}
	if i := strings.IndexAny(domain, "/?#"); i >= 0 {
		domain = domain[:i]
	}
	domain = strings.TrimSuffix(domain, ".")
	if domain == "" {
		return "", ErrNoHomeDomain
	}

	host, port := domain, ""
	if h, p, err := net.SplitHostPort(domain); err == nil {
		host, port = h, p
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", fmt.Errorf("%w %q: %w", ErrInvalidHomeDomain, raw, err)
	}
	if port != "" {
		return net.JoinHostPort(ascii, port), nil
	}
	return ascii, nil
}

// IsValidProxyAddress reports whether address is in "host:port" format with
// a non-empty host and a port between 1 and 65535.
func IsValidProxyAddress(address string) bool {
	host, port, err := net.SplitHostPort(address)
	if err != nil || host == "" {
		return false
	}
	n, err := strconv.Atoi(port)
	if err != nil {
		return false
	}
	return n >= 1 && n <= 65535
}

// XDGDataDir returns the XDG data directory for hopcrawl.
// On Linux: ~/.local/share/hopcrawl
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for hopcrawl.
// On Linux: ~/.config/hopcrawl
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}
