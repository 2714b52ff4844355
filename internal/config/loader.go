package config

import (
	"errors"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the default configuration file name.
const DefaultConfigFile = ".hopcrawl"

// xdgConfigFile is the configuration file name inside XDGConfigDir.
const xdgConfigFile = "config.yaml"

// ErrConfigNotFound is returned when the configuration file does not exist.
var ErrConfigNotFound = errors.New("configuration file not found")

// File represents the structure of the .hopcrawl configuration file.
// Every field is optional; unset fields keep their defaults.
type File struct {
	// HomeDomain is the domain to crawl, e.g. "spbu.ru".
	HomeDomain string `yaml:"homeDomain,omitempty"`

	// BatchSize is the number of pages fetched concurrently.
	BatchSize int `yaml:"batchSize,omitempty"`

	// MaxHops is the number of pages to visit before stopping.
	MaxHops int `yaml:"maxHops,omitempty"`

	// Timeout is the per-request timeout, e.g. "30s".
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// UserAgent overrides the User-Agent header.
	UserAgent string `yaml:"userAgent,omitempty"`

	// MaxBodySize is the maximum response size in bytes.
	MaxBodySize int64 `yaml:"maxBodySize,omitempty"`

	// OutputDir is where links.txt, stats.csv and crawler.log are written.
	OutputDir string `yaml:"outputDir,omitempty"`

	// Proxy is an optional SOCKS5 proxy address ("host:port").
	Proxy string `yaml:"proxy,omitempty"`

	// RequestsPerSecond paces requests; 0 means unlimited.
	RequestsPerSecond float64 `yaml:"requestsPerSecond,omitempty"`

	// KeepQueryParams lists query parameters kept when URLs are cleaned.
	KeepQueryParams []string `yaml:"keepQueryParams,omitempty"`

	// SaveToDB controls whether run summaries are stored in the statistics database.
	SaveToDB *bool `yaml:"saveToDB,omitempty"`

	// DBDir is the directory of the run history database.
	DBDir string `yaml:"dbDir,omitempty"`
}

// LoadConfigFile loads a configuration file from a YAML file.
// If the file does not exist, it returns ErrConfigNotFound.
func LoadConfigFile(path string) (*File, error) {
	data, err := os.ReadFile(path) //nolint:gosec // User-provided config path is intentional
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrConfigNotFound
		}
		return nil, err
	}

	var cf File
	if err := yaml.Unmarshal(data, &cf); err != nil {
		return nil, err
	}

	return &cf, nil
}

// FindConfigFile searches for the configuration file in the following order:
// 1. If configPath is specified, use it directly
// 2. Look for .hopcrawl in the current directory
// 3. Look for config.yaml in the XDG config directory
// 4. Look for .hopcrawl in the user's home directory
//
// Returns the path to the configuration file if found, or empty string if not found.
func FindConfigFile(configPath string) string {
	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			return configPath
		}
		return ""
	}

	candidates := make([]string, 0, 3)
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, filepath.Join(cwd, DefaultConfigFile))
	}
	candidates = append(candidates, filepath.Join(XDGConfigDir(), xdgConfigFile))
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, DefaultConfigFile))
	}

	for _, candidate := range candidates {
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}

	return ""
}
