// Package config provides configuration structures and utilities for hopcrawl.
// It defines the crawl settings, the YAML configuration file format and the
// output file layout.
package config
