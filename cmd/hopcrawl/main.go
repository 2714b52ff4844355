// Package main provides the entry point for the hopcrawl CLI.
//
// hopcrawl is a breadth-first web crawler scoped to a single home domain.
// It visits pages in fixed-size concurrent batches, counts external, dead
// and document links, and records every visited URL.
//
// Usage:
//
//	hopcrawl crawl <home-domain>
//	hopcrawl stats <home-domain>
//	hopcrawl history <home-domain>
//
// See --help for all available options.
package main

func main() {
	Execute()
}
