// Package model defines the data structures shared by the crawler, the
// report writers and the statistics store.
//
// This package contains the following main types:
//   - Summary: the counters of one finished crawl run
//   - DomainStats: subdomain and internal-page counts computed from the visited-URL log
//   - Report: a Summary plus optional DomainStats, the unit the report writers print
//
// Models live in their own package so that crawler, database and report can
// all depend on them without importing each other.
package model
