// Package scout provides a bounded-concurrency web crawler that maps links
// between domains. It starts from a set of seed pages, follows hyperlinks,
// records which domains link to which other domains, and writes the
// resulting graph out when the crawl drains or is interrupted.
//
// This package contains domain types and interfaces following Ben Johnson's
// Standard Package Layout. Implementations live in subdirectories named
// after their primary dependency (e.g., goquery/, sqlite/, http/).
package scout
