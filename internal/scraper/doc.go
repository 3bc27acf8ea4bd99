// Package scraper turns boatrace.jp pages into race records.
//
// A Scraper discovers the venues holding races on a date from the daily index page, then
// fetches per-race result and odds pages. Each page goes through the table extractor,
// the classifier and the record normalizer. Fetch failures are returned to the caller;
// pages without recognisable tables yield no records.
package scraper
