// Package race defines the records collected from boatrace.jp race pages.
//
// The race package holds the closed venue table (jcd code to display name), the Query type
// identifying a single race page, and the ResultRecord, PayoutRecord and OddsRecord types
// produced by the normalizer. Field order and json tags define the column layout used by sinks.
package race
