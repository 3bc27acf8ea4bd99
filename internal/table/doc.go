// Package table extracts raw HTML tables from race pages and classifies them.
//
// Extract turns a page into RawTable values in document order: header cells flattened into one
// string per column (all header levels concatenated) and body rows with rowspan and colspan
// expanded. Classify and ClassifyPage tag each table with a Kind by looking for known header
// substrings, which is the only stable anchor on pages full of navigation and layout tables.
package table
