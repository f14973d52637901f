// Package store loads and writes the matched pair of files that make up a
// search artifact: the binary vector index and the document table. A loaded
// Store is immutable and safe for concurrent readers.
package store
