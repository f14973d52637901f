// Package docstore persists the document table paired with a vector index:
// document text and metadata keyed by vector position, plus the artifact
// identity shared with the index file. It is backed by SQLite through the
// engine package.
package docstore
