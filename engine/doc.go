// Package engine provides helpers for working with the modernc.org/sqlite
// driver in this module. It keeps a thin surface so the document store and
// the artifact builder share the same driver registration.
package engine
