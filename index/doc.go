// Package index defines a minimal abstraction for read-only vector indexes:
// built once from embeddings, queried for kNN, and persisted in a single
// header-versioned binary layout. Implementations live in subpackages:
// bruteforce (exact scan), vptree and cover (tree-pruned search).
package index
