// Package bruteforce provides the exact vector index: every query scans all
// vectors and keeps the k closest under the index metric. It is the default
// kind and the reference the tree indexes are tested against.
package bruteforce
