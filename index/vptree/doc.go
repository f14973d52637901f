// Package vptree provides a vantage-point tree index that prunes the scan
// with the triangle inequality. Search is exact for l2 and approximate for
// cosine distance, which is not a true metric.
package vptree
